package core

import (
	"context"
	"fmt"
)

// SaveMembership persists user, then account. When the user save fails the
// account is not written. When only the account save fails the returned
// error is a *PartialWriteError and the user stays persisted.
func (s *Service) SaveMembership(ctx context.Context, user User, account Account) (Membership, error) {
	user.StripHint()

	savedUser, err := s.store.SaveUser(ctx, user)
	if err != nil {
		return Membership{}, s.mapError(storeError(err, "core: save user failed", map[string]any{
			"user_id":    user.ID,
			"account_id": account.ID,
		}))
	}

	savedAccount, err := s.store.SaveAccount(ctx, account)
	if err != nil {
		partial := &PartialWriteError{
			UserID:    savedUser.ID,
			AccountID: account.ID,
			Cause:     err,
		}
		s.logWithLevel(ctx, "warn", "membership partially written", map[string]any{
			"user_id":    savedUser.ID,
			"account_id": account.ID,
			"error":      err.Error(),
		})
		s.recordCounter(ctx, MetricPartialWrites, 1, map[string]string{
			metricTagReconcileJob: fmt.Sprint(s.jobEnqueuer != nil),
		})
		s.scheduleReconcile(ctx, savedUser.ID)
		return Membership{User: savedUser}, s.mapError(partial)
	}

	return Membership{User: savedUser, Account: savedAccount}, nil
}
