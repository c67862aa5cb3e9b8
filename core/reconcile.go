package core

import (
	"context"
	"time"
)

// Reconcile repairs the membership of one user after a partial write or a
// lost update. Stale account ids are removed from the user and every loaded
// account gets the user's id back. The user is saved before the accounts.
func (s *Service) Reconcile(ctx context.Context, userID string) (result ReconcileResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"user_id": userID}
	defer func() {
		fields["dropped"] = len(result.Dropped)
		fields["relinked"] = len(result.Relinked)
		s.observeOperation(ctx, startedAt, "reconcile", err, fields)
	}()

	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return ReconcileResult{}, err
	}

	missing := []string{}
	accounts, err := LoadBatch(ctx, DedupeIDs(user.Accounts), s.loadLimit(), s.store.LoadAccount, func(_ int, id string) {
		missing = append(missing, id)
	})
	if err != nil {
		return ReconcileResult{}, s.mapError(storeError(err, "core: reconcile load failed", fields))
	}

	result = ReconcileResult{Dropped: []string{}, Relinked: []string{}}
	kept := make([]string, 0, len(accounts))
	for _, account := range accounts {
		kept = LinkID(kept, account.ID)
	}
	for _, id := range user.Accounts {
		if !containsID(kept, id) {
			result.Dropped = LinkID(result.Dropped, id)
		}
	}
	if len(missing) > 0 || len(kept) != len(user.Accounts) {
		user.Accounts = kept
		user, err = s.store.SaveUser(ctx, user)
		if err != nil {
			return ReconcileResult{}, s.mapError(storeError(err, "core: reconcile save user failed", fields))
		}
	}

	for index, account := range accounts {
		if account.HasUser(user.ID) {
			continue
		}
		account.LinkUser(&user)
		saved, saveErr := s.store.SaveAccount(ctx, account)
		if saveErr != nil {
			err = s.mapError(&PartialWriteError{UserID: user.ID, AccountID: account.ID, Cause: saveErr})
			return ReconcileResult{}, err
		}
		accounts[index] = saved
		result.Relinked = append(result.Relinked, saved.ID)
		s.publish(ctx, EventMembershipLinked, saved.ID, user.ID, map[string]any{"source": "reconcile"})
	}

	result.User = user
	result.Accounts = accounts
	return result, nil
}
