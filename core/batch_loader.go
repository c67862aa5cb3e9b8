package core

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// MissingFunc is told about ids that did not resolve, in input order.
type MissingFunc func(index int, id string)

// LoadBatch fetches ids with at most limit fetches in flight. Results keep
// input order. Ids that fail with ErrNotFound, and blank ids, are skipped and
// reported to onMissing. Any other error aborts the batch.
func LoadBatch[T any](
	ctx context.Context,
	ids []string,
	limit int,
	fetch func(ctx context.Context, id string) (T, error),
	onMissing MissingFunc,
) ([]T, error) {
	if len(ids) == 0 {
		return []T{}, nil
	}
	if limit < 1 {
		limit = DefaultLoadLimit
	}
	if ctx == nil {
		ctx = context.Background()
	}

	results := make([]T, len(ids))
	found := make([]bool, len(ids))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(limit)
	for index, raw := range ids {
		id := strings.TrimSpace(raw)
		if id == "" {
			continue
		}
		group.Go(func() error {
			item, err := fetch(groupCtx, id)
			if err != nil {
				if IsNotFound(err) {
					return nil
				}
				return err
			}
			results[index] = item
			found[index] = true
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	out := make([]T, 0, len(ids))
	for index := range ids {
		if found[index] {
			out = append(out, results[index])
			continue
		}
		if onMissing != nil {
			onMissing(index, ids[index])
		}
	}
	return out, nil
}

// LoadAccounts resolves the user's membership list. Stale ids are skipped
// with an account-not-found diagnostic.
func (s *Service) LoadAccounts(ctx context.Context, user User) (accounts []Account, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"user_id": user.ID, "requested": len(user.Accounts)}
	defer func() {
		fields["loaded"] = len(accounts)
		s.observeOperation(ctx, startedAt, "load_accounts", err, fields)
	}()

	accounts, err = LoadBatch(ctx, user.Accounts, s.loadLimit(), s.store.LoadAccount, func(_ int, id string) {
		s.logWithLevel(ctx, "warn", "account-not-found", map[string]any{
			"missing_id": id,
			"owner_id":   user.ID,
			"owner":      user,
		})
	})
	if err != nil {
		err = s.mapError(storeError(err, "core: batch load accounts failed", map[string]any{"user_id": user.ID}))
		return nil, err
	}
	return accounts, nil
}

// LoadUsers resolves the account's member list. Stale ids are skipped with
// a user-not-found diagnostic.
func (s *Service) LoadUsers(ctx context.Context, account Account) (users []User, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"account_id": account.ID, "requested": len(account.Users)}
	defer func() {
		fields["loaded"] = len(users)
		s.observeOperation(ctx, startedAt, "load_users", err, fields)
	}()

	users, err = LoadBatch(ctx, account.Users, s.loadLimit(), s.store.LoadUser, func(_ int, id string) {
		s.logWithLevel(ctx, "warn", "user-not-found", map[string]any{
			"missing_id": id,
			"owner_id":   account.ID,
			"owner":      account,
		})
	})
	if err != nil {
		err = s.mapError(storeError(err, "core: batch load users failed", map[string]any{"account_id": account.ID}))
		return nil, err
	}
	return users, nil
}
