package core

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-accounts/dispatch"
)

const (
	ResolvedExplicit = "explicit"
	ResolvedHint     = "hint"
	ResolvedPrimary  = "primary"
	ResolvedCreated  = "created"
)

// ResolveAccount picks the account for user. The first rule that applies
// wins: the explicit account, the user's account hint, the user's primary
// account, and finally a newly created account named after the user. Hint
// and primary load failures are returned as errors.
func (s *Service) ResolveAccount(ctx context.Context, user User, explicit *Account) (account Account, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"user_id": user.ID}
	defer func() {
		fields["account_id"] = account.ID
		s.observeOperation(ctx, startedAt, "resolve", err, fields)
	}()

	account, source, err := s.resolveAccount(ctx, user, explicit)
	fields["source"] = source
	if err != nil {
		return Account{}, err
	}
	return account, nil
}

func (s *Service) resolveAccount(ctx context.Context, user User, explicit *Account) (Account, string, error) {
	if explicit != nil {
		return *explicit, ResolvedExplicit, nil
	}

	if !user.Account.IsZero() {
		id := user.Account.AccountID()
		if id == "" {
			return Account{}, ResolvedHint, s.mapError(badInputError("core: account hint has no id", map[string]any{
				"user_id": user.ID,
			}))
		}
		account, err := s.store.LoadAccount(ctx, id)
		if err != nil {
			return Account{}, ResolvedHint, s.mapError(storeError(err, "core: account hint could not be loaded", map[string]any{
				"user_id":    user.ID,
				"account_id": id,
			}))
		}
		return account, ResolvedHint, nil
	}

	if primary := strings.TrimSpace(user.PrimaryAccountID()); primary != "" {
		account, err := s.store.LoadAccount(ctx, primary)
		if err != nil {
			return Account{}, ResolvedPrimary, s.mapError(storeError(err, "core: primary account could not be loaded", map[string]any{
				"user_id":    user.ID,
				"account_id": primary,
			}))
		}
		return account, ResolvedPrimary, nil
	}

	account, err := s.autoCreateAccount(ctx, user)
	return account, ResolvedCreated, err
}

// autoCreateAccount goes through the registered create operation when there
// is one, so extensions of account creation also see auto-created accounts.
func (s *Service) autoCreateAccount(ctx context.Context, user User) (Account, error) {
	name := user.Name + s.config.AccountSuffix
	if s.registry == nil || !s.registry.Has(PatternAccountCreate) {
		return s.CreateAccount(ctx, CreateAccountRequest{
			Name:         name,
			Origin:       OriginAuto,
			OriginUserID: user.ID,
		})
	}

	out, err := s.registry.Act(ctx, PatternAccountCreate, dispatch.Args{
		FieldName:         name,
		FieldOrigin:       OriginAuto,
		FieldOriginUserID: user.ID,
	})
	if err != nil {
		return Account{}, s.mapError(err)
	}
	value, ok := out.Value("account")
	if !ok {
		return Account{}, s.mapError(badInputError("core: create returned no account", map[string]any{
			"user_id": user.ID,
		}))
	}
	account, err := decodeAccount(value)
	if err != nil {
		return Account{}, s.mapError(err)
	}
	return account, nil
}
