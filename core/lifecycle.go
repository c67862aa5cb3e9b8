package core

import (
	"context"
	"time"

	"github.com/goliatone/go-accounts/dispatch"
)

const (
	ExtensionUserRegister = "user.register"
	ExtensionUserLogin    = "user.login"
	ExtensionAuthInstance = "auth.instance"
)

// extendRegister runs the prior registration and, when it succeeded, gives
// the new user an account: resolve, link both ways, drop the hint, save.
func (s *Service) extendRegister(ctx context.Context, call dispatch.Call, args dispatch.Args) (dispatch.Result, error) {
	out, err := call.Prior(ctx, args)
	if err != nil {
		return nil, err
	}
	if !out.OK() {
		return out, nil
	}
	result, err := s.completeRegistration(ctx, out, args)
	if err != nil {
		return nil, s.extensionFailed(ExtensionUserRegister, err)
	}
	return result, nil
}

func (s *Service) completeRegistration(ctx context.Context, out dispatch.Result, args dispatch.Args) (result dispatch.Result, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{}
	defer func() {
		s.observeOperation(ctx, startedAt, "register_extension", err, fields)
	}()

	user, err := resultUser(out)
	if err != nil {
		return nil, err
	}
	fields["user_id"] = user.ID

	var explicit *Account
	if args.Has("account") {
		account, err := s.accountArg(ctx, args, true)
		if err != nil {
			return nil, err
		}
		explicit = &account
	}

	account, err := s.ResolveAccount(ctx, user, explicit)
	if err != nil {
		return nil, err
	}
	fields["account_id"] = account.ID

	Link(&user, &account)
	user.StripHint()
	membership, err := s.SaveMembership(ctx, user, account)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, EventMembershipLinked, membership.Account.ID, membership.User.ID, map[string]any{
		"source": ExtensionUserRegister,
	})

	accounts, err := s.LoadAccounts(ctx, membership.User)
	if err != nil {
		return nil, err
	}

	result = out.Clone()
	result["user"] = membership.User
	result["accounts"] = accounts
	return result, nil
}

// extendLogin attaches the user's accounts to a successful login.
func (s *Service) extendLogin(ctx context.Context, call dispatch.Call, args dispatch.Args) (dispatch.Result, error) {
	out, err := call.Prior(ctx, args)
	if err != nil {
		return nil, err
	}
	if !out.OK() {
		return out, nil
	}
	user, err := resultUser(out)
	if err != nil {
		return nil, s.extensionFailed(ExtensionUserLogin, err)
	}
	accounts, err := s.LoadAccounts(ctx, user)
	if err != nil {
		return nil, s.extensionFailed(ExtensionUserLogin, err)
	}
	result := out.Clone()
	result["accounts"] = accounts
	return result, nil
}

// extendInstance attaches cleaned accounts to an auth instance. The
// accounts arg selects the full list over the primary account.
func (s *Service) extendInstance(ctx context.Context, call dispatch.Call, args dispatch.Args) (dispatch.Result, error) {
	out, err := call.Prior(ctx, args)
	if err != nil {
		return nil, err
	}
	if _, ok := out.Value("user"); !ok {
		return out, nil
	}
	user, err := resultUser(out)
	if err != nil {
		return nil, s.extensionFailed(ExtensionAuthInstance, err)
	}
	accounts, err := s.LoadAccounts(ctx, user)
	if err != nil {
		return nil, s.extensionFailed(ExtensionAuthInstance, err)
	}

	cleaned := make([]PublicAccount, 0, len(accounts))
	for _, account := range accounts {
		cleaned = append(cleaned, s.CleanAccount(account))
	}

	result := out.Clone()
	if all, _ := args.Bool("accounts"); all {
		result["accounts"] = cleaned
		return result, nil
	}
	// The first account that still loads stands in for the primary. A stale
	// user.accounts[0] is skipped by LoadAccounts, so it is never attached.
	if len(cleaned) > 0 {
		result["account"] = cleaned[0]
	}
	return result, nil
}

func (s *Service) extensionFailed(operation string, cause error) error {
	return s.mapError(&ExtensionError{
		Operation:      operation,
		PriorCommitted: true,
		Cause:          cause,
	})
}

func resultUser(out dispatch.Result) (User, error) {
	value, ok := out.Value("user")
	if !ok {
		return User{}, badInputError("core: prior result has no user", nil)
	}
	user, err := decodeUser(value)
	if err != nil {
		return User{}, err
	}
	if user.ID == "" {
		return User{}, badInputError("core: prior result user has no id", nil)
	}
	return user, nil
}
