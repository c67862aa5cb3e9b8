package core

import (
	"context"
	"fmt"

	"github.com/goliatone/go-accounts/dispatch"
)

const (
	RoleAccount = "account"
	RoleUser    = "user"
	RoleAuth    = "auth"

	CmdCreate       = "create"
	CmdResolve      = "resolve"
	CmdLoadAccounts = "load_accounts"
	CmdLoadUsers    = "load_users"
	CmdSuspend      = "suspend"
	CmdPrimary      = "primary"
	CmdAddUser      = "add_user"
	CmdRemoveUser   = "remove_user"
	CmdUpdate       = "update"
	CmdClean        = "clean"
	CmdReconcile    = "reconcile"

	CmdRegister = "register"
	CmdLogin    = "login"
	CmdInstance = "instance"
)

var (
	PatternAccountCreate       = dispatch.NewPattern(RoleAccount, CmdCreate)
	PatternAccountResolve      = dispatch.NewPattern(RoleAccount, CmdResolve)
	PatternAccountLoadAccounts = dispatch.NewPattern(RoleAccount, CmdLoadAccounts)
	PatternAccountLoadUsers    = dispatch.NewPattern(RoleAccount, CmdLoadUsers)
	PatternAccountSuspend      = dispatch.NewPattern(RoleAccount, CmdSuspend)
	PatternAccountPrimary      = dispatch.NewPattern(RoleAccount, CmdPrimary)
	PatternAccountAddUser      = dispatch.NewPattern(RoleAccount, CmdAddUser)
	PatternAccountRemoveUser   = dispatch.NewPattern(RoleAccount, CmdRemoveUser)
	PatternAccountUpdate       = dispatch.NewPattern(RoleAccount, CmdUpdate)
	PatternAccountClean        = dispatch.NewPattern(RoleAccount, CmdClean)
	PatternAccountReconcile    = dispatch.NewPattern(RoleAccount, CmdReconcile)

	PatternUserRegister = dispatch.NewPattern(RoleUser, CmdRegister)
	PatternUserLogin    = dispatch.NewPattern(RoleUser, CmdLogin)
	PatternAuthInstance = dispatch.NewPattern(RoleAuth, CmdInstance)
)

// Register installs the account operations and the lifecycle extensions on
// registry. The user and auth operations being extended must be registered
// first, otherwise the extensions fail with dispatch.ErrNoPrior when called.
func (s *Service) Register(registry *dispatch.Registry) error {
	if s == nil {
		return fmt.Errorf("core: service is nil")
	}
	if registry == nil {
		return fmt.Errorf("core: dispatch registry is required")
	}
	s.registry = registry

	for _, def := range s.accountDefinitions() {
		if err := registry.Register(def); err != nil {
			return err
		}
	}
	for _, def := range s.extensionDefinitions() {
		if !registry.Has(def.Pattern) {
			s.logWithLevel(context.Background(), "warn", "extension registered without prior handler", map[string]any{
				"pattern": def.Pattern.String(),
			})
		}
		if err := registry.Register(def); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) accountDefinitions() []dispatch.Definition {
	return []dispatch.Definition{
		{Pattern: PatternAccountCreate, Name: "accounts.create", Required: []string{FieldName}, Handler: s.handleCreate},
		{Pattern: PatternAccountResolve, Name: "accounts.resolve", Required: []string{"user"}, Handler: s.handleResolve},
		{Pattern: PatternAccountLoadAccounts, Name: "accounts.load_accounts", Required: []string{"user"}, Handler: s.handleLoadAccounts},
		{Pattern: PatternAccountLoadUsers, Name: "accounts.load_users", Required: []string{"account"}, Handler: s.handleLoadUsers},
		{Pattern: PatternAccountSuspend, Name: "accounts.suspend", Required: []string{"account"}, Handler: s.handleSuspend},
		{Pattern: PatternAccountPrimary, Name: "accounts.primary", Required: []string{"user", "account"}, Handler: s.handlePrimary},
		{Pattern: PatternAccountAddUser, Name: "accounts.add_user", Required: []string{"user", "account"}, Handler: s.handleAddUser},
		{Pattern: PatternAccountRemoveUser, Name: "accounts.remove_user", Required: []string{"user", "account"}, Handler: s.handleRemoveUser},
		{Pattern: PatternAccountUpdate, Name: "accounts.update", Required: []string{"account"}, Handler: s.handleUpdate},
		{Pattern: PatternAccountClean, Name: "accounts.clean", Required: []string{"account"}, Handler: s.handleClean},
		{Pattern: PatternAccountReconcile, Name: "accounts.reconcile", Required: []string{"user"}, Handler: s.handleReconcile},
	}
}

func (s *Service) extensionDefinitions() []dispatch.Definition {
	defs := []dispatch.Definition{
		{Pattern: PatternUserRegister, Name: "accounts.user_register", Handler: s.extendRegister},
		{Pattern: PatternUserLogin, Name: "accounts.user_login", Handler: s.extendLogin},
	}
	if s.config.Web {
		defs = append(defs, dispatch.Definition{
			Pattern: PatternAuthInstance,
			Name:    "accounts.auth_instance",
			Handler: s.extendInstance,
		})
	}
	return defs
}

func (s *Service) handleCreate(ctx context.Context, _ dispatch.Call, args dispatch.Args) (dispatch.Result, error) {
	req := CreateAccountRequest{
		Name:         args.String(FieldName),
		Fields:       fieldsFromArgs(args, FieldName),
		Origin:       args.String(FieldOrigin),
		OriginUserID: args.String(FieldOriginUserID),
	}
	if active, ok := args.Bool(FieldActive); ok {
		req.Active = &active
	}
	account, err := s.CreateAccount(ctx, req)
	if err != nil {
		return nil, err
	}
	return dispatch.Result{dispatch.KeyOK: true, "account": account}, nil
}

// handleResolve uses user and account entities as given, since the user's
// account hint only exists in memory. Ids are loaded first.
func (s *Service) handleResolve(ctx context.Context, _ dispatch.Call, args dispatch.Args) (dispatch.Result, error) {
	user, err := s.userArg(ctx, args, false)
	if err != nil {
		return nil, err
	}
	var explicit *Account
	if args.Has("account") {
		account, err := s.accountArg(ctx, args, false)
		if err != nil {
			return nil, err
		}
		explicit = &account
	}
	account, err := s.ResolveAccount(ctx, user, explicit)
	if err != nil {
		return nil, err
	}
	return dispatch.Result{dispatch.KeyOK: true, "account": account}, nil
}

func (s *Service) handleLoadAccounts(ctx context.Context, _ dispatch.Call, args dispatch.Args) (dispatch.Result, error) {
	user, err := s.userArg(ctx, args, false)
	if err != nil {
		return nil, err
	}
	accounts, err := s.LoadAccounts(ctx, user)
	if err != nil {
		return nil, err
	}
	return dispatch.Result{dispatch.KeyOK: true, "accounts": accounts}, nil
}

func (s *Service) handleLoadUsers(ctx context.Context, _ dispatch.Call, args dispatch.Args) (dispatch.Result, error) {
	account, err := s.accountArg(ctx, args, false)
	if err != nil {
		return nil, err
	}
	users, err := s.LoadUsers(ctx, account)
	if err != nil {
		return nil, err
	}
	return dispatch.Result{dispatch.KeyOK: true, "users": users}, nil
}

func (s *Service) handleSuspend(ctx context.Context, _ dispatch.Call, args dispatch.Args) (dispatch.Result, error) {
	account, err := s.SuspendAccount(ctx, entityID(args["account"]))
	if err != nil {
		return nil, err
	}
	return dispatch.Result{dispatch.KeyOK: true, "account": account}, nil
}

func (s *Service) handlePrimary(ctx context.Context, _ dispatch.Call, args dispatch.Args) (dispatch.Result, error) {
	membership, err := s.SetPrimary(ctx, entityID(args["user"]), entityID(args["account"]))
	if err != nil {
		return nil, err
	}
	return membershipResult(membership), nil
}

func (s *Service) handleAddUser(ctx context.Context, _ dispatch.Call, args dispatch.Args) (dispatch.Result, error) {
	membership, err := s.AddUser(ctx, entityID(args["user"]), entityID(args["account"]))
	if err != nil {
		return nil, err
	}
	return membershipResult(membership), nil
}

func (s *Service) handleRemoveUser(ctx context.Context, _ dispatch.Call, args dispatch.Args) (dispatch.Result, error) {
	membership, err := s.RemoveUser(ctx, entityID(args["user"]), entityID(args["account"]))
	if err != nil {
		return nil, err
	}
	return membershipResult(membership), nil
}

func (s *Service) handleUpdate(ctx context.Context, _ dispatch.Call, args dispatch.Args) (dispatch.Result, error) {
	values := fieldsFromArgs(args, "account")
	if active, ok := args.Bool(FieldActive); ok {
		values[FieldActive] = active
	}
	account, err := s.UpdateAccount(ctx, entityID(args["account"]), values)
	if err != nil {
		return nil, err
	}
	return dispatch.Result{dispatch.KeyOK: true, "account": account}, nil
}

func (s *Service) handleClean(ctx context.Context, _ dispatch.Call, args dispatch.Args) (dispatch.Result, error) {
	account, err := s.accountArg(ctx, args, false)
	if err != nil {
		return nil, err
	}
	return dispatch.Result{dispatch.KeyOK: true, "account": s.CleanAccount(account)}, nil
}

func (s *Service) handleReconcile(ctx context.Context, _ dispatch.Call, args dispatch.Args) (dispatch.Result, error) {
	result, err := s.Reconcile(ctx, entityID(args["user"]))
	if err != nil {
		return nil, err
	}
	return dispatch.Result{
		dispatch.KeyOK: true,
		"user":         result.User,
		"accounts":     result.Accounts,
		"dropped":      result.Dropped,
		"relinked":     result.Relinked,
	}, nil
}

func membershipResult(membership Membership) dispatch.Result {
	return dispatch.Result{
		dispatch.KeyOK: true,
		"user":         membership.User,
		"account":      membership.Account,
	}
}

// accountArg decodes args["account"]. Ids are always loaded; entities are
// reloaded by id only when reload is set.
func (s *Service) accountArg(ctx context.Context, args dispatch.Args, reload bool) (Account, error) {
	value, ok := args.Value("account")
	if !ok {
		return Account{}, s.mapError(validationError("account", "account is required"))
	}
	account, err := decodeAccount(value)
	if err != nil {
		return Account{}, s.mapError(err)
	}
	if _, isID := value.(string); isID || reload {
		return s.GetAccount(ctx, account.ID)
	}
	return account, nil
}

func (s *Service) userArg(ctx context.Context, args dispatch.Args, reload bool) (User, error) {
	value, ok := args.Value("user")
	if !ok {
		return User{}, s.mapError(validationError("user", "user is required"))
	}
	user, err := decodeUser(value)
	if err != nil {
		return User{}, s.mapError(err)
	}
	if _, isID := value.(string); isID || reload {
		return s.GetUser(ctx, user.ID)
	}
	return user, nil
}
