package core

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-accounts/dispatch"
	goerrors "github.com/goliatone/go-errors"
)

func newRegisteredService(t *testing.T, store *memoryStore, opts ...Option) (*Service, *dispatch.Registry) {
	t.Helper()
	svc := newTestService(t, store, opts...)
	registry := dispatch.NewRegistry()
	if err := svc.Register(registry); err != nil {
		t.Fatalf("register service: %v", err)
	}
	return svc, registry
}

func resultAccount(t *testing.T, out dispatch.Result) Account {
	t.Helper()
	account, ok := out["account"].(Account)
	if !ok {
		t.Fatalf("expected account in result, got %#v", out["account"])
	}
	return account
}

func TestRegister_InstallsAccountOperations(t *testing.T) {
	_, registry := newRegisteredService(t, newMemoryStore())
	commands := registry.Pin(RoleAccount).Commands()
	want := []string{"add_user", "clean", "create", "load_accounts", "load_users", "primary", "reconcile", "remove_user", "resolve", "suspend", "update"}
	if len(commands) != len(want) {
		t.Fatalf("expected %v, got %v", want, commands)
	}
	for i := range want {
		if commands[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, commands)
		}
	}
	if registry.Has(PatternAuthInstance) {
		t.Fatalf("expected auth:instance extension only in web mode")
	}
}

func TestCreate_RoundTrip(t *testing.T) {
	store := newMemoryStore()
	_, registry := newRegisteredService(t, store)

	out, err := registry.Act(context.Background(), PatternAccountCreate, dispatch.Args{"name": "Acme"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	created := resultAccount(t, out)

	loaded := store.account(t, created.ID)
	if !loaded.Active || loaded.Name != "Acme" {
		t.Fatalf("expected active Acme account, got %+v", loaded)
	}
}

func TestCreate_ActiveFlagAndFields(t *testing.T) {
	store := newMemoryStore()
	_, registry := newRegisteredService(t, store)

	out, err := registry.Act(context.Background(), PatternAccountCreate, dispatch.Args{
		"name":   "Dormant",
		"active": false,
		"plan":   "pro",
		"users":  []string{"ignored"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	created := resultAccount(t, out)
	if created.Active || created.Fields["plan"] != "pro" || len(created.Users) != 0 {
		t.Fatalf("unexpected created account %+v", created)
	}
}

func TestCreate_RequiresName(t *testing.T) {
	_, registry := newRegisteredService(t, newMemoryStore())
	_, err := registry.Act(context.Background(), PatternAccountCreate, dispatch.Args{})
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) || rich.TextCode != ServiceErrorBadInput {
		t.Fatalf("expected bad input, got %v", err)
	}
}

func TestPrimary_MovesAccountToFrontAndLinksBothWays(t *testing.T) {
	store := newMemoryStore()
	first := store.putAccount(NewAccount("First", nil))
	second := store.putAccount(NewAccount("Second", nil))
	user := store.putUser(User{Name: "alice", Accounts: []string{first.ID}})
	_, registry := newRegisteredService(t, store)

	out, err := registry.Act(context.Background(), PatternAccountPrimary, dispatch.Args{
		"user":    user.ID,
		"account": second,
	})
	if err != nil {
		t.Fatalf("primary: %v", err)
	}
	savedUser := out["user"].(User)
	if savedUser.PrimaryAccountID() != second.ID || len(savedUser.Accounts) != 2 {
		t.Fatalf("expected %s at index 0, got %v", second.ID, savedUser.Accounts)
	}
	if stored := store.account(t, second.ID); !stored.HasUser(user.ID) {
		t.Fatalf("expected reciprocal link on account, got %v", stored.Users)
	}

	if _, err := registry.Act(context.Background(), PatternAccountPrimary, dispatch.Args{
		"user":    user.ID,
		"account": first.ID,
	}); err != nil {
		t.Fatalf("primary again: %v", err)
	}
	if stored := store.user(t, user.ID); stored.PrimaryAccountID() != first.ID || len(stored.Accounts) != 2 {
		t.Fatalf("expected first promoted back without duplicates, got %v", stored.Accounts)
	}
}

func TestAddAndRemoveUser_AreSymmetric(t *testing.T) {
	store := newMemoryStore()
	account := store.putAccount(NewAccount("Acme", nil))
	user := store.putUser(NewUser("bob", "b"))
	_, registry := newRegisteredService(t, store)
	ctx := context.Background()

	if _, err := registry.Act(ctx, PatternAccountAddUser, dispatch.Args{"user": user, "account": account.ID}); err != nil {
		t.Fatalf("add user: %v", err)
	}
	if _, err := registry.Act(ctx, PatternAccountAddUser, dispatch.Args{"user": user.ID, "account": account.ID}); err != nil {
		t.Fatalf("add user twice: %v", err)
	}
	if stored := store.account(t, account.ID); len(stored.Users) != 1 {
		t.Fatalf("expected one member, got %v", stored.Users)
	}
	if stored := store.user(t, user.ID); len(stored.Accounts) != 1 {
		t.Fatalf("expected one account, got %v", stored.Accounts)
	}

	out, err := registry.Act(ctx, PatternAccountRemoveUser, dispatch.Args{"user": user.ID, "account": account.ID})
	if err != nil {
		t.Fatalf("remove user: %v", err)
	}
	if got := out["account"].(Account); len(got.Users) != 0 {
		t.Fatalf("expected user id removed from account, got %v", got.Users)
	}
	if stored := store.user(t, user.ID); len(stored.Accounts) != 0 {
		t.Fatalf("expected account id removed from user, got %v", stored.Accounts)
	}
}

func TestSuspendUpdateAndClean(t *testing.T) {
	store := newMemoryStore()
	account := store.putAccount(Account{
		Name:         "Acme",
		Active:       true,
		Users:        []string{"usr_1"},
		Origin:       OriginAuto,
		OriginUserID: "usr_1",
	})
	publisher := &recordingPublisher{}
	_, registry := newRegisteredService(t, store, WithEventPublisher(publisher))
	ctx := context.Background()

	out, err := registry.Act(ctx, PatternAccountSuspend, dispatch.Args{"account": account.ID})
	if err != nil {
		t.Fatalf("suspend: %v", err)
	}
	if resultAccount(t, out).Active {
		t.Fatalf("expected suspended account")
	}

	out, err = registry.Act(ctx, PatternAccountUpdate, dispatch.Args{
		"role":    "account",
		"cmd":     "update",
		"account": account.ID,
		"active":  true,
		"origin":  "manual",
		"plan":    "pro",
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	updated := resultAccount(t, out)
	if !updated.Active || updated.Fields["plan"] != "pro" {
		t.Fatalf("expected update to reactivate and merge plan, got %+v", updated)
	}
	if updated.Origin != OriginAuto {
		t.Fatalf("expected origin to stay reserved, got %q", updated.Origin)
	}
	for _, key := range []string{"role", "active", "origin"} {
		if _, ok := updated.Fields[key]; ok {
			t.Fatalf("expected %s key to stay out of fields", key)
		}
	}
	if stored := store.account(t, account.ID); !stored.Active {
		t.Fatalf("expected reactivation to be persisted")
	}

	out, err = registry.Act(ctx, PatternAccountClean, dispatch.Args{"account": account.ID})
	if err != nil {
		t.Fatalf("clean: %v", err)
	}
	clean, ok := out["account"].(PublicAccount)
	if !ok || clean.ID != account.ID || clean.Fields["plan"] != "pro" {
		t.Fatalf("unexpected clean result %#v", out["account"])
	}

	names := publisher.names()
	if len(names) != 2 || names[0] != EventAccountSuspended || names[1] != EventAccountUpdated {
		t.Fatalf("expected suspend and update events, got %v", names)
	}
}

func TestOperations_UnknownIDsReturnNotFound(t *testing.T) {
	_, registry := newRegisteredService(t, newMemoryStore())
	_, err := registry.Act(context.Background(), PatternAccountSuspend, dispatch.Args{"account": "acc_missing"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestLoadOperations(t *testing.T) {
	store := newMemoryStore()
	account := store.putAccount(NewAccount("Acme", nil))
	user := store.putUser(User{Name: "alice", Accounts: []string{account.ID, "acc_gone"}})
	account.Users = []string{user.ID}
	store.putAccount(account)
	_, registry := newRegisteredService(t, store)
	ctx := context.Background()

	out, err := registry.Act(ctx, PatternAccountLoadAccounts, dispatch.Args{"user": user.ID})
	if err != nil {
		t.Fatalf("load accounts: %v", err)
	}
	if accounts := out["accounts"].([]Account); len(accounts) != 1 {
		t.Fatalf("expected one account, got %+v", accounts)
	}

	out, err = registry.Act(ctx, PatternAccountLoadUsers, dispatch.Args{"account": account})
	if err != nil {
		t.Fatalf("load users: %v", err)
	}
	if users := out["users"].([]User); len(users) != 1 || users[0].ID != user.ID {
		t.Fatalf("expected one user, got %+v", users)
	}
}

func TestResolveOperation_UsesUserEntityHint(t *testing.T) {
	store := newMemoryStore()
	hinted := store.putAccount(NewAccount("Hinted", nil))
	_, registry := newRegisteredService(t, store)

	out, err := registry.Act(context.Background(), PatternAccountResolve, dispatch.Args{
		"user": map[string]any{"id": "usr_1", "name": "alice", "account": hinted.ID},
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resultAccount(t, out).ID != hinted.ID {
		t.Fatalf("expected hinted account")
	}
}
