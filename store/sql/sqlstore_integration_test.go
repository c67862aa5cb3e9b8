package sqlstore_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/goliatone/go-accounts/core"
	"github.com/goliatone/go-accounts/dispatch"
	sqlstore "github.com/goliatone/go-accounts/store/sql"
	persistence "github.com/goliatone/go-persistence-bun"
)

func TestMigrationSmokeApplySQLite(t *testing.T) {
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	for _, table := range []string{"accounts", "account_users"} {
		var tableName string
		if err := client.DB().NewRaw(
			"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?",
			table,
		).Scan(context.Background(), &tableName); err != nil {
			t.Fatalf("query sqlite master: %v", err)
		}
		if tableName != table {
			t.Fatalf("expected %s table, got %q", table, tableName)
		}
	}
}

func TestStore_AccountRoundTrip(t *testing.T) {
	ctx := context.Background()
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	factory, err := sqlstore.NewRepositoryFactoryFromPersistence(client)
	if err != nil {
		t.Fatalf("new repository factory: %v", err)
	}
	store := factory.Store()
	if store == nil {
		t.Fatalf("expected store from factory")
	}

	created, err := store.SaveAccount(ctx, core.Account{
		Name:         "Acme",
		Active:       true,
		Users:        []string{"usr_1"},
		Fields:       map[string]any{"plan": "pro"},
		Origin:       core.OriginAuto,
		OriginUserID: "usr_1",
	})
	if err != nil {
		t.Fatalf("save account: %v", err)
	}
	if created.ID == "" || created.CreatedAt.IsZero() {
		t.Fatalf("expected generated id and created_at, got %+v", created)
	}

	loaded, err := store.LoadAccount(ctx, created.ID)
	if err != nil {
		t.Fatalf("load account: %v", err)
	}
	if loaded.Name != "Acme" || !loaded.Active || !loaded.HasUser("usr_1") {
		t.Fatalf("unexpected loaded account %+v", loaded)
	}
	if loaded.Fields["plan"] != "pro" || loaded.Origin != core.OriginAuto || loaded.OriginUserID != "usr_1" {
		t.Fatalf("expected fields and provenance to persist, got %+v", loaded)
	}

	loaded.Active = false
	loaded.Users = append(loaded.Users, "usr_2")
	updated, err := store.SaveAccount(ctx, loaded)
	if err != nil {
		t.Fatalf("update account: %v", err)
	}
	if updated.ID != created.ID {
		t.Fatalf("expected update in place, got id %q", updated.ID)
	}
	if !updated.CreatedAt.Equal(loaded.CreatedAt) {
		t.Fatalf("expected created_at kept on update")
	}

	reloaded, err := store.LoadAccount(ctx, created.ID)
	if err != nil {
		t.Fatalf("reload account: %v", err)
	}
	if reloaded.Active || len(reloaded.Users) != 2 {
		t.Fatalf("expected suspended account with two members, got %+v", reloaded)
	}
}

func TestStore_UserRoundTripDropsHint(t *testing.T) {
	ctx := context.Background()
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	store, err := sqlstore.NewStore(client.DB())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	user := core.NewUser("alice", "al")
	user.Accounts = []string{"acc_1", "acc_2"}
	user.Account = &core.AccountHint{ID: "acc_1"}
	saved, err := store.SaveUser(ctx, user)
	if err != nil {
		t.Fatalf("save user: %v", err)
	}
	if saved.Account != nil {
		t.Fatalf("expected hint not returned from store")
	}

	loaded, err := store.LoadUser(ctx, saved.ID)
	if err != nil {
		t.Fatalf("load user: %v", err)
	}
	if loaded.Name != "alice" || loaded.Nick != "al" || len(loaded.Accounts) != 2 || loaded.Accounts[0] != "acc_1" {
		t.Fatalf("unexpected loaded user %+v", loaded)
	}
	if loaded.Account != nil {
		t.Fatalf("expected hint never persisted")
	}
}

func TestStore_ExplicitIDsAreInsertedOnFirstSave(t *testing.T) {
	ctx := context.Background()
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	store, err := sqlstore.NewStore(client.DB())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	saved, err := store.SaveUser(ctx, core.User{ID: "usr_fixed", Name: "bob"})
	if err != nil {
		t.Fatalf("save user: %v", err)
	}
	if saved.ID != "usr_fixed" {
		t.Fatalf("expected explicit id kept, got %q", saved.ID)
	}
	if _, err := store.LoadUser(ctx, "usr_fixed"); err != nil {
		t.Fatalf("load user: %v", err)
	}
}

func TestStore_MissingRecordsAreNotFound(t *testing.T) {
	ctx := context.Background()
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	store, err := sqlstore.NewStore(client.DB())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if _, err := store.LoadAccount(ctx, "acc_missing"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected account not found, got %v", err)
	}
	if _, err := store.LoadUser(ctx, "usr_missing"); !core.IsNotFound(err) {
		t.Fatalf("expected user not found, got %v", err)
	}
}

func TestRepositoryFactory_RejectsUnsupportedClient(t *testing.T) {
	if _, err := sqlstore.NewRepositoryFactory().BuildStores(nil); err == nil {
		t.Fatalf("expected nil persistence client to fail")
	}
	if _, err := sqlstore.NewRepositoryFactory().BuildStores("dsn"); err == nil {
		t.Fatalf("expected unsupported client type to fail")
	}
}

func TestOpen_RejectsUnknownDriver(t *testing.T) {
	if _, err := sqlstore.Open(context.Background(), sqlstore.Config{Driver: "oracle", DSN: "x"}); err == nil {
		t.Fatalf("expected unsupported driver error")
	}
	if _, err := sqlstore.Open(context.Background(), sqlstore.Config{Driver: "sqlite"}); err == nil {
		t.Fatalf("expected missing dsn error")
	}
}

func TestService_MembershipOverSQLite(t *testing.T) {
	ctx := context.Background()
	client, cleanup := newSQLiteClient(t)
	defer cleanup()

	svc, err := core.NewService(core.Config{},
		core.WithPersistenceClient(client),
		core.WithRepositoryFactory(sqlstore.NewRepositoryFactory()),
	)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	registry := dispatch.NewRegistry()
	if err := svc.Register(registry); err != nil {
		t.Fatalf("register: %v", err)
	}

	store := svc.Dependencies().Store
	user, err := store.SaveUser(ctx, core.NewUser("carol", "c"))
	if err != nil {
		t.Fatalf("save user: %v", err)
	}
	account, err := svc.CreateAccount(ctx, core.CreateAccountRequest{Name: "Carol Co"})
	if err != nil {
		t.Fatalf("create account: %v", err)
	}

	out, err := registry.Act(ctx, core.PatternAccountAddUser, dispatch.Args{"user": user.ID, "account": account.ID})
	if err != nil {
		t.Fatalf("add user: %v", err)
	}
	if !out.OK() {
		t.Fatalf("expected ok result, got %v", out)
	}

	accounts, err := svc.LoadAccounts(ctx, mustLoadUser(t, store, user.ID))
	if err != nil {
		t.Fatalf("load accounts: %v", err)
	}
	if len(accounts) != 1 || !accounts[0].HasUser(user.ID) {
		t.Fatalf("expected symmetric membership in sqlite, got %+v", accounts)
	}
}

func mustLoadUser(t *testing.T, store core.Store, id string) core.User {
	t.Helper()
	user, err := store.LoadUser(context.Background(), id)
	if err != nil {
		t.Fatalf("load user %s: %v", id, err)
	}
	return user
}

func newSQLiteClient(t *testing.T) (*persistence.Client, func()) {
	t.Helper()

	dsn := fmt.Sprintf(
		"file:accounts-test-%d?mode=memory&cache=shared&_foreign_keys=on",
		time.Now().UnixNano(),
	)
	ctx := context.Background()
	client, err := sqlstore.Open(ctx, sqlstore.Config{Driver: sqlstore.DriverSQLite, DSN: dsn})
	if err != nil {
		t.Fatalf("open sqlite client: %v", err)
	}
	if err := client.Migrate(ctx); err != nil {
		_ = client.Close()
		t.Fatalf("migrate: %v", err)
	}
	return client, func() {
		_ = client.Close()
	}
}
