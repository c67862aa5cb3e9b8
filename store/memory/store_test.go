package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-accounts/core"
)

func TestStore_SaveAssignsIDAndTimestamps(t *testing.T) {
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := NewStore(WithClock(func() time.Time { return fixed }))

	saved, err := store.SaveAccount(context.Background(), core.NewAccount("Acme", map[string]any{"plan": "pro"}))
	if err != nil {
		t.Fatalf("save account: %v", err)
	}
	if saved.ID == "" {
		t.Fatalf("expected generated id")
	}
	if !saved.CreatedAt.Equal(fixed) || !saved.UpdatedAt.Equal(fixed) {
		t.Fatalf("expected clock timestamps, got %v/%v", saved.CreatedAt, saved.UpdatedAt)
	}

	later := fixed.Add(time.Hour)
	store.now = func() time.Time { return later }
	saved.Name = "Acme Corp"
	updated, err := store.SaveAccount(context.Background(), saved)
	if err != nil {
		t.Fatalf("update account: %v", err)
	}
	if !updated.CreatedAt.Equal(fixed) || !updated.UpdatedAt.Equal(later) {
		t.Fatalf("expected created_at kept and updated_at bumped, got %v/%v", updated.CreatedAt, updated.UpdatedAt)
	}
}

func TestStore_LoadMissingIsNotFound(t *testing.T) {
	store := NewStore()
	if _, err := store.LoadAccount(context.Background(), "nope"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected not found for account, got %v", err)
	}
	if _, err := store.LoadUser(context.Background(), "nope"); !core.IsNotFound(err) {
		t.Fatalf("expected not found for user, got %v", err)
	}
}

func TestStore_ReturnsDetachedCopies(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	saved, err := store.SaveAccount(ctx, core.Account{Name: "Acme", Active: true, Users: []string{"usr_1"}, Fields: map[string]any{"plan": "pro"}})
	if err != nil {
		t.Fatalf("save account: %v", err)
	}
	saved.Users[0] = "mutated"
	saved.Fields["plan"] = "free"

	loaded, err := store.LoadAccount(ctx, saved.ID)
	if err != nil {
		t.Fatalf("load account: %v", err)
	}
	if loaded.Users[0] != "usr_1" || loaded.Fields["plan"] != "pro" {
		t.Fatalf("expected stored record untouched, got %+v", loaded)
	}
}

func TestStore_SaveUserDropsHint(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	user := core.NewUser("alice", "al")
	user.Account = &core.AccountHint{ID: "acc_1"}

	saved, err := store.SaveUser(ctx, user)
	if err != nil {
		t.Fatalf("save user: %v", err)
	}
	if saved.Account != nil {
		t.Fatalf("expected hint stripped from returned user")
	}
	loaded, err := store.LoadUser(ctx, saved.ID)
	if err != nil {
		t.Fatalf("load user: %v", err)
	}
	if loaded.Account != nil {
		t.Fatalf("expected hint never persisted")
	}
	if accounts, users := store.Len(); accounts != 0 || users != 1 {
		t.Fatalf("expected one user, got accounts=%d users=%d", accounts, users)
	}
}

func TestStore_HonorsCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewStore().SaveUser(ctx, core.NewUser("bob", "")); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected canceled context error, got %v", err)
	}
}
