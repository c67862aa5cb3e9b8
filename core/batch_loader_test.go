package core

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestLoadBatch_SkipsMissingAndKeepsOrder(t *testing.T) {
	missing := []string{}
	out, err := LoadBatch(context.Background(), []string{"a", "gone", "b", ""}, 2,
		func(_ context.Context, id string) (string, error) {
			if id == "gone" {
				return "", NotFound(KindAccount, id)
			}
			return "loaded:" + id, nil
		},
		func(_ int, id string) { missing = append(missing, id) },
	)
	if err != nil {
		t.Fatalf("load batch: %v", err)
	}
	if len(out) != 2 || out[0] != "loaded:a" || out[1] != "loaded:b" {
		t.Fatalf("expected ordered results, got %v", out)
	}
	if len(missing) != 2 || missing[0] != "gone" || missing[1] != "" {
		t.Fatalf("expected missing ids in input order, got %v", missing)
	}
}

func TestLoadBatch_HardErrorAbortsBatch(t *testing.T) {
	storeDown := errors.New("store unavailable")
	out, err := LoadBatch(context.Background(), []string{"a", "b", "c"}, 3,
		func(_ context.Context, id string) (string, error) {
			if id == "b" {
				return "", storeDown
			}
			return id, nil
		}, nil)
	if !errors.Is(err, storeDown) {
		t.Fatalf("expected store error, got %v", err)
	}
	if out != nil {
		t.Fatalf("expected no partial results, got %v", out)
	}
}

func TestLoadBatch_RespectsConcurrencyLimit(t *testing.T) {
	var inFlight, peak int32
	ids := []string{"1", "2", "3", "4", "5", "6", "7", "8"}
	_, err := LoadBatch(context.Background(), ids, 3, func(_ context.Context, id string) (string, error) {
		current := atomic.AddInt32(&inFlight, 1)
		for {
			seen := atomic.LoadInt32(&peak)
			if current <= seen || atomic.CompareAndSwapInt32(&peak, seen, current) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return id, nil
	}, nil)
	if err != nil {
		t.Fatalf("load batch: %v", err)
	}
	if peak > 3 {
		t.Fatalf("expected at most 3 fetches in flight, saw %d", peak)
	}
}

func TestService_LoadAccounts_OneMissingEmitsOneDiagnostic(t *testing.T) {
	store := newMemoryStore()
	valid := store.putAccount(NewAccount("Acme", nil))
	user := store.putUser(User{Name: "alice", Accounts: []string{valid.ID, "acc_missing"}})

	logger := newCaptureLogger()
	svc := newTestService(t, store, WithLogger(logger))

	accounts, err := svc.LoadAccounts(context.Background(), user)
	if err != nil {
		t.Fatalf("load accounts: %v", err)
	}
	if len(accounts) != 1 || accounts[0].ID != valid.ID {
		t.Fatalf("expected only the valid account, got %+v", accounts)
	}
	if got := logger.count("warn", "account-not-found"); got != 1 {
		t.Fatalf("expected exactly one account-not-found diagnostic, got %d", got)
	}
	entry, _ := logger.find("warn", "account-not-found")
	if entry.fields["missing_id"] != "acc_missing" || entry.fields["owner_id"] != user.ID {
		t.Fatalf("expected missing and owner ids in diagnostic, got %v", entry.fields)
	}
	if _, ok := entry.fields["owner"].(User); !ok {
		t.Fatalf("expected owner record in diagnostic, got %v", entry.fields)
	}
}

func TestService_LoadAccounts_StoreFailureSurfaces(t *testing.T) {
	store := newMemoryStore()
	store.loadAccountFn = func(context.Context, string) (Account, error) {
		return Account{}, errors.New("connection refused")
	}
	svc := newTestService(t, store)

	_, err := svc.LoadAccounts(context.Background(), User{ID: "usr_1", Accounts: []string{"acc_1"}})
	if err == nil {
		t.Fatalf("expected store failure")
	}
	if mapped := MapError(err); mapped.TextCode != ServiceErrorStoreFailure {
		t.Fatalf("expected %s, got %s", ServiceErrorStoreFailure, mapped.TextCode)
	}
}

func TestService_LoadUsers_SkipsStaleMembers(t *testing.T) {
	store := newMemoryStore()
	user := store.putUser(NewUser("bob", "b"))
	account := store.putAccount(Account{Name: "Acme", Active: true, Users: []string{"usr_gone", user.ID}})

	logger := newCaptureLogger()
	svc := newTestService(t, store, WithLogger(logger))

	users, err := svc.LoadUsers(context.Background(), account)
	if err != nil {
		t.Fatalf("load users: %v", err)
	}
	if len(users) != 1 || users[0].ID != user.ID {
		t.Fatalf("expected one user, got %+v", users)
	}
	if got := logger.count("warn", "user-not-found"); got != 1 {
		t.Fatalf("expected one user-not-found diagnostic, got %d", got)
	}
}
