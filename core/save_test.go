package core

import (
	"context"
	"errors"
	"testing"

	goerrors "github.com/goliatone/go-errors"
)

func TestSaveMembership_SavesUserThenAccount(t *testing.T) {
	store := newMemoryStore()
	order := []string{}
	base := newMemoryStore()
	store.saveUserFn = func(ctx context.Context, user User) (User, error) {
		order = append(order, "user")
		return base.SaveUser(ctx, user)
	}
	store.saveAccountFn = func(ctx context.Context, account Account) (Account, error) {
		order = append(order, "account")
		return base.SaveAccount(ctx, account)
	}
	svc := newTestService(t, store)

	user := User{ID: "usr_1", Account: &AccountHint{ID: "acc_1"}}
	account := Account{ID: "acc_1"}
	Link(&user, &account)

	membership, err := svc.SaveMembership(context.Background(), user, account)
	if err != nil {
		t.Fatalf("save membership: %v", err)
	}
	if len(order) != 2 || order[0] != "user" || order[1] != "account" {
		t.Fatalf("expected user then account, got %v", order)
	}
	if membership.User.Account != nil {
		t.Fatalf("expected hint to be stripped before save")
	}
	if membership.Account.ID != "acc_1" || !membership.Account.HasUser("usr_1") {
		t.Fatalf("unexpected saved account %+v", membership.Account)
	}
}

func TestSaveMembership_UserFailureSkipsAccount(t *testing.T) {
	store := newMemoryStore()
	store.saveUserFn = func(context.Context, User) (User, error) {
		return User{}, errors.New("disk full")
	}
	accountCalled := false
	store.saveAccountFn = func(_ context.Context, account Account) (Account, error) {
		accountCalled = true
		return account, nil
	}
	svc := newTestService(t, store)

	_, err := svc.SaveMembership(context.Background(), User{ID: "usr_1"}, Account{ID: "acc_1"})
	if err == nil {
		t.Fatalf("expected user save failure")
	}
	if accountCalled {
		t.Fatalf("expected account save to be skipped")
	}
	var partial *PartialWriteError
	if errors.As(err, &partial) {
		t.Fatalf("expected plain store failure, got partial write")
	}
}

func TestSaveMembership_AccountFailureReportsPartialWrite(t *testing.T) {
	store := newMemoryStore()
	store.saveAccountFn = func(context.Context, Account) (Account, error) {
		return Account{}, errors.New("timeout")
	}
	svc := newTestService(t, store)

	user := User{ID: "usr_1"}
	account := Account{ID: "acc_1"}
	Link(&user, &account)

	membership, err := svc.SaveMembership(context.Background(), user, account)
	if err == nil {
		t.Fatalf("expected account save failure")
	}
	var partial *PartialWriteError
	if !errors.As(err, &partial) {
		t.Fatalf("expected partial write error, got %T", err)
	}
	if partial.UserID != "usr_1" || partial.AccountID != "acc_1" {
		t.Fatalf("unexpected partial write ids %+v", partial)
	}
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) || rich.TextCode != ServiceErrorPartialWrite {
		t.Fatalf("expected %s envelope, got %v", ServiceErrorPartialWrite, err)
	}
	if membership.User.ID != "usr_1" {
		t.Fatalf("expected saved user returned with the error")
	}
	if stored := store.user(t, "usr_1"); !stored.HasAccount("acc_1") {
		t.Fatalf("expected user write to stay committed")
	}
}
