package query

import (
	"context"
	"strings"

	"github.com/goliatone/go-accounts/core"
)

type EntityReader interface {
	GetAccount(ctx context.Context, id string) (core.Account, error)
	GetUser(ctx context.Context, id string) (core.User, error)
}

type MembershipReader interface {
	EntityReader
	ResolveAccount(ctx context.Context, user core.User, explicit *core.Account) (core.Account, error)
	LoadAccounts(ctx context.Context, user core.User) ([]core.Account, error)
	LoadUsers(ctx context.Context, account core.Account) ([]core.User, error)
	CleanAccount(account core.Account) core.PublicAccount
}

type GetAccountQuery struct {
	reader EntityReader
}

func NewGetAccountQuery(reader EntityReader) *GetAccountQuery {
	return &GetAccountQuery{reader: reader}
}

func (q *GetAccountQuery) Query(ctx context.Context, msg GetAccountMessage) (core.Account, error) {
	if q == nil || q.reader == nil {
		return core.Account{}, queryDependencyError("query: account reader is required")
	}
	return q.reader.GetAccount(ctx, msg.AccountID)
}

type GetUserQuery struct {
	reader EntityReader
}

func NewGetUserQuery(reader EntityReader) *GetUserQuery {
	return &GetUserQuery{reader: reader}
}

func (q *GetUserQuery) Query(ctx context.Context, msg GetUserMessage) (core.User, error) {
	if q == nil || q.reader == nil {
		return core.User{}, queryDependencyError("query: user reader is required")
	}
	return q.reader.GetUser(ctx, msg.UserID)
}

type CleanAccountQuery struct {
	reader MembershipReader
}

func NewCleanAccountQuery(reader MembershipReader) *CleanAccountQuery {
	return &CleanAccountQuery{reader: reader}
}

func (q *CleanAccountQuery) Query(ctx context.Context, msg CleanAccountMessage) (core.PublicAccount, error) {
	if q == nil || q.reader == nil {
		return core.PublicAccount{}, queryDependencyError("query: membership reader is required")
	}
	account, err := q.reader.GetAccount(ctx, msg.AccountID)
	if err != nil {
		return core.PublicAccount{}, err
	}
	return q.reader.CleanAccount(account), nil
}

type ResolveAccountQuery struct {
	reader MembershipReader
}

func NewResolveAccountQuery(reader MembershipReader) *ResolveAccountQuery {
	return &ResolveAccountQuery{reader: reader}
}

// Query may create an account when the user has neither a hint nor a
// primary account.
func (q *ResolveAccountQuery) Query(ctx context.Context, msg ResolveAccountMessage) (core.Account, error) {
	if q == nil || q.reader == nil {
		return core.Account{}, queryDependencyError("query: membership reader is required")
	}
	user, err := q.reader.GetUser(ctx, msg.UserID)
	if err != nil {
		return core.Account{}, err
	}
	var explicit *core.Account
	if id := strings.TrimSpace(msg.AccountID); id != "" {
		account, err := q.reader.GetAccount(ctx, id)
		if err != nil {
			return core.Account{}, err
		}
		explicit = &account
	}
	return q.reader.ResolveAccount(ctx, user, explicit)
}

type LoadAccountsQuery struct {
	reader MembershipReader
}

func NewLoadAccountsQuery(reader MembershipReader) *LoadAccountsQuery {
	return &LoadAccountsQuery{reader: reader}
}

func (q *LoadAccountsQuery) Query(ctx context.Context, msg LoadAccountsMessage) ([]core.Account, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: membership reader is required")
	}
	user, err := q.reader.GetUser(ctx, msg.UserID)
	if err != nil {
		return nil, err
	}
	return q.reader.LoadAccounts(ctx, user)
}

type LoadUsersQuery struct {
	reader MembershipReader
}

func NewLoadUsersQuery(reader MembershipReader) *LoadUsersQuery {
	return &LoadUsersQuery{reader: reader}
}

func (q *LoadUsersQuery) Query(ctx context.Context, msg LoadUsersMessage) ([]core.User, error) {
	if q == nil || q.reader == nil {
		return nil, queryDependencyError("query: membership reader is required")
	}
	account, err := q.reader.GetAccount(ctx, msg.AccountID)
	if err != nil {
		return nil, err
	}
	return q.reader.LoadUsers(ctx, account)
}
