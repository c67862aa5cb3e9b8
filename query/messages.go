package query

import (
	"strings"
)

const (
	TypeGetAccount     = "accounts.query.account.get"
	TypeGetUser        = "accounts.query.user.get"
	TypeCleanAccount   = "accounts.query.account.clean"
	TypeResolveAccount = "accounts.query.account.resolve"
	TypeLoadAccounts   = "accounts.query.membership.accounts"
	TypeLoadUsers      = "accounts.query.membership.users"
)

type GetAccountMessage struct {
	AccountID string
}

func (GetAccountMessage) Type() string { return TypeGetAccount }

func (m GetAccountMessage) Validate() error {
	return requireID("account_id", m.AccountID)
}

type GetUserMessage struct {
	UserID string
}

func (GetUserMessage) Type() string { return TypeGetUser }

func (m GetUserMessage) Validate() error {
	return requireID("user_id", m.UserID)
}

type CleanAccountMessage struct {
	AccountID string
}

func (CleanAccountMessage) Type() string { return TypeCleanAccount }

func (m CleanAccountMessage) Validate() error {
	return requireID("account_id", m.AccountID)
}

// ResolveAccountMessage resolves the account for a user. AccountID, when
// set, names the explicit account and skips the hint and primary rules.
type ResolveAccountMessage struct {
	UserID    string
	AccountID string
}

func (ResolveAccountMessage) Type() string { return TypeResolveAccount }

func (m ResolveAccountMessage) Validate() error {
	return requireID("user_id", m.UserID)
}

type LoadAccountsMessage struct {
	UserID string
}

func (LoadAccountsMessage) Type() string { return TypeLoadAccounts }

func (m LoadAccountsMessage) Validate() error {
	return requireID("user_id", m.UserID)
}

type LoadUsersMessage struct {
	AccountID string
}

func (LoadUsersMessage) Type() string { return TypeLoadUsers }

func (m LoadUsersMessage) Validate() error {
	return requireID("account_id", m.AccountID)
}

func requireID(field string, value string) error {
	if strings.TrimSpace(value) == "" {
		return queryValidationError(field, strings.ReplaceAll(field, "_", " ")+" is required")
	}
	return nil
}
