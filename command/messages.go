package command

import (
	"strings"

	"github.com/goliatone/go-accounts/core"
)

const (
	TypeCreateAccount = "accounts.command.account.create"
	TypeSuspend       = "accounts.command.account.suspend"
	TypeUpdate        = "accounts.command.account.update"
	TypeSetPrimary    = "accounts.command.membership.primary"
	TypeAddUser       = "accounts.command.membership.add_user"
	TypeRemoveUser    = "accounts.command.membership.remove_user"
	TypeReconcile     = "accounts.command.membership.reconcile"
)

type CreateAccountMessage struct {
	Request core.CreateAccountRequest
}

func (CreateAccountMessage) Type() string { return TypeCreateAccount }

func (m CreateAccountMessage) Validate() error {
	if strings.TrimSpace(m.Request.Name) == "" && strings.TrimSpace(m.Request.Origin) != core.OriginAuto {
		return commandValidationError("name", "account name is required")
	}
	return nil
}

type SuspendMessage struct {
	AccountID string
}

func (SuspendMessage) Type() string { return TypeSuspend }

func (m SuspendMessage) Validate() error {
	return requireID("account_id", m.AccountID)
}

type UpdateMessage struct {
	AccountID string
	Fields    map[string]any
}

func (UpdateMessage) Type() string { return TypeUpdate }

func (m UpdateMessage) Validate() error {
	if err := requireID("account_id", m.AccountID); err != nil {
		return err
	}
	if len(m.Fields) == 0 {
		return commandInvalidInputError("command: update requires at least one field")
	}
	return nil
}

// MembershipMessage names one side of each relationship by id.
type MembershipMessage struct {
	UserID    string
	AccountID string
}

func (m MembershipMessage) Validate() error {
	if err := requireID("user_id", m.UserID); err != nil {
		return err
	}
	return requireID("account_id", m.AccountID)
}

type SetPrimaryMessage struct {
	MembershipMessage
}

func (SetPrimaryMessage) Type() string { return TypeSetPrimary }

type AddUserMessage struct {
	MembershipMessage
}

func (AddUserMessage) Type() string { return TypeAddUser }

type RemoveUserMessage struct {
	MembershipMessage
}

func (RemoveUserMessage) Type() string { return TypeRemoveUser }

type ReconcileMessage struct {
	UserID string
}

func (ReconcileMessage) Type() string { return TypeReconcile }

func (m ReconcileMessage) Validate() error {
	return requireID("user_id", m.UserID)
}

func requireID(field string, value string) error {
	if strings.TrimSpace(value) == "" {
		return commandValidationError(field, strings.ReplaceAll(field, "_", " ")+" is required")
	}
	return nil
}
