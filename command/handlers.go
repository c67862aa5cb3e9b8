package command

import (
	"context"

	"github.com/goliatone/go-accounts/core"
	gocmd "github.com/goliatone/go-command"
)

type MutatingService interface {
	CreateAccount(ctx context.Context, req core.CreateAccountRequest) (core.Account, error)
	SuspendAccount(ctx context.Context, accountID string) (core.Account, error)
	UpdateAccount(ctx context.Context, accountID string, fields map[string]any) (core.Account, error)
	SetPrimary(ctx context.Context, userID string, accountID string) (core.Membership, error)
	AddUser(ctx context.Context, userID string, accountID string) (core.Membership, error)
	RemoveUser(ctx context.Context, userID string, accountID string) (core.Membership, error)
	Reconcile(ctx context.Context, userID string) (core.ReconcileResult, error)
}

type CreateAccountCommand struct {
	service MutatingService
}

func NewCreateAccountCommand(service MutatingService) *CreateAccountCommand {
	return &CreateAccountCommand{service: service}
}

func (c *CreateAccountCommand) Execute(ctx context.Context, msg CreateAccountMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: create account service is required")
	}
	out, err := c.service.CreateAccount(ctx, msg.Request)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type SuspendCommand struct {
	service MutatingService
}

func NewSuspendCommand(service MutatingService) *SuspendCommand {
	return &SuspendCommand{service: service}
}

func (c *SuspendCommand) Execute(ctx context.Context, msg SuspendMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: suspend service is required")
	}
	out, err := c.service.SuspendAccount(ctx, msg.AccountID)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type UpdateCommand struct {
	service MutatingService
}

func NewUpdateCommand(service MutatingService) *UpdateCommand {
	return &UpdateCommand{service: service}
}

func (c *UpdateCommand) Execute(ctx context.Context, msg UpdateMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: update service is required")
	}
	out, err := c.service.UpdateAccount(ctx, msg.AccountID, msg.Fields)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type SetPrimaryCommand struct {
	service MutatingService
}

func NewSetPrimaryCommand(service MutatingService) *SetPrimaryCommand {
	return &SetPrimaryCommand{service: service}
}

func (c *SetPrimaryCommand) Execute(ctx context.Context, msg SetPrimaryMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: set primary service is required")
	}
	out, err := c.service.SetPrimary(ctx, msg.UserID, msg.AccountID)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type AddUserCommand struct {
	service MutatingService
}

func NewAddUserCommand(service MutatingService) *AddUserCommand {
	return &AddUserCommand{service: service}
}

func (c *AddUserCommand) Execute(ctx context.Context, msg AddUserMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: add user service is required")
	}
	out, err := c.service.AddUser(ctx, msg.UserID, msg.AccountID)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type RemoveUserCommand struct {
	service MutatingService
}

func NewRemoveUserCommand(service MutatingService) *RemoveUserCommand {
	return &RemoveUserCommand{service: service}
}

func (c *RemoveUserCommand) Execute(ctx context.Context, msg RemoveUserMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: remove user service is required")
	}
	out, err := c.service.RemoveUser(ctx, msg.UserID, msg.AccountID)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

type ReconcileCommand struct {
	service MutatingService
}

func NewReconcileCommand(service MutatingService) *ReconcileCommand {
	return &ReconcileCommand{service: service}
}

func (c *ReconcileCommand) Execute(ctx context.Context, msg ReconcileMessage) error {
	if c == nil || c.service == nil {
		return commandDependencyError("command: reconcile service is required")
	}
	out, err := c.service.Reconcile(ctx, msg.UserID)
	if err != nil {
		return err
	}
	storeResult(ctx, out)
	return nil
}

func storeResult[T any](ctx context.Context, value T) {
	collector := gocmd.ResultFromContext[T](ctx)
	if collector == nil {
		return
	}
	collector.Store(value)
}
