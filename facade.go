package accounts

import (
	"fmt"

	accountcommand "github.com/goliatone/go-accounts/command"
	accountquery "github.com/goliatone/go-accounts/query"
)

type CommandQueryService interface {
	accountcommand.MutatingService
	accountquery.MembershipReader
}

type Commands struct {
	CreateAccount *accountcommand.CreateAccountCommand
	Suspend       *accountcommand.SuspendCommand
	Update        *accountcommand.UpdateCommand
	SetPrimary    *accountcommand.SetPrimaryCommand
	AddUser       *accountcommand.AddUserCommand
	RemoveUser    *accountcommand.RemoveUserCommand
	Reconcile     *accountcommand.ReconcileCommand
}

type Queries struct {
	GetAccount     *accountquery.GetAccountQuery
	GetUser        *accountquery.GetUserQuery
	CleanAccount   *accountquery.CleanAccountQuery
	ResolveAccount *accountquery.ResolveAccountQuery
	LoadAccounts   *accountquery.LoadAccountsQuery
	LoadUsers      *accountquery.LoadUsersQuery
}

type Facade struct {
	service  CommandQueryService
	commands Commands
	queries  Queries
}

type FacadeOption func(*facadeOptions)

type facadeOptions struct {
	reader accountquery.MembershipReader
}

// WithReader serves the queries from reader instead of the service, for
// example a service built over a read replica.
func WithReader(reader accountquery.MembershipReader) FacadeOption {
	return func(options *facadeOptions) {
		options.reader = reader
	}
}

func NewFacade(service CommandQueryService, opts ...FacadeOption) (*Facade, error) {
	if service == nil {
		return nil, fmt.Errorf("accounts: command/query service is required")
	}
	cfg := facadeOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	reader := cfg.reader
	if reader == nil {
		reader = service
	}

	facade := &Facade{service: service}
	facade.commands = Commands{
		CreateAccount: accountcommand.NewCreateAccountCommand(service),
		Suspend:       accountcommand.NewSuspendCommand(service),
		Update:        accountcommand.NewUpdateCommand(service),
		SetPrimary:    accountcommand.NewSetPrimaryCommand(service),
		AddUser:       accountcommand.NewAddUserCommand(service),
		RemoveUser:    accountcommand.NewRemoveUserCommand(service),
		Reconcile:     accountcommand.NewReconcileCommand(service),
	}
	facade.queries = Queries{
		GetAccount:     accountquery.NewGetAccountQuery(reader),
		GetUser:        accountquery.NewGetUserQuery(reader),
		CleanAccount:   accountquery.NewCleanAccountQuery(reader),
		ResolveAccount: accountquery.NewResolveAccountQuery(reader),
		LoadAccounts:   accountquery.NewLoadAccountsQuery(reader),
		LoadUsers:      accountquery.NewLoadUsersQuery(reader),
	}

	return facade, nil
}

func (f *Facade) Commands() Commands {
	if f == nil {
		return Commands{}
	}
	return f.commands
}

func (f *Facade) Queries() Queries {
	if f == nil {
		return Queries{}
	}
	return f.queries
}

func (f *Facade) Service() CommandQueryService {
	if f == nil {
		return nil
	}
	return f.service
}
