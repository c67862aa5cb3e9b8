package accounts

import (
	"github.com/goliatone/go-accounts/core"
	"github.com/goliatone/go-accounts/dispatch"
)

type Config = core.Config

type Option = core.Option

type Service = core.Service

type ServiceDependencies = core.ServiceDependencies

type Account = core.Account
type User = core.User
type PublicAccount = core.PublicAccount
type Membership = core.Membership
type ReconcileResult = core.ReconcileResult
type CreateAccountRequest = core.CreateAccountRequest
type Store = core.Store
type EventPublisher = core.EventPublisher
type JobEnqueuer = core.JobEnqueuer

type Registry = dispatch.Registry

var (
	WithLogger            = core.WithLogger
	WithLoggerProvider    = core.WithLoggerProvider
	WithMetricsRecorder   = core.WithMetricsRecorder
	WithErrorMapper       = core.WithErrorMapper
	WithPersistenceClient = core.WithPersistenceClient
	WithRepositoryFactory = core.WithRepositoryFactory
	WithConfigProvider    = core.WithConfigProvider
	WithOptionsResolver   = core.WithOptionsResolver
	WithStore             = core.WithStore
	WithEventPublisher    = core.WithEventPublisher
	WithRegistry          = core.WithRegistry
	WithAccountSuffix     = core.WithAccountSuffix
	WithJobEnqueuer       = core.WithJobEnqueuer
	WithClock             = core.WithClock
)

func DefaultConfig() Config {
	return core.DefaultConfig()
}

func NewService(cfg Config, opts ...Option) (*Service, error) {
	return core.NewService(cfg, opts...)
}

func Setup(cfg Config, opts ...Option) (*Service, error) {
	return core.Setup(cfg, opts...)
}

func NewRegistry(opts ...dispatch.Option) *Registry {
	return dispatch.NewRegistry(opts...)
}
