package core

import (
	"context"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

// AccountStore and UserStore are keyed persistence for the two entity kinds.
// Load returns an error wrapping ErrNotFound for unknown ids. Save assigns an
// id to records that have none and returns the stored record.
type AccountStore interface {
	LoadAccount(ctx context.Context, id string) (Account, error)
	SaveAccount(ctx context.Context, account Account) (Account, error)
}

type UserStore interface {
	LoadUser(ctx context.Context, id string) (User, error)
	SaveUser(ctx context.Context, user User) (User, error)
}

type Store interface {
	AccountStore
	UserStore
}

type RepositoryStoreFactory interface {
	BuildStores(persistenceClient any) (Store, error)
}

type MetricsRecorder interface {
	IncCounter(ctx context.Context, name string, value int64, tags map[string]string)
	ObserveHistogram(ctx context.Context, name string, value float64, tags map[string]string)
}

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger

// AccountService is the typed surface consumed by the command and query
// packages.
type AccountService interface {
	CreateAccount(ctx context.Context, req CreateAccountRequest) (Account, error)
	ResolveAccount(ctx context.Context, user User, explicit *Account) (Account, error)
	LoadAccounts(ctx context.Context, user User) ([]Account, error)
	LoadUsers(ctx context.Context, account Account) ([]User, error)
	GetAccount(ctx context.Context, id string) (Account, error)
	GetUser(ctx context.Context, id string) (User, error)
	SuspendAccount(ctx context.Context, accountID string) (Account, error)
	SetPrimary(ctx context.Context, userID string, accountID string) (Membership, error)
	AddUser(ctx context.Context, userID string, accountID string) (Membership, error)
	RemoveUser(ctx context.Context, userID string, accountID string) (Membership, error)
	UpdateAccount(ctx context.Context, accountID string, fields map[string]any) (Account, error)
	CleanAccount(account Account) PublicAccount
	Reconcile(ctx context.Context, userID string) (ReconcileResult, error)
}

type CreateAccountRequest struct {
	Name   string
	Active *bool
	Fields map[string]any

	Origin       string
	OriginUserID string
}

type ReconcileResult struct {
	User     User
	Accounts []Account
	// Dropped lists stale account ids removed from the user.
	Dropped []string
	// Relinked lists accounts that were missing the user's id.
	Relinked []string
}

type JobExecutionMessage struct {
	JobID          string
	ScriptPath     string
	Parameters     map[string]any
	IdempotencyKey string
	DedupPolicy    string
}

type JobNackOptions struct {
	Delay      time.Duration
	Requeue    bool
	DeadLetter bool
	Reason     string
}

type JobEnqueuer interface {
	Enqueue(ctx context.Context, msg *JobExecutionMessage) error
}

type JobDelivery interface {
	Message() *JobExecutionMessage
	Ack(ctx context.Context) error
	Nack(ctx context.Context, opts JobNackOptions) error
}

type JobDequeuer interface {
	Dequeue(ctx context.Context) (JobDelivery, error)
}

type JobWorkerHook interface {
	OnStart(ctx context.Context, event JobWorkerEvent)
	OnSuccess(ctx context.Context, event JobWorkerEvent)
	OnFailure(ctx context.Context, event JobWorkerEvent)
	OnRetry(ctx context.Context, event JobWorkerEvent)
}

type JobWorkerEvent struct {
	Message   *JobExecutionMessage
	Attempt   int
	Delay     time.Duration
	Err       error
	StartedAt time.Time
	Duration  time.Duration
}
