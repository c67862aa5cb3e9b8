package gojob

import (
	"context"
	"fmt"
	"maps"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-accounts/core"

	job "github.com/goliatone/go-job"
	"github.com/goliatone/go-job/queue"
)

const JobIDMembershipReconcile = core.JobIDMembershipReconcile

// RetryPolicy bounds redelivery of failed reconcile jobs. A user whose
// links still cannot be repaired after MaxAttempts deliveries is
// dead-lettered.
type RetryPolicy struct {
	MaxAttempts int
	MaxDelay    time.Duration
}

func (p RetryPolicy) nackOptions(opts core.JobNackOptions, attempt int) queue.NackOptions {
	out := queue.NackOptions{
		Disposition: queue.NackDispositionFailed,
		Delay:       max(opts.Delay, 0),
		Reason:      strings.TrimSpace(opts.Reason),
	}
	if p.MaxDelay > 0 && out.Delay > p.MaxDelay {
		out.Delay = p.MaxDelay
	}
	switch {
	case opts.DeadLetter:
		out.Disposition = queue.NackDispositionDeadLetter
	case opts.Requeue && p.MaxAttempts > 0 && attempt >= p.MaxAttempts:
		out.Disposition = queue.NackDispositionDeadLetter
		out.Reason = "max_attempts"
	case opts.Requeue:
		out.Disposition = queue.NackDispositionRetry
	}
	if out.Disposition != queue.NackDispositionRetry {
		out.Delay = 0
	}
	return out
}

// Enqueuer puts reconcile jobs on a go-job queue. Other job ids are
// rejected.
type Enqueuer struct {
	queue queue.Enqueuer
}

func NewEnqueuer(enqueuer queue.Enqueuer) *Enqueuer {
	return &Enqueuer{queue: enqueuer}
}

func (e *Enqueuer) Enqueue(ctx context.Context, msg *core.JobExecutionMessage) error {
	if e == nil || e.queue == nil {
		return fmt.Errorf("gojob: enqueuer is not configured")
	}
	if msg == nil {
		return fmt.Errorf("gojob: execution message is required")
	}
	if msg.JobID != JobIDMembershipReconcile {
		return fmt.Errorf("gojob: unsupported job %q", msg.JobID)
	}
	_, err := e.queue.Enqueue(ctx, toExecutionMessage(msg))
	return err
}

// EnqueueReconcile queues a reconcile job for userID.
func EnqueueReconcile(ctx context.Context, enqueuer queue.Enqueuer, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("gojob: user id is required")
	}
	return NewEnqueuer(enqueuer).Enqueue(ctx, core.ReconcileJobMessage(userID))
}

// Dequeuer feeds go-job deliveries to the reconcile worker. It counts
// deliveries per idempotency key so RetryPolicy can stop retrying a user.
type Dequeuer struct {
	queue  queue.Dequeuer
	policy RetryPolicy

	mu       sync.Mutex
	attempts map[string]int
}

func NewDequeuer(dequeuer queue.Dequeuer, policy RetryPolicy) *Dequeuer {
	return &Dequeuer{
		queue:    dequeuer,
		policy:   policy,
		attempts: map[string]int{},
	}
}

func (d *Dequeuer) Dequeue(ctx context.Context) (core.JobDelivery, error) {
	if d == nil || d.queue == nil {
		return nil, fmt.Errorf("gojob: dequeuer is not configured")
	}
	raw, err := d.queue.Dequeue(ctx)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}

	msg := fromExecutionMessage(raw.Message())
	key := attemptKey(msg)
	d.mu.Lock()
	d.attempts[key]++
	attempt := d.attempts[key]
	d.mu.Unlock()

	return &delivery{parent: d, raw: raw, msg: msg, key: key, attempt: attempt}, nil
}

// Attempts reports how many times the reconcile job for userID has been
// delivered without being settled.
func (d *Dequeuer) Attempts(userID string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.attempts[core.ReconcileJobMessage(userID).IdempotencyKey]
}

func (d *Dequeuer) settle(key string) {
	d.mu.Lock()
	delete(d.attempts, key)
	d.mu.Unlock()
}

type delivery struct {
	parent  *Dequeuer
	raw     queue.Delivery
	msg     *core.JobExecutionMessage
	key     string
	attempt int
}

func (d *delivery) Message() *core.JobExecutionMessage {
	return d.msg
}

func (d *delivery) Ack(ctx context.Context) error {
	d.parent.settle(d.key)
	return d.raw.Ack(ctx)
}

func (d *delivery) Nack(ctx context.Context, opts core.JobNackOptions) error {
	nack := d.parent.policy.nackOptions(opts, d.attempt)
	if nack.Disposition != queue.NackDispositionRetry {
		d.parent.settle(d.key)
	}
	return d.raw.Nack(ctx, nack)
}

// NewReconcileWorker runs the core reconcile worker on a go-job queue.
// MaxDelay, when set, is also the worker's retry delay.
func NewReconcileWorker(
	service *core.Service,
	dequeuer queue.Dequeuer,
	policy RetryPolicy,
	opts ...core.ReconcileWorkerOption,
) *core.ReconcileWorker {
	if policy.MaxDelay > 0 {
		opts = append([]core.ReconcileWorkerOption{core.WithRetryDelay(policy.MaxDelay)}, opts...)
	}
	return core.NewReconcileWorker(service, NewDequeuer(dequeuer, policy), opts...)
}

func toExecutionMessage(msg *core.JobExecutionMessage) *job.ExecutionMessage {
	return &job.ExecutionMessage{
		JobID:          strings.TrimSpace(msg.JobID),
		ScriptPath:     strings.TrimSpace(msg.ScriptPath),
		Parameters:     cloneParameters(msg.Parameters),
		IdempotencyKey: strings.TrimSpace(msg.IdempotencyKey),
		DedupPolicy:    job.DeduplicationPolicy(strings.TrimSpace(msg.DedupPolicy)),
	}
}

func fromExecutionMessage(msg *job.ExecutionMessage) *core.JobExecutionMessage {
	if msg == nil {
		return nil
	}
	return &core.JobExecutionMessage{
		JobID:          strings.TrimSpace(msg.JobID),
		ScriptPath:     strings.TrimSpace(msg.ScriptPath),
		Parameters:     cloneParameters(msg.Parameters),
		IdempotencyKey: strings.TrimSpace(msg.IdempotencyKey),
		DedupPolicy:    strings.TrimSpace(string(msg.DedupPolicy)),
	}
}

func attemptKey(msg *core.JobExecutionMessage) string {
	if msg == nil {
		return ""
	}
	if msg.IdempotencyKey != "" {
		return msg.IdempotencyKey
	}
	return msg.JobID
}

func cloneParameters(in map[string]any) map[string]any {
	if len(in) == 0 {
		return map[string]any{}
	}
	return maps.Clone(in)
}

var (
	_ core.JobEnqueuer = (*Enqueuer)(nil)
	_ core.JobDequeuer = (*Dequeuer)(nil)
	_ core.JobDelivery = (*delivery)(nil)
)
