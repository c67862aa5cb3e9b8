package core

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const (
	JobIDMembershipReconcile = "accounts.membership.reconcile"
	JobParamUserID           = "user_id"
	JobDedupDrop             = "drop"
)

// ReconcileJobMessage builds the queue message that asks a worker to run
// Reconcile for one user. Messages for the same user share an idempotency
// key so queued duplicates collapse.
func ReconcileJobMessage(userID string) *JobExecutionMessage {
	userID = strings.TrimSpace(userID)
	return &JobExecutionMessage{
		JobID:          JobIDMembershipReconcile,
		ScriptPath:     JobIDMembershipReconcile,
		Parameters:     map[string]any{JobParamUserID: userID},
		IdempotencyKey: "reconcile:" + userID,
		DedupPolicy:    JobDedupDrop,
	}
}

func (s *Service) EnqueueReconcile(ctx context.Context, userID string) error {
	if s == nil || s.jobEnqueuer == nil {
		return s.mapError(fmt.Errorf("core: job enqueuer is required"))
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return s.mapError(validationError("user_id", "user id is required"))
	}
	if err := s.jobEnqueuer.Enqueue(ctx, ReconcileJobMessage(userID)); err != nil {
		return s.mapError(storeError(err, "core: enqueue reconcile failed", map[string]any{"user_id": userID}))
	}
	return nil
}

// scheduleReconcile is the best-effort follow-up of a partial write.
func (s *Service) scheduleReconcile(ctx context.Context, userID string) {
	if s == nil || s.jobEnqueuer == nil || strings.TrimSpace(userID) == "" {
		return
	}
	if err := s.EnqueueReconcile(ctx, userID); err != nil {
		s.logWithLevel(ctx, "warn", "reconcile enqueue failed", map[string]any{
			"user_id": userID,
			"error":   err.Error(),
		})
	}
}

// ReconcileWorker drains reconcile jobs from a dequeuer.
type ReconcileWorker struct {
	service  *Service
	dequeuer JobDequeuer
	hook     JobWorkerHook
	retry    time.Duration
}

type ReconcileWorkerOption func(*ReconcileWorker)

func WithWorkerHook(hook JobWorkerHook) ReconcileWorkerOption {
	return func(w *ReconcileWorker) {
		w.hook = hook
	}
}

func WithRetryDelay(delay time.Duration) ReconcileWorkerOption {
	return func(w *ReconcileWorker) {
		w.retry = delay
	}
}

func NewReconcileWorker(service *Service, dequeuer JobDequeuer, opts ...ReconcileWorkerOption) *ReconcileWorker {
	worker := &ReconcileWorker{
		service:  service,
		dequeuer: dequeuer,
		retry:    time.Second,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(worker)
		}
	}
	return worker
}

// ProcessNext handles a single delivery. Deliveries for other job ids and
// deliveries without a user id are dead-lettered. A not found user is acked
// since there is nothing left to repair.
func (w *ReconcileWorker) ProcessNext(ctx context.Context) error {
	if w == nil || w.service == nil || w.dequeuer == nil {
		return fmt.Errorf("core: reconcile worker is not configured")
	}
	delivery, err := w.dequeuer.Dequeue(ctx)
	if err != nil {
		return err
	}
	if delivery == nil {
		return nil
	}

	msg := delivery.Message()
	event := JobWorkerEvent{Message: msg, Attempt: 1, StartedAt: time.Now().UTC()}
	w.onStart(ctx, event)

	userID := reconcileJobUserID(msg)
	if msg == nil || msg.JobID != JobIDMembershipReconcile || userID == "" {
		event.Err = fmt.Errorf("core: unsupported reconcile delivery")
		event.Duration = time.Since(event.StartedAt)
		w.onFailure(ctx, event)
		return delivery.Nack(ctx, JobNackOptions{DeadLetter: true, Reason: "invalid_message"})
	}

	_, err = w.service.Reconcile(ctx, userID)
	event.Duration = time.Since(event.StartedAt)
	if err != nil && !IsNotFound(err) {
		event.Err = err
		event.Delay = w.retry
		w.onRetry(ctx, event)
		return delivery.Nack(ctx, JobNackOptions{Delay: w.retry, Requeue: true, Reason: "reconcile_failed"})
	}
	w.onSuccess(ctx, event)
	return delivery.Ack(ctx)
}

func reconcileJobUserID(msg *JobExecutionMessage) string {
	if msg == nil {
		return ""
	}
	return stringValue(msg.Parameters[JobParamUserID])
}

func (w *ReconcileWorker) onStart(ctx context.Context, event JobWorkerEvent) {
	if w.hook != nil {
		w.hook.OnStart(ctx, event)
	}
}

func (w *ReconcileWorker) onSuccess(ctx context.Context, event JobWorkerEvent) {
	if w.hook != nil {
		w.hook.OnSuccess(ctx, event)
	}
}

func (w *ReconcileWorker) onFailure(ctx context.Context, event JobWorkerEvent) {
	if w.hook != nil {
		w.hook.OnFailure(ctx, event)
	}
}

func (w *ReconcileWorker) onRetry(ctx context.Context, event JobWorkerEvent) {
	if w.hook != nil {
		w.hook.OnRetry(ctx, event)
	}
}
