package gologger

import (
	"context"

	"github.com/goliatone/go-accounts/core"
	job "github.com/goliatone/go-job"
	glog "github.com/goliatone/go-logger/glog"
)

const ReconcileLoggerName = "accounts.reconcile"

// Resolve uses deterministic precedence provider > logger > nop.
func Resolve(name string, provider glog.LoggerProvider, logger glog.Logger) (glog.LoggerProvider, glog.Logger) {
	return glog.Resolve(name, provider, logger)
}

// ToJobProvider maps a glog provider to the go-job logger provider contract.
func ToJobProvider(provider glog.LoggerProvider) job.LoggerProvider {
	if provider == nil {
		return nil
	}
	return job.GoLoggerProvider(provider)
}

// ToJobLogger maps a glog logger to the go-job logger contract.
func ToJobLogger(logger glog.Logger) job.Logger {
	if logger == nil {
		return nil
	}
	return job.GoLogger(logger)
}

// ResolveForJob resolves the glog pair and returns the go-job bridges for it.
func ResolveForJob(
	name string,
	provider glog.LoggerProvider,
	logger glog.Logger,
) (glog.LoggerProvider, glog.Logger, job.LoggerProvider, job.Logger) {
	resolvedProvider, resolvedLogger := Resolve(name, provider, logger)
	return resolvedProvider, resolvedLogger, ToJobProvider(resolvedProvider), ToJobLogger(resolvedLogger)
}

// WorkerHook writes reconcile worker events to a glog logger.
type WorkerHook struct {
	logger glog.Logger
}

func NewWorkerHook(provider glog.LoggerProvider, logger glog.Logger) *WorkerHook {
	_, resolved := Resolve(ReconcileLoggerName, provider, logger)
	return &WorkerHook{logger: glog.Ensure(resolved)}
}

func (h *WorkerHook) OnStart(ctx context.Context, event core.JobWorkerEvent) {
	h.with(ctx).Debug("reconcile job started", eventArgs(event)...)
}

func (h *WorkerHook) OnSuccess(ctx context.Context, event core.JobWorkerEvent) {
	h.with(ctx).Info("reconcile job succeeded", eventArgs(event)...)
}

func (h *WorkerHook) OnFailure(ctx context.Context, event core.JobWorkerEvent) {
	h.with(ctx).Error("reconcile job failed", eventArgs(event)...)
}

func (h *WorkerHook) OnRetry(ctx context.Context, event core.JobWorkerEvent) {
	h.with(ctx).Warn("reconcile job retrying", eventArgs(event)...)
}

func (h *WorkerHook) with(ctx context.Context) glog.Logger {
	if h == nil || h.logger == nil {
		return glog.Nop()
	}
	if ctx == nil {
		return h.logger
	}
	return glog.Ensure(h.logger.WithContext(ctx))
}

func eventArgs(event core.JobWorkerEvent) []any {
	args := []any{"attempt", event.Attempt}
	if event.Message != nil {
		args = append(args, "job_id", event.Message.JobID)
		if userID, ok := event.Message.Parameters[core.JobParamUserID]; ok {
			args = append(args, "user_id", userID)
		}
	}
	if event.Duration > 0 {
		args = append(args, "duration_ms", event.Duration.Milliseconds())
	}
	if event.Delay > 0 {
		args = append(args, "retry_in_ms", event.Delay.Milliseconds())
	}
	if event.Err != nil {
		args = append(args, "error", event.Err.Error())
	}
	return args
}

var _ core.JobWorkerHook = (*WorkerHook)(nil)
