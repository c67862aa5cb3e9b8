package core

import (
	"context"
	"maps"
)

// Every service operation records accounts.<operation>.total and
// accounts.<operation>.duration_ms tagged with operation and status.
const (
	metricPrefix          = "accounts."
	metricTotalSuffix     = ".total"
	metricDurationSuffix  = ".duration_ms"
	MetricPartialWrites   = "accounts.membership.partial_write.total"
	MetricStatusSuccess   = "success"
	MetricStatusFailure   = "failure"
	metricTagOperation    = "operation"
	metricTagStatus       = "status"
	metricTagOrigin       = "origin"
	metricTagReconcileJob = "reconcile_job"
)

func operationCounterName(operation string) string {
	return metricPrefix + operation + metricTotalSuffix
}

func operationDurationName(operation string) string {
	return metricPrefix + operation + metricDurationSuffix
}

// operationTags tags an operation metric. origin is only set for account
// operations that know the account's origin.
func operationTags(operation string, err error, origin string) map[string]string {
	status := MetricStatusSuccess
	if err != nil {
		status = MetricStatusFailure
	}
	tags := map[string]string{
		metricTagOperation: operation,
		metricTagStatus:    status,
	}
	if origin != "" {
		tags[metricTagOrigin] = origin
	}
	return tags
}

type NopMetricsRecorder struct{}

func (NopMetricsRecorder) IncCounter(context.Context, string, int64, map[string]string) {}

func (NopMetricsRecorder) ObserveHistogram(context.Context, string, float64, map[string]string) {}

func cloneTags(tags map[string]string) map[string]string {
	if len(tags) == 0 {
		return map[string]string{}
	}
	return maps.Clone(tags)
}

var _ MetricsRecorder = NopMetricsRecorder{}
