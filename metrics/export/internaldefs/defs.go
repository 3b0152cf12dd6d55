package internaldefs

import (
	goLoad "github.com/MrEthical07/goLoad"
)

// CounterDef binds one engine counter to its exported name and help text.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable.
type CounterDef struct {
	ID   goLoad.MetricID
	Name string
	Help string
}

// CounterDefs lists every engine counter in export order.
var CounterDefs = []CounterDef{
	{ID: goLoad.MetricRunActivated, Name: "goload_run_activated_total", Help: "Runs that passed admission and dispatched to every endpoint."},
	{ID: goLoad.MetricRunUnauthorized, Name: "goload_run_unauthorized_total", Help: "Run requests from identities without a principal record."},
	{ID: goLoad.MetricRunExpired, Name: "goload_run_expired_total", Help: "Run requests from expired principals."},
	{ID: goLoad.MetricRunDurationLimited, Name: "goload_run_duration_limited_total", Help: "Run requests exceeding the principal's duration cap."},
	{ID: goLoad.MetricRunConcurrencyLimited, Name: "goload_run_concurrency_limited_total", Help: "Run requests rejected at the concurrency limit."},
	{ID: goLoad.MetricRunMethodUnknown, Name: "goload_run_method_unknown_total", Help: "Run requests naming unknown traffic methods."},
	{ID: goLoad.MetricRunValidationFailed, Name: "goload_run_validation_failed_total", Help: "Malformed run requests."},
	{ID: goLoad.MetricDispatchFailure, Name: "goload_dispatch_failure_total", Help: "Fan-outs with at least one failed endpoint call."},
	{ID: goLoad.MetricSessionCompleted, Name: "goload_session_completed_total", Help: "Sessions removed by natural expiry."},
	{ID: goLoad.MetricSessionCancelled, Name: "goload_session_cancelled_total", Help: "Sessions removed by explicit stop."},
	{ID: goLoad.MetricPrincipalUpserted, Name: "goload_principal_upserted_total", Help: "Administrative principal record writes."},
	{ID: goLoad.MetricPrincipalRemoved, Name: "goload_principal_removed_total", Help: "Administrative principal record deletions."},
	{ID: goLoad.MetricPersistFailure, Name: "goload_persist_failure_total", Help: "Principal saves that failed after the in-memory mutation was applied."},
}
