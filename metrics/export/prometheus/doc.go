// Package prometheus renders goLoad metrics in Prometheus text exposition
// format.
//
// [NewPrometheusExporter] accepts a [goLoad.Engine] and exposes an
// [http.Handler] that renders every goLoad counter. Counter names are
// prefixed goload_*_total.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry — callers mount the Handler.
//   - Mutate engine state.
package prometheus
