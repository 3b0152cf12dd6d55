// Package goLoad provides a session and quota engine for orchestrating
// time-bounded load-generation runs across remote worker endpoints.
//
// An authorized principal requests a run against a target host:port with a
// duration and a named traffic method. The engine authorizes the request
// against the principal directory, enforces per-principal duration and
// concurrency quotas, fans the validated request out to every configured
// worker endpoint, and tracks the resulting session until its duration
// elapses or it is explicitly stopped. Engine methods are safe to call from
// multiple goroutines after initialization through [Builder.Build].
//
// # Architecture boundaries
//
// goLoad is the public surface. It exposes [Engine], [Builder], [Config],
// and value types (RunResult, SessionInfo, MetricsSnapshot, etc.). The
// concurrent session registry, principal persistence, method catalog, and
// endpoint fan-out live in their own sub-packages (registry, principal,
// catalog, dispatch) and are composed by the engine; the chat-command
// surface in the command package sits on top of the engine and never
// reaches below it.
//
// # What this package must NOT do
//
//   - Initiate transport-level communication. Replies are returned to the
//     caller; the one broadcast the engine owes per activated run goes
//     through the configured [NotifySink] and nothing else.
//   - Hold the registry lock across network I/O. Dispatch completes before
//     a session is registered, so a failed fan-out leaves no state behind.
//   - Signal worker endpoints on stop or expiry. Stopping a run removes
//     local bookkeeping only; endpoints self-terminate when the duration
//     they were handed runs out.
package goLoad
