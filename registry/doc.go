// Package registry owns the live set of load-run sessions.
//
// The registry is the only mutable shared structure in the engine core. All
// mutation (activation, removal, timer-fired expiry) happens under a single
// coarse lock; expected session volume is low, so per-identifier locking
// would buy nothing. Expiry timers reference sessions by identifier and
// re-check presence under the lock before acting, so an explicit stop racing
// a natural expiry is always safe and at most one of the two takes effect.
package registry
