// Package principal holds authorization records and their persistence.
//
// A Record carries the quota and expiry attributes of one authorized
// identity. The Directory is the in-memory authority: reads are lock-free
// relative to each other, and every administrative mutation replaces the
// whole record set before invoking the configured Store's save hook.
// Persistence backends (JSON file, Redis) implement Store; a load failure is
// never fatal, callers fall back to an empty set.
package principal
