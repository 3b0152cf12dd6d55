package goLoad

import "errors"

var (
	// ErrUnauthorized is returned when the requesting identity has no
	// principal record and is not the administrative identity.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrPrincipalExpired is returned when the principal's expiry date is
	// strictly in the past.
	ErrPrincipalExpired = errors.New("principal expired")
	// ErrPrincipalNotFound is returned by administrative operations that
	// target an identity with no record.
	ErrPrincipalNotFound = errors.New("principal not found")
	// ErrDurationLimitExceeded is returned when a requested run duration
	// exceeds the principal's maximum.
	ErrDurationLimitExceeded = errors.New("duration limit exceeded")
	// ErrConcurrencyLimitExceeded is returned when the principal already
	// owns as many active sessions as its concurrency limit allows.
	ErrConcurrencyLimitExceeded = errors.New("concurrency limit exceeded")
	// ErrMethodNotFound is returned when a run names a traffic method the
	// catalog does not carry.
	ErrMethodNotFound = errors.New("method not found")
	// ErrSessionNotFound is returned when no active session exists under
	// the given identifier. A session that already completed or was stopped
	// is indistinguishable from one that never existed.
	ErrSessionNotFound = errors.New("session not found")
	// ErrForbidden is returned when the requester is neither administrative
	// nor the owner of the targeted resource.
	ErrForbidden = errors.New("forbidden")
	// ErrDispatchFailed is returned when one or more worker endpoints
	// rejected the fan-out. No session is registered in that case.
	ErrDispatchFailed = errors.New("dispatch failed")
	// ErrValidation is returned for malformed or missing request arguments.
	ErrValidation = errors.New("invalid request")
	// ErrPersistFailed reports that an administrative mutation was applied
	// in memory but could not be saved through the principal store.
	ErrPersistFailed = errors.New("principal persistence failed")
	// ErrDuplicateSession is returned by activation when a session with the
	// same identifier is already tracked.
	ErrDuplicateSession = errors.New("duplicate session id")
	// ErrEngineNotReady is returned when an Engine method is invoked on an
	// engine whose required collaborators were never wired.
	ErrEngineNotReady = errors.New("engine not ready")
)
