package goLoad

import (
	"context"
	"fmt"
	"time"

	"github.com/MrEthical07/goLoad/registry"
)

// Sessions returns a snapshot of active sessions, oldest first. The
// administrator sees every session; a principal sees only its own; an
// unknown identity is rejected.
func (e *Engine) Sessions(_ context.Context, identity string) ([]SessionInfo, error) {
	if e == nil || e.registry == nil {
		return nil, ErrEngineNotReady
	}
	if !e.hasAccess(identity) {
		return nil, fmt.Errorf("%w: no principal record for %q", ErrUnauthorized, identity)
	}

	var sessions []registry.Session
	if e.IsAdmin(identity) {
		sessions = e.registry.List()
	} else {
		sessions = e.registry.ListOwned(identity)
	}

	now := e.now()
	out := make([]SessionInfo, len(sessions))
	for i, s := range sessions {
		out[i] = sessionInfo(s, now)
	}
	return out, nil
}

// StopRun removes the session from tracking and suppresses its pending
// expiry, so no completion broadcast follows a successful stop. Only the
// administrator or the session's owner may stop it.
//
// Stopping is local bookkeeping only: worker endpoints receive no signal
// and their in-flight work runs out the duration they were handed.
func (e *Engine) StopRun(_ context.Context, identity, sessionID string) error {
	if e == nil || e.registry == nil {
		return ErrEngineNotReady
	}
	if !e.hasAccess(identity) {
		return fmt.Errorf("%w: no principal record for %q", ErrUnauthorized, identity)
	}
	if sessionID == "" {
		return fmt.Errorf("%w: session id is required", ErrValidation)
	}

	sess, ok := e.registry.Get(sessionID)
	if !ok {
		return fmt.Errorf("%w: no active session %q", ErrSessionNotFound, sessionID)
	}
	if !e.IsAdmin(identity) && sess.Owner != identity {
		return fmt.Errorf("%w: session %q belongs to another principal", ErrForbidden, sessionID)
	}

	// The session may complete naturally between the ownership check and
	// the removal; the completion wins and the stop reports not-found.
	if _, ok := e.registry.Remove(sessionID); !ok {
		return fmt.Errorf("%w: no active session %q", ErrSessionNotFound, sessionID)
	}

	e.metricInc(MetricSessionCancelled)
	return nil
}

// ActiveSessions returns the total number of tracked sessions.
func (e *Engine) ActiveSessions() int {
	if e == nil || e.registry == nil {
		return 0
	}
	return e.registry.Len()
}

func sessionInfo(s registry.Session, now time.Time) SessionInfo {
	return SessionInfo{
		ID:               s.ID,
		Owner:            s.Owner,
		Host:             s.Host,
		Port:             s.Port,
		DurationSeconds:  int(s.Duration / time.Second),
		ElapsedSeconds:   int(s.Elapsed(now) / time.Second),
		RemainingSeconds: int(s.Remaining(now) / time.Second),
		Method:           s.Method,
		StartedAt:        s.StartedAt,
	}
}
