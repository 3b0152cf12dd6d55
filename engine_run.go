package goLoad

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/MrEthical07/goLoad/dispatch"
	"github.com/MrEthical07/goLoad/registry"
	"github.com/google/uuid"
)

// Admit checks whether the identity may launch a run of the given duration
// right now. The rejection reasons are evaluated in a fixed order: no
// principal record, expired principal, duration over the principal's
// maximum, concurrency limit reached.
//
// Admission reserves nothing. It is a precondition check the caller makes
// immediately before dispatch, because dispatch is the expensive, fallible
// step and must not hold a slot reservation across the network round trip.
// Two overlapping admissions can therefore both pass and transiently exceed
// the concurrency limit by the number of in-flight races.
func (e *Engine) Admit(_ context.Context, identity string, durationSeconds int) error {
	if e == nil || e.directory == nil || e.registry == nil {
		return ErrEngineNotReady
	}

	rec, ok := e.directory.Lookup(identity)
	if !ok {
		e.metricInc(MetricRunUnauthorized)
		return fmt.Errorf("%w: no principal record for %q", ErrUnauthorized, identity)
	}
	if rec.Expired(e.now()) {
		e.metricInc(MetricRunExpired)
		return fmt.Errorf("%w: access lapsed on %s", ErrPrincipalExpired, rec.Expires)
	}
	if durationSeconds > rec.MaxDurationSeconds {
		e.metricInc(MetricRunDurationLimited)
		return fmt.Errorf("%w: requested %ds exceeds your maximum of %ds",
			ErrDurationLimitExceeded, durationSeconds, rec.MaxDurationSeconds)
	}
	if active := e.registry.CountOwned(identity); active >= rec.ConcurrencyLimit {
		e.metricInc(MetricRunConcurrencyLimited)
		return fmt.Errorf("%w: %d of %d concurrent sessions in use",
			ErrConcurrencyLimitExceeded, active, rec.ConcurrencyLimit)
	}
	return nil
}

// Launch runs the full admission → dispatch → activation flow.
//
// The session is registered only after every endpoint call succeeded; a
// partial dispatch failure leaves no state behind. On success the run is
// tracked until its duration (plus the completion grace) elapses or it is
// stopped, and one start broadcast is emitted.
func (e *Engine) Launch(ctx context.Context, req RunRequest) (*RunResult, error) {
	if e == nil || e.dispatcher == nil || e.registry == nil {
		return nil, ErrEngineNotReady
	}

	if err := e.validateRunRequest(req); err != nil {
		e.metricInc(MetricRunValidationFailed)
		return nil, err
	}

	method, ok := e.catalog.Resolve(req.Method)
	if !ok {
		e.metricInc(MetricRunMethodUnknown)
		return nil, fmt.Errorf("%w: %q is not one of: %s",
			ErrMethodNotFound, req.Method, strings.Join(e.methodNames(), ", "))
	}

	if err := e.Admit(ctx, req.Identity, req.DurationSeconds); err != nil {
		return nil, err
	}

	sessionID := uuid.NewString()
	job := dispatch.Job{
		SessionID:       sessionID,
		Target:          req.Host,
		Port:            req.Port,
		DurationSeconds: req.DurationSeconds,
		Method:          method.Name,
	}
	if err := e.dispatcher.Dispatch(ctx, job); err != nil {
		e.metricInc(MetricDispatchFailure)
		return nil, fmt.Errorf("%w: %w", ErrDispatchFailed, err)
	}

	sess := registry.Session{
		ID:        sessionID,
		Owner:     req.Identity,
		Host:      req.Host,
		Port:      req.Port,
		Duration:  time.Duration(req.DurationSeconds) * time.Second,
		Method:    method.Name,
		StartedAt: e.now(),
	}
	if err := e.registry.Activate(sess); err != nil {
		// UUIDs do not collide in practice; this path means the engine is
		// shutting down or something re-used an identifier.
		return nil, fmt.Errorf("%w: %v", ErrDuplicateSession, err)
	}

	e.metricInc(MetricRunActivated)
	e.emitNotify(ctx, NotifyRunStarted, sess)

	return &RunResult{
		SessionID:       sessionID,
		Host:            req.Host,
		Port:            req.Port,
		DurationSeconds: req.DurationSeconds,
		Method:          method.Name,
		Endpoints:       e.dispatcher.Endpoints(),
	}, nil
}

func (e *Engine) validateRunRequest(req RunRequest) error {
	switch {
	case req.Identity == "":
		return fmt.Errorf("%w: identity is required", ErrValidation)
	case req.Host == "":
		return fmt.Errorf("%w: target host is required", ErrValidation)
	case req.Port < 1 || req.Port > 65535:
		return fmt.Errorf("%w: port %d is outside 1-65535", ErrValidation, req.Port)
	case req.DurationSeconds <= 0:
		return fmt.Errorf("%w: duration must be a positive number of seconds", ErrValidation)
	case req.Method == "":
		return fmt.Errorf("%w: method is required", ErrValidation)
	}
	return nil
}

func (e *Engine) methodNames() []string {
	all := e.catalog.All()
	names := make([]string, len(all))
	for i, m := range all {
		names[i] = m.Name
	}
	return names
}
