package goLoad

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/MrEthical07/goLoad/principal"
)

// Authorize returns the identity's principal record or ErrUnauthorized.
func (e *Engine) Authorize(identity string) (principal.Record, error) {
	if e == nil || e.directory == nil {
		return principal.Record{}, ErrEngineNotReady
	}
	rec, ok := e.directory.Lookup(identity)
	if !ok {
		return principal.Record{}, fmt.Errorf("%w: no principal record for %q", ErrUnauthorized, identity)
	}
	return rec, nil
}

// IsExpired reports whether the identity's expiry date is strictly past.
func (e *Engine) IsExpired(identity string) (bool, error) {
	rec, err := e.Authorize(identity)
	if err != nil {
		return false, err
	}
	return rec.Expired(e.now()), nil
}

// RemainingValidity reports how much longer the identity's credential is
// honored, floored to whole days and never negative.
func (e *Engine) RemainingValidity(identity string) (Validity, error) {
	rec, err := e.Authorize(identity)
	if err != nil {
		return Validity{}, err
	}
	return validity(rec, e.now()), nil
}

// PrincipalStatus summarizes the identity's quotas and current usage.
func (e *Engine) PrincipalStatus(identity string) (*PrincipalStatus, error) {
	rec, err := e.Authorize(identity)
	if err != nil {
		return nil, err
	}
	return &PrincipalStatus{
		Identity:           identity,
		MaxDurationSeconds: rec.MaxDurationSeconds,
		ConcurrencyLimit:   rec.ConcurrencyLimit,
		ActiveSessions:     e.registry.CountOwned(identity),
		Validity:           validity(rec, e.now()),
		Endpoints:          e.dispatcher.Endpoints(),
	}, nil
}

// Principals enumerates every record, sorted by identity. Administrative.
func (e *Engine) Principals(requester string) ([]PrincipalStatus, error) {
	if e == nil || e.directory == nil {
		return nil, ErrEngineNotReady
	}
	if !e.IsAdmin(requester) {
		return nil, fmt.Errorf("%w: administrative command", ErrForbidden)
	}

	set := e.directory.All()
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	now := e.now()
	out := make([]PrincipalStatus, len(ids))
	for i, id := range ids {
		rec := set[id]
		out[i] = PrincipalStatus{
			Identity:           id,
			MaxDurationSeconds: rec.MaxDurationSeconds,
			ConcurrencyLimit:   rec.ConcurrencyLimit,
			ActiveSessions:     e.registry.CountOwned(id),
			Validity:           validity(rec, now),
			Endpoints:          e.dispatcher.Endpoints(),
		}
	}
	return out, nil
}

// UpsertPrincipal inserts or fully replaces a record. Administrative. The
// mutation takes effect immediately for subsequent authorization checks;
// when the save hook fails the mutation still sticks in memory and the
// error is surfaced wrapped in ErrPersistFailed so the caller can report
// degraded persistence.
func (e *Engine) UpsertPrincipal(ctx context.Context, requester, identity string, rec principal.Record) error {
	if e == nil || e.directory == nil {
		return ErrEngineNotReady
	}
	if !e.IsAdmin(requester) {
		return fmt.Errorf("%w: administrative command", ErrForbidden)
	}
	if err := validateRecord(identity, rec); err != nil {
		return err
	}

	if err := e.directory.Upsert(ctx, identity, rec); err != nil {
		e.metricInc(MetricPersistFailure)
		return fmt.Errorf("%w: %w", ErrPersistFailed, err)
	}
	e.metricInc(MetricPrincipalUpserted)
	return nil
}

// Principal update field names accepted by UpdatePrincipalField.
const (
	FieldToken            = "token"
	FieldMaxDuration      = "max_duration"
	FieldConcurrencyLimit = "concurrency_limit"
	FieldExpiryDays       = "expiry_days"
)

// UpdatePrincipalField updates a single attribute of an existing record.
// Administrative. expiry_days takes a day count from now and stores the
// resulting absolute date.
func (e *Engine) UpdatePrincipalField(ctx context.Context, requester, identity, field, value string) error {
	if e == nil || e.directory == nil {
		return ErrEngineNotReady
	}
	if !e.IsAdmin(requester) {
		return fmt.Errorf("%w: administrative command", ErrForbidden)
	}

	rec, ok := e.directory.Lookup(identity)
	if !ok {
		return fmt.Errorf("%w: %q", ErrPrincipalNotFound, identity)
	}

	switch field {
	case FieldToken:
		if value == "" {
			return fmt.Errorf("%w: token must not be empty", ErrValidation)
		}
		rec.Token = value
	case FieldMaxDuration:
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("%w: %s must be a positive integer", ErrValidation, FieldMaxDuration)
		}
		rec.MaxDurationSeconds = n
	case FieldConcurrencyLimit:
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("%w: %s must be a positive integer", ErrValidation, FieldConcurrencyLimit)
		}
		rec.ConcurrencyLimit = n
	case FieldExpiryDays:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("%w: %s must be a non-negative integer", ErrValidation, FieldExpiryDays)
		}
		rec.Expires = principal.ExpiryFromDays(e.now(), n)
	default:
		return fmt.Errorf("%w: unknown field %q, valid fields: %s, %s, %s, %s",
			ErrValidation, field, FieldToken, FieldMaxDuration, FieldConcurrencyLimit, FieldExpiryDays)
	}

	if err := e.directory.Upsert(ctx, identity, rec); err != nil {
		e.metricInc(MetricPersistFailure)
		return fmt.Errorf("%w: %w", ErrPersistFailed, err)
	}
	e.metricInc(MetricPrincipalUpserted)
	return nil
}

// RemovePrincipal deletes a record. Administrative. Active sessions owned
// by the removed principal keep running until they expire or are stopped.
func (e *Engine) RemovePrincipal(ctx context.Context, requester, identity string) error {
	if e == nil || e.directory == nil {
		return ErrEngineNotReady
	}
	if !e.IsAdmin(requester) {
		return fmt.Errorf("%w: administrative command", ErrForbidden)
	}

	existed, err := e.directory.Remove(ctx, identity)
	if !existed {
		return fmt.Errorf("%w: %q", ErrPrincipalNotFound, identity)
	}
	if err != nil {
		e.metricInc(MetricPersistFailure)
		return fmt.Errorf("%w: %w", ErrPersistFailed, err)
	}
	e.metricInc(MetricPrincipalRemoved)
	return nil
}

func validateRecord(identity string, rec principal.Record) error {
	switch {
	case identity == "":
		return fmt.Errorf("%w: identity is required", ErrValidation)
	case rec.Token == "":
		return fmt.Errorf("%w: token is required", ErrValidation)
	case rec.MaxDurationSeconds <= 0:
		return fmt.Errorf("%w: max duration must be a positive number of seconds", ErrValidation)
	case rec.ConcurrencyLimit <= 0:
		return fmt.Errorf("%w: concurrency limit must be a positive integer", ErrValidation)
	}
	if rec.Expires != "" {
		if _, err := time.Parse(principal.DateFormat, rec.Expires); err != nil {
			return fmt.Errorf("%w: expiry date must use %s", ErrValidation, principal.DateFormat)
		}
	}
	return nil
}

func validity(rec principal.Record, now time.Time) Validity {
	days, bounded := rec.DaysRemaining(now)
	return Validity{
		Expired:   rec.Expired(now),
		Unbounded: !bounded,
		Days:      days,
		Expires:   rec.Expires,
	}
}
