package principal

import (
	"context"
	"time"
)

// DateFormat is the fixed calendar format for expiry dates. The value must
// round-trip unchanged through every Store implementation.
const DateFormat = "2006-01-02"

// Record is the authorization record of one principal. Records are replaced
// whole on every mutation; there is no per-field versioning.
type Record struct {
	// Token is the principal's opaque credential string.
	Token string `json:"token"`
	// MaxDurationSeconds is the upper bound on any single run's duration.
	MaxDurationSeconds int `json:"max_duration_seconds"`
	// ConcurrencyLimit is the maximum number of simultaneously active
	// sessions the principal may own.
	ConcurrencyLimit int `json:"concurrency_limit"`
	// Expires is the principal's expiry date in DateFormat, or empty when
	// the principal never expires.
	Expires string `json:"expires,omitempty"`
}

// Expired reports whether the record's expiry date is strictly before the
// current calendar date. Records without an expiry date never expire; a
// malformed date fails closed and counts as expired.
func (r Record) Expired(now time.Time) bool {
	if r.Expires == "" {
		return false
	}
	expiry, err := time.Parse(DateFormat, r.Expires)
	if err != nil {
		return true
	}
	nowDate := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return nowDate.After(expiry)
}

// DaysRemaining reports the whole days until the record expires. The bool is
// false when no expiry date is set. Expired records report zero, never a
// negative count.
func (r Record) DaysRemaining(now time.Time) (int, bool) {
	if r.Expires == "" {
		return 0, false
	}
	expiry, err := time.Parse(DateFormat, r.Expires)
	if err != nil {
		return 0, true
	}
	days := int(expiry.Sub(now.UTC()).Hours() / 24)
	if days < 0 {
		days = 0
	}
	return days, true
}

// ExpiryFromDays renders the expiry date that lies the given number of days
// from now, in DateFormat.
func ExpiryFromDays(now time.Time, days int) string {
	return now.UTC().AddDate(0, 0, days).Format(DateFormat)
}

// Set is the full principal record set keyed by identity.
type Set map[string]Record

// Clone returns an independent copy of the set.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for id, rec := range s {
		out[id] = rec
	}
	return out
}

// Store persists a principal Set. Load runs once at startup; Save runs after
// every administrative mutation with the full replacement set.
type Store interface {
	Load(ctx context.Context) (Set, error)
	Save(ctx context.Context, set Set) error
}
