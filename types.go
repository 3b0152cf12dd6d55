package goLoad

import "time"

// RunRequest asks the engine to launch one time-bounded run on behalf of
// the issuing identity.
type RunRequest struct {
	Identity        string
	Host            string
	Port            int
	DurationSeconds int
	Method          string
}

// RunResult describes a successfully activated run.
type RunResult struct {
	SessionID       string
	Host            string
	Port            int
	DurationSeconds int
	// Method is the canonical catalog name, which may differ in case from
	// the requested spelling.
	Method string
	// Endpoints is the number of worker endpoints the run was dispatched to.
	Endpoints int
}

// SessionInfo is a point-in-time snapshot of one active session as rendered
// to callers. Elapsed and remaining are floored to whole seconds; remaining
// never goes negative.
type SessionInfo struct {
	ID               string
	Owner            string
	Host             string
	Port             int
	DurationSeconds  int
	ElapsedSeconds   int
	RemainingSeconds int
	Method           string
	StartedAt        time.Time
}

// Validity reports how much longer a principal's credential is honored.
type Validity struct {
	// Expired is true when the expiry date is strictly past.
	Expired bool
	// Unbounded is true when no expiry date is set.
	Unbounded bool
	// Days is the whole days of validity left; zero when expired.
	Days int
	// Expires is the raw expiry date, empty when unbounded.
	Expires string
}

// PrincipalStatus is the account summary rendered for a principal.
type PrincipalStatus struct {
	Identity           string
	MaxDurationSeconds int
	ConcurrencyLimit   int
	ActiveSessions     int
	Validity           Validity
	Endpoints          int
}
