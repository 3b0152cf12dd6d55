package registry

import (
	"errors"
	"sort"
	"sync"
	"time"
)

// ErrDuplicateID is returned by Activate when the identifier is already
// tracked. Identifiers are expected to be unique for the process lifetime.
var ErrDuplicateID = errors.New("session id already tracked")

// ErrClosed is returned by Activate after the registry has been closed.
var ErrClosed = errors.New("registry closed")

// Session is one tracked, time-bounded run owned by a principal.
//
// The registry holds the only copy of a live session; callers always receive
// value snapshots, never references into the registry's state.
type Session struct {
	ID        string
	Owner     string
	Host      string
	Port      int
	Duration  time.Duration
	Method    string
	StartedAt time.Time
}

// Elapsed reports how long the session has been running at the given
// instant, floored to whole seconds and never negative.
func (s Session) Elapsed(now time.Time) time.Duration {
	elapsed := now.Sub(s.StartedAt)
	if elapsed < 0 {
		return 0
	}
	return elapsed.Truncate(time.Second)
}

// Remaining reports how much of the session's duration is left at the given
// instant, floored to whole seconds and never negative.
func (s Session) Remaining(now time.Time) time.Duration {
	remaining := s.Duration - now.Sub(s.StartedAt)
	if remaining < 0 {
		return 0
	}
	return remaining.Truncate(time.Second)
}

type tracked struct {
	session Session
	timer   Timer
}

// Registry tracks active sessions and schedules their expiry. A session
// exists in the registry from Activate until its duration (plus the
// completion grace) elapses or it is removed, never before and never after.
type Registry struct {
	clock    Clock
	grace    time.Duration
	onExpire func(Session)

	mu       sync.Mutex
	closed   bool
	sessions map[string]*tracked
}

// New creates a Registry. onExpire is invoked once for every session whose
// timer fires while the session is still tracked; it runs outside the
// registry lock and may be nil. grace is added to every session's duration
// before its expiry timer is armed, giving endpoint-side work a moment to
// wind down before the session is reported complete.
func New(clock Clock, grace time.Duration, onExpire func(Session)) *Registry {
	if clock == nil {
		clock = RealClock()
	}
	if grace < 0 {
		grace = 0
	}
	return &Registry{
		clock:    clock,
		grace:    grace,
		onExpire: onExpire,
		sessions: make(map[string]*tracked),
	}
}

// Clock returns the clock the registry schedules against.
func (r *Registry) Clock() Clock {
	return r.clock
}

// Activate inserts the session and arms its one-shot expiry timer. Callers
// invoke it only after the dispatch side effect has fully succeeded.
func (r *Registry) Activate(s Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrClosed
	}
	if _, exists := r.sessions[s.ID]; exists {
		return ErrDuplicateID
	}

	id := s.ID
	r.sessions[id] = &tracked{
		session: s,
		timer:   r.clock.AfterFunc(s.Duration+r.grace, func() { r.expire(id) }),
	}
	return nil
}

// Remove deletes the session and suppresses its pending expiry timer. The
// returned bool is false when no session with that identifier is tracked,
// which callers cannot distinguish from one that already completed.
func (r *Registry) Remove(id string) (Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tr, ok := r.sessions[id]
	if !ok {
		return Session{}, false
	}
	delete(r.sessions, id)
	tr.timer.Stop()
	return tr.session, true
}

// Get returns a snapshot of the tracked session with the given identifier.
func (r *Registry) Get(id string) (Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	tr, ok := r.sessions[id]
	if !ok {
		return Session{}, false
	}
	return tr.session, true
}

// CountOwned returns the number of active sessions owned by the identity.
// Admission checks read this without reserving a slot; dispatch must not run
// under the registry lock, so two overlapping admissions may both pass.
func (r *Registry) CountOwned(owner string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, tr := range r.sessions {
		if tr.session.Owner == owner {
			n++
		}
	}
	return n
}

// List returns a snapshot of every active session, oldest first.
func (r *Registry) List() []Session {
	return r.list(func(Session) bool { return true })
}

// ListOwned returns a snapshot of the identity's active sessions, oldest
// first.
func (r *Registry) ListOwned(owner string) []Session {
	return r.list(func(s Session) bool { return s.Owner == owner })
}

// Len returns the number of active sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Close stops all pending expiry timers and rejects further activations.
// Tracked sessions are discarded without expiry callbacks.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}
	r.closed = true
	for id, tr := range r.sessions {
		tr.timer.Stop()
		delete(r.sessions, id)
	}
}

func (r *Registry) list(keep func(Session) bool) []Session {
	r.mu.Lock()
	out := make([]Session, 0, len(r.sessions))
	for _, tr := range r.sessions {
		if keep(tr.session) {
			out = append(out, tr.session)
		}
	}
	r.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].StartedAt.Before(out[j].StartedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// expire runs when a session's timer fires. Firing for an identifier that
// was already removed is a silent no-op.
func (r *Registry) expire(id string) {
	r.mu.Lock()
	tr, ok := r.sessions[id]
	if !ok || r.closed {
		r.mu.Unlock()
		return
	}
	delete(r.sessions, id)
	r.mu.Unlock()

	if r.onExpire != nil {
		r.onExpire(tr.session)
	}
}
