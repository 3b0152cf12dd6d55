package goLoad

import (
	"context"
	"time"

	"github.com/MrEthical07/goLoad/catalog"
	"github.com/MrEthical07/goLoad/dispatch"
	"github.com/MrEthical07/goLoad/principal"
	"github.com/MrEthical07/goLoad/registry"
)

// Engine is the session and quota core. It is assembled by [Builder.Build]
// and safe for concurrent use afterwards.
type Engine struct {
	config     Config
	directory  *principal.Directory
	catalog    *catalog.Catalog
	registry   *registry.Registry
	dispatcher *dispatch.Dispatcher
	notify     *notifyDispatcher
	metrics    *Metrics
}

// Close stops all pending expiry timers, discards tracked sessions without
// completion events, and drains the notification dispatcher.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.registry != nil {
		e.registry.Close()
	}
	if e.notify != nil {
		e.notify.Close()
	}
}

// MetricsSnapshot returns a copy of every engine counter.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}
	return e.metrics.Snapshot()
}

// NotifyDropped returns the number of broadcast events lost to dispatcher
// backpressure.
func (e *Engine) NotifyDropped() uint64 {
	if e == nil || e.notify == nil {
		return 0
	}
	return e.notify.Dropped()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

// IsAdmin reports whether the identity is the configured administrator.
func (e *Engine) IsAdmin(identity string) bool {
	return e != nil && e.config.Admin.Identity != "" && identity == e.config.Admin.Identity
}

// hasAccess reports whether the identity may issue read commands at all:
// either administrative or present in the directory.
func (e *Engine) hasAccess(identity string) bool {
	if e.IsAdmin(identity) {
		return true
	}
	_, ok := e.directory.Lookup(identity)
	return ok
}

func (e *Engine) now() time.Time {
	return e.registry.Clock().Now()
}

func (e *Engine) emitNotify(ctx context.Context, kind NotifyKind, s registry.Session) {
	if e.notify == nil {
		return
	}
	e.notify.Emit(ctx, NotifyEvent{
		Timestamp:       e.now(),
		Kind:            kind,
		SessionID:       s.ID,
		Identity:        s.Owner,
		Host:            s.Host,
		Port:            s.Port,
		DurationSeconds: int(s.Duration / time.Second),
		Method:          s.Method,
	})
}

// onSessionExpired runs on the registry's timer path when a session's
// duration elapses while it is still tracked. Cancellation already removed
// the record in the racing case, so this fires at most once per session.
func (e *Engine) onSessionExpired(s registry.Session) {
	e.metricInc(MetricSessionCompleted)
	e.emitNotify(context.Background(), NotifyRunCompleted, s)
}
