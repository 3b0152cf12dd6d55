package goLoad

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"
)

// NotifyKind discriminates broadcast events.
type NotifyKind string

const (
	// NotifyRunStarted is emitted once per successfully activated run.
	NotifyRunStarted NotifyKind = "run_started"
	// NotifyRunCompleted is emitted when a run's duration elapses while it
	// is still tracked. An explicitly stopped run emits no completion.
	NotifyRunCompleted NotifyKind = "run_completed"
)

// NotifyEvent is one broadcast message. Delivery is best-effort: a sink
// failure never rolls back the session that produced the event.
type NotifyEvent struct {
	Timestamp       time.Time  `json:"timestamp"`
	Kind            NotifyKind `json:"kind"`
	SessionID       string     `json:"session_id"`
	Identity        string     `json:"identity"`
	Host            string     `json:"host"`
	Port            int        `json:"port"`
	DurationSeconds int        `json:"duration_seconds"`
	Method          string     `json:"method"`
}

// NotifySink receives broadcast events. Implementations must be safe for
// concurrent use; Emit should return promptly and respect ctx.
type NotifySink interface {
	Emit(ctx context.Context, event NotifyEvent)
}

// NoOpSink discards every event.
type NoOpSink struct{}

// Emit implements [NotifySink].
func (NoOpSink) Emit(context.Context, NotifyEvent) {}

// ChannelSink forwards events to a buffered channel, for callers that want
// to consume the broadcast stream themselves.
type ChannelSink struct {
	events chan NotifyEvent
}

// NewChannelSink creates a ChannelSink with the given buffer.
func NewChannelSink(buffer int) *ChannelSink {
	if buffer <= 0 {
		buffer = 1
	}
	return &ChannelSink{
		events: make(chan NotifyEvent, buffer),
	}
}

// Emit implements [NotifySink].
func (s *ChannelSink) Emit(ctx context.Context, event NotifyEvent) {
	select {
	case s.events <- event:
	case <-ctx.Done():
	}
}

// Events returns the receive side of the sink.
func (s *ChannelSink) Events() <-chan NotifyEvent {
	return s.events
}

// JSONWriterSink writes one JSON document per event, newline-delimited.
type JSONWriterSink struct {
	writer io.Writer
	mu     sync.Mutex
}

// NewJSONWriterSink creates a JSONWriterSink over w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return &JSONWriterSink{
		writer: w,
	}
}

// Emit implements [NotifySink].
func (s *JSONWriterSink) Emit(_ context.Context, event NotifyEvent) {
	if s == nil || s.writer == nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, _ = s.writer.Write(data)
	_, _ = s.writer.Write([]byte("\n"))
}
