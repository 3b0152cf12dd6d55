package goLoad

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MrEthical07/goLoad/dispatch"
	"github.com/MrEthical07/goLoad/principal"
	"github.com/MrEthical07/goLoad/registry"
)

const (
	testAdmin = "admin"
	testStart = 1_767_000_000 // engine test epoch, arbitrary
)

type memStore struct {
	mu       sync.Mutex
	set      principal.Set
	saves    int
	failSave bool
}

func (m *memStore) Load(context.Context) (principal.Set, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.set.Clone(), nil
}

func (m *memStore) Save(_ context.Context, set principal.Set) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.failSave {
		return errors.New("save rejected")
	}
	m.set = set
	return nil
}

type testEnv struct {
	engine *Engine
	clock  *registry.ManualClock
	sink   *ChannelSink
	store  *memStore

	endpointCalls *atomic.Int32
	cleanup       []func()
}

func (env *testEnv) close() {
	env.engine.Close()
	for _, f := range env.cleanup {
		f()
	}
}

// events drains everything the sink received so far. Call engine.Close (or
// env.close) first so queued events have been flushed through the
// dispatcher.
func (env *testEnv) events() []NotifyEvent {
	var out []NotifyEvent
	for {
		select {
		case ev := <-env.sink.Events():
			out = append(out, ev)
		default:
			return out
		}
	}
}

func newTestEnv(t *testing.T, mutate func(*Builder)) *testEnv {
	t.Helper()

	env := &testEnv{
		clock: registry.NewManualClock(time.Unix(testStart, 0).UTC()),
		sink:  NewChannelSink(64),
		store: &memStore{},
	}

	var calls atomic.Int32
	env.endpointCalls = &calls
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusOK)
	})
	srv1 := httptest.NewServer(handler)
	srv2 := httptest.NewServer(handler)
	env.cleanup = append(env.cleanup, srv1.Close, srv2.Close)

	cfg := defaultConfig()
	cfg.Registry.CompletionGrace = 0

	b := New().
		WithConfig(cfg).
		WithAdminIdentity(testAdmin).
		WithEndpoints([]dispatch.Endpoint{
			{Name: "worker-1", BaseURL: srv1.URL, Token: "tok-1"},
			{Name: "worker-2", BaseURL: srv2.URL, Token: "tok-2"},
		}).
		WithPrincipalStore(env.store).
		WithNotifySink(env.sink).
		WithClock(env.clock)
	if mutate != nil {
		mutate(b)
	}

	engine, err := b.Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	env.engine = engine
	return env
}

func seedPrincipal(t *testing.T, env *testEnv, identity string, rec principal.Record) {
	t.Helper()
	if err := env.engine.UpsertPrincipal(context.Background(), testAdmin, identity, rec); err != nil {
		t.Fatalf("seed principal %s: %v", identity, err)
	}
}

func standardPrincipal() principal.Record {
	return principal.Record{
		Token:              "tok-alice",
		MaxDurationSeconds: 60,
		ConcurrencyLimit:   1,
	}
}

func runRequest(identity string, seconds int) RunRequest {
	return RunRequest{
		Identity:        identity,
		Host:            "198.51.100.7",
		Port:            8080,
		DurationSeconds: seconds,
		Method:          "GET",
	}
}
