package goLoad

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/MrEthical07/goLoad/catalog"
	"github.com/MrEthical07/goLoad/dispatch"
	"github.com/MrEthical07/goLoad/principal"
	"github.com/MrEthical07/goLoad/registry"
)

// Builder assembles an [Engine]. Configure it with the With* methods and
// call Build exactly once.
type Builder struct {
	config Config

	store     principal.Store
	methods   []catalog.Method
	endpoints []dispatch.Endpoint
	sink      NotifySink
	client    *http.Client
	clock     registry.Clock

	built bool
}

// New creates a Builder with default configuration.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the full configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithPrincipalStore sets the persistence backend for principal records.
// Without a store the directory is memory-only.
func (b *Builder) WithPrincipalStore(store principal.Store) *Builder {
	b.store = store
	return b
}

// WithMethods replaces the traffic method catalog. Without it the built-in
// default set is loaded.
func (b *Builder) WithMethods(methods []catalog.Method) *Builder {
	b.methods = methods
	return b
}

// WithEndpoints sets the worker endpoints every run fans out to. At least
// one endpoint is required.
func (b *Builder) WithEndpoints(endpoints []dispatch.Endpoint) *Builder {
	b.endpoints = endpoints
	return b
}

// WithNotifySink sets the broadcast destination for run start/completion
// events.
func (b *Builder) WithNotifySink(sink NotifySink) *Builder {
	b.sink = sink
	return b
}

// WithHTTPClient sets the client used for endpoint calls, carrying whatever
// timeout policy the deployment wants. Defaults to http.DefaultClient.
func (b *Builder) WithHTTPClient(client *http.Client) *Builder {
	b.client = client
	return b
}

// WithClock replaces the registry clock. Tests use this to drive expiry
// deterministically.
func (b *Builder) WithClock(clock registry.Clock) *Builder {
	b.clock = clock
	return b
}

// WithCompletionGrace sets the delay added to every session's duration
// before its expiry timer fires.
func (b *Builder) WithCompletionGrace(d time.Duration) *Builder {
	b.config.Registry.CompletionGrace = d
	return b
}

// WithAdminIdentity names the administrative identity.
func (b *Builder) WithAdminIdentity(identity string) *Builder {
	b.config.Admin.Identity = identity
	return b
}

// WithMetricsEnabled toggles engine counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// Build validates the configuration, loads the principal directory, and
// returns the assembled engine. A principal-load failure is not fatal; the
// engine starts with an empty directory.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}
	b.built = true

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if len(b.endpoints) == 0 {
		return nil, errors.New("at least one dispatch endpoint required")
	}
	dispatcher, err := dispatch.New(b.client, b.endpoints, cfg.Dispatch.SignedTokenTTL)
	if err != nil {
		return nil, err
	}

	methods := b.methods
	if len(methods) == 0 {
		methods = catalog.Default()
	}
	cat, err := catalog.New(methods)
	if err != nil {
		return nil, err
	}

	directory := principal.NewDirectory(b.store)
	if err := directory.Load(context.Background()); err != nil {
		log.Printf("goload: principal load failed, starting with empty directory: %v", err)
	}

	engine := &Engine{
		config:     cfg,
		directory:  directory,
		catalog:    cat,
		dispatcher: dispatcher,
		notify:     newNotifyDispatcher(cfg.Notify, b.sink),
		metrics:    newMetrics(cfg.Metrics),
	}
	engine.registry = registry.New(b.clock, cfg.Registry.CompletionGrace, engine.onSessionExpired)

	return engine, nil
}
