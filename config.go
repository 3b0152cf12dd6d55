package goLoad

import (
	"errors"
	"time"
)

// Config carries every engine tuning knob. Configure it before
// [Builder.Build]; the engine treats it as immutable afterwards.
type Config struct {
	Registry RegistryConfig
	Dispatch DispatchConfig
	Notify   NotifyConfig
	Metrics  MetricsConfig
	Admin    AdminConfig
}

/*
====================================
REGISTRY CONFIG
====================================
*/

// RegistryConfig tunes session tracking.
type RegistryConfig struct {
	// CompletionGrace is added to every session's duration before the
	// expiry timer is armed, letting endpoint-side work wind down before
	// the run is reported complete.
	CompletionGrace time.Duration
}

/*
====================================
DISPATCH CONFIG
====================================
*/

// DispatchConfig tunes the endpoint fan-out.
type DispatchConfig struct {
	// SignedTokenTTL bounds the lifetime of credentials minted for
	// endpoints configured with a signing key.
	SignedTokenTTL time.Duration
}

/*
====================================
NOTIFY CONFIG
====================================
*/

// NotifyConfig tunes the broadcast dispatcher.
type NotifyConfig struct {
	Enabled    bool
	BufferSize int
	// DropIfFull makes Emit drop (and count) events when the buffer is
	// full instead of blocking the request path.
	DropIfFull bool
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig toggles engine counters.
type MetricsConfig struct {
	Enabled bool
}

/*
====================================
ADMIN CONFIG
====================================
*/

// AdminConfig names the administrative identity. The administrator needs no
// principal record: it may mutate the directory, enumerate every session,
// and stop any run, but it launches runs only under a record of its own.
type AdminConfig struct {
	Identity string
}

func defaultConfig() Config {
	return Config{
		Registry: RegistryConfig{
			CompletionGrace: 2 * time.Second,
		},
		Dispatch: DispatchConfig{
			SignedTokenTTL: time.Minute,
		},
		Notify: NotifyConfig{
			Enabled:    true,
			BufferSize: 64,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

func cloneConfig(cfg Config) Config {
	// All sections are value types today; the clone exists so additions
	// with reference fields keep Builder.Build from aliasing caller state.
	return cfg
}

// Validate rejects configurations the engine cannot run with.
func (c Config) Validate() error {
	if c.Registry.CompletionGrace < 0 {
		return errors.New("registry completion grace must not be negative")
	}
	if c.Dispatch.SignedTokenTTL < 0 {
		return errors.New("dispatch signed token TTL must not be negative")
	}
	if c.Notify.Enabled && c.Notify.BufferSize < 0 {
		return errors.New("notify buffer size must not be negative")
	}
	return nil
}
