// Package dispatch fans a validated run request out to the configured
// worker endpoints and aggregates the outcome all-or-nothing.
//
// Dispatch is fire-and-forget: once a call is issued there is no
// cancellation channel back to the endpoint. Each call hands the endpoint
// its own duration, so endpoint-side work self-terminates; the engine's
// session tracking above this package is local bookkeeping only.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Endpoint is one independently-configured worker target.
type Endpoint struct {
	// Name identifies the endpoint in failure reports. Defaults to the
	// URL's host when empty.
	Name string
	// BaseURL is the endpoint's trigger URL; run parameters are appended
	// as query parameters.
	BaseURL string
	// Token is the endpoint's static credential.
	Token string
	// SigningKey, when set, replaces Token: each call then carries a
	// short-lived HS256 token binding the run parameters.
	SigningKey []byte
}

// Job carries the shared parameters of one fan-out.
type Job struct {
	SessionID       string
	Target          string
	Port            int
	DurationSeconds int
	Method          string
}

// EndpointError is one endpoint's failure inside a fan-out.
type EndpointError struct {
	Endpoint string
	Err      error
}

func (e EndpointError) Error() string {
	return e.Endpoint + ": " + e.Err.Error()
}

func (e EndpointError) Unwrap() error {
	return e.Err
}

// Error aggregates the per-endpoint failures of a fan-out in which at least
// one call failed. Succeeded carries the endpoints whose calls went through;
// their side effects are already in flight and cannot be recalled.
type Error struct {
	Succeeded []string
	Failures  []EndpointError
}

func (e *Error) Error() string {
	parts := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		parts[i] = f.Error()
	}
	return fmt.Sprintf("%d/%d endpoints failed: %s", len(e.Failures), len(e.Failures)+len(e.Succeeded), strings.Join(parts, "; "))
}

// Dispatcher issues one concurrent call per endpoint. It holds no mutable
// state after construction and is safe for concurrent use.
type Dispatcher struct {
	client    *http.Client
	endpoints []Endpoint
	tokenTTL  time.Duration
}

// New validates the endpoint set and creates a Dispatcher. client may be
// nil, in which case http.DefaultClient is used; any call timeout policy
// belongs to the supplied client, not to this package. tokenTTL bounds the
// lifetime of minted signed credentials and defaults to one minute.
func New(client *http.Client, endpoints []Endpoint, tokenTTL time.Duration) (*Dispatcher, error) {
	if len(endpoints) == 0 {
		return nil, errors.New("at least one endpoint required")
	}
	if client == nil {
		client = http.DefaultClient
	}
	if tokenTTL <= 0 {
		tokenTTL = time.Minute
	}

	prepared := make([]Endpoint, len(endpoints))
	for i, ep := range endpoints {
		u, err := url.Parse(ep.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("endpoint %d: invalid base URL %q", i, ep.BaseURL)
		}
		if ep.Token == "" && len(ep.SigningKey) == 0 {
			return nil, fmt.Errorf("endpoint %d: no credential configured", i)
		}
		if ep.Name == "" {
			ep.Name = u.Host
		}
		prepared[i] = ep
	}

	return &Dispatcher{
		client:    client,
		endpoints: prepared,
		tokenTTL:  tokenTTL,
	}, nil
}

// Endpoints returns the number of configured endpoints.
func (d *Dispatcher) Endpoints() int {
	return len(d.endpoints)
}

// Dispatch issues the job to every endpoint concurrently and joins the
// results. It returns nil only when every call succeeded; otherwise an
// *Error with per-endpoint detail. No retries are attempted.
func (d *Dispatcher) Dispatch(ctx context.Context, job Job) error {
	results := make([]error, len(d.endpoints))

	var wg sync.WaitGroup
	for i := range d.endpoints {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = d.call(ctx, d.endpoints[i], job)
		}(i)
	}
	wg.Wait()

	var failures []EndpointError
	var succeeded []string
	for i, err := range results {
		if err != nil {
			failures = append(failures, EndpointError{Endpoint: d.endpoints[i].Name, Err: err})
		} else {
			succeeded = append(succeeded, d.endpoints[i].Name)
		}
	}
	if len(failures) == 0 {
		return nil
	}
	return &Error{Succeeded: succeeded, Failures: failures}
}

func (d *Dispatcher) call(ctx context.Context, ep Endpoint, job Job) error {
	credential := ep.Token
	if len(ep.SigningKey) > 0 {
		minted, err := mintJobToken(ep.SigningKey, job, d.tokenTTL, time.Now())
		if err != nil {
			return fmt.Errorf("mint credential: %w", err)
		}
		credential = minted
	}

	u, err := url.Parse(ep.BaseURL)
	if err != nil {
		return err
	}
	q := u.Query()
	q.Set("token", credential)
	q.Set("target", job.Target)
	q.Set("port", strconv.Itoa(job.Port))
	q.Set("time", strconv.Itoa(job.DurationSeconds))
	q.Set("method", job.Method)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	// Any non-error response counts as success; the body is not interpreted.
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}
