package dispatch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type capturedCall struct {
	token  string
	target string
	port   string
	time   string
	method string
}

func captureServer(t *testing.T, status int, calls *atomic.Int64, last *capturedCall) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if last != nil {
			q := r.URL.Query()
			*last = capturedCall{
				token:  q.Get("token"),
				target: q.Get("target"),
				port:   q.Get("port"),
				time:   q.Get("time"),
				method: q.Get("method"),
			}
		}
		w.WriteHeader(status)
	}))
}

func testJob() Job {
	return Job{
		SessionID:       "sess-1",
		Target:          "198.51.100.7",
		Port:            8080,
		DurationSeconds: 30,
		Method:          "GET",
	}
}

func TestDispatchAllSucceed(t *testing.T) {
	var calls atomic.Int64
	var last capturedCall
	srv1 := captureServer(t, http.StatusOK, &calls, &last)
	defer srv1.Close()
	srv2 := captureServer(t, http.StatusNoContent, &calls, nil)
	defer srv2.Close()

	d, err := New(srv1.Client(), []Endpoint{
		{BaseURL: srv1.URL, Token: "tok-1"},
		{BaseURL: srv2.URL, Token: "tok-2"},
	}, 0)
	if err != nil {
		t.Fatalf("new failed: %v", err)
	}

	if err := d.Dispatch(context.Background(), testJob()); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 endpoint calls, got %d", calls.Load())
	}
	want := capturedCall{token: "tok-1", target: "198.51.100.7", port: "8080", time: "30", method: "GET"}
	if last != want {
		t.Fatalf("call parameters = %+v, want %+v", last, want)
	}
}

func TestDispatchSingleFailureFailsWhole(t *testing.T) {
	var calls atomic.Int64
	ok := captureServer(t, http.StatusOK, &calls, nil)
	defer ok.Close()
	bad := captureServer(t, http.StatusForbidden, &calls, nil)
	defer bad.Close()

	d, err := New(nil, []Endpoint{
		{Name: "worker-1", BaseURL: ok.URL, Token: "t"},
		{Name: "worker-2", BaseURL: bad.URL, Token: "t"},
	}, 0)
	if err != nil {
		t.Fatalf("new failed: %v", err)
	}

	err = d.Dispatch(context.Background(), testJob())
	if err == nil {
		t.Fatal("expected dispatch error")
	}

	var derr *Error
	if !errors.As(err, &derr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if len(derr.Failures) != 1 || derr.Failures[0].Endpoint != "worker-2" {
		t.Fatalf("unexpected failures: %+v", derr.Failures)
	}
	if len(derr.Succeeded) != 1 || derr.Succeeded[0] != "worker-1" {
		t.Fatalf("unexpected succeeded list: %+v", derr.Succeeded)
	}
}

func TestDispatchUnreachableEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // deliberately dead

	d, err := New(nil, []Endpoint{{Name: "dead", BaseURL: srv.URL, Token: "t"}}, 0)
	if err != nil {
		t.Fatalf("new failed: %v", err)
	}

	err = d.Dispatch(context.Background(), testJob())
	var derr *Error
	if !errors.As(err, &derr) || len(derr.Failures) != 1 {
		t.Fatalf("expected one failure, got %v", err)
	}
}

func TestDispatchSignedCredential(t *testing.T) {
	key := []byte("0123456789abcdef0123456789abcdef")

	var calls atomic.Int64
	var last capturedCall
	srv := captureServer(t, http.StatusOK, &calls, &last)
	defer srv.Close()

	d, err := New(srv.Client(), []Endpoint{{BaseURL: srv.URL, SigningKey: key}}, 5*time.Minute)
	if err != nil {
		t.Fatalf("new failed: %v", err)
	}
	if err := d.Dispatch(context.Background(), testJob()); err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}

	var claims jobClaims
	parsed, err := jwt.ParseWithClaims(last.token, &claims, func(*jwt.Token) (any, error) {
		return key, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !parsed.Valid {
		t.Fatalf("minted token invalid: %v", err)
	}
	if claims.Target != "198.51.100.7" || claims.Port != 8080 || claims.DurationSeconds != 30 || claims.Method != "GET" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.ID != "sess-1" {
		t.Fatalf("token id = %q, want session id", claims.ID)
	}
}

func TestNewValidatesEndpoints(t *testing.T) {
	if _, err := New(nil, nil, 0); err == nil {
		t.Fatal("empty endpoint set accepted")
	}
	if _, err := New(nil, []Endpoint{{BaseURL: "not a url", Token: "t"}}, 0); err == nil {
		t.Fatal("invalid base URL accepted")
	}
	if _, err := New(nil, []Endpoint{{BaseURL: "http://worker.example"}}, 0); err == nil {
		t.Fatal("endpoint without credential accepted")
	}
}
