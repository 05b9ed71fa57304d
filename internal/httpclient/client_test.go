package httpclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func ctxWithTrace() context.Context {
	return WithTraceID(context.Background(), "req-0001")
}

func TestDoSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/api/v1/things" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get(HeaderTraceID) != "req-0001" {
			t.Errorf("X-Trace-ID = %q", r.Header.Get(HeaderTraceID))
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	c := New("test", server.URL+"/")
	body, err := c.Do(ctxWithTrace(), http.MethodPost, "/api/v1/things", map[string]string{"a": "b"})
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if string(body) != `{"ok":true}` {
		t.Errorf("body = %s", body)
	}
	if c.Name() != "test" {
		t.Errorf("Name() = %q", c.Name())
	}
}

func TestDoProblemDetails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/problem+json")
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"type":"about:blank","title":"Subscriber Not Found","detail":"unknown IMSI","status":404}`))
	}))
	defer server.Close()

	_, err := New("hss", server.URL).Do(ctxWithTrace(), http.MethodPost, "/x", nil)

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T: %v", err, err)
	}
	if !apiErr.IsNotFound() || apiErr.IsServerError() {
		t.Errorf("status classification wrong: %d", apiErr.StatusCode)
	}
	if apiErr.Details == nil || apiErr.Details.Detail != "unknown IMSI" {
		t.Errorf("Details = %+v", apiErr.Details)
	}
}

func TestDoCircuitBreakerOpen(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	c := New("gw", server.URL)
	var err error
	for i := 0; i < 6; i++ {
		_, err = c.Do(ctxWithTrace(), http.MethodDelete, "/x", nil)
	}
	if !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("expected ErrCircuitOpen, got: %v", err)
	}
}

func TestDo501NotCountedByCB(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotImplemented)
	}))
	defer server.Close()

	c := New("gw", server.URL)
	for i := 0; i < 8; i++ {
		_, err := c.Do(ctxWithTrace(), http.MethodPost, "/x", nil)
		if errors.Is(err, ErrCircuitOpen) {
			t.Fatalf("501 should not trigger circuit breaker open (iteration %d)", i)
		}
	}
}

func TestDoConnectionError(t *testing.T) {
	_, err := New("hss", "http://127.0.0.1:59999").Do(ctxWithTrace(), http.MethodPost, "/x", nil)

	var connErr *ConnectionError
	if !errors.As(err, &connErr) {
		t.Fatalf("expected ConnectionError, got %T: %v", err, err)
	}
}

func TestDoDeadline(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(ctxWithTrace(), 20*time.Millisecond)
	defer cancel()

	_, err := New("hss", server.URL).Do(ctx, http.MethodPost, "/x", nil)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected context.DeadlineExceeded, got %v", err)
	}
}

func TestDoTraceIDMissing(t *testing.T) {
	_, err := New("hss", "http://localhost:8080").Do(context.Background(), http.MethodPost, "/x", nil)
	if !errors.Is(err, ErrTraceIDMissing) {
		t.Errorf("expected ErrTraceIDMissing, got: %v", err)
	}
}

func TestConnectionErrorUnwrap(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := &ConnectionError{Cause: cause}
	if !errors.Is(err, cause) {
		t.Error("ConnectionError should unwrap to cause")
	}
	if err.Error() != "connection error: dial tcp: refused" {
		t.Errorf("Error() = %q", err.Error())
	}
}
