package rest

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/nerrad567/gray-logic-edge/internal/transport"
)

func newServer(t *testing.T, h http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func TestGet_StatusMapping(t *testing.T) {
	tests := []struct {
		status  int
		wantErr error
	}{
		{http.StatusOK, nil},
		{http.StatusNoContent, nil},
		{http.StatusNotModified, ErrNotModified},
		{http.StatusBadRequest, ErrBadRequest},
		{http.StatusNotFound, ErrNotFound},
		{http.StatusInternalServerError, ErrServerError},
		{http.StatusServiceUnavailable, ErrServerError},
		{http.StatusUnauthorized, ErrUnexpectedStatus},
		{http.StatusTeapot, ErrUnexpectedStatus},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			})
			c := New(transport.BuildHTTPConfig(srv.URL, "", ""))

			resp, err := c.Get(context.Background(), "/x")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Get() error = %v, want %v", err, tt.wantErr)
			}
			if resp == nil || resp.StatusCode != tt.status {
				t.Errorf("Get() response = %+v, want status %d", resp, tt.status)
			}
		})
	}
}

func TestGet_BasicAuthAndPath(t *testing.T) {
	var gotUser, gotPass, gotPath string
	var gotAuth bool
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotUser, gotPass, gotAuth = r.BasicAuth()
		gotPath = r.URL.Path
		w.Header().Set("X-Edge", "1")
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	c := New(transport.BuildHTTPConfig(srv.URL+"/", "edge", "s3cret"))
	resp, err := c.Get(context.Background(), "api/v1/ping")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	if !gotAuth || gotUser != "edge" || gotPass != "s3cret" {
		t.Errorf("basic auth = %q/%q (%v), want edge/s3cret", gotUser, gotPass, gotAuth)
	}
	if gotPath != "/api/v1/ping" {
		t.Errorf("path = %q, want /api/v1/ping", gotPath)
	}
	if string(resp.Body) != `{"ok":true}` {
		t.Errorf("body = %s", resp.Body)
	}
	if resp.Header.Get("X-Edge") != "1" {
		t.Error("response header not propagated")
	}
}

func TestGet_NoAuthWithoutUsername(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			w.WriteHeader(http.StatusBadRequest)
		}
	})

	c := New(transport.BuildHTTPConfig(srv.URL, "", ""))
	if _, err := c.Get(context.Background(), "/"); err != nil {
		t.Errorf("Get() error = %v", err)
	}
}

func TestGet_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(transport.BuildHTTPConfig(url, "", ""), WithTimeout(time.Second))
	_, err := c.Get(context.Background(), "/")
	if !errors.Is(err, ErrRequestFailed) {
		t.Errorf("Get() error = %v, want ErrRequestFailed", err)
	}
}

func TestGet_ContextCancelled(t *testing.T) {
	srv := newServer(t, func(http.ResponseWriter, *http.Request) {})
	c := New(transport.BuildHTTPConfig(srv.URL, "", ""))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Get(ctx, "/")
	if !errors.Is(err, ErrRequestFailed) || !errors.Is(err, context.Canceled) {
		t.Errorf("Get() error = %v, want ErrRequestFailed wrapping context.Canceled", err)
	}
}

func TestGet_BodyLimit(t *testing.T) {
	srv := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("a", 64)))
	})

	c := New(transport.BuildHTTPConfig(srv.URL, "", ""), WithMaxBodySize(16))
	if _, err := c.Get(context.Background(), "/"); !errors.Is(err, ErrResponseTooLarge) {
		t.Errorf("Get() error = %v, want ErrResponseTooLarge", err)
	}
}

func TestEndpoint(t *testing.T) {
	c := New(transport.BuildHTTPConfig("https://cloud.example/base/", "", ""))
	tests := []struct {
		path string
		want string
	}{
		{"", "https://cloud.example/base"},
		{"/a", "https://cloud.example/base/a"},
		{"a/b", "https://cloud.example/base/a/b"},
		{"//a", "https://cloud.example/base/a"},
	}
	for _, tt := range tests {
		if got := c.endpoint(tt.path); got != tt.want {
			t.Errorf("endpoint(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestWithHTTPClient(t *testing.T) {
	hc := &http.Client{}
	c := New(transport.BuildHTTPConfig("http://x", "", ""), WithHTTPClient(hc), WithHTTPClient(nil))
	if c.httpClient != hc {
		t.Error("WithHTTPClient did not replace the client")
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestCheckIn(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantChanged bool
		wantMessage string
		wantErr     error
	}{
		{"message", http.StatusOK, `{"message":"welcome back"}`, true, "welcome back", nil},
		{"empty body", http.StatusOK, "", true, "", nil},
		{"no message member", http.StatusOK, `{"ttl":60}`, true, "", nil},
		{"not modified", http.StatusNotModified, "", false, "", nil},
		{"server error", http.StatusBadGateway, "", false, "", ErrServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})
			c := New(transport.BuildHTTPConfig(srv.URL, "edge", "pw"))

			got, err := c.CheckIn(context.Background(), "/api/v1/devices/checkin")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("CheckIn() error = %v, want %v", err, tt.wantErr)
			}
			if got.Changed != tt.wantChanged || got.Message != tt.wantMessage {
				t.Errorf("CheckIn() = %+v, want changed=%v message=%q", got, tt.wantChanged, tt.wantMessage)
			}
		})
	}
}
