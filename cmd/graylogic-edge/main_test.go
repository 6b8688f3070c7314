package main

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

// writeConfig writes content to a temp file and returns its path.
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return path
}

func TestRun_InvalidConfigPath(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := run(ctx, []string{"--config", "/nonexistent/path/config.yaml"})
	if err == nil {
		t.Fatal("run() should fail with invalid config path")
	}
}

func TestRun_InvalidConfig(t *testing.T) {
	path := writeConfig(t, `
device:
  interface: ""
mqtt:
  enabled: false
`)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := run(ctx, []string{"--config", path}); err == nil {
		t.Fatal("run() should fail validation with an empty interface")
	}
}

func TestRun_UnknownFlag(t *testing.T) {
	if err := run(context.Background(), []string{"--no-such-flag"}); err == nil {
		t.Fatal("run() should fail on an unknown flag")
	}
}

// A missing interface never becomes ready; cancellation must still give a
// clean shutdown.
func TestRun_ShutdownBeforeReady(t *testing.T) {
	path := writeConfig(t, `
device:
  interface: "gl-test-missing0"
network:
  poll_interval: 50ms
  ready_poll_interval: 10ms
mqtt:
  enabled: false
database:
  enabled: false
api:
  enabled: false
logging:
  level: error
  format: text
`)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	if err := run(ctx, []string{"-c", path}); err != nil {
		t.Fatalf("run() error = %v, want nil on shutdown", err)
	}
}

func TestGetConfigPath(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		env     string
		want    string
		wantErr bool
	}{
		{name: "default", want: defaultConfigPath},
		{name: "env", env: "/etc/graylogic/edge.yaml", want: "/etc/graylogic/edge.yaml"},
		{name: "flag", args: []string{"--config", "/tmp/a.yaml"}, want: "/tmp/a.yaml"},
		{name: "short flag", args: []string{"-c", "/tmp/b.yaml"}, want: "/tmp/b.yaml"},
		{name: "flag beats env", args: []string{"--config=/tmp/c.yaml"}, env: "/tmp/env.yaml", want: "/tmp/c.yaml"},
		{name: "unknown flag", args: []string{"--bogus"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(configEnvVar, tt.env)

			got, err := getConfigPath(tt.args)
			if (err != nil) != tt.wantErr {
				t.Fatalf("getConfigPath() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("getConfigPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

type flipReadiness struct {
	ready atomic.Bool
	polls atomic.Int32
	after int32
}

func (f *flipReadiness) IsReady() bool {
	if f.polls.Add(1) > f.after {
		f.ready.Store(true)
	}
	return f.ready.Load()
}

func TestWaitUntilReady(t *testing.T) {
	t.Run("already ready", func(t *testing.T) {
		r := &flipReadiness{after: 0}
		if !waitUntilReady(context.Background(), r, time.Hour) {
			t.Fatal("waitUntilReady() = false, want true")
		}
		if got := r.polls.Load(); got != 1 {
			t.Errorf("polls = %d, want 1", got)
		}
	})

	t.Run("becomes ready", func(t *testing.T) {
		r := &flipReadiness{after: 3}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		if !waitUntilReady(ctx, r, time.Millisecond) {
			t.Fatal("waitUntilReady() = false, want true")
		}
		if got := r.polls.Load(); got != 4 {
			t.Errorf("polls = %d, want 4", got)
		}
	})

	t.Run("cancelled", func(t *testing.T) {
		r := &flipReadiness{after: 1 << 30}
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		if waitUntilReady(ctx, r, time.Millisecond) {
			t.Fatal("waitUntilReady() = true, want false")
		}
	})
}

func TestHealthCheck_NothingEnabled(t *testing.T) {
	if err := healthCheck(context.Background(), nil, nil, nil); err != nil {
		t.Errorf("healthCheck() error = %v, want nil", err)
	}
}
