package influxdb

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/nerrad567/gray-logic-edge/internal/connectivity"
	"github.com/nerrad567/gray-logic-edge/internal/infrastructure/config"
)

// fakeInflux answers pings and captures write bodies.
func fakeInflux(t *testing.T, pingStatus int) (*httptest.Server, <-chan string) {
	t.Helper()
	writes := make(chan string, 16)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ping":
			w.WriteHeader(pingStatus)
		case "/api/v2/write":
			body, _ := io.ReadAll(r.Body)
			writes <- string(body)
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, writes
}

func testConfig(url string) config.InfluxDBConfig {
	return config.InfluxDBConfig{
		Enabled:       true,
		URL:           url,
		Token:         "edge-token",
		Org:           "graylogic",
		Bucket:        "edge",
		BatchSize:     100,
		FlushInterval: 1,
	}
}

// =============================================================================
// Connection Tests
// =============================================================================

func TestConnect_Disabled(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:1")
	cfg.Enabled = false

	if _, err := Connect(context.Background(), cfg); !errors.Is(err, ErrDisabled) {
		t.Errorf("Connect() error = %v, want ErrDisabled", err)
	}
}

func TestConnect_Unhealthy(t *testing.T) {
	srv, _ := fakeInflux(t, http.StatusServiceUnavailable)

	if _, err := Connect(context.Background(), testConfig(srv.URL)); !errors.Is(err, ErrConnectionFailed) {
		t.Errorf("Connect() error = %v, want ErrConnectionFailed", err)
	}
}

func TestConnect_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := Connect(ctx, testConfig(url)); !errors.Is(err, ErrConnectionFailed) {
		t.Errorf("Connect() error = %v, want ErrConnectionFailed", err)
	}
}

func TestConnect_AndClose(t *testing.T) {
	srv, _ := fakeInflux(t, http.StatusNoContent)

	client, err := Connect(context.Background(), testConfig(srv.URL))
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if !client.IsConnected() {
		t.Error("IsConnected() = false after Connect()")
	}
	if err := client.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}

	if err := client.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !errors.Is(client.HealthCheck(context.Background()), ErrNotConnected) {
		t.Error("HealthCheck() after Close() should return ErrNotConnected")
	}

	// Writes and flushes after Close are ignored.
	client.WriteConnectivityChange("dev-1", connectivity.Change{})
	client.Flush()
}

func TestClose_Nil(t *testing.T) {
	var c *Client
	if err := c.Close(); err != nil {
		t.Errorf("Close() on nil client error = %v", err)
	}
}

// =============================================================================
// Write Tests
// =============================================================================

func TestConnectivityPoint(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	change := connectivity.Change{
		Signal: connectivity.SignalAddressAcquired,
		Before: connectivity.Snapshot{LinkConnected: true},
		After:  connectivity.Snapshot{LinkConnected: true, AddressAcquired: true},
		At:     at,
	}

	got := write.PointToLineProtocol(connectivityPoint("dev-1", change), time.Nanosecond)
	want := "connectivity,device_id=dev-1,signal=address_acquired address_acquired=true,link_connected=true,ready=true " +
		"1772355600000000000"
	if strings.TrimSpace(got) != want {
		t.Errorf("line protocol =\n%s\nwant\n%s", got, want)
	}
}

func TestConnectivityPoint_ZeroTimeUsesNow(t *testing.T) {
	before := time.Now()
	p := connectivityPoint("dev-1", connectivity.Change{Signal: connectivity.SignalLinkDisconnected})
	if p.Time().Before(before) {
		t.Errorf("point time %v is before %v", p.Time(), before)
	}
}

func TestAttach_WritesTrackerChanges(t *testing.T) {
	srv, writes := fakeInflux(t, http.StatusNoContent)

	client, err := Connect(context.Background(), testConfig(srv.URL))
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer client.Close()

	writeErrs := make(chan error, 1)
	client.SetOnError(func(err error) {
		select {
		case writeErrs <- err:
		default:
		}
	})

	tracker := connectivity.New()
	tracker.SetLogger(nil)
	cancel := client.Attach(tracker, "dev-1")
	defer cancel()

	tracker.OnLinkConnected()
	tracker.OnAddressAcquired()
	client.Flush()

	var lines []string
	timeout := time.After(3 * time.Second)
	for len(lines) < 2 {
		select {
		case body := <-writes:
			lines = append(lines, strings.Split(strings.TrimSpace(body), "\n")...)
		case err := <-writeErrs:
			t.Fatalf("write error = %v", err)
		case <-timeout:
			t.Fatalf("got %d lines before timeout, want 2", len(lines))
		}
	}

	if !strings.HasPrefix(lines[0], "connectivity,device_id=dev-1,signal=link_connected ") {
		t.Errorf("first line = %s", lines[0])
	}
	if !strings.Contains(lines[1], "ready=true") {
		t.Errorf("second line = %s, want ready=true", lines[1])
	}
}

func TestClose_Idempotent(t *testing.T) {
	srv, _ := fakeInflux(t, http.StatusNoContent)

	client, err := Connect(context.Background(), testConfig(srv.URL))
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := client.Close(); err != nil {
			t.Fatalf("Close() #%d error = %v", i+1, err)
		}
	}
	if client.IsConnected() {
		t.Error("IsConnected() = true after Close()")
	}
}

func TestClientOptions(t *testing.T) {
	tests := []struct {
		name      string
		batch     int
		flush     int
		wantBatch uint
		wantFlush uint
	}{
		{"defaults", 0, 0, 100, 10000},
		{"negative falls back", -5, -1, 100, 10000},
		{"configured", 500, 2, 500, 2000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := clientOptions(config.InfluxDBConfig{BatchSize: tt.batch, FlushInterval: tt.flush})
			if got := opts.BatchSize(); got != tt.wantBatch {
				t.Errorf("BatchSize() = %d, want %d", got, tt.wantBatch)
			}
			if got := opts.FlushInterval(); got != tt.wantFlush {
				t.Errorf("FlushInterval() = %d, want %d", got, tt.wantFlush)
			}
		})
	}
}
