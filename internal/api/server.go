package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/nerrad567/gray-logic-edge/internal/connectivity"
	"github.com/nerrad567/gray-logic-edge/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-edge/internal/infrastructure/database"
	"github.com/nerrad567/gray-logic-edge/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-edge/internal/journal"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// WebSocket fallbacks, in bytes and seconds, for a zero config section.
const (
	defaultWSMaxMessageSize = 4096
	defaultWSPingInterval   = 30
	defaultWSPongTimeout    = 10
)

// ChannelNetworkChanged carries tracker transitions to WebSocket clients.
const ChannelNetworkChanged = "network.changed"

// Tracker is the connectivity state the API reads and streams.
type Tracker interface {
	Snapshot() connectivity.Snapshot
	Watch(fn connectivity.ChangeFunc) (cancel func())
}

// BrokerHealth reports the MQTT engine's state.
type BrokerHealth interface {
	HealthCheck(ctx context.Context) error
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config  config.APIConfig
	WS      config.WebSocketConfig
	Logger  *logging.Logger
	Tracker Tracker
	Journal journal.Repository // optional; history answers 503 without it
	DB      *database.DB       // optional; health and metrics only
	MQTT    BrokerHealth       // optional
	Version string
}

// Server is the local status API.
//
// It manages the HTTP listener, routes, middleware, and WebSocket hub.
// The server is created with New() and started with Start().
type Server struct {
	cfg       config.APIConfig
	wsCfg     config.WebSocketConfig
	logger    *logging.Logger
	tracker   Tracker
	journal   journal.Repository
	db        *database.DB
	mqtt      BrokerHealth
	version   string
	startTime time.Time

	hub    *Hub
	server *http.Server

	mu      sync.Mutex
	addr    net.Addr
	cancel  context.CancelFunc
	unwatch func()
}

// New creates an API server. It does not listen until Start is called.
//
// Returns:
//   - error: If the logger or tracker is missing
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Tracker == nil {
		return nil, fmt.Errorf("connectivity tracker is required")
	}

	ws := deps.WS
	if ws.MaxMessageSize <= 0 {
		ws.MaxMessageSize = defaultWSMaxMessageSize
	}
	if ws.PingInterval <= 0 {
		ws.PingInterval = defaultWSPingInterval
	}
	if ws.PongTimeout <= 0 {
		ws.PongTimeout = defaultWSPongTimeout
	}

	s := &Server{
		cfg:       deps.Config,
		wsCfg:     ws,
		logger:    deps.Logger,
		tracker:   deps.Tracker,
		journal:   deps.Journal,
		db:        deps.DB,
		mqtt:      deps.MQTT,
		version:   deps.Version,
		startTime: time.Now(),
	}
	s.hub = NewHub(s.wsCfg, s.logger)
	return s, nil
}

// Hub returns the server's WebSocket hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Start binds the listener, attaches the hub to the tracker and serves in
// the background.
//
// Returns:
//   - error: If the address cannot be bound (port in use, etc.)
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port)))
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}

	srvCtx, cancel := context.WithCancel(ctx)
	go s.hub.Run(srvCtx)

	s.server = &http.Server{
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	s.mu.Lock()
	s.addr = ln.Addr()
	s.cancel = cancel
	s.unwatch = s.tracker.Watch(s.broadcastChange)
	s.mu.Unlock()

	s.logger.Info("API server listening", "address", ln.Addr().String())

	go func() {
		err := s.server.Serve(ln)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Addr returns the bound address, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Close stops broadcasting and shuts the server down, waiting up to 10s for
// in-flight requests.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	s.mu.Lock()
	cancel, unwatch := s.cancel, s.unwatch
	s.cancel, s.unwatch = nil, nil
	s.mu.Unlock()

	if unwatch != nil {
		unwatch()
	}
	if cancel != nil {
		cancel()
	}

	ctx, done := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer done()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server has been started.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}
	return nil
}
