// Gray Logic Edge - network readiness agent
//
// This is the entry point for the edge agent. It watches the host's network
// interface, tracks link and address state, and once the network is ready
// connects to the site's MQTT broker and checks in with the core over HTTP.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/nerrad567/gray-logic-edge/internal/api"
	"github.com/nerrad567/gray-logic-edge/internal/connectivity"
	"github.com/nerrad567/gray-logic-edge/internal/eventbridge"
	"github.com/nerrad567/gray-logic-edge/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-edge/internal/infrastructure/database"
	"github.com/nerrad567/gray-logic-edge/internal/infrastructure/influxdb"
	"github.com/nerrad567/gray-logic-edge/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-edge/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-edge/internal/infrastructure/rest"
	"github.com/nerrad567/gray-logic-edge/internal/journal"
	"github.com/nerrad567/gray-logic-edge/internal/netevent"
	"github.com/nerrad567/gray-logic-edge/internal/netmon"
	"github.com/nerrad567/gray-logic-edge/internal/transport"
	"github.com/nerrad567/gray-logic-edge/migrations"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

const (
	defaultConfigPath = "configs/config.yaml"
	configEnvVar      = "GRAYLOGIC_EDGE_CONFIG"

	retentionInterval = time.Hour
	checkInTimeout    = 15 * time.Second
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the application logic, separated from main for testability.
// It returns nil on a clean shutdown.
func run(ctx context.Context, args []string) error { //nolint:gocognit,gocyclo // Linear startup sequence
	log := logging.Default()
	log.Info("starting Gray Logic Edge",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath, err := getConfigPath(args)
	if err != nil {
		return err
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Network layer: monitor → loop → bridge → tracker
	loop := netevent.NewLoop(netevent.LoopOptions{
		QueueSize:   cfg.Network.EventQueueSize,
		MaxHandlers: cfg.Network.MaxHandlers,
		Logger:      log.With("component", "netevent"),
	})
	loopCtx, stopLoop := context.WithCancel(ctx)
	defer stopLoop()
	go func() {
		if runErr := loop.Run(loopCtx); runErr != nil {
			log.Error("event loop stopped", "error", runErr)
		}
	}()

	tracker := connectivity.New()
	tracker.SetLogger(log.With("component", "connectivity"))

	bridge := eventbridge.New(loop, tracker, eventbridge.WithLogger(log.With("component", "eventbridge")))
	if regErr := bridge.Register(); regErr != nil {
		return fmt.Errorf("registering network handlers: %w", regErr)
	}
	defer func() {
		if closeErr := bridge.Close(); closeErr != nil {
			log.Error("error releasing network handlers", "error", closeErr)
		}
	}()

	monitor := netmon.New(cfg.Device.Interface, loop, netmon.Options{
		Interval: cfg.Network.PollInterval,
		Logger:   log.With("component", "netmon"),
	})
	// The client id is derived from the MAC, so poll once before Run takes
	// over to learn it up front.
	if pollErr := monitor.Poll(ctx); pollErr != nil {
		log.Warn("initial network poll failed", "interface", cfg.Device.Interface, "error", pollErr)
	}
	clientID := cfg.ResolveClientID(monitor.HardwareAddr())
	deviceID := cfg.ResolveDeviceID(clientID)
	log = log.With("device_id", deviceID)

	go monitor.Run(loopCtx) //nolint:errcheck // Run only returns on cancellation
	log.Info("network monitor started",
		"interface", cfg.Device.Interface,
		"poll_interval", cfg.Network.PollInterval,
	)

	// Connectivity journal (optional)
	var (
		db           *database.DB
		journalStore journal.Repository
	)
	if cfg.Database.Enabled {
		db, err = database.Open(database.Config{
			Path:        cfg.Database.Path,
			WALMode:     cfg.Database.WALMode,
			BusyTimeout: cfg.Database.BusyTimeout,
		})
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer func() {
			log.Info("closing database")
			if closeErr := db.Close(); closeErr != nil {
				log.Error("error closing database", "error", closeErr)
			}
		}()
		if migrateErr := db.Migrate(ctx, migrations.FS); migrateErr != nil {
			return fmt.Errorf("running migrations: %w", migrateErr)
		}
		log.Info("database ready", "path", cfg.Database.Path)
	} else {
		log.Info("connectivity journal disabled")
	}

	if db != nil {
		repo := journal.NewSQLiteRepository(db.DB, deviceID)
		journalStore = repo
		recorder := journal.NewRecorder(repo, log.With("component", "journal"))
		defer recorder.Attach(tracker)()
		go recorder.RunRetention(loopCtx, cfg.Retention(), retentionInterval)
	}

	// Telemetry (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(ctx, cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		defer influxClient.Attach(tracker, deviceID)()
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
	} else {
		log.Info("InfluxDB disabled")
	}

	// Wait for link and address before touching the broker or the core.
	log.Info("waiting for network", "interface", cfg.Device.Interface)
	if !waitUntilReady(ctx, tracker, cfg.Network.ReadyPollInterval) {
		log.Info("shutdown before network became ready")
		return nil
	}
	log.Info("network ready", "client_id", clientID)

	// MQTT (optional)
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		var status *mqtt.StatusPublisher
		mqttClient, status, err = startMQTT(ctx, cfg, clientID, tracker, log)
		if err != nil {
			return err
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		// Detached before Close so no publish races the disconnect.
		defer status.Attach(tracker)()
		if pubErr := status.PublishSnapshot(tracker.Snapshot()); pubErr != nil {
			log.Warn("initial network status not published", "error", pubErr)
		}
	} else {
		log.Info("MQTT disabled")
	}

	// HTTP check-in (optional)
	if cfg.HTTP.Enabled {
		restClient := rest.New(cfg.BuildHTTP(), rest.WithTimeout(checkInTimeout))
		defer restClient.Close() //nolint:errcheck // Only drops idle connections
		checkIn(ctx, restClient, cfg.HTTP.CheckInPath, log)
		defer tracker.Watch(func(c connectivity.Change) {
			if c.ReadyChanged() && c.After.Ready() {
				go checkIn(ctx, restClient, cfg.HTTP.CheckInPath, log)
			}
		})()
	}

	// Status API (optional)
	if cfg.API.Enabled {
		deps := api.Deps{
			Config:  cfg.API,
			WS:      cfg.WebSocket,
			Logger:  log.With("component", "api"),
			Tracker: tracker,
			Journal: journalStore,
			DB:      db,
			Version: version,
		}
		if mqttClient != nil {
			deps.MQTT = mqttClient
		}
		server, apiErr := api.New(deps)
		if apiErr != nil {
			return fmt.Errorf("creating API server: %w", apiErr)
		}
		if startErr := server.Start(ctx); startErr != nil {
			return fmt.Errorf("starting API server: %w", startErr)
		}
		defer func() {
			log.Info("stopping API server")
			if closeErr := server.Close(); closeErr != nil {
				log.Error("error stopping API server", "error", closeErr)
			}
		}()
		log.Info("API server listening", "addr", server.Addr().String())
	}

	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")
	<-ctx.Done()
	log.Info("shutdown signal received, cleaning up")

	log.Info("Gray Logic Edge stopped")
	return nil
}

// getConfigPath returns the configuration file path: --config, then
// GRAYLOGIC_EDGE_CONFIG, then the default.
func getConfigPath(args []string) (string, error) {
	fs := pflag.NewFlagSet("graylogic-edge", pflag.ContinueOnError)
	path := fs.StringP("config", "c", "", "path to the YAML configuration file")
	if err := fs.Parse(args); err != nil {
		return "", fmt.Errorf("parsing flags: %w", err)
	}
	if *path != "" {
		return *path, nil
	}
	if env := os.Getenv(configEnvVar); env != "" {
		return env, nil
	}
	return defaultConfigPath, nil
}

// waitUntilReady polls r every interval until it reports ready. It returns
// false if ctx is cancelled first.
func waitUntilReady(ctx context.Context, r connectivity.Readiness, interval time.Duration) bool {
	if r.IsReady() {
		return true
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
			if r.IsReady() {
				return true
			}
		}
	}
}

// startMQTT builds the broker configuration, connects, and subscribes the
// command topic. The returned status publisher is not yet attached.
func startMQTT(ctx context.Context, cfg *config.Config, clientID string, tracker *connectivity.Tracker, log *logging.Logger) (*mqtt.Client, *mqtt.StatusPublisher, error) {
	if cfg.MQTT.CAFile != "" {
		pem, err := os.ReadFile(cfg.MQTT.CAFile)
		if err != nil {
			return nil, nil, fmt.Errorf("reading MQTT CA file: %w", err)
		}
		if err := transport.InstallGlobalCAStore(pem); err != nil {
			return nil, nil, fmt.Errorf("installing MQTT CA: %w", err)
		}
	}

	mqttCfg := cfg.BuildMQTT(clientID)
	client := mqtt.New(mqttCfg, mqtt.Options{
		QoS:                   byte(cfg.MQTT.QoS), //nolint:gosec // Range checked by Validate
		AutoReconnect:         cfg.MQTT.Reconnect.Enabled,
		ReconnectInitialDelay: time.Duration(cfg.MQTT.Reconnect.InitialDelay) * time.Second,
		ReconnectMaxDelay:     time.Duration(cfg.MQTT.Reconnect.MaxDelay) * time.Second,
		Logger:                log.With("component", "mqtt"),
	})
	status := mqtt.NewStatusPublisher(client, clientID, client.QoS(), log.With("component", "mqtt"))
	client.SetOnConnect(func() {
		log.Info("MQTT connected")
		// Covers transitions missed while offline or dropped from the queue.
		if err := status.PublishSnapshot(tracker.Snapshot()); err != nil {
			log.Warn("network status not republished", "error", err)
		}
	})
	client.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})

	if err := client.Start(ctx); err != nil {
		return nil, nil, fmt.Errorf("connecting to MQTT: %w", err)
	}
	log.Info("MQTT started",
		"broker", mqttCfg.BrokerURL(),
		"client_id", clientID,
		"auth", mqttCfg.Username() != "",
	)

	commandTopic := mqtt.Topics{}.Command(clientID)
	if err := client.Subscribe(commandTopic, client.QoS(), status.CommandHandler(tracker)); err != nil {
		client.Close() //nolint:errcheck // Already failing
		return nil, nil, fmt.Errorf("subscribing to %s: %w", commandTopic, err)
	}

	return client, status, nil
}

// checkIn announces the agent to the core. Failures are logged; the next
// readiness transition retries.
func checkIn(ctx context.Context, client *rest.Client, path string, log *logging.Logger) {
	result, err := client.CheckIn(ctx, path)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			log.Warn("check-in failed", "path", path, "error", err)
		}
		return
	}
	log.Info("checked in", "changed", result.Changed, "message", result.Message)
}

// healthCheck verifies the enabled infrastructure connections.
// Nil components are skipped.
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if db != nil {
		if err := db.HealthCheck(ctx); err != nil {
			return fmt.Errorf("database: %w", err)
		}
	}

	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}
