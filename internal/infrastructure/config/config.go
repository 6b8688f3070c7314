package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/nerrad567/gray-logic-edge/internal/transport"
)

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "GRAYLOGIC_EDGE_"

// clientIDPrefix starts every derived MQTT client identifier.
const clientIDPrefix = "graylogic-edge-"

// Config is the root configuration structure for the edge agent.
type Config struct {
	Device    DeviceConfig    `yaml:"device"`
	Network   NetworkConfig   `yaml:"network"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
	API       APIConfig       `yaml:"api"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// DeviceConfig identifies this device and the interface it watches.
type DeviceConfig struct {
	// ID names the device in journal rows and telemetry. Defaults to the
	// resolved MQTT client id when empty.
	ID        string `yaml:"id"`
	Interface string `yaml:"interface"`
}

// NetworkConfig controls the interface monitor and event loop.
type NetworkConfig struct {
	PollInterval      time.Duration `yaml:"poll_interval"`
	ReadyPollInterval time.Duration `yaml:"ready_poll_interval"`
	EventQueueSize    int           `yaml:"event_queue_size"`
	MaxHandlers       int           `yaml:"max_handlers"`
}

// MQTTConfig contains MQTT broker connection settings.
// The connection always uses TLS; there is no plaintext option.
type MQTTConfig struct {
	Enabled   bool                `yaml:"enabled"`
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	CAFile    string              `yaml:"ca_file"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings, in seconds.
type MQTTReconnectConfig struct {
	Enabled      bool `yaml:"enabled"`
	InitialDelay int  `yaml:"initial_delay"`
	MaxDelay     int  `yaml:"max_delay"`
}

// HTTPConfig configures the check-in client.
type HTTPConfig struct {
	Enabled     bool   `yaml:"enabled"`
	URL         string `yaml:"url"`
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
	CheckInPath string `yaml:"check_in_path"`
}

// DatabaseConfig contains SQLite journal settings.
type DatabaseConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Path          string `yaml:"path"`
	WALMode       bool   `yaml:"wal_mode"`
	BusyTimeout   int    `yaml:"busy_timeout"`
	RetentionDays int    `yaml:"retention_days"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// APIConfig contains status API server settings.
type APIConfig struct {
	Enabled  bool             `yaml:"enabled"`
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
}

// APITimeoutConfig contains HTTP timeout settings, in seconds.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// WebSocketConfig contains WebSocket settings.
type WebSocketConfig struct {
	MaxMessageSize int `yaml:"max_message_size"`
	PingInterval   int `yaml:"ping_interval"`
	PongTimeout    int `yaml:"pong_timeout"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment overrides.
//
// The configuration loading order is:
//  1. Default values
//  2. YAML file values
//  3. Environment variables (GRAYLOGIC_EDGE_SECTION_KEY)
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If the file cannot be read or parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, fmt.Errorf("applying environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns the built-in configuration, as used before any file is read.
func Default() *Config {
	return defaultConfig()
}

func defaultConfig() *Config {
	return &Config{
		Device: DeviceConfig{
			Interface: "wlan0",
		},
		Network: NetworkConfig{
			PollInterval:      2 * time.Second,
			ReadyPollInterval: 500 * time.Millisecond,
			EventQueueSize:    32,
			MaxHandlers:       16,
		},
		MQTT: MQTTConfig{
			Enabled: true,
			Broker: MQTTBrokerConfig{
				Host: "localhost",
				Port: int(transport.DefaultMQTTPort),
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				Enabled:      true,
				InitialDelay: 1,
				MaxDelay:     60,
			},
		},
		HTTP: HTTPConfig{
			CheckInPath: "/api/v1/devices/checkin",
		},
		Database: DatabaseConfig{
			Enabled:       true,
			Path:          "./data/graylogic-edge.db",
			WALMode:       true,
			BusyTimeout:   5,
			RetentionDays: 30,
		},
		InfluxDB: InfluxDBConfig{
			BatchSize:     100,
			FlushInterval: 10,
		},
		API: APIConfig{
			Enabled: true,
			Host:    "127.0.0.1",
			Port:    8090,
			Timeouts: APITimeoutConfig{
				Read:  15,
				Write: 15,
				Idle:  60,
			},
		},
		WebSocket: WebSocketConfig{
			MaxMessageSize: 4096,
			PingInterval:   30,
			PongTimeout:    10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies GRAYLOGIC_EDGE_* variables. A malformed numeric
// or boolean value is an error rather than being silently ignored.
func applyEnvOverrides(cfg *Config) error {
	strs := map[string]*string{
		"DEVICE_ID":        &cfg.Device.ID,
		"DEVICE_INTERFACE": &cfg.Device.Interface,
		"MQTT_HOST":        &cfg.MQTT.Broker.Host,
		"MQTT_CLIENT_ID":   &cfg.MQTT.Broker.ClientID,
		"MQTT_USERNAME":    &cfg.MQTT.Auth.Username,
		"MQTT_PASSWORD":    &cfg.MQTT.Auth.Password,
		"MQTT_CA_FILE":     &cfg.MQTT.CAFile,
		"HTTP_URL":         &cfg.HTTP.URL,
		"HTTP_USERNAME":    &cfg.HTTP.Username,
		"HTTP_PASSWORD":    &cfg.HTTP.Password,
		"DATABASE_PATH":    &cfg.Database.Path,
		"INFLUXDB_URL":     &cfg.InfluxDB.URL,
		"INFLUXDB_TOKEN":   &cfg.InfluxDB.Token,
		"API_HOST":         &cfg.API.Host,
		"LOG_LEVEL":        &cfg.Logging.Level,
	}
	for key, dst := range strs {
		if v := os.Getenv(EnvPrefix + key); v != "" {
			*dst = v
		}
	}

	ints := map[string]*int{
		"MQTT_PORT": &cfg.MQTT.Broker.Port,
		"API_PORT":  &cfg.API.Port,
	}
	for key, dst := range ints {
		v := os.Getenv(EnvPrefix + key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
		}
		*dst = n
	}

	bools := map[string]*bool{
		"MQTT_ENABLED":     &cfg.MQTT.Enabled,
		"HTTP_ENABLED":     &cfg.HTTP.Enabled,
		"DATABASE_ENABLED": &cfg.Database.Enabled,
		"INFLUXDB_ENABLED": &cfg.InfluxDB.Enabled,
		"API_ENABLED":      &cfg.API.Enabled,
	}
	for key, dst := range bools {
		v := os.Getenv(EnvPrefix + key)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
		}
		*dst = b
	}

	return nil
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of every validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	if c.Device.Interface == "" {
		errs = append(errs, "device.interface is required")
	}

	if c.Network.PollInterval <= 0 {
		errs = append(errs, "network.poll_interval must be positive")
	}
	if c.Network.ReadyPollInterval <= 0 {
		errs = append(errs, "network.ready_poll_interval must be positive")
	}
	if c.Network.EventQueueSize < 1 {
		errs = append(errs, "network.event_queue_size must be at least 1")
	}
	if c.Network.MaxHandlers < 2 {
		// The event bridge alone holds two subscriptions.
		errs = append(errs, "network.max_handlers must be at least 2")
	}

	if c.MQTT.Enabled {
		if c.MQTT.Broker.Host == "" {
			errs = append(errs, "mqtt.broker.host is required")
		}
		if c.MQTT.Broker.Port < 1 || c.MQTT.Broker.Port > 65535 {
			errs = append(errs, "mqtt.broker.port must be between 1 and 65535")
		}
		if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
			errs = append(errs, "mqtt.qos must be 0, 1, or 2")
		}
		if c.MQTT.Reconnect.Enabled && c.MQTT.Reconnect.MaxDelay < c.MQTT.Reconnect.InitialDelay {
			errs = append(errs, "mqtt.reconnect.max_delay must not be less than initial_delay")
		}
	}

	if c.HTTP.Enabled && c.HTTP.URL == "" {
		errs = append(errs, "http.url is required when http is enabled")
	}

	if c.Database.Enabled {
		if c.Database.Path == "" {
			errs = append(errs, "database.path is required")
		}
		if c.Database.RetentionDays < 0 {
			errs = append(errs, "database.retention_days must not be negative")
		}
	}

	if c.InfluxDB.Enabled {
		if c.InfluxDB.URL == "" {
			errs = append(errs, "influxdb.url is required when influxdb is enabled")
		}
		if c.InfluxDB.Bucket == "" {
			errs = append(errs, "influxdb.bucket is required when influxdb is enabled")
		}
	}

	if c.API.Enabled && (c.API.Port < 1 || c.API.Port > 65535) {
		errs = append(errs, "api.port must be between 1 and 65535")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}
	return nil
}

// ResolveClientID returns the MQTT client identifier.
//
// An explicit mqtt.broker.client_id wins. Otherwise the identifier is derived
// from the hardware address (graylogic-edge-240ac4010203) so that it is stable
// across restarts, falling back to a random UUID when no address is known.
func (c *Config) ResolveClientID(hw net.HardwareAddr) string {
	if c.MQTT.Broker.ClientID != "" {
		return c.MQTT.Broker.ClientID
	}
	if len(hw) > 0 {
		return clientIDPrefix + strings.ReplaceAll(hw.String(), ":", "")
	}
	return clientIDPrefix + uuid.NewString()
}

// ResolveDeviceID returns device.id, or clientID when it is unset.
func (c *Config) ResolveDeviceID(clientID string) string {
	if c.Device.ID != "" {
		return c.Device.ID
	}
	return clientID
}

// BuildMQTT assembles the transport configuration for the broker.
func (c *Config) BuildMQTT(clientID string) transport.MQTTConfig {
	return transport.BuildMQTTConfig(
		c.MQTT.Broker.Host,
		uint32(c.MQTT.Broker.Port), //nolint:gosec // Range checked by Validate
		clientID,
		c.MQTT.Auth.Username,
		c.MQTT.Auth.Password,
	)
}

// BuildHTTP assembles the transport configuration for the check-in endpoint.
func (c *Config) BuildHTTP() transport.HTTPConfig {
	return transport.BuildHTTPConfig(c.HTTP.URL, c.HTTP.Username, c.HTTP.Password)
}

// Retention returns the journal retention as a Duration. Zero disables pruning.
func (c *Config) Retention() time.Duration {
	return time.Duration(c.Database.RetentionDays) * 24 * time.Hour
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}
