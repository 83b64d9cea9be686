package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"candy-bianca-backend/internal/parse"
)

const (
	DefaultScanInterval  = 30
	MinScanInterval      = 5
	MaxScanInterval      = 3600
	DefaultFinishMessage = "La lavasciuga ha terminato il programma {program_name}"
	DefaultName          = "Candy Bianca"
)

// Config represents the overall application configuration.
type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Log          LogConfig          `yaml:"log"`
	Database     DatabaseConfig     `yaml:"database"`
	Push         PushConfig         `yaml:"push"`
	WorkerPool   WorkerPoolConfig   `yaml:"worker_pool"`
	DeviceClient DeviceClientConfig `yaml:"device_client"`
	Devices      []DeviceConfig     `yaml:"devices"`
}

// ServerConfig holds the HTTP API configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int     `yaml:"rate_limit_burst"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
}

// LogConfig selects the zap level.
type LogConfig struct {
	Level string `yaml:"level"`
}

// WorkerPoolConfig holds the configuration for the notification worker pool.
type WorkerPoolConfig struct {
	Size int `yaml:"size"`
}

// PushConfig holds the VAPID keys for web push notifications.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// Enabled reports whether both VAPID keys are configured.
func (p PushConfig) Enabled() bool {
	return p.PublicKey != "" && p.PrivateKey != ""
}

// DeviceClientConfig tunes the HTTP client used to talk to the washers.
type DeviceClientConfig struct {
	TimeoutSeconds int           `yaml:"timeout_seconds"`
	Timeout        time.Duration `yaml:"-"`
}

// DeviceConfig describes one washer.
type DeviceConfig struct {
	ID                  string        `yaml:"-"`
	Name                string        `yaml:"name"`
	Host                string        `yaml:"host"`
	ScanIntervalSeconds int           `yaml:"scan_interval_seconds"`
	ScanInterval        time.Duration `yaml:"-"`
	TestMode            bool          `yaml:"test_mode"`
	FinishNotification  bool          `yaml:"finish_notification"`
	FinishMessage       string        `yaml:"finish_message"`
	Timer               bool          `yaml:"timer"`
}

// DatabaseConfig holds the database connection configuration.
// A DSN of the form "sqlite:<path>" selects SQLite; anything else is Postgres.
type DatabaseConfig struct {
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
	EnableTimescale        bool   `yaml:"enable_timescale"`
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *Config) applyDefaults() error {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 5
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.WorkerPool.Size <= 0 {
		cfg.WorkerPool.Size = 1
	}

	if cfg.DeviceClient.TimeoutSeconds <= 0 {
		cfg.DeviceClient.TimeoutSeconds = 10
	}
	cfg.DeviceClient.Timeout = time.Duration(cfg.DeviceClient.TimeoutSeconds) * time.Second

	if len(cfg.Devices) == 0 {
		return fmt.Errorf("no devices configured")
	}

	seen := make(map[string]bool, len(cfg.Devices))
	seenIDs := make(map[string]string, len(cfg.Devices))
	for i := range cfg.Devices {
		d := &cfg.Devices[i]

		host, err := parse.Host(d.Host)
		if err != nil {
			return fmt.Errorf("devices[%d]: %w", i, err)
		}
		if seen[host] {
			return fmt.Errorf("devices[%d]: host %s is already configured", i, host)
		}
		seen[host] = true
		d.Host = host
		d.ID = parse.DeviceID(host)
		if other, ok := seenIDs[d.ID]; ok {
			return fmt.Errorf("devices[%d]: host %s maps to device id %s, already used by host %s", i, host, d.ID, other)
		}
		seenIDs[d.ID] = host

		if d.Name == "" {
			d.Name = fmt.Sprintf("%s (%s)", DefaultName, host)
		}

		if d.ScanIntervalSeconds == 0 {
			d.ScanIntervalSeconds = DefaultScanInterval
		}
		if d.ScanIntervalSeconds < MinScanInterval || d.ScanIntervalSeconds > MaxScanInterval {
			return fmt.Errorf("devices[%d]: scan_interval_seconds must be between %d and %d, got %d",
				i, MinScanInterval, MaxScanInterval, d.ScanIntervalSeconds)
		}
		d.ScanInterval = time.Duration(d.ScanIntervalSeconds) * time.Second

		if d.FinishMessage == "" {
			d.FinishMessage = DefaultFinishMessage
		}
	}
	return nil
}
