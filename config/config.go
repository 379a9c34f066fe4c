package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"maintenance-logbook-backend/internal/model"
)

// MaxImagesPerComplaint is the hard cap on attachments for a single complaint.
const MaxImagesPerComplaint = 5

// Config represents the overall application configuration.
type Config struct {
	Server   ServerConfig               `yaml:"server"`
	Database DatabaseConfig             `yaml:"database"`
	Auth     AuthConfig                 `yaml:"auth"`
	Uploads  UploadsConfig              `yaml:"uploads"`
	SLA      map[model.Category]float64 `yaml:"sla"`
	Monitor  MonitorConfig              `yaml:"monitor"`
	Log      LogConfig                  `yaml:"log"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	RateLimitPerSec float64       `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int           `yaml:"rate_limit_burst"`
	CacheTTLSeconds int           `yaml:"cache_ttl_seconds"`
	CacheTTL        time.Duration `yaml:"-"` // Ignored by YAML parser
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	Driver                 string `yaml:"driver"` // postgres or sqlite
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
	LogLevel               string `yaml:"log_level"`
}

// AuthConfig holds bearer token and password hashing settings.
type AuthConfig struct {
	JWTSecret     string        `yaml:"jwt_secret"`
	TokenTTLHours int           `yaml:"token_ttl_hours"`
	TokenTTL      time.Duration `yaml:"-"`
	BcryptCost    int           `yaml:"bcrypt_cost"`
}

// UploadsConfig holds attachment storage settings.
type UploadsConfig struct {
	Dir           string `yaml:"dir"`
	MaxImages     int    `yaml:"max_images"`
	MaxImageBytes int64  `yaml:"max_image_bytes"`
}

// MonitorConfig controls the periodic escalation sweep.
type MonitorConfig struct {
	Enabled         bool          `yaml:"enabled"`
	IntervalSeconds int           `yaml:"interval_seconds"`
	Interval        time.Duration `yaml:"-"`
}

// LogConfig selects the zap logger flavour.
type LogConfig struct {
	Development bool   `yaml:"development"`
	Level       string `yaml:"level"`
}

// DefaultSLAHours is the per-category response window used when the config
// file does not override it.
func DefaultSLAHours() map[model.Category]float64 {
	return map[model.Category]float64{
		model.CategoryElectricity: 4,
		model.CategoryWater:       2,
		model.CategoryWifi:        6,
		model.CategoryCleaning:    12,
	}
}

// Load reads the configuration from the given path. Environment variables
// LOGBOOK_DB_DSN and LOGBOOK_JWT_SECRET take precedence over the file.
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
	if v := os.Getenv("LOGBOOK_DB_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("LOGBOOK_JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}

	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 5001
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 20
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 30
	}
	cfg.Server.CacheTTL = time.Duration(cfg.Server.CacheTTLSeconds) * time.Second

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "postgres"
	}
	if cfg.Database.Driver != "postgres" && cfg.Database.Driver != "sqlite" {
		return fmt.Errorf("database.driver must be postgres or sqlite, got %q", cfg.Database.Driver)
	}
	if cfg.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required")
	}

	if cfg.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}
	if cfg.Auth.TokenTTLHours <= 0 {
		cfg.Auth.TokenTTLHours = 30 * 24
	}
	cfg.Auth.TokenTTL = time.Duration(cfg.Auth.TokenTTLHours) * time.Hour
	if cfg.Auth.BcryptCost <= 0 {
		cfg.Auth.BcryptCost = 10
	}

	if cfg.Uploads.Dir == "" {
		cfg.Uploads.Dir = "./uploads"
	}
	if cfg.Uploads.MaxImages <= 0 || cfg.Uploads.MaxImages > MaxImagesPerComplaint {
		cfg.Uploads.MaxImages = MaxImagesPerComplaint
	}
	if cfg.Uploads.MaxImageBytes <= 0 {
		cfg.Uploads.MaxImageBytes = 5 << 20
	}

	if cfg.Monitor.IntervalSeconds <= 0 {
		cfg.Monitor.IntervalSeconds = 300
	}
	if cfg.Monitor.Enabled {
		cfg.Monitor.Interval = time.Duration(cfg.Monitor.IntervalSeconds) * time.Second
	}

	sla := DefaultSLAHours()
	for cat, hours := range cfg.SLA {
		if !cat.Valid() {
			return fmt.Errorf("sla: unknown category %q", cat)
		}
		if hours <= 0 {
			return fmt.Errorf("sla: threshold for %q must be positive", cat)
		}
		sla[cat] = hours
	}
	cfg.SLA = sla

	return nil
}

// SLAThresholds converts the configured hour values to durations.
func (cfg *Config) SLAThresholds() map[model.Category]time.Duration {
	out := make(map[model.Category]time.Duration, len(cfg.SLA))
	for cat, hours := range cfg.SLA {
		out[cat] = time.Duration(hours * float64(time.Hour))
	}
	return out
}
