package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Engine modes.
const (
	ModeRemote = "remote"
	ModeLocal  = "local"
)

// Config is the root configuration structure.
// It is read-only after Load() returns and thread-safe for concurrent reads.
type Config struct {
	Mode     string         `yaml:"mode"`
	Server   ServerConfig   `yaml:"server"`
	Remote   RemoteConfig   `yaml:"remote"`
	Session  SessionConfig  `yaml:"session"`
	Loader   LoaderConfig   `yaml:"loader"`
	Snapshot SnapshotConfig `yaml:"snapshot"`
	Backup   BackupConfig   `yaml:"backup"`
	Auth     AuthConfig     `yaml:"auth"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port            int      `yaml:"port"`
	ReadTimeout     Duration `yaml:"read_timeout"`
	WriteTimeout    Duration `yaml:"write_timeout"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
}

// RemoteConfig selects the remote row store.
type RemoteConfig struct {
	Driver string `yaml:"driver"` // sqlite | postgres
	DSN    string `yaml:"dsn"`
}

// SessionConfig identifies the authoring session.
type SessionConfig struct {
	UserID string `yaml:"user_id"`
}

// LoaderConfig contains bulk load settings.
type LoaderConfig struct {
	Timeout Duration `yaml:"timeout"`
}

// SnapshotConfig contains local cached snapshot settings.
type SnapshotConfig struct {
	Backend  string   `yaml:"backend"` // file | redis
	Path     string   `yaml:"path"`
	RedisURL string   `yaml:"redis_url"`
	Key      string   `yaml:"key"`
	Interval Duration `yaml:"interval"`
}

// BackupConfig contains S3-compatible backup archive settings.
// An empty bucket disables uploads.
type BackupConfig struct {
	Bucket    string `yaml:"bucket"`
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`
	Prefix    string `yaml:"prefix"`
	UseSSL    *bool  `yaml:"use_ssl"`
	AccessKey string `yaml:"-"` // env-only, never in YAML
	SecretKey string `yaml:"-"` // env-only, never in YAML
}

// AuthConfig contains authentication settings.
type AuthConfig struct {
	APIKey string `yaml:"-"` // env-only, never in YAML
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Duration is a wrapper around time.Duration that supports YAML string parsing.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler for Duration.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Load loads configuration with precedence: defaults → YAML file → env vars.
func Load() (*Config, error) {
	cfg := newDefaults()

	configPath := getEnv("CDU_CONFIG_PATH", "config/cdusync.yaml")

	// Missing file is not an error
	if err := loadYAMLFile(cfg, configPath); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadOffline loads configuration like Load but does not require the API
// key. CLI commands that never serve HTTP use it.
func LoadOffline() (*Config, error) {
	cfg := newDefaults()

	if err := loadYAMLFile(cfg, getEnv("CDU_CONFIG_PATH", "config/cdusync.yaml")); err != nil {
		return nil, err
	}
	applyEnvOverrides(cfg)

	if err := cfg.validateStorage(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromFile loads configuration from a specific path.
// Used for testing and an explicit config path.
func LoadFromFile(path string) (*Config, error) {
	cfg := newDefaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// newDefaults returns a Config with all default values.
func newDefaults() *Config {
	return &Config{
		Mode: ModeRemote,
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     Duration(30 * time.Second),
			WriteTimeout:    Duration(30 * time.Second),
			ShutdownTimeout: Duration(15 * time.Second),
		},
		Remote: RemoteConfig{
			Driver: "sqlite",
			DSN:    "data/cdusync.db",
		},
		Session: SessionConfig{
			UserID: "local",
		},
		Loader: LoaderConfig{
			Timeout: Duration(15 * time.Second),
		},
		Snapshot: SnapshotConfig{
			Backend:  "file",
			Path:     "data/cdu_data.json",
			Key:      "cdu_data",
			Interval: Duration(10 * time.Minute),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// loadYAMLFile loads configuration from a YAML file if it exists.
func loadYAMLFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
// Only non-empty env vars override config values.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CDU_MODE"); v != "" {
		cfg.Mode = v
	}

	// Server
	if v := os.Getenv("CDU_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	envDuration("CDU_READ_TIMEOUT", &cfg.Server.ReadTimeout)
	envDuration("CDU_WRITE_TIMEOUT", &cfg.Server.WriteTimeout)
	envDuration("CDU_SHUTDOWN_TIMEOUT", &cfg.Server.ShutdownTimeout)

	// Remote
	if v := os.Getenv("CDU_REMOTE_DRIVER"); v != "" {
		cfg.Remote.Driver = v
	}
	if v := os.Getenv("CDU_REMOTE_DSN"); v != "" {
		cfg.Remote.DSN = v
	}

	if v := os.Getenv("CDU_USER_ID"); v != "" {
		cfg.Session.UserID = v
	}
	envDuration("CDU_LOAD_TIMEOUT", &cfg.Loader.Timeout)

	// Snapshot
	if v := os.Getenv("CDU_SNAPSHOT_BACKEND"); v != "" {
		cfg.Snapshot.Backend = v
	}
	if v := os.Getenv("CDU_SNAPSHOT_PATH"); v != "" {
		cfg.Snapshot.Path = v
	}
	if v := os.Getenv("CDU_REDIS_URL"); v != "" {
		cfg.Snapshot.RedisURL = v
	}
	if v := os.Getenv("CDU_SNAPSHOT_KEY"); v != "" {
		cfg.Snapshot.Key = v
	}
	envDuration("CDU_SNAPSHOT_INTERVAL", &cfg.Snapshot.Interval)

	// Backup
	if v := os.Getenv("CDU_BACKUP_BUCKET"); v != "" {
		cfg.Backup.Bucket = v
	}
	if v := os.Getenv("CDU_BACKUP_ENDPOINT"); v != "" {
		cfg.Backup.Endpoint = v
	}
	if v := os.Getenv("CDU_BACKUP_REGION"); v != "" {
		cfg.Backup.Region = v
	}
	if v := os.Getenv("CDU_BACKUP_PREFIX"); v != "" {
		cfg.Backup.Prefix = v
	}
	if v := os.Getenv("CDU_BACKUP_USE_SSL"); v != "" {
		useSSL := v == "true" || v == "1"
		cfg.Backup.UseSSL = &useSSL
	}
	if v := os.Getenv("CDU_BACKUP_ACCESS_KEY"); v != "" {
		cfg.Backup.AccessKey = v
	}
	if v := os.Getenv("CDU_BACKUP_SECRET_KEY"); v != "" {
		cfg.Backup.SecretKey = v
	}

	// Auth
	if v := os.Getenv("CDU_API_KEY"); v != "" {
		cfg.Auth.APIKey = v
	}

	// Log
	if v := os.Getenv("CDU_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("CDU_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}

func envDuration(key string, dst *Duration) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = Duration(d)
		}
	}
}

// validate checks that configuration values are consistent.
// In dev mode (CDU_DEV_MODE=true), API key validation is skipped.
func (c *Config) validate() error {
	if err := c.validateStorage(); err != nil {
		return err
	}

	if os.Getenv("CDU_DEV_MODE") == "true" {
		return nil
	}
	if c.Auth.APIKey == "" {
		return errors.New("CDU_API_KEY is required")
	}
	return nil
}

// validateStorage checks everything except credentials.
func (c *Config) validateStorage() error {
	switch c.Mode {
	case ModeRemote, ModeLocal:
	default:
		return fmt.Errorf("mode must be %q or %q, got %q", ModeRemote, ModeLocal, c.Mode)
	}
	switch c.Remote.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("remote.driver must be sqlite or postgres, got %q", c.Remote.Driver)
	}
	switch c.Snapshot.Backend {
	case "file":
		if c.Snapshot.Path == "" {
			return errors.New("snapshot.path is required for the file backend")
		}
	case "redis":
		if c.Snapshot.RedisURL == "" {
			return errors.New("CDU_REDIS_URL is required for the redis backend")
		}
	default:
		return fmt.Errorf("snapshot.backend must be file or redis, got %q", c.Snapshot.Backend)
	}
	if c.Loader.Timeout <= 0 {
		return errors.New("loader.timeout must be positive")
	}
	return nil
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
