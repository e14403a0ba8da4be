package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

const (
	StoreBackendMemory   = "memory"
	StoreBackendPostgres = "postgres"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Store      StoreConfig
	Checkpoint CheckpointConfig
	Registry   RegistryConfig
	Logger     LoggerConfig
	Metrics    MetricsConfig
}

type ServerConfig struct {
	Host            string
	Port            int
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	URL             string
	MaxConns        int
	MinConns        int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
}

type StoreConfig struct {
	Backend string
}

type CheckpointConfig struct {
	Enabled  bool
	URL      string
	Timeout  time.Duration
	CacheTTL time.Duration
}

type RegistryConfig struct {
	DefaultOwner              string
	VersionAllocationAttempts int
}

type LoggerConfig struct {
	Level  string
	Format string
}

type MetricsConfig struct {
	Enabled bool
	Path    string
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("SERVER_SHUTDOWN_TIMEOUT", "10s")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DATABASE_MAX_CONNS", 10)
	v.SetDefault("DATABASE_MIN_CONNS", 2)
	v.SetDefault("DATABASE_CONN_MAX_LIFETIME", "30m")
	v.SetDefault("DATABASE_AUTO_MIGRATE", true)
	v.SetDefault("STORE_BACKEND", StoreBackendMemory)
	v.SetDefault("CHECKPOINT_ENABLED", false)
	v.SetDefault("CHECKPOINT_URL", "http://localhost:8081")
	v.SetDefault("CHECKPOINT_TIMEOUT", "10s")
	v.SetDefault("CHECKPOINT_CACHE_TTL", "5m")
	v.SetDefault("REGISTRY_DEFAULT_OWNER", "determined")
	v.SetDefault("REGISTRY_VERSION_ALLOCATION_ATTEMPTS", 3)
	v.SetDefault("LOGGER_LEVEL", "info")
	v.SetDefault("LOGGER_FORMAT", "json")
	v.SetDefault("METRICS_ENABLED", true)
	v.SetDefault("METRICS_PATH", "/metrics")
}

// LoadFrom reads the configuration from v after applying defaults and
// environment lookup. Callers may bind flags into v beforehand.
func LoadFrom(v *viper.Viper) (*Config, error) {
	SetDefaults(v)
	v.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Host:            v.GetString("SERVER_HOST"),
			Port:            v.GetInt("SERVER_PORT"),
			ShutdownTimeout: v.GetDuration("SERVER_SHUTDOWN_TIMEOUT"),
		},
		Database: DatabaseConfig{
			URL:             v.GetString("DATABASE_URL"),
			MaxConns:        v.GetInt("DATABASE_MAX_CONNS"),
			MinConns:        v.GetInt("DATABASE_MIN_CONNS"),
			ConnMaxLifetime: v.GetDuration("DATABASE_CONN_MAX_LIFETIME"),
			AutoMigrate:     v.GetBool("DATABASE_AUTO_MIGRATE"),
		},
		Store: StoreConfig{
			Backend: v.GetString("STORE_BACKEND"),
		},
		Checkpoint: CheckpointConfig{
			Enabled:  v.GetBool("CHECKPOINT_ENABLED"),
			URL:      v.GetString("CHECKPOINT_URL"),
			Timeout:  v.GetDuration("CHECKPOINT_TIMEOUT"),
			CacheTTL: v.GetDuration("CHECKPOINT_CACHE_TTL"),
		},
		Registry: RegistryConfig{
			DefaultOwner:              v.GetString("REGISTRY_DEFAULT_OWNER"),
			VersionAllocationAttempts: v.GetInt("REGISTRY_VERSION_ALLOCATION_ATTEMPTS"),
		},
		Logger: LoggerConfig{
			Level:  v.GetString("LOGGER_LEVEL"),
			Format: v.GetString("LOGGER_FORMAT"),
		},
		Metrics: MetricsConfig{
			Enabled: v.GetBool("METRICS_ENABLED"),
			Path:    v.GetString("METRICS_PATH"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Store.Backend {
	case StoreBackendMemory:
	case StoreBackendPostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required for the %s store", StoreBackendPostgres)
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.Store.Backend)
	}
	if c.Checkpoint.Enabled && c.Checkpoint.URL == "" {
		return fmt.Errorf("CHECKPOINT_URL is required when CHECKPOINT_ENABLED is set")
	}
	if c.Registry.VersionAllocationAttempts <= 0 {
		return fmt.Errorf("REGISTRY_VERSION_ALLOCATION_ATTEMPTS must be positive")
	}
	return nil
}
