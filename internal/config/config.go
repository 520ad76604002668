package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the complete prio configuration
type Config struct {
	Server  ServerConfig  `json:"server" mapstructure:"server"`
	Storage StorageConfig `json:"storage" mapstructure:"storage"`
	Engine  EngineConfig  `json:"engine" mapstructure:"engine"`
	Auth    AuthConfig    `json:"auth" mapstructure:"auth"`
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host string `json:"host" mapstructure:"host"`
	Port int    `json:"port" mapstructure:"port"`
}

// StorageConfig contains persistence settings
type StorageConfig struct {
	DataDir     string `json:"dataDir" mapstructure:"dataDir"`
	PersistRuns bool   `json:"persistRuns" mapstructure:"persistRuns"`
}

// EngineConfig contains prioritization engine settings
type EngineConfig struct {
	DefaultPolicy  string `json:"defaultPolicy" mapstructure:"defaultPolicy"`
	ComparatorSeed int64  `json:"comparatorSeed" mapstructure:"comparatorSeed"`
}

// AuthConfig contains API authentication settings
type AuthConfig struct {
	Enabled   bool   `json:"enabled" mapstructure:"enabled"`
	TokenHash string `json:"tokenHash" mapstructure:"tokenHash"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Format string `json:"format" mapstructure:"format"`
	Level  string `json:"level" mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8745,
		},
		Storage: StorageConfig{
			DataDir:     ".prio",
			PersistRuns: true,
		},
		Engine: EngineConfig{
			DefaultPolicy:  "effort_aware",
			ComparatorSeed: 42,
		},
		Auth: AuthConfig{
			Enabled: false,
		},
		Logging: LoggingConfig{
			Format: "human",
			Level:  "info",
		},
	}
}

// Load reads configuration from the given file path. An empty path
// falls back to prio.json in the working directory; a missing file
// yields the defaults. PRIO_* environment variables override file
// values (for example PRIO_SERVER_PORT).
func Load(path string) (*Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("server.host", defaults.Server.Host)
	v.SetDefault("server.port", defaults.Server.Port)
	v.SetDefault("storage.dataDir", defaults.Storage.DataDir)
	v.SetDefault("storage.persistRuns", defaults.Storage.PersistRuns)
	v.SetDefault("engine.defaultPolicy", defaults.Engine.DefaultPolicy)
	v.SetDefault("engine.comparatorSeed", defaults.Engine.ComparatorSeed)
	v.SetDefault("auth.enabled", defaults.Auth.Enabled)
	v.SetDefault("auth.tokenHash", defaults.Auth.TokenHash)
	v.SetDefault("logging.format", defaults.Logging.Format)
	v.SetDefault("logging.level", defaults.Logging.Level)

	v.SetEnvPrefix("PRIO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("prio")
		v.SetConfigType("json")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok && path == "" {
			return defaults, nil
		}
		if os.IsNotExist(err) && path == "" {
			return defaults, nil
		}
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the configuration as indented JSON to the given path
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	return os.WriteFile(path, data, 0644)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return &ConfigError{Field: "server.port", Message: "port must be between 1 and 65535"}
	}
	if c.Storage.DataDir == "" {
		return &ConfigError{Field: "storage.dataDir", Message: "data directory cannot be empty"}
	}
	if c.Engine.DefaultPolicy == "" {
		return &ConfigError{Field: "engine.defaultPolicy", Message: "default policy cannot be empty"}
	}
	if c.Auth.Enabled && c.Auth.TokenHash == "" {
		return &ConfigError{Field: "auth.tokenHash", Message: "token hash required when auth is enabled"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return "config error in field '" + e.Field + "': " + e.Message
}

// ListenAddr returns the host:port pair the HTTP server binds to
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
