package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Images   ImagesConfig   `yaml:"images"`
	Log      LogConfig      `yaml:"log"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Port    int    `yaml:"port"`
	Path    string `yaml:"path"`
}

// DatabaseConfig selects the GORM dialect. Dialect "sqlite3" uses Path;
// "postgres" uses DSN.
type DatabaseConfig struct {
	Dialect      string `yaml:"dialect"`
	Path         string `yaml:"path"`
	DSN          string `yaml:"dsn"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
	MaxOpenConns int    `yaml:"max_open_conns"`
}

// Duration parses YAML strings like "24h" into a time.Duration.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

type AuthConfig struct {
	JWTSecret string   `yaml:"jwt_secret"`
	TokenTTL  Duration `yaml:"token_ttl"`
}

type ImagesConfig struct {
	Dir string `yaml:"dir"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when no file is supplied.
func Default() *Config {
	return &Config{
		Server:  ServerConfig{Port: 8080},
		Metrics: MetricsConfig{Enabled: true, Port: 9090, Path: "/metrics"},
		Database: DatabaseConfig{
			Dialect:      "sqlite3",
			Path:         "tabletap.db",
			MaxIdleConns: 10,
			MaxOpenConns: 100,
		},
		Auth:   AuthConfig{JWTSecret: "change-me", TokenTTL: Duration(24 * time.Hour)},
		Images: ImagesConfig{Dir: "media"},
		Log:    LogConfig{Level: "info"},
	}
}

// Load reads a YAML configuration file over the defaults. A missing
// path returns the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Database.Dialect {
	case "sqlite3":
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required for sqlite3")
		}
	case "postgres":
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required for postgres")
		}
	default:
		return fmt.Errorf("unsupported database dialect %q", c.Database.Dialect)
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret must not be empty")
	}
	return nil
}
