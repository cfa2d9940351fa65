// Package config loads and validates the server configuration from a
// JSON file, with environment overrides for host and port.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config holds everything the server needs for the process lifetime.
// PublicDir is resolved to an absolute, symlink-free path by Load and
// never changes afterwards.
type Config struct {
	Host       string `mapstructure:"host" validate:"required"`
	Port       int    `mapstructure:"port" validate:"min=1,max=65535"`
	MaxWorkers int    `mapstructure:"max_workers" validate:"min=1"`
	PublicDir  string `mapstructure:"public_dir" validate:"required"`
	LogFile    string `mapstructure:"log_file"`
	ChunkSize  int    `mapstructure:"chunk_size" validate:"min=1"`
	// Timeout is the per-connection read timeout in seconds.
	Timeout int `mapstructure:"timeout" validate:"min=1"`

	FailureInjection FailureInjection `mapstructure:"failure_injection"`
}

// FailureInjection configures the synthetic server-error responses used
// by the load client to exercise its error handling.
type FailureInjection struct {
	Enabled bool    `mapstructure:"enabled"`
	Rate    float64 `mapstructure:"rate" validate:"min=0,max=1"`
}

// Load reads the JSON config at path, applies defaults and environment
// overrides, validates the result, and canonicalizes the public dir.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")

	v.SetDefault("host", "127.0.0.1")
	v.SetDefault("port", 8000)
	v.SetDefault("max_workers", 10)
	v.SetDefault("public_dir", "public")
	v.SetDefault("chunk_size", 1024)
	v.SetDefault("timeout", 30)
	v.SetDefault("failure_injection.enabled", false)
	v.SetDefault("failure_injection.rate", 0.0)

	v.BindEnv("host", "SERVER_HOST")
	v.BindEnv("port", "PORT")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	root, err := ResolveDir(cfg.PublicDir)
	if err != nil {
		return nil, err
	}
	cfg.PublicDir = root

	return &cfg, nil
}

// Validate checks field ranges. The public dir existence check happens
// separately so tests can validate configs without a filesystem.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Address returns the host:port the server listens on.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// ReadTimeout returns the per-connection read timeout.
func (c *Config) ReadTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// ResolveDir canonicalizes a sandbox directory to an absolute,
// symlink-free path and verifies it exists.
func ResolveDir(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving public dir %s: %w", dir, err)
	}
	root, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("resolving public dir %s: %w", dir, err)
	}
	fi, err := os.Stat(root)
	if err != nil {
		return "", fmt.Errorf("public dir %s: %w", dir, err)
	}
	if !fi.IsDir() {
		return "", fmt.Errorf("public dir %s is not a directory", dir)
	}
	return root, nil
}
