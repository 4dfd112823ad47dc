package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// DefaultConfigFile is read from the working directory when present.
const DefaultConfigFile = "config.yaml"

// devSessionSecret is only accepted in the local environment.
const devSessionSecret = "dev-secret-key"

// Config holds all configuration for fdp-explorer.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (session key, Redis password) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8080"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	BaseURL  string `yaml:"base_url" env:"BASE_URL" env-default:""` // Auto-derived from Port if empty
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// TLS configuration (optional - if both provided, server uses HTTPS)
	TLSCertPath string `yaml:"tls_cert_path" env:"TLS_CERT_PATH" env-default:""`
	TLSKeyPath  string `yaml:"tls_key_path" env:"TLS_KEY_PATH" env-default:""`

	// Remote FAIR Data Point access
	FDP FDPConfig `yaml:"fdp"`

	// Browser sessions (FDP list, basket, drafted emails)
	Session SessionConfig `yaml:"session"`

	// Dataset listing cache. In-memory unless Redis.Host is set.
	Redis RedisConfig `yaml:"redis"`
	Cache CacheConfig `yaml:"cache"`

	// MCP tool endpoint
	MCP MCPConfig `yaml:"mcp"`
}

// FDPConfig controls how FAIR Data Points are fetched.
type FDPConfig struct {
	// TimeoutSeconds applies to every single HTTP request, not to a whole aggregation.
	TimeoutSeconds int `yaml:"timeout_seconds" env:"FDP_TIMEOUT" env-default:"30"`
	// VerifySSL disables certificate checks when false. Only for test FDPs with self-signed certs.
	VerifySSL bool `yaml:"verify_ssl" env:"FDP_VERIFY_SSL" env-default:"true"`
	// MaxRetries is the number of extra attempts for timeouts and 5xx responses.
	MaxRetries int `yaml:"max_retries" env:"FDP_MAX_RETRIES" env-default:"0"`
	// RateLimit caps outgoing requests per second. 0 disables the limit.
	RateLimit float64 `yaml:"rate_limit" env:"FDP_RATE_LIMIT" env-default:"0"`
	// Concurrency bounds parallel FDP and catalog fetches during aggregation. 1 is sequential.
	Concurrency int `yaml:"concurrency" env:"FDP_CONCURRENCY" env-default:"1"`
	// SeedsFile is an optional YAML list of FDPs registered for every new session.
	SeedsFile string `yaml:"seeds_file" env:"FDP_SEEDS_FILE" env-default:""`
}

// Timeout returns the per-request timeout.
func (c FDPConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// SessionConfig holds browser session settings.
type SessionConfig struct {
	// StorePath is the directory for server-side session files. Defaults to the OS temp dir.
	StorePath     string `yaml:"store_path" env:"SESSION_STORE_PATH" env-default:""`
	MaxAgeSeconds int    `yaml:"max_age_seconds" env:"SESSION_MAX_AGE_SECONDS" env-default:"86400"`
	Secret        string `yaml:"-" env:"SECRET_KEY"` // Secret - not in YAML
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Host     string `yaml:"host" env:"REDIS_HOST" env-default:""`
	Port     int    `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	Password string `yaml:"-" env:"REDIS_PASSWORD"` // Secret - not in YAML
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

// Enabled reports whether a Redis host is configured.
func (c RedisConfig) Enabled() bool {
	return c.Host != ""
}

// Addr returns host:port, mapping a loopback host to the Docker host gateway
// when running inside a container.
func (c RedisConfig) Addr() string {
	return net.JoinHostPort(resolveHostForDocker(c.Host), strconv.Itoa(c.Port))
}

// CacheConfig holds dataset cache settings.
type CacheConfig struct {
	TTLMinutes int `yaml:"ttl_minutes" env:"CACHE_TTL_MINUTES" env-default:"60"`
}

// TTL returns the cache entry lifetime.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLMinutes) * time.Minute
}

// MCPConfig holds MCP server settings.
type MCPConfig struct {
	Enabled bool `yaml:"enabled" env:"MCP_ENABLED" env-default:"true"`
}

// Load reads configuration from config.yaml (if present) with environment
// variable overrides. The version parameter is injected at build time.
func Load(version string) (*Config, error) {
	return LoadFile(DefaultConfigFile, version)
}

// LoadFile is Load with an explicit config file path. A missing file is not an
// error; configuration then comes from environment variables and defaults.
func LoadFile(path, version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	} else if errors.Is(err, os.ErrNotExist) {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	} else {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	// Auto-derive BaseURL from Port if not explicitly set
	if cfg.BaseURL == "" {
		scheme := "http"
		if cfg.TLSCertPath != "" {
			scheme = "https"
		}
		cfg.BaseURL = (&url.URL{
			Scheme: scheme,
			Host:   "localhost:" + cfg.Port,
		}).String()
	}

	if cfg.Session.Secret == "" && cfg.IsLocal() {
		cfg.Session.Secret = devSessionSecret
	}
	if cfg.Session.StorePath == "" {
		cfg.Session.StorePath = os.TempDir()
	}

	return cfg, nil
}

// IsLocal reports whether the server runs in a developer environment.
func (c *Config) IsLocal() bool {
	return c.Env == "local" || c.Env == "dev"
}

// ListenAddr returns the address the HTTP server binds to.
func (c *Config) ListenAddr() string {
	return net.JoinHostPort(c.BindAddr, c.Port)
}

func (c *Config) validate() error {
	if c.FDP.TimeoutSeconds <= 0 {
		return fmt.Errorf("fdp.timeout_seconds must be positive, got %d", c.FDP.TimeoutSeconds)
	}
	if c.FDP.MaxRetries < 0 {
		return fmt.Errorf("fdp.max_retries must not be negative, got %d", c.FDP.MaxRetries)
	}
	if c.FDP.RateLimit < 0 {
		return fmt.Errorf("fdp.rate_limit must not be negative, got %g", c.FDP.RateLimit)
	}
	if c.FDP.Concurrency < 1 {
		return fmt.Errorf("fdp.concurrency must be at least 1, got %d", c.FDP.Concurrency)
	}
	if c.Cache.TTLMinutes <= 0 {
		return fmt.Errorf("cache.ttl_minutes must be positive, got %d", c.Cache.TTLMinutes)
	}
	if c.Session.Secret == "" && !c.IsLocal() {
		return fmt.Errorf("SECRET_KEY must be set outside the local environment")
	}
	if err := c.validateTLS(); err != nil {
		return fmt.Errorf("invalid TLS configuration: %w", err)
	}
	return nil
}

// validateTLS ensures TLS configuration is valid if provided.
// Both cert and key must be provided together, and files must exist.
func (c *Config) validateTLS() error {
	certSet := c.TLSCertPath != ""
	keySet := c.TLSKeyPath != ""

	if certSet != keySet {
		return fmt.Errorf("both tls_cert_path and tls_key_path must be provided together")
	}

	if certSet {
		if _, err := os.Stat(c.TLSCertPath); err != nil {
			return fmt.Errorf("TLS cert file does not exist: %w", err)
		}
		if _, err := os.Stat(c.TLSKeyPath); err != nil {
			return fmt.Errorf("TLS key file does not exist: %w", err)
		}
	}

	return nil
}

var (
	isDockerOnce   sync.Once
	isDockerResult bool
)

// isRunningInDocker checks for /.dockerenv. The result is cached.
func isRunningInDocker() bool {
	isDockerOnce.Do(func() {
		_, err := os.Stat("/.dockerenv")
		isDockerResult = err == nil
	})
	return isDockerResult
}

func resolveHostForDocker(host string) string {
	if !isRunningInDocker() {
		return host
	}
	if host == "localhost" || host == "127.0.0.1" {
		return "host.docker.internal"
	}
	return host
}
