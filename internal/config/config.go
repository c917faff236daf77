package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the movierec server configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Artifacts ArtifactsConfig `yaml:"artifacts"`
	Recommend RecommendConfig `yaml:"recommend"`
	Posters   PostersConfig   `yaml:"posters"`
	Cache     CacheConfig     `yaml:"cache"`
	Auth      AuthConfig      `yaml:"auth"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
	DefaultPageSize int `yaml:"default_page_size"`
	MaxPageSize     int `yaml:"max_page_size"`
}

// ArtifactsConfig points at the precomputed catalog and similarity matrix.
type ArtifactsConfig struct {
	CatalogPath string `yaml:"catalog_path"`
	MatrixPath  string `yaml:"matrix_path"`
}

// RecommendConfig holds ranking settings.
type RecommendConfig struct {
	Limit int `yaml:"limit"`
}

// PostersConfig holds poster provider settings.
type PostersConfig struct {
	Provider       string        `yaml:"provider"` // tmdb, none (default: tmdb when a credential is set)
	APIKey         string        `yaml:"api_key"`
	AccessToken    string        `yaml:"access_token"`
	BaseURL        string        `yaml:"base_url"`
	ImageBaseURL   string        `yaml:"image_base_url"`
	TimeoutSec     int           `yaml:"timeout_sec"`
	Workers        int           `yaml:"workers"`
	RatePerSec     float64       `yaml:"rate_per_sec"` // 0 = unlimited
	Burst          int           `yaml:"burst"`
	Breaker        BreakerConfig `yaml:"breaker"`
	PlaceholderURL string        `yaml:"placeholder_url"`
}

// BreakerConfig holds circuit breaker settings for the poster provider.
type BreakerConfig struct {
	FailureThreshold uint32 `yaml:"failure_threshold"`
	OpenTimeoutSec   int    `yaml:"open_timeout_sec"`
}

// CacheConfig holds poster cache connection settings.
type CacheConfig struct {
	Driver             string   `yaml:"driver"` // none, redis, valkey (default: none)
	Addrs              []string `yaml:"addrs"`
	Password           string   `yaml:"password"`
	TTLHours           int      `yaml:"ttl_hours"`
	NotFoundTTLMinutes int      `yaml:"not_found_ttl_minutes"`
	ReadinessTimeout   int      `yaml:"readiness_timeout_sec"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.HTTP.DefaultPageSize <= 0 {
		c.HTTP.DefaultPageSize = 50
	}
	if c.HTTP.MaxPageSize <= 0 {
		c.HTTP.MaxPageSize = 500
	}
	if c.Recommend.Limit <= 0 {
		c.Recommend.Limit = 5
	}
	if c.Posters.Provider == "" {
		if c.Posters.APIKey != "" || c.Posters.AccessToken != "" {
			c.Posters.Provider = "tmdb"
		} else {
			c.Posters.Provider = "none"
		}
	}
	if c.Posters.TimeoutSec <= 0 {
		c.Posters.TimeoutSec = 10
	}
	if c.Posters.Workers <= 0 {
		c.Posters.Workers = 5
	}
	if c.Posters.Burst <= 0 {
		c.Posters.Burst = c.Posters.Workers
	}
	if c.Posters.Breaker.FailureThreshold == 0 {
		c.Posters.Breaker.FailureThreshold = 5
	}
	if c.Posters.Breaker.OpenTimeoutSec <= 0 {
		c.Posters.Breaker.OpenTimeoutSec = 30
	}
	if c.Posters.PlaceholderURL == "" {
		c.Posters.PlaceholderURL = "https://via.placeholder.com/150?text=No+Poster"
	}
	if c.Cache.Driver == "" {
		c.Cache.Driver = "none"
	}
	if c.Cache.TTLHours <= 0 {
		c.Cache.TTLHours = 24 * 7
	}
	if c.Cache.NotFoundTTLMinutes <= 0 {
		c.Cache.NotFoundTTLMinutes = 60
	}
	if c.Cache.ReadinessTimeout <= 0 {
		c.Cache.ReadinessTimeout = 10
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Artifacts.CatalogPath == "" {
		return fmt.Errorf("artifacts.catalog_path is required")
	}
	if c.Artifacts.MatrixPath == "" {
		return fmt.Errorf("artifacts.matrix_path is required")
	}
	switch c.Posters.Provider {
	case "none":
	case "tmdb":
		if c.Posters.APIKey == "" && c.Posters.AccessToken == "" {
			return fmt.Errorf("posters.api_key or posters.access_token is required for provider tmdb")
		}
	default:
		return fmt.Errorf("posters.provider must be \"tmdb\" or \"none\", got %q", c.Posters.Provider)
	}
	if c.Posters.RatePerSec < 0 {
		return fmt.Errorf("posters.rate_per_sec must not be negative, got %v", c.Posters.RatePerSec)
	}
	switch c.Cache.Driver {
	case "none":
	case "redis", "valkey":
		if len(c.Cache.Addrs) == 0 {
			return fmt.Errorf("cache.addrs is required for driver %s", c.Cache.Driver)
		}
	default:
		return fmt.Errorf("cache.driver must be \"none\", \"redis\" or \"valkey\", got %q", c.Cache.Driver)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
