package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// EnvPrefix prefixes every environment variable override
const EnvPrefix = "REALFOOD"

// Config holds all configuration for the application
type Config struct {
	Server        ServerConfig        `mapstructure:"server" yaml:"server"`
	OpenFoodFacts OpenFoodFactsConfig `mapstructure:"openfoodfacts" yaml:"openfoodfacts"`
	Cache         CacheConfig         `mapstructure:"cache" yaml:"cache"`
	RateLimit     RateLimitConfig     `mapstructure:"ratelimit" yaml:"ratelimit"`
	Logging       LoggingConfig       `mapstructure:"logging" yaml:"logging"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port            string        `mapstructure:"port" yaml:"port"`
	Environment     string        `mapstructure:"environment" yaml:"environment"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins" yaml:"allowed_origins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// OpenFoodFactsConfig holds product database configuration
type OpenFoodFactsConfig struct {
	BaseURL           string        `mapstructure:"base_url" yaml:"base_url"`
	UserAgent         string        `mapstructure:"user_agent" yaml:"user_agent"`
	Timeout           time.Duration `mapstructure:"timeout" yaml:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second" yaml:"requests_per_second"`
	Burst             int           `mapstructure:"burst" yaml:"burst"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	Type            string        `mapstructure:"type" yaml:"type"` // "memory" or "layered"
	Dir             string        `mapstructure:"dir" yaml:"dir"`   // disk layer location for "layered"
	TTL             time.Duration `mapstructure:"ttl" yaml:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval" yaml:"cleanup_interval"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip" yaml:"per_ip"` // requests per minute, 0 disables
	Burst int `mapstructure:"burst" yaml:"burst"`
}

// LoggingConfig holds logger configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"` // text, json or logfmt
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	return FromViper(NewViper(), "")
}

// NewViper returns a viper instance with the config search paths,
// environment binding and defaults in place
func NewViper() *viper.Viper {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/realfood/")

	// REALFOOD_CACHE_TTL overrides cache.ttl
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	return v
}

// FromViper reads configFile (or searches the default paths when empty),
// decodes and validates the configuration
func FromViper(v *viper.Viper, configFile string) (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	}

	// Config file is optional unless one was named explicitly
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// loadEnvFile loads a .env file from the working directory when present.
// Variables already set in the environment win.
func loadEnvFile() error {
	if _, err := os.Stat(".env"); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return gotenv.Load(".env")
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"chrome-extension://*", "http://localhost:*"})
	v.SetDefault("server.shutdown_timeout", "10s")

	// Open Food Facts defaults
	v.SetDefault("openfoodfacts.base_url", "https://world.openfoodfacts.org")
	v.SetDefault("openfoodfacts.user_agent", "RealFoodScore/1.0")
	v.SetDefault("openfoodfacts.timeout", "15s")
	v.SetDefault("openfoodfacts.requests_per_second", 1.5)
	v.SetDefault("openfoodfacts.burst", 5)

	// Cache defaults
	v.SetDefault("cache.type", "layered")
	v.SetDefault("cache.dir", "data/cache")
	v.SetDefault("cache.ttl", "720h") // 30 days
	v.SetDefault("cache.cleanup_interval", "1h")

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 100)
	v.SetDefault("ratelimit.burst", 20)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

var validLogLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true, "fatal": true}

// validate validates the configuration
func validate(config *Config) error {
	if config.Server.Port == "" {
		return fmt.Errorf("server port is required (set %s_SERVER_PORT)", EnvPrefix)
	}

	u, err := url.Parse(config.OpenFoodFacts.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("openfoodfacts base_url must be an http(s) URL, got: %q", config.OpenFoodFacts.BaseURL)
	}
	if config.OpenFoodFacts.RequestsPerSecond <= 0 {
		return fmt.Errorf("openfoodfacts requests_per_second must be positive, got: %v", config.OpenFoodFacts.RequestsPerSecond)
	}

	switch config.Cache.Type {
	case "memory":
	case "layered":
		if config.Cache.Dir == "" {
			return fmt.Errorf("cache dir is required when cache type is 'layered'")
		}
	default:
		return fmt.Errorf("cache type must be 'memory' or 'layered', got: %s", config.Cache.Type)
	}
	if config.Cache.TTL < 0 {
		return fmt.Errorf("cache ttl must not be negative, got: %s", config.Cache.TTL)
	}

	if config.RateLimit.PerIP < 0 {
		return fmt.Errorf("ratelimit per_ip must not be negative, got: %d", config.RateLimit.PerIP)
	}

	if !validLogLevels[strings.ToLower(config.Logging.Level)] {
		return fmt.Errorf("logging level must be debug, info, warn, error or fatal, got: %q", config.Logging.Level)
	}
	switch strings.ToLower(config.Logging.Format) {
	case "text", "json", "logfmt":
	default:
		return fmt.Errorf("logging format must be text, json or logfmt, got: %q", config.Logging.Format)
	}

	return nil
}
