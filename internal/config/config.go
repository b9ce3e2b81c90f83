package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	// TokenEnv holds the Wrike bearer token.
	TokenEnv = "WRIKE_TOKEN"
	// legacyTokenEnv is read when WRIKE_TOKEN is unset.
	legacyTokenEnv = "TOKEN"

	defaultJWTSecret     = "secret123"
	defaultAdminPassword = "admin"
)

// Duration is a time.Duration that unmarshals from TOML strings like "20s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

type Config struct {
	// APP
	AppEnv    string `toml:"app_env"`
	Port      string `toml:"port"`
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`

	// Database
	DatabaseURL string `toml:"database_url"`

	JWTSecret string `toml:"jwt_secret"`

	// Wrike
	WrikeToken    string   `toml:"wrike_token"`
	WrikeBaseURL  string   `toml:"wrike_base_url"`
	HTTPTimeout   Duration `toml:"http_timeout"`
	RateLimit     float64  `toml:"rate_limit"`
	RateBurst     int      `toml:"rate_burst"`
	ParallelFetch bool     `toml:"parallel_fetch"`

	// Output
	OutputPath   string `toml:"output_path"`
	OutputFormat string `toml:"output_format"`

	// Admin login
	AdminUsername string `toml:"admin_username"`
	AdminPassword string `toml:"admin_password"`
}

// ConfigurationError reports a missing or invalid setting.
type ConfigurationError struct {
	Key    string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s %s", e.Key, e.Reason)
}

// MissingToken is returned when no Wrike token has been supplied.
func MissingToken() error {
	return &ConfigurationError{Key: TokenEnv, Reason: "is not set"}
}

func defaults() *Config {
	return &Config{
		AppEnv:        "development",
		Port:          "8001",
		LogLevel:      "info",
		LogFormat:     "text",
		JWTSecret:     defaultJWTSecret,
		WrikeBaseURL:  "https://www.wrike.com/api/v4",
		HTTPTimeout:   Duration{20 * time.Second},
		RateLimit:     5,
		RateBurst:     1,
		OutputPath:    "project_structure.json",
		OutputFormat:  "json",
		AdminUsername: "admin",
		AdminPassword: defaultAdminPassword,
	}
}

// Load builds the configuration from defaults, the optional TOML file named
// by CONFIG_FILE, then environment variables. The Wrike token is not
// required here; the export pipeline checks it before any request.
func Load() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	// App
	cfg.AppEnv = getEnv("APP_ENV", cfg.AppEnv)
	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnv("LOG_FORMAT", cfg.LogFormat)

	// DB
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)

	// JWT
	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)

	// Wrike
	cfg.WrikeToken = getEnv(TokenEnv, getEnv(legacyTokenEnv, cfg.WrikeToken))
	cfg.WrikeBaseURL = getEnv("WRIKE_BASE_URL", cfg.WrikeBaseURL)
	cfg.HTTPTimeout.Duration = getEnvDuration("HTTP_TIMEOUT", cfg.HTTPTimeout.Duration)
	cfg.RateLimit = getEnvFloat("WRIKE_RATE_LIMIT", cfg.RateLimit)
	cfg.RateBurst = getEnvInt("WRIKE_RATE_BURST", cfg.RateBurst)
	cfg.ParallelFetch = getEnvBool("PARALLEL_FETCH", cfg.ParallelFetch)

	// Output
	cfg.OutputPath = getEnv("OUTPUT_PATH", cfg.OutputPath)
	cfg.OutputFormat = strings.ToLower(getEnv("OUTPUT_FORMAT", cfg.OutputFormat))

	// Admin login
	cfg.AdminUsername = getEnv("ADMIN_USERNAME", cfg.AdminUsername)
	cfg.AdminPassword = getEnv("ADMIN_PASSWORD", cfg.AdminPassword)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges. Outside production the built-in JWT secret
// and admin password are accepted; the Wrike token is never required here.
func (c *Config) Validate() error {
	switch c.OutputFormat {
	case "json", "yaml":
	default:
		return &ConfigurationError{Key: "OUTPUT_FORMAT", Reason: fmt.Sprintf("must be json or yaml, got %q", c.OutputFormat)}
	}
	if strings.TrimSpace(c.OutputPath) == "" {
		return &ConfigurationError{Key: "OUTPUT_PATH", Reason: "is empty"}
	}
	if c.HTTPTimeout.Duration <= 0 {
		return &ConfigurationError{Key: "HTTP_TIMEOUT", Reason: "must be positive"}
	}
	if c.RateLimit <= 0 || c.RateBurst <= 0 {
		return &ConfigurationError{Key: "WRIKE_RATE_LIMIT", Reason: "rate and burst must be positive"}
	}
	if c.AppEnv == "production" {
		if c.JWTSecret == "" || c.JWTSecret == defaultJWTSecret {
			return &ConfigurationError{Key: "JWT_SECRET", Reason: "must be set to a non-default value in production"}
		}
		if c.AdminPassword == "" || c.AdminPassword == defaultAdminPassword {
			return &ConfigurationError{Key: "ADMIN_PASSWORD", Reason: "must be set to a non-default value in production"}
		}
	}
	return nil
}

// getEnv returns environment variable or default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvFloat returns float from env or default.
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
