package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// defaultAuthSecret is used when AUTH_SECRET is unset and refused in production
const defaultAuthSecret = "change-me-in-production-secret-key"

// minSecretLength matches what the JWT signer needs for HS256 to be meaningful
const minSecretLength = 32

// Config holds the application configuration
type Config struct {
	Environment   string `env:"APP_ENV" env-default:"development"`
	LogJSON       string `env:"LOG_JSON"`
	ServerAddress string `env:"SERVER_ADDRESS" env-default:":3000"`
	DatabasePath  string `env:"DATABASE_PATH" env-default:"./data/sqlite.db"`
	Auth          AuthConfig
	CORS          CORSConfig
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowedOriginsRaw string `env:"CORS_ALLOWED_ORIGINS" env-default:"http://localhost:8081,myapp://"`
	AllowedOrigins    []string
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	APIPath           string        `env:"AUTH_API_PATH" env-default:"/api/auth"`
	Secret            string        `env:"AUTH_SECRET"`                                       // Falls back to defaultAuthSecret in Load
	BaseURL           string        `env:"AUTH_BASE_URL" env-default:"http://localhost:3000"` // Used as the JWT issuer URL
	Issuer            string        `env:"AUTH_ISSUER" env-default:"authstarter"`
	SecureCookie      bool          `env:"AUTH_SECURE_COOKIE" env-default:"false"`
	TokenTTL          time.Duration `env:"AUTH_TOKEN_TTL" env-default:"15m"`
	SessionTTL        time.Duration `env:"AUTH_SESSION_TTL" env-default:"168h"`
	MinPasswordLength int           `env:"AUTH_MIN_PASSWORD_LENGTH" env-default:"8"`
	MaxPasswordLength int           `env:"AUTH_MAX_PASSWORD_LENGTH" env-default:"128"`
	SweepSchedule     string        `env:"AUTH_SWEEP_SCHEDULE" env-default:"@every 10m"`
}

// Load loads configuration from environment variables with defaults
func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}

	if cfg.Auth.Secret == "" {
		cfg.Auth.Secret = defaultAuthSecret
	}

	// Parse CORS allowed origins from comma-separated string
	cfg.CORS.AllowedOrigins = parseCommaSeparatedList(cfg.CORS.AllowedOriginsRaw)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}

	return &cfg, nil
}

// IsProduction reports whether the server runs with production defaults
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// JSONLogs reports whether logs are written as JSON.
// Default: JSON in production, text in development.
func (c *Config) JSONLogs() bool {
	if c.LogJSON != "" {
		return c.LogJSON == "true"
	}
	return c.Environment != "development"
}

// Validate checks cross-field constraints cleanenv cannot express
func (c *Config) Validate() error {
	var errs []error

	if c.ServerAddress == "" {
		errs = append(errs, errors.New("SERVER_ADDRESS must not be empty"))
	}
	if c.DatabasePath == "" {
		errs = append(errs, errors.New("DATABASE_PATH must not be empty"))
	}

	a := c.Auth
	if !strings.HasPrefix(a.APIPath, "/") || strings.HasSuffix(a.APIPath, "/") {
		errs = append(errs, fmt.Errorf("AUTH_API_PATH must start with '/' and not end with '/': %q", a.APIPath))
	}
	if c.IsProduction() {
		if a.Secret == defaultAuthSecret {
			errs = append(errs, errors.New("AUTH_SECRET must be set in production"))
		}
		if len(a.Secret) < minSecretLength {
			errs = append(errs, fmt.Errorf("AUTH_SECRET must be at least %d characters", minSecretLength))
		}
	}
	if a.MinPasswordLength < 1 {
		errs = append(errs, errors.New("AUTH_MIN_PASSWORD_LENGTH must be positive"))
	}
	if a.MaxPasswordLength < a.MinPasswordLength {
		errs = append(errs, errors.New("AUTH_MAX_PASSWORD_LENGTH must not be less than AUTH_MIN_PASSWORD_LENGTH"))
	}
	if a.TokenTTL <= 0 {
		errs = append(errs, errors.New("AUTH_TOKEN_TTL must be positive"))
	}
	if a.SessionTTL < a.TokenTTL {
		errs = append(errs, errors.New("AUTH_SESSION_TTL must not be shorter than AUTH_TOKEN_TTL"))
	}
	if a.SweepSchedule == "" {
		errs = append(errs, errors.New("AUTH_SWEEP_SCHEDULE must not be empty"))
	}

	return errors.Join(errs...)
}

// parseCommaSeparatedList splits a comma-separated string into a slice
func parseCommaSeparatedList(s string) []string {
	if s == "" {
		return []string{}
	}

	items := strings.Split(s, ",")
	result := make([]string, 0, len(items))

	for _, item := range items {
		item = strings.TrimSpace(item)
		if item != "" {
			result = append(result, item)
		}
	}

	return result
}
