package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

var configKeys = []string{
	"APP_ENV",
	"LOG_JSON",
	"SERVER_ADDRESS",
	"DATABASE_PATH",
	"CORS_ALLOWED_ORIGINS",
	"AUTH_API_PATH",
	"AUTH_SECRET",
	"AUTH_BASE_URL",
	"AUTH_ISSUER",
	"AUTH_SECURE_COOKIE",
	"AUTH_TOKEN_TTL",
	"AUTH_SESSION_TTL",
	"AUTH_MIN_PASSWORD_LENGTH",
	"AUTH_MAX_PASSWORD_LENGTH",
	"AUTH_SWEEP_SCHEDULE",
}

// clearEnv unsets every config key for the duration of the test
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configKeys {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoad(t *testing.T) {
	clearEnv(t)

	// Test with default values
	config, err := Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if config.ServerAddress != ":3000" {
		t.Errorf("Expected ServerAddress to be :3000, got %s", config.ServerAddress)
	}

	if config.DatabasePath != "./data/sqlite.db" {
		t.Errorf("Expected DatabasePath to be ./data/sqlite.db, got %s", config.DatabasePath)
	}

	if config.Auth.APIPath != "/api/auth" {
		t.Errorf("Expected Auth.APIPath to be /api/auth, got %s", config.Auth.APIPath)
	}

	if config.Auth.MinPasswordLength != 8 || config.Auth.MaxPasswordLength != 128 {
		t.Errorf("Expected password bounds 8..128, got %d..%d", config.Auth.MinPasswordLength, config.Auth.MaxPasswordLength)
	}

	if config.Auth.TokenTTL != 15*time.Minute {
		t.Errorf("Expected TokenTTL to be 15m, got %v", config.Auth.TokenTTL)
	}

	if config.Auth.SessionTTL != 7*24*time.Hour {
		t.Errorf("Expected SessionTTL to be 168h, got %v", config.Auth.SessionTTL)
	}

	if config.Auth.SecureCookie {
		t.Error("Expected SecureCookie to be false by default")
	}

	expectedOrigins := []string{"http://localhost:8081", "myapp://"}
	if len(config.CORS.AllowedOrigins) != len(expectedOrigins) {
		t.Fatalf("Expected %d CORS origins, got %d", len(expectedOrigins), len(config.CORS.AllowedOrigins))
	}
	for i, origin := range expectedOrigins {
		if config.CORS.AllowedOrigins[i] != origin {
			t.Errorf("Expected CORS origin %d to be %s, got %s", i, origin, config.CORS.AllowedOrigins[i])
		}
	}

	if config.JSONLogs() {
		t.Error("Expected text logs in development")
	}
}

func TestLoad_DefaultSecret(t *testing.T) {
	clearEnv(t)

	config, err := Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if config.Auth.Secret != defaultAuthSecret {
		t.Errorf("Expected unset AUTH_SECRET to fall back to the default, got %q", config.Auth.Secret)
	}

	t.Setenv("APP_ENV", "production")
	if _, err := Load(); err == nil || !strings.Contains(err.Error(), "AUTH_SECRET must be set in production") {
		t.Errorf("Expected production to refuse the default secret, got %v", err)
	}

	t.Setenv("AUTH_SECRET", strings.Repeat("s", 40))
	config, err = Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if config.Auth.Secret != strings.Repeat("s", 40) {
		t.Errorf("Expected AUTH_SECRET from environment, got %q", config.Auth.Secret)
	}
}

func TestLoad_FromEnvironment(t *testing.T) {
	clearEnv(t)

	t.Setenv("SERVER_ADDRESS", ":9090")
	t.Setenv("DATABASE_PATH", "/tmp/auth.db")
	t.Setenv("AUTH_API_PATH", "/auth")
	t.Setenv("AUTH_SECURE_COOKIE", "true")
	t.Setenv("AUTH_SESSION_TTL", "24h")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example , ,https://b.example ")
	t.Setenv("LOG_JSON", "true")

	config, err := Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if config.ServerAddress != ":9090" {
		t.Errorf("Expected ServerAddress to be :9090, got %s", config.ServerAddress)
	}
	if config.DatabasePath != "/tmp/auth.db" {
		t.Errorf("Expected DatabasePath to be /tmp/auth.db, got %s", config.DatabasePath)
	}
	if config.Auth.APIPath != "/auth" {
		t.Errorf("Expected Auth.APIPath to be /auth, got %s", config.Auth.APIPath)
	}
	if !config.Auth.SecureCookie {
		t.Error("Expected SecureCookie to be true")
	}
	if config.Auth.SessionTTL != 24*time.Hour {
		t.Errorf("Expected SessionTTL to be 24h, got %v", config.Auth.SessionTTL)
	}
	if len(config.CORS.AllowedOrigins) != 2 || config.CORS.AllowedOrigins[1] != "https://b.example" {
		t.Errorf("Expected trimmed CORS origins, got %v", config.CORS.AllowedOrigins)
	}
	if !config.JSONLogs() {
		t.Error("Expected JSON logs when LOG_JSON=true")
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Environment:   "development",
			ServerAddress: ":3000",
			DatabasePath:  "./data/sqlite.db",
			Auth: AuthConfig{
				APIPath:           "/api/auth",
				Secret:            defaultAuthSecret,
				TokenTTL:          15 * time.Minute,
				SessionTTL:        time.Hour,
				MinPasswordLength: 8,
				MaxPasswordLength: 128,
				SweepSchedule:     "@every 10m",
			},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid defaults", func(c *Config) {}, ""},
		{"api path without slash", func(c *Config) { c.Auth.APIPath = "api/auth" }, "AUTH_API_PATH"},
		{"api path with trailing slash", func(c *Config) { c.Auth.APIPath = "/api/auth/" }, "AUTH_API_PATH"},
		{"default secret in production", func(c *Config) { c.Environment = "production" }, "AUTH_SECRET must be set"},
		{"short secret in production", func(c *Config) {
			c.Environment = "production"
			c.Auth.Secret = "short"
		}, "at least 32 characters"},
		{"long secret in production", func(c *Config) {
			c.Environment = "production"
			c.Auth.Secret = strings.Repeat("s", 40)
		}, ""},
		{"inverted password bounds", func(c *Config) { c.Auth.MaxPasswordLength = 4 }, "AUTH_MAX_PASSWORD_LENGTH"},
		{"session shorter than token", func(c *Config) { c.Auth.SessionTTL = time.Minute }, "AUTH_SESSION_TTL"},
		{"empty sweep schedule", func(c *Config) { c.Auth.SweepSchedule = "" }, "AUTH_SWEEP_SCHEDULE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %q", tt.wantErr, err.Error())
			}
		})
	}
}

func TestParseCommaSeparatedList(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"", 0},
		{"a", 1},
		{"a,b", 2},
		{" a , b ,, ", 2},
	}

	for _, tt := range tests {
		got := parseCommaSeparatedList(tt.input)
		if len(got) != tt.want {
			t.Errorf("parseCommaSeparatedList(%q) returned %d items, want %d", tt.input, len(got), tt.want)
		}
	}
}
