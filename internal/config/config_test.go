package config

import (
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Server:     ServerConfig{Port: "8080"},
		Auth:       AuthConfig{JWTSecret: "0123456789abcdef", BcryptCost: 10, ProfileLookup: time.Second},
		Storage:    StorageConfig{Driver: "memory"},
		Storefront: StorefrontConfig{SpinWindow: 24 * time.Hour},
		LogLevel:   "info",
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "missing port", mutate: func(c *Config) { c.Server.Port = "" }, wantErr: true},
		{name: "short secret", mutate: func(c *Config) { c.Auth.JWTSecret = "short" }, wantErr: true},
		{name: "bcrypt cost too low", mutate: func(c *Config) { c.Auth.BcryptCost = 2 }, wantErr: true},
		{name: "zero profile timeout", mutate: func(c *Config) { c.Auth.ProfileLookup = 0 }, wantErr: true},
		{name: "unknown driver", mutate: func(c *Config) { c.Storage.Driver = "sqlite" }, wantErr: true},
		{name: "postgres without url", mutate: func(c *Config) { c.Storage.Driver = "postgres" }, wantErr: true},
		{
			name: "postgres with url",
			mutate: func(c *Config) {
				c.Storage.Driver = "postgres"
				c.Storage.DatabaseURL = "postgres://localhost/drops"
			},
		},
		{name: "zero spin window", mutate: func(c *Config) { c.Storefront.SpinWindow = 0 }, wantErr: true},
		{name: "bad log level", mutate: func(c *Config) { c.LogLevel = "verbose" }, wantErr: true},
		{name: "upper case log level", mutate: func(c *Config) { c.LogLevel = "DEBUG" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("JWT_SECRET", "a-very-long-test-secret")
	t.Setenv("PORT", "9090")
	t.Setenv("SPIN_WINDOW", "12h")
	t.Setenv("STOREFRONT_REQUIRE_DROP", "true")
	t.Setenv("ALLOWED_ORIGINS", "https://shop.example,https://admin.example")
	t.Setenv("ADMIN_EMAILS", "owner@shop.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("port = %s, want 9090", cfg.Server.Port)
	}
	if cfg.Storefront.SpinWindow != 12*time.Hour {
		t.Errorf("spin window = %v, want 12h", cfg.Storefront.SpinWindow)
	}
	if !cfg.Storefront.RequireOpenDrop {
		t.Error("expected RequireOpenDrop to be true")
	}
	if len(cfg.Server.AllowedOrigins) != 2 {
		t.Errorf("allowed origins = %v, want 2 entries", cfg.Server.AllowedOrigins)
	}
	if len(cfg.Auth.AdminEmails) != 1 || cfg.Auth.AdminEmails[0] != "owner@shop.example" {
		t.Errorf("admin emails = %v", cfg.Auth.AdminEmails)
	}
	if cfg.Storage.Driver != "memory" {
		t.Errorf("driver = %s, want memory", cfg.Storage.Driver)
	}
}

func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	if _, err := Load(); err == nil {
		t.Error("expected error when JWT_SECRET is missing")
	}
}

func TestGetEnvHelpers_FallBackOnGarbage(t *testing.T) {
	t.Setenv("X_INT", "abc")
	t.Setenv("X_BOOL", "maybe")
	t.Setenv("X_DUR", "forever")

	if got := getEnvAsInt("X_INT", 7); got != 7 {
		t.Errorf("getEnvAsInt = %d, want 7", got)
	}
	if got := getEnvAsBool("X_BOOL", true); !got {
		t.Error("getEnvAsBool should fall back to default")
	}
	if got := getEnvAsDuration("X_DUR", time.Minute); got != time.Minute {
		t.Errorf("getEnvAsDuration = %v, want 1m", got)
	}
}
