package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// Following 12-factor app principles, all config is loaded from environment variables
type Config struct {
	Server     ServerConfig
	Auth       AuthConfig
	Storage    StorageConfig
	Storefront StorefrontConfig
	Shipping   ShippingConfig
	LogLevel   string
}

type ServerConfig struct {
	Port            string
	Host            string
	ReadTimeout     int
	WriteTimeout    int
	ShutdownTimeout int
	AllowedOrigins  []string
	SecureCookies   bool
}

type AuthConfig struct {
	JWTSecret     string
	TokenTTL      time.Duration
	BcryptCost    int
	ProfileLookup time.Duration // upper bound for the admin profile check
	AdminEmails   []string      // accounts registered with these emails are admins
}

type StorageConfig struct {
	Driver          string // "memory" or "postgres"
	DatabaseURL     string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	Migrate         bool
}

type StorefrontConfig struct {
	RequireOpenDrop bool
	SpinWindow      time.Duration
}

// ShippingConfig holds flat fees per shipping method, in whole currency units.
type ShippingConfig struct {
	CourierFee     string
	PickupPointFee string
}

// Load reads configuration from environment variables.
// A .env file in the working directory is applied first when present;
// variables already set in the environment win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			Host:            getEnv("HOST", "0.0.0.0"),
			ReadTimeout:     getEnvAsInt("READ_TIMEOUT", 15),
			WriteTimeout:    getEnvAsInt("WRITE_TIMEOUT", 15),
			ShutdownTimeout: getEnvAsInt("SHUTDOWN_TIMEOUT", 30),
			AllowedOrigins:  getEnvAsSlice("ALLOWED_ORIGINS", []string{"*"}),
			SecureCookies:   getEnvAsBool("SECURE_COOKIES", false),
		},
		Auth: AuthConfig{
			JWTSecret:     getEnv("JWT_SECRET", ""),
			TokenTTL:      getEnvAsDuration("TOKEN_TTL", 24*time.Hour),
			BcryptCost:    getEnvAsInt("BCRYPT_COST", 10),
			ProfileLookup: getEnvAsDuration("PROFILE_LOOKUP_TIMEOUT", 3*time.Second),
		},
		Storage: StorageConfig{
			Driver:          getEnv("STORAGE_DRIVER", "memory"),
			DatabaseURL:     getEnv("DATABASE_URL", ""),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 20),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", time.Hour),
			Migrate:         getEnvAsBool("DB_MIGRATE", true),
		},
		Storefront: StorefrontConfig{
			RequireOpenDrop: getEnvAsBool("STOREFRONT_REQUIRE_DROP", false),
			SpinWindow:      getEnvAsDuration("SPIN_WINDOW", 24*time.Hour),
		},
		Shipping: ShippingConfig{
			CourierFee:     getEnv("SHIPPING_COURIER_FEE", "15"),
			PickupPointFee: getEnv("SHIPPING_PICKUP_FEE", "10"),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if len(c.Auth.JWTSecret) < 16 {
		return fmt.Errorf("JWT_SECRET must be at least 16 characters")
	}

	if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 31")
	}

	if c.Auth.ProfileLookup <= 0 {
		return fmt.Errorf("PROFILE_LOOKUP_TIMEOUT must be positive")
	}

	switch c.Storage.Driver {
	case "memory":
	case "postgres":
		if c.Storage.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres driver")
		}
	default:
		return fmt.Errorf("invalid storage driver: %s (must be memory or postgres)", c.Storage.Driver)
	}

	if c.Storefront.SpinWindow <= 0 {
		return fmt.Errorf("SPIN_WINDOW must be positive")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}

	return nil
}

// Helper functions for reading environment variables

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	return strings.Split(valueStr, ",")
}
