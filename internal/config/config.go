// Package config handles configuration loading for the workshop planner service.
package config

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// CookieConfig holds attributes shared by every cookie the service sets.
type CookieConfig struct {
	Domain   string
	Path     string
	Secure   bool
	SameSite http.SameSite
}

// Config holds all configuration for the workshop planner service.
type Config struct {
	Port        string
	Environment string
	LogLevel    string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	RedisHost     string
	RedisPort     string
	RedisPassword string

	JWTSecret   string
	JWTTTL      time.Duration
	JWTIssuer   string
	JWTAudience string

	Cookie     CookieConfig
	SessionTTL time.Duration

	LoginMaxAttempts int
	LoginWindow      time.Duration
	BcryptCost       int

	AllowedOrigins []string
	NATSURL        string
	SwaggerHost    string
}

// Load reads configuration from environment variables. A .env file in the
// working directory is applied first when present; real environment
// variables always win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var missing []string
	required := func(key string) string {
		value, err := GetEnvRequired(key)
		if err != nil {
			missing = append(missing, key)
		}
		return value
	}

	cfg := &Config{
		Port:        GetEnv("PORT", "8080"),
		Environment: GetEnv("ENVIRONMENT", "development"),
		LogLevel:    GetEnv("LOG_LEVEL", "info"),

		DBHost:     required("DB_HOST"),
		DBPort:     GetEnv("DB_PORT", "5432"),
		DBUser:     required("DB_USER"),
		DBPassword: required("DB_PASSWORD"),
		DBName:     required("DB_NAME"),
		DBSSLMode:  GetEnv("DB_SSLMODE", "disable"),

		RedisHost:     required("REDIS_HOST"),
		RedisPort:     GetEnv("REDIS_PORT", "6379"),
		RedisPassword: GetEnv("REDIS_PASSWORD", ""),

		JWTSecret:   required("JWT_SECRET"),
		JWTTTL:      parseDuration(GetEnv("JWT_TTL", "168h"), 168*time.Hour),
		JWTIssuer:   GetEnv("JWT_ISSUER", "workshop-planner"),
		JWTAudience: GetEnv("JWT_AUDIENCE", "workshop-planner"),

		Cookie: CookieConfig{
			Domain:   GetEnv("COOKIE_DOMAIN", ""),
			Path:     GetEnv("COOKIE_PATH", "/"),
			Secure:   parseBool(GetEnv("COOKIE_SECURE", "false"), false),
			SameSite: http.SameSiteStrictMode,
		},
		SessionTTL: parseDuration(GetEnv("SESSION_TTL", "1h"), time.Hour),

		LoginMaxAttempts: parseInt(GetEnv("LOGIN_MAX_ATTEMPTS", "5"), 5),
		LoginWindow:      parseDuration(GetEnv("LOGIN_WINDOW", "15m"), 15*time.Minute),
		BcryptCost:       parseInt(GetEnv("BCRYPT_COST", "12"), 12),

		AllowedOrigins: parseList(GetEnv("ALLOWED_ORIGINS", "")),
		NATSURL:        GetEnv("NATS_URL", ""),
		SwaggerHost:    GetEnv("SWAGGER_HOST", ""),
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that cannot be defaulted safely.
func (c *Config) Validate() error {
	var errs []error
	if len(c.JWTSecret) < 32 {
		errs = append(errs, errors.New("JWT_SECRET must be at least 32 bytes"))
	}
	if c.JWTTTL <= 0 {
		errs = append(errs, errors.New("JWT_TTL must be positive"))
	}
	if c.LoginMaxAttempts <= 0 {
		errs = append(errs, errors.New("LOGIN_MAX_ATTEMPTS must be positive"))
	}
	if c.LoginWindow <= 0 {
		errs = append(errs, errors.New("LOGIN_WINDOW must be positive"))
	}
	if c.BcryptCost < 10 || c.BcryptCost > 31 {
		errs = append(errs, errors.New("BCRYPT_COST must be between 10 and 31"))
	}
	return errors.Join(errs...)
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func parseDuration(value string, defaultValue time.Duration) time.Duration {
	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return duration
}

func parseInt(value string, defaultValue int) int {
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func parseBool(value string, defaultValue bool) bool {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}

func parseList(value string) []string {
	if value == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
