package config

import (
	"errors"
	"time"

	"github.com/joho/godotenv"
)

// APIConfig holds runtime configuration for the auth API service.
type APIConfig struct {
	Environment        string
	Addr               string
	DatabaseURL        string
	MigrationsDir      string
	TokenSecret        string
	TokenTTL           time.Duration
	CookieSecure       bool
	RateLimitRedisAddr string
	RateLimitRedisPass string
	RateLimitRedisDB   int
}

// LoadAPIConfig constructs an APIConfig from environment variables. A .env
// file in the working directory is read first when present. The token secret
// and TTL are validated here so a misconfigured process refuses to start
// instead of signing sessions with an empty key.
func LoadAPIConfig() (APIConfig, error) {
	_ = godotenv.Load()

	cfg := APIConfig{
		Environment:        GetString("APP_ENV", "development"),
		Addr:               GetString("API_ADDR", ":4000"),
		DatabaseURL:        GetString("DATABASE_URL", "postgres://research:research@db:5432/research?sslmode=disable"),
		MigrationsDir:      GetString("DB_MIGRATIONS_DIR", "db/migrations"),
		TokenSecret:        GetString("TOKEN_SECRET", ""),
		TokenTTL:           time.Duration(GetInt("TOKEN_TTL_MIN", 30)) * time.Minute,
		CookieSecure:       GetBool("COOKIE_SECURE", true),
		RateLimitRedisAddr: GetString("RATE_LIMIT_REDIS_ADDR", ""),
		RateLimitRedisPass: GetString("RATE_LIMIT_REDIS_PASSWORD", ""),
		RateLimitRedisDB:   GetInt("RATE_LIMIT_REDIS_DB", 0),
	}

	if cfg.TokenSecret == "" {
		return APIConfig{}, errors.New("config: TOKEN_SECRET must be set")
	}
	if cfg.TokenTTL <= 0 {
		return APIConfig{}, errors.New("config: TOKEN_TTL_MIN must be positive")
	}
	return cfg, nil
}
