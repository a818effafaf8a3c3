package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT, default=8080"`
	Env      string `env:"ENV, default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Auth      AuthConfig
	Mongo     MongoConfig
	Redis     RedisConfig
	HTTP      HTTPConfig
	RateLimit RateLimitConfig

	AuditWorkers int `env:"AUDIT_WORKERS, default=4"`
}

type AuthConfig struct {
	JWTSecret  string        `env:"JWT_SECRET, required"`
	JWTExpire  time.Duration `env:"JWT_EXPIRE, default=720h"`
	BcryptCost int           `env:"BCRYPT_COST, default=12"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB, default=healthgate"`
}

// RedisConfig is optional; an empty Addr selects the in-memory rate limiter.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB, default=0"`
}

type HTTPConfig struct {
	CORSOrigins    []string      `env:"CORS_ORIGINS, default=*"`
	BodyLimit      string        `env:"BODY_LIMIT, default=10K"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT, default=30s"`
}

type RateLimitConfig struct {
	Requests int           `env:"RATE_LIMIT_REQUESTS, default=100"`
	Window   time.Duration `env:"RATE_LIMIT_WINDOW, default=10m"`
}

// IsProduction reports whether the service runs with production defaults.
func (c *Config) IsProduction() bool { return c.Env == "production" }

// LoadDotEnv loads a .env file from the working directory when one exists.
func LoadDotEnv() error {
	if _, err := os.Stat(".env"); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(); err != nil {
		return fmt.Errorf("config: load .env: %w", err)
	}
	return nil
}

// Load reads configuration through lookuper (the process environment when nil).
func Load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	if lookuper == nil {
		lookuper = envconfig.OsLookuper()
	}

	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Auth.JWTSecret == "":
		return errors.New("JWT_SECRET must not be empty")
	case c.Auth.JWTExpire <= 0:
		return errors.New("JWT_EXPIRE must be positive")
	case c.RateLimit.Requests <= 0 || c.RateLimit.Window <= 0:
		return errors.New("RATE_LIMIT_REQUESTS and RATE_LIMIT_WINDOW must be positive")
	case c.HTTP.RequestTimeout <= 0:
		return errors.New("REQUEST_TIMEOUT must be positive")
	}
	return nil
}
