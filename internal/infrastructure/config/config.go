package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port            string        `env:"PORT,             default=8080"`
	Env             string        `env:"ENV,              default=development"`
	LogLevel        string        `env:"LOG_LEVEL,        default=info"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT, default=15s"`

	Session    SessionConfig
	Postgres   PostgresConfig
	Mongo      MongoConfig
	Redis      RedisConfig
	ProfileAPI ProfileAPIConfig
}

type SessionConfig struct {
	JWTSecret      string        `env:"JWT_SECRET"`
	TTL            time.Duration `env:"SESSION_TTL,      default=60m"`
	LoginRateLimit int           `env:"LOGIN_RATE_LIMIT, default=5"`
}

// PostgresConfig points at the credential store. An empty URL selects the
// in-memory store, which is only accepted in development.
type PostgresConfig struct {
	URL string `env:"DATABASE_URL"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=identity_gateway"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR, default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,   default=0"`
}

type ProfileAPIConfig struct {
	URL     string        `env:"PROFILE_API_URL,     default=http://localhost:7071"`
	Key     string        `env:"PROFILE_API_KEY"`
	Timeout time.Duration `env:"PROFILE_API_TIMEOUT, default=10s"`
}

// IsDevelopment reports whether the service runs with developer defaults.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load reads an optional .env file and then the process environment.
func Load(ctx context.Context) (*Config, error) {
	_ = godotenv.Load()
	return LoadWith(ctx, envconfig.OsLookuper())
}

// LoadWith resolves configuration from the given lookuper.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Session.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.Session.TTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}
	if c.ProfileAPI.Timeout <= 0 {
		return errors.New("PROFILE_API_TIMEOUT must be positive")
	}
	if c.Postgres.URL == "" && !c.IsDevelopment() {
		return errors.New("DATABASE_URL is required outside development")
	}
	return nil
}
