package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultTimeout      = 5 * time.Second
	defaultPingAttempts = 3
	pingBackoff         = 200 * time.Millisecond
)

// Config holds the session and login throttling store settings.
type Config struct {
	Addr     string
	Password string
	DB       int
	Timeout  time.Duration
	// PingAttempts bounds the startup pings; Redis often comes up after us.
	PingAttempts int
}

// Connect opens a client and pings it until it answers or the attempts run out.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	if cfg.Addr == "" {
		return nil, errors.New("redis: address is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	attempts := cfg.PingAttempts
	if attempts <= 0 {
		attempts = defaultPingAttempts
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  timeout,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	})

	var err error
	for i := 1; i <= attempts; i++ {
		if err = ping(ctx, client, timeout); err == nil {
			return client, nil
		}
		if i == attempts {
			break
		}
		select {
		case <-ctx.Done():
			_ = client.Close()
			return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, ctx.Err())
		case <-time.After(time.Duration(i) * pingBackoff):
		}
	}
	_ = client.Close()
	return nil, fmt.Errorf("redis ping %s after %d attempts: %w", cfg.Addr, attempts, err)
}

func ping(ctx context.Context, client *redis.Client, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return client.Ping(ctx).Err()
}
