package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/abcretailers/identity-gateway/internal/api/metrics"
)

const (
	defaultLoginsPerMinute = 5
	loginWindow            = time.Minute
	maxPeekBytes           = 64 << 10
)

// LoginRateLimit caps login attempts per username, falling back to the client
// IP when the body carries none. Counters live in Redis with a one-minute
// window. The limiter fails open when Redis is missing or erroring.
func LoginRateLimit(cache redis.Cmdable, maxPerMin int, log zerolog.Logger) echo.MiddlewareFunc {
	if maxPerMin <= 0 {
		maxPerMin = defaultLoginsPerMinute
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if cache == nil {
				return next(c)
			}

			ctx := c.Request().Context()
			key := "rl:login:" + loginSubject(c)

			cnt, err := cache.Incr(ctx, key).Result()
			if err != nil {
				log.Warn().Err(err).Msg("login rate limit unavailable")
				return next(c)
			}
			if cnt == 1 {
				// A counter without a TTL would lock the subject out for good.
				if err := cache.Expire(ctx, key, loginWindow).Err(); err != nil {
					log.Warn().Err(err).Str("key", key).Msg("login rate limit window not set")
					if err := cache.Del(ctx, key).Err(); err != nil {
						log.Error().Err(err).Str("key", key).Msg("login rate limit counter left without expiry")
					}
					return next(c)
				}
			}
			if cnt > int64(maxPerMin) {
				metrics.LoginsTotal.WithLabelValues("rate_limited").Inc()
				return echo.NewHTTPError(http.StatusTooManyRequests, "too many login attempts, try again later")
			}
			return next(c)
		}
	}
}

// loginSubject peeks at the JSON body for a username and restores the body
// for the handler.
func loginSubject(c echo.Context) string {
	req := c.Request()
	if req.Body != nil {
		orig := req.Body
		raw, err := io.ReadAll(io.LimitReader(orig, maxPeekBytes))
		req.Body = readCloser{Reader: io.MultiReader(bytes.NewReader(raw), orig), Closer: orig}
		if err == nil {
			var body struct {
				Username string `json:"username"`
			}
			if json.Unmarshal(raw, &body) == nil {
				if u := strings.ToLower(strings.TrimSpace(body.Username)); u != "" {
					return "user:" + u
				}
			}
		}
	}
	return "ip:" + c.RealIP()
}

type readCloser struct {
	io.Reader
	io.Closer
}
