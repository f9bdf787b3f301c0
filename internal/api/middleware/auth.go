package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/abcretailers/identity-gateway/internal/core/domain"
)

// SessionResolver turns a bearer handle into the live session behind it.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (*domain.Session, error)
}

// Auth resolves the bearer session on every request and injects it into the
// context as "session", plus "username", "role" and "profile_id".
// Session errors are passed to the HTTP error handler unchanged.
func Auth(sessions SessionResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := bearerToken(c)
			if err != nil {
				return err
			}

			session, err := sessions.Resolve(c.Request().Context(), token)
			if err != nil {
				return err
			}

			c.Set("session", session)
			c.Set("username", session.Username)
			c.Set("role", string(session.Role))
			c.Set("profile_id", session.ProfileID)

			return next(c)
		}
	}
}

func bearerToken(c echo.Context) (string, error) {
	authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
	if authHeader == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
	}
	return strings.TrimSpace(parts[1]), nil
}
