package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/abcretailers/identity-gateway/internal/core/domain"
)

// ctxSession returns the session injected by the Auth middleware. A missing
// session means the route was mounted without Auth.
func ctxSession(c echo.Context) (*domain.Session, error) {
	session, _ := c.Get("session").(*domain.Session)
	if session == nil || session.Username == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication")
	}
	return session, nil
}
