package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/abcretailers/identity-gateway/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// Generic client messages. A registration failure never says which store
// failed.
const (
	msgRegistrationFailed = "registration could not be completed, please try again later"
	msgUnavailable        = "service temporarily unavailable, please try again later"
	msgAccountUnavailable = "this account cannot sign in right now, please contact support"
)

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that maps domain
// errors to status codes, logs anything unexpected and renders
// {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	// Registration sentinels wrap remote causes, so they are matched first.
	switch {
	case errors.Is(err, domain.ErrInvalidRegistration):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, domain.ErrDuplicateUsername):
		return http.StatusConflict, "username already exists"
	case errors.Is(err, domain.ErrInconsistentState):
		log.Error().Err(err).Str("path", c.Path()).Msg("registration left an orphaned credential")
		return http.StatusServiceUnavailable, msgRegistrationFailed
	case errors.Is(err, domain.ErrRemoteWriteFailed), errors.Is(err, domain.ErrLocalWriteFailed):
		log.Warn().Err(err).Str("path", c.Path()).Msg("registration failed")
		return http.StatusServiceUnavailable, msgRegistrationFailed

	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid username or password"
	case errors.Is(err, domain.ErrProfileMissing):
		return http.StatusUnauthorized, msgAccountUnavailable

	case errors.Is(err, domain.ErrSessionExpired):
		return http.StatusUnauthorized, "session expired"
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrSessionInvalid):
		return http.StatusUnauthorized, "invalid session"

	case errors.Is(err, domain.ErrCredentialStoreUnavailable),
		errors.Is(err, domain.ErrRemoteUnavailable),
		errors.Is(err, domain.ErrAggregationFailed):
		log.Warn().Err(err).Str("path", c.Path()).Msg("dependency unavailable")
		return http.StatusServiceUnavailable, msgUnavailable
	case errors.Is(err, domain.ErrRemoteRejected):
		log.Warn().Err(err).Str("path", c.Path()).Msg("profile service rejected request")
		return http.StatusBadGateway, "upstream request rejected"
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
