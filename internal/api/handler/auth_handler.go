package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/abcretailers/identity-gateway/internal/api/metrics"
	"github.com/abcretailers/identity-gateway/internal/core/domain"
	"github.com/abcretailers/identity-gateway/internal/core/ports"
)

// AuthHandler exposes registration, login and session endpoints. Service
// errors are returned to the HTTP error handler, which owns the mapping to
// status codes and generic messages.
type AuthHandler struct {
	registration ports.RegistrationService
	login        ports.LoginService
	sessions     ports.SessionService
	log          zerolog.Logger
}

func NewAuthHandler(
	registration ports.RegistrationService,
	login ports.LoginService,
	sessions ports.SessionService,
	log zerolog.Logger,
) *AuthHandler {
	return &AuthHandler{registration: registration, login: login, sessions: sessions, log: log}
}

// Register creates a credential and its paired customer profile.
//
// @Summary      Register a new account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Account and profile details"
// @Success      201   {object}  registerResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      503   {object}  errorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	err := h.registration.Register(c.Request().Context(), ports.RegistrationInput{
		Username: strings.TrimSpace(req.Username),
		Password: req.Password,
		Role:     req.Role,
		Profile: ports.ProfileFields{
			Name:            req.Name,
			Surname:         req.Surname,
			Email:           req.Email,
			ShippingAddress: req.ShippingAddress,
		},
	})
	outcome := metrics.RegistrationOutcome(err)
	metrics.RegistrationsTotal.WithLabelValues(outcome).Inc()
	if outcome == "inconsistent" {
		metrics.OrphanedCredentialsTotal.Inc()
	}
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, registerResponse{
		Username: strings.TrimSpace(req.Username),
		Message:  "registration successful, please sign in",
	})
}

// Login verifies credentials, resolves the profile and issues a session.
//
// @Summary      Sign in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Failure      503   {object}  errorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	ctx := c.Request().Context()
	cred, profile, err := h.login.Verify(ctx, strings.TrimSpace(req.Username), req.Password)
	metrics.LoginsTotal.WithLabelValues(metrics.LoginOutcome(err)).Inc()
	if err != nil {
		return err
	}

	token, session, err := h.sessions.Issue(ctx, cred, profile)
	if err != nil {
		return err
	}
	metrics.SessionsIssuedTotal.Inc()

	return c.JSON(http.StatusOK, loginResponse{
		Token:     token,
		ExpiresAt: session.ExpiresAt,
		Redirect:  domain.LandingPage(session.Role),
		User: sessionUser{
			Username:  session.Username,
			Role:      session.Role,
			ProfileID: session.ProfileID,
			Email:     profile.Email,
		},
	})
}

// Logout drops the bearer session. It always answers 204.
//
// @Summary      Sign out
// @Tags         auth
// @Security     BearerAuth
// @Success      204
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	if token, ok := bearer(c); ok {
		if err := h.sessions.Revoke(c.Request().Context(), token); err != nil {
			h.log.Debug().Err(err).Msg("logout without a live session")
		}
	}
	return c.NoContent(http.StatusNoContent)
}

// Session returns the authenticated principal.
//
// @Summary      Current session
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  sessionResponse
// @Failure      401  {object}  errorResponse
// @Router       /auth/session [get]
func (h *AuthHandler) Session(c echo.Context) error {
	session, err := ctxSession(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sessionResponse{
		User: sessionUser{
			Username:  session.Username,
			Role:      session.Role,
			ProfileID: session.ProfileID,
		},
		IssuedAt:  session.IssuedAt,
		ExpiresAt: session.ExpiresAt,
		Redirect:  domain.LandingPage(session.Role),
	})
}

func bearer(c echo.Context) (string, bool) {
	scheme, token, ok := strings.Cut(c.Request().Header.Get(echo.HeaderAuthorization), " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, "bearer") || token == "" {
		return "", false
	}
	return token, true
}
