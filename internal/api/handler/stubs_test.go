package handler

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/abcretailers/identity-gateway/internal/core/domain"
	"github.com/abcretailers/identity-gateway/internal/core/ports"
)

var discardLogger = zerolog.Nop()

type stubRegistrationService struct {
	registerFn func(ctx context.Context, in ports.RegistrationInput) error
}

func (s *stubRegistrationService) Register(ctx context.Context, in ports.RegistrationInput) error {
	return s.registerFn(ctx, in)
}

type stubLoginService struct {
	verifyFn func(ctx context.Context, username, password string) (*domain.Credential, *domain.Profile, error)
}

func (s *stubLoginService) Verify(ctx context.Context, username, password string) (*domain.Credential, *domain.Profile, error) {
	return s.verifyFn(ctx, username, password)
}

type stubSessionService struct {
	issueFn   func(ctx context.Context, cred *domain.Credential, profile *domain.Profile) (string, *domain.Session, error)
	resolveFn func(ctx context.Context, token string) (*domain.Session, error)
	revokeFn  func(ctx context.Context, token string) error
}

func (s *stubSessionService) Issue(ctx context.Context, cred *domain.Credential, profile *domain.Profile) (string, *domain.Session, error) {
	return s.issueFn(ctx, cred, profile)
}

func (s *stubSessionService) Resolve(ctx context.Context, token string) (*domain.Session, error) {
	return s.resolveFn(ctx, token)
}

func (s *stubSessionService) Invalidate(context.Context, string) error { return nil }

func (s *stubSessionService) Revoke(ctx context.Context, token string) error {
	return s.revokeFn(ctx, token)
}

type stubDashboardService struct {
	aggregateFn func(ctx context.Context) (*domain.DashboardSnapshot, error)
}

func (s *stubDashboardService) Aggregate(ctx context.Context) (*domain.DashboardSnapshot, error) {
	return s.aggregateFn(ctx)
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func jsonBody(s string) *strings.Reader {
	return strings.NewReader(s)
}
