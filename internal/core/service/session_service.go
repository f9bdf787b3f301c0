package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/abcretailers/identity-gateway/internal/core/domain"
	"github.com/abcretailers/identity-gateway/internal/core/ports"
)

// DefaultSessionTTL is the fixed lifetime of a session from issuance.
const DefaultSessionTTL = 60 * time.Minute

// sessionClaims is the payload of the opaque handle returned to callers. The
// session table stays authoritative: a valid signature alone is not enough.
type sessionClaims struct {
	Username  string      `json:"username"`
	Role      domain.Role `json:"role"`
	ProfileID string      `json:"profile_id"`
	jwt.RegisteredClaims
}

// SessionService issues and tracks sessions in a SessionStore.
type SessionService struct {
	store  ports.SessionStore
	secret []byte
	ttl    time.Duration
	log    zerolog.Logger
	now    func() time.Time
	newID  func() string
}

func NewSessionService(store ports.SessionStore, secret string, ttl time.Duration, log zerolog.Logger) *SessionService {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionService{
		store:  store,
		secret: []byte(secret),
		ttl:    ttl,
		log:    log,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Issue persists a new session for the verified pair and returns its signed handle.
func (s *SessionService) Issue(ctx context.Context, cred *domain.Credential, profile *domain.Profile) (string, *domain.Session, error) {
	now := s.now().UTC()
	session := &domain.Session{
		ID:        s.newID(),
		Username:  cred.Username,
		Role:      cred.Role,
		ProfileID: profile.ID,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.ttl),
	}

	if err := s.store.Save(ctx, session); err != nil {
		return "", nil, fmt.Errorf("save session: %w", err)
	}

	token, err := s.sign(session)
	if err != nil {
		if delErr := s.store.Delete(ctx, session.ID); delErr != nil {
			s.log.Warn().Err(delErr).Str("session_id", session.ID).Msg("failed to drop unsigned session")
		}
		return "", nil, fmt.Errorf("sign session: %w", err)
	}

	s.log.Info().Str("username", session.Username).Str("role", string(session.Role)).Msg("session issued")
	return token, session, nil
}

// Resolve returns the live session behind token. Expiry is checked against the
// stored record on every call; expired sessions are removed.
func (s *SessionService) Resolve(ctx context.Context, token string) (*domain.Session, error) {
	id, err := s.sessionID(token)
	if err != nil {
		return nil, err
	}

	session, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("load session: %w", err)
	}

	if session.Expired(s.now()) {
		if err := s.store.Delete(ctx, id); err != nil {
			s.log.Warn().Err(err).Str("session_id", id).Msg("failed to delete expired session")
		}
		return nil, domain.ErrSessionExpired
	}
	return session, nil
}

// Invalidate removes the session. Unknown or already removed sessions are a no-op.
func (s *SessionService) Invalidate(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.store.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("invalidate session: %w", err)
	}
	return nil
}

// Revoke invalidates the session referenced by a handle, even an expired one.
func (s *SessionService) Revoke(ctx context.Context, token string) error {
	id, err := s.sessionID(token)
	if err != nil {
		return err
	}
	return s.Invalidate(ctx, id)
}

func (s *SessionService) sign(session *domain.Session) (string, error) {
	claims := sessionClaims{
		Username:  session.Username,
		Role:      session.Role,
		ProfileID: session.ProfileID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        session.ID,
			Subject:   session.Username,
			IssuedAt:  jwt.NewNumericDate(session.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// sessionID checks the handle's signature and extracts the session ID. Time
// claims are left to the stored record.
func (s *SessionService) sessionID(token string) (string, error) {
	claims := &sessionClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithoutClaimsValidation())
	if err != nil || claims.ID == "" {
		return "", domain.ErrSessionInvalid
	}
	return claims.ID, nil
}
