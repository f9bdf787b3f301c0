package service

import (
	"context"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/abcretailers/identity-gateway/internal/core/domain"
)

// ---------------------------------------------------------------------------
// In-memory stubs shared by the service tests
// ---------------------------------------------------------------------------

var discardLogger = zerolog.Nop()

type stubCredentialRepo struct {
	mu        sync.Mutex
	creds     map[string]*domain.Credential
	findErr   error // if set, FindByUsername returns this error
	insertErr error // if set, Insert returns this error
	deleteFn  func(ctx context.Context, username string) error
	inserts   int
	deletes   int
}

func newStubCredentialRepo() *stubCredentialRepo {
	return &stubCredentialRepo{creds: make(map[string]*domain.Credential)}
}

func (r *stubCredentialRepo) FindByUsername(_ context.Context, username string) (*domain.Credential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	c, ok := r.creds[username]
	if !ok {
		return nil, domain.ErrCredentialNotFound
	}
	clone := *c
	return &clone, nil
}

func (r *stubCredentialRepo) Insert(_ context.Context, cred *domain.Credential) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inserts++
	if r.insertErr != nil {
		return r.insertErr
	}
	if _, exists := r.creds[cred.Username]; exists {
		return domain.ErrDuplicateUsername
	}
	clone := *cred
	r.creds[cred.Username] = &clone
	return nil
}

func (r *stubCredentialRepo) Delete(ctx context.Context, username string) error {
	r.mu.Lock()
	r.deletes++
	r.mu.Unlock()
	if r.deleteFn != nil {
		if err := r.deleteFn(ctx, username); err != nil {
			return err
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.creds, username)
	return nil
}

func (r *stubCredentialRepo) seed(t *testing.T, username, password string, role domain.Role) {
	t.Helper()
	r.creds[username] = &domain.Credential{Username: username, PasswordHash: hashPassword(t, password), Role: role}
}

type stubProfileGateway struct {
	mu        sync.Mutex
	profiles  map[string]*domain.Profile
	createFn  func(ctx context.Context, p domain.Profile) (*domain.Profile, error)
	getErr    error
	creates   int
	productsF func(ctx context.Context) ([]domain.Product, error)
	customerF func(ctx context.Context) ([]domain.Profile, error)
	ordersF   func(ctx context.Context) ([]domain.Order, error)
}

func newStubProfileGateway() *stubProfileGateway {
	return &stubProfileGateway{profiles: make(map[string]*domain.Profile)}
}

func (g *stubProfileGateway) CreateCustomer(ctx context.Context, p domain.Profile) (*domain.Profile, error) {
	g.mu.Lock()
	g.creates++
	g.mu.Unlock()
	if g.createFn != nil {
		if _, err := g.createFn(ctx, p); err != nil {
			return nil, err
		}
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	p.ID = "cust-" + p.Username
	g.profiles[p.Username] = &p
	clone := p
	return &clone, nil
}

func (g *stubProfileGateway) GetCustomerByUsername(_ context.Context, username string) (*domain.Profile, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.getErr != nil {
		return nil, g.getErr
	}
	p, ok := g.profiles[username]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	clone := *p
	return &clone, nil
}

func (g *stubProfileGateway) ListProducts(ctx context.Context) ([]domain.Product, error) {
	if g.productsF != nil {
		return g.productsF(ctx)
	}
	return nil, nil
}

func (g *stubProfileGateway) ListCustomers(ctx context.Context) ([]domain.Profile, error) {
	if g.customerF != nil {
		return g.customerF(ctx)
	}
	return nil, nil
}

func (g *stubProfileGateway) ListOrders(ctx context.Context) ([]domain.Order, error) {
	if g.ordersF != nil {
		return g.ordersF(ctx)
	}
	return nil, nil
}

func (g *stubProfileGateway) InitializeStorage(context.Context) error { return nil }

type stubOrphanLog struct {
	recorded []domain.OrphanedCredential
	err      error
}

func (l *stubOrphanLog) RecordOrphan(_ context.Context, o domain.OrphanedCredential) error {
	l.recorded = append(l.recorded, o)
	return l.err
}

type stubSessionStore struct {
	sessions map[string]*domain.Session
	saveErr  error
	deletes  int
}

func newStubSessionStore() *stubSessionStore {
	return &stubSessionStore{sessions: make(map[string]*domain.Session)}
}

func (s *stubSessionStore) Save(_ context.Context, session *domain.Session) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	clone := *session
	s.sessions[session.ID] = &clone
	return nil
}

func (s *stubSessionStore) Get(_ context.Context, id string) (*domain.Session, error) {
	session, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	clone := *session
	return &clone, nil
}

func (s *stubSessionStore) Delete(_ context.Context, id string) error {
	s.deletes++
	delete(s.sessions, id)
	return nil
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return string(hash)
}
