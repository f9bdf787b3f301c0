package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/abcretailers/identity-gateway/internal/core/domain"
)

// uniqueViolation is the SQLSTATE Postgres reports for a UNIQUE constraint hit.
const uniqueViolation = "23505"

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            BIGSERIAL PRIMARY KEY,
	username      VARCHAR(100) NOT NULL,
	password_hash VARCHAR(256) NOT NULL,
	role          VARCHAR(20)  NOT NULL DEFAULT 'Customer',
	created_at    TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
	CONSTRAINT users_username_key UNIQUE (username)
)`

// querier is the subset of *pgxpool.Pool the repository needs.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// CredentialRepository implements ports.CredentialRepository on the users table.
type CredentialRepository struct {
	db querier
}

// NewCredentialRepository builds a Postgres-backed credential repository.
// Pass a *pgxpool.Pool in production.
func NewCredentialRepository(db querier) *CredentialRepository {
	return &CredentialRepository{db: db}
}

// EnsureSchema creates the users table and its username constraint if missing.
func (r *CredentialRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure users schema: %w", err)
	}
	return nil
}

func (r *CredentialRepository) FindByUsername(ctx context.Context, username string) (*domain.Credential, error) {
	row := r.db.QueryRow(ctx,
		`SELECT username, password_hash, role, created_at FROM users WHERE username = $1`, username)

	var (
		cred      domain.Credential
		role      string
		createdAt time.Time
	)
	if err := row.Scan(&cred.Username, &cred.PasswordHash, &role, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCredentialNotFound
		}
		return nil, fmt.Errorf("find credential: %w", err)
	}
	cred.Role = domain.Role(role)
	cred.CreatedAt = createdAt.UTC()
	return &cred, nil
}

// Insert writes a new credential. A concurrent insert of the same username
// surfaces as domain.ErrDuplicateUsername through the unique constraint.
func (r *CredentialRepository) Insert(ctx context.Context, cred *domain.Credential) error {
	createdAt := cred.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO users (username, password_hash, role, created_at) VALUES ($1, $2, $3, $4)`,
		cred.Username, cred.PasswordHash, string(cred.Role), createdAt.UTC())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.ErrDuplicateUsername
		}
		return fmt.Errorf("insert credential: %w", err)
	}
	return nil
}

// Delete removes the credential; deleting an absent username is not an error.
func (r *CredentialRepository) Delete(ctx context.Context, username string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM users WHERE username = $1`, username); err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}
	return nil
}
