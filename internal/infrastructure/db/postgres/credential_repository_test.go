package postgres

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/abcretailers/identity-gateway/internal/core/domain"
)

type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	for i, d := range dest {
		switch p := d.(type) {
		case *string:
			*p = r.values[i].(string)
		case *time.Time:
			*p = r.values[i].(time.Time)
		}
	}
	return nil
}

type fakeDB struct {
	execErr  error
	row      fakeRow
	lastSQL  string
	lastArgs []any
}

func (f *fakeDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.lastSQL, f.lastArgs = sql, args
	return pgconn.NewCommandTag("OK"), f.execErr
}

func (f *fakeDB) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	f.lastSQL, f.lastArgs = sql, args
	return f.row
}

func TestInsert_UniqueViolationMapsToDuplicate(t *testing.T) {
	db := &fakeDB{execErr: &pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"}}
	repo := NewCredentialRepository(db)

	err := repo.Insert(context.Background(), &domain.Credential{Username: "thabo", PasswordHash: "h", Role: domain.RoleCustomer})
	if !errors.Is(err, domain.ErrDuplicateUsername) {
		t.Fatalf("expected ErrDuplicateUsername, got %v", err)
	}
}

func TestInsert_OtherErrorIsWrapped(t *testing.T) {
	cause := &pgconn.PgError{Code: "53300"}
	repo := NewCredentialRepository(&fakeDB{execErr: cause})

	err := repo.Insert(context.Background(), &domain.Credential{Username: "thabo"})
	if errors.Is(err, domain.ErrDuplicateUsername) {
		t.Fatal("non-unique failure must not look like a duplicate")
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "53300" {
		t.Fatalf("expected wrapped PgError, got %v", err)
	}
}

func TestInsert_PassesRoleAndDefaultsTimestamp(t *testing.T) {
	db := &fakeDB{}
	repo := NewCredentialRepository(db)

	if err := repo.Insert(context.Background(), &domain.Credential{Username: "thabo", PasswordHash: "h", Role: domain.RoleAdmin}); err != nil {
		t.Fatalf("Insert returned error: %v", err)
	}
	if db.lastArgs[2] != "Admin" {
		t.Fatalf("expected role Admin, got %v", db.lastArgs[2])
	}
	if ts, ok := db.lastArgs[3].(time.Time); !ok || ts.IsZero() {
		t.Fatalf("expected created_at to be set, got %v", db.lastArgs[3])
	}
}

func TestFindByUsername(t *testing.T) {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo := NewCredentialRepository(&fakeDB{row: fakeRow{values: []any{"thabo", "hash", "Customer", created}}})

	cred, err := repo.FindByUsername(context.Background(), "thabo")
	if err != nil {
		t.Fatalf("FindByUsername returned error: %v", err)
	}
	if cred.Username != "thabo" || cred.Role != domain.RoleCustomer || !cred.CreatedAt.Equal(created) {
		t.Fatalf("unexpected credential: %+v", cred)
	}
}

func TestFindByUsername_NotFound(t *testing.T) {
	repo := NewCredentialRepository(&fakeDB{row: fakeRow{err: pgx.ErrNoRows}})

	if _, err := repo.FindByUsername(context.Background(), "ghost"); !errors.Is(err, domain.ErrCredentialNotFound) {
		t.Fatalf("expected ErrCredentialNotFound, got %v", err)
	}
}

func TestEnsureSchema_DeclaresUniqueUsername(t *testing.T) {
	db := &fakeDB{}
	if err := NewCredentialRepository(db).EnsureSchema(context.Background()); err != nil {
		t.Fatalf("EnsureSchema returned error: %v", err)
	}
	if !strings.Contains(db.lastSQL, "UNIQUE (username)") {
		t.Fatalf("schema must enforce unique usernames:\n%s", db.lastSQL)
	}
}

func TestDelete_Idempotent(t *testing.T) {
	repo := NewCredentialRepository(&fakeDB{})
	if err := repo.Delete(context.Background(), "ghost"); err != nil {
		t.Fatalf("deleting an absent user must succeed, got %v", err)
	}
}
