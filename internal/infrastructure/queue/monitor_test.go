package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/abcretailers/identity-gateway/internal/core/domain"
	"github.com/abcretailers/identity-gateway/internal/infrastructure/db/memory"
)

type recordingLog struct {
	mu       sync.Mutex
	recorded []domain.OrphanedCredential
	err      error
}

func (l *recordingLog) RecordOrphan(_ context.Context, o domain.OrphanedCredential) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return l.err
	}
	l.recorded = append(l.recorded, o)
	return nil
}

type lookupFunc func(ctx context.Context, username string) (*domain.Profile, error)

func (f lookupFunc) GetCustomerByUsername(ctx context.Context, username string) (*domain.Profile, error) {
	return f(ctx, username)
}

type failingCredentials struct{ err error }

func (f failingCredentials) FindByUsername(context.Context, string) (*domain.Credential, error) {
	return nil, f.err
}

func profileMissing(context.Context, string) (*domain.Profile, error) {
	return nil, domain.ErrProfileNotFound
}

func newTestMonitor(t *testing.T, creds CredentialLookup, lookup lookupFunc) (*OrphanMonitor, *recordingLog, <-chan string) {
	t.Helper()
	records := &recordingLog{}
	states := make(chan string, 8)
	m := NewOrphanMonitor(2, records, creds, lookup, func(s string) { states <- s }, zerolog.Nop())
	m.backoff = time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	m.Start(ctx)
	return m, records, states
}

func waitState(t *testing.T, states <-chan string) string {
	t.Helper()
	select {
	case s := <-states:
		return s
	case <-time.After(2 * time.Second):
		t.Fatal("orphan was not inspected")
		return ""
	}
}

func TestOrphanMonitor_ReportsOrphanWithoutTouchingCredential(t *testing.T) {
	creds := memory.NewCredentialStore()
	_ = creds.Insert(context.Background(), &domain.Credential{Username: "thuli"})
	m, records, states := newTestMonitor(t, creds, profileMissing)

	if err := m.RecordOrphan(context.Background(), domain.OrphanedCredential{Username: "thuli"}); err != nil {
		t.Fatalf("RecordOrphan returned error: %v", err)
	}
	if got := waitState(t, states); got != StateOrphaned {
		t.Fatalf("expected %q, got %q", StateOrphaned, got)
	}
	if _, err := creds.FindByUsername(context.Background(), "thuli"); err != nil {
		t.Fatalf("credential must be left for the operator, got %v", err)
	}
	if len(records.recorded) != 1 {
		t.Fatalf("expected one durable record, got %d", len(records.recorded))
	}
}

func TestOrphanMonitor_CompensationThatCommittedIsCleared(t *testing.T) {
	m, _, states := newTestMonitor(t, memory.NewCredentialStore(), profileMissing)

	_ = m.RecordOrphan(context.Background(), domain.OrphanedCredential{Username: "thuli"})
	if got := waitState(t, states); got != StateCleared {
		t.Fatalf("expected %q, got %q", StateCleared, got)
	}
}

func TestOrphanMonitor_PairedUsername(t *testing.T) {
	creds := memory.NewCredentialStore()
	_ = creds.Insert(context.Background(), &domain.Credential{Username: "thuli"})
	m, _, states := newTestMonitor(t, creds, func(_ context.Context, username string) (*domain.Profile, error) {
		return &domain.Profile{ID: "cust-1", Username: username}, nil
	})

	_ = m.RecordOrphan(context.Background(), domain.OrphanedCredential{Username: "thuli"})
	if got := waitState(t, states); got != StatePaired {
		t.Fatalf("expected %q, got %q", StatePaired, got)
	}
}

func TestOrphanMonitor_RetriesWhileRemoteIsDown(t *testing.T) {
	var (
		mu    sync.Mutex
		calls int
	)
	creds := memory.NewCredentialStore()
	_ = creds.Insert(context.Background(), &domain.Credential{Username: "thuli"})
	m, _, states := newTestMonitor(t, creds, func(context.Context, string) (*domain.Profile, error) {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if calls < 3 {
			return nil, domain.ErrRemoteUnavailable
		}
		return nil, domain.ErrProfileNotFound
	})

	_ = m.RecordOrphan(context.Background(), domain.OrphanedCredential{Username: "thuli"})
	if got := waitState(t, states); got != StateOrphaned {
		t.Fatalf("expected %q, got %q", StateOrphaned, got)
	}
	mu.Lock()
	defer mu.Unlock()
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
}

func TestOrphanMonitor_UnknownAfterMaxAttempts(t *testing.T) {
	m, _, states := newTestMonitor(t, failingCredentials{err: errors.New("postgres down")}, profileMissing)

	_ = m.RecordOrphan(context.Background(), domain.OrphanedCredential{Username: "thuli"})
	if got := waitState(t, states); got != StateUnknown {
		t.Fatalf("expected %q, got %q", StateUnknown, got)
	}
}

func TestOrphanMonitor_DurableRecordFailureIsReturned(t *testing.T) {
	records := &recordingLog{err: errors.New("mongo down")}
	m := NewOrphanMonitor(1, records, memory.NewCredentialStore(), lookupFunc(profileMissing), nil, zerolog.Nop())

	if err := m.RecordOrphan(context.Background(), domain.OrphanedCredential{Username: "thuli"}); err == nil {
		t.Fatal("expected the durable write error")
	}
	if len(m.workers[0]) != 0 {
		t.Fatal("nothing may be queued when the record was not written")
	}
}

func TestOrphanMonitor_FullQueueKeepsRecord(t *testing.T) {
	records := &recordingLog{}
	m := NewOrphanMonitor(1, records, memory.NewCredentialStore(), lookupFunc(profileMissing), nil, zerolog.Nop())

	for i := 0; i < channelBuffer+3; i++ {
		if err := m.RecordOrphan(context.Background(), domain.OrphanedCredential{Username: "thuli"}); err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
	}
	if len(records.recorded) != channelBuffer+3 {
		t.Fatalf("expected every record written, got %d", len(records.recorded))
	}
}

func TestOrphanMonitor_ShardIndexIsStable(t *testing.T) {
	m := NewOrphanMonitor(8, nil, nil, nil, nil, zerolog.Nop())
	first := m.shardIndex("thuli")
	for i := 0; i < 5; i++ {
		if got := m.shardIndex("thuli"); got != first {
			t.Fatalf("shard changed from %d to %d", first, got)
		}
	}
	if first < 0 || first >= 8 {
		t.Fatalf("shard %d out of range", first)
	}
}
