package queue

import (
	"context"
	"errors"
	"hash/fnv"
	"time"

	"github.com/rs/zerolog"

	"github.com/abcretailers/identity-gateway/internal/core/domain"
	"github.com/abcretailers/identity-gateway/internal/core/ports"
)

const (
	defaultWorkers  = 4
	channelBuffer   = 64
	defaultAttempts = 3
	defaultBackoff  = time.Second
	attemptTimeout  = 5 * time.Second
)

// Orphan states reported after an inspection.
const (
	StateOrphaned = "orphaned" // credential present, profile missing
	StateCleared  = "cleared"  // credential already gone
	StatePaired   = "paired"   // credential and profile both present
	StateUnknown  = "unknown"  // lookups kept failing
)

// CredentialLookup is the read side of the credential store.
type CredentialLookup interface {
	FindByUsername(ctx context.Context, username string) (*domain.Credential, error)
}

// ProfileLookup is the gateway read used to inspect a username.
type ProfileLookup interface {
	GetCustomerByUsername(ctx context.Context, username string) (*domain.Profile, error)
}

// OrphanMonitor is a ports.OrphanLog that records every orphan durably and
// then inspects the username in the background to raise an alert. It only
// reads: repairing the pair and resolving the record are left to an operator.
type OrphanMonitor struct {
	workers     []chan domain.OrphanedCredential
	records     ports.OrphanLog
	credentials CredentialLookup
	profiles    ProfileLookup
	observe     func(state string)
	logger      zerolog.Logger

	attempts int
	backoff  time.Duration
}

// NewOrphanMonitor creates an OrphanMonitor with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used. observe may be nil.
func NewOrphanMonitor(
	numWorkers int,
	records ports.OrphanLog,
	credentials CredentialLookup,
	profiles ProfileLookup,
	observe func(state string),
	logger zerolog.Logger,
) *OrphanMonitor {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	if observe == nil {
		observe = func(string) {}
	}
	m := &OrphanMonitor{
		workers:     make([]chan domain.OrphanedCredential, numWorkers),
		records:     records,
		credentials: credentials,
		profiles:    profiles,
		observe:     observe,
		logger:      logger,
		attempts:    defaultAttempts,
		backoff:     defaultBackoff,
	}
	for i := range m.workers {
		m.workers[i] = make(chan domain.OrphanedCredential, channelBuffer)
	}
	return m
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (m *OrphanMonitor) Start(ctx context.Context) {
	for i, ch := range m.workers {
		go m.runWorker(ctx, i, ch)
	}
}

// RecordOrphan writes the durable record first; only then is the orphan
// queued for inspection. A full queue skips the inspection, never the record.
func (m *OrphanMonitor) RecordOrphan(ctx context.Context, orphan domain.OrphanedCredential) error {
	if err := m.records.RecordOrphan(ctx, orphan); err != nil {
		return err
	}
	select {
	case m.workers[m.shardIndex(orphan.Username)] <- orphan:
	default:
		m.logger.Warn().Str("username", orphan.Username).Msg("orphan queue full, inspection skipped")
	}
	return nil
}

// shardIndex maps a username deterministically to a worker index.
func (m *OrphanMonitor) shardIndex(username string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(username))
	return int(h.Sum32() % uint32(len(m.workers)))
}

func (m *OrphanMonitor) runWorker(ctx context.Context, id int, ch <-chan domain.OrphanedCredential) {
	for {
		select {
		case <-ctx.Done():
			return
		case orphan := <-ch:
			state := m.inspect(ctx, orphan.Username)
			m.observe(state)

			event := m.logger.Info()
			if state == StateOrphaned || state == StateUnknown {
				event = m.logger.Error()
			}
			event.Str("username", orphan.Username).
				Str("state", state).
				Int("worker_id", id).
				Msg("orphaned credential inspected")
		}
	}
}

// inspect retries failed lookups with doubling backoff and reports the
// state of the username. Both stores are only read.
func (m *OrphanMonitor) inspect(ctx context.Context, username string) string {
	delay := m.backoff
	for attempt := 1; attempt <= m.attempts; attempt++ {
		state, err := m.lookup(ctx, username)
		if err == nil {
			return state
		}
		m.logger.Warn().Err(err).Str("username", username).Int("attempt", attempt).Msg("orphan inspection failed")

		select {
		case <-ctx.Done():
			return StateUnknown
		case <-time.After(delay):
		}
		delay *= 2
	}
	return StateUnknown
}

func (m *OrphanMonitor) lookup(ctx context.Context, username string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, attemptTimeout)
	defer cancel()

	_, err := m.credentials.FindByUsername(ctx, username)
	switch {
	case errors.Is(err, domain.ErrCredentialNotFound):
		return StateCleared, nil
	case err != nil:
		return "", err
	}

	_, err = m.profiles.GetCustomerByUsername(ctx, username)
	switch {
	case err == nil:
		return StatePaired, nil
	case errors.Is(err, domain.ErrProfileNotFound):
		return StateOrphaned, nil
	default:
		return "", err
	}
}
