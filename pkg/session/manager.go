package session

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/aretw0/lattice/internal/logging"
	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/ports"
	"github.com/google/uuid"
)

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager owns the builders of all live sessions.
// It uses reference counting to garbage collect unused locks.
type Manager struct {
	factory ports.BuilderFactory

	mu       sync.Mutex
	sessions map[string]ports.Builder
	locks    map[string]*lockEntry

	logger *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a session manager that builds documents with factory.
func NewManager(factory ports.BuilderFactory, opts ...Option) *Manager {
	m := &Manager{
		factory:  factory,
		sessions: make(map[string]ports.Builder),
		locks:    make(map[string]*lockEntry),
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller must lock entry.mu, and call release(sessionID) after unlocking.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

// Create starts a new session. An empty sessionID gets a random one.
func (m *Manager) Create(ctx context.Context, sessionID string) (string, error) {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	err := m.withEntry(sessionID, func() error {
		m.mu.Lock()
		_, exists := m.sessions[sessionID]
		m.mu.Unlock()
		if exists {
			return fmt.Errorf("%w: %q", domain.ErrSessionExists, sessionID)
		}

		b, err := m.factory(sessionID)
		if err != nil {
			return fmt.Errorf("failed to create session %q: %w", sessionID, err)
		}

		m.mu.Lock()
		m.sessions[sessionID] = b
		m.mu.Unlock()
		return nil
	})
	if err != nil {
		return "", err
	}

	m.logger.Info("Session created", "session_id", sessionID)
	return sessionID, nil
}

// Snapshot returns the current document of sessionID.
func (m *Manager) Snapshot(ctx context.Context, sessionID string) (*domain.Snapshot, error) {
	var snap *domain.Snapshot
	err := m.WithLock(ctx, sessionID, func(_ context.Context, b ports.Builder) error {
		snap = b.Snapshot()
		return nil
	})
	return snap, err
}

// Delete ends a session and drops its document.
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	return m.withEntry(sessionID, func() error {
		m.mu.Lock()
		defer m.mu.Unlock()

		if _, ok := m.sessions[sessionID]; !ok {
			return fmt.Errorf("%w: %q", domain.ErrSessionNotFound, sessionID)
		}
		delete(m.sessions, sessionID)
		m.logger.Info("Session deleted", "session_id", sessionID)
		return nil
	})
}

// List returns the IDs of the live sessions, sorted.
func (m *Manager) List(ctx context.Context) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// WithLock runs fn against the builder of sessionID while holding the session's lock.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context, ports.Builder) error) error {
	return m.withEntry(sessionID, func() error {
		m.mu.Lock()
		b, ok := m.sessions[sessionID]
		m.mu.Unlock()
		if !ok {
			return fmt.Errorf("%w: %q", domain.ErrSessionNotFound, sessionID)
		}
		return fn(ctx, b)
	})
}

func (m *Manager) withEntry(sessionID string, fn func() error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()
	return fn()
}
