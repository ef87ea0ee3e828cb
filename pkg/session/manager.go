package session

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/perceptlab/staircase"
	"github.com/perceptlab/staircase/internal/logging"
	"github.com/perceptlab/staircase/pkg/domain"
)

// entry pairs a live session with its own mutex. The engine is not safe for
// concurrent use, so every access to a session goes through this lock.
type entry struct {
	mu   sync.Mutex
	sess *staircase.Session
}

// Manager is a registry of running sessions keyed by generated IDs.
// Safe for concurrent use.
type Manager struct {
	mu         sync.RWMutex
	entries    map[string]*entry
	defaults   []staircase.Option
	defaultsFn func(id string) []staircase.Option
	logger     *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithDefaults sets options applied to every created session, before the
// per-call options. Hosts use this to inject shared sinks or metrics hooks.
func WithDefaults(opts ...staircase.Option) Option {
	return func(m *Manager) {
		m.defaults = opts
	}
}

// WithDefaultsFunc sets a per-session option builder. It runs with the
// session's generated ID before construction, so hosts can attach sinks
// keyed by session.
func WithDefaultsFunc(fn func(id string) []staircase.Option) Option {
	return func(m *Manager) {
		m.defaultsFn = fn
	}
}

// NewManager creates an empty session registry.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		entries: make(map[string]*entry),
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create builds a new session and registers it under a fresh ID.
func (m *Manager) Create(ctx context.Context, varName string, stairType domain.StairType, opts ...staircase.Option) (string, error) {
	id := uuid.NewString()

	all := make([]staircase.Option, 0, len(m.defaults)+len(opts))
	all = append(all, m.defaults...)
	if m.defaultsFn != nil {
		all = append(all, m.defaultsFn(id)...)
	}
	all = append(all, opts...)

	sess, err := staircase.New(ctx, varName, stairType, all...)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	m.entries[id] = &entry{sess: sess}
	m.mu.Unlock()

	m.logger.Info("session created", "session", id, "var", varName)
	return id, nil
}

// With runs fn against the session under its lock, so callers get exclusive
// access for the duration of the callback. Returns domain.ErrSessionNotFound
// for unknown IDs.
func (m *Manager) With(id string, fn func(sess *staircase.Session) error) error {
	m.mu.RLock()
	e, ok := m.entries[id]
	m.mu.RUnlock()
	if !ok {
		return domain.ErrSessionNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.sess)
}

// Delete removes a session from the registry.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[id]; !ok {
		return domain.ErrSessionNotFound
	}
	delete(m.entries, id)
	m.logger.Info("session deleted", "session", id)
	return nil
}

// List returns the active session IDs in stable order.
func (m *Manager) List() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.entries))
	for id := range m.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of active sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
