// Package session manages console sessions.
//
// A session owns one console engine and the script realm attached to it.
// The message log and pending style live exactly as long as the session:
// they are created by Manager.Create and discarded by Manager.End.
package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vinayprograms/scriptconsole/internal/console"
	"github.com/vinayprograms/scriptconsole/internal/logging"
	"github.com/vinayprograms/scriptconsole/internal/script"
)

// Status constants for sessions.
const (
	StatusActive = "active"
	StatusEnded  = "ended"
)

// ErrNotFound is returned for unknown or ended session IDs.
var ErrNotFound = errors.New("session not found")

// Session is one console session.
type Session struct {
	ID        string
	Name      string
	CreatedAt time.Time

	engine *console.Engine
	script script.Options

	mu          sync.Mutex
	status      string
	evaluations int
	updatedAt   time.Time
}

// Info is a point in time summary of a session.
type Info struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Status      string    `json:"status"`
	Messages    int       `json:"messages"`
	Evaluations int       `json:"evaluations"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Engine returns the session's console engine.
func (s *Session) Engine() *console.Engine {
	return s.engine
}

// Evaluate runs source in the session's console.
func (s *Session) Evaluate(ctx context.Context, source string) {
	s.engine.Evaluate(ctx, source)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.evaluations++
	s.updatedAt = time.Now()
}

// Reset clears the console view and attaches a fresh realm, dropping all
// script globals. The message log keeps its history.
func (s *Session) Reset() error {
	if s.Status() != StatusActive {
		return fmt.Errorf("%w: %s", ErrNotFound, s.ID)
	}
	s.engine.ClearOutput()
	if _, err := s.engine.NewRealm(s.script); err != nil {
		return fmt.Errorf("failed to reset session %s: %w", s.ID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.updatedAt = time.Now()
	return nil
}

// Status returns the session status.
func (s *Session) Status() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Info summarizes the session.
func (s *Session) Info() Info {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Info{
		ID:          s.ID,
		Name:        s.Name,
		Status:      s.status,
		Messages:    s.engine.Len(),
		Evaluations: s.evaluations,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.updatedAt,
	}
}

func (s *Session) end() {
	s.engine.Close()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = StatusEnded
	s.updatedAt = time.Now()
}

// Options configures the sessions a Manager creates.
type Options struct {
	Console console.Options
	Script  script.Options
	Logger  *logging.Logger
}

// Manager creates and tracks sessions.
type Manager struct {
	opts   Options
	logger *logging.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager creates a new session manager.
func NewManager(opts Options) *Manager {
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	return &Manager{
		opts:     opts,
		logger:   opts.Logger.WithComponent("session"),
		sessions: make(map[string]*Session),
	}
}

// Create starts a session showing its console on display. display may be
// nil and bound later through the engine.
func (m *Manager) Create(name string, display console.Display) (*Session, error) {
	id := uuid.NewString()

	copts := m.opts.Console
	copts.Logger = m.opts.Logger.WithSession(id)
	engine := console.New(display, copts)
	if _, err := engine.NewRealm(m.opts.Script); err != nil {
		return nil, fmt.Errorf("failed to create session %q: %w", name, err)
	}

	now := time.Now()
	sess := &Session{
		ID:        id,
		Name:      name,
		CreatedAt: now,
		engine:    engine,
		script:    m.opts.Script,
		status:    StatusActive,
		updatedAt: now,
	}

	m.mu.Lock()
	m.sessions[id] = sess
	m.mu.Unlock()

	m.logger.Info("session created", map[string]interface{}{
		"session": id,
		"name":    name,
	})
	return sess, nil
}

// Get retrieves an active session by ID.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return sess, nil
}

// End tears down a session. Its realm is detached and it is no longer
// returned by Get or List.
func (m *Manager) End(id string) error {
	m.mu.Lock()
	sess, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	sess.end()
	m.logger.Info("session ended", map[string]interface{}{
		"session":  id,
		"messages": sess.engine.Len(),
	})
	return nil
}

// List returns summaries of the active sessions, oldest first.
func (m *Manager) List() []Info {
	m.mu.Lock()
	sessions := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.Unlock()

	sort.Slice(sessions, func(i, j int) bool {
		if sessions[i].CreatedAt.Equal(sessions[j].CreatedAt) {
			return sessions[i].ID < sessions[j].ID
		}
		return sessions[i].CreatedAt.Before(sessions[j].CreatedAt)
	})

	out := make([]Info, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, s.Info())
	}
	return out
}

// Close ends every active session.
func (m *Manager) Close() {
	m.mu.Lock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.mu.Unlock()

	for _, id := range ids {
		m.End(id)
	}
}
