package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/inkpolish/inkpolish/internal/analysis"
	"github.com/inkpolish/inkpolish/internal/models"
	"github.com/rs/zerolog/log"
)

// Manager holds the live sessions of the process.
type Manager struct {
	analyzer analysis.Analyzer
	timeout  time.Duration

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewManager creates a manager whose sessions share one analyzer and
// analysis timeout.
func NewManager(analyzer analysis.Analyzer, timeout time.Duration) *Manager {
	return &Manager{
		analyzer: analyzer,
		timeout:  timeout,
		sessions: make(map[string]*Session),
	}
}

// Create starts a new session with the given draft.
func (m *Manager) Create(title, content string) *Session {
	s := New(uuid.New().String(), m.analyzer, title, content, WithTimeout(m.timeout))

	m.mu.Lock()
	m.sessions[s.ID()] = s
	m.mu.Unlock()

	log.Debug().Str("session", s.ID()).Msg("Session created")
	return s
}

// Get looks a session up by id.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// Delete removes a session. A running correction finishes on its own but
// its result is no longer reachable.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(m.sessions, id)
	return nil
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Prune drops sessions idle for longer than maxIdle. Sessions in the middle
// of a correction are kept.
func (m *Manager) Prune(now time.Time, maxIdle time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	pruned := 0
	for id, s := range m.sessions {
		if s.State() == models.StateCorrecting {
			continue
		}
		if now.Sub(s.LastActive()) > maxIdle {
			delete(m.sessions, id)
			pruned++
		}
	}
	return pruned
}

// Run prunes idle sessions every interval until ctx is done.
func (m *Manager) Run(ctx context.Context, interval, maxIdle time.Duration) {
	if interval <= 0 || maxIdle <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := m.Prune(now, maxIdle); n > 0 {
				log.Info().Int("pruned", n).Int("remaining", m.Len()).Msg("Idle sessions pruned")
			}
		}
	}
}
