// Package session stores active race sessions in memory. It implements
// service.SessionManager; races live only for the lifetime of the process.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mwegmann/gridrace/game/engine"
	"github.com/mwegmann/gridrace/game/service"
)

// ErrRaceNotFound reports a race id with no live session.
var ErrRaceNotFound = errors.New("race not found")

// Manager handles race session lifecycle.
type Manager struct {
	races map[string]*service.RaceSession
	mu    sync.RWMutex
}

// NewManager creates a new session manager.
func NewManager() *Manager {
	return &Manager{
		races: make(map[string]*service.RaceSession),
	}
}

// Create registers a new race session around the given turn engine.
func (m *Manager) Create(game *engine.Game, trackName string) (*service.RaceSession, error) {
	if game == nil {
		return nil, errors.New("game must not be nil")
	}

	now := time.Now()
	sess := &service.RaceSession{
		ID:             uuid.NewString(),
		TrackName:      trackName,
		Game:           game,
		CreatedAt:      now,
		LastAccessedAt: now,
	}

	m.mu.Lock()
	m.races[sess.ID] = sess
	m.mu.Unlock()

	return sess, nil
}

// Get retrieves a race session by id.
func (m *Manager) Get(id string) (*service.RaceSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sess, exists := m.races[id]
	if !exists {
		return nil, ErrRaceNotFound
	}
	return sess, nil
}

// List returns all active race sessions.
func (m *Manager) List() []*service.RaceSession {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*service.RaceSession, 0, len(m.races))
	for _, sess := range m.races {
		result = append(result, sess)
	}
	return result
}

// Delete removes a race session.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.races[id]; !exists {
		return ErrRaceNotFound
	}
	delete(m.races, id)
	return nil
}

// UpdateLastAccessed refreshes the session's last-accessed time.
func (m *Manager) UpdateLastAccessed(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, exists := m.races[id]
	if !exists {
		return ErrRaceNotFound
	}
	sess.LastAccessedAt = time.Now()
	return nil
}

// Count returns the number of active race sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.races)
}

// CleanupExpiredSessions removes sessions that have not been accessed in
// the given duration and returns how many were removed.
func (m *Manager) CleanupExpiredSessions(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for id, sess := range m.races {
		if sess.LastAccessedAt.Before(cutoff) {
			delete(m.races, id)
			removed++
		}
	}
	return removed
}
