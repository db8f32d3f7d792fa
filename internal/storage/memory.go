// Package storage provides session persistence implementations.
package storage

import (
	"context"
	"sync"

	"github.com/platekit/cooksession/internal/domain"
	"github.com/platekit/cooksession/internal/logger"
)

// Compile-time interface check.
var _ domain.SessionStore = (*MemoryStore)(nil)

// MemoryStore is an in-memory session store. Safe for concurrent access.
// Sessions are stored as copies so callers cannot mutate stored state
// without going through Update.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*domain.CookingSession
	log      *logger.Logger
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore(log *logger.Logger) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*domain.CookingSession),
		log:      log,
	}
}

// Create stores a new session. Fails if the ID is already present.
func (s *MemoryStore) Create(ctx context.Context, session *domain.CookingSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[session.ID]; ok {
		return domain.ErrAlreadyExists
	}
	s.sessions[session.ID] = session.Clone()
	s.log.Debug("created session %s (recipe=%s, user=%s)", session.ID, session.RecipeID, session.UserID)
	return nil
}

// Get retrieves a session by ID.
func (s *MemoryStore) Get(ctx context.Context, id string) (*domain.CookingSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		s.log.Debug("session not found: %s", id)
		return nil, domain.ErrNotFound
	}
	return sess.Clone(), nil
}

// Update overwrites a stored session.
func (s *MemoryStore) Update(ctx context.Context, session *domain.CookingSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[session.ID]; !ok {
		return domain.ErrNotFound
	}
	s.sessions[session.ID] = session.Clone()
	s.log.Debug("updated session %s (status=%s, step=%d)", session.ID, session.Status, session.CurrentStepIndex)
	return nil
}

// Delete removes a session by ID.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.sessions, id)
	s.log.Debug("deleted session %s", id)
	return nil
}

// ListActive returns all sessions with active or paused status.
func (s *MemoryStore) ListActive(ctx context.Context) ([]*domain.CookingSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.CookingSession
	for _, sess := range s.sessions {
		if sess.Status == domain.SessionActive || sess.Status == domain.SessionPaused {
			out = append(out, sess.Clone())
		}
	}
	s.log.Debug("listing active sessions, count=%d", len(out))
	return out, nil
}
