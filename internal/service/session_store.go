package service

import (
	"sync"

	"github.com/google/uuid"
)

// sessionStore keeps open panel sessions (list views, draft editors) keyed by a UUID.
type sessionStore[T any] struct {
	mu       sync.RWMutex
	sessions map[string]T
}

func newSessionStore[T any]() *sessionStore[T] {
	return &sessionStore[T]{sessions: make(map[string]T)}
}

func (s *sessionStore[T]) open(value T) string {
	id := uuid.NewString()
	s.mu.Lock()
	s.sessions[id] = value
	s.mu.Unlock()
	return id
}

func (s *sessionStore[T]) get(id string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.sessions[id]
	return value, ok
}

func (s *sessionStore[T]) close(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return false
	}
	delete(s.sessions, id)
	return true
}

func (s *sessionStore[T]) len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
