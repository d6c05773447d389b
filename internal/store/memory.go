package store

import (
	"crypto/rand"
	"errors"
	"fmt"
	"sync"
	"time"

	"rolecast/internal/config"
	"rolecast/internal/game"
)

var (
	ErrNotFound  = errors.New("session not found")
	ErrStoreFull = errors.New("session limit reached")
)

// MemoryStore holds all session state in memory
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*game.Session
	cfg      *config.ServerConfig
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore(cfg *config.ServerConfig) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*game.Session),
		cfg:      cfg,
	}
}

// CreateSession creates a new session under a fresh code. The facilitator
// token authorizes the device that holds it to drive the session.
func (s *MemoryStore) CreateSession(facilitatorToken string) (*game.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.sessions) >= s.cfg.Server.MaxSessions {
		return nil, ErrStoreFull
	}

	// Generate unique session code
	var code string
	for i := 0; i < 10; i++ { // Try up to 10 times
		code = generateSessionCode(s.cfg.Server.SessionCodeLength)
		if _, exists := s.sessions[code]; !exists {
			break
		}
	}
	if _, exists := s.sessions[code]; exists {
		return nil, fmt.Errorf("no free session code after 10 attempts")
	}

	session := game.NewSession(code, facilitatorToken)
	s.sessions[code] = session
	return session, nil
}

// GetSession retrieves a session by code
func (s *MemoryStore) GetSession(code string) (*game.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, exists := s.sessions[code]
	if !exists {
		return nil, fmt.Errorf("session %s: %w", code, ErrNotFound)
	}

	return session, nil
}

// DeleteSession removes a session. Deleting a missing code is a no-op.
func (s *MemoryStore) DeleteSession(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, code)
}

// Len returns the number of live sessions
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// PurgeExpired drops every session idle longer than ttl and reports how
// many were dropped. A ttl of 0 disables purging.
func (s *MemoryStore) PurgeExpired(ttl time.Duration) int {
	if ttl <= 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-ttl)
	purged := 0
	for code, session := range s.sessions {
		if session.LastActive().Before(cutoff) {
			delete(s.sessions, code)
			purged++
		}
	}
	return purged
}

// generateSessionCode generates an n-character alphanumeric code
func generateSessionCode(n int) string {
	const chars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, n)
	rand.Read(b)

	for i := range b {
		b[i] = chars[b[i]%byte(len(chars))]
	}

	return string(b)
}
