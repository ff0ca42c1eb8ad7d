// Package session tracks issued access tokens so they can be revoked.
// Sessions are stored in Redis with TTL-based expiration.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrSessionNotFound is returned when a session is not found
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionExpired is returned when a session has expired
	ErrSessionExpired = errors.New("session expired")
	// ErrInvalidSession is returned when session data is invalid
	ErrInvalidSession = errors.New("invalid session")
)

// Manager defines the interface for session management operations
type Manager interface {
	Create(ctx context.Context, sess *Session) error
	Get(ctx context.Context, sessionID string) (*Session, error)
	Delete(ctx context.Context, sessionID string) error
}

// manager implements Manager interface
type manager struct {
	store Store
	now   func() time.Time
}

// NewManager creates a new session manager
func NewManager(store Store) Manager {
	return &manager{
		store: store,
		now:   time.Now,
	}
}

func key(sessionID string) string {
	return fmt.Sprintf("session:%s", sessionID)
}

// Create stores a session until its ExpiresAt
func (m *manager) Create(ctx context.Context, sess *Session) error {
	if sess == nil || sess.ID == "" {
		return ErrInvalidSession
	}

	ttl := sess.ExpiresAt.Sub(m.now())
	if ttl <= 0 {
		return ErrSessionExpired
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := m.store.Set(ctx, key(sess.ID), string(data), ttl); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}

	return nil
}

// Get retrieves a session by ID
func (m *manager) Get(ctx context.Context, sessionID string) (*Session, error) {
	data, err := m.store.Get(ctx, key(sessionID))
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var sess Session
	if err := json.Unmarshal([]byte(data), &sess); err != nil {
		return nil, ErrInvalidSession
	}

	if m.now().After(sess.ExpiresAt) {
		_ = m.store.Delete(ctx, key(sessionID))
		return nil, ErrSessionExpired
	}

	return &sess, nil
}

// Delete removes a session
func (m *manager) Delete(ctx context.Context, sessionID string) error {
	return m.store.Delete(ctx, key(sessionID))
}
