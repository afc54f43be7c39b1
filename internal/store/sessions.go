package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/animerec/animerec-server/internal/id"
	"github.com/animerec/animerec-server/internal/service"
)

// CreateSession stores a new idle session and returns its id.
func (s *Store) CreateSession(_ context.Context) (string, *service.Session, error) {
	sessionID, err := id.Generate(id.PrefixSession)
	if err != nil {
		return "", nil, err
	}
	key := sessionKey(sessionID)

	exists, err := s.exists(key)
	if err != nil {
		return "", nil, fmt.Errorf("check session exists: %w", err)
	}
	if exists {
		return "", nil, errors.New("session already exists")
	}

	sess := service.NewSession(nil)
	if err := s.setWithTTL(key, sess); err != nil {
		return "", nil, fmt.Errorf("save session: %w", err)
	}
	return sessionID, sess, nil
}

// GetSession retrieves a session by id.
func (s *Store) GetSession(_ context.Context, sessionID string) (*service.Session, error) {
	if !id.Valid(id.PrefixSession, sessionID) {
		return nil, ErrSessionNotFound
	}

	var sess service.Session
	if err := s.get(sessionKey(sessionID), &sess); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &sess, nil
}

// UpdateSession loads a session, applies fn and saves the result, refreshing
// its TTL. Updates to one session are serialized. The session is saved even
// when fn fails, since a failed step still moves the state machine; fn's
// error is returned.
func (s *Store) UpdateSession(ctx context.Context, sessionID string, fn func(*service.Session) error) (*service.Session, error) {
	unlock := s.sessionLocks.Lock(sessionID)
	defer unlock()

	sess, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	fnErr := fn(sess)

	if err := s.setWithTTL(sessionKey(sessionID), sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return sess, fnErr
}

// DeleteSession removes a session. Deleting an unknown session is not an
// error.
func (s *Store) DeleteSession(_ context.Context, sessionID string) error {
	unlock := s.sessionLocks.Lock(sessionID)
	defer unlock()

	if err := s.delete(sessionKey(sessionID)); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// CountSessions returns the number of live sessions.
func (s *Store) CountSessions(_ context.Context) (int, error) {
	return s.countPrefix([]byte(sessionPrefix))
}
