// Package store keeps recommendation sessions in Badger.
//
// By default the database runs in memory: sessions are conversational state
// with a TTL and do not outlive the process.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// DefaultSessionTTL is how long an untouched session survives.
const DefaultSessionTTL = 30 * time.Minute

// Options configures the store.
type Options struct {
	// Path is the Badger directory. Empty runs in memory.
	Path string

	// SessionTTL is the sliding expiry applied on every write.
	SessionTTL time.Duration
}

// Store wraps a Badger database instance.
type Store struct {
	db     *badger.DB
	logger *slog.Logger
	ttl    time.Duration

	// sessionLocks serializes read-modify-write cycles per session id.
	sessionLocks *keyedMutex
}

// New opens the store.
func New(opts Options, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	var bopts badger.Options
	if opts.Path == "" {
		bopts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		bopts = badger.DefaultOptions(opts.Path)
		bopts.SyncWrites = true
		bopts.CompactL0OnClose = true
	}
	bopts.Logger = nil // Disable Badger's internal logging

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	ttl := opts.SessionTTL
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}

	logger.Info("session store opened", "in_memory", opts.Path == "", "session_ttl", ttl)

	return &Store{
		db:           db,
		logger:       logger,
		ttl:          ttl,
		sessionLocks: newKeyedMutex(),
	}, nil
}

// Close gracefully closes the database.
func (s *Store) Close() error {
	s.logger.Info("closing session store")
	return s.db.Close()
}

// get retrieves a value by key.
func (s *Store) get(key []byte, dest any) error {
	return s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, dest)
		})
	})
}

// setWithTTL stores a value that expires after the store TTL.
func (s *Store) setWithTTL(key []byte, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry(key, data).WithTTL(s.ttl))
	})
}

// delete removes a key from the database.
func (s *Store) delete(key []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
}

// exists checks if a key exists.
func (s *Store) exists(key []byte) (bool, error) {
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		return err
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// countPrefix counts live keys under prefix.
func (s *Store) countPrefix(prefix []byte) (int, error) {
	n := 0
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{Prefix: prefix})
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return nil
	})
	return n, err
}
