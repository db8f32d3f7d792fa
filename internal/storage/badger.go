package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/dgraph-io/badger/v3"

	"github.com/platekit/cooksession/internal/domain"
	"github.com/platekit/cooksession/internal/logger"
)

// Compile-time interface check.
var _ domain.SessionStore = (*BadgerStore)(nil)

const sessionPrefix = "session:"

// BadgerStore persists sessions in a BadgerDB key-value store so they
// survive process restarts. Values are JSON-encoded sessions keyed by
// "session:<id>".
type BadgerStore struct {
	db  *badger.DB
	log *logger.Logger
}

// NewBadgerStore opens (or creates) a Badger database under dataDir.
func NewBadgerStore(dataDir string, log *logger.Logger) (*BadgerStore, error) {
	absPath, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("resolving data dir: %w", err)
	}

	opts := badger.DefaultOptions(absPath)
	opts.Logger = nil // Badger's own logger is too chatty.

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening badger db: %w", err)
	}

	log.Info("badger store opened at %s", absPath)
	return &BadgerStore{db: db, log: log}, nil
}

// Close flushes and closes the database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// StartGC runs Badger value-log garbage collection on an interval until
// ctx is cancelled. Intended to be called as a goroutine.
func (s *BadgerStore) StartGC(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.db.RunValueLogGC(0.5); err != nil && !errors.Is(err, badger.ErrNoRewrite) {
				s.log.Error("badger gc: %v", err)
			}
		}
	}
}

// Create stores a new session. Fails if the ID is already present.
func (s *BadgerStore) Create(ctx context.Context, session *domain.CookingSession) error {
	key := sessionKey(session.ID)
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err == nil {
			return domain.ErrAlreadyExists
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("checking session key: %w", err)
		}
		return txn.Set(key, data)
	})
}

// Get retrieves a session by ID.
func (s *BadgerStore) Get(ctx context.Context, id string) (*domain.CookingSession, error) {
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(sessionKey(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			data = append([]byte{}, val...)
			return nil
		})
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("reading session: %w", err)
	}

	var session domain.CookingSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("decoding session: %w", err)
	}
	return &session, nil
}

// Update overwrites a stored session.
func (s *BadgerStore) Update(ctx context.Context, session *domain.CookingSession) error {
	key := sessionKey(session.ID)
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("checking session key: %w", err)
		}
		return txn.Set(key, data)
	})
}

// Delete removes a session by ID.
func (s *BadgerStore) Delete(ctx context.Context, id string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(sessionKey(id)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("checking session key: %w", err)
		}
		return txn.Delete(sessionKey(id))
	})
}

// ListActive returns all sessions with active or paused status.
func (s *BadgerStore) ListActive(ctx context.Context) ([]*domain.CookingSession, error) {
	var out []*domain.CookingSession
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(sessionPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var session domain.CookingSession
				if err := json.Unmarshal(val, &session); err != nil {
					return fmt.Errorf("decoding session: %w", err)
				}
				if session.Status == domain.SessionActive || session.Status == domain.SessionPaused {
					out = append(out, &session)
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning sessions: %w", err)
	}

	s.log.Debug("listing active sessions, count=%d", len(out))
	return out, nil
}

func sessionKey(id string) []byte {
	return []byte(sessionPrefix + id)
}
