package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/arcanaoficial/arcana-server/internal/domain"
)

var _ Store = (*BadgerStore)(nil)

// BadgerStore keeps sessions in an embedded Badger database, relying on
// entry TTLs for expiry.
type BadgerStore struct {
	db     *badger.DB
	logger *slog.Logger
	now    func() time.Time
}

// OpenBadger opens the database in dir. An empty dir keeps everything in
// memory.
func OpenBadger(dir string, logger *slog.Logger) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir)
	if dir == "" {
		opts = opts.WithInMemory(true)
	} else {
		opts.SyncWrites = true
		opts.CompactL0OnClose = true
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}
	if logger != nil {
		logger.Info("session database opened", "path", dir, "in_memory", dir == "")
	}
	return &BadgerStore{db: db, logger: logger, now: time.Now}, nil
}

// Save stores sess until it expires.
func (s *BadgerStore) Save(_ context.Context, sess *domain.AdminSession) error {
	ttl, err := ttlFor(sess, s.now())
	if err != nil {
		return err
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry([]byte(keyPrefix+sess.ID), data).WithTTL(ttl))
	})
}

// Get loads a live session.
func (s *BadgerStore) Get(_ context.Context, id string) (*domain.AdminSession, error) {
	var sess domain.AdminSession
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(keyPrefix + id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &sess)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if sess.Expired(s.now()) {
		return nil, ErrNotFound
	}
	return &sess, nil
}

// Delete revokes a session.
func (s *BadgerStore) Delete(_ context.Context, id string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(keyPrefix + id))
	})
}

// Ping reports an error once the database is closed.
func (s *BadgerStore) Ping(context.Context) error {
	if s.db.IsClosed() {
		return errors.New("session database closed")
	}
	return nil
}

// Close closes the database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}
