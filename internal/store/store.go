// Package store wraps BadgerDB as a key-value snapshot store. Each key
// holds one versioned JSON snapshot that is replaced whole on every save;
// there is no cross-key transaction.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"
)

// Keys used by the application.
const (
	KeyLibrary     = "library"
	KeyDisplayName = "profile/display_name"
)

// snapshotVersion tags the persisted envelope so future schema changes can
// migrate instead of silently misreading old data.
const snapshotVersion = 1

// ErrNotFound reports that a key has never been written. Callers keep their
// default value; this is not a read failure.
var ErrNotFound = errors.New("store: key not found")

// ReadError reports a snapshot that exists but cannot be decoded. Callers
// fall back to their default value rather than propagating it.
type ReadError struct {
	Key string
	Err error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("store: read %q: %v", e.Key, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// WriteError reports a failed save. The library manager logs and swallows
// these; losing a snapshot is an accepted limitation of the design.
type WriteError struct {
	Key string
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("store: write %q: %v", e.Key, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// envelope is the persisted form of every snapshot.
type envelope struct {
	Version int             `json:"version"`
	Data    json.RawMessage `json:"data"`
}

// Store is a versioned JSON snapshot store on top of BadgerDB.
type Store struct {
	db     *badger.DB
	logger *zap.Logger
}

// Open opens (or creates) a persistent store at the given directory.
func Open(path string, logger *zap.Logger) (*Store, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("create store directory %s: %w", path, err)
	}
	opts := badger.DefaultOptions(path).WithLogger(badgerLogger{logger})
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open store at %s: %w", path, err)
	}
	return &Store{db: db, logger: logger}, nil
}

// OpenInMemory opens a store that lives only for the process. Used in tests.
func OpenInMemory(logger *zap.Logger) (*Store, error) {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(badgerLogger{logger})
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open in-memory store: %w", err)
	}
	return &Store{db: db, logger: logger}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Load decodes the snapshot under key into out. It returns ErrNotFound when
// the key was never written and *ReadError when the stored bytes are
// malformed or carry an unknown version; in both cases out is untouched and
// the caller proceeds with its default value.
func (s *Store) Load(key string, out any) error {
	var raw []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return &ReadError{Key: key, Err: err}
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return &ReadError{Key: key, Err: err}
	}
	if env.Version != snapshotVersion {
		return &ReadError{Key: key, Err: fmt.Errorf("unsupported snapshot version %d", env.Version)}
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return &ReadError{Key: key, Err: err}
	}
	return nil
}

// Save replaces the snapshot under key with value, whole-value. A failed
// save surfaces a *WriteError; it never leaves a partially written snapshot
// because the badger transaction either commits or doesn't.
func (s *Store) Save(key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return &WriteError{Key: key, Err: err}
	}
	raw, err := json.Marshal(envelope{Version: snapshotVersion, Data: data})
	if err != nil {
		return &WriteError{Key: key, Err: err}
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), raw)
	})
	if err != nil {
		return &WriteError{Key: key, Err: err}
	}
	return nil
}

// badgerLogger routes badger's internal logging through zap.
type badgerLogger struct {
	logger *zap.Logger
}

func (l badgerLogger) Errorf(format string, args ...any) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l badgerLogger) Warningf(format string, args ...any) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l badgerLogger) Infof(format string, args ...any) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l badgerLogger) Debugf(format string, args ...any) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}
