package repositories

import (
	"fmt"
	"io"
	"sync"

	"github.com/dgraph-io/badger/v4"
)

// Options configures how the badger database is opened.
type Options struct {
	Path       string
	InMemory   bool
	SyncWrites bool
	// Logger receives badger's internal logs. Nil silences them.
	Logger badger.Logger
}

// Store owns the badger database and hands out repositories bound to it.
type Store struct {
	db     *badger.DB
	mutex  sync.Mutex
	path   string
	closed bool
}

// Open opens or creates the database described by opts.
func Open(opts Options) (*Store, error) {
	path := opts.Path
	if opts.InMemory {
		path = ""
	}
	bopts := badger.DefaultOptions(path).
		WithInMemory(opts.InMemory).
		WithLogger(opts.Logger).
		WithSyncWrites(opts.SyncWrites).
		WithNumVersionsToKeep(1)
	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger at %q: %w", opts.Path, err)
	}
	return &Store{db: db, path: path}, nil
}

// Path is the on-disk location, empty for in-memory stores.
func (s *Store) Path() string { return s.path }

func (s *Store) Users() *BadgerUserRepository { return NewBadgerUserRepository(s.db) }

func (s *Store) Posts() *BadgerPostRepository { return NewBadgerPostRepository(s.db) }

func (s *Store) Comments() *BadgerCommentRepository { return NewBadgerCommentRepository(s.db) }

// Backup writes a full backup of the database to w and returns the version it covers.
func (s *Store) Backup(w io.Writer) (uint64, error) {
	version, err := s.db.Backup(w, 0)
	if err != nil {
		return 0, fmt.Errorf("failed to backup database: %w", err)
	}
	return version, nil
}

// Restore loads a backup produced by Backup.
func (s *Store) Restore(r io.Reader) error {
	if err := s.db.Load(r, 16); err != nil {
		return fmt.Errorf("failed to restore database: %w", err)
	}
	return nil
}

// Clear drops every key.
func (s *Store) Clear() error {
	return s.db.DropAll()
}

func (s *Store) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
