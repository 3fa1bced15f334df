package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"modernc.org/sqlite"

	"syncorbit/internal/config"
	"syncorbit/internal/services"
)

const (
	busyRetryAttempts = 5
	busyRetryBaseWait = 10 * time.Millisecond
	busyRetryMaxWait  = 200 * time.Millisecond

	sqliteBusyCode = 5
)

// Store persists movie records in SQLite and analysis sidecar documents on
// disk. A single Store is safe for concurrent use.
type Store struct {
	db           *sql.DB
	path         string
	analysisRoot string
	locks        keyedMutex
}

// Open creates or opens the library database at cfg.DatabasePath and
// prepares the schema.
func Open(cfg *config.Config) (*Store, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrCorrupt, "library", "open", "configuration is required", nil)
	}
	path := cfg.DatabasePath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, services.Wrap(services.ErrCorrupt, "library", "open", "create database directory", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, services.Wrap(services.ErrCorrupt, "library", "open", "open database", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, services.Wrap(services.ErrCorrupt, "library", "open", fmt.Sprintf("apply %s", pragma), err)
		}
	}

	store := &Store{db: db, path: path, analysisRoot: cfg.AnalysisRoot()}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code()&0xff == sqliteBusyCode
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

// retryOnBusy retries fn while SQLite reports lock contention, backing off
// between attempts.
func (s *Store) retryOnBusy(ctx context.Context, fn func() error) error {
	wait := busyRetryBaseWait
	var err error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		err = fn()
		if err == nil || !isSQLiteBusy(err) {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		wait *= 2
		if wait > busyRetryMaxWait {
			wait = busyRetryMaxWait
		}
	}
	return err
}

func (s *Store) execWithRetry(ctx context.Context, query string, args ...any) (sql.Result, error) {
	var result sql.Result
	err := s.retryOnBusy(ctx, func() error {
		var execErr error
		result, execErr = s.db.ExecContext(ctx, query, args...)
		return execErr
	})
	return result, err
}
