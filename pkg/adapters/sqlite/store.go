// Package sqlite keeps collection snapshots as rows of a key-value table.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/aretw0/folio/pkg/adapters/fs"
	"github.com/aretw0/folio/pkg/core"
)

// Config holds the configuration for the SQLite store.
type Config struct {
	// Path is the database file. ":memory:" is accepted for tests.
	Path       string
	Collection string
	ReadOnly   bool
	Logger     *slog.Logger
}

// Store implements core.Store with one row per slot.
// Rows hold the same JSON document the fs store writes.
type Store struct {
	db     *sql.DB
	config Config
	key    string
	codec  fs.JSONSerializer
	now    func() time.Time

	mu         sync.Mutex
	saves      int
	lastBackup string
}

// Open opens the database. Initialize creates the schema.
func Open(config Config) (*Store, error) {
	if config.Path == "" {
		return nil, errors.New("sqlite path is required")
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}
	db, err := sql.Open("sqlite", config.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", config.Path, err)
	}
	// A single connection keeps ":memory:" databases alive and serializes writers.
	db.SetMaxOpenConns(1)
	return &Store{
		db:     db,
		config: config,
		key:    core.SlotKey(config.Collection),
		now:    time.Now,
	}, nil
}

// Key returns the slot key this store reads and writes.
func (s *Store) Key() string { return s.key }

func (s *Store) Initialize(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `PRAGMA busy_timeout=5000;`); err != nil {
		return fmt.Errorf("failed to configure sqlite: %w", err)
	}
	if s.config.ReadOnly {
		return nil
	}
	if !strings.HasPrefix(s.config.Path, ":memory:") {
		if _, err := s.db.ExecContext(ctx, `PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL;`); err != nil {
			return fmt.Errorf("failed to configure sqlite: %w", err)
		}
	}
	_, err := s.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS kv (
  k                 TEXT PRIMARY KEY,
  v                 TEXT NOT NULL,
  updated_at_unixms INTEGER NOT NULL
);`)
	if err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}

func (s *Store) Load(ctx context.Context) ([]core.Container, error) {
	var v string
	err := s.db.QueryRowContext(ctx, `SELECT v FROM kv WHERE k = ?`, s.key).Scan(&v)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, core.ErrNotFound
	case err != nil && strings.Contains(err.Error(), "no such table"):
		return nil, core.ErrNotFound
	case err != nil:
		return nil, fmt.Errorf("failed to read %s: %w", s.key, err)
	}
	if strings.TrimSpace(v) == "" {
		return nil, fmt.Errorf("%s is empty: %w", s.key, core.ErrCorruptState)
	}
	containers, err := s.codec.Parse([]byte(v))
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", s.key, core.ErrCorruptState, err)
	}
	if containers == nil {
		containers = []core.Container{}
	}
	return containers, nil
}

func (s *Store) Save(ctx context.Context, containers []core.Container) error {
	if s.config.ReadOnly {
		return core.ErrReadOnly
	}
	if containers == nil {
		containers = []core.Container{}
	}
	data, err := s.codec.Serialize(containers)
	if err != nil {
		return fmt.Errorf("failed to encode collection: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := s.put(ctx, tx, s.key, string(data)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit %s: %w", s.key, err)
	}

	s.mu.Lock()
	s.saves++
	s.mu.Unlock()
	return nil
}

func (s *Store) put(ctx context.Context, tx *sql.Tx, key, value string) error {
	_, err := tx.ExecContext(ctx, `
INSERT INTO kv(k, v, updated_at_unixms) VALUES(?, ?, ?)
ON CONFLICT(k) DO UPDATE SET v = excluded.v, updated_at_unixms = excluded.updated_at_unixms
`, key, value, s.now().UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// Reset copies the slot row under "<key>.corrupt-<unix>" and deletes it, in one transaction.
func (s *Store) Reset(ctx context.Context) (string, error) {
	if s.config.ReadOnly {
		return "", core.ErrReadOnly
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var v string
	err = tx.QueryRowContext(ctx, `SELECT v FROM kv WHERE k = ?`, s.key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", s.key, err)
	}

	backup := fmt.Sprintf("%s.corrupt-%d", s.key, s.now().Unix())
	if err := s.put(ctx, tx, backup, v); err != nil {
		return "", err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM kv WHERE k = ?`, s.key); err != nil {
		return "", fmt.Errorf("failed to clear %s: %w", s.key, err)
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit reset: %w", err)
	}

	s.mu.Lock()
	s.lastBackup = backup
	s.mu.Unlock()
	s.config.Logger.Warn("slot moved aside", "key", s.key, "backup", backup)
	return backup, nil
}

// Keys lists every slot in the database, backups included.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT k FROM kv ORDER BY k`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

func (s *Store) Close() error { return s.db.Close() }

// StoreState exposes internal state for observability.
type StoreState struct {
	Path       string `json:"path"`
	Key        string `json:"key"`
	ReadOnly   bool   `json:"read_only"`
	Saves      int    `json:"saves"`
	LastBackup string `json:"last_backup,omitempty"`
}

// State implements introspection.Introspectable.
func (s *Store) State() any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return StoreState{
		Path:       s.config.Path,
		Key:        s.key,
		ReadOnly:   s.config.ReadOnly,
		Saves:      s.saves,
		LastBackup: s.lastBackup,
	}
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string { return "sqlite" }

var (
	_ core.Store    = (*Store)(nil)
	_ core.Resetter = (*Store)(nil)
	_ core.Closer   = (*Store)(nil)
)
