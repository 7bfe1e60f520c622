// Package fs stores a container collection as one document file per slot.
package fs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"github.com/aretw0/folio/pkg/core"
)

var collectionName = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// Config holds the configuration for the filesystem store.
type Config struct {
	// Dir is the data directory holding slot files.
	Dir string
	// Collection selects the slot (see core.SlotKey). Defaults to core.DefaultCollection.
	Collection string
	// Format is "json" (default) or "yaml".
	Format string
	// ReadOnly rejects writes and skips the ownership lock.
	ReadOnly bool
	// LockTimeout bounds how long Initialize waits for another owner to go away.
	// Zero means a single attempt.
	LockTimeout time.Duration
	Logger      *slog.Logger
}

// Store implements core.Store on top of a single file.
type Store struct {
	config     Config
	path       string
	serializer Serializer
	lock       *flock.Flock
	now        func() time.Time

	mu            sync.RWMutex
	lastWritten   []byte
	expectMissing bool
	saves         int
	locked        bool
	watcherActive bool
	lastBackup    string
}

// New creates a store. Call Initialize before Save.
func New(config Config) (*Store, error) {
	if config.Collection == "" {
		config.Collection = core.DefaultCollection
	}
	if !collectionName.MatchString(config.Collection) {
		return nil, fmt.Errorf("invalid collection name %q", config.Collection)
	}
	if config.Format == "" {
		config.Format = "json"
	}
	ser, ok := DefaultSerializers()[config.Format]
	if !ok {
		return nil, fmt.Errorf("unsupported format %q", config.Format)
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}
	path := filepath.Join(config.Dir, core.SlotKey(config.Collection)+ser.Ext())
	return &Store{
		config:     config,
		path:       path,
		serializer: ser,
		lock:       flock.New(path + ".lock"),
		now:        time.Now,
	}, nil
}

// Path returns the slot file.
func (s *Store) Path() string { return s.path }

// Initialize creates the data directory and takes the ownership lock.
func (s *Store) Initialize(ctx context.Context) error {
	if s.config.ReadOnly {
		if _, err := os.Stat(s.config.Dir); err != nil {
			return fmt.Errorf("data directory %s: %w", s.config.Dir, err)
		}
		return nil
	}
	if err := os.MkdirAll(s.config.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	acquired, err := s.tryLock(ctx)
	if err != nil {
		return fmt.Errorf("failed to lock %s: %w", s.lock.Path(), err)
	}
	if !acquired {
		return fmt.Errorf("%s: %w", s.path, core.ErrLocked)
	}
	s.mu.Lock()
	s.locked = true
	s.mu.Unlock()

	if n, err := removeStaleTemps(s.config.Dir); err != nil {
		s.config.Logger.Warn("failed to clean temp files", "dir", s.config.Dir, "error", err)
	} else if n > 0 {
		s.config.Logger.Info("removed interrupted writes", "count", n)
	}
	return nil
}

func (s *Store) tryLock(ctx context.Context) (bool, error) {
	if s.config.LockTimeout <= 0 {
		return s.lock.TryLock()
	}
	lockCtx, cancel := context.WithTimeout(ctx, s.config.LockTimeout)
	defer cancel()
	ok, err := s.lock.TryLockContext(lockCtx, 50*time.Millisecond)
	if errors.Is(err, context.DeadlineExceeded) {
		return false, nil
	}
	return ok, err
}

// Load reads and decodes the slot file.
func (s *Store) Load(ctx context.Context) ([]core.Container, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("failed to read %s: %w", s.path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%s is empty: %w", s.path, core.ErrCorruptState)
	}
	containers, err := s.serializer.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", s.path, core.ErrCorruptState, err)
	}
	if containers == nil {
		containers = []core.Container{}
	}

	s.mu.Lock()
	s.lastWritten = data
	s.mu.Unlock()
	return containers, nil
}

// Save encodes the collection and atomically replaces the slot file.
func (s *Store) Save(ctx context.Context, containers []core.Container) error {
	if s.config.ReadOnly {
		return core.ErrReadOnly
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if containers == nil {
		containers = []core.Container{}
	}
	data, err := s.serializer.Serialize(containers)
	if err != nil {
		return fmt.Errorf("failed to encode collection: %w", err)
	}

	// Held across the write so the watcher never sees the new file before lastWritten.
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := writeFileAtomic(s.path, data, 0644); err != nil {
		return err
	}
	s.lastWritten = data
	s.expectMissing = false
	s.saves++
	return nil
}

// Reset moves the slot file aside and returns the backup path.
// With no slot file there is nothing to keep and the backup is empty.
func (s *Store) Reset(ctx context.Context) (string, error) {
	if s.config.ReadOnly {
		return "", core.ErrReadOnly
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	backup := fmt.Sprintf("%s.corrupt-%d", s.path, s.now().Unix())
	if err := os.Rename(s.path, backup); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("failed to move %s aside: %w", s.path, err)
	}
	s.lastWritten = nil
	s.expectMissing = true
	s.lastBackup = backup
	s.config.Logger.Warn("slot moved aside", "path", s.path, "backup", backup)
	return backup, nil
}

// Close releases the ownership lock.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.locked {
		return nil
	}
	s.locked = false
	return s.lock.Unlock()
}

// isOwnWrite reports whether data is exactly what this process last wrote, read or observed.
func (s *Store) isOwnWrite(data []byte) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastWritten != nil && bytes.Equal(s.lastWritten, data)
}

func (s *Store) hasSeen() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastWritten != nil
}

func (s *Store) markSeen(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastWritten = data
}

// ownReset reports whether the slot is missing because this process moved it aside.
func (s *Store) ownReset() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expectMissing
}

var (
	_ core.Store     = (*Store)(nil)
	_ core.Resetter  = (*Store)(nil)
	_ core.Watchable = (*Store)(nil)
	_ core.Closer    = (*Store)(nil)
)
