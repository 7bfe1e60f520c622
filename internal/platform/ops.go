package platform

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/folio/pkg/adapters/fs"
	"github.com/aretw0/folio/pkg/adapters/memory"
	"github.com/aretw0/folio/pkg/adapters/sqlite"
	"github.com/aretw0/folio/pkg/core"
	"github.com/aretw0/folio/pkg/kinds"
)

// DatabaseFile is the sqlite file created inside a data directory.
const DatabaseFile = "folio.db"

// Init opens and initializes the store selected by the options.
// The uri is adapter-specific: a data directory for fs, a directory or
// database file for sqlite, and ignored for memory.
func Init(ctx context.Context, uri string, opts ...Option) (core.Store, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return initStore(ctx, uri, o)
}

func initStore(ctx context.Context, uri string, o *options) (core.Store, error) {
	if o.store != nil {
		if err := o.store.Initialize(ctx); err != nil {
			return nil, err
		}
		return o.store, nil
	}

	var store core.Store
	var err error
	switch o.adapter {
	case "fs", "":
		store, err = initFS(uri, o)
	case "sqlite":
		store, err = initSQLite(uri, o)
	case "memory":
		store = memory.New()
	default:
		return nil, fmt.Errorf("unknown adapter: %s", o.adapter)
	}
	if err != nil {
		return nil, err
	}

	if err := store.Initialize(ctx); err != nil {
		if c, ok := store.(core.Closer); ok {
			_ = c.Close()
		}
		return nil, err
	}
	return store, nil
}

// initFS handles the initialization logic for the filesystem adapter.
func initFS(dir string, o *options) (core.Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("data directory is required")
	}
	return fs.New(fs.Config{
		Dir:         dir,
		Collection:  o.getString("collection", core.DefaultCollection),
		Format:      o.getString("format", "json"),
		ReadOnly:    o.getBool("read_only"),
		LockTimeout: o.getDuration("lock_timeout"),
		Logger:      o.logger,
	})
}

func initSQLite(uri string, o *options) (core.Store, error) {
	if uri == "" {
		return nil, fmt.Errorf("database path is required")
	}
	path := uri
	switch strings.ToLower(filepath.Ext(uri)) {
	case ".db", ".sqlite", ".sqlite3":
	default:
		if uri == ":memory:" {
			break
		}
		if !o.getBool("read_only") {
			if err := os.MkdirAll(uri, 0755); err != nil {
				return nil, fmt.Errorf("failed to create data directory: %w", err)
			}
		}
		path = filepath.Join(uri, DatabaseFile)
	}
	return sqlite.Open(sqlite.Config{
		Path:       path,
		Collection: o.getString("collection", core.DefaultCollection),
		ReadOnly:   o.getBool("read_only"),
		Logger:     o.logger,
	})
}

// Reset moves the persisted collection aside and starts over with a default
// container. It is the only way out of core.ErrCorruptState.
func Reset(ctx context.Context, uri string, opts ...Option) (string, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	store, err := initStore(ctx, uri, o)
	if err != nil {
		return "", err
	}
	repo := newRepository(store, o)
	defer repo.Close()
	return repo.Reset(ctx)
}

func newRepository(store core.Store, o *options) *core.Repository {
	registry := o.registry
	if registry == nil {
		registry = kinds.Default()
	}
	return core.NewRepository(core.RepositoryConfig{
		Store:    store,
		Registry: registry,
		Logger:   o.logger,
	})
}
