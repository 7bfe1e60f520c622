package folio

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/folio/internal/platform"
	"github.com/aretw0/folio/pkg/core"
	"github.com/aretw0/folio/pkg/kinds"
	"github.com/aretw0/folio/pkg/typed"
)

// --- Types ---

// Entry pairs an item with its decoded structured data.
type Entry[T any] = typed.Entry[T]

// LedgerEntry is the structured data of a shopping item.
type LedgerEntry = kinds.LedgerEntry

// Task is the structured data of a todo item.
type Task = kinds.Task

// --- Configuration ---

// Option defines a functional option for configuring folio.
type Option = platform.Option

// WithLogger sets the logger for the service and its store.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithStore injects a custom store.
func WithStore(store core.Store) Option {
	return platform.WithStore(store)
}

// WithAdapter selects the storage adapter by name ("fs", "sqlite", "memory").
func WithAdapter(name string) Option {
	return platform.WithAdapter(name)
}

// WithFormat selects the fs slot encoding ("json", "yaml").
func WithFormat(format string) Option {
	return platform.WithFormat(format)
}

// WithCollection selects the slot ("folders", "streams").
func WithCollection(name string) Option {
	return platform.WithCollection(name)
}

// WithReadOnly enables read-only mode.
func WithReadOnly(enabled bool) Option {
	return platform.WithReadOnly(enabled)
}

// WithLockTimeout waits up to d for another process to release the data directory.
func WithLockTimeout(d time.Duration) Option {
	return platform.WithLockTimeout(d)
}

// WithAutosaveDelay sets the editor debounce window.
func WithAutosaveDelay(d time.Duration) Option {
	return platform.WithAutosaveDelay(d)
}

// WithScheduler replaces the autosave timer source.
func WithScheduler(s core.Scheduler) Option {
	return platform.WithScheduler(s)
}

// WithRegistry replaces the item type registry.
func WithRegistry(r core.TypeRegistry) Option {
	return platform.WithRegistry(r)
}

// WithRender registers the view callback.
func WithRender(fn core.RenderFunc) Option {
	return platform.WithRender(fn)
}

// --- Factory ---

// New opens the collection stored under uri and returns a ready Service.
func New(ctx context.Context, uri string, opts ...Option) (*core.Service, error) {
	return platform.New(ctx, uri, opts...)
}

// Init opens and initializes a store without loading it.
func Init(ctx context.Context, uri string, opts ...Option) (core.Store, error) {
	return platform.Init(ctx, uri, opts...)
}

// Reset moves an unreadable collection aside and starts over.
func Reset(ctx context.Context, uri string, opts ...Option) (string, error) {
	return platform.Reset(ctx, uri, opts...)
}

// --- Typed Views ---

// View decodes the structured data of items into T.
func View[T any](items []core.Item) ([]Entry[T], error) {
	return typed.View[T](items)
}

// --- Utils ---

// FindRoot looks upwards for a directory containing .folio.
func FindRoot(startDir string) (string, error) {
	return platform.FindRoot(startDir)
}

// ResolveDataDir returns the nearest .folio directory, or startDir/.folio.
func ResolveDataDir(startDir string) (string, error) {
	return platform.ResolveDataDir(startDir)
}
