package platform

import (
	"log/slog"
	"time"

	"github.com/aretw0/folio/pkg/core"
)

// options holds the internal configuration for a folio session.
type options struct {
	store     core.Store
	registry  core.TypeRegistry
	logger    *slog.Logger
	adapter   string
	scheduler core.Scheduler
	render    core.RenderFunc
	config    map[string]any
}

// Option defines a functional option for configuring folio.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		adapter: "fs",
		config:  make(map[string]any),
	}
}

func (o *options) getString(key, fallback string) string {
	if v, ok := o.config[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

func (o *options) getBool(key string) bool {
	v, _ := o.config[key].(bool)
	return v
}

func (o *options) getDuration(key string) time.Duration {
	v, _ := o.config[key].(time.Duration)
	return v
}

// WithLogger sets the logger for the service and its store.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithStore injects a custom store (e.g. a test double). The adapter option is ignored.
func WithStore(store core.Store) Option {
	return func(o *options) {
		o.store = store
	}
}

// WithAdapter selects the storage adapter by name: "fs" (default), "sqlite" or "memory".
func WithAdapter(name string) Option {
	return func(o *options) {
		o.adapter = name
	}
}

// WithFormat selects the fs slot encoding, "json" (default) or "yaml".
func WithFormat(format string) Option {
	return func(o *options) {
		o.config["format"] = format
	}
}

// WithCollection selects the slot, e.g. "folders" (default) or "streams".
func WithCollection(name string) Option {
	return func(o *options) {
		o.config["collection"] = name
	}
}

// WithReadOnly enables read-only mode.
// Writes return core.ErrReadOnly and no ownership lock is taken.
func WithReadOnly(enabled bool) Option {
	return func(o *options) {
		o.config["read_only"] = enabled
	}
}

// WithLockTimeout makes the fs adapter wait up to d for another process to release the data directory.
func WithLockTimeout(d time.Duration) Option {
	return func(o *options) {
		o.config["lock_timeout"] = d
	}
}

// WithAutosaveDelay sets the debounce window between the last edit and the implicit save.
func WithAutosaveDelay(d time.Duration) Option {
	return func(o *options) {
		o.config["autosave"] = d
	}
}

// WithScheduler replaces the timer source of the autosave (tests).
func WithScheduler(s core.Scheduler) Option {
	return func(o *options) {
		o.scheduler = s
	}
}

// WithRegistry replaces the item type registry.
func WithRegistry(r core.TypeRegistry) Option {
	return func(o *options) {
		o.registry = r
	}
}

// WithRender registers the callback that receives a fresh view after every change.
func WithRender(fn core.RenderFunc) Option {
	return func(o *options) {
		o.render = fn
	}
}
