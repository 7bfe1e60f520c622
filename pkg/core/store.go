package core

import "context"

// Store defines the contract for persisting a whole container collection
// into a single key-value slot. Adhering to this interface keeps the core
// independent of the storage medium (file, SQLite, memory).
type Store interface {
	// Load returns the persisted collection.
	// It returns ErrNotFound when the slot holds no data and an error wrapping
	// ErrCorruptState when the data cannot be decoded.
	Load(ctx context.Context) ([]Container, error)
	// Save writes the full snapshot as one logical write.
	Save(ctx context.Context, containers []Container) error
	// Initialize ensures the underlying storage is ready (directories, schema, locks).
	Initialize(ctx context.Context) error
}

// Resetter is implemented by stores that can move unreadable data aside.
// It is the only recovery path from ErrCorruptState and must be user initiated.
type Resetter interface {
	// Reset clears the slot and returns where the previous data was preserved (if any).
	Reset(ctx context.Context) (backup string, err error)
}

// Watchable is implemented by stores that can report modifications made by other writers.
type Watchable interface {
	Watch(ctx context.Context) (<-chan Event, error)
}

// Closer is implemented by stores holding resources (files, locks, connections).
type Closer interface {
	Close() error
}

const (
	// DefaultCollection holds the plain folder hierarchy.
	DefaultCollection = "folders"
	// StreamsCollection holds typed streams.
	StreamsCollection = "streams"
)

// SlotKey returns the storage key of a collection.
func SlotKey(collection string) string {
	if collection == "" {
		collection = DefaultCollection
	}
	return "folio-" + collection
}
