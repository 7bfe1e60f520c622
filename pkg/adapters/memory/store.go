// Package memory provides a process-local core.Store.
// It keeps the serialized snapshot rather than live structs so callers can
// never share memory with the repository.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/aretw0/folio/pkg/core"
)

// Store is an in-memory slot holding one JSON document.
type Store struct {
	mu     sync.Mutex
	data   []byte
	saves  int
	events chan core.Event
}

// New returns an empty store.
func New() *Store {
	return &Store{}
}

// NewWithRaw returns a store whose slot already holds raw, e.g. a legacy or corrupt document.
func NewWithRaw(raw []byte) *Store {
	return &Store{data: append([]byte(nil), raw...)}
}

func (s *Store) Initialize(ctx context.Context) error { return nil }

func (s *Store) Load(ctx context.Context) ([]core.Container, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return nil, core.ErrNotFound
	}
	var out []core.Container
	if err := json.Unmarshal(s.data, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrCorruptState, err)
	}
	if out == nil {
		out = []core.Container{}
	}
	return out, nil
}

func (s *Store) Save(ctx context.Context, containers []core.Container) error {
	if containers == nil {
		containers = []core.Container{}
	}
	b, err := json.Marshal(containers)
	if err != nil {
		return fmt.Errorf("failed to encode collection: %w", err)
	}
	s.mu.Lock()
	s.data = b
	s.saves++
	s.mu.Unlock()
	return nil
}

// Reset empties the slot. There is nowhere to move the old data, so no backup is reported.
func (s *Store) Reset(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = nil
	return "", nil
}

// Raw returns a copy of the stored document, or nil.
func (s *Store) Raw() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		return nil
	}
	return append([]byte(nil), s.data...)
}

// Saves returns how many snapshots were written.
func (s *Store) Saves() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string { return "memory" }

// Inject replaces the slot as if another writer had saved raw, and emits a MODIFY event.
func (s *Store) Inject(raw []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = append([]byte(nil), raw...)
	if s.events != nil {
		select {
		case s.events <- core.Event{Type: core.EventModify, ID: "memory", Timestamp: time.Now().Unix()}:
		default:
		}
	}
}

// Watch reports slot replacements made through Inject.
func (s *Store) Watch(ctx context.Context) (<-chan core.Event, error) {
	s.mu.Lock()
	if s.events != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("memory store is already watched")
	}
	ch := make(chan core.Event, 8)
	s.events = ch
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		s.events = nil
		s.mu.Unlock()
		close(ch)
	}()
	return ch, nil
}

var (
	_ core.Store     = (*Store)(nil)
	_ core.Resetter  = (*Store)(nil)
	_ core.Watchable = (*Store)(nil)
)
