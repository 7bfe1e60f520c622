// Package kinds provides the item variants of folio containers:
// free-form memos, quantity ledgers and task trackers.
//
// Adding a variant means implementing core.ItemType and registering it;
// the repository, selection and editor never switch on type names.
package kinds

import (
	"slices"
	"sync"

	"github.com/aretw0/folio/pkg/core"
)

// Registry maps container types to variants, falling back to free-form.
type Registry struct {
	mu       sync.RWMutex
	types    map[core.ContainerType]core.ItemType
	fallback core.ItemType
}

// NewRegistry creates a registry whose fallback is the given variant.
func NewRegistry(fallback core.ItemType) *Registry {
	r := &Registry{
		types:    make(map[core.ContainerType]core.ItemType),
		fallback: fallback,
	}
	r.Register(fallback)
	return r
}

// Default returns a registry with the memo, shopping and todo variants.
func Default() *Registry {
	r := NewRegistry(Memo{})
	r.Register(Ledger{Name: core.TypeShopping})
	r.Register(Tasks{Name: core.TypeTodo})
	return r
}

// Register adds or replaces a variant.
func (r *Registry) Register(t core.ItemType) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types[t.Type()] = t
}

// Lookup implements core.TypeRegistry.
func (r *Registry) Lookup(t core.ContainerType) core.ItemType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if it, ok := r.types[t]; ok {
		return it
	}
	return r.fallback
}

// Known reports whether t has its own registered variant.
func (r *Registry) Known(t core.ContainerType) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.types[t]
	return ok
}

// Types lists the registered container types in name order.
func (r *Registry) Types() []core.ContainerType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]core.ContainerType, 0, len(r.types))
	for t := range r.types {
		out = append(out, t)
	}
	slices.Sort(out)
	return out
}

var _ core.TypeRegistry = (*Registry)(nil)
