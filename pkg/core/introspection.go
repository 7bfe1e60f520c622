package core

import (
	"github.com/aretw0/introspection"
)

// RepositoryState exposes internal state for observability.
type RepositoryState struct {
	Containers      int    `json:"containers"`
	Items           int    `json:"items"`
	NextContainerID int    `json:"next_container_id"`
	NextItemID      int    `json:"next_item_id"`
	Saves           int    `json:"saves"`
	StoreType       string `json:"store_type"`
}

// State implements introspection.Introspectable.
func (r *Repository) State() any {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items := 0
	for _, c := range r.containers {
		items += len(c.Items)
	}

	storeType := "store"
	if comp, ok := r.store.(introspection.Component); ok {
		storeType = comp.ComponentType()
	}

	return RepositoryState{
		Containers:      len(r.containers),
		Items:           items,
		NextContainerID: r.seq.Peek(KindContainer),
		NextItemID:      r.seq.Peek(KindItem),
		Saves:           r.saves,
		StoreType:       storeType,
	}
}

// ComponentType implements introspection.Component.
func (r *Repository) ComponentType() string {
	return "repository"
}

// ServiceState exposes the selection and editor state.
type ServiceState struct {
	Selection       string       `json:"selection"`
	ActiveItem      int          `json:"active_item,omitempty"`
	ActiveContainer int          `json:"active_container,omitempty"`
	EditorStatus    EditorStatus `json:"editor_status"`
	AutosavePending bool         `json:"autosave_pending"`
}

// State implements introspection.Introspectable.
func (s *Service) State() any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ServiceState{
		Selection:       s.sel.State().String(),
		ActiveItem:      s.sel.ActiveItem(),
		ActiveContainer: s.sel.ActiveContainer(),
		EditorStatus:    s.editor.Status(),
		AutosavePending: s.editor.Pending(),
	}
}

// ComponentType implements introspection.Component.
func (s *Service) ComponentType() string {
	return "service"
}

var _ introspection.Introspectable = (*Repository)(nil)
var _ introspection.Component = (*Repository)(nil)
var _ introspection.Introspectable = (*Service)(nil)
var _ introspection.Component = (*Service)(nil)
