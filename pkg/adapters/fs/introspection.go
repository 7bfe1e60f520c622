package fs

import (
	"github.com/aretw0/introspection"
)

// StoreState exposes internal state for observability.
type StoreState struct {
	Path          string `json:"path"`
	Format        string `json:"format"`
	Collection    string `json:"collection"`
	ReadOnly      bool   `json:"read_only"`
	Locked        bool   `json:"locked"`
	Saves         int    `json:"saves"`
	WatcherActive bool   `json:"watcher_active"`
	LastBackup    string `json:"last_backup,omitempty"`
}

// State implements introspection.Introspectable.
func (s *Store) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return StoreState{
		Path:          s.path,
		Format:        s.config.Format,
		Collection:    s.config.Collection,
		ReadOnly:      s.config.ReadOnly,
		Locked:        s.locked,
		Saves:         s.saves,
		WatcherActive: s.watcherActive,
		LastBackup:    s.lastBackup,
	}
}

// ComponentType implements introspection.Component.
func (s *Store) ComponentType() string {
	return "fs"
}

var _ introspection.Introspectable = (*Store)(nil)
var _ introspection.Component = (*Store)(nil)

func (s *Store) setWatcherActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watcherActive = active
}
