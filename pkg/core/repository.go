package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

const (
	// DefaultContainerName names the container seeded into an empty store.
	DefaultContainerName = "📝 Memos"
	// NewContainerName is used when a container is created without a name.
	NewContainerName = "New folder"
	// NewItemTitle is the title of a freshly created free-form item.
	NewItemTitle = "New memo"
)

// Titled is implemented by variants that want a different title for new items.
type Titled interface {
	DefaultTitle() string
}

// RepositoryConfig holds the collaborators of a Repository.
type RepositoryConfig struct {
	Store    Store
	Registry TypeRegistry
	Logger   *slog.Logger
	// Now overrides the clock (tests). Defaults to time.Now.
	Now func() time.Time
}

// Repository owns the in-memory container collection.
// Every mutation is persisted as a full snapshot before it becomes visible;
// a failed write leaves the collection as it was.
type Repository struct {
	mu         sync.RWMutex
	store      Store
	registry   TypeRegistry
	logger     *slog.Logger
	now        func() time.Time
	seq        *Sequence
	containers []Container
	loaded     bool
	saves      int
}

// NewRepository creates a Repository. Load must be called before use.
func NewRepository(cfg RepositoryConfig) *Repository {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Repository{
		store:    cfg.Store,
		registry: cfg.Registry,
		logger:   logger,
		now:      now,
		seq:      NewSequence(),
	}
}

// Load reads the collection from the store and seeds the id sequence.
// An empty store gets a default container. Corrupt data is returned as an
// error wrapping ErrCorruptState and the repository stays unusable.
// Loading again (a reload) only ever raises the id counters.
func (r *Repository) Load(ctx context.Context) error {
	containers, err := r.store.Load(ctx)
	switch {
	case errors.Is(err, ErrNotFound):
		r.mu.Lock()
		reload := r.loaded
		r.containers = nil
		r.seedLocked(nil, reload)
		r.loaded = true
		err = r.commitLocked(ctx, func() error {
			r.appendDefaultLocked()
			return nil
		})
		if errors.Is(err, ErrReadOnly) {
			// Nothing can be written; show the default container without persisting it.
			if !reload {
				r.seq.Seed(nil)
			}
			r.appendDefaultLocked()
			err = nil
		}
		r.mu.Unlock()
		if err != nil {
			return err
		}
		r.logger.Info("initialized empty collection", "container", DefaultContainerName)
		return nil
	case err != nil:
		return err
	}

	r.mu.Lock()
	r.containers = r.normalize(containers)
	r.seedLocked(r.containers, r.loaded)
	r.loaded = true
	r.mu.Unlock()

	r.logger.Debug("collection loaded",
		"containers", len(containers),
		"next_container_id", r.seq.Peek(KindContainer),
		"next_item_id", r.seq.Peek(KindItem))
	return nil
}

func (r *Repository) seedLocked(containers []Container, reload bool) {
	if reload {
		r.seq.Advance(containers)
		return
	}
	r.seq.Seed(containers)
}

// Reset discards the persisted collection (moving it aside when the store supports it)
// and starts over with a default container.
func (r *Repository) Reset(ctx context.Context) (string, error) {
	var backup string
	if rs, ok := r.store.(Resetter); ok {
		b, err := rs.Reset(ctx)
		if err != nil {
			return "", fmt.Errorf("failed to reset store: %w", err)
		}
		backup = b
	}

	r.mu.Lock()
	r.containers = nil
	r.seq.Seed(nil)
	r.loaded = true
	err := r.commitLocked(ctx, func() error {
		r.appendDefaultLocked()
		return nil
	})
	r.mu.Unlock()
	if err != nil {
		return backup, err
	}
	r.logger.Warn("collection reset", "backup", backup)
	return backup, nil
}

// normalize migrates legacy fields and fills defaults missing from older documents.
func (r *Repository) normalize(containers []Container) []Container {
	for i := range containers {
		c := &containers[i]
		if len(c.Items) == 0 && len(c.LegacyMemos) > 0 {
			c.Items = c.LegacyMemos
		}
		c.LegacyMemos = nil
		if c.Items == nil {
			c.Items = []Item{}
		}
		if c.Config.IsZero() {
			c.Config = r.registry.Lookup(c.Type).Config()
		}
		for j := range c.Items {
			it := &c.Items[j]
			if it.ContainerID == 0 && it.LegacyFolderID != 0 {
				it.ContainerID = it.LegacyFolderID
			}
			it.LegacyFolderID = 0
			if it.ContainerID != c.ID {
				r.logger.Debug("item container reference repaired", "item", it.ID, "from", it.ContainerID, "to", c.ID)
				it.ContainerID = c.ID
			}
		}
	}
	return containers
}

// commitLocked runs fn and persists the result. If fn or the write fails,
// the collection is restored. Counters are never rolled back so ids stay unique.
func (r *Repository) commitLocked(ctx context.Context, fn func() error) error {
	if !r.loaded {
		return errors.New("repository not loaded")
	}
	prev := cloneContainers(r.containers)
	if err := fn(); err != nil {
		r.containers = prev
		return err
	}
	if err := r.store.Save(ctx, r.containers); err != nil {
		r.containers = prev
		return fmt.Errorf("failed to persist collection: %w", err)
	}
	r.saves++
	return nil
}

func (r *Repository) appendDefaultLocked() *Container {
	typ := r.registry.Lookup(TypeMemo)
	r.containers = append(r.containers, Container{
		ID:        r.seq.Next(KindContainer),
		Name:      DefaultContainerName,
		Type:      typ.Type(),
		Items:     []Item{},
		Expanded:  true,
		Config:    typ.Config(),
		CreatedAt: r.now(),
	})
	return &r.containers[len(r.containers)-1]
}

func (r *Repository) containerIndexLocked(id int) int {
	for i := range r.containers {
		if r.containers[i].ID == id {
			return i
		}
	}
	return -1
}

func (r *Repository) itemIndexLocked(id int) (int, int) {
	for ci := range r.containers {
		for ii := range r.containers[ci].Items {
			if r.containers[ci].Items[ii].ID == id {
				return ci, ii
			}
		}
	}
	return -1, -1
}

// stamp returns a timestamp strictly after prev.
func (r *Repository) stamp(prev time.Time) time.Time {
	now := r.now()
	if !now.After(prev) {
		now = prev.Add(time.Millisecond)
	}
	return now
}

// CreateContainer appends a new, expanded, empty container of the given type.
func (r *Repository) CreateContainer(ctx context.Context, name string, t ContainerType) (Container, error) {
	if name == "" {
		name = NewContainerName
	}
	typ := r.registry.Lookup(t)
	if t == "" {
		t = typ.Type()
	}

	var created Container
	r.mu.Lock()
	err := r.commitLocked(ctx, func() error {
		c := Container{
			ID:        r.seq.Next(KindContainer),
			Name:      name,
			Type:      t,
			Items:     []Item{},
			Expanded:  true,
			Config:    typ.Config(),
			CreatedAt: r.now(),
		}
		r.containers = append(r.containers, c)
		created = c.Clone()
		return nil
	})
	r.mu.Unlock()
	if err != nil {
		return Container{}, err
	}
	r.logger.Debug("container created", "id", created.ID, "type", created.Type)
	return created, nil
}

// RenameContainer changes a container's display name.
func (r *Repository) RenameContainer(ctx context.Context, id int, name string) error {
	r.mu.Lock()
	err := r.commitLocked(ctx, func() error {
		idx := r.containerIndexLocked(id)
		if idx < 0 {
			return fmt.Errorf("container %d: %w", id, ErrNotFound)
		}
		if name == "" {
			name = NewContainerName
		}
		r.containers[idx].Name = name
		return nil
	})
	r.mu.Unlock()
	if err != nil {
		return err
	}
	return nil
}

// DeleteContainer removes a container together with all of its items.
// The removed container is returned so callers can re-evaluate selection.
func (r *Repository) DeleteContainer(ctx context.Context, id int) (Container, error) {
	var removed Container
	r.mu.Lock()
	err := r.commitLocked(ctx, func() error {
		idx := r.containerIndexLocked(id)
		if idx < 0 {
			return fmt.Errorf("container %d: %w", id, ErrNotFound)
		}
		removed = r.containers[idx].Clone()
		r.containers = append(r.containers[:idx], r.containers[idx+1:]...)
		return nil
	})
	r.mu.Unlock()
	if err != nil {
		return Container{}, err
	}
	r.logger.Debug("container deleted", "id", id, "items", len(removed.Items))
	return removed, nil
}

// ToggleExpanded flips the presentational expanded flag and returns its new value.
func (r *Repository) ToggleExpanded(ctx context.Context, id int) (bool, error) {
	var expanded bool
	r.mu.Lock()
	err := r.commitLocked(ctx, func() error {
		idx := r.containerIndexLocked(id)
		if idx < 0 {
			return fmt.Errorf("container %d: %w", id, ErrNotFound)
		}
		r.containers[idx].Expanded = !r.containers[idx].Expanded
		expanded = r.containers[idx].Expanded
		return nil
	})
	r.mu.Unlock()
	if err != nil {
		return false, err
	}
	return expanded, nil
}

// CreateItem prepends a new item to the container with the given id.
// A zero id targets the first container; with no containers at all a default one is created first.
func (r *Repository) CreateItem(ctx context.Context, containerID int) (Item, error) {
	return r.createItem(ctx, containerID, nil)
}

// CreateEntry prepends a structured item whose data is the variant default overlaid with data.
// The merged data must satisfy the container config; otherwise nothing changes.
func (r *Repository) CreateEntry(ctx context.Context, containerID int, data Data) (Item, error) {
	if containerID == 0 {
		return Item{}, fmt.Errorf("container id is required for entries: %w", ErrNotFound)
	}
	return r.createItem(ctx, containerID, data)
}

func (r *Repository) createItem(ctx context.Context, containerID int, overlay Data) (Item, error) {
	var created Item
	r.mu.Lock()
	err := r.commitLocked(ctx, func() error {
		var c *Container
		switch {
		case containerID != 0:
			idx := r.containerIndexLocked(containerID)
			if idx < 0 {
				return fmt.Errorf("container %d: %w", containerID, ErrNotFound)
			}
			c = &r.containers[idx]
		case len(r.containers) > 0:
			c = &r.containers[0]
		default:
			c = r.appendDefaultLocked()
		}

		typ := r.registry.Lookup(c.Type)
		now := r.now()
		content, data := typ.NewItem(now)
		if overlay != nil {
			if data == nil {
				data = Data{}
			}
			for k, v := range overlay {
				data[k] = v
			}
			if err := c.Config.Validate(data); err != nil {
				return err
			}
		}
		title := NewItemTitle
		if t, ok := typ.(Titled); ok {
			title = t.DefaultTitle()
		}

		it := Item{
			ID:          r.seq.Next(KindItem),
			ContainerID: c.ID,
			Title:       title,
			Content:     content,
			Data:        data,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		c.Items = append([]Item{it}, c.Items...)
		c.Expanded = true
		created = it.Clone()
		return nil
	})
	r.mu.Unlock()
	if err != nil {
		return Item{}, err
	}
	r.logger.Debug("item created", "id", created.ID, "container", created.ContainerID)
	return created, nil
}

// UpdateItem applies a patch and stamps UpdatedAt.
// Data keys in the patch overwrite existing keys; other keys are kept and
// are not re-validated.
func (r *Repository) UpdateItem(ctx context.Context, id int, p Patch) (Item, error) {
	var updated Item
	r.mu.Lock()
	err := r.commitLocked(ctx, func() error {
		ci, ii := r.itemIndexLocked(id)
		if ci < 0 {
			return fmt.Errorf("item %d: %w", id, ErrNotFound)
		}
		it := &r.containers[ci].Items[ii]
		if p.Title != nil {
			it.Title = *p.Title
		}
		if p.Content != nil {
			it.Content = *p.Content
		}
		if p.Data != nil {
			if err := r.containers[ci].Config.ValidatePatch(p.Data); err != nil {
				return err
			}
			merged := make(Data, len(it.Data)+len(p.Data))
			for k, v := range it.Data {
				merged[k] = v
			}
			for k, v := range p.Data {
				merged[k] = v
			}
			it.Data = merged
		}
		it.UpdatedAt = r.stamp(it.UpdatedAt)
		updated = it.Clone()
		return nil
	})
	r.mu.Unlock()
	if err != nil {
		return Item{}, err
	}
	return updated, nil
}

// DeleteItem removes an item from its container and returns it.
func (r *Repository) DeleteItem(ctx context.Context, id int) (Item, error) {
	var removed Item
	r.mu.Lock()
	err := r.commitLocked(ctx, func() error {
		ci, ii := r.itemIndexLocked(id)
		if ci < 0 {
			return fmt.Errorf("item %d: %w", id, ErrNotFound)
		}
		c := &r.containers[ci]
		removed = c.Items[ii].Clone()
		c.Items = append(c.Items[:ii], c.Items[ii+1:]...)
		return nil
	})
	r.mu.Unlock()
	if err != nil {
		return Item{}, err
	}
	r.logger.Debug("item deleted", "id", id, "container", removed.ContainerID)
	return removed, nil
}

// Containers returns a copy of the ordered collection.
func (r *Repository) Containers() []Container {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneContainers(r.containers)
}

// Container returns the container with the given id.
func (r *Repository) Container(id int) (Container, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	idx := r.containerIndexLocked(id)
	if idx < 0 {
		return Container{}, false
	}
	return r.containers[idx].Clone(), true
}

// Item returns the item with the given id.
func (r *Repository) Item(id int) (Item, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ci, ii := r.itemIndexLocked(id)
	if ci < 0 {
		return Item{}, false
	}
	return r.containers[ci].Items[ii].Clone(), true
}

// AllItems flattens the collection in container order, then item order.
func (r *Repository) AllItems() []Item {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Item
	for _, c := range r.containers {
		for _, it := range c.Items {
			out = append(out, it.Clone())
		}
	}
	return out
}

// FirstItem returns the first item of the first non-empty container.
func (r *Repository) FirstItem() (Item, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.containers {
		if len(c.Items) > 0 {
			return c.Items[0].Clone(), true
		}
	}
	return Item{}, false
}

// FindContainerByType returns the first container declaring type t.
func (r *Repository) FindContainerByType(t ContainerType) (Container, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.containers {
		if c.Type == t {
			return c.Clone(), true
		}
	}
	return Container{}, false
}

// Preview renders an item summary using its container's variant.
func (r *Repository) Preview(it Item) string {
	r.mu.RLock()
	var t ContainerType
	if idx := r.containerIndexLocked(it.ContainerID); idx >= 0 {
		t = r.containers[idx].Type
	}
	r.mu.RUnlock()
	return r.registry.Lookup(t).Preview(it)
}

// Total aggregates a container through its variant.
// It returns errors.ErrUnsupported for variants without an aggregate.
func (r *Repository) Total(containerID int) (float64, error) {
	c, ok := r.Container(containerID)
	if !ok {
		return 0, fmt.Errorf("container %d: %w", containerID, ErrNotFound)
	}
	agg, ok := r.registry.Lookup(c.Type).(Aggregator)
	if !ok {
		return 0, fmt.Errorf("container %d (%s) has no total: %w", c.ID, c.Type, errors.ErrUnsupported)
	}
	return agg.Total(c.Items), nil
}

// Store returns the backing store.
func (r *Repository) Store() Store { return r.store }

// Close releases store resources such as locks or connections.
func (r *Repository) Close() error {
	if c, ok := r.store.(Closer); ok {
		return c.Close()
	}
	return nil
}

// Registry exposes the type registry the repository dispatches through.
func (r *Repository) Registry() TypeRegistry {
	return r.registry
}

func cloneContainers(in []Container) []Container {
	if in == nil {
		return nil
	}
	out := make([]Container, len(in))
	for i, c := range in {
		out[i] = c.Clone()
	}
	return out
}
