package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// View is the display snapshot handed to the tree renderer after every change.
type View struct {
	Containers        []Container
	Previews          map[int]string // item id -> preview line
	ActiveItemID      int
	ActiveContainerID int
	Status            EditorStatus
}

// RenderFunc receives a fresh View after every mutation.
// It runs while the Service is locked and must not call back into it.
type RenderFunc func(View)

// ServiceConfig holds the collaborators of a Service.
type ServiceConfig struct {
	Repository    *Repository
	Scheduler     Scheduler
	AutosaveDelay time.Duration
	Render        RenderFunc
	Logger        *slog.Logger
}

// Service is the single entry point for user intents. It keeps the repository,
// the selection and the editor consistent and serializes intents with autosave
// timer callbacks, so the domain behaves as a single-threaded event loop.
type Service struct {
	mu     sync.Mutex
	repo   *Repository
	sel    *Selection
	editor *Editor
	render RenderFunc
	logger *slog.Logger
}

// NewService wires a Service around a loaded Repository.
func NewService(cfg ServiceConfig) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Service{
		repo:   cfg.Repository,
		sel:    NewSelection(cfg.Repository),
		render: cfg.Render,
		logger: logger,
	}
	s.editor = NewEditor(EditorConfig{
		Repo:      cfg.Repository,
		Scheduler: cfg.Scheduler,
		Delay:     cfg.AutosaveDelay,
		Dispatch: func(fn func()) {
			s.mu.Lock()
			defer s.mu.Unlock()
			fn()
		},
		OnAutosave: s.onAutosave,
	})
	return s
}

func (s *Service) onAutosave(it Item, err error) {
	if err != nil {
		s.logger.Warn("autosave failed", "item", s.editor.ItemID(), "error", err)
		if errors.Is(err, ErrNotFound) {
			s.resyncLocked()
		}
		return
	}
	s.logger.Debug("autosaved", "item", it.ID)
	s.renderLocked()
}

// SetRender replaces the render callback.
func (s *Service) SetRender(fn RenderFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.render = fn
}

func (s *Service) viewLocked() View {
	containers := s.repo.Containers()
	previews := make(map[int]string)
	for _, c := range containers {
		typ := s.repo.Registry().Lookup(c.Type)
		for _, it := range c.Items {
			previews[it.ID] = typ.Preview(it)
		}
	}
	return View{
		Containers:        containers,
		Previews:          previews,
		ActiveItemID:      s.sel.ActiveItem(),
		ActiveContainerID: s.sel.ActiveContainer(),
		Status:            s.editor.Status(),
	}
}

func (s *Service) renderLocked() {
	if s.render != nil {
		s.render(s.viewLocked())
	}
}

// resyncLocked repairs the selection after a stale reference and reloads the editor.
func (s *Service) resyncLocked() {
	if !s.sel.Reconcile() {
		return
	}
	s.loadActiveLocked()
}

func (s *Service) loadActiveLocked() {
	if it, ok := s.repo.Item(s.sel.ActiveItem()); ok {
		s.editor.Load(it)
		return
	}
	s.editor.Unload()
}

// flushPendingLocked saves unsaved edits before the editor switches away.
// When the edited item no longer exists its buffers are discarded and nil is
// returned. Any other error means the buffers are still dirty and the switch
// must not happen.
func (s *Service) flushPendingLocked(ctx context.Context) error {
	_, _, err := s.editor.FlushPending(ctx)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound):
		s.logger.Warn("edited item vanished, discarding buffers", "item", s.editor.ItemID(), "error", err)
		s.editor.Discard()
		s.sel.Reconcile()
		return nil
	default:
		s.logger.Warn("failed to save pending edits", "item", s.editor.ItemID(), "error", err)
		s.renderLocked()
		return fmt.Errorf("failed to save pending edits: %w", err)
	}
}

func (s *Service) notFound(err error, attrs ...any) error {
	s.logger.Warn("stale reference", append(attrs, "error", err)...)
	s.resyncLocked()
	s.renderLocked()
	return err
}

// View returns the current display snapshot.
func (s *Service) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

// Repository exposes the underlying repository for read-only queries.
func (s *Service) Repository() *Repository { return s.repo }

// SelectionState reports whether an item is being edited.
func (s *Service) SelectionState() SelectionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sel.State()
}

// ActiveItem returns the active item id, or 0.
func (s *Service) ActiveItem() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sel.ActiveItem()
}

// ActiveContainer returns the container in container view, or 0.
func (s *Service) ActiveContainer() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sel.ActiveContainer()
}

// Buffer returns the editor buffers and status.
func (s *Service) Buffer() (title, content string, status EditorStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editor.Title(), s.editor.Content(), s.editor.Status()
}

// CharCount returns the number of characters in the content buffer.
func (s *Service) CharCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editor.CharCount()
}

// OnSelectItem makes id the active item. Unsaved edits of the previous item are
// saved first; if that save fails the previous item stays active.
func (s *Service) OnSelectItem(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.repo.Item(id); !ok {
		return s.notFound(fmt.Errorf("item %d: %w", id, ErrNotFound), "intent", "select_item", "id", id)
	}
	if err := s.flushPendingLocked(ctx); err != nil {
		return err
	}

	it, ok := s.sel.Select(id)
	if !ok {
		return s.notFound(fmt.Errorf("item %d: %w", id, ErrNotFound), "intent", "select_item", "id", id)
	}
	s.editor.Load(it)
	s.renderLocked()
	return nil
}

// OnSelectContainer opens the container view of a structured container.
// Selecting a free-form container toggles its expansion instead.
func (s *Service) OnSelectContainer(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.repo.Container(id)
	if !ok {
		return s.notFound(fmt.Errorf("container %d: %w", id, ErrNotFound), "intent", "select_container", "id", id)
	}
	if c.Config.IsZero() {
		if _, err := s.repo.ToggleExpanded(ctx, id); err != nil {
			return err
		}
		s.renderLocked()
		return nil
	}
	s.sel.SelectContainer(id)
	s.renderLocked()
	return nil
}

// SelectContainerByType opens the container view of the first container of type t.
func (s *Service) SelectContainerByType(ctx context.Context, t ContainerType) (Container, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.repo.FindContainerByType(t)
	if !ok {
		return Container{}, false
	}
	s.sel.SelectContainer(c.ID)
	s.renderLocked()
	return c, true
}

// LeaveContainer exits the container view.
func (s *Service) LeaveContainer() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sel.LeaveContainer()
	s.renderLocked()
}

// OnCreateContainer creates a container of type t.
func (s *Service) OnCreateContainer(ctx context.Context, name string, t ContainerType) (Container, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.repo.CreateContainer(ctx, name, t)
	if err != nil {
		return Container{}, err
	}
	s.renderLocked()
	return c, nil
}

// OnRenameContainer renames a container.
func (s *Service) OnRenameContainer(ctx context.Context, id int, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.RenameContainer(ctx, id, name); err != nil {
		if errors.Is(err, ErrNotFound) {
			return s.notFound(err, "intent", "rename_container", "id", id)
		}
		return err
	}
	s.renderLocked()
	return nil
}

// OnCreateItem creates an item (see Repository.CreateItem) and makes it active.
func (s *Service) OnCreateItem(ctx context.Context, containerID int) (Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.flushPendingLocked(ctx); err != nil {
		return Item{}, err
	}
	it, err := s.repo.CreateItem(ctx, containerID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Item{}, s.notFound(err, "intent", "create_item", "container", containerID)
		}
		return Item{}, err
	}
	s.sel.Select(it.ID)
	s.editor.Load(it)
	s.renderLocked()
	return it, nil
}

// OnDeleteContainer deletes a container and its items. When the active item
// belonged to it, the selection falls back to the first remaining item.
func (s *Service) OnDeleteContainer(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	active, hasActive := s.repo.Item(s.sel.ActiveItem())
	ownsActive := hasActive && active.ContainerID == id

	removed, err := s.repo.DeleteContainer(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return s.notFound(err, "intent", "delete_container", "id", id)
		}
		return err
	}
	if ownsActive {
		s.editor.Discard()
		s.sel.Fallback()
		s.loadActiveLocked()
	}
	s.sel.Reconcile()
	s.logger.Info("container deleted", "id", id, "name", removed.Name, "items", len(removed.Items))
	s.renderLocked()
	return nil
}

// OnDeleteItem deletes an item. Deleting the active item moves the selection
// to the first remaining item, or to Empty.
func (s *Service) OnDeleteItem(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	wasActive := s.sel.ActiveItem() == id
	if _, err := s.repo.DeleteItem(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return s.notFound(err, "intent", "delete_item", "id", id)
		}
		return err
	}
	if wasActive {
		s.editor.Discard()
		s.sel.Fallback()
		s.loadActiveLocked()
	}
	s.renderLocked()
	return nil
}

// DeleteActive deletes the active item. With no active item it is a no-op.
func (s *Service) DeleteActive(ctx context.Context) error {
	id := s.ActiveItem()
	if id == 0 {
		return nil
	}
	return s.OnDeleteItem(ctx, id)
}

// OnToggleExpand flips a container's expanded flag.
func (s *Service) OnToggleExpand(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.repo.ToggleExpanded(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return s.notFound(err, "intent", "toggle_expand", "id", id)
		}
		return err
	}
	s.renderLocked()
	return nil
}

// EditTitle updates the title buffer of the active item.
func (s *Service) EditTitle(title string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editor.SetTitle(title)
}

// EditContent updates the content buffer of the active item.
func (s *Service) EditContent(content string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editor.SetContent(content)
}

// Save flushes the editor immediately (save button or global shortcut).
// It reports false when no item is active.
func (s *Service) Save(ctx context.Context) (Item, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, saved, err := s.editor.Flush(ctx)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Item{}, false, s.notFound(err, "intent", "save", "id", s.editor.ItemID())
		}
		return Item{}, false, err
	}
	if saved {
		s.renderLocked()
	}
	return it, saved, nil
}

// QuickAdd creates a structured entry in a container from raw field input.
// Invalid input is rejected before anything is written. The editor is not involved.
func (s *Service) QuickAdd(ctx context.Context, containerID int, raw map[string]string) (Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.repo.Container(containerID)
	if !ok {
		return Item{}, s.notFound(fmt.Errorf("container %d: %w", containerID, ErrNotFound), "intent", "quick_add", "id", containerID)
	}
	data, err := c.Config.ParseFields(raw)
	if err != nil {
		s.logger.Info("entry rejected", "container", containerID, "error", err)
		return Item{}, err
	}
	it, err := s.repo.CreateEntry(ctx, containerID, data)
	if err != nil {
		if errors.Is(err, ErrValidation) {
			s.logger.Info("entry rejected", "container", containerID, "error", err)
		}
		return Item{}, err
	}
	s.renderLocked()
	return it, nil
}

// QuickEdit updates structured fields of an item from raw field input.
func (s *Service) QuickEdit(ctx context.Context, itemID int, raw map[string]string) (Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.repo.Item(itemID)
	if !ok {
		return Item{}, s.notFound(fmt.Errorf("item %d: %w", itemID, ErrNotFound), "intent", "quick_edit", "id", itemID)
	}
	c, _ := s.repo.Container(it.ContainerID)
	data, err := c.Config.ParseFields(raw)
	if err != nil {
		s.logger.Info("edit rejected", "item", itemID, "error", err)
		return Item{}, err
	}
	updated, err := s.repo.UpdateItem(ctx, itemID, Patch{Data: data})
	if err != nil {
		return Item{}, err
	}
	s.renderLocked()
	return updated, nil
}

// Total aggregates a container (e.g. the sum of a ledger).
func (s *Service) Total(containerID int) (float64, error) {
	return s.repo.Total(containerID)
}

// Watch reports changes other writers make to the persisted collection.
// It returns errors.ErrUnsupported when the store cannot be watched.
func (s *Service) Watch(ctx context.Context) (<-chan Event, error) {
	w, ok := s.repo.Store().(Watchable)
	if !ok {
		return nil, fmt.Errorf("store cannot be watched: %w", errors.ErrUnsupported)
	}
	return w.Watch(ctx)
}

// Reload replaces the in-memory collection with the persisted one, e.g. after
// a Watch event. Unsaved editor buffers are kept and win on the next save.
func (s *Service) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.Load(ctx); err != nil {
		return err
	}
	changed := s.sel.Reconcile()
	if changed || !s.editor.Dirty() {
		s.loadActiveLocked()
	}
	s.renderLocked()
	return nil
}

// Close saves pending edits, stops the autosave timer and releases the store.
func (s *Service) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, _, err := s.editor.FlushPending(ctx)
	s.editor.Cancel()
	return errors.Join(err, s.repo.Close())
}
