package core

import (
	"context"
	"time"
	"unicode/utf8"
)

const (
	// DefaultAutosaveDelay is the debounce window between the last edit and the implicit save.
	DefaultAutosaveDelay = 3 * time.Second
	// UntitledTitle replaces an empty title on save.
	UntitledTitle = "Untitled memo"
)

// Timer is a scheduled callback that can be cancelled.
type Timer interface {
	Stop() bool
}

// Scheduler runs a callback once after a delay.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type systemScheduler struct{}

func (systemScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// SystemScheduler returns a Scheduler backed by time.AfterFunc.
func SystemScheduler() Scheduler { return systemScheduler{} }

// EditorStatus is the save status shown next to the editor.
type EditorStatus string

const (
	StatusReady   EditorStatus = "ready"
	StatusSaved   EditorStatus = "saved"
	StatusUnsaved EditorStatus = "unsaved"
)

// ItemUpdater is the part of Repository the editor writes through.
type ItemUpdater interface {
	UpdateItem(ctx context.Context, id int, p Patch) (Item, error)
}

// EditorConfig holds the collaborators of an Editor.
type EditorConfig struct {
	Repo      ItemUpdater
	Scheduler Scheduler
	Delay     time.Duration
	// Dispatch runs timer callbacks. Service uses it to serialize autosaves
	// with user intents. Defaults to calling the function directly.
	Dispatch func(func())
	// OnAutosave is called after a timer-driven save attempt, inside Dispatch.
	OnAutosave func(it Item, err error)
}

// Editor buffers the title and content of the active item and saves them
// on explicit flush or after the debounce window.
// It is not safe for concurrent use; all calls must be serialized.
type Editor struct {
	cfg EditorConfig

	itemID  int
	title   string
	content string
	status  EditorStatus
	dirty   bool

	timer Timer
	gen   uint64
}

// NewEditor creates an Editor with no active item.
func NewEditor(cfg EditorConfig) *Editor {
	if cfg.Scheduler == nil {
		cfg.Scheduler = SystemScheduler()
	}
	if cfg.Delay <= 0 {
		cfg.Delay = DefaultAutosaveDelay
	}
	if cfg.Dispatch == nil {
		cfg.Dispatch = func(fn func()) { fn() }
	}
	return &Editor{cfg: cfg, status: StatusReady}
}

// Load mirrors an item into the buffers. Any pending timer is cancelled;
// callers flush first when the previous buffer must be kept.
func (e *Editor) Load(it Item) {
	e.Cancel()
	e.itemID = it.ID
	e.title = it.Title
	e.content = it.Content
	e.dirty = false
	e.status = StatusSaved
}

// Unload empties the editor.
func (e *Editor) Unload() {
	e.Cancel()
	e.itemID = 0
	e.title = ""
	e.content = ""
	e.dirty = false
	e.status = StatusReady
}

// SetTitle replaces the title buffer and restarts the debounce timer.
func (e *Editor) SetTitle(title string) bool {
	if e.itemID == 0 {
		return false
	}
	e.title = title
	e.touch()
	return true
}

// SetContent replaces the content buffer and restarts the debounce timer.
func (e *Editor) SetContent(content string) bool {
	if e.itemID == 0 {
		return false
	}
	e.content = content
	e.touch()
	return true
}

func (e *Editor) touch() {
	e.dirty = true
	e.status = StatusUnsaved
	e.Cancel()
	e.gen++
	gen := e.gen
	e.timer = e.cfg.Scheduler.AfterFunc(e.cfg.Delay, func() {
		e.cfg.Dispatch(func() { e.fire(gen) })
	})
}

func (e *Editor) fire(gen uint64) {
	// A flush, reload or newer edit since scheduling makes this fire stale.
	if gen != e.gen || e.timer == nil {
		return
	}
	e.timer = nil
	it, saved, err := e.save(context.Background())
	if e.cfg.OnAutosave != nil && (saved || err != nil) {
		e.cfg.OnAutosave(it, err)
	}
}

// Cancel stops a pending autosave without saving.
func (e *Editor) Cancel() {
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	e.gen++
}

// Discard drops the buffers of an item that no longer exists.
func (e *Editor) Discard() {
	e.Unload()
}

// Flush cancels any pending autosave and saves immediately.
// With no active item it is a no-op and reports false.
func (e *Editor) Flush(ctx context.Context) (Item, bool, error) {
	e.Cancel()
	return e.save(ctx)
}

// FlushPending saves only when the buffers hold unsaved edits.
func (e *Editor) FlushPending(ctx context.Context) (Item, bool, error) {
	if !e.dirty {
		e.Cancel()
		return Item{}, false, nil
	}
	return e.Flush(ctx)
}

func (e *Editor) save(ctx context.Context) (Item, bool, error) {
	if e.itemID == 0 {
		return Item{}, false, nil
	}
	title := e.title
	if title == "" {
		title = UntitledTitle
	}
	content := e.content

	it, err := e.cfg.Repo.UpdateItem(ctx, e.itemID, Patch{Title: &title, Content: &content})
	if err != nil {
		return Item{}, false, err
	}
	e.title = it.Title
	e.content = it.Content
	e.dirty = false
	e.status = StatusSaved
	return it, true, nil
}

// ItemID returns the item being edited, or 0.
func (e *Editor) ItemID() int { return e.itemID }

// Title returns the title buffer.
func (e *Editor) Title() string { return e.title }

// Content returns the content buffer.
func (e *Editor) Content() string { return e.content }

// Status returns the save status.
func (e *Editor) Status() EditorStatus { return e.status }

// Dirty reports whether the buffers hold unsaved edits.
func (e *Editor) Dirty() bool { return e.dirty }

// Pending reports whether an autosave is scheduled.
func (e *Editor) Pending() bool { return e.timer != nil }

// CharCount returns the number of characters in the content buffer.
func (e *Editor) CharCount() int { return utf8.RuneCountInString(e.content) }
