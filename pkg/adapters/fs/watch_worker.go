package fs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/aretw0/lifecycle/pkg/core/worker"
	"github.com/fsnotify/fsnotify"

	"github.com/aretw0/folio/pkg/core"
)

// watchQuiet coalesces the burst of events one atomic write produces.
const watchQuiet = 50 * time.Millisecond

// Watch reports changes to the slot file made by other writers.
// The channel is closed when ctx is cancelled.
func (s *Store) Watch(ctx context.Context) (<-chan core.Event, error) {
	events := make(chan core.Event)
	w := newWatchWorker(s, events)
	if err := w.Start(ctx); err != nil {
		return nil, err
	}
	return events, nil
}

type watchWorker struct {
	*worker.BaseWorker
	store   *Store
	events  chan core.Event
	watcher *fsnotify.Watcher
	cancel  context.CancelFunc
}

func newWatchWorker(store *Store, events chan core.Event) *watchWorker {
	return &watchWorker{
		BaseWorker: worker.NewBaseWorker("fs-watcher"),
		store:      store,
		events:     events,
	}
}

func (w *watchWorker) Start(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	status := w.State().Status
	if status != worker.StatusCreated && status != worker.StatusPending {
		return fmt.Errorf("watcher already started (status: %s)", status)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	// The directory, not the file: atomic writes replace the inode.
	if err := watcher.Add(filepath.Dir(w.store.path)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(w.store.path), err)
	}

	w.watcher = watcher
	w.store.setWatcherActive(true)

	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.SetStatus(worker.StatusRunning)
	return w.StartFunc(runCtx, w.run)
}

func (w *watchWorker) Stop(ctx context.Context) error {
	if w.cancel != nil {
		w.StopRequested = true
		w.cancel()
	}
	return w.BaseWorker.Stop(ctx)
}

func (w *watchWorker) State() worker.State {
	return w.ExportState(func(s *worker.State) {
		s.Metadata = map[string]string{
			worker.MetadataType: string(worker.TypeGoroutine),
			"path":              w.store.path,
		}
	})
}

func (w *watchWorker) logger() *slog.Logger { return w.store.config.Logger }

func (w *watchWorker) run(ctx context.Context) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("watcher panic: %v", recovered)
			if w.logger().Enabled(ctx, slog.LevelDebug) {
				w.logger().Error("watcher panic", "error", err, "stack", string(debug.Stack()))
			} else {
				w.logger().Error("watcher panic", "error", err)
			}
		}
	}()
	defer close(w.events)
	defer w.store.setWatcherActive(false)
	defer w.watcher.Close()

	return w.mainEventLoop(ctx)
}

// relevant filters events down to the slot file itself.
func (w *watchWorker) relevant(event fsnotify.Event) bool {
	return filepath.Clean(event.Name) == filepath.Clean(w.store.path)
}

func (w *watchWorker) mainEventLoop(ctx context.Context) error {
	quiet := time.NewTimer(watchQuiet)
	quiet.Stop()
	defer quiet.Stop()
	pending := false

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				if w.StopRequested || ctx.Err() != nil {
					return nil
				}
				return errors.New("watcher events channel closed")
			}
			if !w.relevant(event) || (event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write)) {
				continue
			}
			w.logger().Debug("event received", "name", event.Name, "op", event.Op.String())
			pending = true
			quiet.Reset(watchQuiet)

		case <-quiet.C:
			if !pending {
				continue
			}
			pending = false
			if e, ok := w.resolve(); ok {
				select {
				case w.events <- e:
				case <-ctx.Done():
					return nil
				}
			}

		case wErr, ok := <-w.watcher.Errors:
			if !ok {
				if w.StopRequested || ctx.Err() != nil {
					return nil
				}
				return errors.New("watcher errors channel closed")
			}
			w.logger().Error("fsnotify error", "error", wErr)
		}
	}
}

// resolve turns a settled burst into one event, dropping our own writes.
func (w *watchWorker) resolve() (core.Event, bool) {
	id := filepath.Base(w.store.path)
	data, err := os.ReadFile(w.store.path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if w.store.ownReset() {
			return core.Event{}, false
		}
		return core.Event{Type: core.EventDelete, ID: id, Timestamp: time.Now().Unix()}, true
	case err != nil:
		w.logger().Warn("failed to read slot after change", "path", w.store.path, "error", err)
		return core.Event{}, false
	}
	if w.store.isOwnWrite(data) {
		return core.Event{}, false
	}
	typ := core.EventModify
	if !w.store.hasSeen() {
		typ = core.EventCreate
	}
	w.store.markSeen(data)
	return core.Event{Type: typ, ID: id, Timestamp: time.Now().Unix()}, true
}
