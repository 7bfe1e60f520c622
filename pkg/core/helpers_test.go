package core_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aretw0/folio/pkg/adapters/memory"
	"github.com/aretw0/folio/pkg/core"
	"github.com/aretw0/folio/pkg/kinds"
)

// manualScheduler runs callbacks only when the test advances its clock.
type manualScheduler struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*manualTimer
}

type manualTimer struct {
	due     time.Duration
	fn      func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	was := !t.stopped && !t.fired
	t.stopped = true
	return was
}

func (s *manualScheduler) AfterFunc(d time.Duration, f func()) core.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &manualTimer{due: s.now + d, fn: f}
	s.timers = append(s.timers, t)
	return t
}

// Advance moves the clock and runs every callback that became due, in schedule order.
func (s *manualScheduler) Advance(d time.Duration) int {
	s.mu.Lock()
	s.now += d
	var due []*manualTimer
	for _, t := range s.timers {
		if !t.stopped && !t.fired && t.due <= s.now {
			t.fired = true
			due = append(due, t)
		}
	}
	s.mu.Unlock()
	for _, t := range due {
		t.fn()
	}
	return len(due)
}

// Active counts scheduled callbacks that have neither fired nor been stopped.
func (s *manualScheduler) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// flakyStore wraps a memory store and fails saves on demand.
type flakyStore struct {
	*memory.Store
	fail bool
}

var errDiskFull = errors.New("disk full")

func (f *flakyStore) Save(ctx context.Context, c []core.Container) error {
	if f.fail {
		return errDiskFull
	}
	return f.Store.Save(ctx, c)
}

// fixedClock hands out times one second apart.
type fixedClock struct {
	t time.Time
}

func (c *fixedClock) Now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func newClock() *fixedClock {
	return &fixedClock{t: time.Date(2026, 3, 14, 9, 0, 0, 0, time.Local)}
}

func newRepo(t *testing.T, store core.Store) *core.Repository {
	t.Helper()
	repo := core.NewRepository(core.RepositoryConfig{
		Store:    store,
		Registry: kinds.Default(),
		Now:      newClock().Now,
	})
	require.NoError(t, repo.Load(context.Background()))
	return repo
}

type renderSpy struct {
	views []core.View
}

func (r *renderSpy) Render(v core.View) { r.views = append(r.views, v) }

func (r *renderSpy) Last() core.View {
	if len(r.views) == 0 {
		return core.View{}
	}
	return r.views[len(r.views)-1]
}

func newService(t *testing.T, store core.Store) (*core.Service, *manualScheduler, *renderSpy) {
	t.Helper()
	sched := &manualScheduler{}
	spy := &renderSpy{}
	svc := core.NewService(core.ServiceConfig{
		Repository:    newRepo(t, store),
		Scheduler:     sched,
		AutosaveDelay: 3 * time.Second,
		Render:        spy.Render,
	})
	return svc, sched, spy
}
