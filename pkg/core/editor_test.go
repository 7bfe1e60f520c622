package core_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/folio/pkg/adapters/memory"
	"github.com/aretw0/folio/pkg/core"
)

func newEditor(t *testing.T) (*core.Editor, *core.Repository, *memory.Store, *manualScheduler, *[]core.Item) {
	t.Helper()
	store := memory.New()
	repo := newRepo(t, store)
	sched := &manualScheduler{}
	var autosaved []core.Item
	ed := core.NewEditor(core.EditorConfig{
		Repo:      repo,
		Scheduler: sched,
		Delay:     3 * time.Second,
		OnAutosave: func(it core.Item, err error) {
			require.NoError(t, err)
			autosaved = append(autosaved, it)
		},
	})
	return ed, repo, store, sched, &autosaved
}

func TestEditor_Debounce(t *testing.T) {
	ed, repo, store, sched, autosaved := newEditor(t)
	it, err := repo.CreateItem(context.Background(), 0)
	require.NoError(t, err)
	ed.Load(it)
	assert.Equal(t, core.StatusSaved, ed.Status())
	saves := store.Saves()

	require.True(t, ed.SetContent("a"))
	assert.Equal(t, core.StatusUnsaved, ed.Status())
	assert.Equal(t, 0, sched.Advance(2*time.Second))

	require.True(t, ed.SetContent("ab"))
	assert.Equal(t, 0, sched.Advance(2*time.Second), "a newer edit restarts the window")
	assert.Equal(t, saves, store.Saves())

	assert.Equal(t, 1, sched.Advance(time.Second))
	assert.Equal(t, saves+1, store.Saves())
	assert.Equal(t, core.StatusSaved, ed.Status())
	require.Len(t, *autosaved, 1)

	got, _ := repo.Item(it.ID)
	assert.Equal(t, "ab", got.Content)
	assert.False(t, ed.Pending())
}

func TestEditor_Flush(t *testing.T) {
	ctx := context.Background()

	t.Run("Cancels Pending Autosave", func(t *testing.T) {
		ed, repo, store, sched, autosaved := newEditor(t)
		it, _ := repo.CreateItem(ctx, 0)
		ed.Load(it)

		ed.SetTitle("Plans")
		require.True(t, ed.Pending())
		saved, ok, err := ed.Flush(ctx)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "Plans", saved.Title)
		saves := store.Saves()

		assert.Equal(t, 0, sched.Advance(10*time.Second))
		assert.Equal(t, saves, store.Saves())
		assert.Empty(t, *autosaved)
	})

	t.Run("Empty Title Becomes Untitled", func(t *testing.T) {
		ed, repo, _, _, _ := newEditor(t)
		it, _ := repo.CreateItem(ctx, 0)
		ed.Load(it)

		ed.SetTitle("")
		saved, _, err := ed.Flush(ctx)
		require.NoError(t, err)
		assert.Equal(t, core.UntitledTitle, saved.Title)
		assert.Equal(t, core.UntitledTitle, ed.Title())
	})

	t.Run("Idempotent Save Moves UpdatedAt", func(t *testing.T) {
		ed, repo, _, _, _ := newEditor(t)
		it, _ := repo.CreateItem(ctx, 0)
		ed.Load(it)

		first, _, err := ed.Flush(ctx)
		require.NoError(t, err)
		second, _, err := ed.Flush(ctx)
		require.NoError(t, err)
		assert.Equal(t, first.Title, second.Title)
		assert.Equal(t, first.Content, second.Content)
		assert.True(t, second.UpdatedAt.After(first.UpdatedAt))
	})

	t.Run("No Active Item", func(t *testing.T) {
		ed, _, store, sched, _ := newEditor(t)
		saves := store.Saves()
		assert.False(t, ed.SetContent("x"))
		assert.Equal(t, 0, sched.Active())

		_, ok, err := ed.Flush(ctx)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t, saves, store.Saves())
	})

	t.Run("FlushPending Skips Clean Buffers", func(t *testing.T) {
		ed, repo, store, _, _ := newEditor(t)
		it, _ := repo.CreateItem(ctx, 0)
		ed.Load(it)
		saves := store.Saves()

		_, ok, err := ed.FlushPending(ctx)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t, saves, store.Saves())
	})
}

func TestEditor_CharCount(t *testing.T) {
	ed, repo, _, _, _ := newEditor(t)
	it, _ := repo.CreateItem(context.Background(), 0)
	ed.Load(it)
	ed.SetContent("こんにちは")
	assert.Equal(t, 5, ed.CharCount())

	ed.Unload()
	assert.Equal(t, 0, ed.CharCount())
	assert.Equal(t, core.StatusReady, ed.Status())
}
