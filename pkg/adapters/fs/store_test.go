package fs

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/folio/pkg/core"
	"github.com/aretw0/folio/pkg/kinds"
)

func newStore(t *testing.T, cfg Config) *Store {
	t.Helper()
	if cfg.Dir == "" {
		cfg.Dir = t.TempDir()
	}
	s, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, s.Initialize(context.Background()))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sample() []core.Container {
	at := time.Date(2026, 3, 14, 9, 5, 0, 0, time.UTC)
	return []core.Container{
		{ID: 1, Name: core.DefaultContainerName, Type: core.TypeMemo, Expanded: true, CreatedAt: at,
			Items: []core.Item{{ID: 2, ContainerID: 1, Title: "hello", CreatedAt: at, UpdatedAt: at}}},
		{ID: 2, Name: "Groceries", Type: core.TypeShopping, CreatedAt: at,
			Config: kinds.Ledger{Name: core.TypeShopping}.Config(),
			Items: []core.Item{{ID: 1, ContainerID: 2, Title: "New entry", CreatedAt: at, UpdatedAt: at,
				Data: core.Data{kinds.FieldLabel: "Milk", kinds.FieldAmount: 500.0, kinds.FieldOccurredAt: at.Format(time.RFC3339)}}}},
	}
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	for _, format := range []string{"json", "yaml"} {
		t.Run(format, func(t *testing.T) {
			s := newStore(t, Config{Format: format})
			assert.True(t, strings.HasSuffix(s.Path(), "folio-folders."+format))

			_, err := s.Load(ctx)
			require.ErrorIs(t, err, core.ErrNotFound)

			require.NoError(t, s.Save(ctx, sample()))
			got, err := s.Load(ctx)
			require.NoError(t, err)
			require.Len(t, got, 2)

			assert.Equal(t, "hello", got[0].Items[0].Title)
			assert.Equal(t, "", got[0].Items[0].Content)
			assert.Equal(t, 500.0, got[1].Items[0].Data[kinds.FieldAmount])
			assert.Equal(t, "2026-03-14T09:05:00Z", core.AsString(got[1].Items[0].Data[kinds.FieldOccurredAt]))
			assert.Equal(t, kinds.Ledger{Name: core.TypeShopping}.Config(), got[1].Config)
		})
	}
}

func TestStore_ContentAlwaysWritten(t *testing.T) {
	s := newStore(t, Config{})
	require.NoError(t, s.Save(context.Background(), sample()))
	raw, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"content": ""`)
}

func TestStore_Corrupt(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, Config{})
	require.NoError(t, os.WriteFile(s.Path(), []byte(`[{"id": 1, "name": `), 0644))

	_, err := s.Load(ctx)
	require.ErrorIs(t, err, core.ErrCorruptState)

	s.now = func() time.Time { return time.Unix(1700000000, 0) }
	backup, err := s.Reset(ctx)
	require.NoError(t, err)
	assert.Equal(t, s.Path()+".corrupt-1700000000", backup)
	assert.FileExists(t, backup)

	_, err = s.Load(ctx)
	assert.ErrorIs(t, err, core.ErrNotFound)

	t.Run("Empty File", func(t *testing.T) {
		require.NoError(t, os.WriteFile(s.Path(), []byte("\n"), 0644))
		_, err := s.Load(ctx)
		assert.ErrorIs(t, err, core.ErrCorruptState)
	})

	t.Run("Reset Without Slot", func(t *testing.T) {
		fresh := newStore(t, Config{})
		backup, err := fresh.Reset(ctx)
		require.NoError(t, err)
		assert.Empty(t, backup)
	})
}

func TestStore_Lock(t *testing.T) {
	dir := t.TempDir()
	first := newStore(t, Config{Dir: dir})

	second, err := New(Config{Dir: dir})
	require.NoError(t, err)
	err = second.Initialize(context.Background())
	require.ErrorIs(t, err, core.ErrLocked)

	require.NoError(t, first.Close())
	require.NoError(t, second.Initialize(context.Background()))
	require.NoError(t, second.Close())

	t.Run("Collections Lock Independently", func(t *testing.T) {
		a := newStore(t, Config{Dir: dir, Collection: core.DefaultCollection})
		b := newStore(t, Config{Dir: dir, Collection: core.StreamsCollection})
		assert.NotEqual(t, a.Path(), b.Path())
	})
}

func TestStore_ReadOnly(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	writer := newStore(t, Config{Dir: dir})
	require.NoError(t, writer.Save(ctx, sample()))

	ro := newStore(t, Config{Dir: dir, ReadOnly: true})
	got, err := ro.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	assert.ErrorIs(t, ro.Save(ctx, got), core.ErrReadOnly)
	_, err = ro.Reset(ctx)
	assert.ErrorIs(t, err, core.ErrReadOnly)

	state := ro.State().(StoreState)
	assert.True(t, state.ReadOnly)
	assert.False(t, state.Locked)
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Config{Dir: t.TempDir(), Format: "toml"})
	assert.Error(t, err)
	_, err = New(Config{Dir: t.TempDir(), Collection: "../escape"})
	assert.Error(t, err)
}

func TestStore_Repository(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	legacy := `[{"id":4,"name":"Old","expanded":true,"memos":[{"id":7,"folderId":4,"title":"t","content":"c"}]}]`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "folio-folders.json"), []byte(legacy), 0644))

	s := newStore(t, Config{Dir: dir})
	repo := core.NewRepository(core.RepositoryConfig{Store: s, Registry: kinds.Default()})
	require.NoError(t, repo.Load(ctx))

	it, err := repo.CreateItem(ctx, 4)
	require.NoError(t, err)
	assert.Equal(t, 8, it.ID)

	reloaded := core.NewRepository(core.RepositoryConfig{Store: s, Registry: kinds.Default()})
	require.NoError(t, reloaded.Load(ctx))
	assert.Len(t, reloaded.AllItems(), 2)
	assert.Equal(t, 1, s.State().(StoreState).Saves)
}

func TestStore_Watch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := newStore(t, Config{})
	require.NoError(t, s.Save(ctx, sample()))

	events, err := s.Watch(ctx)
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return s.State().(StoreState).WatcherActive
	}, 2*time.Second, 10*time.Millisecond)

	// Our own writes are not reported.
	require.NoError(t, s.Save(ctx, sample()[:1]))
	select {
	case e := <-events:
		t.Fatalf("unexpected event for own write: %v", e)
	case <-time.After(300 * time.Millisecond):
	}

	require.NoError(t, os.WriteFile(s.Path(), []byte(`[]`), 0644))
	select {
	case e := <-events:
		assert.Equal(t, core.EventModify, e.Type)
		assert.Equal(t, filepath.Base(s.Path()), e.ID)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for external modification")
	}

	cancel()
	require.Eventually(t, func() bool {
		select {
		case _, ok := <-events:
			return !ok
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)
}
