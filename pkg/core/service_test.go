package core_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/folio/pkg/adapters/memory"
	"github.com/aretw0/folio/pkg/core"
	"github.com/aretw0/folio/pkg/kinds"
)

func TestService_Selection(t *testing.T) {
	ctx := context.Background()
	svc, _, spy := newService(t, memory.New())
	assert.Equal(t, core.StateEmpty, svc.SelectionState())

	a, err := svc.OnCreateItem(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, a.ID, svc.ActiveItem())
	assert.Equal(t, a.ID, spy.Last().ActiveItemID)

	b, err := svc.OnCreateItem(ctx, 0)
	require.NoError(t, err)

	t.Run("Switch Saves Pending Edits", func(t *testing.T) {
		require.NoError(t, svc.OnSelectItem(ctx, a.ID))
		require.True(t, svc.EditContent("draft"))
		_, _, status := svc.Buffer()
		assert.Equal(t, core.StatusUnsaved, status)

		require.NoError(t, svc.OnSelectItem(ctx, b.ID))
		got, _ := svc.Repository().Item(a.ID)
		assert.Equal(t, "draft", got.Content)

		title, content, status := svc.Buffer()
		assert.Equal(t, core.NewItemTitle, title)
		assert.Equal(t, "", content)
		assert.Equal(t, core.StatusSaved, status)
	})

	t.Run("Stale Id", func(t *testing.T) {
		err := svc.OnSelectItem(ctx, 999)
		assert.ErrorIs(t, err, core.ErrNotFound)
		assert.Equal(t, b.ID, svc.ActiveItem())
	})

	t.Run("Delete Active Falls Back", func(t *testing.T) {
		require.NoError(t, svc.OnDeleteItem(ctx, b.ID))
		assert.Equal(t, a.ID, svc.ActiveItem())
		_, content, _ := svc.Buffer()
		assert.Equal(t, "draft", content)
	})

	t.Run("Delete Last Empties", func(t *testing.T) {
		require.NoError(t, svc.DeleteActive(ctx))
		assert.Equal(t, core.StateEmpty, svc.SelectionState())
		title, content, status := svc.Buffer()
		assert.Empty(t, title)
		assert.Empty(t, content)
		assert.Equal(t, core.StatusReady, status)
		assert.False(t, svc.EditTitle("ignored"))
		assert.Equal(t, 0, spy.Last().ActiveItemID)

		require.NoError(t, svc.DeleteActive(ctx))
	})
}

func TestService_Autosave(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc, sched, spy := newService(t, store)

	it, err := svc.OnCreateItem(ctx, 0)
	require.NoError(t, err)
	svc.EditTitle("Groceries")
	svc.EditContent("eggs")
	renders := len(spy.views)

	assert.Equal(t, 1, sched.Advance(3*time.Second))
	got, _ := svc.Repository().Item(it.ID)
	assert.Equal(t, "Groceries", got.Title)
	assert.Equal(t, "eggs", got.Content)
	assert.Greater(t, len(spy.views), renders)
	assert.Equal(t, core.StatusSaved, spy.Last().Status)
	assert.Equal(t, 4, svc.CharCount())

	t.Run("Explicit Save Cancels Timer", func(t *testing.T) {
		svc.EditContent("eggs, milk")
		_, saved, err := svc.Save(ctx)
		require.NoError(t, err)
		require.True(t, saved)
		saves := store.Saves()
		assert.Equal(t, 0, sched.Advance(5*time.Second))
		assert.Equal(t, saves, store.Saves())
	})

	t.Run("Delete During Window", func(t *testing.T) {
		svc.EditContent("gone")
		require.NoError(t, svc.OnDeleteItem(ctx, it.ID))
		assert.Equal(t, 0, sched.Advance(5*time.Second))
		_, ok := svc.Repository().Item(it.ID)
		assert.False(t, ok)
	})

	t.Run("Close Flushes", func(t *testing.T) {
		other, err := svc.OnCreateItem(ctx, 0)
		require.NoError(t, err)
		svc.EditContent("last words")
		require.NoError(t, svc.Close(ctx))
		got, _ := svc.Repository().Item(other.ID)
		assert.Equal(t, "last words", got.Content)
		assert.Equal(t, 0, sched.Active())
	})
}

func TestService_Containers(t *testing.T) {
	ctx := context.Background()
	svc, _, spy := newService(t, memory.New())
	memoID := svc.Repository().Containers()[0].ID

	t.Run("Free-form Select Toggles", func(t *testing.T) {
		require.NoError(t, svc.OnSelectContainer(ctx, memoID))
		c, _ := svc.Repository().Container(memoID)
		assert.False(t, c.Expanded)
		assert.Equal(t, 0, svc.ActiveContainer())
		require.NoError(t, svc.OnToggleExpand(ctx, memoID))
		c, _ = svc.Repository().Container(memoID)
		assert.True(t, c.Expanded)
	})

	t.Run("Structured Select Opens View", func(t *testing.T) {
		shop, err := svc.OnCreateContainer(ctx, "Groceries", core.TypeShopping)
		require.NoError(t, err)
		require.NoError(t, svc.OnSelectContainer(ctx, shop.ID))
		assert.Equal(t, shop.ID, svc.ActiveContainer())
		assert.Equal(t, shop.ID, spy.Last().ActiveContainerID)
		svc.LeaveContainer()
		assert.Equal(t, 0, svc.ActiveContainer())

		c, ok := svc.SelectContainerByType(ctx, core.TypeShopping)
		require.True(t, ok)
		assert.Equal(t, shop.ID, c.ID)
	})

	t.Run("Delete Container Owning Active Item", func(t *testing.T) {
		work, err := svc.OnCreateContainer(ctx, "Work", core.TypeMemo)
		require.NoError(t, err)
		keep, err := svc.OnCreateItem(ctx, memoID)
		require.NoError(t, err)
		_, err = svc.OnCreateItem(ctx, work.ID)
		require.NoError(t, err)

		require.NoError(t, svc.OnDeleteContainer(ctx, work.ID))
		assert.Equal(t, keep.ID, svc.ActiveItem())
		_, ok := svc.Repository().Container(work.ID)
		assert.False(t, ok)
	})

	t.Run("Rename", func(t *testing.T) {
		require.NoError(t, svc.OnRenameContainer(ctx, memoID, "Inbox"))
		assert.Equal(t, "Inbox", spy.Last().Containers[0].Name)
		assert.ErrorIs(t, svc.OnRenameContainer(ctx, 404, "x"), core.ErrNotFound)
	})
}

func TestService_QuickAdd(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc, _, spy := newService(t, store)

	shop, err := svc.OnCreateContainer(ctx, "Groceries", core.TypeShopping)
	require.NoError(t, err)

	t.Run("Rejects Negative Amount", func(t *testing.T) {
		saves := store.Saves()
		_, err := svc.QuickAdd(ctx, shop.ID, map[string]string{"label": "Refund", "amount": "-5"})
		require.ErrorIs(t, err, core.ErrValidation)
		assert.Equal(t, saves, store.Saves())
	})

	t.Run("Rejects Missing Label", func(t *testing.T) {
		_, err := svc.QuickAdd(ctx, shop.ID, map[string]string{"amount": "5"})
		assert.ErrorIs(t, err, core.ErrValidation)
	})

	t.Run("Adds And Totals", func(t *testing.T) {
		_, err := svc.QuickAdd(ctx, shop.ID, map[string]string{"label": "Milk", "amount": "500"})
		require.NoError(t, err)
		it, err := svc.QuickAdd(ctx, shop.ID, map[string]string{
			"label": "Coffee", "amount": "1200", "occurredAt": "2026-03-14 09:05",
		})
		require.NoError(t, err)
		assert.Equal(t, "Coffee - 1200 (2026-03-14 09:05)", spy.Last().Previews[it.ID])
		assert.Equal(t, core.StateEmpty, svc.SelectionState(), "quick add does not select")

		total, err := svc.Total(shop.ID)
		require.NoError(t, err)
		assert.Equal(t, 1700.0, total)
	})

	t.Run("Quick Edit", func(t *testing.T) {
		first, _ := svc.Repository().FirstItem()
		_, err := svc.QuickEdit(ctx, first.ID, map[string]string{"amount": "1000"})
		require.NoError(t, err)
		total, _ := svc.Total(shop.ID)
		assert.Equal(t, 1500.0, total)

		_, err = svc.QuickEdit(ctx, first.ID, map[string]string{"colour": "red"})
		assert.ErrorIs(t, err, core.ErrValidation)
	})

	t.Run("Todo", func(t *testing.T) {
		todo, err := svc.OnCreateContainer(ctx, "Chores", core.TypeTodo)
		require.NoError(t, err)
		it, err := svc.QuickAdd(ctx, todo.ID, map[string]string{kinds.FieldTask: "Laundry", kinds.FieldPriority: "high"})
		require.NoError(t, err)
		assert.Equal(t, "⬜ [high] Laundry", spy.Last().Previews[it.ID])
	})
}

func TestService_FailedFlushKeepsEdits(t *testing.T) {
	ctx := context.Background()
	store := &flakyStore{Store: memory.New()}
	svc, _, _ := newService(t, store)

	a, err := svc.OnCreateItem(ctx, 0)
	require.NoError(t, err)
	b, err := svc.OnCreateItem(ctx, 0)
	require.NoError(t, err)
	require.NoError(t, svc.OnSelectItem(ctx, a.ID))
	require.True(t, svc.EditContent("precious"))

	store.fail = true
	err = svc.OnSelectItem(ctx, b.ID)
	require.ErrorIs(t, err, errDiskFull)
	assert.Equal(t, a.ID, svc.ActiveItem())
	_, content, status := svc.Buffer()
	assert.Equal(t, "precious", content)
	assert.Equal(t, core.StatusUnsaved, status)

	_, err = svc.OnCreateItem(ctx, 0)
	require.ErrorIs(t, err, errDiskFull)
	assert.Equal(t, a.ID, svc.ActiveItem())
	assert.Len(t, svc.Repository().AllItems(), 2)

	store.fail = false
	require.NoError(t, svc.OnSelectItem(ctx, b.ID))
	got, _ := svc.Repository().Item(a.ID)
	assert.Equal(t, "precious", got.Content)
	assert.Equal(t, b.ID, svc.ActiveItem())
}

func TestService_ReloadKeepsIdsUnique(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t, memory.New())

	a, err := svc.OnCreateItem(ctx, 0)
	require.NoError(t, err)
	b, err := svc.OnCreateItem(ctx, 0)
	require.NoError(t, err)
	require.NoError(t, svc.OnDeleteItem(ctx, b.ID))

	require.NoError(t, svc.Reload(ctx))
	assert.Equal(t, a.ID, svc.ActiveItem())

	c, err := svc.OnCreateItem(ctx, 0)
	require.NoError(t, err)
	assert.NotEqual(t, b.ID, c.ID)
	assert.Greater(t, c.ID, b.ID)
}

func TestService_QuickEditNewEntry(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newService(t, memory.New())

	shop, err := svc.OnCreateContainer(ctx, "Groceries", core.TypeShopping)
	require.NoError(t, err)
	it, err := svc.OnCreateItem(ctx, shop.ID)
	require.NoError(t, err)

	updated, err := svc.QuickEdit(ctx, it.ID, map[string]string{"amount": "500"})
	require.NoError(t, err)
	assert.Equal(t, 500.0, updated.Data[kinds.FieldAmount])
	total, err := svc.Total(shop.ID)
	require.NoError(t, err)
	assert.Equal(t, 500.0, total)

	_, err = svc.QuickEdit(ctx, it.ID, map[string]string{"label": ""})
	assert.ErrorIs(t, err, core.ErrValidation)
	_, err = svc.QuickEdit(ctx, it.ID, map[string]string{"label": "Milk"})
	require.NoError(t, err)
}
