package core_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/folio/pkg/adapters/memory"
	"github.com/aretw0/folio/pkg/core"
)

func TestSelection(t *testing.T) {
	ctx := context.Background()
	repo := newRepo(t, memory.New())
	sel := core.NewSelection(repo)
	assert.Equal(t, core.StateEmpty, sel.State())

	a, err := repo.CreateItem(ctx, 0)
	require.NoError(t, err)
	b, err := repo.CreateItem(ctx, 0)
	require.NoError(t, err)

	t.Run("Select", func(t *testing.T) {
		_, ok := sel.Select(a.ID)
		require.True(t, ok)
		assert.Equal(t, core.StateEditing, sel.State())
		assert.Equal(t, a.ID, sel.ActiveItem())

		_, ok = sel.Select(999)
		assert.False(t, ok)
		assert.Equal(t, a.ID, sel.ActiveItem(), "unknown id keeps the selection")
	})

	t.Run("Container View Is Orthogonal", func(t *testing.T) {
		cid := repo.Containers()[0].ID
		_, ok := sel.SelectContainer(cid)
		require.True(t, ok)
		assert.Equal(t, cid, sel.ActiveContainer())
		assert.Equal(t, a.ID, sel.ActiveItem())
		sel.LeaveContainer()
		assert.Equal(t, 0, sel.ActiveContainer())
	})

	t.Run("Reconcile Falls Back", func(t *testing.T) {
		_, err := repo.DeleteItem(ctx, a.ID)
		require.NoError(t, err)
		assert.True(t, sel.Reconcile())
		assert.Equal(t, b.ID, sel.ActiveItem())
		assert.False(t, sel.Reconcile())
	})

	t.Run("Reconcile To Empty", func(t *testing.T) {
		_, err := repo.DeleteItem(ctx, b.ID)
		require.NoError(t, err)
		assert.True(t, sel.Reconcile())
		assert.Equal(t, core.StateEmpty, sel.State())
		assert.Equal(t, "empty", sel.State().String())
	})
}
