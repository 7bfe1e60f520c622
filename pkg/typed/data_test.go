package typed_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/folio/pkg/core"
	"github.com/aretw0/folio/pkg/typed"
)

type purchase struct {
	Label  string  `json:"label"`
	Amount float64 `json:"amount"`
}

func TestDecode(t *testing.T) {
	t.Run("Numbers From Any Decoder", func(t *testing.T) {
		// YAML yields int, JSON yields float64.
		p, err := typed.Decode[purchase](core.Data{"label": "milk", "amount": 3})
		require.NoError(t, err)
		assert.Equal(t, "milk", p.Label)
		assert.Equal(t, 3.0, p.Amount)

		p, err = typed.Decode[purchase](core.Data{"label": "eggs", "amount": 2.5})
		require.NoError(t, err)
		assert.Equal(t, 2.5, p.Amount)
	})

	t.Run("Nil Data Gives Zero Value", func(t *testing.T) {
		p, err := typed.Decode[purchase](nil)
		require.NoError(t, err)
		assert.Equal(t, purchase{}, p)
	})

	t.Run("Type Mismatch", func(t *testing.T) {
		_, err := typed.Decode[purchase](core.Data{"amount": "lots"})
		assert.Error(t, err)
	})
}

func TestEncode(t *testing.T) {
	data, err := typed.Encode(purchase{Label: "bread", Amount: 1.2})
	require.NoError(t, err)
	assert.Equal(t, core.Data{"label": "bread", "amount": 1.2}, data)
}

func TestView(t *testing.T) {
	now := time.Now()
	items := []core.Item{
		{ID: 2, Data: core.Data{"label": "a", "amount": 500.0}, CreatedAt: now},
		{ID: 1, Data: core.Data{"label": "b", "amount": 1200.0}, CreatedAt: now},
	}

	entries, err := typed.View[purchase](items)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 2, entries[0].Item.ID)
	assert.Equal(t, "b", entries[1].Data.Label)

	items = append(items, core.Item{ID: 3, Data: core.Data{"amount": true}})
	_, err = typed.View[purchase](items)
	assert.ErrorContains(t, err, "item 3")
}
