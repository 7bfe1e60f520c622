package route_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/folio/pkg/core"
	"github.com/aretw0/folio/pkg/route"
)

func TestDefault(t *testing.T) {
	r := route.Default()

	tests := []struct {
		path string
		want core.ContainerType
		ok   bool
	}{
		{"/shopping", core.TypeShopping, true},
		{"shopping/2026/03", core.TypeShopping, true},
		{"/todo", core.TypeTodo, true},
		{"/todos/today/", core.TypeTodo, true},
		{"/memos", core.TypeMemo, true},
		{"/calendar", "", false},
		{"/shoppingcart", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, ok := r.Resolve(tt.path)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNew(t *testing.T) {
	r, err := route.New(route.Rule{Pattern: "/expenses/**", Type: "expenses"})
	require.NoError(t, err)
	got, ok := r.Resolve("/expenses/q1")
	require.True(t, ok)
	assert.Equal(t, core.ContainerType("expenses"), got)

	_, err = route.New(route.Rule{Pattern: "[unclosed", Type: "x"})
	assert.Error(t, err)
}
