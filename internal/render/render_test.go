package render

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"

	"github.com/aretw0/folio/pkg/core"
)

func plain(t *testing.T) {
	t.Helper()
	old := lipgloss.ColorProfile()
	lipgloss.SetColorProfile(termenv.Ascii)
	t.Cleanup(func() { lipgloss.SetColorProfile(old) })
}

func TestTree(t *testing.T) {
	plain(t)

	v := core.View{
		Containers: []core.Container{
			{ID: 1, Name: "📝 Memos", Expanded: true, Items: []core.Item{
				{ID: 4, Title: "Same"}, {ID: 2, Title: "Same"},
			}},
			{ID: 3, Name: "Archive", Expanded: false, Items: []core.Item{{ID: 9, Title: "hidden"}}},
		},
		Previews:     map[int]string{4: "first", 2: "No content yet..."},
		ActiveItemID: 2,
		Status:       core.StatusUnsaved,
	}

	out := Tree(v, DefaultTheme())
	lines := strings.Split(strings.TrimSpace(out), "\n")

	assert.Equal(t, "▾ 📝 Memos #1 (2)", lines[0])
	assert.Equal(t, "    Same #4", lines[1])
	assert.Equal(t, "  > Same #2", lines[3], "highlight follows the id, not the title")
	assert.Contains(t, out, "▸ Archive #3 (1)")
	assert.NotContains(t, out, "hidden")
	assert.Equal(t, "● unsaved", lines[len(lines)-1])
}

func TestEditor(t *testing.T) {
	plain(t)
	out := Editor("Plans", "buy milk", 8, core.StatusSaved, DefaultTheme())
	assert.Contains(t, out, "Plans\n")
	assert.Contains(t, out, "buy milk\n")
	assert.Contains(t, out, "8 chars  ✓ saved")
}
