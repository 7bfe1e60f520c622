package kinds

import (
	"time"

	"github.com/aretw0/folio/pkg/core"
)

const (
	// PreviewLength is the number of content characters shown in a memo preview.
	PreviewLength = 30
	// EmptyPreview is shown for memos without content.
	EmptyPreview = "No content yet..."
)

// Memo is the free-form variant: a title and a block of text.
type Memo struct{}

func (Memo) Type() core.ContainerType { return core.TypeMemo }

func (Memo) Config() core.Config { return core.Config{} }

func (Memo) NewItem(time.Time) (string, core.Data) { return "", nil }

func (Memo) Preview(it core.Item) string {
	r := []rune(it.Content)
	if len(r) == 0 {
		return EmptyPreview
	}
	if len(r) > PreviewLength {
		r = r[:PreviewLength]
	}
	return string(r)
}
