package kinds

import (
	"fmt"
	"strconv"
	"time"

	"github.com/aretw0/folio/pkg/core"
	"github.com/aretw0/folio/pkg/typed"
)

// Ledger field names.
const (
	FieldLabel      = "label"
	FieldAmount     = "amount"
	FieldOccurredAt = "occurredAt"
)

// LedgerEntry is the typed form of a ledger item.
type LedgerEntry struct {
	Label      string  `json:"label"`
	Amount     float64 `json:"amount"`
	OccurredAt string  `json:"occurredAt"` // RFC 3339
}

// Ledger is the quantity-ledger variant (e.g. a shopping list with prices).
// Its containers can be totalled.
type Ledger struct {
	Name core.ContainerType
}

func (l Ledger) Type() core.ContainerType { return l.Name }

func (Ledger) DefaultTitle() string { return "New entry" }

func (Ledger) Config() core.Config {
	return core.Config{Fields: []core.FieldSpec{
		{Name: FieldLabel, Label: "Item", Kind: core.FieldText, Required: true},
		{Name: FieldAmount, Label: "Amount", Kind: core.FieldNumber, NonNegative: true},
		{Name: FieldOccurredAt, Label: "Date", Kind: core.FieldDateTime},
	}}
}

func (Ledger) NewItem(now time.Time) (string, core.Data) {
	return "", core.Data{
		FieldLabel:      "",
		FieldAmount:     0.0,
		FieldOccurredAt: now.Format(time.RFC3339),
	}
}

// Preview renders "<label> - <amount> (<date> <time>)".
func (Ledger) Preview(it core.Item) string {
	e, err := typed.Decode[LedgerEntry](it.Data)
	if err != nil {
		// Hand-edited documents may carry loose types; read them leniently.
		e.Label = core.AsString(it.Data[FieldLabel])
		e.Amount, _ = core.AsFloat(it.Data[FieldAmount])
		e.OccurredAt = core.AsString(it.Data[FieldOccurredAt])
	}
	when := it.CreatedAt
	if t, err := time.Parse(time.RFC3339, e.OccurredAt); err == nil {
		when = t
	}
	when = when.Local()
	return fmt.Sprintf("%s - %s (%s %s)", e.Label, FormatAmount(e.Amount), when.Format(core.DateLayout), when.Format("15:04"))
}

// Total sums the amount of every entry.
func (Ledger) Total(items []core.Item) float64 {
	var sum float64
	for _, it := range items {
		if n, ok := core.AsFloat(it.Data[FieldAmount]); ok {
			sum += n
		}
	}
	return sum
}

// FormatAmount prints an amount without trailing zeros.
func FormatAmount(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}

var _ core.Aggregator = Ledger{}
var _ core.Titled = Ledger{}
