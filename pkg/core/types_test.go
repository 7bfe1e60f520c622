package core_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/folio/pkg/core"
)

func TestConfig_ParseFields(t *testing.T) {
	cfg := core.Config{Fields: []core.FieldSpec{
		{Name: "name", Kind: core.FieldText, Required: true},
		{Name: "qty", Kind: core.FieldNumber, NonNegative: true},
		{Name: "size", Kind: core.FieldEnum, Options: []string{"s", "m", "l"}},
		{Name: "due", Kind: core.FieldDate},
		{Name: "at", Kind: core.FieldDateTime},
		{Name: "done", Kind: core.FieldBool},
	}}

	tests := []struct {
		name    string
		raw     map[string]string
		want    core.Data
		wantErr string
	}{
		{
			name: "valid",
			raw:  map[string]string{"name": " Tea ", "qty": "2.5", "size": "m", "due": "2026-04-01", "done": "true"},
			want: core.Data{"name": "Tea", "qty": 2.5, "size": "m", "due": "2026-04-01", "done": true},
		},
		{name: "negative", raw: map[string]string{"qty": "-1"}, wantErr: "qty"},
		{name: "not a number", raw: map[string]string{"qty": "NaN"}, wantErr: "qty"},
		{name: "enum", raw: map[string]string{"size": "xl"}, wantErr: "size"},
		{name: "date", raw: map[string]string{"due": "01/04/2026"}, wantErr: "due"},
		{name: "bool", raw: map[string]string{"done": "maybe"}, wantErr: "done"},
		{name: "required", raw: map[string]string{"name": "  "}, wantErr: "name"},
		{name: "unknown", raw: map[string]string{"color": "red"}, wantErr: "color"},
		{name: "empty date", raw: map[string]string{"due": ""}, want: core.Data{"due": ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := cfg.ParseFields(tt.raw)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.ErrorIs(t, err, core.ErrValidation)
				var ve *core.ValidationError
				require.True(t, errors.As(err, &ve))
				assert.Equal(t, tt.wantErr, ve.Field)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("datetime layouts", func(t *testing.T) {
		want := time.Date(2026, 3, 14, 9, 5, 0, 0, time.Local).Format(time.RFC3339)
		for _, in := range []string{"2026-03-14 09:05", "2026-03-14T09:05", want} {
			got, err := cfg.ParseFields(map[string]string{"at": in})
			require.NoError(t, err, in)
			assert.Equal(t, want, got["at"])
		}
	})
}

func TestConfig_Validate(t *testing.T) {
	cfg := core.Config{Fields: []core.FieldSpec{{Name: "name", Kind: core.FieldText, Required: true}}}
	assert.NoError(t, cfg.Validate(core.Data{"name": "x"}))
	assert.ErrorIs(t, cfg.Validate(core.Data{}), core.ErrValidation)
	assert.True(t, core.Config{}.IsZero())

	t.Run("Patch Checks Only Its Keys", func(t *testing.T) {
		cfg := core.Config{Fields: []core.FieldSpec{
			{Name: "name", Kind: core.FieldText, Required: true},
			{Name: "amount", Kind: core.FieldNumber},
		}}
		assert.NoError(t, cfg.ValidatePatch(core.Data{"amount": 5.0}))
		assert.NoError(t, cfg.ValidatePatch(core.Data{"name": "x"}))
		assert.ErrorIs(t, cfg.ValidatePatch(core.Data{"name": " "}), core.ErrValidation)
	})
}

func TestAs(t *testing.T) {
	f, ok := core.AsFloat("12.5")
	assert.True(t, ok)
	assert.Equal(t, 12.5, f)
	_, ok = core.AsFloat(nil)
	assert.False(t, ok)

	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	assert.Equal(t, "2026-01-02T03:04:05Z", core.AsString(ts))
	assert.True(t, core.AsBool("true"))
	assert.False(t, core.AsBool(nil))
}
