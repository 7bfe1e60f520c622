package core

import (
	"encoding/json"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"
)

// ItemType is the capability set every item variant implements.
// Repository, Selection and Editor only ever talk to this interface.
type ItemType interface {
	// Type is the container type this variant serves.
	Type() ContainerType
	// Config is the structured-field schema stamped on new containers. Free-form variants return an empty Config.
	Config() Config
	// NewItem returns the default body of a freshly created item.
	NewItem(now time.Time) (content string, data Data)
	// Preview renders the one-line summary shown next to the title.
	Preview(it Item) string
}

// Aggregator is implemented by variants that can summarize a container.
type Aggregator interface {
	Total(items []Item) float64
}

// TypeRegistry resolves a container type to its variant.
// Unknown types must resolve to the free-form variant.
type TypeRegistry interface {
	Lookup(t ContainerType) ItemType
}

// FieldKind is the value domain of a structured field.
type FieldKind string

const (
	FieldText     FieldKind = "text"
	FieldNumber   FieldKind = "number"
	FieldEnum     FieldKind = "enum"
	FieldDate     FieldKind = "date"
	FieldDateTime FieldKind = "datetime"
	FieldBool     FieldKind = "bool"
)

// DateLayout is the storage layout of date fields.
const DateLayout = "2006-01-02"

// FieldSpec describes one structured field.
type FieldSpec struct {
	Name        string    `json:"name" yaml:"name"`
	Label       string    `json:"label" yaml:"label"`
	Kind        FieldKind `json:"kind" yaml:"kind"`
	Options     []string  `json:"options,omitempty" yaml:"options,omitempty"` // ordered, for enum fields
	NonNegative bool      `json:"nonNegative,omitempty" yaml:"nonNegative,omitempty"`
	Required    bool      `json:"required,omitempty" yaml:"required,omitempty"`
}

// Config is the type-specific schema of a container.
type Config struct {
	Fields []FieldSpec `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// IsZero reports whether the config declares no fields.
func (c Config) IsZero() bool { return len(c.Fields) == 0 }

// Clone returns a deep copy of the config.
func (c Config) Clone() Config {
	if c.Fields == nil {
		return Config{}
	}
	out := Config{Fields: make([]FieldSpec, len(c.Fields))}
	for i, f := range c.Fields {
		f.Options = slices.Clone(f.Options)
		out.Fields[i] = f
	}
	return out
}

// Field looks up a field by name.
func (c Config) Field(name string) (FieldSpec, bool) {
	for _, f := range c.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// ParseFields converts raw user input into typed field values.
// Every key must name a declared field and satisfy its constraint.
func (c Config) ParseFields(raw map[string]string) (Data, error) {
	out := make(Data, len(raw))
	// Stable order so the first reported error is deterministic.
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	for _, name := range keys {
		spec, ok := c.Field(name)
		if !ok {
			return nil, &ValidationError{Field: name, Value: raw[name], Reason: "unknown field"}
		}
		v, err := spec.Parse(raw[name])
		if err != nil {
			return nil, err
		}
		out[name] = v
	}
	return out, nil
}

// Validate checks required fields against a complete data map.
func (c Config) Validate(data Data) error {
	for _, f := range c.Fields {
		if !f.Required {
			continue
		}
		if strings.TrimSpace(AsString(data[f.Name])) == "" {
			return &ValidationError{Field: f.Name, Value: "", Reason: "is required"}
		}
	}
	return nil
}

// ValidatePatch checks only the fields a partial update sets; untouched fields are not checked.
func (c Config) ValidatePatch(patch Data) error {
	for name, v := range patch {
		f, ok := c.Field(name)
		if !ok || !f.Required {
			continue
		}
		if strings.TrimSpace(AsString(v)) == "" {
			return &ValidationError{Field: f.Name, Value: "", Reason: "is required"}
		}
	}
	return nil
}

// Parse converts one raw value according to the field kind.
func (f FieldSpec) Parse(raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	reject := func(reason string) error {
		return &ValidationError{Field: f.Name, Value: raw, Reason: reason}
	}
	if raw == "" && f.Required {
		return nil, reject("is required")
	}

	switch f.Kind {
	case FieldNumber:
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			return nil, reject("must be a number")
		}
		if f.NonNegative && n < 0 {
			return nil, reject("must not be negative")
		}
		return n, nil
	case FieldEnum:
		if !slices.Contains(f.Options, raw) {
			return nil, reject("must be one of " + strings.Join(f.Options, ", "))
		}
		return raw, nil
	case FieldDate:
		if raw == "" {
			return "", nil
		}
		if _, err := time.Parse(DateLayout, raw); err != nil {
			return nil, reject("must be a date (YYYY-MM-DD)")
		}
		return raw, nil
	case FieldDateTime:
		if raw == "" {
			return "", nil
		}
		for _, layout := range []string{time.RFC3339, "2006-01-02 15:04", "2006-01-02T15:04"} {
			if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
				return t.Format(time.RFC3339), nil
			}
		}
		return nil, reject("must be a date and time")
	case FieldBool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, reject("must be true or false")
		}
		return b, nil
	default:
		return raw, nil
	}
}

// AsFloat reads a numeric field value whatever the decoder produced.
func AsFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	}
	return 0, false
}

// AsString reads a textual field value. YAML decoders may hand back timestamps as time.Time.
func AsString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case time.Time:
		return s.Format(time.RFC3339)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	case int:
		return strconv.Itoa(s)
	}
	return ""
}

// AsBool reads a boolean field value.
func AsBool(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		parsed, _ := strconv.ParseBool(b)
		return parsed
	}
	return false
}
