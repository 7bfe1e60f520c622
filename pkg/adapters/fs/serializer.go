package fs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/folio/pkg/core"
)

// Serializer defines how a collection snapshot is written to and read from a slot file.
type Serializer interface {
	// Ext is the file extension including the dot.
	Ext() string
	// Parse decodes a snapshot. Errors are reported as-is; the store wraps them.
	Parse(data []byte) ([]core.Container, error)
	// Serialize encodes the full collection.
	Serialize(containers []core.Container) ([]byte, error)
}

// DefaultSerializers returns the supported formats keyed by name.
func DefaultSerializers() map[string]Serializer {
	return map[string]Serializer{
		"json": JSONSerializer{},
		"yaml": YAMLSerializer{},
	}
}

// --- JSON Serializer ---

// JSONSerializer writes indented JSON, the format of the original browser storage.
type JSONSerializer struct{}

func (JSONSerializer) Ext() string { return ".json" }

func (JSONSerializer) Parse(data []byte) ([]core.Container, error) {
	var out []core.Container
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&out); err != nil {
		return nil, fmt.Errorf("invalid json: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("invalid json: trailing data after document")
	}
	return out, nil
}

func (JSONSerializer) Serialize(containers []core.Container) ([]byte, error) {
	return json.MarshalIndent(containers, "", "  ")
}

// --- YAML Serializer ---

// YAMLSerializer writes the collection as a YAML sequence.
type YAMLSerializer struct{}

func (YAMLSerializer) Ext() string { return ".yaml" }

func (YAMLSerializer) Parse(data []byte) ([]core.Container, error) {
	var out []core.Container
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("invalid yaml: %w", err)
	}
	for i := range out {
		for j := range out[i].Items {
			it := &out[i].Items[j]
			if it.Data != nil {
				it.Data = recursiveNormalize(map[string]any(it.Data)).(map[string]any)
			}
		}
		for j := range out[i].LegacyMemos {
			it := &out[i].LegacyMemos[j]
			if it.Data != nil {
				it.Data = recursiveNormalize(map[string]any(it.Data)).(map[string]any)
			}
		}
	}
	return out, nil
}

func (YAMLSerializer) Serialize(containers []core.Container) ([]byte, error) {
	return yaml.Marshal(containers)
}

// recursiveNormalize maps YAML scalar types onto the ones the JSON decoder
// produces, so field values look the same whatever the slot format.
func recursiveNormalize(val any) any {
	switch v := val.(type) {
	case map[string]any:
		m := make(map[string]any, len(v))
		for k, val := range v {
			m[k] = recursiveNormalize(val)
		}
		return m
	case []any:
		l := make([]any, len(v))
		for i, val := range v {
			l[i] = recursiveNormalize(val)
		}
		return l
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case uint64:
		return float64(v)
	case time.Time:
		return v.Format(time.RFC3339)
	default:
		return v
	}
}
