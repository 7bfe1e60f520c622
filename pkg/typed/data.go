// Package typed converts the untyped structured data of items into Go structs and back.
package typed

import (
	"encoding/json"
	"fmt"

	"github.com/aretw0/folio/pkg/core"
)

// Entry is a typed view of a structured item.
type Entry[T any] struct {
	Item core.Item
	Data T // The typed structured fields
}

// Decode unmarshals an item's data map into T.
func Decode[T any](data core.Data) (T, error) {
	var out T

	// 1. Marshal the map to JSON to normalize decoder-specific value types
	raw, err := json.Marshal(data)
	if err != nil {
		return out, fmt.Errorf("data marshal failed: %w", err)
	}

	// 2. Unmarshal into the target struct
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("unmarshal to target type failed: %w", err)
	}
	return out, nil
}

// Encode converts a typed value into the data map stored on an item.
func Encode[T any](v T) (core.Data, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal typed data: %w", err)
	}
	var data core.Data
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to convert typed data to map: %w", err)
	}
	return data, nil
}

// View decodes every item of a container.
func View[T any](items []core.Item) ([]Entry[T], error) {
	result := make([]Entry[T], 0, len(items))
	for _, it := range items {
		data, err := Decode[T](it.Data)
		if err != nil {
			return nil, fmt.Errorf("failed to process item %d: %w", it.ID, err)
		}
		result = append(result, Entry[T]{Item: it, Data: data})
	}
	return result, nil
}
