package core

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	// ErrNotFound is returned when an operation references a missing container or item,
	// or when a store slot holds no data yet.
	ErrNotFound = errors.New("not found")
	// ErrCorruptState is returned when persisted data exists but cannot be decoded.
	ErrCorruptState = errors.New("persisted state is corrupt")
	// ErrValidation is returned when structured field input fails its constraint.
	ErrValidation = errors.New("validation rejected")
	// ErrReadOnly is returned by write operations on a read-only store.
	ErrReadOnly = errors.New("store is in read-only mode")
	// ErrLocked is returned when another process owns the store.
	ErrLocked = errors.New("store is locked by another process")
)

// ValidationError describes a rejected structured field value.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("field %q: %s (got %q)", e.Field, e.Reason, e.Value)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }
