package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/folio"
)

// parseID reads a positive integer id argument.
func parseID(what, arg string) int {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		fatal("Invalid "+what+" id", fmt.Errorf("%q is not a positive integer", arg))
	}
	return id
}

// parseFields turns key=value arguments into raw field input.
func parseFields(args []string) (map[string]string, error) {
	raw := make(map[string]string, len(args))
	for _, a := range args {
		k, v, ok := strings.Cut(a, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("expected field=value, got %q", a)
		}
		raw[k] = v
	}
	return raw, nil
}

// withReadOnlyView opens the collection without taking the ownership lock,
// so read commands work while a shell is running.
func withReadOnlyView() folio.Option {
	return folio.WithReadOnly(true)
}
