// Package route resolves navigation paths to the container type they open.
package route

import (
	"fmt"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/aretw0/folio/pkg/core"
)

// Rule maps a doublestar pattern to a container type.
type Rule struct {
	Pattern string
	Type    core.ContainerType
}

// Router matches paths against rules in order; the first match wins.
type Router struct {
	rules []Rule
}

// New validates the rules and returns a Router.
func New(rules ...Rule) (*Router, error) {
	for _, r := range rules {
		if !doublestar.ValidatePattern(normalize(r.Pattern)) {
			return nil, fmt.Errorf("invalid route pattern %q", r.Pattern)
		}
	}
	return &Router{rules: append([]Rule(nil), rules...)}, nil
}

// Default routes the built-in stream paths.
func Default() *Router {
	var rules []Rule
	for _, b := range []struct {
		prefixes []string
		typ      core.ContainerType
	}{
		{[]string{"shopping"}, core.TypeShopping},
		{[]string{"todo", "todos"}, core.TypeTodo},
		{[]string{"memo", "memos", "notes"}, core.TypeMemo},
	} {
		for _, p := range b.prefixes {
			rules = append(rules, Rule{Pattern: p, Type: b.typ}, Rule{Pattern: p + "/**", Type: b.typ})
		}
	}
	r, _ := New(rules...)
	return r
}

// Resolve returns the container type for p.
func (r *Router) Resolve(p string) (core.ContainerType, bool) {
	p = normalize(p)
	for _, rule := range r.rules {
		if ok, _ := doublestar.Match(normalize(rule.Pattern), p); ok {
			return rule.Type, true
		}
	}
	return "", false
}

// Rules returns a copy of the configured rules.
func (r *Router) Rules() []Rule {
	return append([]Rule(nil), r.rules...)
}

func normalize(p string) string {
	p = path.Clean("/" + strings.TrimSpace(p))
	return strings.TrimPrefix(p, "/")
}
