package pipeline

import (
	"fmt"
	"strings"

	"github.com/merkit/merkit/internal/mer"
)

// ValidationError is a fatal structural violation in a MER. It is the only
// hard-fail condition in the pipeline; everything upstream degrades to open
// questions instead.
type ValidationError struct {
	Entity  string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var b strings.Builder
	if e.Entity != "" {
		b.WriteString(e.Entity)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	return b.String()
}

// Validate checks the structural invariants the rest of the system relies
// on: the entities and relationships sequences exist, and every entity has
// at least one primary-key attribute.
func Validate(m *mer.MER) error {
	if m == nil {
		return &ValidationError{Message: "MER is nil"}
	}
	if m.Entities == nil {
		return &ValidationError{Message: "MER.entities must be a list"}
	}
	if m.Relationships == nil {
		return &ValidationError{Message: "MER.relationships must be a list"}
	}

	for i := range m.Entities {
		e := &m.Entities[i]
		if !e.HasPrimaryKey() {
			return &ValidationError{
				Entity:  e.Name,
				Message: "entity has no primary key (pk) attribute",
			}
		}
	}

	return nil
}

// Lint reports non-fatal model smells: relationship endpoints that
// reference entities missing from the model, and attribute names repeated
// within an entity. These are warnings only, never errors, so existing
// models keep validating.
func Lint(m *mer.MER) []string {
	var warnings []string

	known := make(map[string]bool, len(m.Entities))
	for _, e := range m.Entities {
		known[e.Name] = true
	}

	for _, r := range m.Relationships {
		if !known[r.From] {
			warnings = append(warnings,
				fmt.Sprintf("relationship %s -> %s references unknown entity %q", r.From, r.To, r.From))
		}
		if !known[r.To] {
			warnings = append(warnings,
				fmt.Sprintf("relationship %s -> %s references unknown entity %q", r.From, r.To, r.To))
		}
	}

	for _, e := range m.Entities {
		seen := make(map[string]bool, len(e.Attributes))
		for _, a := range e.Attributes {
			if seen[a.Name] {
				warnings = append(warnings,
					fmt.Sprintf("entity %s has duplicate attribute %q", e.Name, a.Name))
			}
			seen[a.Name] = true
		}
	}

	return warnings
}
