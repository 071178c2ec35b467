package pipeline

import (
	"github.com/merkit/merkit/internal/mer"
	strutil "github.com/merkit/merkit/internal/util/strings"
)

// Normalize canonicalizes every name in the model in place: entity names
// resolve through glossary aliases and then take canonical form (strip
// non-alphanumerics, uppercase the first rune); attribute names become
// lowerCamel. Relationship endpoints and embedded foreign-key attribute
// names go through the same two functions. The operation is idempotent.
//
// It must run after merging and before validation: the projector detects
// standard fields by canonical name.
func Normalize(m *mer.MER, glossary []mer.GlossaryTerm) {
	for i := range m.Entities {
		e := &m.Entities[i]
		e.Name = strutil.EntityCase(resolveAlias(e.Name, glossary))
		for j := range e.Attributes {
			e.Attributes[j].Name = strutil.LowerCamel(e.Attributes[j].Name)
		}
	}

	for i := range m.Relationships {
		r := &m.Relationships[i]
		r.From = strutil.EntityCase(resolveAlias(r.From, glossary))
		r.To = strutil.EntityCase(resolveAlias(r.To, glossary))
		if r.FK != nil && r.FK.Attribute != "" {
			r.FK.Attribute = strutil.LowerCamel(r.FK.Attribute)
		}
	}
}

// resolveAlias substitutes the canonical glossary term when the raw name
// equals a term or one of its aliases.
func resolveAlias(name string, glossary []mer.GlossaryTerm) string {
	for _, g := range glossary {
		if name == g.Term {
			return g.Term
		}
		for _, alias := range g.Aliases {
			if name == alias {
				return g.Term
			}
		}
	}
	return name
}
