// Package prisma projects a merged entity-relationship model into a Prisma
// schema document: a fixed datasource/generator header, enum blocks, and
// model blocks with synthesized foreign keys and reverse collection fields.
// Projection is a pure function of the model; it never mutates its input.
package prisma

import (
	"fmt"
	"strings"

	"github.com/merkit/merkit/internal/mer"
	strutil "github.com/merkit/merkit/internal/util/strings"
)

const header = `// Generated from MER schema
datasource db {
  provider = "postgresql"
  url      = env("DATABASE_URL")
}

generator client {
  provider = "prisma-client-js"
}

`

// Names of the standard audit fields appended to every model that does not
// already carry them.
const (
	createdAtField = "createdAt"
	updatedAtField = "updatedAt"
	deletedAtField = "deletedAt"
)

// outgoing is one edge of the from-entity-keyed relationship index, with
// the fk descriptor resolved to concrete names.
type outgoing struct {
	to          string
	fkAttribute string
	refField    string
}

// Project renders the model as Prisma schema text.
func Project(m *mer.MER) string {
	var b strings.Builder
	b.WriteString(header)

	writeEnums(&b, m.Enums)
	writeModels(&b, m)

	return b.String()
}

func writeEnums(b *strings.Builder, enums []mer.Enum) {
	for _, e := range enums {
		fmt.Fprintf(b, "enum %s {\n", e.Name)
		for _, v := range e.Values {
			fmt.Fprintf(b, "  %s\n", strutil.UpperSnake(v))
		}
		b.WriteString("}\n\n")
	}
}

func writeModels(b *strings.Builder, m *mer.MER) {
	relIndex := buildRelationshipIndex(m.Relationships)

	for i := range m.Entities {
		entity := &m.Entities[i]
		fmt.Fprintf(b, "model %s {\n", entity.Name)

		for _, attr := range entity.Attributes {
			b.WriteString(attributeLine(attr))
		}

		for _, rel := range relIndex[entity.Name] {
			fmt.Fprintf(b, "  %s %s @relation(fields: [%s], references: [%s])\n",
				strings.ToLower(rel.to), rel.to, rel.fkAttribute, rel.refField)
			if entity.Attribute(rel.fkAttribute) == nil {
				fmt.Fprintf(b, "  %s %s\n", rel.fkAttribute, fkType(m, rel))
			}
		}

		writeReverseFields(b, m, relIndex, entity.Name)
		writeAuditFields(b, entity)

		b.WriteString("}\n\n")
	}
}

// buildRelationshipIndex groups relationships by their from-entity and
// resolves each fk descriptor, defaulting the attribute to <to>Id and the
// referenced field to the last segment of the fk ref.
func buildRelationshipIndex(rels []mer.Relationship) map[string][]outgoing {
	index := make(map[string][]outgoing)
	for _, rel := range rels {
		out := outgoing{
			to:          rel.To,
			fkAttribute: strings.ToLower(rel.To) + "Id",
			refField:    "id",
		}
		if rel.FK != nil {
			if rel.FK.Attribute != "" {
				out.fkAttribute = rel.FK.Attribute
			}
			if rel.FK.Ref != "" {
				parts := strings.Split(rel.FK.Ref, ".")
				out.refField = parts[len(parts)-1]
			}
		}
		index[rel.From] = append(index[rel.From], out)
	}
	return index
}

func attributeLine(attr mer.Attribute) string {
	fieldType := MapType(attr.Type)
	if attr.Nullable {
		fieldType += "?"
	}

	var decorations []string
	if attr.PK {
		decorations = append(decorations, "@id")
	}
	if attr.Unique {
		decorations = append(decorations, "@unique")
	}
	if attr.Default != "" {
		decorations = append(decorations, fmt.Sprintf("@default(%s)", attr.Default))
	}

	line := fmt.Sprintf("  %s %s", attr.Name, fieldType)
	if len(decorations) > 0 {
		line += " " + strings.Join(decorations, " ")
	}
	return line + "\n"
}

// fkType resolves the synthesized foreign-key attribute's type from the
// referenced entity's referenced attribute. String when the target cannot
// be resolved.
func fkType(m *mer.MER, rel outgoing) string {
	target := m.Entity(rel.to)
	if target == nil {
		return "String"
	}
	ref := target.Attribute(rel.refField)
	if ref == nil {
		return "String"
	}
	return MapType(ref.Type)
}

// writeReverseFields emits one pluralized collection field on the current
// entity for every other entity with a relationship pointing at it. The
// derivation is global over all entities' edges, de-duplicated so repeated
// relationship entries produce a single reciprocal field.
func writeReverseFields(b *strings.Builder, m *mer.MER, relIndex map[string][]outgoing, current string) {
	emitted := make(map[string]bool)
	for _, other := range m.Entities {
		if other.Name == current {
			continue
		}
		for _, rel := range relIndex[other.Name] {
			if rel.to != current || emitted[other.Name] {
				continue
			}
			emitted[other.Name] = true
			fmt.Fprintf(b, "  %s %s[]\n", strutil.Pluralize(strings.ToLower(other.Name)), other.Name)
		}
	}
}

// writeAuditFields appends the standard audit trio when the entity does not
// already define it. Presence is checked by canonical attribute name, so
// re-projecting a model that carries these fields never duplicates them.
func writeAuditFields(b *strings.Builder, entity *mer.Entity) {
	if entity.Attribute(createdAtField) == nil {
		fmt.Fprintf(b, "  %s DateTime @default(now())\n", createdAtField)
	}
	if entity.Attribute(updatedAtField) == nil {
		fmt.Fprintf(b, "  %s DateTime @updatedAt\n", updatedAtField)
	}
	if entity.Attribute(deletedAtField) == nil {
		fmt.Fprintf(b, "  %s DateTime?\n", deletedAtField)
	}
}
