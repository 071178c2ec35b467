// Package mer defines the data model shared by the inference pipeline and
// the schema projectors: the context pack consumed as evidence, the partial
// results produced by each inference pass, and the merged
// entity-relationship model (MER) the pipeline emits.
package mer

// ContextPack is the unified evidence bundle for one pipeline run. It is
// read once and never mutated.
type ContextPack struct {
	Figma     FigmaSection    `json:"figma"`
	Documents DocumentSection `json:"documents"`
	Meta      map[string]any  `json:"meta,omitempty"`
}

// FigmaSection carries design-tool evidence: candidate entities and the
// connectors drawn between them.
type FigmaSection struct {
	EntityCards []EntityCard `json:"entityCards"`
	Connectors  []Connector  `json:"connectors"`
	Sources     []string     `json:"sources,omitempty"`
}

// EntityCard is a design-tool-sourced candidate entity with stub attributes.
type EntityCard struct {
	Name       string          `json:"name"`
	Attributes []AttributeStub `json:"attributes"`
	Sources    []string        `json:"sources,omitempty"`
}

// AttributeStub is an attribute as it appears on an entity card: a name and
// free-form tags, nothing more.
type AttributeStub struct {
	Name string   `json:"name"`
	Tags []string `json:"tags,omitempty"`
}

// Connector is a design-tool-sourced candidate relationship between two
// entity names, with whatever label the designer attached.
type Connector struct {
	From    string   `json:"from"`
	To      string   `json:"to"`
	Label   string   `json:"label,omitempty"`
	Sources []string `json:"sources,omitempty"`
}

// DocumentSection carries evidence extracted from written material.
type DocumentSection struct {
	Glossary []GlossaryTerm `json:"glossary"`
	Rules    []DocumentRule `json:"rules"`
	Enums    []Enum         `json:"enums"`
}

// GlossaryTerm maps a canonical term to its aliases. The pipeline only
// reads it for alias resolution.
type GlossaryTerm struct {
	Term       string   `json:"term"`
	Definition string   `json:"definition,omitempty"`
	Aliases    []string `json:"aliases,omitempty"`
}

// RuleKindCardinality is the only rule kind the pipeline acts on; rules of
// any other kind pass through untouched.
const RuleKindCardinality = "cardinality"

// DocumentRule is a typed fact extracted from documents. Cardinality rules
// carry From/To/Type; other kinds only carry a description.
type DocumentRule struct {
	Kind        string   `json:"kind"`
	Description string   `json:"description,omitempty"`
	From        string   `json:"from,omitempty"`
	To          string   `json:"to,omitempty"`
	Type        string   `json:"type,omitempty"`
	Sources     []string `json:"sources,omitempty"`
}

// Enum is a named, ordered value list taken verbatim from the documents
// section of the context pack.
type Enum struct {
	Name    string   `json:"name"`
	Values  []string `json:"values"`
	Sources []string `json:"sources,omitempty"`
}

// Relationship cardinality kinds.
const (
	OneToOne   = "one-to-one"
	OneToMany  = "one-to-many"
	ManyToOne  = "many-to-one"
	ManyToMany = "many-to-many"
)

// Attribute is a single entity attribute with its logical type and flags.
type Attribute struct {
	Name       string   `json:"name"`
	Type       string   `json:"type,omitempty"`
	PK         bool     `json:"pk,omitempty"`
	Unique     bool     `json:"unique,omitempty"`
	Nullable   bool     `json:"nullable,omitempty"`
	Default    string   `json:"default,omitempty"`
	Derived    bool     `json:"derived,omitempty"`
	ViewOnly   bool     `json:"view_only,omitempty"`
	Sources    []string `json:"sources,omitempty"`
	Confidence float64  `json:"confidence,omitempty"`
}

// Entity is one node of the model. Name is the unique key within a MER.
type Entity struct {
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Aliases     []string    `json:"aliases,omitempty"`
	Attributes  []Attribute `json:"attributes"`
	Sources     []string    `json:"sources,omitempty"`
	Confidence  float64     `json:"confidence,omitempty"`
}

// ForeignKey describes the referencing attribute and its target as
// "Entity.attribute".
type ForeignKey struct {
	Attribute string `json:"attribute,omitempty"`
	Ref       string `json:"ref,omitempty"`
}

// Participation carries per-side mandatory flags for a relationship.
type Participation struct {
	From bool `json:"from,omitempty"`
	To   bool `json:"to,omitempty"`
}

// Relationship is a directed edge between two entity names.
type Relationship struct {
	From       string         `json:"from"`
	To         string         `json:"to"`
	Type       string         `json:"type"`
	FK         *ForeignKey    `json:"fk,omitempty"`
	Mandatory  *Participation `json:"mandatory,omitempty"`
	Sources    []string       `json:"sources,omitempty"`
	Confidence float64        `json:"confidence,omitempty"`
}

// OpenQuestion records an ambiguity surfaced for human review instead of
// being guessed at.
type OpenQuestion struct {
	Question string   `json:"question"`
	Sources  []string `json:"sources,omitempty"`
}

// Meta is the MER's metadata block.
type Meta struct {
	RunID         string         `json:"run_id,omitempty"`
	GeneratedAt   string         `json:"generated_at,omitempty"`
	OpenQuestions []OpenQuestion `json:"open_questions"`
}

// MER is the merged entity-relationship model, the pipeline's canonical
// output.
type MER struct {
	Entities      []Entity       `json:"entities"`
	Relationships []Relationship `json:"relationships"`
	Enums         []Enum         `json:"enums"`
	Meta          Meta           `json:"meta"`
}

// PartialResult is the ephemeral output of one inference pass. The entity
// passes fill Entities, the relationships pass fills Relationships; both
// may surface open questions. It exists only within a single run.
type PartialResult struct {
	Entities      []Entity       `json:"entities,omitempty"`
	Relationships []Relationship `json:"relationships,omitempty"`
	OpenQuestions []OpenQuestion `json:"open_questions"`
}

// Entity returns the entity with the given name, or nil.
func (m *MER) Entity(name string) *Entity {
	for i := range m.Entities {
		if m.Entities[i].Name == name {
			return &m.Entities[i]
		}
	}
	return nil
}

// Attribute returns the attribute with the given name, or nil.
func (e *Entity) Attribute(name string) *Attribute {
	for i := range e.Attributes {
		if e.Attributes[i].Name == name {
			return &e.Attributes[i]
		}
	}
	return nil
}

// HasPrimaryKey reports whether any attribute carries the primary-key flag.
func (e *Entity) HasPrimaryKey() bool {
	for _, a := range e.Attributes {
		if a.PK {
			return true
		}
	}
	return false
}
