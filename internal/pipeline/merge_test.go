package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/merkit/merkit/internal/mer"
)

func TestMerge(t *testing.T) {
	entities := &mer.PartialResult{
		Entities: []mer.Entity{
			{Name: "User", Sources: []string{"figma:n1"}, Confidence: 0.6},
			{Name: "Order", Sources: []string{"figma:n2"}, Confidence: 0.8},
		},
		OpenQuestions: []mer.OpenQuestion{{Question: "from entities"}},
	}
	attributes := &mer.PartialResult{
		Entities: []mer.Entity{
			{
				Name:       "User",
				Attributes: []mer.Attribute{{Name: "id", Type: "uuid", PK: true}},
				Sources:    []string{"doc:a"},
				Confidence: 0.9,
			},
			// Not in the entities pass: admitted anyway.
			{Name: "Invoice", Attributes: []mer.Attribute{{Name: "id", PK: true}}, Confidence: 0.5},
		},
		OpenQuestions: []mer.OpenQuestion{{Question: "from attributes"}},
	}
	relationships := &mer.PartialResult{
		Relationships: []mer.Relationship{
			{From: "Order", To: "User", Type: mer.OneToMany, Sources: []string{"figma:c1"}},
		},
		OpenQuestions: []mer.OpenQuestion{{Question: "from relationships"}},
	}
	pack := &mer.ContextPack{
		Documents: mer.DocumentSection{
			Rules: []mer.DocumentRule{
				{Kind: mer.RuleKindCardinality, From: "Order", To: "User", Type: mer.ManyToOne, Sources: []string{"doc:x"}},
			},
			Enums: []mer.Enum{{Name: "OrderStatus", Values: []string{"pending", "shipped"}}},
		},
	}

	m := Merge(entities, attributes, relationships, pack)

	t.Run("entity union preserves pass order", func(t *testing.T) {
		require.Len(t, m.Entities, 3)
		assert.Equal(t, "User", m.Entities[0].Name)
		assert.Equal(t, "Order", m.Entities[1].Name)
		assert.Equal(t, "Invoice", m.Entities[2].Name)
	})

	t.Run("attributes overwrite, sources extend, confidence is max", func(t *testing.T) {
		user := m.Entity("User")
		require.NotNil(t, user)
		assert.Equal(t, []mer.Attribute{{Name: "id", Type: "uuid", PK: true}}, user.Attributes)
		assert.Equal(t, []string{"figma:n1", "doc:a"}, user.Sources)
		assert.Equal(t, 0.9, user.Confidence)
	})

	t.Run("document rule overrides inferred cardinality", func(t *testing.T) {
		require.Len(t, m.Relationships, 1)
		rel := m.Relationships[0]
		assert.Equal(t, mer.ManyToOne, rel.Type)
		assert.Equal(t, []string{"figma:c1", "doc:x"}, rel.Sources)
	})

	t.Run("enums come from the pack", func(t *testing.T) {
		require.Len(t, m.Enums, 1)
		assert.Equal(t, "OrderStatus", m.Enums[0].Name)
	})

	t.Run("open questions concatenate in pass order", func(t *testing.T) {
		require.Len(t, m.Meta.OpenQuestions, 3)
		assert.Equal(t, "from entities", m.Meta.OpenQuestions[0].Question)
		assert.Equal(t, "from attributes", m.Meta.OpenQuestions[1].Question)
		assert.Equal(t, "from relationships", m.Meta.OpenQuestions[2].Question)
	})
}

func TestMergeConfidenceNeverDecreases(t *testing.T) {
	entities := &mer.PartialResult{Entities: []mer.Entity{{Name: "User", Confidence: 0.9}}}
	attributes := &mer.PartialResult{Entities: []mer.Entity{{Name: "User", Confidence: 0.6}}}

	m := Merge(entities, attributes, &mer.PartialResult{}, &mer.ContextPack{})
	assert.Equal(t, 0.9, m.Entity("User").Confidence)
}

func TestMergeEmptyPasses(t *testing.T) {
	m := Merge(&mer.PartialResult{}, &mer.PartialResult{}, &mer.PartialResult{}, &mer.ContextPack{})
	assert.NotNil(t, m.Entities)
	assert.NotNil(t, m.Relationships)
	assert.Empty(t, m.Entities)
	assert.Empty(t, m.Relationships)
}
