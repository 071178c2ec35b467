package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/merkit/merkit/internal/mer"
)

func namingFixture() *mer.MER {
	return &mer.MER{
		Entities: []mer.Entity{
			{
				Name: "customer account",
				Attributes: []mer.Attribute{
					{Name: "account id", PK: true},
					{Name: "created_at"},
				},
			},
			{Name: "order-item", Attributes: []mer.Attribute{{Name: "id", PK: true}}},
		},
		Relationships: []mer.Relationship{
			{
				From: "order-item",
				To:   "customer account",
				Type: mer.ManyToOne,
				FK:   &mer.ForeignKey{Attribute: "customer account id", Ref: "User.id"},
			},
		},
	}
}

func TestNormalize(t *testing.T) {
	glossary := []mer.GlossaryTerm{
		{Term: "User", Aliases: []string{"customer account", "Account (UI)"}},
	}

	m := namingFixture()
	Normalize(m, glossary)

	t.Run("entity names resolve aliases then take canonical form", func(t *testing.T) {
		assert.Equal(t, "User", m.Entities[0].Name)
		assert.Equal(t, "Orderitem", m.Entities[1].Name)
	})

	t.Run("attribute names become lowerCamel", func(t *testing.T) {
		assert.Equal(t, "accountId", m.Entities[0].Attributes[0].Name)
		assert.Equal(t, "createdAt", m.Entities[0].Attributes[1].Name)
	})

	t.Run("relationship endpoints and fk attribute are normalized", func(t *testing.T) {
		rel := m.Relationships[0]
		assert.Equal(t, "Orderitem", rel.From)
		assert.Equal(t, "User", rel.To)
		require.NotNil(t, rel.FK)
		assert.Equal(t, "customerAccountId", rel.FK.Attribute)
	})
}

func TestNormalizeIdempotent(t *testing.T) {
	glossary := []mer.GlossaryTerm{
		{Term: "User", Aliases: []string{"customer account"}},
	}

	once := namingFixture()
	Normalize(once, glossary)

	twice := namingFixture()
	Normalize(twice, glossary)
	Normalize(twice, glossary)

	assert.Equal(t, once, twice)
}

func TestNormalizeWithoutGlossary(t *testing.T) {
	m := &mer.MER{Entities: []mer.Entity{{Name: "order item"}}}
	Normalize(m, nil)
	assert.Equal(t, "Orderitem", m.Entities[0].Name)
}
