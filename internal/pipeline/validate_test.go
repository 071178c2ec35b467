package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/merkit/merkit/internal/mer"
)

func TestValidate(t *testing.T) {
	t.Run("accepts a model with primary keys", func(t *testing.T) {
		m := &mer.MER{
			Entities: []mer.Entity{
				{Name: "User", Attributes: []mer.Attribute{{Name: "id", PK: true}}},
			},
			Relationships: []mer.Relationship{},
		}
		assert.NoError(t, Validate(m))
	})

	t.Run("rejects an entity without a primary key, naming it", func(t *testing.T) {
		m := &mer.MER{
			Entities: []mer.Entity{
				{Name: "User", Attributes: []mer.Attribute{{Name: "id", PK: true}}},
				{Name: "Order", Attributes: []mer.Attribute{{Name: "total", Type: "decimal"}}},
			},
			Relationships: []mer.Relationship{},
		}

		err := Validate(m)
		require.Error(t, err)

		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "Order", verr.Entity)
		assert.Contains(t, err.Error(), "Order")
		assert.Contains(t, err.Error(), "primary key")
	})

	t.Run("rejects missing sequences", func(t *testing.T) {
		assert.Error(t, Validate(nil))
		assert.Error(t, Validate(&mer.MER{Relationships: []mer.Relationship{}}))
		assert.Error(t, Validate(&mer.MER{Entities: []mer.Entity{}}))
	})

	t.Run("accepts empty but present sequences", func(t *testing.T) {
		assert.NoError(t, Validate(&mer.MER{
			Entities:      []mer.Entity{},
			Relationships: []mer.Relationship{},
		}))
	})
}

func TestLint(t *testing.T) {
	t.Run("clean model yields no warnings", func(t *testing.T) {
		m := &mer.MER{
			Entities: []mer.Entity{
				{Name: "User", Attributes: []mer.Attribute{{Name: "id", PK: true}}},
			},
		}
		assert.Empty(t, Lint(m))
	})

	t.Run("dangling relationship endpoints warn but never fail", func(t *testing.T) {
		m := &mer.MER{
			Entities: []mer.Entity{
				{Name: "User", Attributes: []mer.Attribute{{Name: "id", PK: true}}},
			},
			Relationships: []mer.Relationship{
				{From: "Order", To: "User", Type: mer.ManyToOne},
			},
		}

		warnings := Lint(m)
		require.Len(t, warnings, 1)
		assert.Contains(t, warnings[0], `unknown entity "Order"`)
		assert.NoError(t, Validate(m))
	})

	t.Run("duplicate attribute names warn", func(t *testing.T) {
		m := &mer.MER{
			Entities: []mer.Entity{
				{Name: "User", Attributes: []mer.Attribute{
					{Name: "id", PK: true},
					{Name: "email"},
					{Name: "email"},
				}},
			},
		}

		warnings := Lint(m)
		require.Len(t, warnings, 1)
		assert.Contains(t, warnings[0], `duplicate attribute "email"`)
	})
}
