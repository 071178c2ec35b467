package prisma

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/merkit/merkit/internal/llm"
)

const enrichPrompt = `You are a Prisma schema reviewer. Improve the schema below without
changing its meaning: add helpful @@index declarations, tighten field
ordering, and add short comments where a field's intent is unclear. Keep
every existing model, enum, field, and relation exactly as declared.
Output ONLY the complete schema text, no prose.

SCHEMA:
`

// Enrich asks the completion service to polish an already-projected schema.
// Enrichment is best-effort and fails open: on any error, an empty
// response, or output that no longer looks like a schema, the original
// text is returned unchanged.
func Enrich(ctx context.Context, client llm.Client, schema string, log *zap.Logger) string {
	if log == nil {
		log = zap.NewNop()
	}
	if client == nil {
		return schema
	}

	out, err := client.Complete(ctx, enrichPrompt+schema)
	if err != nil {
		log.Warn("schema enrichment failed, keeping deterministic output", zap.Error(err))
		return schema
	}

	enriched := strings.TrimSpace(llm.Unfence(out))
	if enriched == "" || !strings.Contains(enriched, "model ") || !strings.Contains(enriched, "datasource ") {
		log.Warn("schema enrichment returned unusable output, keeping deterministic output")
		return schema
	}

	return enriched + "\n"
}
