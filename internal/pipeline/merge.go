package pipeline

import (
	"github.com/merkit/merkit/internal/mer"
)

// Merge folds the three pass results and the context pack into one MER.
//
// Entities come from the entities pass in order; when the attributes pass
// returns a matching name its attribute list replaces the earlier one, its
// sources extend (never replace) the accumulated sources, and confidence is
// raised to the maximum of the two values. Entities only the attributes
// pass knows about are still admitted, appended after the rest. The union
// is deliberate: a pass disagreeing about the entity set must not silently
// drop evidence.
//
// Relationships come verbatim from the relationships pass, each resolved
// against the pack's document rules. Enums are copied straight from the
// pack; inference passes do not produce enums. Open questions concatenate
// in pass order.
func Merge(entities, attributes, relationships *mer.PartialResult, pack *mer.ContextPack) *mer.MER {
	merged := make([]mer.Entity, 0, len(entities.Entities))
	index := make(map[string]int, len(entities.Entities))

	for _, e := range entities.Entities {
		index[e.Name] = len(merged)
		merged = append(merged, e)
	}

	for _, ea := range attributes.Entities {
		i, ok := index[ea.Name]
		if !ok {
			index[ea.Name] = len(merged)
			merged = append(merged, ea)
			continue
		}

		base := &merged[i]
		base.Attributes = ea.Attributes
		base.Sources = append(base.Sources, ea.Sources...)
		if ea.Confidence > base.Confidence {
			base.Confidence = ea.Confidence
		}
	}

	rels := make([]mer.Relationship, 0, len(relationships.Relationships))
	for _, rel := range relationships.Relationships {
		rels = append(rels, ResolveCardinality(rel, pack.Documents.Rules))
	}

	questions := make([]mer.OpenQuestion, 0,
		len(entities.OpenQuestions)+len(attributes.OpenQuestions)+len(relationships.OpenQuestions))
	questions = append(questions, entities.OpenQuestions...)
	questions = append(questions, attributes.OpenQuestions...)
	questions = append(questions, relationships.OpenQuestions...)

	return &mer.MER{
		Entities:      merged,
		Relationships: rels,
		Enums:         append([]mer.Enum(nil), pack.Documents.Enums...),
		Meta:          mer.Meta{OpenQuestions: questions},
	}
}
