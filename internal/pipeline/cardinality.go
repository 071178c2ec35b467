package pipeline

import "github.com/merkit/merkit/internal/mer"

// ResolveCardinality applies document cardinality rules to an inferred
// relationship: document evidence always wins over inference. Rules match
// on the exact, pre-normalization (from, to) pair. Every matching rule is
// applied in list order, so the last match's type wins, and each match
// appends its sources to the relationship's existing sources. Without a
// match the relationship is returned unchanged.
func ResolveCardinality(rel mer.Relationship, rules []mer.DocumentRule) mer.Relationship {
	for _, rule := range rules {
		if rule.Kind != mer.RuleKindCardinality {
			continue
		}
		if rule.From != rel.From || rule.To != rel.To {
			continue
		}
		if rule.Type != "" {
			rel.Type = rule.Type
		}
		rel.Sources = append(rel.Sources, rule.Sources...)
	}
	return rel
}
