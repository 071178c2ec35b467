// Package pipeline implements the inference-merge-validate flow that turns
// a context pack into a merged entity-relationship model: three sequential
// completion-backed inference passes, a deterministic merge with
// document-rule cardinality resolution, naming normalization, and
// structural validation.
package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/merkit/merkit/internal/llm"
	"github.com/merkit/merkit/internal/mer"
)

// System-level source citations attached to fallback open questions.
const (
	sourceCompletionError = "system:llm_error"
	sourceParseError      = "system:json_error"
)

// RetryPolicy bounds how many times a pass calls the completion service
// before degrading to a fallback result. There is no backoff between
// attempts; transport-level retries belong to the client.
type RetryPolicy struct {
	// MaxAttempts is the total number of completion calls per pass.
	MaxAttempts int
}

// DefaultRetryPolicy allows a single retry: two attempts total.
var DefaultRetryPolicy = RetryPolicy{MaxAttempts: 2}

// Pass describes one inference pass: a name for logs and fallback
// messages, the pass-specific prompt instructions, and the label under
// which the prior partial model is included in the prompt (empty for the
// first pass, which has no prior).
type Pass struct {
	Name         string
	Instructions string
	PartialLabel string
}

// The three concrete passes, in execution order.
var (
	EntitiesPass      = Pass{Name: "entities", Instructions: entitiesInstructions}
	AttributesPass    = Pass{Name: "attributes", Instructions: attributesInstructions, PartialLabel: "PARTIAL MER (ENTITIES)"}
	RelationshipsPass = Pass{Name: "relationships", Instructions: relationshipsInstructions, PartialLabel: "PARTIAL MER (ENTITIES+ATTRIBUTES)"}
)

// Runner executes inference passes against an injected completion client.
// A failing or unparseable completion never aborts the run; the runner
// degrades to a fallback partial result carrying an open question so the
// failure stays observable in the output.
type Runner struct {
	client llm.Client
	retry  RetryPolicy
	log    *zap.Logger
}

// NewRunner creates a pass runner.
func NewRunner(client llm.Client, retry RetryPolicy, log *zap.Logger) *Runner {
	if retry.MaxAttempts < 1 {
		retry = DefaultRetryPolicy
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{client: client, retry: retry, log: log}
}

// Run executes one pass: build the prompt, call the completion service
// within the retry bound, and parse the output as a PartialResult. The
// only error it returns is context cancellation.
func (r *Runner) Run(ctx context.Context, pass Pass, prior *mer.PartialResult, pack *mer.ContextPack) (*mer.PartialResult, error) {
	prompt, err := r.buildPrompt(pass, prior, pack)
	if err != nil {
		return nil, fmt.Errorf("%s pass: building prompt: %w", pass.Name, err)
	}

	r.log.Debug("running inference pass",
		zap.String("pass", pass.Name),
		zap.Int("prompt_bytes", len(prompt)))

	out := ""
	for attempt := 1; attempt <= r.retry.MaxAttempts; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		out, err = r.client.Complete(ctx, prompt)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			r.log.Warn("completion call failed",
				zap.String("pass", pass.Name),
				zap.Int("attempt", attempt),
				zap.Error(err))
			out = ""
			continue
		}
		if strings.TrimSpace(out) != "" {
			break
		}
		r.log.Warn("completion returned empty output",
			zap.String("pass", pass.Name),
			zap.Int("attempt", attempt))
	}

	if strings.TrimSpace(out) == "" {
		r.log.Error("completion empty after all attempts", zap.String("pass", pass.Name))
		return r.fallback(pass, prior,
			fmt.Sprintf("The completion service returned no output for the %s pass; review this section manually.", pass.Name),
			sourceCompletionError), nil
	}

	var result mer.PartialResult
	if err := json.Unmarshal([]byte(llm.Unfence(out)), &result); err != nil {
		r.log.Error("completion output failed to parse",
			zap.String("pass", pass.Name),
			zap.Error(err))
		return r.fallback(pass, prior,
			fmt.Sprintf("The %s pass output could not be parsed (%v); review this section manually.", pass.Name, err),
			sourceParseError), nil
	}

	r.log.Info("inference pass completed",
		zap.String("pass", pass.Name),
		zap.Int("entities", len(result.Entities)),
		zap.Int("relationships", len(result.Relationships)),
		zap.Int("open_questions", len(result.OpenQuestions)))

	return &result, nil
}

// buildPrompt concatenates the prompt sections in fixed order: system
// instructions, pass instructions, the prior partial model when the pass
// has one, and finally the context pack.
func (r *Runner) buildPrompt(pass Pass, prior *mer.PartialResult, pack *mer.ContextPack) (string, error) {
	packJSON, err := json.Marshal(pack)
	if err != nil {
		return "", fmt.Errorf("encoding context pack: %w", err)
	}

	var b strings.Builder
	b.WriteString(systemPrompt)
	b.WriteString("\n\nPASS INSTRUCTIONS:\n")
	b.WriteString(pass.Instructions)

	if pass.PartialLabel != "" && prior != nil {
		priorJSON, err := json.Marshal(prior)
		if err != nil {
			return "", fmt.Errorf("encoding partial result: %w", err)
		}
		b.WriteString("\n\n")
		b.WriteString(pass.PartialLabel)
		b.WriteString(":\n")
		b.Write(priorJSON)
	}

	b.WriteString("\n\nCONTEXT PACK:\n")
	b.Write(packJSON)

	return b.String(), nil
}

// fallback builds the degraded result for a failed pass: the best entity
// list available so far plus a single open question describing the failure.
func (r *Runner) fallback(pass Pass, prior *mer.PartialResult, question, source string) *mer.PartialResult {
	result := &mer.PartialResult{
		OpenQuestions: []mer.OpenQuestion{{Question: question, Sources: []string{source}}},
	}
	if prior != nil {
		result.Entities = prior.Entities
	}
	return result
}
