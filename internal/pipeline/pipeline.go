package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/merkit/merkit/internal/llm"
	"github.com/merkit/merkit/internal/mer"
)

// Pipeline runs the full inference-merge-validate sequence for one context
// pack. A single pipeline value is safe to reuse across packs; each run is
// internally sequential because every pass consumes the previous pass's
// output.
type Pipeline struct {
	runner *Runner
	log    *zap.Logger
	now    func() time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithRetryPolicy overrides the per-pass completion retry bound.
func WithRetryPolicy(retry RetryPolicy) Option {
	return func(p *Pipeline) {
		p.runner.retry = retry
	}
}

// New creates a pipeline around an injected completion client.
func New(client llm.Client, log *zap.Logger, opts ...Option) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	p := &Pipeline{
		runner: NewRunner(client, DefaultRetryPolicy, log),
		log:    log,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// GenerateMER runs the three inference passes in order, merges their
// results, normalizes naming against the pack's glossary, and validates
// the model. The returned error is either context cancellation or a fatal
// ValidationError; completion-service failures surface as open questions
// in the result instead.
func (p *Pipeline) GenerateMER(ctx context.Context, pack *mer.ContextPack) (*mer.MER, error) {
	if pack == nil {
		return nil, fmt.Errorf("context pack is nil")
	}

	entities, err := p.runner.Run(ctx, EntitiesPass, nil, pack)
	if err != nil {
		return nil, err
	}

	attributes, err := p.runner.Run(ctx, AttributesPass, entities, pack)
	if err != nil {
		return nil, err
	}

	relationships, err := p.runner.Run(ctx, RelationshipsPass, attributes, pack)
	if err != nil {
		return nil, err
	}

	m := Merge(entities, attributes, relationships, pack)
	Normalize(m, pack.Documents.Glossary)

	if err := Validate(m); err != nil {
		return nil, fmt.Errorf("validating merged model: %w", err)
	}

	m.Meta.RunID = uuid.NewString()
	m.Meta.GeneratedAt = p.now().UTC().Format(time.RFC3339)

	p.log.Info("generated MER",
		zap.String("run_id", m.Meta.RunID),
		zap.Int("entities", len(m.Entities)),
		zap.Int("relationships", len(m.Relationships)),
		zap.Int("enums", len(m.Enums)),
		zap.Int("open_questions", len(m.Meta.OpenQuestions)))

	return m, nil
}
