// Package batch drives the pipeline across multiple independent context
// packs described by a projects file. Packs share no mutable state, so they
// fan out across a bounded worker group while each pack's own pipeline
// stays strictly sequential.
package batch

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/merkit/merkit/internal/mer"
	"github.com/merkit/merkit/internal/pipeline"
	"github.com/merkit/merkit/internal/projector/prisma"
)

// Project is one batch entry: a context pack plus its output paths.
type Project struct {
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	ContextPack  string `json:"context_pack"`
	MEROutput    string `json:"mer_output"`
	SchemaOutput string `json:"schema_output,omitempty"`
}

// Config is the decoded projects file.
type Config struct {
	Projects []Project `json:"projects"`
}

// LoadConfig reads and decodes a projects file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading projects config %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing projects config %s: %w", path, err)
	}

	if len(cfg.Projects) == 0 {
		return nil, fmt.Errorf("projects config %s lists no projects", path)
	}
	for i, p := range cfg.Projects {
		if p.Name == "" {
			return nil, fmt.Errorf("projects config %s: project %d has no name", path, i)
		}
		if p.ContextPack == "" || p.MEROutput == "" {
			return nil, fmt.Errorf("projects config %s: project %q needs context_pack and mer_output", path, p.Name)
		}
	}

	return &cfg, nil
}

// Result records one project's outcome.
type Result struct {
	Project Project
	Err     error
}

// Summary aggregates a whole batch run.
type Summary struct {
	Results []Result
}

// Failed counts projects that did not complete.
func (s *Summary) Failed() int {
	n := 0
	for _, r := range s.Results {
		if r.Err != nil {
			n++
		}
	}
	return n
}

// Succeeded counts projects that completed.
func (s *Summary) Succeeded() int {
	return len(s.Results) - s.Failed()
}

// Processor runs the pipeline for every project in a batch.
type Processor struct {
	pipeline    *pipeline.Pipeline
	concurrency int
	log         *zap.Logger
}

// NewProcessor creates a batch processor. Concurrency below 1 is treated
// as sequential.
func NewProcessor(p *pipeline.Pipeline, concurrency int, log *zap.Logger) *Processor {
	if concurrency < 1 {
		concurrency = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Processor{pipeline: p, concurrency: concurrency, log: log}
}

// Run processes every project, continuing past per-project failures. The
// summary preserves the projects-file order regardless of completion order.
func (b *Processor) Run(ctx context.Context, cfg *Config) *Summary {
	results := make([]Result, len(cfg.Projects))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)

	for i, project := range cfg.Projects {
		g.Go(func() error {
			err := b.runProject(gctx, project)
			if err != nil {
				b.log.Error("project failed",
					zap.String("project", project.Name),
					zap.Error(err))
			} else {
				b.log.Info("project completed", zap.String("project", project.Name))
			}
			results[i] = Result{Project: project, Err: err}
			// Per-project failures never cancel the group.
			return nil
		})
	}

	g.Wait()
	return &Summary{Results: results}
}

func (b *Processor) runProject(ctx context.Context, project Project) error {
	pack, err := mer.LoadContextPack(project.ContextPack)
	if err != nil {
		return err
	}

	m, err := b.pipeline.GenerateMER(ctx, pack)
	if err != nil {
		return fmt.Errorf("generating MER for %s: %w", project.Name, err)
	}

	if err := mer.WriteMER(m, project.MEROutput); err != nil {
		return err
	}

	if project.SchemaOutput != "" {
		if err := mer.WriteText(prisma.Project(m), project.SchemaOutput); err != nil {
			return err
		}
	}

	return nil
}
