package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/merkit/merkit/internal/batch"
)

// NewBatchCommand creates the batch command
func NewBatchCommand() *cobra.Command {
	var concurrency int

	cmd := &cobra.Command{
		Use:   "batch <projects.json>",
		Short: "Run the pipeline over multiple projects",
		Long: `Process every project listed in a batch configuration file. Each project
names its context pack, MER output path, and optionally a Prisma schema
output path.

Projects run in parallel up to the configured concurrency; one project
failing does not stop the others.

Example:
  merkit batch projects.json --concurrency 4`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger(cmd)
			defer log.Sync()

			p, cfg, err := newPipeline(log)
			if err != nil {
				return err
			}

			batchCfg, err := batch.LoadConfig(args[0])
			if err != nil {
				return err
			}

			if concurrency <= 0 {
				concurrency = cfg.Batch.Concurrency
			}

			proc := batch.NewProcessor(p, concurrency, log)
			summary := proc.Run(cmd.Context(), batchCfg)

			for _, res := range summary.Results {
				if res.Err != nil {
					color.Red("✗ %s: %v", res.Project.Name, res.Err)
				} else {
					color.Green("✓ %s", res.Project.Name)
				}
			}

			fmt.Printf("\n%d succeeded, %d failed\n", summary.Succeeded(), summary.Failed())
			if failed := summary.Failed(); failed > 0 {
				return fmt.Errorf("%d of %d projects failed", failed, len(summary.Results))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "maximum projects processed in parallel (default from config)")

	return cmd
}
