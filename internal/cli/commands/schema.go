package commands

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/merkit/merkit/internal/cli/config"
	"github.com/merkit/merkit/internal/mer"
	"github.com/merkit/merkit/internal/projector/prisma"
)

// NewSchemaCommand creates the schema command
func NewSchemaCommand() *cobra.Command {
	var enrich bool

	cmd := &cobra.Command{
		Use:   "schema <mer.json> <schema.prisma>",
		Short: "Project a MER into a Prisma schema",
		Long: `Project an existing entity-relationship model into a Prisma schema file.

The projection is deterministic. With --enrich, the generated schema is
additionally passed through the completion provider for index and
constraint suggestions; enrichment failures fall back to the
deterministic output.

Examples:
  merkit schema schema/mer.json schema/schema.prisma
  merkit schema schema/mer.json schema/schema.prisma --enrich`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger(cmd)
			defer log.Sync()

			m, err := mer.LoadMER(args[0])
			if err != nil {
				return err
			}

			schema := prisma.Project(m)

			if enrich {
				cfg, err := config.Load()
				if err != nil {
					return err
				}
				client, err := newCompletionClient(cfg, log)
				if err != nil {
					return err
				}
				schema = prisma.Enrich(cmd.Context(), client, schema, log)
			}

			if err := mer.WriteText(schema, args[1]); err != nil {
				return err
			}

			color.New(color.FgGreen, color.Bold).Printf("Prisma schema: %s\n", args[1])

			return nil
		},
	}

	cmd.Flags().BoolVar(&enrich, "enrich", false, "refine the schema through the completion provider")

	return cmd
}
