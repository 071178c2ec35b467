package commands

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/merkit/merkit/internal/mer"
	"github.com/merkit/merkit/internal/projector/prisma"
)

// NewGenerateCommand creates the generate command
func NewGenerateCommand() *cobra.Command {
	var schemaOut string

	cmd := &cobra.Command{
		Use:     "generate <context-pack.json> <mer-out.json>",
		Aliases: []string{"mer"},
		Short:   "Generate a MER from a context pack",
		Long: `Run the inference pipeline over a context pack and write the merged
entity-relationship model.

The three inference passes (entities, attributes, relationships) run
sequentially against the configured completion provider; completion
failures degrade to open questions in the output instead of aborting.

Examples:
  merkit generate context/context-pack.json schema/mer.json
  merkit generate context/context-pack.json schema/mer.json --schema schema/schema.prisma`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger(cmd)
			defer log.Sync()

			p, _, err := newPipeline(log)
			if err != nil {
				return err
			}

			pack, err := mer.LoadContextPack(args[0])
			if err != nil {
				return err
			}

			m, err := p.GenerateMER(cmd.Context(), pack)
			if err != nil {
				return err
			}

			if err := mer.WriteMER(m, args[1]); err != nil {
				return err
			}

			successColor := color.New(color.FgGreen, color.Bold)
			infoColor := color.New(color.FgCyan)

			successColor.Printf("MER generated: %s\n", args[1])
			infoColor.Printf("  entities: %d, relationships: %d, enums: %d\n",
				len(m.Entities), len(m.Relationships), len(m.Enums))
			if n := len(m.Meta.OpenQuestions); n > 0 {
				color.Yellow("  open questions: %d (review them in the output)", n)
			}

			if schemaOut != "" {
				if err := mer.WriteText(prisma.Project(m), schemaOut); err != nil {
					return err
				}
				successColor.Printf("Prisma schema: %s\n", schemaOut)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&schemaOut, "schema", "", "also project the model and write the Prisma schema here")

	return cmd
}
