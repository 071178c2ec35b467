package commands

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/merkit/merkit/internal/mer"
	"github.com/merkit/merkit/internal/pipeline"
)

// NewValidateCommand creates the validate command
func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <mer.json>",
		Short: "Validate an entity-relationship model",
		Long: `Check that a MER file satisfies the structural invariants required for
projection: well-formed sequences and a primary key on every entity.

Advisory checks (dangling relationship endpoints, duplicate attribute
names) are printed as warnings and do not fail the command.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := mer.LoadMER(args[0])
			if err != nil {
				return err
			}

			if err := pipeline.Validate(m); err != nil {
				return err
			}

			for _, warning := range pipeline.Lint(m) {
				color.Yellow("warning: %s", warning)
			}

			color.New(color.FgGreen, color.Bold).Printf("MER valid: %d entities, %d relationships\n",
				len(m.Entities), len(m.Relationships))
			return nil
		},
	}
}
