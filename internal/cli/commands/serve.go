package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/merkit/merkit/internal/web"
)

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Expose the pipeline over HTTP.

Endpoints:
  POST /v1/mer       context pack in, MER out
  POST /v1/schema    context pack in, Prisma schema out
  POST /v1/validate  MER in, validation verdict out
  GET  /healthz      liveness check`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger(cmd)
			defer log.Sync()

			p, cfg, err := newPipeline(log)
			if err != nil {
				return err
			}

			if port <= 0 {
				port = cfg.Server.Port
			}
			addr := fmt.Sprintf("%s:%d", cfg.Server.Host, port)

			color.New(color.FgCyan, color.Bold).Printf("merkit API listening on %s\n", addr)
			return web.NewServer(p, log).ListenAndServe(addr)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "listen port (default from config)")

	return cmd
}
