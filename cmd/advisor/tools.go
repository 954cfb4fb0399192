package main

import (
	"os"

	"github.com/spf13/cobra"

	"stockadvisor/internal/bootstrap"
	"stockadvisor/internal/toolserver"
)

func newToolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "Serve the market data tools over stdio (launched by the advisor)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			c := bootstrap.NewContainer()
			defer c.Shutdown()
			if err := c.InitToolServer(ctx); err != nil {
				return err
			}

			srv := toolserver.New(c.Tools, version, c.Log)
			return srv.Serve(ctx, os.Stdin, os.Stdout)
		},
	}
}
