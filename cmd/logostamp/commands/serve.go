package commands

import (
	"github.com/spf13/cobra"

	"github.com/youruser/logostamp/internal/api"
)

func serveCmd(a *app) *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP service with the upload page",
		RunE: func(cmd *cobra.Command, args []string) error {
			if port != "" {
				a.cfg.Server.Port = port
				if err := a.cfg.Validate(); err != nil {
					return err
				}
			}
			return api.Serve(cmd.Context(), a.cfg)
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "listen port (overrides config and PORT)")
	return cmd
}
