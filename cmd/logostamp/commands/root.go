package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/youruser/logostamp/internal/config"
)

type app struct {
	configPath string
	cfg        *config.Config
}

func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:          "logostamp",
		Short:        "Stamp a logo onto a batch of images and package them as a zip",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			a.cfg = cfg
			return nil
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to config.yaml (defaults built in)")

	root.AddCommand(stampCmd(a), watchCmd(a), serveCmd(a))
	return root
}
