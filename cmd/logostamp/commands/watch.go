package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/youruser/logostamp/internal/watch"
)

func watchCmd(a *app) *cobra.Command {
	var (
		outDir   string
		existing bool
		debounce time.Duration
		logo     logoFlags
	)
	cmd := &cobra.Command{
		Use:   "watch [flags] DIR",
		Short: "Stamp images as they are added to DIR",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			l, err := logo.load(cmd.Context(), a.cfg)
			if err != nil {
				return err
			}
			if l == nil && a.cfg.Stamp.RequireLogo {
				return fmt.Errorf("a logo is required: use --logo, --logo-url or --logo-qr")
			}

			opts := watch.Options{
				InDir:    args[0],
				OutDir:   outDir,
				Debounce: debounce,
				Existing: existing,
			}
			if l != nil {
				opts.Logo = l.Image
			}
			w, err := watch.New(opts)
			if err != nil {
				return err
			}
			return w.Run(cmd.Context())
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", "stamped", "directory to write stamped images into")
	cmd.Flags().BoolVar(&existing, "existing", false, "also stamp images already in DIR")
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "wait this long after the last write before stamping")
	logo.register(cmd)
	return cmd
}
