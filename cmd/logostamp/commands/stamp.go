package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/youruser/logostamp/internal/batch"
	"github.com/youruser/logostamp/internal/config"
	imagepkg "github.com/youruser/logostamp/internal/image"
	"github.com/youruser/logostamp/internal/manifest"
	"github.com/youruser/logostamp/internal/util"
)

func stampCmd(a *app) *cobra.Command {
	var (
		outDir       string
		manifestPath string
		logo         logoFlags
	)
	cmd := &cobra.Command{
		Use:   "stamp [flags] IMAGE...",
		Short: "Stamp the logo onto images and write images_with_logo.zip",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			l, err := logo.load(ctx, a.cfg)
			if err != nil {
				return err
			}
			if l == nil && a.cfg.Stamp.RequireLogo {
				// skip reading and downloading images that would never be stamped
				fmt.Fprintln(cmd.ErrOrStderr(), "nothing to do:", batch.ErrNoLogo)
				return nil
			}

			images, err := collectImages(ctx, a.cfg, manifestPath, args)
			if err != nil {
				return err
			}

			p := batch.NewPipeline(batch.Options{RequireLogo: a.cfg.Stamp.RequireLogo})
			archive, err := p.Run(ctx, batch.Selection{Images: images, Logo: l})
			if batch.NothingToDo(err) {
				fmt.Fprintln(cmd.ErrOrStderr(), "nothing to do:", err)
				return nil
			}
			if err != nil {
				return err
			}

			path := filepath.Join(outDir, archive.Name)
			if err := util.WriteFileAtomic(path, archive.Data); err != nil {
				return fmt.Errorf("writing archive: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d images\n", path, len(archive.Entries))
			return nil
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "directory to write the archive into")
	cmd.Flags().StringVar(&manifestPath, "manifest", "", "CSV file listing images (columns: source, name)")
	logo.register(cmd)
	return cmd
}

// collectImages reads the manifest entries first, then the positional files,
// keeping the order they were given in.
func collectImages(ctx context.Context, cfg *config.Config, manifestPath string, files []string) ([]batch.Input, error) {
	var images []batch.Input
	if manifestPath != "" {
		entries, err := manifest.Load(manifestPath)
		if err != nil {
			return nil, err
		}
		var fetcher *util.Fetcher
		for _, e := range entries {
			var data []byte
			if e.IsURL() {
				if fetcher == nil {
					fetcher = util.NewFetcher(cfg.Fetch.Timeout, cfg.Fetch.MaxBytes)
				}
				_, data, err = imagepkg.DownloadImage(ctx, fetcher, e.Source)
			} else {
				data, err = os.ReadFile(e.Source)
			}
			if err != nil {
				return nil, err
			}
			images = append(images, batch.Input{Name: e.Name, Data: data})
		}
	}
	for _, p := range files {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, err
		}
		images = append(images, batch.Input{Name: filepath.Base(p), Data: data})
	}
	return images, nil
}
