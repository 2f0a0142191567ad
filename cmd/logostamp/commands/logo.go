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
	"github.com/youruser/logostamp/internal/util"
)

type logoFlags struct {
	file string
	url  string
	qr   string
}

func (f *logoFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.file, "logo", "", "logo image file")
	cmd.Flags().StringVar(&f.url, "logo-url", "", "download the logo from this URL")
	cmd.Flags().StringVar(&f.qr, "logo-qr", "", "use a QR code of this text as the logo")
	cmd.MarkFlagsMutuallyExclusive("logo", "logo-url", "logo-qr")
}

// load returns nil when no logo flag was given.
func (f *logoFlags) load(ctx context.Context, cfg *config.Config) (*batch.Logo, error) {
	switch {
	case f.file != "":
		data, err := os.ReadFile(f.file)
		if err != nil {
			return nil, fmt.Errorf("reading logo: %w", err)
		}
		return batch.NewLogo(batch.Input{Name: filepath.Base(f.file), Data: data})
	case f.url != "":
		fetcher := util.NewFetcher(cfg.Fetch.Timeout, cfg.Fetch.MaxBytes)
		img, err := imagepkg.DownloadLogo(ctx, fetcher, f.url)
		if err != nil {
			return nil, err
		}
		return &batch.Logo{Name: imagepkg.NameFromURL(f.url), Image: img}, nil
	case f.qr != "":
		img, err := imagepkg.GenerateQRImage(f.qr, cfg.Stamp.QRSize)
		if err != nil {
			return nil, err
		}
		return &batch.Logo{Name: "qr.png", Image: img}, nil
	}
	return nil, nil
}
