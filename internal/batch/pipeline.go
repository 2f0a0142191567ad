package batch

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/youruser/logostamp/internal/archive"
	imagepkg "github.com/youruser/logostamp/internal/image"
)

var (
	ErrNoImages = errors.New("no images selected")
	ErrNoLogo   = errors.New("no logo selected")
)

// NothingToDo reports whether err is a missing-selection outcome that callers
// should treat as a silent no-op.
func NothingToDo(err error) bool {
	return errors.Is(err, ErrNoImages) || errors.Is(err, ErrNoLogo)
}

type Options struct {
	// RequireLogo makes a run without a logo a no-op instead of archiving
	// plain re-encodings.
	RequireLogo bool
}

type Pipeline struct {
	opts Options
}

func NewPipeline(opts Options) *Pipeline {
	return &Pipeline{opts: opts}
}

// Composite stamps a single input. A nil logo re-encodes the input unchanged.
func (p *Pipeline) Composite(in Input, logo *Logo) (Result, error) {
	data, err := imagepkg.Stamp(in.Name, in.Data, logoImage(logo))
	if err != nil {
		return Result{}, err
	}
	return Result{Name: in.Name, Data: data}, nil
}

// Run composites every image of sel in order, one at a time, and packs the
// results into one archive. The first failure aborts the run.
func (p *Pipeline) Run(ctx context.Context, sel Selection) (*Archive, error) {
	if len(sel.Images) == 0 {
		return nil, ErrNoImages
	}
	if sel.Logo == nil && p.opts.RequireLogo {
		return nil, ErrNoLogo
	}

	entries := make([]archive.Entry, 0, len(sel.Images))
	names := make([]string, 0, len(sel.Images))
	for i, in := range sel.Images {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("stopped before image %d of %d: %w", i+1, len(sel.Images), err)
		}
		res, err := p.Composite(in, sel.Logo)
		if err != nil {
			return nil, err
		}
		entries = append(entries, archive.Entry{Name: res.Name, Data: res.Data})
		names = append(names, res.Name)
	}

	data, err := archive.Bytes(entries)
	if err != nil {
		return nil, err
	}
	return &Archive{Name: archive.FileName, Data: data, Entries: names}, nil
}

func logoImage(logo *Logo) image.Image {
	if logo == nil {
		return nil
	}
	return logo.Image
}
