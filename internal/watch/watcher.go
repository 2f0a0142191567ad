// Package watch stamps images as they appear in a directory.
package watch

import (
	"context"
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	imagepkg "github.com/youruser/logostamp/internal/image"
	"github.com/youruser/logostamp/internal/util"
)

const DefaultDebounce = 500 * time.Millisecond

var imageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
}

// IsImageFile reports whether name looks like an image we should stamp.
// Hidden and temp files are skipped.
func IsImageFile(name string) bool {
	base := filepath.Base(name)
	if base == "" || base[0] == '.' || strings.HasSuffix(base, "~") {
		return false
	}
	return imageExts[strings.ToLower(filepath.Ext(base))]
}

type Options struct {
	InDir    string
	OutDir   string
	Logo     image.Image
	Debounce time.Duration
	// Existing stamps the images already in InDir before watching.
	Existing bool
}

// Watcher monitors InDir and writes a stamped copy of every new or modified
// image into OutDir under the same name.
type Watcher struct {
	opts    Options
	watcher *fsnotify.Watcher

	// Processed is called after each file, mainly for tests.
	Processed func(path string, err error)
}

func New(opts Options) (*Watcher, error) {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	in, err := filepath.Abs(opts.InDir)
	if err != nil {
		return nil, err
	}
	out, err := filepath.Abs(opts.OutDir)
	if err != nil {
		return nil, err
	}
	if in == out {
		return nil, fmt.Errorf("output directory must differ from the watched directory")
	}
	opts.InDir, opts.OutDir = in, out

	if err := util.EnsureDir(opts.OutDir); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	return &Watcher{opts: opts, watcher: fsWatcher}, nil
}

// ProcessFile stamps one file into the output directory.
func (w *Watcher) ProcessFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	name := filepath.Base(path)
	out, err := imagepkg.Stamp(name, data, w.opts.Logo)
	if err != nil {
		return err
	}
	return util.WriteFileAtomic(filepath.Join(w.opts.OutDir, name), out)
}

// Run watches until ctx is done. Files are stamped one at a time.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	if err := w.watcher.Add(w.opts.InDir); err != nil {
		return fmt.Errorf("failed to watch folder %s: %w", w.opts.InDir, err)
	}
	log.Printf("watching folder: %s", w.opts.InDir)

	if w.opts.Existing {
		if err := w.processExisting(ctx); err != nil {
			return err
		}
	}

	deb := newDebouncer(w.opts.Debounce)
	defer deb.stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !IsImageFile(event.Name) {
				continue
			}
			// Debounce: editors and copies emit several writes per file
			deb.arm(ctx, event.Name)

		case f := <-deb.ready:
			if deb.take(f) {
				w.handle(f.path)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("watcher error: %v", err)
		}
	}
}

func (w *Watcher) processExisting(ctx context.Context) error {
	entries, err := os.ReadDir(w.opts.InDir)
	if err != nil {
		return err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && IsImageFile(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	for _, n := range names {
		if ctx.Err() != nil {
			return nil
		}
		w.handle(filepath.Join(w.opts.InDir, n))
	}
	return nil
}

func (w *Watcher) handle(path string) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return
	}
	err := w.ProcessFile(path)
	if err != nil {
		log.Printf("failed to stamp %s: %v", path, err)
	} else {
		log.Printf("stamped %s", filepath.Base(path))
	}
	if w.Processed != nil {
		w.Processed(path, err)
	}
}
