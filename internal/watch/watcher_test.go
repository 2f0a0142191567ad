package watch

import (
	"context"
	"image/color"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	imagepkg "github.com/youruser/logostamp/internal/image"
)

var (
	blue = color.NRGBA{B: 0xff, A: 0xff}
	red  = color.NRGBA{R: 0xff, A: 0xff}
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	b, err := imagepkg.EncodePNG(imaging.New(w, h, blue))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o644))
}

func TestIsImageFile(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"a.png", true},
		{"b.JPG", true},
		{"/x/y/c.jpeg", true},
		{"d.tiff", true},
		{".hidden.png", false},
		{"backup.png~", false},
		{"notes.txt", false},
		{"noext", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsImageFile(tt.name), tt.name)
	}
}

func TestNewRejectsSameDir(t *testing.T) {
	dir := t.TempDir()
	_, err := New(Options{InDir: dir, OutDir: dir})
	assert.Error(t, err)
}

func TestProcessFile(t *testing.T) {
	in, out := t.TempDir(), filepath.Join(t.TempDir(), "out")
	w, err := New(Options{InDir: in, OutDir: out, Logo: imaging.New(200, 100, red)})
	require.NoError(t, err)

	src := filepath.Join(in, "A.png")
	writePNG(t, src, 800, 600)
	require.NoError(t, w.ProcessFile(src))

	data, err := os.ReadFile(filepath.Join(out, "A.png"))
	require.NoError(t, err)
	img, err := imagepkg.Decode("A.png", data)
	require.NoError(t, err)
	n := imaging.Clone(img)
	assert.Equal(t, red, n.NRGBAAt(10, 10))
	assert.Equal(t, blue, n.NRGBAAt(130, 10))

	bad := filepath.Join(in, "bad.png")
	require.NoError(t, os.WriteFile(bad, []byte("junk"), 0o644))
	assert.Error(t, w.ProcessFile(bad))
	_, err = os.Stat(filepath.Join(out, "bad.png"))
	assert.True(t, os.IsNotExist(err))
}

func TestRunStampsNewAndExistingFiles(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	writePNG(t, filepath.Join(in, "existing.png"), 100, 100)

	w, err := New(Options{
		InDir:    in,
		OutDir:   out,
		Logo:     imaging.New(10, 10, red),
		Debounce: 20 * time.Millisecond,
		Existing: true,
	})
	require.NoError(t, err)

	var mu sync.Mutex
	seen := map[string]error{}
	w.Processed = func(path string, err error) {
		mu.Lock()
		defer mu.Unlock()
		seen[filepath.Base(path)] = err
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		_, ok := seen["existing.png"]
		return ok
	}, 5*time.Second, 10*time.Millisecond)

	writePNG(t, filepath.Join(in, "new.png"), 100, 100)
	require.NoError(t, os.WriteFile(filepath.Join(in, "ignored.txt"), []byte("x"), 0o644))

	require.Eventually(t, func() bool {
		_, err := os.Stat(filepath.Join(out, "new.png"))
		return err == nil
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)

	mu.Lock()
	defer mu.Unlock()
	assert.NoError(t, seen["existing.png"])
	assert.NoError(t, seen["new.png"])
	_, ok := seen["ignored.txt"]
	assert.False(t, ok)
	_, err = os.Stat(filepath.Join(out, "ignored.txt"))
	assert.True(t, os.IsNotExist(err))
}
