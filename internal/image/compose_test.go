package imagepkg

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	blue = color.NRGBA{R: 0, G: 0, B: 0xff, A: 0xff}
	red  = color.NRGBA{R: 0xff, G: 0, B: 0, A: 0xff}
)

func solidPNG(t *testing.T, w, h int, c color.NRGBA) []byte {
	t.Helper()
	b, err := EncodePNG(imaging.New(w, h, c))
	require.NoError(t, err)
	return b
}

func TestLogoSize(t *testing.T) {
	tests := []struct {
		name                       string
		baseW, baseH, logoW, logoH int
		wantW, wantH               int
	}{
		{"width bound", 800, 600, 200, 100, 120, 60},
		{"width bound smaller", 400, 300, 200, 100, 60, 30},
		{"height bound", 600, 800, 100, 200, 60, 120},
		{"square", 1000, 1000, 50, 50, 150, 150},
		{"upscales small logo", 1000, 1000, 10, 5, 150, 75},
		{"tiny base", 6, 6, 100, 100, 0, 0},
		{"zero logo", 800, 600, 0, 100, 0, 0},
		{"zero base", 0, 600, 100, 100, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, h := LogoSize(tt.baseW, tt.baseH, tt.logoW, tt.logoH)
			assert.Equal(t, tt.wantW, w)
			assert.Equal(t, tt.wantH, h)
		})
	}
}

func TestLogoSizeBoundsAndAspect(t *testing.T) {
	for baseW := 20; baseW <= 2000; baseW += 137 {
		for baseH := 20; baseH <= 2000; baseH += 211 {
			for _, logo := range [][2]int{{200, 100}, {100, 200}, {37, 91}, {512, 512}, {3000, 40}} {
				w, h := LogoSize(baseW, baseH, logo[0], logo[1])
				assert.LessOrEqual(t, float64(w), 0.15*float64(baseW)+1e-9)
				assert.LessOrEqual(t, float64(h), 0.15*float64(baseH)+1e-9)
				if w < 1 || h < 1 {
					continue
				}
				// flooring one side loses at most a pixel of aspect
				want := float64(logo[0]) / float64(logo[1])
				lo := float64(w) / float64(h+1)
				hi := float64(w+1) / float64(h)
				assert.True(t, want >= lo && want <= hi,
					"aspect %v outside [%v, %v] for base %dx%d logo %v", want, lo, hi, baseW, baseH, logo)
			}
		}
	}
}

func TestCompositeScenario(t *testing.T) {
	logo := imaging.New(200, 100, red)

	tests := []struct {
		w, h         int
		logoW, logoH int
	}{
		{800, 600, 120, 60},
		{400, 300, 60, 30},
	}
	for _, tt := range tests {
		base := imaging.New(tt.w, tt.h, blue)
		out := Composite(base, logo)

		require.Equal(t, tt.w, out.Bounds().Dx())
		require.Equal(t, tt.h, out.Bounds().Dy())
		assert.Equal(t, blue, out.NRGBAAt(0, 0))
		assert.Equal(t, blue, out.NRGBAAt(9, 9))
		assert.Equal(t, red, out.NRGBAAt(10, 10))
		assert.Equal(t, red, out.NRGBAAt(10+tt.logoW/2, 10+tt.logoH/2))
		assert.Equal(t, red, out.NRGBAAt(10+tt.logoW-1, 10+tt.logoH-1))
		assert.Equal(t, blue, out.NRGBAAt(10+tt.logoW, 10+tt.logoH/2))
		assert.Equal(t, blue, out.NRGBAAt(10+tt.logoW/2, 10+tt.logoH))
		assert.Equal(t, blue, out.NRGBAAt(tt.w-1, tt.h-1))
	}
}

func TestCompositeDoesNotMutateBase(t *testing.T) {
	base := imaging.New(100, 100, blue)
	Composite(base, imaging.New(10, 10, red))
	assert.Equal(t, blue, base.NRGBAAt(20, 20))
}

func TestCompositeWithoutLogo(t *testing.T) {
	base := imaging.New(50, 40, blue)
	out := Composite(base, nil)
	assert.Equal(t, base.Pix, out.Pix)
}

func TestCompositeBlendsTransparentLogo(t *testing.T) {
	base := imaging.New(200, 200, blue)
	logo := imaging.New(20, 20, color.NRGBA{})
	out := Composite(base, logo)
	assert.Equal(t, blue, out.NRGBAAt(15, 15))
}

func TestCompositeSmallBaseClipsLogo(t *testing.T) {
	// 15% of 8px is a 1px logo, anchored at y=10 below the bottom edge.
	base := imaging.New(200, 8, blue)
	out := Composite(base, imaging.New(10, 10, red))

	w, h := LogoSize(200, 8, 10, 10)
	assert.Equal(t, 1, w)
	assert.Equal(t, 1, h)
	require.Equal(t, image.Rect(0, 0, 200, 8), out.Bounds())
	assert.Equal(t, base.Pix, out.Pix)
}

func TestCompositeNonZeroOrigin(t *testing.T) {
	src := image.NewNRGBA(image.Rect(5, 5, 105, 105))
	for i := 0; i < len(src.Pix); i += 4 {
		copy(src.Pix[i:i+4], []byte{0, 0, 0xff, 0xff})
	}
	out := Composite(src, imaging.New(10, 10, red))
	assert.Equal(t, image.Rect(0, 0, 100, 100), out.Bounds())
	assert.Equal(t, red, out.NRGBAAt(12, 12))
}

func TestStampRoundTrip(t *testing.T) {
	data := solidPNG(t, 400, 300, blue)
	logo := imaging.New(200, 100, red)

	out, err := Stamp("B.png", data, logo)
	require.NoError(t, err)

	img, err := Decode("B.png", out)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 400, 300), img.Bounds())
	assert.Equal(t, red, color.NRGBAModel.Convert(img.At(20, 20)))
	assert.Equal(t, blue, color.NRGBAModel.Convert(img.At(200, 200)))
}

func TestStampAcceptsJPEG(t *testing.T) {
	buf := new(bytes.Buffer)
	require.NoError(t, jpeg.Encode(buf, imaging.New(64, 48, blue), nil))

	out, err := Stamp("photo.jpg", buf.Bytes(), nil)
	require.NoError(t, err)
	img, err := Decode("photo.jpg", out)
	require.NoError(t, err)
	assert.Equal(t, 64, img.Bounds().Dx())
}

func TestStampIsDeterministic(t *testing.T) {
	data := solidPNG(t, 120, 90, blue)
	logo := imaging.New(30, 30, red)

	a, err := Stamp("a.png", data, logo)
	require.NoError(t, err)
	b, err := Stamp("a.png", data, logo)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestStampDecodeError(t *testing.T) {
	_, err := Stamp("broken.png", []byte("definitely not an image"), nil)
	require.Error(t, err)

	var de *DecodeError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "broken.png", de.Name)
	assert.Contains(t, err.Error(), "broken.png")
}

func TestDecodeEmpty(t *testing.T) {
	_, err := Decode("empty.png", nil)
	var de *DecodeError
	assert.True(t, errors.As(err, &de))
}
