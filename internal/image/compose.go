package imagepkg

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Logo placement. The logo is always anchored at LogoOffset and never
// exceeds LogoMaxPercent of the base image in either dimension.
const (
	LogoMaxPercent = 15
	LogoMargin     = 10
)

var LogoOffset = image.Pt(LogoMargin, LogoMargin)

// LogoSize returns the size a logo of logoW x logoH is drawn at on a base of
// baseW x baseH: uniformly scaled so it fits inside 15% of the base in both
// dimensions. Sizes are floored so the bound holds exactly; a zero result
// means the logo would be smaller than a pixel.
func LogoSize(baseW, baseH, logoW, logoH int) (w, h int) {
	if baseW <= 0 || baseH <= 0 || logoW <= 0 || logoH <= 0 {
		return 0, 0
	}
	bw, bh := int64(baseW), int64(baseH)
	lw, lh := int64(logoW), int64(logoH)

	// ratio = min(0.15*bw/lw, 0.15*bh/lh), compared without floats
	if bw*lh <= bh*lw {
		w = int(LogoMaxPercent * bw / 100)
		h = int(LogoMaxPercent * bw * lh / (100 * lw))
	} else {
		h = int(LogoMaxPercent * bh / 100)
		w = int(LogoMaxPercent * bh * lw / (100 * lh))
	}
	return w, h
}

// Composite draws base unscaled onto a fresh raster of the same size and
// blends the scaled logo over it at LogoOffset. A nil logo yields a plain
// copy of base. Parts of the logo falling outside the raster are clipped.
func Composite(base, logo image.Image) *image.NRGBA {
	canvas := imaging.Clone(base)
	if logo == nil {
		return canvas
	}

	b := canvas.Bounds()
	lb := logo.Bounds()
	w, h := LogoSize(b.Dx(), b.Dy(), lb.Dx(), lb.Dy())
	if w < 1 || h < 1 {
		return canvas
	}
	scaled := imaging.Resize(logo, w, h, imaging.Lanczos)
	return imaging.Overlay(canvas, scaled, LogoOffset, 1.0)
}

// EncodePNG encodes img with the fixed output encoding.
func EncodePNG(img image.Image) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := imaging.Encode(buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encoding png: %w", err)
	}
	if buf.Len() == 0 {
		return nil, fmt.Errorf("encoding png: empty output")
	}
	return buf.Bytes(), nil
}

// Stamp decodes the named image, composites logo onto it and returns the
// PNG encoding of the result.
func Stamp(name string, data []byte, logo image.Image) ([]byte, error) {
	base, err := Decode(name, data)
	if err != nil {
		return nil, err
	}
	out, err := EncodePNG(Composite(base, logo))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}
