package imagepkg

import (
	"fmt"
	"image"

	qrcode "github.com/skip2/go-qrcode"
)

const (
	DefaultQRSize = 400
	MaxQRSize     = 2048
)

// GenerateQRPNG returns PNG bytes of a QR code for the given text.
// Sizes outside (0, MaxQRSize] fall back to DefaultQRSize.
func GenerateQRPNG(text string, size int) ([]byte, error) {
	if text == "" {
		return nil, fmt.Errorf("qr: empty text")
	}
	if size <= 0 || size > MaxQRSize {
		size = DefaultQRSize
	}
	pngBytes, err := qrcode.Encode(text, qrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("qr: %w", err)
	}
	return pngBytes, nil
}

// GenerateQRImage returns a decoded QR code, ready to be used as a logo.
func GenerateQRImage(text string, size int) (image.Image, error) {
	b, err := GenerateQRPNG(text, size)
	if err != nil {
		return nil, err
	}
	return Decode("qr.png", b)
}
