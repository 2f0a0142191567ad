package imagepkg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateQRImage(t *testing.T) {
	img, err := GenerateQRImage("https://example.com", 256)
	require.NoError(t, err)
	assert.Equal(t, 256, img.Bounds().Dx())
	assert.Equal(t, 256, img.Bounds().Dy())
}

func TestGenerateQRPNGDefaultsSize(t *testing.T) {
	b, err := GenerateQRPNG("hello", -1)
	require.NoError(t, err)
	img, err := Decode("qr.png", b)
	require.NoError(t, err)
	assert.Equal(t, DefaultQRSize, img.Bounds().Dx())
}

func TestGenerateQRPNGEmptyText(t *testing.T) {
	_, err := GenerateQRPNG("", 100)
	assert.Error(t, err)
}
