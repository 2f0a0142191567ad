package imagepkg

import (
	"context"
	"image"
	"net/url"
	"path"
	"strings"

	"github.com/youruser/logostamp/internal/util"
)

// DownloadImage downloads an image from URL and returns its file name and
// raw bytes. The name is taken from the last URL path segment.
func DownloadImage(ctx context.Context, fetcher *util.Fetcher, rawURL string) (string, []byte, error) {
	body, err := fetcher.GetBytes(ctx, rawURL)
	if err != nil {
		return "", nil, err
	}
	return NameFromURL(rawURL), body, nil
}

// DownloadLogo downloads and decodes a logo image.
func DownloadLogo(ctx context.Context, fetcher *util.Fetcher, rawURL string) (image.Image, error) {
	name, body, err := DownloadImage(ctx, fetcher, rawURL)
	if err != nil {
		return nil, err
	}
	return Decode(name, body)
}

// NameFromURL returns the base name of the URL path, or "image.png" when the
// path has none.
func NameFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "image.png"
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" || strings.TrimSpace(name) == "" {
		return "image.png"
	}
	return name
}
