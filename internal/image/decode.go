package imagepkg

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// DecodeError reports an input that could not be decoded as an image.
type DecodeError struct {
	Name string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding %s: %v", e.Name, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Decode decodes any format registered with imaging (png, jpeg, gif, bmp,
// tiff), applying the EXIF orientation so dimensions match what a browser
// would render.
func Decode(name string, data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, &DecodeError{Name: name, Err: fmt.Errorf("empty file")}
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, &DecodeError{Name: name, Err: err}
	}
	return img, nil
}
