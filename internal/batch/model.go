package batch

import (
	"image"

	imagepkg "github.com/youruser/logostamp/internal/image"
)

// Input is one selected file, accepted as-is.
type Input struct {
	Name string
	Data []byte
}

// Logo is a decoded logo, shared read-only by every compositing call.
type Logo struct {
	Name  string
	Image image.Image
}

// NewLogo decodes in once so it can be reused for a whole batch.
func NewLogo(in Input) (*Logo, error) {
	img, err := imagepkg.Decode(in.Name, in.Data)
	if err != nil {
		return nil, err
	}
	return &Logo{Name: in.Name, Image: img}, nil
}

// Selection is the snapshot a pipeline run operates on.
type Selection struct {
	Images []Input
	Logo   *Logo
}

// Result is one stamped image.
type Result struct {
	Name string
	Data []byte
}

// Archive is the packaged output of one run.
type Archive struct {
	Name    string
	Data    []byte
	Entries []string
}
