// Package imageio decodes image files into the RGB grid the analysis works on.
package imageio

import (
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	"github.com/pkg/errors"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"opticalflake/internal/models"
)

// ErrEmptyImage is returned for images with no pixels
var ErrEmptyImage = errors.New("image has no pixels")

// Decode reads any registered format (png, jpeg, gif, tiff, bmp, webp)
// and returns its RGB pixels along with the detected format name
func Decode(r io.Reader) (*models.RGBImage, string, error) {
	src, format, err := image.Decode(r)
	if err != nil {
		return nil, "", errors.Wrap(err, "image decoding failed")
	}
	if src.Bounds().Empty() {
		return nil, format, ErrEmptyImage
	}
	return models.FromImage(src), format, nil
}

// Load opens and decodes an image file
func Load(path string) (*models.RGBImage, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open image %s", path)
	}
	defer file.Close()

	img, _, err := Decode(file)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load image %s", path)
	}
	return img, nil
}
