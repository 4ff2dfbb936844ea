package media

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"os"

	"github.com/disintegration/imaging"

	"media-indexer/internal/logging"
)

// Thumbnailer renders bounded JPEG thumbnails of indexed images.
type Thumbnailer struct {
	size int
}

// NewThumbnailer returns a Thumbnailer whose output fits inside a
// size x size box, preserving aspect ratio.
func NewThumbnailer(size int) *Thumbnailer {
	if size <= 0 {
		size = 200
	}
	return &Thumbnailer{size: size}
}

// Size returns the bounding box edge in pixels.
func (t *Thumbnailer) Size() int {
	return t.size
}

// Render decodes the image at path and returns thumbnail JPEG bytes.
func (t *Thumbnailer) Render(path string) ([]byte, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("file not accessible: %w", err)
	}

	img, err := t.load(path)
	if err != nil {
		return nil, fmt.Errorf("rendering thumbnail for %s: %w", path, err)
	}

	thumb := imaging.Fit(img, t.size, t.size, imaging.Lanczos)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: 80}); err != nil {
		return nil, fmt.Errorf("encoding thumbnail for %s: %w", path, err)
	}
	return buf.Bytes(), nil
}

func (t *Thumbnailer) load(path string) (image.Image, error) {
	if VipsAvailable() {
		img, err := loadWithVips(path, t.size, t.size)
		if err == nil {
			return img, nil
		}
		logging.Debug("vips decode failed for %s: %v, falling back", path, err)
	}

	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err == nil {
		return img, nil
	}

	// imaging only handles a few formats; the registered stdlib and
	// webp decoders cover the rest.
	f, openErr := os.Open(path)
	if openErr != nil {
		return nil, openErr
	}
	defer f.Close()

	img, _, decodeErr := image.Decode(f)
	if decodeErr != nil {
		return nil, fmt.Errorf("all decoders failed: %w", err)
	}
	return img, nil
}
