package media

import (
	"fmt"
	"image"
	"os"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"media-indexer/internal/mediatypes"
)

// Info describes a probed image file.
type Info struct {
	Width  int
	Height int
	Format string
}

// Probe reads just enough of the file to determine its pixel
// dimensions and format. It never decodes the full image.
func Probe(path string) (*Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		// Undecodable image: fall back to the extension so the record
		// still carries a format, with zero dimensions.
		ext := mediatypes.Ext(path)
		if known := mediatypes.Format(ext); known != "" {
			return &Info{Format: known}, nil
		}
		return nil, fmt.Errorf("probing %s: %w", path, err)
	}

	return &Info{Width: cfg.Width, Height: cfg.Height, Format: format}, nil
}
