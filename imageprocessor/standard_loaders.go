package imageprocessor

import (
	"fmt"
	"image"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// StandardImageLoader decodes the formats the Go image packages know
type StandardImageLoader struct {
	BaseImageLoader

	// AutoOrient rotates JPEG images according to their EXIF orientation tag
	AutoOrient bool
}

// NewStandardImageLoader creates a new loader for standard image formats
func NewStandardImageLoader(autoOrient bool) *StandardImageLoader {
	return &StandardImageLoader{
		BaseImageLoader: BaseImageLoader{
			SupportedFormats: []FormatType{
				FormatJPEG,
				FormatPNG,
				FormatGIF,
				FormatBMP,
				FormatTIFF,
				FormatWEBP,
			},
		},
		AutoOrient: autoOrient,
	}
}

// LoadImage loads a standard image format
func (l *StandardImageLoader) LoadImage(path string) (image.Image, error) {
	if !hasFileContent(path) {
		return nil, newImageLoadError("file is missing or empty", path)
	}

	img, err := imaging.Open(path, imaging.AutoOrientation(l.AutoOrient))
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return img, nil
}
