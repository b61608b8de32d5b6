package imageprocessor

import (
	"image"
	"os"
)

// ImageLoader is the interface that all image loaders must implement
type ImageLoader interface {
	// CanLoad checks if the loader can handle the given file
	CanLoad(path string) bool

	// LoadImage loads and returns the decoded pixel grid
	LoadImage(path string) (image.Image, error)
}

// BaseImageLoader provides common functionality for all image loaders
type BaseImageLoader struct {
	// Formats this loader can handle
	SupportedFormats []FormatType
}

// CanLoad checks if this loader supports the file's format
func (l *BaseImageLoader) CanLoad(path string) bool {
	format := GetFileFormat(path)

	for _, supported := range l.SupportedFormats {
		if format == supported {
			return fileExists(path)
		}
	}

	return false
}

// fileExists checks if a file exists and is accessible
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// hasFileContent checks if a file exists and has a non-zero size
func hasFileContent(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Size() > 0
}
