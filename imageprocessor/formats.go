package imageprocessor

import (
	"path/filepath"
	"strings"
)

// FormatType represents a known image format type
type FormatType string

// Known image format constants
const (
	FormatUnknown FormatType = "unknown"
	FormatJPEG    FormatType = "jpeg"
	FormatPNG     FormatType = "png"
	FormatGIF     FormatType = "gif"
	FormatTIFF    FormatType = "tiff"
	FormatBMP     FormatType = "bmp"
	FormatWEBP    FormatType = "webp"
)

// Map of extensions to format types
var formatExtensions = map[string]FormatType{
	".jpg":  FormatJPEG,
	".jpeg": FormatJPEG,
	".png":  FormatPNG,
	".gif":  FormatGIF,
	".tif":  FormatTIFF,
	".tiff": FormatTIFF,
	".bmp":  FormatBMP,
	".webp": FormatWEBP,
}

// batchExtensions are the extensions a batch listing keeps
var batchExtensions = []string{".png", ".jpg", ".jpeg"}

// IsImageFile checks if a file is a decodable image based on extension
func IsImageFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	_, supported := formatExtensions[ext]
	return supported
}

// IsBatchImage reports whether a file takes part in a batch run
func IsBatchImage(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range batchExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// GetFileFormat returns the format type based on file extension
func GetFileFormat(path string) FormatType {
	ext := strings.ToLower(filepath.Ext(path))
	format, exists := formatExtensions[ext]
	if !exists {
		return FormatUnknown
	}
	return format
}

// GetSupportedExtensions returns all decodable image file extensions
func GetSupportedExtensions() []string {
	extensions := make([]string, 0, len(formatExtensions))
	for ext := range formatExtensions {
		extensions = append(extensions, ext)
	}
	return extensions
}

// BatchExtensions returns the extensions a batch listing keeps
func BatchExtensions() []string {
	out := make([]string, len(batchExtensions))
	copy(out, batchExtensions)
	return out
}
