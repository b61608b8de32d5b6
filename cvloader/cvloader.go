// Package cvloader decodes images through OpenCV. It is registered as the
// fallback of the image loader registry for files the Go decoders reject.
package cvloader

import (
	"fmt"
	"image"
	"os"

	"gocv.io/x/gocv"

	"wallsorter/logging"
)

// Loader reads any format OpenCV was built with
type Loader struct{}

// New creates an OpenCV loader
func New() *Loader {
	return &Loader{}
}

func (l *Loader) CanLoad(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular() && info.Size() > 0
}

func (l *Loader) LoadImage(path string) (image.Image, error) {
	mat := gocv.IMRead(path, gocv.IMReadColor)
	defer mat.Close()

	if mat.Empty() {
		return nil, fmt.Errorf("opencv could not read %s", path)
	}

	img, err := mat.ToImage()
	if err != nil {
		return nil, fmt.Errorf("cannot convert %s: %w", path, err)
	}

	logging.DebugLog("Decoded %s with OpenCV (%dx%d)", path, mat.Cols(), mat.Rows())
	return img, nil
}
