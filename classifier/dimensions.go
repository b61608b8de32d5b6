package classifier

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"sync"

	"github.com/barasher/go-exiftool"
	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"wallsorter/logging"
)

// DimensionReader reads image sizes from file headers, without decoding the
// pixels. Headers the Go decoders do not understand are tried as EXIF, then
// handed to exiftool when it is installed.
type DimensionReader struct {
	et *exiftool.Exiftool
	mu sync.Mutex
}

// NewDimensionReader creates a reader. With useExiftool set it starts an
// exiftool process for the fallback; a missing binary only disables it.
func NewDimensionReader(useExiftool bool) *DimensionReader {
	r := &DimensionReader{}
	if !useExiftool {
		return r
	}

	et, err := exiftool.NewExiftool()
	if err != nil {
		logging.DebugLog("exiftool unavailable, header fallback disabled: %v", err)
		return r
	}
	r.et = et
	return r
}

// Close stops the exiftool process if one was started
func (r *DimensionReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.et == nil {
		return nil
	}
	err := r.et.Close()
	r.et = nil
	return err
}

// Dimensions returns the width and height of the image at path
func (r *DimensionReader) Dimensions(path string) (int, int, error) {
	width, height, err := decodeConfig(path)
	if err == nil {
		return width, height, nil
	}

	if w, h, exifErr := readEXIF(path); exifErr == nil {
		logging.DebugLog("Read dimensions of %s from EXIF", path)
		return w, h, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.et == nil {
		return 0, 0, err
	}

	logging.DebugLog("Reading dimensions of %s with exiftool: %v", path, err)
	return readWithExiftool(r.et, path)
}

func decodeConfig(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("cannot read header of %s: %w", path, err)
	}
	return cfg.Width, cfg.Height, nil
}

func readEXIF(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return 0, 0, err
	}

	wTag, err := x.Get(exif.PixelXDimension)
	if err != nil {
		return 0, 0, err
	}
	hTag, err := x.Get(exif.PixelYDimension)
	if err != nil {
		return 0, 0, err
	}

	width, err := wTag.Int(0)
	if err != nil {
		return 0, 0, err
	}
	height, err := hTag.Int(0)
	if err != nil {
		return 0, 0, err
	}
	if width <= 0 || height <= 0 {
		return 0, 0, fmt.Errorf("%s: EXIF dimensions %dx%d", path, width, height)
	}
	return width, height, nil
}

func readWithExiftool(et *exiftool.Exiftool, path string) (int, int, error) {
	fileInfos := et.ExtractMetadata(path)
	if len(fileInfos) == 0 {
		return 0, 0, fmt.Errorf("no metadata extracted from %s", path)
	}

	fileInfo := fileInfos[0]
	if fileInfo.Err != nil {
		return 0, 0, fileInfo.Err
	}

	width, err := fileInfo.GetInt("ImageWidth")
	if err != nil {
		return 0, 0, fmt.Errorf("%s: ImageWidth: %w", path, err)
	}
	height, err := fileInfo.GetInt("ImageHeight")
	if err != nil {
		return 0, 0, fmt.Errorf("%s: ImageHeight: %w", path, err)
	}
	return int(width), int(height), nil
}
