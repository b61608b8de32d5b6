package imageprocessor

import (
	"errors"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// DefaultHashSize is the side length of the comparison grid when none is configured
const DefaultHashSize = 8

var errEmptyImage = errors.New("image has no pixels")

// ComputeAverageHash calculates the average hash of an image: the image is
// downscaled to hashSize x hashSize, converted to greyscale, and bit i is set
// when sample i is brighter than the mean of all samples.
func ComputeAverageHash(img image.Image, hashSize int) (Fingerprint, error) {
	if hashSize <= 0 {
		return Fingerprint{}, ErrInvalidHashSize
	}
	if img == nil || img.Bounds().Empty() {
		return Fingerprint{}, errEmptyImage
	}

	resized := imaging.Resize(img, hashSize, hashSize, imaging.Lanczos)

	n := hashSize * hashSize
	samples := make([]uint64, 0, n)
	var sum uint64

	bounds := resized.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			gray := color.GrayModel.Convert(resized.At(x, y)).(color.Gray)
			samples = append(samples, uint64(gray.Y))
			sum += uint64(gray.Y)
		}
	}

	// sample > sum/n, kept in integers so the comparison is exact
	fp := newFingerprint(hashSize)
	for i, s := range samples {
		if s*uint64(n) > sum {
			fp.set(i)
		}
	}

	return fp, nil
}

// HashFile loads an image through the registry and computes its average hash.
// Load and decode failures come back as *DecodeError.
func HashFile(registry *ImageLoaderRegistry, path string, hashSize int) (Fingerprint, error) {
	if hashSize <= 0 {
		return Fingerprint{}, ErrInvalidHashSize
	}

	img, err := registry.LoadImage(path)
	if err != nil {
		return Fingerprint{}, err
	}

	fp, err := ComputeAverageHash(img, hashSize)
	if errors.Is(err, errEmptyImage) {
		return Fingerprint{}, &DecodeError{Path: path, Err: err}
	}
	return fp, err
}
