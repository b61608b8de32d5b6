package imageprocessor

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// halfAndHalf is black on the left half and white on the right half
func halfAndHalf(size int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			c := color.RGBA{A: 255}
			if x >= size/2 {
				c = color.RGBA{R: 255, G: 255, B: 255, A: 255}
			}
			img.Set(x, y, c)
		}
	}
	return img
}

func uniform(size int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func writePNG(t *testing.T, dir, name string, img image.Image) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

func TestComputeAverageHashHalfAndHalf(t *testing.T) {
	fp, err := ComputeAverageHash(halfAndHalf(64), 8)
	require.NoError(t, err)
	require.Equal(t, 64, fp.Len())
	assert.Equal(t, 8, fp.HashSize())

	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			assert.Equal(t, col >= 4, fp.Bit(row*8+col), "row %d col %d", row, col)
		}
	}
}

func TestComputeAverageHashUniformImageHasNoBitsSet(t *testing.T) {
	fp, err := ComputeAverageHash(uniform(32, color.RGBA{R: 90, G: 120, B: 30, A: 255}), 8)
	require.NoError(t, err)

	for i := 0; i < fp.Len(); i++ {
		assert.False(t, fp.Bit(i), "bit %d", i)
	}
}

func TestComputeAverageHashIsDeterministic(t *testing.T) {
	a, err := ComputeAverageHash(halfAndHalf(100), 8)
	require.NoError(t, err)
	b, err := ComputeAverageHash(halfAndHalf(100), 8)
	require.NoError(t, err)

	assert.True(t, a.Equal(b))
	assert.Equal(t, a.Key(), b.Key())
	assert.Equal(t, a.String(), b.String())
}

func TestComputeAverageHashLengthFollowsHashSize(t *testing.T) {
	for _, size := range []int{1, 3, 8, 16, 64} {
		fp, err := ComputeAverageHash(halfAndHalf(128), size)
		require.NoError(t, err)
		assert.Equal(t, size*size, fp.Len())
	}
}

func TestComputeAverageHashRejectsInvalidInput(t *testing.T) {
	_, err := ComputeAverageHash(halfAndHalf(16), 0)
	assert.ErrorIs(t, err, ErrInvalidHashSize)

	_, err = ComputeAverageHash(halfAndHalf(16), -4)
	assert.ErrorIs(t, err, ErrInvalidHashSize)

	_, err = ComputeAverageHash(image.NewRGBA(image.Rect(0, 0, 0, 0)), 8)
	assert.Error(t, err)
}

func TestHashFile(t *testing.T) {
	dir := t.TempDir()
	registry := NewImageLoaderRegistry(false)

	original := writePNG(t, dir, "a.png", halfAndHalf(64))
	copyOf := writePNG(t, dir, "b.png", halfAndHalf(64))

	fpA, err := HashFile(registry, original, 8)
	require.NoError(t, err)
	fpB, err := HashFile(registry, copyOf, 8)
	require.NoError(t, err)
	assert.True(t, fpA.Equal(fpB))

	inMemory, err := ComputeAverageHash(halfAndHalf(64), 8)
	require.NoError(t, err)
	assert.True(t, fpA.Equal(inMemory))
}

func TestHashFileDecodeError(t *testing.T) {
	dir := t.TempDir()
	registry := NewImageLoaderRegistry(false)

	broken := filepath.Join(dir, "broken.jpg")
	require.NoError(t, os.WriteFile(broken, []byte("definitely not a jpeg"), 0o644))

	_, err := HashFile(registry, broken, 8)
	var decodeErr *DecodeError
	require.True(t, errors.As(err, &decodeErr))
	assert.Equal(t, broken, decodeErr.Path)

	_, err = HashFile(registry, filepath.Join(dir, "missing.png"), 8)
	assert.True(t, errors.As(err, &decodeErr))

	_, err = HashFile(registry, broken, 0)
	assert.ErrorIs(t, err, ErrInvalidHashSize)
}
