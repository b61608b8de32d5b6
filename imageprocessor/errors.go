package imageprocessor

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidHashSize is returned for a hash size below one
	ErrInvalidHashSize = errors.New("hash size must be a positive integer")

	// ErrHashSizeMismatch is returned when fingerprints of different hash sizes meet
	ErrHashSizeMismatch = errors.New("fingerprints have different hash sizes")
)

// DecodeError reports an image that could not be opened or decoded.
// It is local to one image; callers drop that image and carry on.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("cannot decode %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// newImageLoadError creates a standardized error for image loading failures
func newImageLoadError(message, path string) error {
	return fmt.Errorf("%s: %s", message, path)
}
