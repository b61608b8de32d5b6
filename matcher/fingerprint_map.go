package matcher

import (
	"errors"
	"fmt"

	"wallsorter/imageprocessor"
	"wallsorter/types"
)

var (
	// ErrDuplicateRef is returned when a ref is added to a FingerprintMap twice
	ErrDuplicateRef = errors.New("image already has a fingerprint")

	// ErrUnknownRef is returned when a pair names an image the map does not hold
	ErrUnknownRef = errors.New("image has no fingerprint")
)

// FingerprintMap holds one fingerprint per image, all of the same hash size.
// Insertion order is the list index used for pair enumeration. Once handed to
// FindDuplicates or FindSimilar it must not be modified.
type FingerprintMap struct {
	hashSize int
	refs     []types.ImageRef
	fps      []imageprocessor.Fingerprint
	index    map[types.ImageRef]int
}

// NewFingerprintMap creates an empty map for fingerprints of the given hash size
func NewFingerprintMap(hashSize int) (*FingerprintMap, error) {
	if hashSize <= 0 {
		return nil, imageprocessor.ErrInvalidHashSize
	}
	return &FingerprintMap{
		hashSize: hashSize,
		index:    make(map[types.ImageRef]int),
	}, nil
}

// Add records the fingerprint of ref
func (m *FingerprintMap) Add(ref types.ImageRef, fp imageprocessor.Fingerprint) error {
	if fp.HashSize() != m.hashSize {
		return fmt.Errorf("%s: %w: map uses %d, fingerprint has %d",
			ref, imageprocessor.ErrHashSizeMismatch, m.hashSize, fp.HashSize())
	}
	if _, exists := m.index[ref]; exists {
		return fmt.Errorf("%s: %w", ref, ErrDuplicateRef)
	}

	m.index[ref] = len(m.refs)
	m.refs = append(m.refs, ref)
	m.fps = append(m.fps, fp)
	return nil
}

// HashSize returns the hash size shared by every fingerprint in the map
func (m *FingerprintMap) HashSize() int {
	return m.hashSize
}

// Len returns the number of fingerprinted images
func (m *FingerprintMap) Len() int {
	return len(m.refs)
}

// Get returns the fingerprint of ref
func (m *FingerprintMap) Get(ref types.ImageRef) (imageprocessor.Fingerprint, bool) {
	i, ok := m.index[ref]
	if !ok {
		return imageprocessor.Fingerprint{}, false
	}
	return m.fps[i], true
}

// Index returns the list position of ref
func (m *FingerprintMap) Index(ref types.ImageRef) (int, bool) {
	i, ok := m.index[ref]
	return i, ok
}

// Refs returns the images in insertion order
func (m *FingerprintMap) Refs() []types.ImageRef {
	out := make([]types.ImageRef, len(m.refs))
	copy(out, m.refs)
	return out
}
