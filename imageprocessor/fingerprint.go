package imageprocessor

import (
	"encoding/binary"
	"fmt"
	"math/bits"
	"strings"
)

// Fingerprint is the average hash of one image: hashSize² bits, row-major,
// packed most significant bit first into 64-bit words.
type Fingerprint struct {
	hashSize int
	words    []uint64
}

func newFingerprint(hashSize int) Fingerprint {
	n := hashSize * hashSize
	return Fingerprint{
		hashSize: hashSize,
		words:    make([]uint64, (n+63)/64),
	}
}

// FingerprintFromBits builds a fingerprint from explicit bit values
func FingerprintFromBits(hashSize int, values []bool) (Fingerprint, error) {
	if hashSize <= 0 {
		return Fingerprint{}, ErrInvalidHashSize
	}
	if len(values) != hashSize*hashSize {
		return Fingerprint{}, fmt.Errorf("expected %d bits for hash size %d, got %d",
			hashSize*hashSize, hashSize, len(values))
	}

	fp := newFingerprint(hashSize)
	for i, v := range values {
		if v {
			fp.set(i)
		}
	}
	return fp, nil
}

func (f *Fingerprint) set(i int) {
	f.words[i/64] |= 1 << (63 - uint(i%64))
}

// HashSize returns the side length of the grid the fingerprint was computed on
func (f Fingerprint) HashSize() int {
	return f.hashSize
}

// Len returns the number of bits
func (f Fingerprint) Len() int {
	return f.hashSize * f.hashSize
}

// Bit returns bit i in row-major order
func (f Fingerprint) Bit(i int) bool {
	return f.words[i/64]&(1<<(63-uint(i%64))) != 0
}

// Equal reports whether both fingerprints have the same hash size and bits
func (f Fingerprint) Equal(other Fingerprint) bool {
	if f.hashSize != other.hashSize {
		return false
	}
	for i, w := range f.words {
		if w != other.words[i] {
			return false
		}
	}
	return true
}

// Distance returns the Hamming distance between two fingerprints of the same hash size
func (f Fingerprint) Distance(other Fingerprint) (int, error) {
	if f.hashSize != other.hashSize {
		return 0, fmt.Errorf("%w: %d and %d", ErrHashSizeMismatch, f.hashSize, other.hashSize)
	}
	distance := 0
	for i, w := range f.words {
		distance += bits.OnesCount64(w ^ other.words[i])
	}
	return distance, nil
}

// Key returns a comparable value identifying the fingerprint, for use as a map key
func (f Fingerprint) Key() string {
	buf := make([]byte, 4+8*len(f.words))
	binary.BigEndian.PutUint32(buf, uint32(f.hashSize))
	for i, w := range f.words {
		binary.BigEndian.PutUint64(buf[4+8*i:], w)
	}
	return string(buf)
}

// String renders the bits as hexadecimal
func (f Fingerprint) String() string {
	var sb strings.Builder
	for _, w := range f.words {
		fmt.Fprintf(&sb, "%016x", w)
	}
	return sb.String()
}
