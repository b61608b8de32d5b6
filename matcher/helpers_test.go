package matcher

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"wallsorter/imageprocessor"
	"wallsorter/types"
)

// fingerprint builds a fingerprint with exactly the given bits set
func fingerprint(t *testing.T, hashSize int, ones ...int) imageprocessor.Fingerprint {
	t.Helper()
	values := make([]bool, hashSize*hashSize)
	for _, i := range ones {
		values[i] = true
	}
	fp, err := imageprocessor.FingerprintFromBits(hashSize, values)
	require.NoError(t, err)
	return fp
}

// firstBits returns the indexes 0..n-1
func firstBits(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func ref(i int) types.ImageRef {
	return types.ImageRef(fmt.Sprintf("img%d.png", i))
}

func buildMap(t *testing.T, hashSize int, fps ...imageprocessor.Fingerprint) *FingerprintMap {
	t.Helper()
	fm, err := NewFingerprintMap(hashSize)
	require.NoError(t, err)
	for i, fp := range fps {
		require.NoError(t, fm.Add(ref(i), fp))
	}
	return fm
}

func runSimilar(t *testing.T, fm *FingerprintMap, percentage int, opts Options) *SimilarityResult {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	result, err := FindSimilar(ctx, fm, PairsOf(ctx, fm.Refs()), percentage, opts)
	require.NoError(t, err)
	return result
}
