package matcher

import (
	"context"

	"wallsorter/types"
)

// IndexPair is an unordered pair of list positions, always with I < J
type IndexPair struct {
	I, J int
}

// ComparisonPair is an unordered pair of distinct images
type ComparisonPair struct {
	A, B types.ImageRef
}

// PairCount returns n(n-1)/2, the number of pairs EnumeratePairs yields for n items
func PairCount(n int) int64 {
	if n < 2 {
		return 0
	}
	return int64(n) * int64(n-1) / 2
}

// EnumeratePairs streams the strict upper triangle of the n x n comparison
// matrix: every (i, j) with 0 <= i < j < n exactly once. The channel is closed
// when all pairs are sent or ctx is done.
func EnumeratePairs(ctx context.Context, n int) <-chan IndexPair {
	out := make(chan IndexPair, 64)
	go func() {
		defer close(out)
		for i := 0; i < n; i++ {
			for j := i + 1; j < n; j++ {
				select {
				case out <- IndexPair{I: i, J: j}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

// PairsOf streams the comparison pairs of refs, in the order of EnumeratePairs
func PairsOf(ctx context.Context, refs []types.ImageRef) <-chan ComparisonPair {
	out := make(chan ComparisonPair, 64)
	go func() {
		defer close(out)
		for p := range EnumeratePairs(ctx, len(refs)) {
			select {
			case out <- ComparisonPair{A: refs[p.I], B: refs[p.J]}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
