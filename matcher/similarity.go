package matcher

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"wallsorter/logging"
)

// ErrInvalidPercentage is returned for a similarity percentage outside (0, 100]
var ErrInvalidPercentage = errors.New("similarity percentage must be in (0, 100]")

// DefaultCounterBatch is how many evaluations a worker accumulates before
// publishing them to the shared ProgressCounter
const DefaultCounterBatch = 64

// PairResult is the outcome of comparing one pair. Matched separates a match
// from a non-match; Distance is the Hamming distance in both cases.
type PairResult struct {
	Pair     ComparisonPair
	Matched  bool
	Distance int
}

// Options tunes FindSimilar
type Options struct {
	// Workers is the pool size; 0 means runtime.NumCPU()
	Workers int

	// Counter receives one increment per evaluated pair. May be nil.
	Counter *ProgressCounter

	// CounterBatch is the per-worker increment batch; 0 means DefaultCounterBatch
	CounterBatch int
}

func (o Options) workers() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return runtime.NumCPU()
}

func (o Options) counterBatch() int64 {
	if o.CounterBatch > 0 {
		return int64(o.CounterBatch)
	}
	return DefaultCounterBatch
}

// SimilarityResult is the folded outcome of a similarity pass
type SimilarityResult struct {
	// Matches holds every image that appeared in a matched pair, once, in
	// FingerprintMap order
	Matches *MatchSet

	// Pairs holds the matched pairs in no particular order
	Pairs []PairResult

	// DiffLimit is the largest distance that still counted as a match
	DiffLimit int
}

// ValidatePercentage checks that percentage lies in (0, 100]
func ValidatePercentage(percentage int) error {
	if percentage <= 0 || percentage > 100 {
		return fmt.Errorf("%w: got %d", ErrInvalidPercentage, percentage)
	}
	return nil
}

// DiffLimit returns floor((1 - percentage/100) * hashSize²), the largest
// Hamming distance at which two fingerprints still count as similar.
// It is computed in integers so the floor is exact.
func DiffLimit(percentage int, hashSize int) (int, error) {
	if err := ValidatePercentage(percentage); err != nil {
		return 0, err
	}
	bits := hashSize * hashSize
	return (100 - percentage) * bits / 100, nil
}

// ComparePair evaluates one pair against diffLimit
func ComparePair(fm *FingerprintMap, pair ComparisonPair, diffLimit int) (PairResult, error) {
	a, ok := fm.Get(pair.A)
	if !ok {
		return PairResult{}, fmt.Errorf("%s: %w", pair.A, ErrUnknownRef)
	}
	b, ok := fm.Get(pair.B)
	if !ok {
		return PairResult{}, fmt.Errorf("%s: %w", pair.B, ErrUnknownRef)
	}

	distance, err := a.Distance(b)
	if err != nil {
		return PairResult{}, err
	}

	return PairResult{
		Pair:     pair,
		Matched:  distance <= diffLimit,
		Distance: distance,
	}, nil
}

// FindSimilar evaluates every pair received from pairs on a bounded worker
// pool and folds the matched pairs into one MatchSet. It blocks until pairs is
// closed and every evaluation has finished. fm is shared read-only by all
// workers; the only shared write is the counter.
//
// If FindSimilar returns early with an error, the caller must cancel the
// context feeding pairs so the producer stops.
func FindSimilar(ctx context.Context, fm *FingerprintMap, pairs <-chan ComparisonPair, similarityPercentage int, opts Options) (*SimilarityResult, error) {
	diffLimit, err := DiffLimit(similarityPercentage, fm.HashSize())
	if err != nil {
		return nil, err
	}

	counter := opts.Counter
	if counter == nil {
		counter = NewProgressCounter()
	}
	batch := opts.counterBatch()
	workers := opts.workers()

	logging.DebugLog("Comparing %d images with %d workers, diff limit %d of %d bits",
		fm.Len(), workers, diffLimit, fm.HashSize()*fm.HashSize())

	results := make(chan PairResult, workers)
	group, gctx := errgroup.WithContext(ctx)

	for w := 0; w < workers; w++ {
		group.Go(func() error {
			var pending int64
			defer func() { counter.Increment(pending) }()

			for {
				select {
				case <-gctx.Done():
					return gctx.Err()
				case pair, ok := <-pairs:
					if !ok {
						return nil
					}

					res, err := ComparePair(fm, pair, diffLimit)
					if err != nil {
						return err
					}

					pending++
					if pending >= batch {
						counter.Increment(pending)
						pending = 0
					}

					if !res.Matched {
						continue
					}

					select {
					case results <- res:
					case <-gctx.Done():
						return gctx.Err()
					}
				}
			}
		})
	}

	result := &SimilarityResult{
		Matches:   NewMatchSet(),
		DiffLimit: diffLimit,
	}
	collected := make(chan struct{})
	go func() {
		defer close(collected)
		for res := range results {
			result.Pairs = append(result.Pairs, res)
			result.Matches.Add(res.Pair.A)
			result.Matches.Add(res.Pair.B)
			logging.DebugLog("%s is similar to %s (distance %d)", res.Pair.A, res.Pair.B, res.Distance)
		}
	}()

	err = group.Wait()
	close(results)
	<-collected

	if err != nil {
		return nil, err
	}

	result.Matches.sortByIndex(fm)
	return result, nil
}
