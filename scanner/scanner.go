package scanner

import (
	"context"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"wallsorter/imageprocessor"
	"wallsorter/logging"
	"wallsorter/matcher"
	"wallsorter/types"
)

// HashBatch computes the fingerprint of every image in refs in parallel.
// Images that cannot be decoded become warnings and are left out of the
// returned map; the map keeps the order of refs for the images that remain.
func HashBatch(ctx context.Context, dir string, refs []types.ImageRef, registry *imageprocessor.ImageLoaderRegistry, options HashOptions) (*HashReport, error) {
	fm, err := matcher.NewFingerprintMap(options.HashSize)
	if err != nil {
		return nil, err
	}

	startTime := time.Now()
	results := make([]hashResult, len(refs))
	counter := matcher.NewProgressCounter()
	tracker := NewProgressTracker("Hashing", int64(len(refs)), counter, options.ShowProgress)

	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(options.workers())

	for i, ref := range refs {
		i, ref := i, ref // per-iteration copy (pre-Go 1.22 loop semantics)
		group.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			path := filepath.Join(dir, string(ref))
			fp, err := imageprocessor.HashFile(registry, path, options.HashSize)
			results[i] = hashResult{fp: fp, err: err}

			logging.LogImageProcessed(path, "hash", err)
			counter.Increment(1)
			return nil
		})
	}

	err = group.Wait()
	tracker.Stop()
	if err != nil {
		return nil, err
	}

	report := &HashReport{Fingerprints: fm, Total: len(refs)}
	for i, ref := range refs {
		if results[i].err != nil {
			report.Warnings = append(report.Warnings, Warning{Ref: ref, Stage: "decode", Err: results[i].err})
			continue
		}
		if err := fm.Add(ref, results[i].fp); err != nil {
			return nil, err
		}
	}
	report.Elapsed = time.Since(startTime)

	return report, nil
}
