package classifier

import (
	"context"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"

	"wallsorter/imageprocessor"
	"wallsorter/logging"
	"wallsorter/types"
)

// Failure is an image whose size could not be read
type Failure struct {
	Ref types.ImageRef
	Err error
}

// Result groups a batch by category, each group in batch order
type Result struct {
	Images     []types.ImageInfo
	ByCategory map[Category][]types.ImageRef
	Failures   []Failure
}

type sizeResult struct {
	width, height int
	err           error
}

// ClassifyBatch reads the size of every image in refs with up to workers
// goroutines and classifies it with policy
func ClassifyBatch(ctx context.Context, dir string, refs []types.ImageRef, reader *DimensionReader, policy Policy, workers int) (*Result, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	sizes := make([]sizeResult, len(refs))
	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(workers)

	for i, ref := range refs {
		i, ref := i, ref // per-iteration copy (pre-Go 1.22 loop semantics)
		group.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			path := filepath.Join(dir, string(ref))
			w, h, err := reader.Dimensions(path)
			sizes[i] = sizeResult{width: w, height: h, err: err}
			logging.LogImageProcessed(path, "dimensions", err)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	result := &Result{ByCategory: make(map[Category][]types.ImageRef)}
	for i, ref := range refs {
		if sizes[i].err != nil {
			result.Failures = append(result.Failures, Failure{Ref: ref, Err: sizes[i].err})
			continue
		}

		path := filepath.Join(dir, string(ref))
		result.Images = append(result.Images, types.ImageInfo{
			Ref:    ref,
			Path:   path,
			Format: string(imageprocessor.GetFileFormat(path)),
			Width:  sizes[i].width,
			Height: sizes[i].height,
		})

		if category := policy.Classify(sizes[i].width, sizes[i].height); category != None {
			result.ByCategory[category] = append(result.ByCategory[category], ref)
		}
	}

	return result, nil
}
