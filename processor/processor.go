// Package processor runs the wallpaper passes over a batch directory: hash,
// match or classify, then relocate.
package processor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"wallsorter/classifier"
	"wallsorter/config"
	"wallsorter/imageprocessor"
	"wallsorter/logging"
	"wallsorter/matcher"
	"wallsorter/relocator"
	"wallsorter/scanner"
	"wallsorter/types"
)

// Processor runs passes over the directory of its mover
type Processor struct {
	cfg      *config.Config
	registry *imageprocessor.ImageLoaderRegistry
	mover    *relocator.Mover

	// ShowProgress renders progress bars on stdout
	ShowProgress bool
	// UseExiftool enables the exiftool fallback for reading image sizes
	UseExiftool bool
}

// New creates a processor. cfg must already be validated.
func New(cfg *config.Config, registry *imageprocessor.ImageLoaderRegistry, mover *relocator.Mover) *Processor {
	return &Processor{
		cfg:          cfg,
		registry:     registry,
		mover:        mover,
		ShowProgress: true,
		UseExiftool:  true,
	}
}

func (p *Processor) hashOptions() scanner.HashOptions {
	return scanner.HashOptions{
		HashSize:     p.cfg.HashSize,
		Workers:      p.cfg.Workers,
		DebugMode:    p.cfg.Debug,
		ShowProgress: p.ShowProgress,
	}
}

// hashBatch lists the batch afresh and fingerprints it
func (p *Processor) hashBatch(ctx context.Context, report *Report) (*matcher.FingerprintMap, error) {
	refs, err := scanner.ListImages(p.mover.Dir)
	if err != nil {
		return nil, err
	}
	report.Total = len(refs)

	options := p.hashOptions()
	scanner.PrintStartupInfo(p.mover.Dir, len(refs), options)

	hashed, err := scanner.HashBatch(ctx, p.mover.Dir, refs, p.registry, options)
	if err != nil {
		return nil, err
	}
	scanner.PrintCompletionStats(hashed, options)

	report.Warnings = append(report.Warnings, hashed.Warnings...)
	return hashed.Fingerprints, nil
}

// relocate moves refs under label and records the outcome in report
func (p *Processor) relocate(ctx context.Context, refs []types.ImageRef, label string, report *Report) error {
	if len(refs) == 0 {
		return nil
	}

	result, err := p.mover.MoveFiles(ctx, refs, label)
	if result != nil {
		for _, moved := range result.Moved {
			report.Moved[label] = append(report.Moved[label], moved.Ref)
		}
		for _, skipped := range result.Skipped {
			report.Warnings = append(report.Warnings, scanner.Warning{Ref: skipped.Ref, Stage: "move", Err: skipped.Err})
		}
	}
	if err != nil {
		return fmt.Errorf("moving to %s: %w", label, err)
	}
	return nil
}

// FindDuplicates moves every image that has a bit-identical fingerprint twin
// into Duplicates. When relocation fails the report of the moves already made
// is returned with the error.
func (p *Processor) FindDuplicates(ctx context.Context) (*Report, error) {
	startTime := time.Now()
	report := newReport("duplicates", p.mover.RunID)

	fm, err := p.hashBatch(ctx, report)
	if err != nil {
		return nil, err
	}

	duplicates, pairs := matcher.FindDuplicates(fm)
	report.Pairs = pairs
	report.Compared = int64(fm.Len())

	if duplicates.Len() == 0 {
		fmt.Println("There are no duplicates")
	} else if err := p.relocate(ctx, duplicates.Refs(), relocator.LabelDuplicates, report); err != nil {
		report.Elapsed = time.Since(startTime)
		return report, err
	}

	report.Elapsed = time.Since(startTime)
	logging.LogInfo("Duplicate pass finished: %d duplicates among %d images", duplicates.Len(), fm.Len())
	return report, nil
}

// FindSimilars moves every image within the configured similarity of another
// one into Similars
func (p *Processor) FindSimilars(ctx context.Context) (*Report, error) {
	startTime := time.Now()
	report := newReport("similars", p.mover.RunID)

	fm, err := p.hashBatch(ctx, report)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	total := matcher.PairCount(fm.Len())
	counter := matcher.NewProgressCounter()
	fmt.Printf("Comparing %d pairs at %d%% similarity\n", total, p.cfg.SimilarityPercentage)
	tracker := scanner.NewProgressTracker("Comparing", total, counter, p.ShowProgress)

	pairs := matcher.PairsOf(ctx, fm.Refs())
	result, err := matcher.FindSimilar(ctx, fm, pairs, p.cfg.SimilarityPercentage, matcher.Options{
		Workers: p.cfg.Workers,
		Counter: counter,
	})
	tracker.Stop()
	if err != nil {
		return nil, err
	}

	report.Compared = counter.Value()
	report.DiffLimit = result.DiffLimit
	for _, res := range result.Pairs {
		report.Pairs = append(report.Pairs, res.Pair)
	}

	if result.Matches.Len() == 0 {
		fmt.Println("There are no similar images")
	} else if err := p.relocate(ctx, result.Matches.Refs(), relocator.LabelSimilars, report); err != nil {
		report.Elapsed = time.Since(startTime)
		return report, err
	}

	report.Elapsed = time.Since(startTime)
	logging.LogInfo("Similarity pass finished: %d similar images, %d pairs compared", result.Matches.Len(), report.Compared)
	return report, nil
}

// FindNeedEdits moves images that need a resize, a crop or both into the
// matching folders
func (p *Processor) FindNeedEdits(ctx context.Context) (*Report, error) {
	startTime := time.Now()
	report := newReport("edits", p.mover.RunID)

	refs, err := scanner.ListImages(p.mover.Dir)
	if err != nil {
		return nil, err
	}
	report.Total = len(refs)

	reader := classifier.NewDimensionReader(p.UseExiftool)
	defer reader.Close()

	fmt.Printf("Reading the size of %d images\n", len(refs))
	result, err := classifier.ClassifyBatch(ctx, p.mover.Dir, refs, reader, p.cfg.Policy(), p.cfg.Workers)
	if err != nil {
		return nil, err
	}
	report.Compared = int64(len(result.Images))
	for _, failure := range result.Failures {
		report.Warnings = append(report.Warnings, scanner.Warning{Ref: failure.Ref, Stage: "dimensions", Err: failure.Err})
	}

	for _, category := range classifier.Categories {
		found := result.ByCategory[category]
		if len(found) == 0 {
			fmt.Printf("There are no images that %s\n", category)
			continue
		}
		if err := p.relocate(ctx, found, category.Label(), report); err != nil {
			report.Elapsed = time.Since(startTime)
			return report, err
		}
	}

	report.Elapsed = time.Since(startTime)
	logging.LogInfo("Need-edit pass finished over %d images", len(result.Images))
	return report, nil
}

// RunAll runs the duplicate, similarity and need-edit passes in turn, each on
// what the previous one left in the directory. It stops early once earlier
// passes have emptied the batch. On error the returned report still holds
// every move made so far.
func (p *Processor) RunAll(ctx context.Context) (*Report, error) {
	report := newReport("all", p.mover.RunID)

	passes := []func(context.Context) (*Report, error){
		p.FindDuplicates,
		p.FindSimilars,
		p.FindNeedEdits,
	}
	for i, pass := range passes {
		passReport, err := pass(ctx)
		if i > 0 && errors.Is(err, scanner.ErrEmptyBatch) {
			fmt.Println("No images left to process")
			break
		}
		if passReport != nil {
			report.Merge(passReport)
		}
		if err != nil {
			return report, err
		}
	}

	return report, nil
}
