package scanner

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"

	"wallsorter/logging"
	"wallsorter/matcher"
)

// ProgressTracker renders a counter as a progress bar, polling it periodically.
// The counter is owned by the stage being tracked.
type ProgressTracker struct {
	bar     *progressbar.ProgressBar
	counter *matcher.ProgressCounter
	ticker  *time.Ticker
	done    chan struct{}
	stopped chan struct{}
	once    sync.Once
}

// NewProgressTracker starts displaying counter against total. When disabled it
// displays nothing and Stop is a no-op.
func NewProgressTracker(description string, total int64, counter *matcher.ProgressCounter, enabled bool) *ProgressTracker {
	tracker := &ProgressTracker{
		counter: counter,
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}

	if !enabled || total <= 0 {
		close(tracker.stopped)
		return tracker
	}

	tracker.bar = progressbar.NewOptions64(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(os.Stdout),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionThrottle(100*time.Millisecond),
	)
	tracker.ticker = time.NewTicker(500 * time.Millisecond)

	go tracker.displayProgress()

	return tracker
}

// displayProgress shows the progress periodically
func (p *ProgressTracker) displayProgress() {
	defer close(p.stopped)
	for {
		select {
		case <-p.done:
			return
		case <-p.ticker.C:
			if err := p.bar.Set64(p.counter.Value()); err != nil {
				logging.DebugLog("progress display: %v", err)
			}
		}
	}
}

// Stop ends the progress tracking and renders the final count
func (p *ProgressTracker) Stop() {
	p.once.Do(func() {
		close(p.done)
		<-p.stopped
		if p.bar == nil {
			return
		}
		p.ticker.Stop()
		_ = p.bar.Set64(p.counter.Value())
		_ = p.bar.Finish()
		fmt.Println()
	})
}

// PrintStartupInfo displays information about the hashing stage before it starts
func PrintStartupInfo(dir string, count int, options HashOptions) {
	fmt.Printf("Calculating hashes of %d images in %s (hash size %d, %d workers)\n",
		count, dir, options.HashSize, options.workers())

	if options.DebugMode {
		logging.DebugLog("Found %d images to hash in %s", count, dir)
	}
}

// PrintCompletionStats displays statistics after the hashing stage
func PrintCompletionStats(report *HashReport, options HashOptions) {
	hashed := 0
	if report.Fingerprints != nil {
		hashed = report.Fingerprints.Len()
	}

	if options.DebugMode {
		logging.DebugLog("Hashing completed in %v. Hashed: %d, Errors: %d",
			report.Elapsed, hashed, len(report.Warnings))
	}

	fmt.Printf("Done calculating hashes: %d/%d images in %v.\n",
		hashed, report.Total, report.Elapsed.Round(time.Millisecond))

	if len(report.Warnings) > 0 {
		fmt.Printf("Skipped %d images that could not be decoded:\n", len(report.Warnings))
		for _, w := range report.Warnings {
			fmt.Printf("  - %s\n", w)
		}
	}
}
