package scanner

import (
	"fmt"
	"runtime"
	"time"

	"wallsorter/imageprocessor"
	"wallsorter/matcher"
	"wallsorter/types"
)

// HashOptions defines the options for the hashing stage
type HashOptions struct {
	HashSize     int
	Workers      int // 0 means one per CPU
	DebugMode    bool
	ShowProgress bool
}

func (o HashOptions) workers() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return runtime.NumCPU()
}

// Warning is a per-image failure that excluded the image from the run
type Warning struct {
	Ref   types.ImageRef
	Stage string
	Err   error
}

func (w Warning) String() string {
	return fmt.Sprintf("%s (%s): %v", w.Ref, w.Stage, w.Err)
}

// HashReport is the outcome of the hashing stage
type HashReport struct {
	Fingerprints *matcher.FingerprintMap
	Warnings     []Warning
	Total        int
	Elapsed      time.Duration
}

// hashResult holds the result of hashing one image
type hashResult struct {
	fp  imageprocessor.Fingerprint
	err error
}
