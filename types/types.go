package types

import "time"

// ImageRef identifies one image of a batch by its file name relative to the
// batch directory
type ImageRef string

// ImageInfo holds the metadata the need-edit pass works on
type ImageInfo struct {
	Ref    ImageRef `json:"ref"`
	Path   string   `json:"path"`
	Format string   `json:"format"`
	Width  int      `json:"width"`
	Height int      `json:"height"`
}

// MoveRecord is one journal entry written by the relocation sink
type MoveRecord struct {
	ID          int64     `json:"id"`
	RunID       string    `json:"run_id"`
	Ref         ImageRef  `json:"ref"`
	Source      string    `json:"source"`
	Destination string    `json:"destination"`
	Label       string    `json:"label"`
	MovedAt     time.Time `json:"moved_at"`
	Restored    bool      `json:"restored"`
}
