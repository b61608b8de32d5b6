// Package relocator moves batch images into labelled subfolders and keeps a
// journal of every move so a run can be undone.
package relocator

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"wallsorter/database"
	"wallsorter/logging"
	"wallsorter/types"
)

// Labels of the relocation targets
const (
	LabelDuplicates     = "Duplicates"
	LabelSimilars       = "Similars"
	LabelNeedResize     = "Need_resize"
	LabelNeedCrop       = "Need_crop"
	LabelNeedCropResize = "Need_crop_resize"
)

// ErrDestinationExists is reported when a file with the same name is already
// in the target folder
var ErrDestinationExists = errors.New("destination already exists")

// Skipped is a file the mover left in place
type Skipped struct {
	Ref types.ImageRef
	Err error
}

// MoveResult lists what a call moved and what it skipped
type MoveResult struct {
	Moved   []types.MoveRecord
	Skipped []Skipped
}

// Mover relocates files of one batch directory. A Mover is one run: every
// move it makes is journaled under the same run id.
type Mover struct {
	Dir    string
	RunID  string
	DryRun bool
	db     *sql.DB
}

// NewMover creates a mover for dir. db may be nil, in which case nothing is
// journaled and the run cannot be undone.
func NewMover(dir string, db *sql.DB, dryRun bool) *Mover {
	return &Mover{
		Dir:    dir,
		RunID:  uuid.NewString(),
		DryRun: dryRun,
		db:     db,
	}
}

// DB returns the journal of the mover, nil when it has none
func (m *Mover) DB() *sql.DB {
	return m.db
}

// MoveFiles moves refs into the <Dir>/<label> folder, creating it when
// needed. Existing destinations are never overwritten.
func (m *Mover) MoveFiles(ctx context.Context, refs []types.ImageRef, label string) (*MoveResult, error) {
	result := &MoveResult{}
	if len(refs) == 0 {
		return result, nil
	}

	target := filepath.Join(m.Dir, label)
	if !m.DryRun {
		if err := os.MkdirAll(target, 0o755); err != nil {
			return nil, fmt.Errorf("cannot create %s: %w", target, err)
		}
	}

	for _, ref := range refs {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		source := filepath.Join(m.Dir, string(ref))
		destination := filepath.Join(target, string(ref))

		if err := m.rename(source, destination); err != nil {
			logging.LogWarning("Skipping %s: %v", ref, err)
			result.Skipped = append(result.Skipped, Skipped{Ref: ref, Err: err})
			continue
		}

		record := types.MoveRecord{
			RunID:       m.RunID,
			Ref:         ref,
			Source:      source,
			Destination: destination,
			Label:       label,
			MovedAt:     time.Now(),
		}
		if !m.DryRun && m.db != nil {
			id, err := database.RecordMove(m.db, record)
			if err != nil {
				return result, fmt.Errorf("journal: %w", err)
			}
			record.ID = id
		}

		logging.DebugLog("Moved %s to %s", source, destination)
		result.Moved = append(result.Moved, record)
	}

	return result, nil
}

// rename moves source to destination unless destination is taken
func (m *Mover) rename(source, destination string) error {
	if _, err := os.Lstat(destination); err == nil {
		return fmt.Errorf("%s: %w", destination, ErrDestinationExists)
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}

	if m.DryRun {
		_, err := os.Lstat(source)
		return err
	}
	return os.Rename(source, destination)
}
