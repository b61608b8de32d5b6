package relocator

import (
	"context"
	"errors"
	"fmt"

	"wallsorter/database"
	"wallsorter/logging"
)

// ErrNoJournal is returned when undo is requested from a mover without a
// journal
var ErrNoJournal = errors.New("no move journal configured")

// Undo moves the files of runID back to where they came from, newest first,
// and marks them restored in the journal. Moves already restored are ignored.
func (m *Mover) Undo(ctx context.Context, runID string) (*MoveResult, error) {
	if m.db == nil {
		return nil, ErrNoJournal
	}

	records, err := database.ListMoves(m.db, runID)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("run %s: %w", runID, database.ErrNoRuns)
	}

	result := &MoveResult{}
	for i := len(records) - 1; i >= 0; i-- {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		record := records[i]
		if record.Restored {
			continue
		}

		if err := m.rename(record.Destination, record.Source); err != nil {
			logging.LogWarning("Cannot restore %s: %v", record.Ref, err)
			result.Skipped = append(result.Skipped, Skipped{Ref: record.Ref, Err: err})
			continue
		}

		if !m.DryRun {
			if err := database.MarkRestored(m.db, record.ID); err != nil {
				return result, fmt.Errorf("journal: %w", err)
			}
			record.Restored = true
		}
		result.Moved = append(result.Moved, record)
	}

	return result, nil
}
