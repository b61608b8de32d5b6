package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"wallsorter/logging"
	"wallsorter/types"

	_ "github.com/mattn/go-sqlite3"
)

// ErrNoRuns is returned when the journal holds no moves yet
var ErrNoRuns = errors.New("no runs recorded")

// InitDatabase initializes and returns a database connection
func InitDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS moves (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		ref TEXT NOT NULL,
		source TEXT NOT NULL,
		destination TEXT NOT NULL,
		label TEXT NOT NULL,
		moved_at TEXT NOT NULL,
		restored INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_run_id ON moves(run_id);
	CREATE INDEX IF NOT EXISTS idx_label ON moves(label);`

	if _, err = db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("cannot create journal schema in %s: %w", dbPath, err)
	}

	logging.DebugLog("Move journal ready at %s", dbPath)
	return db, nil
}

// RecordMove stores one move and returns its row id
func RecordMove(db *sql.DB, record types.MoveRecord) (int64, error) {
	movedAt := record.MovedAt
	if movedAt.IsZero() {
		movedAt = time.Now()
	}

	stmt, err := db.Prepare(`
		INSERT INTO moves (run_id, ref, source, destination, label, moved_at, restored)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("cannot prepare statement for %s: %w", record.Ref, err)
	}
	defer stmt.Close()

	res, err := stmt.Exec(
		record.RunID,
		string(record.Ref),
		record.Source,
		record.Destination,
		record.Label,
		movedAt.UTC().Format(time.RFC3339Nano),
		record.Restored,
	)
	if err != nil {
		return 0, fmt.Errorf("cannot insert move for %s: %w", record.Ref, err)
	}

	return res.LastInsertId()
}

// ListMoves returns the moves of a run in the order they were made
func ListMoves(db *sql.DB, runID string) ([]types.MoveRecord, error) {
	rows, err := db.Query(`
		SELECT id, run_id, ref, source, destination, label, moved_at, restored
		FROM moves WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("cannot query moves of run %s: %w", runID, err)
	}
	defer rows.Close()

	var records []types.MoveRecord
	for rows.Next() {
		var (
			record  types.MoveRecord
			ref     string
			movedAt string
		)
		if err := rows.Scan(&record.ID, &record.RunID, &ref, &record.Source,
			&record.Destination, &record.Label, &movedAt, &record.Restored); err != nil {
			return nil, fmt.Errorf("cannot read move of run %s: %w", runID, err)
		}
		record.Ref = types.ImageRef(ref)
		if record.MovedAt, err = time.Parse(time.RFC3339Nano, movedAt); err != nil {
			return nil, fmt.Errorf("bad timestamp %q in journal: %w", movedAt, err)
		}
		records = append(records, record)
	}

	return records, rows.Err()
}

// LatestRunID returns the run that recorded the most recent move
func LatestRunID(db *sql.DB) (string, error) {
	var runID string
	err := db.QueryRow("SELECT run_id FROM moves ORDER BY id DESC LIMIT 1").Scan(&runID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNoRuns
	}
	if err != nil {
		return "", fmt.Errorf("cannot find latest run: %w", err)
	}
	return runID, nil
}

// MarkRestored flags a move as undone
func MarkRestored(db *sql.DB, id int64) error {
	res, err := db.Exec("UPDATE moves SET restored = 1 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("cannot mark move %d restored: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("move %d not found", id)
	}
	return nil
}

// LabelStats counts the moves of one label within a run
type LabelStats struct {
	Label    string
	Moved    int
	Restored int
}

// RunStats contains statistics of one run
type RunStats struct {
	RunID  string
	Labels []LabelStats
}

// Total returns the number of moves in the run
func (s *RunStats) Total() int {
	total := 0
	for _, l := range s.Labels {
		total += l.Moved
	}
	return total
}

// GetRunStats retrieves per-label statistics about a run
func GetRunStats(db *sql.DB, runID string) (*RunStats, error) {
	rows, err := db.Query(`
		SELECT label, COUNT(*), COALESCE(SUM(restored), 0)
		FROM moves WHERE run_id = ? GROUP BY label ORDER BY label`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get stats of run %s: %w", runID, err)
	}
	defer rows.Close()

	stats := &RunStats{RunID: runID}
	for rows.Next() {
		var l LabelStats
		if err := rows.Scan(&l.Label, &l.Moved, &l.Restored); err != nil {
			return nil, fmt.Errorf("failed to read stats of run %s: %w", runID, err)
		}
		stats.Labels = append(stats.Labels, l)
	}

	return stats, rows.Err()
}
