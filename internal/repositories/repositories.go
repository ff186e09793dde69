package repositories

import (
	"database/sql"
	"fmt"

	"github.com/desertthunder/ytclone/internal/models"
	"github.com/desertthunder/ytclone/internal/services"
	"github.com/desertthunder/ytclone/internal/shared"
	"github.com/desertthunder/ytclone/internal/tasks"
)

// Tables that carry a companion "<table>_sequence" counter.
var sequenced = map[string]bool{
	"copy_jobs": true,
}

// NextSequence atomically increments and returns the next sequence number for table.
//
// Sequence numbers give jobs a short, stable handle (job #7) next to their UUID.
func NextSequence(db *sql.DB, table string) (int, error) {
	if !sequenced[table] {
		return 0, fmt.Errorf("%w: no sequence for table %q", shared.ErrInvalidArgument, table)
	}

	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	counter := table + "_sequence"
	if _, err := tx.Exec(fmt.Sprintf("UPDATE %s SET value = value + 1 WHERE id = 1", counter)); err != nil {
		return 0, fmt.Errorf("failed to increment sequence: %w", err)
	}

	var sequence int
	if err := tx.QueryRow(fmt.Sprintf("SELECT value FROM %s WHERE id = 1", counter)).Scan(&sequence); err != nil {
		return 0, fmt.Errorf("failed to read sequence: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit sequence transaction: %w", err)
	}
	return sequence, nil
}

var (
	_ models.Repository[*models.CopyJob] = (*CopyJobRepository)(nil)
	_ services.TokenStore                = (*CredentialRepository)(nil)
	_ tasks.OutcomeRecorder              = (*OutcomeRecorder)(nil)
)
