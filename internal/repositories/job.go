package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/ytclone/internal/models"
	"github.com/desertthunder/ytclone/internal/shared"
)

const jobColumns = `id, sequence, source_id, dest_id, title, grouped, dry_run, status, item_count,
	completed_count, skipped_count, rounds, error, created_at, updated_at, finished_at`

// CopyJobRepository implements models.Repository[*models.CopyJob] and stores per-item outcomes.
type CopyJobRepository struct {
	db *sql.DB
}

// NewCopyJobRepository creates a new CopyJobRepository with the given database connection
func NewCopyJobRepository(db *sql.DB) *CopyJobRepository {
	return &CopyJobRepository{db: db}
}

// Create inserts a new job with a generated ID and sequence
func (r *CopyJobRepository) Create(job *models.CopyJob) error {
	if err := job.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "copy_jobs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}
	job.SetID(shared.GenerateID())
	job.SetSequence(sequence)

	query := `INSERT INTO copy_jobs (` + jobColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = r.db.Exec(query,
		job.ID(),
		job.Sequence(),
		job.SourceID(),
		job.DestID(),
		job.Title(),
		job.Grouped(),
		job.DryRun(),
		string(job.Status()),
		job.ItemCount(),
		job.CompletedCount(),
		job.SkippedCount(),
		job.Rounds(),
		job.Error(),
		job.CreatedAt(),
		job.UpdatedAt(),
		job.FinishedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert copy job: %w", err)
	}
	return nil
}

// Get retrieves a job by ID
func (r *CopyJobRepository) Get(id string) (*models.CopyJob, error) {
	query := `SELECT ` + jobColumns + ` FROM copy_jobs WHERE id = ?`
	return r.scanOne(r.db.QueryRow(query, id), id)
}

// GetBySequence retrieves a job by its sequence number
func (r *CopyJobRepository) GetBySequence(sequence int) (*models.CopyJob, error) {
	query := `SELECT ` + jobColumns + ` FROM copy_jobs WHERE sequence = ?`
	return r.scanOne(r.db.QueryRow(query, sequence), fmt.Sprintf("#%d", sequence))
}

// Update writes the mutable fields of an existing job
func (r *CopyJobRepository) Update(job *models.CopyJob) error {
	if err := job.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	job.SetUpdatedAt(now)

	query := `
		UPDATE copy_jobs
		SET dest_id = ?, title = ?, status = ?, item_count = ?, completed_count = ?, skipped_count = ?,
			rounds = ?, error = ?, updated_at = ?, finished_at = ?
		WHERE id = ?
	`

	result, err := r.db.Exec(query,
		job.DestID(),
		job.Title(),
		string(job.Status()),
		job.ItemCount(),
		job.CompletedCount(),
		job.SkippedCount(),
		job.Rounds(),
		job.Error(),
		now,
		job.FinishedAt(),
		job.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update copy job: %w", err)
	}
	return expectRow(result, job.ID())
}

// Delete removes a job and, through the foreign key, its outcomes
func (r *CopyJobRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM copy_jobs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete copy job: %w", err)
	}
	return expectRow(result, id)
}

// List returns jobs newest first.
//
// Supported criteria: "source_id" (string), "status" ([models.JobStatus]) and "limit" (int).
func (r *CopyJobRepository) List(criteria map[string]any) ([]*models.CopyJob, error) {
	query := `SELECT ` + jobColumns + ` FROM copy_jobs WHERE 1 = 1`
	args := []any{}

	if sourceID, ok := criteria["source_id"].(string); ok && sourceID != "" {
		query += " AND source_id = ?"
		args = append(args, sourceID)
	}
	if status, ok := criteria["status"].(models.JobStatus); ok && status != "" {
		query += " AND status = ?"
		args = append(args, string(status))
	}

	query += " ORDER BY sequence DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query copy jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*models.CopyJob
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return jobs, nil
}

// SaveOutcome stores the terminal state of one request. Saving the same request twice overwrites it.
func (r *CopyJobRepository) SaveOutcome(outcome models.ItemOutcome) error {
	if outcome.JobID == "" || outcome.RequestID == "" {
		return fmt.Errorf("%w: outcome needs a job and request id", shared.ErrInvalidInput)
	}
	if outcome.CreatedAt.IsZero() {
		outcome.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO item_outcomes (job_id, request_id, video_id, original_position, final_position, state, reason, attempts, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (job_id, request_id) DO UPDATE SET
			final_position = excluded.final_position,
			state = excluded.state,
			reason = excluded.reason,
			attempts = excluded.attempts
	`

	_, err := r.db.Exec(query,
		outcome.JobID,
		outcome.RequestID,
		outcome.VideoID,
		outcome.OriginalPosition,
		outcome.FinalPosition,
		string(outcome.State),
		outcome.Reason,
		outcome.Attempts,
		outcome.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save outcome: %w", err)
	}
	return nil
}

// Outcomes returns the outcomes of a job ordered by original position
func (r *CopyJobRepository) Outcomes(jobID string) ([]models.ItemOutcome, error) {
	query := `
		SELECT job_id, request_id, video_id, original_position, final_position, state, reason, attempts, created_at
		FROM item_outcomes
		WHERE job_id = ?
		ORDER BY original_position ASC
	`

	rows, err := r.db.Query(query, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to query outcomes: %w", err)
	}
	defer rows.Close()

	var outcomes []models.ItemOutcome
	for rows.Next() {
		var (
			o     models.ItemOutcome
			state string
		)
		if err := rows.Scan(&o.JobID, &o.RequestID, &o.VideoID, &o.OriginalPosition, &o.FinalPosition,
			&state, &o.Reason, &o.Attempts, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan outcome: %w", err)
		}
		o.State = models.OutcomeState(state)
		outcomes = append(outcomes, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return outcomes, nil
}

func (r *CopyJobRepository) scanOne(row *sql.Row, key string) (*models.CopyJob, error) {
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: copy job %s", shared.ErrRecordNotFound, key)
	}
	return job, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanJob(s scanner) (*models.CopyJob, error) {
	var (
		id, sourceID, destID, title, status, errMsg string
		sequence, itemCount, completed, skipped     int
		rounds                                      int
		grouped, dryRun                             bool
		createdAt, updatedAt                        time.Time
		finishedAt                                  sql.NullTime
	)

	err := s.Scan(&id, &sequence, &sourceID, &destID, &title, &grouped, &dryRun, &status, &itemCount,
		&completed, &skipped, &rounds, &errMsg, &createdAt, &updatedAt, &finishedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan copy job: %w", err)
	}

	job := models.NewCopyJob(sequence, sourceID, grouped, dryRun)
	job.SetID(id)
	job.SetDestination(destID, title)
	job.SetStatus(models.JobStatus(status))
	job.SetItemCount(itemCount)
	job.SetProgress(completed, skipped, rounds)
	job.SetError(errMsg)
	job.SetCreatedAt(createdAt)
	job.SetUpdatedAt(updatedAt)
	if finishedAt.Valid {
		t := finishedAt.Time
		job.SetFinishedAt(&t)
	}
	return job, nil
}

func expectRow(result sql.Result, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: copy job %s", shared.ErrRecordNotFound, id)
	}
	return nil
}
