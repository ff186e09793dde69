package models

import (
	"fmt"
	"time"
)

// JobStatus is the lifecycle state of a [CopyJob].
type JobStatus string

const (
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// OutcomeState is the terminal state recorded for an insertion request.
type OutcomeState string

const (
	OutcomeCompleted OutcomeState = "completed"
	OutcomeSkipped   OutcomeState = "skipped"
)

// CopyJob records a single copy run.
type CopyJob struct {
	id             string
	sequence       int
	sourceID       string
	destID         string
	title          string
	grouped        bool
	dryRun         bool
	status         JobStatus
	itemCount      int
	completedCount int
	skippedCount   int
	rounds         int
	errMsg         string
	createdAt      time.Time
	updatedAt      time.Time
	finishedAt     *time.Time
}

// NewCopyJob creates a running job for sourceID.
func NewCopyJob(sequence int, sourceID string, grouped, dryRun bool) *CopyJob {
	now := time.Now()
	return &CopyJob{
		sequence:  sequence,
		sourceID:  sourceID,
		grouped:   grouped,
		dryRun:    dryRun,
		status:    JobRunning,
		createdAt: now,
		updatedAt: now,
	}
}

func (j *CopyJob) ID() string             { return j.id }
func (j *CopyJob) Sequence() int          { return j.sequence }
func (j *CopyJob) SourceID() string       { return j.sourceID }
func (j *CopyJob) DestID() string         { return j.destID }
func (j *CopyJob) Title() string          { return j.title }
func (j *CopyJob) Grouped() bool          { return j.grouped }
func (j *CopyJob) DryRun() bool           { return j.dryRun }
func (j *CopyJob) Status() JobStatus      { return j.status }
func (j *CopyJob) ItemCount() int         { return j.itemCount }
func (j *CopyJob) CompletedCount() int    { return j.completedCount }
func (j *CopyJob) SkippedCount() int      { return j.skippedCount }
func (j *CopyJob) Rounds() int            { return j.rounds }
func (j *CopyJob) Error() string          { return j.errMsg }
func (j *CopyJob) CreatedAt() time.Time   { return j.createdAt }
func (j *CopyJob) UpdatedAt() time.Time   { return j.updatedAt }
func (j *CopyJob) FinishedAt() *time.Time { return j.finishedAt }

func (j *CopyJob) SetID(id string)                 { j.id = id }
func (j *CopyJob) SetSequence(seq int)             { j.sequence = seq }
func (j *CopyJob) SetCreatedAt(t time.Time)        { j.createdAt = t }
func (j *CopyJob) SetUpdatedAt(t time.Time)        { j.updatedAt = t }
func (j *CopyJob) SetFinishedAt(t *time.Time)      { j.finishedAt = t }
func (j *CopyJob) SetDestination(id, title string) { j.destID, j.title = id, title }
func (j *CopyJob) SetItemCount(n int)              { j.itemCount = n }
func (j *CopyJob) SetStatus(s JobStatus)           { j.status = s }
func (j *CopyJob) SetError(msg string)             { j.errMsg = msg }

// SetProgress stores the counters reported by the insertion engine.
func (j *CopyJob) SetProgress(completed, skipped, rounds int) {
	j.completedCount, j.skippedCount, j.rounds = completed, skipped, rounds
}

// Finish marks the job terminal. A nil err completes it, anything else fails it.
func (j *CopyJob) Finish(err error) {
	now := time.Now()
	j.finishedAt = &now
	if err != nil {
		j.status = JobFailed
		j.errMsg = err.Error()
		return
	}
	j.status = JobCompleted
}

// Validate checks required fields.
func (j *CopyJob) Validate() error {
	if j.sourceID == "" {
		return fmt.Errorf("source playlist id is required")
	}
	switch j.status {
	case JobRunning, JobCompleted, JobFailed:
	default:
		return fmt.Errorf("invalid job status %q", j.status)
	}
	if j.completedCount+j.skippedCount > j.itemCount {
		return fmt.Errorf("resolved items (%d) exceed item count (%d)", j.completedCount+j.skippedCount, j.itemCount)
	}
	return nil
}

// ItemOutcome is the terminal state of one insertion request within a job.
type ItemOutcome struct {
	JobID            string
	RequestID        string
	VideoID          string
	OriginalPosition int
	FinalPosition    int // ledger position after renumbering, not the server's echo
	State            OutcomeState
	Reason           string
	Attempts         int
	CreatedAt        time.Time
}
