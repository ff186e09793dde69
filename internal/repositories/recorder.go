package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/ytclone/internal/models"
	"github.com/desertthunder/ytclone/internal/tasks"
)

// OutcomeRecorder implements tasks.OutcomeRecorder by saving outcomes under a single job.
type OutcomeRecorder struct {
	repo  *CopyJobRepository
	jobID string
}

// NewOutcomeRecorder creates an OutcomeRecorder writing to jobID
func NewOutcomeRecorder(repo *CopyJobRepository, jobID string) *OutcomeRecorder {
	return &OutcomeRecorder{repo: repo, jobID: jobID}
}

// RecordOutcome saves a completed or skipped request. Other outcomes are not terminal and are ignored.
func (a *OutcomeRecorder) RecordOutcome(_ context.Context, req tasks.InsertionRequest, c tasks.Classification) error {
	var state models.OutcomeState
	switch c.Outcome {
	case tasks.OutcomeSuccess:
		state = models.OutcomeCompleted
	case tasks.OutcomeSkip:
		state = models.OutcomeSkipped
	default:
		return nil
	}

	err := a.repo.SaveOutcome(models.ItemOutcome{
		JobID:            a.jobID,
		RequestID:        req.ID,
		VideoID:          req.VideoID(),
		OriginalPosition: req.OriginalPosition,
		FinalPosition:    req.Payload.Position,
		State:            state,
		Reason:           c.Reason,
		Attempts:         req.Attempts,
		CreatedAt:        time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to record %s: %w", req.ID, err)
	}
	return nil
}
