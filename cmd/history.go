package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/ytclone/internal/models"
	"github.com/desertthunder/ytclone/internal/repositories"
	"github.com/desertthunder/ytclone/internal/shared"
)

type jobView struct {
	ID        string     `json:"id"`
	Sequence  int        `json:"sequence"`
	Source    string     `json:"source"`
	Dest      string     `json:"dest,omitempty"`
	Title     string     `json:"title,omitempty"`
	Status    string     `json:"status"`
	Grouped   bool       `json:"grouped"`
	DryRun    bool       `json:"dry_run"`
	Items     int        `json:"items"`
	Inserted  int        `json:"inserted"`
	Skipped   int        `json:"skipped"`
	Rounds    int        `json:"rounds"`
	Error     string     `json:"error,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	Finished  *time.Time `json:"finished_at,omitempty"`
}

func newJobView(j *models.CopyJob) jobView {
	return jobView{
		ID:        j.ID(),
		Sequence:  j.Sequence(),
		Source:    j.SourceID(),
		Dest:      j.DestID(),
		Title:     j.Title(),
		Status:    string(j.Status()),
		Grouped:   j.Grouped(),
		DryRun:    j.DryRun(),
		Items:     j.ItemCount(),
		Inserted:  j.CompletedCount(),
		Skipped:   j.SkippedCount(),
		Rounds:    j.Rounds(),
		Error:     j.Error(),
		CreatedAt: j.CreatedAt(),
		Finished:  j.FinishedAt(),
	}
}

// History lists recent copy jobs, newest first.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	db, err := r.database()
	if err != nil {
		return err
	}

	jobs, err := repositories.NewCopyJobRepository(db).List(map[string]any{
		"source_id": cmd.String("source"),
		"limit":     cmd.Int("limit"),
	})
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		views := make([]jobView, 0, len(jobs))
		for _, j := range jobs {
			views = append(views, newJobView(j))
		}
		return r.writeJSON(views)
	}

	if len(jobs) == 0 {
		return r.writePlain("No copy jobs recorded\n")
	}
	for _, j := range jobs {
		mode := "sequential"
		if j.Grouped() {
			mode = "batch"
		}
		if j.DryRun() {
			mode += ", pretend"
		}
		r.writePlain("#%-4d %-9s %s -> %s  %d/%d inserted, %d skipped, %d rounds (%s)  %s\n",
			j.Sequence(), j.Status(), j.SourceID(), orDash(j.DestID()), j.CompletedCount(), j.ItemCount(),
			j.SkippedCount(), j.Rounds(), mode, j.CreatedAt().Format(time.DateTime))
		if j.Error() != "" {
			r.writePlain("      error: %s\n", j.Error())
		}
	}
	return nil
}

// HistoryShow prints the per-video outcomes of one job, addressed by UUID or sequence number.
func (r *Runner) HistoryShow(ctx context.Context, cmd *cli.Command) error {
	key := strings.TrimPrefix(cmd.StringArg("job"), "#")
	if key == "" {
		return fmt.Errorf("%w: job id", shared.ErrMissingArgument)
	}

	db, err := r.database()
	if err != nil {
		return err
	}
	repo := repositories.NewCopyJobRepository(db)

	job, err := r.findJob(repo, key)
	if err != nil {
		return err
	}

	outcomes, err := repo.Outcomes(job.ID())
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(struct {
			Job      jobView              `json:"job"`
			Outcomes []models.ItemOutcome `json:"outcomes"`
		}{newJobView(job), outcomes})
	}

	r.writePlain("Job #%d %s: %s -> %s (%s)\n", job.Sequence(), job.ID(), job.SourceID(), orDash(job.DestID()), job.Status())
	for _, o := range outcomes {
		line := fmt.Sprintf("%4d -> %-4d %-11s %s", o.OriginalPosition, o.FinalPosition, o.VideoID, o.State)
		if o.Reason != "" {
			line += " (" + o.Reason + ")"
		}
		if o.Attempts > 1 {
			line += fmt.Sprintf(" after %d attempts", o.Attempts)
		}
		r.writePlain("%s\n", line)
	}
	return nil
}

func (r *Runner) findJob(repo *repositories.CopyJobRepository, key string) (*models.CopyJob, error) {
	if seq, err := strconv.Atoi(key); err == nil {
		job, err := repo.GetBySequence(seq)
		if err == nil || !errors.Is(err, shared.ErrRecordNotFound) {
			return job, err
		}
	}
	return repo.Get(key)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
