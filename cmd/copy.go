package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/ytclone/internal/models"
	"github.com/desertthunder/ytclone/internal/repositories"
	"github.com/desertthunder/ytclone/internal/shared"
	"github.com/desertthunder/ytclone/internal/tasks"
)

// Copy reads the source playlist, creates its copy and inserts every video into it.
//
// Each run is recorded as a copy job; recording failures are logged and do not stop the copy.
func (r *Runner) Copy(ctx context.Context, cmd *cli.Command) error {
	sourceID := cmd.StringArg("id")
	if sourceID == "" {
		return fmt.Errorf("%w: playlist id", shared.ErrMissingArgument)
	}

	opts := r.copyOpts(cmd)
	printer := newProgressPrinter(r.progress, opts.Verbose)
	printer.banner(r.debug, opts.Grouped, opts.DryRun)

	client, err := r.youtube(ctx)
	if err != nil {
		return err
	}

	logger := r.logger
	jobs, job := r.startJob(sourceID, opts)
	if job != nil {
		logger = shared.WithLogger(r.logger, "job", job.Sequence())
	}

	engine := tasks.NewCopyEngine(client, logger)
	if job != nil {
		engine.SetRecorder(repositories.NewOutcomeRecorder(jobs, job.ID()))
	}

	updates := make(chan tasks.ProgressUpdate, 64)
	done := make(chan struct{})
	go printer.consume(updates, done)

	result, err := engine.Run(ctx, sourceID, opts, updates)
	close(updates)
	<-done
	if result != nil && result.Insert != nil {
		printer.finish()
	}

	r.finishJob(jobs, job, result, err)
	if err != nil {
		return err
	}

	r.summarize(result, opts)
	return nil
}

func (r *Runner) copyOpts(cmd *cli.Command) tasks.CopyOpts {
	opts := tasks.CopyOpts{
		TitlePrefix: r.config.Copy.Prefix,
		Grouped:     cmd.Bool("batch") || r.config.Copy.Batch,
		DryRun:      cmd.Bool("pretend"),
		Verbose:     r.debug,
		MaxRounds:   r.config.Copy.MaxRounds,
	}
	if cmd.IsSet("prefix") {
		opts.TitlePrefix = cmd.String("prefix")
	}
	if n := cmd.Int("max-rounds"); n >= 0 {
		opts.MaxRounds = n
	}
	return opts
}

func (r *Runner) startJob(sourceID string, opts tasks.CopyOpts) (*repositories.CopyJobRepository, *models.CopyJob) {
	db, err := r.database()
	if err != nil {
		r.logger.Warn("copy history unavailable", "error", err)
		return nil, nil
	}

	jobs := repositories.NewCopyJobRepository(db)
	job := models.NewCopyJob(0, sourceID, opts.Grouped, opts.DryRun)
	if err := jobs.Create(job); err != nil {
		r.logger.Warn("failed to record copy job", "error", err)
		return nil, nil
	}
	r.logger.Debug("copy job started", "job", job.ID(), "sequence", job.Sequence())
	return jobs, job
}

func (r *Runner) finishJob(jobs *repositories.CopyJobRepository, job *models.CopyJob, result *tasks.CopyResult, err error) {
	if job == nil {
		return
	}

	if result != nil {
		if result.Source != nil {
			job.SetItemCount(len(result.Source.Items))
		}
		if result.Dest != nil {
			job.SetDestination(result.Dest.ID, result.Dest.Title)
		}
		if ins := result.Insert; ins != nil {
			job.SetProgress(len(ins.Completed), len(ins.Skipped), ins.Rounds)
		}
	}
	job.Finish(err)

	if updateErr := jobs.Update(job); updateErr != nil {
		r.logger.Warn("failed to update copy job", "job", job.ID(), "error", updateErr)
	}
}

func (r *Runner) summarize(result *tasks.CopyResult, opts tasks.CopyOpts) {
	if opts.DryRun {
		r.logger.Info("dry run complete", "title", result.Dest.Title, "videos", len(result.Insert.Planned))
		return
	}
	r.logger.Info("copy complete",
		"playlist", result.Dest.ID,
		"title", result.Dest.Title,
		"inserted", len(result.Insert.Completed),
		"skipped", len(result.Insert.Skipped),
		"rounds", result.Insert.Rounds,
	)
}
