package tasks

import (
	"context"
	"fmt"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/ytclone/internal/models"
	"github.com/desertthunder/ytclone/internal/shared"
)

// EngineOpts configures a single [Engine.Run].
type EngineOpts struct {
	Grouped   bool // submit each round as one batch request
	DryRun    bool // report what would be inserted without creating requests
	Verbose   bool // emit per-item detail events such as [FillGap]
	MaxRounds int  // 0 retries transient failures without limit
}

// OutcomeRecorder is notified of every terminal request outcome.
//
// Errors are logged and otherwise ignored so recording never disrupts a copy.
type OutcomeRecorder interface {
	RecordOutcome(ctx context.Context, req InsertionRequest, c Classification) error
}

// Inserter is the part of the YouTube client the engine needs.
type Inserter interface {
	ItemInserter
	BatchInserter
}

// Result is the final state of an insertion run.
//
// Completed and Skipped are in original position order. Completed payload positions come from the ledger when
// each request completed, so in grouped mode a skip that arrives before a sibling's success leaves the sibling
// one place lower than the position it was sent with. Planned is only set for dry runs.
type Result struct {
	Playlist  models.Playlist
	Planned   []models.Item
	Completed []InsertionRequest
	Skipped   []InsertionRequest
	Rounds    int
}

// Engine runs insertion requests in rounds until each one is inserted or skipped.
type Engine struct {
	client   Inserter
	recorder OutcomeRecorder
	logger   *log.Logger
}

// NewEngine creates an [Engine] inserting through client.
func NewEngine(client Inserter, logger *log.Logger) *Engine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Engine{client: client, logger: logger}
}

// SetRecorder attaches an optional [OutcomeRecorder].
func (e *Engine) SetRecorder(r OutcomeRecorder) {
	e.recorder = r
}

func (e *Engine) submitter(opts EngineOpts) BatchSubmitter {
	if opts.Grouped {
		return NewGroupedSubmitter(e.client)
	}
	return NewSequentialSubmitter(e.client)
}

// Run inserts items, already sorted and renumbered by position, into dest.
//
// Transient failures are resubmitted in the next round with no backoff. On a fatal outcome Run stops at once and
// returns the partial result together with the error.
func (e *Engine) Run(ctx context.Context, items []models.Item, dest models.Playlist, opts EngineOpts, progress chan<- ProgressUpdate) (*Result, error) {
	result := &Result{Playlist: dest}

	if opts.DryRun {
		for i, item := range items {
			payload := item.ForInsert(dest.ID)
			result.Planned = append(result.Planned, payload)
			sendProgress(ctx, progress, wouldInsertUpdate(i+1, len(items), payload))
		}
		return result, nil
	}

	if e.client == nil {
		return nil, fmt.Errorf("%w: YouTube client not initialized", shared.ErrServiceUnavailable)
	}

	ledger, err := NewLedger(items, dest.ID)
	if err != nil {
		return nil, err
	}

	submitter := e.submitter(opts)
	for !ledger.Done() {
		if opts.MaxRounds > 0 && result.Rounds >= opts.MaxRounds {
			e.collect(result, ledger)
			return result, fmt.Errorf("%w: %d videos still pending after %d rounds",
				shared.ErrRetriesExhausted, len(ledger.Pending()), result.Rounds)
		}

		result.Rounds++
		round := ledger.Begin()
		e.logger.Debug("starting round", "round", result.Rounds, "requests", len(round), "grouped", opts.Grouped)
		sendProgress(ctx, progress, roundStartUpdate(result.Rounds, len(round)))

		err := submitter.Submit(ctx, round, func(req *InsertionRequest, inserted *models.Item, err error) error {
			return e.resolve(ctx, ledger, req, err, opts, progress)
		})
		if err != nil {
			e.collect(result, ledger)
			return result, err
		}

		ledger.End()
		sendProgress(ctx, progress, roundCompleteUpdate(result.Rounds, ledger))
	}

	e.collect(result, ledger)
	e.logger.Debug("insertion finished", "completed", len(result.Completed), "skipped", len(result.Skipped), "rounds", result.Rounds)
	return result, nil
}

// resolve classifies one outcome and applies it to the ledger.
func (e *Engine) resolve(ctx context.Context, ledger *Ledger, req *InsertionRequest, err error, opts EngineOpts, progress chan<- ProgressUpdate) error {
	c := Classify(err)
	resolved := func() int { return len(ledger.Completed()) + len(ledger.Skipped()) }

	switch c.Outcome {
	case OutcomeSuccess:
		if err := ledger.Complete(req); err != nil {
			return err
		}
		sendProgress(ctx, progress, insertUpdate(resolved(), ledger.Len(), req))
		e.record(ctx, req, c)

	case OutcomeSkip:
		shifted, err := ledger.Skip(req)
		if err != nil {
			return err
		}
		e.logger.Debug("skipped video", "video", req.VideoID(), "status", c.Status, "shifted", len(shifted))
		sendProgress(ctx, progress, skipUpdate(resolved(), ledger.Len(), req, c))
		if opts.Verbose {
			sendProgress(ctx, progress, fillGapUpdate(req))
		}
		e.record(ctx, req, c)

	case OutcomeRetry:
		if err := ledger.Retry(req); err != nil {
			return err
		}
		sendProgress(ctx, progress, retryUpdate(req, c))

	default:
		if err := ledger.Fail(req); err != nil {
			return err
		}
		e.logger.Debug("fatal insert", "video", req.VideoID(), "payload", req.Payload)
		return fmt.Errorf("failed to insert video %s: %w", req.VideoID(), c.Err)
	}
	return nil
}

func (e *Engine) record(ctx context.Context, req *InsertionRequest, c Classification) {
	if e.recorder == nil {
		return
	}
	if err := e.recorder.RecordOutcome(ctx, *req, c); err != nil {
		e.logger.Warn("failed to record outcome", "video", req.VideoID(), "error", err)
	}
}

func (e *Engine) collect(result *Result, ledger *Ledger) {
	byOriginal := func(a, b InsertionRequest) int { return a.OriginalPosition - b.OriginalPosition }

	result.Completed = result.Completed[:0]
	for _, req := range ledger.Completed() {
		result.Completed = append(result.Completed, *req)
	}
	slices.SortFunc(result.Completed, byOriginal)

	result.Skipped = result.Skipped[:0]
	for _, req := range ledger.Skipped() {
		result.Skipped = append(result.Skipped, *req)
	}
	slices.SortFunc(result.Skipped, byOriginal)
}
