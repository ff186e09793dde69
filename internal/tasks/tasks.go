// package tasks implements the playlist copy: snapshot loading, playlist replication and the round-based
// insertion engine.
//
// Operations emit progress updates via channels for status reporting to the CLI layer.
package tasks

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/ytclone/internal/models"
	"github.com/desertthunder/ytclone/internal/shared"
)

// YouTubeClient is everything a copy needs from the YouTube Data API.
//
// Satisfied by [services.YouTubeService].
type YouTubeClient interface {
	PlaylistReader
	PlaylistCreator
	Inserter
}

// CopyOpts configures [CopyEngine.Run].
type CopyOpts struct {
	TitlePrefix string
	Grouped     bool
	DryRun      bool
	Verbose     bool
	MaxRounds   int
}

// CopyResult contains everything a copy produced. Fields are filled in as the copy progresses, so a failed run
// still reports what it got through.
type CopyResult struct {
	Source *models.Snapshot
	Dest   *models.Playlist
	Insert *Result
}

// Copier copies a playlist into a new one on the same account.
type Copier interface {
	Run(ctx context.Context, sourceID string, opts CopyOpts, progress chan<- ProgressUpdate) (*CopyResult, error)
}

// CopyEngine implements [Copier] by chaining a [Loader], a [Replicator] and an [Engine].
type CopyEngine struct {
	loader     *Loader
	replicator *Replicator
	engine     *Engine
	logger     *log.Logger
}

// NewCopyEngine creates a [CopyEngine] backed by client.
func NewCopyEngine(client YouTubeClient, logger *log.Logger) *CopyEngine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &CopyEngine{
		loader:     NewLoader(client),
		replicator: NewReplicator(client),
		engine:     NewEngine(client, logger),
		logger:     logger,
	}
}

// SetRecorder attaches an [OutcomeRecorder] to the insertion engine.
func (c *CopyEngine) SetRecorder(r OutcomeRecorder) {
	c.engine.SetRecorder(r)
}

// Run copies the playlist identified by sourceID.
//
// Resolution errors ([shared.ErrPlaylistNotFound], [shared.ErrAmbiguousIdentifier]) are returned before
// anything is created.
func (c *CopyEngine) Run(ctx context.Context, sourceID string, opts CopyOpts, progress chan<- ProgressUpdate) (*CopyResult, error) {
	if sourceID == "" {
		return nil, fmt.Errorf("%w: source playlist id", shared.ErrMissingArgument)
	}

	result := &CopyResult{}

	snapshot, err := c.loader.Load(ctx, sourceID, progress)
	if err != nil {
		return result, err
	}
	result.Source = snapshot
	c.logger.Debug("loaded playlist", "id", snapshot.Playlist.ID, "title", snapshot.Playlist.Title, "items", len(snapshot.Items))

	dest, err := c.replicator.Replicate(ctx, snapshot, ReplicateOpts{TitlePrefix: opts.TitlePrefix, DryRun: opts.DryRun}, progress)
	if err != nil {
		return result, err
	}
	result.Dest = dest

	engineOpts := EngineOpts{Grouped: opts.Grouped, DryRun: opts.DryRun, Verbose: opts.Verbose, MaxRounds: opts.MaxRounds}
	inserted, err := c.engine.Run(ctx, snapshot.Items, *dest, engineOpts, progress)
	result.Insert = inserted
	return result, err
}
