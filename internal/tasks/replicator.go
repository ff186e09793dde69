package tasks

import (
	"context"
	"fmt"

	"github.com/desertthunder/ytclone/internal/models"
	"github.com/desertthunder/ytclone/internal/shared"
)

// PlaylistCreator creates playlists on the authenticated account.
type PlaylistCreator interface {
	CreatePlaylist(ctx context.Context, playlist models.Playlist) (*models.Playlist, error)
}

// ReplicateOpts configures [Replicator.Replicate].
type ReplicateOpts struct {
	TitlePrefix string
	DryRun      bool
}

// Replicator derives the destination playlist from a snapshot.
type Replicator struct {
	client PlaylistCreator
}

func NewReplicator(client PlaylistCreator) *Replicator {
	return &Replicator{client: client}
}

// Replicate returns the destination playlist handle.
//
// In a dry run the transformed record is returned without being created, so its ID is empty.
func (r *Replicator) Replicate(ctx context.Context, snapshot *models.Snapshot, opts ReplicateOpts, progress chan<- ProgressUpdate) (*models.Playlist, error) {
	if snapshot == nil {
		return nil, fmt.Errorf("%w: snapshot is required", shared.ErrMissingArgument)
	}

	copied := snapshot.Playlist.ForCopy(opts.TitlePrefix)
	if opts.DryRun {
		sendProgress(ctx, progress, createPlaylistUpdate(&copied, true))
		return &copied, nil
	}

	if r.client == nil {
		return nil, fmt.Errorf("%w: YouTube client not initialized", shared.ErrServiceUnavailable)
	}

	created, err := r.client.CreatePlaylist(ctx, copied)
	if err != nil {
		return nil, fmt.Errorf("failed to create playlist %q: %w", copied.Title, err)
	}
	sendProgress(ctx, progress, createPlaylistUpdate(created, false))
	return created, nil
}
