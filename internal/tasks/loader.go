package tasks

import (
	"context"
	"fmt"
	"slices"

	"github.com/desertthunder/ytclone/internal/models"
	"github.com/desertthunder/ytclone/internal/services"
	"github.com/desertthunder/ytclone/internal/shared"
)

// PlaylistReader reads playlists and their items.
type PlaylistReader interface {
	LookupPlaylist(ctx context.Context, id string) (*services.PlaylistLookup, error)
	ListItems(ctx context.Context, playlistID, pageToken string, maxResults int) (*services.ItemPage, error)
}

// Loader fetches a playlist snapshot.
type Loader struct {
	client PlaylistReader
}

func NewLoader(client PlaylistReader) *Loader {
	return &Loader{client: client}
}

// Load resolves id to exactly one playlist and reads all of its items, sorted by position and renumbered
// to 0..N-1.
func (l *Loader) Load(ctx context.Context, id string, progress chan<- ProgressUpdate) (*models.Snapshot, error) {
	sendProgress(ctx, progress, lookupUpdate(id))

	lookup, err := l.client.LookupPlaylist(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to look up playlist %s: %w", id, err)
	}
	switch {
	case len(lookup.Playlists) == 0:
		return nil, fmt.Errorf("%w: no playlist with id %s", shared.ErrPlaylistNotFound, id)
	case len(lookup.Playlists) > 1 || lookup.More:
		return nil, fmt.Errorf("%w: more than one playlist with id %s", shared.ErrAmbiguousIdentifier, id)
	}

	playlist := lookup.Playlists[0]
	sendProgress(ctx, progress, foundPlaylistUpdate(&playlist))

	var items []models.Item
	pageToken := ""
	for {
		page, err := l.client.ListItems(ctx, playlist.ID, pageToken, services.MaxPageSize)
		if err != nil {
			return nil, fmt.Errorf("failed to list items of playlist %s: %w", id, err)
		}

		total := max(page.TotalResults, len(items)+len(page.Items))
		for _, item := range page.Items {
			items = append(items, item)
			sendProgress(ctx, progress, readItemUpdate(len(items), total, item))
		}

		if page.NextPageToken == "" {
			break
		}
		if page.NextPageToken == pageToken {
			return nil, fmt.Errorf("%w: page token %q repeated", shared.ErrMalformedResponse, pageToken)
		}
		pageToken = page.NextPageToken
	}
	sendProgress(ctx, progress, readCompleteUpdate(len(items)))

	slices.SortStableFunc(items, func(a, b models.Item) int { return a.Position - b.Position })
	for i := range items {
		if items[i].Position != i {
			sendProgress(ctx, progress, fixPositionUpdate(items[i], items[i].Position, i))
			items[i].Position = i
		}
	}

	return &models.Snapshot{Playlist: playlist, Items: items}, nil
}
