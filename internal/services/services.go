// YouTube Data API v3 wire types
//
// Based on https://developers.google.com/youtube/v3/docs/playlists and .../playlistItems
package services

import "github.com/desertthunder/ytclone/internal/models"

const (
	// MaxPageSize is the largest maxResults the list endpoints accept.
	MaxPageSize = 50
	// MaxBatchSize is the number of calls the batch endpoint accepts per request.
	MaxBatchSize = 1000

	defaultAPIURL   = "https://www.googleapis.com/youtube/v3"
	defaultBatchURL = "https://www.googleapis.com/batch/youtube/v3"

	lookupPlaylistParts = "id,snippet,status,contentDetails"
	listItemParts       = "id,snippet,contentDetails"
	insertPlaylistParts = "snippet,status"
	insertItemParts     = "snippet,contentDetails"
)

type pageInfo struct {
	TotalResults   int `json:"totalResults"`
	ResultsPerPage int `json:"resultsPerPage"`
}

type playlistSnippet struct {
	Title           string   `json:"title"`
	Description     string   `json:"description,omitempty"`
	ChannelID       string   `json:"channelId,omitempty"`
	Tags            []string `json:"tags,omitempty"`
	DefaultLanguage string   `json:"defaultLanguage,omitempty"`
}

type playlistStatus struct {
	PrivacyStatus string `json:"privacyStatus,omitempty"`
}

type playlistContentDetails struct {
	ItemCount int `json:"itemCount"`
}

// PlaylistResource is a youtube#playlist resource.
type PlaylistResource struct {
	Kind           string                  `json:"kind,omitempty"`
	ETag           string                  `json:"etag,omitempty"`
	ID             string                  `json:"id,omitempty"`
	Snippet        *playlistSnippet        `json:"snippet,omitempty"`
	Status         *playlistStatus         `json:"status,omitempty"`
	ContentDetails *playlistContentDetails `json:"contentDetails,omitempty"`
}

type playlistListResponse struct {
	NextPageToken string             `json:"nextPageToken"`
	PageInfo      pageInfo           `json:"pageInfo"`
	Items         []PlaylistResource `json:"items"`
}

type resourceID struct {
	Kind    string `json:"kind"`
	VideoID string `json:"videoId"`
}

type playlistItemSnippet struct {
	PlaylistID             string     `json:"playlistId"`
	Position               *int       `json:"position,omitempty"` // pointer so position 0 is still sent
	ResourceID             resourceID `json:"resourceId"`
	Title                  string     `json:"title,omitempty"`
	Description            string     `json:"description,omitempty"`
	ChannelID              string     `json:"channelId,omitempty"`
	VideoOwnerChannelID    string     `json:"videoOwnerChannelId,omitempty"`
	VideoOwnerChannelTitle string     `json:"videoOwnerChannelTitle,omitempty"`
}

type playlistItemContentDetails struct {
	VideoID string `json:"videoId,omitempty"`
	Note    string `json:"note,omitempty"`
	StartAt string `json:"startAt,omitempty"`
	EndAt   string `json:"endAt,omitempty"`
}

// PlaylistItemResource is a youtube#playlistItem resource.
type PlaylistItemResource struct {
	Kind           string                      `json:"kind,omitempty"`
	ETag           string                      `json:"etag,omitempty"`
	ID             string                      `json:"id,omitempty"`
	Snippet        *playlistItemSnippet        `json:"snippet,omitempty"`
	ContentDetails *playlistItemContentDetails `json:"contentDetails,omitempty"`
}

type playlistItemListResponse struct {
	NextPageToken string                 `json:"nextPageToken"`
	PageInfo      pageInfo               `json:"pageInfo"`
	Items         []PlaylistItemResource `json:"items"`
}

// PlaylistLookup is the result of looking a playlist up by id.
//
// More is set when the server indicated further matches beyond Playlists.
type PlaylistLookup struct {
	Playlists []models.Playlist
	More      bool
}

// ItemPage is one page of playlist items.
type ItemPage struct {
	Items         []models.Item
	NextPageToken string
	TotalResults  int
}

func (p PlaylistResource) toModel() models.Playlist {
	pl := models.Playlist{ID: p.ID, ETag: p.ETag}
	if p.Snippet != nil {
		pl.Title = p.Snippet.Title
		pl.Description = p.Snippet.Description
		pl.ChannelID = p.Snippet.ChannelID
		pl.Tags = p.Snippet.Tags
		pl.DefaultLanguage = p.Snippet.DefaultLanguage
	}
	if p.Status != nil {
		pl.PrivacyStatus = p.Status.PrivacyStatus
	}
	if p.ContentDetails != nil {
		pl.ItemCount = p.ContentDetails.ItemCount
	}
	return pl
}

func playlistResourceFrom(pl models.Playlist) PlaylistResource {
	res := PlaylistResource{
		ID:   pl.ID,
		ETag: pl.ETag,
		Snippet: &playlistSnippet{
			Title:           pl.Title,
			Description:     pl.Description,
			ChannelID:       pl.ChannelID,
			Tags:            pl.Tags,
			DefaultLanguage: pl.DefaultLanguage,
		},
	}
	if pl.PrivacyStatus != "" {
		res.Status = &playlistStatus{PrivacyStatus: pl.PrivacyStatus}
	}
	return res
}

func (p PlaylistItemResource) toModel() models.Item {
	item := models.Item{ID: p.ID, ETag: p.ETag}
	if s := p.Snippet; s != nil {
		item.PlaylistID = s.PlaylistID
		item.Resource = models.Resource{Kind: s.ResourceID.Kind, VideoID: s.ResourceID.VideoID}
		item.Title = s.Title
		item.Description = s.Description
		item.OwnerChannelID = s.ChannelID
		if s.Position != nil {
			item.Position = *s.Position
		}
	}
	if c := p.ContentDetails; c != nil {
		if item.Resource.VideoID == "" {
			item.Resource = models.Resource{Kind: "youtube#video", VideoID: c.VideoID}
		}
		item.Note = c.Note
		item.StartAt = c.StartAt
		item.EndAt = c.EndAt
	}
	return item
}

func playlistItemResourceFrom(item models.Item) PlaylistItemResource {
	position := item.Position
	res := PlaylistItemResource{
		ID:   item.ID,
		ETag: item.ETag,
		Snippet: &playlistItemSnippet{
			PlaylistID:  item.PlaylistID,
			Position:    &position,
			ResourceID:  resourceID{Kind: item.Resource.Kind, VideoID: item.Resource.VideoID},
			Title:       item.Title,
			Description: item.Description,
			ChannelID:   item.OwnerChannelID,
		},
	}
	if item.Note != "" || item.StartAt != "" || item.EndAt != "" {
		res.ContentDetails = &playlistItemContentDetails{Note: item.Note, StartAt: item.StartAt, EndAt: item.EndAt}
	}
	return res
}
