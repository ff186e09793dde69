// YouTube Data API [YouTubeService] implementation
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/desertthunder/ytclone/internal/models"
	"github.com/desertthunder/ytclone/internal/shared"
)

// YouTubeService is a YouTube Data API v3 client.
type YouTubeService struct {
	apiURL     string
	batchURL   string
	httpClient *http.Client
}

// YouTubeOpts configures a [YouTubeService]. Empty fields fall back to the public Google endpoints and
// [http.DefaultClient].
type YouTubeOpts struct {
	APIURL     string
	BatchURL   string
	HTTPClient *http.Client
}

// NewYouTubeService creates a new YouTube Data API client.
func NewYouTubeService(opts YouTubeOpts) *YouTubeService {
	if opts.APIURL == "" {
		opts.APIURL = defaultAPIURL
	}
	if opts.BatchURL == "" {
		opts.BatchURL = defaultBatchURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &YouTubeService{
		apiURL:     strings.TrimRight(opts.APIURL, "/"),
		batchURL:   opts.BatchURL,
		httpClient: opts.HTTPClient,
	}
}

// Name returns the service name.
func (y *YouTubeService) Name() string {
	return "YouTube"
}

// doRequest performs a JSON request against endpoint and decodes a 2xx response into result.
func (y *YouTubeService) doRequest(ctx context.Context, method, endpoint string, query url.Values, body, result any) error {
	apiURL := y.apiURL + endpoint
	if len(query) > 0 {
		apiURL += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := y.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	return decodeResponse(resp.StatusCode, resp.Body, result)
}

// decodeResponse turns a status and body into either a decoded result or an error.
//
// Shared by plain requests and batch parts.
func decodeResponse(status int, body io.Reader, result any) error {
	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if status < 200 || status >= 300 {
		return newAPIError(status, data)
	}

	if result != nil {
		if err := json.Unmarshal(data, result); err != nil {
			return fmt.Errorf("%w: failed to decode response: %v", shared.ErrMalformedResponse, err)
		}
	}
	return nil
}

// LookupPlaylist retrieves playlists matching id, asking for a single result.
//
// Calls GET /playlists?id={id}&maxResults=1.
func (y *YouTubeService) LookupPlaylist(ctx context.Context, id string) (*PlaylistLookup, error) {
	query := url.Values{}
	query.Set("part", lookupPlaylistParts)
	query.Set("id", id)
	query.Set("maxResults", "1")

	var resp playlistListResponse
	if err := y.doRequest(ctx, http.MethodGet, "/playlists", query, nil, &resp); err != nil {
		return nil, err
	}

	lookup := &PlaylistLookup{
		Playlists: make([]models.Playlist, len(resp.Items)),
		More:      resp.NextPageToken != "",
	}
	for i, p := range resp.Items {
		lookup.Playlists[i] = p.toModel()
	}
	return lookup, nil
}

// ListItems retrieves one page of a playlist's items. An empty pageToken requests the first page.
//
// Calls GET /playlistItems?playlistId={id}&maxResults={n}&pageToken={token}.
func (y *YouTubeService) ListItems(ctx context.Context, playlistID, pageToken string, maxResults int) (*ItemPage, error) {
	if maxResults <= 0 || maxResults > MaxPageSize {
		maxResults = MaxPageSize
	}

	query := url.Values{}
	query.Set("part", listItemParts)
	query.Set("playlistId", playlistID)
	query.Set("maxResults", strconv.Itoa(maxResults))
	if pageToken != "" {
		query.Set("pageToken", pageToken)
	}

	var resp playlistItemListResponse
	if err := y.doRequest(ctx, http.MethodGet, "/playlistItems", query, nil, &resp); err != nil {
		return nil, err
	}

	page := &ItemPage{
		Items:         make([]models.Item, len(resp.Items)),
		NextPageToken: resp.NextPageToken,
		TotalResults:  resp.PageInfo.TotalResults,
	}
	for i, it := range resp.Items {
		page.Items[i] = it.toModel()
	}
	return page, nil
}

// CreatePlaylist creates a playlist owned by the authenticated account.
//
// Calls POST /playlists?part=snippet,status.
func (y *YouTubeService) CreatePlaylist(ctx context.Context, playlist models.Playlist) (*models.Playlist, error) {
	query := url.Values{}
	query.Set("part", insertPlaylistParts)

	var created PlaylistResource
	if err := y.doRequest(ctx, http.MethodPost, "/playlists", query, playlistResourceFrom(playlist), &created); err != nil {
		return nil, err
	}
	if created.ID == "" {
		return nil, fmt.Errorf("%w: created playlist has no id", shared.ErrMalformedResponse)
	}

	pl := created.toModel()
	return &pl, nil
}

// InsertItem adds a single item to the playlist named by item.PlaylistID at item.Position.
//
// Calls POST /playlistItems?part=snippet,contentDetails.
func (y *YouTubeService) InsertItem(ctx context.Context, item models.Item) (*models.Item, error) {
	query := url.Values{}
	query.Set("part", insertItemParts)

	var created PlaylistItemResource
	if err := y.doRequest(ctx, http.MethodPost, "/playlistItems", query, playlistItemResourceFrom(item), &created); err != nil {
		return nil, err
	}

	inserted := created.toModel()
	return &inserted, nil
}
