// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/ytclone/internal/models"
	"github.com/desertthunder/ytclone/internal/services"
)

// MockYouTube is a scripted test double for [services.YouTubeService].
//
// Insert outcomes are scripted per video: the n-th insert attempt of a video returns Outcomes[videoID][n], and
// attempts past the end of the script succeed.
type MockYouTube struct {
	mu sync.Mutex

	Playlists []models.Playlist // returned by LookupPlaylist
	More      bool
	Pages     [][]models.Item // ListItems pages, chained with tokens "p1", "p2", ...
	Created   *models.Playlist

	LookupErr error
	ListErr   error
	CreateErr error
	Outcomes  map[string][]error
	BatchErrs []error // whole-request error per InsertItems call, nil entries succeed
	Reverse   bool    // deliver batch outcomes in reverse submission order

	Attempts    map[string]int
	Inserted    []models.Item
	Sent        []models.Item // every payload submitted, in order
	CreatedWith []models.Playlist
	InsertCalls int
	BatchCalls  int
	ListCalls   int
}

// NewMockYouTube returns a mock serving playlist with items split into pages of pageSize.
func NewMockYouTube(playlist models.Playlist, items []models.Item, pageSize int) *MockYouTube {
	m := &MockYouTube{
		Playlists: []models.Playlist{playlist},
		Created:   &models.Playlist{ID: "PLcopy"},
		Outcomes:  map[string][]error{},
		Attempts:  map[string]int{},
	}
	for start := 0; start < len(items); start += pageSize {
		end := min(start+pageSize, len(items))
		m.Pages = append(m.Pages, items[start:end])
	}
	if len(m.Pages) == 0 {
		m.Pages = [][]models.Item{nil}
	}
	return m
}

func (m *MockYouTube) Name() string { return "mock" }

func (m *MockYouTube) LookupPlaylist(ctx context.Context, id string) (*services.PlaylistLookup, error) {
	if m.LookupErr != nil {
		return nil, m.LookupErr
	}
	return &services.PlaylistLookup{Playlists: m.Playlists, More: m.More}, nil
}

func (m *MockYouTube) ListItems(ctx context.Context, playlistID, pageToken string, maxResults int) (*services.ItemPage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ListCalls++

	if m.ListErr != nil {
		return nil, m.ListErr
	}

	idx := 0
	if pageToken != "" {
		if _, err := fmt.Sscanf(pageToken, "p%d", &idx); err != nil || idx >= len(m.Pages) {
			return nil, fmt.Errorf("unknown page token %q", pageToken)
		}
	}

	total := 0
	for _, p := range m.Pages {
		total += len(p)
	}
	page := &services.ItemPage{Items: m.Pages[idx], TotalResults: total}
	if idx+1 < len(m.Pages) {
		page.NextPageToken = fmt.Sprintf("p%d", idx+1)
	}
	return page, nil
}

func (m *MockYouTube) CreatePlaylist(ctx context.Context, playlist models.Playlist) (*models.Playlist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreatedWith = append(m.CreatedWith, playlist)

	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	created := playlist
	created.ID = m.Created.ID
	return &created, nil
}

// attempt records one insert of item and returns its scripted outcome. Callers hold m.mu.
func (m *MockYouTube) attempt(item models.Item) (*models.Item, error) {
	vid := item.Resource.VideoID
	n := m.Attempts[vid]
	m.Attempts[vid]++
	m.Sent = append(m.Sent, item)

	if script := m.Outcomes[vid]; n < len(script) && script[n] != nil {
		return nil, script[n]
	}

	m.Inserted = append(m.Inserted, item)
	inserted := item
	inserted.ID = "new-" + vid
	return &inserted, nil
}

func (m *MockYouTube) InsertItem(ctx context.Context, item models.Item) (*models.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InsertCalls++
	return m.attempt(item)
}

func (m *MockYouTube) InsertItems(ctx context.Context, entries []services.BatchEntry, fn services.BatchCallback) error {
	type result struct {
		key      string
		inserted *models.Item
		err      error
	}

	m.mu.Lock()
	call := m.BatchCalls
	m.BatchCalls++
	if call < len(m.BatchErrs) && m.BatchErrs[call] != nil {
		m.mu.Unlock()
		return m.BatchErrs[call]
	}

	results := make([]result, len(entries))
	for i, entry := range entries {
		inserted, err := m.attempt(entry.Item)
		results[i] = result{entry.Key, inserted, err}
	}
	reverse := m.Reverse
	m.mu.Unlock()

	for i := range results {
		r := results[i]
		if reverse {
			r = results[len(results)-1-i]
		}
		if err := fn(r.key, r.inserted, r.err); err != nil {
			return err
		}
	}
	return nil
}

// APIError builds a [services.APIError] with the given status and reason.
func APIError(status int, reason string) error {
	return &services.APIError{StatusCode: status, Reason: reason, Message: "mock"}
}

// Items builds n playlist items with ids "item{i}", videos "v{i}" and positions 0..n-1.
func Items(n int) []models.Item {
	items := make([]models.Item, n)
	for i := range items {
		items[i] = models.Item{
			ID:             fmt.Sprintf("item%d", i),
			ETag:           fmt.Sprintf("etag%d", i),
			PlaylistID:     "PLsrc",
			Resource:       models.Resource{Kind: "youtube#video", VideoID: fmt.Sprintf("v%d", i)},
			Position:       i,
			OwnerChannelID: "UCsrc",
		}
	}
	return items
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
