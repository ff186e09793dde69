package models

// Playlist represents a YouTube playlist.
//
// ETag and ChannelID are scoped to the owning account and ItemCount is recomputed server-side,
// so none of them are meaningful on a copy.
type Playlist struct {
	ID              string
	ETag            string
	Title           string
	Description     string
	ChannelID       string
	Tags            []string
	DefaultLanguage string
	PrivacyStatus   string
	ItemCount       int
}

// Resource identifies the media an [Item] points at. It is copied verbatim.
type Resource struct {
	Kind    string
	VideoID string
}

// Item represents one playlist entry.
type Item struct {
	ID             string // source playlist item id
	ETag           string
	PlaylistID     string
	Resource       Resource
	Position       int
	OwnerChannelID string // channel that owns the containing playlist
	Title          string
	Description    string
	Note           string
	StartAt        string
	EndAt          string
}

// Snapshot is a playlist together with its full item list sorted by position.
type Snapshot struct {
	Playlist Playlist
	Items    []Item
}

// ForCopy returns the playlist with account-scoped fields cleared and prefix prepended to the title.
func (p Playlist) ForCopy(prefix string) Playlist {
	p.ID = ""
	p.ETag = ""
	p.ChannelID = ""
	p.ItemCount = 0
	p.Title = prefix + p.Title
	if p.Tags != nil {
		p.Tags = append([]string(nil), p.Tags...)
	}
	return p
}

// ForInsert returns the item retargeted at playlistID with its own id, etag and provenance cleared.
func (i Item) ForInsert(playlistID string) Item {
	i.ID = ""
	i.ETag = ""
	i.OwnerChannelID = ""
	i.PlaylistID = playlistID
	return i
}
