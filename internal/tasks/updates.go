package tasks

import (
	"context"
	"fmt"

	"github.com/desertthunder/ytclone/internal/models"
)

// ProgressUpdate represents a progress event during a copy.
//
// Used to stream status to the CLI layer as the copy runs.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data, usually an [ItemEvent]
}

// ItemEvent is the Data payload of per-item updates.
type ItemEvent struct {
	RequestID string
	VideoID   string
	Position  int // payload position when the event happened
	From      int // previous position, for FixPosition
	Status    int // HTTP status, when the outcome carried one
	Reason    string
	Err       error
}

// Operation phase enumeration
type Phase int

const (
	LookupPlaylist Phase = iota
	ReadItem
	ReadComplete
	FixPosition
	CreatePlaylist
	WouldInsert
	RoundStart
	Insert
	Skip
	FillGap
	Retry
	RoundComplete
)

func (p Phase) String() string {
	switch p {
	case LookupPlaylist:
		return "lookup_playlist"
	case ReadItem:
		return "read_item"
	case ReadComplete:
		return "read_complete"
	case FixPosition:
		return "fix_position"
	case CreatePlaylist:
		return "create_playlist"
	case WouldInsert:
		return "would_insert"
	case RoundStart:
		return "round_start"
	case Insert:
		return "insert"
	case Skip:
		return "skip"
	case FillGap:
		return "fill_gap"
	case Retry:
		return "retry"
	case RoundComplete:
		return "round_complete"
	default:
		return ""
	}
}

// sendProgress delivers update unless progress is nil. It blocks until the update is read or ctx is done.
func sendProgress(ctx context.Context, progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	case <-ctx.Done():
	}
}

func lookupUpdate(id string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   LookupPlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Looking up playlist %s...", id),
	}
}

func foundPlaylistUpdate(pl *models.Playlist) ProgressUpdate {
	return ProgressUpdate{
		Phase:   LookupPlaylist,
		Step:    1,
		Total:   1,
		Message: pl.Title,
		Data:    pl,
	}
}

func readItemUpdate(step, total int, item models.Item) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ReadItem,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Read video %s", item.Resource.VideoID),
		Data:    ItemEvent{RequestID: item.ID, VideoID: item.Resource.VideoID, Position: item.Position},
	}
}

func readCompleteUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ReadComplete,
		Step:    total,
		Total:   total,
		Message: fmt.Sprintf("Read %d videos", total),
	}
}

func fixPositionUpdate(item models.Item, from, to int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FixPosition,
		Message: fmt.Sprintf("Fixing position: %d -> %d", from, to),
		Data:    ItemEvent{RequestID: item.ID, VideoID: item.Resource.VideoID, Position: to, From: from},
	}
}

func createPlaylistUpdate(pl *models.Playlist, dryRun bool) ProgressUpdate {
	msg := fmt.Sprintf("Playlist created: %s (ID: %s)", pl.Title, pl.ID)
	if dryRun {
		msg = fmt.Sprintf("Would create playlist: %s", pl.Title)
	}
	return ProgressUpdate{
		Phase:   CreatePlaylist,
		Step:    1,
		Total:   1,
		Message: msg,
		Data:    pl,
	}
}

func wouldInsertUpdate(step, total int, item models.Item) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WouldInsert,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Would insert video %s at position %d", item.Resource.VideoID, item.Position),
		Data:    ItemEvent{VideoID: item.Resource.VideoID, Position: item.Position},
	}
}

func roundStartUpdate(round, pending int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   RoundStart,
		Step:    round,
		Total:   pending,
		Message: fmt.Sprintf("Round %d: writing %d videos", round, pending),
	}
}

func insertUpdate(step, total int, req *InsertionRequest) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Insert,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Inserted video %s", req.VideoID()),
		Data:    req.event(),
	}
}

func skipUpdate(step, total int, req *InsertionRequest, c Classification) ProgressUpdate {
	ev := req.event()
	ev.Status, ev.Reason, ev.Err = c.Status, c.Reason, c.Err
	return ProgressUpdate{
		Phase:   Skip,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Video %s %s, skipping", req.VideoID(), c.Reason),
		Data:    ev,
	}
}

func fillGapUpdate(req *InsertionRequest) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FillGap,
		Message: fmt.Sprintf("Filling gap at position %d", req.Payload.Position),
		Data:    req.event(),
	}
}

func retryUpdate(req *InsertionRequest, c Classification) ProgressUpdate {
	ev := req.event()
	ev.Status, ev.Reason, ev.Err = c.Status, c.Reason, c.Err
	msg := fmt.Sprintf("Server returned status %d for video %s, trying again", c.Status, req.VideoID())
	if c.Status == 0 {
		msg = fmt.Sprintf("Request for video %s failed (%s), trying again", req.VideoID(), c.Reason)
	}
	return ProgressUpdate{
		Phase:   Retry,
		Message: msg,
		Data:    ev,
	}
}

func roundCompleteUpdate(round int, l *Ledger) ProgressUpdate {
	return ProgressUpdate{
		Phase: RoundComplete,
		Step:  round,
		Total: l.Len(),
		Message: fmt.Sprintf("Round %d complete: %d inserted, %d skipped, %d pending",
			round, len(l.Completed()), len(l.Skipped()), len(l.Pending())),
	}
}
