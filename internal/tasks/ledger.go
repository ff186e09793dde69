package tasks

import (
	"fmt"
	"slices"

	"github.com/desertthunder/ytclone/internal/models"
	"github.com/desertthunder/ytclone/internal/shared"
)

// RequestState is the lifecycle state of an [InsertionRequest].
type RequestState int

const (
	Pending RequestState = iota
	InFlight
	Completed
	Skipped
	Fatal
)

func (s RequestState) String() string {
	switch s {
	case Pending:
		return "pending"
	case InFlight:
		return "in_flight"
	case Completed:
		return "completed"
	case Skipped:
		return "skipped"
	case Fatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// InsertionRequest is one item queued for creation in the destination playlist.
//
// ID is the source item id. It correlates outcomes in-process and is never part of the payload.
type InsertionRequest struct {
	ID               string
	OriginalPosition int
	Payload          models.Item
	State            RequestState
	Attempts         int
}

// VideoID returns the video the request inserts.
func (r *InsertionRequest) VideoID() string {
	return r.Payload.Resource.VideoID
}

func (r *InsertionRequest) event() ItemEvent {
	return ItemEvent{RequestID: r.ID, VideoID: r.VideoID(), Position: r.Payload.Position}
}

// Ledger holds every insertion request partitioned by state, plus a lookup from correlation key to request.
//
// Between rounds each request sits in exactly one of pending, completed or skipped. Only the ledger mutates
// payload positions.
type Ledger struct {
	requests  []*InsertionRequest // original order
	byID      map[string]*InsertionRequest
	pending   []*InsertionRequest
	inFlight  int
	completed []*InsertionRequest
	skipped   []*InsertionRequest
}

// NewLedger creates one pending request per item, retargeted at destID.
//
// Items must already be sorted by position. Items without an id get a synthetic key. Duplicate ids are rejected.
func NewLedger(items []models.Item, destID string) (*Ledger, error) {
	l := &Ledger{
		requests: make([]*InsertionRequest, 0, len(items)),
		byID:     make(map[string]*InsertionRequest, len(items)),
	}

	for i, item := range items {
		key := item.ID
		if key == "" {
			key = fmt.Sprintf("#%d", i)
		}
		if _, dup := l.byID[key]; dup {
			return nil, fmt.Errorf("%w: duplicate playlist item id %q", shared.ErrInvalidInput, key)
		}

		req := &InsertionRequest{
			ID:               key,
			OriginalPosition: item.Position,
			Payload:          item.ForInsert(destID),
			State:            Pending,
		}
		l.requests = append(l.requests, req)
		l.byID[key] = req
	}
	l.pending = slices.Clone(l.requests)
	return l, nil
}

// Len returns the number of requests in the ledger.
func (l *Ledger) Len() int { return len(l.requests) }

// Lookup returns the request with correlation key id.
func (l *Ledger) Lookup(id string) (*InsertionRequest, bool) {
	req, ok := l.byID[id]
	return req, ok
}

func (l *Ledger) Pending() []*InsertionRequest   { return l.pending }
func (l *Ledger) Completed() []*InsertionRequest { return l.completed }
func (l *Ledger) Skipped() []*InsertionRequest   { return l.skipped }

// Done reports whether every request is resolved.
func (l *Ledger) Done() bool {
	return len(l.pending) == 0 && l.inFlight == 0
}

// Begin moves every pending request in flight and returns them in original order.
func (l *Ledger) Begin() []*InsertionRequest {
	round := l.pending
	l.pending = nil
	for _, req := range round {
		req.State = InFlight
		req.Attempts++
	}
	l.inFlight = len(round)
	return round
}

// Complete marks an in-flight request as inserted.
func (l *Ledger) Complete(req *InsertionRequest) error {
	if err := l.resolve(req); err != nil {
		return err
	}
	req.State = Completed
	l.completed = append(l.completed, req)
	return nil
}

// Skip marks an in-flight request as permanently skipped and shifts every unresolved request that originally
// came after it down by one position. It returns the shifted requests.
func (l *Ledger) Skip(req *InsertionRequest) ([]*InsertionRequest, error) {
	if err := l.resolve(req); err != nil {
		return nil, err
	}
	req.State = Skipped
	l.skipped = append(l.skipped, req)

	var shifted []*InsertionRequest
	for _, other := range l.requests {
		if other.State != Pending && other.State != InFlight {
			continue
		}
		if other.OriginalPosition > req.OriginalPosition {
			other.Payload.Position--
			shifted = append(shifted, other)
		}
	}
	return shifted, nil
}

// Retry returns an in-flight request to the pending set for the next round.
func (l *Ledger) Retry(req *InsertionRequest) error {
	if err := l.resolve(req); err != nil {
		return err
	}
	req.State = Pending
	l.pending = append(l.pending, req)
	return nil
}

// Fail marks an in-flight request fatal. The ledger is unusable for further rounds afterwards.
func (l *Ledger) Fail(req *InsertionRequest) error {
	if err := l.resolve(req); err != nil {
		return err
	}
	req.State = Fatal
	return nil
}

// End closes the current round. Requests the submitter never reported are requeued, and the pending set is
// put back into original order.
func (l *Ledger) End() {
	for _, req := range l.requests {
		if req.State == InFlight {
			req.State = Pending
			l.pending = append(l.pending, req)
		}
	}
	l.inFlight = 0
	slices.SortFunc(l.pending, func(a, b *InsertionRequest) int {
		return a.OriginalPosition - b.OriginalPosition
	})
}

func (l *Ledger) resolve(req *InsertionRequest) error {
	if req == nil || l.byID[req.ID] != req {
		return fmt.Errorf("%w: request is not part of this ledger", shared.ErrInvalidInput)
	}
	if req.State != InFlight {
		return fmt.Errorf("%w: request %s is %s, not in flight", shared.ErrInvalidInput, req.ID, req.State)
	}
	l.inFlight--
	return nil
}
