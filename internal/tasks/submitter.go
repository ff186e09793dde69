package tasks

import (
	"context"
	"fmt"

	"github.com/desertthunder/ytclone/internal/models"
	"github.com/desertthunder/ytclone/internal/services"
)

// OutcomeFunc receives the result of one submitted request. Returning an error aborts the submission.
type OutcomeFunc func(req *InsertionRequest, inserted *models.Item, err error) error

// BatchSubmitter submits a round of requests and reports every outcome through fn before returning.
type BatchSubmitter interface {
	Submit(ctx context.Context, requests []*InsertionRequest, fn OutcomeFunc) error
}

// ItemInserter inserts one playlist item per call.
type ItemInserter interface {
	InsertItem(ctx context.Context, item models.Item) (*models.Item, error)
}

// BatchInserter inserts many playlist items in one grouped call.
type BatchInserter interface {
	InsertItems(ctx context.Context, entries []services.BatchEntry, fn services.BatchCallback) error
}

// SequentialSubmitter sends one blocking insert per request, in order.
//
// Each payload is read right before it is sent, so shifts caused by earlier skips in the same round apply.
type SequentialSubmitter struct {
	client ItemInserter
}

func NewSequentialSubmitter(client ItemInserter) *SequentialSubmitter {
	return &SequentialSubmitter{client: client}
}

func (s *SequentialSubmitter) Submit(ctx context.Context, requests []*InsertionRequest, fn OutcomeFunc) error {
	for _, req := range requests {
		inserted, err := s.client.InsertItem(ctx, req.Payload)
		if err := fn(req, inserted, err); err != nil {
			return err
		}
	}
	return nil
}

// GroupedSubmitter sends the whole round as one batch request.
//
// Outcomes arrive in whatever order the server answers. A transient failure of the batch request itself is
// delivered to every request that has not been reported yet; any other batch failure is returned.
type GroupedSubmitter struct {
	client BatchInserter
}

func NewGroupedSubmitter(client BatchInserter) *GroupedSubmitter {
	return &GroupedSubmitter{client: client}
}

func (g *GroupedSubmitter) Submit(ctx context.Context, requests []*InsertionRequest, fn OutcomeFunc) error {
	byKey := make(map[string]*InsertionRequest, len(requests))
	entries := make([]services.BatchEntry, len(requests))
	for i, req := range requests {
		byKey[req.ID] = req
		entries[i] = services.BatchEntry{Key: req.ID, Item: req.Payload}
	}

	reported := make(map[string]bool, len(requests))
	var abort error
	err := g.client.InsertItems(ctx, entries, func(key string, inserted *models.Item, err error) error {
		req, ok := byKey[key]
		if !ok || reported[key] {
			return nil
		}
		reported[key] = true
		if cbErr := fn(req, inserted, err); cbErr != nil {
			abort = cbErr
			return cbErr
		}
		return nil
	})

	if abort != nil {
		return abort
	}
	if err == nil {
		return nil
	}

	batchErr := fmt.Errorf("batch request failed: %w", err)
	if Classify(err).Outcome != OutcomeRetry {
		return batchErr
	}
	for _, req := range requests {
		if reported[req.ID] {
			continue
		}
		if cbErr := fn(req, nil, batchErr); cbErr != nil {
			return cbErr
		}
	}
	return nil
}
