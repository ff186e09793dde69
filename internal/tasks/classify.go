package tasks

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"syscall"

	"github.com/desertthunder/ytclone/internal/services"
	"github.com/desertthunder/ytclone/internal/shared"
)

// Outcome is what the engine does with a finished insert.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeSkip
	OutcomeRetry
	OutcomeFatal
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeSkip:
		return "skip"
	case OutcomeRetry:
		return "retry"
	default:
		return "fatal"
	}
}

// Classification is an [Outcome] together with the detail used for reporting.
type Classification struct {
	Outcome Outcome
	Status  int    // HTTP status, 0 for transport failures
	Reason  string // short human-readable cause
	Err     error
}

// Server-side failures worth resubmitting unchanged.
var transientStatuses = map[int]bool{
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

// Classify maps the error of one insert call to an [Outcome]. A nil err is a success.
func Classify(err error) Classification {
	if err == nil {
		return Classification{Outcome: OutcomeSuccess}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return Classification{Outcome: OutcomeFatal, Reason: "cancelled", Err: err}
	}

	var apiErr *services.APIError
	if errors.As(err, &apiErr) {
		return classifyStatus(apiErr, err)
	}

	switch {
	case errors.Is(err, shared.ErrMalformedResponse):
		return Classification{Outcome: OutcomeRetry, Reason: "malformed response", Err: err}
	case errors.Is(err, io.ErrUnexpectedEOF), errors.Is(err, io.EOF):
		return Classification{Outcome: OutcomeRetry, Reason: "connection closed early", Err: err}
	case errors.Is(err, syscall.ECONNREFUSED):
		return Classification{Outcome: OutcomeRetry, Reason: "connection refused", Err: err}
	case errors.Is(err, syscall.ECONNRESET):
		return Classification{Outcome: OutcomeRetry, Reason: "connection reset", Err: err}
	case errors.Is(err, syscall.EPIPE):
		return Classification{Outcome: OutcomeRetry, Reason: "broken pipe", Err: err}
	}

	// *url.Error is itself a net.Error, so only its cause decides.
	var netErr net.Error
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() || errors.As(urlErr.Err, &netErr) {
			return Classification{Outcome: OutcomeRetry, Reason: "network error", Err: err}
		}
		return Classification{Outcome: OutcomeFatal, Reason: "unexpected error", Err: err}
	}
	if errors.As(err, &netErr) {
		return Classification{Outcome: OutcomeRetry, Reason: "network error", Err: err}
	}

	return Classification{Outcome: OutcomeFatal, Reason: "unexpected error", Err: err}
}

func classifyStatus(apiErr *services.APIError, err error) Classification {
	c := Classification{Status: apiErr.StatusCode, Err: err}

	switch {
	case apiErr.StatusCode == http.StatusForbidden && apiErr.QuotaExhausted():
		c.Outcome, c.Reason = OutcomeFatal, "quota exhausted"
	case apiErr.StatusCode == http.StatusForbidden && apiErr.RateLimited():
		c.Outcome, c.Reason = OutcomeRetry, "rate limited"
	case apiErr.StatusCode == http.StatusForbidden:
		c.Outcome, c.Reason = OutcomeSkip, "private"
	case apiErr.StatusCode == http.StatusNotFound:
		c.Outcome, c.Reason = OutcomeSkip, "deleted"
	case transientStatuses[apiErr.StatusCode]:
		c.Outcome, c.Reason = OutcomeRetry, http.StatusText(apiErr.StatusCode)
	default:
		c.Outcome, c.Reason = OutcomeFatal, http.StatusText(apiErr.StatusCode)
	}
	return c
}
