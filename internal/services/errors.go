package services

import (
	"fmt"
	"net/http"

	"github.com/desertthunder/ytclone/internal/shared"
	"github.com/tidwall/gjson"
)

// Google error reasons that share status 403 with access-denied but mean something else.
const (
	ReasonQuotaExceeded         = "quotaExceeded"
	ReasonRateLimitExceeded     = "rateLimitExceeded"
	ReasonUserRateLimitExceeded = "userRateLimitExceeded"
)

// APIError is a non-2xx response from the YouTube Data API.
type APIError struct {
	StatusCode int
	Reason     string // first entry of error.errors[].reason, if any
	Message    string
}

func (e *APIError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("youtube API error (status %d, %s): %s", e.StatusCode, e.Reason, e.Message)
	}
	return fmt.Sprintf("youtube API error (status %d): %s", e.StatusCode, e.Message)
}

// Unwrap lets callers match every API error with [shared.ErrAPIRequest].
func (e *APIError) Unwrap() error {
	return shared.ErrAPIRequest
}

// RateLimited reports whether the server refused the call because of request rate rather than permissions.
func (e *APIError) RateLimited() bool {
	return e.Reason == ReasonRateLimitExceeded || e.Reason == ReasonUserRateLimitExceeded
}

// QuotaExhausted reports whether the project's daily quota is spent.
func (e *APIError) QuotaExhausted() bool {
	return e.Reason == ReasonQuotaExceeded
}

// newAPIError builds an [APIError] from a Google JSON error body.
//
//	{"error": {"code": 403, "message": "...", "errors": [{"reason": "forbidden", ...}], "status": "PERMISSION_DENIED"}}
func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}

	if gjson.ValidBytes(body) {
		parsed := gjson.ParseBytes(body)
		apiErr.Message = parsed.Get("error.message").String()
		apiErr.Reason = parsed.Get("error.errors.0.reason").String()
		if apiErr.Reason == "" {
			apiErr.Reason = parsed.Get("error.status").String()
		}
	}

	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}
	return apiErr
}
