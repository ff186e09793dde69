package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"syscall"
	"testing"

	"github.com/desertthunder/ytclone/internal/shared"
	tu "github.com/desertthunder/ytclone/internal/testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		want   Outcome
		reason string
	}{
		{"success", nil, OutcomeSuccess, ""},
		{"private video", tu.APIError(403, "forbidden"), OutcomeSkip, "private"},
		{"deleted video", tu.APIError(404, "videoNotFound"), OutcomeSkip, "deleted"},
		{"quota exhausted", tu.APIError(403, "quotaExceeded"), OutcomeFatal, "quota exhausted"},
		{"rate limited", tu.APIError(403, "rateLimitExceeded"), OutcomeRetry, "rate limited"},
		{"user rate limited", tu.APIError(403, "userRateLimitExceeded"), OutcomeRetry, "rate limited"},
		{"internal error", tu.APIError(500, ""), OutcomeRetry, "Internal Server Error"},
		{"bad gateway", tu.APIError(502, ""), OutcomeRetry, "Bad Gateway"},
		{"unavailable", tu.APIError(503, ""), OutcomeRetry, "Service Unavailable"},
		{"gateway timeout", tu.APIError(504, ""), OutcomeRetry, "Gateway Timeout"},
		{"bad request", tu.APIError(400, "invalidValue"), OutcomeFatal, "Bad Request"},
		{"unauthorized", tu.APIError(401, "authError"), OutcomeFatal, "Unauthorized"},
		{"wrapped batch failure", fmt.Errorf("batch request failed: %w", tu.APIError(503, "")), OutcomeRetry, "Service Unavailable"},
		{"malformed response", fmt.Errorf("%w: bad part", shared.ErrMalformedResponse), OutcomeRetry, "malformed response"},
		{"truncated body", &url.Error{Op: "Post", URL: "x", Err: io.ErrUnexpectedEOF}, OutcomeRetry, "connection closed early"},
		{"premature eof", fmt.Errorf("read: %w", io.EOF), OutcomeRetry, "connection closed early"},
		{"connection refused", &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}, OutcomeRetry, "connection refused"},
		{"connection reset", fmt.Errorf("read: %w", syscall.ECONNRESET), OutcomeRetry, "connection reset"},
		{"broken pipe", fmt.Errorf("write: %w", syscall.EPIPE), OutcomeRetry, "broken pipe"},
		{"dns failure", &net.DNSError{Err: "no such host", Name: "example.invalid"}, OutcomeRetry, "network error"},
		{"dns failure in client", &url.Error{Op: "Post", URL: "x", Err: &net.DNSError{Err: "no such host", Name: "example.invalid"}}, OutcomeRetry, "network error"},
		{"dial failure in client", &url.Error{Op: "Post", URL: "x", Err: &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("i/o timeout")}}, OutcomeRetry, "network error"},
		{"token refresh failure", fmt.Errorf("request failed: %w", &url.Error{Op: "Post", URL: "x", Err: errors.New("oauth2: token expired and refresh token is not set")}), OutcomeFatal, "unexpected error"},
		{"unsupported scheme", &url.Error{Op: "Get", URL: "ftp://x", Err: errors.New("unsupported protocol scheme")}, OutcomeFatal, "unexpected error"},
		{"cancelled", fmt.Errorf("request failed: %w", context.Canceled), OutcomeFatal, "cancelled"},
		{"deadline", &url.Error{Op: "Post", URL: "x", Err: context.DeadlineExceeded}, OutcomeFatal, "cancelled"},
		{"anything else", errors.New("boom"), OutcomeFatal, "unexpected error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Classify(tt.err)
			if c.Outcome != tt.want {
				t.Errorf("expected %s, got %s", tt.want, c.Outcome)
			}
			if c.Reason != tt.reason {
				t.Errorf("expected reason %q, got %q", tt.reason, c.Reason)
			}
			if c.Err != tt.err {
				t.Errorf("expected original error to be kept")
			}
		})
	}

	t.Run("keeps status", func(t *testing.T) {
		if c := Classify(tu.APIError(503, "")); c.Status != 503 {
			t.Errorf("expected status 503, got %d", c.Status)
		}
	})
}
