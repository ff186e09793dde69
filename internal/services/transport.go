package services

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"
)

// TransportOpts configures [NewTransport].
type TransportOpts struct {
	Base              http.RoundTripper // defaults to [http.DefaultTransport]
	RequestsPerSecond float64           // <= 0 disables rate limiting
	Logger            *log.Logger       // nil disables request logging
}

// NewTransport wraps the base transport with a request rate limiter and request logging.
func NewTransport(opts TransportOpts) http.RoundTripper {
	rt := opts.Base
	if rt == nil {
		rt = http.DefaultTransport
	}

	if opts.RequestsPerSecond > 0 {
		burst := max(1, int(opts.RequestsPerSecond))
		rt = &limitedTransport{base: rt, limiter: rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)}
	}
	if opts.Logger != nil {
		rt = &loggingTransport{base: rt, logger: opts.Logger}
	}
	return rt
}

type limitedTransport struct {
	base    http.RoundTripper
	limiter *rate.Limiter
}

func (t *limitedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	return t.base.RoundTrip(req)
}

type loggingTransport struct {
	base   http.RoundTripper
	logger *log.Logger
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		t.logger.Info("request failed", "method", req.Method, "url", req.URL.Redacted(), "error", err)
		return nil, err
	}

	t.logger.Info("request", "method", req.Method, "url", req.URL.Redacted(), "status", resp.StatusCode, "elapsed", time.Since(start))
	return resp, nil
}
