// Package httpx holds the outbound HTTP client used for Slack digest posts
// and LLM summaries. Every outbound call is logged at debug level with the
// host, status and latency so a slow or failing digest run can be traced.
package httpx

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

const defaultOutboundTimeout = 90 * time.Second

var outboundClient = &http.Client{
	Timeout:   defaultOutboundTimeout,
	Transport: &loggingTransport{log: zerolog.Nop()},
}

// ConfigureOutboundClient applies the configured timeout and logger to the
// shared client and returns the timeout in effect. Non-positive input keeps
// the default.
func ConfigureOutboundClient(timeoutSeconds int, log zerolog.Logger) time.Duration {
	timeout := defaultOutboundTimeout
	if timeoutSeconds > 0 {
		timeout = time.Duration(timeoutSeconds) * time.Second
	}
	outboundClient.Timeout = timeout
	outboundClient.Transport = &loggingTransport{log: log.With().Str("component", "outbound").Logger()}
	return timeout
}

func OutboundClient() *http.Client {
	return outboundClient
}

type loggingTransport struct {
	base http.RoundTripper
	log  zerolog.Logger
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	start := time.Now()
	resp, err := base.RoundTrip(req)
	if err != nil {
		t.log.Warn().Err(err).
			Str("method", req.Method).
			Str("host", req.URL.Host).
			Dur("duration", time.Since(start)).
			Msg("outbound request failed")
		return nil, err
	}
	t.log.Debug().
		Str("method", req.Method).
		Str("host", req.URL.Host).
		Str("path", req.URL.Path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("outbound request")
	return resp, nil
}
