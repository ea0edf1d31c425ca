package gitlab

import (
	"log/slog"
	"net/http"
	"time"
)

// LoggingRoundTripper wraps an http.RoundTripper and logs one line per
// request with method, URL, status, and duration. Install it as the
// transport of an injected *http.Client to trace API traffic:
//
//	hc := &http.Client{Transport: &gitlab.LoggingRoundTripper{}}
//	client := gitlab.NewClient(projectID, token, gitlab.WithHTTPClient(hc))
type LoggingRoundTripper struct {
	// Base executes the request; http.DefaultTransport when nil.
	Base http.RoundTripper
}

// RoundTrip implements http.RoundTripper.
func (l *LoggingRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	base := l.Base
	if base == nil {
		base = http.DefaultTransport
	}

	resp, err := base.RoundTrip(req)

	// Calculate request duration
	duration := time.Since(start)

	if err != nil {
		slog.Error("HTTP request failed",
			"method", req.Method,
			"url", req.URL.String(),
			"duration_ms", duration.Milliseconds(),
			"error", err,
		)
		return nil, err
	}

	slog.Info("HTTP request",
		"method", req.Method,
		"url", req.URL.String(),
		"status", resp.StatusCode,
		"duration_ms", duration.Milliseconds(),
	)

	return resp, nil
}
