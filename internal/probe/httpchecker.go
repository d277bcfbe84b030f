package probe

import (
	"context"
	"io"
	"net/http"
	"time"
)

const DefaultTimeout = 10 * time.Second

type HTTPChecker struct {
	Client    *http.Client
	UserAgent string
}

func NewHTTPChecker(timeout time.Duration, userAgent string) *HTTPChecker {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPChecker{
		Client:    &http.Client{Timeout: timeout},
		UserAgent: userAgent,
	}
}

// Check sends exactly one HEAD request. Latency is only reported for
// responses classified as up.
func (h *HTTPChecker) Check(ctx context.Context, target string) Outcome {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, target, nil)
	if err != nil {
		return Outcome{Reason: "bad_request", Err: err}
	}
	if h.UserAgent != "" {
		req.Header.Set("User-Agent", h.UserAgent)
	}

	start := time.Now()
	resp, err := h.Client.Do(req)
	if err != nil {
		return Outcome{Reason: "http_error", Err: err}
	}
	elapsed := time.Since(start)
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 400 {
		return Outcome{StatusCode: resp.StatusCode, Reason: resp.Status}
	}
	return Outcome{
		Up:             true,
		ResponseTimeMS: elapsed.Milliseconds(),
		StatusCode:     resp.StatusCode,
		Reason:         resp.Status,
	}
}
