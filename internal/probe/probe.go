package probe

import "context"

// Outcome is the classified result of one probe.
//
// Fields:
//   - Up: a response arrived and its status code is 2xx or 3xx.
//   - ResponseTimeMS: wall-clock latency; always 0 when Up is false.
//   - StatusCode: HTTP status when a response arrived; 0 for transport errors.
//   - Reason/Err: diagnostics for logs only, never persisted.
type Outcome struct {
	Up             bool
	ResponseTimeMS int64
	StatusCode     int
	Reason         string
	Err            error
}

// Checker performs a single check for a given target URL. Implementations
// never panic and never return an error: failures are encoded in Outcome.
type Checker interface {
	Check(ctx context.Context, url string) Outcome
}
