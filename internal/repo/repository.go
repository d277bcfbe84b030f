package repo

import (
	"context"
	"time"

	"github.com/hamed0406/statuspage/internal/domain"
)

// CheckStore is the append-only log of probe results. Implementations must
// accept concurrent writers and readers.
type CheckStore interface {
	// Append persists one result. A zero CheckedAt is stamped with now (UTC).
	Append(ctx context.Context, r *domain.CheckResult) error
	// Latest returns nil, nil when the service has no checks.
	Latest(ctx context.Context, service string) (*domain.CheckResult, error)
	// Range returns checks with from <= CheckedAt <= to, ascending by time.
	Range(ctx context.Context, service string, from, to time.Time) ([]domain.CheckResult, error)
}

// Pinger is implemented by stores that can report their own health.
type Pinger interface {
	Ping(ctx context.Context) error
}
