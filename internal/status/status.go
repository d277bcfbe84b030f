package status

import (
	"context"
	"fmt"

	"github.com/hamed0406/statuspage/internal/domain"
	"github.com/hamed0406/statuspage/internal/repo"
)

// Resolver answers "is this target up right now" from its latest check.
type Resolver struct {
	Store repo.CheckStore
}

func NewResolver(store repo.CheckStore) *Resolver {
	return &Resolver{Store: store}
}

// Resolve returns the status of every target keyed by target id. Targets
// that were never checked map to domain.StatusUnknown.
func (r *Resolver) Resolve(ctx context.Context, ts []domain.Target) (map[string]domain.Status, error) {
	out := make(map[string]domain.Status, len(ts))
	for _, t := range ts {
		last, err := r.Store.Latest(ctx, t.Name)
		if err != nil {
			return nil, fmt.Errorf("latest for %q: %w", t.Name, err)
		}
		out[t.ID] = domain.StatusFromCheck(last)
	}
	return out, nil
}
