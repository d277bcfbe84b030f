package targets

import (
	"sync/atomic"

	"github.com/hamed0406/statuspage/internal/domain"
)

// Registry holds the current target list. Replace swaps the whole list at
// once, so readers see either the old or the new list.
type Registry struct {
	cur atomic.Pointer[[]domain.Target]
}

func NewRegistry(initial []domain.Target) *Registry {
	r := &Registry{}
	r.Replace(initial)
	return r
}

func (r *Registry) Replace(ts []domain.Target) {
	snap := make([]domain.Target, len(ts))
	copy(snap, ts)
	r.cur.Store(&snap)
}

// Snapshot returns a copy of the current list in configuration order.
func (r *Registry) Snapshot() []domain.Target {
	p := r.cur.Load()
	if p == nil {
		return []domain.Target{}
	}
	out := make([]domain.Target, len(*p))
	copy(out, *p)
	return out
}

func (r *Registry) Lookup(id string) (domain.Target, bool) {
	p := r.cur.Load()
	if p == nil {
		return domain.Target{}, false
	}
	for _, t := range *p {
		if t.ID == id {
			return t, true
		}
	}
	return domain.Target{}, false
}

func (r *Registry) Len() int {
	p := r.cur.Load()
	if p == nil {
		return 0
	}
	return len(*p)
}
