package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/hamed0406/statuspage/internal/domain"
	"github.com/hamed0406/statuspage/internal/repo"
)

var _ repo.CheckStore = (*Store)(nil)

// Store keeps checks per service, sorted by CheckedAt. Used when no
// database is configured; history is lost on restart.
type Store struct {
	mu      sync.RWMutex
	results map[string][]domain.CheckResult
	now     func() time.Time
}

func New() *Store {
	return &Store{
		results: make(map[string][]domain.CheckResult),
		now:     time.Now,
	}
}

func (m *Store) Append(ctx context.Context, r *domain.CheckResult) error {
	if r.CheckedAt.IsZero() {
		r.CheckedAt = m.now().UTC()
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	rows := m.results[r.ServiceName]
	// usually appended in order; insert keeps the slice sorted otherwise
	i := sort.Search(len(rows), func(i int) bool { return rows[i].CheckedAt.After(r.CheckedAt) })
	rows = append(rows, domain.CheckResult{})
	copy(rows[i+1:], rows[i:])
	rows[i] = *r
	m.results[r.ServiceName] = rows
	return nil
}

func (m *Store) Latest(ctx context.Context, service string) (*domain.CheckResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rows := m.results[service]
	if len(rows) == 0 {
		return nil, nil
	}
	last := rows[len(rows)-1]
	return &last, nil
}

func (m *Store) Range(ctx context.Context, service string, from, to time.Time) ([]domain.CheckResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rows := m.results[service]
	lo := sort.Search(len(rows), func(i int) bool { return !rows[i].CheckedAt.Before(from) })
	hi := sort.Search(len(rows), func(i int) bool { return rows[i].CheckedAt.After(to) })
	if lo >= hi {
		return []domain.CheckResult{}, nil
	}
	out := make([]domain.CheckResult, hi-lo)
	copy(out, rows[lo:hi])
	return out, nil
}

func (m *Store) Ping(ctx context.Context) error { return nil }
