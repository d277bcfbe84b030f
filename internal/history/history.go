// Package history turns the raw check log of a service into the rolling
// 90-day calendar shown by the dashboard.
//
// Days are UTC calendar days. A day without checks counts as fully up, and a
// single failed check marks its day down regardless of the day's uptime
// percentage.
package history

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/hamed0406/statuspage/internal/domain"
	"github.com/hamed0406/statuspage/internal/repo"
)

// WindowDays is how far back the calendar reaches. The calendar holds
// WindowDays+1 entries because today is included.
const WindowDays = 90

// Window returns the first and last calendar day of the window ending at
// now, plus the instant the store query starts from.
func Window(now time.Time) (start, end, from time.Time) {
	now = now.UTC()
	end = truncateDay(now)
	start = end.AddDate(0, 0, -WindowDays)
	from = now.Add(-WindowDays * 24 * time.Hour)
	return start, end, from
}

// Aggregate buckets checks into the window ending at now. Checks outside the
// window are ignored; order does not matter.
func Aggregate(service string, checks []domain.CheckResult, now time.Time) domain.HistoryView {
	start, end, _ := Window(now)

	days := make([]domain.DailyAggregate, 0, WindowDays+1)
	index := make(map[int64]int, WindowDays+1)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		index[d.Unix()] = len(days)
		days = append(days, domain.DailyAggregate{Date: d, OverallStatus: true})
	}

	for _, c := range checks {
		i, ok := index[truncateDay(c.CheckedAt.UTC()).Unix()]
		if !ok {
			continue
		}
		days[i].TotalChecks++
		if c.Status {
			days[i].OperationalChecks++
		} else {
			days[i].OverallStatus = false
		}
	}

	sum := 0.0
	for i := range days {
		d := &days[i]
		d.UptimePercentage = 100
		if d.TotalChecks > 0 {
			d.UptimePercentage = round2(float64(d.OperationalChecks) / float64(d.TotalChecks) * 100)
		}
		sum += d.UptimePercentage
	}

	overall := 100.0
	if len(days) > 0 {
		overall = round2(sum / float64(len(days)))
	}
	return domain.HistoryView{Service: service, Days: days, OverallUptime: overall}
}

// Service builds history views from a CheckStore.
type Service struct {
	Store repo.CheckStore
	Now   func() time.Time
}

func NewService(store repo.CheckStore) *Service {
	return &Service{Store: store, Now: time.Now}
}

// Build reads the window for service and aggregates it.
func (s *Service) Build(ctx context.Context, service string) (domain.HistoryView, error) {
	now := s.Now().UTC()
	_, _, from := Window(now)
	checks, err := s.Store.Range(ctx, service, from, now)
	if err != nil {
		return domain.HistoryView{}, fmt.Errorf("history %q: %w", service, err)
	}
	return Aggregate(service, checks, now), nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
