package history

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hamed0406/statuspage/internal/domain"
	"github.com/hamed0406/statuspage/internal/repo/memory"
)

var now = time.Date(2025, 8, 18, 15, 30, 0, 0, time.UTC)

func check(at time.Time, up bool) domain.CheckResult {
	return domain.CheckResult{ServiceName: "API", CheckedAt: at, Status: up}
}

func TestWindow(t *testing.T) {
	start, end, from := Window(now)
	assert.Equal(t, time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 8, 18, 0, 0, 0, 0, time.UTC), end)
	assert.Equal(t, now.Add(-90*24*time.Hour), from)
}

func TestAggregate_NoChecks(t *testing.T) {
	hv := Aggregate("API", nil, now)

	require.Len(t, hv.Days, 91)
	assert.Equal(t, "API", hv.Service)
	assert.Equal(t, 100.0, hv.OverallUptime)
	for _, d := range hv.Days {
		assert.True(t, d.OverallStatus)
		assert.Equal(t, 100.0, d.UptimePercentage)
		assert.Zero(t, d.TotalChecks)
	}
}

func TestAggregate_ContinuousAscendingDays(t *testing.T) {
	// sparse data must not open gaps
	hv := Aggregate("API", []domain.CheckResult{
		check(now.AddDate(0, 0, -45), true),
		check(now, false),
	}, now)

	require.Len(t, hv.Days, 91)
	for i := 1; i < len(hv.Days); i++ {
		assert.Equal(t, hv.Days[i-1].Date.AddDate(0, 0, 1), hv.Days[i].Date)
	}
	assert.Equal(t, "2025-05-20", hv.Days[0].Date.Format(domain.DateLayout))
	assert.Equal(t, "2025-08-18", hv.Days[90].Date.Format(domain.DateLayout))
}

func TestAggregate_TodayThreeUpOneDown(t *testing.T) {
	today := time.Date(2025, 8, 18, 0, 0, 0, 0, time.UTC)
	hv := Aggregate("API", []domain.CheckResult{
		check(today.Add(1*time.Hour), true),
		check(today.Add(2*time.Hour), false),
		check(today.Add(3*time.Hour), true),
		check(today.Add(4*time.Hour), true),
	}, now)

	last := hv.Days[90]
	assert.Equal(t, 4, last.TotalChecks)
	assert.Equal(t, 3, last.OperationalChecks)
	assert.Equal(t, 75.0, last.UptimePercentage)
	assert.False(t, last.OverallStatus)

	for _, d := range hv.Days[:90] {
		assert.Equal(t, 100.0, d.UptimePercentage)
		assert.True(t, d.OverallStatus)
	}
	assert.Equal(t, 99.73, hv.OverallUptime)
}

func TestAggregate_SingleFailureMarksDayDown(t *testing.T) {
	day := time.Date(2025, 8, 10, 0, 0, 0, 0, time.UTC)
	var checks []domain.CheckResult
	for i := 0; i < 99; i++ {
		checks = append(checks, check(day.Add(time.Duration(i)*time.Minute), true))
	}
	checks = append(checks, check(day.Add(23*time.Hour), false))

	hv := Aggregate("API", checks, now)
	d := hv.Days[82]
	require.Equal(t, day, d.Date)
	assert.Equal(t, 99.0, d.UptimePercentage)
	assert.False(t, d.OverallStatus)
}

func TestAggregate_OverallIsMeanOfDaysNotChecks(t *testing.T) {
	today := time.Date(2025, 8, 18, 0, 0, 0, 0, time.UTC)
	yesterday := today.AddDate(0, 0, -1)

	var checks []domain.CheckResult
	// yesterday: 1 of 1 down -> 0%
	checks = append(checks, check(yesterday.Add(time.Hour), false))
	// today: 100 of 100 up -> 100%
	for i := 0; i < 100; i++ {
		checks = append(checks, check(today.Add(time.Duration(i)*time.Second), true))
	}

	hv := Aggregate("API", checks, now)
	// (90*100 + 0) / 91 = 98.901...
	assert.Equal(t, 98.9, hv.OverallUptime)
}

func TestAggregate_RoundsToTwoDecimals(t *testing.T) {
	today := time.Date(2025, 8, 18, 0, 0, 0, 0, time.UTC)
	hv := Aggregate("API", []domain.CheckResult{
		check(today.Add(time.Hour), true),
		check(today.Add(2*time.Hour), true),
		check(today.Add(3*time.Hour), false),
	}, now)
	assert.Equal(t, 66.67, hv.Days[90].UptimePercentage)
}

func TestAggregate_IgnoresChecksOutsideWindow(t *testing.T) {
	hv := Aggregate("API", []domain.CheckResult{
		check(time.Date(2025, 5, 19, 23, 59, 0, 0, time.UTC), false),
		check(time.Date(2025, 8, 19, 0, 0, 1, 0, time.UTC), false),
	}, now)
	assert.Equal(t, 100.0, hv.OverallUptime)
	for _, d := range hv.Days {
		assert.Zero(t, d.TotalChecks)
	}
}

func TestAggregate_BucketsByUTCDate(t *testing.T) {
	// 23:30 on Aug 17 in UTC-05:00 is Aug 18 04:30 UTC
	loc := time.FixedZone("UTC-5", -5*3600)
	hv := Aggregate("API", []domain.CheckResult{
		check(time.Date(2025, 8, 17, 23, 30, 0, 0, loc), false),
	}, now)
	assert.Equal(t, 1, hv.Days[90].TotalChecks)
	assert.Zero(t, hv.Days[89].TotalChecks)
}

func TestAggregate_Idempotent(t *testing.T) {
	checks := []domain.CheckResult{
		check(now.Add(-time.Hour), true),
		check(now.Add(-30*time.Hour), false),
		check(now.Add(-50*24*time.Hour), true),
	}
	a, err := json.Marshal(Aggregate("API", checks, now))
	require.NoError(t, err)
	b, err := json.Marshal(Aggregate("API", checks, now))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestService_Build_ReadsStoreWindow(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	today := time.Date(2025, 8, 18, 0, 0, 0, 0, time.UTC)
	for i, up := range []bool{true, false, true, true} {
		require.NoError(t, store.Append(ctx, &domain.CheckResult{
			ServiceName: "API",
			CheckedAt:   today.Add(time.Duration(i+1) * time.Hour),
			Status:      up,
		}))
	}
	// older than the query instant; never fetched
	require.NoError(t, store.Append(ctx, &domain.CheckResult{
		ServiceName: "API",
		CheckedAt:   now.Add(-91 * 24 * time.Hour),
		Status:      false,
	}))

	svc := NewService(store)
	svc.Now = func() time.Time { return now }

	hv, err := svc.Build(ctx, "API")
	require.NoError(t, err)
	require.Len(t, hv.Days, 91)
	assert.Equal(t, 99.73, hv.OverallUptime)
	assert.False(t, hv.Days[90].OverallStatus)
}

type failingStore struct{ memory.Store }

func (*failingStore) Range(context.Context, string, time.Time, time.Time) ([]domain.CheckResult, error) {
	return nil, errors.New("db down")
}

func TestService_Build_PropagatesStoreError(t *testing.T) {
	svc := NewService(&failingStore{})
	_, err := svc.Build(context.Background(), "API")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
}
