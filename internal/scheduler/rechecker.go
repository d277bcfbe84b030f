package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/statuspage/internal/domain"
	"github.com/hamed0406/statuspage/internal/metrics"
	"github.com/hamed0406/statuspage/internal/probe"
	"github.com/hamed0406/statuspage/internal/repo"
	"github.com/hamed0406/statuspage/internal/targets"
)

// Rechecker probes every target in the registry and appends one result per
// probe to the store.
type Rechecker struct {
	Logger         *zap.Logger
	Targets        *targets.Registry
	Results        repo.CheckStore
	Checker        probe.Checker
	Metrics        *metrics.Metrics
	Concurrency    int
	DNSDiagnostics bool
	Now            func() time.Time
}

func NewRechecker(
	logger *zap.Logger,
	reg *targets.Registry,
	rs repo.CheckStore,
	checker probe.Checker,
	m *metrics.Metrics,
	concurrency int,
) *Rechecker {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Rechecker{
		Logger:      logger,
		Targets:     reg,
		Results:     rs,
		Checker:     checker,
		Metrics:     m,
		Concurrency: concurrency,
		Now:         time.Now,
	}
}

// RunOnce checks the current snapshot of targets. A failure on one target
// never stops the others.
func (r *Rechecker) RunOnce(ctx context.Context) {
	start := time.Now()
	ts := r.Targets.Snapshot()
	if len(ts) == 0 {
		return
	}

	sem := make(chan struct{}, max(r.Concurrency, 1))
	var wg sync.WaitGroup

	for _, tgt := range ts {
		sem <- struct{}{}
		wg.Add(1)
		go func(t domain.Target) {
			defer func() { <-sem }()
			defer wg.Done()
			r.CheckTarget(ctx, t)
		}(tgt)
	}

	wg.Wait()
	r.Metrics.PassDuration.Observe(time.Since(start).Seconds())
	r.Logger.Info("check_pass_done",
		zap.Int("targets", len(ts)),
		zap.Duration("took", time.Since(start)),
	)
}

// CheckTarget probes t and persists the outcome. The write is attempted
// whatever the probe returned; errors and panics are logged, not returned.
func (r *Rechecker) CheckTarget(ctx context.Context, t domain.Target) {
	out := r.probe(ctx, t)

	cr := &domain.CheckResult{
		ServiceName:    t.Name,
		CheckedAt:      r.Now().UTC(),
		Status:         out.Up,
		ResponseTimeMS: out.ResponseTimeMS,
	}
	if !cr.Status {
		cr.ResponseTimeMS = 0
	}
	r.Metrics.ObserveProbe(t.Name, cr.Status, cr.ResponseTimeMS)

	if err := r.appendResult(ctx, cr); err != nil {
		r.Metrics.AppendErrors.Inc()
		r.Logger.Warn("check_append_error",
			zap.String("target_id", t.ID),
			zap.String("service", t.Name),
			zap.Error(err),
		)
	}
}

func (r *Rechecker) probe(ctx context.Context, t domain.Target) (out probe.Outcome) {
	defer func() {
		if p := recover(); p != nil {
			out = probe.Outcome{Reason: "panic", Err: fmt.Errorf("probe panic: %v", p)}
			r.Logger.Error("probe_panic", zap.String("service", t.Name), zap.Any("panic", p))
		}
	}()

	out = r.Checker.Check(ctx, t.URL)
	if out.Up {
		r.Logger.Info("probe_ok",
			zap.String("service", t.Name),
			zap.Int("status", out.StatusCode),
			zap.Int64("response_time_ms", out.ResponseTimeMS),
		)
		return out
	}

	fields := []zap.Field{
		zap.String("target_id", t.ID),
		zap.String("service", t.Name),
		zap.String("url", t.URL),
		zap.Int("status", out.StatusCode),
		zap.String("reason", out.Reason),
	}
	if out.Err != nil {
		fields = append(fields, zap.Error(out.Err))
		if r.DNSDiagnostics {
			dns := probe.CheckDNS(ctx, probe.Host(t.URL))
			fields = append(fields,
				zap.String("dns_class", dns.Class),
				zap.Strings("nameservers", dns.Nameservers),
				zap.String("cname", dns.CNAME),
				zap.String("resolver_error", dns.ResolverError),
			)
		}
	}
	r.Logger.Warn("probe_failed", fields...)
	return out
}

func (r *Rechecker) appendResult(ctx context.Context, cr *domain.CheckResult) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("append panic: %v", p)
		}
	}()
	return r.Results.Append(ctx, cr)
}
