package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler runs the check pass and the target reload on two independent
// cron entries. Only the check entry skips a tick while the previous pass
// is still running; a reload never waits for checks.
type Scheduler struct {
	Logger    *zap.Logger
	Rechecker *Rechecker
	Reloader  *Reloader

	cron     *cron.Cron
	checkID  cron.EntryID
	reloadID cron.EntryID
	ctx      context.Context
	first    sync.WaitGroup
}

func New(logger *zap.Logger, rc *Rechecker, rl *Reloader, checkSpec, reloadSpec string) (*Scheduler, error) {
	cl := cronLogger{l: logger.Sugar()}
	s := &Scheduler{
		Logger:    logger,
		Rechecker: rc,
		Reloader:  rl,
		cron:      cron.New(cron.WithLocation(time.UTC), cron.WithLogger(cl)),
		ctx:       context.Background(),
	}

	var err error
	s.checkID, err = s.cron.AddJob(checkSpec,
		cron.NewChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)).Then(cron.FuncJob(s.runChecks)))
	if err != nil {
		return nil, fmt.Errorf("check schedule %q: %w", checkSpec, err)
	}
	s.reloadID, err = s.cron.AddJob(reloadSpec,
		cron.NewChain(cron.Recover(cl)).Then(cron.FuncJob(s.runReload)))
	if err != nil {
		return nil, fmt.Errorf("reload schedule %q: %w", reloadSpec, err)
	}
	return s, nil
}

// Start begins both cadences and fires one check pass right away without
// waiting for it.
func (s *Scheduler) Start(ctx context.Context) {
	s.ctx = ctx
	first := s.cron.Entry(s.checkID).WrappedJob
	s.cron.Start()
	s.first.Add(1)
	go func() {
		defer s.first.Done()
		first.Run()
	}()
	s.Logger.Info("scheduler_started",
		zap.Time("next_check", s.cron.Entry(s.checkID).Next),
		zap.Time("next_reload", s.cron.Entry(s.reloadID).Next),
	)
}

// Stop halts both cadences. The returned context is done once running jobs,
// including the pass fired by Start, have finished.
func (s *Scheduler) Stop() context.Context {
	cronDone := s.cron.Stop()
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-cronDone.Done()
		s.first.Wait()
		cancel()
	}()
	return ctx
}

func (s *Scheduler) runChecks() {
	s.Rechecker.RunOnce(s.ctx)
}

func (s *Scheduler) runReload() {
	_ = s.Reloader.Reload(s.ctx)
}

type cronLogger struct {
	l *zap.SugaredLogger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debugw("cron_"+msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Errorw("cron_"+msg, append(keysAndValues, "error", err)...)
}
