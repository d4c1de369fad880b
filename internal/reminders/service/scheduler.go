package service

import (
	"context"
	"fmt"
	"time"

	"salonbook/pkg/logger"

	"github.com/robfig/cron/v3"
)

type Drainer interface {
	Drain(ctx context.Context) (int, error)
}

// Scheduler runs Drain on a cron schedule. Overlapping runs are skipped.
type Scheduler struct {
	cron    *cron.Cron
	drainer Drainer
	timeout time.Duration
	log     *logger.Logger
}

func NewScheduler(spec string, loc *time.Location, d Drainer, timeout time.Duration, log *logger.Logger) (*Scheduler, error) {
	cl := cronLogger{log: log}
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)

	s := &Scheduler{cron: c, drainer: d, timeout: timeout, log: log}
	if _, err := c.AddFunc(spec, s.run); err != nil {
		return nil, fmt.Errorf("invalid reminder drain schedule %q: %w", spec, err)
	}
	return s, nil
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if _, err := s.drainer.Drain(ctx); err != nil {
		s.log.Error("Scheduled reminder drain failed", "error", err)
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("Reminder drain scheduler started")
}

// Stop prevents new runs and waits for a running drain, bounded by ctx.
func (s *Scheduler) Stop(ctx context.Context) error {
	select {
	case <-s.cron.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type cronLogger struct {
	log *logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error(msg, append(keysAndValues, "error", err)...)
}
