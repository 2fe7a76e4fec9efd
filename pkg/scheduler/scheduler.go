// Package scheduler runs a single job on a cron expression.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/workexp/workexp-api/pkg/logger"
)

// Job is the work executed on each tick.
type Job func(context.Context) error

// Parser accepts five-field expressions, an optional seconds field and
// descriptors such as "@daily" or "@every 1h".
var Parser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

type Scheduler struct {
	mu         sync.Mutex
	cron       *cron.Cron
	expression string
	name       string
	job        Job
	timeout    time.Duration
	started    bool
}

// New validates the expression. timeout bounds each run; zero means none.
func New(name, expression string, job Job, timeout time.Duration) (*Scheduler, error) {
	if expression == "" {
		return nil, errors.New("cron expression cannot be empty")
	}
	if job == nil {
		return nil, errors.New("job cannot be nil")
	}
	if _, err := Parser.Parse(expression); err != nil {
		return nil, fmt.Errorf("invalid cron expression: %w", err)
	}
	return &Scheduler{
		cron:       cron.New(cron.WithParser(Parser)),
		expression: expression,
		name:       name,
		job:        job,
		timeout:    timeout,
	}, nil
}

// Start schedules the job. It stops when ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return errors.New("scheduler already started")
	}
	if _, err := s.cron.AddFunc(s.expression, func() {
		if err := s.RunNow(ctx); err != nil {
			logger.Errorf("scheduled %s failed: %v", s.name, err)
		}
	}); err != nil {
		return fmt.Errorf("schedule %s: %w", s.name, err)
	}
	s.cron.Start()
	s.started = true
	logger.Infof("scheduler %s started (%s)", s.name, s.expression)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()
	return nil
}

// Stop halts the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	done := s.cron.Stop()
	s.started = false
	s.mu.Unlock()
	<-done.Done()
	logger.Infof("scheduler %s stopped", s.name)
}

// RunNow executes the job immediately with the configured timeout.
func (s *Scheduler) RunNow(ctx context.Context) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	return s.job(ctx)
}
