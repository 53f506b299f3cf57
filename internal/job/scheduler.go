// Package job runs periodic maintenance tasks on a cron schedule.
package job

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Runnable is a background task triggered by the Scheduler.
type Runnable interface {
	Name() string
	Run(ctx context.Context) error
}

// Scheduler wraps cron with logging and graceful shutdown.
type Scheduler struct {
	cron    *cron.Cron
	log     *zap.SugaredLogger
	timeout time.Duration
	mu      sync.Mutex
	started bool
}

const defaultJobTimeout = 2 * time.Minute

// NewScheduler accepts specs with an optional seconds field and @every descriptors.
func NewScheduler(log *zap.SugaredLogger) *Scheduler {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	parser := cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	c := cron.New(cron.WithParser(parser), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	return &Scheduler{cron: c, log: log, timeout: defaultJobTimeout}
}

func (s *Scheduler) Register(spec string, r Runnable) (cron.EntryID, error) {
	if r == nil {
		return 0, errors.New("scheduler: runnable is required")
	}
	if spec == "" {
		return 0, errors.New("scheduler: spec is required")
	}
	id, err := s.cron.AddFunc(spec, s.wrap(r))
	if err != nil {
		return 0, err
	}
	s.log.Infow("job registered", "job", r.Name(), "spec", spec)
	return id, nil
}

func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.cron.Start()
	s.started = true
}

// Stop halts scheduling. The returned context is done once running jobs finish.
func (s *Scheduler) Stop() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		return ctx
	}
	s.started = false
	return s.cron.Stop()
}

func (s *Scheduler) wrap(r Runnable) func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		start := time.Now()
		if err := r.Run(ctx); err != nil {
			s.log.Errorw("job failed", "job", r.Name(), "error", err, "elapsed", time.Since(start))
			return
		}
		s.log.Debugw("job completed", "job", r.Name(), "elapsed", time.Since(start))
	}
}
