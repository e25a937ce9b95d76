package scheduler

import (
	"context"
	"time"

	"github.com/golang-collections/collections/queue"
	"github.com/rs/zerolog/log"
)

// DefaultInterval is used by Run when no positive Interval is set.
const DefaultInterval = time.Hour

// Refresh job for one cache key
type Job struct {
	Key     string
	Refresh func(ctx context.Context) error
}

// Runner periodically evaluates ShouldAutoRefresh for its registered keys and
// runs the due jobs one after the other.
type Runner struct {
	Policy   Policy
	Cache    Cache
	Interval time.Duration
	Now      func() time.Time

	jobs    []Job
	pending *queue.Queue
}

func NewRunner(policy Policy, c Cache, interval time.Duration) *Runner {
	return &Runner{
		Policy:   policy,
		Cache:    c,
		Interval: interval,
		Now:      time.Now,
		pending:  queue.New(),
	}
}

func (r *Runner) Register(key string, refresh func(ctx context.Context) error) {
	r.jobs = append(r.jobs, Job{Key: key, Refresh: refresh})
}

// Check enqueues every due job, then drains the queue. It returns the number
// of jobs that ran successfully.
func (r *Runner) Check(ctx context.Context) int {
	now := r.Now()
	for _, job := range r.jobs {
		if ShouldAutoRefreshWith(r.Policy, r.Cache, job.Key, now) {
			r.pending.Enqueue(job)
		}
	}

	done := 0
	for r.pending.Len() > 0 {
		job := r.pending.Dequeue().(Job)
		if ctx.Err() != nil {
			continue
		}

		jobLogger := log.With().Str("key", job.Key).Logger()
		jobLogger.Debug().Msg("running scheduled refresh")
		if err := job.Refresh(ctx); err != nil {
			jobLogger.Err(err).Msg("scheduled refresh failed")
			continue
		}
		done++
	}
	return done
}

// Run calls Check every Interval until ctx is done.
func (r *Runner) Run(ctx context.Context) {
	interval := r.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	log.Debug().Dur("interval", interval).Msg("starting scheduled refresh checks")
	for {
		r.Check(ctx)

		select {
		case <-ctx.Done():
			log.Debug().Msg("context done, stop scheduled refresh checks")
			return
		case <-time.After(interval):
		}
	}
}
