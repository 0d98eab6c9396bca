package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Station drives pipeline runs triggered over HTTP. Runs are serialized: the
// pipeline processes one document per run, so concurrent triggers queue behind
// the mutex rather than race on the input directory.
type Station struct {
	runner *Runner
	jobs   *JobStore
	log    *slog.Logger

	runMu  sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewStation(runner *Runner, jobTTL time.Duration, log *slog.Logger) *Station {
	return &Station{
		runner: runner,
		jobs:   NewJobStore(jobTTL),
		log:    log,
	}
}

// Start launches the job store cleanup loop.
func (s *Station) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.jobs.Cleanup()
			}
		}
	}()
}

// Stop waits for in-flight work to finish.
func (s *Station) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

// Trigger starts one pipeline run in the background and returns its job.
func (s *Station) Trigger(ctx context.Context) *Job {
	job := NewJob()
	s.jobs.Put(job)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.runMu.Lock()
		defer s.runMu.Unlock()

		job.SetStatus(StatusRunning, "running pipeline")
		res, err := s.runner.Run(ctx)
		if err != nil {
			s.log.Error("pipeline run failed", "job_id", job.ID, "error", err)
			job.Fail(err)
			return
		}
		job.Complete(res)
	}()
	return job
}

// Job returns a job by ID, or nil.
func (s *Station) Job(id string) *Job {
	return s.jobs.Get(id)
}
