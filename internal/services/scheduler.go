package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// JobInfo is the bookkeeping kept for one scheduled job.
type JobInfo struct {
	ID         string        `json:"id"`
	Schedule   string        `json:"schedule"`
	LastRun    time.Time     `json:"last_run"`
	NextRun    time.Time     `json:"next_run"`
	Status     string        `json:"status"`
	RunCount   int           `json:"run_count"`
	ErrorCount int           `json:"error_count"`
	LastError  string        `json:"last_error,omitempty"`
	Duration   time.Duration `json:"duration"`
}

// Scheduler reruns whole projection passes on cron schedules. A run that is
// still going when its next tick fires makes that tick a no-op, so passes
// never overlap.
type Scheduler struct {
	cron    *cron.Cron
	logger  *logrus.Logger
	ctx     context.Context
	cancel  context.CancelFunc
	mu      sync.RWMutex
	jobs    map[string]JobInfo
	entries map[string]cron.EntryID
}

func NewScheduler(logger *logrus.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	cronLogger := cron.VerbosePrintfLogger(logger)
	return &Scheduler{
		cron:    cron.New(cron.WithLogger(cronLogger), cron.WithChain(cron.SkipIfStillRunning(cronLogger))),
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
		jobs:    make(map[string]JobInfo),
		entries: make(map[string]cron.EntryID),
	}
}

// AddJob registers fn under id. The schedule uses standard five-field cron
// syntax or descriptors such as "@daily".
func (s *Scheduler) AddJob(id, schedule string, fn func(ctx context.Context) error) error {
	entryID, err := s.cron.AddFunc(schedule, func() {
		s.runJob(id, fn)
	})
	if err != nil {
		return fmt.Errorf("failed to add job %s: %w", id, err)
	}

	s.mu.Lock()
	s.entries[id] = entryID
	s.jobs[id] = JobInfo{
		ID:       id,
		Schedule: schedule,
		NextRun:  s.cron.Entry(entryID).Next,
		Status:   "scheduled",
	}
	s.mu.Unlock()

	s.logger.WithFields(logrus.Fields{
		"component": "scheduler",
		"job_id":    id,
		"schedule":  schedule,
	}).Info("Scheduled job added")
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.mu.Lock()
	for id, job := range s.jobs {
		job.NextRun = s.cron.Entry(s.entries[id]).Next
		s.jobs[id] = job
	}
	s.mu.Unlock()
	s.logger.WithFields(logrus.Fields{
		"component": "scheduler",
		"jobs":      len(s.jobs),
	}).Info("Scheduler started")
}

// Stop cancels any running job and waits for it to return.
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
	s.logger.WithField("component", "scheduler").Info("Scheduler stopped")
}

// Jobs returns a snapshot of every job's bookkeeping.
func (s *Scheduler) Jobs() []JobInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]JobInfo, 0, len(s.jobs))
	for _, j := range s.jobs {
		out = append(out, j)
	}
	return out
}

func (s *Scheduler) runJob(id string, fn func(ctx context.Context) error) {
	s.mu.Lock()
	job, exists := s.jobs[id]
	if !exists {
		s.mu.Unlock()
		return
	}
	job.Status = "running"
	job.LastRun = time.Now()
	job.RunCount++
	s.jobs[id] = job
	s.mu.Unlock()

	log := s.logger.WithFields(logrus.Fields{
		"component": "scheduler",
		"job_id":    id,
		"run_count": job.RunCount,
	})
	log.Info("Starting scheduled job")
	started := time.Now()

	var err error
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		err = fn(s.ctx)
	}()

	duration := time.Since(started)
	if err != nil {
		log.WithError(err).WithField("duration", duration).Error("Scheduled job failed")
		s.finishJob(id, "failed", err.Error(), duration)
		return
	}
	log.WithField("duration", duration).Info("Scheduled job completed")
	s.finishJob(id, "completed", "", duration)
}

func (s *Scheduler) finishJob(id, status, errMsg string, duration time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, exists := s.jobs[id]
	if !exists {
		return
	}
	job.Status = status
	job.Duration = duration
	if errMsg != "" {
		job.ErrorCount++
		job.LastError = errMsg
	}
	job.NextRun = s.cron.Entry(s.entries[id]).Next
	s.jobs[id] = job
}
