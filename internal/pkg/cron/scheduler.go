package cron

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	robfig "github.com/robfig/cron/v3"
)

var (
	ErrJobNotFound = errors.New("job not found")
	ErrJobRunning  = errors.New("job is already running")
)

// TaskFunc is the body of a scheduled job.
type TaskFunc func(ctx context.Context) error

// State is where a job sits in its registered -> scheduled -> running cycle.
type State string

const (
	StateRegistered State = "registered"
	StateScheduled  State = "scheduled"
	StateRunning    State = "running"
	StateDisabled   State = "disabled"
)

// JobInfo is a snapshot of a job's definition and run bookkeeping.
type JobInfo struct {
	Name         string        `json:"name"`
	Spec         string        `json:"spec"`
	State        State         `json:"state"`
	Enabled      bool          `json:"enabled"`
	RunCount     int           `json:"run_count"`
	FailCount    int           `json:"fail_count"`
	SkipCount    int           `json:"skip_count"`
	LastRunAt    *time.Time    `json:"last_run_at,omitempty"`
	LastDuration time.Duration `json:"last_duration"`
	LastError    string        `json:"last_error,omitempty"`
	NextRunAt    *time.Time    `json:"next_run_at,omitempty"`
}

type job struct {
	info    JobInfo
	task    TaskFunc
	entryID robfig.EntryID
	// running is the skip-if-running flag shared by scheduled and manual runs.
	running atomic.Bool
}

// Options configures the Scheduler.
type Options struct {
	// Timeout bounds a single run. Zero means 10 minutes.
	Timeout time.Duration
}

// Scheduler manages scheduled jobs
type Scheduler struct {
	cron    *robfig.Cron
	loc     *time.Location
	timeout time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	jobs    map[string]*job
	started bool
}

// NewScheduler creates a new cron scheduler whose expressions are evaluated in loc.
func NewScheduler(loc *time.Location, opts Options) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Minute
	}

	cronLogger := robfig.PrintfLogger(slog.NewLogLogger(slog.Default().Handler(), slog.LevelError))
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		cron:    robfig.New(robfig.WithLocation(loc), robfig.WithChain(robfig.Recover(cronLogger))),
		loc:     loc,
		timeout: opts.Timeout,
		ctx:     ctx,
		cancel:  cancel,
		jobs:    make(map[string]*job),
	}
}

// Register adds a job or replaces the definition of an existing one with the
// same name. The skip-if-running flag and run counters survive replacement.
func (s *Scheduler) Register(name, spec string, task TaskFunc) error {
	if name == "" {
		return errors.New("job name is required")
	}
	if task == nil {
		return fmt.Errorf("job %q: task is required", name)
	}
	schedule, err := robfig.ParseStandard(spec)
	if err != nil {
		return fmt.Errorf("job %q: invalid cron expression %q: %w", name, spec, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	j, exists := s.jobs[name]
	if exists {
		if j.entryID != 0 {
			s.cron.Remove(j.entryID)
		}
	} else {
		j = &job{info: JobInfo{Name: name}}
		s.jobs[name] = j
	}

	j.task = task
	j.info.Spec = spec
	j.info.Enabled = true
	j.entryID = s.cron.Schedule(schedule, robfig.FuncJob(func() {
		_, _ = s.run(s.ctx, name, false)
	}))
	if j.running.Load() {
		j.info.State = StateRunning
	} else {
		j.info.State = s.idleState()
	}

	slog.Info("Cron job registered", "name", name, "spec", spec, "replaced", exists)
	return nil
}

// Disable unschedules a job. It can still be triggered manually.
func (s *Scheduler) Disable(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}
	if j.entryID != 0 {
		s.cron.Remove(j.entryID)
		j.entryID = 0
	}
	j.info.Enabled = false
	if !j.running.Load() {
		j.info.State = StateDisabled
	}
	slog.Info("Cron job disabled", "name", name)
	return nil
}

// TriggerManually runs the named job now through the same wrapper as
// scheduled runs. The bool reports whether the task succeeded.
func (s *Scheduler) TriggerManually(ctx context.Context, name string) (bool, error) {
	return s.run(ctx, name, true)
}

// run is the single execution path for every job: skip-if-running, timeout,
// panic recovery, duration measurement, logging and bookkeeping.
func (s *Scheduler) run(parent context.Context, name string, manual bool) (bool, error) {
	s.mu.Lock()
	j, ok := s.jobs[name]
	if !ok {
		s.mu.Unlock()
		return false, fmt.Errorf("%w: %s", ErrJobNotFound, name)
	}
	if !j.running.CompareAndSwap(false, true) {
		j.info.SkipCount++
		s.mu.Unlock()
		slog.Warn("Cron job skipped", "name", name, "manual", manual, "reason", "previous run still in flight")
		return false, fmt.Errorf("%w: %s", ErrJobRunning, name)
	}
	task := j.task
	j.info.State = StateRunning
	s.wg.Add(1)
	s.mu.Unlock()

	defer s.wg.Done()
	defer j.running.Store(false)

	ctx, cancel := context.WithTimeout(parent, s.timeout)
	defer cancel()

	start := time.Now()
	slog.Debug("Cron job starting", "name", name, "manual", manual)

	err := invoke(ctx, task)
	duration := time.Since(start)

	s.mu.Lock()
	startedAt := start.In(s.loc)
	j.info.LastRunAt = &startedAt
	j.info.LastDuration = duration
	j.info.RunCount++
	if err != nil {
		j.info.FailCount++
		j.info.LastError = err.Error()
	} else {
		j.info.LastError = ""
	}
	if j.info.Enabled {
		j.info.State = s.idleState()
	} else {
		j.info.State = StateDisabled
	}
	s.mu.Unlock()

	if err != nil {
		slog.Error("Cron job failed", "name", name, "manual", manual, "error", err, "duration", duration)
		return false, nil
	}
	slog.Info("Cron job completed", "name", name, "manual", manual, "duration", duration)
	return true, nil
}

// invoke converts a panicking task into an error.
func invoke(ctx context.Context, task TaskFunc) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return task(ctx)
}

// idleState must be called with s.mu held.
func (s *Scheduler) idleState() State {
	if s.started {
		return StateScheduled
	}
	return StateRegistered
}

// Jobs returns a snapshot of every registered job, sorted by name.
func (s *Scheduler) Jobs() []JobInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]JobInfo, 0, len(s.jobs))
	for _, j := range s.jobs {
		info := j.info
		if s.started && j.entryID != 0 {
			if next := s.cron.Entry(j.entryID).Next; !next.IsZero() {
				info.NextRunAt = &next
			}
		}
		out = append(out, info)
	}
	sort.Slice(out, func(i, k int) bool { return out[i].Name < out[k].Name })
	return out
}

// Job returns the snapshot of one job.
func (s *Scheduler) Job(name string) (JobInfo, error) {
	for _, info := range s.Jobs() {
		if info.Name == name {
			return info, nil
		}
	}
	return JobInfo{}, fmt.Errorf("%w: %s", ErrJobNotFound, name)
}

// Start begins running all scheduled jobs
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return
	}
	s.started = true
	for _, j := range s.jobs {
		if j.info.State == StateRegistered {
			j.info.State = StateScheduled
		}
	}
	s.cron.Start()

	slog.Info("Cron scheduler started", "job_count", len(s.jobs), "timezone", s.loc.String())
}

// Stop halts new triggers, cancels in-flight runs and waits for them to
// return or for ctx to expire.
func (s *Scheduler) Stop(ctx context.Context) error {
	slog.Info("Stopping cron scheduler...")
	cronDone := s.cron.Stop()
	s.cancel()

	done := make(chan struct{})
	go func() {
		<-cronDone.Done()
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		slog.Info("Cron scheduler stopped")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("cron scheduler stop: %w", ctx.Err())
	}
}
