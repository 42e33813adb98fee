package cron

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScheduler(t *testing.T, opts Options) *Scheduler {
	t.Helper()
	s := NewScheduler(time.UTC, opts)
	t.Cleanup(func() { _ = s.Stop(context.Background()) })
	return s
}

func TestRegister_InvalidSpec(t *testing.T) {
	s := newTestScheduler(t, Options{})

	err := s.Register("broken", "every tuesday", func(ctx context.Context) error { return nil })
	assert.Error(t, err)
	assert.Empty(t, s.Jobs())
}

func TestTriggerManually(t *testing.T) {
	s := newTestScheduler(t, Options{})
	var calls atomic.Int32
	require.NoError(t, s.Register("ping", "0 * * * *", func(ctx context.Context) error {
		calls.Add(1)
		return nil
	}))

	ok, err := s.TriggerManually(context.Background(), "ping")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int32(1), calls.Load())

	info, err := s.Job("ping")
	require.NoError(t, err)
	assert.Equal(t, 1, info.RunCount)
	assert.Equal(t, 0, info.FailCount)
	assert.Equal(t, StateRegistered, info.State)
	require.NotNil(t, info.LastRunAt)
}

func TestTriggerManually_UnknownJob(t *testing.T) {
	s := newTestScheduler(t, Options{})

	ok, err := s.TriggerManually(context.Background(), "nope")
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestTriggerManually_FailureIsContained(t *testing.T) {
	s := newTestScheduler(t, Options{})
	require.NoError(t, s.Register("fails", "0 * * * *", func(ctx context.Context) error {
		return errors.New("database is down")
	}))
	require.NoError(t, s.Register("panics", "0 * * * *", func(ctx context.Context) error {
		panic("nil map")
	}))

	ok, err := s.TriggerManually(context.Background(), "fails")
	assert.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.TriggerManually(context.Background(), "panics")
	assert.NoError(t, err)
	assert.False(t, ok)

	fails, err := s.Job("fails")
	require.NoError(t, err)
	assert.Equal(t, 1, fails.FailCount)
	assert.Equal(t, "database is down", fails.LastError)

	panics, err := s.Job("panics")
	require.NoError(t, err)
	assert.Contains(t, panics.LastError, "panic: nil map")
	assert.Equal(t, StateRegistered, panics.State)
}

func TestSkipIfRunning(t *testing.T) {
	s := newTestScheduler(t, Options{})
	started := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32
	require.NoError(t, s.Register("slow", "0 * * * *", func(ctx context.Context) error {
		calls.Add(1)
		close(started)
		<-release
		return nil
	}))

	done := make(chan bool)
	go func() {
		ok, _ := s.TriggerManually(context.Background(), "slow")
		done <- ok
	}()
	<-started

	info, err := s.Job("slow")
	require.NoError(t, err)
	assert.Equal(t, StateRunning, info.State)

	ok, err := s.TriggerManually(context.Background(), "slow")
	assert.False(t, ok)
	assert.ErrorIs(t, err, ErrJobRunning)

	close(release)
	assert.True(t, <-done)
	assert.Equal(t, int32(1), calls.Load())

	info, err = s.Job("slow")
	require.NoError(t, err)
	assert.Equal(t, 1, info.RunCount)
	assert.Equal(t, 1, info.SkipCount)
}

func TestDifferentJobsRunConcurrently(t *testing.T) {
	s := newTestScheduler(t, Options{})
	aStarted := make(chan struct{})
	release := make(chan struct{})
	require.NoError(t, s.Register("a", "0 * * * *", func(ctx context.Context) error {
		close(aStarted)
		<-release
		return nil
	}))
	require.NoError(t, s.Register("b", "0 * * * *", func(ctx context.Context) error { return nil }))

	done := make(chan struct{})
	go func() {
		_, _ = s.TriggerManually(context.Background(), "a")
		close(done)
	}()
	<-aStarted

	ok, err := s.TriggerManually(context.Background(), "b")
	require.NoError(t, err)
	assert.True(t, ok)

	close(release)
	<-done
}

func TestRegister_ReplacesDefinition(t *testing.T) {
	s := newTestScheduler(t, Options{})
	var first, second atomic.Int32
	require.NoError(t, s.Register("job", "0 * * * *", func(ctx context.Context) error { first.Add(1); return nil }))
	_, err := s.TriggerManually(context.Background(), "job")
	require.NoError(t, err)

	require.NoError(t, s.Register("job", "30 * * * *", func(ctx context.Context) error { second.Add(1); return nil }))
	_, err = s.TriggerManually(context.Background(), "job")
	require.NoError(t, err)

	assert.Equal(t, int32(1), first.Load())
	assert.Equal(t, int32(1), second.Load())

	jobs := s.Jobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, "30 * * * *", jobs[0].Spec)
	assert.Equal(t, 2, jobs[0].RunCount)
}

func TestDisable(t *testing.T) {
	s := newTestScheduler(t, Options{})
	require.NoError(t, s.Register("job", "* * * * *", func(ctx context.Context) error { return nil }))

	require.NoError(t, s.Disable("job"))
	assert.ErrorIs(t, s.Disable("missing"), ErrJobNotFound)

	s.Start()
	info, err := s.Job("job")
	require.NoError(t, err)
	assert.False(t, info.Enabled)
	assert.Equal(t, StateDisabled, info.State)
	assert.Nil(t, info.NextRunAt)

	ok, err := s.TriggerManually(context.Background(), "job")
	require.NoError(t, err)
	assert.True(t, ok)

	info, err = s.Job("job")
	require.NoError(t, err)
	assert.Equal(t, StateDisabled, info.State)
}

func TestStart_SchedulesJobs(t *testing.T) {
	s := newTestScheduler(t, Options{})
	require.NoError(t, s.Register("job", "0 9 * * *", func(ctx context.Context) error { return nil }))

	s.Start()
	info, err := s.Job("job")
	require.NoError(t, err)
	assert.Equal(t, StateScheduled, info.State)
	require.NotNil(t, info.NextRunAt)
	assert.Equal(t, 9, info.NextRunAt.Hour())
}

func TestTimeoutCancelsRun(t *testing.T) {
	s := newTestScheduler(t, Options{Timeout: 20 * time.Millisecond})
	require.NoError(t, s.Register("hangs", "0 * * * *", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}))

	ok, err := s.TriggerManually(context.Background(), "hangs")
	require.NoError(t, err)
	assert.False(t, ok)

	info, err := s.Job("hangs")
	require.NoError(t, err)
	assert.Contains(t, info.LastError, context.DeadlineExceeded.Error())
}
