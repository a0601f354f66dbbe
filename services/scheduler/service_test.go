package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterRejectsDuplicatesAndBadSchedules(t *testing.T) {
	svc := NewService()
	task := TaskFunc{TaskName: "refresh", Fn: func(context.Context) error { return nil }}

	require.NoError(t, svc.Register("@every 30m", task))
	assert.ErrorIs(t, svc.Register("@every 1h", task), ErrTaskExists)

	other := TaskFunc{TaskName: "other", Fn: func(context.Context) error { return nil }}
	assert.ErrorIs(t, svc.Register("not a schedule", other), ErrInvalidSchedule)
}

func TestRegisterAcceptsFiveAndSixFieldSpecs(t *testing.T) {
	svc := NewService()
	noop := func(context.Context) error { return nil }
	require.NoError(t, svc.Register("*/15 * * * *", TaskFunc{TaskName: "five", Fn: noop}))
	require.NoError(t, svc.Register("0 */15 * * * *", TaskFunc{TaskName: "six", Fn: noop}))
}

func TestManualOnlyTask(t *testing.T) {
	svc := NewService()
	var calls atomic.Int32
	require.NoError(t, svc.Register("", TaskFunc{TaskName: "manual", Fn: func(context.Context) error {
		calls.Add(1)
		return nil
	}}))

	require.NoError(t, svc.RunNow("manual"))
	assert.Equal(t, int32(1), calls.Load())

	status := svc.Status()
	require.Len(t, status, 1)
	assert.True(t, status[0].NextRunAt.IsZero())
	assert.ErrorIs(t, svc.RunNow("missing"), ErrTaskNotFound)
}

func TestRunNowRecordsStatus(t *testing.T) {
	svc := NewService()
	var calls atomic.Int32
	boom := errors.New("boom")
	require.NoError(t, svc.Register("@hourly", TaskFunc{TaskName: "refresh", Fn: func(context.Context) error {
		if calls.Add(1) == 1 {
			return boom
		}
		return nil
	}}))

	assert.ErrorIs(t, svc.RunNow("refresh"), boom)
	status := svc.Status()
	require.Len(t, status, 1)
	assert.Equal(t, "boom", status[0].LastError)
	assert.False(t, status[0].LastRunAt.IsZero())

	require.NoError(t, svc.RunNow("refresh"))
	assert.Empty(t, svc.Status()[0].LastError)

	assert.ErrorIs(t, svc.RunNow("missing"), ErrTaskNotFound)
}

func TestRunNowSkipsWhileRunning(t *testing.T) {
	svc := NewService()
	started := make(chan struct{})
	release := make(chan struct{})
	require.NoError(t, svc.Register("@hourly", TaskFunc{TaskName: "slow", Fn: func(context.Context) error {
		close(started)
		<-release
		return nil
	}}))

	errCh := make(chan error, 1)
	go func() { errCh <- svc.RunNow("slow") }()
	<-started

	assert.ErrorIs(t, svc.RunNow("slow"), ErrTaskRunning)
	close(release)
	require.NoError(t, <-errCh)
}

func TestScheduledTaskFires(t *testing.T) {
	svc := NewService()
	fired := make(chan struct{}, 1)
	require.NoError(t, svc.Register("@every 1s", TaskFunc{TaskName: "tick", Fn: func(context.Context) error {
		select {
		case fired <- struct{}{}:
		default:
		}
		return nil
	}}))

	svc.Start(context.Background())
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		svc.Stop(ctx)
	}()

	select {
	case <-fired:
	case <-time.After(3 * time.Second):
		t.Fatal("scheduled task did not fire")
	}
}

func TestStopCancelsTaskContext(t *testing.T) {
	svc := NewService()
	started := make(chan struct{})
	require.NoError(t, svc.Register("@hourly", TaskFunc{TaskName: "wait", Fn: func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	}}))
	svc.Start(context.Background())

	errCh := make(chan error, 1)
	go func() { errCh <- svc.RunNow("wait") }()
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	svc.Stop(ctx)

	assert.ErrorIs(t, <-errCh, context.Canceled)
}
