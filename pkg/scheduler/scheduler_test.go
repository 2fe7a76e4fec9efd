package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func noop(context.Context) error { return nil }

func TestNew_Validates(t *testing.T) {
	_, err := New("export", "", noop, 0)
	require.Error(t, err)

	_, err = New("export", "@daily", nil, 0)
	require.Error(t, err)

	_, err = New("export", "not a cron", noop, 0)
	require.ErrorContains(t, err, "invalid cron expression")

	for _, expr := range []string{"0 3 * * *", "*/30 * * * * *", "@every 1h"} {
		_, err = New("export", expr, noop, 0)
		require.NoError(t, err, expr)
	}
}

func TestRunNow_AppliesTimeout(t *testing.T) {
	s, err := New("export", "@hourly", func(ctx context.Context) error {
		_, ok := ctx.Deadline()
		require.True(t, ok)
		<-ctx.Done()
		return ctx.Err()
	}, 20*time.Millisecond)
	require.NoError(t, err)
	require.ErrorIs(t, s.RunNow(context.Background()), context.DeadlineExceeded)
}

func TestRunNow_PropagatesErrors(t *testing.T) {
	s, err := New("export", "@hourly", func(context.Context) error { return errors.New("boom") }, 0)
	require.NoError(t, err)
	require.EqualError(t, s.RunNow(context.Background()), "boom")
}

func TestStart_RunsOnSchedule(t *testing.T) {
	var calls atomic.Int32
	s, err := New("export", "@every 1s", func(context.Context) error {
		calls.Add(1)
		return nil
	}, time.Second)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, s.Start(ctx))
	require.Error(t, s.Start(ctx), "second start is rejected")

	require.Eventually(t, func() bool { return calls.Load() > 0 }, 3*time.Second, 50*time.Millisecond)
	s.Stop()
	s.Stop()
}
