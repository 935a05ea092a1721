package scheduler

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCronSchedulerRejectsBadSpec(t *testing.T) {
	t.Parallel()

	s := NewCronScheduler("not a cron", nil, quietLogger())
	err := s.Start(context.Background(), func(time.Time) {})
	require.Error(t, err)
	assert.True(t, s.Next().IsZero())
	assert.NoError(t, s.Stop(context.Background()))
}

func TestCronSchedulerRunsJobInLocation(t *testing.T) {
	t.Parallel()

	loc, err := time.LoadLocation("Asia/Shanghai")
	require.NoError(t, err)

	fired := make(chan time.Time, 4)
	s := NewCronScheduler("@every 1s", loc, quietLogger())
	require.NoError(t, s.Start(context.Background(), func(at time.Time) {
		select {
		case fired <- at:
		default:
		}
	}))
	defer func() { assert.NoError(t, s.Stop(context.Background())) }()

	assert.False(t, s.Next().IsZero())

	select {
	case at := <-fired:
		assert.Equal(t, loc.String(), at.Location().String())
	case <-time.After(5 * time.Second):
		t.Fatal("job did not fire")
	}
}

func TestCronSchedulerStopsWithContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	s := NewCronScheduler("0 8 * * *", time.UTC, quietLogger())
	require.NoError(t, s.Start(ctx, func(time.Time) {}))
	require.NoError(t, s.Start(ctx, func(time.Time) {}), "second start is a no-op")

	next := s.Next()
	assert.Equal(t, 8, next.Hour())
	assert.Equal(t, 0, next.Minute())

	cancel()
	assert.Eventually(t, func() bool { return s.Next().IsZero() }, 2*time.Second, 10*time.Millisecond)
}

func TestCronSchedulerNilJob(t *testing.T) {
	t.Parallel()

	s := NewCronScheduler("0 8 * * *", nil, nil)
	assert.NoError(t, s.Start(context.Background(), nil))
	assert.True(t, s.Next().IsZero())
}
