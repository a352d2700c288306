package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stitts-dev/mlb-projections/pkg/logger"
)

func TestScheduler_AddJobRejectsBadSchedule(t *testing.T) {
	s := NewScheduler(logger.NewDiscard())
	err := s.AddJob("projections", "every tuesday", func(context.Context) error { return nil })
	assert.Error(t, err)
	assert.Empty(t, s.Jobs())
}

func TestScheduler_RunJobBookkeeping(t *testing.T) {
	s := NewScheduler(logger.NewDiscard())
	require.NoError(t, s.AddJob("projections", "@daily", func(context.Context) error { return nil }))

	jobs := s.Jobs()
	require.Len(t, jobs, 1)
	assert.Equal(t, "scheduled", jobs[0].Status)
	assert.Equal(t, "@daily", jobs[0].Schedule)

	s.runJob("projections", func(ctx context.Context) error { return errors.New("upstream down") })
	job := s.Jobs()[0]
	assert.Equal(t, "failed", job.Status)
	assert.Equal(t, 1, job.RunCount)
	assert.Equal(t, 1, job.ErrorCount)
	assert.Equal(t, "upstream down", job.LastError)

	s.runJob("projections", func(ctx context.Context) error { panic("boom") })
	job = s.Jobs()[0]
	assert.Equal(t, "failed", job.Status)
	assert.Equal(t, 2, job.ErrorCount)
	assert.Equal(t, "panic: boom", job.LastError)

	s.runJob("projections", func(ctx context.Context) error { return nil })
	job = s.Jobs()[0]
	assert.Equal(t, "completed", job.Status)
	assert.Equal(t, 3, job.RunCount)
	assert.Equal(t, 2, job.ErrorCount)
}

func TestScheduler_StopCancelsJobContext(t *testing.T) {
	s := NewScheduler(logger.NewDiscard())
	s.Start()
	s.Stop()

	var seen error
	require.NoError(t, s.AddJob("projections", "@hourly", func(ctx context.Context) error { return nil }))
	s.runJob("projections", func(ctx context.Context) error {
		seen = ctx.Err()
		return seen
	})
	assert.ErrorIs(t, seen, context.Canceled)
}
