package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pecal-inc/pecal/internal/shared/logger"
)

type countingJob struct {
	calls atomic.Int32
}

func (j *countingJob) Execute(ctx context.Context) (int, error) {
	j.calls.Add(1)
	return 1, nil
}

func TestRegisterBillingJobs_Validation(t *testing.T) {
	m, err := NewSchedulerManager(logger.NewDiscard())
	require.NoError(t, err)

	assert.Error(t, m.RegisterBillingJobs(nil, time.Minute, time.Minute))
	assert.Error(t, m.RegisterBillingJobs(&countingJob{}, 0, time.Minute))
	assert.Empty(t, m.Jobs())
}

func TestRegisterBillingJobs_RunsImmediately(t *testing.T) {
	m, err := NewSchedulerManager(logger.NewDiscard())
	require.NoError(t, err)

	job := &countingJob{}
	require.NoError(t, m.RegisterBillingJobs(job, time.Hour, time.Minute))
	require.Len(t, m.Jobs(), 1)
	assert.Equal(t, "billing-recurring-charge", m.Jobs()[0].Name())

	m.Start()
	m.Start()
	assert.True(t, m.IsStarted())

	assert.Eventually(t, func() bool { return job.calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, m.Stop())
	assert.False(t, m.IsStarted())
	assert.Equal(t, int32(1), job.calls.Load())
}

func TestStop_NotStarted(t *testing.T) {
	m, err := NewSchedulerManager(logger.NewDiscard())
	require.NoError(t, err)
	assert.NoError(t, m.Stop())
}

type panickingJob struct{}

func (panickingJob) Execute(ctx context.Context) (int, error) {
	panic("gateway client nil")
}

func TestRunCharges_RecoversPanic(t *testing.T) {
	m, err := NewSchedulerManager(logger.NewDiscard())
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		m.runCharges(context.Background(), panickingJob{})
	})
}
