package workers

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduleOnceRunsJob(t *testing.T) {
	s, err := NewScheduler()
	require.NoError(t, err)
	defer s.Shutdown()

	var calls int32
	require.NoError(t, s.ScheduleOnce("once", 10*time.Millisecond, func() {
		atomic.AddInt32(&calls, 1)
	}))

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&calls) == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestScheduleOnceSurvivesPanic(t *testing.T) {
	s, err := NewScheduler()
	require.NoError(t, err)
	defer s.Shutdown()

	var calls int32
	require.NoError(t, s.ScheduleOnce("panics", 5*time.Millisecond, func() { panic("boom") }))
	require.NoError(t, s.ScheduleOnce("after", 20*time.Millisecond, func() { atomic.AddInt32(&calls, 1) }))

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&calls) == 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestScheduleCron(t *testing.T) {
	s, err := NewScheduler()
	require.NoError(t, err)
	defer s.Shutdown()

	require.NoError(t, s.ScheduleCron("reset", "0 3 * * 1", func() {}))
	assert.Equal(t, 1, s.JobCount())

	assert.Error(t, s.ScheduleCron("broken", "not a cron", func() {}))
}
