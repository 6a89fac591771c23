package queue

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var processed atomic.Int64

type countingJob struct {
	Bump int64 `json:"bump"`
}

func (j *countingJob) Handle() error {
	processed.Add(j.Bump)
	return nil
}

type failingJob struct{}

func (j *failingJob) Handle() error { return errors.New("boom") }

func TestDispatchAndProcess(t *testing.T) {
	SetDriver(NewMemoryDriver())
	Register("*queue.countingJob", func() Job { return &countingJob{} })
	processed.Store(0)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	StartWorkers(ctx, 2)

	for i := 0; i < 5; i++ {
		require.NoError(t, Dispatch(&countingJob{Bump: 1}))
	}

	require.Eventually(t, func() bool {
		return processed.Load() == 5
	}, 3*time.Second, 10*time.Millisecond)
}

func TestFailedJobIsRecorded(t *testing.T) {
	SetDriver(NewMemoryDriver())
	SetMaxRetry(1)
	t.Cleanup(func() { SetMaxRetry(3) })
	Register("*queue.failingJob", func() Job { return &failingJob{} })

	before := len(FailedJobs())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	StartWorkers(ctx, 1)

	require.NoError(t, Dispatch(&failingJob{}))

	require.Eventually(t, func() bool {
		return len(FailedJobs()) == before+1
	}, 3*time.Second, 10*time.Millisecond)

	failed := FailedJobs()
	last := failed[len(failed)-1]
	assert.EqualError(t, last.Err, "boom")
	assert.Equal(t, 1, last.Attempts)
}

func TestUnregisteredJobIsDropped(t *testing.T) {
	SetDriver(NewMemoryDriver())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	StartWorkers(ctx, 1)

	// Push an envelope for a type nobody registered; the worker must log
	// and move on without crashing.
	require.NoError(t, defaultManager.driver.Push([]byte(`{"type":"*queue.ghostJob","payload":{}}`)))

	time.Sleep(100 * time.Millisecond)
}
