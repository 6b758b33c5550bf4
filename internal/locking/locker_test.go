package locking

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobKey(t *testing.T) {
	assert.Equal(t, "nametracker:lock:transition", JobKey("transition"))
	assert.Equal(t, "nametracker:lock:first_check:com:2025-03-10", JobKey("first_check", "com", "2025-03-10"))
}

func TestMemoryLockerMutualExclusion(t *testing.T) {
	ctx := context.Background()
	locker := NewMemoryLocker()

	ok, err := locker.Acquire(ctx, JobKey("transition"), time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	// second acquire fails fast while the lock is held
	ok, err = locker.Acquire(ctx, JobKey("transition"), time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	// a different key is independent
	ok, err = locker.Acquire(ctx, JobKey("archival"), time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryLockerReleaseAllowsReacquire(t *testing.T) {
	ctx := context.Background()
	locker := NewMemoryLocker()
	key := JobKey("second_check")

	ok, err := locker.Acquire(ctx, key, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, locker.Release(ctx, key))

	ok, err = locker.Acquire(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryLockerExpiredLockIsReacquirable(t *testing.T) {
	ctx := context.Background()
	locker := NewMemoryLocker()
	key := JobKey("idea_of_the_day")

	ok, err := locker.Acquire(ctx, key, 10*time.Millisecond)
	require.NoError(t, err)
	require.True(t, ok)

	time.Sleep(20 * time.Millisecond)

	ok, err = locker.Acquire(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryLockerConcurrentAcquireExactlyOneWinner(t *testing.T) {
	ctx := context.Background()
	locker := NewMemoryLocker()
	key := JobKey("transition")

	const attempts = 32
	var wg sync.WaitGroup
	var mu sync.Mutex
	winners := 0

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := locker.Acquire(ctx, key, time.Minute)
			require.NoError(t, err)
			if ok {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, winners)
}
