package lock

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, []string{"lock:timeslot:1", "lock:timeslot:2"},
		normalize([]string{"lock:timeslot:2", "lock:timeslot:1", "lock:timeslot:2"}))
	assert.Empty(t, normalize(nil))
}

func TestLocalLockTimesOutWhileHeld(t *testing.T) {
	l := NewLocal(50 * time.Millisecond)

	unlock, err := l.Lock(context.Background(), "k")
	require.NoError(t, err)

	_, err = l.Lock(context.Background(), "k")
	assert.ErrorIs(t, err, ErrTimeout)

	unlock()
	unlock2, err := l.Lock(context.Background(), "k")
	require.NoError(t, err)
	unlock2()
}

func TestLocalLockReleasesPartialAcquisition(t *testing.T) {
	l := NewLocal(50 * time.Millisecond)

	holdB, err := l.Lock(context.Background(), "b")
	require.NoError(t, err)

	_, err = l.Lock(context.Background(), "a", "b")
	require.ErrorIs(t, err, ErrTimeout)

	// "a" must have been released by the failed call.
	unlockA, err := l.Lock(context.Background(), "a")
	require.NoError(t, err)
	unlockA()
	holdB()
}

func TestLocalLockCancelledContext(t *testing.T) {
	l := NewLocal(time.Second)
	hold, err := l.Lock(context.Background(), "k")
	require.NoError(t, err)
	defer hold()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = l.Lock(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLocalLockSerializesHolders(t *testing.T) {
	l := NewLocal(5 * time.Second)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		inside  int
		maxSeen int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := l.Lock(context.Background(), "k")
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			inside++
			if inside > maxSeen {
				maxSeen = inside
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			inside--
			mu.Unlock()
			unlock()
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, maxSeen)
}

func TestNopNeverBlocks(t *testing.T) {
	var n Nop
	u1, err := n.Lock(context.Background(), "k")
	require.NoError(t, err)
	u2, err := n.Lock(context.Background(), "k")
	require.NoError(t, err)
	u1()
	u2()
}
