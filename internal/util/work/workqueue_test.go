package work

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	platformerrors "voicelab-server-go/internal/platform/errors"
)

func TestPoolProcessesAll(t *testing.T) {
	var processed atomic.Int32
	p := NewPool[int](3, func(ctx context.Context, item int) error {
		processed.Add(1)
		return nil
	})

	for i := 0; i < 20; i++ {
		require.NoError(t, p.Submit(i, 0))
	}

	assert.Eventually(t, func() bool { return processed.Load() == 20 },
		2*time.Second, 10*time.Millisecond)
	p.Stop()
}

func TestPoolRetriesUpToBudget(t *testing.T) {
	var attempts atomic.Int32
	p := NewPool[string](1, func(ctx context.Context, item string) error {
		attempts.Add(1)
		return platformerrors.New(platformerrors.KindVendor, "test", "always fails")
	})
	p.backoffBase = time.Millisecond

	require.NoError(t, p.SubmitWithRetries("job", 0, 2))

	// First attempt plus two retries.
	assert.Eventually(t, func() bool { return attempts.Load() == 3 },
		2*time.Second, 10*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(3), attempts.Load())
	p.Stop()
}

func TestPoolPriorityOrder(t *testing.T) {
	var mu sync.Mutex
	var order []string

	release := make(chan struct{})
	p := NewPool[string](1, func(ctx context.Context, item string) error {
		if item == "blocker" {
			<-release
			return nil
		}
		mu.Lock()
		order = append(order, item)
		mu.Unlock()
		return nil
	})

	// Occupy the single worker, then queue in mixed priority.
	require.NoError(t, p.Submit("blocker", 100))
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, p.Submit("low", 1))
	require.NoError(t, p.Submit("high", 10))
	close(release)

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(order) == 2
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	assert.Equal(t, []string{"high", "low"}, order)
	mu.Unlock()
	p.Stop()
}

func TestPoolStopRejectsWork(t *testing.T) {
	p := NewPool[int](1, func(ctx context.Context, item int) error { return nil })
	p.Stop()
	assert.ErrorIs(t, p.Submit(1, 0), ErrPoolStopped)
}
