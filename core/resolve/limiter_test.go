package resolve

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiter(t *testing.T) {
	t.Run("first call never blocks", func(t *testing.T) {
		limiter := NewLimiter(time.Hour)

		start := time.Now()
		require.NoError(t, limiter.Wait(context.Background()))
		assert.Less(t, time.Since(start), 100*time.Millisecond)
	})

	t.Run("second call waits out the interval", func(t *testing.T) {
		limiter := NewLimiter(50 * time.Millisecond)
		require.NoError(t, limiter.Wait(context.Background()))

		start := time.Now()
		require.NoError(t, limiter.Wait(context.Background()))
		assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
	})

	t.Run("zero interval disables pacing", func(t *testing.T) {
		limiter := NewLimiter(0)

		start := time.Now()
		for i := 0; i < 10; i++ {
			require.NoError(t, limiter.Wait(context.Background()))
		}
		assert.Less(t, time.Since(start), 100*time.Millisecond)
	})

	t.Run("cancellation interrupts the wait", func(t *testing.T) {
		limiter := NewLimiter(time.Hour)
		require.NoError(t, limiter.Wait(context.Background()))

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		err := limiter.Wait(ctx)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}
