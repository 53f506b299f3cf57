package roster

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDebouncer(t *testing.T) {
	t.Run("Only Last Call Runs", func(t *testing.T) {
		d := NewDebouncer(20 * time.Millisecond)
		defer d.Stop()

		var calls, last atomic.Int64
		for i := int64(1); i <= 5; i++ {
			d.Trigger(func() {
				calls.Add(1)
				last.Store(i)
			})
		}

		assert.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)
		time.Sleep(40 * time.Millisecond)
		assert.Equal(t, int64(1), calls.Load())
		assert.Equal(t, int64(5), last.Load())
	})

	t.Run("Zero Delay Runs Inline", func(t *testing.T) {
		d := NewDebouncer(0)
		ran := false
		d.Trigger(func() { ran = true })
		assert.True(t, ran)
	})

	t.Run("Stop Cancels Pending", func(t *testing.T) {
		d := NewDebouncer(20 * time.Millisecond)
		var calls atomic.Int64
		d.Trigger(func() { calls.Add(1) })
		d.Stop()
		d.Trigger(func() { calls.Add(1) })

		time.Sleep(50 * time.Millisecond)
		assert.Zero(t, calls.Load())
	})
}
