package game

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhaseTimer_TicksDownAndFiresOnce(t *testing.T) {
	var mu sync.Mutex
	var ticks []int
	expired := make(chan struct{})
	var fires int32

	NewPhaseTimer(3, 5*time.Millisecond,
		func(remaining int) {
			mu.Lock()
			ticks = append(ticks, remaining)
			mu.Unlock()
		},
		func() {
			atomic.AddInt32(&fires, 1)
			close(expired)
		},
	)

	select {
	case <-expired:
	case <-time.After(time.Second):
		t.Fatal("timer did not expire")
	}
	time.Sleep(30 * time.Millisecond)

	assert.Equal(t, int32(1), atomic.LoadInt32(&fires))
	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []int{2, 1}, ticks)
}

func TestPhaseTimer_StopPreventsFire(t *testing.T) {
	var fires int32
	timer := NewPhaseTimer(2, 10*time.Millisecond,
		func(int) {},
		func() { atomic.AddInt32(&fires, 1) },
	)
	timer.Stop()

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&fires))
}

func TestPhaseTimer_StopIsIdempotent(t *testing.T) {
	timer := NewPhaseTimer(5, time.Minute, func(int) {}, func() {})
	timer.Stop()
	timer.Stop()
}
