package game

import (
	"sync"
	"time"
)

// PhaseTimer counts down a fixed number of ticks for one phase. It
// fires onExpire exactly once when the count reaches zero and is inert
// afterwards. Stop prevents any further callback, including an expiry
// that has not run yet. Callbacks are invoked from the timer goroutine;
// the session re-validates that the timer is still current before
// mutating anything, so a superseded timer can never corrupt state.
type PhaseTimer struct {
	ticks    int
	interval time.Duration
	onTick   func(remaining int)
	onExpire func()

	stop chan struct{}
	once sync.Once
}

func NewPhaseTimer(ticks int, interval time.Duration, onTick func(remaining int), onExpire func()) *PhaseTimer {
	t := &PhaseTimer{
		ticks:    ticks,
		interval: interval,
		onTick:   onTick,
		onExpire: onExpire,
		stop:     make(chan struct{}),
	}
	go t.run()
	return t
}

func (t *PhaseTimer) run() {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	remaining := t.ticks
	for {
		select {
		case <-t.stop:
			return
		case <-ticker.C:
			remaining--
			if remaining <= 0 {
				select {
				case <-t.stop:
					return
				default:
				}
				t.onExpire()
				return
			}
			t.onTick(remaining)
		}
	}
}

// Stop cancels the countdown. Safe to call more than once and after
// expiry.
func (t *PhaseTimer) Stop() {
	t.once.Do(func() { close(t.stop) })
}
