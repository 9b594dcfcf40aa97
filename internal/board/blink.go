package board

import (
	"sync"
	"time"
)

// blinkInterval is the caret blink period while editing text.
const blinkInterval = 500 * time.Millisecond

// blinkTask is a cancellable periodic task driving the text caret. Cancel is
// idempotent and must run on every transition out of text editing; the tick
// callback is responsible for checking editor state so a tick racing a
// cancel cannot observe a torn-down editor.
type blinkTask struct {
	stop chan struct{}
	once sync.Once
}

func startBlink(interval time.Duration, tick func()) *blinkTask {
	t := &blinkTask{stop: make(chan struct{})}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-t.stop:
				return
			case <-ticker.C:
				tick()
			}
		}
	}()
	return t
}

// Cancel stops the task. Safe to call any number of times.
func (t *blinkTask) Cancel() {
	t.once.Do(func() { close(t.stop) })
}
