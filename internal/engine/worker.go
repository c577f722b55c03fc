package engine

import (
	"time"
)

// stepFunc runs one iteration and returns how long to wait before the next.
type stepFunc func() time.Duration

// worker runs a step on a timer until stopped.
type worker struct {
	name     string
	step     stepFunc
	stopChan chan struct{}
	done     chan struct{}
}

func startWorker(name string, step stepFunc) *worker {
	w := &worker{
		name:     name,
		step:     step,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
	go w.loop()
	return w
}

func (w *worker) loop() {
	defer close(w.done)
	timer := time.NewTimer(0)

	for {
		select {
		case <-w.stopChan:
			timer.Stop()
			return
		case <-timer.C:
			next := w.step()
			// A stop requested during the step wins over the next wait.
			select {
			case <-w.stopChan:
				return
			default:
			}
			timer.Reset(next)
		}
	}
}

// stop signals the loop and waits up to timeout for it to exit. It reports
// whether the loop exited in time. An in-flight key hold always completes.
func (w *worker) stop(timeout time.Duration) bool {
	close(w.stopChan)
	select {
	case <-w.done:
		return true
	case <-time.After(timeout):
		return false
	}
}
