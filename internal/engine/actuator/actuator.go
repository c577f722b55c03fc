// Package actuator turns key sets into timed virtual key presses.
package actuator

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/multierr"
)

// ErrActuation is returned when the key backend fails.
var ErrActuation = errors.New("actuation failed")

// KeyPort injects single key transitions.
type KeyPort interface {
	Press(key string) error
	Release(key string) error
}

// Actuator presses key sets through a KeyPort. It holds no per-loop state and
// may be shared, provided the port itself is safe for concurrent use.
type Actuator struct {
	port  KeyPort
	sleep func(time.Duration)
}

// New creates an actuator over port.
func New(port KeyPort) *Actuator {
	return &Actuator{port: port, sleep: time.Sleep}
}

// Press pushes every key down in order, holds, then releases them all.
// If a key fails to go down, the keys already down are released in reverse
// order before the error is returned.
func (a *Actuator) Press(keys []string, hold time.Duration) error {
	if len(keys) == 0 {
		return nil
	}

	for i, key := range keys {
		if err := a.port.Press(key); err != nil {
			err = fmt.Errorf("%w: press %q: %w", ErrActuation, key, err)
			return multierr.Append(err, a.releaseAll(keys[:i]))
		}
	}

	a.sleep(hold)

	var errs error
	for _, key := range keys {
		if err := a.port.Release(key); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%w: release %q: %w", ErrActuation, key, err))
		}
	}
	return errs
}

func (a *Actuator) releaseAll(pressed []string) error {
	var errs error
	for i := len(pressed) - 1; i >= 0; i-- {
		if err := a.port.Release(pressed[i]); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%w: release %q: %w", ErrActuation, pressed[i], err))
		}
	}
	return errs
}
