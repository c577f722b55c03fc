package engine

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/ConserveLee/orbit-idle/internal/config"
	"github.com/ConserveLee/orbit-idle/internal/engine/actuator"
	"github.com/ConserveLee/orbit-idle/internal/engine/events"
	"github.com/ConserveLee/orbit-idle/internal/engine/patrol"
	"github.com/ConserveLee/orbit-idle/internal/engine/screen"
)

var (
	// ErrAlreadyRunning is returned when starting a loop that is running.
	ErrAlreadyRunning = errors.New("loop already running")
	// ErrStopTimeout is returned when a loop did not exit within the join timeout.
	ErrStopTimeout = errors.New("loop did not stop in time")
	// ErrNoFrame is returned by SaveDebugFrame before the first bar capture.
	ErrNoFrame = errors.New("no bar frame captured yet")
	// ErrIterationPanic wraps a panic recovered from a loop iteration.
	ErrIterationPanic = errors.New("loop iteration panicked")
)

// Stats is a point-in-time view of the bot for observers.
type Stats struct {
	VitalityRunning bool
	PatrolRunning   bool

	Actions     uint64
	LastAction  time.Time
	LastReading float64

	Position    screen.Position
	HasPosition bool
	Circle      patrol.Circle
	Minimap     screen.Rectangle

	DroppedEvents uint64
}

// Option customizes a Bot.
type Option func(*Bot)

// WithCapturerFactory replaces the screen grabber used by each loop.
func WithCapturerFactory(f func() screen.Capturer) Option {
	return func(b *Bot) { b.newCapturer = f }
}

// WithClock replaces time.Now for cooldown and rate decisions.
func WithClock(now func() time.Time) Option {
	return func(b *Bot) { b.now = now }
}

// Bot owns the vitality and patrol loops.
type Bot struct {
	store  *config.Store
	bus    *events.Bus
	logger *zap.Logger

	actuator    *actuator.Actuator
	gate        *actuator.Gate // survives restarts so the action count only grows
	newCapturer func() screen.Capturer
	now         func() time.Time

	mu       sync.Mutex // guards the worker handles
	vitality *worker
	patrol   *worker

	lastFrame   atomic.Pointer[screen.PixelBuffer]
	lastReading atomic.Uint64 // math.Float64bits

	posMu       sync.Mutex
	position    screen.Position
	hasPosition bool
}

// NewBot wires a bot. keys is shared by both loops and must be safe for
// concurrent use.
func NewBot(store *config.Store, keys actuator.KeyPort, bus *events.Bus, logger *zap.Logger, opts ...Option) *Bot {
	act := actuator.New(keys)
	b := &Bot{
		store:       store,
		bus:         bus,
		logger:      logger.Named("engine"),
		actuator:    act,
		gate:        actuator.NewGate(act),
		newCapturer: func() screen.Capturer { return screen.NewGrabber() },
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.gate.SetClock(b.now)
	return b
}

// StartVitality starts the status bar loop.
func (b *Bot) StartVitality() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.vitality != nil {
		return ErrAlreadyRunning
	}
	if err := b.store.Snapshot().Vitality.Ready(); err != nil {
		return err
	}

	loop := newVitalityLoop(b, b.newCapturer())
	b.vitality = startWorker("vitality", b.guard(loop.log, loop.step, loop.fail))
	loop.log.Info("Vitality loop started")
	return nil
}

// StopVitality stops the status bar loop. Stopping a stopped loop is a no-op.
func (b *Bot) StopVitality() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	err := b.stopWorker(b.vitality)
	b.vitality = nil
	return err
}

// StartPatrol starts the minimap loop. It refuses to start without a
// minimap region and a circle.
func (b *Bot) StartPatrol() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.patrol != nil {
		return ErrAlreadyRunning
	}
	if err := b.store.Snapshot().Patrol.Ready(); err != nil {
		return err
	}

	loop := newPatrolLoop(b, b.newCapturer())
	b.patrol = startWorker("patrol", b.guard(loop.log, loop.step, loop.fail))
	loop.log.Info("Patrol loop started")
	return nil
}

// StopPatrol stops the minimap loop. Stopping a stopped loop is a no-op.
func (b *Bot) StopPatrol() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	err := b.stopWorker(b.patrol)
	b.patrol = nil
	b.setPosition(screen.Position{}, false)
	return err
}

// Stop stops both loops.
func (b *Bot) Stop() error {
	return multierr.Append(b.StopVitality(), b.StopPatrol())
}

func (b *Bot) stopWorker(w *worker) error {
	if w == nil {
		return nil
	}
	timeout := b.store.Snapshot().Engine.StopTimeout
	if !w.stop(timeout) {
		b.logger.Warn("Loop did not stop in time", zap.String("loop", w.name), zap.Duration("timeout", timeout))
		return fmt.Errorf("%w: %s after %v", ErrStopTimeout, w.name, timeout)
	}
	b.logger.Info("Loop stopped", zap.String("loop", w.name))
	return nil
}

// Stats returns the current counters and positions.
func (b *Bot) Stats() Stats {
	b.mu.Lock()
	s := Stats{
		VitalityRunning: b.vitality != nil,
		PatrolRunning:   b.patrol != nil,
	}
	b.mu.Unlock()

	cfg := b.store.Snapshot()
	s.Circle = cfg.Patrol.Circle
	s.Minimap = cfg.Patrol.Minimap
	s.Actions = b.gate.Count()
	s.LastAction = b.gate.LastAction()
	s.LastReading = math.Float64frombits(b.lastReading.Load())
	s.DroppedEvents = b.bus.Dropped()

	b.posMu.Lock()
	s.Position, s.HasPosition = b.position, b.hasPosition
	b.posMu.Unlock()
	return s
}

// SaveDebugFrame writes the most recent bar capture to path as PNG.
func (b *Bot) SaveDebugFrame(path string) error {
	frame := b.lastFrame.Load()
	if frame == nil {
		return ErrNoFrame
	}
	return screen.SavePNG(*frame, path)
}

func (b *Bot) setPosition(p screen.Position, ok bool) {
	b.posMu.Lock()
	b.position, b.hasPosition = p, ok
	b.posMu.Unlock()
}

func (b *Bot) publish(e events.Event) {
	b.bus.Publish(e)
}

// guard turns a panicking iteration into a reported failure and the error backoff.
func (b *Bot) guard(log *zap.Logger, step stepFunc, fail func(error) time.Duration) stepFunc {
	return func() (next time.Duration) {
		defer func() {
			if r := recover(); r != nil {
				err := fmt.Errorf("%w: %v", ErrIterationPanic, r)
				log.Error("Recovered from panic", zap.Error(err), zap.Stack("stack"))
				next = fail(err)
			}
		}()
		return step()
	}
}
