package engine

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/ConserveLee/orbit-idle/internal/engine/events"
	"github.com/ConserveLee/orbit-idle/internal/engine/patrol"
	"github.com/ConserveLee/orbit-idle/internal/engine/screen"
)

// patrolLoop tracks the minimap marker and steers it around the circle.
// All fields are owned by the loop goroutine.
type patrolLoop struct {
	bot      *Bot
	log      *zap.Logger
	capturer screen.Capturer
	tracker  *screen.MarkerTracker

	orbit    patrol.OrbitState
	limiter  *rate.Limiter
	cooldown time.Duration
}

func newPatrolLoop(b *Bot, c screen.Capturer) *patrolLoop {
	cfg := b.store.Snapshot().Patrol
	return &patrolLoop{
		bot:      b,
		log:      b.logger.Named("patrol"),
		capturer: c,
		tracker:  screen.NewMarkerTracker(screen.NewMarkerDetector()),
		orbit:    patrol.NewOrbitState(cfg.AngularSpeed, cfg.RadiusOffset),
		limiter:  rate.NewLimiter(rate.Every(cfg.MovementCooldown), 1),
		cooldown: cfg.MovementCooldown,
	}
}

func (l *patrolLoop) step() time.Duration {
	snap := l.bot.store.Snapshot()
	cfg := snap.Patrol

	if cfg.Minimap.Empty() {
		return cfg.NoRegionWait
	}

	buf, err := l.capturer.Capture(cfg.Minimap)
	if err != nil {
		return l.fail(err)
	}

	pos, det, ok := l.tracker.Observe(buf)
	l.bot.setPosition(pos, ok)
	if !ok || !cfg.Circle.Valid() {
		return cfg.Interval
	}
	l.bot.publish(events.PositionUpdate{
		Position:   pos,
		Center:     cfg.Circle.Center,
		Radius:     cfg.Circle.Radius,
		Confidence: det.Confidence,
	})

	l.orbit.AngularSpeed = cfg.AngularSpeed
	l.orbit.RadiusOffset = cfg.RadiusOffset
	dec, next := patrol.Evaluate(l.orbit, patrol.Input{
		Position:      pos,
		HasPosition:   ok,
		Circle:        cfg.Circle,
		BoundaryRatio: cfg.BoundaryRatio,
	})
	if dec.Backoff {
		return cfg.Interval
	}
	if dec.Boundary != "" {
		l.bot.publish(events.Boundary{Message: dec.Boundary, Distance: dec.Distance, Radius: dec.Radius})
	}

	now := l.bot.now()
	if cfg.MovementCooldown != l.cooldown {
		l.limiter.SetLimitAt(now, rate.Every(cfg.MovementCooldown))
		l.cooldown = cfg.MovementCooldown
	}
	if !l.limiter.AllowN(now, 1) {
		// The orbit angle only advances with a press.
		if dec.State != patrol.StateOrbiting {
			l.orbit = next
		}
		return cfg.Interval
	}
	l.orbit = next

	keys := cfg.Keys.Keys(dec.Directions)
	l.log.Debug("Moving",
		zap.Stringer("state", dec.State),
		zap.Strings("keys", keys),
		zap.Float64("distance", dec.Distance),
		zap.Int("x", pos.X), zap.Int("y", pos.Y))

	if err := l.bot.actuator.Press(keys, cfg.Hold); err != nil {
		return l.fail(err)
	}
	return cfg.Interval
}

// fail reports an iteration failure as a boundary notice and returns the
// error backoff.
func (l *patrolLoop) fail(err error) time.Duration {
	l.log.Warn("Patrol iteration failed", zap.Error(err))
	l.bot.publish(events.Boundary{Message: fmt.Sprintf("error: %v", err)})
	return l.bot.store.Snapshot().Engine.ErrorBackoff
}
