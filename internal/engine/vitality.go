package engine

import (
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/ConserveLee/orbit-idle/internal/engine/events"
	"github.com/ConserveLee/orbit-idle/internal/engine/screen"
)

// vitalityLoop watches the status bar and fires the recovery key when the
// bar drops to the threshold.
type vitalityLoop struct {
	bot      *Bot
	log      *zap.Logger
	capturer screen.Capturer
}

func newVitalityLoop(b *Bot, c screen.Capturer) *vitalityLoop {
	return &vitalityLoop{bot: b, log: b.logger.Named("vitality"), capturer: c}
}

func (l *vitalityLoop) step() time.Duration {
	snap := l.bot.store.Snapshot()
	cfg := snap.Vitality

	buf, err := l.capturer.Capture(cfg.Bar)
	if err != nil {
		return l.fail(err)
	}
	l.bot.lastFrame.Store(&buf)

	pct := screen.NewBarEstimator(cfg.Palette).Estimate(buf)
	l.bot.lastReading.Store(math.Float64bits(pct))
	l.bot.publish(events.Reading{Percent: pct})

	if pct > float64(cfg.Threshold) {
		return cfg.Interval
	}

	fired, err := l.bot.gate.TryFire([]string{cfg.Key}, cfg.Cooldown, cfg.Hold)
	if err != nil {
		l.log.Error("Recovery key failed", zap.String("key", cfg.Key), zap.Error(err))
		l.bot.publish(events.Action{Count: l.bot.gate.Count(), Key: cfg.Key, Err: err})
		return snap.Engine.ErrorBackoff
	}
	if fired {
		count := l.bot.gate.Count()
		l.log.Info("Recovery key pressed",
			zap.String("key", cfg.Key),
			zap.Float64("percent", pct),
			zap.Uint64("count", count))
		l.bot.publish(events.Action{Count: count, Key: cfg.Key})
	}
	return cfg.Cooldown
}

// fail reports an iteration failure and returns the error backoff.
func (l *vitalityLoop) fail(err error) time.Duration {
	l.log.Warn("Vitality iteration failed", zap.Error(err))
	l.bot.publish(events.Reading{Err: err})
	return l.bot.store.Snapshot().Engine.ErrorBackoff
}
