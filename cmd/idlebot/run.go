package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/ConserveLee/orbit-idle/internal/config"
	"github.com/ConserveLee/orbit-idle/internal/engine"
	"github.com/ConserveLee/orbit-idle/internal/engine/actuator"
	"github.com/ConserveLee/orbit-idle/internal/engine/events"
)

var errNothingToRun = errors.New("neither --vitality nor --patrol is enabled")

func newRunCmd(c *cli) *cobra.Command {
	var (
		vitality bool
		patrol   bool
		dryRun   bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the loops until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !vitality && !patrol {
				return errNothingToRun
			}
			if dryRun {
				c.cfg.Actuator.Backend = actuator.BackendDryRun
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return c.run(ctx, vitality, patrol)
		},
	}
	cmd.Flags().BoolVar(&vitality, "vitality", true, "run the status bar loop")
	cmd.Flags().BoolVar(&patrol, "patrol", false, "run the minimap patrol loop")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "log key presses instead of sending them")
	return cmd
}

func (c *cli) run(ctx context.Context, vitality, patrol bool) (err error) {
	store := config.NewStore(*c.cfg)
	if c.viper.ConfigFileUsed() != "" {
		config.Watch(c.viper, store, c.log)
	}

	bus := events.NewBus(c.log, c.cfg.Engine.EventBuffer)
	defer bus.Close()
	bus.Subscribe(logEvents(c.log.Named("events")))

	keys, err := actuator.Open(c.cfg.Actuator.Options(), c.log)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, keys.Close()) }()

	bot := engine.NewBot(store, keys, bus, c.log)
	if vitality {
		if err := bot.StartVitality(); err != nil {
			return err
		}
	}
	if patrol {
		if err := bot.StartPatrol(); err != nil {
			return multierr.Append(err, bot.Stop())
		}
	}
	c.log.Info("Running, press Ctrl+C to stop",
		zap.Bool("vitality", vitality),
		zap.Bool("patrol", patrol),
		zap.String("backend", c.cfg.Actuator.Backend))

	<-ctx.Done()
	c.log.Info("Stopping")
	err = bot.Stop()
	stats := bot.Stats()
	c.log.Info("Stopped",
		zap.Uint64("actions", stats.Actions),
		zap.Uint64("dropped_events", stats.DroppedEvents))
	return err
}

// logEvents turns engine events into log lines.
func logEvents(log *zap.Logger) events.Observer {
	return func(e events.Event) {
		switch ev := e.(type) {
		case events.Reading:
			if ev.Err != nil {
				log.Warn("Reading failed", zap.Error(ev.Err))
				return
			}
			log.Debug("Reading", zap.Float64("percent", ev.Percent))
		case events.Action:
			if ev.Err != nil {
				log.Warn("Action failed", zap.String("key", ev.Key), zap.Error(ev.Err))
				return
			}
			log.Info("Action", zap.String("key", ev.Key), zap.Uint64("count", ev.Count))
		case events.PositionUpdate:
			log.Debug("Position",
				zap.Int("x", ev.Position.X),
				zap.Int("y", ev.Position.Y),
				zap.Stringer("confidence", ev.Confidence))
		case events.Boundary:
			log.Info("Boundary", zap.String("message", ev.Message), zap.Float64("distance", ev.Distance))
		}
	}
}
