package main

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"go.uber.org/zap"

	"github.com/ConserveLee/orbit-idle/app/panel"
	"github.com/ConserveLee/orbit-idle/internal/config"
	"github.com/ConserveLee/orbit-idle/internal/engine"
	"github.com/ConserveLee/orbit-idle/internal/engine/actuator"
	"github.com/ConserveLee/orbit-idle/internal/engine/events"
	"github.com/ConserveLee/orbit-idle/internal/logger"
)

func main() {
	myApp := app.New()
	myWindow := myApp.NewWindow("Orbit Idle")
	myWindow.Resize(fyne.NewSize(520, 640))

	view := panel.NewView()

	cfg, v, loadErr := config.Load("")
	if loadErr != nil {
		cfg = config.NewDefaultConfig()
	}
	log := logger.NewStdout(cfg.Logger, logger.NewBindingCore(view.Log))
	defer log.Sync()
	if loadErr != nil {
		log.Warn("Using default configuration", zap.Error(loadErr))
	}

	store := config.NewStore(*cfg)
	store.Subscribe(view.ShowConfig)
	view.ShowConfig(store.Snapshot())
	if v != nil && v.ConfigFileUsed() != "" {
		config.Watch(v, store, log)
	}

	bus := events.NewBus(log, cfg.Engine.EventBuffer)
	bus.Subscribe(view.Observe)

	keys, err := actuator.Open(cfg.Actuator.Options(), log)
	if err != nil {
		log.Error("Key backend unavailable, falling back to dry run", zap.Error(err))
		keys = actuator.NewLogKeys(log)
	}

	bot := engine.NewBot(store, keys, bus, log)

	tabs := container.NewAppTabs(
		container.NewTabItem("Vitality", panel.NewVitalityPanel(myWindow, bot, view, log)),
		container.NewTabItem("Patrol", panel.NewPatrolPanel(myWindow, bot, view, log)),
		container.NewTabItem("Tools", panel.NewToolsPanel(myWindow, store, log)),
	)
	tabs.SetTabLocation(container.TabLocationTop)

	myWindow.SetContent(container.NewVSplit(tabs, panel.NewLogPanel(view)))
	myWindow.SetOnClosed(func() {
		if err := bot.Stop(); err != nil {
			log.Warn("Stop", zap.Error(err))
		}
		bus.Close()
		if err := keys.Close(); err != nil {
			log.Warn("Closing key backend", zap.Error(err))
		}
	})
	myWindow.ShowAndRun()
}
