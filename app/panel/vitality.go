package panel

import (
	"fmt"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"

	"github.com/ConserveLee/orbit-idle/internal/engine"
)

// NewVitalityPanel creates the panel for the status bar loop.
func NewVitalityPanel(win fyne.Window, bot *engine.Bot, view *View, log *zap.Logger) fyne.CanvasObject {
	readingLabel := widget.NewLabelWithData(view.reading)
	readingLabel.TextStyle = fyne.TextStyle{Bold: true}
	actionsLabel := widget.NewLabelWithData(view.actions)

	startBtn := widget.NewButton("Start", nil)
	stopBtn := widget.NewButton("Stop", nil)
	stopBtn.Disable()

	startBtn.OnTapped = func() {
		if err := bot.StartVitality(); err != nil {
			dialog.ShowError(err, win)
			return
		}
		startBtn.Disable()
		stopBtn.Enable()
	}
	stopBtn.OnTapped = func() {
		if err := bot.StopVitality(); err != nil {
			log.Warn("Vitality stop", zap.Error(err))
		}
		stopBtn.Disable()
		startBtn.Enable()
	}

	saveBtn := widget.NewButton("Save debug frame", func() {
		path := fmt.Sprintf("bar_debug_%s.png", time.Now().Format("20060102_150405"))
		if err := bot.SaveDebugFrame(path); err != nil {
			dialog.ShowError(err, win)
			return
		}
		log.Info("Saved debug frame", zap.String("path", path))
	})

	return container.NewVBox(
		widget.NewLabel("Vitality loop:"),
		readingLabel,
		actionsLabel,
		container.NewHBox(startBtn, stopBtn),
		widget.NewSeparator(),
		saveBtn,
	)
}
