package panel

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"

	"github.com/ConserveLee/orbit-idle/internal/engine"
)

// NewPatrolPanel creates the panel for the minimap loop.
func NewPatrolPanel(win fyne.Window, bot *engine.Bot, view *View, log *zap.Logger) fyne.CanvasObject {
	positionLabel := widget.NewLabelWithData(view.position)
	positionLabel.TextStyle = fyne.TextStyle{Bold: true}
	boundaryLabel := widget.NewLabelWithData(view.boundary)
	boundaryLabel.Wrapping = fyne.TextWrapWord

	startBtn := widget.NewButton("Start", nil)
	stopBtn := widget.NewButton("Stop", nil)
	stopBtn.Disable()

	startBtn.OnTapped = func() {
		if err := bot.StartPatrol(); err != nil {
			dialog.ShowError(err, win)
			return
		}
		startBtn.Disable()
		stopBtn.Enable()
	}
	stopBtn.OnTapped = func() {
		if err := bot.StopPatrol(); err != nil {
			log.Warn("Patrol stop", zap.Error(err))
		}
		stopBtn.Disable()
		startBtn.Enable()
	}

	region := widget.NewLabelWithData(view.regions)
	region.Wrapping = fyne.TextWrapWord

	return container.NewVBox(
		widget.NewLabel("Patrol loop:"),
		region,
		positionLabel,
		boundaryLabel,
		container.NewHBox(startBtn, stopBtn),
	)
}
