package panel

import (
	"fmt"
	"image"

	"github.com/kbinani/screenshot"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/data/binding"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"

	"github.com/ConserveLee/orbit-idle/internal/config"
	"github.com/ConserveLee/orbit-idle/internal/engine/patrol"
	"github.com/ConserveLee/orbit-idle/internal/engine/screen"
)

// NewToolsPanel picks capture regions on a display and suggests a bar
// palette from the configured bar region.
func NewToolsPanel(win fyne.Window, store *config.Store, log *zap.Logger) fyne.CanvasObject {
	// 1. Display selector
	selectedDisplay := 0
	numDisplays := screenshot.NumActiveDisplays()
	var displays []string
	for i := 0; i < numDisplays; i++ {
		b := screenshot.GetDisplayBounds(i)
		displays = append(displays, fmt.Sprintf("Display %d (%dx%d at %d,%d)", i, b.Dx(), b.Dy(), b.Min.X, b.Min.Y))
	}
	if len(displays) == 0 {
		displays = []string{"Display 0 (Default)"}
	}
	displaySelect := widget.NewSelect(displays, func(selected string) {
		var id int
		if _, err := fmt.Sscanf(selected, "Display %d", &id); err == nil {
			selectedDisplay = id
		}
	})
	displaySelect.SetSelected(displays[0])

	pickBtn := widget.NewButton("Capture & pick region", func() {
		bounds := screenshot.GetDisplayBounds(selectedDisplay)
		img, err := screenshot.CaptureRect(bounds)
		if err != nil {
			dialog.ShowError(err, win)
			return
		}
		showPickerWindow(img, bounds.Min, store, log)
	})

	// 2. Palette suggestion
	suggestion := binding.NewString()
	suggestion.Set("Capture the bar while it is full, then apply.")
	var pending *screen.Palette

	applyBtn := widget.NewButton("Apply palette", nil)
	applyBtn.Disable()

	suggestBtn := widget.NewButton("Suggest palette from bar", func() {
		bar := store.Snapshot().Vitality.Bar
		buf, err := screen.NewGrabber().Capture(bar)
		if err != nil {
			dialog.ShowError(err, win)
			return
		}
		p, ok := screen.SuggestPalette(buf)
		if !ok {
			dialog.ShowError(fmt.Errorf("bar region %dx%d is too small", bar.Width, bar.Height), win)
			return
		}
		pending = &p
		suggestion.Set(fmt.Sprintf("Healthy %v-%v\nLow %v-%v", p.Healthy.Min, p.Healthy.Max, p.Low.Min, p.Low.Max))
		applyBtn.Enable()
	})
	suggestBtn.Importance = widget.HighImportance

	applyBtn.OnTapped = func() {
		if pending == nil {
			return
		}
		p := *pending
		if err := store.Update(func(c *config.Config) { c.Vitality.Palette = p }); err != nil {
			dialog.ShowError(err, win)
			return
		}
		log.Info("Palette applied for this session", zap.Any("palette", p))
		applyBtn.Disable()
	}

	return container.NewVBox(
		widget.NewLabel("1. Choose a display\n2. Capture and drag over the bar or minimap\n3. Assign the selection\n\nPicked regions and palettes last for this session\nand are kept when config.yaml is reloaded."),
		displaySelect,
		pickBtn,
		widget.NewSeparator(),
		widget.NewLabelWithData(suggestion),
		container.NewHBox(suggestBtn, applyBtn),
	)
}

// showPickerWindow opens a capture of one display; origin is the display's
// top-left corner in virtual screen coordinates.
func showPickerWindow(img image.Image, origin image.Point, store *config.Store, log *zap.Logger) {
	w := fyne.CurrentApp().NewWindow("Pick region")
	w.Resize(fyne.NewSize(800, 600))

	lbl := widget.NewLabel("Drag over the status bar or the minimap...")
	lbl.Alignment = fyne.TextAlignCenter

	barBtn := widget.NewButton("Use as bar", nil)
	mapBtn := widget.NewButton("Use as minimap and circle", nil)
	barBtn.Disable()
	mapBtn.Disable()

	var current screen.Rectangle
	picker := NewRegionPicker(img, func(r screen.Rectangle) {
		current = screen.Rectangle{X: r.X + origin.X, Y: r.Y + origin.Y, Width: r.Width, Height: r.Height}
		lbl.SetText(fmt.Sprintf("Selected %dx%d at (%d, %d)", current.Width, current.Height, current.X, current.Y))
		barBtn.Enable()
		mapBtn.Enable()
	})

	assign := func(name string, apply func(c *config.Config)) {
		if err := store.Update(apply); err != nil {
			dialog.ShowError(err, w)
			return
		}
		log.Info("Region applied for this session", zap.String("region", name), zap.Any("rect", current))
		lbl.SetText(fmt.Sprintf("%s set to %dx%d at (%d, %d)", name, current.Width, current.Height, current.X, current.Y))
	}
	barBtn.OnTapped = func() {
		region := current
		assign("Bar", func(c *config.Config) { c.Vitality.Bar = region })
	}
	mapBtn.OnTapped = func() {
		region := current
		circle, ok := patrol.InscribedCircle(region)
		if !ok {
			assign("Minimap", func(c *config.Config) { c.Patrol.Minimap = region })
			return
		}
		assign("Minimap and circle", func(c *config.Config) {
			c.Patrol.Minimap = region
			c.Patrol.Circle = circle
		})
	}

	w.SetContent(container.NewBorder(nil, container.NewVBox(lbl, container.NewHBox(barBtn, mapBtn)), nil, nil, picker))
	w.Show()
}

// NewLogPanel lists the in-app log lines and follows the newest entry.
func NewLogPanel(view *View) fyne.CanvasObject {
	logList := widget.NewListWithData(
		view.Log,
		func() fyne.CanvasObject { return widget.NewLabel("Log entry template") },
		func(i binding.DataItem, o fyne.CanvasObject) { o.(*widget.Label).Bind(i.(binding.String)) },
	)

	// Auto-scroll
	view.Log.AddListener(binding.NewDataListener(func() {
		if view.Log.Length() > 0 {
			logList.ScrollToBottom()
		}
	}))
	return logList
}
