package panel

import (
	"image"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"github.com/ConserveLee/orbit-idle/internal/engine/screen"
)

// RegionPicker displays a capture and lets the user drag out a rectangle.
type RegionPicker struct {
	widget.BaseWidget

	img        image.Image
	startPos   fyne.Position
	currentPos fyne.Position
	dragging   bool

	raster    *canvas.Image
	selection *canvas.Rectangle

	// OnSelected receives the selection in image pixel coordinates.
	OnSelected func(r screen.Rectangle)
}

// NewRegionPicker creates a picker over img.
func NewRegionPicker(img image.Image, onSelected func(screen.Rectangle)) *RegionPicker {
	p := &RegionPicker{img: img, OnSelected: onSelected}
	p.ExtendBaseWidget(p)

	p.raster = canvas.NewImageFromImage(img)
	p.raster.ScaleMode = canvas.ImageScalePixels
	p.raster.FillMode = canvas.ImageFillContain

	p.selection = canvas.NewRectangle(color.RGBA{R: 255, A: 60})
	p.selection.StrokeColor = color.RGBA{R: 255, A: 255}
	p.selection.StrokeWidth = 2
	p.selection.Hide()
	return p
}

func (p *RegionPicker) CreateRenderer() fyne.WidgetRenderer {
	return &pickerRenderer{picker: p, objects: []fyne.CanvasObject{p.raster, p.selection}}
}

func (p *RegionPicker) Dragged(e *fyne.DragEvent) {
	if !p.dragging {
		p.dragging = true
		p.startPos = e.Position.Subtract(e.Dragged)
		p.selection.Show()
	}
	p.currentPos = e.Position
	p.Refresh()
}

func (p *RegionPicker) DragEnd() {
	p.dragging = false
	p.Refresh()
	if p.OnSelected == nil {
		return
	}
	r, ok := viewToPixels(p.img.Bounds(), p.Size(), p.startPos, p.currentPos)
	if ok {
		p.OnSelected(r)
	}
}

// Tapped clears the selection.
func (p *RegionPicker) Tapped(e *fyne.PointEvent) {
	p.startPos = e.Position
	p.currentPos = e.Position
	p.selection.Hide()
	p.Refresh()
}

func (p *RegionPicker) Cursor() desktop.Cursor {
	return desktop.CrosshairCursor
}

// containRect returns where an image of the given bounds is drawn inside a
// view of size view with contain scaling: offset and drawn size.
func containRect(bounds image.Rectangle, view fyne.Size) (fyne.Position, fyne.Size) {
	if view.Width == 0 || view.Height == 0 || bounds.Empty() {
		return fyne.Position{}, fyne.Size{}
	}
	imgW, imgH := float32(bounds.Dx()), float32(bounds.Dy())
	aspect := imgW / imgH

	if view.Width/view.Height > aspect {
		drawW := view.Height * aspect
		return fyne.NewPos((view.Width-drawW)/2, 0), fyne.NewSize(drawW, view.Height)
	}
	drawH := view.Width / aspect
	return fyne.NewPos(0, (view.Height-drawH)/2), fyne.NewSize(view.Width, drawH)
}

// viewToPixels maps a drag between a and b in view coordinates to a pixel
// rectangle of the image. ok is false when the drag misses the image.
func viewToPixels(bounds image.Rectangle, view fyne.Size, a, b fyne.Position) (screen.Rectangle, bool) {
	off, drawn := containRect(bounds, view)
	if drawn.Width == 0 || drawn.Height == 0 {
		return screen.Rectangle{}, false
	}

	x0 := max(min(a.X, b.X), off.X)
	y0 := max(min(a.Y, b.Y), off.Y)
	x1 := min(max(a.X, b.X), off.X+drawn.Width)
	y1 := min(max(a.Y, b.Y), off.Y+drawn.Height)
	if x1 <= x0 || y1 <= y0 {
		return screen.Rectangle{}, false
	}

	scaleX := float32(bounds.Dx()) / drawn.Width
	scaleY := float32(bounds.Dy()) / drawn.Height
	px := image.Rect(
		int((x0-off.X)*scaleX),
		int((y0-off.Y)*scaleY),
		int((x1-off.X)*scaleX),
		int((y1-off.Y)*scaleY),
	).Intersect(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	if px.Empty() {
		return screen.Rectangle{}, false
	}
	return screen.Rectangle{X: px.Min.X, Y: px.Min.Y, Width: px.Dx(), Height: px.Dy()}, true
}

type pickerRenderer struct {
	picker  *RegionPicker
	objects []fyne.CanvasObject
}

func (r *pickerRenderer) Layout(s fyne.Size) {
	r.objects[0].Resize(s)
	r.objects[0].Move(fyne.NewPos(0, 0))
	r.placeSelection()
}

func (r *pickerRenderer) placeSelection() {
	p := r.picker
	minX, minY := min(p.startPos.X, p.currentPos.X), min(p.startPos.Y, p.currentPos.Y)
	maxX, maxY := max(p.startPos.X, p.currentPos.X), max(p.startPos.Y, p.currentPos.Y)
	r.objects[1].Move(fyne.NewPos(minX, minY))
	r.objects[1].Resize(fyne.NewSize(maxX-minX, maxY-minY))
}

func (r *pickerRenderer) MinSize() fyne.Size {
	return fyne.NewSize(100, 100)
}

func (r *pickerRenderer) Refresh() {
	r.placeSelection()
	canvas.Refresh(r.picker)
}

func (r *pickerRenderer) Objects() []fyne.CanvasObject {
	return r.objects
}

func (r *pickerRenderer) Destroy() {}
