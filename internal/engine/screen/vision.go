package screen

import (
	"errors"
	"fmt"
	"image"
	"image/png" // also registers the PNG decoder for image.Decode
	"os"
	"sync"

	"github.com/kbinani/screenshot"
)

var (
	// ErrCapture is returned when a region cannot be read.
	ErrCapture = errors.New("capture failed")
	// ErrInvalidRegion is returned for zero-area rectangles.
	ErrInvalidRegion = errors.New("invalid capture region")
	// ErrCaptureBusy is returned when a capture handle is used by two callers at once.
	ErrCaptureBusy = errors.New("capture handle already in use")
)

// Capturer reads a pixel rectangle from the screen.
// Implementations are not required to be safe for concurrent use.
type Capturer interface {
	Capture(region Rectangle) (PixelBuffer, error)
}

// Grabber handles screen capturing for one loop.
type Grabber struct {
	busy sync.Mutex

	// grab is swapped in tests; defaults to screenshot.CaptureRect.
	grab func(image.Rectangle) (*image.RGBA, error)
}

// NewGrabber creates a new capture handle
func NewGrabber() *Grabber {
	return &Grabber{grab: screenshot.CaptureRect}
}

// Capture returns the pixels inside region.
func (g *Grabber) Capture(region Rectangle) (PixelBuffer, error) {
	if region.Empty() {
		return PixelBuffer{}, fmt.Errorf("%w: %dx%d at (%d, %d)", ErrInvalidRegion, region.Width, region.Height, region.X, region.Y)
	}
	if !g.busy.TryLock() {
		return PixelBuffer{}, ErrCaptureBusy
	}
	defer g.busy.Unlock()

	img, err := g.grab(region.Image())
	if err != nil {
		return PixelBuffer{}, fmt.Errorf("%w: region %v: %v", ErrCapture, region.Image(), err)
	}
	return FromImage(img), nil
}

// LoadImage loads an image from the filesystem
func LoadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	return img, err
}

// SavePNG writes the buffer to path as a PNG.
func SavePNG(buf PixelBuffer, path string) error {
	if buf.Empty() {
		return fmt.Errorf("%w: nothing to save", ErrInvalidRegion)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if err := png.Encode(f, buf.Image()); err != nil {
		return fmt.Errorf("failed to encode image: %w", err)
	}
	return nil
}
