package screen

import (
	"image"
	"image/color"
	"math"
)

// Rectangle is a capture region in screen pixels.
type Rectangle struct {
	X      int `mapstructure:"x" yaml:"x"`
	Y      int `mapstructure:"y" yaml:"y"`
	Width  int `mapstructure:"width" yaml:"width"`
	Height int `mapstructure:"height" yaml:"height"`
}

// Empty reports whether the rectangle has no area.
func (r Rectangle) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Image converts to an image.Rectangle for capture backends.
func (r Rectangle) Image() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// Position is a point in map-local pixel space.
type Position struct {
	X int `mapstructure:"x" yaml:"x"`
	Y int `mapstructure:"y" yaml:"y"`
}

// DistanceTo returns the Euclidean distance between two positions.
func (p Position) DistanceTo(o Position) float64 {
	dx := float64(p.X - o.X)
	dy := float64(p.Y - o.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

// RGB is a single 8-bit pixel.
type RGB struct {
	R, G, B uint8
}

// PixelBuffer is a row-major grid of RGB triples.
// It is treated as read-only once produced.
type PixelBuffer struct {
	Width  int
	Height int
	Pix    []uint8 // 3 bytes per pixel
}

// NewPixelBuffer allocates a black buffer of the given size.
func NewPixelBuffer(width, height int) PixelBuffer {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return PixelBuffer{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height*3),
	}
}

// Empty reports whether the buffer has zero width or height.
func (b PixelBuffer) Empty() bool {
	return b.Width <= 0 || b.Height <= 0
}

// At returns the pixel at (x, y). Out of range reads return black.
func (b PixelBuffer) At(x, y int) RGB {
	if x < 0 || y < 0 || x >= b.Width || y >= b.Height {
		return RGB{}
	}
	i := (y*b.Width + x) * 3
	return RGB{R: b.Pix[i], G: b.Pix[i+1], B: b.Pix[i+2]}
}

// Set writes the pixel at (x, y). Only used while building a buffer.
func (b PixelBuffer) Set(x, y int, c RGB) {
	if x < 0 || y < 0 || x >= b.Width || y >= b.Height {
		return
	}
	i := (y*b.Width + x) * 3
	b.Pix[i], b.Pix[i+1], b.Pix[i+2] = c.R, c.G, c.B
}

// Fill paints the half-open rectangle [x0,x1) x [y0,y1).
func (b PixelBuffer) Fill(x0, y0, x1, y1 int, c RGB) {
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			b.Set(x, y, c)
		}
	}
}

// FromImage converts any image into an RGB buffer, dropping alpha.
func FromImage(img image.Image) PixelBuffer {
	bounds := img.Bounds()
	buf := NewPixelBuffer(bounds.Dx(), bounds.Dy())

	if rgba, ok := img.(*image.RGBA); ok {
		for y := 0; y < buf.Height; y++ {
			row := rgba.Pix[y*rgba.Stride:]
			for x := 0; x < buf.Width; x++ {
				si := x * 4
				di := (y*buf.Width + x) * 3
				buf.Pix[di], buf.Pix[di+1], buf.Pix[di+2] = row[si], row[si+1], row[si+2]
			}
		}
		return buf
	}

	for y := 0; y < buf.Height; y++ {
		for x := 0; x < buf.Width; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			buf.Set(x, y, RGB{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8)})
		}
	}
	return buf
}

// Image converts the buffer back to an opaque *image.RGBA, e.g. for PNG dumps.
func (b PixelBuffer) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, b.Width, b.Height))
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			c := b.At(x, y)
			img.SetRGBA(x, y, color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff})
		}
	}
	return img
}

// ColorSample is an averaged color over a pixel region.
type ColorSample struct {
	R, G, B float64
}

// Brightness is the plain channel mean.
func (c ColorSample) Brightness() float64 {
	return (c.R + c.G + c.B) / 3
}

// Manhattan returns |dr|+|dg|+|db|.
func (c ColorSample) Manhattan(o ColorSample) float64 {
	return math.Abs(c.R-o.R) + math.Abs(c.G-o.G) + math.Abs(c.B-o.B)
}

// Distance returns the Euclidean RGB distance.
func (c ColorSample) Distance(o ColorSample) float64 {
	dr, dg, db := c.R-o.R, c.G-o.G, c.B-o.B
	return math.Sqrt(dr*dr + dg*dg + db*db)
}

func meanSample(samples []ColorSample) ColorSample {
	if len(samples) == 0 {
		return ColorSample{}
	}
	var sum ColorSample
	for _, s := range samples {
		sum.R += s.R
		sum.G += s.G
		sum.B += s.B
	}
	n := float64(len(samples))
	return ColorSample{R: sum.R / n, G: sum.G / n, B: sum.B / n}
}
