package screen

import (
	"math"

	"github.com/ConserveLee/orbit-idle/internal/constants"
)

// ColorRange is an inclusive per-channel RGB range.
type ColorRange struct {
	Min RGBValue `mapstructure:"min" yaml:"min"`
	Max RGBValue `mapstructure:"max" yaml:"max"`
}

// RGBValue is an RGB triple as it appears in configuration.
type RGBValue struct {
	R int `mapstructure:"r" yaml:"r"`
	G int `mapstructure:"g" yaml:"g"`
	B int `mapstructure:"b" yaml:"b"`
}

func (v RGBValue) sample() ColorSample {
	return ColorSample{R: float64(v.R), G: float64(v.G), B: float64(v.B)}
}

// Contains reports whether c lies within the range on every channel.
func (r ColorRange) Contains(c ColorSample) bool {
	return c.R >= float64(r.Min.R) && c.R <= float64(r.Max.R) &&
		c.G >= float64(r.Min.G) && c.G <= float64(r.Max.G) &&
		c.B >= float64(r.Min.B) && c.B <= float64(r.Max.B)
}

// Zero reports whether the range was left unset.
func (r ColorRange) Zero() bool {
	return r == ColorRange{}
}

// Palette holds the two fill color ranges of a status bar.
type Palette struct {
	Healthy ColorRange `mapstructure:"healthy" yaml:"healthy"`
	Low     ColorRange `mapstructure:"low" yaml:"low"`
}

// Configured reports whether at least one range is set.
func (p Palette) Configured() bool {
	return !p.Healthy.Zero() || !p.Low.Zero()
}

// IsFill reports whether c matches one of the configured fill ranges.
func (p Palette) IsFill(c ColorSample) bool {
	return (!p.Healthy.Zero() && p.Healthy.Contains(c)) || (!p.Low.Zero() && p.Low.Contains(c))
}

// dimmest returns the brightness of the darkest configured range minimum.
func (p Palette) dimmest() (float64, bool) {
	var (
		floor float64
		ok    bool
	)
	for _, r := range []ColorRange{p.Healthy, p.Low} {
		if r.Zero() {
			continue
		}
		b := r.Min.sample().Brightness()
		if !ok || b < floor {
			floor, ok = b, true
		}
	}
	return floor, ok
}

// BarEstimator converts a bar-shaped capture into a fill percentage.
// It keeps no state between calls.
type BarEstimator struct {
	Palette Palette
}

// NewBarEstimator creates an estimator. An empty palette disables the
// drained-bar check for indistinguishable bars.
func NewBarEstimator(p Palette) *BarEstimator {
	return &BarEstimator{Palette: p}
}

// Estimate returns the filled percentage of the bar in [0, 100].
// A zero-area buffer yields 0.
func (e *BarEstimator) Estimate(buf PixelBuffer) float64 {
	if buf.Empty() {
		return 0
	}
	width := buf.Width
	line := averageRow(buf)

	sampleWidth := min(constants.BarSampleMaxWidth, width/4)
	if sampleWidth < 1 {
		sampleWidth = 1
	}
	fillColor := meanSample(line[:sampleWidth])
	emptyColor := meanSample(line[width-sampleWidth:])

	var filled []bool
	if fillColor.Manhattan(emptyColor) < constants.BarColorDiffMin {
		fillBright := fillColor.Brightness()
		emptyBright := emptyColor.Brightness()
		if math.Abs(fillBright-emptyBright) <= constants.BarBrightnessDiffMin {
			return e.indistinguishable(fillColor)
		}
		mid := (fillBright + emptyBright) / 2
		filled = make([]bool, width)
		for i, c := range line {
			filled[i] = c.Brightness() > mid
		}
	} else {
		filled = classifyByNearest(line, fillColor, emptyColor, sampleWidth)
	}

	end := barEnd(filled, max(constants.BarTrustedColumns, sampleWidth))
	pct := float64(end) / float64(width) * 100
	return math.Max(0, math.Min(100, pct))
}

// indistinguishable handles bars whose two ends look the same. They read
// full so a flat capture never reads as near death. The exception is a
// configured palette whose dimmest fill color is still brighter than the
// bar: that is a drained bar.
func (e *BarEstimator) indistinguishable(c ColorSample) float64 {
	if e.Palette.IsFill(c) {
		return 100.0
	}
	if floor, ok := e.Palette.dimmest(); ok && c.Brightness() < floor {
		return 0
	}
	return 100.0
}

// averageRow collapses the buffer to the mean color of each column.
func averageRow(buf PixelBuffer) []ColorSample {
	line := make([]ColorSample, buf.Width)
	for x := 0; x < buf.Width; x++ {
		var r, g, b float64
		for y := 0; y < buf.Height; y++ {
			c := buf.At(x, y)
			r += float64(c.R)
			g += float64(c.G)
			b += float64(c.B)
		}
		n := float64(buf.Height)
		line[x] = ColorSample{R: r / n, G: g / n, B: b / n}
	}
	return line
}

func classifyByNearest(line []ColorSample, fillColor, emptyColor ColorSample, sampleWidth int) []bool {
	filled := make([]bool, len(line))
	fillDist := make([]float64, len(line))
	count := 0
	for i, c := range line {
		fillDist[i] = c.Distance(fillColor)
		filled[i] = fillDist[i] < c.Distance(emptyColor)
		if filled[i] {
			count++
		}
	}

	if float64(count) >= float64(len(line))*constants.BarRelaxFillRatio {
		return filled
	}

	maxSample := 0.0
	for _, d := range fillDist[:sampleWidth] {
		maxSample = math.Max(maxSample, d)
	}
	limit := maxSample * constants.BarRelaxDistanceScale
	for i, d := range fillDist {
		filled[i] = d < limit
	}
	return filled
}

// barEnd scans left to right from start and returns the first column whose
// forward window is mostly empty. Returns len(filled) when the bar never ends.
func barEnd(filled []bool, start int) int {
	width := len(filled)
	for i := start; i < width; i++ {
		window := min(constants.BarWindow, width-i)
		hits := 0
		for _, f := range filled[i : i+window] {
			if f {
				hits++
			}
		}
		if float64(hits) < float64(window)*constants.BarWindowFillMin {
			return i
		}
	}
	return width
}

// SuggestPalette samples both ends of a bar capture and proposes fill ranges:
// the left color +/- spread as healthy and a darker variant as low.
func SuggestPalette(buf PixelBuffer) (Palette, bool) {
	if buf.Empty() {
		return Palette{}, false
	}
	sampleWidth := max(constants.PaletteSampleMinWidth, buf.Width/5)
	sampleWidth = min(sampleWidth, buf.Width)

	line := averageRow(buf)
	fill := meanSample(line[:sampleWidth])
	low := ColorSample{
		R: fill.R * constants.PaletteLowScale,
		G: fill.G * constants.PaletteLowScale,
		B: fill.B * constants.PaletteLowScale,
	}
	return Palette{
		Healthy: spreadRange(fill, constants.PaletteSpread),
		Low:     spreadRange(low, constants.PaletteSpread),
	}, true
}

func spreadRange(c ColorSample, spread int) ColorRange {
	clamp := func(v int) int { return max(0, min(255, v)) }
	r, g, b := int(c.R), int(c.G), int(c.B)
	return ColorRange{
		Min: RGBValue{R: clamp(r - spread), G: clamp(g - spread), B: clamp(b - spread)},
		Max: RGBValue{R: clamp(r + spread), G: clamp(g + spread), B: clamp(b + spread)},
	}
}
