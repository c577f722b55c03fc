package screen

import (
	"math"

	"github.com/ConserveLee/orbit-idle/internal/constants"
)

// Confidence grades how a marker position was obtained.
type Confidence int

const (
	ConfidenceNone Confidence = iota // nothing detected, last known position reused
	ConfidenceLow                    // brightest-pixel heuristic
	ConfidenceHigh                   // scored blob
)

// String returns the string representation of the confidence
func (c Confidence) String() string {
	switch c {
	case ConfidenceHigh:
		return "high"
	case ConfidenceLow:
		return "low"
	default:
		return "none"
	}
}

// Detection is the result of one marker search.
type Detection struct {
	Position   Position
	Found      bool // false when Position is only the carried-over last known value
	Confidence Confidence
	Candidates int // marked pixels after threshold relaxation
	Blobs      int // components that passed the size filter
}

// MarkerDetector locates the bright player marker on a minimap capture.
// It is stateless; Detect depends only on its arguments.
type MarkerDetector struct{}

// NewMarkerDetector creates a detector with the default thresholds.
func NewMarkerDetector() *MarkerDetector {
	return &MarkerDetector{}
}

// Detect runs the detection pipeline: bright balanced pixels, relaxed
// threshold, connected components, scoring, arrow tip. last is returned
// unchanged when the buffer is empty.
func (d *MarkerDetector) Detect(buf PixelBuffer, last Position) Detection {
	if buf.Empty() {
		return Detection{Position: last, Found: false, Confidence: ConfidenceNone}
	}

	brightness, balanced := pixelStats(buf)

	candidates := threshold(buf, brightness, balanced, constants.MarkerBrightThreshold)
	if candidates.count() < constants.MarkerMinCandidates {
		candidates = threshold(buf, brightness, balanced, constants.MarkerRelaxedThreshold)
	}
	n := candidates.count()
	if n == 0 {
		return brightestFallback(buf, brightness, n)
	}

	var (
		best      *blob
		bestScore = -1.0
		kept      = 0
	)
	blobs := findBlobs(candidates)
	for i := range blobs {
		b := &blobs[i]
		if b.size() < constants.BlobMinPixels || b.size() > constants.BlobMaxPixels {
			continue
		}
		kept++
		c := b.centroid()
		score := constants.BlobBrightnessWeight*b.meanBrightness(brightness, buf.Width) +
			constants.BlobShapeWeight*b.shapeScore(c, buf.Width, buf.Height)
		if score > bestScore {
			bestScore = score
			best = b
		}
	}

	if best == nil {
		// Only noise-sized or oversized components: a lone bright pixel is
		// still the best guess for a tiny marker.
		return brightestFallback(buf, brightness, n)
	}

	pos := best.centroid()
	if best.size() >= constants.ArrowTipMinPixels {
		pos = best.tip(pos)
	}
	return Detection{
		Position:   pos,
		Found:      true,
		Confidence: ConfidenceHigh,
		Candidates: n,
		Blobs:      kept,
	}
}

// pixelStats computes per-pixel brightness and color balance.
func pixelStats(buf PixelBuffer) ([]float64, []bool) {
	brightness := make([]float64, buf.Width*buf.Height)
	balanced := make([]bool, buf.Width*buf.Height)
	for y := 0; y < buf.Height; y++ {
		for x := 0; x < buf.Width; x++ {
			c := buf.At(x, y)
			r, g, b := float64(c.R), float64(c.G), float64(c.B)
			i := y*buf.Width + x
			brightness[i] = (r + g + b) / 3
			balanced[i] = math.Abs(r-g) < constants.MarkerBalanceMax &&
				math.Abs(g-b) < constants.MarkerBalanceMax &&
				math.Abs(r-b) < constants.MarkerBalanceMax
		}
	}
	return brightness, balanced
}

func threshold(buf PixelBuffer, brightness []float64, balanced []bool, cut float64) mask {
	m := newMask(buf.Width, buf.Height)
	for i, v := range brightness {
		if v > cut && balanced[i] {
			m.bits[i] = true
		}
	}
	return m
}

// brightestFallback takes the brightest pixels of the whole buffer and
// returns the single brightest one. Ties resolve to the first in row-major order.
func brightestFallback(buf PixelBuffer, brightness []float64, candidates int) Detection {
	top := topBrightest(brightness, constants.MarkerTopBrightest)
	idx := top[0]
	return Detection{
		Position:   Position{X: idx % buf.Width, Y: idx / buf.Width},
		Found:      true,
		Confidence: ConfidenceLow,
		Candidates: candidates,
	}
}

// topBrightest returns up to k pixel indexes ordered from brightest down.
func topBrightest(brightness []float64, k int) []int {
	top := make([]int, 0, k+1)
	for i, v := range brightness {
		pos := len(top)
		for pos > 0 && brightness[top[pos-1]] < v {
			pos--
		}
		if pos >= k {
			continue
		}
		top = append(top, 0)
		copy(top[pos+1:], top[pos:])
		top[pos] = i
		if len(top) > k {
			top = top[:k]
		}
	}
	return top
}
