package screen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	white = RGB{R: 255, G: 255, B: 255}
	mapBg = RGB{R: 20, G: 35, B: 25}
)

func darkMap(w, h int) PixelBuffer {
	buf := NewPixelBuffer(w, h)
	buf.Fill(0, 0, w, h, mapBg)
	return buf
}

// paintDisk marks every pixel with dx²+dy² <= r2 and returns how many were painted.
func paintDisk(buf PixelBuffer, cx, cy, r2 int, c RGB) int {
	n := 0
	for y := cy - 3; y <= cy+3; y++ {
		for x := cx - 3; x <= cx+3; x++ {
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy <= r2 {
				buf.Set(x, y, c)
				n++
			}
		}
	}
	return n
}

func TestMarkerDetector_SinglePixel(t *testing.T) {
	buf := NewPixelBuffer(80, 80)
	buf.Set(30, 40, white)

	det := NewMarkerDetector().Detect(buf, Position{})
	assert.Equal(t, Position{X: 30, Y: 40}, det.Position)
	assert.True(t, det.Found)
	assert.Equal(t, ConfidenceLow, det.Confidence)
}

func TestMarkerDetector_DiskWithinBounds(t *testing.T) {
	buf := darkMap(100, 100)
	n := paintDisk(buf, 60, 30, 5, white)
	require.Equal(t, 21, n)

	det := NewMarkerDetector().Detect(buf, Position{})
	require.Equal(t, ConfidenceHigh, det.Confidence)
	assert.Equal(t, 1, det.Blobs)
	assert.GreaterOrEqual(t, det.Position.X, 58)
	assert.LessOrEqual(t, det.Position.X, 62)
	assert.GreaterOrEqual(t, det.Position.Y, 28)
	assert.LessOrEqual(t, det.Position.Y, 32)
}

func TestMarkerDetector_RejectsOversizedBlob(t *testing.T) {
	buf := darkMap(100, 100)
	// 15x10 glare patch, above the component size cap.
	buf.Fill(5, 5, 20, 15, white)
	paintDisk(buf, 70, 70, 5, white)

	det := NewMarkerDetector().Detect(buf, Position{})
	require.Equal(t, ConfidenceHigh, det.Confidence)
	assert.Equal(t, 1, det.Blobs)
	assert.Equal(t, 171, det.Candidates)
	assert.InDelta(t, 70, det.Position.X, 2)
	assert.InDelta(t, 70, det.Position.Y, 2)
}

func TestMarkerDetector_ArrowTip(t *testing.T) {
	buf := darkMap(50, 50)
	// Heavy 3x3 tail with a thin point to the right; centroid lands at (12,20).
	buf.Fill(10, 19, 13, 22, white)
	buf.Fill(13, 20, 19, 21, white)

	det := NewMarkerDetector().Detect(buf, Position{})
	require.Equal(t, ConfidenceHigh, det.Confidence)
	assert.Equal(t, Position{X: 18, Y: 20}, det.Position)
}

func TestMarkerDetector_RelaxedThreshold(t *testing.T) {
	buf := darkMap(40, 40)
	gray := RGB{R: 200, G: 200, B: 205}
	buf.Fill(10, 10, 13, 13, gray)

	det := NewMarkerDetector().Detect(buf, Position{})
	require.Equal(t, ConfidenceHigh, det.Confidence)
	assert.Equal(t, 9, det.Candidates)
}

func TestMarkerDetector_UnbalancedIgnored(t *testing.T) {
	buf := darkMap(40, 40)
	// Bright yellow fails the balance test; no candidates means brightest pixel.
	buf.Fill(2, 2, 6, 6, RGB{R: 255, G: 255, B: 60})
	buf.Set(30, 31, RGB{R: 150, G: 150, B: 150})

	det := NewMarkerDetector().Detect(buf, Position{})
	assert.Equal(t, ConfidenceLow, det.Confidence)
	assert.Equal(t, 0, det.Candidates)
	assert.Equal(t, Position{X: 2, Y: 2}, det.Position)
}

func TestMarkerDetector_EmptyBufferKeepsLast(t *testing.T) {
	last := Position{X: 7, Y: 9}
	det := NewMarkerDetector().Detect(PixelBuffer{}, last)
	assert.False(t, det.Found)
	assert.Equal(t, ConfidenceNone, det.Confidence)
	assert.Equal(t, last, det.Position)
}

func TestMarkerDetector_Idempotent(t *testing.T) {
	buf := darkMap(64, 64)
	paintDisk(buf, 20, 40, 5, white)
	buf.Fill(50, 5, 53, 7, RGB{R: 230, G: 230, B: 230})

	d := NewMarkerDetector()
	assert.Equal(t, d.Detect(buf, Position{}), d.Detect(buf, Position{}))
}

func TestFindBlobs_EightConnectivity(t *testing.T) {
	m := newMask(5, 5)
	m.set(0, 0)
	m.set(1, 1) // diagonal neighbour joins the first blob
	m.set(4, 4)

	blobs := findBlobs(m)
	require.Len(t, blobs, 2)
	assert.Equal(t, 2, blobs[0].size())
	assert.Equal(t, 1, blobs[1].size())
}

func TestTopBrightest(t *testing.T) {
	b := []float64{10, 50, 50, 5, 90, 20}
	assert.Equal(t, []int{4, 1, 2, 5, 0}, topBrightest(b, 5))
	assert.Equal(t, []int{4, 1}, topBrightest(b, 2))
}
