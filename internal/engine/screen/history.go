package screen

import (
	"github.com/ConserveLee/orbit-idle/internal/constants"
)

// PositionHistory is a bounded ring of the most recent marker positions.
// Not safe for concurrent use; owned by the patrol loop.
type PositionHistory struct {
	buf   []Position
	start int
	size  int
}

// NewPositionHistory creates a history holding at most capacity positions.
func NewPositionHistory(capacity int) *PositionHistory {
	if capacity < 1 {
		capacity = 1
	}
	return &PositionHistory{buf: make([]Position, capacity)}
}

// Append adds p, evicting the oldest entry when full.
func (h *PositionHistory) Append(p Position) {
	if h.size < len(h.buf) {
		h.buf[(h.start+h.size)%len(h.buf)] = p
		h.size++
		return
	}
	h.buf[h.start] = p
	h.start = (h.start + 1) % len(h.buf)
}

// Len returns the number of stored positions.
func (h *PositionHistory) Len() int {
	return h.size
}

// Positions returns the stored positions, oldest first.
func (h *PositionHistory) Positions() []Position {
	out := make([]Position, h.size)
	for i := range out {
		out[i] = h.buf[(h.start+i)%len(h.buf)]
	}
	return out
}

// Reset drops all stored positions.
func (h *PositionHistory) Reset() {
	h.start, h.size = 0, 0
}

// Stabilize averages the last three positions. With fewer entries it returns
// the most recent one, and with none it returns last/hasLast unchanged.
func (h *PositionHistory) Stabilize(last Position, hasLast bool) (Position, bool) {
	if h.size == 0 {
		return last, hasLast
	}
	if h.size < constants.StabilizeWindow {
		return h.at(h.size - 1), true
	}
	sx, sy := 0, 0
	for i := h.size - constants.StabilizeWindow; i < h.size; i++ {
		p := h.at(i)
		sx += p.X
		sy += p.Y
	}
	n := constants.StabilizeWindow
	return Position{X: sx / n, Y: sy / n}, true
}

func (h *PositionHistory) at(i int) Position {
	return h.buf[(h.start+i)%len(h.buf)]
}

// MarkerTracker couples the detector with a position history and remembers
// the last detected position across polls.
type MarkerTracker struct {
	detector *MarkerDetector
	history  *PositionHistory

	last    Position
	hasLast bool
}

// NewMarkerTracker creates a tracker with the default history size.
func NewMarkerTracker(detector *MarkerDetector) *MarkerTracker {
	return &MarkerTracker{
		detector: detector,
		history:  NewPositionHistory(constants.HistorySize),
	}
}

// Observe detects the marker in buf, records it, and returns the stabilized
// position. ok is false only when nothing has ever been detected.
func (t *MarkerTracker) Observe(buf PixelBuffer) (pos Position, det Detection, ok bool) {
	det = t.detector.Detect(buf, t.last)
	if !det.Found {
		return t.last, det, t.hasLast
	}

	t.history.Append(det.Position)
	if det.Confidence == ConfidenceHigh {
		t.last = det.Position
		t.hasLast = true
	}

	pos, ok = t.history.Stabilize(t.last, t.hasLast)
	return pos, det, ok
}

// History exposes the underlying history for inspection.
func (t *MarkerTracker) History() *PositionHistory {
	return t.history
}

// Reset forgets all positions.
func (t *MarkerTracker) Reset() {
	t.history.Reset()
	t.last = Position{}
	t.hasLast = false
}
