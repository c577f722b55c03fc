package screen

import (
	"cmp"
	"slices"

	"github.com/ConserveLee/orbit-idle/internal/constants"
)

// blob is a maximal 8-connected set of marked pixels.
type blob struct {
	pixels []Position // in scan order of discovery
}

// mask is a per-pixel boolean grid with the buffer's dimensions.
type mask struct {
	width, height int
	bits          []bool
}

func newMask(width, height int) mask {
	return mask{width: width, height: height, bits: make([]bool, width*height)}
}

func (m mask) get(x, y int) bool {
	if x < 0 || y < 0 || x >= m.width || y >= m.height {
		return false
	}
	return m.bits[y*m.width+x]
}

func (m mask) set(x, y int) {
	m.bits[y*m.width+x] = true
}

func (m mask) count() int {
	n := 0
	for _, b := range m.bits {
		if b {
			n++
		}
	}
	return n
}

// findBlobs segments marked pixels into 8-connected components.
// Components are returned in row-major order of their first pixel.
func findBlobs(m mask) []blob {
	visited := make([]bool, len(m.bits))
	var blobs []blob
	var stack []Position

	for y := 0; y < m.height; y++ {
		for x := 0; x < m.width; x++ {
			if !m.get(x, y) || visited[y*m.width+x] {
				continue
			}

			var b blob
			stack = append(stack[:0], Position{X: x, Y: y})
			for len(stack) > 0 {
				p := stack[len(stack)-1]
				stack = stack[:len(stack)-1]

				idx := p.Y*m.width + p.X
				if visited[idx] {
					continue
				}
				visited[idx] = true
				b.pixels = append(b.pixels, p)

				for dy := -1; dy <= 1; dy++ {
					for dx := -1; dx <= 1; dx++ {
						if dx == 0 && dy == 0 {
							continue
						}
						nx, ny := p.X+dx, p.Y+dy
						if m.get(nx, ny) && !visited[ny*m.width+nx] {
							stack = append(stack, Position{X: nx, Y: ny})
						}
					}
				}
			}
			blobs = append(blobs, b)
		}
	}
	return blobs
}

func (b blob) size() int {
	return len(b.pixels)
}

// centroid is the integer mean of the blob's pixel coordinates.
func (b blob) centroid() Position {
	if len(b.pixels) == 0 {
		return Position{}
	}
	sx, sy := 0, 0
	for _, p := range b.pixels {
		sx += p.X
		sy += p.Y
	}
	return Position{X: sx / len(b.pixels), Y: sy / len(b.pixels)}
}

// meanBrightness averages the brightness grid over the blob.
func (b blob) meanBrightness(brightness []float64, width int) float64 {
	if len(b.pixels) == 0 {
		return 0
	}
	sum := 0.0
	for _, p := range b.pixels {
		sum += brightness[p.Y*width+p.X]
	}
	return sum / float64(len(b.pixels))
}

// shapeScore rewards compact blobs: the share of blob pixels inside a small
// box around the centroid, scaled to 0..100 so it weighs against brightness.
func (b blob) shapeScore(c Position, width, height int) float64 {
	r := constants.BlobShapeRadius
	x0, x1 := max(0, c.X-r), min(width, c.X+r)
	y0, y1 := max(0, c.Y-r), min(height, c.Y+r)
	area := max(0, x1-x0) * max(0, y1-y0)

	inside := 0
	for _, p := range b.pixels {
		if p.X >= x0 && p.X < x1 && p.Y >= y0 && p.Y < y1 {
			inside++
		}
	}
	return float64(inside) / float64(area+1) * 100
}

// tip returns the blob pixel farthest from c. The first pixel in row-major
// order wins ties.
func (b blob) tip(c Position) Position {
	best := c
	bestDist := -1
	for _, p := range b.sortedPixels() {
		dx, dy := p.X-c.X, p.Y-c.Y
		if d := dx*dx + dy*dy; d > bestDist {
			bestDist = d
			best = p
		}
	}
	return best
}

// sortedPixels returns the pixels in row-major order. Flood fill discovers
// them in stack order, which would make tie-breaking depend on traversal.
func (b blob) sortedPixels() []Position {
	out := slices.Clone(b.pixels)
	slices.SortFunc(out, func(a, b Position) int {
		if c := cmp.Compare(a.Y, b.Y); c != 0 {
			return c
		}
		return cmp.Compare(a.X, b.X)
	})
	return out
}
