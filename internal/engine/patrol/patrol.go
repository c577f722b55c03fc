// Package patrol decides which movement keys keep the character inside a
// circular area on the minimap.
package patrol

import (
	"github.com/ConserveLee/orbit-idle/internal/constants"
	"github.com/ConserveLee/orbit-idle/internal/engine/screen"
)

// State is the controller state for one poll.
type State int

const (
	StateSeekingCenter      State = iota // outside the circle
	StateBoundaryCorrecting              // inside, but past the boundary ratio
	StateOrbiting                        // comfortably inside, circling
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case StateSeekingCenter:
		return "seeking_center"
	case StateBoundaryCorrecting:
		return "boundary_correcting"
	case StateOrbiting:
		return "orbiting"
	default:
		return "unknown"
	}
}

// Direction is an abstract movement input, mapped to a key by Keymap.
type Direction int

const (
	Forward Direction = iota
	Up
	Down
	Left
	Right
)

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return "forward"
	}
}

// Circle is the patrol boundary in minimap pixels.
type Circle struct {
	Center screen.Position `mapstructure:"center" yaml:"center"`
	Radius int             `mapstructure:"radius" yaml:"radius"`
}

// Valid reports whether the circle has been configured.
func (c Circle) Valid() bool {
	return c.Radius > 0
}

// InscribedCircle returns the largest circle inside a minimap region, in
// minimap-local pixels. ok is false when the region is too small to patrol.
func InscribedCircle(minimap screen.Rectangle) (c Circle, ok bool) {
	r := min(minimap.Width, minimap.Height) / 2
	if r <= constants.MinCircleRadius {
		return Circle{}, false
	}
	return Circle{Center: screen.Position{X: minimap.Width / 2, Y: minimap.Height / 2}, Radius: r}, true
}

// OrbitState carries the orbit angle between polls. It is a value: Evaluate
// never mutates its argument and returns the successor.
type OrbitState struct {
	Angle        float64 // radians in [0, 2π)
	AngularSpeed float64 // radians advanced per orbiting poll
	RadiusOffset float64 // orbit radius as a fraction of the circle radius
	Active       bool
}

// NewOrbitState returns an inactive orbit with the given tuning.
func NewOrbitState(angularSpeed, radiusOffset float64) OrbitState {
	return OrbitState{AngularSpeed: angularSpeed, RadiusOffset: radiusOffset}
}

// Input is everything the controller looks at for one poll.
type Input struct {
	Position      screen.Position
	HasPosition   bool
	Circle        Circle
	BoundaryRatio float64 // 0 selects the default
}

// Decision is the controller output for one poll.
type Decision struct {
	State      State
	Directions []Direction // never empty unless Backoff is set
	Distance   float64     // from the position to the circle center
	Radius     int
	Target     screen.Position // orbit target; zero outside ORBITING
	Backoff    bool            // nothing to act on, wait and retry
	Boundary   string          // set whenever the state is not ORBITING
}

// Keymap binds directions to key names.
type Keymap struct {
	Forward string `mapstructure:"forward" yaml:"forward"`
	Up      string `mapstructure:"up" yaml:"up"`
	Down    string `mapstructure:"down" yaml:"down"`
	Left    string `mapstructure:"left" yaml:"left"`
	Right   string `mapstructure:"right" yaml:"right"`
}

// DefaultKeymap is the WASD layout.
func DefaultKeymap() Keymap {
	return Keymap{Forward: "w", Up: "w", Down: "s", Left: "a", Right: "d"}
}

// Key returns the key bound to d.
func (k Keymap) Key(d Direction) string {
	switch d {
	case Up:
		return k.Up
	case Down:
		return k.Down
	case Left:
		return k.Left
	case Right:
		return k.Right
	default:
		return k.Forward
	}
}

// Keys maps directions to keys, skipping repeats.
func (k Keymap) Keys(dirs []Direction) []string {
	keys := make([]string, 0, len(dirs))
	for _, d := range dirs {
		key := k.Key(d)
		dup := false
		for _, existing := range keys {
			if existing == key {
				dup = true
				break
			}
		}
		if !dup {
			keys = append(keys, key)
		}
	}
	return keys
}
