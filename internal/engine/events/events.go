// Package events carries engine notifications to observers such as the GUI
// panel and the CLI logger.
package events

import (
	"fmt"

	"github.com/ConserveLee/orbit-idle/internal/engine/screen"
)

// Kind tags an Event variant.
type Kind int

const (
	KindReading Kind = iota
	KindAction
	KindPosition
	KindBoundary
)

func (k Kind) String() string {
	switch k {
	case KindReading:
		return "reading"
	case KindAction:
		return "action"
	case KindPosition:
		return "position"
	case KindBoundary:
		return "boundary"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Event is one of Reading, Action, PositionUpdate or Boundary.
type Event interface {
	Kind() Kind
	event()
}

// Reading is a vitality bar estimate, or the error that prevented one.
type Reading struct {
	Percent float64
	Err     error
}

// Action reports a recovery key press attempt.
type Action struct {
	Count uint64 // actions fired so far, including this one
	Key   string
	Err   error
}

// PositionUpdate reports the stabilized marker position.
type PositionUpdate struct {
	Position   screen.Position
	Center     screen.Position
	Radius     int
	Confidence screen.Confidence
}

// Boundary reports the marker outside the orbit zone, or a patrol failure
// (Distance and Radius are zero then).
type Boundary struct {
	Message  string
	Distance float64
	Radius   int
}

func (Reading) Kind() Kind        { return KindReading }
func (Action) Kind() Kind         { return KindAction }
func (PositionUpdate) Kind() Kind { return KindPosition }
func (Boundary) Kind() Kind       { return KindBoundary }

func (Reading) event()        {}
func (Action) event()         {}
func (PositionUpdate) event() {}
func (Boundary) event()       {}
