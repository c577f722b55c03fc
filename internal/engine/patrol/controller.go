package patrol

import (
	"fmt"
	"math"

	"github.com/ConserveLee/orbit-idle/internal/constants"
	"github.com/ConserveLee/orbit-idle/internal/engine/screen"
)

const fullTurn = 2 * math.Pi

// Evaluate runs one poll of the patrol state machine. It is a pure function
// of its arguments.
func Evaluate(state OrbitState, in Input) (Decision, OrbitState) {
	if !in.HasPosition || !in.Circle.Valid() {
		return Decision{Backoff: true, Radius: in.Circle.Radius}, state
	}

	ratio := in.BoundaryRatio
	if ratio <= 0 {
		ratio = constants.BoundaryRatio
	}

	pos, center, radius := in.Position, in.Circle.Center, in.Circle.Radius
	d := pos.DistanceTo(center)
	boundary := float64(radius) * ratio

	dec := Decision{Distance: d, Radius: radius}
	dx := float64(center.X - pos.X)
	dy := float64(center.Y - pos.Y)

	switch {
	case d > float64(radius):
		dec.State = StateSeekingCenter
		dec.Directions = directions(dx, dy, constants.SeekDeadband)
		dec.Boundary = fmt.Sprintf("outside circle: distance %.1f/%d, heading to center", d, radius)

		state.Active = false
		if dx != 0 || dy != 0 {
			state.Angle = normalizeAngle(math.Atan2(dy, dx))
		}

	case d > boundary:
		dec.State = StateBoundaryCorrecting
		dec.Directions = directions(dx, dy, constants.SeekDeadband)
		dec.Boundary = fmt.Sprintf("near boundary: distance %.1f/%.1f, heading to center", d, boundary)

	default:
		dec.State = StateOrbiting
		dec, state = orbit(dec, state, pos, center, radius)
	}

	return dec, state
}

// orbit steers toward the point at the current angle on the inner orbit and
// advances the angle.
func orbit(dec Decision, state OrbitState, pos, center screen.Position, radius int) (Decision, OrbitState) {
	bx := float64(pos.X - center.X)
	by := float64(pos.Y - center.Y)
	if !state.Active {
		if bx != 0 || by != 0 {
			state.Angle = normalizeAngle(math.Atan2(by, bx))
		}
		state.Active = true
	}

	r := float64(radius) * state.RadiusOffset
	tx := float64(center.X) + r*math.Cos(state.Angle)
	ty := float64(center.Y) + r*math.Sin(state.Angle)
	dx := tx - float64(pos.X)
	dy := ty - float64(pos.Y)

	deadband := constants.OrbitDeadband
	if math.Hypot(dx, dy) < constants.OrbitNearTarget {
		deadband = constants.OrbitNearDeadband
	}

	dec.Directions = directions(dx, dy, deadband)
	dec.Target = screen.Position{X: int(math.Round(tx)), Y: int(math.Round(ty))}

	state.Angle = normalizeAngle(state.Angle + state.AngularSpeed)
	return dec, state
}

// directions converts a screen-space delta into movement inputs. Y grows
// downward. The result is never empty.
func directions(dx, dy, deadband float64) []Direction {
	var out []Direction
	if math.Abs(dx) > deadband {
		if dx > 0 {
			out = append(out, Right)
		} else {
			out = append(out, Left)
		}
	}
	if math.Abs(dy) > deadband {
		if dy > 0 {
			out = append(out, Down)
		} else {
			out = append(out, Up)
		}
	}
	if len(out) == 0 {
		return []Direction{Forward}
	}
	return out
}

func normalizeAngle(a float64) float64 {
	a = math.Mod(a, fullTurn)
	if a < 0 {
		a += fullTurn
	}
	return a
}
