package patrol

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ConserveLee/orbit-idle/internal/engine/screen"
)

var circle = Circle{Center: screen.Position{X: 100, Y: 100}, Radius: 50}

func at(x, y int) Input {
	return Input{Position: screen.Position{X: x, Y: y}, HasPosition: true, Circle: circle}
}

func TestEvaluate_SeekingCenter(t *testing.T) {
	start := NewOrbitState(0.1, 0.7)
	start.Active = true

	dec, next := Evaluate(start, at(180, 100))

	assert.Equal(t, StateSeekingCenter, dec.State)
	assert.InDelta(t, 80.0, dec.Distance, 1e-9)
	assert.Equal(t, 50, dec.Radius)
	assert.Equal(t, []Direction{Left}, dec.Directions)
	assert.NotEmpty(t, dec.Boundary)
	assert.False(t, dec.Backoff)

	assert.False(t, next.Active)
	assert.InDelta(t, math.Pi, next.Angle, 1e-9, "angle points from the position toward the center")
}

func TestEvaluate_BoundaryCorrectingLeavesOrbit(t *testing.T) {
	start := OrbitState{Angle: 1.2, AngularSpeed: 0.1, RadiusOffset: 0.7, Active: true}

	dec, next := Evaluate(start, at(100, 145))

	assert.Equal(t, StateBoundaryCorrecting, dec.State)
	assert.Equal(t, []Direction{Up}, dec.Directions)
	assert.NotEmpty(t, dec.Boundary)
	assert.Equal(t, start, next)
}

func TestEvaluate_OrbitAdvancesAngle(t *testing.T) {
	state := NewOrbitState(0.1, 0.7)

	dec, state := Evaluate(state, at(130, 100))
	require.Equal(t, StateOrbiting, dec.State)
	assert.InDelta(t, 30.0, dec.Distance, 1e-9)
	assert.Empty(t, dec.Boundary)
	assert.True(t, state.Active)
	// Seeded from the bearing (0) and then advanced once.
	assert.InDelta(t, 0.1, state.Angle, 1e-12)
	assert.Equal(t, screen.Position{X: 135, Y: 100}, dec.Target)
	assert.Equal(t, []Direction{Right}, dec.Directions)

	for i := 0; i < 5; i++ {
		prev := state.Angle
		dec, state = Evaluate(state, at(130, 100))
		require.Equal(t, StateOrbiting, dec.State)
		assert.NotEmpty(t, dec.Directions)
		assert.InDelta(t, 0.1, state.Angle-prev, 1e-12)
	}
}

func TestEvaluate_OrbitWrapsAngle(t *testing.T) {
	state := OrbitState{Angle: 2*math.Pi - 0.05, AngularSpeed: 0.1, RadiusOffset: 0.7, Active: true}
	_, next := Evaluate(state, at(100, 100))
	assert.InDelta(t, 0.05, next.Angle, 1e-9)
	assert.GreaterOrEqual(t, next.Angle, 0.0)
	assert.Less(t, next.Angle, 2*math.Pi)
}

func TestEvaluate_NearTargetUsesFineDeadband(t *testing.T) {
	state := OrbitState{Angle: 0, AngularSpeed: 0.1, RadiusOffset: 0.7, Active: true}

	// Two pixels short of the target: a 3px deadband would only say forward.
	dec, _ := Evaluate(state, at(133, 100))
	assert.Equal(t, []Direction{Right}, dec.Directions)

	dec, _ = Evaluate(state, at(135, 100))
	assert.Equal(t, []Direction{Forward}, dec.Directions)
}

func TestEvaluate_Backoff(t *testing.T) {
	state := NewOrbitState(0.1, 0.7)

	dec, next := Evaluate(state, Input{Circle: circle})
	assert.True(t, dec.Backoff)
	assert.Empty(t, dec.Directions)
	assert.Equal(t, state, next)

	in := at(10, 10)
	in.Circle.Radius = 0
	dec, _ = Evaluate(state, in)
	assert.True(t, dec.Backoff)
}

func TestEvaluate_CustomBoundaryRatio(t *testing.T) {
	in := at(140, 100)
	dec, _ := Evaluate(NewOrbitState(0.1, 0.7), in)
	assert.Equal(t, StateOrbiting, dec.State)

	in.BoundaryRatio = 0.5
	dec, _ = Evaluate(NewOrbitState(0.1, 0.7), in)
	assert.Equal(t, StateBoundaryCorrecting, dec.State)
}

func TestDirections(t *testing.T) {
	assert.Equal(t, []Direction{Forward}, directions(0, 0, 5))
	assert.Equal(t, []Direction{Forward}, directions(-5, 5, 5))
	assert.Equal(t, []Direction{Right, Up}, directions(6, -6, 5))
	assert.Equal(t, []Direction{Left, Down}, directions(-4, 4, 3))
}

func TestKeymap_Keys(t *testing.T) {
	km := DefaultKeymap()
	assert.Equal(t, []string{"d", "w"}, km.Keys([]Direction{Right, Up}))
	assert.Equal(t, []string{"w"}, km.Keys([]Direction{Forward}))
	assert.Equal(t, []string{"w"}, km.Keys([]Direction{Up, Forward}))
}

func TestInscribedCircle(t *testing.T) {
	c, ok := InscribedCircle(screen.Rectangle{X: 1600, Y: 40, Width: 220, Height: 180})
	require.True(t, ok)
	assert.Equal(t, Circle{Center: screen.Position{X: 110, Y: 90}, Radius: 90}, c)

	_, ok = InscribedCircle(screen.Rectangle{Width: 20, Height: 200})
	assert.False(t, ok, "radius 10 is too small")
}
