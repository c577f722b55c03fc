package panel

import (
	"errors"
	"testing"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ConserveLee/orbit-idle/internal/config"
	"github.com/ConserveLee/orbit-idle/internal/engine/events"
	"github.com/ConserveLee/orbit-idle/internal/engine/patrol"
	"github.com/ConserveLee/orbit-idle/internal/engine/screen"
)

func TestView_Observe(t *testing.T) {
	test.NewTempApp(t)
	v := NewView()

	v.Observe(events.Reading{Percent: 42.3})
	got, err := v.reading.Get()
	require.NoError(t, err)
	assert.Equal(t, "Bar: 42.3%", got)

	v.Observe(events.Reading{Err: errors.New("capture failed")})
	got, _ = v.reading.Get()
	assert.Contains(t, got, "capture failed")

	v.Observe(events.Action{Count: 3, Key: "1"})
	got, _ = v.actions.Get()
	assert.Equal(t, "Actions: 3 (key 1)", got)

	v.Observe(events.PositionUpdate{
		Position:   screen.Position{X: 12, Y: 34},
		Center:     screen.Position{X: 50, Y: 50},
		Radius:     40,
		Confidence: screen.ConfidenceHigh,
	})
	got, _ = v.position.Get()
	assert.Equal(t, "Position: (12, 34) center (50, 50) r=40 [high]", got)

	v.Observe(events.Boundary{Message: "outside circle: distance 80.0/50, heading to center"})
	got, _ = v.boundary.Get()
	assert.Equal(t, "Boundary: outside circle: distance 80.0/50, heading to center", got)
}

func TestView_ShowConfig(t *testing.T) {
	test.NewTempApp(t)
	v := NewView()
	store := config.NewStore(*config.NewDefaultConfig())
	store.Subscribe(v.ShowConfig)

	v.ShowConfig(store.Snapshot())
	got, _ := v.regions.Get()
	assert.Contains(t, got, "Minimap: not set")

	require.NoError(t, store.Update(func(c *config.Config) {
		c.Patrol.Minimap = screen.Rectangle{X: 1600, Y: 40, Width: 200, Height: 200}
	}))
	got, _ = v.regions.Get()
	assert.Contains(t, got, "Circle: not set")

	require.NoError(t, store.Update(func(c *config.Config) {
		c.Patrol.Circle = patrol.Circle{Center: screen.Position{X: 100, Y: 100}, Radius: 80}
	}))
	got, _ = v.regions.Get()
	assert.Equal(t, "Minimap 200x200 at (1600, 40), circle center (100, 100) r=80", got)
}
