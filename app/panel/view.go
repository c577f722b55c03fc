// Package panel holds the fyne panels that observe and control the bot.
package panel

import (
	"fmt"

	"fyne.io/fyne/v2/data/binding"

	"github.com/ConserveLee/orbit-idle/internal/config"
	"github.com/ConserveLee/orbit-idle/internal/engine/events"
)

// View is the bound state shared by the panels. It is updated from the
// event bus dispatcher.
type View struct {
	Log binding.StringList

	reading  binding.String
	actions  binding.String
	position binding.String
	boundary binding.String
	regions  binding.String
}

// NewView creates a view with placeholder texts.
func NewView() *View {
	v := &View{
		Log:      binding.NewStringList(),
		reading:  binding.NewString(),
		actions:  binding.NewString(),
		position: binding.NewString(),
		boundary: binding.NewString(),
		regions:  binding.NewString(),
	}
	v.reading.Set("Bar: -")
	v.actions.Set("Actions: 0")
	v.position.Set("Position: -")
	v.boundary.Set("Boundary: -")
	v.regions.Set("Circle: not set")
	return v
}

// Observe renders one event. Register it with events.Bus.Subscribe.
func (v *View) Observe(e events.Event) {
	switch ev := e.(type) {
	case events.Reading:
		if ev.Err != nil {
			v.reading.Set(fmt.Sprintf("Bar: error (%v)", ev.Err))
			return
		}
		v.reading.Set(fmt.Sprintf("Bar: %.1f%%", ev.Percent))
	case events.Action:
		if ev.Err != nil {
			v.actions.Set(fmt.Sprintf("Actions: %d (last press failed: %v)", ev.Count, ev.Err))
			return
		}
		v.actions.Set(fmt.Sprintf("Actions: %d (key %s)", ev.Count, ev.Key))
	case events.PositionUpdate:
		v.position.Set(fmt.Sprintf("Position: (%d, %d) center (%d, %d) r=%d [%s]",
			ev.Position.X, ev.Position.Y, ev.Center.X, ev.Center.Y, ev.Radius, ev.Confidence))
	case events.Boundary:
		v.boundary.Set("Boundary: " + ev.Message)
	}
}

// ShowConfig renders the patrol regions. Register it with
// config.Store.Subscribe so hot reloads and panel edits show up.
func (v *View) ShowConfig(cfg config.Config) {
	p := cfg.Patrol
	switch {
	case p.Minimap.Empty():
		v.regions.Set("Minimap: not set (use Tools or edit config.yaml)")
	case !p.Circle.Valid():
		v.regions.Set("Circle: not set (use Tools or edit config.yaml)")
	default:
		v.regions.Set(fmt.Sprintf("Minimap %dx%d at (%d, %d), circle center (%d, %d) r=%d",
			p.Minimap.Width, p.Minimap.Height, p.Minimap.X, p.Minimap.Y,
			p.Circle.Center.X, p.Circle.Center.Y, p.Circle.Radius))
	}
}
