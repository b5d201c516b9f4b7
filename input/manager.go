package input

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/conjure/camera"
	"github.com/pthm-cable/conjure/components"
	"github.com/pthm-cable/conjure/config"
	"github.com/pthm-cable/conjure/game"
	"github.com/pthm-cable/conjure/gesture"
)

// Manager routes one frame of device state to the player's controllers and
// the intent queue.
type Manager struct {
	rig         *camera.Rig
	left, right *Controller
}

// Templates converts configured direction sequences into gesture templates.
// An empty list yields the built-in square and circle.
func Templates(cfgs []config.TemplateConfig) ([]gesture.Template, error) {
	if len(cfgs) == 0 {
		return gesture.DefaultTemplates(), nil
	}
	out := make([]gesture.Template, 0, len(cfgs))
	for _, c := range cfgs {
		t, err := gesture.FromPairs(c.Name, c.MaxTries, c.Vectors)
		if err != nil {
			return nil, fmt.Errorf("gesture template %q: %w", c.Name, err)
		}
		out = append(out, t)
	}
	return out, nil
}

// NewManager binds controllers to the player's hands using the gesture
// section of cfg.
func NewManager(cfg *config.Config, p *game.Player, rig *camera.Rig) (*Manager, error) {
	templates, err := Templates(cfg.Gesture.Templates)
	if err != nil {
		return nil, err
	}
	cc := ControllerConfig{
		SampleInterval: cfg.Gesture.SampleInterval,
		ThrowInterval:  cfg.Gesture.ThrowInterval,
		ThrowSpeed:     cfg.Gesture.ThrowSpeed,
	}
	newRecognizer := func() *gesture.Recognizer {
		return gesture.New(gesture.Config{GridX: cfg.Gesture.GridX, GridY: cfg.Gesture.GridY, Templates: templates})
	}
	return &Manager{
		rig:   rig,
		left:  NewController(p.Left, rig, newRecognizer(), cc),
		right: NewController(p.Right, rig, newRecognizer(), cc),
	}, nil
}

// Left returns the left hand controller.
func (m *Manager) Left() *Controller { return m.left }

// Right returns the right hand controller.
func (m *Manager) Right() *Controller { return m.right }

// Update applies f: view rotation, movement, fire, debug casts and both
// hands, in that order.
func (m *Manager) Update(dt float64, f Frame, out Poster) {
	if f.LookYaw != 0 || f.LookPitch != 0 {
		m.rig.Turn(f.LookYaw, f.LookPitch)
	}

	if f.Forward {
		out.Post(game.Message{Kind: game.MsgForward})
	}
	if f.Backward {
		out.Post(game.Message{Kind: game.MsgBackward})
	}
	switch {
	case f.Axis < 0:
		out.Post(game.Message{Kind: game.MsgForward, Scale: math.Abs(f.Axis)})
	case f.Axis > 0:
		out.Post(game.Message{Kind: game.MsgBackward, Scale: f.Axis})
	}
	if f.Fire {
		out.Post(game.Message{Kind: game.MsgFire})
	}

	if f.CastSmallCircle {
		out.Post(debugCast(r3.Vec{X: 1, Y: 1, Z: 1}, gesture.Match{Name: "circle", Size: 0.5}))
	}
	if f.CastLargeCircle {
		out.Post(debugCast(r3.Vec{X: 1, Y: 4, Z: 1}, gesture.Match{Name: "circle", Size: 2}))
	}
	if f.CastSquare {
		out.Post(debugCast(r3.Vec{X: 1, Y: 1, Z: 1}, gesture.Match{Name: "square", Size: 2, Width: 2, Height: 2}))
	}

	m.left.Update(dt, f.Left, out)
	m.right.Update(dt, f.Right, out)
}

// debugCast is a cast from a fixed point with no hand to attach to.
func debugCast(pos r3.Vec, match gesture.Match) game.Message {
	return game.Message{
		Kind:        game.MsgCast,
		Matches:     []gesture.Match{match},
		Position:    pos,
		Orientation: components.Identity(),
	}
}
