package input

import (
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/conjure/camera"
	"github.com/pthm-cable/conjure/components"
	"github.com/pthm-cable/conjure/debounce"
	"github.com/pthm-cable/conjure/game"
	"github.com/pthm-cable/conjure/gesture"
)

// ControllerConfig holds per-hand timing.
type ControllerConfig struct {
	SampleInterval float64 // seconds between stroke samples
	ThrowInterval  float64 // minimum seconds between throws
	ThrowSpeed     float64 // per-axis speed that counts as a flick
}

// Controller tracks one hand. While the trigger is held it feeds the hand's
// rig-space position into a recognizer and posts a cast as soon as a shape
// completes. Releasing the trigger classifies the stroke one last time and
// starts a new one.
type Controller struct {
	hand *game.Hand
	rig  *camera.Rig

	recognizer *gesture.Recognizer
	sample     *debounce.Timer
	throw      *debounce.Timer
	throwSpeed float64

	clock        float64
	selecting    bool
	last         r3.Vec
	tracked      bool
	lastThrownAt r3.Vec
}

// NewController binds a controller to hand. rig must not be nil.
func NewController(hand *game.Hand, rig *camera.Rig, rec *gesture.Recognizer, cfg ControllerConfig) *Controller {
	if cfg.SampleInterval <= 0 {
		cfg.SampleInterval = 0.01
	}
	if cfg.ThrowInterval <= 0 {
		cfg.ThrowInterval = 0.2
	}
	if cfg.ThrowSpeed <= 0 {
		cfg.ThrowSpeed = 0.1
	}
	return &Controller{
		hand:       hand,
		rig:        rig,
		recognizer: rec,
		sample:     debounce.New(cfg.SampleInterval),
		throw:      debounce.New(cfg.ThrowInterval),
		throwSpeed: cfg.ThrowSpeed,
	}
}

// Hand returns the tracked hand.
func (c *Controller) Hand() *game.Hand { return c.hand }

// Recognizer returns the stroke recognizer.
func (c *Controller) Recognizer() *gesture.Recognizer { return c.recognizer }

// Selecting reports whether a stroke is in progress.
func (c *Controller) Selecting() bool { return c.selecting }

// Update moves the hand to s and posts any cast or throw it produces.
func (c *Controller) Update(dt float64, s HandState, out Poster) {
	c.clock += dt
	c.sample.Update(dt)
	c.throw.Update(dt)

	pos := c.rig.ToWorld(s.Local)
	var vel r3.Vec
	if c.tracked && dt > 0 {
		vel = r3.Scale(1/dt, r3.Sub(pos, c.last))
	}
	c.last, c.tracked = pos, true

	q := s.Orientation
	if q == (quat.Number{}) {
		q = components.Identity()
	}
	c.hand.Position = pos
	c.hand.Orientation = quat.Mul(c.rig.Orientation(), q)
	c.hand.Velocity = vel

	switch {
	case s.Selecting:
		c.selecting = true
		if c.sample.TryFireAndReset() {
			local := c.rig.ToLocal(pos)
			c.recognizer.AddPoint(local.X, local.Y, c.clock)
			c.classify(out)
		}
	case c.selecting:
		c.selecting = false
		c.classify(out)
		c.recognizer.Reset()
	default:
		c.tryThrow(out)
	}
}

// classify posts a cast and restarts the stroke when any template matched.
func (c *Controller) classify(out Poster) {
	matches := c.recognizer.Classify()
	if len(matches) == 0 {
		return
	}
	out.Post(game.Message{
		Kind:        game.MsgCast,
		Matches:     matches,
		Position:    c.hand.Position,
		Orientation: c.hand.Orientation,
		Anchor:      c.hand,
	})
	c.recognizer.Reset()
}

// tryThrow launches a ball when any velocity axis exceeds the flick speed
// and the hand has moved since the last throw.
func (c *Controller) tryThrow(out Poster) {
	v := c.hand.Velocity
	if v.X <= c.throwSpeed && v.Y <= c.throwSpeed && v.Z <= c.throwSpeed {
		return
	}
	if c.hand.Position == c.lastThrownAt {
		return
	}
	if !c.throw.TryFireAndReset() {
		return
	}
	c.lastThrownAt = c.hand.Position
	out.Post(game.Message{
		Kind:     game.MsgThrow,
		Position: c.hand.Position,
		Velocity: v,
	})
}
