package game

import (
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/conjure/audio"
	"github.com/pthm-cable/conjure/camera"
	"github.com/pthm-cable/conjure/components"
	"github.com/pthm-cable/conjure/debounce"
	"github.com/pthm-cable/conjure/effects"
	"github.com/pthm-cable/conjure/steering"
)

// Hand is a tracked controller pose in world space. Guns cast with a hand
// stay attached to it.
type Hand struct {
	Position    r3.Vec
	Orientation quat.Number
	Velocity    r3.Vec
}

// WorldPosition implements render.Anchor.
func (h *Hand) WorldPosition() r3.Vec { return h.Position }

// WorldOrientation implements render.Anchor.
func (h *Hand) WorldOrientation() quat.Number {
	if h.Orientation == (quat.Number{}) {
		return components.Identity()
	}
	return h.Orientation
}

// Player is the user's presence in the map: an immortal body, a steering
// mirror that agents can target, two hands and the camera rig.
type Player struct {
	actor   *Actor
	vehicle *steering.Vehicle
	rig     *camera.Rig

	Left, Right *Hand

	leftFX, rightFX ParticleEffect
	leftFire        *debounce.Timer
	rightFire       *debounce.Timer
	music           SoundHandle

	guns []*Gun
}

// NewPlayer creates the player body at (0,1,0) and becomes the map's target.
func NewPlayer(m *Map, rig *camera.Rig) *Player {
	cfg := m.cfg.Player
	pos := r3.Vec{Y: 1}

	p := &Player{
		rig:       rig,
		Left:      &Hand{Position: r3.Add(pos, r3.Vec{X: -0.3})},
		Right:     &Hand{Position: r3.Add(pos, r3.Vec{X: 0.3})},
		leftFire:  debounce.New(cfg.FireInterval),
		rightFire: debounce.New(cfg.FireInterval),
	}
	p.actor = NewActor(m, ActorConfig{
		Label:         LabelPlayer,
		Shape:         components.Shape{Kind: components.ShapeSphere, Size: cfg.Size},
		Position:      &pos,
		Mass:          cfg.Mass,
		Filter:        components.FilterPlayer,
		NoDie:         true,
		FixedRotation: true,
		Invisible:     true,
	})
	p.actor.Body.SetLinearDamping(cfg.LinearDamping)

	p.vehicle = steering.NewVehicle()
	p.vehicle.Position = pos
	m.steering.Add(p.vehicle)

	if m.effects != nil {
		p.leftFX = m.effects.Spawn("left_hand", effects.Params{UseLoaded: true, Position: p.Left.Position})
		p.rightFX = m.effects.Spawn("right_hand", effects.Params{UseLoaded: true, Position: p.Right.Position})
	}
	if cfg.Music && m.audio != nil {
		p.music = m.audio.Play("music01", audio.SoundOptions{Loop: true, Anchor: p.actor.Mesh})
	}

	m.player = p
	return p
}

// Actor returns the player's body actor.
func (p *Player) Actor() *Actor { return p.actor }

// Vehicle returns the steering mirror.
func (p *Player) Vehicle() *steering.Vehicle { return p.vehicle }

// Rig returns the camera rig, which may be nil.
func (p *Player) Rig() *camera.Rig { return p.rig }

// Position returns the body position.
func (p *Player) Position() r3.Vec { return p.actor.Body.Position() }

// Guns returns the player's guns that are still alive.
func (p *Player) Guns() []*Gun { return p.guns }

// Update mirrors the body onto the vehicle, moves the hand effects and
// trails the camera. The body itself is updated by the map.
func (p *Player) Update(dt float64) {
	body := p.actor.Body
	p.vehicle.Velocity = body.Velocity()
	p.vehicle.Position = body.Position()
	p.vehicle.Rotation = body.Orientation()

	if p.leftFX != nil {
		p.leftFX.SetPosition(p.Left.Position)
		p.leftFX.Update(dt)
	}
	if p.rightFX != nil {
		p.rightFX.SetPosition(p.Right.Position)
		p.rightFX.Update(dt)
	}

	p.leftFire.Update(dt)
	p.rightFire.Update(dt)

	if p.rig != nil {
		p.rig.Track(body.Position())
	}

	live := p.guns[:0]
	for _, g := range p.guns {
		if g.State() == StateAlive {
			live = append(live, g)
		}
	}
	clear(p.guns[len(live):])
	p.guns = live
}

// Move pushes the body along the left hand's aim. Positive scale moves
// forward, negative backward.
func (p *Player) Move(scale float64) {
	origin := p.Position()
	if p.rig != nil {
		origin = p.rig.Position
	}
	aim := r3.Sub(p.Left.Position, origin)
	aim.Y--
	if r3.Norm(aim) == 0 {
		return
	}
	impulse := r3.Scale(scale*p.actor.m.cfg.Player.MoveImpulse, r3.Unit(aim))
	p.actor.Body.ApplyImpulse(impulse, r3.Vec{})
}

// Fire retriggers every live gun the player has cast, at most once per
// fire interval. It reports whether the trigger was accepted.
func (p *Player) Fire() bool {
	if !p.rightFire.TryFireAndReset() {
		return false
	}
	for _, g := range p.guns {
		g.Retrigger()
	}
	return true
}

func (p *Player) addGun(g *Gun) {
	p.guns = append(p.guns, g)
}

// Close stops the music and releases the hand effects.
func (p *Player) Close() {
	if p.music != nil {
		p.music.Kill()
		p.music = nil
	}
	for _, fx := range []ParticleEffect{p.leftFX, p.rightFX} {
		if fx != nil {
			fx.Delete()
		}
	}
	p.leftFX, p.rightFX = nil, nil
}
