package game

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/conjure/components"
	"github.com/pthm-cable/conjure/debounce"
)

// Driver is a cone that flies under local forces toward the player and
// casts guns at it.
type Driver struct {
	actor  *Actor
	size   float64
	filter components.CollisionFilter
	fire   *debounce.Timer
	guns   int
	killed bool
}

// NewDriver creates a driver of the given size at pos.
func NewDriver(m *Map, pos r3.Vec, size float64) *Driver {
	cfg := m.cfg.Driver
	if !(size > 0) {
		size = cfg.BaseSize
	}
	d := &Driver{size: size, filter: components.FilterAgent}

	color := components.Color{R: m.rng.Float64(), G: m.rng.Float64(), B: m.rng.Float64()}
	d.actor = NewActor(m, ActorConfig{
		Label:    LabelDriver,
		Shape:    components.Shape{Kind: components.ShapeCone, Size: size, Width: size / 2, Height: size / 2},
		Position: &pos,
		Mass:     1,
		Filter:   d.filter,
		Color:    &color,
		AI:       d,
	})
	d.fire = debounce.New(size + cfg.FireDelayBase + m.rng.Float64()*cfg.FireDelayJitter)

	m.AddAI(d)
	return d
}

// Actor returns the driver's body actor.
func (d *Driver) Actor() *Actor { return d.actor }

// Size returns the driver's nominal size.
func (d *Driver) Size() float64 { return d.size }

// Guns returns the number of guns cast so far.
func (d *Driver) Guns() int { return d.guns }

// Update steers toward the target, hovers and fires.
func (d *Driver) Update(dt float64) {
	if d.killed {
		return
	}
	m := d.actor.m
	cfg := m.cfg.Driver
	body := d.actor.Body
	pos := body.Position()
	goal := m.TargetPosition()

	dir := body.PointToLocalFrame(goal)
	if n := r3.Norm(dir); n > 0 {
		dir = r3.Scale(1/n, dir)
	}
	speed := cfg.Thrust
	if r3.Norm2(r3.Sub(goal, pos)) < cfg.StopDistanceSq {
		speed = -cfg.Thrust
	}
	d.fire.Update(dt)

	body.ApplyLocalForce(r3.Vec{X: dir.X}, r3.Vec{X: 1})
	body.ApplyLocalForce(r3.Vec{X: dir.X, Y: dir.Y, Z: speed * dt}, r3.Vec{Z: dt})
	body.ApplyLocalForce(r3.Vec{X: -dir.X, Y: -dir.Y}, r3.Vec{Z: -dt})

	body.ApplyImpulse(r3.Vec{Y: m.cfg.Actor.Lift * dt}, r3.Vec{})
	if pos.Y < cfg.HoverBase+cfg.HoverPerSize*d.size {
		body.ApplyImpulse(r3.Vec{Y: cfg.HoverLift * dt}, r3.Vec{})
	}

	if d.AngleToTarget() < m.cfg.Derived.FireToleranceRad && d.fire.TryFireAndReset() {
		NewGun(m, GunOptions{
			SpawnOptions: SpawnOptions{
				Size:        d.size,
				Position:    pos,
				Orientation: body.Orientation(),
				Filter:      d.filter,
			},
			AttachedTo: d.actor.Mesh,
			Caster:     d.actor,
		})
		d.guns++
	}
}

// AngleToTarget is the angle between the driver's forward axis and the
// direction to the target, in radians.
func (d *Driver) AngleToTarget() float64 {
	body := d.actor.Body
	forward := components.Rotate(body.Orientation(), components.Forward)
	return angleBetween(forward, r3.Sub(d.actor.m.TargetPosition(), body.Position()))
}

// Kill marks the controller finished.
func (d *Driver) Kill() { d.killed = true }

// Killed reports whether the controller is finished.
func (d *Driver) Killed() bool { return d.killed }

// angleBetween returns the unsigned angle between a and b, or 0 if either
// is degenerate.
func angleBetween(a, b r3.Vec) float64 {
	na, nb := r3.Norm(a), r3.Norm(b)
	if na == 0 || nb == 0 {
		return 0
	}
	c := r3.Dot(a, b) / (na * nb)
	return math.Acos(math.Max(-1, math.Min(1, c)))
}
