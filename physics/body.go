package physics

import (
	"math"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/conjure/components"
)

// CollisionEvent is delivered to both bodies of a contact after the step
// that produced it. Body is the receiver.
type CollisionEvent struct {
	Body   *Body
	Other  *Body
	Normal r3.Vec // from Body towards Other
	Depth  float64
}

// BodyConfig describes a rigid body. A zero Mass makes the body static.
type BodyConfig struct {
	Mass           float64
	Shape          components.Shape
	Position       r3.Vec
	Orientation    quat.Number
	Velocity       r3.Vec
	LinearDamping  float64
	AngularDamping float64
	FixedRotation  bool
	Filter         components.CollisionFilter
}

// Body is a handle to a rigid body. While detached from a world the body
// keeps its state locally, so ghost actors can still be posed and queried.
type Body struct {
	world  *World
	entity ecs.Entity

	transform components.Transform
	motion    components.Motion
	mass      components.Mass
	collider  components.Collider
	filter    components.CollisionFilter

	// UserData is returned untouched in collision events.
	UserData any

	listeners []func(CollisionEvent)
}

// NewBody creates a detached body.
func NewBody(cfg BodyConfig) *Body {
	q := cfg.Orientation
	if q == (quat.Number{}) {
		q = components.Identity()
	}
	b := &Body{
		transform: components.Transform{Position: cfg.Position, Orientation: components.Normalize(q)},
		motion:    components.Motion{Velocity: cfg.Velocity},
		collider:  colliderFor(cfg.Shape),
		filter:    cfg.Filter.OrDefault(),
	}
	b.mass = massFor(cfg.Mass, b.collider)
	b.mass.LinearDamping = cfg.LinearDamping
	b.mass.AngularDamping = cfg.AngularDamping
	b.mass.FixedRotation = cfg.FixedRotation
	return b
}

// NewPlane creates a static infinite plane through point with the given normal.
func NewPlane(point, normal r3.Vec, filter components.CollisionFilter) *Body {
	return &Body{
		transform: components.Transform{Position: point, Orientation: components.Identity()},
		collider:  components.Collider{Kind: components.ColliderPlane, Normal: r3.Unit(normal)},
		filter:    filter.OrDefault(),
	}
}

func colliderFor(s components.Shape) components.Collider {
	if s.Kind == components.ShapeBox {
		hx, hy, hz := s.HalfExtents()
		he := r3.Vec{X: hx, Y: hy, Z: hz}
		return components.Collider{Kind: components.ColliderBox, HalfExtents: he, Radius: r3.Norm(he)}
	}
	// Cones collide as their bounding sphere.
	return components.Collider{Kind: components.ColliderSphere, Radius: s.Radius()}
}

func massFor(m float64, c components.Collider) components.Mass {
	if m <= 0 {
		return components.Mass{}
	}
	var inertia r3.Vec
	switch c.Kind {
	case components.ColliderBox:
		x, y, z := 2*c.HalfExtents.X, 2*c.HalfExtents.Y, 2*c.HalfExtents.Z
		inertia = r3.Vec{X: m / 12 * (y*y + z*z), Y: m / 12 * (x*x + z*z), Z: m / 12 * (x*x + y*y)}
	default:
		i := 2.0 / 5.0 * m * c.Radius * c.Radius
		inertia = r3.Vec{X: i, Y: i, Z: i}
	}
	return components.Mass{Value: m, InvMass: 1 / m, InvInertia: invert(inertia)}
}

func invert(v r3.Vec) r3.Vec {
	inv := func(f float64) float64 {
		if f == 0 {
			return 0
		}
		return 1 / f
	}
	return r3.Vec{X: inv(v.X), Y: inv(v.Y), Z: inv(v.Z)}
}

func (b *Body) tr() *components.Transform {
	if b.world != nil {
		return b.world.transforms.Get(b.entity)
	}
	return &b.transform
}

func (b *Body) mo() *components.Motion {
	if b.world != nil {
		return b.world.motions.Get(b.entity)
	}
	return &b.motion
}

func (b *Body) ma() *components.Mass {
	if b.world != nil {
		return b.world.masses.Get(b.entity)
	}
	return &b.mass
}

func (b *Body) fi() *components.CollisionFilter {
	if b.world != nil {
		return b.world.filters.Get(b.entity)
	}
	return &b.filter
}

// InWorld reports whether the body is part of a world.
func (b *Body) InWorld() bool { return b.world != nil }

// Position returns the world-space centre of mass.
func (b *Body) Position() r3.Vec { return b.tr().Position }

// SetPosition teleports the body.
func (b *Body) SetPosition(p r3.Vec) { b.tr().Position = p }

// Orientation returns the body rotation.
func (b *Body) Orientation() quat.Number { return b.tr().Orientation }

// SetOrientation sets the body rotation.
func (b *Body) SetOrientation(q quat.Number) { b.tr().Orientation = components.Normalize(q) }

// Velocity returns the linear velocity.
func (b *Body) Velocity() r3.Vec { return b.mo().Velocity }

// SetVelocity sets the linear velocity.
func (b *Body) SetVelocity(v r3.Vec) { b.mo().Velocity = v }

// AngularVelocity returns the angular velocity in world space.
func (b *Body) AngularVelocity() r3.Vec { return b.mo().AngularVelocity }

// SetAngularVelocity sets the angular velocity.
func (b *Body) SetAngularVelocity(w r3.Vec) { b.mo().AngularVelocity = w }

// Mass returns the body mass; zero for static bodies.
func (b *Body) Mass() float64 { return b.ma().Value }

// SetLinearDamping sets the fraction of velocity lost per second.
func (b *Body) SetLinearDamping(d float64) { b.ma().LinearDamping = d }

// LinearDamping returns the linear damping factor.
func (b *Body) LinearDamping() float64 { return b.ma().LinearDamping }

// Filter returns the collision filter.
func (b *Body) Filter() components.CollisionFilter { return *b.fi() }

// SetFilter replaces the collision filter.
func (b *Body) SetFilter(f components.CollisionFilter) { *b.fi() = f.OrDefault() }

// OnCollide registers a listener for contacts involving this body.
func (b *Body) OnCollide(fn func(CollisionEvent)) {
	b.listeners = append(b.listeners, fn)
}

// PointToLocalFrame converts a world point into body coordinates.
func (b *Body) PointToLocalFrame(p r3.Vec) r3.Vec {
	t := b.tr()
	return components.InverseRotate(t.Orientation, r3.Sub(p, t.Position))
}

// PointToWorldFrame converts a body-local point into world coordinates.
func (b *Body) PointToWorldFrame(p r3.Vec) r3.Vec {
	t := b.tr()
	return r3.Add(components.Rotate(t.Orientation, p), t.Position)
}

// VectorToWorldFrame rotates a body-local direction into world space.
func (b *Body) VectorToWorldFrame(v r3.Vec) r3.Vec {
	return components.Rotate(b.tr().Orientation, v)
}

// ApplyImpulse changes velocity immediately. rel is the application point
// relative to the centre of mass, in world orientation.
func (b *Body) ApplyImpulse(impulse, rel r3.Vec) {
	m := b.ma()
	if m.InvMass == 0 {
		return
	}
	mo := b.mo()
	mo.Velocity = r3.Add(mo.Velocity, r3.Scale(m.InvMass, impulse))
	mo.AngularVelocity = r3.Add(mo.AngularVelocity, applyInvInertia(m, b.tr().Orientation, r3.Cross(rel, impulse)))
}

// ApplyLocalImpulse applies an impulse given in body coordinates at a body-local point.
func (b *Body) ApplyLocalImpulse(impulse, point r3.Vec) {
	q := b.tr().Orientation
	b.ApplyImpulse(components.Rotate(q, impulse), components.Rotate(q, point))
}

// ApplyForce accumulates a force for the next step. rel is relative to the
// centre of mass, in world orientation.
func (b *Body) ApplyForce(force, rel r3.Vec) {
	if b.ma().InvMass == 0 {
		return
	}
	mo := b.mo()
	mo.Force = r3.Add(mo.Force, force)
	mo.Torque = r3.Add(mo.Torque, r3.Cross(rel, force))
}

// ApplyLocalForce accumulates a force given in body coordinates at a body-local point.
func (b *Body) ApplyLocalForce(force, point r3.Vec) {
	q := b.tr().Orientation
	b.ApplyForce(components.Rotate(q, force), components.Rotate(q, point))
}

// applyInvInertia maps a world-space torque or angular impulse through the
// inverse inertia tensor.
func applyInvInertia(m *components.Mass, q quat.Number, v r3.Vec) r3.Vec {
	if m.FixedRotation {
		return r3.Vec{}
	}
	l := components.InverseRotate(q, v)
	l = r3.Vec{X: l.X * m.InvInertia.X, Y: l.Y * m.InvInertia.Y, Z: l.Z * m.InvInertia.Z}
	return components.Rotate(q, l)
}

// integrateOrientation advances q by angular velocity w over dt.
func integrateOrientation(q quat.Number, w r3.Vec, dt float64) quat.Number {
	if w == (r3.Vec{}) {
		return q
	}
	spin := quat.Mul(quat.Number{Imag: w.X, Jmag: w.Y, Kmag: w.Z}, q)
	return components.Normalize(quat.Add(q, quat.Scale(0.5*dt, spin)))
}

func dampingFactor(d, dt float64) float64 {
	if d <= 0 {
		return 1
	}
	return math.Pow(1-d, dt)
}
