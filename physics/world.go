// Package physics is a small rigid body world stored in an ark ECS. Bodies
// are entities carrying transform, motion, mass, collider and filter
// components; Body handles stay valid while detached.
package physics

import (
	"math"

	"github.com/mlange-42/ark/ecs"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/conjure/components"
)

// bodyRef links an entity back to its handle.
type bodyRef struct {
	body *Body
}

// Config holds world parameters.
type Config struct {
	Gravity     r3.Vec
	Restitution float64
}

// World steps every attached body and resolves contacts between them.
type World struct {
	ecs *ecs.World

	mapper *ecs.Map6[
		components.Transform,
		components.Motion,
		components.Mass,
		components.Collider,
		components.CollisionFilter,
		bodyRef,
	]
	filter *ecs.Filter6[
		components.Transform,
		components.Motion,
		components.Mass,
		components.Collider,
		components.CollisionFilter,
		bodyRef,
	]

	transforms *ecs.Map[components.Transform]
	motions    *ecs.Map[components.Motion]
	masses     *ecs.Map[components.Mass]
	filters    *ecs.Map[components.CollisionFilter]

	gravity     r3.Vec
	restitution float64
	count       int

	// Reused between steps.
	scratch []entry
	events  []CollisionEvent
}

// entry holds component pointers for one body during a step. Pointers stay
// valid because no entity is created or removed while a step runs.
type entry struct {
	body *Body
	tr   *components.Transform
	mo   *components.Motion
	ma   *components.Mass
	co   *components.Collider
	fi   *components.CollisionFilter
}

// NewWorld creates an empty world.
func NewWorld(cfg Config) *World {
	w := ecs.NewWorld()
	return &World{
		ecs: w,
		mapper: ecs.NewMap6[
			components.Transform,
			components.Motion,
			components.Mass,
			components.Collider,
			components.CollisionFilter,
			bodyRef,
		](w),
		filter: ecs.NewFilter6[
			components.Transform,
			components.Motion,
			components.Mass,
			components.Collider,
			components.CollisionFilter,
			bodyRef,
		](w),
		transforms:  ecs.NewMap[components.Transform](w),
		motions:     ecs.NewMap[components.Motion](w),
		masses:      ecs.NewMap[components.Mass](w),
		filters:     ecs.NewMap[components.CollisionFilter](w),
		gravity:     cfg.Gravity,
		restitution: cfg.Restitution,
	}
}

// Gravity returns the world gravity.
func (w *World) Gravity() r3.Vec { return w.gravity }

// NumBodies returns the number of attached bodies.
func (w *World) NumBodies() int { return w.count }

// Contains reports whether b is attached to w.
func (w *World) Contains(b *Body) bool { return b != nil && b.world == w }

// AddBody attaches b. Adding a body that is already attached is a no-op.
func (w *World) AddBody(b *Body) {
	if b == nil || b.world == w {
		return
	}
	if b.world != nil {
		b.world.RemoveBody(b)
	}
	b.entity = w.mapper.NewEntity(&b.transform, &b.motion, &b.mass, &b.collider, &b.filter, &bodyRef{body: b})
	b.world = w
	w.count++
}

// RemoveBody detaches b, keeping its last state on the handle. Removing a
// body that is not attached is a no-op.
func (w *World) RemoveBody(b *Body) {
	if b == nil || b.world != w {
		return
	}
	b.transform = *w.transforms.Get(b.entity)
	b.motion = *w.motions.Get(b.entity)
	b.mass = *w.masses.Get(b.entity)
	b.filter = *w.filters.Get(b.entity)
	w.ecs.RemoveEntity(b.entity)
	b.world = nil
	b.entity = ecs.Entity{}
	w.count--
}

// Step advances the simulation by dt seconds and then delivers collision
// events. Listeners may add or remove bodies.
func (w *World) Step(dt float64) {
	if dt <= 0 {
		return
	}
	w.integrate(dt)
	w.collide()

	events := w.events
	w.events = w.events[:0]
	w.scratch = w.scratch[:0]
	for _, e := range events {
		for _, fn := range e.Body.listeners {
			fn(e)
		}
	}
}

func (w *World) integrate(dt float64) {
	w.scratch = w.scratch[:0]
	query := w.filter.Query()
	for query.Next() {
		tr, mo, ma, co, fi, ref := query.Get()
		w.scratch = append(w.scratch, entry{body: ref.body, tr: tr, mo: mo, ma: ma, co: co, fi: fi})

		if ma.InvMass == 0 {
			continue
		}

		acc := r3.Add(w.gravity, r3.Scale(ma.InvMass, mo.Force))
		mo.Velocity = r3.Add(mo.Velocity, r3.Scale(dt, acc))
		if !ma.FixedRotation {
			alpha := applyInvInertia(ma, tr.Orientation, mo.Torque)
			mo.AngularVelocity = r3.Add(mo.AngularVelocity, r3.Scale(dt, alpha))
		} else {
			mo.AngularVelocity = r3.Vec{}
		}

		mo.Velocity = r3.Scale(dampingFactor(ma.LinearDamping, dt), mo.Velocity)
		mo.AngularVelocity = r3.Scale(dampingFactor(ma.AngularDamping, dt), mo.AngularVelocity)

		tr.Position = r3.Add(tr.Position, r3.Scale(dt, mo.Velocity))
		tr.Orientation = integrateOrientation(tr.Orientation, mo.AngularVelocity, dt)

		mo.Force = r3.Vec{}
		mo.Torque = r3.Vec{}
	}
}

func (w *World) collide() {
	for i := 0; i < len(w.scratch); i++ {
		a := &w.scratch[i]
		for j := i + 1; j < len(w.scratch); j++ {
			b := &w.scratch[j]
			if a.ma.InvMass == 0 && b.ma.InvMass == 0 {
				continue
			}
			if !a.fi.Accepts(*b.fi) {
				continue
			}
			n, depth, ok := contact(a, b)
			if !ok {
				continue
			}
			w.resolve(a, b, n, depth)
			w.events = append(w.events,
				CollisionEvent{Body: a.body, Other: b.body, Normal: n, Depth: depth},
				CollisionEvent{Body: b.body, Other: a.body, Normal: r3.Scale(-1, n), Depth: depth},
			)
		}
	}
}

// resolve applies a restitution impulse along n (pointing from a to b) and
// pushes the bodies apart.
func (w *World) resolve(a, b *entry, n r3.Vec, depth float64) {
	invSum := a.ma.InvMass + b.ma.InvMass
	if invSum == 0 {
		return
	}
	rel := r3.Dot(r3.Sub(b.mo.Velocity, a.mo.Velocity), n)
	if rel < 0 {
		j := -(1 + w.restitution) * rel / invSum
		a.mo.Velocity = r3.Sub(a.mo.Velocity, r3.Scale(j*a.ma.InvMass, n))
		b.mo.Velocity = r3.Add(b.mo.Velocity, r3.Scale(j*b.ma.InvMass, n))
	}
	const slop = 0.001
	if corr := math.Max(depth-slop, 0) * 0.8 / invSum; corr > 0 {
		a.tr.Position = r3.Sub(a.tr.Position, r3.Scale(corr*a.ma.InvMass, n))
		b.tr.Position = r3.Add(b.tr.Position, r3.Scale(corr*b.ma.InvMass, n))
	}
}
