// Package steering moves autonomous vehicles with weighted steering
// behaviours (Reynolds style): each tick a vehicle sums its behaviour forces,
// integrates velocity under a speed cap and turns to face its heading.
//
// The package knows nothing about physics bodies; a vehicle reports its new
// state through OnSync, where the owner copies it onto whatever it drives.
package steering

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/conjure/components"
)

// Target is a point a behaviour steers relative to.
type Target interface {
	WorldPosition() r3.Vec
}

// Point is a fixed Target.
type Point r3.Vec

// WorldPosition implements Target.
func (p Point) WorldPosition() r3.Vec { return r3.Vec(p) }

// Behavior computes one steering force.
type Behavior interface {
	Calculate(v *Vehicle, dt float64) r3.Vec
	Weight() float64
	Active() bool
}

// Vehicle is a steered point mass.
type Vehicle struct {
	Position r3.Vec
	Velocity r3.Vec
	Rotation quat.Number

	Mass           float64
	MaxSpeed       float64
	MaxForce       float64
	MaxTurnRate    float64 // radians per second
	BoundingRadius float64

	// Neighbors is refreshed by the manager when UpdateNeighborhood is set.
	UpdateNeighborhood bool
	NeighborhoodRadius float64
	Neighbors          []*Vehicle

	Smoother *Smoother
	Vision   *Vision

	// OnSync runs after every update so the owner can mirror the new state.
	OnSync func(v *Vehicle)

	behaviors []Behavior
	manager   *EntityManager
}

// NewVehicle returns a vehicle with unit mass and speed.
func NewVehicle() *Vehicle {
	return &Vehicle{
		Rotation:    components.Identity(),
		Mass:        1,
		MaxSpeed:    1,
		MaxForce:    100,
		MaxTurnRate: math.Pi,
	}
}

// Add appends a behaviour.
func (v *Vehicle) Add(b Behavior) { v.behaviors = append(v.behaviors, b) }

// Behaviors returns the steering behaviours in evaluation order.
func (v *Vehicle) Behaviors() []Behavior { return v.behaviors }

// Speed returns the velocity magnitude.
func (v *Vehicle) Speed() float64 { return r3.Norm(v.Velocity) }

// Heading returns the unit forward direction.
func (v *Vehicle) Heading() r3.Vec { return components.Rotate(v.Rotation, components.Forward) }

// Registered reports whether the vehicle belongs to a manager.
func (v *Vehicle) Registered() bool { return v.manager != nil }

// ToLocal converts a world point into the vehicle frame.
func (v *Vehicle) ToLocal(p r3.Vec) r3.Vec {
	return components.InverseRotate(v.Rotation, r3.Sub(p, v.Position))
}

// ToWorldDirection converts a vehicle-frame direction into world space.
func (v *Vehicle) ToWorldDirection(d r3.Vec) r3.Vec {
	return components.Rotate(v.Rotation, d)
}

// Force returns the truncated weighted sum of the active behaviours.
func (v *Vehicle) Force(dt float64) r3.Vec {
	var total r3.Vec
	for _, b := range v.behaviors {
		if !b.Active() {
			continue
		}
		f := r3.Scale(b.Weight(), b.Calculate(v, dt))
		total = r3.Add(total, f)
	}
	return truncate(total, v.MaxForce)
}

// Update integrates one step: force, velocity cap, position, orientation.
func (v *Vehicle) Update(dt float64) {
	accel := r3.Scale(1/math.Max(v.Mass, 1e-9), v.Force(dt))
	v.Velocity = truncate(r3.Add(v.Velocity, r3.Scale(dt, accel)), v.MaxSpeed)
	v.Position = r3.Add(v.Position, r3.Scale(dt, v.Velocity))

	heading := v.Velocity
	if v.Smoother != nil {
		heading = v.Smoother.Calculate(v.Velocity)
	}
	if r3.Norm(heading) > 1e-8 {
		v.turnTo(components.LookRotation(heading), dt)
	}

	if v.OnSync != nil {
		v.OnSync(v)
	}
}

// turnTo rotates toward target, at most MaxTurnRate·dt radians.
func (v *Vehicle) turnTo(target quat.Number, dt float64) {
	angle := components.AngleBetween(v.Rotation, target)
	step := v.MaxTurnRate * dt
	if angle <= step || angle < 1e-9 {
		v.Rotation = target
		return
	}
	v.Rotation = components.Nlerp(v.Rotation, target, step/angle)
}

func truncate(vec r3.Vec, max float64) r3.Vec {
	n := r3.Norm(vec)
	if n > max && n > 0 {
		return r3.Scale(max/n, vec)
	}
	return vec
}

// WorldPosition lets a vehicle act as a Target.
func (v *Vehicle) WorldPosition() r3.Vec { return v.Position }

// Radius lets a vehicle act as an Obstacle.
func (v *Vehicle) Radius() float64 { return v.BoundingRadius }
