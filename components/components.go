// Package components defines value types shared by the physics, render and
// game packages, plus the ECS components stored for every physics body.
package components

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Transform is a body's pose in world space.
type Transform struct {
	Position    r3.Vec
	Orientation quat.Number
}

// Motion holds velocities and the force/torque accumulated since the last step.
type Motion struct {
	Velocity        r3.Vec
	AngularVelocity r3.Vec
	Force           r3.Vec
	Torque          r3.Vec
}

// Mass holds inertial properties. A zero InvMass marks a static body.
type Mass struct {
	Value          float64
	InvMass        float64
	InvInertia     r3.Vec // diagonal of the local inverse inertia tensor
	LinearDamping  float64
	AngularDamping float64
	FixedRotation  bool
}

// ColliderKind selects the narrow-phase shape of a body.
type ColliderKind uint8

const (
	ColliderSphere ColliderKind = iota
	ColliderBox
	ColliderPlane
)

// Collider is the collision geometry of a body.
type Collider struct {
	Kind        ColliderKind
	Radius      float64 // sphere radius, or bounding radius of a box
	HalfExtents r3.Vec  // boxes only
	Normal      r3.Vec  // planes only, in world space
}

// Identity is the unit quaternion.
func Identity() quat.Number {
	return quat.Number{Real: 1}
}

// Rotate applies the rotation q to v.
func Rotate(q quat.Number, v r3.Vec) r3.Vec {
	p := quat.Mul(quat.Mul(q, quat.Number{Imag: v.X, Jmag: v.Y, Kmag: v.Z}), quat.Conj(q))
	return r3.Vec{X: p.Imag, Y: p.Jmag, Z: p.Kmag}
}

// InverseRotate applies the inverse of the unit rotation q to v.
func InverseRotate(q quat.Number, v r3.Vec) r3.Vec {
	return Rotate(quat.Conj(q), v)
}

// Normalize returns q scaled to unit length. The zero quaternion maps to identity.
func Normalize(q quat.Number) quat.Number {
	n := quat.Abs(q)
	if n == 0 {
		return Identity()
	}
	return quat.Scale(1/n, q)
}

// FromAxisAngle builds a unit quaternion rotating angle radians about axis.
func FromAxisAngle(axis r3.Vec, angle float64) quat.Number {
	if r3.Norm(axis) == 0 {
		return Identity()
	}
	axis = r3.Unit(axis)
	s, c := math.Sincos(angle / 2)
	return quat.Number{Real: c, Imag: axis.X * s, Jmag: axis.Y * s, Kmag: axis.Z * s}
}

// Forward is the local axis meshes and vehicles face along.
var Forward = r3.Vec{Z: 1}

// LookRotation returns the rotation that turns Forward onto dir.
func LookRotation(dir r3.Vec) quat.Number {
	n := r3.Norm(dir)
	if n == 0 {
		return Identity()
	}
	dir = r3.Scale(1/n, dir)
	d := r3.Dot(Forward, dir)
	if d < -1+1e-9 {
		return FromAxisAngle(r3.Vec{Y: 1}, math.Pi)
	}
	return FromAxisAngle(r3.Cross(Forward, dir), math.Acos(math.Min(1, d)))
}

// Nlerp blends two rotations along the shorter arc and renormalizes.
func Nlerp(a, b quat.Number, t float64) quat.Number {
	dot := a.Real*b.Real + a.Imag*b.Imag + a.Jmag*b.Jmag + a.Kmag*b.Kmag
	if dot < 0 {
		b = quat.Scale(-1, b)
	}
	return Normalize(quat.Add(quat.Scale(1-t, a), quat.Scale(t, b)))
}

// AngleBetween returns the rotation angle separating two unit quaternions.
func AngleBetween(a, b quat.Number) float64 {
	dot := math.Abs(a.Real*b.Real + a.Imag*b.Imag + a.Jmag*b.Jmag + a.Kmag*b.Kmag)
	return 2 * math.Acos(math.Min(1, dot))
}
