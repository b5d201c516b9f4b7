package physics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/conjure/components"
)

var up = r3.Vec{Y: 1}

// contact tests two bodies and returns the normal from a to b and the
// penetration depth.
func contact(a, b *entry) (r3.Vec, float64, bool) {
	ka, kb := a.co.Kind, b.co.Kind
	switch {
	case ka == components.ColliderPlane && kb == components.ColliderPlane:
		return r3.Vec{}, 0, false
	case ka == components.ColliderPlane:
		return planeContact(a, b)
	case kb == components.ColliderPlane:
		n, d, ok := planeContact(b, a)
		return r3.Scale(-1, n), d, ok
	case ka == components.ColliderSphere && kb == components.ColliderSphere:
		return sphereContact(a.tr.Position, a.co.Radius, b.tr.Position, b.co.Radius)
	case ka == components.ColliderBox && kb == components.ColliderSphere:
		return boxSphereContact(a, b)
	case ka == components.ColliderSphere && kb == components.ColliderBox:
		n, d, ok := boxSphereContact(b, a)
		return r3.Scale(-1, n), d, ok
	default:
		// Box pairs use spheres of the mean half extent.
		return sphereContact(a.tr.Position, meanExtent(a.co), b.tr.Position, meanExtent(b.co))
	}
}

func sphereContact(pa r3.Vec, ra float64, pb r3.Vec, rb float64) (r3.Vec, float64, bool) {
	d := r3.Sub(pb, pa)
	dist := r3.Norm(d)
	depth := ra + rb - dist
	if depth <= 0 {
		return r3.Vec{}, 0, false
	}
	if dist == 0 {
		return up, depth, true
	}
	return r3.Scale(1/dist, d), depth, true
}

// planeContact tests body b against plane p. The normal points from the plane into b.
func planeContact(p, b *entry) (r3.Vec, float64, bool) {
	n := p.co.Normal
	var lowest float64
	switch b.co.Kind {
	case components.ColliderBox:
		lowest = math.Inf(1)
		he := b.co.HalfExtents
		for _, sx := range []float64{-1, 1} {
			for _, sy := range []float64{-1, 1} {
				for _, sz := range []float64{-1, 1} {
					corner := components.Rotate(b.tr.Orientation, r3.Vec{X: sx * he.X, Y: sy * he.Y, Z: sz * he.Z})
					h := r3.Dot(r3.Sub(r3.Add(b.tr.Position, corner), p.tr.Position), n)
					lowest = math.Min(lowest, h)
				}
			}
		}
	default:
		lowest = r3.Dot(r3.Sub(b.tr.Position, p.tr.Position), n) - b.co.Radius
	}
	if lowest >= 0 {
		return r3.Vec{}, 0, false
	}
	return n, -lowest, true
}

// boxSphereContact tests box a against sphere b using the closest point on
// the oriented box.
func boxSphereContact(a, b *entry) (r3.Vec, float64, bool) {
	local := components.InverseRotate(a.tr.Orientation, r3.Sub(b.tr.Position, a.tr.Position))
	he := a.co.HalfExtents
	closest := r3.Vec{
		X: clamp(local.X, -he.X, he.X),
		Y: clamp(local.Y, -he.Y, he.Y),
		Z: clamp(local.Z, -he.Z, he.Z),
	}
	d := r3.Sub(local, closest)
	dist := r3.Norm(d)
	depth := b.co.Radius - dist
	if depth <= 0 {
		return r3.Vec{}, 0, false
	}
	if dist == 0 {
		// Centre inside the box: push out along the world up axis.
		return up, b.co.Radius, true
	}
	return components.Rotate(a.tr.Orientation, r3.Scale(1/dist, d)), depth, true
}

func meanExtent(c *components.Collider) float64 {
	if c.Kind != components.ColliderBox {
		return c.Radius
	}
	return (c.HalfExtents.X + c.HalfExtents.Y + c.HalfExtents.Z) / 3
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
