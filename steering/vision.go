package steering

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Vision is a view cone attached to a vehicle.
type Vision struct {
	Owner       *Vehicle
	Range       float64
	FieldOfView float64 // full cone angle in radians
	Obstacles   []Obstacle
}

// NewVision returns a cone of the given range and angle.
func NewVision(owner *Vehicle, rng, fov float64) *Vision {
	return &Vision{Owner: owner, Range: rng, FieldOfView: fov}
}

// Visible reports whether p lies inside the cone with no obstacle in front.
func (vs *Vision) Visible(p r3.Vec) bool {
	from := vs.Owner.Position
	to := r3.Sub(p, from)
	dist := r3.Norm(to)
	if dist > vs.Range {
		return false
	}
	if dist == 0 {
		return true
	}

	cos := r3.Dot(vs.Owner.Heading(), to) / dist
	if math.Acos(math.Max(-1, math.Min(1, cos))) > vs.FieldOfView/2 {
		return false
	}

	dir := r3.Scale(1/dist, to)
	for _, o := range vs.Obstacles {
		if t, ok := raySphere(from, dir, o.WorldPosition(), o.Radius()); ok && t < dist {
			return false
		}
	}
	return true
}

// raySphere returns the distance along a unit ray to the first hit.
func raySphere(origin, dir, centre r3.Vec, radius float64) (float64, bool) {
	oc := r3.Sub(origin, centre)
	b := r3.Dot(oc, dir)
	c := r3.Norm2(oc) - radius*radius
	disc := b*b - c
	if disc < 0 {
		return 0, false
	}
	root := math.Sqrt(disc)
	t := -b - root
	if t < 0 {
		t = -b + root
	}
	return t, t >= 0
}
