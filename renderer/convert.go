package renderer

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/conjure/components"
)

// vec converts a world vector to raylib.
func vec(v r3.Vec) rl.Vector3 {
	return rl.NewVector3(float32(v.X), float32(v.Y), float32(v.Z))
}

// color converts a linear [0,1] colour with opacity to 8-bit RGBA.
func color(c components.Color, alpha float64) rl.Color {
	return rl.Color{
		R: channel(c.R),
		G: channel(c.G),
		B: channel(c.B),
		A: channel(alpha),
	}
}

func channel(v float64) uint8 {
	if v <= 0 || math.IsNaN(v) {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v * 255)
}

// axisAngle returns the rotation axis and angle in degrees of a unit
// quaternion, for rlgl's Rotatef.
func axisAngle(q quat.Number) (r3.Vec, float32) {
	q = components.Normalize(q)
	s := math.Sqrt(q.Imag*q.Imag + q.Jmag*q.Jmag + q.Kmag*q.Kmag)
	if s < 1e-9 {
		return r3.Vec{Y: 1}, 0
	}
	angle := 2 * math.Atan2(s, q.Real)
	return r3.Vec{X: q.Imag / s, Y: q.Jmag / s, Z: q.Kmag / s}, float32(angle * 180 / math.Pi)
}
