// Package camera provides the player's follow camera rig.
package camera

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/conjure/components"
)

// Rig is a camera group that trails a target. Controllers and gesture
// sampling are expressed in rig space.
type Rig struct {
	// Position is the rig origin in world coordinates
	Position r3.Vec

	// Yaw and Pitch in radians
	Yaw, Pitch float64

	// Follow is the fraction of the previous position kept each tick
	// (0 = snap to target, 1 = never move)
	Follow float64

	// EyeHeight offsets the eye above the rig origin
	EyeHeight float64

	// FovY is the vertical field of view in degrees
	FovY float64

	MaxPitch float64
}

// New creates a rig at the origin looking down -Z.
func New(follow, eyeHeight float64) *Rig {
	return &Rig{
		Follow:    clamp(follow, 0, 1),
		EyeHeight: eyeHeight,
		FovY:      60,
		MaxPitch:  math.Pi/2 - 0.05,
	}
}

// Track moves the rig toward target.
func (c *Rig) Track(target r3.Vec) {
	k := c.Follow
	c.Position = r3.Add(r3.Scale(k, c.Position), r3.Scale(1-k, target))
}

// Turn rotates the view by the given yaw and pitch deltas.
func (c *Rig) Turn(dYaw, dPitch float64) {
	c.Yaw = math.Mod(c.Yaw+dYaw, 2*math.Pi)
	c.Pitch = clamp(c.Pitch+dPitch, -c.MaxPitch, c.MaxPitch)
}

// Orientation returns the view rotation.
func (c *Rig) Orientation() quat.Number {
	yaw := components.FromAxisAngle(r3.Vec{Y: 1}, c.Yaw)
	pitch := components.FromAxisAngle(r3.Vec{X: 1}, c.Pitch)
	return quat.Mul(yaw, pitch)
}

// Eye returns the eye position in world coordinates.
func (c *Rig) Eye() r3.Vec {
	return r3.Add(c.Position, r3.Vec{Y: c.EyeHeight})
}

// Forward returns the unit view direction.
func (c *Rig) Forward() r3.Vec {
	return components.Rotate(c.Orientation(), r3.Vec{Z: -1})
}

// WorldPosition returns the eye position.
func (c *Rig) WorldPosition() r3.Vec { return c.Eye() }

// WorldOrientation returns the view rotation.
func (c *Rig) WorldOrientation() quat.Number { return c.Orientation() }

// ToLocal converts a world point into view space (x right, y up, -z forward).
func (c *Rig) ToLocal(p r3.Vec) r3.Vec {
	return components.InverseRotate(c.Orientation(), r3.Sub(p, c.Eye()))
}

// ToWorld converts a view-space point into world coordinates.
func (c *Rig) ToWorld(p r3.Vec) r3.Vec {
	return r3.Add(components.Rotate(c.Orientation(), p), c.Eye())
}

// Reset returns the rig to the origin with a level view.
func (c *Rig) Reset() {
	c.Position = r3.Vec{}
	c.Yaw = 0
	c.Pitch = 0
}

// clamp restricts a value to a range.
func clamp(x, min, max float64) float64 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}
