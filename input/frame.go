// Package input turns raw device state into player intents: hand tracking
// with gesture sampling, flick throws, movement and the keyboard debug casts.
package input

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/conjure/game"
)

// HandState is one controller as reported by the device layer.
type HandState struct {
	// Local is the hand position in rig space (x right, y up, -z forward).
	Local r3.Vec

	// Orientation is relative to the rig; zero means identity.
	Orientation quat.Number

	// Selecting is true while the trigger is held.
	Selecting bool
}

// Frame is the device state for one tick.
type Frame struct {
	Left, Right HandState

	Forward, Backward bool // held
	Fire              bool // held

	// Thumbstick forward axis in [-1, 1]; negative pushes forward.
	Axis float64

	// Debug casts, true on the frame the key goes down.
	CastSmallCircle bool
	CastLargeCircle bool
	CastSquare      bool

	// View rotation deltas in radians.
	LookYaw, LookPitch float64
}

// Poster accepts queued intents. *game.Game and *game.Bridge satisfy it.
type Poster interface {
	Post(game.Message)
}

// ScreenHand maps a cursor at (x, y) on a width×height window to a rig-space
// point depth metres in front of the eye, for a vertical field of view of
// fovY degrees. The window centre maps straight ahead.
func ScreenHand(x, y, width, height, fovY, depth float64) r3.Vec {
	if width <= 0 || height <= 0 {
		return r3.Vec{Z: -depth}
	}
	ndcX := x/width*2 - 1
	ndcY := 1 - y/height*2
	halfH := depth * math.Tan(fovY*math.Pi/360)
	halfW := halfH * width / height
	return r3.Vec{X: ndcX * halfW, Y: ndcY * halfH, Z: -depth}
}
