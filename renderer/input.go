package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/conjure/camera"
	"github.com/pthm-cable/conjure/input"
)

const (
	// handDepth is how far in front of the eye the mouse hand sits.
	handDepth = 0.6

	lookSpeed      = 0.03  // radians per frame for arrow keys
	mouseLookSpeed = 0.004 // radians per pixel while the right button is held
)

// leftHand is the resting pose of the off hand in rig space.
var leftHand = input.HandState{Local: r3.Vec{X: -0.3, Y: -0.3, Z: -0.5}}

// PollInput reads the keyboard and mouse. The right hand follows the cursor
// and draws while the left button is held. Holding Shift hands the cursor to
// the left hand, which draws instead; otherwise it rests beside the view.
func PollInput(rig *camera.Rig) input.Frame {
	f := input.Frame{
		Forward:         rl.IsKeyDown(rl.KeyW),
		Backward:        rl.IsKeyDown(rl.KeyS),
		Fire:            rl.IsKeyDown(rl.KeySpace),
		CastSmallCircle: rl.IsKeyPressed(rl.KeyP),
		CastLargeCircle: rl.IsKeyPressed(rl.KeyO),
		CastSquare:      rl.IsKeyPressed(rl.KeyI),
	}

	if rl.IsKeyDown(rl.KeyLeft) {
		f.LookYaw += lookSpeed
	}
	if rl.IsKeyDown(rl.KeyRight) {
		f.LookYaw -= lookSpeed
	}
	if rl.IsKeyDown(rl.KeyUp) {
		f.LookPitch += lookSpeed
	}
	if rl.IsKeyDown(rl.KeyDown) {
		f.LookPitch -= lookSpeed
	}
	if rl.IsMouseButtonDown(rl.MouseButtonRight) {
		d := rl.GetMouseDelta()
		f.LookYaw -= float64(d.X) * mouseLookSpeed
		f.LookPitch -= float64(d.Y) * mouseLookSpeed
	}

	mouse := rl.GetMousePosition()
	w, h := float64(rl.GetScreenWidth()), float64(rl.GetScreenHeight())
	cursor := input.ScreenHand(float64(mouse.X), float64(mouse.Y), w, h, rig.FovY, handDepth)

	f.Right = input.HandState{Local: cursor, Selecting: rl.IsMouseButtonDown(rl.MouseButtonLeft)}
	f.Left = leftHand
	if rl.IsKeyDown(rl.KeyLeftShift) {
		f.Left = input.HandState{Local: cursor, Selecting: true}
		f.Right.Selecting = false
	}
	return f
}
