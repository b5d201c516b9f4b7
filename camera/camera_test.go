package camera

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestNew(t *testing.T) {
	rig := New(0.05, 1.6)

	if rig.Position != (r3.Vec{}) {
		t.Errorf("expected rig at origin, got %+v", rig.Position)
	}
	f := rig.Forward()
	if math.Abs(f.Z+1) > 1e-9 {
		t.Errorf("expected forward -Z, got %+v", f)
	}
}

func TestTrackLerpsTowardTarget(t *testing.T) {
	rig := New(0.05, 0)
	target := r3.Vec{X: 10, Y: 0, Z: -20}

	rig.Track(target)
	if math.Abs(rig.Position.X-9.5) > 1e-9 || math.Abs(rig.Position.Z+19) > 1e-9 {
		t.Errorf("after one tick rig at %+v, want (9.5, 0, -19)", rig.Position)
	}

	for i := 0; i < 20; i++ {
		rig.Track(target)
	}
	if d := r3.Norm(r3.Sub(rig.Position, target)); d > 1e-6 {
		t.Errorf("rig did not converge, distance %v", d)
	}
}

func TestLocalRoundtrip(t *testing.T) {
	rig := New(0.05, 1.6)
	rig.Position = r3.Vec{X: 3, Y: 1, Z: -2}
	rig.Turn(0.7, -0.3)

	testCases := []r3.Vec{
		{},
		{X: 1, Y: 2, Z: 3},
		{X: -5, Y: 0.5, Z: 8},
	}

	for _, p := range testCases {
		back := rig.ToWorld(rig.ToLocal(p))
		if r3.Norm(r3.Sub(back, p)) > 1e-9 {
			t.Errorf("roundtrip failed: %+v -> %+v", p, back)
		}
	}
}

func TestToLocalAlignsWithView(t *testing.T) {
	rig := New(0, 0)
	rig.Turn(math.Pi/2, 0)

	// Looking down -X after a quarter turn left, so a point at -X is straight ahead.
	local := rig.ToLocal(r3.Vec{X: -1})
	if math.Abs(local.Z+1) > 1e-9 || math.Abs(local.X) > 1e-9 {
		t.Errorf("ToLocal = %+v, want (0, 0, -1)", local)
	}
}

func TestPitchIsClamped(t *testing.T) {
	rig := New(0, 0)
	rig.Turn(0, 10)
	if rig.Pitch > rig.MaxPitch {
		t.Errorf("pitch %v exceeds max %v", rig.Pitch, rig.MaxPitch)
	}
}
