package render

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/conjure/components"
)

func TestSceneAddRemove(t *testing.T) {
	s := NewScene()
	a := NewMesh(components.DefaultShape(), components.White)
	b := NewMesh(components.DefaultShape(), components.White)
	c := NewMesh(components.DefaultShape(), components.White)

	s.Add(a)
	s.Add(b)
	s.Add(c)
	s.Add(b)
	if s.Len() != 3 {
		t.Fatalf("Len = %d, want 3", s.Len())
	}

	s.Remove(b)
	s.Remove(b)
	if s.Len() != 2 || s.Contains(b) || b.InScene() {
		t.Fatalf("b still present after Remove")
	}
	if got := s.Meshes(); got[0] != a || got[1] != c {
		t.Errorf("order not preserved: %v", got)
	}
}

func TestChildLightsFollowMesh(t *testing.T) {
	s := NewScene()
	m := NewMesh(components.DefaultShape(), components.White)
	m.Position = r3.Vec{X: 1, Y: 2, Z: 3}
	m.Orientation = components.FromAxisAngle(r3.Vec{Y: 1}, math.Pi/2)
	l := NewPointLight(components.White, 1, 10, 2)
	l.Offset = r3.Vec{Z: 1}
	m.AddLight(l)
	s.Add(m)

	if len(s.Lights()) != 1 {
		t.Fatalf("Lights = %d, want 1", len(s.Lights()))
	}
	p := l.WorldPosition()
	if math.Abs(p.X-2) > 1e-9 || math.Abs(p.Y-2) > 1e-9 || math.Abs(p.Z-3) > 1e-9 {
		t.Errorf("light at %+v, want (2, 2, 3)", p)
	}

	m.RemoveLight(l)
	if l.Parent() != nil || len(m.Lights()) != 0 {
		t.Error("light still attached after RemoveLight")
	}
}
