package physics

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/conjure/components"
)

func sphere(mass, size float64, pos r3.Vec, filter components.CollisionFilter) *Body {
	return NewBody(BodyConfig{
		Mass:     mass,
		Shape:    components.Shape{Kind: components.ShapeSphere, Size: size},
		Position: pos,
		Filter:   filter,
	})
}

func TestStepAppliesGravity(t *testing.T) {
	w := NewWorld(Config{Gravity: r3.Vec{Y: -3.8}})
	b := sphere(1, 0.2, r3.Vec{Y: 100}, components.FilterWorld)
	w.AddBody(b)

	for i := 0; i < 100; i++ {
		w.Step(0.01)
	}

	if v := b.Velocity().Y; math.Abs(v+3.8) > 1e-9 {
		t.Errorf("vy = %v, want -3.8", v)
	}
	if y := b.Position().Y; y >= 100 || y < 97.9 {
		t.Errorf("y = %v, want roughly 98.1", y)
	}
}

func TestDetachedBodyIsNotSimulated(t *testing.T) {
	w := NewWorld(Config{Gravity: r3.Vec{Y: -3.8}})
	b := sphere(1, 0.2, r3.Vec{Y: 1}, components.FilterWorld)

	w.Step(1)

	if b.Position().Y != 1 || b.Velocity() != (r3.Vec{}) {
		t.Errorf("detached body moved to %+v", b.Position())
	}
	b.SetPosition(r3.Vec{X: 3})
	if b.Position().X != 3 {
		t.Error("detached body ignored SetPosition")
	}
}

func TestAddRemoveBody(t *testing.T) {
	w := NewWorld(Config{Gravity: r3.Vec{Y: -1}})
	b := sphere(1, 0.2, r3.Vec{}, components.FilterWorld)

	w.AddBody(b)
	w.AddBody(b)
	if w.NumBodies() != 1 {
		t.Fatalf("NumBodies = %d after double add, want 1", w.NumBodies())
	}

	w.Step(1)
	w.RemoveBody(b)
	w.RemoveBody(b)
	if w.NumBodies() != 0 || b.InWorld() {
		t.Fatalf("body still attached after remove")
	}
	if v := b.Velocity().Y; math.Abs(v+1) > 1e-9 {
		t.Errorf("state lost on removal: vy = %v, want -1", v)
	}

	w.Step(1)
	if v := b.Velocity().Y; math.Abs(v+1) > 1e-9 {
		t.Errorf("removed body still simulated: vy = %v", v)
	}
}

func TestSphereRestsOnPlane(t *testing.T) {
	w := NewWorld(Config{Gravity: r3.Vec{Y: -3.8}, Restitution: 0.3})
	ground := NewPlane(r3.Vec{}, r3.Vec{Y: 1}, components.FilterWorld)
	ball := sphere(1, 1, r3.Vec{Y: 2}, components.FilterWorld)
	w.AddBody(ground)
	w.AddBody(ball)

	hits := 0
	ball.OnCollide(func(e CollisionEvent) {
		if e.Body != ball || e.Other != ground {
			t.Errorf("unexpected event %+v", e)
		}
		hits++
	})

	for i := 0; i < 600; i++ {
		w.Step(1.0 / 60)
	}

	if hits == 0 {
		t.Fatal("ball never touched the ground")
	}
	if y := ball.Position().Y; math.Abs(y-0.5) > 0.05 {
		t.Errorf("ball rests at y = %v, want about 0.5", y)
	}
	if ground.Position() != (r3.Vec{}) {
		t.Errorf("static plane moved to %+v", ground.Position())
	}
}

func TestCollisionFilterGroups(t *testing.T) {
	tests := []struct {
		name   string
		fa, fb components.CollisionFilter
		want   bool
	}{
		{"player vs agent", components.FilterPlayer, components.FilterAgent, true},
		{"player vs player", components.FilterPlayer, components.FilterPlayer, false},
		{"agent vs agent", components.FilterAgent, components.FilterAgent, false},
		{"world vs agent", components.FilterWorld, components.FilterAgent, true},
		{"mask zero", components.FilterNone, components.FilterWorld, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewWorld(Config{})
			a := sphere(1, 1, r3.Vec{}, tt.fa)
			b := sphere(1, 1, r3.Vec{X: 0.5}, tt.fb)
			a.UserData = "a"
			w.AddBody(a)
			w.AddBody(b)

			var got []CollisionEvent
			b.OnCollide(func(e CollisionEvent) { got = append(got, e) })
			w.Step(0.001)

			if (len(got) > 0) != tt.want {
				t.Fatalf("collided = %v, want %v", len(got) > 0, tt.want)
			}
			if tt.want && got[0].Other.UserData != "a" {
				t.Errorf("UserData = %v, want a", got[0].Other.UserData)
			}
		})
	}
}

func TestListenerMayRemoveBodies(t *testing.T) {
	w := NewWorld(Config{})
	a := sphere(1, 1, r3.Vec{}, components.FilterWorld)
	b := sphere(1, 1, r3.Vec{X: 0.5}, components.FilterWorld)
	w.AddBody(a)
	w.AddBody(b)

	a.OnCollide(func(e CollisionEvent) {
		w.RemoveBody(e.Body)
		w.RemoveBody(e.Other)
	})
	w.Step(0.01)

	if w.NumBodies() != 0 {
		t.Errorf("NumBodies = %d, want 0", w.NumBodies())
	}
}

func TestLocalImpulseUsesOrientation(t *testing.T) {
	b := NewBody(BodyConfig{
		Mass:          2,
		Shape:         components.Shape{Kind: components.ShapeCone, Size: 1},
		Orientation:   components.FromAxisAngle(r3.Vec{Y: 1}, math.Pi/2),
		FixedRotation: true,
	})

	b.ApplyLocalImpulse(r3.Vec{Z: 4}, r3.Vec{Y: 1})

	v := b.Velocity()
	if math.Abs(v.X-2) > 1e-9 || math.Abs(v.Z) > 1e-9 {
		t.Errorf("velocity = %+v, want (2, 0, 0)", v)
	}
	if b.AngularVelocity() != (r3.Vec{}) {
		t.Errorf("fixed rotation body spun: %+v", b.AngularVelocity())
	}

	local := b.PointToLocalFrame(r3.Vec{X: 1})
	if math.Abs(local.Z-1) > 1e-9 {
		t.Errorf("PointToLocalFrame = %+v, want (0, 0, 1)", local)
	}
}

func TestForcesAreClearedAfterStep(t *testing.T) {
	w := NewWorld(Config{})
	b := sphere(1, 0.2, r3.Vec{}, components.FilterWorld)
	w.AddBody(b)

	b.ApplyForce(r3.Vec{X: 10}, r3.Vec{})
	w.Step(0.1)
	w.Step(0.1)

	if v := b.Velocity().X; math.Abs(v-1) > 1e-9 {
		t.Errorf("vx = %v, want 1", v)
	}
}
