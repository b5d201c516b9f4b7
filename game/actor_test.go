package game

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/conjure/config"
	"github.com/pthm-cable/conjure/telemetry"
)

// newTestMap returns a map without effects or audio that counts events.
func newTestMap(t *testing.T) (*Map, map[telemetry.EventType]int) {
	t.Helper()
	m := NewMap(MapOptions{Config: config.Default()})
	counts := make(map[telemetry.EventType]int)
	m.OnEvent = func(e telemetry.Event) { counts[e.Type]++ }
	return m, counts
}

func seconds(v float64) *float64 { return &v }

func at(x, y, z float64) *r3.Vec { return &r3.Vec{X: x, Y: y, Z: z} }

type fakeEffect struct {
	particles int
	updates   int
	stopped   bool
	deleted   bool
	position  r3.Vec
}

func (f *fakeEffect) SetPosition(p r3.Vec) { f.position = p }
func (f *fakeEffect) Update(float64)       { f.updates++ }
func (f *fakeEffect) Stop()                { f.stopped = true }
func (f *fakeEffect) Delete()              { f.deleted = true; f.particles = 0 }
func (f *fakeEffect) HasParticles() bool   { return f.particles > 0 }

type fakeSound struct{ kills int }

func (f *fakeSound) Kill() { f.kills++ }

func TestKillIsIdempotent(t *testing.T) {
	m, counts := newTestMap(t)
	a := NewActor(m, ActorConfig{Position: at(0, 1, 0)})
	snd := &fakeSound{}
	a.attachSound(snd)
	fx := &fakeEffect{particles: 2}
	a.attachEffect(fx)

	if !m.World().Contains(a.Body) || !m.Scene().Contains(a.Mesh) {
		t.Fatal("new actor not in world and scene")
	}

	a.Kill()
	a.Kill()

	if a.State() != StateKilled {
		t.Errorf("state = %v, want killed", a.State())
	}
	if counts[telemetry.EventKill] != 1 {
		t.Errorf("kill events = %d, want 1", counts[telemetry.EventKill])
	}
	if snd.kills != 1 {
		t.Errorf("sound killed %d times, want 1", snd.kills)
	}
	if !fx.stopped || fx.deleted {
		t.Errorf("effect stopped=%v deleted=%v, want stopped only", fx.stopped, fx.deleted)
	}
	if m.World().Contains(a.Body) || m.Scene().Contains(a.Mesh) {
		t.Error("killed actor still in world or scene")
	}
	if !a.ShouldBeKilled() {
		t.Error("killed actor should report ShouldBeKilled")
	}
}

func TestNoDieActorSurvives(t *testing.T) {
	m, _ := newTestMap(t)
	a := NewActor(m, ActorConfig{NoDie: true, Lifespan: seconds(0), Position: at(0, 1, 0)})

	a.Kill()
	a.Expire()
	for i := 0; i < 10; i++ {
		m.Update(0.1)
	}
	a.Delete()

	if a.State() != StateAlive {
		t.Errorf("state = %v, want alive", a.State())
	}
	if a.ShouldBeKilled() || a.ShouldBeDeleted() {
		t.Error("noDie actor reports it should die")
	}
	if !math.IsInf(a.Lifespan(), 1) {
		t.Errorf("lifespan = %v, want +Inf", a.Lifespan())
	}
	if len(m.Actors()) != 1 {
		t.Errorf("actors = %d, want 1", len(m.Actors()))
	}
}

func TestDeletionWaitsForParticles(t *testing.T) {
	m, counts := newTestMap(t)
	a := NewActor(m, ActorConfig{Lifespan: seconds(0.1), Position: at(0, 1, 0)})
	fx := &fakeEffect{particles: 3}
	a.attachEffect(fx)

	m.Update(0.2)
	if a.State() != StateKilled {
		t.Fatalf("state = %v, want killed", a.State())
	}
	if len(m.Actors()) != 1 {
		t.Fatal("actor swept while particles remain")
	}
	if !fx.stopped {
		t.Error("effect not stopped on kill")
	}

	fx.particles = 0
	m.Update(0.1)

	if a.State() != StateDeleted {
		t.Errorf("state = %v, want deleted", a.State())
	}
	if !fx.deleted {
		t.Error("effect not deleted")
	}
	if len(m.Actors()) != 0 {
		t.Errorf("actors = %d, want 0", len(m.Actors()))
	}
	if counts[telemetry.EventKill] != 1 || counts[telemetry.EventDelete] != 1 {
		t.Errorf("kill/delete events = %d/%d, want 1/1", counts[telemetry.EventKill], counts[telemetry.EventDelete])
	}
}

func TestDeleteKillsFirst(t *testing.T) {
	m, counts := newTestMap(t)
	a := NewActor(m, ActorConfig{Position: at(0, 1, 0)})

	a.Delete()
	a.Delete()

	if a.State() != StateDeleted {
		t.Errorf("state = %v, want deleted", a.State())
	}
	if m.World().Contains(a.Body) {
		t.Error("deleted actor still in world")
	}
	if counts[telemetry.EventKill] != 1 || counts[telemetry.EventDelete] != 1 {
		t.Errorf("kill/delete events = %d/%d, want 1/1", counts[telemetry.EventKill], counts[telemetry.EventDelete])
	}
}

func TestExpireKillsOnNextUpdate(t *testing.T) {
	m, _ := newTestMap(t)
	a := NewActor(m, ActorConfig{Position: at(0, 1, 0)})
	if !math.IsInf(a.Lifespan(), 1) {
		t.Fatalf("default lifespan = %v, want +Inf", a.Lifespan())
	}

	a.Expire()
	if a.State() != StateAlive {
		t.Error("Expire should not kill immediately")
	}
	m.Update(0.01)
	if a.State() != StateDeleted {
		t.Errorf("state = %v, want deleted", a.State())
	}
}

func TestActorDefaults(t *testing.T) {
	m, _ := newTestMap(t)
	cfg := m.Config()
	a := NewActor(m, ActorConfig{})

	if a.Label != "actor" {
		t.Errorf("label = %q", a.Label)
	}
	if a.Shape.Size != 0.1 {
		t.Errorf("size = %v, want 0.1", a.Shape.Size)
	}
	if got := a.Body.Mass(); math.Abs(got-0.05) > 1e-12 {
		t.Errorf("mass = %v, want shape radius 0.05", got)
	}
	if got := a.Body.LinearDamping(); got != cfg.Actor.LinearDamping {
		t.Errorf("linear damping = %v, want %v", got, cfg.Actor.LinearDamping)
	}
	p := a.Position()
	r, h := cfg.Sim.SpawnRadius, cfg.Sim.SpawnHeight
	if p.X < -r || p.X > r || p.Y < 0 || p.Y > h || p.Z < -r || p.Z > r {
		t.Errorf("default position %+v outside spawn box", p)
	}
	if a.Mesh.Opacity != 0 {
		t.Errorf("opacity = %v, want 0 before fading in", a.Mesh.Opacity)
	}
}

func TestInvalidConfigIsDefaulted(t *testing.T) {
	m, _ := newTestMap(t)
	a := NewActor(m, ActorConfig{
		Mass:     -3,
		Position: at(math.NaN(), 0, 0),
		Lifespan: seconds(math.NaN()),
	})

	if a.Body.Mass() <= 0 {
		t.Errorf("mass = %v, want positive default", a.Body.Mass())
	}
	if !finite(a.Position()) {
		t.Errorf("position %+v not finite", a.Position())
	}
	if !math.IsInf(a.Lifespan(), 1) {
		t.Errorf("lifespan = %v, want immortal", a.Lifespan())
	}
}

func TestGhostStaysOutOfWorld(t *testing.T) {
	m, _ := newTestMap(t)
	a := NewActor(m, ActorConfig{Ghost: true, Position: at(0, 1, 0)})

	if m.World().Contains(a.Body) || m.Scene().Contains(a.Mesh) {
		t.Error("ghost actor added to world or scene")
	}
	if len(m.Actors()) != 1 {
		t.Error("ghost actor missing from live list")
	}

	// Ghost bodies are not simulated.
	m.Update(0.5)
	if a.Position().Y != 1 {
		t.Errorf("ghost moved to %+v", a.Position())
	}
}

func TestAttachedActorFollowsAnchor(t *testing.T) {
	m, _ := newTestMap(t)
	hand := &Hand{Position: r3.Vec{X: 2, Y: 3}}
	a := NewActor(m, ActorConfig{Ghost: true, AttachedTo: hand})
	fx := &fakeEffect{}
	a.attachEffect(fx)

	hand.Position = r3.Vec{X: -1, Y: 4, Z: 2}
	m.Update(0.1)

	if a.Mesh.Position != hand.Position || a.Position() != hand.Position {
		t.Errorf("mesh %+v body %+v, want %+v", a.Mesh.Position, a.Position(), hand.Position)
	}
	if fx.position != hand.Position || fx.updates != 1 {
		t.Errorf("effect at %+v after %d updates", fx.position, fx.updates)
	}
}

func TestOpacityFadesIn(t *testing.T) {
	m, _ := newTestMap(t)
	a := NewActor(m, ActorConfig{Ghost: true, Position: at(0, 1, 0)})
	rate := m.Config().Actor.FadeInRate

	m.Update(0.5)
	if got := a.Mesh.Opacity; math.Abs(got-rate*0.5) > 1e-9 {
		t.Errorf("opacity = %v, want %v", got, rate*0.5)
	}
	for i := 0; i < 100; i++ {
		m.Update(0.1)
	}
	if a.Mesh.Opacity != 1 {
		t.Errorf("opacity = %v, want 1", a.Mesh.Opacity)
	}
}

func TestStateString(t *testing.T) {
	tests := []struct {
		s    State
		want string
	}{
		{StateAlive, "alive"},
		{StateKilled, "killed"},
		{StateDeleted, "deleted"},
		{State(9), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.s.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.s, got, tt.want)
		}
	}
}
