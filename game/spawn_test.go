package game

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/conjure/components"
	"github.com/pthm-cable/conjure/telemetry"
)

func countLabel(m *Map, label string) int {
	n := 0
	for _, a := range m.Actors() {
		if a.Label == label {
			n++
		}
	}
	return n
}

func TestProjectileDetonatesOnce(t *testing.T) {
	m, counts := newTestMap(t)
	p := NewProjectile(m, ProjectileOptions{
		SpawnOptions: SpawnOptions{Size: 0.2, Position: r3.Vec{Y: 3}},
	})

	p.Detonate()
	if !p.Exploding() || p.Exploded() {
		t.Fatal("Detonate should only arm the projectile")
	}

	for i := 0; i < 5; i++ {
		m.Update(0.01)
	}

	if !p.Exploded() {
		t.Fatal("projectile did not explode")
	}
	if got := counts[telemetry.EventExplosion]; got != 1 {
		t.Errorf("explosion events = %d, want 1", got)
	}
	if got := countLabel(m, LabelExplosion); got != 1 {
		t.Errorf("explosions = %d, want 1", got)
	}
	if p.State() != StateDeleted {
		t.Errorf("projectile state = %v, want deleted", p.State())
	}
}

func TestProjectileCollisionExpiresOther(t *testing.T) {
	m, counts := newTestMap(t)
	p := NewProjectile(m, ProjectileOptions{
		SpawnOptions: SpawnOptions{Size: 0.2, Position: r3.Vec{Y: 3}},
	})
	target := NewActor(m, ActorConfig{Position: at(0.05, 3, 0)})

	m.Update(0.01)

	if !p.Exploded() {
		t.Error("projectile did not explode on contact")
	}
	if target.State() != StateDeleted {
		t.Errorf("target state = %v, want deleted", target.State())
	}

	// Touching the explosion must not set anything else off.
	for i := 0; i < 5; i++ {
		m.Update(0.01)
	}
	if got := counts[telemetry.EventExplosion]; got != 1 {
		t.Errorf("explosion events = %d, want 1", got)
	}
}

func TestProjectileFuseAndCollisionSameTick(t *testing.T) {
	m, counts := newTestMap(t)
	p := NewProjectile(m, ProjectileOptions{
		SpawnOptions: SpawnOptions{Size: 0.2, Position: r3.Vec{Y: 3}, Lifespan: 1.005},
	})
	target := NewActor(m, ActorConfig{Position: at(0.05, 3, 0)})

	// The first tick both burns the fuse below one second and delivers the
	// contact.
	m.Update(0.01)
	if !p.Exploded() {
		t.Fatal("projectile did not explode")
	}
	if target.State() != StateDeleted {
		t.Errorf("target state = %v, want deleted", target.State())
	}

	for i := 0; i < 5; i++ {
		m.Update(0.01)
	}
	if got := counts[telemetry.EventExplosion]; got != 1 {
		t.Errorf("explosion events = %d, want 1", got)
	}
	if got := countLabel(m, LabelExplosion); got != 1 {
		t.Errorf("explosions = %d, want 1", got)
	}
}

func TestProjectileFuse(t *testing.T) {
	m, _ := newTestMap(t)
	cfg := m.Config().Projectile
	p := NewProjectile(m, ProjectileOptions{
		SpawnOptions: SpawnOptions{Size: 0.2, Position: r3.Vec{Y: 50}},
	})

	dt := 0.1
	steps := int((cfg.Lifespan-cfg.FuseRemaining)/dt) - 1
	for i := 0; i < steps; i++ {
		m.Update(dt)
	}
	if p.Exploding() {
		t.Fatalf("exploding with %v s left", p.Lifespan())
	}
	for i := 0; i < 3; i++ {
		m.Update(dt)
	}
	if !p.Exploded() {
		t.Errorf("not exploded with %v s left", p.Lifespan())
	}
}

func TestProjectileReverse(t *testing.T) {
	m, _ := newTestMap(t)
	fwd := NewProjectile(m, ProjectileOptions{SpawnOptions: SpawnOptions{Size: 0.2, Position: r3.Vec{X: -5, Y: 50}}})
	rev := NewProjectile(m, ProjectileOptions{SpawnOptions: SpawnOptions{Size: 0.2, Position: r3.Vec{X: 5, Y: 50}}, Reverse: true})

	m.Update(0.1)

	if fwd.Velocity().Z <= 0 {
		t.Errorf("forward projectile vz = %v, want > 0", fwd.Velocity().Z)
	}
	if rev.Velocity().Z >= 0 {
		t.Errorf("reversed projectile vz = %v, want < 0", rev.Velocity().Z)
	}
}

func TestExplosionDoesNotCollide(t *testing.T) {
	m, _ := newTestMap(t)
	e := NewExplosion(m, SpawnOptions{Size: 1, Position: r3.Vec{Y: 3}})
	other := NewActor(m, ActorConfig{Position: at(0, 3, 0)})

	m.Update(0.01)

	if e.Body.Filter() != components.FilterNone {
		t.Errorf("explosion filter = %+v, want none", e.Body.Filter())
	}
	if other.State() != StateAlive {
		t.Errorf("overlapping actor state = %v, want alive", other.State())
	}
	if math.Abs(other.Position().X) > 1e-9 {
		t.Errorf("overlapping actor pushed to %+v", other.Position())
	}
	if got, want := e.Lifespan(), m.Config().Explosion.Lifespan-0.01; math.Abs(got-want) > 1e-9 {
		t.Errorf("explosion lifespan = %v, want %v", got, want)
	}
}

func TestGunFiresOnInterval(t *testing.T) {
	m, counts := newTestMap(t)
	cfg := m.Config().Gun
	g := NewGun(m, GunOptions{SpawnOptions: SpawnOptions{Size: 0.5, Position: r3.Vec{Y: 2}}})

	if m.World().Contains(g.Body) {
		t.Error("gun should be a ghost")
	}

	dt := 0.5
	steps := int(cfg.FireInterval / dt)
	for i := 0; i < steps-1; i++ {
		m.Update(dt)
	}
	if g.Shots() != 0 {
		t.Fatalf("fired early after %d steps", steps-1)
	}
	m.Update(dt)
	if g.Shots() != 1 {
		t.Fatalf("shots = %d, want 1", g.Shots())
	}
	if got := countLabel(m, LabelProjectile); got != 1 {
		t.Errorf("projectiles = %d, want 1", got)
	}
	if counts[telemetry.EventShot] != 1 {
		t.Errorf("shot events = %d, want 1", counts[telemetry.EventShot])
	}

	for g.State() == StateAlive {
		m.Update(dt)
	}
	if g.Shots() != 1 {
		t.Errorf("shots after death = %d, want 1", g.Shots())
	}
}

func TestGunUsesCasterVelocity(t *testing.T) {
	m, _ := newTestMap(t)
	vel := r3.Vec{X: 3}
	caster := NewActor(m, ActorConfig{Ghost: true, Position: at(0, 2, 0), Velocity: &vel})
	color := components.RGB(255, 0, 0)
	g := NewGun(m, GunOptions{
		SpawnOptions: SpawnOptions{
			Size:     0.4,
			Position: r3.Vec{Y: 2},
			Filter:   components.FilterPlayer,
			Color:    &color,
		},
		Caster: caster,
	})

	g.control.fire(g.Actor)

	var p *Actor
	for _, a := range m.Actors() {
		if a.Label == LabelProjectile {
			p = a
		}
	}
	if p == nil {
		t.Fatal("no projectile spawned")
	}
	if p.Velocity() != vel {
		t.Errorf("projectile velocity = %+v, want %+v", p.Velocity(), vel)
	}
	if p.Body.Filter() != components.FilterPlayer {
		t.Errorf("projectile filter = %+v, want player", p.Body.Filter())
	}
	if p.Color != color {
		t.Errorf("projectile color = %+v, want %+v", p.Color, color)
	}
	if p.Shape.Size != 0.4 {
		t.Errorf("projectile size = %v, want 0.4", p.Shape.Size)
	}
}

func TestGunRetrigger(t *testing.T) {
	m, _ := newTestMap(t)
	g := NewGun(m, GunOptions{SpawnOptions: SpawnOptions{Size: 0.5, Lifespan: 1}})

	m.Update(0.6)
	if !g.Retrigger() {
		t.Fatal("live gun refused retrigger")
	}
	if got := g.Lifespan(); got != 1 {
		t.Errorf("lifespan after retrigger = %v, want 1", got)
	}

	g.Kill()
	if g.Retrigger() {
		t.Error("killed gun accepted retrigger")
	}
}

func TestGunFollowsAnchor(t *testing.T) {
	m, _ := newTestMap(t)
	hand := &Hand{Position: r3.Vec{Y: 1}}
	g := NewGun(m, GunOptions{SpawnOptions: SpawnOptions{Size: 0.5}, AttachedTo: hand})

	hand.Position = r3.Vec{X: 1, Y: 2, Z: 3}
	m.Update(0.1)

	if g.Position() != hand.Position {
		t.Errorf("gun at %+v, want %+v", g.Position(), hand.Position)
	}
}

func TestDetune(t *testing.T) {
	tests := []struct {
		r, want float64
	}{
		{0, 5000},
		{5, 0},
		{0.25, 4750},
	}
	for _, tt := range tests {
		if got := detune(tt.r); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("detune(%v) = %v, want %v", tt.r, got, tt.want)
		}
	}
}
