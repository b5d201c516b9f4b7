package game

import (
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/conjure/audio"
	"github.com/pthm-cable/conjure/components"
	"github.com/pthm-cable/conjure/debounce"
	"github.com/pthm-cable/conjure/effects"
	"github.com/pthm-cable/conjure/physics"
	"github.com/pthm-cable/conjure/render"
	"github.com/pthm-cable/conjure/telemetry"
)

// Actor labels used in telemetry.
const (
	LabelGun        = "gun"
	LabelProjectile = "projectile"
	LabelExplosion  = "explosion"
	LabelAgent      = "agent"
	LabelDriver     = "driver"
	LabelPlayer     = "player"
	LabelBox        = "box"
	LabelThrown     = "thrown"
)

// SpawnOptions are shared by the gun, projectile and explosion constructors.
// Size is the raw gesture size; the sphere radius is half of it.
type SpawnOptions struct {
	Size        float64
	Position    r3.Vec
	Orientation quat.Number
	Filter      components.CollisionFilter
	Color       *components.Color // default ColorFromSize(Size)

	// Lifespan overrides the configured default when positive.
	Lifespan float64
}

func (o SpawnOptions) color() components.Color {
	if o.Color != nil {
		return *o.Color
	}
	return components.ColorFromSize(o.Size)
}

func (o SpawnOptions) lifespan(def float64) *float64 {
	if o.Lifespan > 0 {
		return &o.Lifespan
	}
	return &def
}

// detune shifts smaller spells up in pitch, in cents.
func detune(radius float64) float64 {
	return (5 - radius) * 1000
}

// maybeLight attaches a point light with probability radius/15.
func maybeLight(a *Actor, intensity float64) {
	if a.m.rng.Float64()*15 < a.Shape.Radius() {
		a.AddLight(render.NewPointLight(a.Color, intensity, 0, 2))
	}
}

// GunOptions configures a gun.
type GunOptions struct {
	SpawnOptions

	// AttachedTo makes the gun follow a hand or a driver's mesh.
	AttachedTo render.Anchor

	// Caster lends its velocity to every projectile fired.
	Caster *Actor

	// Reverse fires projectiles backwards along the gun's local Z.
	Reverse bool
}

// Gun is a ghost emitter that fires a projectile every fire interval until
// its lifespan runs out.
type Gun struct {
	*Actor
	control *FireControl
}

// FireControl is the gun behaviour.
type FireControl struct {
	timer    *debounce.Timer
	lifespan float64
	speed    float64
	reverse  bool
	caster   *Actor
	shots    int
}

// NewGun creates a gun and adds it to m.
func NewGun(m *Map, opts GunOptions) *Gun {
	cfg := m.cfg.Gun
	color := opts.color()
	pos := opts.Position
	life := opts.lifespan(cfg.Lifespan)

	a := NewActor(m, ActorConfig{
		Label:         LabelGun,
		Shape:         components.Shape{Kind: components.ShapeSphere, Size: opts.Size},
		Position:      &pos,
		Orientation:   opts.Orientation,
		Lifespan:      life,
		Filter:        opts.Filter,
		Color:         &color,
		Ghost:         true,
		FixedRotation: true,
		AttachedTo:    opts.AttachedTo,
	})
	a.Body.SetLinearDamping(0)

	control := &FireControl{
		timer:    a.AddTimer(cfg.FireInterval),
		lifespan: *life,
		speed:    cfg.Speed,
		reverse:  opts.Reverse,
		caster:   opts.Caster,
	}
	a.AddBehavior(control)

	size := a.Shape.Size
	a.AddEffect("gun1", effects.Params{
		ColorA:        &color,
		UseSpring:     true,
		EmitterRotate: r3.Vec{X: 1, Y: 1, Z: 1},
		Drift:         r3.Vec{X: 5 * size, Y: 5 * size, Z: 5 * size},
		Rotate:        r3.Vec{X: 10, Y: 10, Z: 10},
		ScaleA:        0.3 * size,
		ScaleB:        0.2 * size,
		RadialSpeed:   3 * size,
	})
	a.AddSound("cast01", audio.SoundOptions{Detune: detune(a.Shape.Radius())})

	return &Gun{Actor: a, control: control}
}

// Retrigger restores the full lifespan of a live gun.
func (g *Gun) Retrigger() bool {
	if g.State() != StateAlive {
		return false
	}
	g.SetLifespan(g.control.lifespan)
	return true
}

// Shots returns the number of projectiles fired.
func (g *Gun) Shots() int { return g.control.shots }

// Update fires when the timer is full and the gun has not run out.
func (f *FireControl) Update(a *Actor, _ float64) {
	if f.timer.TryFireAndReset() && !a.ShouldBeKilled() {
		f.fire(a)
	}
}

func (f *FireControl) fire(a *Actor) {
	var vel r3.Vec
	if f.caster != nil {
		vel = f.caster.Velocity()
	}
	NewProjectile(a.m, ProjectileOptions{
		SpawnOptions: SpawnOptions{
			Size:        a.Shape.Size,
			Position:    a.Body.Position(),
			Orientation: a.Body.Orientation(),
			Filter:      a.Body.Filter(),
			Color:       &a.Color,
		},
		Velocity: vel,
		Speed:    f.speed,
		Reverse:  f.reverse,
	})
	f.shots++
	a.m.emit(telemetry.Event{Type: telemetry.EventShot, Tick: a.m.tick, ActorID: a.ID, Label: a.Label})
}

// ProjectileOptions configures a projectile.
type ProjectileOptions struct {
	SpawnOptions
	Velocity r3.Vec
	Speed    float64 // 0 uses projectile.speed
	Reverse  bool
}

// Projectile is a self-propelled actor that explodes once, on contact or
// when its fuse burns down.
type Projectile struct {
	*Actor
	fuse *Explosive
}

// Explosive is the projectile behaviour.
type Explosive struct {
	speed     float64
	lift      float64
	fuse      float64
	exploding bool
	exploded  bool
}

// NewProjectile creates a projectile and adds it to m.
func NewProjectile(m *Map, opts ProjectileOptions) *Projectile {
	cfg := m.cfg.Projectile
	color := opts.color()
	pos, vel := opts.Position, opts.Velocity

	a := NewActor(m, ActorConfig{
		Label:         LabelProjectile,
		Shape:         components.Shape{Kind: components.ShapeSphere, Size: opts.Size},
		Position:      &pos,
		Velocity:      &vel,
		Orientation:   opts.Orientation,
		Lifespan:      opts.lifespan(cfg.Lifespan),
		Filter:        opts.Filter,
		Color:         &color,
		Invisible:     true,
		FixedRotation: true,
	})
	a.Body.SetLinearDamping(0)

	speed := opts.Speed
	if speed == 0 {
		speed = cfg.Speed
	}
	if opts.Reverse {
		speed = -speed
	}
	fuse := &Explosive{speed: speed, lift: m.cfg.Actor.Lift, fuse: cfg.FuseRemaining}
	a.AddBehavior(fuse)

	a.Body.OnCollide(func(ev physics.CollisionEvent) {
		fuse.exploding = true
		if other, ok := ev.Other.UserData.(*Actor); ok {
			other.Expire()
		}
	})

	size := a.Shape.Size
	a.AddEffect("fireball", effects.Params{
		ColorA: &color,
		ScaleA: size * 0.5,
		ScaleB: size,
	})
	r := a.Shape.Radius()
	maybeLight(a, r*r)
	a.AddSound("woosh01", audio.SoundOptions{
		Loop:     true,
		Detune:   detune(r),
		Duration: cfg.SoundDuration,
	})

	return &Projectile{Actor: a, fuse: fuse}
}

// Exploding reports whether the projectile has been triggered.
func (p *Projectile) Exploding() bool { return p.fuse.exploding }

// Exploded reports whether the projectile has spawned its explosion.
func (p *Projectile) Exploded() bool { return p.fuse.exploded }

// Detonate triggers the projectile; the explosion follows on its next update.
func (p *Projectile) Detonate() { p.fuse.exploding = true }

// Update pushes the projectile forward and spawns its single explosion.
func (e *Explosive) Update(a *Actor, dt float64) {
	a.Body.ApplyLocalImpulse(r3.Vec{Y: e.lift * dt, Z: e.speed * dt}, r3.Vec{})

	if a.Lifespan() < e.fuse {
		e.exploding = true
	}
	if !e.exploding || e.exploded {
		return
	}
	NewExplosion(a.m, SpawnOptions{
		Size:        a.Shape.Size,
		Position:    a.Body.Position(),
		Orientation: a.Body.Orientation(),
		Color:       &a.Color,
	})
	e.exploded = true
	a.Expire()
	a.m.emit(telemetry.Event{Type: telemetry.EventExplosion, Tick: a.m.tick, ActorID: a.ID, Label: a.Label})
}

// NewExplosion creates a short-lived, non-colliding burst of particles,
// light and sound.
func NewExplosion(m *Map, opts SpawnOptions) *Actor {
	color := opts.color()
	pos := opts.Position

	a := NewActor(m, ActorConfig{
		Label:         LabelExplosion,
		Shape:         components.Shape{Kind: components.ShapeSphere, Size: opts.Size},
		Position:      &pos,
		Orientation:   opts.Orientation,
		Lifespan:      opts.lifespan(m.cfg.Explosion.Lifespan),
		Filter:        components.FilterNone,
		Color:         &color,
		Invisible:     true,
		FixedRotation: true,
	})
	a.Body.SetLinearDamping(0)

	size := a.Shape.Size
	r := a.Shape.Radius()
	a.AddEffect("fireball", effects.Params{
		ColorA:       &color,
		ScaleA:       size * 2,
		ScaleB:       size,
		RadialY:      1 + 10*r*r,
		RadialSpeed:  14 * r * r,
		ParticlesMin: 2,
	})
	maybeLight(a, r*r*5)
	a.AddSound("explosion01", audio.SoundOptions{Detune: detune(r)})

	return a
}
