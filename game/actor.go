package game

import (
	"log/slog"
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/conjure/audio"
	"github.com/pthm-cable/conjure/components"
	"github.com/pthm-cable/conjure/debounce"
	"github.com/pthm-cable/conjure/effects"
	"github.com/pthm-cable/conjure/physics"
	"github.com/pthm-cable/conjure/render"
)

// State is an actor's lifecycle stage. Actors only move forward.
type State uint8

const (
	StateAlive State = iota
	StateKilled
	StateDeleted
)

func (s State) String() string {
	switch s {
	case StateAlive:
		return "alive"
	case StateKilled:
		return "killed"
	case StateDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// ParticleEffect is the part of an effect handle an actor drives.
type ParticleEffect interface {
	SetPosition(p r3.Vec)
	Update(dt float64)
	Stop()
	Delete()
	HasParticles() bool
}

// SoundHandle is a sound the actor stops when it is killed.
type SoundHandle interface {
	Kill()
}

// Behavior adds per-tick logic to an actor. It runs at the end of
// Actor.Update, after lifespan, pose and timers have advanced.
type Behavior interface {
	Update(a *Actor, dt float64)
}

// Controller is an AI entry in the map's AI list. Kill deregisters any
// steering state; killed controllers are dropped by the next map update.
type Controller interface {
	Update(dt float64)
	Kill()
	Killed() bool
}

// ActorConfig describes a new actor. The zero value is a small immortal
// sphere at a random spot near the origin.
type ActorConfig struct {
	// Label names the actor kind in logs and telemetry. Default "actor".
	Label string

	// Shape defaults to components.DefaultShape (sphere of size 0.1).
	Shape components.Shape

	// Position defaults to a random point in [-r,r]×[0,h]×[-r,r], with r and
	// h from sim.spawn_radius and sim.spawn_height.
	Position *r3.Vec

	// Velocity defaults to rest.
	Velocity *r3.Vec

	// Orientation defaults to identity.
	Orientation quat.Number

	// Lifespan in seconds. Nil means the actor never expires on its own.
	Lifespan *float64

	// Mass defaults to the shape radius.
	Mass float64

	// Filter defaults to components.FilterWorld.
	Filter components.CollisionFilter

	// Color defaults to white.
	Color *components.Color

	// Ghost actors keep their body and mesh out of the world and scene.
	Ghost bool

	// Invisible hides the mesh while keeping the body.
	Invisible bool

	// NoDie actors ignore Kill and Expire and are never deleted.
	NoDie bool

	FixedRotation bool

	// AttachedTo makes the actor follow an anchor's world pose instead of
	// its body.
	AttachedTo render.Anchor

	// AI is notified when the actor is killed.
	AI Controller
}

// Actor is anything living in the map: one body, one mesh and the lights,
// sounds, particle effects, timers and behaviours attached to them.
type Actor struct {
	ID    uint64
	Label string
	Shape components.Shape
	Color components.Color
	Body  *physics.Body
	Mesh  *render.Mesh

	m          *Map
	lifespan   float64
	mortal     bool
	noDie      bool
	ghost      bool
	attachedTo render.Anchor
	ai         Controller
	state      State

	lights    []*render.Light
	sounds    []SoundHandle
	effects   []ParticleEffect
	timers    []*debounce.Timer
	behaviors []Behavior
}

// NewActor builds an actor from cfg and adds it to m.
func NewActor(m *Map, cfg ActorConfig) *Actor {
	cfg = m.sanitize(cfg)

	pos := m.randomSpawnPoint()
	if cfg.Position != nil {
		pos = *cfg.Position
	}
	var vel r3.Vec
	if cfg.Velocity != nil {
		vel = *cfg.Velocity
	}
	color := components.White
	if cfg.Color != nil {
		color = *cfg.Color
	}

	a := &Actor{
		Label:      cfg.Label,
		Shape:      cfg.Shape,
		Color:      color,
		m:          m,
		noDie:      cfg.NoDie,
		ghost:      cfg.Ghost,
		attachedTo: cfg.AttachedTo,
		ai:         cfg.AI,
	}
	if cfg.Lifespan != nil {
		a.lifespan = *cfg.Lifespan
		a.mortal = true
	}

	a.Body = physics.NewBody(physics.BodyConfig{
		Mass:           cfg.Mass,
		Shape:          cfg.Shape,
		Position:       pos,
		Orientation:    cfg.Orientation,
		Velocity:       vel,
		LinearDamping:  m.cfg.Actor.LinearDamping,
		AngularDamping: m.cfg.Actor.AngularDamping,
		FixedRotation:  cfg.FixedRotation,
		Filter:         cfg.Filter,
	})
	a.Body.UserData = a

	a.Mesh = render.NewMesh(cfg.Shape, color)
	a.Mesh.Opacity = 0
	a.Mesh.Visible = !cfg.Invisible
	a.Mesh.CastShadow = true
	a.Mesh.Position = pos
	a.Mesh.Orientation = a.Body.Orientation()

	m.AddActor(a, cfg.Ghost)
	return a
}

// sanitize replaces invalid config values with defaults.
func (m *Map) sanitize(cfg ActorConfig) ActorConfig {
	if cfg.Label == "" {
		cfg.Label = "actor"
	}
	if cfg.Shape.IsZero() {
		cfg.Shape = components.DefaultShape()
	} else if !(cfg.Shape.Size > 0) {
		slog.Warn("invalid_actor_config", "label", cfg.Label, "field", "shape.size", "value", cfg.Shape.Size)
		cfg.Shape.Size = components.DefaultShape().Size
	}
	if cfg.Shape.Kind != components.ShapeSphere {
		if !(cfg.Shape.Width > 0) {
			cfg.Shape.Width = components.DefaultShape().Width
		}
		if !(cfg.Shape.Height > 0) {
			cfg.Shape.Height = components.DefaultShape().Height
		}
	}
	if cfg.Mass == 0 {
		cfg.Mass = cfg.Shape.Radius()
	} else if cfg.Mass < 0 || math.IsNaN(cfg.Mass) {
		slog.Warn("invalid_actor_config", "label", cfg.Label, "field", "mass", "value", cfg.Mass)
		cfg.Mass = cfg.Shape.Radius()
	}
	if cfg.Position != nil && !finite(*cfg.Position) {
		slog.Warn("invalid_actor_config", "label", cfg.Label, "field", "position")
		cfg.Position = nil
	}
	if cfg.Velocity != nil && !finite(*cfg.Velocity) {
		slog.Warn("invalid_actor_config", "label", cfg.Label, "field", "velocity")
		cfg.Velocity = nil
	}
	if cfg.Lifespan != nil && math.IsNaN(*cfg.Lifespan) {
		slog.Warn("invalid_actor_config", "label", cfg.Label, "field", "lifespan")
		cfg.Lifespan = nil
	}
	return cfg
}

func finite(v r3.Vec) bool {
	for _, c := range [3]float64{v.X, v.Y, v.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// State returns the lifecycle stage.
func (a *Actor) State() State { return a.state }

// Map returns the map the actor lives in.
func (a *Actor) Map() *Map { return a.m }

// Ghost reports whether the actor stays out of the world and scene.
func (a *Actor) Ghost() bool { return a.ghost }

// NoDie reports whether the actor is immortal.
func (a *Actor) NoDie() bool { return a.noDie }

// Lifespan returns the remaining lifespan, or +Inf for immortal actors.
func (a *Actor) Lifespan() float64 {
	if !a.mortal || a.noDie {
		return math.Inf(1)
	}
	return a.lifespan
}

// SetLifespan makes the actor mortal with the given remaining time.
// Ignored for noDie actors and once killed.
func (a *Actor) SetLifespan(sec float64) {
	if a.noDie || a.state != StateAlive {
		return
	}
	a.lifespan = sec
	a.mortal = true
}

// Expire forces the lifespan to zero so the actor dies on its next update.
func (a *Actor) Expire() {
	if a.noDie {
		return
	}
	a.lifespan = 0
	a.mortal = true
}

// Position returns the body position.
func (a *Actor) Position() r3.Vec { return a.Body.Position() }

// Velocity returns the body velocity.
func (a *Actor) Velocity() r3.Vec { return a.Body.Velocity() }

// WorldPosition implements render.Anchor and steering.Target.
func (a *Actor) WorldPosition() r3.Vec { return a.Mesh.Position }

// WorldOrientation implements render.Anchor.
func (a *Actor) WorldOrientation() quat.Number { return a.Mesh.Orientation }

// Radius lets an actor serve as a steering obstacle.
func (a *Actor) Radius() float64 { return a.Shape.Radius() }

// AddEffect spawns a particle effect that follows the mesh.
func (a *Actor) AddEffect(kind string, p effects.Params) {
	if a.m.effects == nil {
		return
	}
	p.Position = a.Mesh.Position
	a.attachEffect(a.m.effects.Spawn(kind, p))
}

func (a *Actor) attachEffect(e ParticleEffect) {
	a.effects = append(a.effects, e)
}

// AddSound plays a clip anchored to the mesh.
func (a *Actor) AddSound(name string, opts audio.SoundOptions) {
	if a.m.audio == nil {
		return
	}
	if opts.Anchor == nil {
		opts.Anchor = a.Mesh
	}
	a.attachSound(a.m.audio.Play(name, opts))
}

func (a *Actor) attachSound(s SoundHandle) {
	a.sounds = append(a.sounds, s)
}

// AddLight parents l to the mesh.
func (a *Actor) AddLight(l *render.Light) {
	a.Mesh.AddLight(l)
	a.lights = append(a.lights, l)
}

// AddTimer creates a timer advanced by every update.
func (a *Actor) AddTimer(length float64) *debounce.Timer {
	t := debounce.New(length)
	a.timers = append(a.timers, t)
	return t
}

// AddBehavior appends b to the per-tick behaviours.
func (a *Actor) AddBehavior(b Behavior) {
	a.behaviors = append(a.behaviors, b)
}

// Effects returns the attached particle effects.
func (a *Actor) Effects() []ParticleEffect { return a.effects }

// Lights returns the attached lights.
func (a *Actor) Lights() []*render.Light { return a.lights }

// Update advances the actor by dt seconds.
func (a *Actor) Update(dt float64) {
	if a.mortal {
		a.lifespan -= dt
	}
	if a.Mesh.Opacity < 1 {
		a.Mesh.Opacity = math.Min(1, a.Mesh.Opacity+a.m.cfg.Actor.FadeInRate*dt)
	}

	if a.attachedTo != nil {
		pos, q := a.attachedTo.WorldPosition(), a.attachedTo.WorldOrientation()
		a.Mesh.Position, a.Mesh.Orientation = pos, q
		a.Body.SetPosition(pos)
		a.Body.SetOrientation(q)
	} else {
		a.Mesh.Position = a.Body.Position()
		a.Mesh.Orientation = a.Body.Orientation()
	}

	for _, e := range a.effects {
		e.SetPosition(a.Mesh.Position)
		e.Update(dt)
	}
	for _, t := range a.timers {
		t.Update(dt)
	}

	if a.ShouldBeKilled() {
		a.Kill()
	}

	for _, b := range a.behaviors {
		b.Update(a, dt)
	}
}

// Kill takes the actor out of the simulation: its body leaves the world,
// its mesh and lights leave the scene, effects stop emitting and sounds
// stop. Particles already emitted keep fading until Delete.
func (a *Actor) Kill() {
	if a.noDie || a.state != StateAlive {
		return
	}
	a.state = StateKilled
	a.lifespan = 0
	a.mortal = true

	if a.ai != nil {
		a.ai.Kill()
	}
	a.m.world.RemoveBody(a.Body)
	a.m.scene.Remove(a.Mesh)

	for _, l := range a.lights {
		a.Mesh.RemoveLight(l)
	}
	a.lights = nil

	for _, e := range a.effects {
		e.Stop()
	}
	for _, s := range a.sounds {
		s.Kill()
	}
	a.sounds = nil

	a.m.emitKill(a)
}

// Delete releases the particle effects. It kills the actor first if needed.
func (a *Actor) Delete() {
	if a.noDie || a.state == StateDeleted {
		return
	}
	a.Kill()
	for _, e := range a.effects {
		e.Delete()
	}
	a.effects = nil
	a.state = StateDeleted
	a.m.emitDelete(a)
}

// ShouldBeKilled reports whether the lifespan has run out.
func (a *Actor) ShouldBeKilled() bool {
	return a.mortal && !a.noDie && a.lifespan <= 0
}

// ShouldBeDeleted reports whether the actor is dead and its effects have no
// live particles left.
func (a *Actor) ShouldBeDeleted() bool {
	if !a.ShouldBeKilled() {
		return false
	}
	for _, e := range a.effects {
		if e.HasParticles() {
			return false
		}
	}
	return true
}
