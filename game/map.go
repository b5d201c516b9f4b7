package game

import (
	"math/rand"
	"slices"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/conjure/audio"
	"github.com/pthm-cable/conjure/components"
	"github.com/pthm-cable/conjure/config"
	"github.com/pthm-cable/conjure/effects"
	"github.com/pthm-cable/conjure/physics"
	"github.com/pthm-cable/conjure/render"
	"github.com/pthm-cable/conjure/steering"
	"github.com/pthm-cable/conjure/telemetry"
)

// MapOptions holds the shared services a map hands to its actors. Effects
// and Audio may be nil, in which case actors skip particles and sound.
type MapOptions struct {
	Config  *config.Config
	Rand    *rand.Rand
	Effects *effects.Library
	Audio   *audio.Engine
}

// Map owns everything simulated in one session: the physics world, the
// scene, the live actors, the AI controllers and the steering registry.
type Map struct {
	cfg      *config.Config
	rng      *rand.Rand
	world    *physics.World
	scene    *render.Scene
	steering *steering.EntityManager
	effects  *effects.Library
	audio    *audio.Engine

	ground     *physics.Body
	groundMesh *render.Mesh

	actors    []*Actor
	ais       []Controller
	obstacles []steering.Obstacle

	player *Player
	nextID uint64
	tick   int32

	// OnEvent receives lifecycle events as they happen.
	OnEvent func(telemetry.Event)

	// OnPhase is called as each update stage begins.
	OnPhase func(name string)
}

// NewMap creates the world, scene and static ground plane.
func NewMap(opts MapOptions) *Map {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}

	m := &Map{
		cfg: cfg,
		rng: rng,
		world: physics.NewWorld(physics.Config{
			Gravity:     r3.Vec{Y: cfg.Physics.Gravity},
			Restitution: cfg.Physics.Restitution,
		}),
		scene:    render.NewScene(),
		steering: steering.NewEntityManager(cfg.Agent.NeighborhoodRadius),
		effects:  opts.Effects,
		audio:    opts.Audio,
	}

	groundPos := r3.Vec{X: -5}
	m.ground = physics.NewPlane(groundPos, r3.Vec{Y: 1}, components.FilterWorld)
	m.world.AddBody(m.ground)

	size := cfg.Sim.GroundSize
	m.groundMesh = render.NewMesh(components.Shape{Kind: components.ShapeBox, Size: size, Width: size}, components.RGB(0xaa, 0xaa, 0xaa))
	m.groundMesh.Position = groundPos
	m.scene.Ground = m.groundMesh

	return m
}

// Config returns the configuration the map was built with.
func (m *Map) Config() *config.Config { return m.cfg }

// Rand returns the map's random source.
func (m *Map) Rand() *rand.Rand { return m.rng }

// World returns the physics world.
func (m *Map) World() *physics.World { return m.world }

// Scene returns the render scene.
func (m *Map) Scene() *render.Scene { return m.scene }

// Steering returns the steering registry.
func (m *Map) Steering() *steering.EntityManager { return m.steering }

// Ground returns the static ground body.
func (m *Map) Ground() *physics.Body { return m.ground }

// Player returns the player, or nil before one is created.
func (m *Map) Player() *Player { return m.player }

// Actors returns the live actors. The slice must not be modified.
func (m *Map) Actors() []*Actor { return m.actors }

// AIs returns the registered controllers.
func (m *Map) AIs() []Controller { return m.ais }

// Tick returns the number of updates run so far.
func (m *Map) Tick() int32 { return m.tick }

// AddActor assigns an ID and appends a to the live list. Non-ghost actors
// also enter the world and scene.
func (m *Map) AddActor(a *Actor, ghost bool) {
	m.nextID++
	a.ID = m.nextID
	if !ghost {
		m.world.AddBody(a.Body)
		m.scene.Add(a.Mesh)
	}
	m.actors = append(m.actors, a)
	m.emit(telemetry.NewSpawnEvent(m.tick, a.ID, a.Label))
}

// AddAI registers a controller for per-tick updates.
func (m *Map) AddAI(c Controller) {
	m.ais = append(m.ais, c)
}

// AddObstacle makes o visible to agent avoidance and vision.
func (m *Map) AddObstacle(o steering.Obstacle) {
	m.obstacles = append(m.obstacles, o)
}

// Obstacles returns the registered obstacles.
func (m *Map) Obstacles() []steering.Obstacle { return m.obstacles }

// Update advances the whole simulation by dt seconds. Non-positive dt is
// ignored.
func (m *Map) Update(dt float64) {
	if dt <= 0 {
		return
	}
	m.tick++

	m.phase(telemetry.PhasePhysics)
	m.world.Step(dt)
	m.phase(telemetry.PhaseSteering)
	m.steering.Update(dt)
	m.phase(telemetry.PhaseAI)
	m.updateAIs(dt)
	m.phase(telemetry.PhaseActors)
	m.updateActors(dt)
}

func (m *Map) phase(name string) {
	if m.OnPhase != nil {
		m.OnPhase(name)
	}
}

// updateAIs steps every controller, then drops the killed ones.
func (m *Map) updateAIs(dt float64) {
	for _, c := range m.ais {
		c.Update(dt)
	}
	live := m.ais[:0]
	for _, c := range m.ais {
		if !c.Killed() {
			live = append(live, c)
		}
	}
	clear(m.ais[len(live):])
	m.ais = live
}

// updateActors sweeps the live list from the back so that swap-removal
// never skips an actor. Actors appended during the sweep wait for the next
// tick.
func (m *Map) updateActors(dt float64) {
	for i := len(m.actors) - 1; i >= 0; i-- {
		a := m.actors[i]
		a.Update(dt)
		if !a.ShouldBeDeleted() {
			continue
		}
		a.Delete()
		m.dropObstacle(a)
		last := len(m.actors) - 1
		m.actors[i] = m.actors[last]
		m.actors[last] = nil
		m.actors = m.actors[:last]
	}
}

// dropObstacle replaces the obstacle slice rather than shifting it in place;
// agents hold the previous slice until their next update.
func (m *Map) dropObstacle(a *Actor) {
	if i := slices.Index(m.obstacles, steering.Obstacle(a)); i >= 0 {
		m.obstacles = slices.Delete(slices.Clone(m.obstacles), i, i+1)
	}
}

// Clear kills and deletes every mortal actor and AI controller at once.
// The player survives.
func (m *Map) Clear() {
	for _, c := range m.ais {
		c.Kill()
	}
	m.ais = m.ais[:0]
	live := m.actors[:0]
	for _, a := range m.actors {
		if a.noDie {
			live = append(live, a)
			continue
		}
		a.Delete()
	}
	clear(m.actors[len(live):])
	m.actors = live
	m.obstacles = nil
}

// TargetPosition is where AIs steer: the player's body, or the origin when
// there is no player.
func (m *Map) TargetPosition() r3.Vec {
	if m.player == nil {
		return r3.Vec{}
	}
	return m.player.Position()
}

// target is a steering.Target that always resolves to the current player.
type target struct{ m *Map }

func (t target) WorldPosition() r3.Vec { return t.m.TargetPosition() }

// randomSpawnPoint returns a point in the default spawn box.
func (m *Map) randomSpawnPoint() r3.Vec {
	r, h := m.cfg.Sim.SpawnRadius, m.cfg.Sim.SpawnHeight
	return r3.Vec{
		X: m.rng.Float64()*2*r - r,
		Y: m.rng.Float64() * h,
		Z: m.rng.Float64()*2*r - r,
	}
}

// Population counts live objects for telemetry.
func (m *Map) Population() telemetry.Population {
	pop := telemetry.Population{
		Actors: len(m.actors),
		AIs:    len(m.ais),
		Bodies: m.world.NumBodies(),
		Meshes: m.scene.Len(),
	}
	if m.effects != nil {
		pop.Particles = m.effects.ParticleCount()
	}
	if m.audio != nil {
		pop.Sounds = m.audio.Playing()
	}
	return pop
}

func (m *Map) emit(e telemetry.Event) {
	if m.OnEvent != nil {
		m.OnEvent(e)
	}
}

func (m *Map) emitKill(a *Actor) {
	m.emit(telemetry.NewKillEvent(m.tick, a.ID, a.Label))
}

func (m *Map) emitDelete(a *Actor) {
	m.emit(telemetry.NewDeleteEvent(m.tick, a.ID, a.Label))
}
