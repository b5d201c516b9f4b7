package effects

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/conjure/components"
)

// State is the load state of an effect handle.
type State uint8

const (
	StateUnloaded State = iota
	StateLoading
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUnloaded:
		return "unloaded"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Particle is one live sprite.
type Particle struct {
	Position r3.Vec
	Velocity r3.Vec
	Rotation r3.Vec
	Age      float64
	Life     float64
	Scale    float64
	Alpha    float64
	Color    components.Color

	driftIn float64
}

// Effect is a handle to a particle emitter. Every method is safe to call in
// any state; operations that need a loaded emitter are skipped until Poll
// marks it ready.
type Effect struct {
	lib    *Library
	kind   string
	params Params
	state  State
	wait   int

	s         settings
	position  r3.Vec
	spin      r3.Vec // accumulated emitter rotation
	stopped   bool
	untilEmit float64
	particles []Particle
	rng       *rand.Rand
}

// Kind returns the template name.
func (e *Effect) Kind() string { return e.kind }

// State returns the load state.
func (e *Effect) State() State { return e.state }

// Ready reports whether the emitter is loaded.
func (e *Effect) Ready() bool { return e.state == StateReady }

// Stopped reports whether emission has been stopped.
func (e *Effect) Stopped() bool { return e.stopped }

// Position returns the emitter position.
func (e *Effect) Position() r3.Vec { return e.position }

// SetPosition moves the emitter. Already emitted particles stay where they are.
func (e *Effect) SetPosition(p r3.Vec) { e.position = p }

// Particles returns the live particles. The slice must not be modified.
func (e *Effect) Particles() []Particle { return e.particles }

// HasParticles reports whether any particle is alive. Effects that are not
// loaded have none.
func (e *Effect) HasParticles() bool {
	return e.state == StateReady && len(e.particles) > 0
}

// Stop ends emission; live particles finish their lifetime.
func (e *Effect) Stop() { e.stopped = true }

// Delete drops every particle and releases the emitter. A pending load is
// cancelled.
func (e *Effect) Delete() {
	e.particles = nil
	e.stopped = true
	if e.state == StateLoading || e.state == StateReady {
		e.state = StateUnloaded
	}
	if e.lib != nil {
		e.lib.forget(e)
	}
}

// Update emits new particles and advances live ones.
func (e *Effect) Update(dt float64) {
	if e.state != StateReady || dt <= 0 {
		return
	}
	s := &e.s

	if !e.stopped {
		e.spin = r3.Add(e.spin, r3.Scale(dt, s.emitterRotate))
		e.untilEmit -= dt
		for e.untilEmit <= 0 {
			n := s.particlesMin
			if s.particlesMax > s.particlesMin {
				n += e.rng.Intn(s.particlesMax - s.particlesMin + 1)
			}
			for i := 0; i < n; i++ {
				e.emit()
			}
			e.untilEmit += between(e.rng, s.intervalMin, s.intervalMax)
		}
	}

	alive := 0
	for i := range e.particles {
		p := &e.particles[i]

		p.Age += dt
		if p.Age >= p.Life {
			continue
		}

		t := p.Age / p.Life
		p.Alpha = lerp(s.alphaA, s.alphaB, t)
		p.Scale = lerp(s.scaleA, s.scaleB, t)
		p.Color = s.colorA.Lerp(s.colorB, easeOutCubic(t))

		p.driftIn -= dt
		if p.driftIn <= 0 && s.drift != (r3.Vec{}) {
			p.Velocity = r3.Add(p.Velocity, r3.Vec{
				X: (e.rng.Float64()*2 - 1) * s.drift.X,
				Y: (e.rng.Float64()*2 - 1) * s.drift.Y,
				Z: (e.rng.Float64()*2 - 1) * s.drift.Z,
			})
			p.driftIn = s.driftDelay
		}

		acc := s.force
		if s.spring > 0 {
			acc = r3.Add(acc, r3.Scale(s.spring, r3.Sub(e.position, p.Position)))
			p.Velocity = r3.Scale(math.Max(0, 1-s.springFriction*dt), p.Velocity)
		}
		p.Velocity = r3.Add(p.Velocity, r3.Scale(dt, acc))
		p.Position = r3.Add(p.Position, r3.Scale(dt, p.Velocity))
		p.Rotation = r3.Add(p.Rotation, r3.Scale(dt, s.rotate))

		// Keep particle
		e.particles[alive] = e.particles[i]
		alive++
	}
	e.particles = e.particles[:alive]
}

func (e *Effect) emit() {
	if e.lib != nil && len(e.particles) >= e.lib.maxParticles {
		return
	}
	s := &e.s

	dir := components.Rotate(components.FromAxisAngle(e.spin, r3.Norm(e.spin)), s.radialDir)
	spread := math.Min(s.radialSpread, 180) / 180
	dir = r3.Add(dir, r3.Scale(spread*2, randomUnit(e.rng)))
	if r3.Norm(dir) > 0 {
		dir = r3.Unit(dir)
	}

	life := between(e.rng, s.lifeMin, s.lifeMax)
	e.particles = append(e.particles, Particle{
		Position: r3.Add(e.position, r3.Scale(s.radius*e.rng.Float64(), randomUnit(e.rng))),
		Velocity: r3.Scale(s.radialSpeed, dir),
		Life:     life,
		Scale:    s.scaleA,
		Alpha:    s.alphaA,
		Color:    s.colorA,
		driftIn:  s.driftDelay,
	})
}

func between(rng *rand.Rand, lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + rng.Float64()*(hi-lo)
}

func randomUnit(rng *rand.Rand) r3.Vec {
	z := rng.Float64()*2 - 1
	a := rng.Float64() * 2 * math.Pi
	r := math.Sqrt(1 - z*z)
	return r3.Vec{X: r * math.Cos(a), Y: r * math.Sin(a), Z: z}
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func easeOutCubic(t float64) float64 {
	u := 1 - t
	return 1 - u*u*u
}
