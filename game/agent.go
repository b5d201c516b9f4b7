package game

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/conjure/components"
	"github.com/pthm-cable/conjure/steering"
)

// Agent is a flocking cone steered by a vehicle in the map's steering
// registry. The vehicle and the body mirror each other every tick.
type Agent struct {
	actor   *Actor
	vehicle *steering.Vehicle
	avoid   *steering.ObstacleAvoidance
	killed  bool
}

// NewAgent creates an agent at pos and registers its vehicle and controller.
func NewAgent(m *Map, pos r3.Vec) *Agent {
	cfg := m.cfg.Agent
	ag := &Agent{}

	shape := components.DefaultShape()
	shape.Kind = components.ShapeCone
	ag.actor = NewActor(m, ActorConfig{
		Label:         LabelAgent,
		Shape:         shape,
		Position:      &pos,
		Mass:          1,
		Filter:        components.FilterAgent,
		FixedRotation: true,
		AI:            ag,
	})

	v := steering.NewVehicle()
	v.Position = pos
	v.MaxSpeed = cfg.MaxSpeed
	v.UpdateNeighborhood = true
	v.NeighborhoodRadius = cfg.NeighborhoodRadius
	v.BoundingRadius = cfg.BoundingRadius
	v.Smoother = steering.NewSmoother(cfg.Smoothing)

	alignment := steering.NewAlignment()
	alignment.Factor = cfg.Alignment
	cohesion := steering.NewCohesion()
	cohesion.Factor = cfg.Cohesion
	separation := steering.NewSeparation()
	separation.Factor = cfg.Separation
	ag.avoid = steering.NewObstacleAvoidance(m.Obstacles())
	ag.avoid.Factor = cfg.Avoidance

	v.Add(alignment)
	v.Add(cohesion)
	v.Add(separation)
	v.Add(steering.NewSeek(target{m}))
	v.Add(ag.avoid)

	v.Vision = steering.NewVision(v, cfg.VisionRange, m.cfg.Derived.VisionFOVRad)
	v.Vision.Obstacles = m.Obstacles()

	v.OnSync = ag.sync
	ag.vehicle = v

	m.steering.Add(v)
	m.AddAI(ag)
	return ag
}

// sync mirrors the vehicle onto the body and the body back onto the vehicle.
func (ag *Agent) sync(v *steering.Vehicle) {
	body := ag.actor.Body
	body.SetVelocity(v.Velocity)
	v.Velocity = body.Velocity()
	v.Position = body.Position()
	body.SetOrientation(v.Rotation)
}

// Actor returns the agent's body actor.
func (ag *Agent) Actor() *Actor { return ag.actor }

// Vehicle returns the steering vehicle.
func (ag *Agent) Vehicle() *steering.Vehicle { return ag.vehicle }

// Update keeps the agent aloft and refreshes what it can see.
func (ag *Agent) Update(dt float64) {
	if ag.killed {
		return
	}
	m := ag.actor.m
	ag.actor.Body.ApplyLocalImpulse(r3.Vec{Y: m.cfg.Actor.Lift * dt}, r3.Vec{})
	ag.avoid.Obstacles = m.Obstacles()
	ag.vehicle.Vision.Obstacles = m.Obstacles()
}

// Kill deregisters the vehicle. The actor follows its own lifecycle.
func (ag *Agent) Kill() {
	if ag.killed {
		return
	}
	ag.killed = true
	ag.actor.m.steering.Remove(ag.vehicle)
}

// Killed reports whether the controller is finished.
func (ag *Agent) Killed() bool { return ag.killed }
