package steering

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r3"
)

// Weighting carries the settings every behaviour shares.
type Weighting struct {
	Factor   float64
	Disabled bool
}

// Weight implements Behavior.
func (w *Weighting) Weight() float64 { return w.Factor }

// Active implements Behavior.
func (w *Weighting) Active() bool { return !w.Disabled }

// seek returns the force steering v toward p at full speed.
func seek(v *Vehicle, p r3.Vec) r3.Vec {
	to := r3.Sub(p, v.Position)
	if r3.Norm(to) == 0 {
		return r3.Vec{}
	}
	desired := r3.Scale(v.MaxSpeed, r3.Unit(to))
	return r3.Sub(desired, v.Velocity)
}

// Alignment steers toward the average heading of the neighbours.
type Alignment struct{ Weighting }

// NewAlignment returns an alignment behaviour with weight 1.
func NewAlignment() *Alignment { return &Alignment{Weighting{Factor: 1}} }

// Calculate implements Behavior.
func (b *Alignment) Calculate(v *Vehicle, _ float64) r3.Vec {
	if len(v.Neighbors) == 0 {
		return r3.Vec{}
	}
	var avg r3.Vec
	for _, n := range v.Neighbors {
		avg = r3.Add(avg, n.Heading())
	}
	avg = r3.Scale(1/float64(len(v.Neighbors)), avg)
	return r3.Sub(avg, v.Heading())
}

// Cohesion steers toward the centre of the neighbours.
type Cohesion struct{ Weighting }

// NewCohesion returns a cohesion behaviour with weight 1.
func NewCohesion() *Cohesion { return &Cohesion{Weighting{Factor: 1}} }

// Calculate implements Behavior.
func (b *Cohesion) Calculate(v *Vehicle, _ float64) r3.Vec {
	if len(v.Neighbors) == 0 {
		return r3.Vec{}
	}
	var centre r3.Vec
	for _, n := range v.Neighbors {
		centre = r3.Add(centre, n.Position)
	}
	centre = r3.Scale(1/float64(len(v.Neighbors)), centre)
	return seek(v, centre)
}

// Separation pushes away from neighbours, harder the closer they are.
type Separation struct{ Weighting }

// NewSeparation returns a separation behaviour with weight 1.
func NewSeparation() *Separation { return &Separation{Weighting{Factor: 1}} }

// Calculate implements Behavior.
func (b *Separation) Calculate(v *Vehicle, _ float64) r3.Vec {
	var force r3.Vec
	for _, n := range v.Neighbors {
		away := r3.Sub(v.Position, n.Position)
		d := r3.Norm(away)
		if d == 0 {
			continue
		}
		// unit vector scaled by 1/d
		force = r3.Add(force, r3.Scale(1/(d*d), away))
	}
	return force
}

// Seek steers toward a target at full speed.
type Seek struct {
	Weighting
	Target Target
}

// NewSeek returns a seek behaviour with weight 1.
func NewSeek(target Target) *Seek { return &Seek{Weighting: Weighting{Factor: 1}, Target: target} }

// Calculate implements Behavior.
func (b *Seek) Calculate(v *Vehicle, _ float64) r3.Vec {
	if b.Target == nil {
		return r3.Vec{}
	}
	return seek(v, b.Target.WorldPosition())
}

// Flee steers away from a target once it is within PanicDistance.
type Flee struct {
	Weighting
	Target        Target
	PanicDistance float64
}

// NewFlee returns a flee behaviour with weight 1 and panic distance 10.
func NewFlee(target Target) *Flee {
	return &Flee{Weighting: Weighting{Factor: 1}, Target: target, PanicDistance: 10}
}

// Calculate implements Behavior.
func (b *Flee) Calculate(v *Vehicle, _ float64) r3.Vec {
	if b.Target == nil {
		return r3.Vec{}
	}
	away := r3.Sub(v.Position, b.Target.WorldPosition())
	d := r3.Norm(away)
	if d > b.PanicDistance {
		return r3.Vec{}
	}
	if d == 0 {
		away = v.Heading()
	}
	desired := r3.Scale(v.MaxSpeed, r3.Unit(away))
	return r3.Sub(desired, v.Velocity)
}

// Wander steers toward a point jittering on a circle ahead of the vehicle.
type Wander struct {
	Weighting
	Radius   float64
	Distance float64
	Jitter   float64

	target r3.Vec
	rng    *rand.Rand
}

// NewWander returns a wander behaviour with weight 1.
func NewWander(rng *rand.Rand) *Wander {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	theta := rng.Float64() * 2 * math.Pi
	return &Wander{
		Weighting: Weighting{Factor: 1},
		Radius:    1,
		Distance:  5,
		Jitter:    5,
		target:    r3.Vec{X: math.Cos(theta), Z: math.Sin(theta)},
		rng:       rng,
	}
}

// Calculate implements Behavior.
func (b *Wander) Calculate(v *Vehicle, dt float64) r3.Vec {
	j := b.Jitter * dt
	b.target = r3.Add(b.target, r3.Vec{
		X: (b.rng.Float64()*2 - 1) * j,
		Z: (b.rng.Float64()*2 - 1) * j,
	})
	if r3.Norm(b.target) == 0 {
		b.target = r3.Vec{X: 1}
	}
	b.target = r3.Scale(b.Radius, r3.Unit(b.target))

	local := r3.Add(b.target, r3.Vec{Z: b.Distance})
	world := r3.Add(v.Position, v.ToWorldDirection(local))
	return r3.Sub(world, v.Position)
}

// Obstacle is something vehicles steer around.
type Obstacle interface {
	Target
	Radius() float64
}

// ObstacleAvoidance projects a detection box ahead of the vehicle, scaled by
// speed, and steers away from the closest obstacle intersecting it.
type ObstacleAvoidance struct {
	Weighting
	Obstacles     []Obstacle
	MinBoxLength  float64
	BrakingWeight float64
}

// NewObstacleAvoidance returns an avoidance behaviour with weight 1.
func NewObstacleAvoidance(obstacles []Obstacle) *ObstacleAvoidance {
	return &ObstacleAvoidance{
		Weighting:     Weighting{Factor: 1},
		Obstacles:     obstacles,
		MinBoxLength:  4,
		BrakingWeight: 0.2,
	}
}

// Calculate implements Behavior.
func (b *ObstacleAvoidance) Calculate(v *Vehicle, _ float64) r3.Vec {
	boxLength := b.MinBoxLength
	if v.MaxSpeed > 0 {
		boxLength += v.Speed() / v.MaxSpeed * b.MinBoxLength
	}

	var (
		closest   Obstacle
		closestAt = math.Inf(1)
		local     r3.Vec
	)
	for _, o := range b.Obstacles {
		if o == nil || o == Obstacle(v) {
			continue
		}
		p := o.WorldPosition()
		if r3.Norm2(r3.Sub(p, v.Position)) > boxLength*boxLength {
			continue
		}
		l := v.ToLocal(p)
		if l.Z <= 0 {
			continue
		}
		expanded := o.Radius() + v.BoundingRadius
		if math.Abs(l.X) >= expanded {
			continue
		}
		// Intersection of the forward axis with the expanded circle.
		root := math.Sqrt(expanded*expanded - l.X*l.X)
		at := l.Z - root
		if at <= 0 {
			at = l.Z + root
		}
		if at < closestAt {
			closestAt = at
			closest = o
			local = l
		}
	}
	if closest == nil {
		return r3.Vec{}
	}

	multiplier := 1 + (boxLength-local.Z)/boxLength
	force := r3.Vec{
		X: (closest.Radius() - local.X) * multiplier,
		Z: (closest.Radius() - local.Z) * b.BrakingWeight,
	}
	return v.ToWorldDirection(force)
}
