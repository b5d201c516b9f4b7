package game

import (
	"reflect"
	"slices"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/conjure/components"
	"github.com/pthm-cable/conjure/steering"
	"github.com/pthm-cable/conjure/telemetry"
)

// spawnOnce adds one child actor the first time it runs.
type spawnOnce struct {
	done  bool
	child *Actor
}

func (s *spawnOnce) Update(a *Actor, _ float64) {
	if s.done {
		return
	}
	s.done = true
	s.child = NewActor(a.Map(), ActorConfig{Ghost: true, Position: at(0, 1, 0)})
}

func TestUpdateIgnoresNonPositiveDT(t *testing.T) {
	m, _ := newTestMap(t)
	a := NewActor(m, ActorConfig{Lifespan: seconds(1), Position: at(0, 1, 0)})

	for _, dt := range []float64{0, -0.5} {
		m.Update(dt)
	}

	if m.Tick() != 0 {
		t.Errorf("tick = %d, want 0", m.Tick())
	}
	if a.Lifespan() != 1 {
		t.Errorf("lifespan = %v, want 1", a.Lifespan())
	}
	if a.Position() != (r3.Vec{Y: 1}) {
		t.Errorf("position = %+v, want unchanged", a.Position())
	}
}

func TestSpawnDuringSweepWaitsOneTick(t *testing.T) {
	m, _ := newTestMap(t)
	parent := NewActor(m, ActorConfig{Ghost: true, Position: at(0, 1, 0)})
	s := &spawnOnce{}
	parent.AddBehavior(s)

	m.Update(0.5)
	if s.child == nil {
		t.Fatal("behaviour did not spawn")
	}
	if s.child.Mesh.Opacity != 0 {
		t.Error("child updated in the tick it was spawned")
	}

	m.Update(0.5)
	if s.child.Mesh.Opacity == 0 {
		t.Error("child not updated on the following tick")
	}
}

// countUpdates records how often the sweep reaches its actor.
type countUpdates struct{ n int }

func (c *countUpdates) Update(*Actor, float64) { c.n++ }

func TestSweepRemovesSeveralActors(t *testing.T) {
	m, _ := newTestMap(t)
	dying := map[int]bool{0: true, 2: true, 3: true, 5: true, 6: true, 8: true}

	var keep []*Actor
	counters := make([]*countUpdates, 9)
	for i := range counters {
		cfg := ActorConfig{Ghost: true, Position: at(float64(i), 1, 0)}
		if dying[i] {
			cfg.Lifespan = seconds(0.05)
		}
		a := NewActor(m, cfg)
		counters[i] = &countUpdates{}
		a.AddBehavior(counters[i])
		if !dying[i] {
			keep = append(keep, a)
		}
	}

	m.Update(0.1)

	for i, c := range counters {
		if c.n != 1 {
			t.Errorf("actor %d updated %d times, want 1", i, c.n)
		}
	}
	if len(m.Actors()) != len(keep) {
		t.Fatalf("actors = %d, want %d", len(m.Actors()), len(keep))
	}
	for _, a := range keep {
		if a.State() != StateAlive {
			t.Errorf("actor %d state = %v, want alive", a.ID, a.State())
		}
		found := false
		for _, b := range m.Actors() {
			found = found || a == b
		}
		if !found {
			t.Errorf("actor %d missing after sweep", a.ID)
		}
	}
}

func TestActorIDsAreUnique(t *testing.T) {
	m, _ := newTestMap(t)
	seen := make(map[uint64]bool)
	for i := 0; i < 10; i++ {
		a := NewActor(m, ActorConfig{Ghost: true})
		if a.ID == 0 || seen[a.ID] {
			t.Fatalf("duplicate or zero id %d", a.ID)
		}
		seen[a.ID] = true
	}
}

func TestUpdatePhaseOrder(t *testing.T) {
	m, _ := newTestMap(t)
	var phases []string
	m.OnPhase = func(name string) { phases = append(phases, name) }

	m.Update(0.1)

	want := []string{telemetry.PhasePhysics, telemetry.PhaseSteering, telemetry.PhaseAI, telemetry.PhaseActors}
	if !reflect.DeepEqual(phases, want) {
		t.Errorf("phases = %v, want %v", phases, want)
	}
}

func TestClearKeepsPlayer(t *testing.T) {
	m, counts := newTestMap(t)
	p := NewPlayer(m, nil)
	NewDriver(m, r3.Vec{Y: 3}, 1)
	NewAgent(m, r3.Vec{X: 2, Y: 3})
	NewActor(m, ActorConfig{Position: at(0, 2, 2)})

	m.Clear()

	if len(m.AIs()) != 0 {
		t.Errorf("ais = %d, want 0", len(m.AIs()))
	}
	if len(m.Actors()) != 1 || m.Actors()[0] != p.Actor() {
		t.Errorf("actors after clear = %d, want only the player", len(m.Actors()))
	}
	if counts[telemetry.EventDelete] != 3 {
		t.Errorf("delete events = %d, want 3", counts[telemetry.EventDelete])
	}
	if m.Steering().Len() != 1 {
		t.Errorf("vehicles = %d, want the player's only", m.Steering().Len())
	}
}

func TestTargetPosition(t *testing.T) {
	m, _ := newTestMap(t)
	if got := m.TargetPosition(); got != (r3.Vec{}) {
		t.Errorf("target without player = %+v, want origin", got)
	}
	p := NewPlayer(m, nil)
	p.Actor().Body.SetPosition(r3.Vec{X: 4, Y: 1, Z: -2})
	if got := m.TargetPosition(); got != (r3.Vec{X: 4, Y: 1, Z: -2}) {
		t.Errorf("target = %+v, want player position", got)
	}
}

func TestDeletedObstacleIsDropped(t *testing.T) {
	m, _ := newTestMap(t)
	box := NewActor(m, ActorConfig{
		Shape:    components.Shape{Kind: components.ShapeBox, Size: 1, Width: 1, Height: 1},
		Position: at(0, 3, 0),
		Lifespan: seconds(0.05),
	})
	m.AddObstacle(box)

	m.Update(0.1)

	if len(m.Obstacles()) != 0 {
		t.Errorf("obstacles = %d, want 0", len(m.Obstacles()))
	}
}

func TestDroppedObstacleLeavesOldSliceIntact(t *testing.T) {
	m, _ := newTestMap(t)
	box := func(x float64, life *float64) *Actor {
		a := NewActor(m, ActorConfig{
			Shape:    components.Shape{Kind: components.ShapeBox, Size: 1, Width: 1, Height: 1},
			Position: at(x, 3, 0),
			Lifespan: life,
		})
		m.AddObstacle(a)
		return a
	}
	first := box(-4, seconds(0.05))
	second := box(0, nil)
	third := box(4, nil)

	held := m.Obstacles()
	m.Update(0.1)

	want := []steering.Obstacle{first, second, third}
	if !slices.Equal(held, want) {
		t.Errorf("slice held across the tick changed to %v", held)
	}
	if got := m.Obstacles(); !slices.Equal(got, []steering.Obstacle{second, third}) {
		t.Errorf("obstacles = %v, want the two live boxes", got)
	}
}

func TestPopulation(t *testing.T) {
	m, _ := newTestMap(t)
	NewActor(m, ActorConfig{Position: at(0, 2, 0)})
	NewActor(m, ActorConfig{Ghost: true})
	NewDriver(m, r3.Vec{Y: 3}, 1)

	pop := m.Population()
	if pop.Actors != 3 {
		t.Errorf("actors = %d, want 3", pop.Actors)
	}
	if pop.AIs != 1 {
		t.Errorf("ais = %d, want 1", pop.AIs)
	}
	if pop.Meshes != 2 {
		t.Errorf("meshes = %d, want 2", pop.Meshes)
	}
}
