package game

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/conjure/components"
	"github.com/pthm-cable/conjure/config"
	"github.com/pthm-cable/conjure/gesture"
	"github.com/pthm-cable/conjure/telemetry"
)

func TestPlayerMove(t *testing.T) {
	m, _ := newTestMap(t)
	p := NewPlayer(m, nil)
	p.Left.Position = r3.Vec{Y: 2, Z: -1}

	p.Move(1)

	want := m.Config().Player.MoveImpulse / m.Config().Player.Mass
	v := p.Actor().Velocity()
	if math.Abs(v.Z+want) > 1e-9 || math.Abs(v.X) > 1e-9 || math.Abs(v.Y) > 1e-9 {
		t.Errorf("velocity = %+v, want (0, 0, %v)", v, -want)
	}

	p.Move(-1)
	if v := p.Actor().Velocity(); r3.Norm(v) > 1e-9 {
		t.Errorf("velocity after backward move = %+v, want zero", v)
	}
}

func TestPlayerIsImmortalTarget(t *testing.T) {
	m, _ := newTestMap(t)
	p := NewPlayer(m, nil)

	if m.Player() != p {
		t.Fatal("player not registered with map")
	}
	p.Actor().Kill()
	p.Actor().Expire()
	m.Update(0.1)
	if p.Actor().State() != StateAlive {
		t.Errorf("player state = %v, want alive", p.Actor().State())
	}
	if p.Actor().Body.Filter() != components.FilterPlayer {
		t.Errorf("player filter = %+v", p.Actor().Body.Filter())
	}

	p.Update(0.1)
	if p.Vehicle().Position != p.Position() {
		t.Errorf("vehicle at %+v, body at %+v", p.Vehicle().Position, p.Position())
	}
}

func castMessage(name string, size float64, hand *Hand) Message {
	return Message{
		Kind:     MsgCast,
		Matches:  []gesture.Match{{Name: name, Width: size / 2, Height: size / 2, Size: size}},
		Position: hand.Position,
		Anchor:   hand,
	}
}

func TestBridgeDropsUnknownGesture(t *testing.T) {
	m, counts := newTestMap(t)
	p := NewPlayer(m, nil)
	b := NewBridge()
	before := len(m.Actors())

	b.Post(castMessage("triangle", 1, p.Right))
	if n := b.Drain(p); n != 1 {
		t.Errorf("drained %d, want 1", n)
	}

	if len(m.Actors()) != before {
		t.Errorf("actors = %d, want %d", len(m.Actors()), before)
	}
	if counts[telemetry.EventCastUnrecognized] != 1 {
		t.Errorf("unrecognized cast events = %d, want 1", counts[telemetry.EventCastUnrecognized])
	}
	if b.Pending() != 0 {
		t.Errorf("pending = %d, want 0", b.Pending())
	}
}

func TestBridgeCircleCastsGun(t *testing.T) {
	m, counts := newTestMap(t)
	p := NewPlayer(m, nil)
	b := NewBridge()
	p.Right.Position = r3.Vec{X: 0.3, Y: 1.2, Z: -0.4}

	b.Post(castMessage("circle", 0.5, p.Right))
	b.Drain(p)

	if len(p.Guns()) != 1 {
		t.Fatalf("guns = %d, want 1", len(p.Guns()))
	}
	g := p.Guns()[0]
	if !g.control.reverse {
		t.Error("player guns fire in reverse")
	}
	if g.control.caster != p.Actor() {
		t.Error("player gun caster is not the player")
	}
	if g.Body.Filter() != components.FilterPlayer {
		t.Errorf("gun filter = %+v, want player", g.Body.Filter())
	}
	if g.Shape.Size != 0.5 {
		t.Errorf("gun size = %v, want 0.5", g.Shape.Size)
	}
	if counts[telemetry.EventCast] != 1 {
		t.Errorf("cast events = %d, want 1", counts[telemetry.EventCast])
	}

	p.Right.Position = r3.Vec{X: 1, Y: 1, Z: 1}
	m.Update(0.1)
	if g.Position() != p.Right.Position {
		t.Errorf("gun at %+v, want hand %+v", g.Position(), p.Right.Position)
	}
}

func TestBridgeSquareCastsObstacle(t *testing.T) {
	m, _ := newTestMap(t)
	p := NewPlayer(m, nil)
	b := NewBridge()

	b.Post(castMessage("square", 2, p.Left))
	b.Drain(p)

	if countLabel(m, LabelBox) != 1 {
		t.Fatalf("boxes = %d, want 1", countLabel(m, LabelBox))
	}
	if len(m.Obstacles()) != 1 {
		t.Errorf("obstacles = %d, want 1", len(m.Obstacles()))
	}
}

func TestBridgeFireRetriggersGuns(t *testing.T) {
	m, counts := newTestMap(t)
	p := NewPlayer(m, nil)
	b := NewBridge()
	b.Post(castMessage("circle", 0.5, p.Right))
	b.Drain(p)
	g := p.Guns()[0]

	// Let the fire debounce fill and part of the gun lifespan run out.
	for i := 0; i < 15; i++ {
		m.Update(0.1)
		p.Update(0.1)
	}
	before := g.Lifespan()

	b.Post(Message{Kind: MsgFire})
	b.Drain(p)

	if g.Lifespan() <= before {
		t.Errorf("lifespan %v not restored from %v", g.Lifespan(), before)
	}
	if counts[telemetry.EventShot] == 0 {
		t.Error("fire was not recorded")
	}

	// The debounce blocks an immediate second trigger.
	shots := counts[telemetry.EventShot]
	b.Post(Message{Kind: MsgFire})
	b.Drain(p)
	if counts[telemetry.EventShot] != shots {
		t.Error("second fire inside the interval was accepted")
	}
}

func TestBridgeThrow(t *testing.T) {
	m, _ := newTestMap(t)
	p := NewPlayer(m, nil)
	b := NewBridge()
	vel := r3.Vec{Z: -2}

	b.Post(Message{Kind: MsgThrow, Position: r3.Vec{Y: 3}, Velocity: vel})
	b.Drain(p)

	var thrown *Actor
	for _, a := range m.Actors() {
		if a.Label == LabelThrown {
			thrown = a
		}
	}
	if thrown == nil {
		t.Fatal("nothing thrown")
	}
	if thrown.Velocity() != vel {
		t.Errorf("velocity = %+v, want %+v", thrown.Velocity(), vel)
	}
	if got := thrown.Lifespan(); got != m.Config().Actor.ThrowLifespan {
		t.Errorf("lifespan = %v, want %v", got, m.Config().Actor.ThrowLifespan)
	}
}

func TestMessageKindString(t *testing.T) {
	tests := []struct {
		k    MessageKind
		want string
	}{
		{MsgForward, "forward"},
		{MsgBackward, "backward"},
		{MsgFire, "fire"},
		{MsgCast, "cast"},
		{MsgThrow, "throw"},
		{MessageKind(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.k.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", tt.k, got, tt.want)
		}
	}
}

func TestDriverFiresOnlyWhenFacingTarget(t *testing.T) {
	tests := []struct {
		name     string
		pos      r3.Vec
		wantGuns bool
	}{
		{"facing", r3.Vec{Y: 2, Z: -5}, true},
		{"away", r3.Vec{Y: 2, Z: 5}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := newTestMap(t)
			d := NewDriver(m, tt.pos, 1)

			// The world is not stepped, so the driver keeps its pose.
			for i := 0; i < 100; i++ {
				d.Update(0.1)
			}

			if got := d.Guns() > 0; got != tt.wantGuns {
				t.Errorf("guns = %d, angle = %v", d.Guns(), d.AngleToTarget())
			}
			if got := countLabel(m, LabelGun); got != d.Guns() {
				t.Errorf("gun actors = %d, want %d", got, d.Guns())
			}
		})
	}
}

func TestAngleBetween(t *testing.T) {
	tests := []struct {
		a, b r3.Vec
		want float64
	}{
		{r3.Vec{Z: 1}, r3.Vec{Z: 3}, 0},
		{r3.Vec{Z: 1}, r3.Vec{X: 2}, math.Pi / 2},
		{r3.Vec{Z: 1}, r3.Vec{Z: -1}, math.Pi},
		{r3.Vec{}, r3.Vec{X: 1}, 0},
	}
	for _, tt := range tests {
		if got := angleBetween(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("angleBetween(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestAgentKillDeregisters(t *testing.T) {
	m, _ := newTestMap(t)
	ag := NewAgent(m, r3.Vec{Y: 3})
	if m.Steering().Len() != 1 || len(m.AIs()) != 1 {
		t.Fatalf("vehicles = %d ais = %d, want 1 and 1", m.Steering().Len(), len(m.AIs()))
	}

	ag.Actor().Kill()

	if !ag.Killed() {
		t.Error("killing the actor did not kill the controller")
	}
	if m.Steering().Len() != 0 {
		t.Errorf("vehicles = %d, want 0", m.Steering().Len())
	}
	m.Update(0.1)
	if len(m.AIs()) != 0 {
		t.Errorf("ais = %d, want 0 after update", len(m.AIs()))
	}
}

func TestAgentSyncMirrorsBody(t *testing.T) {
	m, _ := newTestMap(t)
	ag := NewAgent(m, r3.Vec{Y: 3})
	v := ag.Vehicle()
	v.Velocity = r3.Vec{X: 1, Z: -1}
	v.Rotation = components.LookRotation(r3.Vec{X: 1})

	ag.sync(v)

	body := ag.Actor().Body
	if body.Velocity() != (r3.Vec{X: 1, Z: -1}) {
		t.Errorf("body velocity = %+v", body.Velocity())
	}
	if v.Position != body.Position() {
		t.Errorf("vehicle position = %+v, body = %+v", v.Position, body.Position())
	}
	fwd := components.Rotate(body.Orientation(), components.Forward)
	if math.Abs(fwd.X-1) > 1e-9 {
		t.Errorf("body forward = %+v, want +X", fwd)
	}
}

func TestHeadlessGame(t *testing.T) {
	cfg := config.Default()
	var windows []telemetry.WindowStats
	g, err := NewGameWithOptions(Options{
		Config:         cfg,
		Seed:           7,
		Headless:       true,
		Mute:           true,
		StatsWindowSec: 1,
		StatsCallback:  func(s telemetry.WindowStats) { windows = append(windows, s) },
	})
	if err != nil {
		t.Fatalf("NewGameWithOptions: %v", err)
	}
	defer g.Unload()

	if got := len(g.Map().AIs()); got != cfg.Driver.Count+cfg.Agent.Count {
		t.Errorf("ais = %d, want %d", got, cfg.Driver.Count+cfg.Agent.Count)
	}

	for i := 0; i < 120; i++ {
		g.UpdateHeadless()
	}

	if g.Tick() != 120 {
		t.Errorf("tick = %d, want 120", g.Tick())
	}
	if len(windows) != 2 {
		t.Errorf("stats windows = %d, want 2", len(windows))
	}
	if g.Player().Actor().State() != StateAlive {
		t.Error("player died")
	}
}

func TestPauseStopsStepping(t *testing.T) {
	g, err := NewGameWithOptions(Options{Config: config.Default(), Headless: true, Mute: true})
	if err != nil {
		t.Fatalf("NewGameWithOptions: %v", err)
	}
	defer g.Unload()

	g.TogglePause()
	g.UpdateHeadless()
	if g.Tick() != 0 {
		t.Errorf("tick = %d while paused", g.Tick())
	}
	g.TogglePause()
	g.UpdateHeadless()
	if g.Tick() != 1 {
		t.Errorf("tick = %d, want 1", g.Tick())
	}
}

func TestGameClear(t *testing.T) {
	g, err := NewGameWithOptions(Options{Config: config.Default(), Headless: true, Mute: true})
	if err != nil {
		t.Fatalf("NewGameWithOptions: %v", err)
	}
	defer g.Unload()

	g.Clear()

	if len(g.Map().AIs()) != 0 {
		t.Errorf("ais = %d, want 0", len(g.Map().AIs()))
	}
	if len(g.Map().Actors()) != 1 {
		t.Errorf("actors = %d, want only the player", len(g.Map().Actors()))
	}
}
