package telemetry

import (
	"math"
	"reflect"
	"testing"
	"time"
)

// fakeClock advances only when told to.
type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestCollector(window int) (*PerfCollector, *fakeClock) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	pc := NewPerfCollector(window)
	pc.now = clock.now
	return pc, clock
}

// tick runs one tick with the given phase durations, in order.
func tick(pc *PerfCollector, clock *fakeClock, phases ...any) {
	pc.StartTick()
	for i := 0; i < len(phases); i += 2 {
		pc.StartPhase(phases[i].(string))
		clock.advance(phases[i+1].(time.Duration))
	}
	pc.EndTick()
}

func TestPerfCollectorPhaseTiming(t *testing.T) {
	pc, clock := newTestCollector(10)
	for i := 0; i < 4; i++ {
		tick(pc, clock, PhasePhysics, 100*time.Microsecond, PhaseActors, 300*time.Microsecond)
	}

	s := pc.Stats()
	if s.Ticks != 4 {
		t.Errorf("Ticks = %d, want 4", s.Ticks)
	}
	if s.AvgTickDuration != 400*time.Microsecond {
		t.Errorf("avg tick = %v, want 400µs", s.AvgTickDuration)
	}
	if s.PhaseAvg[PhasePhysics] != 100*time.Microsecond || s.PhaseAvg[PhaseActors] != 300*time.Microsecond {
		t.Errorf("phase avg = %v", s.PhaseAvg)
	}
	if math.Abs(s.PhasePct[PhaseActors]-75) > 1e-9 {
		t.Errorf("actors pct = %v, want 75", s.PhasePct[PhaseActors])
	}
	if math.Abs(s.TicksPerSecond-2500) > 1e-6 {
		t.Errorf("ticks/s = %v, want 2500", s.TicksPerSecond)
	}
	if want := []string{PhasePhysics, PhaseActors}; !reflect.DeepEqual(s.Order, want) {
		t.Errorf("order = %v, want %v", s.Order, want)
	}
}

func TestPerfCollectorRollingWindow(t *testing.T) {
	pc, clock := newTestCollector(3)

	for i := 0; i < 3; i++ {
		tick(pc, clock, PhasePhysics, time.Millisecond)
	}
	for i := 0; i < 3; i++ {
		tick(pc, clock, PhasePhysics, 2*time.Millisecond)
	}

	s := pc.Stats()
	if s.Ticks != 3 {
		t.Errorf("Ticks = %d, want 3", s.Ticks)
	}
	if s.AvgTickDuration != 2*time.Millisecond || s.MinTickDuration != 2*time.Millisecond {
		t.Errorf("old ticks still in window: avg %v min %v", s.AvgTickDuration, s.MinTickDuration)
	}
}

func TestPerfCollectorMinMax(t *testing.T) {
	pc, clock := newTestCollector(10)
	tick(pc, clock, PhaseAI, 5*time.Millisecond)
	tick(pc, clock, PhaseAI, time.Millisecond)
	tick(pc, clock, PhaseAI, 3*time.Millisecond)

	s := pc.Stats()
	if s.MinTickDuration != time.Millisecond || s.MaxTickDuration != 5*time.Millisecond {
		t.Errorf("min/max = %v/%v, want 1ms/5ms", s.MinTickDuration, s.MaxTickDuration)
	}
	if s.PhaseMax[PhaseAI] != 5*time.Millisecond {
		t.Errorf("ai max = %v, want 5ms", s.PhaseMax[PhaseAI])
	}
}

func TestPerfCollectorCustomPhase(t *testing.T) {
	pc, clock := newTestCollector(10)
	tick(pc, clock, "fast", 10*time.Microsecond, "slow", 90*time.Microsecond)

	s := pc.Stats()
	if s.PhasePct["slow"] <= s.PhasePct["fast"] {
		t.Errorf("slow %v%% <= fast %v%%", s.PhasePct["slow"], s.PhasePct["fast"])
	}
	if math.Abs(s.PhasePct["fast"]-10) > 1e-9 {
		t.Errorf("fast pct = %v, want 10", s.PhasePct["fast"])
	}
}

func TestPerfCollectorEmptyStats(t *testing.T) {
	pc := NewPerfCollector(10)
	s := pc.Stats()

	if s.AvgTickDuration != 0 || s.Ticks != 0 {
		t.Errorf("empty collector reported %+v", s)
	}
	if s.PhaseAvg == nil || s.PhasePct == nil || s.PhaseMax == nil {
		t.Error("expected non-nil phase maps")
	}
}

func TestPerfCollectorFrameTiming(t *testing.T) {
	pc, clock := newTestCollector(10)

	pc.RecordFrame()
	if s := pc.Stats(); s.FPS != 0 {
		t.Errorf("FPS after one frame = %v, want 0", s.FPS)
	}
	for _, d := range []time.Duration{10 * time.Millisecond, 30 * time.Millisecond} {
		clock.advance(d)
		pc.RecordFrame()
	}

	s := pc.Stats()
	if s.FrameDuration != 20*time.Millisecond {
		t.Errorf("frame duration = %v, want 20ms", s.FrameDuration)
	}
	if math.Abs(s.FPS-50) > 1e-9 {
		t.Errorf("FPS = %v, want 50", s.FPS)
	}
}

func TestPerfStatsToCSV(t *testing.T) {
	pc, clock := newTestCollector(10)
	tick(pc, clock, PhasePhysics, time.Millisecond, PhaseBridge, time.Millisecond)

	row := pc.Stats().ToCSV(42)
	if row.WindowEnd != 42 || row.AvgTickUS != 2000 {
		t.Errorf("row = %+v", row)
	}
	if math.Abs(row.PhysicsPct-50) > 1e-9 || math.Abs(row.BridgePct-50) > 1e-9 || row.ActorsPct != 0 {
		t.Errorf("row pct = %+v", row)
	}
}
