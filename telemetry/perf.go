package telemetry

import (
	"log/slog"
	"time"
)

// Phase names for the simulation step.
const (
	PhasePoll      = "poll"
	PhasePhysics   = "physics"
	PhaseSteering  = "steering"
	PhaseAI        = "ai"
	PhaseActors    = "actors"
	PhasePlayer    = "player"
	PhaseBridge    = "bridge"
	PhaseTelemetry = "telemetry"
)

// Phases lists every phase in tick order.
var Phases = []string{
	PhasePoll, PhasePhysics, PhaseSteering, PhaseAI,
	PhaseActors, PhasePlayer, PhaseBridge, PhaseTelemetry,
}

// tickSample is the timing of one tick. phases is indexed like
// PerfCollector.names.
type tickSample struct {
	total  time.Duration
	phases []time.Duration
}

// PerfCollector times ticks and their phases over a rolling window of the
// most recent ticks and frames.
type PerfCollector struct {
	now func() time.Time

	window int
	ticks  []tickSample
	next   int
	count  int

	// names holds every phase in the order first seen.
	names []string
	index map[string]int

	cur     tickSample
	tickAt  time.Time
	phaseAt time.Time
	phase   int // index into names, -1 between phases

	frames     []time.Duration
	frameNext  int
	frameCount int
	lastFrame  time.Time
}

// NewPerfCollector creates a collector averaging over windowSize ticks.
// Values below one use 60.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	p := &PerfCollector{
		now:    time.Now,
		window: windowSize,
		ticks:  make([]tickSample, windowSize),
		frames: make([]time.Duration, windowSize),
		index:  make(map[string]int),
		phase:  -1,
	}
	for _, name := range Phases {
		p.phaseIndex(name)
	}
	return p
}

func (p *PerfCollector) phaseIndex(name string) int {
	if i, ok := p.index[name]; ok {
		return i
	}
	p.index[name] = len(p.names)
	p.names = append(p.names, name)
	return len(p.names) - 1
}

// StartTick begins timing a tick.
func (p *PerfCollector) StartTick() {
	p.tickAt = p.now()
	p.cur = tickSample{phases: make([]time.Duration, len(p.names))}
	p.phase = -1
}

// StartPhase closes the running phase, if any, and opens name.
func (p *PerfCollector) StartPhase(name string) {
	now := p.now()
	p.closePhase(now)
	p.phase = p.phaseIndex(name)
	p.phaseAt = now
}

func (p *PerfCollector) closePhase(now time.Time) {
	if p.phase < 0 {
		return
	}
	for len(p.cur.phases) <= p.phase {
		p.cur.phases = append(p.cur.phases, 0)
	}
	p.cur.phases[p.phase] += now.Sub(p.phaseAt)
	p.phase = -1
}

// EndTick closes the running phase and stores the tick in the window.
func (p *PerfCollector) EndTick() {
	now := p.now()
	p.closePhase(now)
	p.cur.total = now.Sub(p.tickAt)

	p.ticks[p.next] = p.cur
	p.next = (p.next + 1) % p.window
	if p.count < p.window {
		p.count++
	}
	p.cur = tickSample{}
}

// RecordFrame marks the end of a rendered frame.
func (p *PerfCollector) RecordFrame() {
	now := p.now()
	if !p.lastFrame.IsZero() {
		p.frames[p.frameNext] = now.Sub(p.lastFrame)
		p.frameNext = (p.frameNext + 1) % p.window
		if p.frameCount < p.window {
			p.frameCount++
		}
	}
	p.lastFrame = now
}

// PerfStats summarizes the window.
type PerfStats struct {
	Ticks int // ticks in the window

	AvgTickDuration time.Duration
	MinTickDuration time.Duration
	MaxTickDuration time.Duration
	TicksPerSecond  float64

	// Order lists the phases that ran, in tick order.
	Order    []string
	PhaseAvg map[string]time.Duration
	PhaseMax map[string]time.Duration
	PhasePct map[string]float64 // share of the average tick

	// FrameDuration is the mean frame time; zero without frames.
	FrameDuration time.Duration
	FPS           float64
}

// Stats aggregates the current window.
func (p *PerfCollector) Stats() PerfStats {
	s := PerfStats{
		Ticks:    p.count,
		PhaseAvg: make(map[string]time.Duration),
		PhaseMax: make(map[string]time.Duration),
		PhasePct: make(map[string]float64),
	}

	if p.frameCount > 0 {
		var sum time.Duration
		for _, d := range p.frames[:p.frameCount] {
			sum += d
		}
		s.FrameDuration = sum / time.Duration(p.frameCount)
		if s.FrameDuration > 0 {
			s.FPS = float64(time.Second) / float64(s.FrameDuration)
		}
	}

	if p.count == 0 {
		return s
	}

	var total time.Duration
	sums := make([]time.Duration, len(p.names))
	for i, t := range p.ticks[:p.count] {
		total += t.total
		if i == 0 || t.total < s.MinTickDuration {
			s.MinTickDuration = t.total
		}
		s.MaxTickDuration = max(s.MaxTickDuration, t.total)
		for j, d := range t.phases {
			sums[j] += d
			name := p.names[j]
			s.PhaseMax[name] = max(s.PhaseMax[name], d)
		}
	}

	s.AvgTickDuration = total / time.Duration(p.count)
	if s.AvgTickDuration > 0 {
		s.TicksPerSecond = float64(time.Second) / float64(s.AvgTickDuration)
	}
	for j, sum := range sums {
		if sum == 0 {
			delete(s.PhaseMax, p.names[j])
			continue
		}
		name := p.names[j]
		avg := sum / time.Duration(p.count)
		s.Order = append(s.Order, name)
		s.PhaseAvg[name] = avg
		if s.AvgTickDuration > 0 {
			s.PhasePct[name] = float64(avg) / float64(s.AvgTickDuration) * 100
		}
	}
	return s
}

// attrs flattens the stats for logging. Phases under a tenth of a percent
// are left out.
func (s PerfStats) attrs() []slog.Attr {
	attrs := []slog.Attr{
		slog.Int("ticks", s.Ticks),
		slog.Int64("avg_tick_us", s.AvgTickDuration.Microseconds()),
		slog.Int64("min_tick_us", s.MinTickDuration.Microseconds()),
		slog.Int64("max_tick_us", s.MaxTickDuration.Microseconds()),
		slog.Float64("ticks_per_sec", s.TicksPerSecond),
	}
	if s.FPS > 0 {
		attrs = append(attrs, slog.Float64("fps", s.FPS))
	}
	for _, name := range s.Order {
		if pct := s.PhasePct[name]; pct > 0.1 {
			attrs = append(attrs, slog.Float64(name+"_pct", float64(int(pct*10))/10))
		}
	}
	return attrs
}

// LogStats logs the stats as one "perf" record.
func (s PerfStats) LogStats() {
	args := make([]any, 0, len(s.Order)+6)
	for _, a := range s.attrs() {
		args = append(args, a)
	}
	slog.Info("perf", args...)
}

// LogValue implements slog.LogValuer.
func (s PerfStats) LogValue() slog.Value {
	return slog.GroupValue(s.attrs()...)
}

// PerfStatsCSV is one perf.csv row.
type PerfStatsCSV struct {
	WindowEnd    int32   `csv:"window_end"`
	AvgTickUS    int64   `csv:"avg_tick_us"`
	MinTickUS    int64   `csv:"min_tick_us"`
	MaxTickUS    int64   `csv:"max_tick_us"`
	TicksPerSec  float64 `csv:"ticks_per_sec"`
	FPS          float64 `csv:"fps"`
	PollPct      float64 `csv:"poll_pct"`
	PhysicsPct   float64 `csv:"physics_pct"`
	SteeringPct  float64 `csv:"steering_pct"`
	AIPct        float64 `csv:"ai_pct"`
	ActorsPct    float64 `csv:"actors_pct"`
	PlayerPct    float64 `csv:"player_pct"`
	BridgePct    float64 `csv:"bridge_pct"`
	TelemetryPct float64 `csv:"telemetry_pct"`
}

// ToCSV flattens s into a row for the window ending at windowEnd.
func (s PerfStats) ToCSV(windowEnd int32) PerfStatsCSV {
	pct := s.PhasePct
	return PerfStatsCSV{
		WindowEnd:    windowEnd,
		AvgTickUS:    s.AvgTickDuration.Microseconds(),
		MinTickUS:    s.MinTickDuration.Microseconds(),
		MaxTickUS:    s.MaxTickDuration.Microseconds(),
		TicksPerSec:  s.TicksPerSecond,
		FPS:          s.FPS,
		PollPct:      pct[PhasePoll],
		PhysicsPct:   pct[PhasePhysics],
		SteeringPct:  pct[PhaseSteering],
		AIPct:        pct[PhaseAI],
		ActorsPct:    pct[PhaseActors],
		PlayerPct:    pct[PhasePlayer],
		BridgePct:    pct[PhaseBridge],
		TelemetryPct: pct[PhaseTelemetry],
	}
}
