package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Population at window end
	Actors    int `csv:"actors"`
	AIs       int `csv:"ais"`
	Bodies    int `csv:"bodies"`
	Meshes    int `csv:"meshes"`
	Particles int `csv:"particles"`
	Sounds    int `csv:"sounds"`

	// Events during window
	Spawns       int `csv:"spawns"`
	Kills        int `csv:"kills"`
	Deletes      int `csv:"deletes"`
	Explosions   int `csv:"explosions"`
	Shots        int `csv:"shots"`
	Casts        int `csv:"casts"`
	Unrecognized int `csv:"casts_unrecognized"`

	// Age at deletion of actors swept this window
	LifetimeMean float64 `csv:"lifetime_mean"`
	LifetimeStd  float64 `csv:"lifetime_std"`
	LifetimeP50  float64 `csv:"lifetime_p50"`
	LifetimeP90  float64 `csv:"lifetime_p90"`

	SpawnsByLabel map[string]int `csv:"-"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeLifetimeStats returns the mean, sample standard deviation and
// median/p90 of actor lifetimes.
func ComputeLifetimeStats(values []float64) (mean, std, p50, p90 float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0, 0
	}
	if n == 1 {
		return values[0], 0, values[0], values[0]
	}

	mean, std = stat.MeanStdDev(values, nil)

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	p50 = Percentile(sorted, 0.50)
	p90 = Percentile(sorted, 0.90)

	return mean, std, p50, p90
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("actors", s.Actors),
		slog.Int("ais", s.AIs),
		slog.Int("particles", s.Particles),
		slog.Int("spawns", s.Spawns),
		slog.Int("kills", s.Kills),
		slog.Int("deletes", s.Deletes),
		slog.Int("explosions", s.Explosions),
		slog.Int("casts", s.Casts),
		slog.Float64("lifetime_mean", s.LifetimeMean),
	}
	for _, label := range Labels(s.SpawnsByLabel) {
		attrs = append(attrs, slog.Int("spawned_"+label, s.SpawnsByLabel[label]))
	}
	return slog.GroupValue(attrs...)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"actors", s.Actors,
		"ais", s.AIs,
		"bodies", s.Bodies,
		"meshes", s.Meshes,
		"particles", s.Particles,
		"sounds", s.Sounds,
		"spawns", s.Spawns,
		"kills", s.Kills,
		"deletes", s.Deletes,
		"explosions", s.Explosions,
		"shots", s.Shots,
		"casts", s.Casts,
		"casts_unrecognized", s.Unrecognized,
		"lifetime_mean", s.LifetimeMean,
		"lifetime_std", s.LifetimeStd,
		"lifetime_p50", s.LifetimeP50,
		"lifetime_p90", s.LifetimeP90,
	)
}
