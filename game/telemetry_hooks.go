package game

import (
	"log/slog"

	"github.com/pthm-cable/conjure/telemetry"
)

// recordEvent feeds map events into the window collector and the lifetime
// tracker.
func (g *Game) recordEvent(e telemetry.Event) {
	g.collector.Record(e)

	switch e.Type {
	case telemetry.EventSpawn:
		g.lifetimes.Register(e.ActorID, e.Tick, e.Label)
	case telemetry.EventKill:
		g.lifetimes.RecordKill(e.ActorID, e.Tick)
	case telemetry.EventDelete:
		if age, ok := g.lifetimes.Remove(e.ActorID, e.Tick, g.cfg.Sim.DT); ok {
			g.collector.RecordLifetime(age)
		}
	case telemetry.EventCastUnrecognized:
		slog.Debug("cast_dropped", "name", e.Label, "tick", e.Tick)
	}
}

// flushTelemetry closes the stats window when it is due.
func (g *Game) flushTelemetry() {
	tick := g.m.Tick()
	if !g.collector.ShouldFlush(tick) {
		return
	}

	stats := g.collector.Flush(tick, g.m.Population())
	perfStats := g.perfCollector.Stats()

	if g.opts.StatsCallback != nil {
		g.opts.StatsCallback(stats)
	}

	if g.opts.LogStats {
		stats.LogStats()
		perfStats.LogStats()
		slog.Info("tracked_actors", "by_label", g.lifetimes.CountByLabel())
	}

	if g.outputManager != nil {
		if err := g.outputManager.WriteTelemetry(stats); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
		if err := g.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}
}
