// Package game runs the conjure session: actors and their lifecycle, the
// gun/projectile/explosion spawn chain, AI agents and drivers, the player,
// the gesture-to-spawn bridge and the map that ticks all of them.
package game

import (
	"fmt"
	"log/slog"
	"math/rand"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/conjure/audio"
	"github.com/pthm-cable/conjure/camera"
	"github.com/pthm-cable/conjure/config"
	"github.com/pthm-cable/conjure/effects"
	"github.com/pthm-cable/conjure/telemetry"
)

// Options configures a game session.
type Options struct {
	// Config defaults to config.Cfg().
	Config *config.Config

	Seed           int64
	LogStats       bool    // Log window and perf stats via slog
	StatsWindowSec float64 // 0 uses telemetry.stats_window
	OutputDir      string  // CSV output directory (empty = disabled)
	Headless       bool
	Mute           bool // Disable audio output

	// StatsCallback receives every flushed stats window.
	StatsCallback func(telemetry.WindowStats)
}

// Game holds the complete session state.
type Game struct {
	cfg  *config.Config
	rng  *rand.Rand
	opts Options

	m       *Map
	player  *Player
	bridge  *Bridge
	rig     *camera.Rig
	effects *effects.Library
	audio   *audio.Engine

	collector     *telemetry.Collector
	lifetimes     *telemetry.LifetimeTracker
	perfCollector *telemetry.PerfCollector
	outputManager *telemetry.OutputManager

	paused bool
}

// NewGameWithOptions builds the map, the player and the initial drivers
// and agents.
func NewGameWithOptions(opts Options) (*Game, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}
	rng := rand.New(rand.NewSource(opts.Seed))

	fx, err := effects.NewLibrary(effects.Config{
		LoadLatency:  cfg.Effects.LoadLatency,
		MaxParticles: cfg.Effects.MaxParticles,
	}, rand.New(rand.NewSource(rng.Int63())))
	if err != nil {
		return nil, fmt.Errorf("loading effects: %w", err)
	}

	snd := audio.NewEngine(audio.Config{
		Enabled:     cfg.Audio.Enabled && !opts.Mute,
		SampleRate:  cfg.Audio.SampleRate,
		Volume:      cfg.Audio.Volume,
		RefDistance: cfg.Audio.RefDistance,
		Rolloff:     cfg.Audio.Rolloff,
		LoadLatency: cfg.Audio.LoadLatency,
	})

	statsWindow := cfg.Telemetry.StatsWindow
	if opts.StatsWindowSec > 0 {
		statsWindow = opts.StatsWindowSec
	}

	g := &Game{
		cfg:           cfg,
		rng:           rng,
		opts:          opts,
		effects:       fx,
		audio:         snd,
		bridge:        NewBridge(),
		rig:           camera.New(cfg.Player.CameraFollow, cfg.Player.EyeHeight),
		collector:     telemetry.NewCollector(statsWindow, cfg.Sim.DT),
		lifetimes:     telemetry.NewLifetimeTracker(),
		perfCollector: telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
	}

	g.outputManager, err = telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	if err := g.outputManager.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config", "error", err)
	}

	g.m = NewMap(MapOptions{Config: cfg, Rand: rng, Effects: fx, Audio: snd})
	g.m.OnEvent = g.recordEvent
	g.m.OnPhase = g.perfCollector.StartPhase

	g.player = NewPlayer(g.m, g.rig)
	g.spawnInitialPopulation()

	return g, nil
}

// spawnInitialPopulation places the drivers on a rising diagonal and
// scatters the agents.
func (g *Game) spawnInitialPopulation() {
	for i := 0; i < g.cfg.Driver.Count; i++ {
		g.SpawnDriver(i)
	}
	for i := 0; i < g.cfg.Agent.Count; i++ {
		NewAgent(g.m, g.m.randomSpawnPoint())
	}
}

// SpawnDriver adds the i-th driver of the standard formation.
func (g *Game) SpawnDriver(i int) *Driver {
	f := float64(i)
	pos := r3.Vec{X: -2 + f, Y: 2 + 2*f, Z: -1 - f}
	size := g.cfg.Driver.BaseSize + f
	d := NewDriver(g.m, pos, size)
	slog.Debug("driver_spawned", "index", i, "size", size)
	return d
}

// SpawnAgent adds one agent at a random point.
func (g *Game) SpawnAgent() *Agent {
	return NewAgent(g.m, g.m.randomSpawnPoint())
}

// Step runs a single tick: load polling, the map update, the player and
// the queued intents, then telemetry.
func (g *Game) Step(dt float64) {
	if g.paused {
		return
	}
	g.perfCollector.StartTick()

	g.perfCollector.StartPhase(telemetry.PhasePoll)
	g.effects.Poll()
	g.audio.Poll(g.rig.Eye())

	g.m.Update(dt)

	g.perfCollector.StartPhase(telemetry.PhasePlayer)
	g.player.Update(dt)

	g.perfCollector.StartPhase(telemetry.PhaseBridge)
	g.bridge.Drain(g.player)

	g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	g.flushTelemetry()

	g.perfCollector.EndTick()
}

// UpdateHeadless steps at the configured fixed dt.
func (g *Game) UpdateHeadless() {
	g.Step(g.cfg.Sim.DT)
}

// Post queues a player intent for the next tick.
func (g *Game) Post(msg Message) { g.bridge.Post(msg) }

// Clear removes every actor except the player.
func (g *Game) Clear() {
	g.m.Clear()
	slog.Info("map_cleared", "tick", g.m.Tick())
}

// TogglePause flips the paused state.
func (g *Game) TogglePause() { g.paused = !g.paused }

// Paused reports whether stepping is suspended.
func (g *Game) Paused() bool { return g.paused }

// Tick returns the number of map updates so far.
func (g *Game) Tick() int32 { return g.m.Tick() }

// Map returns the simulated map.
func (g *Game) Map() *Map { return g.m }

// Player returns the player.
func (g *Game) Player() *Player { return g.player }

// Bridge returns the intent queue.
func (g *Game) Bridge() *Bridge { return g.bridge }

// Rig returns the camera rig.
func (g *Game) Rig() *camera.Rig { return g.rig }

// Effects returns the particle effect library.
func (g *Game) Effects() *effects.Library { return g.effects }

// Audio returns the sound engine, for wiring to the speaker.
func (g *Game) Audio() *audio.Engine { return g.audio }

// Config returns the session configuration.
func (g *Game) Config() *config.Config { return g.cfg }

// Perf returns the tick timing collector.
func (g *Game) Perf() *telemetry.PerfCollector { return g.perfCollector }

// Unload releases audio and closes the output files.
func (g *Game) Unload() {
	g.player.Close()
	g.audio.Close()
	if err := g.outputManager.Close(); err != nil {
		slog.Error("failed to close output", "error", err)
	}
}
