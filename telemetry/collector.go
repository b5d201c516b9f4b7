package telemetry

import "sort"

// Collector accumulates events within time windows and produces WindowStats.
type Collector struct {
	windowDurationSec   float64
	windowDurationTicks int32
	dt                  float64

	windowStartTick int32

	spawns       map[string]int
	kills        map[string]int
	deletes      map[string]int
	explosions   int
	shots        int
	casts        int
	unrecognized int

	lifetimes []float64 // seconds, for actors deleted this window
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per tick (used for tick-to-time conversion)
func NewCollector(windowDurationSec, dt float64) *Collector {
	ticksPerWindow := int32(windowDurationSec / dt)
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}

	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
		spawns:              make(map[string]int),
		kills:               make(map[string]int),
		deletes:             make(map[string]int),
	}
}

// Record counts an event in the current window.
func (c *Collector) Record(e Event) {
	switch e.Type {
	case EventSpawn:
		c.spawns[e.Label]++
	case EventKill:
		c.kills[e.Label]++
	case EventDelete:
		c.deletes[e.Label]++
	case EventExplosion:
		c.explosions++
	case EventShot:
		c.shots++
	case EventCast:
		c.casts++
	case EventCastUnrecognized:
		c.unrecognized++
	}
}

// RecordLifetime adds the age of a deleted actor, in seconds.
func (c *Collector) RecordLifetime(sec float64) {
	c.lifetimes = append(c.lifetimes, sec)
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Population is the live state sampled at flush time.
type Population struct {
	Actors    int
	AIs       int
	Bodies    int
	Meshes    int
	Particles int
	Sounds    int
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(currentTick int32, pop Population) WindowStats {
	lifeMean, lifeStd, lifeP50, lifeP90 := ComputeLifetimeStats(c.lifetimes)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * c.dt,

		Actors:    pop.Actors,
		AIs:       pop.AIs,
		Bodies:    pop.Bodies,
		Meshes:    pop.Meshes,
		Particles: pop.Particles,
		Sounds:    pop.Sounds,

		Spawns:       sum(c.spawns),
		Kills:        sum(c.kills),
		Deletes:      sum(c.deletes),
		Explosions:   c.explosions,
		Shots:        c.shots,
		Casts:        c.casts,
		Unrecognized: c.unrecognized,

		LifetimeMean: lifeMean,
		LifetimeStd:  lifeStd,
		LifetimeP50:  lifeP50,
		LifetimeP90:  lifeP90,

		SpawnsByLabel: copyCounts(c.spawns),
	}

	c.windowStartTick = currentTick
	clear(c.spawns)
	clear(c.kills)
	clear(c.deletes)
	c.explosions = 0
	c.shots = 0
	c.casts = 0
	c.unrecognized = 0
	c.lifetimes = c.lifetimes[:0]

	return stats
}

func sum(m map[string]int) int {
	n := 0
	for _, v := range m {
		n += v
	}
	return n
}

func copyCounts(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Labels returns the sorted keys of a count map.
func Labels(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
