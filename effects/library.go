// Package effects implements sprite particle emitters built from named
// templates. Emitters load asynchronously: Spawn returns a handle that
// becomes usable once Poll has run for the configured latency.
package effects

import (
	"fmt"
	"log/slog"
	"math/rand"
	"sort"
)

// Config holds library parameters.
type Config struct {
	LoadLatency  int // Poll calls before a spawned effect is ready (at least one)
	MaxParticles int // Per effect
}

// Library owns the template catalog and every live handle.
type Library struct {
	templates    map[string]Template
	latency      int
	maxParticles int
	rng          *rand.Rand

	pending []*Effect
	live    []*Effect
}

// NewLibrary loads the embedded templates.
func NewLibrary(cfg Config, rng *rand.Rand) (*Library, error) {
	templates, err := LoadTemplates(templatesYAML)
	if err != nil {
		return nil, err
	}
	return NewLibraryWithTemplates(cfg, rng, templates), nil
}

// NewLibraryWithTemplates creates a library over a custom catalog.
func NewLibraryWithTemplates(cfg Config, rng *rand.Rand, templates map[string]Template) *Library {
	if cfg.MaxParticles <= 0 {
		cfg.MaxParticles = 400
	}
	if cfg.LoadLatency < 0 {
		cfg.LoadLatency = 0
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &Library{
		templates:    templates,
		latency:      cfg.LoadLatency,
		maxParticles: cfg.MaxParticles,
		rng:          rng,
	}
}

// Kinds returns the template names in sorted order.
func (l *Library) Kinds() []string {
	names := make([]string, 0, len(l.templates))
	for name := range l.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Spawn starts loading an effect. The handle is returned immediately in the
// loading state.
func (l *Library) Spawn(kind string, p Params) *Effect {
	e := &Effect{
		lib:      l,
		kind:     kind,
		params:   p,
		state:    StateLoading,
		wait:     l.latency,
		position: p.Position,
		rng:      rand.New(rand.NewSource(l.rng.Int63())),
	}
	l.pending = append(l.pending, e)
	return e
}

// Poll advances pending loads by one tick.
func (l *Library) Poll() {
	remaining := l.pending[:0]
	for _, e := range l.pending {
		if e.state != StateLoading {
			continue
		}
		e.wait--
		if e.wait > 0 {
			remaining = append(remaining, e)
			continue
		}
		l.finish(e)
	}
	// Clear the tail so dropped handles can be collected.
	for i := len(remaining); i < len(l.pending); i++ {
		l.pending[i] = nil
	}
	l.pending = remaining
}

func (l *Library) finish(e *Effect) {
	t, ok := l.templates[e.kind]
	if !ok {
		e.state = StateFailed
		slog.Warn("effect_template_missing", "kind", e.kind)
		return
	}
	e.s = resolve(t, e.params)
	e.state = StateReady
	l.live = append(l.live, e)
}

// forget drops e from the pending and live lists.
func (l *Library) forget(e *Effect) {
	for i, c := range l.pending {
		if c == e {
			l.pending = append(l.pending[:i], l.pending[i+1:]...)
			break
		}
	}
	for i, c := range l.live {
		if c == e {
			l.live = append(l.live[:i], l.live[i+1:]...)
			break
		}
	}
}

// Effects returns the ready effects, for drawing.
func (l *Library) Effects() []*Effect { return l.live }

// Pending returns the number of effects still loading.
func (l *Library) Pending() int { return len(l.pending) }

// ParticleCount returns the number of live particles across every effect.
func (l *Library) ParticleCount() int {
	n := 0
	for _, e := range l.live {
		n += len(e.particles)
	}
	return n
}

func (l *Library) String() string {
	return fmt.Sprintf("effects(live=%d pending=%d particles=%d)", len(l.live), len(l.pending), l.ParticleCount())
}
