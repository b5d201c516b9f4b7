// Package audio plays positional sound clips through a beep mixer.
//
// Sounds load asynchronously: Play hands back a handle that becomes audible
// once Poll has run for the configured latency. The engine itself is a
// beep.Streamer; main passes it to speaker.Play, and tests pull samples from
// it directly.
package audio

import (
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"gonum.org/v1/gonum/spatial/r3"
)

// Config holds engine parameters.
type Config struct {
	Enabled     bool
	SampleRate  int
	Volume      float64 // default per-sound volume
	RefDistance float64
	Rolloff     float64
	LoadLatency int // Poll calls before a sound is ready (at least one)
}

// Anchor is anything a positional sound can follow.
type Anchor interface {
	WorldPosition() r3.Vec
}

// SoundOptions configures one play of a clip.
type SoundOptions struct {
	Volume   float64 // 0 uses the engine default
	Loop     bool
	Detune   float64 // cents
	Duration float64 // seconds; 0 uses the clip length, or forever for loops
	Anchor   Anchor
	Position r3.Vec // used when Anchor is nil
}

// State is the load state of a sound handle.
type State uint8

const (
	StateUnloaded State = iota
	StateLoading
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUnloaded:
		return "unloaded"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Engine mixes every playing sound.
type Engine struct {
	cfg  Config
	rate beep.SampleRate

	mu      sync.Mutex
	mixer   *beep.Mixer
	pending []*Sound
	active  []*Sound
}

// NewEngine creates an engine. Zero fields fall back to usable defaults.
func NewEngine(cfg Config) *Engine {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 44100
	}
	if cfg.Volume <= 0 {
		cfg.Volume = 0.3
	}
	if cfg.RefDistance <= 0 {
		cfg.RefDistance = 20
	}
	if cfg.Rolloff <= 0 {
		cfg.Rolloff = 1
	}
	return &Engine{
		cfg:   cfg,
		rate:  beep.SampleRate(cfg.SampleRate),
		mixer: &beep.Mixer{},
	}
}

// SampleRate returns the output sample rate.
func (e *Engine) SampleRate() beep.SampleRate { return e.rate }

// Stream implements beep.Streamer. It always fills samples, with silence when
// nothing is playing.
func (e *Engine) Stream(samples [][2]float64) (n int, ok bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	n, _ = e.mixer.Stream(samples)
	for i := n; i < len(samples); i++ {
		samples[i] = [2]float64{}
	}
	return len(samples), true
}

// Err implements beep.Streamer.
func (e *Engine) Err() error { return nil }

// Play starts loading a clip. The returned handle is in the loading state.
func (e *Engine) Play(name string, opts SoundOptions) *Sound {
	if opts.Volume <= 0 {
		opts.Volume = e.cfg.Volume
	}
	s := &Sound{
		engine: e,
		name:   name,
		opts:   opts,
		state:  StateLoading,
		wait:   e.cfg.LoadLatency,
	}
	e.mu.Lock()
	e.pending = append(e.pending, s)
	e.mu.Unlock()
	return s
}

// Poll advances pending loads by one tick and re-attenuates every playing
// sound against the listener position.
func (e *Engine) Poll(listener r3.Vec) {
	e.mu.Lock()
	defer e.mu.Unlock()

	remaining := e.pending[:0]
	for _, s := range e.pending {
		if s.state != StateLoading {
			continue
		}
		s.wait--
		if s.wait > 0 {
			remaining = append(remaining, s)
			continue
		}
		e.start(s)
	}
	for i := len(remaining); i < len(e.pending); i++ {
		e.pending[i] = nil
	}
	e.pending = remaining

	alive := 0
	for _, s := range e.active {
		if s.tracked.done {
			continue
		}
		s.setGain(e.gain(s, listener))
		e.active[alive] = s
		alive++
	}
	for i := alive; i < len(e.active); i++ {
		e.active[i] = nil
	}
	e.active = e.active[:alive]
}

// start builds the streamer chain for s. Callers hold e.mu.
func (e *Engine) start(s *Sound) {
	c, ok := clips[s.name]
	if !ok {
		s.state = StateFailed
		slog.Warn("sound_clip_missing", "name", s.name)
		return
	}

	freq := c.freq * math.Pow(2, s.opts.Detune/1200)
	var tone beep.Streamer
	tone, err := generators.SineTone(e.rate, freq)
	if err != nil {
		s.state = StateFailed
		slog.Warn("sound_synthesis_failed", "name", s.name, "err", fmt.Errorf("tone %.0fHz: %w", freq, err))
		return
	}

	var length time.Duration
	switch {
	case s.opts.Duration > 0:
		length = time.Duration(s.opts.Duration * float64(time.Second))
	case !s.opts.Loop:
		length = c.duration
	}
	if length > 0 {
		tone = beep.Take(e.rate.N(length), tone)
	}

	s.tracked = &tracked{Streamer: tone}
	s.volume = &effects.Volume{Streamer: s.tracked, Base: 2}
	s.ctrl = &beep.Ctrl{Streamer: s.volume}
	s.setGain(s.opts.Volume)
	s.state = StateReady

	if !e.cfg.Enabled {
		s.tracked.done = true
		return
	}
	e.mixer.Add(s.ctrl)
	e.active = append(e.active, s)
}

// gain returns the inverse-distance attenuated volume of s.
func (e *Engine) gain(s *Sound, listener r3.Vec) float64 {
	pos := s.opts.Position
	if s.opts.Anchor != nil {
		pos = s.opts.Anchor.WorldPosition()
	}
	return s.opts.Volume * Attenuation(r3.Norm(r3.Sub(pos, listener)), e.cfg.RefDistance, e.cfg.Rolloff)
}

// Attenuation is the inverse distance model: full volume inside ref, then
// ref / (ref + rolloff·(d - ref)).
func Attenuation(d, ref, rolloff float64) float64 {
	if d <= ref {
		return 1
	}
	return ref / (ref + rolloff*(d-ref))
}

// Playing returns the number of sounds in the mixer.
func (e *Engine) Playing() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mixer.Len()
}

// Pending returns the number of sounds still loading.
func (e *Engine) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.pending)
}

// Close drops every sound.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, s := range e.active {
		s.ctrl.Streamer = nil
	}
	e.active = nil
	for _, s := range e.pending {
		s.state = StateUnloaded
	}
	e.pending = nil
	e.mixer.Clear()
}

// tracked records when the wrapped streamer drains.
type tracked struct {
	beep.Streamer
	done bool
}

func (t *tracked) Stream(samples [][2]float64) (int, bool) {
	n, ok := t.Streamer.Stream(samples)
	if !ok {
		t.done = true
	}
	return n, ok
}

// Sound is a handle to one play of a clip.
type Sound struct {
	engine *Engine
	name   string
	opts   SoundOptions
	state  State
	wait   int
	killed bool

	tracked *tracked
	volume  *effects.Volume
	ctrl    *beep.Ctrl
	gain    float64
}

// Name returns the clip name.
func (s *Sound) Name() string { return s.name }

// State returns the load state.
func (s *Sound) State() State {
	s.engine.mu.Lock()
	defer s.engine.mu.Unlock()
	return s.state
}

// Loop reports whether the sound repeats.
func (s *Sound) Loop() bool { return s.opts.Loop }

// Gain returns the last applied volume.
func (s *Sound) Gain() float64 {
	s.engine.mu.Lock()
	defer s.engine.mu.Unlock()
	return s.gain
}

// Kill cancels a sound that is still loading and silences a looping one.
// One-shot sounds that already started play to the end.
func (s *Sound) Kill() {
	e := s.engine
	e.mu.Lock()
	defer e.mu.Unlock()

	if s.killed {
		return
	}
	switch s.state {
	case StateLoading:
		s.killed = true
		s.state = StateUnloaded
		for i, p := range e.pending {
			if p == s {
				e.pending = append(e.pending[:i], e.pending[i+1:]...)
				break
			}
		}
	case StateReady:
		if !s.opts.Loop {
			return
		}
		s.killed = true
		// A nil streamer makes the Ctrl report drained; the mixer drops it.
		s.ctrl.Streamer = nil
		s.tracked.done = true
	}
}

// setGain applies a linear gain. Callers hold the engine mutex.
func (s *Sound) setGain(g float64) {
	s.gain = g
	if g <= 0 {
		s.volume.Silent = true
		return
	}
	s.volume.Silent = false
	s.volume.Volume = math.Log2(g)
}
