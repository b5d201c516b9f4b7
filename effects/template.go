package effects

import (
	_ "embed"
	"fmt"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/conjure/components"
)

//go:embed templates.yaml
var templatesYAML []byte

// Template is an emitter preset as stored in templates.yaml.
type Template struct {
	ParticlesMin    int       `yaml:"particles_min"`
	ParticlesMax    int       `yaml:"particles_max"`
	IntervalMin     float64   `yaml:"interval_min"`
	IntervalMax     float64   `yaml:"interval_max"`
	LifeMin         float64   `yaml:"life_min"`
	LifeMax         float64   `yaml:"life_max"`
	Radius          float64   `yaml:"radius"`
	RadialSpeed     float64   `yaml:"radial_speed"`
	RadialDirection []float64 `yaml:"radial_direction"`
	RadialSpread    float64   `yaml:"radial_spread"` // Degrees; 180 or more emits in every direction
	AlphaA          float64   `yaml:"alpha_a"`
	AlphaB          float64   `yaml:"alpha_b"`
	ScaleA          float64   `yaml:"scale_a"`
	ScaleB          float64   `yaml:"scale_b"`
	ColorA          string    `yaml:"color_a"`
	ColorB          string    `yaml:"color_b"`
	Force           []float64 `yaml:"force"`
	Drift           []float64 `yaml:"drift"`
	DriftDelay      float64   `yaml:"drift_delay"`
	Rotate          []float64 `yaml:"rotate"`
	Spring          float64   `yaml:"spring"`
	SpringFriction  float64   `yaml:"spring_friction"`
}

// LoadTemplates parses a template catalog.
func LoadTemplates(data []byte) (map[string]Template, error) {
	out := map[string]Template{}
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parsing effect templates: %w", err)
	}
	for name, t := range out {
		if _, err := ParseHex(t.ColorA); t.ColorA != "" && err != nil {
			return nil, fmt.Errorf("template %s: color_a: %w", name, err)
		}
		if _, err := ParseHex(t.ColorB); t.ColorB != "" && err != nil {
			return nil, fmt.Errorf("template %s: color_b: %w", name, err)
		}
	}
	return out, nil
}

// ParseHex parses a #rrggbb colour.
func ParseHex(s string) (components.Color, error) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return components.Color{}, fmt.Errorf("invalid colour %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return components.Color{}, fmt.Errorf("invalid colour %q: %w", s, err)
	}
	return components.RGB(float64(v>>16&0xff), float64(v>>8&0xff), float64(v&0xff)), nil
}

func vec(s []float64) r3.Vec {
	var v r3.Vec
	if len(s) > 0 {
		v.X = s[0]
	}
	if len(s) > 1 {
		v.Y = s[1]
	}
	if len(s) > 2 {
		v.Z = s[2]
	}
	return v
}

// Params overrides a template at spawn time. Zero values keep the template
// setting; UseLoaded ignores every override except Position.
type Params struct {
	UseLoaded bool
	Position  r3.Vec

	ColorA *components.Color
	ColorB *components.Color
	ScaleA float64
	ScaleB float64

	ParticlesMin int
	ParticlesMax int
	LifeMin      float64
	LifeMax      float64

	RadialSpeed float64
	RadialY     float64 // vertical component of the emission direction

	Drift  r3.Vec
	Rotate r3.Vec

	// Spring pulls particles back toward the emitter.
	UseSpring bool
	Spring    float64

	// EmitterRotate spins the emission direction, in radians per second.
	EmitterRotate r3.Vec
}

// settings is a fully resolved emitter description.
type settings struct {
	particlesMin, particlesMax int
	intervalMin, intervalMax   float64
	lifeMin, lifeMax           float64
	radius                     float64
	radialSpeed                float64
	radialDir                  r3.Vec
	radialSpread               float64
	alphaA, alphaB             float64
	scaleA, scaleB             float64
	colorA, colorB             components.Color
	force                      r3.Vec
	drift                      r3.Vec
	driftDelay                 float64
	rotate                     r3.Vec
	spring, springFriction     float64
	emitterRotate              r3.Vec
}

func resolve(t Template, p Params) settings {
	s := settings{
		particlesMin:   t.ParticlesMin,
		particlesMax:   t.ParticlesMax,
		intervalMin:    t.IntervalMin,
		intervalMax:    t.IntervalMax,
		lifeMin:        t.LifeMin,
		lifeMax:        t.LifeMax,
		radius:         t.Radius,
		radialSpeed:    t.RadialSpeed,
		radialDir:      vec(t.RadialDirection),
		radialSpread:   t.RadialSpread,
		alphaA:         t.AlphaA,
		alphaB:         t.AlphaB,
		scaleA:         t.ScaleA,
		scaleB:         t.ScaleB,
		force:          vec(t.Force),
		drift:          vec(t.Drift),
		driftDelay:     t.DriftDelay,
		rotate:         vec(t.Rotate),
		spring:         t.Spring,
		springFriction: t.SpringFriction,
	}
	s.colorA, _ = ParseHex(t.ColorA)
	s.colorB, _ = ParseHex(t.ColorB)

	if !p.UseLoaded {
		if p.ColorA != nil {
			s.colorA = *p.ColorA
		}
		if p.ColorB != nil {
			s.colorB = *p.ColorB
		}
		setIf(&s.scaleA, p.ScaleA)
		setIf(&s.scaleB, p.ScaleB)
		setIf(&s.lifeMin, p.LifeMin)
		setIf(&s.lifeMax, p.LifeMax)
		setIf(&s.radialSpeed, p.RadialSpeed)
		if p.RadialY != 0 {
			s.radialDir.Y = p.RadialY
		}
		if p.ParticlesMin > 0 {
			s.particlesMin = p.ParticlesMin
		}
		if p.ParticlesMax > 0 {
			s.particlesMax = p.ParticlesMax
		}
		if p.Drift != (r3.Vec{}) {
			s.drift = p.Drift
		}
		if p.Rotate != (r3.Vec{}) {
			s.rotate = p.Rotate
		}
		if p.UseSpring {
			s.spring = p.Spring
			if s.spring == 0 {
				s.spring = 0.2
			}
			if s.springFriction == 0 {
				s.springFriction = 0.5
			}
		}
		s.emitterRotate = p.EmitterRotate
	}

	if s.particlesMax < s.particlesMin {
		s.particlesMax = s.particlesMin
	}
	if s.intervalMin <= 0 {
		s.intervalMin = 0.01
	}
	if s.intervalMax < s.intervalMin {
		s.intervalMax = s.intervalMin
	}
	if s.lifeMin <= 0 {
		s.lifeMin = 1
	}
	if s.lifeMax < s.lifeMin {
		s.lifeMax = s.lifeMin
	}
	return s
}

func setIf(dst *float64, v float64) {
	if v != 0 {
		*dst = v
	}
}
