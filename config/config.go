// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen     ScreenConfig     `yaml:"screen" toml:"screen"`
	Sim        SimConfig        `yaml:"sim" toml:"sim"`
	Physics    PhysicsConfig    `yaml:"physics" toml:"physics"`
	Actor      ActorConfig      `yaml:"actor" toml:"actor"`
	Gun        GunConfig        `yaml:"gun" toml:"gun"`
	Projectile ProjectileConfig `yaml:"projectile" toml:"projectile"`
	Explosion  ExplosionConfig  `yaml:"explosion" toml:"explosion"`
	Agent      AgentConfig      `yaml:"agent" toml:"agent"`
	Driver     DriverConfig     `yaml:"driver" toml:"driver"`
	Player     PlayerConfig     `yaml:"player" toml:"player"`
	Gesture    GestureConfig    `yaml:"gesture" toml:"gesture"`
	Effects    EffectsConfig    `yaml:"effects" toml:"effects"`
	Audio      AudioConfig      `yaml:"audio" toml:"audio"`
	Telemetry  TelemetryConfig  `yaml:"telemetry" toml:"telemetry"`
	Logging    LoggingConfig    `yaml:"logging" toml:"logging"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-" toml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width" toml:"width"`
	Height    int `yaml:"height" toml:"height"`
	TargetFPS int `yaml:"target_fps" toml:"target_fps"`
}

// SimConfig holds tick and scene setup parameters.
type SimConfig struct {
	DT          float64 `yaml:"dt" toml:"dt"`                     // Fixed step for headless runs
	MaxDT       float64 `yaml:"max_dt" toml:"max_dt"`             // Frame delta clamp in graphical mode
	GroundSize  float64 `yaml:"ground_size" toml:"ground_size"`   // Edge length of the ground mesh
	SpawnRadius float64 `yaml:"spawn_radius" toml:"spawn_radius"` // Half-width of the default spawn box
	SpawnHeight float64 `yaml:"spawn_height" toml:"spawn_height"` // Height of the default spawn box
}

// PhysicsConfig holds rigid body world parameters.
type PhysicsConfig struct {
	Gravity     float64 `yaml:"gravity" toml:"gravity"` // Acceleration along y (negative is down)
	Restitution float64 `yaml:"restitution" toml:"restitution"`
}

// ActorConfig holds defaults shared by every actor.
type ActorConfig struct {
	LinearDamping  float64 `yaml:"linear_damping" toml:"linear_damping"`
	AngularDamping float64 `yaml:"angular_damping" toml:"angular_damping"`
	FadeInRate     float64 `yaml:"fade_in_rate" toml:"fade_in_rate"` // Opacity gained per second
	Lift           float64 `yaml:"lift" toml:"lift"`                 // Upward impulse per second used by flying actors
	ThrowLifespan  float64 `yaml:"throw_lifespan" toml:"throw_lifespan"`
}

// GunConfig holds gun defaults.
type GunConfig struct {
	Lifespan     float64 `yaml:"lifespan" toml:"lifespan"`
	FireInterval float64 `yaml:"fire_interval" toml:"fire_interval"`
	Speed        float64 `yaml:"speed" toml:"speed"`
}

// ProjectileConfig holds projectile defaults.
type ProjectileConfig struct {
	Lifespan      float64 `yaml:"lifespan" toml:"lifespan"`
	Speed         float64 `yaml:"speed" toml:"speed"`
	FuseRemaining float64 `yaml:"fuse_remaining" toml:"fuse_remaining"` // Explode once lifespan drops below this
	SoundDuration float64 `yaml:"sound_duration" toml:"sound_duration"`
}

// ExplosionConfig holds explosion defaults.
type ExplosionConfig struct {
	Lifespan float64 `yaml:"lifespan" toml:"lifespan"`
}

// AgentConfig holds steering parameters for flocking agents.
type AgentConfig struct {
	MaxSpeed           float64 `yaml:"max_speed" toml:"max_speed"`
	NeighborhoodRadius float64 `yaml:"neighborhood_radius" toml:"neighborhood_radius"`
	BoundingRadius     float64 `yaml:"bounding_radius" toml:"bounding_radius"`
	Smoothing          int     `yaml:"smoothing" toml:"smoothing"`
	Alignment          float64 `yaml:"alignment" toml:"alignment"`
	Cohesion           float64 `yaml:"cohesion" toml:"cohesion"`
	Separation         float64 `yaml:"separation" toml:"separation"`
	Avoidance          float64 `yaml:"avoidance" toml:"avoidance"`
	VisionRange        float64 `yaml:"vision_range" toml:"vision_range"`
	VisionFOV          float64 `yaml:"vision_fov" toml:"vision_fov"` // Field of view as a fraction of pi
	Count              int     `yaml:"count" toml:"count"`           // Agents spawned at startup
}

// DriverConfig holds parameters for force-steered drivers.
type DriverConfig struct {
	Count           int     `yaml:"count" toml:"count"`
	BaseSize        float64 `yaml:"base_size" toml:"base_size"`
	Thrust          float64 `yaml:"thrust" toml:"thrust"`
	StopDistanceSq  float64 `yaml:"stop_distance_sq" toml:"stop_distance_sq"`
	FireTolerance   float64 `yaml:"fire_tolerance" toml:"fire_tolerance"` // Degrees
	HoverBase       float64 `yaml:"hover_base" toml:"hover_base"`
	HoverPerSize    float64 `yaml:"hover_per_size" toml:"hover_per_size"`
	HoverLift       float64 `yaml:"hover_lift" toml:"hover_lift"`
	FireDelayBase   float64 `yaml:"fire_delay_base" toml:"fire_delay_base"`
	FireDelayJitter float64 `yaml:"fire_delay_jitter" toml:"fire_delay_jitter"`
}

// PlayerConfig holds player body and control parameters.
type PlayerConfig struct {
	LinearDamping float64 `yaml:"linear_damping" toml:"linear_damping"`
	Mass          float64 `yaml:"mass" toml:"mass"`
	Size          float64 `yaml:"size" toml:"size"`
	EyeHeight     float64 `yaml:"eye_height" toml:"eye_height"`
	MoveImpulse   float64 `yaml:"move_impulse" toml:"move_impulse"`
	FireInterval  float64 `yaml:"fire_interval" toml:"fire_interval"`
	CameraFollow  float64 `yaml:"camera_follow" toml:"camera_follow"` // Fraction of the old camera position kept per tick
	Music         bool    `yaml:"music" toml:"music"`
}

// GestureConfig holds shape recognizer and controller sampling parameters.
type GestureConfig struct {
	GridX          int              `yaml:"grid_x" toml:"grid_x"`
	GridY          int              `yaml:"grid_y" toml:"grid_y"`
	SampleInterval float64          `yaml:"sample_interval" toml:"sample_interval"`
	ThrowInterval  float64          `yaml:"throw_interval" toml:"throw_interval"`
	ThrowSpeed     float64          `yaml:"throw_speed" toml:"throw_speed"` // Minimum controller speed for a throw
	Templates      []TemplateConfig `yaml:"templates" toml:"templates"`
}

// TemplateConfig is one named direction sequence.
type TemplateConfig struct {
	Name     string  `yaml:"name" toml:"name"`
	MaxTries int     `yaml:"max_tries" toml:"max_tries"`
	Vectors  [][]int `yaml:"vectors" toml:"vectors"`
}

// EffectsConfig holds particle effect loading parameters.
type EffectsConfig struct {
	LoadLatency  int `yaml:"load_latency" toml:"load_latency"` // Ticks before a spawned effect is ready
	MaxParticles int `yaml:"max_particles" toml:"max_particles"`
}

// AudioConfig holds sound engine parameters.
type AudioConfig struct {
	Enabled     bool    `yaml:"enabled" toml:"enabled"`
	SampleRate  int     `yaml:"sample_rate" toml:"sample_rate"`
	Volume      float64 `yaml:"volume" toml:"volume"`
	RefDistance float64 `yaml:"ref_distance" toml:"ref_distance"`
	Rolloff     float64 `yaml:"rolloff" toml:"rolloff"`
	LoadLatency int     `yaml:"load_latency" toml:"load_latency"`
}

// TelemetryConfig holds telemetry settings.
type TelemetryConfig struct {
	StatsWindow         float64 `yaml:"stats_window" toml:"stats_window"`
	PerfCollectorWindow int     `yaml:"perf_collector_window" toml:"perf_collector_window"`
}

// LoggingConfig holds slog handler settings.
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"` // json or text
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	FireToleranceRad float64 // Driver.FireTolerance in radians
	VisionFOVRad     float64 // Agent.VisionFOV in radians
	StatsWindowTicks int     // Telemetry.StatsWindow / Sim.DT
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Default returns the embedded defaults. It panics if they fail to parse.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded defaults: %v", err))
	}
	return cfg
}

// Load loads configuration from a YAML or TOML file, merging with embedded
// defaults. The format is chosen by file extension. If path is empty, only
// embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		switch strings.ToLower(filepath.Ext(path)) {
		case ".toml":
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing toml config: %w", err)
			}
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config file: %w", err)
			}
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	cfg.computeDerived()

	return cfg, nil
}

// Validate rejects values the simulation cannot run with. Out-of-range
// tuning values are not errors; the game clamps them with a warning.
func (c *Config) Validate() error {
	var errs []error
	if c.Sim.DT <= 0 {
		errs = append(errs, fmt.Errorf("sim.dt must be positive, got %v", c.Sim.DT))
	}
	if c.Gesture.GridX < 2 || c.Gesture.GridY < 2 {
		errs = append(errs, fmt.Errorf("gesture grid must be at least 2x2, got %dx%d", c.Gesture.GridX, c.Gesture.GridY))
	}
	for i, tpl := range c.Gesture.Templates {
		if tpl.Name == "" {
			errs = append(errs, fmt.Errorf("gesture.templates[%d]: missing name", i))
		}
		if len(tpl.Vectors) == 0 {
			errs = append(errs, fmt.Errorf("gesture.templates[%d] %q: no vectors", i, tpl.Name))
		}
		for j, v := range tpl.Vectors {
			if len(v) != 2 || v[0] < -1 || v[0] > 1 || v[1] < -1 || v[1] > 1 || (v[0] == 0 && v[1] == 0) {
				errs = append(errs, fmt.Errorf("gesture.templates[%d] %q: vector %d %v is not a unit direction", i, tpl.Name, j, v))
			}
		}
	}
	return errors.Join(errs...)
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.FireToleranceRad = c.Driver.FireTolerance * math.Pi / 180
	c.Derived.VisionFOVRad = c.Agent.VisionFOV * math.Pi
	c.Derived.StatsWindowTicks = int(math.Round(c.Telemetry.StatsWindow / c.Sim.DT))
	if c.Derived.StatsWindowTicks < 1 {
		c.Derived.StatsWindowTicks = 1
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
