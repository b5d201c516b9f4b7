package ui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/conjure/telemetry"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title      string
	Tick       int32
	FPS        int32
	Paused     bool
	Population telemetry.Population
	Guns       int // live guns held by the player
	Pending    int // queued player intents
}

// Actions reports which HUD buttons were clicked this frame.
type Actions struct {
	TogglePause bool
	SpawnDriver bool
	Clear       bool
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{renderer: NewRenderer()}
}

// Draw renders the HUD and its buttons.
func (h *HUD) Draw(data HUDData) Actions {
	r := h.renderer
	rl.DrawText(data.Title, 10, 10, 20, rl.White)

	pop := data.Population
	rl.DrawText(
		fmt.Sprintf("Actors: %d | AIs: %d | Bodies: %d | Guns: %d", pop.Actors, pop.AIs, pop.Bodies, data.Guns),
		10, 35, 16, rl.LightGray,
	)
	rl.DrawText(
		fmt.Sprintf("Tick: %d | FPS: %d | Particles: %d | Sounds: %d | Queued: %d", data.Tick, data.FPS, pop.Particles, pop.Sounds, data.Pending),
		10, 55, 16, rl.LightGray,
	)

	statusText := "Running"
	if data.Paused {
		statusText = "PAUSED"
	}
	rl.DrawText(statusText, 10, 75, 16, rl.Yellow)

	var a Actions
	bw, bh := r.Theme.ButtonWidth, r.Theme.ButtonHeight
	y := float32(100)
	pauseLabel := "Pause"
	if data.Paused {
		pauseLabel = "Resume"
	}
	a.TogglePause = gui.Button(rl.Rectangle{X: 10, Y: y, Width: bw, Height: bh}, pauseLabel)
	a.SpawnDriver = gui.Button(rl.Rectangle{X: 20 + bw, Y: y, Width: bw, Height: bh}, "Spawn driver")
	a.Clear = gui.Button(rl.Rectangle{X: 30 + 2*bw, Y: y, Width: bw, Height: bh}, "Clear")
	return a
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// PerfPanel renders the tick phase timing panel.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
}

// NewPerfPanel creates a new performance panel.
func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{renderer: NewRenderer(), x: x, y: y}
}

// SetPosition updates the panel position.
func (p *PerfPanel) SetPosition(x, y int32) {
	p.x = x
	p.y = y
}

// Draw renders the performance panel, slowest phase first.
func (p *PerfPanel) Draw(stats telemetry.PerfStats) {
	x, y := p.x, p.y

	rl.DrawText("Tick Phases", x, y, 16, rl.White)
	y += 20
	rl.DrawText(fmt.Sprintf("Avg: %s  Max: %s", stats.AvgTickDuration.Round(time.Microsecond), stats.MaxTickDuration.Round(time.Microsecond)), x, y, 14, rl.Yellow)
	y += 16

	names := make([]string, 0, len(stats.PhaseAvg))
	for name := range stats.PhaseAvg {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return stats.PhaseAvg[names[i]] > stats.PhaseAvg[names[j]] })

	for _, name := range names {
		pct := stats.PhasePct[name]
		color := rl.LightGray
		if pct > 40 {
			color = rl.Red
		} else if pct > 20 {
			color = rl.Orange
		}
		rl.DrawText(
			fmt.Sprintf("%-10s %8s %5.1f%%", name, stats.PhaseAvg[name].Round(time.Microsecond), pct),
			x, y, 12, color,
		)
		y += 14
	}
}

// StrokePanel shows the grid of the stroke being drawn, one glyph per cell.
type StrokePanel struct {
	renderer *Renderer
	x, y     int32
}

// NewStrokePanel creates a stroke panel.
func NewStrokePanel(x, y int32) *StrokePanel {
	return &StrokePanel{renderer: NewRenderer(), x: x, y: y}
}

// SetPosition updates the panel position.
func (s *StrokePanel) SetPosition(x, y int32) {
	s.x = x
	s.y = y
}

// Draw renders grid, the output of a recognizer's Render. Nothing is drawn
// for an empty stroke.
func (s *StrokePanel) Draw(title, grid string) {
	if strings.TrimSpace(grid) == "" {
		return
	}
	r := s.renderer
	lines := strings.Split(strings.TrimRight(grid, "\n"), "\n")
	const cell = 8
	width := int32(0)
	for _, l := range lines {
		if w := int32(len(l)) * cell; w > width {
			width = w
		}
	}
	height := int32(len(lines))*cell + r.Theme.LineHeight + 2*r.Theme.Padding
	r.DrawPanel(s.x, s.y, width+2*r.Theme.Padding, height)

	y := r.DrawHeader(s.x+r.Theme.Padding, s.y+r.Theme.Padding/2, title)
	for _, l := range lines {
		for i, ch := range l {
			if ch == ' ' || ch == '.' {
				continue
			}
			rl.DrawText(string(ch), s.x+r.Theme.Padding+int32(i)*cell, y, 10, rl.SkyBlue)
		}
		y += cell
	}
}
