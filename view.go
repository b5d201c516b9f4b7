package main

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/gopxl/beep/speaker"

	"github.com/pthm-cable/conjure/config"
	"github.com/pthm-cable/conjure/game"
	"github.com/pthm-cable/conjure/input"
	"github.com/pthm-cable/conjure/renderer"
	"github.com/pthm-cable/conjure/ui"
)

const controlsText = "W/S move | Space fire | LMB draw | Shift+LMB draw left | RMB/arrows look | P/O/I debug casts | H overlays | Tab pause"

// view owns the window-side objects of a graphical session.
type view struct {
	g       *game.Game
	inputs  *input.Manager
	scene   *renderer.SceneRenderer
	hud     *ui.HUD
	perf    *ui.PerfPanel
	strokes *ui.StrokePanel
	panel   *ui.ControlsPanel

	overlays *ui.OverlayRegistry
	maxDT    float64
	driverN  int
}

// runWindow opens the raylib window, starts the speaker and runs the frame
// loop until the window closes or maxTicks is reached.
func runWindow(cfg *config.Config, opts game.Options, maxTicks int) error {
	rl.SetConfigFlags(rl.FlagMsaa4xHint | rl.FlagWindowResizable)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), "Conjure")
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	g, err := game.NewGameWithOptions(opts)
	if err != nil {
		return err
	}
	defer g.Unload()

	if !opts.Mute && cfg.Audio.Enabled {
		sr := g.Audio().SampleRate()
		if err := speaker.Init(sr, sr.N(time.Second/10)); err != nil {
			slog.Warn("audio unavailable", "error", err)
		} else {
			speaker.Play(g.Audio())
			defer speaker.Close()
		}
	}

	mgr, err := input.NewManager(cfg, g.Player(), g.Rig())
	if err != nil {
		return fmt.Errorf("building input: %w", err)
	}

	v := &view{
		g:        g,
		inputs:   mgr,
		scene:    renderer.NewSceneRenderer(),
		hud:      ui.NewHUD(),
		perf:     ui.NewPerfPanel(10, 140),
		strokes:  ui.NewStrokePanel(10, 140),
		panel:    ui.NewControlsPanel(int32(cfg.Screen.Width)-200, 10, 190),
		overlays: ui.NewOverlayRegistry(),
		maxDT:    cfg.Sim.MaxDT,
		driverN:  cfg.Driver.Count,
	}

	slog.Info("starting graphical session", "seed", opts.Seed, "width", cfg.Screen.Width, "height", cfg.Screen.Height)

	for !rl.WindowShouldClose() {
		v.update()
		v.draw()

		if maxTicks > 0 && int(g.Tick()) >= maxTicks {
			slog.Info("max ticks reached", "tick", g.Tick())
			break
		}
	}
	return nil
}

// update polls input and advances the session by the clamped frame time.
func (v *view) update() {
	if rl.IsKeyPressed(rl.KeyTab) {
		v.g.TogglePause()
	}
	if rl.IsKeyPressed(rl.KeyH) {
		v.panel.Toggle()
	}
	v.overlays.HandleKeys()
	v.scene.ShowLights = v.overlays.IsEnabled(ui.OverlayLights)

	dt := math.Min(float64(rl.GetFrameTime()), v.maxDT)
	if v.g.Paused() {
		return
	}
	frame := renderer.PollInput(v.g.Rig())
	v.inputs.Update(dt, frame, v.g)
	v.g.Step(dt)
}

func (v *view) draw() {
	v.g.Perf().RecordFrame()

	rl.BeginDrawing()
	v.scene.Draw(v.g.Map().Scene(), v.g.Effects(), v.g.Rig(), v.g.Player())

	actions := v.hud.Draw(ui.HUDData{
		Title:      "Conjure",
		Tick:       v.g.Tick(),
		FPS:        rl.GetFPS(),
		Paused:     v.g.Paused(),
		Population: v.g.Map().Population(),
		Guns:       len(v.g.Player().Guns()),
		Pending:    v.g.Bridge().Pending(),
	})
	sw, sh := int32(rl.GetScreenWidth()), int32(rl.GetScreenHeight())
	if v.overlays.IsEnabled(ui.OverlayLegend) {
		v.hud.DrawControls(sh, controlsText)
	}
	if v.overlays.IsEnabled(ui.OverlayStroke) {
		for _, c := range []*input.Controller{v.inputs.Left(), v.inputs.Right()} {
			if c.Selecting() {
				v.strokes.Draw("Stroke", c.Recognizer().Render())
			}
		}
	}
	if v.overlays.IsEnabled(ui.OverlayPerf) {
		v.perf.SetPosition(10, sh-200)
		v.perf.Draw(v.g.Perf().Stats())
	}
	v.panel.SetPosition(sw-200, 10)
	v.panel.Draw(v.overlays)
	rl.EndDrawing()

	if actions.TogglePause {
		v.g.TogglePause()
	}
	if actions.SpawnDriver {
		v.g.SpawnDriver(v.driverN)
		v.driverN++
	}
	if actions.Clear {
		v.g.Clear()
	}
}
