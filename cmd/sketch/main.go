// Command sketch is a terminal gesture pad. Drag with the left mouse button
// to draw a stroke; releasing it classifies the stroke against the
// configured templates and shows the normalized grid.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/conjure/config"
	"github.com/pthm-cable/conjure/gesture"
	"github.com/pthm-cable/conjure/input"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml or config.toml (empty = use defaults)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	templates, err := input.Templates(cfg.Gesture.Templates)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	rec := gesture.New(gesture.Config{GridX: cfg.Gesture.GridX, GridY: cfg.Gesture.GridY, Templates: templates})

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create screen: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to init screen: %v\n", err)
		os.Exit(1)
	}
	screen.EnableMouse()
	defer screen.Fini()

	// The terminal owns stdout; keep slog quiet.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})))

	run(screen, newPad(rec), templates)
}

func run(screen tcell.Screen, p *pad, templates []gesture.Template) {
	start := time.Now()
	names := make([]string, len(templates))
	for i, t := range templates {
		names[i] = t.Name
	}

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			events <- screen.PollEvent()
		}
	}()

	ticker := time.NewTicker(33 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC ||
					(ev.Key() == tcell.KeyRune && ev.Rune() == 'q') {
					return
				}
			case *tcell.EventMouse:
				x, y := ev.Position()
				if ev.Buttons()&tcell.Button1 != 0 {
					p.press(x, y, time.Since(start).Seconds())
				} else {
					p.release()
				}
			case *tcell.EventResize:
				screen.Sync()
			}
		case <-ticker.C:
			draw(screen, p, names)
		}
	}
}

var (
	styleText   = tcell.StyleDefault.Foreground(tcell.ColorWhite)
	styleDim    = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleResult = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	styleStroke = tcell.StyleDefault.Foreground(tcell.ColorAqua)
)

func draw(screen tcell.Screen, p *pad, names []string) {
	screen.Clear()
	w, _ := screen.Size()

	drawText(screen, 0, 0, styleText, "conjure sketch  templates: "+strings.Join(names, ", ")+"  (q to quit)")
	drawText(screen, 0, 1, styleResult, p.result)

	// The grid sits at the right edge so it does not cover the drawing area.
	lines := strings.Split(strings.TrimRight(p.grid(), "\n"), "\n")
	gx := w - len(lines[0]) - 1
	for row, l := range lines {
		for col, ch := range l {
			style := styleStroke
			if ch == '.' {
				style = styleDim
			}
			screen.SetContent(gx+col, 3+row, ch, nil, style)
		}
	}

	for i, h := range p.history {
		drawText(screen, 0, 3+i, styleDim, h)
	}
	screen.Show()
}

func drawText(screen tcell.Screen, x, y int, style tcell.Style, s string) {
	for i, ch := range s {
		screen.SetContent(x+i, y, ch, nil, style)
	}
}
