package main

import (
	"fmt"
	"strings"

	"github.com/pthm-cable/conjure/gesture"
)

// pad turns mouse drags into strokes and keeps the last classification.
type pad struct {
	rec     *gesture.Recognizer
	drawing bool
	last    string // grid of the last finished stroke
	result  string
	history []string
}

func newPad(rec *gesture.Recognizer) *pad {
	return &pad{rec: rec, result: "draw a shape with the left button"}
}

// press adds a sample at terminal cell (x, y). Terminal rows grow
// downward, so y is flipped into recognizer space.
func (p *pad) press(x, y int, t float64) {
	if !p.drawing {
		p.rec.Reset()
		p.drawing = true
	}
	p.rec.AddPoint(float64(x), float64(-y), t)
}

// release ends the stroke and classifies it. It returns the matches.
func (p *pad) release() []gesture.Match {
	if !p.drawing {
		return nil
	}
	p.drawing = false
	p.last = p.rec.Render()
	matches := p.rec.Classify()
	p.result = describe(matches)
	p.history = append(p.history, p.result)
	if len(p.history) > 8 {
		p.history = p.history[1:]
	}
	p.rec.Reset()
	return matches
}

// grid returns the live stroke while drawing, else the last one.
func (p *pad) grid() string {
	if p.drawing {
		return p.rec.Render()
	}
	return p.last
}

func describe(matches []gesture.Match) string {
	if len(matches) == 0 {
		return "no match"
	}
	parts := make([]string, len(matches))
	for i, m := range matches {
		parts[i] = fmt.Sprintf("%s %.0fx%.0f", m.Name, m.Width, m.Height)
	}
	return strings.Join(parts, ", ")
}
