package main

import (
	"math"
	"strings"
	"testing"

	"github.com/pthm-cable/conjure/gesture"
)

// dragSquare presses through a square in terminal cells. Terminal rows grow
// downward, so the template's y steps are negated.
func dragSquare(p *pad) {
	x, y := 10, 5
	p.press(x, y, 0)
	for i, d := range gesture.Square().Steps {
		x += d.X
		y -= d.Y
		p.press(x, y, float64(i+1)*0.05)
	}
}

func TestPadClassifiesOnRelease(t *testing.T) {
	p := newPad(gesture.New(gesture.Config{}))

	dragSquare(p)
	if !p.drawing {
		t.Fatal("pad not drawing after presses")
	}
	if strings.Count(p.grid(), "\n") != 30 {
		t.Errorf("live grid has %d rows, want 30", strings.Count(p.grid(), "\n"))
	}

	matches := p.release()
	if len(matches) != 1 || matches[0].Name != "square" {
		t.Fatalf("matches = %+v, want one square", matches)
	}
	if math.Abs(matches[0].Width-2) > 1e-9 || math.Abs(matches[0].Height-2) > 1e-9 {
		t.Errorf("box = %vx%v, want 2x2", matches[0].Width, matches[0].Height)
	}
	if p.result != "square 2x2" {
		t.Errorf("result = %q", p.result)
	}
	if p.rec.Len() != 0 {
		t.Error("recognizer not reset after release")
	}
	if p.grid() == "" {
		t.Error("last stroke grid dropped after release")
	}
}

func TestPadReleaseWithoutStroke(t *testing.T) {
	p := newPad(gesture.New(gesture.Config{}))
	if m := p.release(); m != nil {
		t.Errorf("release without press = %+v, want nil", m)
	}
	if len(p.history) != 0 {
		t.Errorf("history = %v, want empty", p.history)
	}
}

func TestPadNoMatch(t *testing.T) {
	p := newPad(gesture.New(gesture.Config{}))
	p.press(0, 0, 0)
	p.press(5, 0, 0.1)
	p.release()
	if p.result != "no match" {
		t.Errorf("result = %q, want no match", p.result)
	}
}

func TestPadHistoryBounded(t *testing.T) {
	p := newPad(gesture.New(gesture.Config{}))
	for i := 0; i < 12; i++ {
		p.press(0, 0, 0)
		p.release()
	}
	if len(p.history) != 8 {
		t.Errorf("history = %d entries, want 8", len(p.history))
	}
}
