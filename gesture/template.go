// Package gesture classifies freehand 2D strokes into named shapes.
//
// A stroke is normalized onto a small integer grid and reduced to a sequence
// of 8-way direction steps. Each template is an ordered list of such steps;
// a matcher walks the stroke against one template, tolerating a bounded
// number of stray steps.
package gesture

import "fmt"

// DefaultMaxTries is the fault tolerance of a template that sets none.
const DefaultMaxTries = 7

// Direction is a discretized step, each component in {-1, 0, 1}.
type Direction struct {
	X, Y int
}

// Zero reports whether the step has no movement.
func (d Direction) Zero() bool { return d.X == 0 && d.Y == 0 }

func (d Direction) String() string { return fmt.Sprintf("(%d,%d)", d.X, d.Y) }

// DirectionOf returns the signs of a displacement.
func DirectionOf(dx, dy int) Direction {
	return Direction{X: sign(dx), Y: sign(dy)}
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// Template is a named sequence of direction steps.
type Template struct {
	Name     string
	Steps    []Direction
	MaxTries int // faults tolerated before the cursor resets
}

// Validate reports a template that can never match.
func (t Template) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("template has no name")
	}
	if len(t.Steps) == 0 {
		return fmt.Errorf("template %s has no steps", t.Name)
	}
	for i, s := range t.Steps {
		if s.X < -1 || s.X > 1 || s.Y < -1 || s.Y > 1 || s.Zero() {
			return fmt.Errorf("template %s: step %d %v is not a unit direction", t.Name, i, s)
		}
	}
	if t.MaxTries < 0 {
		return fmt.Errorf("template %s: max tries %d is negative", t.Name, t.MaxTries)
	}
	return nil
}

// FromPairs builds a template from [x, y] pairs.
func FromPairs(name string, maxTries int, pairs [][]int) (Template, error) {
	t := Template{Name: name, MaxTries: maxTries}
	for i, p := range pairs {
		if len(p) != 2 {
			return Template{}, fmt.Errorf("template %s: step %d has %d components", name, i, len(p))
		}
		t.Steps = append(t.Steps, Direction{X: p[0], Y: p[1]})
	}
	if t.MaxTries == 0 {
		t.MaxTries = DefaultMaxTries
	}
	return t, t.Validate()
}

// Square traces four sides, two steps each.
func Square() Template {
	return Template{
		Name: "square",
		Steps: []Direction{
			{1, 0}, {1, 0},
			{0, -1}, {0, -1},
			{-1, 0}, {-1, 0},
			{0, 1}, {0, 1},
		},
		MaxTries: 8,
	}
}

// Circle traces one full turn.
func Circle() Template {
	return Template{
		Name: "circle",
		Steps: []Direction{
			{-1, -1}, {-1, 0}, {-1, 1}, {0, 1},
			{1, 1}, {1, 0}, {1, -1}, {0, -1},
		},
		MaxTries: 3,
	}
}

// DownLeft is an L stroke. It is not part of DefaultTemplates.
func DownLeft() Template {
	return Template{
		Name: "downLeft",
		Steps: []Direction{
			{0, -1}, {0, -1}, {0, -1},
			{-1, 0}, {-1, 0}, {-1, 0},
		},
		MaxTries: DefaultMaxTries,
	}
}

// DefaultTemplates returns the templates registered when none are configured.
func DefaultTemplates() []Template {
	return []Template{Square(), Circle()}
}
