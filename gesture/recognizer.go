package gesture

import (
	"math"
	"strings"
)

// Point is one stroke sample.
type Point struct {
	X, Y float64
	T    float64 // seconds
}

// Cell is a point snapped to the recognizer grid.
type Cell struct {
	X, Y int
}

// Match is one recognized shape with the stroke's bounding box.
type Match struct {
	Name   string
	Width  float64
	Height float64
	Size   float64 // |Width| + |Height|
}

// Config holds recognizer settings. Zero values use a 30×30 grid and the
// default templates.
type Config struct {
	GridX, GridY int
	Templates    []Template
}

// Recognizer accumulates one stroke.
type Recognizer struct {
	gridX, gridY int
	templates    []Template

	points                 []Point
	minX, maxX, minY, maxY float64
}

// New creates an empty recognizer.
func New(cfg Config) *Recognizer {
	if cfg.GridX < 2 {
		cfg.GridX = 30
	}
	if cfg.GridY < 2 {
		cfg.GridY = 30
	}
	if len(cfg.Templates) == 0 {
		cfg.Templates = DefaultTemplates()
	}
	r := &Recognizer{gridX: cfg.GridX, gridY: cfg.GridY, templates: cfg.Templates}
	r.Reset()
	return r
}

// AddPoint appends a sample and grows the bounding box.
func (r *Recognizer) AddPoint(x, y, t float64) {
	r.points = append(r.points, Point{X: x, Y: y, T: t})
	r.minX = math.Min(r.minX, x)
	r.maxX = math.Max(r.maxX, x)
	r.minY = math.Min(r.minY, y)
	r.maxY = math.Max(r.maxY, y)
}

// Reset discards the stroke.
func (r *Recognizer) Reset() {
	r.points = r.points[:0]
	r.minX, r.minY = math.Inf(1), math.Inf(1)
	r.maxX, r.maxY = math.Inf(-1), math.Inf(-1)
}

// Len returns the number of samples.
func (r *Recognizer) Len() int { return len(r.points) }

// Points returns the samples. The slice must not be modified.
func (r *Recognizer) Points() []Point { return r.points }

// Templates returns the registered templates in evaluation order.
func (r *Recognizer) Templates() []Template { return r.templates }

// Width returns the horizontal extent of the stroke.
func (r *Recognizer) Width() float64 {
	if len(r.points) == 0 {
		return 0
	}
	return r.maxX - r.minX
}

// Height returns the vertical extent of the stroke.
func (r *Recognizer) Height() float64 {
	if len(r.points) == 0 {
		return 0
	}
	return r.maxY - r.minY
}

// Size returns the Manhattan size of the bounding box.
func (r *Recognizer) Size() float64 {
	return math.Abs(r.Width()) + math.Abs(r.Height())
}

// Normalize snaps every sample onto the grid. Both axes share one scale
// taken from the combined extent, so the aspect ratio is kept; a stroke with
// no extent maps every sample to the origin cell.
func (r *Recognizer) Normalize() []Cell {
	cells := make([]Cell, len(r.points))
	if len(r.points) == 0 {
		return cells
	}
	lo := math.Min(r.minX, r.minY)
	hi := math.Max(r.maxX, r.maxY)
	span := hi - lo
	if span == 0 {
		return cells
	}
	for i, p := range r.points {
		cells[i] = Cell{
			X: int((p.X - lo) / span * float64(r.gridX-1)),
			Y: int((p.Y - lo) / span * float64(r.gridY-1)),
		}
	}
	return cells
}

// Classify replays the whole stroke against fresh matchers and returns every
// match in the order it fired. When any template completes on a step, all
// matchers restart; templates completing on the same step are reported in
// registration order.
func (r *Recognizer) Classify() []Match {
	cells := r.Normalize()
	matchers := make([]*Matcher, len(r.templates))
	for i, t := range r.templates {
		matchers[i] = NewMatcher(t)
	}

	var out []Match
	for i := 1; i < len(cells); i++ {
		d := DirectionOf(cells[i].X-cells[i-1].X, cells[i].Y-cells[i-1].Y)
		if d.Zero() {
			continue
		}
		fired := false
		for _, m := range matchers {
			if m.Feed(d) {
				out = append(out, r.match(m.Template().Name))
				fired = true
			}
		}
		if fired {
			for _, m := range matchers {
				m.Reset()
			}
		}
	}
	return out
}

func (r *Recognizer) match(name string) Match {
	return Match{Name: name, Width: r.Width(), Height: r.Height(), Size: r.Size()}
}

// Render draws the stroke on the grid, top row first. Each visited cell
// shows the raw step that first entered it; unvisited cells are dots.
func (r *Recognizer) Render() string {
	cells := r.Normalize()
	marks := make([][]byte, r.gridY)
	for y := range marks {
		marks[y] = []byte(strings.Repeat(".", r.gridX))
	}
	seen := make(map[Cell]bool, len(cells))
	for i, c := range cells {
		if seen[c] {
			continue
		}
		seen[c] = true
		if i == 0 {
			continue
		}
		marks[c.Y][c.X] = stepGlyph(c.X-cells[i-1].X, c.Y-cells[i-1].Y)
	}

	var b strings.Builder
	for y := r.gridY - 1; y >= 0; y-- {
		b.Write(marks[y])
		b.WriteByte('\n')
	}
	return b.String()
}

func stepGlyph(x, y int) byte {
	switch {
	case x == y && (x == 1 || x == -1):
		return '/'
	case x == -y && x != 0:
		return '\\'
	case x > 0 && x > y:
		return '>'
	case x < 0 && x < y:
		return '<'
	case y > 0:
		return '^'
	case y < 0:
		return 'v'
	}
	return '#'
}
