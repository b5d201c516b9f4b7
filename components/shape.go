package components

// ShapeKind is the primitive geometry of an actor.
type ShapeKind uint8

const (
	ShapeSphere ShapeKind = iota
	ShapeBox
	ShapeCone
)

func (k ShapeKind) String() string {
	switch k {
	case ShapeSphere:
		return "sphere"
	case ShapeBox:
		return "box"
	case ShapeCone:
		return "cone"
	default:
		return "unknown"
	}
}

// ParseShapeKind maps a name to a ShapeKind. Unknown names report false.
func ParseShapeKind(name string) (ShapeKind, bool) {
	switch name {
	case "sphere":
		return ShapeSphere, true
	case "box", "square":
		return ShapeBox, true
	case "cone":
		return ShapeCone, true
	}
	return ShapeSphere, false
}

// Shape describes an actor's geometry. Size is the nominal diameter; boxes
// use Width and Height for their x/y extents and Size for depth.
type Shape struct {
	Kind   ShapeKind
	Size   float64
	Width  float64
	Height float64
}

// DefaultShape is the shape used when an actor is configured without one.
func DefaultShape() Shape {
	return Shape{Kind: ShapeSphere, Size: 0.1, Width: 0.15, Height: 0.15}
}

// Radius is half the nominal size.
func (s Shape) Radius() float64 {
	return s.Size / 2
}

// IsZero reports whether no dimension was set.
func (s Shape) IsZero() bool {
	return s.Size == 0 && s.Width == 0 && s.Height == 0
}

// HalfExtents returns the half sizes along x, y and z.
func (s Shape) HalfExtents() (x, y, z float64) {
	switch s.Kind {
	case ShapeBox:
		return abs(s.Width) / 2, abs(s.Height) / 2, s.Radius()
	default:
		r := s.Radius()
		return r, r, r
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
