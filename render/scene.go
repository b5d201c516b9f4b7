// Package render holds the scene graph that the renderer draws: meshes with
// child lights, free lights and a camera pose.
package render

import (
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/conjure/components"
)

// Anchor is anything with a world pose that an actor can follow.
type Anchor interface {
	WorldPosition() r3.Vec
	WorldOrientation() quat.Number
}

// Mesh is a drawable shape.
type Mesh struct {
	Shape       components.Shape
	Color       components.Color
	Opacity     float64
	Visible     bool
	Position    r3.Vec
	Orientation quat.Number
	CastShadow  bool

	lights []*Light
	scene  *Scene
}

// NewMesh returns a visible, fully opaque mesh at the origin.
func NewMesh(shape components.Shape, color components.Color) *Mesh {
	return &Mesh{
		Shape:       shape,
		Color:       color,
		Opacity:     1,
		Visible:     true,
		Orientation: components.Identity(),
	}
}

// WorldPosition implements Anchor.
func (m *Mesh) WorldPosition() r3.Vec { return m.Position }

// WorldOrientation implements Anchor.
func (m *Mesh) WorldOrientation() quat.Number { return m.Orientation }

// LocalToWorld converts a point in mesh coordinates to world coordinates.
func (m *Mesh) LocalToWorld(p r3.Vec) r3.Vec {
	return r3.Add(components.Rotate(m.Orientation, p), m.Position)
}

// AddLight parents l to the mesh.
func (m *Mesh) AddLight(l *Light) {
	if l.parent == m {
		return
	}
	if l.parent != nil {
		l.parent.RemoveLight(l)
	}
	l.parent = m
	m.lights = append(m.lights, l)
}

// RemoveLight detaches l if it is a child of the mesh.
func (m *Mesh) RemoveLight(l *Light) {
	for i, c := range m.lights {
		if c == l {
			m.lights = append(m.lights[:i], m.lights[i+1:]...)
			l.parent = nil
			return
		}
	}
}

// Lights returns the child lights.
func (m *Mesh) Lights() []*Light { return m.lights }

// InScene reports whether the mesh is part of a scene.
func (m *Mesh) InScene() bool { return m.scene != nil }

// Light is a point light. Child lights are positioned relative to their mesh.
type Light struct {
	Color     components.Color
	Intensity float64
	Distance  float64
	Decay     float64
	Offset    r3.Vec

	parent *Mesh
}

// NewPointLight returns an unparented point light.
func NewPointLight(color components.Color, intensity, distance, decay float64) *Light {
	return &Light{Color: color, Intensity: intensity, Distance: distance, Decay: decay}
}

// WorldPosition returns the light position, following its parent mesh.
func (l *Light) WorldPosition() r3.Vec {
	if l.parent == nil {
		return l.Offset
	}
	return l.parent.LocalToWorld(l.Offset)
}

// Parent returns the mesh the light is attached to, or nil.
func (l *Light) Parent() *Mesh { return l.parent }

// Scene is an ordered set of meshes plus free-standing lights.
type Scene struct {
	meshes []*Mesh
	lights []*Light
	Ground *Mesh
}

// NewScene returns an empty scene.
func NewScene() *Scene {
	return &Scene{}
}

// Add inserts m. Adding a mesh twice is a no-op.
func (s *Scene) Add(m *Mesh) {
	if m == nil || m.scene == s {
		return
	}
	if m.scene != nil {
		m.scene.Remove(m)
	}
	m.scene = s
	s.meshes = append(s.meshes, m)
}

// Remove deletes m, preserving the order of the others. Removing a mesh
// that is not in the scene is a no-op.
func (s *Scene) Remove(m *Mesh) {
	if m == nil || m.scene != s {
		return
	}
	for i, c := range s.meshes {
		if c == m {
			s.meshes = append(s.meshes[:i], s.meshes[i+1:]...)
			break
		}
	}
	m.scene = nil
}

// Contains reports whether m is in the scene.
func (s *Scene) Contains(m *Mesh) bool { return m != nil && m.scene == s }

// Meshes returns the meshes in insertion order. The slice must not be modified.
func (s *Scene) Meshes() []*Mesh { return s.meshes }

// Len returns the number of meshes.
func (s *Scene) Len() int { return len(s.meshes) }

// AddLight inserts a free-standing light.
func (s *Scene) AddLight(l *Light) {
	for _, c := range s.lights {
		if c == l {
			return
		}
	}
	s.lights = append(s.lights, l)
}

// RemoveLight deletes a free-standing light if present.
func (s *Scene) RemoveLight(l *Light) {
	for i, c := range s.lights {
		if c == l {
			s.lights = append(s.lights[:i], s.lights[i+1:]...)
			return
		}
	}
}

// Lights returns the free-standing lights followed by the child lights of
// every mesh in the scene.
func (s *Scene) Lights() []*Light {
	out := append([]*Light(nil), s.lights...)
	for _, m := range s.meshes {
		out = append(out, m.lights...)
	}
	return out
}
