// Package renderer draws the conjure scene with raylib and polls the
// keyboard and mouse into input frames.
package renderer

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/conjure/camera"
	"github.com/pthm-cable/conjure/components"
	"github.com/pthm-cable/conjure/effects"
	"github.com/pthm-cable/conjure/game"
	"github.com/pthm-cable/conjure/render"
)

var background = rl.Color{R: 12, G: 14, B: 22, A: 255}

// SceneRenderer draws meshes, lights, particles and the player's hands from
// the rig's point of view.
type SceneRenderer struct {
	cam rl.Camera3D

	// ShowLights draws a marker at every point light.
	ShowLights bool
}

// NewSceneRenderer creates a renderer. Call after the window is open.
func NewSceneRenderer() *SceneRenderer {
	return &SceneRenderer{
		cam: rl.Camera3D{
			Up:         rl.NewVector3(0, 1, 0),
			Fovy:       60,
			Projection: rl.CameraPerspective,
		},
		ShowLights: true,
	}
}

// Camera returns the raylib camera used for the last frame.
func (r *SceneRenderer) Camera() rl.Camera3D { return r.cam }

// syncCamera copies the rig pose into the raylib camera.
func (r *SceneRenderer) syncCamera(rig *camera.Rig) {
	eye := rig.Eye()
	up := components.Rotate(rig.Orientation(), r3.Vec{Y: 1})
	r.cam.Position = vec(eye)
	r.cam.Target = vec(r3.Add(eye, rig.Forward()))
	r.cam.Up = vec(up)
	r.cam.Fovy = float32(rig.FovY)
}

// Draw renders one frame of the 3D view. p may be nil.
func (r *SceneRenderer) Draw(scene *render.Scene, fx *effects.Library, rig *camera.Rig, p *game.Player) {
	r.syncCamera(rig)

	rl.ClearBackground(background)
	rl.BeginMode3D(r.cam)

	if g := scene.Ground; g != nil && g.Visible {
		rl.DrawPlane(vec(r3.Add(g.Position, r3.Vec{X: 5})), rl.NewVector2(float32(g.Shape.Size), float32(g.Shape.Width)), color(g.Color, 1))
		rl.DrawGrid(40, 1)
	}

	for _, m := range scene.Meshes() {
		if m.Visible && m.Opacity > 0 {
			drawMesh(m)
		}
	}

	if r.ShowLights {
		for _, l := range scene.Lights() {
			radius := float32(0.03 + 0.02*math.Min(l.Intensity, 5))
			rl.DrawSphereEx(vec(l.WorldPosition()), radius, 4, 4, color(l.Color, 0.6))
		}
	}

	if fx != nil {
		rl.BeginBlendMode(rl.BlendAdditive)
		for _, e := range fx.Effects() {
			drawParticles(e.Particles())
		}
		rl.EndBlendMode()
	}

	if p != nil {
		for _, h := range []*game.Hand{p.Left, p.Right} {
			rl.DrawSphereWires(vec(h.Position), 0.03, 6, 6, rl.RayWhite)
		}
	}

	rl.EndMode3D()
}

// drawMesh draws m at its pose. Cones point along the mesh's forward axis.
func drawMesh(m *render.Mesh) {
	c := color(m.Color, m.Opacity)
	s := m.Shape

	switch s.Kind {
	case components.ShapeSphere:
		rl.DrawSphereEx(vec(m.Position), float32(s.Radius()), 12, 12, c)

	case components.ShapeCone:
		fwd := components.Rotate(m.Orientation, components.Forward)
		half := r3.Scale(s.Size/2, fwd)
		base, tip := r3.Sub(m.Position, half), r3.Add(m.Position, half)
		rl.DrawCylinderEx(vec(base), vec(tip), float32(s.Width), 0, 12, c)

	case components.ShapeBox:
		axis, deg := axisAngle(m.Orientation)
		rl.PushMatrix()
		rl.Translatef(float32(m.Position.X), float32(m.Position.Y), float32(m.Position.Z))
		rl.Rotatef(deg, float32(axis.X), float32(axis.Y), float32(axis.Z))
		rl.DrawCube(rl.NewVector3(0, 0, 0), float32(s.Width), float32(s.Height), float32(s.Size), c)
		rl.DrawCubeWires(rl.NewVector3(0, 0, 0), float32(s.Width), float32(s.Height), float32(s.Size), rl.Fade(rl.Black, 0.4))
		rl.PopMatrix()
	}
}

func drawParticles(ps []effects.Particle) {
	for i := range ps {
		p := &ps[i]
		if p.Alpha <= 0 || p.Scale <= 0 {
			continue
		}
		rl.DrawSphereEx(vec(p.Position), float32(p.Scale*0.1), 3, 4, color(p.Color, p.Alpha))
	}
}
