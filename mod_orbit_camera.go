package conelab

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Orbit camera for the product preview: left-drag rotates around the
// composed camera target at a fixed distance. The base framing comes from
// the step's camera preset; orbiting offsets it without ever losing the
// product.

type OrbitCameraModule struct {
	Sensitivity float32
}

func (m OrbitCameraModule) Install(app *App, cmd *Commands) {
	sensitivity := m.Sensitivity
	if sensitivity == 0 {
		sensitivity = 0.008
	}
	cmd.AddResources(&orbitState{sensitivity: sensitivity})

	app.UseSystem(
		System(orbitCameraSystem).
			InStage(PreRender).
			RunAlways(),
	)
}

type orbitState struct {
	graph       *SceneGraph
	radius      float32
	baseYaw     float32
	basePitch   float32
	yaw         float32
	pitch       float32
	sensitivity float32
}

// rebase captures the spherical framing of a freshly composed camera,
// keeping any accumulated orbit so the view stays continuous across steps.
func (o *orbitState) rebase(graph *SceneGraph) {
	o.graph = graph
	offset := graph.Camera.Position.Sub(graph.Camera.Target)
	o.radius = offset.Len()
	if o.radius == 0 {
		o.radius = 1
	}
	o.baseYaw = float32(math.Atan2(float64(offset.X()), float64(offset.Z())))
	o.basePitch = float32(math.Asin(float64(offset.Y() / o.radius)))
}

const maxOrbitPitch = float32(math.Pi/2) * 0.95

func orbitCameraSystem(orbit *orbitState, input *Input, composer *SceneComposer) {
	graph := composer.Graph
	if graph == nil {
		return
	}
	if graph != orbit.graph {
		orbit.rebase(graph)
	}

	if input.Pressed[MouseButtonLeft] {
		orbit.yaw += float32(input.MouseDeltaX) * orbit.sensitivity
		orbit.pitch += float32(input.MouseDeltaY) * orbit.sensitivity
	}
	if input.JustPressed[MouseButtonRight] {
		// snap back to the step's default framing
		orbit.yaw = 0
		orbit.pitch = 0
	}

	yaw := orbit.baseYaw + orbit.yaw
	pitch := orbit.basePitch + orbit.pitch
	if pitch > maxOrbitPitch {
		pitch = maxOrbitPitch
	}
	if pitch < -maxOrbitPitch {
		pitch = -maxOrbitPitch
	}

	dir := mgl32.Vec3{
		float32(math.Sin(float64(yaw)) * math.Cos(float64(pitch))),
		float32(math.Sin(float64(pitch))),
		float32(math.Cos(float64(yaw)) * math.Cos(float64(pitch))),
	}
	graph.Camera.Position = graph.Camera.Target.Add(dir.Mul(orbit.radius))
}
