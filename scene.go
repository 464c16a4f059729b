package conelab

import (
	"github.com/go-gl/mathgl/mgl32"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// Scene composition: turns the current customization state into a renderable
// graph of meshes with resolved materials, camera and lighting presets, and
// morph profiles bound to the wizard's transition session.

// ResolvedMaterial is the per-body appearance after applying the override
// rules: an override color beats an override texture, which beats the
// procedural buffer for the body's material kind.
type ResolvedMaterial struct {
	Kind             MaterialKind
	Color            [4]uint8
	HasOverrideColor bool
	Texture          *TextureResource
	Procedural       *TextureBuffer
	Roughness        float32
	Metalness        float32
}

// resolveAppearance applies the override precedence for one body. A texture
// override that has not resolved yet starts loading and falls back to the
// procedural buffer for this frame; a failed load degrades the same way and
// never blocks the wizard.
func resolveAppearance(kind MaterialKind, ov appearanceOverride, textures *TextureCache, gen *MaterialGenerator) ResolvedMaterial {
	roughness, metalness, baseColor := gen.Variant(kind)
	mat := ResolvedMaterial{
		Kind:      kind,
		Color:     baseColor,
		Roughness: roughness,
		Metalness: metalness,
	}

	if ov.hasColor {
		c, err := colorful.Hex(ov.hexColor)
		if err == nil {
			r, g, b := c.RGB255()
			mat.Color = [4]uint8{r, g, b, baseColor[3]}
			mat.HasOverrideColor = true
			return mat
		}
	}

	if ov.textureURL != "" {
		if tex := textures.Lookup(ov.textureURL); tex != nil && !tex.Disposed() {
			mat.Texture = tex
			return mat
		}
		textures.Acquire(ov.textureURL)
	}

	mat.Procedural = gen.Generate(kind)
	return mat
}

type TransformNode struct {
	Position mgl32.Vec3
	Rotation mgl32.Vec3 // Euler angles, radians
	Scale    mgl32.Vec3
}

// SceneNode is one renderable body. Nodes with a morph profile are restated
// every tick by the morph system from the shared session progress.
type SceneNode struct {
	Name      string
	Mesh      Mesh
	Material  ResolvedMaterial
	Transform TransformNode

	morphEnabled bool
	morph        MorphProfile
	window       PhaseWindow
	basePosition mgl32.Vec3
	baseRotation mgl32.Vec3
}

// SetMorph binds a morph profile and its window over the master progress.
// Profile offsets are deltas against the transform the node was composed
// with.
func (n *SceneNode) SetMorph(profile MorphProfile, window PhaseWindow) {
	n.morphEnabled = true
	n.morph = profile
	n.window = window
	n.basePosition = n.Transform.Position
	n.baseRotation = n.Transform.Rotation
}

type CameraPreset struct {
	Position mgl32.Vec3
	Target   mgl32.Vec3
	FovDeg   float32
}

type SceneGraph struct {
	Nodes  []*SceneNode
	Camera CameraPreset
	Lights []LightDef
}

func (g *SceneGraph) Node(name string) *SceneNode {
	for _, n := range g.Nodes {
		if n.Name == name {
			return n
		}
	}
	return nil
}

// sceneScale converts option-table millimeters to scene units.
const sceneScale = 0.1

func coneDimensions(size ConeSize) ConeSizeOption {
	if opt, ok := FindConeSizeOption(size); ok {
		return opt
	}
	// default preview dimensions before the user picks a size
	opt, _ := FindConeSizeOption(ConeSizeClassic)
	return opt
}

func paperKind(t PaperType) MaterialKind {
	if opt, ok := FindPaperOption(t); ok {
		return opt.Material
	}
	return PaperRefinedWhite
}

func filterKind(t FilterType) MaterialKind {
	if opt, ok := FindFilterOption(t); ok {
		return opt.Material
	}
	return PaperRefinedWhite
}

// ComposeStepScene assembles the viewport scene for one wizard step from a
// read-only snapshot of the customization state. The assembly steps bind
// morph profiles to overlapping windows of the single session progress:
// bodies first drift together, then swing vertical, then form the final
// shape, all off one monotonic driver.
func ComposeStepScene(step State, state CustomizationState, assets *AssetServer, textures *TextureCache, gen *MaterialGenerator) *SceneGraph {
	dims := coneDimensions(state.Cone)
	length := dims.LengthMM * sceneScale
	baseR := dims.BaseDiameterMM * sceneScale / 2
	tipR := dims.TipDiameterMM * sceneScale / 2

	paperMat := resolveAppearance(paperKind(state.Paper), state.paperOverride, textures, gen)
	filterMat := resolveAppearance(filterKind(state.Filter), state.filterOverride, textures, gen)

	graph := &SceneGraph{
		Camera: CameraPreset{
			Position: mgl32.Vec3{0, length * 0.6, length * 1.8},
			Target:   mgl32.Vec3{0, length * 0.4, 0},
			FovDeg:   40,
		},
		Lights: studioLights(),
	}

	const segments = 48
	wall := baseR * 0.08

	switch step {
	case StepPaper:
		// a loose paper roll, lying on its side
		roll := &SceneNode{
			Name:     "paper-roll",
			Mesh:     assets.CreateTubeMesh(baseR-wall, baseR, length*0.8, segments),
			Material: paperMat,
			Transform: TransformNode{
				Position: mgl32.Vec3{0, baseR, 0},
				Rotation: mgl32.Vec3{0, 0, mgl32.DegToRad(90)},
				Scale:    mgl32.Vec3{1, 1, 1},
			},
		}
		graph.Nodes = append(graph.Nodes, roll)

	case StepFilter:
		filterLen := length * 0.25
		roll := &SceneNode{
			Name:     "paper-roll",
			Mesh:     assets.CreateTubeMesh(baseR-wall, baseR, length*0.8, segments),
			Material: paperMat,
			Transform: TransformNode{
				Position: mgl32.Vec3{-baseR * 2.5, baseR, 0},
				Rotation: mgl32.Vec3{0, 0, mgl32.DegToRad(90)},
				Scale:    mgl32.Vec3{1, 1, 1},
			},
		}
		filter := &SceneNode{
			Name:     "filter-plug",
			Mesh:     assets.CreateCylinderMesh(tipR, filterLen, segments),
			Material: filterMat,
			Transform: TransformNode{
				Position: mgl32.Vec3{baseR * 2.5, tipR, 0},
				Rotation: mgl32.Vec3{0, 0, mgl32.DegToRad(90)},
				Scale:    mgl32.Vec3{1, 1, 1},
			},
		}

		// the two parts drift together while the step transition runs
		roll.SetMorph(MorphProfile{
			Start:  ShapeParams{Scale: 1},
			End:    ShapeParams{PositionOffset: mgl32.Vec3{baseR * 1.5, 0, 0}, Scale: 1},
			Easing: EaseCubicOut,
		}, PhaseWindow{Start: 0, Scale: 1.0 / 0.6})
		filter.SetMorph(MorphProfile{
			Start:  ShapeParams{Scale: 1},
			End:    ShapeParams{PositionOffset: mgl32.Vec3{-baseR * 1.5, 0, 0}, Scale: 1},
			Easing: EaseCubicOut,
		}, PhaseWindow{Start: 0, Scale: 1.0 / 0.6})
		graph.Nodes = append(graph.Nodes, roll, filter)

	default:
		// StepSize onward: the merged cone, assembled in three overlapping
		// phases of one transition
		cone := &SceneNode{
			Name:     "cone-body",
			Mesh:     assets.CreateConeMesh(baseR, tipR, length, segments),
			Material: paperMat,
			Transform: TransformNode{
				Position: mgl32.Vec3{0, 0, 0},
				Rotation: mgl32.Vec3{0, 0, mgl32.DegToRad(90)},
				Scale:    mgl32.Vec3{1, 1, 1},
			},
		}
		cone.SetMorph(MorphProfile{
			Start: ShapeParams{
				OuterRadius: baseR,
				Height:      length * 0.8,
				Scale:       1,
			},
			End: ShapeParams{
				OuterRadius:    baseR,
				Height:         length,
				RotationOffset: mgl32.Vec3{0, 0, mgl32.DegToRad(-90)},
				Scale:          1,
			},
			Easing: EaseCubicInOut,
		}, PhaseWindow{Start: 0.3, Scale: 1.0 / 0.4})

		tip := &SceneNode{
			Name:     "filter-tip",
			Mesh:     assets.CreateCylinderMesh(tipR, length*0.2, segments),
			Material: filterMat,
			Transform: TransformNode{
				Position: mgl32.Vec3{0, -length * 0.2, 0},
				Scale:    mgl32.Vec3{1, 1, 1},
			},
		}
		tip.SetMorph(MorphProfile{
			Start:  ShapeParams{PositionOffset: mgl32.Vec3{0, -length * 0.1, 0}, Scale: 1},
			End:    ShapeParams{Scale: 1},
			Easing: EaseQuartOut,
		}, PhaseWindow{Start: 0.6, Scale: 1.0 / 0.4})

		baseCap := &SceneNode{
			Name:     "base-cap",
			Mesh:     assets.CreateDiscMesh(0, baseR, segments),
			Material: filterMat,
			Transform: TransformNode{
				Position: mgl32.Vec3{0, 0, 0},
				Scale:    mgl32.Vec3{1, 1, 1},
			},
		}
		graph.Nodes = append(graph.Nodes, cone, tip, baseCap)
	}

	return graph
}

// applyMorph restates a node's transform from the master progress.
func (n *SceneNode) applyMorph(master float32) {
	if !n.morphEnabled {
		return
	}
	local := n.window.Progress(master)
	shape := n.morph.At(local)

	n.Transform.Position = n.basePosition.Add(shape.PositionOffset)
	n.Transform.Rotation = n.baseRotation.Add(shape.RotationOffset)
	if shape.Scale != 0 {
		n.Transform.Scale = mgl32.Vec3{shape.Scale, shape.Scale, shape.Scale}
	}

	// radius/height morphs render as non-uniform scale against the end shape
	if n.morph.End.OuterRadius > 0 && shape.OuterRadius > 0 {
		r := shape.OuterRadius / n.morph.End.OuterRadius
		n.Transform.Scale[0] *= r
		n.Transform.Scale[2] *= r
	}
	if n.morph.End.Height > 0 && shape.Height > 0 {
		n.Transform.Scale[1] *= shape.Height / n.morph.End.Height
	}
}

// SceneComposer is the resource owning the currently mounted scene graph.
type SceneComposer struct {
	Graph *SceneGraph

	composedStep  State
	composedState CustomizationState
}

// SceneComposerModule recomposes the graph whenever the step or the
// selections change, and restates morph transforms every frame while a
// transition runs.
type SceneComposerModule struct{}

func (SceneComposerModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(&SceneComposer{})

	app.UseSystem(
		System(sceneComposeSystem).
			InStage(PreRender).
			RunAlways(),
	)
	app.UseSystem(
		System(sceneMorphSystem).
			InStage(Render).
			RunAlways(),
	)
}

func sceneComposeSystem(composer *SceneComposer, wiz *Wizard, assets *AssetServer, textures *TextureCache, gen *MaterialGenerator, cmd *Commands) {
	step := cmd.CurrentState()
	if composer.Graph != nil && composer.composedStep == step && composer.composedState == wiz.Customization &&
		!composer.overrideResolved(textures) {
		return
	}

	composer.Graph = ComposeStepScene(step, wiz.Customization, assets, textures, gen)
	composer.composedStep = step
	composer.composedState = wiz.Customization
}

// overrideResolved reports whether a texture override that was still loading
// at compose time has resolved since, which calls for a recompose.
func (c *SceneComposer) overrideResolved(textures *TextureCache) bool {
	for _, ov := range []appearanceOverride{c.composedState.paperOverride, c.composedState.filterOverride} {
		if ov.hasColor || ov.textureURL == "" {
			continue
		}
		res := textures.Lookup(ov.textureURL)
		if res == nil {
			continue
		}
		if !c.graphUsesTexture(res) {
			return true
		}
	}
	return false
}

func (c *SceneComposer) graphUsesTexture(res *TextureResource) bool {
	for _, node := range c.Graph.Nodes {
		if node.Material.Texture == res {
			return true
		}
	}
	return false
}

func sceneMorphSystem(composer *SceneComposer, wiz *Wizard) {
	if composer.Graph == nil {
		return
	}
	master := wiz.Session.Progress()
	for _, node := range composer.Graph.Nodes {
		node.applyMorph(master)
	}
}
