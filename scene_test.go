package conelab

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func newSceneFixture() (*AssetServer, *TextureCache, *MaterialGenerator) {
	return newTestAssetServer(), NewTextureCache(&fakeLoader{}, NewNopLogger()), NewMaterialGenerator(NewNopLogger())
}

func TestResolveAppearance_ProceduralByDefault(t *testing.T) {
	_, textures, gen := newSceneFixture()

	mat := resolveAppearance(PaperUnbleachedBrown, appearanceOverride{}, textures, gen)
	if mat.Procedural == nil {
		t.Fatal("no override should resolve to the procedural buffer")
	}
	if mat.Procedural.Kind != PaperUnbleachedBrown {
		t.Errorf("procedural kind: got %v, want %v", mat.Procedural.Kind, PaperUnbleachedBrown)
	}
	if mat.HasOverrideColor || mat.Texture != nil {
		t.Error("no override should leave color and texture unset")
	}
}

func TestResolveAppearance_ColorBeatsTexture(t *testing.T) {
	_, textures, gen := newSceneFixture()

	ov := appearanceOverride{textureURL: "tex://custom"}
	if err := ov.setColor("#ff0000"); err != nil {
		t.Fatal(err)
	}

	mat := resolveAppearance(PaperRefinedWhite, ov, textures, gen)
	if !mat.HasOverrideColor {
		t.Fatal("color override should win")
	}
	if mat.Color[0] != 255 || mat.Color[1] != 0 || mat.Color[2] != 0 {
		t.Errorf("override color: got %v, want red", mat.Color)
	}
	if mat.Texture != nil || mat.Procedural != nil {
		t.Error("a color override should suppress texture and procedural appearance")
	}
}

func TestResolveAppearance_TextureFallsBackWhilePending(t *testing.T) {
	_, textures, gen := newSceneFixture()

	ov := appearanceOverride{textureURL: "tex://pending"}
	mat := resolveAppearance(PaperRefinedWhite, ov, textures, gen)

	// First resolve kicks off the load but renders procedurally this frame.
	if mat.Texture != nil {
		t.Error("unresolved texture should not be applied")
	}
	if mat.Procedural == nil {
		t.Error("pending texture should fall back to the procedural buffer")
	}

	// Once the load settles, the texture is picked up.
	res, err := textures.Acquire("tex://pending").Result()
	if err != nil {
		t.Fatal(err)
	}
	mat = resolveAppearance(PaperRefinedWhite, ov, textures, gen)
	if mat.Texture != res {
		t.Error("resolved texture should be applied on the next resolve")
	}
	if mat.Procedural != nil {
		t.Error("an applied texture should suppress the procedural buffer")
	}
}

func TestComposeStepScene_PaperStep(t *testing.T) {
	assets, textures, gen := newSceneFixture()

	graph := ComposeStepScene(StepPaper, CustomizationState{Paper: PaperTypeOrganicHemp}, assets, textures, gen)
	if len(graph.Nodes) != 1 {
		t.Fatalf("paper step should show one body, got %d", len(graph.Nodes))
	}

	roll := graph.Node("paper-roll")
	if roll == nil {
		t.Fatal("paper step should contain the paper roll")
	}
	if roll.Material.Kind != PaperOrganicHemp {
		t.Errorf("roll material: got %v, want %v", roll.Material.Kind, PaperOrganicHemp)
	}
}

func TestComposeStepScene_FilterStep(t *testing.T) {
	assets, textures, gen := newSceneFixture()

	state := CustomizationState{Paper: PaperTypeRefinedWhite, Filter: FilterTypeWoodTip}
	graph := ComposeStepScene(StepFilter, state, assets, textures, gen)

	if len(graph.Nodes) != 2 {
		t.Fatalf("filter step should show two bodies, got %d", len(graph.Nodes))
	}
	filter := graph.Node("filter-plug")
	if filter == nil {
		t.Fatal("filter step should contain the filter plug")
	}
	if filter.Material.Kind != TipWoodGrain {
		t.Errorf("filter material: got %v, want %v", filter.Material.Kind, TipWoodGrain)
	}

	// Both bodies drift toward each other across the transition.
	roll := graph.Node("paper-roll")
	rollStart := roll.Transform.Position
	roll.applyMorph(1)
	filter.applyMorph(1)
	if roll.Transform.Position.X() <= rollStart.X() {
		t.Error("the roll should drift right while the transition runs")
	}
	if filter.Transform.Position.X() >= baseRFor(state)*2.5 {
		t.Error("the filter should drift left while the transition runs")
	}
}

func baseRFor(state CustomizationState) float32 {
	return coneDimensions(state.Cone).BaseDiameterMM * sceneScale / 2
}

func TestComposeStepScene_MorphKeepsComposedRotation(t *testing.T) {
	assets, textures, gen := newSceneFixture()

	state := CustomizationState{Paper: PaperTypeRefinedWhite, Filter: FilterTypeWoodTip}
	graph := ComposeStepScene(StepFilter, state, assets, textures, gen)

	// Both bodies lie on their side; the drift profiles only move them, so
	// the composed rotation must survive every tick of the morph system.
	for _, name := range []string{"paper-roll", "filter-plug"} {
		n := graph.Node(name)
		want := n.Transform.Rotation.Z()
		if want == 0 {
			t.Fatalf("%s should be composed lying on its side", name)
		}
		n.applyMorph(0)
		if got := n.Transform.Rotation.Z(); got != want {
			t.Errorf("%s rotation at progress 0: got %v, want %v", name, got, want)
		}
		n.applyMorph(1)
		if got := n.Transform.Rotation.Z(); got != want {
			t.Errorf("%s rotation at progress 1: got %v, want %v", name, got, want)
		}
	}
}

func TestComposeStepScene_SizeStepAssembly(t *testing.T) {
	assets, textures, gen := newSceneFixture()

	state := CustomizationState{
		Paper:  PaperTypeGoldLeaf,
		Filter: FilterTypeCeramicTip,
		Cone:   ConeSizeKing,
	}
	graph := ComposeStepScene(StepSize, state, assets, textures, gen)

	for _, name := range []string{"cone-body", "filter-tip", "base-cap"} {
		if graph.Node(name) == nil {
			t.Errorf("size step should contain %q", name)
		}
	}

	cone := graph.Node("cone-body")

	// Early in the transition the cone window has not opened yet.
	cone.applyMorph(0.1)
	if cone.Transform.Rotation.Z() == 0 {
		t.Error("the cone should start lying on its side")
	}

	// At full progress the cone stands upright at full height.
	cone.applyMorph(1)
	if math.Abs(float64(cone.Transform.Rotation.Z())) > 1e-5 {
		t.Errorf("the cone should finish upright, rotation z = %v", cone.Transform.Rotation.Z())
	}
	if math.Abs(float64(cone.Transform.Scale.Y()-1)) > 1e-5 {
		t.Errorf("the cone should finish at full height, scale y = %v", cone.Transform.Scale.Y())
	}

	// The tip waits for its window, then rises into place.
	tip := graph.Node("filter-tip")
	tip.applyMorph(0.5)
	atHalf := tip.Transform.Position.Y()
	tip.applyMorph(1)
	if tip.Transform.Position.Y() <= atHalf {
		t.Error("the tip should rise during the last phase of the transition")
	}
}

func TestComposeStepScene_DefaultDimensions(t *testing.T) {
	assets, textures, gen := newSceneFixture()

	// An unset size previews with the classic dimensions instead of a
	// degenerate zero-size cone.
	graph := ComposeStepScene(StepPaper, CustomizationState{}, assets, textures, gen)
	if graph.Camera.Position.Z() <= 0 {
		t.Error("camera should frame a non-degenerate preview")
	}

	roll := graph.Node("paper-roll")
	asset, _ := assets.GetMesh(roll.Mesh.AssetId())
	_, _, maxRadius := meshBounds(asset.Vertices())
	if maxRadius <= 0 {
		t.Error("preview roll should have a real radius before a size is picked")
	}
}

func TestSceneNode_ApplyMorphWithoutProfile(t *testing.T) {
	node := &SceneNode{
		Transform: TransformNode{
			Position: mgl32.Vec3{1, 2, 3},
			Scale:    mgl32.Vec3{1, 1, 1},
		},
	}
	node.applyMorph(0.5)
	if node.Transform.Position != (mgl32.Vec3{1, 2, 3}) {
		t.Error("a node without a morph profile must not move")
	}
}

func TestSceneGraph_NodeLookup(t *testing.T) {
	g := &SceneGraph{Nodes: []*SceneNode{{Name: "a"}, {Name: "b"}}}
	if g.Node("b") == nil {
		t.Error("existing node should be found")
	}
	if g.Node("zzz") != nil {
		t.Error("missing node should return nil")
	}
}

func TestStudioLights(t *testing.T) {
	lights := studioLights()
	if len(lights) != 3 {
		t.Fatalf("studio preset should be a three-point setup, got %d lights", len(lights))
	}
	for _, l := range lights {
		if l.Intensity <= 0 {
			t.Errorf("light %v has non-positive intensity", l.Type)
		}
	}
}
