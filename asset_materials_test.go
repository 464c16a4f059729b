package conelab

import (
	"math"
	"testing"
)

func TestMaterialGenerator_MemoizesByIdentity(t *testing.T) {
	gen := NewMaterialGenerator(NewNopLogger())

	first := gen.Generate(PaperUnbleachedBrown)
	second := gen.Generate(PaperUnbleachedBrown)

	if first != second {
		t.Error("repeated Generate for the same kind should return the identical buffer")
	}

	other := gen.Generate(PaperRefinedWhite)
	if other == first {
		t.Error("distinct kinds must not share a buffer")
	}
}

func TestMaterialGenerator_BufferShape(t *testing.T) {
	gen := NewMaterialGenerator(NewNopLogger())
	buf := gen.Generate(PaperRefinedWhite)

	if buf.Size != TextureGridSize {
		t.Errorf("buffer size: got %d, want %d", buf.Size, TextureGridSize)
	}
	if len(buf.Pix) != TextureGridSize*TextureGridSize*4 {
		t.Errorf("pixel slice length: got %d, want %d", len(buf.Pix), TextureGridSize*TextureGridSize*4)
	}
	if buf.Kind != PaperRefinedWhite {
		t.Errorf("buffer kind: got %v, want %v", buf.Kind, PaperRefinedWhite)
	}
}

func TestMaterialGenerator_DistinctKindsDiffer(t *testing.T) {
	gen := NewMaterialGenerator(NewNopLogger())

	white := gen.Generate(PaperRefinedWhite)
	brown := gen.Generate(PaperUnbleachedBrown)

	diff := math.Abs(white.MeanChannel(0) - brown.MeanChannel(0))
	if diff < 10 {
		t.Errorf("mean red of refined white and unbleached brown too close: %.2f", diff)
	}
}

func TestMaterialGenerator_TranslucentStock(t *testing.T) {
	gen := NewMaterialGenerator(NewNopLogger())

	clear := gen.Generate(PaperClearCellulose)
	for i := 3; i < len(clear.Pix); i += 4 {
		if clear.Pix[i] != 240 {
			t.Fatalf("clear cellulose alpha at %d: got %d, want 240", i, clear.Pix[i])
		}
	}

	opaque := gen.Generate(PaperRefinedWhite)
	if opaque.Pix[3] != 255 {
		t.Errorf("refined white alpha: got %d, want 255", opaque.Pix[3])
	}
}

func TestMaterialGenerator_WoodGrainRepeat(t *testing.T) {
	gen := NewMaterialGenerator(NewNopLogger())

	wood := gen.Generate(TipWoodGrain)
	if wood.RepeatX != 1 || wood.RepeatY != 3 {
		t.Errorf("wood grain repeat: got %vx%v, want 1x3", wood.RepeatX, wood.RepeatY)
	}

	paper := gen.Generate(PaperOrganicHemp)
	if paper.RepeatX != 1 || paper.RepeatY != 1 {
		t.Errorf("paper repeat: got %vx%v, want 1x1", paper.RepeatX, paper.RepeatY)
	}
}

func TestMaterialGenerator_UnknownKindFallsBack(t *testing.T) {
	gen := NewMaterialGenerator(NewNopLogger())

	buf := gen.Generate(MaterialKind(999))
	if buf == nil {
		t.Fatal("unknown kind should still produce a buffer")
	}

	white := gen.Generate(PaperRefinedWhite)
	if math.Abs(buf.MeanChannel(0)-white.MeanChannel(0)) > 1e-9 {
		t.Error("unknown kind should synthesize with the refined-white parameters")
	}
}

func TestMaterialGenerator_ClearDropsMemo(t *testing.T) {
	gen := NewMaterialGenerator(NewNopLogger())

	before := gen.Generate(PaperGoldLeaf)
	gen.Clear()
	after := gen.Generate(PaperGoldLeaf)

	if before == after {
		t.Error("Clear should force a fresh synthesis")
	}

	// Clear is idempotent.
	gen.Clear()
	gen.Clear()
	if gen.Generate(PaperGoldLeaf) == nil {
		t.Error("generator unusable after repeated Clear")
	}

	// The old buffer is still intact for holders.
	if len(before.Pix) != TextureGridSize*TextureGridSize*4 {
		t.Error("cleared buffer was mutated")
	}
}

func TestMaterialGenerator_Variant(t *testing.T) {
	gen := NewMaterialGenerator(NewNopLogger())

	rough, metal, color := gen.Variant(PaperGoldLeaf)
	if metal <= 0.5 {
		t.Errorf("gold leaf should read metallic, got %v", metal)
	}
	if rough >= 0.5 {
		t.Errorf("gold leaf should read smooth, got roughness %v", rough)
	}
	if color[3] != 255 {
		t.Errorf("gold leaf alpha: got %d, want 255", color[3])
	}

	_, _, clear := gen.Variant(PaperClearCellulose)
	if clear[3] != 240 {
		t.Errorf("clear cellulose variant alpha: got %d, want 240", clear[3])
	}
}

func TestFractal_Bounded(t *testing.T) {
	for _, octaves := range []int{1, 3, 5} {
		for j := 0; j < 16; j++ {
			for i := 0; i < 16; i++ {
				v := fractal(float64(i)/16, float64(j)/16, octaves, 24)
				if v < -1 || v > 1 {
					t.Fatalf("fractal value out of [-1,1]: %v at octaves=%d", v, octaves)
				}
			}
		}
	}
}

func TestClamp255(t *testing.T) {
	if clamp255(-10) != 0 {
		t.Error("negative values should clamp to 0")
	}
	if clamp255(300) != 255 {
		t.Error("overflow values should clamp to 255")
	}
	if clamp255(128) != 128 {
		t.Error("in-range values should pass through")
	}
}
