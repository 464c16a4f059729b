package conelab

import (
	"math"
	"sync"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// MaterialKind selects one procedural material signature. The paper family
// covers the six selectable paper stocks; the tip family reuses the
// wood-grain variant path with a stretched vertical repeat.
type MaterialKind int

const (
	PaperRefinedWhite MaterialKind = iota
	PaperUnbleachedBrown
	PaperOrganicHemp
	PaperRiceStraw
	PaperGoldLeaf
	PaperClearCellulose
	TipWoodGrain
	TipCeramicWhite
)

const TextureGridSize = 512

// TextureBuffer is an immutable square RGBA grid generated once per material
// kind and shared for the process lifetime.
type TextureBuffer struct {
	Size    int
	Pix     []uint8 // RGBA, row-major
	RepeatX float32
	RepeatY float32
	Kind    MaterialKind
}

// MeanChannel returns the average value of one channel (0=R,1=G,2=B,3=A),
// used to compare visual signatures across kinds.
func (b *TextureBuffer) MeanChannel(ch int) float64 {
	var sum uint64
	for i := ch; i < len(b.Pix); i += 4 {
		sum += uint64(b.Pix[i])
	}
	return float64(sum) / float64(b.Size*b.Size)
}

// materialVariant carries everything one kind supplies: fractal parameters
// for the base and grain layers, its tint, repeat factors, and the PBR
// constants the scene composer applies. Selecting the variant once per state
// change replaces re-branching on the kind every frame.
type materialVariant struct {
	baseHex        string
	baseOctaves    int
	baseScale      float64
	baseIntensity  float64
	grainOctaves   int
	grainScale     float64
	grainIntensity float64
	striated       bool
	alpha          uint8
	repeatX        float32
	repeatY        float32
	roughness      float32
	metalness      float32
}

var materialVariants = map[MaterialKind]materialVariant{
	PaperRefinedWhite: {
		baseHex:     "#f4efe6",
		baseOctaves: 3, baseScale: 18, baseIntensity: 0.05,
		grainOctaves: 2, grainScale: 90, grainIntensity: 0.03,
		alpha: 255, repeatX: 1, repeatY: 1,
		roughness: 0.85, metalness: 0.0,
	},
	PaperUnbleachedBrown: {
		baseHex:     "#c9a876",
		baseOctaves: 4, baseScale: 24, baseIntensity: 0.12,
		grainOctaves: 3, grainScale: 110, grainIntensity: 0.07,
		striated: true,
		alpha:    255, repeatX: 1, repeatY: 1,
		roughness: 0.95, metalness: 0.0,
	},
	PaperOrganicHemp: {
		baseHex:     "#b8ab8a",
		baseOctaves: 5, baseScale: 30, baseIntensity: 0.16,
		grainOctaves: 3, grainScale: 140, grainIntensity: 0.09,
		striated: true,
		alpha:    255, repeatX: 1, repeatY: 1,
		roughness: 0.98, metalness: 0.0,
	},
	PaperRiceStraw: {
		baseHex:     "#e8e2cf",
		baseOctaves: 4, baseScale: 22, baseIntensity: 0.08,
		grainOctaves: 2, grainScale: 75, grainIntensity: 0.05,
		alpha: 255, repeatX: 1, repeatY: 1,
		roughness: 0.9, metalness: 0.0,
	},
	PaperGoldLeaf: {
		baseHex:     "#d4af37",
		baseOctaves: 3, baseScale: 14, baseIntensity: 0.10,
		grainOctaves: 2, grainScale: 60, grainIntensity: 0.04,
		alpha: 255, repeatX: 1, repeatY: 1,
		roughness: 0.35, metalness: 0.8,
	},
	PaperClearCellulose: {
		baseHex:     "#e6edea",
		baseOctaves: 2, baseScale: 10, baseIntensity: 0.03,
		grainOctaves: 2, grainScale: 50, grainIntensity: 0.02,
		// the one translucent stock
		alpha: 240, repeatX: 1, repeatY: 1,
		roughness: 0.2, metalness: 0.0,
	},
	TipWoodGrain: {
		baseHex:     "#9a6b3f",
		baseOctaves: 5, baseScale: 26, baseIntensity: 0.18,
		grainOctaves: 4, grainScale: 160, grainIntensity: 0.10,
		striated: true,
		alpha:    255, repeatX: 1, repeatY: 3,
		roughness: 0.7, metalness: 0.0,
	},
	TipCeramicWhite: {
		baseHex:     "#efeff2",
		baseOctaves: 2, baseScale: 12, baseIntensity: 0.02,
		grainOctaves: 2, grainScale: 40, grainIntensity: 0.015,
		alpha: 255, repeatX: 1, repeatY: 1,
		roughness: 0.15, metalness: 0.05,
	},
}

// MaterialGenerator synthesizes and memoizes procedural texture buffers.
// Generation is deterministic, so repeated calls for the same kind return
// the identical buffer object, amortizing the O(size^2) synthesis.
type MaterialGenerator struct {
	mu   sync.Mutex
	memo map[MaterialKind]*TextureBuffer
	log  Logger
}

func NewMaterialGenerator(log Logger) *MaterialGenerator {
	if log == nil {
		log = NewNopLogger()
	}
	return &MaterialGenerator{
		memo: make(map[MaterialKind]*TextureBuffer),
		log:  log,
	}
}

// Variant exposes the static parameters of a kind (colors, PBR constants,
// repeat factors) without forcing texture synthesis.
func (g *MaterialGenerator) Variant(kind MaterialKind) (roughness, metalness float32, baseColor [4]uint8) {
	v, ok := materialVariants[kind]
	if !ok {
		v = materialVariants[PaperRefinedWhite]
	}
	r, gr, b := hexRGB255(v.baseHex)
	return v.roughness, v.metalness, [4]uint8{r, gr, b, v.alpha}
}

// Generate returns the procedural texture buffer for a kind, synthesizing it
// on first use. Unknown kinds fall back to the refined-white variant.
func (g *MaterialGenerator) Generate(kind MaterialKind) *TextureBuffer {
	g.mu.Lock()
	defer g.mu.Unlock()

	if buf, ok := g.memo[kind]; ok {
		return buf
	}

	v, ok := materialVariants[kind]
	if !ok {
		g.log.Warnf("no material variant for kind %d, using refined white", kind)
		v = materialVariants[PaperRefinedWhite]
	}

	buf := synthesize(kind, v)
	g.memo[kind] = buf
	g.log.Debugf("synthesized %dx%d texture for material kind %d", buf.Size, buf.Size, kind)
	return buf
}

// Clear drops every memoized buffer. Existing buffers stay valid for anyone
// still holding them; they are immutable.
func (g *MaterialGenerator) Clear() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.memo = make(map[MaterialKind]*TextureBuffer)
}

// fractal evaluates the multi-octave value
// V(x,y) = (sum sin(x*f_k)*cos(y*f_k)*a_k) / (sum a_k)
// with a_k = 0.5^k and f_k = scale*2^k.
func fractal(x, y float64, octaves int, scale float64) float64 {
	var sum, norm float64
	amp := 1.0
	freq := scale
	for k := 0; k < octaves; k++ {
		sum += math.Sin(x*freq) * math.Cos(y*freq) * amp
		norm += amp
		amp *= 0.5
		freq *= 2
	}
	return sum / norm
}

func synthesize(kind MaterialKind, v materialVariant) *TextureBuffer {
	size := TextureGridSize
	pix := make([]uint8, size*size*4)

	r0, g0, b0 := hexRGBf(v.baseHex)

	for j := 0; j < size; j++ {
		y := float64(j) / float64(size)
		for i := 0; i < size; i++ {
			x := float64(i) / float64(size)

			value := fractal(x, y, v.baseOctaves, v.baseScale) * v.baseIntensity
			value += fractal(x, y, v.grainOctaves, v.grainScale) * v.grainIntensity

			if v.striated {
				// fiber striations run diagonally along the sheet
				sx := x * v.baseScale
				sy := y * v.baseScale
				value += math.Abs(math.Sin(2*sx+0.5*sy)) * v.baseIntensity * 0.5
			}

			o := (j*size + i) * 4
			pix[o+0] = clamp255(r0 * (1 + value))
			pix[o+1] = clamp255(g0 * (1 + value))
			pix[o+2] = clamp255(b0 * (1 + value))
			pix[o+3] = v.alpha
		}
	}

	return &TextureBuffer{
		Size:    size,
		Pix:     pix,
		RepeatX: v.repeatX,
		RepeatY: v.repeatY,
		Kind:    kind,
	}
}

func clamp255(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}

func hexRGBf(hex string) (r, g, b float64) {
	c, err := colorful.Hex(hex)
	if err != nil {
		// variant tables are static; a bad entry is a programmer error
		panic(err)
	}
	return c.R * 255, c.G * 255, c.B * 255
}

func hexRGB255(hex string) (r, g, b uint8) {
	c, err := colorful.Hex(hex)
	if err != nil {
		panic(err)
	}
	return c.RGB255()
}

// MaterialGeneratorModule installs a shared generator resource.
type MaterialGeneratorModule struct{}

func (MaterialGeneratorModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(NewMaterialGenerator(app.Logger()))
}
