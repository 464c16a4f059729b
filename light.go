package conelab

import (
	"github.com/go-gl/mathgl/mgl32"
)

type LightType uint32

const (
	LightTypePoint       LightType = 0
	LightTypeDirectional LightType = 1
	LightTypeSpot        LightType = 2
	LightTypeAmbient     LightType = 3
)

// LightDef defines one light in a composed scene.
type LightDef struct {
	Type      LightType
	Position  mgl32.Vec3
	Direction mgl32.Vec3
	Color     [3]float32
	Intensity float32
}

// studioLights is the three-point preset every step viewport shares: warm
// key, cool fill, ambient lift.
func studioLights() []LightDef {
	return []LightDef{
		{
			Type:      LightTypeDirectional,
			Direction: mgl32.Vec3{-0.5, -1, -0.3},
			Color:     [3]float32{1.0, 0.96, 0.9},
			Intensity: 1.2,
		},
		{
			Type:      LightTypePoint,
			Position:  mgl32.Vec3{6, 4, 8},
			Color:     [3]float32{0.85, 0.9, 1.0},
			Intensity: 0.5,
		},
		{
			Type:      LightTypeAmbient,
			Color:     [3]float32{1, 1, 1},
			Intensity: 0.25,
		},
	}
}
