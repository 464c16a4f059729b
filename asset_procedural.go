package conelab

import (
	"math"
)

// Procedural lathe meshes for the configurator bodies: the paper roll, the
// filter plug, the finished cone, and end caps. All bodies are generated
// around the Y axis, base at y=0, with seam-duplicated vertices so UVs wrap
// cleanly around the circumference.

const minRadialSegments = 3

func ringPoint(radius, y float32, theta float64) [3]float32 {
	return [3]float32{
		radius * float32(math.Cos(theta)),
		y,
		radius * float32(math.Sin(theta)),
	}
}

// sideBand appends the two-ring wall between (bottomRadius, y0) and
// (topRadius, y1) and returns the index of its first vertex. flip reverses
// winding and normals for inward-facing walls.
func sideBand(vertices *[]MeshVertex, indices *[]uint16, bottomRadius, topRadius, y0, y1 float32, segments int, flip bool) {
	base := uint16(len(*vertices))

	// wall normal tilt from the radius change over the height
	slope := float64(bottomRadius-topRadius) / float64(y1-y0)
	norm := math.Sqrt(1 + slope*slope)

	for i := 0; i <= segments; i++ {
		theta := 2 * math.Pi * float64(i) / float64(segments)
		nx := float32(math.Cos(theta) / norm)
		ny := float32(slope / norm)
		nz := float32(math.Sin(theta) / norm)
		if flip {
			nx, ny, nz = -nx, -ny, -nz
		}
		u := float32(i) / float32(segments)

		*vertices = append(*vertices,
			MeshVertex{
				Position: ringPoint(bottomRadius, y0, theta),
				Normal:   [3]float32{nx, ny, nz},
				UV:       [2]float32{u, 1},
			},
			MeshVertex{
				Position: ringPoint(topRadius, y1, theta),
				Normal:   [3]float32{nx, ny, nz},
				UV:       [2]float32{u, 0},
			},
		)
	}

	for i := 0; i < segments; i++ {
		b0 := base + uint16(i*2)
		t0 := b0 + 1
		b1 := b0 + 2
		t1 := b0 + 3
		if flip {
			*indices = append(*indices, b0, b1, t0, t0, b1, t1)
		} else {
			*indices = append(*indices, b0, t0, b1, b1, t0, t1)
		}
	}
}

// capFan appends a filled disc at height y facing up or down.
func capFan(vertices *[]MeshVertex, indices *[]uint16, radius, y float32, segments int, up bool) {
	base := uint16(len(*vertices))
	ny := float32(-1)
	if up {
		ny = 1
	}

	*vertices = append(*vertices, MeshVertex{
		Position: [3]float32{0, y, 0},
		Normal:   [3]float32{0, ny, 0},
		UV:       [2]float32{0.5, 0.5},
	})

	for i := 0; i <= segments; i++ {
		theta := 2 * math.Pi * float64(i) / float64(segments)
		*vertices = append(*vertices, MeshVertex{
			Position: ringPoint(radius, y, theta),
			Normal:   [3]float32{0, ny, 0},
			UV: [2]float32{
				0.5 + 0.5*float32(math.Cos(theta)),
				0.5 + 0.5*float32(math.Sin(theta)),
			},
		})
	}

	for i := 0; i < segments; i++ {
		outer0 := base + 1 + uint16(i)
		outer1 := outer0 + 1
		if up {
			*indices = append(*indices, base, outer1, outer0)
		} else {
			*indices = append(*indices, base, outer0, outer1)
		}
	}
}

// capRing appends an annulus at height y facing up or down.
func capRing(vertices *[]MeshVertex, indices *[]uint16, innerRadius, outerRadius, y float32, segments int, up bool) {
	base := uint16(len(*vertices))
	ny := float32(-1)
	if up {
		ny = 1
	}

	for i := 0; i <= segments; i++ {
		theta := 2 * math.Pi * float64(i) / float64(segments)
		u := float32(i) / float32(segments)
		*vertices = append(*vertices,
			MeshVertex{
				Position: ringPoint(innerRadius, y, theta),
				Normal:   [3]float32{0, ny, 0},
				UV:       [2]float32{u, 1},
			},
			MeshVertex{
				Position: ringPoint(outerRadius, y, theta),
				Normal:   [3]float32{0, ny, 0},
				UV:       [2]float32{u, 0},
			},
		)
	}

	for i := 0; i < segments; i++ {
		in0 := base + uint16(i*2)
		out0 := in0 + 1
		in1 := in0 + 2
		out1 := in0 + 3
		if up {
			*indices = append(*indices, in0, out1, out0, in0, in1, out1)
		} else {
			*indices = append(*indices, in0, out0, out1, in0, out1, in1)
		}
	}
}

// CreateCylinderMesh builds a capped cylinder, the filter plug body.
func (server AssetServer) CreateCylinderMesh(radius, height float32, segments int) Mesh {
	if segments < minRadialSegments {
		segments = minRadialSegments
	}

	var vertices []MeshVertex
	var indices []uint16

	sideBand(&vertices, &indices, radius, radius, 0, height, segments, false)
	capFan(&vertices, &indices, radius, 0, segments, false)
	capFan(&vertices, &indices, radius, height, segments, true)

	return server.LoadMesh(vertices, indices)
}

// CreateTubeMesh builds a hollow cylinder with wall thickness, the rolled
// paper body: outer wall, inner wall, and annular rims.
func (server AssetServer) CreateTubeMesh(innerRadius, outerRadius, height float32, segments int) Mesh {
	if segments < minRadialSegments {
		segments = minRadialSegments
	}

	var vertices []MeshVertex
	var indices []uint16

	sideBand(&vertices, &indices, outerRadius, outerRadius, 0, height, segments, false)
	sideBand(&vertices, &indices, innerRadius, innerRadius, 0, height, segments, true)
	capRing(&vertices, &indices, innerRadius, outerRadius, 0, segments, false)
	capRing(&vertices, &indices, innerRadius, outerRadius, height, segments, true)

	return server.LoadMesh(vertices, indices)
}

// CreateConeMesh builds a truncated cone, base down, the merged final shape.
// A zero tipRadius closes the tip to a point band.
func (server AssetServer) CreateConeMesh(baseRadius, tipRadius, height float32, segments int) Mesh {
	if segments < minRadialSegments {
		segments = minRadialSegments
	}

	var vertices []MeshVertex
	var indices []uint16

	sideBand(&vertices, &indices, baseRadius, tipRadius, 0, height, segments, false)
	capFan(&vertices, &indices, baseRadius, 0, segments, false)
	if tipRadius > 0 {
		capFan(&vertices, &indices, tipRadius, height, segments, true)
	}

	return server.LoadMesh(vertices, indices)
}

// CreateDiscMesh builds a flat annulus (or full disc when innerRadius is 0)
// facing up, used for accessory caps.
func (server AssetServer) CreateDiscMesh(innerRadius, outerRadius float32, segments int) Mesh {
	if segments < minRadialSegments {
		segments = minRadialSegments
	}

	var vertices []MeshVertex
	var indices []uint16

	if innerRadius <= 0 {
		capFan(&vertices, &indices, outerRadius, 0, segments, true)
	} else {
		capRing(&vertices, &indices, innerRadius, outerRadius, 0, segments, true)
	}

	return server.LoadMesh(vertices, indices)
}
