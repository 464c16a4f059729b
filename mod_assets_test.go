package conelab

import (
	"image"
	"testing"
)

func TestAssetServer_LoadMesh(t *testing.T) {
	server := newTestAssetServer()

	vertices := []MeshVertex{
		{Position: [3]float32{0, 0, 0}},
		{Position: [3]float32{1, 0, 0}},
		{Position: [3]float32{0, 1, 0}},
	}
	indices := []uint16{0, 1, 2}

	mesh := server.LoadMesh(vertices, indices)
	if mesh.AssetId() == "" {
		t.Fatal("LoadMesh should assign an asset id")
	}

	asset, ok := server.GetMesh(mesh.AssetId())
	if !ok {
		t.Fatal("mesh not retrievable by id")
	}
	if len(asset.Vertices()) != 3 || len(asset.Indices()) != 3 {
		t.Errorf("stored mesh shape wrong: %d vertices, %d indices", len(asset.Vertices()), len(asset.Indices()))
	}

	other := server.LoadMesh(vertices, indices)
	if other.AssetId() == mesh.AssetId() {
		t.Error("each load should mint a distinct asset id")
	}
}

func TestAssetServer_GetMeshMiss(t *testing.T) {
	server := newTestAssetServer()
	if _, ok := server.GetMesh("no-such-id"); ok {
		t.Error("unknown id should miss")
	}
}

func TestAssetServer_CreateTextureFromBuffer(t *testing.T) {
	server := newTestAssetServer()
	gen := NewMaterialGenerator(NewNopLogger())
	buf := gen.Generate(PaperRiceStraw)

	id := server.CreateTextureFromBuffer(buf)
	asset, ok := server.GetTexture(id)
	if !ok {
		t.Fatal("texture not retrievable by id")
	}
	if asset.width != uint32(buf.Size) || asset.height != uint32(buf.Size) {
		t.Errorf("texture size: got %dx%d, want %dx%d", asset.width, asset.height, buf.Size, buf.Size)
	}
	if asset.format != TextureFormatRGBA8Unorm {
		t.Errorf("texture format: got %v, want RGBA8Unorm", asset.format)
	}
}

func TestAssetServer_CreateTextureFromImage(t *testing.T) {
	server := newTestAssetServer()
	img := image.NewNRGBA(image.Rect(0, 0, 8, 4))

	id := server.CreateTextureFromImage(img)
	asset, ok := server.GetTexture(id)
	if !ok {
		t.Fatal("texture not retrievable by id")
	}
	if asset.width != 8 || asset.height != 4 {
		t.Errorf("texture size: got %dx%d, want 8x4", asset.width, asset.height)
	}
}

func TestAssetServer_CreateSampler(t *testing.T) {
	server := newTestAssetServer()
	a := server.CreateSampler()
	b := server.CreateSampler()
	if a == b {
		t.Error("samplers should get distinct ids")
	}
}
