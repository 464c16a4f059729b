package conelab

import (
	"image"

	"github.com/google/uuid"
)

type AssetId string

type TextureFormat uint32

const (
	TextureFormatR8Uint     TextureFormat = 0x00000003
	TextureFormatRGBA8Unorm TextureFormat = 0x00000012
	TextureFormatRGBA8Uint  TextureFormat = 0x00000015
)

// MeshVertex is the single vertex layout every configurator mesh uses. The
// tags drive the GPU vertex buffer layout builder.
type MeshVertex struct {
	Position [3]float32 `conelab:"layout" format:"float3" location:"0"`
	Normal   [3]float32 `conelab:"layout" format:"float3" location:"1"`
	UV       [2]float32 `conelab:"layout" format:"float2" location:"2"`
}

type AssetServer struct {
	meshes   map[AssetId]MeshAsset
	textures map[AssetId]TextureAsset
	samplers map[AssetId]SamplerAsset
}

type AssetServerModule struct{}

type Mesh struct {
	assetId AssetId
}

func (m Mesh) AssetId() AssetId { return m.assetId }

type MeshAsset struct {
	version  uint
	vertices []MeshVertex
	indices  []uint16
}

func (a MeshAsset) Vertices() []MeshVertex { return a.vertices }
func (a MeshAsset) Indices() []uint16      { return a.indices }

type TextureAsset struct {
	version uint
	texels  []uint8
	width   uint32
	height  uint32
	format  TextureFormat
}

type SamplerAsset struct {
	version uint
	assetId AssetId
}

func (server AssetServer) LoadMesh(vertices []MeshVertex, indices []uint16) Mesh {
	id := makeAssetId()

	server.meshes[id] = MeshAsset{
		version:  0,
		vertices: vertices,
		indices:  indices,
	}

	return Mesh{
		assetId: id,
	}
}

func (server AssetServer) GetMesh(id AssetId) (MeshAsset, bool) {
	asset, ok := server.meshes[id]
	return asset, ok
}

func (server AssetServer) CreateTexture(texels []uint8, texWidth uint32, texHeight uint32, format TextureFormat) AssetId {
	id := makeAssetId()

	server.textures[id] = TextureAsset{
		version: 0,
		texels:  texels,
		width:   texWidth,
		height:  texHeight,
		format:  format,
	}

	return id
}

// CreateTextureFromBuffer wraps a procedural texture buffer as a texture
// asset without copying the pixel data; the buffer is immutable.
func (server AssetServer) CreateTextureFromBuffer(buf *TextureBuffer) AssetId {
	return server.CreateTexture(buf.Pix, uint32(buf.Size), uint32(buf.Size), TextureFormatRGBA8Unorm)
}

// CreateTextureFromImage copies a decoded NRGBA image into a texture asset.
func (server AssetServer) CreateTextureFromImage(img *image.NRGBA) AssetId {
	bounds := img.Bounds()
	return server.CreateTexture(img.Pix, uint32(bounds.Dx()), uint32(bounds.Dy()), TextureFormatRGBA8Unorm)
}

func (server AssetServer) GetTexture(id AssetId) (TextureAsset, bool) {
	asset, ok := server.textures[id]
	return asset, ok
}

func (server AssetServer) CreateSampler() AssetId {
	id := makeAssetId()

	server.samplers[id] = SamplerAsset{
		version: 0,
		assetId: id,
	}

	return id
}

func (AssetServerModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(&AssetServer{
		meshes:   make(map[AssetId]MeshAsset),
		textures: make(map[AssetId]TextureAsset),
		samplers: make(map[AssetId]SamplerAsset),
	})
}

func makeAssetId() AssetId {
	return AssetId(uuid.NewString())
}
