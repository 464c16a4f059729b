package conelab

import (
	"bytes"
	"encoding/binary"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

// Forward renderer for the composed scene graph: one pipeline, one uniform
// buffer + bind group per node, flat color times sampled texture with a
// single hardcoded key light. Installed together with ViewportModule.

const sceneShaderWGSL = `
struct Uniforms {
    mvp: mat4x4<f32>,
    model: mat4x4<f32>,
    color: vec4<f32>,
    params: vec4<f32>, // x,y: uv repeat  z: roughness  w: metalness
};
@group(0) @binding(0) var<uniform> u: Uniforms;
@group(0) @binding(1) var t_color: texture_2d<f32>;
@group(0) @binding(2) var s_color: sampler;

struct VsOut {
    @builtin(position) pos: vec4<f32>,
    @location(0) normal: vec3<f32>,
    @location(1) uv: vec2<f32>,
};

@vertex
fn vs_main(
    @location(0) position: vec3<f32>,
    @location(1) normal: vec3<f32>,
    @location(2) uv: vec2<f32>,
) -> VsOut {
    var out: VsOut;
    out.pos = u.mvp * vec4<f32>(position, 1.0);
    out.normal = normalize((u.model * vec4<f32>(normal, 0.0)).xyz);
    out.uv = uv * vec2<f32>(u.params.x, u.params.y);
    return out;
}

@fragment
fn fs_main(in: VsOut) -> @location(0) vec4<f32> {
    let key_dir = normalize(vec3<f32>(0.5, 1.0, 0.3));
    let ndl = max(dot(normalize(in.normal), key_dir), 0.0);
    let light = 0.35 + 0.65 * ndl;
    let tex = textureSample(t_color, s_color, in.uv);
    let base = u.color * tex;
    return vec4<f32>(base.rgb * light, base.a);
}
`

type sceneUniforms struct {
	MVP    mgl32.Mat4
	Model  mgl32.Mat4
	Color  mgl32.Vec4
	Params mgl32.Vec4
}

type nodeGpuKey struct {
	mesh AssetId
	tex  *TextureResource
	kind MaterialKind
	flat bool
}

type nodeGpu struct {
	key        nodeGpuKey
	vertexBuf  *wgpu.Buffer
	indexBuf   *wgpu.Buffer
	indexCount uint32
	uniformBuf *wgpu.Buffer
	bindGroup  *wgpu.BindGroup
}

func (n *nodeGpu) release() {
	if n.bindGroup != nil {
		n.bindGroup.Release()
	}
	if n.uniformBuf != nil {
		n.uniformBuf.Release()
	}
	if n.indexBuf != nil {
		n.indexBuf.Release()
	}
	if n.vertexBuf != nil {
		n.vertexBuf.Release()
	}
}

type rendererState struct {
	pipeline *wgpu.RenderPipeline

	nodes        map[string]*nodeGpu
	procTextures map[MaterialKind]*wgpu.TextureView
	whiteTexture *wgpu.TextureView
}

type RendererModule struct{}

func (RendererModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(&rendererState{
		nodes:        make(map[string]*nodeGpu),
		procTextures: make(map[MaterialKind]*wgpu.TextureView),
	})

	app.UseSystem(
		System(sceneRenderSystem).
			InStage(Render).
			RunAlways(),
	)
}

func createRenderPipeline(name string, shaderCode string, vertexType any, gpuState *GpuState) *wgpu.RenderPipeline {
	shader, err := gpuState.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          name,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaderCode},
	})
	if err != nil {
		panic(err)
	}
	defer shader.Release()

	vertexBufferLayout := createVertexBufferLayout(vertexType)

	pipeline, err := gpuState.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Vertex: wgpu.VertexState{
			Module:     shader,
			EntryPoint: "vs_main",
			Buffers:    []wgpu.VertexBufferLayout{vertexBufferLayout},
		},
		Fragment: &wgpu.FragmentState{
			Module:     shader,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{
				{
					Format:    gpuState.surfaceConfig.Format,
					Blend:     nil,
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeBack,
		},
		DepthStencil: nil,
		Multisample: wgpu.MultisampleState{
			Count:                  1,
			Mask:                   0xFFFFFFFF,
			AlphaToCoverageEnabled: false,
		},
	})
	if err != nil {
		panic(err)
	}
	return pipeline
}

func toBufferBytes(data any) []byte {
	buf := new(bytes.Buffer)
	if err := binary.Write(buf, binary.LittleEndian, data); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

func uploadTexels(gpuState *GpuState, texels []uint8, width, height uint32, srgb bool) *wgpu.TextureView {
	format := wgpu.TextureFormatRGBA8Unorm
	if srgb {
		format = wgpu.TextureFormatRGBA8UnormSrgb
	}

	textureExtent := wgpu.Extent3D{
		Width:              width,
		Height:             height,
		DepthOrArrayLayers: 1,
	}
	texture, err := gpuState.device.CreateTexture(&wgpu.TextureDescriptor{
		Size:          textureExtent,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        format,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
	})
	if err != nil {
		panic(err)
	}
	defer texture.Release()

	textureView, err := texture.CreateView(nil)
	if err != nil {
		panic(err)
	}

	err = gpuState.queue.WriteTexture(
		texture.AsImageCopy(),
		texels,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  width * 4,
			RowsPerImage: height,
		},
		&textureExtent,
	)
	if err != nil {
		panic(err)
	}
	return textureView
}

func (rs *rendererState) textureViewFor(mat ResolvedMaterial, gpuState *GpuState) *wgpu.TextureView {
	if mat.HasOverrideColor || (mat.Texture == nil && mat.Procedural == nil) {
		if rs.whiteTexture == nil {
			rs.whiteTexture = uploadTexels(gpuState, []uint8{255, 255, 255, 255}, 1, 1, false)
		}
		return rs.whiteTexture
	}

	if mat.Texture != nil {
		if !mat.Texture.HasGPU() {
			mat.Texture.AttachGPU(uploadTexture(gpuState, mat.Texture))
		}
		if view, ok := mat.Texture.GPU().(*wgpu.TextureView); ok {
			return view
		}
	}

	if mat.Procedural == nil {
		if rs.whiteTexture == nil {
			rs.whiteTexture = uploadTexels(gpuState, []uint8{255, 255, 255, 255}, 1, 1, false)
		}
		return rs.whiteTexture
	}

	if view, ok := rs.procTextures[mat.Kind]; ok {
		return view
	}
	buf := mat.Procedural
	view := uploadTexels(gpuState, buf.Pix, uint32(buf.Size), uint32(buf.Size), true)
	rs.procTextures[mat.Kind] = view
	return view
}

func nodeModelMatrix(t TransformNode) mgl32.Mat4 {
	return mgl32.Translate3D(t.Position.X(), t.Position.Y(), t.Position.Z()).
		Mul4(mgl32.HomogRotate3DZ(t.Rotation.Z())).
		Mul4(mgl32.HomogRotate3DY(t.Rotation.Y())).
		Mul4(mgl32.HomogRotate3DX(t.Rotation.X())).
		Mul4(mgl32.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z()))
}

func (rs *rendererState) nodeGpuFor(node *SceneNode, assets *AssetServer, gpuState *GpuState) *nodeGpu {
	key := nodeGpuKey{
		mesh: node.Mesh.AssetId(),
		tex:  node.Material.Texture,
		kind: node.Material.Kind,
		flat: node.Material.HasOverrideColor,
	}

	if existing, ok := rs.nodes[node.Name]; ok {
		if existing.key == key {
			return existing
		}
		existing.release()
		delete(rs.nodes, node.Name)
	}

	meshAsset, ok := assets.GetMesh(node.Mesh.AssetId())
	if !ok {
		return nil
	}

	vertexBuf, indexBuf := createVertexIndexBuffers(meshAsset.Vertices(), meshAsset.Indices(), gpuState.device)

	uniformBuf, err := gpuState.device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    "Node Uniforms",
		Contents: toBufferBytes(sceneUniforms{}),
		Usage:    wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		panic(err)
	}

	texView := rs.textureViewFor(node.Material, gpuState)

	layout := rs.pipeline.GetBindGroupLayout(0)
	defer layout.Release()
	bindGroup, err := gpuState.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout: layout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: uniformBuf, Size: wgpu.WholeSize},
			{Binding: 1, TextureView: texView, Size: wgpu.WholeSize},
			{Binding: 2, Sampler: gpuState.sampler, Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		panic(err)
	}

	gpu := &nodeGpu{
		key:        key,
		vertexBuf:  vertexBuf,
		indexBuf:   indexBuf,
		indexCount: uint32(len(meshAsset.Indices())),
		uniformBuf: uniformBuf,
		bindGroup:  bindGroup,
	}
	rs.nodes[node.Name] = gpu
	return gpu
}

func sceneRenderSystem(rs *rendererState, composer *SceneComposer, assets *AssetServer, gpuState *GpuState, windowState *WindowState) {
	if composer.Graph == nil {
		return
	}

	if rs.pipeline == nil {
		rs.pipeline = createRenderPipeline("scene", sceneShaderWGSL, MeshVertex{}, gpuState)
	}

	cam := composer.Graph.Camera
	aspect := float32(windowState.WindowWidth) / float32(windowState.WindowHeight)
	view := mgl32.LookAtV(cam.Position, cam.Target, mgl32.Vec3{0, 1, 0})
	proj := mgl32.Perspective(mgl32.DegToRad(cam.FovDeg), aspect, 0.1, 1000)

	nextTexture, err := gpuState.surface.GetCurrentTexture()
	if err != nil {
		panic(err)
	}
	surfaceView, err := nextTexture.CreateView(nil)
	if err != nil {
		panic(err)
	}
	defer surfaceView.Release()

	encoder, err := gpuState.device.CreateCommandEncoder(nil)
	if err != nil {
		panic(err)
	}
	defer encoder.Release()

	renderPass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       surfaceView,
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: wgpu.Color{R: 0.93, G: 0.93, B: 0.95, A: 1.0},
			},
		},
	})
	defer renderPass.Release()

	renderPass.SetPipeline(rs.pipeline)

	for _, node := range composer.Graph.Nodes {
		gpu := rs.nodeGpuFor(node, assets, gpuState)
		if gpu == nil {
			continue
		}

		model := nodeModelMatrix(node.Transform)
		uniforms := sceneUniforms{
			MVP:   proj.Mul4(view).Mul4(model),
			Model: model,
			Color: mgl32.Vec4{
				float32(node.Material.Color[0]) / 255,
				float32(node.Material.Color[1]) / 255,
				float32(node.Material.Color[2]) / 255,
				float32(node.Material.Color[3]) / 255,
			},
			Params: mgl32.Vec4{
				materialRepeatX(node.Material),
				materialRepeatY(node.Material),
				node.Material.Roughness,
				node.Material.Metalness,
			},
		}
		if err := gpuState.queue.WriteBuffer(gpu.uniformBuf, 0, toBufferBytes(uniforms)); err != nil {
			panic(err)
		}

		renderPass.SetVertexBuffer(0, gpu.vertexBuf, 0, wgpu.WholeSize)
		renderPass.SetIndexBuffer(gpu.indexBuf, wgpu.IndexFormatUint16, 0, wgpu.WholeSize)
		renderPass.SetBindGroup(0, gpu.bindGroup, nil)
		renderPass.DrawIndexed(gpu.indexCount, 1, 0, 0, 0)
	}

	if err := renderPass.End(); err != nil {
		panic(err)
	}

	cmdBuffer, err := encoder.Finish(nil)
	if err != nil {
		panic(err)
	}
	defer cmdBuffer.Release()

	gpuState.queue.Submit(cmdBuffer)
	gpuState.surface.Present()
}

func materialRepeatX(mat ResolvedMaterial) float32 {
	if mat.Texture != nil {
		return mat.Texture.RepeatX
	}
	if mat.Procedural != nil {
		return mat.Procedural.RepeatX
	}
	return 1
}

func materialRepeatY(mat ResolvedMaterial) float32 {
	if mat.Texture != nil {
		return mat.Texture.RepeatY
	}
	if mat.Procedural != nil {
		return mat.Procedural.RepeatY
	}
	return 1
}
