package conelab

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
)

func TestCreateVertexBufferLayout(t *testing.T) {
	layout := createVertexBufferLayout(MeshVertex{})

	// 3+3+2 float32s
	if layout.ArrayStride != 32 {
		t.Errorf("Expected stride 32, got %v", layout.ArrayStride)
	}
	if len(layout.Attributes) != 3 {
		t.Fatalf("Expected 3 attributes, got %v", len(layout.Attributes))
	}

	want := []struct {
		location uint32
		offset   uint64
		format   wgpu.VertexFormat
	}{
		{0, 0, wgpu.VertexFormatFloat32x3},
		{1, 12, wgpu.VertexFormatFloat32x3},
		{2, 24, wgpu.VertexFormatFloat32x2},
	}
	for i, w := range want {
		attr := layout.Attributes[i]
		if attr.ShaderLocation != w.location || attr.Offset != w.offset || attr.Format != w.format {
			t.Errorf("attribute %d: got %+v, want %+v", i, attr, w)
		}
	}
}

func TestParseFormat_UnknownPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected panic for unknown format")
		}
	}()
	parseFormat("mat4")
}

func TestWgpuAddressMode(t *testing.T) {
	if wgpuAddressMode(WrapRepeat) != wgpu.AddressModeRepeat {
		t.Error("repeat should map to AddressModeRepeat")
	}
	if wgpuAddressMode(WrapClamp) != wgpu.AddressModeClampToEdge {
		t.Error("clamp should map to AddressModeClampToEdge")
	}
}
