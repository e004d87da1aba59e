// Package d3d is the backend-agnostic half of the translation layer. It owns
// the GL-facing objects (buffers, textures, renderbuffers), the streaming and
// static index/vertex buffers, the data managers that feed draw calls and the
// render state cache. The d3d9 and d3d11 packages supply the native halves
// through RendererD3D.
package d3d

import (
	"github.com/spaghettifunk/gles/engine/core"
	"github.com/spaghettifunk/gles/engine/renderer/gl"
	"github.com/spaghettifunk/gles/engine/renderer/metadata"
)

type ShaderType int

const (
	ShaderVertex ShaderType = iota
	ShaderPixel
	ShaderGeometry
)

func (s ShaderType) String() string {
	switch s {
	case ShaderVertex:
		return "vs"
	case ShaderPixel:
		return "ps"
	case ShaderGeometry:
		return "gs"
	}
	return "unknown"
}

// RendererD3D is implemented once per native backend. A renderer is created by
// its factory, then Initialize is called exactly once; a renderer whose
// Initialize failed must be released and discarded.
type RendererD3D interface {
	Initialize() error
	Release()

	Name() string
	BackendType() metadata.BackendType
	MajorShaderModel() int
	Caps() metadata.Caps
	Workarounds() metadata.Workarounds
	Serials() *core.SerialIssuer
	VertexFormats() VertexFormatPolicy

	CreateBufferStorage() BufferStorage
	CreateIndexBuffer() IndexBuffer
	CreateVertexBuffer() VertexBuffer
	CreateRenderTarget(width, height int, format gl.GLenum, samples int) (RenderTarget, error)
	CreateTextureStorage2D(format gl.GLenum, renderTarget bool, width, height, levels int) (TextureStorage, error)
	CreateTextureStorageCube(format gl.GLenum, renderTarget bool, size, levels int) (TextureStorage, error)
	CreateTextureStorage3D(format gl.GLenum, renderTarget bool, width, height, depth, levels int) (TextureStorage, error)
	CreateTextureStorage2DArray(format gl.GLenum, renderTarget bool, width, height, layers, levels int) (TextureStorage, error)

	StateCache() *RenderStateCache
	ShaderProfile(shaderType ShaderType) string
	// CompileToBinary returns the blob and the compiler info log. A failed
	// compile is a *CompileError.
	CompileToBinary(source string, shaderType ShaderType, macros []ShaderMacro) ([]byte, string, error)

	// ApplyRenderTarget binds rt as the colour target and reports whether a
	// native bind was issued.
	ApplyRenderTarget(rt RenderTarget) bool
	// ApplyIndexBuffer binds the translated index source and reports whether a
	// native bind was issued.
	ApplyIndexBuffer(data *TranslatedIndexData) bool
}

// NativeState is an immutable native pipeline-state object owned by the
// RenderStateCache.
type NativeState interface {
	Handle() uint64
	Release()
}
