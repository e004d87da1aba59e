// Package d3d9 implements the D3D layer on a Direct3D 9 style device: shader
// model 3, 2D and cube textures only, and buffers that cannot be bound
// directly.
package d3d9

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spaghettifunk/gles/engine/core"
	"github.com/spaghettifunk/gles/engine/renderer/d3d"
	"github.com/spaghettifunk/gles/engine/renderer/gl"
	"github.com/spaghettifunk/gles/engine/renderer/metadata"
	"github.com/spaghettifunk/gles/engine/renderer/native"
)

// DefaultMaxVertexIndex is the D3DCAPS9.MaxVertexIndex of a typical SM3 part.
const DefaultMaxVertexIndex = 0xFFFFFF

type Options struct {
	Device             *native.Device
	MemoryBudget       uint64
	StateCacheCapacity int
	Serials            *core.SerialIssuer
	Compiler           d3d.ShaderCompiler
	// MaxVertexIndex is the largest index the device can fetch. 32-bit
	// indices are only exposed above 0xFFFF. Zero selects
	// DefaultMaxVertexIndex.
	MaxVertexIndex uint32
}

type Renderer9 struct {
	options    Options
	device     *native.Device
	ownsDevice bool
	serials    *core.SerialIssuer
	caps       metadata.Caps
	stateCache *d3d.RenderStateCache
	bindings   d3d.BindingTracker
	logger     *log.Logger
}

func New(options Options) *Renderer9 {
	serials := options.Serials
	if serials == nil {
		serials = core.DefaultSerials
	}
	if options.MaxVertexIndex == 0 {
		options.MaxVertexIndex = DefaultMaxVertexIndex
	}
	return &Renderer9{
		options: options,
		serials: serials,
		logger:  core.Logger("backend", "d3d9"),
	}
}

func (r *Renderer9) Initialize() error {
	r.device = r.options.Device
	if r.device == nil {
		r.device = native.NewDevice(native.DeviceDesc{Name: "d3d9", MemoryBudget: r.options.MemoryBudget})
		r.ownsDevice = true
	}
	if res := r.device.Init(); res.Failed() {
		return fmt.Errorf("%w: d3d9 device creation failed: %s", core.ErrBackendUnavailable, res)
	}

	r.caps = metadata.Caps{
		MaxTextureSize:      4096,
		MaxRenderbufferSize: 4096,
		MaxDrawBuffers:      1,
		MaxVertexAttributes: 16,
		MaxSamples:          4,
		ElementIndexUint:    r.options.MaxVertexIndex > 0xFFFF,
		TextureNPOT:         true,
	}
	r.stateCache = d3d.NewRenderStateCache(stateFactory{device: r.device}, r.options.StateCacheCapacity)
	r.logger.Info("initialized", "elementIndexUint", r.caps.ElementIndexUint)
	return nil
}

func (r *Renderer9) Release() {
	if r.stateCache != nil {
		r.stateCache.Clear()
	}
	if r.ownsDevice && r.device != nil {
		r.device.Close()
	}
	r.bindings.Reset()
}

func (r *Renderer9) Name() string                      { return "Direct3D9" }
func (r *Renderer9) BackendType() metadata.BackendType { return metadata.BackendTypeD3D9 }
func (r *Renderer9) MajorShaderModel() int             { return 3 }
func (r *Renderer9) Caps() metadata.Caps               { return r.caps }
func (r *Renderer9) Workarounds() metadata.Workarounds { return metadata.Workarounds{} }
func (r *Renderer9) Serials() *core.SerialIssuer       { return r.serials }
func (r *Renderer9) VertexFormats() d3d.VertexFormatPolicy {
	return vertexFormats{}
}

func (r *Renderer9) Device() *native.Device {
	return r.device
}

func (r *Renderer9) CreateBufferStorage() d3d.BufferStorage {
	return &bufferStorage9{}
}

func (r *Renderer9) CreateIndexBuffer() d3d.IndexBuffer {
	return &indexBuffer9{renderer: r}
}

func (r *Renderer9) CreateVertexBuffer() d3d.VertexBuffer {
	return &vertexBuffer9{renderer: r}
}

func (r *Renderer9) CreateRenderTarget(width, height int, internalFormat gl.GLenum, samples int) (d3d.RenderTarget, error) {
	format, ok := GetTextureFormat(internalFormat)
	if !ok {
		return nil, core.InvalidOperation("d3d9: unsupported render target format %#x", uint32(internalFormat))
	}
	if samples > r.caps.MaxSamples {
		return nil, core.InvalidOperation("d3d9: %d samples requested, %d supported", samples, r.caps.MaxSamples)
	}
	bind := native.BindRenderTarget
	if isDepthFormat(format.Format) {
		bind = native.BindDepthStencil
	}
	texture, res := r.device.CreateTexture(native.TextureDesc{
		Width:      width,
		Height:     height,
		Format:     uint32(format.Format),
		PixelBytes: format.PixelBytes,
		Samples:    samples,
		Bind:       bind,
	})
	if err := native.Check(res, "failed to create %dx%d surface (%s)", width, height, format.Format); err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	return &surface9{
		texture:        texture,
		ownsTexture:    true,
		width:          width,
		height:         height,
		internalFormat: internalFormat,
		actualFormat:   format.RenderFormat,
		samples:        samples,
		serial:         r.serials.Issue(),
	}, nil
}

func (r *Renderer9) CreateTextureStorage2D(format gl.GLenum, renderTarget bool, width, height, levels int) (d3d.TextureStorage, error) {
	return r.newTextureStorage(metadata.TextureType2d, format, renderTarget,
		metadata.Extents{Width: width, Height: height, Depth: 1}, 1, levels)
}

func (r *Renderer9) CreateTextureStorageCube(format gl.GLenum, renderTarget bool, size, levels int) (d3d.TextureStorage, error) {
	return r.newTextureStorage(metadata.TextureTypeCube, format, renderTarget,
		metadata.Extents{Width: size, Height: size, Depth: 1}, metadata.CubeFaceCount, levels)
}

func (r *Renderer9) CreateTextureStorage3D(gl.GLenum, bool, int, int, int, int) (d3d.TextureStorage, error) {
	return nil, fmt.Errorf("%w: Direct3D9 has no 3D texture storage", core.ErrUnsupported)
}

func (r *Renderer9) CreateTextureStorage2DArray(gl.GLenum, bool, int, int, int, int) (d3d.TextureStorage, error) {
	return nil, fmt.Errorf("%w: Direct3D9 has no texture arrays", core.ErrUnsupported)
}

func (r *Renderer9) StateCache() *d3d.RenderStateCache {
	return r.stateCache
}

func (r *Renderer9) ShaderProfile(shaderType d3d.ShaderType) string {
	return shaderType.String() + "_3_0"
}

func (r *Renderer9) CompileToBinary(source string, shaderType d3d.ShaderType, macros []d3d.ShaderMacro) ([]byte, string, error) {
	if r.options.Compiler == nil {
		return nil, "", fmt.Errorf("%w: no HLSL compiler configured", core.ErrUnsupported)
	}
	if shaderType == d3d.ShaderGeometry {
		return nil, "", fmt.Errorf("%w: Direct3D9 has no geometry shaders", core.ErrUnsupported)
	}
	configs := d3d.FlowControlCompileConfigs(d3d.CompileOptimizationLevel2)
	return d3d.CompileToBinary(r.options.Compiler, source, r.ShaderProfile(shaderType), configs, macros)
}

func (r *Renderer9) ApplyRenderTarget(rt d3d.RenderTarget) bool {
	if !r.bindings.RenderTarget(rt.Serial()) {
		return false
	}
	r.device.RecordBind()
	return true
}

func (r *Renderer9) ApplyIndexBuffer(data *d3d.TranslatedIndexData) bool {
	if !r.bindings.IndexBuffer(data) {
		return false
	}
	r.device.RecordBind()
	return true
}
