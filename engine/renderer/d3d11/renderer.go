// Package d3d11 implements the D3D layer on a Direct3D 11 style device.
// Buffers live in native memory and are bound directly, every texture type is
// supported and the shader model follows the emulated feature level.
package d3d11

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spaghettifunk/gles/engine/core"
	"github.com/spaghettifunk/gles/engine/renderer/d3d"
	"github.com/spaghettifunk/gles/engine/renderer/gl"
	"github.com/spaghettifunk/gles/engine/renderer/metadata"
	"github.com/spaghettifunk/gles/engine/renderer/native"
)

type FeatureLevel int

const (
	FeatureLevel9_3 FeatureLevel = iota
	FeatureLevel10_0
	FeatureLevel10_1
	FeatureLevel11_0
)

func (f FeatureLevel) String() string {
	switch f {
	case FeatureLevel9_3:
		return "9_3"
	case FeatureLevel10_0:
		return "10_0"
	case FeatureLevel10_1:
		return "10_1"
	case FeatureLevel11_0:
		return "11_0"
	}
	return "unknown"
}

// ParseFeatureLevel accepts the "11_0" style names used in configuration. An
// empty name selects 11_0.
func ParseFeatureLevel(name string) (FeatureLevel, error) {
	switch name {
	case "", "11_0":
		return FeatureLevel11_0, nil
	case "10_1":
		return FeatureLevel10_1, nil
	case "10_0":
		return FeatureLevel10_0, nil
	case "9_3":
		return FeatureLevel9_3, nil
	}
	return 0, fmt.Errorf("d3d11: unknown feature level %q", name)
}

// MajorShaderModel is 5 on 11_0 hardware and 4 below it.
func (f FeatureLevel) MajorShaderModel() int {
	if f >= FeatureLevel11_0 {
		return 5
	}
	return 4
}

func (f FeatureLevel) profileSuffix() string {
	switch f {
	case FeatureLevel11_0:
		return "5_0"
	case FeatureLevel10_1:
		return "4_1"
	case FeatureLevel10_0:
		return "4_0"
	}
	return "4_0_level_9_3"
}

func (f FeatureLevel) caps() metadata.Caps {
	switch f {
	case FeatureLevel11_0:
		return metadata.Caps{
			MaxTextureSize:        16384,
			MaxTexture3DSize:      2048,
			MaxArrayTextureLayers: 2048,
			MaxRenderbufferSize:   16384,
			MaxDrawBuffers:        8,
			MaxVertexAttributes:   16,
			MaxSamples:            8,
			ElementIndexUint:      true,
			TextureNPOT:           true,
		}
	case FeatureLevel10_1, FeatureLevel10_0:
		return metadata.Caps{
			MaxTextureSize:        8192,
			MaxTexture3DSize:      2048,
			MaxArrayTextureLayers: 512,
			MaxRenderbufferSize:   8192,
			MaxDrawBuffers:        8,
			MaxVertexAttributes:   16,
			MaxSamples:            4,
			ElementIndexUint:      true,
			TextureNPOT:           true,
		}
	}
	return metadata.Caps{
		MaxTextureSize:        4096,
		MaxTexture3DSize:      256,
		MaxArrayTextureLayers: 1,
		MaxRenderbufferSize:   4096,
		MaxDrawBuffers:        4,
		MaxVertexAttributes:   16,
		MaxSamples:            4,
		ElementIndexUint:      true,
	}
}

type Options struct {
	// Device is the native device to drive. A new one is created when nil.
	Device       *native.Device
	FeatureLevel string
	MemoryBudget uint64
	// StateCacheCapacity bounds each render-state category.
	StateCacheCapacity int
	// Serials is shared with the front-end so serials stay unique across the
	// objects of one context.
	Serials  *core.SerialIssuer
	Compiler d3d.ShaderCompiler
}

type Renderer11 struct {
	options      Options
	device       *native.Device
	ownsDevice   bool
	featureLevel FeatureLevel
	serials      *core.SerialIssuer
	caps         metadata.Caps
	stateCache   *d3d.RenderStateCache
	bindings     d3d.BindingTracker
	logger       *log.Logger
}

func New(options Options) *Renderer11 {
	serials := options.Serials
	if serials == nil {
		serials = core.DefaultSerials
	}
	return &Renderer11{
		options: options,
		serials: serials,
		logger:  core.Logger("backend", "d3d11"),
	}
}

func (r *Renderer11) Initialize() error {
	level, err := ParseFeatureLevel(r.options.FeatureLevel)
	if err != nil {
		return err
	}
	r.featureLevel = level

	r.device = r.options.Device
	if r.device == nil {
		r.device = native.NewDevice(native.DeviceDesc{Name: "d3d11", MemoryBudget: r.options.MemoryBudget})
		r.ownsDevice = true
	}
	if res := r.device.Init(); res.Failed() {
		return fmt.Errorf("%w: d3d11 device creation failed: %s", core.ErrBackendUnavailable, res)
	}

	r.caps = level.caps()
	r.stateCache = d3d.NewRenderStateCache(stateFactory{device: r.device}, r.options.StateCacheCapacity)
	r.logger.Info("initialized", "featureLevel", level, "shaderModel", level.MajorShaderModel())
	return nil
}

func (r *Renderer11) Release() {
	if r.stateCache != nil {
		r.stateCache.Clear()
	}
	if r.ownsDevice && r.device != nil {
		r.device.Close()
	}
	r.bindings.Reset()
}

func (r *Renderer11) Name() string {
	return "Direct3D11 " + r.featureLevel.String()
}

func (r *Renderer11) BackendType() metadata.BackendType {
	return metadata.BackendTypeD3D11
}

func (r *Renderer11) FeatureLevel() FeatureLevel {
	return r.featureLevel
}

func (r *Renderer11) MajorShaderModel() int {
	return r.featureLevel.MajorShaderModel()
}

func (r *Renderer11) Caps() metadata.Caps {
	return r.caps
}

func (r *Renderer11) Workarounds() metadata.Workarounds {
	return metadata.Workarounds{SetDataFasterThanImageUpload: true}
}

func (r *Renderer11) Serials() *core.SerialIssuer {
	return r.serials
}

func (r *Renderer11) VertexFormats() d3d.VertexFormatPolicy {
	return vertexFormats{}
}

// Device is the native device the renderer drives.
func (r *Renderer11) Device() *native.Device {
	return r.device
}

func (r *Renderer11) CreateBufferStorage() d3d.BufferStorage {
	return &bufferStorage11{renderer: r}
}

func (r *Renderer11) CreateIndexBuffer() d3d.IndexBuffer {
	return &indexBuffer11{renderer: r}
}

func (r *Renderer11) CreateVertexBuffer() d3d.VertexBuffer {
	return &vertexBuffer11{renderer: r}
}

func (r *Renderer11) CreateRenderTarget(width, height int, internalFormat gl.GLenum, samples int) (d3d.RenderTarget, error) {
	format, ok := GetTextureFormat(internalFormat)
	if !ok {
		return nil, core.InvalidOperation("d3d11: unsupported render target format %#x", uint32(internalFormat))
	}
	if samples > r.caps.MaxSamples {
		return nil, core.InvalidOperation("d3d11: %d samples requested, %d supported", samples, r.caps.MaxSamples)
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
		Bind:       bind | native.BindShaderResource,
	})
	if err := native.Check(res, "failed to create %dx%d render target (%s)", width, height, format.Format); err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	return &renderTarget11{
		texture:        texture,
		ownsTexture:    true,
		width:          width,
		height:         height,
		depth:          1,
		internalFormat: internalFormat,
		actualFormat:   format.RenderFormat,
		samples:        samples,
		serial:         r.serials.Issue(),
	}, nil
}

func (r *Renderer11) CreateTextureStorage2D(format gl.GLenum, renderTarget bool, width, height, levels int) (d3d.TextureStorage, error) {
	return r.newTextureStorage(metadata.TextureType2d, format, renderTarget,
		metadata.Extents{Width: width, Height: height, Depth: 1}, 1, levels)
}

func (r *Renderer11) CreateTextureStorageCube(format gl.GLenum, renderTarget bool, size, levels int) (d3d.TextureStorage, error) {
	return r.newTextureStorage(metadata.TextureTypeCube, format, renderTarget,
		metadata.Extents{Width: size, Height: size, Depth: 1}, metadata.CubeFaceCount, levels)
}

func (r *Renderer11) CreateTextureStorage3D(format gl.GLenum, renderTarget bool, width, height, depth, levels int) (d3d.TextureStorage, error) {
	if r.featureLevel < FeatureLevel10_0 {
		return nil, fmt.Errorf("%w: 3D textures need feature level 10_0", core.ErrUnsupported)
	}
	return r.newTextureStorage(metadata.TextureType3d, format, renderTarget,
		metadata.Extents{Width: width, Height: height, Depth: depth}, 1, levels)
}

func (r *Renderer11) CreateTextureStorage2DArray(format gl.GLenum, renderTarget bool, width, height, layers, levels int) (d3d.TextureStorage, error) {
	if layers > r.caps.MaxArrayTextureLayers {
		return nil, fmt.Errorf("%w: %d array layers requested, %d supported", core.ErrUnsupported, layers, r.caps.MaxArrayTextureLayers)
	}
	return r.newTextureStorage(metadata.TextureType2dArray, format, renderTarget,
		metadata.Extents{Width: width, Height: height, Depth: layers}, layers, levels)
}

func (r *Renderer11) StateCache() *d3d.RenderStateCache {
	return r.stateCache
}

func (r *Renderer11) ShaderProfile(shaderType d3d.ShaderType) string {
	return shaderType.String() + "_" + r.featureLevel.profileSuffix()
}

func (r *Renderer11) CompileToBinary(source string, shaderType d3d.ShaderType, macros []d3d.ShaderMacro) ([]byte, string, error) {
	if r.options.Compiler == nil {
		return nil, "", fmt.Errorf("%w: no HLSL compiler configured", core.ErrUnsupported)
	}
	if shaderType == d3d.ShaderGeometry && r.featureLevel < FeatureLevel10_0 {
		return nil, "", fmt.Errorf("%w: geometry shaders need feature level 10_0", core.ErrUnsupported)
	}
	configs := d3d.DefaultCompileConfigs(d3d.CompileOptimizationLevel3)
	return d3d.CompileToBinary(r.options.Compiler, source, r.ShaderProfile(shaderType), configs, macros)
}

func (r *Renderer11) ApplyRenderTarget(rt d3d.RenderTarget) bool {
	if !r.bindings.RenderTarget(rt.Serial()) {
		return false
	}
	r.device.RecordBind()
	return true
}

func (r *Renderer11) ApplyIndexBuffer(data *d3d.TranslatedIndexData) bool {
	if !r.bindings.IndexBuffer(data) {
		return false
	}
	r.device.RecordBind()
	return true
}
