package d3d

import (
	"github.com/spaghettifunk/gles/engine/core"
	"github.com/spaghettifunk/gles/engine/renderer/gl"
	"github.com/spaghettifunk/gles/engine/renderer/metadata"
)

// fakeRenderer keeps every native resource in memory and counts the work the
// D3D layer asks of it.
type fakeRenderer struct {
	serials       *core.SerialIssuer
	caps          metadata.Caps
	workarounds   metadata.Workarounds
	shaderModel   int
	directBinding bool
	stateFactory  *fakeStateFactory
	stateCache    *RenderStateCache
	bindings      BindingTracker

	failStorage      bool
	failRenderTarget bool

	indexBuffers    []*fakeIndexBuffer
	vertexBuffers   []*fakeVertexBuffer
	textureStorages []*fakeTextureStorage
	renderTargets   []*fakeRenderTarget
}

func newFakeRenderer(directBinding bool) *fakeRenderer {
	r := &fakeRenderer{
		serials:       core.NewSerialIssuer(),
		shaderModel:   4,
		directBinding: directBinding,
		caps: metadata.Caps{
			MaxTextureSize:        2048,
			MaxTexture3DSize:      256,
			MaxArrayTextureLayers: 256,
			MaxRenderbufferSize:   2048,
			MaxDrawBuffers:        8,
			MaxVertexAttributes:   16,
			MaxSamples:            4,
			ElementIndexUint:      true,
			TextureNPOT:           true,
		},
		stateFactory: &fakeStateFactory{},
	}
	r.stateCache = NewRenderStateCache(r.stateFactory, 0)
	return r
}

func (r *fakeRenderer) Initialize() error                 { return nil }
func (r *fakeRenderer) Release()                          { r.stateCache.Clear() }
func (r *fakeRenderer) Name() string                      { return "fake" }
func (r *fakeRenderer) BackendType() metadata.BackendType { return metadata.BackendTypeUnknown }
func (r *fakeRenderer) MajorShaderModel() int             { return r.shaderModel }
func (r *fakeRenderer) Caps() metadata.Caps               { return r.caps }
func (r *fakeRenderer) Workarounds() metadata.Workarounds { return r.workarounds }
func (r *fakeRenderer) Serials() *core.SerialIssuer       { return r.serials }
func (r *fakeRenderer) VertexFormats() VertexFormatPolicy { return fakeFormats{} }
func (r *fakeRenderer) StateCache() *RenderStateCache     { return r.stateCache }

func (r *fakeRenderer) CreateBufferStorage() BufferStorage {
	return &fakeBufferStorage{direct: r.directBinding}
}

func (r *fakeRenderer) CreateIndexBuffer() IndexBuffer {
	ib := &fakeIndexBuffer{renderer: r}
	r.indexBuffers = append(r.indexBuffers, ib)
	return ib
}

func (r *fakeRenderer) CreateVertexBuffer() VertexBuffer {
	vb := &fakeVertexBuffer{renderer: r}
	r.vertexBuffers = append(r.vertexBuffers, vb)
	return vb
}

func (r *fakeRenderer) CreateRenderTarget(width, height int, format gl.GLenum, samples int) (RenderTarget, error) {
	if r.failRenderTarget {
		return nil, core.OutOfMemory("fake render target allocation failed")
	}
	rt := &fakeRenderTarget{width: width, height: height, depth: 1, format: format, samples: samples, serial: r.serials.Issue()}
	r.renderTargets = append(r.renderTargets, rt)
	return rt, nil
}

func (r *fakeRenderer) newStorage(format gl.GLenum, renderTarget bool, extents metadata.Extents, layers, levels int) (TextureStorage, error) {
	if r.failStorage {
		return nil, core.OutOfMemory("fake texture storage allocation failed")
	}
	s := &fakeTextureStorage{
		renderer:     r,
		format:       format,
		renderTarget: renderTarget,
		extents:      extents,
		layers:       layers,
		levels:       levels,
		data:         make(map[metadata.ImageIndex][]byte),
		targets:      make(map[metadata.ImageIndex]*fakeRenderTarget),
	}
	r.textureStorages = append(r.textureStorages, s)
	return s, nil
}

func (r *fakeRenderer) CreateTextureStorage2D(format gl.GLenum, renderTarget bool, width, height, levels int) (TextureStorage, error) {
	return r.newStorage(format, renderTarget, metadata.Extents{Width: width, Height: height, Depth: 1}, 1, levels)
}

func (r *fakeRenderer) CreateTextureStorageCube(format gl.GLenum, renderTarget bool, size, levels int) (TextureStorage, error) {
	return r.newStorage(format, renderTarget, metadata.Extents{Width: size, Height: size, Depth: 1}, metadata.CubeFaceCount, levels)
}

func (r *fakeRenderer) CreateTextureStorage3D(format gl.GLenum, renderTarget bool, width, height, depth, levels int) (TextureStorage, error) {
	return r.newStorage(format, renderTarget, metadata.Extents{Width: width, Height: height, Depth: depth}, 1, levels)
}

func (r *fakeRenderer) CreateTextureStorage2DArray(format gl.GLenum, renderTarget bool, width, height, layers, levels int) (TextureStorage, error) {
	return r.newStorage(format, renderTarget, metadata.Extents{Width: width, Height: height, Depth: layers}, layers, levels)
}

func (r *fakeRenderer) ShaderProfile(shaderType ShaderType) string {
	return shaderType.String() + "_4_0"
}

func (r *fakeRenderer) CompileToBinary(string, ShaderType, []ShaderMacro) ([]byte, string, error) {
	return nil, "", core.ErrUnsupported
}

func (r *fakeRenderer) ApplyRenderTarget(rt RenderTarget) bool {
	return r.bindings.RenderTarget(rt.Serial())
}

func (r *fakeRenderer) ApplyIndexBuffer(data *TranslatedIndexData) bool {
	return r.bindings.IndexBuffer(data)
}

func (r *fakeRenderer) indexMaps() int {
	n := 0
	for _, ib := range r.indexBuffers {
		n += ib.maps
	}
	return n
}

// fakeFormats consumes floats natively and converts everything else.
type fakeFormats struct{}

func (fakeFormats) VertexFormat(key VertexFormatKey) VertexFormat {
	if key.Type == gl.FLOAT {
		return CopyVertexDirect(0, key.Components*4)
	}
	return ConvertVertexToFloat(0, key, key.Components)
}

type fakeBufferStorage struct {
	data     []byte
	direct   bool
	released bool
}

func (s *fakeBufferStorage) Resize(size uint32) error {
	grown := make([]byte, size)
	copy(grown, s.data)
	s.data = grown
	return nil
}

func (s *fakeBufferStorage) Write(offset uint32, data []byte) error {
	copy(s.data[offset:], data)
	return nil
}

func (s *fakeBufferStorage) Data() ([]byte, error) { return s.data, nil }
func (s *fakeBufferStorage) SupportsDirectBinding() bool {
	return s.direct
}
func (s *fakeBufferStorage) Release() { s.released = true }

func (s *fakeBufferStorage) Handle() uint64 {
	if s.direct {
		return 1
	}
	return 0
}

type fakeIndexBuffer struct {
	renderer  *fakeRenderer
	data      []byte
	indexType gl.GLenum
	serial    core.Serial
	maps      int
	discards  int
	released  bool
}

func (b *fakeIndexBuffer) Initialize(size uint32, indexType gl.GLenum, _ bool) error {
	return b.SetSize(size, indexType)
}

func (b *fakeIndexBuffer) SetSize(size uint32, indexType gl.GLenum) error {
	b.data = make([]byte, size)
	b.indexType = indexType
	b.serial = b.renderer.serials.Issue()
	return nil
}

func (b *fakeIndexBuffer) MapBuffer(offset, size uint32) ([]byte, error) {
	if uint64(offset)+uint64(size) > uint64(len(b.data)) {
		return nil, core.OutOfMemory("map past the end of the index buffer")
	}
	b.maps++
	return b.data[offset : offset+size], nil
}

func (b *fakeIndexBuffer) Unmap() error         { return nil }
func (b *fakeIndexBuffer) IndexType() gl.GLenum { return b.indexType }
func (b *fakeIndexBuffer) BufferSize() uint32   { return uint32(len(b.data)) }
func (b *fakeIndexBuffer) Serial() core.Serial  { return b.serial }
func (b *fakeIndexBuffer) Handle() uint64       { return uint64(b.serial) }
func (b *fakeIndexBuffer) Release()             { b.released = true }
func (b *fakeIndexBuffer) Discard() error {
	b.discards++
	return nil
}

type fakeVertexBuffer struct {
	renderer *fakeRenderer
	data     []byte
	serial   core.Serial
	stores   int
	discards int
	released bool
}

func (b *fakeVertexBuffer) Initialize(size uint32, _ bool) error {
	return b.SetBufferSize(size)
}

func (b *fakeVertexBuffer) SetBufferSize(size uint32) error {
	b.data = make([]byte, size)
	b.serial = b.renderer.serials.Issue()
	return nil
}

func (b *fakeVertexBuffer) StoreVertexAttributes(attrib *metadata.VertexAttribute, current metadata.VertexAttribCurrentValue,
	start int32, count, instances, offset uint32) error {
	b.stores++
	return WriteVertexAttribute(fakeFormats{}, attrib, current, start, count, instances, b.data[offset:])
}

func (b *fakeVertexBuffer) BufferSize() uint32  { return uint32(len(b.data)) }
func (b *fakeVertexBuffer) Serial() core.Serial { return b.serial }
func (b *fakeVertexBuffer) Handle() uint64      { return uint64(b.serial) }
func (b *fakeVertexBuffer) Release()            { b.released = true }
func (b *fakeVertexBuffer) Discard() error {
	b.discards++
	return nil
}

type fakeRenderTarget struct {
	width, height, depth int
	format               gl.GLenum
	samples              int
	serial               core.Serial
	released             bool
}

func (t *fakeRenderTarget) Width() int                { return t.width }
func (t *fakeRenderTarget) Height() int               { return t.height }
func (t *fakeRenderTarget) Depth() int                { return t.depth }
func (t *fakeRenderTarget) InternalFormat() gl.GLenum { return t.format }
func (t *fakeRenderTarget) ActualFormat() gl.GLenum   { return t.format }
func (t *fakeRenderTarget) Samples() int              { return t.samples }
func (t *fakeRenderTarget) Serial() core.Serial       { return t.serial }
func (t *fakeRenderTarget) Release()                  { t.released = true }

type fakeTextureStorage struct {
	renderer     *fakeRenderer
	format       gl.GLenum
	renderTarget bool
	extents      metadata.Extents
	layers       int
	levels       int
	data         map[metadata.ImageIndex][]byte
	targets      map[metadata.ImageIndex]*fakeRenderTarget

	setDataCalls int
	mipmapCalls  int
	copyCalls    int
	released     bool
}

func (s *fakeTextureStorage) LevelCount() int           { return s.levels }
func (s *fakeTextureStorage) IsRenderTarget() bool      { return s.renderTarget }
func (s *fakeTextureStorage) Extents() metadata.Extents { return s.extents }

func (s *fakeTextureStorage) RenderTarget(index metadata.ImageIndex) (RenderTarget, error) {
	if !s.renderTarget {
		return nil, core.InvalidOperation("storage is not renderable")
	}
	rt, ok := s.targets[index]
	if !ok {
		e := s.extents.MipExtents(index.MipIndex)
		rt = &fakeRenderTarget{width: e.Width, height: e.Height, depth: 1, format: s.format, serial: s.renderer.serials.Issue()}
		s.targets[index] = rt
	}
	return rt, nil
}

func (s *fakeTextureStorage) RenderTargetSerial(index metadata.ImageIndex) core.Serial {
	rt, err := s.RenderTarget(index)
	if err != nil {
		return 0
	}
	return rt.Serial()
}

func (s *fakeTextureStorage) SetData(index metadata.ImageIndex, image *Image) error {
	s.setDataCalls++
	s.data[index] = append([]byte(nil), image.Data()...)
	return nil
}

func (s *fakeTextureStorage) ReadData(index metadata.ImageIndex, image *Image) error {
	image.CopyFrom(s.data[index])
	return nil
}

func (s *fakeTextureStorage) GenerateMipmap(src, dst metadata.ImageIndex) error {
	s.mipmapCalls++
	return nil
}

func (s *fakeTextureStorage) CopyToStorage(dst TextureStorage) error {
	s.copyCalls++
	if target, ok := dst.(*fakeTextureStorage); ok {
		for index, data := range s.data {
			target.data[index] = append([]byte(nil), data...)
		}
	}
	return nil
}

func (s *fakeTextureStorage) Release() {
	s.released = true
	for _, rt := range s.targets {
		rt.Release()
	}
}

type fakeState struct {
	handle   uint64
	released bool
}

func (s *fakeState) Handle() uint64 { return s.handle }
func (s *fakeState) Release()       { s.released = true }

type fakeStateFactory struct {
	created  []*fakeState
	failNext bool
	last     interface{}
}

func (f *fakeStateFactory) create(desc interface{}) (NativeState, error) {
	if f.failNext {
		f.failNext = false
		return nil, core.OutOfMemory("fake state allocation failed")
	}
	s := &fakeState{handle: uint64(len(f.created) + 1)}
	f.created = append(f.created, s)
	f.last = desc
	return s, nil
}

func (f *fakeStateFactory) CreateBlendState(desc BlendDesc) (NativeState, error) {
	return f.create(desc)
}

func (f *fakeStateFactory) CreateRasterizerState(desc RasterizerDesc) (NativeState, error) {
	return f.create(desc)
}

func (f *fakeStateFactory) CreateDepthStencilState(desc DepthStencilDesc) (NativeState, error) {
	return f.create(desc)
}

func (f *fakeStateFactory) CreateSamplerState(desc SamplerDesc) (NativeState, error) {
	return f.create(desc)
}

func (f *fakeStateFactory) live() int {
	n := 0
	for _, s := range f.created {
		if !s.released {
			n++
		}
	}
	return n
}
