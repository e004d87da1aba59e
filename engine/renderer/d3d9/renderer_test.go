package d3d9

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/spaghettifunk/gles/engine/core"
	"github.com/spaghettifunk/gles/engine/renderer/d3d"
	"github.com/spaghettifunk/gles/engine/renderer/gl"
	"github.com/spaghettifunk/gles/engine/renderer/metadata"
	"github.com/spaghettifunk/gles/engine/renderer/native"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRenderer(t *testing.T, options Options) *Renderer9 {
	t.Helper()
	r := New(options)
	require.NoError(t, r.Initialize())
	t.Cleanup(r.Release)
	return r
}

func ushortIndices(values ...uint16) []byte {
	out := make([]byte, len(values)*2)
	for i, v := range values {
		binary.LittleEndian.PutUint16(out[i*2:], v)
	}
	return out
}

func TestRendererIdentity(t *testing.T) {
	r := newTestRenderer(t, Options{})
	assert.Equal(t, "Direct3D9", r.Name())
	assert.Equal(t, metadata.BackendTypeD3D9, r.BackendType())
	assert.Equal(t, 3, r.MajorShaderModel())
	assert.Equal(t, "vs_3_0", r.ShaderProfile(d3d.ShaderVertex))
	assert.Equal(t, "ps_3_0", r.ShaderProfile(d3d.ShaderPixel))
	assert.True(t, r.Caps().ElementIndexUint)
	assert.Equal(t, 1, r.Caps().MaxDrawBuffers)
	assert.False(t, r.Workarounds().SetDataFasterThanImageUpload)
}

func TestInitializeUnavailableDevice(t *testing.T) {
	r := New(Options{Device: native.NewDevice(native.DeviceDesc{Unavailable: true})})
	assert.True(t, errors.Is(r.Initialize(), core.ErrBackendUnavailable))
	r.Release()
}

func TestBufferStorageStaysInSystemMemory(t *testing.T) {
	r := newTestRenderer(t, Options{})
	storage := r.CreateBufferStorage()
	assert.False(t, storage.SupportsDirectBinding())

	require.NoError(t, storage.Resize(4))
	require.NoError(t, storage.Write(0, []byte{1, 2, 3, 4}))
	require.NoError(t, storage.Resize(6))
	data, err := storage.Data()
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4, 0, 0}, data)
	assert.Zero(t, storage.Handle())
	assert.Zero(t, r.Device().Stats().LiveBuffers)

	assert.Error(t, storage.Write(4, []byte{1, 2, 3}))
}

func TestPrepareIndexDataStreams(t *testing.T) {
	r := newTestRenderer(t, Options{})
	buffer := d3d.NewBuffer(r, 0)
	require.NoError(t, buffer.SetData(ushortIndices(0, 1, 0xFFFF), 6, gl.DYNAMIC_DRAW))

	manager := d3d.NewIndexDataManager(r, 0)
	t.Cleanup(manager.Release)
	translated, err := manager.PrepareIndexData(gl.UNSIGNED_SHORT, 3, buffer, 0, nil)
	require.NoError(t, err)

	assert.False(t, translated.DirectStorage())
	require.NotNil(t, translated.IndexBuffer)
	// Shader model 3 hardware has no strip cut index.
	assert.Equal(t, gl.UNSIGNED_SHORT, translated.IndexType)
	assert.Equal(t, D3DFMT_INDEX16, translated.IndexBuffer.(*indexBuffer9).Format())

	assert.True(t, r.ApplyIndexBuffer(translated))
	assert.False(t, r.ApplyIndexBuffer(translated))
	assert.Equal(t, uint64(1), r.Device().Stats().Binds)
}

func TestIndexBuffer32BitNeedsCaps(t *testing.T) {
	r := newTestRenderer(t, Options{MaxVertexIndex: 0xFFFF})
	assert.False(t, r.Caps().ElementIndexUint)

	ib := r.CreateIndexBuffer()
	err := ib.Initialize(64, gl.UNSIGNED_INT, true)
	assert.True(t, errors.Is(err, core.ErrUnsupported))
	assert.Zero(t, ib.BufferSize())

	require.NoError(t, ib.Initialize(64, gl.UNSIGNED_SHORT, true))
	assert.Equal(t, uint32(64), ib.BufferSize())
	_, err = ib.MapBuffer(60, 8)
	assert.True(t, errors.Is(err, core.ErrOutOfMemory))
	ib.Release()

	wide := newTestRenderer(t, Options{}).CreateIndexBuffer()
	require.NoError(t, wide.Initialize(64, gl.UNSIGNED_INT, false))
	assert.Equal(t, D3DFMT_INDEX32, wide.(*indexBuffer9).Format())
	wide.Release()
}

func TestVertexDeclarationTypes(t *testing.T) {
	tests := []struct {
		name       string
		key        d3d.VertexFormatKey
		conversion d3d.VertexConversion
		decl       DeclType
		size       uint32
	}{
		{"float2", d3d.VertexFormatKey{Type: gl.FLOAT, Components: 2}, d3d.VertexConvertNone, D3DDECLTYPE_FLOAT2, 8},
		{"ubyte4n", d3d.VertexFormatKey{Type: gl.UNSIGNED_BYTE, Components: 4, Normalized: true}, d3d.VertexConvertNone, D3DDECLTYPE_UBYTE4N, 4},
		{"ubyte4", d3d.VertexFormatKey{Type: gl.UNSIGNED_BYTE, Components: 4}, d3d.VertexConvertNone, D3DDECLTYPE_UBYTE4, 4},
		{"ubyte2n", d3d.VertexFormatKey{Type: gl.UNSIGNED_BYTE, Components: 2, Normalized: true}, d3d.VertexConvertCPU, D3DDECLTYPE_FLOAT2, 8},
		{"short2", d3d.VertexFormatKey{Type: gl.SHORT, Components: 2}, d3d.VertexConvertNone, D3DDECLTYPE_SHORT2, 4},
		{"short4n", d3d.VertexFormatKey{Type: gl.SHORT, Components: 4, Normalized: true}, d3d.VertexConvertNone, D3DDECLTYPE_SHORT4N, 8},
		{"short3", d3d.VertexFormatKey{Type: gl.SHORT, Components: 3}, d3d.VertexConvertCPU, D3DDECLTYPE_FLOAT3, 12},
		{"ushort2n", d3d.VertexFormatKey{Type: gl.UNSIGNED_SHORT, Components: 2, Normalized: true}, d3d.VertexConvertNone, D3DDECLTYPE_USHORT2N, 4},
		{"ushort2", d3d.VertexFormatKey{Type: gl.UNSIGNED_SHORT, Components: 2}, d3d.VertexConvertCPU, D3DDECLTYPE_FLOAT2, 8},
		{"half4", d3d.VertexFormatKey{Type: gl.HALF_FLOAT, Components: 4}, d3d.VertexConvertNone, D3DDECLTYPE_FLOAT16_4, 8},
		{"int1 integer", d3d.VertexFormatKey{Type: gl.INT, Components: 1, PureInteger: true}, d3d.VertexConvertCPU, D3DDECLTYPE_FLOAT1, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			format := vertexFormats{}.VertexFormat(tt.key)
			assert.Equal(t, tt.conversion, format.Conversion)
			assert.Equal(t, uint32(tt.decl), format.NativeFormat)
			assert.Equal(t, tt.size, format.OutputElementSize)
		})
	}
}

func TestTextureUploadSwizzles(t *testing.T) {
	r := newTestRenderer(t, Options{})

	tests := []struct {
		name   string
		format gl.GLenum
		gl     []byte
		native []byte
	}{
		{"rgba8", gl.RGBA8, []byte{1, 2, 3, 4}, []byte{3, 2, 1, 4}},
		{"rgb8", gl.RGB8, []byte{1, 2, 3}, []byte{3, 2, 1, 0xFF}},
		{"rgba4", gl.RGBA4, []byte{0x34, 0x12}, []byte{0x23, 0x41}},
		{"rgb565", gl.RGB565, []byte{0x00, 0xF8}, []byte{0x00, 0xF8}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tex := d3d.NewTexture2D(r)
			defer tex.Release()
			require.NoError(t, tex.SetImage(0, tt.format, 1, 1, tt.gl))
			require.NoError(t, tex.InitializeStorage(false))

			storage := tex.Storage().(*textureStorage9)
			sub, res := storage.texture.Subresource(0, 0)
			require.Equal(t, native.S_OK, res)
			assert.Equal(t, tt.native, sub)

			image := d3d.NewImage()
			image.Redefine(tt.format, metadata.Extents{Width: 1, Height: 1, Depth: 1})
			require.NoError(t, storage.ReadData(metadata.MakeImageIndex2D(0), image))
			assert.Equal(t, tt.gl, image.Data())
		})
	}
}

func TestTextureStorageKinds(t *testing.T) {
	r := newTestRenderer(t, Options{})

	_, err := r.CreateTextureStorage3D(gl.RGBA8, false, 4, 4, 4, 1)
	assert.True(t, errors.Is(err, core.ErrUnsupported))
	_, err = r.CreateTextureStorage2DArray(gl.RGBA8, false, 4, 4, 2, 1)
	assert.True(t, errors.Is(err, core.ErrUnsupported))
	_, err = r.CreateTextureStorage2D(gl.RG8, false, 4, 4, 1)
	assert.True(t, errors.Is(err, core.ErrInvalidOperation))
	_, err = r.CreateTextureStorage2D(gl.RGBA8, false, 8192, 4, 1)
	assert.True(t, errors.Is(err, core.ErrInvalidOperation))

	cube, err := r.CreateTextureStorageCube(gl.RGBA8, true, 16, 5)
	require.NoError(t, err)
	defer cube.Release()
	assert.Equal(t, 6, cube.(*textureStorage9).texture.Desc().ArraySize)

	index := metadata.MakeImageIndexCube(gl.TEXTURE_CUBE_MAP_NEGATIVE_Z, 4)
	rt, err := cube.RenderTarget(index)
	require.NoError(t, err)
	assert.Equal(t, 1, rt.Width())
	assert.Equal(t, 5, rt.(*surface9).face)
	assert.Equal(t, rt.Serial(), cube.RenderTargetSerial(index))
}

func TestTextureMipmapsOnDevice(t *testing.T) {
	r := newTestRenderer(t, Options{})
	tex := d3d.NewTexture2D(r)
	t.Cleanup(tex.Release)
	tex.SetUsage(metadata.TextureUsageFramebufferAttachment)

	pixels := make([]byte, 0, 16)
	for i := 0; i < 4; i++ {
		pixels = append(pixels, 10, 20, 30, 255)
	}
	require.NoError(t, tex.SetImage(0, gl.RGBA8, 2, 2, pixels))
	require.NoError(t, tex.EnsureRenderTarget())
	require.NoError(t, tex.GenerateMipmaps())

	storage := tex.Storage().(*textureStorage9)
	sub, res := storage.texture.Subresource(1, 0)
	require.Equal(t, native.S_OK, res)
	assert.Equal(t, []byte{30, 20, 10, 255}, sub)
}

func TestRenderbufferSurfaces(t *testing.T) {
	r := newTestRenderer(t, Options{})
	rb := d3d.NewRenderbuffer(r)
	t.Cleanup(rb.Release)

	require.NoError(t, rb.SetStorage(gl.RGBA4, 8, 8, 0))
	assert.Equal(t, gl.RGBA4, rb.RenderTarget().ActualFormat())
	assert.True(t, r.ApplyRenderTarget(rb.RenderTarget()))
	assert.False(t, r.ApplyRenderTarget(rb.RenderTarget()))

	require.NoError(t, rb.SetStorage(gl.STENCIL_INDEX8, 8, 8, 0))
	assert.Equal(t, gl.DEPTH24_STENCIL8, rb.RenderTarget().ActualFormat())
	assert.Equal(t, 1, r.Device().Stats().LiveTextures)
}

func TestStateBlocks(t *testing.T) {
	r := newTestRenderer(t, Options{})
	formats := []gl.GLenum{gl.RGBA8, gl.RGBA8}
	state, err := r.StateCache().GetBlendState(formats, metadata.DefaultBlendState())
	require.NoError(t, err)

	block := state.(*stateBlock)
	assert.Equal(t, d3d.StateBlend, block.Kind())
	desc := block.object.Desc.(d3d.BlendDesc)
	assert.False(t, desc.IndependentBlendEnable)
	assert.Zero(t, desc.RenderTarget[1].WriteMask)

	_, err = r.StateCache().GetDepthStencilState(metadata.DefaultDepthStencilState())
	require.NoError(t, err)
	assert.Equal(t, 2, r.Device().Stats().LiveStates)
}

type recordingCompiler struct {
	profiles []string
	flags    []uint32
}

func (c *recordingCompiler) Compile(_, profile string, flags uint32, _ []d3d.ShaderMacro) ([]byte, string, error) {
	c.profiles = append(c.profiles, profile)
	c.flags = append(c.flags, flags)
	return []byte{0x03}, "", nil
}

func TestCompileToBinary(t *testing.T) {
	compiler := &recordingCompiler{}
	r := newTestRenderer(t, Options{Compiler: compiler})

	blob, _, err := r.CompileToBinary("src", d3d.ShaderPixel, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x03}, blob)
	assert.Equal(t, []string{"ps_3_0"}, compiler.profiles)
	assert.Equal(t, []uint32{d3d.CompileOptimizationLevel2}, compiler.flags)

	_, _, err = r.CompileToBinary("src", d3d.ShaderGeometry, nil)
	assert.True(t, errors.Is(err, core.ErrUnsupported))
}

func TestDefaultSerialsAreProcessWide(t *testing.T) {
	assert.Same(t, core.DefaultSerials, New(Options{}).Serials())
}

func TestFailedGrowthKeepsBuffers(t *testing.T) {
	r := newTestRenderer(t, Options{})

	ib := r.CreateIndexBuffer()
	t.Cleanup(ib.Release)
	require.NoError(t, ib.Initialize(64, gl.UNSIGNED_SHORT, true))
	indexSerial := ib.Serial()

	r.Device().FailNext(native.KindBuffer, 1)
	err := ib.SetSize(128, gl.UNSIGNED_SHORT)
	assert.True(t, errors.Is(err, core.ErrOutOfMemory))
	assert.EqualValues(t, 64, ib.BufferSize())
	assert.Equal(t, indexSerial, ib.Serial())
	_, err = ib.MapBuffer(0, 64)
	require.NoError(t, err)
	require.NoError(t, ib.Unmap())

	vb := r.CreateVertexBuffer()
	t.Cleanup(vb.Release)
	require.NoError(t, vb.Initialize(64, true))
	vertexSerial := vb.Serial()

	r.Device().FailNext(native.KindBuffer, 1)
	err = vb.SetBufferSize(256)
	assert.True(t, errors.Is(err, core.ErrOutOfMemory))
	assert.EqualValues(t, 64, vb.BufferSize())
	assert.Equal(t, vertexSerial, vb.Serial())

	require.NoError(t, vb.SetBufferSize(256))
	assert.EqualValues(t, 256, vb.BufferSize())
	assert.NotEqual(t, vertexSerial, vb.Serial())
	assert.Equal(t, 2, r.Device().Stats().LiveBuffers)
}

type rejectingCompiler struct{}

func (rejectingCompiler) Compile(_, profile string, _ uint32, _ []d3d.ShaderMacro) ([]byte, string, error) {
	return nil, profile + ": error X3000: syntax error", nil
}

func TestCompileToBinaryFailure(t *testing.T) {
	r := newTestRenderer(t, Options{Compiler: rejectingCompiler{}})
	blob, log, err := r.CompileToBinary("src", d3d.ShaderVertex, nil)
	assert.Nil(t, blob)
	assert.True(t, errors.Is(err, core.ErrCompileFailed))
	assert.Contains(t, log, "vs_3_0: error X3000")
}
