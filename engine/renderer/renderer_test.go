package renderer

import (
	"errors"
	"testing"

	"github.com/spaghettifunk/gles/engine/core"
	"github.com/spaghettifunk/gles/engine/renderer/d3d"
	"github.com/spaghettifunk/gles/engine/renderer/d3d9"
	"github.com/spaghettifunk/gles/engine/renderer/gl"
	"github.com/spaghettifunk/gles/engine/renderer/metadata"
	"github.com/spaghettifunk/gles/engine/renderer/native"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(values map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}
}

var noEnv = env(nil)

func unavailableDevice() *native.Device {
	return native.NewDevice(native.DeviceDesc{Name: "missing", Unavailable: true})
}

func TestFactories(t *testing.T) {
	names := Factories()
	assert.Contains(t, names, core.BackendD3D9)
	assert.Contains(t, names, core.BackendD3D11)
}

func TestCandidateBackends(t *testing.T) {
	cfg := core.DefaultConfig()
	tests := []struct {
		name      string
		requested string
		env       map[string]string
		want      []string
	}{
		{"default order", core.BackendDefault, nil, []string{core.BackendD3D11, core.BackendD3D9}},
		{"empty means default", "", nil, []string{core.BackendD3D11, core.BackendD3D9}},
		{"explicit request", core.BackendD3D9, nil, []string{core.BackendD3D9}},
		{"explicit request ignores env", core.BackendD3D11, map[string]string{core.D3DVersionEnv: "9"}, []string{core.BackendD3D11}},
		{"env moves d3d9 first", core.BackendDefault, map[string]string{core.D3DVersionEnv: "9"}, []string{core.BackendD3D9, core.BackendD3D11}},
		{"env keeps d3d11 first", core.BackendDefault, map[string]string{core.D3DVersionEnv: "11"}, []string{core.BackendD3D11, core.BackendD3D9}},
		{"unknown env value", core.BackendDefault, map[string]string{core.D3DVersionEnv: "12"}, []string{core.BackendD3D11, core.BackendD3D9}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CandidateBackends(tt.requested, cfg, env(tt.env)))
		})
	}

	cfg.Renderer.Priority = []string{core.BackendD3D9}
	assert.Equal(t, []string{core.BackendD3D11, core.BackendD3D9},
		CandidateBackends(core.BackendDefault, cfg, env(map[string]string{core.D3DVersionEnv: "11"})))
}

func TestRequestedBackend(t *testing.T) {
	cfg := core.DefaultConfig()

	got, err := RequestedBackend(nil, cfg)
	require.NoError(t, err)
	assert.Equal(t, core.BackendDefault, got)

	attribs := metadata.NewAttributeMapFromArray([]int32{
		metadata.EGL_PLATFORM_ANGLE_TYPE_ANGLE, metadata.EGL_PLATFORM_ANGLE_TYPE_D3D9_ANGLE,
		metadata.EGL_NONE,
	})
	got, err = RequestedBackend(attribs, cfg)
	require.NoError(t, err)
	assert.Equal(t, core.BackendD3D9, got)

	attribs.Insert(metadata.EGL_PLATFORM_ANGLE_TYPE_ANGLE, metadata.EGL_PLATFORM_ANGLE_TYPE_DEFAULT_ANGLE)
	got, err = RequestedBackend(attribs, cfg)
	require.NoError(t, err)
	assert.Equal(t, core.BackendDefault, got)

	attribs.Insert(metadata.EGL_PLATFORM_ANGLE_TYPE_ANGLE, 0x1234)
	_, err = RequestedBackend(attribs, cfg)
	assert.True(t, errors.Is(err, core.ErrUnsupported))
}

func TestFeatureLevelFromAttributes(t *testing.T) {
	cfg := core.DefaultConfig()
	cfg.Renderer.FeatureLevel = "10_0"

	tests := []struct {
		name  string
		major int32
		minor int32
		want  string
	}{
		{"dont care", metadata.EGL_DONT_CARE, metadata.EGL_DONT_CARE, "10_0"},
		{"11", 11, 0, "11_0"},
		{"10.1", 10, 1, "10_1"},
		{"10", 10, metadata.EGL_DONT_CARE, "10_0"},
		{"9", 9, 3, "9_3"},
		{"unknown", 8, 0, "8_0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attribs := metadata.NewAttributeMap()
			attribs.Insert(metadata.EGL_PLATFORM_ANGLE_MAX_VERSION_MAJOR_ANGLE, tt.major)
			attribs.Insert(metadata.EGL_PLATFORM_ANGLE_MAX_VERSION_MINOR_ANGLE, tt.minor)
			assert.Equal(t, tt.want, FeatureLevelFromAttributes(attribs, cfg))
		})
	}
	assert.Equal(t, "10_0", FeatureLevelFromAttributes(nil, cfg))
}

func TestNewPrefersFirstCandidate(t *testing.T) {
	r, err := New(nil, nil, WithEnv(noEnv))
	require.NoError(t, err)
	defer r.Shutdown()

	assert.Equal(t, metadata.BackendTypeD3D11, r.BackendType())
	assert.NotEmpty(t, r.ID())
	assert.True(t, r.Caps().ElementIndexUint)
}

func TestNewHonoursEnvironment(t *testing.T) {
	r, err := New(core.DefaultConfig(), nil, WithEnv(env(map[string]string{core.D3DVersionEnv: "9"})))
	require.NoError(t, err)
	defer r.Shutdown()
	assert.Equal(t, metadata.BackendTypeD3D9, r.BackendType())
}

func TestNewFallsBackWhenBackendFails(t *testing.T) {
	r, err := New(core.DefaultConfig(), nil, WithEnv(noEnv), WithDevice(core.BackendD3D11, unavailableDevice()))
	require.NoError(t, err)
	defer r.Shutdown()
	assert.Equal(t, metadata.BackendTypeD3D9, r.BackendType())
}

func TestNewFeatureLevelFailureFallsBack(t *testing.T) {
	attribs := metadata.NewAttributeMap()
	attribs.Insert(metadata.EGL_PLATFORM_ANGLE_MAX_VERSION_MAJOR_ANGLE, 8)
	r, err := New(core.DefaultConfig(), attribs, WithEnv(noEnv))
	require.NoError(t, err)
	defer r.Shutdown()
	assert.Equal(t, metadata.BackendTypeD3D9, r.BackendType())
}

func TestNewNoRenderer(t *testing.T) {
	_, err := New(core.DefaultConfig(), nil, WithEnv(noEnv),
		WithDevice(core.BackendD3D11, unavailableDevice()),
		WithDevice(core.BackendD3D9, unavailableDevice()))
	assert.True(t, errors.Is(err, core.ErrNoRenderer))
	assert.True(t, errors.Is(err, core.ErrBackendUnavailable))
}

func TestNewExplicitRequestDoesNotFallBack(t *testing.T) {
	attribs := metadata.NewAttributeMapFromArray([]int32{
		metadata.EGL_PLATFORM_ANGLE_TYPE_ANGLE, metadata.EGL_PLATFORM_ANGLE_TYPE_D3D11_ANGLE,
		metadata.EGL_NONE,
	})
	_, err := New(core.DefaultConfig(), attribs, WithEnv(noEnv), WithDevice(core.BackendD3D11, unavailableDevice()))
	assert.True(t, errors.Is(err, core.ErrNoRenderer))
}

func TestRendererLifecycle(t *testing.T) {
	device := native.NewDevice(native.DeviceDesc{Name: "probe"})
	r, err := New(core.DefaultConfig(), nil, WithEnv(noEnv), WithDevice(core.BackendD3D11, device))
	require.NoError(t, err)

	buffer := r.CreateBuffer()
	indices := []byte{0, 0, 1, 0, 2, 0}
	require.NoError(t, buffer.SetData(indices, uint32(len(indices)), gl.DYNAMIC_DRAW))
	translated, err := r.PrepareIndexData(gl.UNSIGNED_SHORT, 3, buffer, 0, nil)
	require.NoError(t, err)
	assert.True(t, translated.DirectStorage())
	assert.Equal(t, uint32(0), translated.IndexRange.Start)
	assert.Equal(t, uint32(2), translated.IndexRange.End)

	attribs := []metadata.VertexAttribute{{Enabled: true, Type: gl.FLOAT, Size: 2, ClientData: make([]byte, 24)}}
	vertices, err := r.PrepareVertexData(attribs, nil, 0, 3, 0)
	require.NoError(t, err)
	require.Len(t, vertices, 1)
	assert.Equal(t, uint32(8), vertices[0].Stride)

	first, err := r.BlendState([]gl.GLenum{gl.RGBA8}, metadata.DefaultBlendState())
	require.NoError(t, err)
	second, err := r.BlendState([]gl.GLenum{gl.RGBA8}, metadata.DefaultBlendState())
	require.NoError(t, err)
	assert.Same(t, first, second)
	_, err = r.RasterizerState(metadata.DefaultRasterizerState(), false)
	require.NoError(t, err)
	_, err = r.DepthStencilState(metadata.DefaultDepthStencilState())
	require.NoError(t, err)
	_, err = r.SamplerState(metadata.DefaultSamplerState())
	require.NoError(t, err)

	metrics := r.StateCacheMetrics()
	assert.Equal(t, core.CacheMetrics{Hits: 1, Misses: 1}, metrics[d3d.StateBlend])
	assert.Equal(t, uint64(1), metrics[d3d.StateSampler].Misses)

	tex := r.CreateTexture2D()
	require.NoError(t, tex.SetImage(0, gl.RGBA8, 1, 1, []byte{1, 2, 3, 4}))
	rt, err := tex.GetRenderTarget(0)
	require.NoError(t, err)
	assert.True(t, r.Backend().ApplyRenderTarget(rt))

	buffer.Release()
	tex.Release()
	r.Shutdown()
	r.Shutdown()

	stats := device.Stats()
	assert.Zero(t, stats.LiveBuffers)
	assert.Zero(t, stats.LiveTextures)
	assert.Zero(t, stats.LiveStates)
}

func TestPrepareIndexDataRejectsUnsupported32BitIndices(t *testing.T) {
	const name = "d3d9-16bit-indices"
	Register(name, func(o *BackendOptions) d3d.RendererD3D {
		return d3d9.New(d3d9.Options{Serials: o.Serials, MaxVertexIndex: 0xFFFF})
	})
	cfg := core.DefaultConfig()
	cfg.Renderer.Backend = name

	r, err := New(cfg, nil, WithEnv(noEnv))
	require.NoError(t, err)
	defer r.Shutdown()

	indices := []byte{0, 0, 0, 0, 1, 0, 0, 0}
	_, err = r.PrepareIndexData(gl.UNSIGNED_INT, 2, nil, 0, indices)
	assert.True(t, errors.Is(err, core.ErrUnsupported))

	translated, err := r.PrepareIndexData(gl.UNSIGNED_BYTE, 2, nil, 0, []byte{0, 1})
	require.NoError(t, err)
	assert.Equal(t, gl.UNSIGNED_SHORT, translated.IndexType)
}

func TestRenderersShareProcessSerials(t *testing.T) {
	first, err := New(core.DefaultConfig(), nil, WithEnv(noEnv))
	require.NoError(t, err)
	defer first.Shutdown()
	second, err := New(core.DefaultConfig(), nil, WithEnv(noEnv))
	require.NoError(t, err)
	defer second.Shutdown()

	assert.Same(t, core.DefaultSerials, first.Serials())
	assert.Same(t, first.Serials(), second.Serials())

	a := first.CreateBuffer()
	defer a.Release()
	b := second.CreateBuffer()
	defer b.Release()
	assert.NotEqual(t, a.Serial(), b.Serial())
}
