package renderer

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/spaghettifunk/gles/engine/core"
	"github.com/spaghettifunk/gles/engine/renderer/d3d"
	"github.com/spaghettifunk/gles/engine/renderer/gl"
	"github.com/spaghettifunk/gles/engine/renderer/metadata"
	"github.com/spaghettifunk/gles/engine/renderer/native"
)

type options struct {
	env      func(string) (string, bool)
	devices  map[string]*native.Device
	compiler d3d.ShaderCompiler
	serials  *core.SerialIssuer
}

type Option func(*options)

// WithEnv replaces the environment lookup used for GLES_D3D_VERSION.
func WithEnv(lookup func(string) (string, bool)) Option {
	return func(o *options) { o.env = lookup }
}

// WithDevice makes the named backend drive device instead of creating one.
func WithDevice(backend string, device *native.Device) Option {
	return func(o *options) { o.devices[backend] = device }
}

func WithCompiler(compiler d3d.ShaderCompiler) Option {
	return func(o *options) { o.compiler = compiler }
}

// WithSerials shares a serial issuer between renderers.
func WithSerials(serials *core.SerialIssuer) Option {
	return func(o *options) { o.serials = serials }
}

// Renderer is the backend-agnostic front-end of one rendering context. All
// methods must be called from the thread that owns the context.
type Renderer struct {
	id         uuid.UUID
	config     *core.Config
	backend    d3d.RendererD3D
	serials    *core.SerialIssuer
	indexData  *d3d.IndexDataManager
	vertexData *d3d.VertexDataManager
	logger     *log.Logger
}

// New tries each candidate backend in order and returns a renderer around the
// first one that initializes. Failed backends are released before the next
// one is tried. core.ErrNoRenderer is returned when none succeed.
func New(cfg *core.Config, attribs *metadata.AttributeMap, opts ...Option) (*Renderer, error) {
	if cfg == nil {
		cfg = core.DefaultConfig()
	}
	o := &options{devices: map[string]*native.Device{}}
	for _, opt := range opts {
		opt(o)
	}
	if o.serials == nil {
		o.serials = core.DefaultSerials
	}

	requested, err := RequestedBackend(attribs, cfg)
	if err != nil {
		return nil, err
	}
	featureLevel := FeatureLevelFromAttributes(attribs, cfg)

	id := uuid.New()
	logger := core.Logger("renderer", id.String())

	var failures []error
	for _, name := range CandidateBackends(requested, cfg, o.env) {
		factory, ok := lookupFactory(name)
		if !ok {
			failures = append(failures, fmt.Errorf("%s: not registered", name))
			continue
		}
		backend := factory(&BackendOptions{
			Config:       cfg,
			Serials:      o.serials,
			FeatureLevel: featureLevel,
			Device:       o.devices[name],
			Compiler:     o.compiler,
		})
		if err := backend.Initialize(); err != nil {
			logger.Warn("backend failed to initialize", "backend", name, "err", err)
			backend.Release()
			failures = append(failures, fmt.Errorf("%s: %w", name, err))
			continue
		}

		r, err := newRenderer(id, cfg, backend, o.serials, logger)
		if err != nil {
			backend.Release()
			return nil, err
		}
		logger.Info("renderer created", "backend", backend.Name())
		return r, nil
	}
	return nil, fmt.Errorf("%w: %w", core.ErrNoRenderer, errors.Join(failures...))
}

func newRenderer(id uuid.UUID, cfg *core.Config, backend d3d.RendererD3D, serials *core.SerialIssuer, logger *log.Logger) (*Renderer, error) {
	vertexData, err := d3d.NewVertexDataManager(backend, cfg.Buffers.InitialVertexBufferSize)
	if err != nil {
		return nil, err
	}
	return &Renderer{
		id:         id,
		config:     cfg,
		backend:    backend,
		serials:    serials,
		indexData:  d3d.NewIndexDataManager(backend, cfg.Buffers.InitialIndexBufferSize),
		vertexData: vertexData,
		logger:     logger,
	}, nil
}

func (r *Renderer) ID() string {
	return r.id.String()
}

func (r *Renderer) Backend() d3d.RendererD3D {
	return r.backend
}

func (r *Renderer) BackendType() metadata.BackendType {
	return r.backend.BackendType()
}

func (r *Renderer) Caps() metadata.Caps {
	return r.backend.Caps()
}

func (r *Renderer) Serials() *core.SerialIssuer {
	return r.serials
}

func (r *Renderer) CreateBuffer() *d3d.Buffer {
	return d3d.NewBuffer(r.backend, r.config.Buffers.StaticPromotionFactor)
}

func (r *Renderer) CreateTexture2D() *d3d.Texture2D {
	return d3d.NewTexture2D(r.backend)
}

func (r *Renderer) CreateTextureCube() *d3d.TextureCube {
	return d3d.NewTextureCube(r.backend)
}

func (r *Renderer) CreateTexture3D() *d3d.Texture3D {
	return d3d.NewTexture3D(r.backend)
}

func (r *Renderer) CreateTexture2DArray() *d3d.Texture2DArray {
	return d3d.NewTexture2DArray(r.backend)
}

func (r *Renderer) CreateRenderbuffer() *d3d.Renderbuffer {
	return d3d.NewRenderbuffer(r.backend)
}

// PrepareIndexData translates the indices of a draw and binds the result.
// buffer is nil for client-side indices.
func (r *Renderer) PrepareIndexData(indexType gl.GLenum, count uint32, buffer *d3d.Buffer, offset uint32, clientData []byte) (*d3d.TranslatedIndexData, error) {
	if indexType == gl.UNSIGNED_INT && !r.backend.Caps().ElementIndexUint {
		return nil, fmt.Errorf("%w: 32-bit indices on %s", core.ErrUnsupported, r.backend.Name())
	}
	translated, err := r.indexData.PrepareIndexData(indexType, count, buffer, offset, clientData)
	if err != nil {
		return nil, err
	}
	r.backend.ApplyIndexBuffer(translated)
	return translated, nil
}

func (r *Renderer) PrepareVertexData(attribs []metadata.VertexAttribute, currentValues []metadata.VertexAttribCurrentValue,
	start int32, count, instances uint32) ([]d3d.TranslatedAttribute, error) {
	return r.vertexData.PrepareVertexData(attribs, currentValues, start, count, instances)
}

func (r *Renderer) BlendState(colorFormats []gl.GLenum, state metadata.BlendState) (d3d.NativeState, error) {
	return r.backend.StateCache().GetBlendState(colorFormats, state)
}

func (r *Renderer) RasterizerState(state metadata.RasterizerState, scissorEnabled bool) (d3d.NativeState, error) {
	return r.backend.StateCache().GetRasterizerState(state, scissorEnabled)
}

func (r *Renderer) DepthStencilState(state metadata.DepthStencilState) (d3d.NativeState, error) {
	return r.backend.StateCache().GetDepthStencilState(state)
}

func (r *Renderer) SamplerState(state metadata.SamplerState) (d3d.NativeState, error) {
	return r.backend.StateCache().GetSamplerState(state)
}

// StateCacheMetrics snapshots the counters of every render-state cache.
func (r *Renderer) StateCacheMetrics() map[d3d.StateKind]core.CacheMetrics {
	out := make(map[d3d.StateKind]core.CacheMetrics)
	for _, kind := range d3d.StateKinds() {
		out[kind] = r.backend.StateCache().Metrics(kind)
	}
	return out
}

// Shutdown releases the translation buffers before the backend that owns
// their native resources. The renderer must not be used afterwards.
func (r *Renderer) Shutdown() {
	if r.backend == nil {
		return
	}
	r.indexData.Release()
	r.vertexData.Release()
	r.backend.Release()
	r.backend = nil
	r.logger.Info("renderer shut down")
}
