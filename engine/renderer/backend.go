package renderer

import (
	"fmt"
	"slices"
	"sync"

	"github.com/spaghettifunk/gles/engine/core"
	"github.com/spaghettifunk/gles/engine/renderer/d3d"
	"github.com/spaghettifunk/gles/engine/renderer/d3d11"
	"github.com/spaghettifunk/gles/engine/renderer/d3d9"
	"github.com/spaghettifunk/gles/engine/renderer/metadata"
	"github.com/spaghettifunk/gles/engine/renderer/native"
)

// BackendOptions is everything a factory needs to build an uninitialized
// backend.
type BackendOptions struct {
	Config  *core.Config
	Serials *core.SerialIssuer
	// FeatureLevel is resolved from the platform attributes and the config.
	FeatureLevel string
	// Device replaces the backend's own native device when set.
	Device   *native.Device
	Compiler d3d.ShaderCompiler
}

// BackendFactory constructs a backend. It must not touch the device;
// Initialize does that.
type BackendFactory func(options *BackendOptions) d3d.RendererD3D

var (
	registryMu sync.RWMutex
	registry   = map[string]BackendFactory{}
)

func init() {
	Register(core.BackendD3D11, func(o *BackendOptions) d3d.RendererD3D {
		return d3d11.New(d3d11.Options{
			Device:             o.Device,
			FeatureLevel:       o.FeatureLevel,
			MemoryBudget:       o.Config.Renderer.MemoryBudget,
			StateCacheCapacity: o.Config.Caches.StateCapacity,
			Serials:            o.Serials,
			Compiler:           o.Compiler,
		})
	})
	Register(core.BackendD3D9, func(o *BackendOptions) d3d.RendererD3D {
		return d3d9.New(d3d9.Options{
			Device:             o.Device,
			MemoryBudget:       o.Config.Renderer.MemoryBudget,
			StateCacheCapacity: o.Config.Caches.StateCapacity,
			Serials:            o.Serials,
			Compiler:           o.Compiler,
		})
	})
}

// Register makes a backend available under name, replacing any previous
// factory with that name.
func Register(name string, factory BackendFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = factory
}

// Factories returns the registered backend names in sorted order.
func Factories() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func lookupFactory(name string) (BackendFactory, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := registry[name]
	return f, ok
}

// RequestedBackend resolves the backend hint. An explicit platform type
// attribute wins over the configured backend.
func RequestedBackend(attribs *metadata.AttributeMap, cfg *core.Config) (string, error) {
	if attribs == nil {
		return cfg.Renderer.Backend, nil
	}
	switch t := attribs.Get(metadata.EGL_PLATFORM_ANGLE_TYPE_ANGLE, metadata.EGL_PLATFORM_ANGLE_TYPE_DEFAULT_ANGLE); t {
	case metadata.EGL_PLATFORM_ANGLE_TYPE_DEFAULT_ANGLE:
		return cfg.Renderer.Backend, nil
	case metadata.EGL_PLATFORM_ANGLE_TYPE_D3D9_ANGLE:
		return core.BackendD3D9, nil
	case metadata.EGL_PLATFORM_ANGLE_TYPE_D3D11_ANGLE:
		return core.BackendD3D11, nil
	default:
		return "", fmt.Errorf("%w: unknown platform type %#x", core.ErrUnsupported, t)
	}
}

// CandidateBackends lists the backends to try, in order. A specific request
// yields only that backend. "default" yields the configured priority, with
// the backend named by GLES_D3D_VERSION moved to the front.
func CandidateBackends(requested string, cfg *core.Config, env func(string) (string, bool)) []string {
	if requested != core.BackendDefault && requested != "" {
		return []string{requested}
	}
	candidates := make([]string, 0, len(cfg.Renderer.Priority)+1)
	if preferred := core.PreferredBackendFromEnv(env); preferred != "" {
		candidates = append(candidates, preferred)
	}
	for _, name := range cfg.Renderer.Priority {
		if !slices.Contains(candidates, name) {
			candidates = append(candidates, name)
		}
	}
	return candidates
}

// FeatureLevelFromAttributes maps the requested maximum API version onto a
// D3D11 feature level name, falling back to the configured level.
func FeatureLevelFromAttributes(attribs *metadata.AttributeMap, cfg *core.Config) string {
	if attribs == nil {
		return cfg.Renderer.FeatureLevel
	}
	major := attribs.Get(metadata.EGL_PLATFORM_ANGLE_MAX_VERSION_MAJOR_ANGLE, metadata.EGL_DONT_CARE)
	minor := attribs.Get(metadata.EGL_PLATFORM_ANGLE_MAX_VERSION_MINOR_ANGLE, metadata.EGL_DONT_CARE)
	switch {
	case major == metadata.EGL_DONT_CARE:
		return cfg.Renderer.FeatureLevel
	case major >= 11:
		return "11_0"
	case major == 10 && minor >= 1:
		return "10_1"
	case major == 10:
		return "10_0"
	case major == 9:
		return "9_3"
	}
	return fmt.Sprintf("%d_%d", major, max(minor, 0))
}
