package d3d

import (
	"sync"

	"github.com/spaghettifunk/gles/engine/core"
	"github.com/spaghettifunk/gles/engine/renderer/gl"
	"github.com/spaghettifunk/gles/engine/renderer/metadata"
)

// DefaultStateCacheCapacity bounds each state category.
const DefaultStateCacheCapacity = 4096

type StateKind int

const (
	StateBlend StateKind = iota
	StateRasterizer
	StateDepthStencil
	StateSampler
	stateKindCount
)

func (k StateKind) String() string {
	switch k {
	case StateBlend:
		return "blend"
	case StateRasterizer:
		return "rasterizer"
	case StateDepthStencil:
		return "depth-stencil"
	case StateSampler:
		return "sampler"
	}
	return "unknown"
}

type stateEntry struct {
	state    NativeState
	lastUsed uint64
}

// stateCache is one bounded category. The least recently used entry is
// found by a linear scan, which is fine at the capacities involved.
type stateCache[K comparable] struct {
	kind     StateKind
	capacity int
	entries  map[K]*stateEntry
	metrics  core.CacheMetrics
}

func newStateCache[K comparable](kind StateKind, capacity int) *stateCache[K] {
	return &stateCache[K]{
		kind:     kind,
		capacity: capacity,
		entries:  make(map[K]*stateEntry),
	}
}

// get returns the cached object for key or creates one. The new object is
// created before anything is evicted so a failed creation leaves the cache
// untouched. A miss on a full cache therefore holds capacity+1 native
// objects until the eviction below; the map itself never exceeds capacity.
func (c *stateCache[K]) get(key K, tick func() uint64, create func() (NativeState, error)) (NativeState, error) {
	if entry, ok := c.entries[key]; ok {
		entry.lastUsed = tick()
		c.metrics.Hit()
		return entry.state, nil
	}
	c.metrics.Miss()

	state, err := create()
	if err != nil {
		return nil, err
	}
	if len(c.entries) >= c.capacity {
		c.evictOldest()
	}
	c.entries[key] = &stateEntry{state: state, lastUsed: tick()}
	return state, nil
}

func (c *stateCache[K]) evictOldest() {
	var (
		oldestKey K
		oldest    *stateEntry
	)
	for key, entry := range c.entries {
		if oldest == nil || entry.lastUsed < oldest.lastUsed {
			oldestKey, oldest = key, entry
		}
	}
	if oldest == nil {
		return
	}
	oldest.state.Release()
	delete(c.entries, oldestKey)
	c.metrics.Evict()
	core.LogDebug("%s state cache: evicted entry last used at tick %d", c.kind, oldest.lastUsed)
}

func (c *stateCache[K]) clear() {
	for _, entry := range c.entries {
		entry.state.Release()
	}
	clear(c.entries)
}

// RenderStateCache deduplicates native pipeline-state objects. Returned
// objects stay owned by the cache; callers must not release them.
type RenderStateCache struct {
	mu      sync.Mutex
	factory StateFactory
	counter uint64

	blend        *stateCache[BlendStateKey]
	rasterizer   *stateCache[RasterizerStateKey]
	depthStencil *stateCache[metadata.DepthStencilState]
	sampler      *stateCache[metadata.SamplerState]
}

// NewRenderStateCache bounds every category to capacity entries. A capacity
// of zero or less selects DefaultStateCacheCapacity.
func NewRenderStateCache(factory StateFactory, capacity int) *RenderStateCache {
	if capacity <= 0 {
		capacity = DefaultStateCacheCapacity
	}
	return &RenderStateCache{
		factory:      factory,
		blend:        newStateCache[BlendStateKey](StateBlend, capacity),
		rasterizer:   newStateCache[RasterizerStateKey](StateRasterizer, capacity),
		depthStencil: newStateCache[metadata.DepthStencilState](StateDepthStencil, capacity),
		sampler:      newStateCache[metadata.SamplerState](StateSampler, capacity),
	}
}

func (c *RenderStateCache) tick() uint64 {
	t := c.counter
	c.counter++
	return t
}

// GetBlendState returns the blend object for state as applied to render
// targets of the given formats.
func (c *RenderStateCache) GetBlendState(colorFormats []gl.GLenum, state metadata.BlendState) (NativeState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := MakeBlendStateKey(colorFormats, state)
	return c.blend.get(key, c.tick, func() (NativeState, error) {
		return c.factory.CreateBlendState(BlendDescFromKey(key))
	})
}

func (c *RenderStateCache) GetRasterizerState(state metadata.RasterizerState, scissorEnabled bool) (NativeState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := RasterizerStateKey{State: state, ScissorEnabled: scissorEnabled}
	return c.rasterizer.get(key, c.tick, func() (NativeState, error) {
		return c.factory.CreateRasterizerState(RasterizerDescFromKey(key))
	})
}

func (c *RenderStateCache) GetDepthStencilState(state metadata.DepthStencilState) (NativeState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.depthStencil.get(state, c.tick, func() (NativeState, error) {
		return c.factory.CreateDepthStencilState(DepthStencilDescFromState(state))
	})
}

func (c *RenderStateCache) GetSamplerState(state metadata.SamplerState) (NativeState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.sampler.get(state, c.tick, func() (NativeState, error) {
		return c.factory.CreateSamplerState(SamplerDescFromState(state))
	})
}

// Clear releases every cached object in all categories.
func (c *RenderStateCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.blend.clear()
	c.rasterizer.clear()
	c.depthStencil.clear()
	c.sampler.clear()
}

func (c *RenderStateCache) Len(kind StateKind) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch kind {
	case StateBlend:
		return len(c.blend.entries)
	case StateRasterizer:
		return len(c.rasterizer.entries)
	case StateDepthStencil:
		return len(c.depthStencil.entries)
	case StateSampler:
		return len(c.sampler.entries)
	}
	return 0
}

func (c *RenderStateCache) Metrics(kind StateKind) core.CacheMetrics {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch kind {
	case StateBlend:
		return c.blend.metrics
	case StateRasterizer:
		return c.rasterizer.metrics
	case StateDepthStencil:
		return c.depthStencil.metrics
	case StateSampler:
		return c.sampler.metrics
	}
	return core.CacheMetrics{}
}

// StateKinds lists every category, in a stable order for reporting.
func StateKinds() []StateKind {
	kinds := make([]StateKind, 0, stateKindCount)
	for k := StateBlend; k < stateKindCount; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}
