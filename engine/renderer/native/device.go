// Package native is the software device the backends drive in place of a
// Direct3D device. It owns byte storage for buffers and textures, hands out
// opaque state objects, enforces a memory budget and counts every call so the
// layers above can be observed.
package native

import (
	"sync"
)

type ResourceKind int

const (
	KindBuffer ResourceKind = iota
	KindTexture
	KindStateObject
	kindCount
)

func (k ResourceKind) String() string {
	switch k {
	case KindBuffer:
		return "buffer"
	case KindTexture:
		return "texture"
	case KindStateObject:
		return "state"
	}
	return "unknown"
}

// BindFlags says how a resource may be bound to the pipeline.
type BindFlags uint32

const (
	BindVertexBuffer BindFlags = 1 << iota
	BindIndexBuffer
	BindShaderResource
	BindRenderTarget
	BindDepthStencil
	BindStaging
)

// DeviceDesc configures a Device.
type DeviceDesc struct {
	Name string
	// MemoryBudget caps live resource bytes. Zero disables the limit.
	MemoryBudget uint64
	// Unavailable makes Init fail, the way device creation fails on a
	// machine without the matching driver.
	Unavailable bool
}

// Stats is a snapshot of a Device's counters.
type Stats struct {
	LiveBuffers  int
	LiveTextures int
	LiveStates   int
	LiveBytes    uint64
	Allocations  uint64
	Releases     uint64
	Maps         uint64
	Discards     uint64
	Copies       uint64
	Binds        uint64
}

// Device is not safe for concurrent use from several rendering contexts at
// once, but the counters are guarded so stats can be read from anywhere.
type Device struct {
	mu          sync.Mutex
	desc        DeviceDesc
	initialized bool
	nextID      uint64
	live        map[uint64]releasable
	stats       Stats
	failNext    [kindCount]int
}

type releasable interface {
	id() uint64
	kind() ResourceKind
	bytes() uint64
	markReleased()
}

func NewDevice(desc DeviceDesc) *Device {
	return &Device{
		desc: desc,
		live: make(map[uint64]releasable),
	}
}

func (d *Device) Name() string {
	return d.desc.Name
}

// Init brings the device up. It fails with D3DERR_NOTAVAILABLE when the
// device was described as unavailable.
func (d *Device) Init() Result {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.desc.Unavailable {
		return D3DERR_NOTAVAILABLE
	}
	d.initialized = true
	return S_OK
}

func (d *Device) Initialized() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.initialized
}

// FailNext makes the next n allocations of kind fail with E_OUTOFMEMORY.
func (d *Device) FailNext(kind ResourceKind, n int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.failNext[kind] += n
}

func (d *Device) Stats() Stats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stats
}

// reserve accounts for a new object and returns its id, or a failure code
// when the budget or injected failures forbid it. Callers hold d.mu.
func (d *Device) reserve(kind ResourceKind, size uint64) (uint64, Result) {
	if !d.initialized {
		return 0, E_FAIL
	}
	if d.failNext[kind] > 0 {
		d.failNext[kind]--
		return 0, E_OUTOFMEMORY
	}
	if d.desc.MemoryBudget != 0 && d.stats.LiveBytes+size > d.desc.MemoryBudget {
		return 0, E_OUTOFMEMORY
	}
	d.nextID++
	d.stats.Allocations++
	d.stats.LiveBytes += size
	return d.nextID, S_OK
}

func (d *Device) track(obj releasable) {
	d.live[obj.id()] = obj
	switch obj.kind() {
	case KindBuffer:
		d.stats.LiveBuffers++
	case KindTexture:
		d.stats.LiveTextures++
	case KindStateObject:
		d.stats.LiveStates++
	}
}

func (d *Device) release(obj releasable) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.live[obj.id()]; !ok {
		return
	}
	delete(d.live, obj.id())
	obj.markReleased()
	d.stats.Releases++
	d.stats.LiveBytes -= obj.bytes()
	switch obj.kind() {
	case KindBuffer:
		d.stats.LiveBuffers--
	case KindTexture:
		d.stats.LiveTextures--
	case KindStateObject:
		d.stats.LiveStates--
	}
}

// RecordBind counts a pipeline binding call.
func (d *Device) RecordBind() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stats.Binds++
}

// Close releases every live object.
func (d *Device) Close() {
	d.mu.Lock()
	objs := make([]releasable, 0, len(d.live))
	for _, o := range d.live {
		objs = append(objs, o)
	}
	d.mu.Unlock()
	for _, o := range objs {
		d.release(o)
	}
	d.mu.Lock()
	d.initialized = false
	d.mu.Unlock()
}
