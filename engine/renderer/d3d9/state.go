package d3d9

import (
	"github.com/spaghettifunk/gles/engine/core"
	"github.com/spaghettifunk/gles/engine/renderer/d3d"
	"github.com/spaghettifunk/gles/engine/renderer/native"
)

// stateBlock records a group of render or sampler states so they can be
// applied with one call.
type stateBlock struct {
	object *native.StateObject
	kind   d3d.StateKind
}

func (b *stateBlock) Handle() uint64 {
	return b.object.Handle()
}

func (b *stateBlock) Release() {
	b.object.Release()
}

func (b *stateBlock) Kind() d3d.StateKind {
	return b.kind
}

type stateFactory struct {
	device *native.Device
}

func (f stateFactory) create(kind d3d.StateKind, desc interface{}) (d3d.NativeState, error) {
	object, res := f.device.CreateStateObject(desc)
	if err := native.Check(res, "failed to record %s state block", kind); err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	return &stateBlock{object: object, kind: kind}, nil
}

// D3D9 has no independent blend; only the first render target is recorded.
func (f stateFactory) CreateBlendState(desc d3d.BlendDesc) (d3d.NativeState, error) {
	desc.IndependentBlendEnable = false
	for i := 1; i < len(desc.RenderTarget); i++ {
		desc.RenderTarget[i] = d3d.RenderTargetBlendDesc{}
	}
	return f.create(d3d.StateBlend, desc)
}

func (f stateFactory) CreateRasterizerState(desc d3d.RasterizerDesc) (d3d.NativeState, error) {
	return f.create(d3d.StateRasterizer, desc)
}

func (f stateFactory) CreateDepthStencilState(desc d3d.DepthStencilDesc) (d3d.NativeState, error) {
	return f.create(d3d.StateDepthStencil, desc)
}

func (f stateFactory) CreateSamplerState(desc d3d.SamplerDesc) (d3d.NativeState, error) {
	return f.create(d3d.StateSampler, desc)
}
