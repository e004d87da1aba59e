package d3d11

import (
	"github.com/spaghettifunk/gles/engine/core"
	"github.com/spaghettifunk/gles/engine/renderer/d3d"
	"github.com/spaghettifunk/gles/engine/renderer/native"
)

type stateObject struct {
	object *native.StateObject
}

func (s *stateObject) Handle() uint64 {
	return s.object.Handle()
}

func (s *stateObject) Release() {
	s.object.Release()
}

// Desc is the native description the object was created from.
func (s *stateObject) Desc() interface{} {
	return s.object.Desc
}

// stateFactory creates ID3D11*State equivalents on the device.
type stateFactory struct {
	device *native.Device
}

func (f stateFactory) create(kind d3d.StateKind, desc interface{}) (d3d.NativeState, error) {
	object, res := f.device.CreateStateObject(desc)
	if err := native.Check(res, "failed to create %s state", kind); err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	return &stateObject{object: object}, nil
}

func (f stateFactory) CreateBlendState(desc d3d.BlendDesc) (d3d.NativeState, error) {
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
