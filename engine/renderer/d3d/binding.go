package d3d

import "github.com/spaghettifunk/gles/engine/core"

// BindingTracker remembers what was last bound to the pipeline so redundant
// native calls can be skipped. Render targets are compared by serial, never by
// identity.
type BindingTracker struct {
	renderTargetSerial core.Serial
	indexBufferSerial  core.Serial
	indexBufferOffset  uint32
	indexType          uint32
}

// RenderTarget records a colour target bind and returns false when serial is
// already bound.
func (b *BindingTracker) RenderTarget(serial core.Serial) bool {
	if serial != 0 && serial == b.renderTargetSerial {
		return false
	}
	b.renderTargetSerial = serial
	return true
}

func (b *BindingTracker) IndexBuffer(data *TranslatedIndexData) bool {
	if data.Serial != 0 && data.Serial == b.indexBufferSerial &&
		data.StartOffset == b.indexBufferOffset && uint32(data.IndexType) == b.indexType {
		return false
	}
	b.indexBufferSerial = data.Serial
	b.indexBufferOffset = data.StartOffset
	b.indexType = uint32(data.IndexType)
	return true
}

// Reset forgets every binding, forcing the next apply to reach the device.
func (b *BindingTracker) Reset() {
	*b = BindingTracker{}
}
