package d3d9

import (
	"fmt"

	"github.com/spaghettifunk/gles/engine/core"
	"github.com/spaghettifunk/gles/engine/renderer/d3d"
	"github.com/spaghettifunk/gles/engine/renderer/gl"
	"github.com/spaghettifunk/gles/engine/renderer/metadata"
	"github.com/spaghettifunk/gles/engine/renderer/native"
)

// bufferStorage9 keeps GL buffer data in system memory. D3D9 vertex and index
// buffers have fixed roles, so every draw goes through the static caches or
// the streaming buffers.
type bufferStorage9 struct {
	data []byte
}

func (s *bufferStorage9) Resize(size uint32) error {
	if size == 0 {
		s.data = nil
		return nil
	}
	next := make([]byte, size)
	copy(next, s.data)
	s.data = next
	return nil
}

func (s *bufferStorage9) Write(offset uint32, data []byte) error {
	if uint64(offset)+uint64(len(data)) > uint64(len(s.data)) {
		return core.InvalidOperation("write of %d bytes at %d is outside the buffer", len(data), offset)
	}
	copy(s.data[offset:], data)
	return nil
}

func (s *bufferStorage9) Data() ([]byte, error) {
	return s.data, nil
}

func (s *bufferStorage9) Handle() uint64 {
	return 0
}

func (s *bufferStorage9) SupportsDirectBinding() bool {
	return false
}

func (s *bufferStorage9) Release() {
	s.data = nil
}

type indexBuffer9 struct {
	renderer  *Renderer9
	buffer    *native.Buffer
	indexType gl.GLenum
	format    D3DFormat
	dynamic   bool
	serial    core.Serial
}

func (b *indexBuffer9) Initialize(bufferSize uint32, indexType gl.GLenum, dynamic bool) error {
	var format D3DFormat
	switch indexType {
	case gl.UNSIGNED_SHORT:
		format = D3DFMT_INDEX16
	case gl.UNSIGNED_INT:
		if !b.renderer.caps.ElementIndexUint {
			return fmt.Errorf("%w: 32-bit indices are not supported by the device", core.ErrUnsupported)
		}
		format = D3DFMT_INDEX32
	default:
		core.Unreachable("d3d9 index buffer of type %#x", uint32(indexType))
	}

	// a failed allocation leaves the current buffer in place
	var buffer *native.Buffer
	if bufferSize > 0 {
		var res native.Result
		buffer, res = b.renderer.device.CreateBuffer(bufferSize, native.BindIndexBuffer)
		if err := native.Check(res, "failed to allocate internal index buffer of size %d", bufferSize); err != nil {
			core.LogError(err.Error())
			return err
		}
	}
	b.Release()
	b.buffer = buffer
	b.indexType = indexType
	b.format = format
	b.dynamic = dynamic
	b.serial = b.renderer.serials.Issue()
	return nil
}

func (b *indexBuffer9) MapBuffer(offset, size uint32) ([]byte, error) {
	if b.buffer == nil {
		return nil, core.InvalidOperation("internal index buffer is not initialized")
	}
	if uint64(offset)+uint64(size) > uint64(b.buffer.Size()) {
		return nil, core.OutOfMemory("index buffer lock range is not inside the buffer")
	}
	mem, res := b.buffer.Map(offset, size)
	if err := native.Check(res, "failed to lock internal index buffer"); err != nil {
		return nil, err
	}
	return mem, nil
}

func (b *indexBuffer9) Unmap() error {
	if b.buffer == nil {
		return core.InvalidOperation("internal index buffer is not initialized")
	}
	b.buffer.Unmap()
	return nil
}

func (b *indexBuffer9) IndexType() gl.GLenum {
	return b.indexType
}

// Format is the D3DFMT_INDEX* value the buffer was created with.
func (b *indexBuffer9) Format() D3DFormat {
	return b.format
}

func (b *indexBuffer9) BufferSize() uint32 {
	if b.buffer == nil {
		return 0
	}
	return b.buffer.Size()
}

func (b *indexBuffer9) SetSize(bufferSize uint32, indexType gl.GLenum) error {
	if bufferSize > b.BufferSize() || indexType != b.indexType {
		return b.Initialize(bufferSize, indexType, b.dynamic)
	}
	return nil
}

// Discard locks with D3DLOCK_DISCARD, which hands back fresh memory while
// the device keeps reading the old contents.
func (b *indexBuffer9) Discard() error {
	if b.buffer == nil {
		return core.InvalidOperation("internal index buffer is not initialized")
	}
	return native.Check(b.buffer.Discard(), "failed to discard internal index buffer")
}

func (b *indexBuffer9) Serial() core.Serial {
	return b.serial
}

func (b *indexBuffer9) Handle() uint64 {
	if b.buffer == nil {
		return 0
	}
	return b.buffer.Handle()
}

func (b *indexBuffer9) Release() {
	if b.buffer != nil {
		b.buffer.Release()
		b.buffer = nil
	}
}

type vertexBuffer9 struct {
	renderer *Renderer9
	buffer   *native.Buffer
	dynamic  bool
	serial   core.Serial
}

func (b *vertexBuffer9) Initialize(size uint32, dynamic bool) error {
	// a failed allocation leaves the current buffer in place
	var buffer *native.Buffer
	if size > 0 {
		var res native.Result
		buffer, res = b.renderer.device.CreateBuffer(size, native.BindVertexBuffer)
		if err := native.Check(res, "failed to allocate internal vertex buffer of size %d", size); err != nil {
			core.LogError(err.Error())
			return err
		}
	}
	b.Release()
	b.buffer = buffer
	b.dynamic = dynamic
	b.serial = b.renderer.serials.Issue()
	return nil
}

func (b *vertexBuffer9) StoreVertexAttributes(attrib *metadata.VertexAttribute, current metadata.VertexAttribCurrentValue,
	start int32, count, instances, offset uint32) error {
	if b.buffer == nil {
		return core.InvalidOperation("internal vertex buffer is not initialized")
	}
	size, err := d3d.SpaceRequired(vertexFormats{}, attrib, count, instances)
	if err != nil {
		return err
	}
	mem, res := b.buffer.Map(offset, size)
	if err := native.Check(res, "failed to lock internal vertex buffer"); err != nil {
		return err
	}
	defer b.buffer.Unmap()
	return d3d.WriteVertexAttribute(vertexFormats{}, attrib, current, start, count, instances, mem)
}

func (b *vertexBuffer9) BufferSize() uint32 {
	if b.buffer == nil {
		return 0
	}
	return b.buffer.Size()
}

func (b *vertexBuffer9) SetBufferSize(size uint32) error {
	if size > b.BufferSize() {
		return b.Initialize(size, b.dynamic)
	}
	return nil
}

func (b *vertexBuffer9) Discard() error {
	if b.buffer == nil {
		return core.InvalidOperation("internal vertex buffer is not initialized")
	}
	return native.Check(b.buffer.Discard(), "failed to discard internal vertex buffer")
}

func (b *vertexBuffer9) Serial() core.Serial {
	return b.serial
}

func (b *vertexBuffer9) Handle() uint64 {
	if b.buffer == nil {
		return 0
	}
	return b.buffer.Handle()
}

func (b *vertexBuffer9) Release() {
	if b.buffer != nil {
		b.buffer.Release()
		b.buffer = nil
	}
}
