package d3d11

import (
	"github.com/spaghettifunk/gles/engine/core"
	"github.com/spaghettifunk/gles/engine/renderer/d3d"
	"github.com/spaghettifunk/gles/engine/renderer/gl"
	"github.com/spaghettifunk/gles/engine/renderer/metadata"
	"github.com/spaghettifunk/gles/engine/renderer/native"
)

// bufferStorage11 keeps GL buffer data in a native buffer that the input
// assembler can bind directly.
type bufferStorage11 struct {
	renderer *Renderer11
	buffer   *native.Buffer
}

func (s *bufferStorage11) Resize(size uint32) error {
	if size == 0 {
		s.Release()
		return nil
	}
	next, res := s.renderer.device.CreateBuffer(size, native.BindVertexBuffer|native.BindIndexBuffer)
	if err := native.Check(res, "failed to allocate a %d byte buffer", size); err != nil {
		core.LogError(err.Error())
		return err
	}
	if s.buffer != nil {
		if res := next.CopyRegion(s.buffer, 0, 0, min(size, s.buffer.Size())); res.Failed() {
			next.Release()
			return native.Check(res, "failed to copy buffer contents")
		}
		s.buffer.Release()
	}
	s.buffer = next
	return nil
}

func (s *bufferStorage11) Write(offset uint32, data []byte) error {
	if s.buffer == nil {
		return core.InvalidOperation("write to a buffer with no storage")
	}
	mem, res := s.buffer.Map(offset, uint32(len(data)))
	if err := native.Check(res, "failed to map buffer"); err != nil {
		return err
	}
	copy(mem, data)
	s.buffer.Unmap()
	return nil
}

func (s *bufferStorage11) Data() ([]byte, error) {
	if s.buffer == nil {
		return nil, nil
	}
	mem, res := s.buffer.Map(0, s.buffer.Size())
	if err := native.Check(res, "failed to map buffer"); err != nil {
		return nil, err
	}
	s.buffer.Unmap()
	return mem, nil
}

func (s *bufferStorage11) Handle() uint64 {
	if s.buffer == nil {
		return 0
	}
	return s.buffer.Handle()
}

func (s *bufferStorage11) SupportsDirectBinding() bool {
	return true
}

func (s *bufferStorage11) Release() {
	if s.buffer != nil {
		s.buffer.Release()
		s.buffer = nil
	}
}

type indexBuffer11 struct {
	renderer  *Renderer11
	buffer    *native.Buffer
	indexType gl.GLenum
	dynamic   bool
	serial    core.Serial
}

func (b *indexBuffer11) Initialize(bufferSize uint32, indexType gl.GLenum, dynamic bool) error {
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
	b.dynamic = dynamic
	b.serial = b.renderer.serials.Issue()
	return nil
}

func (b *indexBuffer11) MapBuffer(offset, size uint32) ([]byte, error) {
	if b.buffer == nil {
		return nil, core.InvalidOperation("internal index buffer is not initialized")
	}
	if uint64(offset)+uint64(size) > uint64(b.buffer.Size()) {
		return nil, core.OutOfMemory("index buffer map range is not inside the buffer")
	}
	mem, res := b.buffer.Map(offset, size)
	if err := native.Check(res, "failed to lock internal index buffer"); err != nil {
		return nil, err
	}
	return mem, nil
}

func (b *indexBuffer11) Unmap() error {
	if b.buffer == nil {
		return core.InvalidOperation("internal index buffer is not initialized")
	}
	b.buffer.Unmap()
	return nil
}

func (b *indexBuffer11) IndexType() gl.GLenum {
	return b.indexType
}

func (b *indexBuffer11) BufferSize() uint32 {
	if b.buffer == nil {
		return 0
	}
	return b.buffer.Size()
}

func (b *indexBuffer11) SetSize(bufferSize uint32, indexType gl.GLenum) error {
	if bufferSize > b.BufferSize() || indexType != b.indexType {
		return b.Initialize(bufferSize, indexType, b.dynamic)
	}
	return nil
}

func (b *indexBuffer11) Discard() error {
	if b.buffer == nil {
		return core.InvalidOperation("internal index buffer is not initialized")
	}
	return native.Check(b.buffer.Discard(), "failed to discard internal index buffer")
}

func (b *indexBuffer11) Serial() core.Serial {
	return b.serial
}

func (b *indexBuffer11) Handle() uint64 {
	if b.buffer == nil {
		return 0
	}
	return b.buffer.Handle()
}

func (b *indexBuffer11) Release() {
	if b.buffer != nil {
		b.buffer.Release()
		b.buffer = nil
	}
}

type vertexBuffer11 struct {
	renderer *Renderer11
	buffer   *native.Buffer
	dynamic  bool
	serial   core.Serial
}

func (b *vertexBuffer11) Initialize(size uint32, dynamic bool) error {
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

func (b *vertexBuffer11) StoreVertexAttributes(attrib *metadata.VertexAttribute, current metadata.VertexAttribCurrentValue,
	start int32, count, instances, offset uint32) error {
	if b.buffer == nil {
		return core.InvalidOperation("internal vertex buffer is not initialized")
	}
	size, err := d3d.SpaceRequired(vertexFormats{}, attrib, count, instances)
	if err != nil {
		return err
	}
	mem, res := b.buffer.Map(offset, size)
	if err := native.Check(res, "failed to map internal vertex buffer"); err != nil {
		return err
	}
	defer b.buffer.Unmap()
	return d3d.WriteVertexAttribute(vertexFormats{}, attrib, current, start, count, instances, mem)
}

func (b *vertexBuffer11) BufferSize() uint32 {
	if b.buffer == nil {
		return 0
	}
	return b.buffer.Size()
}

func (b *vertexBuffer11) SetBufferSize(size uint32) error {
	if size > b.BufferSize() {
		return b.Initialize(size, b.dynamic)
	}
	return nil
}

func (b *vertexBuffer11) Discard() error {
	if b.buffer == nil {
		return core.InvalidOperation("internal vertex buffer is not initialized")
	}
	return native.Check(b.buffer.Discard(), "failed to discard internal vertex buffer")
}

func (b *vertexBuffer11) Serial() core.Serial {
	return b.serial
}

func (b *vertexBuffer11) Handle() uint64 {
	if b.buffer == nil {
		return 0
	}
	return b.buffer.Handle()
}

func (b *vertexBuffer11) Release() {
	if b.buffer != nil {
		b.buffer.Release()
		b.buffer = nil
	}
}
