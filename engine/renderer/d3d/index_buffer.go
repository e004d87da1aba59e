package d3d

import (
	"github.com/spaghettifunk/gles/engine/core"
	"github.com/spaghettifunk/gles/engine/renderer/gl"
	"github.com/spaghettifunk/gles/engine/renderer/metadata"
)

// IndexBuffer is a native index buffer. IndexType is the GL type the buffer was
// sized for; the native element width is 32 bits for GL_UNSIGNED_INT and 16
// bits otherwise.
type IndexBuffer interface {
	Initialize(bufferSize uint32, indexType gl.GLenum, dynamic bool) error
	MapBuffer(offset, size uint32) ([]byte, error)
	Unmap() error
	IndexType() gl.GLenum
	BufferSize() uint32
	SetSize(bufferSize uint32, indexType gl.GLenum) error
	Discard() error
	Serial() core.Serial
	Handle() uint64
	Release()
}

// IndexBufferInterface owns one native index buffer and a write cursor.
type IndexBufferInterface struct {
	renderer      RendererD3D
	indexBuffer   IndexBuffer
	writePosition uint32
	dynamic       bool
}

func newIndexBufferInterface(renderer RendererD3D, dynamic bool) IndexBufferInterface {
	return IndexBufferInterface{
		renderer:    renderer,
		indexBuffer: renderer.CreateIndexBuffer(),
		dynamic:     dynamic,
	}
}

func (ib *IndexBufferInterface) IndexType() gl.GLenum {
	return ib.indexBuffer.IndexType()
}

func (ib *IndexBufferInterface) BufferSize() uint32 {
	return ib.indexBuffer.BufferSize()
}

func (ib *IndexBufferInterface) Serial() core.Serial {
	return ib.indexBuffer.Serial()
}

func (ib *IndexBufferInterface) IndexBuffer() IndexBuffer {
	return ib.indexBuffer
}

func (ib *IndexBufferInterface) WritePosition() uint32 {
	return ib.writePosition
}

// MapBuffer maps size bytes at the write cursor and advances it. The offset of
// the mapped region is returned alongside it.
func (ib *IndexBufferInterface) MapBuffer(size uint32) ([]byte, uint32, error) {
	end, ok := metadata.CheckedAdd32(ib.writePosition, size)
	if !ok {
		return nil, 0, core.OutOfMemory("mapping of internal index buffer would cause an integer overflow")
	}
	mem, err := ib.indexBuffer.MapBuffer(ib.writePosition, size)
	if err != nil {
		return nil, 0, err
	}
	streamOffset := ib.writePosition
	ib.writePosition = end
	return mem, streamOffset, nil
}

func (ib *IndexBufferInterface) UnmapBuffer() error {
	return ib.indexBuffer.Unmap()
}

func (ib *IndexBufferInterface) setBufferSize(bufferSize uint32, indexType gl.GLenum) error {
	if ib.indexBuffer.BufferSize() == 0 {
		return ib.indexBuffer.Initialize(bufferSize, indexType, ib.dynamic)
	}
	return ib.indexBuffer.SetSize(bufferSize, indexType)
}

func (ib *IndexBufferInterface) discard() error {
	return ib.indexBuffer.Discard()
}

func (ib *IndexBufferInterface) Release() {
	ib.indexBuffer.Release()
}

// StreamingIndexBufferInterface is rewritten every draw. It doubles on growth
// and orphans its storage when the cursor runs off the end.
type StreamingIndexBufferInterface struct {
	IndexBufferInterface
}

func NewStreamingIndexBufferInterface(renderer RendererD3D) *StreamingIndexBufferInterface {
	return &StreamingIndexBufferInterface{newIndexBufferInterface(renderer, true)}
}

func (ib *StreamingIndexBufferInterface) ReserveBufferSpace(size uint32, indexType gl.GLenum) error {
	curBufferSize := ib.BufferSize()
	if size > curBufferSize || (curBufferSize != 0 && indexType != ib.IndexType()) {
		newSize := max(size, curBufferSize*2)
		if curBufferSize > 0x7FFFFFFF {
			newSize = size
		}
		if err := ib.setBufferSize(newSize, indexType); err != nil {
			return err
		}
		ib.writePosition = 0
		return nil
	}
	if end, ok := metadata.CheckedAdd32(ib.writePosition, size); !ok || end > curBufferSize {
		if err := ib.discard(); err != nil {
			return err
		}
		ib.writePosition = 0
	}
	return nil
}

// StaticIndexBufferInterface holds the converted contents of one GL buffer. It
// is sized once and never grows.
type StaticIndexBufferInterface struct {
	IndexBufferInterface
	rangeCache *IndexRangeCache
}

func NewStaticIndexBufferInterface(renderer RendererD3D) *StaticIndexBufferInterface {
	return &StaticIndexBufferInterface{
		IndexBufferInterface: newIndexBufferInterface(renderer, false),
		rangeCache:           NewIndexRangeCache(),
	}
}

// ReserveBufferSpace sizes an empty buffer and accepts any request that fits
// an already sized buffer of the same type. Anything else means the caller
// broke the static buffer contract.
func (ib *StaticIndexBufferInterface) ReserveBufferSpace(size uint32, indexType gl.GLenum) error {
	curBufferSize := ib.BufferSize()
	if curBufferSize == 0 {
		return ib.setBufferSize(size, indexType)
	}
	if curBufferSize >= size && indexType == ib.IndexType() {
		return nil
	}
	core.Unreachable("static index buffer of %d bytes (%#x) cannot hold %d bytes of %#x",
		curBufferSize, uint32(ib.IndexType()), size, uint32(indexType))
	return nil
}

func (ib *StaticIndexBufferInterface) IndexRangeCache() *IndexRangeCache {
	return ib.rangeCache
}
