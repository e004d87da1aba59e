package d3d

import (
	"github.com/spaghettifunk/gles/engine/core"
	"github.com/spaghettifunk/gles/engine/renderer/gl"
	"github.com/spaghettifunk/gles/engine/renderer/metadata"
)

// DefaultStaticPromotionFactor is how many times its own size a buffer must be
// read unmodified before it gets static vertex and index caches.
const DefaultStaticPromotionFactor = 3

// BufferStorage is the backend half of a GL buffer object.
type BufferStorage interface {
	// Resize reallocates the storage to size bytes, keeping the leading bytes.
	// On failure the old storage is untouched.
	Resize(size uint32) error
	Write(offset uint32, data []byte) error
	// Data returns CPU-readable backing bytes, at least Size long.
	Data() ([]byte, error)
	// Handle is the native buffer for direct binding, zero if there is none.
	Handle() uint64
	SupportsDirectBinding() bool
	Release()
}

// Buffer is the backend-agnostic GL buffer object. It owns the optional
// static caches built for buffers that are drawn from repeatedly without
// being modified.
type Buffer struct {
	renderer RendererD3D
	storage  BufferStorage
	serial   core.Serial
	size     uint32
	usage    gl.GLenum
	mapped   bool

	promotionFactor    uint32
	unmodifiedDataUse  uint64
	staticVertexBuffer *StaticVertexBufferInterface
	staticIndexBuffer  *StaticIndexBufferInterface
	indexRangeCache    *IndexRangeCache
}

func NewBuffer(renderer RendererD3D, promotionFactor uint32) *Buffer {
	if promotionFactor == 0 {
		promotionFactor = DefaultStaticPromotionFactor
	}
	return &Buffer{
		renderer:        renderer,
		storage:         renderer.CreateBufferStorage(),
		serial:          renderer.Serials().Issue(),
		usage:           gl.STATIC_DRAW,
		promotionFactor: promotionFactor,
		indexRangeCache: NewIndexRangeCache(),
	}
}

func (b *Buffer) updateSerial() {
	b.serial = b.renderer.Serials().Issue()
}

func (b *Buffer) Serial() core.Serial {
	return b.serial
}

func (b *Buffer) Size() uint32 {
	return b.size
}

func (b *Buffer) Usage() gl.GLenum {
	return b.usage
}

func (b *Buffer) Mapped() bool {
	return b.mapped
}

func (b *Buffer) SupportsDirectBinding() bool {
	return b.storage.SupportsDirectBinding()
}

// StorageHandle is the native buffer backing b, or zero on backends that keep
// buffer data in system memory.
func (b *Buffer) StorageHandle() uint64 {
	return b.storage.Handle()
}

func (b *Buffer) IndexRangeCache() *IndexRangeCache {
	return b.indexRangeCache
}

func (b *Buffer) GetStaticVertexBuffer() *StaticVertexBufferInterface {
	return b.staticVertexBuffer
}

func (b *Buffer) GetStaticIndexBuffer() *StaticIndexBufferInterface {
	return b.staticIndexBuffer
}

func (b *Buffer) UnmodifiedDataUse() uint64 {
	return b.unmodifiedDataUse
}

// GetData returns the buffer contents. The slice aliases the storage.
func (b *Buffer) GetData() ([]byte, error) {
	data, err := b.storage.Data()
	if err != nil {
		return nil, err
	}
	return data[:b.size], nil
}

// SetData replaces the contents. data may be nil to allocate size
// uninitialised bytes.
func (b *Buffer) SetData(data []byte, size uint32, usage gl.GLenum) error {
	if data != nil && uint32(len(data)) < size {
		return core.InvalidOperation("buffer data holds %d bytes, %d requested", len(data), size)
	}
	if size != b.size {
		if err := b.storage.Resize(size); err != nil {
			return err
		}
	}
	if data != nil && size > 0 {
		if err := b.storage.Write(0, data[:size]); err != nil {
			return err
		}
	}
	b.size = size
	b.usage = usage
	b.updateSerial()
	b.indexRangeCache.Clear()
	b.InvalidateStaticData()
	if usage == gl.STATIC_DRAW {
		b.initializeStaticData()
	}
	return nil
}

// SetSubData writes data at offset, growing the buffer if it ends past Size.
func (b *Buffer) SetSubData(data []byte, offset uint32) error {
	end, ok := metadata.CheckedAdd32(offset, uint32(len(data)))
	if !ok || uint64(len(data)) > uint64(^uint32(0)) {
		return core.OutOfMemory("buffer sub data of %d bytes at %d overflows", len(data), offset)
	}
	if end > b.size {
		if err := b.storage.Resize(end); err != nil {
			return err
		}
		b.size = end
	}
	if len(data) > 0 {
		if err := b.storage.Write(offset, data); err != nil {
			return err
		}
	}
	b.modified(offset, uint32(len(data)))
	return nil
}

// CopySubData copies size bytes from source at sourceOffset to destOffset.
func (b *Buffer) CopySubData(source *Buffer, sourceOffset, destOffset, size uint32) error {
	srcEnd, ok := metadata.CheckedAdd32(sourceOffset, size)
	if !ok || srcEnd > source.size {
		return core.InvalidOperation("copy reads past the end of the source buffer")
	}
	src, err := source.GetData()
	if err != nil {
		return err
	}
	chunk := make([]byte, size)
	copy(chunk, src[sourceOffset:srcEnd])
	return b.SetSubData(chunk, destOffset)
}

// MapRange exposes length bytes at offset. Writes through the returned slice
// land in the storage directly.
func (b *Buffer) MapRange(offset, length uint32, access gl.GLenum) ([]byte, error) {
	if b.mapped {
		return nil, core.InvalidOperation("buffer is already mapped")
	}
	end, ok := metadata.CheckedAdd32(offset, length)
	if !ok || end > b.size {
		return nil, core.InvalidOperation("mapped range [%d, %d) exceeds buffer size %d", offset, uint64(offset)+uint64(length), b.size)
	}
	data, err := b.storage.Data()
	if err != nil {
		return nil, err
	}
	if access&gl.MAP_WRITE_BIT != 0 {
		b.InvalidateStaticData()
		b.indexRangeCache.InvalidateRange(offset, length)
	}
	b.mapped = true
	return data[offset:end], nil
}

func (b *Buffer) Unmap() error {
	if !b.mapped {
		return core.InvalidOperation("buffer is not mapped")
	}
	b.mapped = false
	b.updateSerial()
	return nil
}

func (b *Buffer) modified(offset, length uint32) {
	b.updateSerial()
	b.indexRangeCache.InvalidateRange(offset, length)
	b.InvalidateStaticData()
}

func (b *Buffer) initializeStaticData() {
	if b.staticVertexBuffer == nil {
		b.staticVertexBuffer = NewStaticVertexBufferInterface(b.renderer)
	}
	if b.staticIndexBuffer == nil {
		b.staticIndexBuffer = NewStaticIndexBufferInterface(b.renderer)
	}
}

// InvalidateStaticData drops static caches that already hold converted data
// and restarts the unmodified-use count.
func (b *Buffer) InvalidateStaticData() {
	if (b.staticVertexBuffer != nil && b.staticVertexBuffer.BufferSize() != 0) ||
		(b.staticIndexBuffer != nil && b.staticIndexBuffer.BufferSize() != 0) {
		b.releaseStaticData()
		core.LogDebug("buffer %d: static caches invalidated", b.serial)
	}
	b.unmodifiedDataUse = 0
}

func (b *Buffer) releaseStaticData() {
	if b.staticVertexBuffer != nil {
		b.staticVertexBuffer.Release()
		b.staticVertexBuffer = nil
	}
	if b.staticIndexBuffer != nil {
		b.staticIndexBuffer.Release()
		b.staticIndexBuffer = nil
	}
}

// PromoteStaticUsage records dataSize bytes read from the buffer by a draw.
// Once the unmodified use exceeds the promotion factor times the buffer size,
// static caches are created.
func (b *Buffer) PromoteStaticUsage(dataSize uint32) {
	if b.staticVertexBuffer != nil || b.staticIndexBuffer != nil {
		return
	}
	b.unmodifiedDataUse += uint64(dataSize)
	if b.unmodifiedDataUse > uint64(b.promotionFactor)*uint64(b.size) {
		core.LogDebug("buffer %d: promoted to static caching after %d unmodified bytes", b.serial, b.unmodifiedDataUse)
		b.initializeStaticData()
	}
}

func (b *Buffer) Release() {
	b.releaseStaticData()
	b.storage.Release()
	b.indexRangeCache.Clear()
}
