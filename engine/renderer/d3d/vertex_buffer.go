package d3d

import (
	"github.com/spaghettifunk/gles/engine/core"
	"github.com/spaghettifunk/gles/engine/renderer/gl"
	"github.com/spaghettifunk/gles/engine/renderer/metadata"
)

// vertexAlignment is the boundary every stored attribute starts on.
const vertexAlignment = 16

// VertexBuffer is a native vertex buffer.
type VertexBuffer interface {
	Initialize(size uint32, dynamic bool) error
	// StoreVertexAttributes converts the attribute into the buffer at offset.
	StoreVertexAttributes(attrib *metadata.VertexAttribute, current metadata.VertexAttribCurrentValue,
		start int32, count, instances, offset uint32) error
	BufferSize() uint32
	SetBufferSize(size uint32) error
	Discard() error
	Serial() core.Serial
	Handle() uint64
	Release()
}

// VertexBufferInterface owns one native vertex buffer, a write cursor and the
// space reserved for the attributes of the draw being prepared. All
// reservations for a draw are made before the first store.
type VertexBufferInterface struct {
	renderer      RendererD3D
	vertexBuffer  VertexBuffer
	writePosition uint32
	reservedSpace uint32
	dynamic       bool

	reserveSpace func(size uint32) error
}

func newVertexBufferInterface(renderer RendererD3D, dynamic bool) VertexBufferInterface {
	return VertexBufferInterface{
		renderer:     renderer,
		vertexBuffer: renderer.CreateVertexBuffer(),
		dynamic:      dynamic,
	}
}

func (vb *VertexBufferInterface) BufferSize() uint32 {
	return vb.vertexBuffer.BufferSize()
}

func (vb *VertexBufferInterface) Serial() core.Serial {
	return vb.vertexBuffer.Serial()
}

func (vb *VertexBufferInterface) VertexBuffer() VertexBuffer {
	return vb.vertexBuffer
}

func (vb *VertexBufferInterface) WritePosition() uint32 {
	return vb.writePosition
}

func (vb *VertexBufferInterface) ReservedSpace() uint32 {
	return vb.reservedSpace
}

func (vb *VertexBufferInterface) setBufferSize(size uint32) error {
	if vb.vertexBuffer.BufferSize() == 0 {
		return vb.vertexBuffer.Initialize(size, vb.dynamic)
	}
	return vb.vertexBuffer.SetBufferSize(size)
}

func (vb *VertexBufferInterface) discard() error {
	return vb.vertexBuffer.Discard()
}

// ReserveVertexSpace adds the attribute's converted size to the pending
// reservation.
func (vb *VertexBufferInterface) ReserveVertexSpace(attrib *metadata.VertexAttribute, count, instances uint32) error {
	required, err := SpaceRequired(vb.renderer.VertexFormats(), attrib, count, instances)
	if err != nil {
		return err
	}
	reserved, ok := metadata.CheckedAdd32(vb.reservedSpace, required)
	if ok {
		reserved, ok = metadata.RoundUp32(reserved, vertexAlignment)
	}
	if !ok {
		return core.OutOfMemory("unable to reserve %d extra bytes in internal vertex buffer, it would result in an overflow", required)
	}
	vb.reservedSpace = reserved
	return nil
}

// StoreVertexAttributes flushes the pending reservation, writes the attribute
// at the cursor and returns the offset it was written to.
func (vb *VertexBufferInterface) StoreVertexAttributes(attrib *metadata.VertexAttribute, current metadata.VertexAttribCurrentValue,
	start int32, count, instances uint32) (uint32, error) {
	required, err := SpaceRequired(vb.renderer.VertexFormats(), attrib, count, instances)
	if err != nil {
		return 0, err
	}
	if _, ok := metadata.CheckedAdd32(vb.writePosition, required); !ok {
		return 0, core.OutOfMemory("internal vertex buffer write position would overflow")
	}

	if err := vb.reserveSpace(vb.reservedSpace); err != nil {
		return 0, err
	}
	vb.reservedSpace = 0

	if err := vb.vertexBuffer.StoreVertexAttributes(attrib, current, start, count, instances, vb.writePosition); err != nil {
		return 0, err
	}
	streamOffset := vb.writePosition
	next, ok := metadata.CheckedAdd32(vb.writePosition, required)
	if ok {
		next, ok = metadata.RoundUp32(next, vertexAlignment)
	}
	if !ok {
		return 0, core.OutOfMemory("internal vertex buffer write position would overflow")
	}
	vb.writePosition = next
	return streamOffset, nil
}

// DirectStoragePossible reports whether the attribute can be read straight
// from its GL buffer's native storage.
func (vb *VertexBufferInterface) DirectStoragePossible(attrib *metadata.VertexAttribute) bool {
	storage, ok := attrib.Buffer.(*Buffer)
	if !ok || storage == nil || !storage.SupportsDirectBinding() {
		return false
	}

	// Native vertex data must be aligned to the element size or to four
	// bytes, whichever is smaller.
	alignment := uint32(4)
	format := vb.renderer.VertexFormats().VertexFormat(VertexFormatKeyOf(attrib))
	if attrib.Type != gl.FLOAT {
		alignment = min(format.OutputElementSize, 4)
	}
	aligned := attrib.EffectiveStride()%alignment == 0 && attrib.Offset%alignment == 0
	return format.Conversion == VertexConvertNone && aligned
}

func (vb *VertexBufferInterface) Release() {
	vb.vertexBuffer.Release()
}

// StreamingVertexBufferInterface grows by half again on overflow and orphans
// its storage when the cursor runs off the end.
type StreamingVertexBufferInterface struct {
	VertexBufferInterface
}

func NewStreamingVertexBufferInterface(renderer RendererD3D, initialSize uint32) (*StreamingVertexBufferInterface, error) {
	vb := &StreamingVertexBufferInterface{newVertexBufferInterface(renderer, true)}
	vb.VertexBufferInterface.reserveSpace = vb.reserveSpace
	if err := vb.setBufferSize(initialSize); err != nil {
		vb.Release()
		return nil, err
	}
	return vb, nil
}

func (vb *StreamingVertexBufferInterface) reserveSpace(size uint32) error {
	curBufferSize := vb.BufferSize()
	if size > curBufferSize {
		grown, ok := metadata.CheckedMul32(curBufferSize, 3)
		newSize := size
		if ok {
			newSize = max(size, grown/2)
		}
		if err := vb.setBufferSize(newSize); err != nil {
			return err
		}
		vb.writePosition = 0
		return nil
	}
	if end, ok := metadata.CheckedAdd32(vb.writePosition, size); !ok || end > curBufferSize {
		if err := vb.discard(); err != nil {
			return err
		}
		vb.writePosition = 0
	}
	return nil
}

// ReserveSpace applies the streaming growth policy directly.
func (vb *StreamingVertexBufferInterface) ReserveSpace(size uint32) error {
	return vb.reserveSpace(size)
}

type vertexElement struct {
	key             VertexFormatKey
	stride          uint32
	attributeOffset uint32
	streamOffset    uint32
}

// StaticVertexBufferInterface holds converted attributes of one GL buffer and
// remembers which attribute layouts it already contains.
type StaticVertexBufferInterface struct {
	VertexBufferInterface
	cache []vertexElement
}

func NewStaticVertexBufferInterface(renderer RendererD3D) *StaticVertexBufferInterface {
	vb := &StaticVertexBufferInterface{VertexBufferInterface: newVertexBufferInterface(renderer, false)}
	vb.VertexBufferInterface.reserveSpace = vb.reserveSpace
	return vb
}

func (vb *StaticVertexBufferInterface) reserveSpace(size uint32) error {
	curSize := vb.BufferSize()
	if curSize == 0 {
		return vb.setBufferSize(size)
	}
	if curSize >= size {
		return nil
	}
	core.Unreachable("static vertex buffer of %d bytes cannot grow to %d bytes", curSize, size)
	return nil
}

// ReserveSpace applies the static sizing contract directly.
func (vb *StaticVertexBufferInterface) ReserveSpace(size uint32) error {
	return vb.reserveSpace(size)
}

// LookupAttribute returns where an attribute with this layout was stored.
func (vb *StaticVertexBufferInterface) LookupAttribute(attrib *metadata.VertexAttribute) (uint32, bool) {
	key := VertexFormatKeyOf(attrib)
	stride := attrib.EffectiveStride()
	for _, e := range vb.cache {
		if e.key == key && e.stride == stride && e.attributeOffset == attrib.Offset%stride {
			return e.streamOffset, true
		}
	}
	return 0, false
}

func (vb *StaticVertexBufferInterface) StoreVertexAttributes(attrib *metadata.VertexAttribute, current metadata.VertexAttribCurrentValue,
	start int32, count, instances uint32) (uint32, error) {
	streamOffset, err := vb.VertexBufferInterface.StoreVertexAttributes(attrib, current, start, count, instances)
	if err != nil {
		return 0, err
	}
	stride := attrib.EffectiveStride()
	vb.cache = append(vb.cache, vertexElement{
		key:             VertexFormatKeyOf(attrib),
		stride:          stride,
		attributeOffset: attrib.Offset % stride,
		streamOffset:    streamOffset,
	})
	return streamOffset, nil
}
