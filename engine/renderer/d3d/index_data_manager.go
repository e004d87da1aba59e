package d3d

import (
	"encoding/binary"

	"golang.org/x/exp/constraints"

	"github.com/spaghettifunk/gles/engine/core"
	"github.com/spaghettifunk/gles/engine/renderer/gl"
	"github.com/spaghettifunk/gles/engine/renderer/metadata"
)

// DefaultIndexBufferSize is the initial size of the streaming index buffers.
const DefaultIndexBufferSize = 0x8000

// TranslatedIndexData describes where the native pipeline reads a draw's
// indices from.
type TranslatedIndexData struct {
	IndexRange  metadata.IndexRange
	StartIndex  uint32
	StartOffset uint32
	IndexType   gl.GLenum
	// IndexBuffer is set when the indices were written to a streaming or
	// static index buffer.
	IndexBuffer IndexBuffer
	// Storage is set when the GL buffer's own storage is bound directly.
	Storage *Buffer
	Serial  core.Serial
}

// DirectStorage reports whether the draw reads the GL buffer without a copy.
func (t *TranslatedIndexData) DirectStorage() bool {
	return t.Storage != nil
}

// IndexDataManager routes draw-call indices to the native pipeline: directly
// from the GL buffer when the backend allows it, from a buffer's static cache,
// or converted into a shared streaming buffer.
type IndexDataManager struct {
	renderer          RendererD3D
	initialBufferSize uint32

	streamingBufferShort *StreamingIndexBufferInterface
	streamingBufferInt   *StreamingIndexBufferInterface
}

func NewIndexDataManager(renderer RendererD3D, initialBufferSize uint32) *IndexDataManager {
	if initialBufferSize == 0 {
		initialBufferSize = DefaultIndexBufferSize
	}
	return &IndexDataManager{renderer: renderer, initialBufferSize: initialBufferSize}
}

// PrepareIndexData translates count indices of indexType. With a buffer the
// indices start offset bytes into it; otherwise they are read from clientData.
func (m *IndexDataManager) PrepareIndexData(indexType gl.GLenum, count uint32, buffer *Buffer, offset uint32, clientData []byte) (*TranslatedIndexData, error) {
	if !gl.IsIndexType(indexType) {
		core.Unreachable("unsupported index type %#x", uint32(indexType))
	}
	typeBytes := gl.ElementSize(indexType)
	destinationIndexType := gl.UNSIGNED_SHORT
	if indexType == gl.UNSIGNED_INT {
		destinationIndexType = gl.UNSIGNED_INT
	}

	sourceBytes, ok := metadata.CheckedMul32(count, typeBytes)
	if !ok {
		return nil, core.OutOfMemory("%d indices of %d bytes each exceed the maximum buffer size", count, typeBytes)
	}

	var indices []byte
	alignedOffset := false
	if buffer != nil {
		alignedOffset = offset%typeBytes == 0
		end, ok := metadata.CheckedAdd32(offset, sourceBytes)
		if !ok || end > buffer.Size() {
			return nil, core.InvalidOperation("index range [%d, %d) exceeds buffer size %d", offset, uint64(offset)+uint64(sourceBytes), buffer.Size())
		}
		data, err := buffer.GetData()
		if err != nil {
			return nil, core.OutOfMemory("index buffer data is unavailable: %v", err)
		}
		indices = data[offset:end]
	} else {
		if uint64(len(clientData)) < uint64(sourceBytes) {
			return nil, core.InvalidOperation("client index data holds %d bytes, %d required", len(clientData), sourceBytes)
		}
		indices = clientData[:sourceBytes]
	}

	translated := &TranslatedIndexData{}
	if buffer != nil {
		if r, _, found := buffer.IndexRangeCache().FindRange(indexType, offset, count); found {
			translated.IndexRange = r
		} else {
			translated.IndexRange = metadata.ComputeIndexRange(indexType, indices, count)
		}
	} else {
		translated.IndexRange = metadata.ComputeIndexRange(indexType, indices, count)
	}

	var staticBuffer *StaticIndexBufferInterface
	if buffer != nil {
		staticBuffer = buffer.GetStaticIndexBuffer()
	}
	var indexBuffer *IndexBufferInterface
	directStorage := alignedOffset && buffer != nil && buffer.SupportsDirectBinding() && destinationIndexType == indexType
	streamOffset := uint32(0)

	if directStorage {
		streamOffset = offset
		if _, _, found := buffer.IndexRangeCache().FindRange(indexType, offset, count); !found {
			buffer.IndexRangeCache().AddRange(indexType, offset, count, translated.IndexRange, offset)
		}
	} else if staticBuffer != nil && staticBuffer.BufferSize() != 0 && staticBuffer.IndexType() == indexType && alignedOffset {
		indexBuffer = &staticBuffer.IndexBufferInterface
		var found bool
		if _, streamOffset, found = staticBuffer.IndexRangeCache().FindRange(indexType, offset, count); !found {
			streamOffset = (offset / typeBytes) * gl.ElementSize(destinationIndexType)
			staticBuffer.IndexRangeCache().AddRange(indexType, offset, count, translated.IndexRange, streamOffset)
		}
	}

	// Shader model 4 hardware treats 0xFFFF in a 16-bit index buffer as a strip
	// cut, so such ranges are widened to 32 bits.
	widened := false
	if translated.IndexRange.End == metadata.PrimitiveRestartIndex16 && indexType == gl.UNSIGNED_SHORT && m.renderer.MajorShaderModel() > 3 {
		widened = true
		destinationIndexType = gl.UNSIGNED_INT
		directStorage = false
		indexBuffer = nil
	}

	destTypeBytes := gl.ElementSize(destinationIndexType)
	if !directStorage && indexBuffer == nil {
		streaming, err := m.streamingIndexBuffer(destinationIndexType)
		if err != nil {
			return nil, err
		}
		indexBuffer = &streaming.IndexBufferInterface
		// Streaming buffers are typed by what they hold; static buffers by
		// the GL type they mirror.
		reserve := func(size uint32) error { return streaming.ReserveBufferSpace(size, destinationIndexType) }

		convertCount := count
		source := indices
		if staticBuffer != nil {
			if staticBuffer.BufferSize() == 0 && alignedOffset && !widened {
				indexBuffer = &staticBuffer.IndexBufferInterface
				reserve = func(size uint32) error { return staticBuffer.ReserveBufferSpace(size, indexType) }
				convertCount = buffer.Size() / typeBytes
				whole, err := buffer.GetData()
				if err != nil {
					return nil, core.OutOfMemory("index buffer data is unavailable: %v", err)
				}
				source = whole
			} else {
				buffer.InvalidateStaticData()
				staticBuffer = nil
			}
		}

		bufferSizeRequired, ok := metadata.CheckedMul32(convertCount, destTypeBytes)
		if !ok {
			return nil, core.OutOfMemory("reserving %d indices of %d bytes each exceeds the maximum buffer size", convertCount, destTypeBytes)
		}
		if err := reserve(bufferSizeRequired); err != nil {
			return nil, err
		}
		output, mappedOffset, err := indexBuffer.MapBuffer(bufferSizeRequired)
		if err != nil {
			return nil, err
		}
		streamOffset = mappedOffset
		ConvertIndices(indexType, destinationIndexType, source, convertCount, output)
		if err := indexBuffer.UnmapBuffer(); err != nil {
			return nil, err
		}

		if staticBuffer != nil {
			streamOffset = (offset / typeBytes) * destTypeBytes
			staticBuffer.IndexRangeCache().AddRange(indexType, offset, count, translated.IndexRange, streamOffset)
		}
	}

	if directStorage {
		translated.Storage = buffer
		translated.Serial = buffer.Serial()
	} else {
		translated.IndexBuffer = indexBuffer.IndexBuffer()
		translated.Serial = indexBuffer.Serial()
	}
	translated.StartIndex = streamOffset / destTypeBytes
	translated.StartOffset = streamOffset
	translated.IndexType = destinationIndexType

	if buffer != nil {
		buffer.PromoteStaticUsage(sourceBytes)
	}
	return translated, nil
}

func (m *IndexDataManager) streamingIndexBuffer(destinationIndexType gl.GLenum) (*StreamingIndexBufferInterface, error) {
	slot := &m.streamingBufferShort
	if destinationIndexType == gl.UNSIGNED_INT {
		slot = &m.streamingBufferInt
	}
	if *slot != nil {
		return *slot, nil
	}
	streaming := NewStreamingIndexBufferInterface(m.renderer)
	if err := streaming.ReserveBufferSpace(m.initialBufferSize, destinationIndexType); err != nil {
		streaming.Release()
		return nil, err
	}
	*slot = streaming
	return streaming, nil
}

// Release frees the shared streaming buffers.
func (m *IndexDataManager) Release() {
	if m.streamingBufferShort != nil {
		m.streamingBufferShort.Release()
		m.streamingBufferShort = nil
	}
	if m.streamingBufferInt != nil {
		m.streamingBufferInt.Release()
		m.streamingBufferInt = nil
	}
}

// ConvertIndices writes count indices of sourceType from input to output as
// destinationType, little-endian. Only widening and same-type copies exist.
func ConvertIndices(sourceType, destinationType gl.GLenum, input []byte, count uint32, output []byte) {
	if sourceType == destinationType {
		copy(output, input[:count*gl.ElementSize(sourceType)])
		return
	}
	switch {
	case sourceType == gl.UNSIGNED_BYTE && destinationType == gl.UNSIGNED_SHORT:
		convertIndices(readUint8, writeUint16, input, count, output)
	case sourceType == gl.UNSIGNED_BYTE && destinationType == gl.UNSIGNED_INT:
		convertIndices(readUint8, writeUint32, input, count, output)
	case sourceType == gl.UNSIGNED_SHORT && destinationType == gl.UNSIGNED_INT:
		convertIndices(readUint16, writeUint32, input, count, output)
	default:
		core.Unreachable("cannot convert indices from %#x to %#x", uint32(sourceType), uint32(destinationType))
	}
}

func convertIndices[S, D constraints.Unsigned](read func([]byte, uint32) S, write func([]byte, uint32, D), input []byte, count uint32, output []byte) {
	for i := uint32(0); i < count; i++ {
		write(output, i, D(read(input, i)))
	}
}

func readUint8(b []byte, i uint32) uint8 {
	return b[i]
}

func readUint16(b []byte, i uint32) uint16 {
	return binary.LittleEndian.Uint16(b[i*2:])
}

func writeUint16(b []byte, i uint32, v uint16) {
	binary.LittleEndian.PutUint16(b[i*2:], v)
}

func writeUint32(b []byte, i uint32, v uint32) {
	binary.LittleEndian.PutUint32(b[i*4:], v)
}
