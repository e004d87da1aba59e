package d3d

import (
	"github.com/spaghettifunk/gles/engine/core"
	"github.com/spaghettifunk/gles/engine/renderer/gl"
	"github.com/spaghettifunk/gles/engine/renderer/metadata"
)

const (
	// DefaultVertexBufferSize is the initial size of the shared streaming
	// vertex buffer.
	DefaultVertexBufferSize = 1024 * 1024
	currentValueBufferSize  = 4096
)

// TranslatedAttribute describes where the native input assembler reads one
// attribute from.
type TranslatedAttribute struct {
	Active           bool
	Attribute        *metadata.VertexAttribute
	CurrentValueType gl.GLenum

	// VertexBuffer is set when the attribute was written to a streaming,
	// static or current-value buffer.
	VertexBuffer VertexBuffer
	// Storage is set when the GL buffer's own storage is bound directly.
	Storage *Buffer
	Serial  core.Serial

	Divisor uint32
	Stride  uint32
	Offset  uint32
}

type currentValueSlot struct {
	buffer *StreamingVertexBufferInterface
	value  metadata.VertexAttribCurrentValue
	offset uint32
	valid  bool
}

// VertexDataManager prepares the vertex attributes of a draw call. Enabled
// attributes are bound directly, taken from a static cache or converted into
// the shared streaming buffer; disabled ones read their current value.
type VertexDataManager struct {
	renderer        RendererD3D
	streamingBuffer *StreamingVertexBufferInterface
	currentValues   []currentValueSlot
}

func NewVertexDataManager(renderer RendererD3D, initialBufferSize uint32) (*VertexDataManager, error) {
	if initialBufferSize == 0 {
		initialBufferSize = DefaultVertexBufferSize
	}
	streaming, err := NewStreamingVertexBufferInterface(renderer, initialBufferSize)
	if err != nil {
		core.LogError("failed to allocate the streaming vertex buffer: %v", err)
		return nil, err
	}
	return &VertexDataManager{
		renderer:        renderer,
		streamingBuffer: streaming,
		currentValues:   make([]currentValueSlot, max(renderer.Caps().MaxVertexAttributes, 1)),
	}, nil
}

// PrepareVertexData translates attribs for a draw of count vertices starting at
// start, with instances instances (zero for a non-instanced draw).
// currentValues supplies the value of every disabled attribute.
func (m *VertexDataManager) PrepareVertexData(attribs []metadata.VertexAttribute, currentValues []metadata.VertexAttribCurrentValue,
	start int32, count, instances uint32) ([]TranslatedAttribute, error) {
	if len(attribs) > len(m.currentValues) {
		return nil, core.InvalidOperation("%d attributes exceed the backend limit of %d", len(attribs), len(m.currentValues))
	}
	translated := make([]TranslatedAttribute, len(attribs))

	// Static caches that cannot serve the current layout are dropped before
	// any space is reserved.
	for i := range attribs {
		attrib := &attribs[i]
		translated[i].Active = true
		translated[i].Attribute = attrib
		if !attrib.Enabled {
			continue
		}
		if storage, ok := attrib.Buffer.(*Buffer); ok && storage != nil {
			static := storage.GetStaticVertexBuffer()
			if static != nil && static.BufferSize() > 0 {
				if _, found := static.LookupAttribute(attrib); !found && !m.streamingBuffer.DirectStoragePossible(attrib) {
					storage.InvalidateStaticData()
				}
			}
		}
	}

	for i := range attribs {
		if !attribs[i].Enabled {
			continue
		}
		if err := m.reserveSpaceForAttrib(&attribs[i], start, count, instances); err != nil {
			return nil, err
		}
	}

	for i := range attribs {
		current := metadata.DefaultVertexAttribCurrentValue()
		if i < len(currentValues) {
			current = currentValues[i]
		}
		translated[i].CurrentValueType = current.Type
		var err error
		if attribs[i].Enabled {
			err = m.storeAttribute(&attribs[i], current, &translated[i], start, count, instances)
		} else {
			err = m.storeCurrentValue(current, &translated[i], i)
		}
		if err != nil {
			return nil, err
		}
	}

	for i := range attribs {
		attrib := &attribs[i]
		if storage, ok := attrib.Buffer.(*Buffer); ok && storage != nil && attrib.Enabled {
			used, ok := metadata.CheckedMul32(count, attrib.TypeSize())
			if !ok {
				used = ^uint32(0)
			}
			storage.PromoteStaticUsage(used)
		}
	}
	return translated, nil
}

func (m *VertexDataManager) reserveSpaceForAttrib(attrib *metadata.VertexAttribute, start int32, count, instances uint32) error {
	if m.streamingBuffer.DirectStoragePossible(attrib) {
		return nil
	}
	storage, _ := attrib.Buffer.(*Buffer)
	var static *StaticVertexBufferInterface
	if storage != nil {
		static = storage.GetStaticVertexBuffer()
	}

	if static != nil {
		if static.BufferSize() == 0 {
			return static.ReserveVertexSpace(attrib, metadata.ElementsInBuffer(attrib, storage.Size()), 0)
		}
		return nil
	}

	totalCount := AttributeElementCount(attrib, count, instances)
	if storage != nil {
		needed := uint64(totalCount)
		if instances == 0 || attrib.Divisor == 0 {
			needed += uint64(max(start, 0))
		}
		if uint64(metadata.ElementsInBuffer(attrib, storage.Size())) < needed {
			return core.InvalidOperation("vertex buffer is not big enough for the draw call")
		}
	}
	return m.streamingBuffer.ReserveVertexSpace(attrib, count, instances)
}

func (m *VertexDataManager) storeAttribute(attrib *metadata.VertexAttribute, current metadata.VertexAttribCurrentValue,
	translated *TranslatedAttribute, start int32, count, instances uint32) error {
	storage, _ := attrib.Buffer.(*Buffer)
	stride := attrib.EffectiveStride()
	firstVertex := uint32(0)
	if instances == 0 || attrib.Divisor == 0 {
		firstVertex = uint32(max(start, 0))
	}
	translated.Divisor = attrib.Divisor

	if m.streamingBuffer.DirectStoragePossible(attrib) {
		offset, ok := metadata.CheckedMul32(stride, firstVertex)
		if ok {
			offset, ok = metadata.CheckedAdd32(offset, attrib.Offset)
		}
		if !ok {
			return core.OutOfMemory("vertex attribute offset would overflow")
		}
		translated.Storage = storage
		translated.Serial = storage.Serial()
		translated.Stride = stride
		translated.Offset = offset
		return nil
	}

	format := m.renderer.VertexFormats().VertexFormat(VertexFormatKeyOf(attrib))
	outputElementSize := format.OutputElementSize

	var static *StaticVertexBufferInterface
	if storage != nil {
		static = storage.GetStaticVertexBuffer()
	}

	var streamOffset uint32
	if static != nil {
		offset, found := static.LookupAttribute(attrib)
		if !found {
			totalCount := metadata.ElementsInBuffer(attrib, storage.Size())
			startIndex := int32(attrib.Offset / stride)
			var err error
			if offset, err = static.StoreVertexAttributes(attrib, current, -startIndex, totalCount, 0); err != nil {
				return err
			}
		}
		firstElementOffset := uint64(attrib.Offset/stride) * uint64(outputElementSize)
		startOffset := uint64(firstVertex) * uint64(outputElementSize)
		total := uint64(offset) + firstElementOffset + startOffset
		if total > uint64(^uint32(0)) {
			return core.OutOfMemory("static vertex buffer offset would overflow")
		}
		streamOffset = uint32(total)
		translated.VertexBuffer = static.VertexBuffer()
		translated.Serial = static.Serial()
	} else {
		offset, err := m.streamingBuffer.StoreVertexAttributes(attrib, current, start, count, instances)
		if err != nil {
			return err
		}
		streamOffset = offset
		translated.VertexBuffer = m.streamingBuffer.VertexBuffer()
		translated.Serial = m.streamingBuffer.Serial()
	}
	translated.Storage = nil
	translated.Stride = outputElementSize
	translated.Offset = streamOffset
	return nil
}

func (m *VertexDataManager) storeCurrentValue(current metadata.VertexAttribCurrentValue, translated *TranslatedAttribute, index int) error {
	slot := &m.currentValues[index]
	if slot.buffer == nil {
		buffer, err := NewStreamingVertexBufferInterface(m.renderer, currentValueBufferSize)
		if err != nil {
			return err
		}
		slot.buffer = buffer
	}

	if !slot.valid || slot.value != current {
		disabled := metadata.VertexAttribute{Enabled: false}
		if err := slot.buffer.ReserveVertexSpace(&disabled, 1, 0); err != nil {
			return err
		}
		offset, err := slot.buffer.StoreVertexAttributes(&disabled, current, 0, 1, 0)
		if err != nil {
			return err
		}
		slot.value = current
		slot.offset = offset
		slot.valid = true
	}

	translated.VertexBuffer = slot.buffer.VertexBuffer()
	translated.Serial = slot.buffer.Serial()
	translated.Storage = nil
	translated.Divisor = 0
	translated.Stride = 0
	translated.Offset = slot.offset
	return nil
}

func (m *VertexDataManager) Release() {
	m.streamingBuffer.Release()
	for i := range m.currentValues {
		if m.currentValues[i].buffer != nil {
			m.currentValues[i].buffer.Release()
			m.currentValues[i] = currentValueSlot{}
		}
	}
}
