package metadata

import "github.com/spaghettifunk/gles/engine/renderer/gl"

// BufferSource is the part of a GL buffer object the vertex path needs. It is
// satisfied by the D3D layer's Buffer.
type BufferSource interface {
	Size() uint32
	GetData() ([]byte, error)
}

/** @brief A GL vertex attribute binding. */
type VertexAttribute struct {
	Enabled bool
	/** @brief Component type, e.g. GL_FLOAT. */
	Type gl.GLenum
	/** @brief Component count, 1..4. */
	Size        uint32
	Normalized  bool
	PureInteger bool
	/** @brief Stride in bytes; 0 means tightly packed. */
	Stride uint32
	/** @brief Byte offset into Buffer, or into ClientData when Buffer is nil. */
	Offset  uint32
	Divisor uint32

	Buffer     BufferSource
	ClientData []byte
}

// TypeSize is the byte size of one element of the attribute.
func (a *VertexAttribute) TypeSize() uint32 {
	switch a.Type {
	case gl.INT_2_10_10_10_REV, gl.UNSIGNED_INT_2_10_10_10_REV:
		return 4
	}
	return gl.ElementSize(a.Type) * a.Size
}

// EffectiveStride resolves a zero stride to the tightly packed size.
func (a *VertexAttribute) EffectiveStride() uint32 {
	if a.Stride != 0 {
		return a.Stride
	}
	return a.TypeSize()
}

/** @brief The value used for a disabled attribute. */
type VertexAttribCurrentValue struct {
	Type       gl.GLenum
	FloatValue [4]float32
	IntValue   [4]int32
}

func DefaultVertexAttribCurrentValue() VertexAttribCurrentValue {
	return VertexAttribCurrentValue{
		Type:       gl.FLOAT,
		FloatValue: [4]float32{0, 0, 0, 1},
	}
}

// ElementsInBuffer returns how many whole vertices of attrib fit in a buffer
// of size bytes.
func ElementsInBuffer(attrib *VertexAttribute, size uint32) uint32 {
	stride := attrib.EffectiveStride()
	if size < attrib.Offset || stride == 0 {
		return 0
	}
	remaining := size - attrib.Offset
	n := remaining / stride
	if remaining%stride >= attrib.TypeSize() {
		n++
	}
	return n
}
