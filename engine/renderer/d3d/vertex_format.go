package d3d

import (
	"encoding/binary"
	"math"

	"github.com/spaghettifunk/gles/engine/core"
	"github.com/spaghettifunk/gles/engine/renderer/gl"
	"github.com/spaghettifunk/gles/engine/renderer/metadata"
)

// VertexConversion says whether an attribute format can be consumed by the
// native input assembler as is.
type VertexConversion int

const (
	VertexConvertNone VertexConversion = iota
	VertexConvertCPU
)

// VertexFormatKey is the part of a vertex attribute that decides its native
// format.
type VertexFormatKey struct {
	Type        gl.GLenum
	Components  uint32
	Normalized  bool
	PureInteger bool
}

func VertexFormatKeyOf(attrib *metadata.VertexAttribute) VertexFormatKey {
	return VertexFormatKey{
		Type:        attrib.Type,
		Components:  attrib.Size,
		Normalized:  attrib.Normalized,
		PureInteger: attrib.PureInteger,
	}
}

// CopyVertexFunc copies count vertices read stride bytes apart from input into
// the tightly packed output.
type CopyVertexFunc func(input []byte, stride, count uint32, output []byte)

type VertexFormat struct {
	Conversion VertexConversion
	// NativeFormat is the backend's declaration type or DXGI format.
	NativeFormat uint32
	// OutputElementSize is the size of one converted vertex.
	OutputElementSize uint32
	Copy              CopyVertexFunc
}

// VertexFormatPolicy maps GL attribute formats to what a backend can consume.
type VertexFormatPolicy interface {
	VertexFormat(key VertexFormatKey) VertexFormat
}

// CopyVertexDirect returns a format that copies elementSize bytes per vertex.
func CopyVertexDirect(nativeFormat, elementSize uint32) VertexFormat {
	return VertexFormat{
		Conversion:        VertexConvertNone,
		NativeFormat:      nativeFormat,
		OutputElementSize: elementSize,
		Copy: func(input []byte, stride, count uint32, output []byte) {
			for i := uint32(0); i < count; i++ {
				copy(output[i*elementSize:(i+1)*elementSize], input[i*stride:i*stride+elementSize])
			}
		},
	}
}

// ConvertVertexToFloat returns a format that expands each component of key to
// a 32-bit float, writing outComponents floats per vertex. Missing components
// take their default of (0, 0, 0, 1).
func ConvertVertexToFloat(nativeFormat uint32, key VertexFormatKey, outComponents uint32) VertexFormat {
	componentSize := gl.ElementSize(key.Type)
	read := componentReader(key.Type, key.Normalized)
	return VertexFormat{
		Conversion:        VertexConvertCPU,
		NativeFormat:      nativeFormat,
		OutputElementSize: outComponents * 4,
		Copy: func(input []byte, stride, count uint32, output []byte) {
			defaults := [4]float32{0, 0, 0, 1}
			for i := uint32(0); i < count; i++ {
				src := input[i*stride:]
				dst := output[i*outComponents*4:]
				for c := uint32(0); c < outComponents; c++ {
					v := defaults[c]
					if c < key.Components {
						v = read(src[c*componentSize:])
					}
					binary.LittleEndian.PutUint32(dst[c*4:], math.Float32bits(v))
				}
			}
		},
	}
}

func componentReader(t gl.GLenum, normalized bool) func([]byte) float32 {
	switch t {
	case gl.BYTE:
		return func(b []byte) float32 {
			v := float32(int8(b[0]))
			if normalized {
				return max(v/127, -1)
			}
			return v
		}
	case gl.UNSIGNED_BYTE:
		return func(b []byte) float32 {
			if normalized {
				return float32(b[0]) / 255
			}
			return float32(b[0])
		}
	case gl.SHORT:
		return func(b []byte) float32 {
			v := float32(int16(binary.LittleEndian.Uint16(b)))
			if normalized {
				return max(v/32767, -1)
			}
			return v
		}
	case gl.UNSIGNED_SHORT:
		return func(b []byte) float32 {
			v := float32(binary.LittleEndian.Uint16(b))
			if normalized {
				return v / 65535
			}
			return v
		}
	case gl.INT:
		return func(b []byte) float32 {
			v := float64(int32(binary.LittleEndian.Uint32(b)))
			if normalized {
				return float32(max(v/math.MaxInt32, -1))
			}
			return float32(v)
		}
	case gl.UNSIGNED_INT:
		return func(b []byte) float32 {
			v := float64(binary.LittleEndian.Uint32(b))
			if normalized {
				return float32(v / math.MaxUint32)
			}
			return float32(v)
		}
	case gl.FIXED:
		return func(b []byte) float32 {
			return float32(int32(binary.LittleEndian.Uint32(b))) / 65536
		}
	case gl.HALF_FLOAT:
		return func(b []byte) float32 {
			return halfToFloat(binary.LittleEndian.Uint16(b))
		}
	case gl.FLOAT:
		return func(b []byte) float32 {
			return math.Float32frombits(binary.LittleEndian.Uint32(b))
		}
	}
	core.Unreachable("no vertex component reader for type %#x", uint32(t))
	return nil
}

func halfToFloat(h uint16) float32 {
	sign := uint32(h>>15) << 31
	exp := uint32(h>>10) & 0x1F
	mant := uint32(h) & 0x3FF
	switch {
	case exp == 0 && mant == 0:
		return math.Float32frombits(sign)
	case exp == 0:
		// Subnormal half, renormalise.
		for mant&0x400 == 0 {
			mant <<= 1
			exp--
		}
		exp++
		mant &= 0x3FF
	case exp == 0x1F:
		return math.Float32frombits(sign | 0x7F800000 | mant<<13)
	}
	return math.Float32frombits(sign | (exp+112)<<23 | mant<<13)
}

// AttributeElementCount is the number of elements an attribute contributes to
// a draw of count vertices and instances instances.
func AttributeElementCount(attrib *metadata.VertexAttribute, count, instances uint32) uint32 {
	if instances == 0 || attrib.Divisor == 0 {
		return count
	}
	return (instances + attrib.Divisor - 1) / attrib.Divisor
}

// SpaceRequired is the byte size the converted attribute occupies. A disabled
// attribute stores its four-component current value.
func SpaceRequired(policy VertexFormatPolicy, attrib *metadata.VertexAttribute, count, instances uint32) (uint32, error) {
	if !attrib.Enabled {
		return 16, nil
	}
	format := policy.VertexFormat(VertexFormatKeyOf(attrib))
	size, ok := metadata.CheckedMul32(format.OutputElementSize, AttributeElementCount(attrib, count, instances))
	if !ok {
		return 0, core.OutOfMemory("new vertex buffer size would overflow")
	}
	return size, nil
}

// attributeInput returns the bytes an enabled attribute reads from, starting at
// its first referenced element.
func attributeInput(attrib *metadata.VertexAttribute, start int32, count, instances uint32) ([]byte, error) {
	var data []byte
	if attrib.Buffer != nil {
		bufferData, err := attrib.Buffer.GetData()
		if err != nil {
			return nil, err
		}
		data = bufferData
	} else {
		data = attrib.ClientData
	}

	stride := int64(attrib.EffectiveStride())
	begin := int64(attrib.Offset)
	if instances == 0 || attrib.Divisor == 0 {
		begin += stride * int64(start)
	}
	elements := int64(AttributeElementCount(attrib, count, instances))
	if elements == 0 {
		return nil, nil
	}
	end := begin + stride*(elements-1) + int64(attrib.TypeSize())
	if begin < 0 || end > int64(len(data)) {
		return nil, core.InvalidOperation("vertex attribute reads bytes [%d, %d) of a %d byte source", begin, end, len(data))
	}
	return data[begin:], nil
}

// WriteVertexAttribute converts the attribute's elements into output, which
// must hold SpaceRequired bytes.
func WriteVertexAttribute(policy VertexFormatPolicy, attrib *metadata.VertexAttribute, current metadata.VertexAttribCurrentValue,
	start int32, count, instances uint32, output []byte) error {
	if !attrib.Enabled {
		for i, v := range current.FloatValue {
			if current.Type == gl.FLOAT {
				binary.LittleEndian.PutUint32(output[i*4:], math.Float32bits(v))
			} else {
				binary.LittleEndian.PutUint32(output[i*4:], uint32(current.IntValue[i]))
			}
		}
		return nil
	}

	input, err := attributeInput(attrib, start, count, instances)
	if err != nil {
		return err
	}
	format := policy.VertexFormat(VertexFormatKeyOf(attrib))
	format.Copy(input, attrib.EffectiveStride(), AttributeElementCount(attrib, count, instances), output)
	return nil
}
