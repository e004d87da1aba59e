package metadata

import (
	"encoding/binary"

	"github.com/spaghettifunk/gles/engine/renderer/gl"
)

// PrimitiveRestartIndex16 is the value a 16-bit native index buffer treats as
// a strip cut on shader model 4+ hardware.
const PrimitiveRestartIndex16 uint32 = 0xFFFF

/** @brief The inclusive range of vertex indices a draw call references. */
type IndexRange struct {
	Start uint32
	End   uint32
	/** @brief Number of indices that contributed to the range. */
	VertexIndexCount uint32
}

func (r IndexRange) Vertices() uint32 {
	return r.End - r.Start + 1
}

// ComputeIndexRange scans count indices of the given type in data. Indices are
// read little-endian, as the native APIs lay them out.
func ComputeIndexRange(indexType gl.GLenum, data []byte, count uint32) IndexRange {
	if count == 0 {
		return IndexRange{}
	}
	minIndex, maxIndex := ^uint32(0), uint32(0)
	visit := func(v uint32) {
		if v < minIndex {
			minIndex = v
		}
		if v > maxIndex {
			maxIndex = v
		}
	}
	switch indexType {
	case gl.UNSIGNED_BYTE:
		for i := uint32(0); i < count; i++ {
			visit(uint32(data[i]))
		}
	case gl.UNSIGNED_SHORT:
		for i := uint32(0); i < count; i++ {
			visit(uint32(binary.LittleEndian.Uint16(data[i*2:])))
		}
	case gl.UNSIGNED_INT:
		for i := uint32(0); i < count; i++ {
			visit(binary.LittleEndian.Uint32(data[i*4:]))
		}
	default:
		return IndexRange{}
	}
	return IndexRange{Start: minIndex, End: maxIndex, VertexIndexCount: count}
}
