package metadata

import "math"

/** @brief A range, typically of memory */
type MemoryRange struct {
	/** @brief The Offset in bytes. */
	Offset uint64
	/** @brief The size in bytes. */
	Size uint64
}

// Overlaps reports whether two memory ranges share at least one byte.
func (m MemoryRange) Overlaps(other MemoryRange) bool {
	if m.Size == 0 || other.Size == 0 {
		return false
	}
	return m.Offset < other.Offset+other.Size && other.Offset < m.Offset+m.Size
}

// CheckedMul32 multiplies two sizes and reports false if the product does not
// fit in 32 bits.
func CheckedMul32(a, b uint32) (uint32, bool) {
	p := uint64(a) * uint64(b)
	if p > math.MaxUint32 {
		return 0, false
	}
	return uint32(p), true
}

// CheckedAdd32 adds two sizes and reports false on overflow.
func CheckedAdd32(a, b uint32) (uint32, bool) {
	if a > math.MaxUint32-b {
		return 0, false
	}
	return a + b, true
}

// RoundUp32 rounds value up to a multiple of alignment and reports false if
// the result would overflow.
func RoundUp32(value, alignment uint32) (uint32, bool) {
	if alignment == 0 {
		return value, true
	}
	rem := value % alignment
	if rem == 0 {
		return value, true
	}
	return CheckedAdd32(value, alignment-rem)
}
