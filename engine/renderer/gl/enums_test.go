package gl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestElementSize(t *testing.T) {
	tests := []struct {
		typ  GLenum
		want uint32
	}{
		{UNSIGNED_BYTE, 1},
		{UNSIGNED_SHORT, 2},
		{UNSIGNED_INT, 4},
		{FLOAT, 4},
		{HALF_FLOAT, 2},
		{RGBA, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ElementSize(tt.typ), "type 0x%04X", uint32(tt.typ))
	}
}

func TestLog2AndPow2(t *testing.T) {
	assert.Equal(t, 0, Log2(1))
	assert.Equal(t, 8, Log2(256))
	assert.Equal(t, 8, Log2(300))
	assert.True(t, IsPow2(64))
	assert.False(t, IsPow2(100))
	assert.False(t, IsPow2(0))
}

func TestSizedFormat(t *testing.T) {
	assert.Equal(t, RGBA8, SizedFormat(RGBA, UNSIGNED_BYTE))
	assert.Equal(t, RGBA32F, SizedFormat(RGBA, FLOAT))
	assert.Equal(t, RGB565, SizedFormat(RGB565, NONE))
	assert.Equal(t, NONE, SizedFormat(GLenum(0x1234), UNSIGNED_BYTE))

	info, ok := GetInternalFormatInfo(DEPTH24_STENCIL8)
	assert.True(t, ok)
	assert.True(t, info.IsDepthOrStencil())
}
