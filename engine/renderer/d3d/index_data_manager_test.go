package d3d

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/spaghettifunk/gles/engine/core"
	"github.com/spaghettifunk/gles/engine/renderer/gl"
	"github.com/spaghettifunk/gles/engine/renderer/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ushorts(values ...uint16) []byte {
	out := make([]byte, len(values)*2)
	for i, v := range values {
		binary.LittleEndian.PutUint16(out[i*2:], v)
	}
	return out
}

func newIndexBuffer(t *testing.T, r *fakeRenderer, data []byte, usage gl.GLenum) *Buffer {
	t.Helper()
	b := NewBuffer(r, 0)
	require.NoError(t, b.SetData(data, uint32(len(data)), usage))
	return b
}

func TestPrepareIndexDataDirectBinding(t *testing.T) {
	r := newFakeRenderer(true)
	m := NewIndexDataManager(r, 0)
	buffer := newIndexBuffer(t, r, ushorts(0, 1, 2, 2, 1, 3), gl.DYNAMIC_DRAW)

	translated, err := m.PrepareIndexData(gl.UNSIGNED_SHORT, 3, buffer, 6, nil)
	require.NoError(t, err)

	assert.True(t, translated.DirectStorage())
	assert.Same(t, buffer, translated.Storage)
	assert.Nil(t, translated.IndexBuffer)
	assert.Equal(t, buffer.Serial(), translated.Serial)
	assert.Equal(t, gl.UNSIGNED_SHORT, translated.IndexType)
	assert.Equal(t, uint32(3), translated.StartIndex)
	assert.Equal(t, uint32(6), translated.StartOffset)
	assert.Equal(t, metadata.IndexRange{Start: 1, End: 3, VertexIndexCount: 3}, translated.IndexRange)
	assert.Zero(t, r.indexMaps(), "direct binding must not copy indices")
	assert.Equal(t, 1, buffer.IndexRangeCache().Len())
}

func TestPrepareIndexDataRestartIndexWidensOutput(t *testing.T) {
	r := newFakeRenderer(true)
	m := NewIndexDataManager(r, 0)
	buffer := newIndexBuffer(t, r, ushorts(0, 0xFFFF, 2), gl.DYNAMIC_DRAW)

	translated, err := m.PrepareIndexData(gl.UNSIGNED_SHORT, 3, buffer, 0, nil)
	require.NoError(t, err)

	assert.False(t, translated.DirectStorage())
	assert.Equal(t, gl.UNSIGNED_INT, translated.IndexType)
	require.NotNil(t, translated.IndexBuffer)

	ib := translated.IndexBuffer.(*fakeIndexBuffer)
	out := ib.data[translated.StartOffset:]
	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(out[0:]))
	assert.Equal(t, uint32(0xFFFF), binary.LittleEndian.Uint32(out[4:]))
	assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(out[8:]))
}

func TestPrepareIndexDataRestartIndexOnShaderModel3(t *testing.T) {
	r := newFakeRenderer(false)
	r.shaderModel = 3
	m := NewIndexDataManager(r, 0)

	translated, err := m.PrepareIndexData(gl.UNSIGNED_SHORT, 2, nil, 0, ushorts(0xFFFF, 1))
	require.NoError(t, err)
	assert.Equal(t, gl.UNSIGNED_SHORT, translated.IndexType)
}

func TestPrepareIndexDataWidensBytes(t *testing.T) {
	r := newFakeRenderer(false)
	m := NewIndexDataManager(r, 0)

	translated, err := m.PrepareIndexData(gl.UNSIGNED_BYTE, 4, nil, 0, []byte{3, 250, 7, 1})
	require.NoError(t, err)

	assert.Equal(t, gl.UNSIGNED_SHORT, translated.IndexType)
	assert.Equal(t, metadata.IndexRange{Start: 1, End: 250, VertexIndexCount: 4}, translated.IndexRange)
	ib := translated.IndexBuffer.(*fakeIndexBuffer)
	assert.Equal(t, ushorts(3, 250, 7, 1), ib.data[translated.StartOffset:translated.StartOffset+8])
	assert.Equal(t, gl.UNSIGNED_SHORT, ib.IndexType())
}

func TestPrepareIndexDataMisalignedOffsetStreams(t *testing.T) {
	r := newFakeRenderer(true)
	m := NewIndexDataManager(r, 0)
	data := append([]byte{0xAA}, ushorts(4, 5, 6)...)
	buffer := newIndexBuffer(t, r, data, gl.DYNAMIC_DRAW)

	translated, err := m.PrepareIndexData(gl.UNSIGNED_SHORT, 3, buffer, 1, nil)
	require.NoError(t, err)
	assert.False(t, translated.DirectStorage())
	ib := translated.IndexBuffer.(*fakeIndexBuffer)
	assert.Equal(t, ushorts(4, 5, 6), ib.data[translated.StartOffset:translated.StartOffset+6])
}

func TestPrepareIndexDataStaticBufferReuse(t *testing.T) {
	r := newFakeRenderer(false)
	m := NewIndexDataManager(r, 0)
	buffer := newIndexBuffer(t, r, []byte{0, 1, 2, 3, 4, 5}, gl.STATIC_DRAW)
	static := buffer.GetStaticIndexBuffer()
	require.NotNil(t, static)

	first, err := m.PrepareIndexData(gl.UNSIGNED_BYTE, 3, buffer, 3, nil)
	require.NoError(t, err)
	assert.Same(t, static.IndexBuffer(), first.IndexBuffer)
	assert.Equal(t, uint32(3), first.StartIndex)
	assert.Equal(t, uint32(12), static.BufferSize(), "the whole buffer is converted once")
	maps := r.indexMaps()

	second, err := m.PrepareIndexData(gl.UNSIGNED_BYTE, 3, buffer, 3, nil)
	require.NoError(t, err)
	assert.Equal(t, maps, r.indexMaps(), "a cached range must not be converted again")
	assert.Equal(t, first.StartOffset, second.StartOffset)
	assert.Equal(t, first.IndexRange, second.IndexRange)

	third, err := m.PrepareIndexData(gl.UNSIGNED_BYTE, 2, buffer, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, maps, r.indexMaps())
	assert.Equal(t, uint32(0), third.StartOffset)
}

func TestPrepareIndexDataStaticBufferTypeMismatchInvalidates(t *testing.T) {
	r := newFakeRenderer(false)
	m := NewIndexDataManager(r, 0)
	buffer := newIndexBuffer(t, r, ushorts(0, 1, 2, 3), gl.STATIC_DRAW)

	_, err := m.PrepareIndexData(gl.UNSIGNED_SHORT, 4, buffer, 0, nil)
	require.NoError(t, err)
	require.NotZero(t, buffer.GetStaticIndexBuffer().BufferSize())

	translated, err := m.PrepareIndexData(gl.UNSIGNED_BYTE, 4, buffer, 0, nil)
	require.NoError(t, err)
	assert.Nil(t, buffer.GetStaticIndexBuffer())
	assert.Equal(t, gl.UNSIGNED_SHORT, translated.IndexType)
}

func TestPrepareIndexDataOverflow(t *testing.T) {
	r := newFakeRenderer(false)
	m := NewIndexDataManager(r, 0)

	_, err := m.PrepareIndexData(gl.UNSIGNED_INT, 0x40000001, nil, 0, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrOutOfMemory))
}

func TestPrepareIndexDataOutOfBounds(t *testing.T) {
	r := newFakeRenderer(true)
	m := NewIndexDataManager(r, 0)
	buffer := newIndexBuffer(t, r, ushorts(0, 1), gl.DYNAMIC_DRAW)

	_, err := m.PrepareIndexData(gl.UNSIGNED_SHORT, 3, buffer, 0, nil)
	assert.True(t, errors.Is(err, core.ErrInvalidOperation))
}

func TestPrepareIndexDataStreamingDiscard(t *testing.T) {
	r := newFakeRenderer(false)
	m := NewIndexDataManager(r, 8)
	indices := ushorts(0, 1, 2)

	var offsets []uint32
	for i := 0; i < 3; i++ {
		translated, err := m.PrepareIndexData(gl.UNSIGNED_SHORT, 3, nil, 0, indices)
		require.NoError(t, err)
		offsets = append(offsets, translated.StartOffset)
	}
	ib := m.streamingBufferShort.IndexBuffer().(*fakeIndexBuffer)
	assert.Equal(t, uint32(8), ib.BufferSize())
	assert.Equal(t, []uint32{0, 0, 0}, offsets)
	assert.Equal(t, 2, ib.discards)
}

func TestPrepareIndexDataPromotesBuffer(t *testing.T) {
	r := newFakeRenderer(false)
	m := NewIndexDataManager(r, 0)
	buffer := newIndexBuffer(t, r, ushorts(0, 1, 2, 3), gl.DYNAMIC_DRAW)

	for i := 0; i < 3; i++ {
		_, err := m.PrepareIndexData(gl.UNSIGNED_SHORT, 4, buffer, 0, nil)
		require.NoError(t, err)
	}
	assert.Nil(t, buffer.GetStaticIndexBuffer())

	_, err := m.PrepareIndexData(gl.UNSIGNED_SHORT, 4, buffer, 0, nil)
	require.NoError(t, err)
	assert.NotNil(t, buffer.GetStaticIndexBuffer())
}

func TestStreamingIndexBufferGrowth(t *testing.T) {
	r := newFakeRenderer(false)
	ib := NewStreamingIndexBufferInterface(r)

	require.NoError(t, ib.ReserveBufferSpace(64, gl.UNSIGNED_SHORT))
	assert.Equal(t, uint32(64), ib.BufferSize())

	require.NoError(t, ib.ReserveBufferSpace(100, gl.UNSIGNED_SHORT))
	assert.Equal(t, uint32(128), ib.BufferSize())

	require.NoError(t, ib.ReserveBufferSpace(16, gl.UNSIGNED_INT))
	assert.Equal(t, uint32(256), ib.BufferSize())
	assert.Equal(t, gl.UNSIGNED_INT, ib.IndexType())
}

func TestIndexBufferMapOverflow(t *testing.T) {
	r := newFakeRenderer(false)
	ib := NewStreamingIndexBufferInterface(r)
	require.NoError(t, ib.ReserveBufferSpace(64, gl.UNSIGNED_SHORT))
	ib.writePosition = 0xFFFFFFF0

	_, _, err := ib.MapBuffer(32)
	assert.True(t, errors.Is(err, core.ErrOutOfMemory))
}

func TestStaticIndexBufferRejectsGrowth(t *testing.T) {
	r := newFakeRenderer(false)
	ib := NewStaticIndexBufferInterface(r)

	require.NoError(t, ib.ReserveBufferSpace(32, gl.UNSIGNED_SHORT))
	assert.NoError(t, ib.ReserveBufferSpace(16, gl.UNSIGNED_SHORT))
	assert.Panics(t, func() { _ = ib.ReserveBufferSpace(64, gl.UNSIGNED_SHORT) })
	assert.Panics(t, func() { _ = ib.ReserveBufferSpace(16, gl.UNSIGNED_INT) })
}

func TestConvertIndices(t *testing.T) {
	out := make([]byte, 8)
	ConvertIndices(gl.UNSIGNED_SHORT, gl.UNSIGNED_INT, ushorts(1, 0xFFFF), 2, out)
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(out))
	assert.Equal(t, uint32(0xFFFF), binary.LittleEndian.Uint32(out[4:]))

	out = make([]byte, 4)
	ConvertIndices(gl.UNSIGNED_BYTE, gl.UNSIGNED_SHORT, []byte{9, 200}, 2, out)
	assert.Equal(t, ushorts(9, 200), out)

	assert.Panics(t, func() { ConvertIndices(gl.UNSIGNED_INT, gl.UNSIGNED_SHORT, make([]byte, 4), 1, out) })
}

func TestIndexRangeCache(t *testing.T) {
	c := NewIndexRangeCache()
	r := metadata.IndexRange{Start: 1, End: 9, VertexIndexCount: 4}
	c.AddRange(gl.UNSIGNED_SHORT, 8, 4, r, 16)
	c.AddRange(gl.UNSIGNED_SHORT, 32, 4, r, 64)

	got, streamOffset, ok := c.FindRange(gl.UNSIGNED_SHORT, 8, 4)
	require.True(t, ok)
	assert.Equal(t, r, got)
	assert.Equal(t, uint32(16), streamOffset)

	_, _, ok = c.FindRange(gl.UNSIGNED_BYTE, 8, 4)
	assert.False(t, ok)

	c.InvalidateRange(14, 4)
	_, _, ok = c.FindRange(gl.UNSIGNED_SHORT, 8, 4)
	assert.False(t, ok)
	assert.Equal(t, 1, c.Len())

	c.InvalidateRange(16, 16)
	assert.Equal(t, 1, c.Len(), "adjacent ranges do not overlap")

	c.Clear()
	assert.Zero(t, c.Len())
}

func TestBindingTracker(t *testing.T) {
	var b BindingTracker
	assert.True(t, b.RenderTarget(5))
	assert.False(t, b.RenderTarget(5))
	assert.True(t, b.RenderTarget(6))

	data := &TranslatedIndexData{Serial: 3, StartOffset: 0, IndexType: gl.UNSIGNED_SHORT}
	assert.True(t, b.IndexBuffer(data))
	assert.False(t, b.IndexBuffer(data))
	data.StartOffset = 16
	assert.True(t, b.IndexBuffer(data))

	b.Reset()
	assert.True(t, b.RenderTarget(6))
}
