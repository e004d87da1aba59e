package d3d

import (
	"errors"
	"testing"

	"github.com/spaghettifunk/gles/engine/core"
	"github.com/spaghettifunk/gles/engine/renderer/gl"
	"github.com/spaghettifunk/gles/engine/renderer/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferSetData(t *testing.T) {
	r := newFakeRenderer(true)
	b := NewBuffer(r, 0)
	before := b.Serial()

	require.NoError(t, b.SetData([]byte{1, 2, 3, 4}, 4, gl.DYNAMIC_DRAW))
	assert.NotEqual(t, before, b.Serial())
	assert.Equal(t, uint32(4), b.Size())
	assert.Equal(t, gl.DYNAMIC_DRAW, b.Usage())
	assert.Nil(t, b.GetStaticVertexBuffer())

	data, err := b.GetData()
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4}, data)

	err = b.SetData([]byte{1}, 4, gl.DYNAMIC_DRAW)
	assert.True(t, errors.Is(err, core.ErrInvalidOperation))
}

func TestBufferStaticDrawCreatesCaches(t *testing.T) {
	r := newFakeRenderer(false)
	b := NewBuffer(r, 0)

	require.NoError(t, b.SetData(make([]byte, 16), 16, gl.STATIC_DRAW))
	assert.NotNil(t, b.GetStaticVertexBuffer())
	assert.NotNil(t, b.GetStaticIndexBuffer())
}

func TestBufferSubDataGrowsAndInvalidates(t *testing.T) {
	r := newFakeRenderer(false)
	b := NewBuffer(r, 0)
	require.NoError(t, b.SetData([]byte{1, 2, 3, 4}, 4, gl.DYNAMIC_DRAW))
	b.IndexRangeCache().AddRange(gl.UNSIGNED_SHORT, 0, 2, metadata.IndexRange{Start: 1, End: 2, VertexIndexCount: 2}, 0)
	serial := b.Serial()

	require.NoError(t, b.SetSubData([]byte{9, 9, 9}, 3))
	assert.Equal(t, uint32(6), b.Size())
	assert.NotEqual(t, serial, b.Serial())
	assert.Zero(t, b.IndexRangeCache().Len())

	data, err := b.GetData()
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 9, 9, 9}, data)
}

func TestBufferCopySubData(t *testing.T) {
	r := newFakeRenderer(false)
	src := NewBuffer(r, 0)
	dst := NewBuffer(r, 0)
	require.NoError(t, src.SetData([]byte{1, 2, 3, 4}, 4, gl.DYNAMIC_DRAW))
	require.NoError(t, dst.SetData(make([]byte, 4), 4, gl.DYNAMIC_DRAW))

	require.NoError(t, dst.CopySubData(src, 1, 2, 2))
	data, err := dst.GetData()
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 2, 3}, data)

	err = dst.CopySubData(src, 3, 0, 2)
	assert.True(t, errors.Is(err, core.ErrInvalidOperation))
}

func TestBufferMapRange(t *testing.T) {
	r := newFakeRenderer(false)
	b := NewBuffer(r, 0)
	require.NoError(t, b.SetData([]byte{0, 1, 2, 3}, 4, gl.DYNAMIC_DRAW))

	_, err := b.MapRange(2, 4, gl.MAP_WRITE_BIT)
	assert.True(t, errors.Is(err, core.ErrInvalidOperation))

	mem, err := b.MapRange(2, 2, gl.MAP_WRITE_BIT)
	require.NoError(t, err)
	assert.True(t, b.Mapped())
	mem[0] = 7

	_, err = b.MapRange(0, 1, gl.MAP_READ_BIT)
	assert.True(t, errors.Is(err, core.ErrInvalidOperation), "double map")

	serial := b.Serial()
	require.NoError(t, b.Unmap())
	assert.NotEqual(t, serial, b.Serial())
	assert.Error(t, b.Unmap())

	data, err := b.GetData()
	require.NoError(t, err)
	assert.Equal(t, byte(7), data[2])
}

func TestBufferPromotionThreshold(t *testing.T) {
	r := newFakeRenderer(false)
	b := NewBuffer(r, 2)
	require.NoError(t, b.SetData(make([]byte, 100), 100, gl.DYNAMIC_DRAW))

	b.PromoteStaticUsage(100)
	b.PromoteStaticUsage(100)
	assert.Nil(t, b.GetStaticVertexBuffer())
	assert.Equal(t, uint64(200), b.UnmodifiedDataUse())

	b.PromoteStaticUsage(1)
	assert.NotNil(t, b.GetStaticVertexBuffer())
	assert.NotNil(t, b.GetStaticIndexBuffer())
}

func TestBufferPromoteThenInvalidate(t *testing.T) {
	r := newFakeRenderer(false)
	m := NewIndexDataManager(r, 0)
	b := NewBuffer(r, 0)
	require.NoError(t, b.SetData(ushorts(0, 1, 2, 3), 8, gl.DYNAMIC_DRAW))

	for b.GetStaticIndexBuffer() == nil {
		_, err := m.PrepareIndexData(gl.UNSIGNED_SHORT, 4, b, 0, nil)
		require.NoError(t, err)
	}

	// Empty caches survive an invalidation, only the counter restarts.
	b.InvalidateStaticData()
	require.NotNil(t, b.GetStaticIndexBuffer())
	assert.Zero(t, b.UnmodifiedDataUse())

	translated, err := m.PrepareIndexData(gl.UNSIGNED_SHORT, 4, b, 0, nil)
	require.NoError(t, err)
	static := b.GetStaticIndexBuffer()
	require.NotNil(t, static)
	assert.Same(t, static.IndexBuffer(), translated.IndexBuffer)
	native := static.IndexBuffer().(*fakeIndexBuffer)

	require.NoError(t, b.SetSubData(ushorts(5), 0))
	assert.Nil(t, b.GetStaticIndexBuffer())
	assert.Nil(t, b.GetStaticVertexBuffer())
	assert.True(t, native.released)
	assert.Zero(t, b.UnmodifiedDataUse())
}

func TestBufferRelease(t *testing.T) {
	r := newFakeRenderer(false)
	b := NewBuffer(r, 0)
	require.NoError(t, b.SetData(make([]byte, 8), 8, gl.STATIC_DRAW))
	storage := b.storage.(*fakeBufferStorage)
	static := b.GetStaticIndexBuffer().IndexBuffer().(*fakeIndexBuffer)

	b.Release()
	assert.True(t, storage.released)
	assert.True(t, static.released)
}
