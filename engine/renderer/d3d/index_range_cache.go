package d3d

import (
	"github.com/spaghettifunk/gles/engine/renderer/gl"
	"github.com/spaghettifunk/gles/engine/renderer/metadata"
)

type indexRangeKey struct {
	indexType gl.GLenum
	offset    uint32
	count     uint32
}

type indexRangeEntry struct {
	indexRange   metadata.IndexRange
	streamOffset uint32
}

// IndexRangeCache remembers the vertex range and output offset of index
// draws that were already translated, keyed by (type, byte offset, count).
type IndexRangeCache struct {
	entries map[indexRangeKey]indexRangeEntry
}

func NewIndexRangeCache() *IndexRangeCache {
	return &IndexRangeCache{entries: make(map[indexRangeKey]indexRangeEntry)}
}

func (c *IndexRangeCache) AddRange(indexType gl.GLenum, offset, count uint32, r metadata.IndexRange, streamOffset uint32) {
	c.entries[indexRangeKey{indexType, offset, count}] = indexRangeEntry{indexRange: r, streamOffset: streamOffset}
}

func (c *IndexRangeCache) FindRange(indexType gl.GLenum, offset, count uint32) (metadata.IndexRange, uint32, bool) {
	e, ok := c.entries[indexRangeKey{indexType, offset, count}]
	if !ok {
		return metadata.IndexRange{}, 0, false
	}
	return e.indexRange, e.streamOffset, true
}

// InvalidateRange drops every entry whose source bytes overlap
// [offset, offset+size).
func (c *IndexRangeCache) InvalidateRange(offset, size uint32) {
	dirty := metadata.MemoryRange{Offset: uint64(offset), Size: uint64(size)}
	for key := range c.entries {
		used := metadata.MemoryRange{
			Offset: uint64(key.offset),
			Size:   uint64(gl.ElementSize(key.indexType)) * uint64(key.count),
		}
		if used.Overlaps(dirty) {
			delete(c.entries, key)
		}
	}
}

func (c *IndexRangeCache) Clear() {
	clear(c.entries)
}

func (c *IndexRangeCache) Len() int {
	return len(c.entries)
}
