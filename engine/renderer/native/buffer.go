package native

// Buffer is a linear native allocation.
type Buffer struct {
	device   *Device
	handle   uint64
	bind     BindFlags
	data     []byte
	mapped   bool
	released bool
}

func (b *Buffer) id() uint64         { return b.handle }
func (b *Buffer) kind() ResourceKind { return KindBuffer }
func (b *Buffer) bytes() uint64      { return uint64(len(b.data)) }
func (b *Buffer) markReleased()      { b.released = true }

// Handle is the native identity of the buffer.
func (b *Buffer) Handle() uint64 {
	return b.handle
}

func (b *Buffer) Size() uint32 {
	return uint32(len(b.data))
}

func (b *Buffer) Bind() BindFlags {
	return b.bind
}

func (b *Buffer) Released() bool {
	return b.released
}

// CreateBuffer allocates size zeroed bytes.
func (d *Device) CreateBuffer(size uint32, bind BindFlags) (*Buffer, Result) {
	if size == 0 {
		return nil, E_INVALIDARG
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	id, res := d.reserve(KindBuffer, uint64(size))
	if res.Failed() {
		return nil, res
	}
	b := &Buffer{device: d, handle: id, bind: bind, data: make([]byte, size)}
	d.track(b)
	return b, S_OK
}

// Map exposes size bytes at offset for CPU access until Unmap.
func (b *Buffer) Map(offset, size uint32) ([]byte, Result) {
	if b.released {
		return nil, E_FAIL
	}
	if uint64(offset)+uint64(size) > uint64(len(b.data)) {
		return nil, E_INVALIDARG
	}
	b.device.mu.Lock()
	b.device.stats.Maps++
	b.device.mu.Unlock()
	b.mapped = true
	return b.data[offset : offset+size], S_OK
}

func (b *Buffer) Unmap() {
	b.mapped = false
}

func (b *Buffer) Mapped() bool {
	return b.mapped
}

// Discard orphans the contents. The next writer sees a buffer whose previous
// contents are undefined; the software device keeps them.
func (b *Buffer) Discard() Result {
	if b.released {
		return E_FAIL
	}
	b.device.mu.Lock()
	b.device.stats.Discards++
	b.device.mu.Unlock()
	return S_OK
}

// CopyRegion copies size bytes from src at srcOffset to b at dstOffset.
func (b *Buffer) CopyRegion(src *Buffer, srcOffset, dstOffset, size uint32) Result {
	if b.released || src.released {
		return E_FAIL
	}
	if uint64(srcOffset)+uint64(size) > uint64(len(src.data)) || uint64(dstOffset)+uint64(size) > uint64(len(b.data)) {
		return E_INVALIDARG
	}
	copy(b.data[dstOffset:dstOffset+size], src.data[srcOffset:srcOffset+size])
	b.device.mu.Lock()
	b.device.stats.Copies++
	b.device.mu.Unlock()
	return S_OK
}

func (b *Buffer) Release() {
	b.device.release(b)
}
