package native

// TextureDesc describes a texture allocation. A cube texture is a 2D array
// of six layers.
type TextureDesc struct {
	Width      int
	Height     int
	Depth      int
	ArraySize  int
	MipLevels  int
	Format     uint32
	PixelBytes uint32
	Samples    int
	Bind       BindFlags
}

// Texture holds one byte slice per (layer, level) subresource.
type Texture struct {
	device       *Device
	handle       uint64
	desc         TextureDesc
	subresources [][]byte
	total        uint64
	released     bool
}

func (t *Texture) id() uint64         { return t.handle }
func (t *Texture) kind() ResourceKind { return KindTexture }
func (t *Texture) bytes() uint64      { return t.total }
func (t *Texture) markReleased()      { t.released = true }

func (t *Texture) Handle() uint64 {
	return t.handle
}

func (t *Texture) Desc() TextureDesc {
	return t.desc
}

func (t *Texture) Released() bool {
	return t.released
}

// SubresourceIndex follows the D3D11 layout: level + layer * levels.
func (t *Texture) SubresourceIndex(level, layer int) int {
	return level + layer*t.desc.MipLevels
}

func levelSize(desc TextureDesc, level int) uint64 {
	w := max(1, desc.Width>>level)
	h := max(1, desc.Height>>level)
	d := max(1, desc.Depth>>level)
	return uint64(w) * uint64(h) * uint64(d) * uint64(desc.PixelBytes) * uint64(max(1, desc.Samples))
}

func (d *Device) CreateTexture(desc TextureDesc) (*Texture, Result) {
	if desc.Width <= 0 || desc.Height <= 0 || desc.PixelBytes == 0 {
		return nil, E_INVALIDARG
	}
	if desc.Depth <= 0 {
		desc.Depth = 1
	}
	if desc.ArraySize <= 0 {
		desc.ArraySize = 1
	}
	if desc.MipLevels <= 0 {
		desc.MipLevels = 1
	}

	var total uint64
	for level := 0; level < desc.MipLevels; level++ {
		total += levelSize(desc, level) * uint64(desc.ArraySize)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	id, res := d.reserve(KindTexture, total)
	if res.Failed() {
		return nil, res
	}
	t := &Texture{device: d, handle: id, desc: desc, total: total}
	t.subresources = make([][]byte, desc.MipLevels*desc.ArraySize)
	for layer := 0; layer < desc.ArraySize; layer++ {
		for level := 0; level < desc.MipLevels; level++ {
			t.subresources[t.SubresourceIndex(level, layer)] = make([]byte, levelSize(desc, level))
		}
	}
	d.track(t)
	return t, S_OK
}

// Subresource returns the bytes of one level of one layer.
func (t *Texture) Subresource(level, layer int) ([]byte, Result) {
	if t.released {
		return nil, E_FAIL
	}
	if level < 0 || level >= t.desc.MipLevels || layer < 0 || layer >= t.desc.ArraySize {
		return nil, E_INVALIDARG
	}
	return t.subresources[t.SubresourceIndex(level, layer)], S_OK
}

// UpdateSubresource overwrites one subresource with data, truncating to its size.
func (t *Texture) UpdateSubresource(level, layer int, data []byte) Result {
	dst, res := t.Subresource(level, layer)
	if res.Failed() {
		return res
	}
	copy(dst, data)
	return S_OK
}

// CopySubresource copies a matching subresource from src.
func (t *Texture) CopySubresource(level, layer int, src *Texture, srcLevel, srcLayer int) Result {
	dst, res := t.Subresource(level, layer)
	if res.Failed() {
		return res
	}
	from, res := src.Subresource(srcLevel, srcLayer)
	if res.Failed() {
		return res
	}
	copy(dst, from)
	t.device.mu.Lock()
	t.device.stats.Copies++
	t.device.mu.Unlock()
	return S_OK
}

func (t *Texture) Release() {
	t.device.release(t)
}
