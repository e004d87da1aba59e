package d3d

import (
	"github.com/spaghettifunk/gles/engine/core"
	"github.com/spaghettifunk/gles/engine/renderer/gl"
	"github.com/spaghettifunk/gles/engine/renderer/metadata"
)

// StorageState tracks a texture's native storage. Storage is created lazily
// (None -> Bound), destroyed when an image redefinition disagrees with it
// (Bound -> Invalidated) and recreated on next use (Invalidated -> Bound).
type StorageState int

const (
	StorageNone StorageState = iota
	StorageBound
	StorageInvalidated
)

func (s StorageState) String() string {
	switch s {
	case StorageNone:
		return "none"
	case StorageBound:
		return "bound"
	case StorageInvalidated:
		return "invalidated"
	}
	return "unknown"
}

// Texture is the part of every texture variant the front-end drives.
type Texture interface {
	Type() metadata.TextureType
	MipLevels() int
	IsLevelComplete(level int) bool
	GenerateMipmaps() error
	EnsureRenderTarget() error
	StorageState() StorageState
	Release()
}

// textureImages is implemented by each texture variant over its own image
// array.
type textureImages interface {
	textureType() metadata.TextureType
	image(index metadata.ImageIndex) *Image
	imageIndex(mip, layer int) metadata.ImageIndex
	layerCount(level int) int
	// mipExtents is the base size that determines the mip chain length.
	mipExtents() metadata.Extents
	// storageExtents is the shape a storage built from the current base level
	// has at level.
	storageExtents(level int) metadata.Extents
	redefineImage(index metadata.ImageIndex, format gl.GLenum, size metadata.Extents)
	isLevelComplete(level int) bool
	isImageComplete(index metadata.ImageIndex) bool
	initMipmapImages()
	createStorage(renderTarget bool, format gl.GLenum, base metadata.Extents, levels int) (TextureStorage, error)
	forEachImage(fn func(*Image))
	releaseImages()
}

// TextureD3D holds what all texture variants share: the lazily created
// storage, its state and the flush logic from images to storage.
type TextureD3D struct {
	renderer    RendererD3D
	images      textureImages
	storage     TextureStorage
	state       StorageState
	immutable   bool
	dirtyImages bool
	usage       metadata.TextureUsage
}

func (t *TextureD3D) Type() metadata.TextureType {
	return t.images.textureType()
}

func (t *TextureD3D) StorageState() StorageState {
	return t.state
}

func (t *TextureD3D) Storage() TextureStorage {
	return t.storage
}

// NativeStorage returns the storage a draw should sample from, creating it
// and flushing pending image data first. It is nil while level 0 is
// incomplete.
func (t *TextureD3D) NativeStorage() (TextureStorage, error) {
	if err := t.InitializeStorage(false); err != nil {
		return nil, err
	}
	return t.storage, nil
}

func (t *TextureD3D) IsImmutable() bool {
	return t.immutable
}

// SetUsage records a usage hint. Framebuffer-attachment textures get render
// target storage from the start.
func (t *TextureD3D) SetUsage(usage metadata.TextureUsage) {
	t.usage = usage
}

func (t *TextureD3D) baseImage() *Image {
	return t.images.image(t.images.imageIndex(0, 0))
}

func (t *TextureD3D) baseFormat() gl.GLenum {
	if img := t.baseImage(); img != nil {
		return img.InternalFormat()
	}
	return gl.NONE
}

// MipLevels is the length of a full mip chain for the base level.
func (t *TextureD3D) MipLevels() int {
	e := t.images.mipExtents()
	return gl.Log2(max(e.Width, e.Height, e.Depth)) + 1
}

func (t *TextureD3D) creationLevels(e metadata.Extents) int {
	if (gl.IsPow2(e.Width) && gl.IsPow2(e.Height) && gl.IsPow2(e.Depth)) || t.renderer.Caps().TextureNPOT {
		return gl.Log2(max(e.Width, e.Height, e.Depth)) + 1
	}
	// Without NPOT support a non-power-of-two texture has a single level.
	return 1
}

func (t *TextureD3D) IsLevelComplete(level int) bool {
	if t.immutable {
		return true
	}
	return t.images.isLevelComplete(level)
}

func (t *TextureD3D) isImageComplete(index metadata.ImageIndex) bool {
	if t.immutable {
		return true
	}
	return t.images.isImageComplete(index)
}

func (t *TextureD3D) isValidLevel(level int) bool {
	return t.storage != nil && level >= 0 && level < t.storage.LevelCount()
}

func (t *TextureD3D) isBaseImageZeroSize() bool {
	img := t.baseImage()
	return img == nil || img.Extents().Empty()
}

// redefine applies a new format and size to one image and tears the storage
// down if it no longer matches.
func (t *TextureD3D) redefine(index metadata.ImageIndex, format gl.GLenum, size metadata.Extents) {
	expected := t.images.storageExtents(index.MipIndex)
	storageFormat := t.baseFormat()

	t.images.redefineImage(index, format, size)

	if t.storage != nil {
		levels := t.storage.LevelCount()
		if (index.MipIndex >= levels && levels != 0) || size != expected || format != storageFormat {
			t.invalidateStorage()
		}
	}
}

func (t *TextureD3D) invalidateStorage() {
	t.images.forEachImage(func(img *Image) { img.MarkDirty() })
	t.storage.Release()
	t.storage = nil
	t.state = StorageInvalidated
	t.dirtyImages = true
	core.LogDebug("%s texture: storage invalidated by image redefinition", t.Type())
}

func (t *TextureD3D) setCompleteStorage(storage TextureStorage) {
	if t.storage != nil {
		t.storage.Release()
	}
	t.storage = storage
	t.state = StorageBound
	t.dirtyImages = true
}

func (t *TextureD3D) createCompleteStorage(renderTarget bool) (TextureStorage, error) {
	base := t.images.storageExtents(0)
	levels := t.creationLevels(t.images.mipExtents())
	if t.storage != nil {
		levels = t.storage.LevelCount()
	}
	return t.images.createStorage(renderTarget, t.baseFormat(), base, levels)
}

// InitializeStorage creates the native storage once level 0 is complete and
// flushes every dirty, complete image into it. When the storage already
// exists only the flush runs.
func (t *TextureD3D) InitializeStorage(renderTarget bool) error {
	if t.storage != nil {
		if t.dirtyImages {
			return t.UpdateStorage()
		}
		return nil
	}
	if !t.IsLevelComplete(0) {
		return nil
	}
	storage, err := t.createCompleteStorage(renderTarget || t.usage == metadata.TextureUsageFramebufferAttachment)
	if err != nil {
		return err
	}
	t.setCompleteStorage(storage)
	return t.UpdateStorage()
}

// UpdateStorage uploads dirty images of complete levels.
func (t *TextureD3D) UpdateStorage() error {
	if t.storage == nil {
		return nil
	}
	levels := t.storage.LevelCount()
	for level := 0; level < levels; level++ {
		for layer := 0; layer < t.images.layerCount(level); layer++ {
			if err := t.updateStorageImage(t.images.imageIndex(level, layer)); err != nil {
				return err
			}
		}
	}
	t.dirtyImages = false
	return nil
}

func (t *TextureD3D) updateStorageImage(index metadata.ImageIndex) error {
	img := t.images.image(index)
	if img == nil || !img.IsDirty() || !t.isImageComplete(index) {
		return nil
	}
	if err := t.storage.SetData(index, img); err != nil {
		return err
	}
	img.MarkClean()
	return nil
}

func (t *TextureD3D) updateStorageLevel(level int) error {
	for layer := 0; layer < t.images.layerCount(level); layer++ {
		if err := t.updateStorageImage(t.images.imageIndex(level, layer)); err != nil {
			return err
		}
	}
	return nil
}

// setImage redefines one image and loads pixels into it. pixels may be nil.
func (t *TextureD3D) setImage(index metadata.ImageIndex, format gl.GLenum, size metadata.Extents, pixels []byte) error {
	if t.immutable {
		return core.InvalidOperation("cannot redefine an image of an immutable texture")
	}
	info, ok := gl.GetInternalFormatInfo(format)
	if !ok {
		return core.InvalidOperation("unknown internal format %#x", uint32(format))
	}
	if pixels != nil && !size.Empty() {
		required := size.Width * size.Height * size.Depth * int(info.PixelBytes)
		if len(pixels) < required {
			return core.InvalidOperation("pixel data holds %d bytes, %d required", len(pixels), required)
		}
	}

	t.redefine(index, format, size)
	if pixels == nil || size.Empty() {
		return nil
	}
	img := t.images.image(index)
	if err := img.LoadData(metadata.Box{Width: size.Width, Height: size.Height, Depth: size.Depth}, pixels); err != nil {
		return err
	}
	return t.commitOrDefer(index, img)
}

func (t *TextureD3D) subImage(index metadata.ImageIndex, box metadata.Box, pixels []byte) error {
	if box.Empty() {
		return nil
	}
	img := t.images.image(index)
	if img == nil {
		return core.InvalidOperation("no image at level %d layer %d", index.MipIndex, index.LayerIndex)
	}
	if err := img.LoadData(box, pixels); err != nil {
		return err
	}
	return t.commitOrDefer(index, img)
}

func (t *TextureD3D) commitOrDefer(index metadata.ImageIndex, img *Image) error {
	if t.isValidLevel(index.MipIndex) && t.isImageComplete(index) {
		if err := t.storage.SetData(index, img); err != nil {
			return err
		}
		img.MarkClean()
		return nil
	}
	t.dirtyImages = true
	return nil
}

// setStorage replaces the images with an immutable mip chain backed by
// storage, which the caller has already created.
func (t *TextureD3D) setStorage(storage TextureStorage, redefineLevels func()) {
	if t.storage != nil {
		t.storage.Release()
		t.storage = nil
	}
	redefineLevels()
	t.immutable = true
	t.setCompleteStorage(storage)
}

// GenerateMipmaps rebuilds levels 1..MipLevels-1 from level 0, on the device
// when the storage is a render target and on the CPU otherwise.
func (t *TextureD3D) GenerateMipmaps() error {
	mipCount := t.MipLevels()
	if mipCount == 1 || t.isBaseImageZeroSize() {
		return nil
	}
	t.images.initMipmapImages()

	layers := t.images.layerCount(0)
	if t.storage != nil {
		if t.storage.IsRenderTarget() {
			if err := t.UpdateStorage(); err != nil {
				return err
			}
		} else if t.renderer.Workarounds().SetDataFasterThanImageUpload {
			// Level 0 may only live in the storage.
			for layer := 0; layer < layers; layer++ {
				index := t.images.imageIndex(0, layer)
				if err := t.storage.ReadData(index, t.images.image(index)); err != nil {
					return err
				}
			}
		}
	}

	renderable := t.storage != nil && t.storage.IsRenderTarget() && t.storage.LevelCount() >= mipCount
	for layer := 0; layer < layers; layer++ {
		for mip := 1; mip < mipCount; mip++ {
			src := t.images.imageIndex(mip-1, layer)
			dst := t.images.imageIndex(mip, layer)
			if renderable {
				if err := t.storage.GenerateMipmap(src, dst); err != nil {
					return err
				}
				continue
			}
			if err := GenerateMipmap(t.images.image(dst), t.images.image(src)); err != nil {
				return err
			}
		}
	}
	if !renderable {
		t.dirtyImages = true
	}
	return nil
}

// EnsureRenderTarget makes sure the storage can be rendered to, copying the
// existing storage into a new render target storage if needed.
func (t *TextureD3D) EnsureRenderTarget() error {
	if err := t.InitializeStorage(true); err != nil {
		return err
	}
	if t.isBaseImageZeroSize() || t.storage == nil {
		return nil
	}
	if !t.storage.IsRenderTarget() {
		renderTargetStorage, err := t.createCompleteStorage(true)
		if err != nil {
			return err
		}
		if err := t.storage.CopyToStorage(renderTargetStorage); err != nil {
			renderTargetStorage.Release()
			return err
		}
		t.setCompleteStorage(renderTargetStorage)
	}
	return t.UpdateStorage()
}

func (t *TextureD3D) getRenderTarget(index metadata.ImageIndex) (RenderTarget, error) {
	if err := t.EnsureRenderTarget(); err != nil {
		return nil, err
	}
	if t.storage == nil {
		return nil, core.InvalidOperation("%s texture has no storage to render to", t.Type())
	}
	if err := t.updateStorageLevel(index.MipIndex); err != nil {
		return nil, err
	}
	return t.storage.RenderTarget(index)
}

// RenderTargetSerial returns the serial of the render target at index, or zero
// when the texture cannot be rendered to.
func (t *TextureD3D) RenderTargetSerial(index metadata.ImageIndex) core.Serial {
	if err := t.EnsureRenderTarget(); err != nil || t.storage == nil {
		return 0
	}
	return t.storage.RenderTargetSerial(index)
}

// Release drops the images before the storage they may reference.
func (t *TextureD3D) Release() {
	t.images.releaseImages()
	if t.storage != nil {
		t.storage.Release()
		t.storage = nil
	}
	t.state = StorageNone
}
