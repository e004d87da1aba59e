package d3d

import (
	"github.com/spaghettifunk/gles/engine/core"
	"github.com/spaghettifunk/gles/engine/renderer/gl"
	"github.com/spaghettifunk/gles/engine/renderer/metadata"
)

// Texture2DArray keeps one 2D image per layer per level. All layers of a
// level share a format and size.
type Texture2DArray struct {
	TextureD3D
	imageArray [metadata.MaxTextureLevels][]*Image
}

func NewTexture2DArray(renderer RendererD3D) *Texture2DArray {
	t := &Texture2DArray{}
	t.TextureD3D = TextureD3D{renderer: renderer, images: t}
	return t
}

func (t *Texture2DArray) textureType() metadata.TextureType {
	return metadata.TextureType2dArray
}

func (t *Texture2DArray) image(index metadata.ImageIndex) *Image {
	if index.MipIndex < 0 || index.MipIndex >= len(t.imageArray) {
		return nil
	}
	layers := t.imageArray[index.MipIndex]
	if index.LayerIndex < 0 || index.LayerIndex >= len(layers) {
		return nil
	}
	return layers[index.LayerIndex]
}

func (t *Texture2DArray) imageIndex(mip, layer int) metadata.ImageIndex {
	return metadata.MakeImageIndex2DArray(mip, layer)
}

func (t *Texture2DArray) layerCount(level int) int {
	if level < 0 || level >= len(t.imageArray) {
		return 0
	}
	return len(t.imageArray[level])
}

func (t *Texture2DArray) levelExtents(level int) metadata.Extents {
	if t.layerCount(level) == 0 {
		return metadata.Extents{}
	}
	e := t.imageArray[level][0].Extents()
	return metadata.Extents{Width: e.Width, Height: e.Height, Depth: t.layerCount(level)}
}

func (t *Texture2DArray) mipExtents() metadata.Extents {
	e := t.levelExtents(0)
	return metadata.Extents{Width: e.Width, Height: e.Height, Depth: 1}
}

func (t *Texture2DArray) storageExtents(level int) metadata.Extents {
	e := t.mipExtents().MipExtents(level)
	e.Depth = t.layerCount(0)
	return e
}

// redefineImage resizes the layer list of a level; size.Depth is the layer
// count.
func (t *Texture2DArray) redefineImage(index metadata.ImageIndex, format gl.GLenum, size metadata.Extents) {
	layers := t.imageArray[index.MipIndex]
	count := size.Depth
	if size.Width <= 0 || size.Height <= 0 {
		count = 0
	}
	if len(layers) > count {
		layers = layers[:count]
	}
	for len(layers) < count {
		layers = append(layers, NewImage())
	}
	for _, img := range layers {
		img.Redefine(format, metadata.Extents{Width: size.Width, Height: size.Height, Depth: 1})
	}
	t.imageArray[index.MipIndex] = layers
}

func (t *Texture2DArray) isLevelComplete(level int) bool {
	base := t.levelExtents(0)
	if base.Empty() {
		return false
	}
	if level == 0 {
		return true
	}
	if t.layerCount(level) == 0 {
		return false
	}
	e := t.levelExtents(level)
	return t.imageArray[level][0].InternalFormat() == t.baseFormat() &&
		e.Width == max(1, base.Width>>level) &&
		e.Height == max(1, base.Height>>level) &&
		e.Depth == base.Depth
}

func (t *Texture2DArray) isImageComplete(index metadata.ImageIndex) bool {
	return t.isLevelComplete(index.MipIndex)
}

func (t *Texture2DArray) initMipmapImages() {
	levels := t.MipLevels()
	base := t.levelExtents(0)
	for level := 1; level < levels; level++ {
		size := base.MipExtents(level)
		size.Depth = base.Depth
		t.redefine(t.imageIndex(level, 0), t.baseFormat(), size)
	}
}

func (t *Texture2DArray) createStorage(renderTarget bool, format gl.GLenum, base metadata.Extents, levels int) (TextureStorage, error) {
	return t.renderer.CreateTextureStorage2DArray(format, renderTarget, base.Width, base.Height, base.Depth, levels)
}

func (t *Texture2DArray) forEachImage(fn func(*Image)) {
	for _, layers := range t.imageArray {
		for _, img := range layers {
			fn(img)
		}
	}
}

func (t *Texture2DArray) releaseImages() {
	for i := range t.imageArray {
		t.imageArray[i] = nil
	}
}

// SetImage defines every layer of level. pixels holds the layers back to back.
func (t *Texture2DArray) SetImage(level int, internalFormat gl.GLenum, width, height, layers int, pixels []byte) error {
	if t.immutable {
		return core.InvalidOperation("cannot redefine an image of an immutable texture")
	}
	if level < 0 || level >= len(t.imageArray) {
		return core.InvalidOperation("mip level %d out of range", level)
	}
	info, ok := gl.GetInternalFormatInfo(internalFormat)
	if !ok {
		return core.InvalidOperation("unknown internal format %#x", uint32(internalFormat))
	}
	layerBytes := width * height * int(info.PixelBytes)
	if pixels != nil && len(pixels) < layerBytes*layers {
		return core.InvalidOperation("pixel data holds %d bytes, %d required", len(pixels), layerBytes*layers)
	}

	t.redefine(t.imageIndex(level, 0), internalFormat, metadata.Extents{Width: width, Height: height, Depth: layers})
	if pixels == nil || layerBytes == 0 {
		return nil
	}
	for layer := 0; layer < layers; layer++ {
		index := t.imageIndex(level, layer)
		img := t.image(index)
		if err := img.LoadData(metadata.Box{Width: width, Height: height, Depth: 1}, pixels[layer*layerBytes:]); err != nil {
			return err
		}
		if err := t.commitOrDefer(index, img); err != nil {
			return err
		}
	}
	return nil
}

// SubImage updates box, whose Z and Depth select layers.
func (t *Texture2DArray) SubImage(level int, box metadata.Box, pixels []byte) error {
	if box.Empty() {
		return nil
	}
	img := t.image(t.imageIndex(level, box.Z))
	if img == nil || box.Z+box.Depth > t.layerCount(level) {
		return core.InvalidOperation("layers [%d, %d) out of range", box.Z, box.Z+box.Depth)
	}
	info, _ := gl.GetInternalFormatInfo(img.InternalFormat())
	layerBytes := box.Width * box.Height * int(info.PixelBytes)
	for i := 0; i < box.Depth; i++ {
		layerBox := metadata.Box{X: box.X, Y: box.Y, Width: box.Width, Height: box.Height, Depth: 1}
		if len(pixels) < (i+1)*layerBytes {
			return core.InvalidOperation("pixel data holds %d bytes, %d required", len(pixels), box.Depth*layerBytes)
		}
		if err := t.subImage(t.imageIndex(level, box.Z+i), layerBox, pixels[i*layerBytes:]); err != nil {
			return err
		}
	}
	return nil
}

func (t *Texture2DArray) SetStorage(levels int, internalFormat gl.GLenum, width, height, layers int) error {
	if levels <= 0 || levels > len(t.imageArray) {
		return core.InvalidOperation("invalid level count %d", levels)
	}
	renderTarget := t.usage == metadata.TextureUsageFramebufferAttachment
	storage, err := t.renderer.CreateTextureStorage2DArray(internalFormat, renderTarget, width, height, layers, levels)
	if err != nil {
		return err
	}
	base := metadata.Extents{Width: width, Height: height, Depth: 1}
	t.setStorage(storage, func() {
		for level := range t.imageArray {
			if level < levels {
				size := base.MipExtents(level)
				size.Depth = layers
				t.redefineImage(t.imageIndex(level, 0), internalFormat, size)
			} else {
				t.redefineImage(t.imageIndex(level, 0), gl.NONE, metadata.Extents{})
			}
		}
	})
	return nil
}

func (t *Texture2DArray) GetRenderTarget(level, layer int) (RenderTarget, error) {
	return t.getRenderTarget(t.imageIndex(level, layer))
}
