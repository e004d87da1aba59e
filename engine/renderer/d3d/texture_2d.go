package d3d

import (
	"github.com/spaghettifunk/gles/engine/core"
	"github.com/spaghettifunk/gles/engine/renderer/gl"
	"github.com/spaghettifunk/gles/engine/renderer/metadata"
)

type Texture2D struct {
	TextureD3D
	imageArray [metadata.MaxTextureLevels]*Image
}

func NewTexture2D(renderer RendererD3D) *Texture2D {
	t := &Texture2D{}
	t.TextureD3D = TextureD3D{renderer: renderer, images: t}
	for i := range t.imageArray {
		t.imageArray[i] = NewImage()
	}
	return t
}

func (t *Texture2D) textureType() metadata.TextureType {
	return metadata.TextureType2d
}

func (t *Texture2D) image(index metadata.ImageIndex) *Image {
	if index.MipIndex < 0 || index.MipIndex >= len(t.imageArray) {
		return nil
	}
	return t.imageArray[index.MipIndex]
}

func (t *Texture2D) imageIndex(mip, _ int) metadata.ImageIndex {
	return metadata.MakeImageIndex2D(mip)
}

func (t *Texture2D) layerCount(int) int {
	return 1
}

func (t *Texture2D) mipExtents() metadata.Extents {
	e := t.imageArray[0].Extents()
	return metadata.Extents{Width: e.Width, Height: e.Height, Depth: 1}
}

func (t *Texture2D) storageExtents(level int) metadata.Extents {
	return t.mipExtents().MipExtents(level)
}

func (t *Texture2D) redefineImage(index metadata.ImageIndex, format gl.GLenum, size metadata.Extents) {
	t.imageArray[index.MipIndex].Redefine(format, size)
}

// isLevelComplete checks a level against the base level: same format and
// halved dimensions.
func (t *Texture2D) isLevelComplete(level int) bool {
	base := t.imageArray[0]
	width, height := base.Width(), base.Height()
	if width <= 0 || height <= 0 {
		return false
	}
	if level == 0 {
		return true
	}
	if level < 0 || level >= len(t.imageArray) {
		return false
	}
	img := t.imageArray[level]
	return img.InternalFormat() == base.InternalFormat() &&
		img.Width() == max(1, width>>level) &&
		img.Height() == max(1, height>>level)
}

func (t *Texture2D) isImageComplete(index metadata.ImageIndex) bool {
	return t.isLevelComplete(index.MipIndex)
}

func (t *Texture2D) initMipmapImages() {
	levels := t.MipLevels()
	base := t.mipExtents()
	for level := 1; level < levels; level++ {
		t.redefine(metadata.MakeImageIndex2D(level), t.baseFormat(), base.MipExtents(level))
	}
}

func (t *Texture2D) createStorage(renderTarget bool, format gl.GLenum, base metadata.Extents, levels int) (TextureStorage, error) {
	return t.renderer.CreateTextureStorage2D(format, renderTarget, base.Width, base.Height, levels)
}

func (t *Texture2D) forEachImage(fn func(*Image)) {
	for _, img := range t.imageArray {
		if img != nil {
			fn(img)
		}
	}
}

func (t *Texture2D) releaseImages() {
	for i := range t.imageArray {
		t.imageArray[i] = nil
	}
}

func (t *Texture2D) Width(level int) int {
	if img := t.image(metadata.MakeImageIndex2D(level)); img != nil {
		return img.Width()
	}
	return 0
}

func (t *Texture2D) Height(level int) int {
	if img := t.image(metadata.MakeImageIndex2D(level)); img != nil {
		return img.Height()
	}
	return 0
}

func (t *Texture2D) InternalFormat(level int) gl.GLenum {
	if img := t.image(metadata.MakeImageIndex2D(level)); img != nil {
		return img.InternalFormat()
	}
	return gl.NONE
}

// SetImage defines level with the given sized format and size. pixels may be
// nil to leave the contents undefined.
func (t *Texture2D) SetImage(level int, internalFormat gl.GLenum, width, height int, pixels []byte) error {
	if level < 0 || level >= len(t.imageArray) {
		return core.InvalidOperation("mip level %d out of range", level)
	}
	return t.setImage(metadata.MakeImageIndex2D(level), internalFormat, metadata.Extents{Width: width, Height: height, Depth: 1}, pixels)
}

func (t *Texture2D) SubImage(level int, box metadata.Box, pixels []byte) error {
	box.Z, box.Depth = 0, 1
	return t.subImage(metadata.MakeImageIndex2D(level), box, pixels)
}

// SetStorage allocates an immutable mip chain of levels levels.
func (t *Texture2D) SetStorage(levels int, internalFormat gl.GLenum, width, height int) error {
	if levels <= 0 || levels > len(t.imageArray) {
		return core.InvalidOperation("invalid level count %d", levels)
	}
	renderTarget := t.usage == metadata.TextureUsageFramebufferAttachment
	storage, err := t.renderer.CreateTextureStorage2D(internalFormat, renderTarget, width, height, levels)
	if err != nil {
		return err
	}
	base := metadata.Extents{Width: width, Height: height, Depth: 1}
	t.setStorage(storage, func() {
		for level := range t.imageArray {
			if level < levels {
				t.imageArray[level].Redefine(internalFormat, base.MipExtents(level))
			} else {
				t.imageArray[level].Redefine(gl.NONE, metadata.Extents{})
			}
		}
	})
	return nil
}

func (t *Texture2D) GetRenderTarget(level int) (RenderTarget, error) {
	return t.getRenderTarget(metadata.MakeImageIndex2D(level))
}
