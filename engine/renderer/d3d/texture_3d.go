package d3d

import (
	"github.com/spaghettifunk/gles/engine/core"
	"github.com/spaghettifunk/gles/engine/renderer/gl"
	"github.com/spaghettifunk/gles/engine/renderer/metadata"
)

type Texture3D struct {
	TextureD3D
	imageArray [metadata.MaxTextureLevels]*Image
}

func NewTexture3D(renderer RendererD3D) *Texture3D {
	t := &Texture3D{}
	t.TextureD3D = TextureD3D{renderer: renderer, images: t}
	for i := range t.imageArray {
		t.imageArray[i] = NewImage()
	}
	return t
}

func (t *Texture3D) textureType() metadata.TextureType {
	return metadata.TextureType3d
}

func (t *Texture3D) image(index metadata.ImageIndex) *Image {
	if index.MipIndex < 0 || index.MipIndex >= len(t.imageArray) {
		return nil
	}
	return t.imageArray[index.MipIndex]
}

func (t *Texture3D) imageIndex(mip, _ int) metadata.ImageIndex {
	return metadata.MakeImageIndex3D(mip)
}

func (t *Texture3D) layerCount(int) int {
	return 1
}

func (t *Texture3D) mipExtents() metadata.Extents {
	return t.imageArray[0].Extents()
}

func (t *Texture3D) storageExtents(level int) metadata.Extents {
	return t.mipExtents().MipExtents(level)
}

func (t *Texture3D) redefineImage(index metadata.ImageIndex, format gl.GLenum, size metadata.Extents) {
	t.imageArray[index.MipIndex].Redefine(format, size)
}

func (t *Texture3D) isLevelComplete(level int) bool {
	base := t.imageArray[0]
	e := base.Extents()
	if e.Empty() {
		return false
	}
	if level == 0 {
		return true
	}
	if level < 0 || level >= len(t.imageArray) {
		return false
	}
	img := t.imageArray[level]
	return img.InternalFormat() == base.InternalFormat() && img.Extents() == e.MipExtents(level)
}

func (t *Texture3D) isImageComplete(index metadata.ImageIndex) bool {
	return t.isLevelComplete(index.MipIndex)
}

func (t *Texture3D) initMipmapImages() {
	levels := t.MipLevels()
	base := t.mipExtents()
	for level := 1; level < levels; level++ {
		t.redefine(metadata.MakeImageIndex3D(level), t.baseFormat(), base.MipExtents(level))
	}
}

func (t *Texture3D) createStorage(renderTarget bool, format gl.GLenum, base metadata.Extents, levels int) (TextureStorage, error) {
	return t.renderer.CreateTextureStorage3D(format, renderTarget, base.Width, base.Height, base.Depth, levels)
}

func (t *Texture3D) forEachImage(fn func(*Image)) {
	for _, img := range t.imageArray {
		if img != nil {
			fn(img)
		}
	}
}

func (t *Texture3D) releaseImages() {
	for i := range t.imageArray {
		t.imageArray[i] = nil
	}
}

func (t *Texture3D) SetImage(level int, internalFormat gl.GLenum, width, height, depth int, pixels []byte) error {
	if level < 0 || level >= len(t.imageArray) {
		return core.InvalidOperation("mip level %d out of range", level)
	}
	return t.setImage(metadata.MakeImageIndex3D(level), internalFormat, metadata.Extents{Width: width, Height: height, Depth: depth}, pixels)
}

func (t *Texture3D) SubImage(level int, box metadata.Box, pixels []byte) error {
	return t.subImage(metadata.MakeImageIndex3D(level), box, pixels)
}

func (t *Texture3D) SetStorage(levels int, internalFormat gl.GLenum, width, height, depth int) error {
	if levels <= 0 || levels > len(t.imageArray) {
		return core.InvalidOperation("invalid level count %d", levels)
	}
	renderTarget := t.usage == metadata.TextureUsageFramebufferAttachment
	storage, err := t.renderer.CreateTextureStorage3D(internalFormat, renderTarget, width, height, depth, levels)
	if err != nil {
		return err
	}
	base := metadata.Extents{Width: width, Height: height, Depth: depth}
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

// GetRenderTarget returns the render target of one slice of a level.
func (t *Texture3D) GetRenderTarget(level, slice int) (RenderTarget, error) {
	index := metadata.MakeImageIndex3D(level)
	index.LayerIndex = slice
	return t.getRenderTarget(index)
}
