package d3d

import (
	"github.com/spaghettifunk/gles/engine/core"
	"github.com/spaghettifunk/gles/engine/renderer/gl"
	"github.com/spaghettifunk/gles/engine/renderer/metadata"
)

type TextureCube struct {
	TextureD3D
	imageArray [metadata.CubeFaceCount][metadata.MaxTextureLevels]*Image
}

func NewTextureCube(renderer RendererD3D) *TextureCube {
	t := &TextureCube{}
	t.TextureD3D = TextureD3D{renderer: renderer, images: t}
	for face := range t.imageArray {
		for level := range t.imageArray[face] {
			t.imageArray[face][level] = NewImage()
		}
	}
	return t
}

func (t *TextureCube) textureType() metadata.TextureType {
	return metadata.TextureTypeCube
}

func (t *TextureCube) image(index metadata.ImageIndex) *Image {
	if index.LayerIndex < 0 || index.LayerIndex >= metadata.CubeFaceCount ||
		index.MipIndex < 0 || index.MipIndex >= metadata.MaxTextureLevels {
		return nil
	}
	return t.imageArray[index.LayerIndex][index.MipIndex]
}

func (t *TextureCube) imageIndex(mip, layer int) metadata.ImageIndex {
	return metadata.ImageIndex{Type: metadata.TextureTypeCube, MipIndex: mip, LayerIndex: layer}
}

func (t *TextureCube) layerCount(int) int {
	return metadata.CubeFaceCount
}

func (t *TextureCube) mipExtents() metadata.Extents {
	size := t.imageArray[0][0].Width()
	return metadata.Extents{Width: size, Height: size, Depth: 1}
}

func (t *TextureCube) storageExtents(level int) metadata.Extents {
	e := t.imageArray[0][0].Extents()
	return metadata.Extents{Width: e.Width, Height: e.Height, Depth: 1}.MipExtents(level)
}

func (t *TextureCube) redefineImage(index metadata.ImageIndex, format gl.GLenum, size metadata.Extents) {
	t.imageArray[index.LayerIndex][index.MipIndex].Redefine(format, size)
}

func (t *TextureCube) isFaceLevelComplete(face, level int) bool {
	baseSize := t.imageArray[0][0].Width()
	if baseSize <= 0 {
		return false
	}
	if level == 0 && face == 0 {
		return true
	}
	if level < 0 || level >= metadata.MaxTextureLevels {
		return false
	}
	img := t.imageArray[face][level]
	return img.InternalFormat() == t.baseFormat() &&
		img.Width() == max(1, baseSize>>level) && img.Height() == img.Width()
}

// IsCubeComplete reports whether the six base faces are square, of equal size
// and of the same format.
func (t *TextureCube) IsCubeComplete() bool {
	base := t.imageArray[0][0]
	if base.Width() <= 0 || base.Height() != base.Width() {
		return false
	}
	for face := 1; face < metadata.CubeFaceCount; face++ {
		img := t.imageArray[face][0]
		if img.Width() != base.Width() || img.Height() != base.Height() || img.InternalFormat() != base.InternalFormat() {
			return false
		}
	}
	return true
}

func (t *TextureCube) isLevelComplete(level int) bool {
	if level == 0 {
		return t.isFaceLevelComplete(0, 0)
	}
	for face := 0; face < metadata.CubeFaceCount; face++ {
		if !t.isFaceLevelComplete(face, level) {
			return false
		}
	}
	return true
}

func (t *TextureCube) isImageComplete(index metadata.ImageIndex) bool {
	return t.isFaceLevelComplete(index.LayerIndex, index.MipIndex)
}

func (t *TextureCube) initMipmapImages() {
	levels := t.MipLevels()
	base := t.mipExtents()
	for face := 0; face < metadata.CubeFaceCount; face++ {
		format := t.imageArray[face][0].InternalFormat()
		for level := 1; level < levels; level++ {
			t.redefine(t.imageIndex(level, face), format, base.MipExtents(level))
		}
	}
}

func (t *TextureCube) createStorage(renderTarget bool, format gl.GLenum, base metadata.Extents, levels int) (TextureStorage, error) {
	return t.renderer.CreateTextureStorageCube(format, renderTarget, base.Width, levels)
}

func (t *TextureCube) forEachImage(fn func(*Image)) {
	for face := range t.imageArray {
		for _, img := range t.imageArray[face] {
			if img != nil {
				fn(img)
			}
		}
	}
}

func (t *TextureCube) releaseImages() {
	for face := range t.imageArray {
		for level := range t.imageArray[face] {
			t.imageArray[face][level] = nil
		}
	}
}

func faceIndex(target gl.GLenum) (int, error) {
	if !gl.IsCubeMapFaceTarget(target) {
		return 0, core.InvalidOperation("%#x is not a cube map face", uint32(target))
	}
	return gl.CubeFaceIndex(target), nil
}

// SetImage defines one face of one level. Cube faces are square.
func (t *TextureCube) SetImage(target gl.GLenum, level int, internalFormat gl.GLenum, width, height int, pixels []byte) error {
	face, err := faceIndex(target)
	if err != nil {
		return err
	}
	if level < 0 || level >= metadata.MaxTextureLevels {
		return core.InvalidOperation("mip level %d out of range", level)
	}
	if width != height {
		return core.InvalidOperation("cube map faces must be square, got %dx%d", width, height)
	}
	return t.setImage(t.imageIndex(level, face), internalFormat, metadata.Extents{Width: width, Height: height, Depth: 1}, pixels)
}

func (t *TextureCube) SubImage(target gl.GLenum, level int, box metadata.Box, pixels []byte) error {
	face, err := faceIndex(target)
	if err != nil {
		return err
	}
	box.Z, box.Depth = 0, 1
	return t.subImage(t.imageIndex(level, face), box, pixels)
}

func (t *TextureCube) SetStorage(levels int, internalFormat gl.GLenum, size int) error {
	if levels <= 0 || levels > metadata.MaxTextureLevels {
		return core.InvalidOperation("invalid level count %d", levels)
	}
	renderTarget := t.usage == metadata.TextureUsageFramebufferAttachment
	storage, err := t.renderer.CreateTextureStorageCube(internalFormat, renderTarget, size, levels)
	if err != nil {
		return err
	}
	base := metadata.Extents{Width: size, Height: size, Depth: 1}
	t.setStorage(storage, func() {
		for face := range t.imageArray {
			for level := range t.imageArray[face] {
				if level < levels {
					t.imageArray[face][level].Redefine(internalFormat, base.MipExtents(level))
				} else {
					t.imageArray[face][level].Redefine(gl.NONE, metadata.Extents{})
				}
			}
		}
	})
	return nil
}

func (t *TextureCube) GetRenderTarget(target gl.GLenum, level int) (RenderTarget, error) {
	face, err := faceIndex(target)
	if err != nil {
		return nil, err
	}
	return t.getRenderTarget(t.imageIndex(level, face))
}
