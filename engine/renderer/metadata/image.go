package metadata

import "github.com/spaghettifunk/gles/engine/renderer/gl"

/** @brief Addresses one image of a texture: a mip level and, for cube and array textures, a layer. */
type ImageIndex struct {
	Type       TextureType
	MipIndex   int
	LayerIndex int
}

func MakeImageIndex2D(mip int) ImageIndex {
	return ImageIndex{Type: TextureType2d, MipIndex: mip}
}

func MakeImageIndexCube(target gl.GLenum, mip int) ImageIndex {
	return ImageIndex{Type: TextureTypeCube, MipIndex: mip, LayerIndex: gl.CubeFaceIndex(target)}
}

func MakeImageIndex3D(mip int) ImageIndex {
	return ImageIndex{Type: TextureType3d, MipIndex: mip}
}

func MakeImageIndex2DArray(mip, layer int) ImageIndex {
	return ImageIndex{Type: TextureType2dArray, MipIndex: mip, LayerIndex: layer}
}

/** @brief A region of an image. */
type Box struct {
	X, Y, Z              int
	Width, Height, Depth int
}

func (b Box) Empty() bool {
	return b.Width <= 0 || b.Height <= 0 || b.Depth <= 0
}

/** @brief The dimensions of an image. */
type Extents struct {
	Width, Height, Depth int
}

func (e Extents) Empty() bool {
	return e.Width <= 0 || e.Height <= 0 || e.Depth <= 0
}

// MipExtents returns the size of mip level level of a texture whose base is e.
func (e Extents) MipExtents(level int) Extents {
	return Extents{
		Width:  max(1, e.Width>>level),
		Height: max(1, e.Height>>level),
		Depth:  max(1, e.Depth>>level),
	}
}
