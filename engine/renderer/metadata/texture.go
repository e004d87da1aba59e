package metadata

/**
 * @brief Represents various types of textures.
 */
type TextureType int

const (
	/** @brief A standard two-dimensional texture. */
	TextureType2d TextureType = iota
	/** @brief A cube texture, used for cubemaps. */
	TextureTypeCube
	/** @brief A three-dimensional texture. */
	TextureType3d
	/** @brief An array of two-dimensional layers sharing one mip chain. */
	TextureType2dArray
)

func (t TextureType) String() string {
	switch t {
	case TextureType2d:
		return "2D"
	case TextureTypeCube:
		return "Cube"
	case TextureType3d:
		return "3D"
	case TextureType2dArray:
		return "2DArray"
	}
	return "unknown"
}

/** @brief The number of faces of a cube texture. */
const CubeFaceCount = 6

/** @brief Upper bound on the mip levels a texture tracks images for. */
const MaxTextureLevels = 15

/** @brief How a texture is expected to be used, from GL_ANGLE_texture_usage. */
type TextureUsage int

const (
	TextureUsageNone TextureUsage = iota
	/** @brief The texture will be rendered to; create render-target storage eagerly. */
	TextureUsageFramebufferAttachment
)
