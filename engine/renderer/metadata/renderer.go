package metadata

/** @brief The native API family a backend implements. */
type BackendType int

const (
	BackendTypeUnknown BackendType = iota
	BackendTypeD3D9
	BackendTypeD3D11
)

func (b BackendType) String() string {
	switch b {
	case BackendTypeD3D9:
		return "d3d9"
	case BackendTypeD3D11:
		return "d3d11"
	}
	return "unknown"
}

// Platform attributes understood when a renderer is created from an
// AttributeMap.
const (
	EGL_PLATFORM_ANGLE_TYPE_ANGLE              int32 = 0x3203
	EGL_PLATFORM_ANGLE_MAX_VERSION_MAJOR_ANGLE int32 = 0x3204
	EGL_PLATFORM_ANGLE_MAX_VERSION_MINOR_ANGLE int32 = 0x3205
	EGL_PLATFORM_ANGLE_TYPE_DEFAULT_ANGLE      int32 = 0x3206
	EGL_PLATFORM_ANGLE_TYPE_D3D9_ANGLE         int32 = 0x3207
	EGL_PLATFORM_ANGLE_TYPE_D3D11_ANGLE        int32 = 0x3208
	EGL_DONT_CARE                              int32 = -1
)

/** @brief Per-backend capabilities consulted by the translation layer. */
type Caps struct {
	/** @brief Largest 2D texture dimension. */
	MaxTextureSize int
	/** @brief Largest 3D texture dimension. */
	MaxTexture3DSize int
	/** @brief Largest number of 2D array layers. */
	MaxArrayTextureLayers int
	/** @brief Largest renderbuffer dimension. */
	MaxRenderbufferSize int
	/** @brief Number of simultaneous colour render targets. */
	MaxDrawBuffers      int
	MaxVertexAttributes int
	MaxSamples          int
	/** @brief 32-bit indices are available natively. */
	ElementIndexUint bool
	/** @brief Non-power-of-two textures may carry full mip chains. */
	TextureNPOT bool
}

/** @brief Driver quirks the D3D layer works around. */
type Workarounds struct {
	/** @brief Uploading through SetData beats writing the CPU image. */
	SetDataFasterThanImageUpload bool
}
