package metadata

import "github.com/spaghettifunk/gles/engine/renderer/gl"

// The structs below are the GL-level pipeline state. They are comparable so
// they can key the render state caches directly.

type BlendState struct {
	Blend              bool
	SourceBlendRGB     gl.GLenum
	DestBlendRGB       gl.GLenum
	SourceBlendAlpha   gl.GLenum
	DestBlendAlpha     gl.GLenum
	BlendEquationRGB   gl.GLenum
	BlendEquationAlpha gl.GLenum

	ColorMaskRed   bool
	ColorMaskGreen bool
	ColorMaskBlue  bool
	ColorMaskAlpha bool

	SampleAlphaToCoverage bool
	Dither                bool
}

func DefaultBlendState() BlendState {
	return BlendState{
		SourceBlendRGB:     gl.ONE,
		DestBlendRGB:       gl.ZERO,
		SourceBlendAlpha:   gl.ONE,
		DestBlendAlpha:     gl.ZERO,
		BlendEquationRGB:   gl.FUNC_ADD,
		BlendEquationAlpha: gl.FUNC_ADD,
		ColorMaskRed:       true,
		ColorMaskGreen:     true,
		ColorMaskBlue:      true,
		ColorMaskAlpha:     true,
		Dither:             true,
	}
}

type RasterizerState struct {
	CullFace  bool
	CullMode  gl.GLenum
	FrontFace gl.GLenum

	PolygonOffsetFill   bool
	PolygonOffsetFactor float32
	PolygonOffsetUnits  float32

	PointDrawMode     bool
	MultiSample       bool
	RasterizerDiscard bool
}

func DefaultRasterizerState() RasterizerState {
	return RasterizerState{
		CullMode:  gl.BACK,
		FrontFace: gl.CCW,
	}
}

type DepthStencilState struct {
	DepthTest bool
	DepthFunc gl.GLenum
	DepthMask bool

	StencilTest          bool
	StencilFunc          gl.GLenum
	StencilMask          uint32
	StencilFail          gl.GLenum
	StencilPassDepthFail gl.GLenum
	StencilPassDepthPass gl.GLenum
	StencilWritemask     uint32

	StencilBackFunc          gl.GLenum
	StencilBackMask          uint32
	StencilBackFail          gl.GLenum
	StencilBackPassDepthFail gl.GLenum
	StencilBackPassDepthPass gl.GLenum
	StencilBackWritemask     uint32
}

func DefaultDepthStencilState() DepthStencilState {
	return DepthStencilState{
		DepthFunc:                gl.LESS,
		DepthMask:                true,
		StencilFunc:              gl.ALWAYS,
		StencilMask:              0xFFFFFFFF,
		StencilFail:              gl.KEEP,
		StencilPassDepthFail:     gl.KEEP,
		StencilPassDepthPass:     gl.KEEP,
		StencilWritemask:         0xFFFFFFFF,
		StencilBackFunc:          gl.ALWAYS,
		StencilBackMask:          0xFFFFFFFF,
		StencilBackFail:          gl.KEEP,
		StencilBackPassDepthFail: gl.KEEP,
		StencilBackPassDepthPass: gl.KEEP,
		StencilBackWritemask:     0xFFFFFFFF,
	}
}

type SamplerState struct {
	MinFilter     gl.GLenum
	MagFilter     gl.GLenum
	WrapS         gl.GLenum
	WrapT         gl.GLenum
	WrapR         gl.GLenum
	MaxAnisotropy float32
	BaseLevel     int32
	MaxLevel      int32
	MinLod        float32
	MaxLod        float32
	CompareMode   gl.GLenum
	CompareFunc   gl.GLenum
}

func DefaultSamplerState() SamplerState {
	return SamplerState{
		MinFilter:     gl.NEAREST_MIPMAP_LINEAR,
		MagFilter:     gl.LINEAR,
		WrapS:         gl.REPEAT,
		WrapT:         gl.REPEAT,
		WrapR:         gl.REPEAT,
		MaxAnisotropy: 1,
		MaxLevel:      1000,
		MinLod:        -1000,
		MaxLod:        1000,
		CompareMode:   gl.NONE,
		CompareFunc:   gl.LEQUAL,
	}
}

// UsesMipmaps reports whether the minification filter samples mip levels.
func (s SamplerState) UsesMipmaps() bool {
	return s.MinFilter != gl.NEAREST && s.MinFilter != gl.LINEAR
}
