package d3d

import (
	"github.com/spaghettifunk/gles/engine/core"
	"github.com/spaghettifunk/gles/engine/renderer/gl"
	"github.com/spaghettifunk/gles/engine/renderer/metadata"
)

// MaxRenderTargets is the number of colour attachments a blend description
// covers.
const MaxRenderTargets = 8

// Native blend factors. The values match the D3D blend enumerations, which
// D3D9 and D3D11 share.
const (
	BlendZero           uint8 = 1
	BlendOne            uint8 = 2
	BlendSrcColor       uint8 = 3
	BlendInvSrcColor    uint8 = 4
	BlendSrcAlpha       uint8 = 5
	BlendInvSrcAlpha    uint8 = 6
	BlendDestAlpha      uint8 = 7
	BlendInvDestAlpha   uint8 = 8
	BlendDestColor      uint8 = 9
	BlendInvDestColor   uint8 = 10
	BlendSrcAlphaSat    uint8 = 11
	BlendBlendFactor    uint8 = 14
	BlendInvBlendFactor uint8 = 15
)

const (
	BlendOpAdd         uint8 = 1
	BlendOpSubtract    uint8 = 2
	BlendOpRevSubtract uint8 = 3
	BlendOpMin         uint8 = 4
	BlendOpMax         uint8 = 5
)

const (
	ColorWriteRed   uint8 = 1
	ColorWriteGreen uint8 = 2
	ColorWriteBlue  uint8 = 4
	ColorWriteAlpha uint8 = 8
)

const (
	CullNone  uint8 = 1
	CullFront uint8 = 2
	CullBack  uint8 = 3
)

const FillSolid uint8 = 3

const (
	ComparisonNever        uint8 = 1
	ComparisonLess         uint8 = 2
	ComparisonEqual        uint8 = 3
	ComparisonLessEqual    uint8 = 4
	ComparisonGreater      uint8 = 5
	ComparisonNotEqual     uint8 = 6
	ComparisonGreaterEqual uint8 = 7
	ComparisonAlways       uint8 = 8
)

const (
	StencilOpKeep    uint8 = 1
	StencilOpZero    uint8 = 2
	StencilOpReplace uint8 = 3
	StencilOpIncrSat uint8 = 4
	StencilOpDecrSat uint8 = 5
	StencilOpInvert  uint8 = 6
	StencilOpIncr    uint8 = 7
	StencilOpDecr    uint8 = 8
)

const (
	AddressWrap   uint8 = 1
	AddressMirror uint8 = 2
	AddressClamp  uint8 = 3
)

const (
	filterTypePoint  uint32 = 0
	filterTypeLinear uint32 = 1

	FilterComparison  uint32 = 0x80
	FilterAnisotropic uint32 = 0x55
)

type RenderTargetBlendDesc struct {
	BlendEnable    bool
	SrcBlend       uint8
	DestBlend      uint8
	BlendOp        uint8
	SrcBlendAlpha  uint8
	DestBlendAlpha uint8
	BlendOpAlpha   uint8
	WriteMask      uint8
}

type BlendDesc struct {
	AlphaToCoverageEnable  bool
	IndependentBlendEnable bool
	RenderTarget           [MaxRenderTargets]RenderTargetBlendDesc
}

type RasterizerDesc struct {
	FillMode              uint8
	CullMode              uint8
	FrontCounterClockwise bool
	DepthBias             int32
	DepthBiasClamp        float32
	SlopeScaledDepthBias  float32
	DepthClipEnable       bool
	ScissorEnable         bool
	MultisampleEnable     bool
}

type StencilOpDesc struct {
	FailOp      uint8
	DepthFailOp uint8
	PassOp      uint8
	Func        uint8
}

type DepthStencilDesc struct {
	DepthEnable      bool
	DepthWriteAll    bool
	DepthFunc        uint8
	StencilEnable    bool
	StencilReadMask  uint8
	StencilWriteMask uint8
	FrontFace        StencilOpDesc
	BackFace         StencilOpDesc
}

type SamplerDesc struct {
	Filter         uint32
	AddressU       uint8
	AddressV       uint8
	AddressW       uint8
	MipLODBias     float32
	MaxAnisotropy  uint32
	ComparisonFunc uint8
	MinLOD         float32
	MaxLOD         float32
}

// StateFactory creates immutable native state objects. Each backend supplies
// one to its RenderStateCache.
type StateFactory interface {
	CreateBlendState(desc BlendDesc) (NativeState, error)
	CreateRasterizerState(desc RasterizerDesc) (NativeState, error)
	CreateDepthStencilState(desc DepthStencilDesc) (NativeState, error)
	CreateSamplerState(desc SamplerDesc) (NativeState, error)
}

// BlendStateKey is a blend state plus the colour channels each bound render
// target actually has. A channel missing from the target is never written.
type BlendStateKey struct {
	State      metadata.BlendState
	RTChannels [MaxRenderTargets][4]bool
}

func MakeBlendStateKey(colorFormats []gl.GLenum, state metadata.BlendState) BlendStateKey {
	key := BlendStateKey{State: state}
	for i, format := range colorFormats {
		if i >= MaxRenderTargets {
			break
		}
		info, ok := gl.GetInternalFormatInfo(format)
		if !ok {
			continue
		}
		key.RTChannels[i] = [4]bool{info.RedBits > 0, info.GreenBits > 0, info.BlueBits > 0, info.AlphaBits > 0}
	}
	return key
}

type RasterizerStateKey struct {
	State          metadata.RasterizerState
	ScissorEnabled bool
}

func ConvertBlendFunc(factor gl.GLenum, isAlpha bool) uint8 {
	switch factor {
	case gl.ZERO:
		return BlendZero
	case gl.ONE:
		return BlendOne
	case gl.SRC_COLOR:
		if isAlpha {
			return BlendSrcAlpha
		}
		return BlendSrcColor
	case gl.ONE_MINUS_SRC_COLOR:
		if isAlpha {
			return BlendInvSrcAlpha
		}
		return BlendInvSrcColor
	case gl.DST_COLOR:
		if isAlpha {
			return BlendDestAlpha
		}
		return BlendDestColor
	case gl.ONE_MINUS_DST_COLOR:
		if isAlpha {
			return BlendInvDestAlpha
		}
		return BlendInvDestColor
	case gl.SRC_ALPHA:
		return BlendSrcAlpha
	case gl.ONE_MINUS_SRC_ALPHA:
		return BlendInvSrcAlpha
	case gl.DST_ALPHA:
		return BlendDestAlpha
	case gl.ONE_MINUS_DST_ALPHA:
		return BlendInvDestAlpha
	case gl.CONSTANT_COLOR, gl.CONSTANT_ALPHA:
		return BlendBlendFactor
	case gl.ONE_MINUS_CONSTANT_COLOR, gl.ONE_MINUS_CONSTANT_ALPHA:
		return BlendInvBlendFactor
	case gl.SRC_ALPHA_SATURATE:
		return BlendSrcAlphaSat
	}
	core.Unreachable("unknown blend factor %#x", uint32(factor))
	return BlendZero
}

func ConvertBlendOp(op gl.GLenum) uint8 {
	switch op {
	case gl.FUNC_ADD:
		return BlendOpAdd
	case gl.FUNC_SUBTRACT:
		return BlendOpSubtract
	case gl.FUNC_REVERSE_SUBTRACT:
		return BlendOpRevSubtract
	case gl.MIN:
		return BlendOpMin
	case gl.MAX:
		return BlendOpMax
	}
	core.Unreachable("unknown blend equation %#x", uint32(op))
	return BlendOpAdd
}

func ConvertColorMask(red, green, blue, alpha bool) uint8 {
	var mask uint8
	if red {
		mask |= ColorWriteRed
	}
	if green {
		mask |= ColorWriteGreen
	}
	if blue {
		mask |= ColorWriteBlue
	}
	if alpha {
		mask |= ColorWriteAlpha
	}
	return mask
}

func ConvertCullMode(cullEnabled bool, mode gl.GLenum) uint8 {
	if !cullEnabled {
		return CullNone
	}
	switch mode {
	case gl.FRONT:
		return CullFront
	case gl.BACK:
		return CullBack
	case gl.FRONT_AND_BACK:
		// Culling both faces is emulated by skipping the draw.
		return CullNone
	}
	core.Unreachable("unknown cull mode %#x", uint32(mode))
	return CullNone
}

func ConvertComparison(fn gl.GLenum) uint8 {
	switch fn {
	case gl.NEVER:
		return ComparisonNever
	case gl.LESS:
		return ComparisonLess
	case gl.EQUAL:
		return ComparisonEqual
	case gl.LEQUAL:
		return ComparisonLessEqual
	case gl.GREATER:
		return ComparisonGreater
	case gl.NOTEQUAL:
		return ComparisonNotEqual
	case gl.GEQUAL:
		return ComparisonGreaterEqual
	case gl.ALWAYS:
		return ComparisonAlways
	}
	core.Unreachable("unknown comparison function %#x", uint32(fn))
	return ComparisonAlways
}

func ConvertStencilOp(op gl.GLenum) uint8 {
	switch op {
	case gl.ZERO:
		return StencilOpZero
	case gl.KEEP:
		return StencilOpKeep
	case gl.REPLACE:
		return StencilOpReplace
	case gl.INCR:
		return StencilOpIncrSat
	case gl.DECR:
		return StencilOpDecrSat
	case gl.INVERT:
		return StencilOpInvert
	case gl.INCR_WRAP:
		return StencilOpIncr
	case gl.DECR_WRAP:
		return StencilOpDecr
	}
	core.Unreachable("unknown stencil op %#x", uint32(op))
	return StencilOpKeep
}

func ConvertTextureAddressMode(wrap gl.GLenum) uint8 {
	switch wrap {
	case gl.REPEAT:
		return AddressWrap
	case gl.MIRRORED_REPEAT:
		return AddressMirror
	case gl.CLAMP_TO_EDGE:
		return AddressClamp
	}
	core.Unreachable("unknown wrap mode %#x", uint32(wrap))
	return AddressWrap
}

// ConvertFilter encodes min/mag/mip filtering the way D3D11_ENCODE_BASIC_FILTER
// does. Anisotropy above 1 overrides the basic filters.
func ConvertFilter(minFilter, magFilter gl.GLenum, maxAnisotropy float32, compareMode gl.GLenum) uint32 {
	var comparison uint32
	if compareMode == gl.COMPARE_REF_TO_TEXTURE {
		comparison = FilterComparison
	}
	if maxAnisotropy > 1 {
		return FilterAnisotropic | comparison
	}

	var minType, mipType uint32
	switch minFilter {
	case gl.NEAREST:
		minType, mipType = filterTypePoint, filterTypePoint
	case gl.LINEAR:
		minType, mipType = filterTypeLinear, filterTypePoint
	case gl.NEAREST_MIPMAP_NEAREST:
		minType, mipType = filterTypePoint, filterTypePoint
	case gl.LINEAR_MIPMAP_NEAREST:
		minType, mipType = filterTypeLinear, filterTypePoint
	case gl.NEAREST_MIPMAP_LINEAR:
		minType, mipType = filterTypePoint, filterTypeLinear
	case gl.LINEAR_MIPMAP_LINEAR:
		minType, mipType = filterTypeLinear, filterTypeLinear
	default:
		core.Unreachable("unknown min filter %#x", uint32(minFilter))
	}

	var magType uint32
	switch magFilter {
	case gl.NEAREST:
		magType = filterTypePoint
	case gl.LINEAR:
		magType = filterTypeLinear
	default:
		core.Unreachable("unknown mag filter %#x", uint32(magFilter))
	}

	return comparison | minType<<4 | magType<<2 | mipType
}

func BlendDescFromKey(key BlendStateKey) BlendDesc {
	state := key.State
	desc := BlendDesc{AlphaToCoverageEnable: state.SampleAlphaToCoverage}
	for i := range desc.RenderTarget {
		rt := &desc.RenderTarget[i]
		rt.BlendEnable = state.Blend
		if state.Blend {
			rt.SrcBlend = ConvertBlendFunc(state.SourceBlendRGB, false)
			rt.DestBlend = ConvertBlendFunc(state.DestBlendRGB, false)
			rt.BlendOp = ConvertBlendOp(state.BlendEquationRGB)
			rt.SrcBlendAlpha = ConvertBlendFunc(state.SourceBlendAlpha, true)
			rt.DestBlendAlpha = ConvertBlendFunc(state.DestBlendAlpha, true)
			rt.BlendOpAlpha = ConvertBlendOp(state.BlendEquationAlpha)
		}
		channels := key.RTChannels[i]
		rt.WriteMask = ConvertColorMask(
			state.ColorMaskRed && channels[0],
			state.ColorMaskGreen && channels[1],
			state.ColorMaskBlue && channels[2],
			state.ColorMaskAlpha && channels[3],
		)
	}
	return desc
}

func RasterizerDescFromKey(key RasterizerStateKey) RasterizerDesc {
	state := key.State
	cull := ConvertCullMode(state.CullFace, state.CullMode)
	if state.PointDrawMode {
		cull = CullNone
	}
	desc := RasterizerDesc{
		FillMode: FillSolid,
		CullMode: cull,
		// The y-flip on presentation reverses winding.
		FrontCounterClockwise: state.FrontFace != gl.CCW,
		DepthClipEnable:       true,
		ScissorEnable:         key.ScissorEnabled,
		MultisampleEnable:     state.MultiSample,
	}
	if state.PolygonOffsetFill {
		desc.DepthBias = int32(state.PolygonOffsetUnits)
		desc.SlopeScaledDepthBias = state.PolygonOffsetFactor
	}
	return desc
}

func DepthStencilDescFromState(state metadata.DepthStencilState) DepthStencilDesc {
	return DepthStencilDesc{
		DepthEnable:      state.DepthTest,
		DepthWriteAll:    state.DepthMask,
		DepthFunc:        ConvertComparison(state.DepthFunc),
		StencilEnable:    state.StencilTest,
		StencilReadMask:  uint8(state.StencilMask),
		StencilWriteMask: uint8(state.StencilWritemask),
		FrontFace: StencilOpDesc{
			FailOp:      ConvertStencilOp(state.StencilFail),
			DepthFailOp: ConvertStencilOp(state.StencilPassDepthFail),
			PassOp:      ConvertStencilOp(state.StencilPassDepthPass),
			Func:        ConvertComparison(state.StencilFunc),
		},
		BackFace: StencilOpDesc{
			FailOp:      ConvertStencilOp(state.StencilBackFail),
			DepthFailOp: ConvertStencilOp(state.StencilBackPassDepthFail),
			PassOp:      ConvertStencilOp(state.StencilBackPassDepthPass),
			Func:        ConvertComparison(state.StencilBackFunc),
		},
	}
}

func SamplerDescFromState(state metadata.SamplerState) SamplerDesc {
	desc := SamplerDesc{
		Filter:         ConvertFilter(state.MinFilter, state.MagFilter, state.MaxAnisotropy, state.CompareMode),
		AddressU:       ConvertTextureAddressMode(state.WrapS),
		AddressV:       ConvertTextureAddressMode(state.WrapT),
		AddressW:       ConvertTextureAddressMode(state.WrapR),
		MaxAnisotropy:  uint32(max(1, state.MaxAnisotropy)),
		ComparisonFunc: ConvertComparison(state.CompareFunc),
		MinLOD:         state.MinLod,
		MaxLOD:         state.MaxLod,
	}
	if !state.UsesMipmaps() {
		desc.MinLOD, desc.MaxLOD = 0, 0
	}
	return desc
}
