package d3d9

import (
	"fmt"

	"github.com/spaghettifunk/gles/engine/renderer/d3d"
	"github.com/spaghettifunk/gles/engine/renderer/gl"
)

// D3DFormat mirrors D3DFORMAT.
type D3DFormat uint32

const (
	D3DFMT_UNKNOWN       D3DFormat = 0
	D3DFMT_A8R8G8B8      D3DFormat = 21
	D3DFMT_X8R8G8B8      D3DFormat = 22
	D3DFMT_R5G6B5        D3DFormat = 23
	D3DFMT_A1R5G5B5      D3DFormat = 25
	D3DFMT_A4R4G4B4      D3DFormat = 26
	D3DFMT_A8            D3DFormat = 28
	D3DFMT_L8            D3DFormat = 50
	D3DFMT_A8L8          D3DFormat = 51
	D3DFMT_D24S8         D3DFormat = 75
	D3DFMT_D16           D3DFormat = 80
	D3DFMT_D32F_LOCKABLE D3DFormat = 82
	D3DFMT_INDEX16       D3DFormat = 101
	D3DFMT_INDEX32       D3DFormat = 102
	D3DFMT_R16F          D3DFormat = 111
	D3DFMT_A16B16G16R16F D3DFormat = 113
	D3DFMT_R32F          D3DFormat = 114
	D3DFMT_A32B32G32R32F D3DFormat = 116
)

func (f D3DFormat) String() string {
	switch f {
	case D3DFMT_UNKNOWN:
		return "D3DFMT_UNKNOWN"
	case D3DFMT_A8R8G8B8:
		return "D3DFMT_A8R8G8B8"
	case D3DFMT_X8R8G8B8:
		return "D3DFMT_X8R8G8B8"
	case D3DFMT_R5G6B5:
		return "D3DFMT_R5G6B5"
	case D3DFMT_A1R5G5B5:
		return "D3DFMT_A1R5G5B5"
	case D3DFMT_A4R4G4B4:
		return "D3DFMT_A4R4G4B4"
	case D3DFMT_L8:
		return "D3DFMT_L8"
	case D3DFMT_D24S8:
		return "D3DFMT_D24S8"
	case D3DFMT_D16:
		return "D3DFMT_D16"
	case D3DFMT_INDEX16:
		return "D3DFMT_INDEX16"
	case D3DFMT_INDEX32:
		return "D3DFMT_INDEX32"
	}
	return fmt.Sprintf("D3DFORMAT(%d)", uint32(f))
}

type textureFormat struct {
	Format       D3DFormat
	PixelBytes   uint32
	RenderFormat gl.GLenum
	Conversion   d3d.ImageConversion
}

// Surfaces keep their channels in ARGB order, so most 8-bit colour formats
// swap red and blue on upload. Integer formats and RG8 have no D3D9 surface.
var textureFormats = map[gl.GLenum]textureFormat{
	gl.R8:                 {Format: D3DFMT_L8, PixelBytes: 1, RenderFormat: gl.R8},
	gl.RGB8:               {Format: D3DFMT_X8R8G8B8, PixelBytes: 4, RenderFormat: gl.RGB8, Conversion: d3d.RGB8ToBGRX8},
	gl.RGBA8:              {Format: D3DFMT_A8R8G8B8, PixelBytes: 4, RenderFormat: gl.RGBA8, Conversion: d3d.RGBA8ToBGRA8},
	gl.BGRA8_EXT:          {Format: D3DFMT_A8R8G8B8, PixelBytes: 4, RenderFormat: gl.BGRA8_EXT},
	gl.RGBA4:              {Format: D3DFMT_A4R4G4B4, PixelBytes: 2, RenderFormat: gl.RGBA4, Conversion: d3d.RGBA4ToARGB4},
	gl.RGB5_A1:            {Format: D3DFMT_A1R5G5B5, PixelBytes: 2, RenderFormat: gl.RGB5_A1, Conversion: d3d.RGB5A1ToA1RGB5},
	gl.RGB565:             {Format: D3DFMT_R5G6B5, PixelBytes: 2, RenderFormat: gl.RGB565},
	gl.ALPHA8_EXT:         {Format: D3DFMT_A8, PixelBytes: 1, RenderFormat: gl.ALPHA8_EXT},
	gl.LUMINANCE8_EXT:     {Format: D3DFMT_L8, PixelBytes: 1, RenderFormat: gl.LUMINANCE8_EXT},
	gl.LUMINANCE8_ALPHA8:  {Format: D3DFMT_A8L8, PixelBytes: 2, RenderFormat: gl.LUMINANCE8_ALPHA8},
	gl.R16F:               {Format: D3DFMT_R16F, PixelBytes: 2, RenderFormat: gl.R16F},
	gl.RGBA16F:            {Format: D3DFMT_A16B16G16R16F, PixelBytes: 8, RenderFormat: gl.RGBA16F},
	gl.R32F:               {Format: D3DFMT_R32F, PixelBytes: 4, RenderFormat: gl.R32F},
	gl.RGBA32F:            {Format: D3DFMT_A32B32G32R32F, PixelBytes: 16, RenderFormat: gl.RGBA32F},
	gl.DEPTH_COMPONENT16:  {Format: D3DFMT_D16, PixelBytes: 2, RenderFormat: gl.DEPTH_COMPONENT16},
	gl.DEPTH_COMPONENT24:  {Format: D3DFMT_D24S8, PixelBytes: 4, RenderFormat: gl.DEPTH24_STENCIL8},
	gl.DEPTH_COMPONENT32F: {Format: D3DFMT_D32F_LOCKABLE, PixelBytes: 4, RenderFormat: gl.DEPTH_COMPONENT32F},
	gl.DEPTH24_STENCIL8:   {Format: D3DFMT_D24S8, PixelBytes: 4, RenderFormat: gl.DEPTH24_STENCIL8},
}

func GetTextureFormat(internalFormat gl.GLenum) (textureFormat, bool) {
	f, ok := textureFormats[internalFormat]
	return f, ok
}

func isDepthFormat(f D3DFormat) bool {
	return f == D3DFMT_D16 || f == D3DFMT_D24S8 || f == D3DFMT_D32F_LOCKABLE
}

// DeclType mirrors D3DDECLTYPE.
type DeclType uint32

const (
	D3DDECLTYPE_FLOAT1    DeclType = 0
	D3DDECLTYPE_FLOAT2    DeclType = 1
	D3DDECLTYPE_FLOAT3    DeclType = 2
	D3DDECLTYPE_FLOAT4    DeclType = 3
	D3DDECLTYPE_UBYTE4    DeclType = 5
	D3DDECLTYPE_SHORT2    DeclType = 6
	D3DDECLTYPE_SHORT4    DeclType = 7
	D3DDECLTYPE_UBYTE4N   DeclType = 8
	D3DDECLTYPE_SHORT2N   DeclType = 9
	D3DDECLTYPE_SHORT4N   DeclType = 10
	D3DDECLTYPE_USHORT2N  DeclType = 11
	D3DDECLTYPE_USHORT4N  DeclType = 12
	D3DDECLTYPE_FLOAT16_2 DeclType = 15
	D3DDECLTYPE_FLOAT16_4 DeclType = 16
)

var floatDeclTypes = [4]DeclType{D3DDECLTYPE_FLOAT1, D3DDECLTYPE_FLOAT2, D3DDECLTYPE_FLOAT3, D3DDECLTYPE_FLOAT4}

// vertexFormats only passes through the handful of declaration types every
// D3D9 device supports. Integer attributes do not exist on shader model 3 and
// are converted to float with the rest.
type vertexFormats struct{}

func (vertexFormats) VertexFormat(key d3d.VertexFormatKey) d3d.VertexFormat {
	if key.Components < 1 || key.Components > 4 {
		return d3d.ConvertVertexToFloat(uint32(D3DDECLTYPE_FLOAT4), key, 4)
	}
	elementSize := gl.ElementSize(key.Type) * key.Components
	if decl, ok := nativeDeclType(key); ok {
		return d3d.CopyVertexDirect(uint32(decl), elementSize)
	}
	return d3d.ConvertVertexToFloat(uint32(floatDeclTypes[key.Components-1]), key, key.Components)
}

func nativeDeclType(key d3d.VertexFormatKey) (DeclType, bool) {
	if key.PureInteger {
		return 0, false
	}
	switch key.Type {
	case gl.FLOAT:
		return floatDeclTypes[key.Components-1], true
	case gl.UNSIGNED_BYTE:
		if key.Components == 4 {
			if key.Normalized {
				return D3DDECLTYPE_UBYTE4N, true
			}
			return D3DDECLTYPE_UBYTE4, true
		}
	case gl.SHORT:
		switch {
		case key.Components == 2 && key.Normalized:
			return D3DDECLTYPE_SHORT2N, true
		case key.Components == 4 && key.Normalized:
			return D3DDECLTYPE_SHORT4N, true
		case key.Components == 2:
			return D3DDECLTYPE_SHORT2, true
		case key.Components == 4:
			return D3DDECLTYPE_SHORT4, true
		}
	case gl.UNSIGNED_SHORT:
		if key.Normalized && key.Components == 2 {
			return D3DDECLTYPE_USHORT2N, true
		}
		if key.Normalized && key.Components == 4 {
			return D3DDECLTYPE_USHORT4N, true
		}
	case gl.HALF_FLOAT:
		if key.Components == 2 {
			return D3DDECLTYPE_FLOAT16_2, true
		}
		if key.Components == 4 {
			return D3DDECLTYPE_FLOAT16_4, true
		}
	}
	return 0, false
}
