package d3d11

import (
	"fmt"

	"github.com/spaghettifunk/gles/engine/renderer/d3d"
	"github.com/spaghettifunk/gles/engine/renderer/gl"
)

// DXGIFormat mirrors DXGI_FORMAT.
type DXGIFormat uint32

const (
	DXGI_FORMAT_UNKNOWN            DXGIFormat = 0
	DXGI_FORMAT_R32G32B32A32_FLOAT DXGIFormat = 2
	DXGI_FORMAT_R32G32B32A32_UINT  DXGIFormat = 3
	DXGI_FORMAT_R32G32B32A32_SINT  DXGIFormat = 4
	DXGI_FORMAT_R32G32B32_FLOAT    DXGIFormat = 6
	DXGI_FORMAT_R32G32B32_UINT     DXGIFormat = 7
	DXGI_FORMAT_R32G32B32_SINT     DXGIFormat = 8
	DXGI_FORMAT_R16G16B16A16_FLOAT DXGIFormat = 10
	DXGI_FORMAT_R16G16B16A16_UNORM DXGIFormat = 11
	DXGI_FORMAT_R16G16B16A16_UINT  DXGIFormat = 12
	DXGI_FORMAT_R16G16B16A16_SNORM DXGIFormat = 13
	DXGI_FORMAT_R16G16B16A16_SINT  DXGIFormat = 14
	DXGI_FORMAT_R32G32_FLOAT       DXGIFormat = 16
	DXGI_FORMAT_R32G32_UINT        DXGIFormat = 17
	DXGI_FORMAT_R32G32_SINT        DXGIFormat = 18
	DXGI_FORMAT_R8G8B8A8_UNORM     DXGIFormat = 28
	DXGI_FORMAT_R8G8B8A8_UINT      DXGIFormat = 30
	DXGI_FORMAT_R8G8B8A8_SNORM     DXGIFormat = 31
	DXGI_FORMAT_R8G8B8A8_SINT      DXGIFormat = 32
	DXGI_FORMAT_R16G16_FLOAT       DXGIFormat = 34
	DXGI_FORMAT_R16G16_UNORM       DXGIFormat = 35
	DXGI_FORMAT_R16G16_UINT        DXGIFormat = 36
	DXGI_FORMAT_R16G16_SNORM       DXGIFormat = 37
	DXGI_FORMAT_R16G16_SINT        DXGIFormat = 38
	DXGI_FORMAT_D32_FLOAT          DXGIFormat = 40
	DXGI_FORMAT_R32_FLOAT          DXGIFormat = 41
	DXGI_FORMAT_R32_UINT           DXGIFormat = 42
	DXGI_FORMAT_R32_SINT           DXGIFormat = 43
	DXGI_FORMAT_D24_UNORM_S8_UINT  DXGIFormat = 45
	DXGI_FORMAT_R8G8_UNORM         DXGIFormat = 49
	DXGI_FORMAT_R8G8_UINT          DXGIFormat = 50
	DXGI_FORMAT_R8G8_SNORM         DXGIFormat = 51
	DXGI_FORMAT_R8G8_SINT          DXGIFormat = 52
	DXGI_FORMAT_R16_FLOAT          DXGIFormat = 54
	DXGI_FORMAT_D16_UNORM          DXGIFormat = 55
	DXGI_FORMAT_R16_UNORM          DXGIFormat = 56
	DXGI_FORMAT_R16_UINT           DXGIFormat = 57
	DXGI_FORMAT_R16_SNORM          DXGIFormat = 58
	DXGI_FORMAT_R16_SINT           DXGIFormat = 59
	DXGI_FORMAT_R8_UNORM           DXGIFormat = 61
	DXGI_FORMAT_R8_UINT            DXGIFormat = 62
	DXGI_FORMAT_R8_SNORM           DXGIFormat = 63
	DXGI_FORMAT_R8_SINT            DXGIFormat = 64
	DXGI_FORMAT_A8_UNORM           DXGIFormat = 65
	DXGI_FORMAT_B8G8R8A8_UNORM     DXGIFormat = 87
)

func (f DXGIFormat) String() string {
	switch f {
	case DXGI_FORMAT_UNKNOWN:
		return "DXGI_FORMAT_UNKNOWN"
	case DXGI_FORMAT_R8G8B8A8_UNORM:
		return "DXGI_FORMAT_R8G8B8A8_UNORM"
	case DXGI_FORMAT_B8G8R8A8_UNORM:
		return "DXGI_FORMAT_B8G8R8A8_UNORM"
	case DXGI_FORMAT_R32G32B32A32_FLOAT:
		return "DXGI_FORMAT_R32G32B32A32_FLOAT"
	case DXGI_FORMAT_R16G16B16A16_FLOAT:
		return "DXGI_FORMAT_R16G16B16A16_FLOAT"
	case DXGI_FORMAT_D24_UNORM_S8_UINT:
		return "DXGI_FORMAT_D24_UNORM_S8_UINT"
	case DXGI_FORMAT_D16_UNORM:
		return "DXGI_FORMAT_D16_UNORM"
	case DXGI_FORMAT_D32_FLOAT:
		return "DXGI_FORMAT_D32_FLOAT"
	}
	return fmt.Sprintf("DXGI_FORMAT(%d)", uint32(f))
}

// textureFormat is how one GL internal format is stored.
type textureFormat struct {
	Format     DXGIFormat
	PixelBytes uint32
	// RenderFormat is the GL format a render target of this format reports,
	// which differs when the storage is wider than requested.
	RenderFormat gl.GLenum
	Conversion   d3d.ImageConversion
}

var textureFormats = map[gl.GLenum]textureFormat{
	gl.R8:                 {Format: DXGI_FORMAT_R8_UNORM, PixelBytes: 1, RenderFormat: gl.R8},
	gl.RG8:                {Format: DXGI_FORMAT_R8G8_UNORM, PixelBytes: 2, RenderFormat: gl.RG8},
	gl.RGB8:               {Format: DXGI_FORMAT_R8G8B8A8_UNORM, PixelBytes: 4, RenderFormat: gl.RGB8, Conversion: d3d.RGB8ToRGBA8},
	gl.RGBA8:              {Format: DXGI_FORMAT_R8G8B8A8_UNORM, PixelBytes: 4, RenderFormat: gl.RGBA8},
	gl.BGRA8_EXT:          {Format: DXGI_FORMAT_B8G8R8A8_UNORM, PixelBytes: 4, RenderFormat: gl.BGRA8_EXT},
	gl.RGBA4:              {Format: DXGI_FORMAT_R8G8B8A8_UNORM, PixelBytes: 4, RenderFormat: gl.RGBA8, Conversion: d3d.RGBA4ToRGBA8},
	gl.RGB5_A1:            {Format: DXGI_FORMAT_R8G8B8A8_UNORM, PixelBytes: 4, RenderFormat: gl.RGBA8, Conversion: d3d.RGB5A1ToRGBA8},
	gl.RGB565:             {Format: DXGI_FORMAT_R8G8B8A8_UNORM, PixelBytes: 4, RenderFormat: gl.RGBA8, Conversion: d3d.RGB565ToRGBA8},
	gl.ALPHA8_EXT:         {Format: DXGI_FORMAT_A8_UNORM, PixelBytes: 1, RenderFormat: gl.ALPHA8_EXT},
	gl.LUMINANCE8_EXT:     {Format: DXGI_FORMAT_R8G8B8A8_UNORM, PixelBytes: 4, RenderFormat: gl.RGBA8, Conversion: d3d.LuminanceToRGBA8},
	gl.LUMINANCE8_ALPHA8:  {Format: DXGI_FORMAT_R8G8B8A8_UNORM, PixelBytes: 4, RenderFormat: gl.RGBA8, Conversion: d3d.LuminanceAlphaToRGBA8},
	gl.R16F:               {Format: DXGI_FORMAT_R16_FLOAT, PixelBytes: 2, RenderFormat: gl.R16F},
	gl.RGBA16F:            {Format: DXGI_FORMAT_R16G16B16A16_FLOAT, PixelBytes: 8, RenderFormat: gl.RGBA16F},
	gl.R32F:               {Format: DXGI_FORMAT_R32_FLOAT, PixelBytes: 4, RenderFormat: gl.R32F},
	gl.RGBA32F:            {Format: DXGI_FORMAT_R32G32B32A32_FLOAT, PixelBytes: 16, RenderFormat: gl.RGBA32F},
	gl.R32UI:              {Format: DXGI_FORMAT_R32_UINT, PixelBytes: 4, RenderFormat: gl.R32UI},
	gl.RGBA8UI:            {Format: DXGI_FORMAT_R8G8B8A8_UINT, PixelBytes: 4, RenderFormat: gl.RGBA8UI},
	gl.DEPTH_COMPONENT16:  {Format: DXGI_FORMAT_D16_UNORM, PixelBytes: 2, RenderFormat: gl.DEPTH_COMPONENT16},
	gl.DEPTH_COMPONENT24:  {Format: DXGI_FORMAT_D24_UNORM_S8_UINT, PixelBytes: 4, RenderFormat: gl.DEPTH24_STENCIL8},
	gl.DEPTH_COMPONENT32F: {Format: DXGI_FORMAT_D32_FLOAT, PixelBytes: 4, RenderFormat: gl.DEPTH_COMPONENT32F},
	gl.DEPTH24_STENCIL8:   {Format: DXGI_FORMAT_D24_UNORM_S8_UINT, PixelBytes: 4, RenderFormat: gl.DEPTH24_STENCIL8},
}

// GetTextureFormat returns the DXGI storage of a sized GL format.
func GetTextureFormat(internalFormat gl.GLenum) (textureFormat, bool) {
	f, ok := textureFormats[internalFormat]
	return f, ok
}

func isDepthFormat(f DXGIFormat) bool {
	return f == DXGI_FORMAT_D16_UNORM || f == DXGI_FORMAT_D24_UNORM_S8_UINT || f == DXGI_FORMAT_D32_FLOAT
}

// vertexFormatTable is indexed by component count - 1.
type vertexFormatTable struct {
	normalized [4]DXGIFormat
	integer    [4]DXGIFormat
}

// Three-component 8 and 16 bit formats do not exist and are converted.
var vertexFormatTables = map[gl.GLenum]vertexFormatTable{
	gl.BYTE: {
		normalized: [4]DXGIFormat{DXGI_FORMAT_R8_SNORM, DXGI_FORMAT_R8G8_SNORM, 0, DXGI_FORMAT_R8G8B8A8_SNORM},
		integer:    [4]DXGIFormat{DXGI_FORMAT_R8_SINT, DXGI_FORMAT_R8G8_SINT, 0, DXGI_FORMAT_R8G8B8A8_SINT},
	},
	gl.UNSIGNED_BYTE: {
		normalized: [4]DXGIFormat{DXGI_FORMAT_R8_UNORM, DXGI_FORMAT_R8G8_UNORM, 0, DXGI_FORMAT_R8G8B8A8_UNORM},
		integer:    [4]DXGIFormat{DXGI_FORMAT_R8_UINT, DXGI_FORMAT_R8G8_UINT, 0, DXGI_FORMAT_R8G8B8A8_UINT},
	},
	gl.SHORT: {
		normalized: [4]DXGIFormat{DXGI_FORMAT_R16_SNORM, DXGI_FORMAT_R16G16_SNORM, 0, DXGI_FORMAT_R16G16B16A16_SNORM},
		integer:    [4]DXGIFormat{DXGI_FORMAT_R16_SINT, DXGI_FORMAT_R16G16_SINT, 0, DXGI_FORMAT_R16G16B16A16_SINT},
	},
	gl.UNSIGNED_SHORT: {
		normalized: [4]DXGIFormat{DXGI_FORMAT_R16_UNORM, DXGI_FORMAT_R16G16_UNORM, 0, DXGI_FORMAT_R16G16B16A16_UNORM},
		integer:    [4]DXGIFormat{DXGI_FORMAT_R16_UINT, DXGI_FORMAT_R16G16_UINT, 0, DXGI_FORMAT_R16G16B16A16_UINT},
	},
	gl.INT: {
		integer: [4]DXGIFormat{DXGI_FORMAT_R32_SINT, DXGI_FORMAT_R32G32_SINT, DXGI_FORMAT_R32G32B32_SINT, DXGI_FORMAT_R32G32B32A32_SINT},
	},
	gl.UNSIGNED_INT: {
		integer: [4]DXGIFormat{DXGI_FORMAT_R32_UINT, DXGI_FORMAT_R32G32_UINT, DXGI_FORMAT_R32G32B32_UINT, DXGI_FORMAT_R32G32B32A32_UINT},
	},
	gl.HALF_FLOAT: {
		normalized: [4]DXGIFormat{DXGI_FORMAT_R16_FLOAT, DXGI_FORMAT_R16G16_FLOAT, 0, DXGI_FORMAT_R16G16B16A16_FLOAT},
	},
}

var floatFormats = [4]DXGIFormat{DXGI_FORMAT_R32_FLOAT, DXGI_FORMAT_R32G32_FLOAT, DXGI_FORMAT_R32G32B32_FLOAT, DXGI_FORMAT_R32G32B32A32_FLOAT}

// vertexFormats feeds normalized and pure-integer attributes to the input
// assembler as they are; everything else is widened to float.
type vertexFormats struct{}

func (vertexFormats) VertexFormat(key d3d.VertexFormatKey) d3d.VertexFormat {
	if key.Components < 1 || key.Components > 4 {
		return d3d.ConvertVertexToFloat(uint32(floatFormats[3]), key, 4)
	}
	i := key.Components - 1
	elementSize := gl.ElementSize(key.Type) * key.Components

	if key.Type == gl.FLOAT {
		return d3d.CopyVertexDirect(uint32(floatFormats[i]), elementSize)
	}
	if table, ok := vertexFormatTables[key.Type]; ok {
		var native DXGIFormat
		switch {
		case key.PureInteger:
			native = table.integer[i]
		case key.Normalized || key.Type == gl.HALF_FLOAT:
			native = table.normalized[i]
		}
		if native != DXGI_FORMAT_UNKNOWN {
			return d3d.CopyVertexDirect(uint32(native), elementSize)
		}
	}
	return d3d.ConvertVertexToFloat(uint32(floatFormats[i]), key, key.Components)
}
