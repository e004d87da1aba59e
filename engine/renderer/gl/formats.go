package gl

// InternalFormatInfo describes a sized internal format.
type InternalFormatInfo struct {
	PixelBytes  uint32
	RedBits     uint8
	GreenBits   uint8
	BlueBits    uint8
	AlphaBits   uint8
	DepthBits   uint8
	StencilBits uint8
	// ComponentType is the type of one stored component.
	ComponentType GLenum
	Renderable    bool
	Filterable    bool
}

var formatTable = map[GLenum]InternalFormatInfo{
	R8:                 {PixelBytes: 1, RedBits: 8, ComponentType: UNSIGNED_BYTE, Renderable: true, Filterable: true},
	RG8:                {PixelBytes: 2, RedBits: 8, GreenBits: 8, ComponentType: UNSIGNED_BYTE, Renderable: true, Filterable: true},
	RGB8:               {PixelBytes: 3, RedBits: 8, GreenBits: 8, BlueBits: 8, ComponentType: UNSIGNED_BYTE, Renderable: true, Filterable: true},
	RGBA8:              {PixelBytes: 4, RedBits: 8, GreenBits: 8, BlueBits: 8, AlphaBits: 8, ComponentType: UNSIGNED_BYTE, Renderable: true, Filterable: true},
	BGRA8_EXT:          {PixelBytes: 4, RedBits: 8, GreenBits: 8, BlueBits: 8, AlphaBits: 8, ComponentType: UNSIGNED_BYTE, Renderable: true, Filterable: true},
	RGBA4:              {PixelBytes: 2, RedBits: 4, GreenBits: 4, BlueBits: 4, AlphaBits: 4, ComponentType: UNSIGNED_SHORT, Renderable: true, Filterable: true},
	RGB5_A1:            {PixelBytes: 2, RedBits: 5, GreenBits: 5, BlueBits: 5, AlphaBits: 1, ComponentType: UNSIGNED_SHORT, Renderable: true, Filterable: true},
	RGB565:             {PixelBytes: 2, RedBits: 5, GreenBits: 6, BlueBits: 5, ComponentType: UNSIGNED_SHORT, Renderable: true, Filterable: true},
	ALPHA8_EXT:         {PixelBytes: 1, AlphaBits: 8, ComponentType: UNSIGNED_BYTE, Filterable: true},
	LUMINANCE8_EXT:     {PixelBytes: 1, RedBits: 8, ComponentType: UNSIGNED_BYTE, Filterable: true},
	LUMINANCE8_ALPHA8:  {PixelBytes: 2, RedBits: 8, AlphaBits: 8, ComponentType: UNSIGNED_BYTE, Filterable: true},
	R16F:               {PixelBytes: 2, RedBits: 16, ComponentType: HALF_FLOAT, Renderable: true, Filterable: true},
	RGBA16F:            {PixelBytes: 8, RedBits: 16, GreenBits: 16, BlueBits: 16, AlphaBits: 16, ComponentType: HALF_FLOAT, Renderable: true, Filterable: true},
	R32F:               {PixelBytes: 4, RedBits: 32, ComponentType: FLOAT, Renderable: true},
	RGBA32F:            {PixelBytes: 16, RedBits: 32, GreenBits: 32, BlueBits: 32, AlphaBits: 32, ComponentType: FLOAT, Renderable: true},
	R32UI:              {PixelBytes: 4, RedBits: 32, ComponentType: UNSIGNED_INT, Renderable: true},
	RGBA8UI:            {PixelBytes: 4, RedBits: 8, GreenBits: 8, BlueBits: 8, AlphaBits: 8, ComponentType: UNSIGNED_BYTE, Renderable: true},
	DEPTH_COMPONENT16:  {PixelBytes: 2, DepthBits: 16, ComponentType: UNSIGNED_SHORT, Renderable: true},
	DEPTH_COMPONENT24:  {PixelBytes: 4, DepthBits: 24, ComponentType: UNSIGNED_INT, Renderable: true},
	DEPTH_COMPONENT32F: {PixelBytes: 4, DepthBits: 32, ComponentType: FLOAT, Renderable: true},
	DEPTH24_STENCIL8:   {PixelBytes: 4, DepthBits: 24, StencilBits: 8, ComponentType: UNSIGNED_INT, Renderable: true},
	STENCIL_INDEX8:     {PixelBytes: 1, StencilBits: 8, ComponentType: UNSIGNED_BYTE, Renderable: true},
}

// GetInternalFormatInfo returns the description of a sized format and false
// for formats the layer does not know.
func GetInternalFormatInfo(format GLenum) (InternalFormatInfo, bool) {
	info, ok := formatTable[format]
	return info, ok
}

func (i InternalFormatInfo) IsDepthOrStencil() bool {
	return i.DepthBits > 0 || i.StencilBits > 0
}

// SizedFormat resolves an unsized (format, type) pair to its sized internal
// format. Sized formats are returned unchanged.
func SizedFormat(format, typ GLenum) GLenum {
	if _, ok := formatTable[format]; ok {
		return format
	}
	switch format {
	case RGBA:
		switch typ {
		case FLOAT:
			return RGBA32F
		case HALF_FLOAT:
			return RGBA16F
		}
		return RGBA8
	case RGB:
		return RGB8
	case ALPHA:
		return ALPHA8_EXT
	case LUMINANCE:
		return LUMINANCE8_EXT
	case LUMINANCE_ALPHA:
		return LUMINANCE8_ALPHA8
	case BGRA_EXT:
		return BGRA8_EXT
	case DEPTH_COMPONENT:
		if typ == UNSIGNED_INT {
			return DEPTH_COMPONENT24
		}
		return DEPTH_COMPONENT16
	}
	return NONE
}
