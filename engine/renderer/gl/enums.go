// Package gl holds the OpenGL ES enumerants and format tables the
// translation layer works in terms of.
package gl

type GLenum uint32

const (
	NONE GLenum = 0

	BYTE           GLenum = 0x1400
	UNSIGNED_BYTE  GLenum = 0x1401
	SHORT          GLenum = 0x1402
	UNSIGNED_SHORT GLenum = 0x1403
	INT            GLenum = 0x1404
	UNSIGNED_INT   GLenum = 0x1405
	FLOAT          GLenum = 0x1406
	FIXED          GLenum = 0x140C
	HALF_FLOAT     GLenum = 0x140B

	UNSIGNED_INT_2_10_10_10_REV GLenum = 0x8368
	INT_2_10_10_10_REV          GLenum = 0x8D9F
)

// Errors
const (
	NO_ERROR          GLenum = 0
	INVALID_ENUM      GLenum = 0x0500
	INVALID_VALUE     GLenum = 0x0501
	INVALID_OPERATION GLenum = 0x0502
	OUT_OF_MEMORY     GLenum = 0x0505
)

// Buffer usages
const (
	STREAM_DRAW  GLenum = 0x88E0
	STREAM_READ  GLenum = 0x88E1
	STREAM_COPY  GLenum = 0x88E2
	STATIC_DRAW  GLenum = 0x88E4
	STATIC_READ  GLenum = 0x88E5
	STATIC_COPY  GLenum = 0x88E6
	DYNAMIC_DRAW GLenum = 0x88E8
	DYNAMIC_READ GLenum = 0x88E9
	DYNAMIC_COPY GLenum = 0x88EA
)

// Map access bits
const (
	MAP_READ_BIT              GLenum = 0x0001
	MAP_WRITE_BIT             GLenum = 0x0002
	MAP_INVALIDATE_RANGE_BIT  GLenum = 0x0004
	MAP_INVALIDATE_BUFFER_BIT GLenum = 0x0008
)

// Texture targets
const (
	TEXTURE_2D                  GLenum = 0x0DE1
	TEXTURE_3D                  GLenum = 0x806F
	TEXTURE_2D_ARRAY            GLenum = 0x8C1A
	TEXTURE_CUBE_MAP            GLenum = 0x8513
	TEXTURE_CUBE_MAP_POSITIVE_X GLenum = 0x8515
	TEXTURE_CUBE_MAP_NEGATIVE_X GLenum = 0x8516
	TEXTURE_CUBE_MAP_POSITIVE_Y GLenum = 0x8517
	TEXTURE_CUBE_MAP_NEGATIVE_Y GLenum = 0x8518
	TEXTURE_CUBE_MAP_POSITIVE_Z GLenum = 0x8519
	TEXTURE_CUBE_MAP_NEGATIVE_Z GLenum = 0x851A
	RENDERBUFFER                GLenum = 0x8D41
)

// Unsized formats
const (
	ALPHA           GLenum = 0x1906
	RGB             GLenum = 0x1907
	RGBA            GLenum = 0x1908
	LUMINANCE       GLenum = 0x1909
	LUMINANCE_ALPHA GLenum = 0x190A
	DEPTH_COMPONENT GLenum = 0x1902
	BGRA_EXT        GLenum = 0x80E1
)

// Sized internal formats
const (
	R8                 GLenum = 0x8229
	RG8                GLenum = 0x822B
	RGB8               GLenum = 0x8051
	RGBA8              GLenum = 0x8058
	RGBA4              GLenum = 0x8056
	RGB5_A1            GLenum = 0x8057
	RGB565             GLenum = 0x8D62
	BGRA8_EXT          GLenum = 0x93A1
	ALPHA8_EXT         GLenum = 0x803C
	LUMINANCE8_EXT     GLenum = 0x8040
	LUMINANCE8_ALPHA8  GLenum = 0x8045
	R16F               GLenum = 0x822D
	RGBA16F            GLenum = 0x881A
	R32F               GLenum = 0x822E
	RGBA32F            GLenum = 0x8814
	R32UI              GLenum = 0x8236
	RGBA8UI            GLenum = 0x8D7C
	DEPTH_COMPONENT16  GLenum = 0x81A5
	DEPTH_COMPONENT24  GLenum = 0x81A6
	DEPTH_COMPONENT32F GLenum = 0x8CAC
	DEPTH24_STENCIL8   GLenum = 0x88F0
	STENCIL_INDEX8     GLenum = 0x8D48
)

// Blend factors
const (
	ZERO                     GLenum = 0
	ONE                      GLenum = 1
	SRC_COLOR                GLenum = 0x0300
	ONE_MINUS_SRC_COLOR      GLenum = 0x0301
	SRC_ALPHA                GLenum = 0x0302
	ONE_MINUS_SRC_ALPHA      GLenum = 0x0303
	DST_ALPHA                GLenum = 0x0304
	ONE_MINUS_DST_ALPHA      GLenum = 0x0305
	DST_COLOR                GLenum = 0x0306
	ONE_MINUS_DST_COLOR      GLenum = 0x0307
	SRC_ALPHA_SATURATE       GLenum = 0x0308
	CONSTANT_COLOR           GLenum = 0x8001
	ONE_MINUS_CONSTANT_COLOR GLenum = 0x8002
	CONSTANT_ALPHA           GLenum = 0x8003
	ONE_MINUS_CONSTANT_ALPHA GLenum = 0x8004
)

// Blend equations
const (
	FUNC_ADD              GLenum = 0x8006
	FUNC_SUBTRACT         GLenum = 0x800A
	FUNC_REVERSE_SUBTRACT GLenum = 0x800B
	MIN                   GLenum = 0x8007
	MAX                   GLenum = 0x8008
)

// Comparison functions
const (
	NEVER    GLenum = 0x0200
	LESS     GLenum = 0x0201
	EQUAL    GLenum = 0x0202
	LEQUAL   GLenum = 0x0203
	GREATER  GLenum = 0x0204
	NOTEQUAL GLenum = 0x0205
	GEQUAL   GLenum = 0x0206
	ALWAYS   GLenum = 0x0207
)

// Stencil operations
const (
	KEEP      GLenum = 0x1E00
	REPLACE   GLenum = 0x1E01
	INCR      GLenum = 0x1E02
	DECR      GLenum = 0x1E03
	INVERT    GLenum = 0x150A
	INCR_WRAP GLenum = 0x8507
	DECR_WRAP GLenum = 0x8508
)

// Faces
const (
	FRONT          GLenum = 0x0404
	BACK           GLenum = 0x0405
	FRONT_AND_BACK GLenum = 0x0408
	CW             GLenum = 0x0900
	CCW            GLenum = 0x0901
)

// Sampling
const (
	NEAREST                GLenum = 0x2600
	LINEAR                 GLenum = 0x2601
	NEAREST_MIPMAP_NEAREST GLenum = 0x2700
	LINEAR_MIPMAP_NEAREST  GLenum = 0x2701
	NEAREST_MIPMAP_LINEAR  GLenum = 0x2702
	LINEAR_MIPMAP_LINEAR   GLenum = 0x2703
	REPEAT                 GLenum = 0x2901
	CLAMP_TO_EDGE          GLenum = 0x812F
	MIRRORED_REPEAT        GLenum = 0x8370
	COMPARE_REF_TO_TEXTURE GLenum = 0x884E
)

// Primitive modes
const (
	POINTS         GLenum = 0x0000
	LINES          GLenum = 0x0001
	LINE_LOOP      GLenum = 0x0002
	LINE_STRIP     GLenum = 0x0003
	TRIANGLES      GLenum = 0x0004
	TRIANGLE_STRIP GLenum = 0x0005
	TRIANGLE_FAN   GLenum = 0x0006
)

// ElementSize returns the byte size of one component of the given type, or 0
// for types that are not plain scalars.
func ElementSize(t GLenum) uint32 {
	switch t {
	case BYTE, UNSIGNED_BYTE:
		return 1
	case SHORT, UNSIGNED_SHORT, HALF_FLOAT:
		return 2
	case INT, UNSIGNED_INT, FLOAT, FIXED:
		return 4
	case UNSIGNED_INT_2_10_10_10_REV, INT_2_10_10_10_REV:
		return 4
	}
	return 0
}

// IsIndexType reports whether t is a valid DrawElements index type.
func IsIndexType(t GLenum) bool {
	return t == UNSIGNED_BYTE || t == UNSIGNED_SHORT || t == UNSIGNED_INT
}

// IsDynamicUsage reports whether a buffer usage hint expects frequent updates.
func IsDynamicUsage(usage GLenum) bool {
	switch usage {
	case STREAM_DRAW, STREAM_READ, STREAM_COPY, DYNAMIC_DRAW, DYNAMIC_READ, DYNAMIC_COPY:
		return true
	}
	return false
}

func IsCubeMapFaceTarget(target GLenum) bool {
	return target >= TEXTURE_CUBE_MAP_POSITIVE_X && target <= TEXTURE_CUBE_MAP_NEGATIVE_Z
}

// CubeFaceIndex maps a cube face target to 0..5.
func CubeFaceIndex(target GLenum) int {
	return int(target - TEXTURE_CUBE_MAP_POSITIVE_X)
}

func IsPow2(x int) bool {
	return x > 0 && x&(x-1) == 0
}

// Log2 returns floor(log2(x)) for x > 0 and 0 otherwise.
func Log2(x int) int {
	r := 0
	for x > 1 {
		x >>= 1
		r++
	}
	return r
}
