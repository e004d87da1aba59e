package d3d

import (
	"encoding/binary"

	"github.com/spaghettifunk/gles/engine/core"
)

// ImageConversion moves pixels between a GL image layout and the layout a
// native format stores. A zero conversion copies bytes unchanged.
type ImageConversion struct {
	// GLPixelBytes and NativePixelBytes are the sizes of one pixel on each side.
	GLPixelBytes     uint32
	NativePixelBytes uint32
	Load             func(dst, src []byte)
	Unload           func(dst, src []byte)
}

func (c ImageConversion) Direct() bool {
	return c.Load == nil
}

// NativeSize returns the bytes glSize bytes of GL pixels occupy natively.
func (c ImageConversion) NativeSize(glSize int) int {
	if c.Direct() || c.GLPixelBytes == 0 {
		return glSize
	}
	return glSize / int(c.GLPixelBytes) * int(c.NativePixelBytes)
}

// ToNative converts a GL image into a new native buffer.
func (c ImageConversion) ToNative(src []byte) []byte {
	if c.Direct() {
		return src
	}
	dst := make([]byte, c.NativeSize(len(src)))
	c.Load(dst, src)
	return dst
}

// ToGL converts native bytes back into dst, which is laid out as a GL image.
func (c ImageConversion) ToGL(dst, src []byte) {
	if c.Direct() {
		copy(dst, src)
		return
	}
	if c.Unload == nil {
		core.Unreachable("conversion has no inverse")
	}
	c.Unload(dst, src)
}

func forEachPixel(dst, src []byte, dstBytes, srcBytes int, fn func(d, s []byte)) {
	n := min(len(dst)/dstBytes, len(src)/srcBytes)
	for i := 0; i < n; i++ {
		fn(dst[i*dstBytes:(i+1)*dstBytes], src[i*srcBytes:(i+1)*srcBytes])
	}
}

func expand4(v uint16) byte { return byte(v<<4 | v) }
func expand5(v uint16) byte { return byte(v<<3 | v>>2) }
func expand6(v uint16) byte { return byte(v<<2 | v>>4) }

var (
	// RGB8ToRGBA8 pads three-channel images with opaque alpha.
	RGB8ToRGBA8 = ImageConversion{
		GLPixelBytes: 3, NativePixelBytes: 4,
		Load: func(dst, src []byte) {
			forEachPixel(dst, src, 4, 3, func(d, s []byte) {
				d[0], d[1], d[2], d[3] = s[0], s[1], s[2], 0xFF
			})
		},
		Unload: func(dst, src []byte) {
			forEachPixel(dst, src, 3, 4, func(d, s []byte) {
				d[0], d[1], d[2] = s[0], s[1], s[2]
			})
		},
	}

	// RGB8ToBGRX8 also swaps red and blue for the BGRA memory order.
	RGB8ToBGRX8 = ImageConversion{
		GLPixelBytes: 3, NativePixelBytes: 4,
		Load: func(dst, src []byte) {
			forEachPixel(dst, src, 4, 3, func(d, s []byte) {
				d[0], d[1], d[2], d[3] = s[2], s[1], s[0], 0xFF
			})
		},
		Unload: func(dst, src []byte) {
			forEachPixel(dst, src, 3, 4, func(d, s []byte) {
				d[0], d[1], d[2] = s[2], s[1], s[0]
			})
		},
	}

	RGBA8ToBGRA8 = ImageConversion{
		GLPixelBytes: 4, NativePixelBytes: 4,
		Load: swapRedBlue,
		// The swap is its own inverse.
		Unload: swapRedBlue,
	}

	LuminanceToRGBA8 = ImageConversion{
		GLPixelBytes: 1, NativePixelBytes: 4,
		Load: func(dst, src []byte) {
			forEachPixel(dst, src, 4, 1, func(d, s []byte) {
				d[0], d[1], d[2], d[3] = s[0], s[0], s[0], 0xFF
			})
		},
		Unload: func(dst, src []byte) {
			forEachPixel(dst, src, 1, 4, func(d, s []byte) { d[0] = s[0] })
		},
	}

	LuminanceAlphaToRGBA8 = ImageConversion{
		GLPixelBytes: 2, NativePixelBytes: 4,
		Load: func(dst, src []byte) {
			forEachPixel(dst, src, 4, 2, func(d, s []byte) {
				d[0], d[1], d[2], d[3] = s[0], s[0], s[0], s[1]
			})
		},
		Unload: func(dst, src []byte) {
			forEachPixel(dst, src, 2, 4, func(d, s []byte) { d[0], d[1] = s[0], s[3] })
		},
	}

	RGBA4ToRGBA8 = ImageConversion{
		GLPixelBytes: 2, NativePixelBytes: 4,
		Load: func(dst, src []byte) {
			forEachPixel(dst, src, 4, 2, func(d, s []byte) {
				v := binary.LittleEndian.Uint16(s)
				d[0], d[1], d[2], d[3] = expand4(v>>12&0xF), expand4(v>>8&0xF), expand4(v>>4&0xF), expand4(v&0xF)
			})
		},
		Unload: func(dst, src []byte) {
			forEachPixel(dst, src, 2, 4, func(d, s []byte) {
				v := uint16(s[0]>>4)<<12 | uint16(s[1]>>4)<<8 | uint16(s[2]>>4)<<4 | uint16(s[3]>>4)
				binary.LittleEndian.PutUint16(d, v)
			})
		},
	}

	RGB5A1ToRGBA8 = ImageConversion{
		GLPixelBytes: 2, NativePixelBytes: 4,
		Load: func(dst, src []byte) {
			forEachPixel(dst, src, 4, 2, func(d, s []byte) {
				v := binary.LittleEndian.Uint16(s)
				d[0], d[1], d[2] = expand5(v>>11&0x1F), expand5(v>>6&0x1F), expand5(v>>1&0x1F)
				d[3] = byte(v&1) * 0xFF
			})
		},
		Unload: func(dst, src []byte) {
			forEachPixel(dst, src, 2, 4, func(d, s []byte) {
				v := uint16(s[0]>>3)<<11 | uint16(s[1]>>3)<<6 | uint16(s[2]>>3)<<1 | uint16(s[3]>>7)
				binary.LittleEndian.PutUint16(d, v)
			})
		},
	}

	RGB565ToRGBA8 = ImageConversion{
		GLPixelBytes: 2, NativePixelBytes: 4,
		Load: func(dst, src []byte) {
			forEachPixel(dst, src, 4, 2, func(d, s []byte) {
				v := binary.LittleEndian.Uint16(s)
				d[0], d[1], d[2], d[3] = expand5(v>>11&0x1F), expand6(v>>5&0x3F), expand5(v&0x1F), 0xFF
			})
		},
		Unload: func(dst, src []byte) {
			forEachPixel(dst, src, 2, 4, func(d, s []byte) {
				v := uint16(s[0]>>3)<<11 | uint16(s[1]>>2)<<5 | uint16(s[2]>>3)
				binary.LittleEndian.PutUint16(d, v)
			})
		},
	}

	// RGBA4ToARGB4 rotates alpha from the low nibble to the high one.
	RGBA4ToARGB4 = ImageConversion{
		GLPixelBytes: 2, NativePixelBytes: 2,
		Load: func(dst, src []byte) {
			forEachPixel(dst, src, 2, 2, func(d, s []byte) {
				v := binary.LittleEndian.Uint16(s)
				binary.LittleEndian.PutUint16(d, v>>4|v<<12)
			})
		},
		Unload: func(dst, src []byte) {
			forEachPixel(dst, src, 2, 2, func(d, s []byte) {
				v := binary.LittleEndian.Uint16(s)
				binary.LittleEndian.PutUint16(d, v<<4|v>>12)
			})
		},
	}

	// RGB5A1ToA1RGB5 moves alpha from bit 0 to bit 15.
	RGB5A1ToA1RGB5 = ImageConversion{
		GLPixelBytes: 2, NativePixelBytes: 2,
		Load: func(dst, src []byte) {
			forEachPixel(dst, src, 2, 2, func(d, s []byte) {
				v := binary.LittleEndian.Uint16(s)
				binary.LittleEndian.PutUint16(d, v>>1|v<<15)
			})
		},
		Unload: func(dst, src []byte) {
			forEachPixel(dst, src, 2, 2, func(d, s []byte) {
				v := binary.LittleEndian.Uint16(s)
				binary.LittleEndian.PutUint16(d, v<<1|v>>15)
			})
		},
	}
)

func swapRedBlue(dst, src []byte) {
	forEachPixel(dst, src, 4, 4, func(d, s []byte) {
		d[0], d[1], d[2], d[3] = s[2], s[1], s[0], s[3]
	})
}
