package d3d

import (
	"encoding/binary"
	"image"
	"math"

	"golang.org/x/image/draw"

	"github.com/spaghettifunk/gles/engine/core"
	"github.com/spaghettifunk/gles/engine/renderer/gl"
	"github.com/spaghettifunk/gles/engine/renderer/metadata"
)

// Image is the system-memory copy of one texture image. Pixels are tightly
// packed rows of the sized internal format.
type Image struct {
	internalFormat gl.GLenum
	pixelBytes     uint32
	extents        metadata.Extents
	data           []byte
	dirty          bool
}

func NewImage() *Image {
	return &Image{}
}

func (i *Image) Width() int                { return i.extents.Width }
func (i *Image) Height() int               { return i.extents.Height }
func (i *Image) Depth() int                { return i.extents.Depth }
func (i *Image) Extents() metadata.Extents { return i.extents }
func (i *Image) InternalFormat() gl.GLenum { return i.internalFormat }
func (i *Image) IsDirty() bool             { return i.dirty }
func (i *Image) MarkDirty()                { i.dirty = true }
func (i *Image) MarkClean()                { i.dirty = false }

// Data returns the pixel bytes; it is nil for a zero-sized image.
func (i *Image) Data() []byte {
	return i.data
}

func (i *Image) RowPitch() int {
	return i.extents.Width * int(i.pixelBytes)
}

func (i *Image) DepthPitch() int {
	return i.RowPitch() * i.extents.Height
}

// Redefine changes the format or size of the image and reports whether it
// changed. Contents are discarded on change.
func (i *Image) Redefine(internalFormat gl.GLenum, size metadata.Extents) bool {
	if i.internalFormat == internalFormat && i.extents == size {
		return false
	}
	info, _ := gl.GetInternalFormatInfo(internalFormat)
	i.internalFormat = internalFormat
	i.pixelBytes = info.PixelBytes
	i.extents = size
	i.data = nil
	if !size.Empty() && info.PixelBytes != 0 {
		i.data = make([]byte, size.Width*size.Height*size.Depth*int(info.PixelBytes))
	}
	i.dirty = true
	return true
}

// LoadData copies tightly packed pixels into box.
func (i *Image) LoadData(box metadata.Box, pixels []byte) error {
	if box.Empty() {
		return nil
	}
	if box.X < 0 || box.Y < 0 || box.Z < 0 ||
		box.X+box.Width > i.extents.Width || box.Y+box.Height > i.extents.Height || box.Z+box.Depth > i.extents.Depth {
		return core.InvalidOperation("region %+v is outside a %dx%dx%d image", box, i.extents.Width, i.extents.Height, i.extents.Depth)
	}
	rowBytes := box.Width * int(i.pixelBytes)
	if len(pixels) < rowBytes*box.Height*box.Depth {
		return core.InvalidOperation("pixel data holds %d bytes, %d required", len(pixels), rowBytes*box.Height*box.Depth)
	}
	for z := 0; z < box.Depth; z++ {
		for y := 0; y < box.Height; y++ {
			src := pixels[(z*box.Height+y)*rowBytes:]
			dst := i.data[(box.Z+z)*i.DepthPitch()+(box.Y+y)*i.RowPitch()+box.X*int(i.pixelBytes):]
			copy(dst[:rowBytes], src[:rowBytes])
		}
	}
	i.dirty = true
	return nil
}

// CopyFrom replaces the contents with data read back from a storage.
func (i *Image) CopyFrom(data []byte) {
	copy(i.data, data)
	i.dirty = false
}

// GenerateMipmap fills dst, which must be the next smaller level of src, by
// box-filtering src.
func GenerateMipmap(dst, src *Image) error {
	if dst.internalFormat != src.internalFormat {
		core.Unreachable("mipmap levels disagree on format: %#x vs %#x", uint32(dst.internalFormat), uint32(src.internalFormat))
	}
	if err := GenerateMipmapLevel(src.internalFormat, src.data, src.extents, dst.data, dst.extents); err != nil {
		return err
	}
	dst.dirty = true
	return nil
}

// GenerateMipmapLevel downsamples src into dst for the given sized format.
// Eight-bit RGBA images are scaled through x/image/draw, the rest are averaged
// component by component.
func GenerateMipmapLevel(format gl.GLenum, src []byte, srcSize metadata.Extents, dst []byte, dstSize metadata.Extents) error {
	info, ok := gl.GetInternalFormatInfo(format)
	if !ok {
		return core.InvalidOperation("cannot generate mipmaps for format %#x", uint32(format))
	}
	if srcSize.Empty() || dstSize.Empty() {
		return nil
	}

	if (format == gl.RGBA8 || format == gl.BGRA8_EXT) && srcSize.Depth == 1 && dstSize.Depth == 1 {
		srcImg := &image.NRGBA{Pix: src, Stride: srcSize.Width * 4, Rect: image.Rect(0, 0, srcSize.Width, srcSize.Height)}
		dstImg := &image.NRGBA{Pix: dst, Stride: dstSize.Width * 4, Rect: image.Rect(0, 0, dstSize.Width, dstSize.Height)}
		draw.BiLinear.Scale(dstImg, dstImg.Bounds(), srcImg, srcImg.Bounds(), draw.Src, nil)
		return nil
	}

	pixelBytes := int(info.PixelBytes)
	componentSize := int(gl.ElementSize(info.ComponentType))
	if componentSize == 0 || pixelBytes%componentSize != 0 || info.IsDepthOrStencil() {
		return core.InvalidOperation("cannot generate mipmaps for format %#x", uint32(format))
	}
	components := pixelBytes / componentSize
	read, write := componentCodec(info.ComponentType)

	for z := 0; z < dstSize.Depth; z++ {
		for y := 0; y < dstSize.Height; y++ {
			for x := 0; x < dstSize.Width; x++ {
				for c := 0; c < components; c++ {
					var sum float64
					samples := 0
					for dz := 0; dz < 2; dz++ {
						for dy := 0; dy < 2; dy++ {
							for dx := 0; dx < 2; dx++ {
								sx := min(x*2+dx, srcSize.Width-1)
								sy := min(y*2+dy, srcSize.Height-1)
								sz := min(z*2+dz, srcSize.Depth-1)
								at := ((sz*srcSize.Height+sy)*srcSize.Width+sx)*pixelBytes + c*componentSize
								sum += read(src[at:])
								samples++
							}
						}
					}
					at := ((z*dstSize.Height+y)*dstSize.Width+x)*pixelBytes + c*componentSize
					write(dst[at:], sum/float64(samples))
				}
			}
		}
	}
	return nil
}

func componentCodec(t gl.GLenum) (func([]byte) float64, func([]byte, float64)) {
	switch t {
	case gl.UNSIGNED_BYTE:
		return func(b []byte) float64 { return float64(b[0]) },
			func(b []byte, v float64) { b[0] = uint8(math.Round(v)) }
	case gl.UNSIGNED_SHORT:
		return func(b []byte) float64 { return float64(binary.LittleEndian.Uint16(b)) },
			func(b []byte, v float64) { binary.LittleEndian.PutUint16(b, uint16(math.Round(v))) }
	case gl.UNSIGNED_INT:
		return func(b []byte) float64 { return float64(binary.LittleEndian.Uint32(b)) },
			func(b []byte, v float64) { binary.LittleEndian.PutUint32(b, uint32(math.Round(v))) }
	case gl.FLOAT:
		return func(b []byte) float64 { return float64(math.Float32frombits(binary.LittleEndian.Uint32(b))) },
			func(b []byte, v float64) { binary.LittleEndian.PutUint32(b, math.Float32bits(float32(v))) }
	case gl.HALF_FLOAT:
		return func(b []byte) float64 { return float64(halfToFloat(binary.LittleEndian.Uint16(b))) },
			func(b []byte, v float64) { binary.LittleEndian.PutUint16(b, floatToHalf(float32(v))) }
	}
	core.Unreachable("no mipmap codec for component type %#x", uint32(t))
	return nil, nil
}

func floatToHalf(f float32) uint16 {
	bits := math.Float32bits(f)
	sign := uint16(bits>>16) & 0x8000
	exp := int32(bits>>23&0xFF) - 127 + 15
	mant := bits & 0x7FFFFF
	switch {
	case exp <= 0:
		return sign
	case exp >= 0x1F:
		return sign | 0x7C00
	}
	return sign | uint16(exp)<<10 | uint16(mant>>13)
}
