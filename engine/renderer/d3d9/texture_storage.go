package d3d9

import (
	"github.com/spaghettifunk/gles/engine/core"
	"github.com/spaghettifunk/gles/engine/renderer/d3d"
	"github.com/spaghettifunk/gles/engine/renderer/gl"
	"github.com/spaghettifunk/gles/engine/renderer/metadata"
	"github.com/spaghettifunk/gles/engine/renderer/native"
)

// surface9 is a render target surface: either a standalone surface or a
// level of a texture.
type surface9 struct {
	texture        *native.Texture
	ownsTexture    bool
	level, face    int
	width, height  int
	internalFormat gl.GLenum
	actualFormat   gl.GLenum
	samples        int
	serial         core.Serial
}

func (s *surface9) Width() int                { return s.width }
func (s *surface9) Height() int               { return s.height }
func (s *surface9) Depth() int                { return 1 }
func (s *surface9) InternalFormat() gl.GLenum { return s.internalFormat }
func (s *surface9) ActualFormat() gl.GLenum   { return s.actualFormat }
func (s *surface9) Samples() int              { return s.samples }
func (s *surface9) Serial() core.Serial       { return s.serial }

func (s *surface9) Release() {
	if s.ownsTexture && s.texture != nil {
		s.texture.Release()
	}
	s.texture = nil
}

// textureStorage9 is an IDirect3DTexture9 or an IDirect3DCubeTexture9.
type textureStorage9 struct {
	renderer       *Renderer9
	textureType    metadata.TextureType
	texture        *native.Texture
	internalFormat gl.GLenum
	format         textureFormat
	renderTarget   bool
	extents        metadata.Extents
	surfaces       map[metadata.ImageIndex]*surface9
}

func (r *Renderer9) newTextureStorage(textureType metadata.TextureType, internalFormat gl.GLenum, renderTarget bool,
	size metadata.Extents, faces, levels int) (d3d.TextureStorage, error) {
	format, ok := GetTextureFormat(internalFormat)
	if !ok {
		return nil, core.InvalidOperation("d3d9: unsupported texture format %#x", uint32(internalFormat))
	}
	if size.Width > r.caps.MaxTextureSize || size.Height > r.caps.MaxTextureSize {
		return nil, core.InvalidOperation("d3d9: %dx%d exceeds the maximum texture size %d", size.Width, size.Height, r.caps.MaxTextureSize)
	}
	bind := native.BindShaderResource
	if renderTarget {
		if isDepthFormat(format.Format) {
			bind |= native.BindDepthStencil
		} else {
			bind |= native.BindRenderTarget
		}
	}
	texture, res := r.device.CreateTexture(native.TextureDesc{
		Width:      size.Width,
		Height:     size.Height,
		Depth:      1,
		ArraySize:  faces,
		MipLevels:  levels,
		Format:     uint32(format.Format),
		PixelBytes: format.PixelBytes,
		Bind:       bind,
	})
	if err := native.Check(res, "failed to create %s texture (%dx%d, %s)", textureType, size.Width, size.Height, format.Format); err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	return &textureStorage9{
		renderer:       r,
		textureType:    textureType,
		texture:        texture,
		internalFormat: internalFormat,
		format:         format,
		renderTarget:   renderTarget,
		extents:        size,
		surfaces:       make(map[metadata.ImageIndex]*surface9),
	}, nil
}

func (s *textureStorage9) LevelCount() int           { return s.texture.Desc().MipLevels }
func (s *textureStorage9) IsRenderTarget() bool      { return s.renderTarget }
func (s *textureStorage9) Extents() metadata.Extents { return s.extents }

func (s *textureStorage9) levelExtents(level int) metadata.Extents {
	return metadata.Extents{
		Width:  max(1, s.extents.Width>>level),
		Height: max(1, s.extents.Height>>level),
		Depth:  1,
	}
}

func (s *textureStorage9) RenderTarget(index metadata.ImageIndex) (d3d.RenderTarget, error) {
	if !s.renderTarget {
		return nil, core.InvalidOperation("d3d9: %s texture was not created renderable", s.textureType)
	}
	if index.MipIndex < 0 || index.MipIndex >= s.LevelCount() {
		return nil, core.InvalidOperation("d3d9: level %d is outside the texture", index.MipIndex)
	}
	if surface, ok := s.surfaces[index]; ok {
		return surface, nil
	}
	e := s.levelExtents(index.MipIndex)
	surface := &surface9{
		texture:        s.texture,
		level:          index.MipIndex,
		face:           index.LayerIndex,
		width:          e.Width,
		height:         e.Height,
		internalFormat: s.internalFormat,
		actualFormat:   s.format.RenderFormat,
		serial:         s.renderer.serials.Issue(),
	}
	s.surfaces[index] = surface
	return surface, nil
}

func (s *textureStorage9) RenderTargetSerial(index metadata.ImageIndex) core.Serial {
	rt, err := s.RenderTarget(index)
	if err != nil {
		return 0
	}
	return rt.Serial()
}

func (s *textureStorage9) SetData(index metadata.ImageIndex, image *d3d.Image) error {
	res := s.texture.UpdateSubresource(index.MipIndex, index.LayerIndex, s.format.Conversion.ToNative(image.Data()))
	return native.Check(res, "failed to lock %s level %d face %d", s.textureType, index.MipIndex, index.LayerIndex)
}

func (s *textureStorage9) ReadData(index metadata.ImageIndex, image *d3d.Image) error {
	src, res := s.texture.Subresource(index.MipIndex, index.LayerIndex)
	if err := native.Check(res, "failed to lock %s level %d face %d", s.textureType, index.MipIndex, index.LayerIndex); err != nil {
		return err
	}
	data := make([]byte, len(image.Data()))
	s.format.Conversion.ToGL(data, src)
	image.CopyFrom(data)
	return nil
}

// GenerateMipmap stands in for a StretchRect between two levels.
func (s *textureStorage9) GenerateMipmap(src, dst metadata.ImageIndex) error {
	from, res := s.texture.Subresource(src.MipIndex, src.LayerIndex)
	if err := native.Check(res, "failed to read mip level %d", src.MipIndex); err != nil {
		return err
	}
	info, ok := gl.GetInternalFormatInfo(s.internalFormat)
	if !ok {
		core.Unreachable("texture created with unknown format %#x", uint32(s.internalFormat))
	}
	srcExtents, dstExtents := s.levelExtents(src.MipIndex), s.levelExtents(dst.MipIndex)
	srcGL := make([]byte, srcExtents.Width*srcExtents.Height*int(info.PixelBytes))
	dstGL := make([]byte, dstExtents.Width*dstExtents.Height*int(info.PixelBytes))
	s.format.Conversion.ToGL(srcGL, from)
	if err := d3d.GenerateMipmapLevel(s.internalFormat, srcGL, srcExtents, dstGL, dstExtents); err != nil {
		return err
	}
	res = s.texture.UpdateSubresource(dst.MipIndex, dst.LayerIndex, s.format.Conversion.ToNative(dstGL))
	return native.Check(res, "failed to write mip level %d", dst.MipIndex)
}

func (s *textureStorage9) CopyToStorage(dst d3d.TextureStorage) error {
	target, ok := dst.(*textureStorage9)
	if !ok {
		core.Unreachable("d3d9 texture copied into %T", dst)
	}
	levels := min(s.LevelCount(), target.LevelCount())
	faces := min(s.texture.Desc().ArraySize, target.texture.Desc().ArraySize)
	for face := 0; face < faces; face++ {
		for level := 0; level < levels; level++ {
			res := target.texture.CopySubresource(level, face, s.texture, level, face)
			if err := native.Check(res, "failed to copy level %d face %d", level, face); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *textureStorage9) Release() {
	for _, surface := range s.surfaces {
		surface.Release()
	}
	clear(s.surfaces)
	if s.texture != nil {
		s.texture.Release()
	}
}
