package d3d11

import (
	"github.com/spaghettifunk/gles/engine/core"
	"github.com/spaghettifunk/gles/engine/renderer/d3d"
	"github.com/spaghettifunk/gles/engine/renderer/gl"
	"github.com/spaghettifunk/gles/engine/renderer/metadata"
	"github.com/spaghettifunk/gles/engine/renderer/native"
)

// renderTarget11 is a view of one subresource. Standalone targets created
// for renderbuffers own their texture; views into a texture storage do not.
type renderTarget11 struct {
	texture        *native.Texture
	ownsTexture    bool
	level, layer   int
	width, height  int
	depth          int
	internalFormat gl.GLenum
	actualFormat   gl.GLenum
	samples        int
	serial         core.Serial
}

func (t *renderTarget11) Width() int                { return t.width }
func (t *renderTarget11) Height() int               { return t.height }
func (t *renderTarget11) Depth() int                { return t.depth }
func (t *renderTarget11) InternalFormat() gl.GLenum { return t.internalFormat }
func (t *renderTarget11) ActualFormat() gl.GLenum   { return t.actualFormat }
func (t *renderTarget11) Samples() int              { return t.samples }
func (t *renderTarget11) Serial() core.Serial       { return t.serial }

// Texture is the native resource the view points into.
func (t *renderTarget11) Texture() *native.Texture {
	return t.texture
}

func (t *renderTarget11) Release() {
	if t.ownsTexture && t.texture != nil {
		t.texture.Release()
	}
	t.texture = nil
}

// textureStorage11 backs every texture type. Cube maps and 2D arrays are
// texture arrays, 3D textures keep all slices of a level in one subresource.
type textureStorage11 struct {
	renderer       *Renderer11
	textureType    metadata.TextureType
	texture        *native.Texture
	internalFormat gl.GLenum
	format         textureFormat
	renderTarget   bool
	extents        metadata.Extents
	layers         int
	targets        map[metadata.ImageIndex]*renderTarget11
}

func (r *Renderer11) newTextureStorage(textureType metadata.TextureType, internalFormat gl.GLenum, renderTarget bool,
	extents metadata.Extents, layers, levels int) (d3d.TextureStorage, error) {
	format, ok := GetTextureFormat(internalFormat)
	if !ok {
		return nil, core.InvalidOperation("d3d11: unsupported texture format %#x", uint32(internalFormat))
	}
	bind := native.BindShaderResource
	if renderTarget {
		if isDepthFormat(format.Format) {
			bind |= native.BindDepthStencil
		} else {
			bind |= native.BindRenderTarget
		}
	}
	depth := 1
	if textureType == metadata.TextureType3d {
		depth = extents.Depth
	}
	texture, res := r.device.CreateTexture(native.TextureDesc{
		Width:      extents.Width,
		Height:     extents.Height,
		Depth:      depth,
		ArraySize:  layers,
		MipLevels:  levels,
		Format:     uint32(format.Format),
		PixelBytes: format.PixelBytes,
		Bind:       bind,
	})
	if err := native.Check(res, "failed to create %s texture storage (%dx%dx%d, %s)", textureType,
		extents.Width, extents.Height, extents.Depth, format.Format); err != nil {
		core.LogError(err.Error())
		return nil, err
	}
	return &textureStorage11{
		renderer:       r,
		textureType:    textureType,
		texture:        texture,
		internalFormat: internalFormat,
		format:         format,
		renderTarget:   renderTarget,
		extents:        extents,
		layers:         layers,
		targets:        make(map[metadata.ImageIndex]*renderTarget11),
	}, nil
}

func (s *textureStorage11) LevelCount() int           { return s.texture.Desc().MipLevels }
func (s *textureStorage11) IsRenderTarget() bool      { return s.renderTarget }
func (s *textureStorage11) Extents() metadata.Extents { return s.extents }

// levelExtents is the size of one subresource of level.
func (s *textureStorage11) levelExtents(level int) metadata.Extents {
	e := metadata.Extents{
		Width:  max(1, s.extents.Width>>level),
		Height: max(1, s.extents.Height>>level),
		Depth:  1,
	}
	if s.textureType == metadata.TextureType3d {
		e.Depth = max(1, s.extents.Depth>>level)
	}
	return e
}

// subresource maps an image index to (level, array layer). A 3D index names a
// slice for rendering but every slice shares the level's subresource.
func (s *textureStorage11) subresource(index metadata.ImageIndex) (int, int) {
	if s.textureType == metadata.TextureType3d {
		return index.MipIndex, 0
	}
	return index.MipIndex, index.LayerIndex
}

func (s *textureStorage11) RenderTarget(index metadata.ImageIndex) (d3d.RenderTarget, error) {
	if !s.renderTarget {
		return nil, core.InvalidOperation("d3d11: %s storage was not created renderable", s.textureType)
	}
	if index.MipIndex < 0 || index.MipIndex >= s.LevelCount() {
		return nil, core.InvalidOperation("d3d11: level %d is outside the storage", index.MipIndex)
	}
	if rt, ok := s.targets[index]; ok {
		return rt, nil
	}
	level, layer := s.subresource(index)
	e := s.levelExtents(level)
	rt := &renderTarget11{
		texture:        s.texture,
		level:          level,
		layer:          layer,
		width:          e.Width,
		height:         e.Height,
		depth:          1,
		internalFormat: s.internalFormat,
		actualFormat:   s.format.RenderFormat,
		serial:         s.renderer.serials.Issue(),
	}
	s.targets[index] = rt
	return rt, nil
}

func (s *textureStorage11) RenderTargetSerial(index metadata.ImageIndex) core.Serial {
	rt, err := s.RenderTarget(index)
	if err != nil {
		return 0
	}
	return rt.Serial()
}

func (s *textureStorage11) SetData(index metadata.ImageIndex, image *d3d.Image) error {
	level, layer := s.subresource(index)
	res := s.texture.UpdateSubresource(level, layer, s.format.Conversion.ToNative(image.Data()))
	return native.Check(res, "failed to update %s level %d layer %d", s.textureType, level, layer)
}

func (s *textureStorage11) ReadData(index metadata.ImageIndex, image *d3d.Image) error {
	level, layer := s.subresource(index)
	src, res := s.texture.Subresource(level, layer)
	if err := native.Check(res, "failed to read %s level %d layer %d", s.textureType, level, layer); err != nil {
		return err
	}
	data := make([]byte, len(image.Data()))
	s.format.Conversion.ToGL(data, src)
	image.CopyFrom(data)
	return nil
}

// GenerateMipmap filters src into dst in GL layout so converted formats are
// averaged per channel.
func (s *textureStorage11) GenerateMipmap(src, dst metadata.ImageIndex) error {
	srcLevel, srcLayer := s.subresource(src)
	dstLevel, dstLayer := s.subresource(dst)
	from, res := s.texture.Subresource(srcLevel, srcLayer)
	if err := native.Check(res, "failed to read mip level %d", srcLevel); err != nil {
		return err
	}

	info, ok := gl.GetInternalFormatInfo(s.internalFormat)
	if !ok {
		core.Unreachable("storage created with unknown format %#x", uint32(s.internalFormat))
	}
	srcExtents, dstExtents := s.levelExtents(srcLevel), s.levelExtents(dstLevel)
	srcGL := make([]byte, srcExtents.Width*srcExtents.Height*srcExtents.Depth*int(info.PixelBytes))
	dstGL := make([]byte, dstExtents.Width*dstExtents.Height*dstExtents.Depth*int(info.PixelBytes))
	s.format.Conversion.ToGL(srcGL, from)
	if err := d3d.GenerateMipmapLevel(s.internalFormat, srcGL, srcExtents, dstGL, dstExtents); err != nil {
		return err
	}
	res = s.texture.UpdateSubresource(dstLevel, dstLayer, s.format.Conversion.ToNative(dstGL))
	return native.Check(res, "failed to write mip level %d", dstLevel)
}

func (s *textureStorage11) CopyToStorage(dst d3d.TextureStorage) error {
	target, ok := dst.(*textureStorage11)
	if !ok {
		core.Unreachable("d3d11 storage copied into %T", dst)
	}
	levels := min(s.LevelCount(), target.LevelCount())
	layers := min(s.texture.Desc().ArraySize, target.texture.Desc().ArraySize)
	for layer := 0; layer < layers; layer++ {
		for level := 0; level < levels; level++ {
			res := target.texture.CopySubresource(level, layer, s.texture, level, layer)
			if err := native.Check(res, "failed to copy level %d layer %d", level, layer); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *textureStorage11) Release() {
	for _, rt := range s.targets {
		rt.Release()
	}
	clear(s.targets)
	if s.texture != nil {
		s.texture.Release()
	}
}
