package d3d

import (
	"github.com/spaghettifunk/gles/engine/core"
	"github.com/spaghettifunk/gles/engine/renderer/gl"
	"github.com/spaghettifunk/gles/engine/renderer/metadata"
)

// RenderTarget is a native colour or depth-stencil surface. Whether a bound
// target changed is decided by comparing serials.
type RenderTarget interface {
	Width() int
	Height() int
	Depth() int
	InternalFormat() gl.GLenum
	// ActualFormat is the format the native surface was created with, which
	// may be wider than the requested one.
	ActualFormat() gl.GLenum
	Samples() int
	Serial() core.Serial
	Release()
}

// TextureStorage is the native allocation behind a texture. Images are
// addressed by ImageIndex; cube faces are layers 0..5.
type TextureStorage interface {
	LevelCount() int
	IsRenderTarget() bool
	Extents() metadata.Extents
	RenderTarget(index metadata.ImageIndex) (RenderTarget, error)
	RenderTargetSerial(index metadata.ImageIndex) core.Serial
	// SetData uploads the image at index.
	SetData(index metadata.ImageIndex, image *Image) error
	// ReadData copies the image at index back into image.
	ReadData(index metadata.ImageIndex, image *Image) error
	// GenerateMipmap fills dst from src on the device.
	GenerateMipmap(src, dst metadata.ImageIndex) error
	// CopyToStorage copies every level this storage shares with dst.
	CopyToStorage(dst TextureStorage) error
	Release()
}
