package d3d

import (
	"github.com/spaghettifunk/gles/engine/core"
	"github.com/spaghettifunk/gles/engine/renderer/gl"
)

// Renderbuffer owns a single render target. Unlike textures it has no
// CPU-side image, so every SetStorage goes straight to the backend.
type Renderbuffer struct {
	renderer     RendererD3D
	renderTarget RenderTarget
	format       gl.GLenum
}

func NewRenderbuffer(renderer RendererD3D) *Renderbuffer {
	return &Renderbuffer{renderer: renderer, format: gl.RGBA4}
}

// SetStorage replaces the render target. A zero-sized request drops the
// current target; on a failed creation the previous target stays bound.
func (r *Renderbuffer) SetStorage(internalFormat gl.GLenum, width, height, samples int) error {
	if samples > r.renderer.Caps().MaxSamples {
		return core.InvalidOperation("%d samples requested, %d supported", samples, r.renderer.Caps().MaxSamples)
	}

	var next RenderTarget
	if width > 0 && height > 0 {
		// Depth-only and stencil-only renderbuffers are backed by a packed
		// depth-stencil surface.
		creationFormat := internalFormat
		if internalFormat == gl.DEPTH_COMPONENT16 || internalFormat == gl.STENCIL_INDEX8 {
			creationFormat = gl.DEPTH24_STENCIL8
		}
		rt, err := r.renderer.CreateRenderTarget(width, height, creationFormat, samples)
		if err != nil {
			return err
		}
		next = rt
	}

	if r.renderTarget != nil {
		r.renderTarget.Release()
	}
	r.renderTarget = next
	r.format = internalFormat
	return nil
}

func (r *Renderbuffer) RenderTarget() RenderTarget {
	return r.renderTarget
}

// InternalFormat is the format the caller asked for, which can differ from
// the render target's actual format.
func (r *Renderbuffer) InternalFormat() gl.GLenum {
	return r.format
}

func (r *Renderbuffer) Serial() core.Serial {
	if r.renderTarget == nil {
		return 0
	}
	return r.renderTarget.Serial()
}

func (r *Renderbuffer) Release() {
	if r.renderTarget != nil {
		r.renderTarget.Release()
		r.renderTarget = nil
	}
}
