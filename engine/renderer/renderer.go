package renderer

import (
	"fmt"

	"github.com/spaghettifunk/cardforge/engine/core"
	"github.com/spaghettifunk/cardforge/engine/math"
	"github.com/spaghettifunk/cardforge/engine/renderer/metadata"
)

// Renderer is the frontend the systems talk to. It forwards to the backend
// and keeps the frame counter.
type Renderer struct {
	backend     RendererBackend
	frameNumber uint64
	initialized bool
}

func New(backend RendererBackend) *Renderer {
	return &Renderer{backend: backend}
}

func (r *Renderer) Initialize(appName string, width, height uint32) error {
	if err := r.backend.Initialize(appName, width, height); err != nil {
		return fmt.Errorf("renderer backend initialize: %w", err)
	}
	r.initialized = true
	return nil
}

func (r *Renderer) Shutdown() error {
	if !r.initialized {
		return nil
	}
	r.initialized = false
	return r.backend.Shutdown()
}

func (r *Renderer) IsInitialized() bool {
	return r.initialized
}

func (r *Renderer) OnResize(width, height uint32) error {
	if !r.initialized {
		return core.ErrNotInitialized
	}
	return r.backend.Resized(width, height)
}

func (r *Renderer) FrameNumber() uint64 {
	return r.frameNumber
}

func (r *Renderer) DrawFrame(packet *metadata.RenderPacket) error {
	if !r.initialized {
		return core.ErrNotInitialized
	}
	if err := r.backend.BeginFrame(packet); err != nil {
		return err
	}
	for i := range packet.Geometries {
		data := &packet.Geometries[i]
		if err := r.backend.DrawGeometry(data); err != nil {
			return err
		}
		if data.Material != nil {
			data.Material.RenderFrameNumber = r.frameNumber
		}
	}
	if err := r.backend.EndFrame(packet.DeltaTime); err != nil {
		return err
	}
	r.frameNumber++
	return nil
}

func (r *Renderer) TextureCreate(pixels []uint8, texture *metadata.Texture) error {
	if err := r.backend.TextureCreate(pixels, texture); err != nil {
		return fmt.Errorf("texture `%s`: %w", texture.Name, err)
	}
	texture.Generation++
	return nil
}

func (r *Renderer) TextureDestroy(texture *metadata.Texture) {
	if texture == nil || texture.InternalData == nil {
		return
	}
	r.backend.TextureDestroy(texture)
	texture.InternalData = nil
}

func (r *Renderer) CreateGeometry(geometry *metadata.Geometry, vertices []math.Vertex3D, indices []uint32) error {
	if len(vertices) == 0 || len(indices) == 0 {
		return fmt.Errorf("geometry `%s` has no data: %w", geometry.Name, core.ErrInvalidParameter)
	}
	if err := r.backend.CreateGeometry(geometry, vertices, indices); err != nil {
		return fmt.Errorf("geometry `%s`: %w", geometry.Name, err)
	}
	geometry.VertexCount = uint32(len(vertices))
	geometry.IndexCount = uint32(len(indices))
	geometry.Generation++
	return nil
}

func (r *Renderer) DestroyGeometry(geometry *metadata.Geometry) {
	if geometry == nil || geometry.InternalData == nil {
		return
	}
	r.backend.DestroyGeometry(geometry)
	geometry.InternalData = nil
}

func (r *Renderer) MaterialCreate(material *metadata.Material) error {
	if err := r.backend.MaterialCreate(material); err != nil {
		return fmt.Errorf("material `%s`: %w", material.Name, err)
	}
	return nil
}

func (r *Renderer) MaterialDestroy(material *metadata.Material) {
	if material == nil || material.InternalData == nil {
		return
	}
	r.backend.MaterialDestroy(material)
	material.InternalData = nil
}
