package renderer

import (
	"github.com/spaghettifunk/cardforge/engine/math"
	"github.com/spaghettifunk/cardforge/engine/renderer/metadata"
)

// RendererBackend is implemented by each graphics API. Every method must be
// called on the thread that owns the graphics context.
//
// BeginFrame, DrawGeometry and EndFrame return core.ErrContextLost when the
// context is gone; resources created before that point are invalid and the
// caller is expected to rebuild everything.
type RendererBackend interface {
	Initialize(appName string, width, height uint32) error
	Shutdown() error
	Resized(width, height uint32) error
	BeginFrame(packet *metadata.RenderPacket) error
	EndFrame(deltaTime float64) error
	TextureCreate(pixels []uint8, texture *metadata.Texture) error
	TextureDestroy(texture *metadata.Texture)
	CreateGeometry(geometry *metadata.Geometry, vertices []math.Vertex3D, indices []uint32) error
	DestroyGeometry(geometry *metadata.Geometry)
	DrawGeometry(data *metadata.GeometryRenderData) error
	MaterialCreate(material *metadata.Material) error
	MaterialDestroy(material *metadata.Material)
}
