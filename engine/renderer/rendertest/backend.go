// Package rendertest provides an in-memory RendererBackend for headless tests.
package rendertest

import (
	"sync"

	"github.com/spaghettifunk/cardforge/engine/core"
	"github.com/spaghettifunk/cardforge/engine/math"
	"github.com/spaghettifunk/cardforge/engine/renderer/metadata"
)

type handle struct {
	id uint32
}

// Backend tracks every resource it hands out so tests can assert that
// nothing leaks.
type Backend struct {
	mu sync.Mutex

	nextID uint32

	Initialized   bool
	ShutdownCalls int
	InitCalls     int
	Width, Height uint32

	Textures   map[*metadata.Texture]bool
	Geometries map[*metadata.Geometry]bool
	Materials  map[*metadata.Material]bool

	MaterialCreates  int
	MaterialDestroys int
	TextureCreates   int
	TextureDestroys  int

	Frames      int
	LastPacket  *metadata.RenderPacket
	LastDrawn   []metadata.GeometryRenderData
	LoseContext bool
	FailTexture error
}

func NewBackend() *Backend {
	b := &Backend{}
	b.reset()
	return b
}

func (b *Backend) reset() {
	b.Textures = map[*metadata.Texture]bool{}
	b.Geometries = map[*metadata.Geometry]bool{}
	b.Materials = map[*metadata.Material]bool{}
}

func (b *Backend) id() *handle {
	b.nextID++
	return &handle{id: b.nextID}
}

func (b *Backend) Initialize(appName string, width, height uint32) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Initialized = true
	b.InitCalls++
	b.Width, b.Height = width, height
	b.LoseContext = false
	return nil
}

func (b *Backend) Shutdown() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Initialized = false
	b.ShutdownCalls++
	// A destroyed context takes its objects with it.
	b.reset()
	return nil
}

func (b *Backend) Resized(width, height uint32) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Width, b.Height = width, height
	return nil
}

func (b *Backend) BeginFrame(packet *metadata.RenderPacket) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.LoseContext {
		return core.ErrContextLost
	}
	cp := *packet
	cp.Lights = append([]metadata.Light(nil), packet.Lights...)
	b.LastPacket = &cp
	b.LastDrawn = nil
	return nil
}

func (b *Backend) EndFrame(deltaTime float64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Frames++
	return nil
}

func (b *Backend) TextureCreate(pixels []uint8, texture *metadata.Texture) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.FailTexture != nil {
		return b.FailTexture
	}
	texture.InternalData = b.id()
	b.Textures[texture] = true
	b.TextureCreates++
	return nil
}

func (b *Backend) TextureDestroy(texture *metadata.Texture) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.Textures, texture)
	b.TextureDestroys++
}

func (b *Backend) CreateGeometry(geometry *metadata.Geometry, vertices []math.Vertex3D, indices []uint32) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	geometry.InternalData = b.id()
	b.Geometries[geometry] = true
	return nil
}

func (b *Backend) DestroyGeometry(geometry *metadata.Geometry) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.Geometries, geometry)
}

func (b *Backend) DrawGeometry(data *metadata.GeometryRenderData) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.LastDrawn = append(b.LastDrawn, *data)
	return nil
}

func (b *Backend) MaterialCreate(material *metadata.Material) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	material.InternalData = b.id()
	b.Materials[material] = true
	b.MaterialCreates++
	return nil
}

func (b *Backend) MaterialDestroy(material *metadata.Material) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.Materials, material)
	b.MaterialDestroys++
}

// Live returns the number of resident textures, geometries and materials.
func (b *Backend) Live() (textures, geometries, materials int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.Textures), len(b.Geometries), len(b.Materials)
}

func (b *Backend) SetLoseContext(lost bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.LoseContext = lost
}
