package renderer_test

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/cardforge/engine/core"
	"github.com/spaghettifunk/cardforge/engine/math"
	"github.com/spaghettifunk/cardforge/engine/renderer"
	"github.com/spaghettifunk/cardforge/engine/renderer/metadata"
	"github.com/spaghettifunk/cardforge/engine/renderer/rendertest"
)

func TestRenderer_RequiresInitialize(t *testing.T) {
	r := renderer.New(rendertest.NewBackend())
	assert.ErrorIs(t, r.DrawFrame(&metadata.RenderPacket{}), core.ErrNotInitialized)
	assert.ErrorIs(t, r.OnResize(10, 10), core.ErrNotInitialized)
	assert.NoError(t, r.Shutdown())
}

func TestRenderer_DrawFrame(t *testing.T) {
	be := rendertest.NewBackend()
	r := renderer.New(be)
	require.NoError(t, r.Initialize("test", 640, 480))

	geometry := &metadata.Geometry{Name: "tri"}
	vertices := []math.Vertex3D{
		{Position: mgl32.Vec3{0, 0, 0}},
		{Position: mgl32.Vec3{1, 0, 0}},
		{Position: mgl32.Vec3{0, 1, 0}},
	}
	require.NoError(t, r.CreateGeometry(geometry, vertices, []uint32{0, 1, 2}))
	assert.Equal(t, uint32(3), geometry.IndexCount)
	assert.Equal(t, uint32(1), geometry.Generation)

	material := &metadata.Material{Name: "card"}
	require.NoError(t, r.MaterialCreate(material))

	packet := &metadata.RenderPacket{
		Geometries: []metadata.GeometryRenderData{{Model: mgl32.Ident4(), Geometry: geometry, Material: material}},
	}
	require.NoError(t, r.DrawFrame(packet))
	require.NoError(t, r.DrawFrame(packet))
	assert.Equal(t, uint64(2), r.FrameNumber())
	assert.Equal(t, uint64(1), material.RenderFrameNumber)
	assert.Len(t, be.LastDrawn, 1)

	be.SetLoseContext(true)
	assert.ErrorIs(t, r.DrawFrame(packet), core.ErrContextLost)

	r.DestroyGeometry(geometry)
	r.MaterialDestroy(material)
	assert.Nil(t, geometry.InternalData)
	_, g, m := be.Live()
	assert.Zero(t, g)
	assert.Zero(t, m)

	assert.ErrorIs(t, r.CreateGeometry(&metadata.Geometry{}, nil, nil), core.ErrInvalidParameter)
}
