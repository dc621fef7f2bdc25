package opengl

import (
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/spaghettifunk/cardforge/engine/math"
	"github.com/spaghettifunk/cardforge/engine/renderer/metadata"
)

type glGeometry struct {
	vao, vbo, ebo uint32
	indexCount    int32
}

func (b *Backend) CreateGeometry(geometry *metadata.Geometry, vertices []math.Vertex3D, indices []uint32) error {
	stride := int32(unsafe.Sizeof(math.Vertex3D{}))
	g := &glGeometry{indexCount: int32(len(indices))}

	gl.GenVertexArrays(1, &g.vao)
	gl.BindVertexArray(g.vao)

	gl.GenBuffers(1, &g.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, g.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*int(stride), gl.Ptr(vertices), gl.STATIC_DRAW)

	var v math.Vertex3D
	attributes := []struct {
		size   int32
		offset uintptr
	}{
		{3, unsafe.Offsetof(v.Position)},
		{3, unsafe.Offsetof(v.Normal)},
		{2, unsafe.Offsetof(v.Texcoord)},
		{4, unsafe.Offsetof(v.Colour)},
		{4, unsafe.Offsetof(v.Tangent)},
	}
	for i, a := range attributes {
		gl.EnableVertexAttribArray(uint32(i))
		gl.VertexAttribPointer(uint32(i), a.size, gl.FLOAT, false, stride, gl.PtrOffset(int(a.offset)))
	}

	gl.GenBuffers(1, &g.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, g.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, gl.Ptr(indices), gl.STATIC_DRAW)

	gl.BindVertexArray(0)

	if err := b.checkError(); err != nil {
		g.release()
		return err
	}
	geometry.InternalData = g
	return nil
}

func (b *Backend) DestroyGeometry(geometry *metadata.Geometry) {
	if g, ok := geometry.InternalData.(*glGeometry); ok {
		g.release()
	}
}

func (g *glGeometry) release() {
	if g.ebo != 0 {
		gl.DeleteBuffers(1, &g.ebo)
	}
	if g.vbo != 0 {
		gl.DeleteBuffers(1, &g.vbo)
	}
	if g.vao != 0 {
		gl.DeleteVertexArrays(1, &g.vao)
	}
	*g = glGeometry{}
}
