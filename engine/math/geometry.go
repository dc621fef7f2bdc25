package math

import (
	stdmath "math"

	"github.com/go-gl/mathgl/mgl32"
)

// GeometryGenerateNormals assigns flat face normals. Shared vertices take the
// normal of the last triangle that references them.
func GeometryGenerateNormals(vertices []Vertex3D, indices []uint32) {
	for i := 0; i+2 < len(indices); i += 3 {
		i0, i1, i2 := indices[i], indices[i+1], indices[i+2]

		edge1 := vertices[i1].Position.Sub(vertices[i0].Position)
		edge2 := vertices[i2].Position.Sub(vertices[i0].Position)

		c := edge1.Cross(edge2)
		if c.Len() < K_FLOAT_EPSILON {
			continue
		}
		normal := c.Normalize()

		// NOTE: This just generates a face normal. Smoothing out should be done in a separate pass if desired.
		vertices[i0].Normal = normal
		vertices[i1].Normal = normal
		vertices[i2].Normal = normal
	}
}

// GeometryGenerateTangents derives per-triangle tangents from the UV layout.
// Triangles with a degenerate UV mapping leave their vertices untouched.
func GeometryGenerateTangents(vertices []Vertex3D, indices []uint32) {
	for i := 0; i+2 < len(indices); i += 3 {
		i0, i1, i2 := indices[i], indices[i+1], indices[i+2]

		edge1 := vertices[i1].Position.Sub(vertices[i0].Position)
		edge2 := vertices[i2].Position.Sub(vertices[i0].Position)

		deltaU1 := vertices[i1].Texcoord.X() - vertices[i0].Texcoord.X()
		deltaV1 := vertices[i1].Texcoord.Y() - vertices[i0].Texcoord.Y()

		deltaU2 := vertices[i2].Texcoord.X() - vertices[i0].Texcoord.X()
		deltaV2 := vertices[i2].Texcoord.Y() - vertices[i0].Texcoord.Y()

		dividend := deltaU1*deltaV2 - deltaU2*deltaV1
		if float32(stdmath.Abs(float64(dividend))) < K_FLOAT_EPSILON {
			continue
		}
		fc := 1.0 / dividend

		tangent := mgl32.Vec3{
			fc * (deltaV2*edge1.X() - deltaV1*edge2.X()),
			fc * (deltaV2*edge1.Y() - deltaV1*edge2.Y()),
			fc * (deltaV2*edge1.Z() - deltaV1*edge2.Z()),
		}
		if tangent.Len() < K_FLOAT_EPSILON {
			continue
		}
		tangent = tangent.Normalize()

		handedness := float32(1.0)
		if dividend < 0.0 {
			handedness = -1.0
		}

		t4 := tangent.Vec4(handedness)
		vertices[i0].Tangent = t4
		vertices[i1].Tangent = t4
		vertices[i2].Tangent = t4
	}
}

// GeometryComputeExtents returns the axis aligned bounds of the vertices.
func GeometryComputeExtents(vertices []Vertex3D) Extents3D {
	if len(vertices) == 0 {
		return Extents3D{}
	}
	ext := Extents3D{Min: vertices[0].Position, Max: vertices[0].Position}
	for _, v := range vertices[1:] {
		for axis := 0; axis < 3; axis++ {
			if v.Position[axis] < ext.Min[axis] {
				ext.Min[axis] = v.Position[axis]
			}
			if v.Position[axis] > ext.Max[axis] {
				ext.Max[axis] = v.Position[axis]
			}
		}
	}
	return ext
}

// TriangleArea returns the area of the triangle abc.
func TriangleArea(a, b, c mgl32.Vec3) float32 {
	return b.Sub(a).Cross(c.Sub(a)).Len() * 0.5
}
