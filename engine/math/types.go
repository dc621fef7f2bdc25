package math

import "github.com/go-gl/mathgl/mgl32"

/**
 * @brief Represents the extents of a 3d object.
 */
type Extents3D struct {
	/** @brief The minimum extents of the object. */
	Min mgl32.Vec3
	/** @brief The maximum extents of the object. */
	Max mgl32.Vec3
}

// Size returns the edge lengths of the box.
func (e Extents3D) Size() mgl32.Vec3 {
	return e.Max.Sub(e.Min)
}

// Center returns the midpoint of the box.
func (e Extents3D) Center() mgl32.Vec3 {
	return e.Min.Add(e.Max).Mul(0.5)
}

/**
 * @brief Represents a single vertex in 3D space. The field order is
 * the interleaved layout uploaded to the GPU.
 */
type Vertex3D struct {
	/** @brief The position of the vertex */
	Position mgl32.Vec3
	/** @brief The normal of the vertex. */
	Normal mgl32.Vec3
	/** @brief The texture coordinate of the vertex. */
	Texcoord mgl32.Vec2
	/** @brief The colour of the vertex. */
	Colour mgl32.Vec4
	/** @brief The tangent of the vertex. W holds the handedness. */
	Tangent mgl32.Vec4
}
