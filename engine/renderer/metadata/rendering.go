package metadata

import "github.com/go-gl/mathgl/mgl32"

/** @brief Determines face culling mode during rendering. */
type FaceCullMode int

const (
	/** @brief No faces are culled. */
	FaceCullModeNone FaceCullMode = 0x0
	/** @brief Only front faces are culled. */
	FaceCullModeFront FaceCullMode = 0x1
	/** @brief Only back faces are culled. */
	FaceCullModeBack FaceCullMode = 0x2
)

type GeometryRenderData struct {
	Model    mgl32.Mat4
	Geometry *Geometry
	Material *Material
}

/**
 * @brief A structure which is generated by the application and sent once
 * to the renderer to render a given frame.
 */
type RenderPacket struct {
	DeltaTime    float64
	Projection   mgl32.Mat4
	View         mgl32.Mat4
	ViewPosition mgl32.Vec3
	ClearColour  Color
	Lights       []Light
	Geometries   []GeometryRenderData
}
