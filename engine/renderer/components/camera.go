package components

import (
	gomath "math"

	"github.com/go-gl/mathgl/mgl32"
)

/** @brief The name of the default camera. */
const DEFAULT_CAMERA_NAME string = "default"

const (
	DefaultFOV      float32 = 50
	DefaultNear     float32 = 0.1
	DefaultFar      float32 = 1000
	DefaultDistance float32 = 200
)

/**
 * @brief A perspective camera orbiting a target point. The position is
 * derived from Distance, Yaw and Pitch, so with zero angles the camera
 * sits on +Z looking down -Z at the target.
 */
type Camera struct {
	/** @brief Vertical field of view in degrees. */
	FOV float32
	/** @brief Near clipping plane distance. */
	Near float32
	/** @brief Far clipping plane distance. */
	Far float32

	aspect   float32
	target   mgl32.Vec3
	distance float32
	yaw      float32
	pitch    float32

	viewDirty       bool
	projectionDirty bool
	view            mgl32.Mat4
	projection      mgl32.Mat4
}

func NewCamera() *Camera {
	camera := &Camera{}
	camera.Reset()
	return camera
}

func (c *Camera) Reset() {
	c.FOV = DefaultFOV
	c.Near = DefaultNear
	c.Far = DefaultFar
	c.aspect = 1
	c.target = mgl32.Vec3{}
	c.distance = DefaultDistance
	c.yaw = 0
	c.pitch = 0
	c.viewDirty = true
	c.projectionDirty = true
}

func (c *Camera) Aspect() float32 {
	return c.aspect
}

// SetAspect changes only the projection. Orientation and distance are kept.
func (c *Camera) SetAspect(aspect float32) {
	if aspect <= 0 || aspect == c.aspect {
		return
	}
	c.aspect = aspect
	c.projectionDirty = true
}

func (c *Camera) Target() mgl32.Vec3 {
	return c.target
}

func (c *Camera) SetTarget(target mgl32.Vec3) {
	c.target = target
	c.viewDirty = true
}

func (c *Camera) Distance() float32 {
	return c.distance
}

func (c *Camera) SetDistance(distance float32) {
	c.distance = distance
	c.viewDirty = true
}

/** @brief Returns yaw and pitch in radians. */
func (c *Camera) Orientation() (yaw, pitch float32) {
	return c.yaw, c.pitch
}

func (c *Camera) SetOrientation(yaw, pitch float32) {
	c.yaw = float32(gomath.Remainder(float64(yaw), 2*gomath.Pi))
	c.pitch = pitch
	c.viewDirty = true
}

func (c *Camera) Position() mgl32.Vec3 {
	cp := float32(gomath.Cos(float64(c.pitch)))
	sp := float32(gomath.Sin(float64(c.pitch)))
	sy := float32(gomath.Sin(float64(c.yaw)))
	cy := float32(gomath.Cos(float64(c.yaw)))
	offset := mgl32.Vec3{cp * sy, sp, cp * cy}.Mul(c.distance)
	return c.target.Add(offset)
}

func (c *Camera) GetView() mgl32.Mat4 {
	if c.viewDirty {
		c.view = mgl32.LookAtV(c.Position(), c.target, mgl32.Vec3{0, 1, 0})
		c.viewDirty = false
	}
	return c.view
}

func (c *Camera) GetProjection() mgl32.Mat4 {
	if c.projectionDirty {
		c.projection = mgl32.Perspective(mgl32.DegToRad(c.FOV), c.aspect, c.Near, c.Far)
		c.projectionDirty = false
	}
	return c.projection
}
