package systems

import (
	"fmt"
	gomath "math"

	"github.com/charmbracelet/harmonica"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/spaghettifunk/cardforge/engine/core"
	"github.com/spaghettifunk/cardforge/engine/math"
	"github.com/spaghettifunk/cardforge/engine/renderer/components"
)

type OrbitConfig struct {
	/** @brief Fraction of the pending motion applied per step, in (0, 1]. */
	DampingFactor float64 `toml:"damping_factor"`
	AutoRotate    bool    `toml:"auto_rotate"`
	/** @brief 2.0 is one orbit every 30 seconds. */
	AutoRotateSpeed float64 `toml:"auto_rotate_speed"`
	MinDistance     float32 `toml:"min_distance"`
	MaxDistance     float32 `toml:"max_distance"`
	MaxPitchDegrees float32 `toml:"max_pitch_degrees"`
	RotateSpeed     float64 `toml:"rotate_speed"`
	ZoomSpeed       float64 `toml:"zoom_speed"`
	/** @brief Fixed simulation rate of the damping springs. */
	FPS int `toml:"fps"`
}

func DefaultOrbitConfig() OrbitConfig {
	return OrbitConfig{
		DampingFactor:   0.05,
		AutoRotate:      true,
		AutoRotateSpeed: 2.0,
		MinDistance:     100,
		MaxDistance:     500,
		MaxPitchDegrees: 89,
		RotateSpeed:     1,
		ZoomSpeed:       1,
		FPS:             60,
	}
}

func (c OrbitConfig) validate() error {
	switch {
	case !(c.DampingFactor > 0 && c.DampingFactor <= 1):
		return fmt.Errorf("orbit damping factor %v: %w", c.DampingFactor, core.ErrInvalidParameter)
	case c.MinDistance <= 0 || c.MaxDistance < c.MinDistance:
		return fmt.Errorf("orbit distance range [%v, %v]: %w", c.MinDistance, c.MaxDistance, core.ErrInvalidParameter)
	case c.MaxPitchDegrees <= 0 || c.MaxPitchDegrees >= 90:
		return fmt.Errorf("orbit max pitch %v: %w", c.MaxPitchDegrees, core.ErrInvalidParameter)
	case c.FPS <= 0:
		return fmt.Errorf("orbit fps %d: %w", c.FPS, core.ErrInvalidParameter)
	}
	return nil
}

type dragMode uint8

const (
	dragNone dragMode = iota
	dragRotate
	dragPan
)

// orbitAxis holds motion that has been requested but not yet applied. The
// spring pulls the pending amount to zero; whatever it gives up in a step is
// applied to the camera, so the total applied always equals the request.
type orbitAxis struct {
	pending  float64
	velocity float64
}

func (a *orbitAxis) step(spring harmonica.Spring) float64 {
	next, velocity := spring.Update(a.pending, a.velocity, 0)
	applied := a.pending - next
	a.pending, a.velocity = next, velocity
	if gomath.Abs(a.pending) < 1e-7 && gomath.Abs(a.velocity) < 1e-7 {
		applied += a.pending
		a.pending, a.velocity = 0, 0
	}
	return applied
}

func (a *orbitAxis) stop() {
	a.pending, a.velocity = 0, 0
}

func (a *orbitAxis) idle() bool {
	return a.pending == 0 && a.velocity == 0
}

/**
 * @brief Mouse driven orbit, zoom and pan around the camera target with
 * damped motion and optional auto-rotation. The controls never look at the
 * window size, so resizing leaves them untouched.
 */
type OrbitControls struct {
	config OrbitConfig
	camera *components.Camera
	spring harmonica.Spring
	step   float64

	yaw, pitch, zoom orbitAxis
	panX, panY       orbitAxis

	drag         dragMode
	lastX, lastY float64
	accumulator  float64

	homeYaw, homePitch, homeDistance float32
	homeTarget                       mgl32.Vec3
}

func NewOrbitControls(camera *components.Camera, config OrbitConfig) (*OrbitControls, error) {
	if camera == nil {
		return nil, fmt.Errorf("orbit controls need a camera: %w", core.ErrInvalidParameter)
	}
	if err := config.validate(); err != nil {
		return nil, err
	}
	// Same decay rate as removing DampingFactor of the motion every step.
	frequency := -gomath.Log(1-gomath.Min(config.DampingFactor, 0.999)) * float64(config.FPS)
	oc := &OrbitControls{
		config: config,
		camera: camera,
		spring: harmonica.NewSpring(harmonica.FPS(config.FPS), frequency, 1.0),
		step:   1 / float64(config.FPS),
	}
	camera.SetDistance(math.Clamp(camera.Distance(), config.MinDistance, config.MaxDistance))
	oc.homeYaw, oc.homePitch = camera.Orientation()
	oc.homeDistance = camera.Distance()
	oc.homeTarget = camera.Target()
	return oc, nil
}

func (oc *OrbitControls) Config() OrbitConfig {
	return oc.config
}

func (oc *OrbitControls) Dragging() bool {
	return oc.drag != dragNone
}

// BeginRotate starts a rotation drag at the pointer position.
func (oc *OrbitControls) BeginRotate(x, y float64) {
	oc.drag = dragRotate
	oc.lastX, oc.lastY = x, y
}

// BeginPan starts a pan drag at the pointer position.
func (oc *OrbitControls) BeginPan(x, y float64) {
	oc.drag = dragPan
	oc.lastX, oc.lastY = x, y
}

func (oc *OrbitControls) EndDrag() {
	oc.drag = dragNone
}

/**
 * @brief Feeds a pointer position while dragging. surfaceHeight is the render
 * surface height in pixels; a drag over the full height turns the camera
 * a full circle.
 */
func (oc *OrbitControls) PointerMove(x, y float64, surfaceHeight uint32) {
	if oc.drag == dragNone || surfaceHeight == 0 {
		return
	}
	dx, dy := x-oc.lastX, y-oc.lastY
	oc.lastX, oc.lastY = x, y
	h := float64(surfaceHeight)

	switch oc.drag {
	case dragRotate:
		oc.yaw.pending -= 2 * gomath.Pi * dx / h * oc.config.RotateSpeed
		oc.pitch.pending += 2 * gomath.Pi * dy / h * oc.config.RotateSpeed
	case dragPan:
		// World units covered by one pixel at the target's depth.
		fov := float64(mgl32.DegToRad(oc.camera.FOV))
		scale := 2 * float64(oc.camera.Distance()) * gomath.Tan(fov/2) / h
		oc.panX.pending -= dx * scale
		oc.panY.pending += dy * scale
	}
}

// Zoom dollies in for positive steps and out for negative ones.
func (oc *OrbitControls) Zoom(steps float64) {
	oc.zoom.pending += steps * oc.config.ZoomSpeed * gomath.Log(0.95)
}

// Settled reports whether no damped motion is left to apply.
func (oc *OrbitControls) Settled() bool {
	return oc.yaw.idle() && oc.pitch.idle() && oc.zoom.idle() && oc.panX.idle() && oc.panY.idle()
}

/**
 * @brief Advances the controls by deltaTime seconds and writes the result
 * into the camera. Runs in fixed steps so damping is frame rate independent.
 */
func (oc *OrbitControls) Update(deltaTime float64) {
	if deltaTime <= 0 || gomath.IsNaN(deltaTime) {
		return
	}
	// Never simulate more than a quarter second in one go.
	oc.accumulator = gomath.Min(oc.accumulator+deltaTime, 0.25)
	for oc.accumulator >= oc.step {
		oc.accumulator -= oc.step
		oc.advance()
	}
}

func (oc *OrbitControls) advance() {
	yaw, pitch := oc.camera.Orientation()
	if oc.config.AutoRotate && oc.drag == dragNone {
		yaw += float32(2 * gomath.Pi / 60 / float64(oc.config.FPS) * oc.config.AutoRotateSpeed)
	}
	yaw += float32(oc.yaw.step(oc.spring))
	pitch += float32(oc.pitch.step(oc.spring))

	limit := mgl32.DegToRad(oc.config.MaxPitchDegrees)
	if pitch > limit || pitch < -limit {
		pitch = math.Clamp(pitch, -limit, limit)
		oc.pitch.stop()
	}
	oc.camera.SetOrientation(yaw, pitch)

	if applied := oc.zoom.step(oc.spring); applied != 0 {
		distance := oc.camera.Distance() * float32(gomath.Exp(applied))
		clamped := math.Clamp(distance, oc.config.MinDistance, oc.config.MaxDistance)
		if clamped != distance {
			oc.zoom.stop()
		}
		oc.camera.SetDistance(clamped)
	}

	x, y := oc.panX.step(oc.spring), oc.panY.step(oc.spring)
	if x != 0 || y != 0 {
		position, target := oc.camera.Position(), oc.camera.Target()
		forward := target.Sub(position).Normalize()
		right := forward.Cross(mgl32.Vec3{0, 1, 0}).Normalize()
		up := right.Cross(forward)
		oc.camera.SetTarget(target.Add(right.Mul(float32(x))).Add(up.Mul(float32(y))))
	}
}

// Reset stops all motion and puts the camera back where it started.
func (oc *OrbitControls) Reset() {
	oc.yaw.stop()
	oc.pitch.stop()
	oc.zoom.stop()
	oc.panX.stop()
	oc.panY.stop()
	oc.drag = dragNone
	oc.accumulator = 0
	oc.camera.SetOrientation(oc.homeYaw, oc.homePitch)
	oc.camera.SetDistance(oc.homeDistance)
	oc.camera.SetTarget(oc.homeTarget)
}
