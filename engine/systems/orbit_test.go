package systems

import (
	gomath "math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/cardforge/engine/core"
	"github.com/spaghettifunk/cardforge/engine/renderer/components"
)

func newTestOrbit(t *testing.T, autoRotate bool) (*OrbitControls, *components.Camera) {
	t.Helper()
	camera := components.NewCamera()
	config := DefaultOrbitConfig()
	config.AutoRotate = autoRotate
	oc, err := NewOrbitControls(camera, config)
	require.NoError(t, err)
	return oc, camera
}

// settle runs the controls for the given number of seconds at 60 fps.
func settle(oc *OrbitControls, seconds float64) {
	for i := 0; i < int(seconds*60); i++ {
		oc.Update(1.0 / 60)
	}
}

func TestOrbitControls_DragAppliesFullRotation(t *testing.T) {
	oc, camera := newTestOrbit(t, false)

	oc.BeginRotate(100, 100)
	oc.PointerMove(100+150, 100, 600)
	oc.EndDrag()

	// Damped: only part of the motion lands in the first frame.
	oc.Update(1.0 / 60)
	yaw, _ := camera.Orientation()
	assert.Less(t, yaw, float32(0))
	assert.Greater(t, yaw, float32(-gomath.Pi/2))

	settle(oc, 15)
	yaw, pitch := camera.Orientation()
	assert.InDelta(t, -gomath.Pi/2, yaw, 1e-3)
	assert.InDelta(t, 0, pitch, 1e-6)
	assert.True(t, oc.Settled())
}

func TestOrbitControls_PitchIsClamped(t *testing.T) {
	oc, camera := newTestOrbit(t, false)
	oc.BeginRotate(0, 0)
	oc.PointerMove(0, 10000, 600)
	oc.EndDrag()
	settle(oc, 15)

	_, pitch := camera.Orientation()
	assert.InDelta(t, mgl32.DegToRad(89), pitch, 1e-5)
	assert.True(t, oc.Settled())
}

func TestOrbitControls_ZoomIsBounded(t *testing.T) {
	oc, camera := newTestOrbit(t, false)
	assert.Equal(t, float32(200), camera.Distance())

	oc.Zoom(100)
	settle(oc, 15)
	assert.Equal(t, float32(100), camera.Distance())

	oc.Zoom(-200)
	settle(oc, 15)
	assert.Equal(t, float32(500), camera.Distance())

	oc.Zoom(-2)
	settle(oc, 15)
	assert.Equal(t, float32(500), camera.Distance())
}

func TestOrbitControls_ZoomIn(t *testing.T) {
	oc, camera := newTestOrbit(t, false)
	oc.Zoom(1)
	settle(oc, 15)
	assert.InDelta(t, 190, camera.Distance(), 1e-2)
}

func TestOrbitControls_AutoRotate(t *testing.T) {
	oc, camera := newTestOrbit(t, true)
	settle(oc, 1)
	yaw, _ := camera.Orientation()
	// One orbit every 30 seconds.
	assert.InDelta(t, 2*gomath.Pi/30, yaw, 1e-3)

	// Dragging pauses it.
	oc.BeginRotate(0, 0)
	settle(oc, 1)
	held, _ := camera.Orientation()
	assert.InDelta(t, yaw, held, 1e-6)
	assert.True(t, oc.Dragging())
}

func TestOrbitControls_PanMovesTarget(t *testing.T) {
	oc, camera := newTestOrbit(t, false)
	oc.BeginPan(0, 0)
	oc.PointerMove(60, 0, 600)
	oc.EndDrag()
	settle(oc, 15)

	target := camera.Target()
	assert.Less(t, target.X(), float32(0))
	assert.InDelta(t, 0, target.Y(), 1e-4)
	assert.InDelta(t, 0, target.Z(), 1e-4)

	oc.Reset()
	assert.Equal(t, mgl32.Vec3{}, camera.Target())
	assert.Equal(t, float32(200), camera.Distance())
}

func TestOrbitControls_AspectChangeLeavesOrbitAlone(t *testing.T) {
	oc, camera := newTestOrbit(t, false)
	oc.BeginRotate(0, 0)
	oc.PointerMove(30, 20, 600)
	oc.EndDrag()
	settle(oc, 15)
	yaw, pitch := camera.Orientation()
	distance := camera.Distance()

	camera.SetAspect(2.5)
	settle(oc, 1)

	y2, p2 := camera.Orientation()
	assert.Equal(t, yaw, y2)
	assert.Equal(t, pitch, p2)
	assert.Equal(t, distance, camera.Distance())
	assert.Equal(t, float32(2.5), camera.Aspect())
}

func TestNewOrbitControls_Validation(t *testing.T) {
	_, err := NewOrbitControls(nil, DefaultOrbitConfig())
	assert.ErrorIs(t, err, core.ErrInvalidParameter)

	for _, mutate := range []func(*OrbitConfig){
		func(c *OrbitConfig) { c.DampingFactor = 0 },
		func(c *OrbitConfig) { c.MinDistance = 600 },
		func(c *OrbitConfig) { c.MaxPitchDegrees = 90 },
		func(c *OrbitConfig) { c.FPS = 0 },
	} {
		config := DefaultOrbitConfig()
		mutate(&config)
		_, err := NewOrbitControls(components.NewCamera(), config)
		assert.ErrorIs(t, err, core.ErrInvalidParameter)
	}
}
