package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/cardforge/engine/core"
	"github.com/spaghettifunk/cardforge/engine/platform"
	"github.com/spaghettifunk/cardforge/engine/renderer/metadata"
	"github.com/spaghettifunk/cardforge/engine/renderer/rendertest"
)

type fakePlatform struct {
	width, height uint32
	// PumpMessages reports the window closed after this many calls. Zero never closes.
	closeAfter int
	pumps      int
	swaps      int
	shutdowns  int
	started    bool
	now        float64
}

func (p *fakePlatform) Startup(name string, x, y, width, height uint32) error {
	p.started = true
	if p.width == 0 {
		p.width, p.height = width, height
	}
	return nil
}

func (p *fakePlatform) PumpMessages() bool {
	p.pumps++
	return p.closeAfter == 0 || p.pumps < p.closeAfter
}

func (p *fakePlatform) SwapBuffers()                      { p.swaps++ }
func (p *fakePlatform) FramebufferSize() (uint32, uint32) { return p.width, p.height }
func (p *fakePlatform) Sleep(ms float64)                  {}
func (p *fakePlatform) Shutdown() error                   { p.shutdowns++; return nil }

func (p *fakePlatform) GetAbsoluteTime() float64 {
	p.now += 0.001
	return p.now
}

func newTestEngine(t *testing.T, fp *fakePlatform) (*Engine, *rendertest.Backend) {
	t.Helper()
	config := DefaultApplicationConfig()
	config.Window.StartWidth = 1000
	config.Window.StartHeight = 500
	config.Orbit.AutoRotate = false
	backend := rendertest.NewBackend()
	e, err := New(&Game{ApplicationConfig: config}, backend, func(*core.EventSystem, *core.InputSystem) platform.Platform { return fp })
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Shutdown() })
	require.NoError(t, e.Initialize())
	return e, backend
}

func TestEngine_InitializeBuildsTheScene(t *testing.T) {
	fp := &fakePlatform{}
	e, backend := newTestEngine(t, fp)

	w, h := e.SurfaceSize()
	assert.Equal(t, uint32(700), w)
	assert.Equal(t, uint32(500), h)
	assert.Equal(t, uint32(700), backend.Width)
	assert.InDelta(t, 1.4, e.Camera().Aspect(), 1e-6)
	assert.Equal(t, float32(200), e.Camera().Distance())

	require.NoError(t, e.Frame(1.0/60))
	require.NotNil(t, backend.LastPacket)
	assert.Len(t, backend.LastDrawn, 1)
	assert.Len(t, backend.LastPacket.Lights, 3)
	assert.Equal(t, "#f0f0f0", backend.LastPacket.ClearColour.Hex())
	assert.Equal(t, 1, fp.swaps)
}

func TestEngine_ResizeUpdatesSurfaceButNotOrbit(t *testing.T) {
	e, backend := newTestEngine(t, &fakePlatform{})
	orbit := e.systemManager.OrbitControls
	orbit.BeginRotate(10, 10)
	orbit.PointerMove(60, 40, 500)
	orbit.EndDrag()
	for i := 0; i < 600; i++ {
		require.NoError(t, e.Frame(1.0/60))
	}
	yaw, pitch := e.Camera().Orientation()
	distance := e.Camera().Distance()
	target := e.Camera().Target()

	e.events.Fire(core.EventContext{
		Type: core.EVENT_CODE_RESIZED,
		Data: &core.SystemEvent{WindowWidth: 2000, WindowHeight: 800},
	})

	// Already applied before the next frame is drawn.
	w, h := e.SurfaceSize()
	assert.Equal(t, uint32(1400), w)
	assert.Equal(t, uint32(800), h)
	assert.Equal(t, uint32(1400), backend.Width)
	assert.Equal(t, uint32(800), backend.Height)
	assert.InDelta(t, 1.75, e.Camera().Aspect(), 1e-6)

	require.NoError(t, e.Frame(1.0/60))
	y2, p2 := e.Camera().Orientation()
	assert.Equal(t, yaw, y2)
	assert.Equal(t, pitch, p2)
	assert.Equal(t, distance, e.Camera().Distance())
	assert.Equal(t, target, e.Camera().Target())
	assert.Equal(t, e.Camera().GetProjection(), backend.LastPacket.Projection)
}

func TestEngine_MinimizeSuspends(t *testing.T) {
	e, _ := newTestEngine(t, &fakePlatform{})
	e.events.Fire(core.EventContext{Type: core.EVENT_CODE_RESIZED, Data: &core.SystemEvent{}})
	assert.True(t, e.isSuspended)
	e.events.Fire(core.EventContext{Type: core.EVENT_CODE_RESIZED, Data: &core.SystemEvent{WindowWidth: 100, WindowHeight: 100}})
	assert.False(t, e.isSuspended)
}

func TestEngine_ConfigurationChangeIsRenderedNextFrame(t *testing.T) {
	e, backend := newTestEngine(t, &fakePlatform{})
	require.NoError(t, e.Frame(1.0/60))
	before := backend.LastDrawn[0].Material

	store := e.systemManager.ConfigurationStore
	require.NoError(t, store.SetBaseColor(metadata.MustColorFromHex("#ff0000")))
	require.NoError(t, store.SetLightingScene(metadata.SceneOutdoor))
	require.NoError(t, e.Frame(1.0/60))

	after := backend.LastDrawn[0].Material
	assert.NotSame(t, before, after)
	assert.Equal(t, "#ff0000", after.Description.Color.Hex())
	require.Len(t, backend.LastPacket.Lights, 2)
	assert.Equal(t, metadata.LightTypeHemisphere, backend.LastPacket.Lights[1].Type)
	_, _, materials := backend.Live()
	assert.Equal(t, 1, materials)
}

func TestEngine_ContextLossRebuildsEverything(t *testing.T) {
	e, backend := newTestEngine(t, &fakePlatform{})
	require.NoError(t, e.Frame(1.0/60))
	oldCard := e.systemManager.Card()
	oldMaterial := e.systemManager.MaterialSystem.Material()

	backend.SetLoseContext(true)
	require.NoError(t, e.Frame(1.0/60))
	assert.Equal(t, 2, backend.InitCalls)
	assert.Equal(t, 1, backend.ShutdownCalls)

	require.NoError(t, e.Frame(1.0/60))
	assert.NotSame(t, oldCard, e.systemManager.Card())
	assert.NotSame(t, oldMaterial, e.systemManager.MaterialSystem.Material())
	_, geometries, materials := backend.Live()
	assert.Equal(t, 1, geometries)
	assert.Equal(t, 1, materials)
	assert.Len(t, backend.LastDrawn, 1)
}

func TestEngine_EscapeQuits(t *testing.T) {
	e, _ := newTestEngine(t, &fakePlatform{})
	e.isRunning = true
	e.input.ProcessKey(core.KEY_ESCAPE, true)
	assert.False(t, e.isRunning)
}

func TestEngine_RunStopsWhenWindowCloses(t *testing.T) {
	fp := &fakePlatform{closeAfter: 5}
	e, backend := newTestEngine(t, fp)
	require.NoError(t, e.Run(context.Background()))
	assert.Equal(t, 5, fp.pumps)
	assert.Equal(t, 4, backend.Frames)
}

func TestEngine_RunStopsOnCancel(t *testing.T) {
	fp := &fakePlatform{}
	e, backend := newTestEngine(t, fp)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, e.Run(ctx))
	assert.Zero(t, backend.Frames)
}

func TestEngine_ShutdownIsIdempotentAndReleasesEverything(t *testing.T) {
	fp := &fakePlatform{}
	e, backend := newTestEngine(t, fp)
	require.NoError(t, e.Frame(1.0/60))

	require.NoError(t, e.Shutdown())
	require.NoError(t, e.Shutdown())

	textures, geometries, materials := backend.Live()
	assert.Zero(t, textures+geometries+materials)
	assert.Equal(t, 1, backend.ShutdownCalls)
	assert.Equal(t, 1, fp.shutdowns)
	assert.Zero(t, e.events.ListenerCount(core.EVENT_CODE_RESIZED))
	assert.Zero(t, e.events.ListenerCount(core.EVENT_CODE_KEY_PRESSED))
	assert.Equal(t, EngineStageShutdown, e.Stage())
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	config := DefaultApplicationConfig()
	config.Window.ViewportFraction = 0
	_, err := New(&Game{ApplicationConfig: config}, rendertest.NewBackend(), func(*core.EventSystem, *core.InputSystem) platform.Platform { return &fakePlatform{} })
	assert.ErrorIs(t, err, core.ErrInvalidParameter)
}
