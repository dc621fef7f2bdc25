package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/spaghettifunk/cardforge/engine/core"
	"github.com/spaghettifunk/cardforge/engine/platform"
	"github.com/spaghettifunk/cardforge/engine/renderer"
	"github.com/spaghettifunk/cardforge/engine/renderer/components"
	"github.com/spaghettifunk/cardforge/engine/renderer/metadata"
	"github.com/spaghettifunk/cardforge/engine/systems"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine is in the process of shutting down
	EngineStageShuttingDown
	// Engine released everything and cannot be used again
	EngineStageShutdown
)

// PlatformFactory builds the platform once the engine owns the event and
// input systems it has to feed.
type PlatformFactory func(events *core.EventSystem, input *core.InputSystem) platform.Platform

// How many frames pass between two metrics log lines.
const metricsLogInterval = 120

type Engine struct {
	currentStage  Stage
	gameInstance  *Game
	config        *ApplicationConfig
	isRunning     bool
	isSuspended   bool
	platform      platform.Platform
	renderer      *renderer.Renderer
	events        *core.EventSystem
	input         *core.InputSystem
	camera        *components.Camera
	systemManager *systems.SystemManager
	clock         *core.Clock
	metrics       *core.Metrics
	clearColour   metadata.Color

	// Framebuffer size of the whole window, and the part of it the card is drawn in.
	width         uint32
	height        uint32
	surfaceWidth  uint32
	surfaceHeight uint32

	lastTime     float64
	frameCount   uint64
	shutdownOnce sync.Once
	shutdownErr  error
}

func New(g *Game, backend renderer.RendererBackend, newPlatform PlatformFactory) (*Engine, error) {
	config := g.ApplicationConfig
	if config == nil {
		config = DefaultApplicationConfig()
		g.ApplicationConfig = config
	}
	if err := config.Validate(); err != nil {
		core.LogError("invalid application config", "err", err)
		return nil, err
	}
	level, _ := core.ParseLogLevel(config.LogLevel)
	core.SetLogLevel(level)

	initial, err := config.InitialConfiguration()
	if err != nil {
		return nil, err
	}
	clearColour, _ := metadata.ColorFromHex(config.Window.Background)

	events := core.NewEventSystem()
	input := core.NewInputSystem(events)

	camera := components.NewCamera()
	camera.FOV = config.Camera.FOV
	camera.Near = config.Camera.Near
	camera.Far = config.Camera.Far
	camera.SetDistance(config.Camera.Distance)

	r := renderer.New(backend)
	sm, err := systems.NewSystemManager(config.systemManagerConfig(), initial, r, camera, events)
	if err != nil {
		core.LogError("failed to create the systems", "err", err)
		return nil, err
	}

	g.SystemManager = sm
	g.Events = events

	return &Engine{
		currentStage:  EngineStageUninitialized,
		gameInstance:  g,
		config:        config,
		platform:      newPlatform(events, input),
		renderer:      r,
		events:        events,
		input:         input,
		camera:        camera,
		systemManager: sm,
		clock:         core.NewClock(),
		metrics:       core.NewMetrics(),
		clearColour:   clearColour,
		width:         config.Window.StartWidth,
		height:        config.Window.StartHeight,
	}, nil
}

func (e *Engine) Initialize() error {
	if e.currentStage != EngineStageUninitialized {
		return fmt.Errorf("engine initialize in stage %d: %w", e.currentStage, core.ErrInvalidParameter)
	}
	e.currentStage = EngineStageInitializing

	// register some events
	e.events.Register(core.EVENT_CODE_APPLICATION_QUIT, e, e.onEvent)
	e.events.Register(core.EVENT_CODE_KEY_PRESSED, e, e.onKey)
	e.events.Register(core.EVENT_CODE_RESIZED, e, e.onResized)
	e.events.Register(core.EVENT_CODE_BUTTON_PRESSED, e, e.onButton)
	e.events.Register(core.EVENT_CODE_BUTTON_RELEASED, e, e.onButton)
	e.events.Register(core.EVENT_CODE_MOUSE_MOVED, e, e.onMouseMove)
	e.events.Register(core.EVENT_CODE_MOUSE_WHEEL, e, e.onMouseWheel)

	window := e.config.Window
	if err := e.platform.Startup(e.config.Name, window.StartPosX, window.StartPosY, window.StartWidth, window.StartHeight); err != nil {
		return err
	}
	if w, h := e.platform.FramebufferSize(); w > 0 && h > 0 {
		e.width, e.height = w, h
	}
	e.computeSurface()

	if err := e.renderer.Initialize(e.config.Name, e.surfaceWidth, e.surfaceHeight); err != nil {
		return err
	}
	if err := e.renderer.OnResize(e.surfaceWidth, e.surfaceHeight); err != nil {
		return err
	}
	if err := e.systemManager.BuildCard(); err != nil {
		return err
	}
	if _, err := e.systemManager.Refresh(); err != nil {
		return err
	}
	if err := e.uploadInitialTextures(); err != nil {
		return err
	}

	if e.gameInstance.FnInitialize != nil {
		if err := e.gameInstance.FnInitialize(); err != nil {
			return err
		}
	}
	if e.gameInstance.FnOnResize != nil {
		if err := e.gameInstance.FnOnResize(e.surfaceWidth, e.surfaceHeight); err != nil {
			return err
		}
	}

	e.currentStage = EngineStageInitialized
	core.LogInfo("engine initialized", "window", fmt.Sprintf("%dx%d", e.width, e.height), "surface", fmt.Sprintf("%dx%d", e.surfaceWidth, e.surfaceHeight))
	return nil
}

func (e *Engine) uploadInitialTextures() error {
	ts := e.systemManager.TextureSystem
	for _, channel := range metadata.TextureChannels {
		path, ok := e.config.Appearance.Textures[channel.String()]
		if !ok || path == "" {
			continue
		}
		if _, err := ts.Upload(channel, path); err != nil {
			return err
		}
		if e.config.Textures.Watch {
			if err := ts.Watch(channel, path); err != nil {
				core.LogWarn("cannot watch texture", "path", path, "err", err)
			}
		}
	}
	return nil
}

// Run drives frames until ctx is done, the window closes or a quit event arrives.
func (e *Engine) Run(ctx context.Context) error {
	if e.currentStage != EngineStageInitialized {
		return fmt.Errorf("engine run in stage %d: %w", e.currentStage, core.ErrNotInitialized)
	}
	e.currentStage = EngineStageRunning
	e.isRunning = true

	e.clock.Start()
	e.clock.Update()
	e.lastTime = e.clock.Elapsed()

	targetFrameSeconds := 1.0 / float64(e.config.Window.TargetFPS)

	for e.isRunning {
		select {
		case <-ctx.Done():
			e.isRunning = false
			continue
		default:
		}

		if !e.platform.PumpMessages() {
			e.isRunning = false
			break
		}

		// Update clock and get delta time.
		e.clock.Update()
		currentTime := e.clock.Elapsed()
		delta := currentTime - e.lastTime
		e.lastTime = currentTime

		if e.isSuspended {
			e.platform.Sleep(targetFrameSeconds * 1000)
			continue
		}

		frameStartTime := e.platform.GetAbsoluteTime()
		if err := e.Frame(delta); err != nil {
			core.LogError("frame failed, shutting down", "err", err)
			e.isRunning = false
			return err
		}

		// Figure out how long the frame took and, if below the target, give
		// the rest back to the OS.
		frameElapsedTime := e.platform.GetAbsoluteTime() - frameStartTime
		e.metrics.Update(frameElapsedTime)
		remainingSeconds := targetFrameSeconds - frameElapsedTime
		if e.config.Window.LimitFrames && remainingSeconds > 0.001 {
			e.platform.Sleep(remainingSeconds*1000 - 1)
		}
	}
	return nil
}

/**
 * @brief Runs one frame: publish finished textures, re-derive from the
 * configuration if it changed, move the camera, draw and present.
 */
func (e *Engine) Frame(delta float64) error {
	sm := e.systemManager
	sm.TextureSystem.Update()
	if _, err := sm.Refresh(); err != nil {
		return err
	}
	sm.OrbitControls.Update(delta)

	if e.gameInstance.FnUpdate != nil {
		if err := e.gameInstance.FnUpdate(delta); err != nil {
			return err
		}
	}

	packet := e.buildPacket(delta)
	if e.gameInstance.FnRender != nil {
		if err := e.gameInstance.FnRender(packet, delta); err != nil {
			return err
		}
	}

	if err := e.renderer.DrawFrame(packet); err != nil {
		if errors.Is(err, core.ErrContextLost) {
			return e.recoverContext()
		}
		return err
	}
	e.platform.SwapBuffers()

	// NOTE: Input update/state copying should always be handled
	// after any input should be recorded.
	e.input.Update()

	e.frameCount++
	if e.frameCount%metricsLogInterval == 0 {
		fps, ms := e.metrics.Frame()
		core.LogDebug("frame metrics", "fps", fps, "avg_ms", ms, "frame", e.renderer.FrameNumber())
	}
	return nil
}

func (e *Engine) buildPacket(delta float64) *metadata.RenderPacket {
	sm := e.systemManager
	packet := &metadata.RenderPacket{
		DeltaTime:    delta,
		Projection:   e.camera.GetProjection(),
		View:         e.camera.GetView(),
		ViewPosition: e.camera.Position(),
		ClearColour:  e.clearColour,
		Lights:       sm.LightingSystem.Lights(),
	}
	if card, material := sm.Card(), sm.MaterialSystem.Material(); card != nil && material != nil {
		packet.Geometries = []metadata.GeometryRenderData{{
			Model:    mgl32.Ident4(),
			Geometry: card,
			Material: material,
		}}
	}
	return packet
}

/**
 * @brief Tears the whole viewport down and builds it again from the
 * configuration store. Nothing created on the lost context is reused.
 */
func (e *Engine) recoverContext() error {
	core.LogWarn("rendering context lost, rebuilding the viewport")
	e.events.Fire(core.EventContext{Type: core.EVENT_CODE_CONTEXT_LOST})

	e.systemManager.ReleaseGPU()
	if err := e.renderer.Shutdown(); err != nil {
		core.LogWarn("renderer shutdown after context loss", "err", err)
	}
	if err := e.renderer.Initialize(e.config.Name, e.surfaceWidth, e.surfaceHeight); err != nil {
		return err
	}
	if err := e.renderer.OnResize(e.surfaceWidth, e.surfaceHeight); err != nil {
		return err
	}
	return e.systemManager.RestoreGPU()
}

/**
 * @brief Releases everything the engine created. Safe to call more than
 * once and from a failed Initialize.
 */
func (e *Engine) Shutdown() error {
	e.shutdownOnce.Do(func() {
		e.currentStage = EngineStageShuttingDown
		e.isRunning = false

		for _, code := range []core.EventCode{
			core.EVENT_CODE_APPLICATION_QUIT,
			core.EVENT_CODE_KEY_PRESSED,
			core.EVENT_CODE_RESIZED,
			core.EVENT_CODE_BUTTON_PRESSED,
			core.EVENT_CODE_BUTTON_RELEASED,
			core.EVENT_CODE_MOUSE_MOVED,
			core.EVENT_CODE_MOUSE_WHEEL,
		} {
			e.events.Unregister(code, e)
		}

		var errs []error
		if e.gameInstance.FnShutdown != nil {
			errs = append(errs, e.gameInstance.FnShutdown())
		}
		// GPU objects go before the context that owns them.
		errs = append(errs, e.systemManager.Shutdown())
		errs = append(errs, e.renderer.Shutdown())
		errs = append(errs, e.platform.Shutdown())
		e.events.Shutdown()

		e.shutdownErr = errors.Join(errs...)
		e.currentStage = EngineStageShutdown
		core.LogInfo("engine shut down")
	})
	return e.shutdownErr
}

// GetFramebufferSize returns the width and height (in this order)
// of the application framebuffer.
func (e *Engine) GetFramebufferSize() (uint32, uint32) {
	return e.width, e.height
}

// SurfaceSize is the part of the framebuffer the card is rendered into.
func (e *Engine) SurfaceSize() (uint32, uint32) {
	return e.surfaceWidth, e.surfaceHeight
}

func (e *Engine) Camera() *components.Camera {
	return e.camera
}

func (e *Engine) Stage() Stage {
	return e.currentStage
}

func (e *Engine) computeSurface() {
	e.surfaceWidth = uint32(float32(e.width) * e.config.Window.ViewportFraction)
	if e.surfaceWidth == 0 && e.width > 0 {
		e.surfaceWidth = 1
	}
	e.surfaceHeight = e.height
	if e.surfaceWidth > 0 && e.surfaceHeight > 0 {
		e.camera.SetAspect(float32(e.surfaceWidth) / float32(e.surfaceHeight))
	}
}

func (e *Engine) onEvent(context core.EventContext) bool {
	switch context.Type {
	case core.EVENT_CODE_APPLICATION_QUIT:
		core.LogInfo("EVENT_CODE_APPLICATION_QUIT received, shutting down")
		e.isRunning = false
		return true
	}
	return false
}

func (e *Engine) onKey(context core.EventContext) bool {
	ke, ok := context.Data.(*core.KeyEvent)
	if !ok {
		core.LogError("wrong event associated with the event type", "type", context.Type)
		return false
	}
	if ke.KeyCode == core.KEY_ESCAPE {
		// NOTE: Technically firing an event to itself, but there may be other listeners.
		e.events.Fire(core.EventContext{Type: core.EVENT_CODE_APPLICATION_QUIT})
		// Block anything else from processing this.
		return true
	}
	return false
}

func (e *Engine) onResized(context core.EventContext) bool {
	se, ok := context.Data.(*core.SystemEvent)
	if !ok {
		core.LogError("wrong event associated with the event type", "type", context.Type)
		return false
	}
	width, height := se.WindowWidth, se.WindowHeight
	if width == e.width && height == e.height {
		return false
	}
	e.width, e.height = width, height
	core.LogDebug("window resize", "width", width, "height", height)

	// Handle minimization
	if width == 0 || height == 0 {
		core.LogInfo("window minimized, suspending application")
		e.isSuspended = true
		return false
	}
	if e.isSuspended {
		core.LogInfo("window restored, resuming application")
		e.isSuspended = false
	}

	e.computeSurface()
	if err := e.renderer.OnResize(e.surfaceWidth, e.surfaceHeight); err != nil {
		core.LogError("renderer resize failed", "err", err)
	}
	if e.gameInstance.FnOnResize != nil {
		if err := e.gameInstance.FnOnResize(e.surfaceWidth, e.surfaceHeight); err != nil {
			core.LogError("game resize failed", "err", err)
		}
	}
	return false
}

func (e *Engine) insideSurface(x, y int32) bool {
	return x >= 0 && y >= 0 && uint32(x) < e.surfaceWidth && uint32(y) < e.surfaceHeight
}

func (e *Engine) onButton(context core.EventContext) bool {
	me, ok := context.Data.(*core.MouseEvent)
	if !ok {
		return false
	}
	orbit := e.systemManager.OrbitControls
	if context.Type == core.EVENT_CODE_BUTTON_RELEASED {
		orbit.EndDrag()
		return false
	}
	if !e.insideSurface(me.PosX, me.PosY) {
		return false
	}
	switch me.Button {
	case core.BUTTON_LEFT:
		orbit.BeginRotate(float64(me.PosX), float64(me.PosY))
	case core.BUTTON_RIGHT, core.BUTTON_MIDDLE:
		orbit.BeginPan(float64(me.PosX), float64(me.PosY))
	}
	return true
}

func (e *Engine) onMouseMove(context core.EventContext) bool {
	me, ok := context.Data.(*core.MouseEvent)
	if !ok {
		return false
	}
	e.systemManager.OrbitControls.PointerMove(float64(me.PosX), float64(me.PosY), e.surfaceHeight)
	return false
}

func (e *Engine) onMouseWheel(context core.EventContext) bool {
	me, ok := context.Data.(*core.MouseEvent)
	if !ok {
		return false
	}
	x, y := e.input.MousePosition()
	if !e.insideSurface(x, y) {
		return false
	}
	e.systemManager.OrbitControls.Zoom(float64(me.Scroll))
	return true
}
