package testbed

import (
	"bytes"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/cardforge/engine"
	"github.com/spaghettifunk/cardforge/engine/core"
	"github.com/spaghettifunk/cardforge/engine/platform"
	"github.com/spaghettifunk/cardforge/engine/renderer/metadata"
	"github.com/spaghettifunk/cardforge/engine/renderer/rendertest"
)

type headless struct{ now float64 }

func (h *headless) Startup(string, uint32, uint32, uint32, uint32) error { return nil }
func (h *headless) PumpMessages() bool                                  { return true }
func (h *headless) SwapBuffers()                                        {}
func (h *headless) FramebufferSize() (uint32, uint32)                   { return 1000, 500 }
func (h *headless) Sleep(float64)                                       {}
func (h *headless) Shutdown() error                                     { return nil }
func (h *headless) GetAbsoluteTime() float64                            { h.now += 0.001; return h.now }

func newPanel(t *testing.T) (*ControlPanel, *engine.Engine) {
	t.Helper()
	config := engine.DefaultApplicationConfig()
	config.Orbit.AutoRotate = false
	cp := NewControlPanel(config)
	e, err := engine.New(cp.Game, rendertest.NewBackend(), func(*core.EventSystem, *core.InputSystem) platform.Platform {
		return &headless{}
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Shutdown() })
	require.NoError(t, e.Initialize())
	return cp, e
}

func press(cp *ControlPanel, keys ...core.KeyCode) {
	for _, k := range keys {
		cp.Events.Fire(core.EventContext{Type: core.EVENT_CODE_KEY_PRESSED, Data: &core.KeyEvent{KeyCode: k}})
	}
}

func TestControlPanel_KeysDriveTheStore(t *testing.T) {
	cp, _ := newPanel(t)
	store := cp.SystemManager.ConfigurationStore

	press(cp, core.KEY_2, core.KEY_F, core.KEY_M, core.KEY_R, core.KEY_O)
	cfg, _ := store.Snapshot()
	assert.Equal(t, metadata.SceneOutdoor, cfg.LightingScene)
	assert.Equal(t, metadata.FinishMatte, cfg.Finish)
	assert.InDelta(t, 0.6, cfg.Metalness, 1e-6)
	assert.InDelta(t, 0.1, cfg.Roughness, 1e-6)
	assert.InDelta(t, 0.9, cfg.Opacity, 1e-6)

	press(cp, core.KEY_3, core.KEY_F, core.KEY_N, core.KEY_T, core.KEY_P)
	cfg, _ = store.Snapshot()
	assert.Equal(t, metadata.SceneDramatic, cfg.LightingScene)
	assert.Equal(t, metadata.FinishGlossy, cfg.Finish)
	assert.InDelta(t, 0.5, cfg.Metalness, 1e-6)
	assert.InDelta(t, 0.2, cfg.Roughness, 1e-6)
	assert.InDelta(t, 1.0, cfg.Opacity, 1e-6)
}

func TestControlPanel_ScalarsStayInRange(t *testing.T) {
	cp, _ := newPanel(t)
	for i := 0; i < 15; i++ {
		press(cp, core.KEY_M, core.KEY_P)
	}
	cfg, _ := cp.SystemManager.ConfigurationStore.Snapshot()
	assert.Equal(t, float32(1), cfg.Metalness)
	assert.Equal(t, float32(1), cfg.Opacity)
}

func TestControlPanel_SwatchesCycle(t *testing.T) {
	cp, _ := newPanel(t)
	store := cp.SystemManager.ConfigurationStore

	// The default base color is the first swatch.
	press(cp, core.KEY_C)
	cfg, _ := store.Snapshot()
	assert.Equal(t, swatches[1], cfg.BaseColor.Hex())

	for range swatches[1:] {
		press(cp, core.KEY_C)
	}
	cfg, _ = store.Snapshot()
	assert.Equal(t, swatches[0], cfg.BaseColor.Hex())
}

// frames runs frames until done reports true or the attempts run out.
func frames(t *testing.T, e *engine.Engine, done func() bool) {
	t.Helper()
	for i := 0; i < 400 && !done(); i++ {
		require.NoError(t, e.Frame(1.0/60))
		time.Sleep(5 * time.Millisecond)
	}
	require.True(t, done())
}

func TestControlPanel_BackspaceClearsColorMap(t *testing.T) {
	cp, e := newPanel(t)
	store := cp.SystemManager.ConfigurationStore

	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	_, err := cp.SystemManager.TextureSystem.UploadBytes(metadata.TextureChannelColor, "swatch.png", buf.Bytes())
	require.NoError(t, err)
	frames(t, e, func() bool { return store.Texture(metadata.TextureChannelColor) != nil })

	press(cp, core.KEY_BACKSPACE)
	assert.Nil(t, store.Texture(metadata.TextureChannelColor))
}

func TestControlPanel_CountsTextureFailures(t *testing.T) {
	cp, e := newPanel(t)
	state := cp.State.(*panelState)

	_, err := cp.SystemManager.TextureSystem.UploadBytes(metadata.TextureChannelNormal, "broken.png", []byte("not an image"))
	require.NoError(t, err)
	frames(t, e, func() bool { return state.textureFailures > 0 })
	assert.Equal(t, 1, state.textureFailures)
	assert.Nil(t, cp.SystemManager.ConfigurationStore.Texture(metadata.TextureChannelNormal))
}

func TestControlPanel_DecorativeFields(t *testing.T) {
	cp, _ := newPanel(t)
	store := cp.SystemManager.ConfigurationStore

	press(cp, core.KEY_E, core.KEY_H, core.KEY_U, core.KEY_U, core.KEY_J)
	cfg, _ := store.Snapshot()
	assert.Equal(t, edgeSwatches[1], cfg.EdgeColor.Hex())
	assert.Equal(t, foilSwatches[1], cfg.HotFoilColor.Hex())
	assert.InDelta(t, 0.2, cfg.ReliefHeight, 1e-6)
	assert.InDelta(t, 0.4, cfg.GrainSize, 1e-6)

	press(cp, core.KEY_Y, core.KEY_Y, core.KEY_Y, core.KEY_K)
	cfg, _ = store.Snapshot()
	assert.Equal(t, float32(0), cfg.ReliefHeight)
	assert.InDelta(t, 0.5, cfg.GrainSize, 1e-6)
}

func writePNG(t *testing.T, size int) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	path := filepath.Join(t.TempDir(), "map.png")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func drop(cp *ControlPanel, paths ...string) bool {
	return cp.Events.Fire(core.EventContext{Type: core.EVENT_CODE_FILE_DROPPED, Data: &core.FileDropEvent{Paths: paths}})
}

func TestControlPanel_DropUploadsToSelectedChannel(t *testing.T) {
	cp, e := newPanel(t)
	store := cp.SystemManager.ConfigurationStore
	path := writePNG(t, 8)

	press(cp, core.KEY_6)
	assert.True(t, drop(cp, path))
	frames(t, e, func() bool { return store.Texture(metadata.TextureChannelNormal) != nil })
	assert.Nil(t, store.Texture(metadata.TextureChannelColor))
	assert.Equal(t, uint32(8), store.Texture(metadata.TextureChannelNormal).Width)

	// Later drops go to whichever channel is selected at the time.
	press(cp, core.KEY_8)
	assert.True(t, drop(cp, path, "/ignored.png"))
	frames(t, e, func() bool { return store.Texture(metadata.TextureChannelMetalness) != nil })
	assert.Len(t, cp.State.(*panelState).uploads, 2)

	// Backspace clears the selected channel only.
	press(cp, core.KEY_BACKSPACE)
	assert.Nil(t, store.Texture(metadata.TextureChannelMetalness))
	assert.NotNil(t, store.Texture(metadata.TextureChannelNormal))
}

func TestControlPanel_EmptyDropIsIgnored(t *testing.T) {
	cp, _ := newPanel(t)
	assert.False(t, drop(cp))
	assert.Empty(t, cp.State.(*panelState).uploads)
}

func TestControlPanel_ShutdownUnregisters(t *testing.T) {
	cp, _ := newPanel(t)
	assert.Equal(t, 1, cp.Events.ListenerCount(core.EVENT_CODE_TEXTURE_FAILED))
	assert.Equal(t, 1, cp.Events.ListenerCount(core.EVENT_CODE_FILE_DROPPED))
	require.NoError(t, cp.Shutdown())
	assert.Zero(t, cp.Events.ListenerCount(core.EVENT_CODE_TEXTURE_FAILED))
	assert.Zero(t, cp.Events.ListenerCount(core.EVENT_CODE_FILE_DROPPED))
}
