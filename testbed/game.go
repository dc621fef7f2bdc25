package testbed

import (
	"fmt"

	"github.com/spaghettifunk/cardforge/engine"
	"github.com/spaghettifunk/cardforge/engine/core"
	"github.com/spaghettifunk/cardforge/engine/renderer/metadata"
	"github.com/spaghettifunk/cardforge/engine/systems"
)

// Colors cycled by the C, E and H keys.
var (
	swatches     = []string{"#2196f3", "#e53935", "#43a047", "#ffd700", "#212121", "#fafafa"}
	edgeSwatches = []string{"#000000", "#ffffff", "#c0c0c0", "#ffd700"}
	foilSwatches = []string{"#ffd700", "#c0c0c0", "#b87333", "#e5e4e2"}
)

// Keys 5 to 8 pick the channel a dropped image is uploaded to.
var channelKeys = map[core.KeyCode]metadata.TextureChannel{
	core.KEY_5: metadata.TextureChannelColor,
	core.KEY_6: metadata.TextureChannelNormal,
	core.KEY_7: metadata.TextureChannelRoughness,
	core.KEY_8: metadata.TextureChannelMetalness,
}

const scalarStep float32 = 0.1

/**
 * @brief Keyboard stand-in for the control panel. Every key maps to a single
 * configuration setter; the engine picks the change up on the next frame.
 */
type ControlPanel struct {
	*engine.Game
}

type panelState struct {
	swatch     int
	edgeSwatch int
	foilSwatch int

	// Channel that receives the next dropped image.
	channel metadata.TextureChannel
	// Request ids of uploads started from drops.
	uploads []string

	width  uint32
	height uint32

	// Failures reported by the texture system since startup.
	textureFailures int
}

func NewControlPanel(config *engine.ApplicationConfig) *ControlPanel {
	cp := &ControlPanel{
		Game: &engine.Game{
			ApplicationConfig: config,
			State:             &panelState{},
		},
	}

	cp.FnInitialize = cp.Initialize
	cp.FnOnResize = cp.OnResize
	cp.FnShutdown = cp.Shutdown

	return cp
}

func (cp *ControlPanel) Initialize() error {
	core.LogDebug("control panel initialize")

	if cp.SystemManager == nil || cp.Events == nil {
		return fmt.Errorf("control panel: %w", core.ErrNotInitialized)
	}

	state := cp.State.(*panelState)
	cfg, _ := cp.SystemManager.ConfigurationStore.Snapshot()
	state.swatch = swatchIndex(swatches, cfg.BaseColor)
	state.edgeSwatch = swatchIndex(edgeSwatches, cfg.EdgeColor)
	state.foilSwatch = swatchIndex(foilSwatches, cfg.HotFoilColor)
	state.channel = metadata.TextureChannelColor

	cp.Events.Register(core.EVENT_CODE_KEY_PRESSED, cp, cp.onKey)
	cp.Events.Register(core.EVENT_CODE_TEXTURE_FAILED, cp, cp.onTextureFailed)
	cp.Events.Register(core.EVENT_CODE_FILE_DROPPED, cp, cp.onFileDropped)

	core.LogInfo("controls: 1/2/3 scene, F finish, C/E/H base/edge/foil color, M/N metalness, R/T roughness, O/P opacity, U/Y relief, K/J grain, 5-8 drop target, Backspace clear map, Esc quit")
	return nil
}

func (cp *ControlPanel) OnResize(width uint32, height uint32) error {
	state := cp.State.(*panelState)
	state.width = width
	state.height = height
	return nil
}

func (cp *ControlPanel) Shutdown() error {
	cp.Events.Unregister(core.EVENT_CODE_KEY_PRESSED, cp)
	cp.Events.Unregister(core.EVENT_CODE_TEXTURE_FAILED, cp)
	cp.Events.Unregister(core.EVENT_CODE_FILE_DROPPED, cp)
	return nil
}

func (cp *ControlPanel) onKey(context core.EventContext) bool {
	ke, ok := context.Data.(*core.KeyEvent)
	if !ok {
		return false
	}
	if err := cp.apply(ke.KeyCode); err != nil {
		core.LogError("control panel", "key", ke.KeyCode, "err", err)
	}
	return false
}

// apply translates one key press into a configuration change.
func (cp *ControlPanel) apply(key core.KeyCode) error {
	store := cp.SystemManager.ConfigurationStore
	state := cp.State.(*panelState)
	cfg, _ := store.Snapshot()

	switch key {
	case core.KEY_1, core.KEY_2, core.KEY_3:
		return store.SetLightingScene(metadata.LightingScenes[key-core.KEY_1])
	case core.KEY_F:
		if cfg.Finish == metadata.FinishGlossy {
			return store.SetFinish(metadata.FinishMatte)
		}
		return store.SetFinish(metadata.FinishGlossy)
	case core.KEY_C:
		return store.SetBaseColor(next(swatches, &state.swatch))
	case core.KEY_E:
		return store.SetEdgeColor(next(edgeSwatches, &state.edgeSwatch))
	case core.KEY_H:
		return store.SetHotFoilColor(next(foilSwatches, &state.foilSwatch))
	case core.KEY_M:
		return store.SetMetalness(cfg.Metalness + scalarStep)
	case core.KEY_N:
		return store.SetMetalness(cfg.Metalness - scalarStep)
	case core.KEY_T:
		return store.SetRoughness(cfg.Roughness + scalarStep)
	case core.KEY_R:
		return store.SetRoughness(cfg.Roughness - scalarStep)
	case core.KEY_P:
		return store.SetOpacity(cfg.Opacity + scalarStep)
	case core.KEY_O:
		return store.SetOpacity(cfg.Opacity - scalarStep)
	case core.KEY_U:
		return store.SetReliefHeight(cfg.ReliefHeight + scalarStep)
	case core.KEY_Y:
		return store.SetReliefHeight(cfg.ReliefHeight - scalarStep)
	case core.KEY_K:
		return store.SetGrainSize(cfg.GrainSize + scalarStep)
	case core.KEY_J:
		return store.SetGrainSize(cfg.GrainSize - scalarStep)
	case core.KEY_5, core.KEY_6, core.KEY_7, core.KEY_8:
		state.channel = channelKeys[key]
		core.LogInfo("drop target selected", "channel", state.channel.String())
	case core.KEY_BACKSPACE:
		return cp.SystemManager.TextureSystem.ClearChannel(state.channel)
	}
	return nil
}

// onFileDropped uploads the first dropped file to the selected channel.
func (cp *ControlPanel) onFileDropped(context core.EventContext) bool {
	drop, ok := context.Data.(*core.FileDropEvent)
	if !ok || len(drop.Paths) == 0 {
		return false
	}
	state := cp.State.(*panelState)
	if len(drop.Paths) > 1 {
		core.LogWarn("several files dropped, using the first", "count", len(drop.Paths))
	}
	id, err := cp.SystemManager.TextureSystem.Upload(state.channel, drop.Paths[0])
	if err != nil {
		core.LogError("texture upload", "channel", state.channel.String(), "path", drop.Paths[0], "err", err)
		return false
	}
	state.uploads = append(state.uploads, id)
	return true
}

func swatchIndex(palette []string, c metadata.Color) int {
	for i, hex := range palette {
		if metadata.MustColorFromHex(hex) == c {
			return i
		}
	}
	return -1
}

// next advances *index through palette and returns the color it lands on.
func next(palette []string, index *int) metadata.Color {
	*index = (*index + 1) % len(palette)
	return metadata.MustColorFromHex(palette[*index])
}

func (cp *ControlPanel) onTextureFailed(context core.EventContext) bool {
	failure, ok := context.Data.(*systems.TextureFailure)
	if !ok {
		return false
	}
	state := cp.State.(*panelState)
	state.textureFailures++
	core.LogError("texture not applied", "channel", failure.Channel, "path", failure.Path, "err", failure.Err)
	return false
}
