package systems

import (
	"fmt"
	gomath "math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/spaghettifunk/cardforge/engine/core"
	"github.com/spaghettifunk/cardforge/engine/renderer/metadata"
)

// RigFor returns the lights of a preset. Directional and spot lights aim
// at the origin. An unknown scene has no lights.
func RigFor(scene metadata.LightingScene) []metadata.Light {
	white := metadata.ColorWhite
	switch scene {
	case metadata.SceneStudio:
		return []metadata.Light{
			{Name: "studio.ambient", Type: metadata.LightTypeAmbient, Color: white, Intensity: 0.5},
			{Name: "studio.key", Type: metadata.LightTypeDirectional, Color: white, Intensity: 1.0, Position: mgl32.Vec3{1, 1, 1}},
			{Name: "studio.fill", Type: metadata.LightTypeDirectional, Color: white, Intensity: 0.3, Position: mgl32.Vec3{-1, -1, 1}},
		}
	case metadata.SceneOutdoor:
		return []metadata.Light{
			{Name: "outdoor.sun", Type: metadata.LightTypeDirectional, Color: white, Intensity: 1.5, Position: mgl32.Vec3{5, 5, 5}},
			{Name: "outdoor.sky", Type: metadata.LightTypeHemisphere, Color: metadata.ColorFromRGB24(0x87ceeb), GroundColor: metadata.ColorFromRGB24(0x404040), Intensity: 1.0},
		}
	case metadata.SceneDramatic:
		return []metadata.Light{
			{Name: "dramatic.spot", Type: metadata.LightTypeSpot, Color: white, Intensity: 2.0, Position: mgl32.Vec3{3, 3, 3}, Angle: gomath.Pi / 6},
			{Name: "dramatic.rim", Type: metadata.LightTypeDirectional, Color: metadata.ColorFromRGB24(0x404040), Intensity: 0.5, Position: mgl32.Vec3{-2, -2, -2}},
		}
	}
	return nil
}

/**
 * @brief Holds the lights attached to the scene. Exactly one rig is
 * attached at a time.
 */
type LightingSystem struct {
	scene    metadata.LightingScene
	attached bool
	lights   []metadata.Light
}

func NewLightingSystem() *LightingSystem {
	return &LightingSystem{}
}

/**
 * @brief Detaches every light and attaches the rig for scene. Switching to
 * the scene already attached does nothing.
 */
func (ls *LightingSystem) Switch(scene metadata.LightingScene) error {
	if !scene.Valid() {
		return fmt.Errorf("lighting scene %d: %w", scene, core.ErrUnknownEnum)
	}
	if ls.attached && ls.scene == scene {
		return nil
	}
	ls.detachAll()
	ls.lights = append(ls.lights, RigFor(scene)...)
	ls.scene = scene
	ls.attached = true
	core.LogDebug("lighting rig switched", "scene", scene.String(), "lights", len(ls.lights))
	return nil
}

func (ls *LightingSystem) detachAll() {
	ls.lights = ls.lights[:0]
	ls.attached = false
}

// Scene reports the attached scene; ok is false before the first Switch.
func (ls *LightingSystem) Scene() (scene metadata.LightingScene, ok bool) {
	return ls.scene, ls.attached
}

// Lights returns a copy of the attached lights.
func (ls *LightingSystem) Lights() []metadata.Light {
	return append([]metadata.Light(nil), ls.lights...)
}

func (ls *LightingSystem) Shutdown() error {
	ls.detachAll()
	ls.lights = nil
	return nil
}
