package metadata

import (
	"fmt"
	"strings"

	"github.com/spaghettifunk/cardforge/engine/core"
)

/** @brief The surface finish of the card face. */
type Finish int

const (
	FinishGlossy Finish = iota
	FinishMatte
)

func (f Finish) String() string {
	switch f {
	case FinishGlossy:
		return "glossy"
	case FinishMatte:
		return "matte"
	}
	return fmt.Sprintf("Finish(%d)", int(f))
}

func (f Finish) Valid() bool {
	return f == FinishGlossy || f == FinishMatte
}

func ParseFinish(s string) (Finish, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "glossy":
		return FinishGlossy, nil
	case "matte":
		return FinishMatte, nil
	}
	return 0, fmt.Errorf("finish %q: %w", s, core.ErrUnknownEnum)
}

/** @brief A named lighting preset for the scene. */
type LightingScene int

const (
	SceneStudio LightingScene = iota
	SceneOutdoor
	SceneDramatic
)

// LightingScenes lists every preset in selection order.
var LightingScenes = []LightingScene{SceneStudio, SceneOutdoor, SceneDramatic}

func (s LightingScene) String() string {
	switch s {
	case SceneStudio:
		return "studio"
	case SceneOutdoor:
		return "outdoor"
	case SceneDramatic:
		return "dramatic"
	}
	return fmt.Sprintf("LightingScene(%d)", int(s))
}

func (s LightingScene) Valid() bool {
	return s >= SceneStudio && s <= SceneDramatic
}

func ParseLightingScene(s string) (LightingScene, error) {
	for _, scene := range LightingScenes {
		if strings.EqualFold(strings.TrimSpace(s), scene.String()) {
			return scene, nil
		}
	}
	return 0, fmt.Errorf("lighting scene %q: %w", s, core.ErrUnknownEnum)
}

/**
 * @brief Decides when the synthesized material enables alpha blending.
 * Always keeps blending on regardless of opacity; Auto blends only when
 * opacity is below one.
 */
type TransparencyPolicy int

const (
	TransparencyAlways TransparencyPolicy = iota
	TransparencyAuto
)

func ParseTransparencyPolicy(s string) (TransparencyPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "always":
		return TransparencyAlways, nil
	case "auto":
		return TransparencyAuto, nil
	}
	return 0, fmt.Errorf("transparency policy %q: %w", s, core.ErrUnknownEnum)
}

/**
 * @brief Physical card dimensions in millimetres plus the bevel and
 * tessellation parameters used to build the mesh.
 */
type CardSpec struct {
	Width          float32 `toml:"width"`
	Height         float32 `toml:"height"`
	Thickness      float32 `toml:"thickness"`
	CornerRadius   float32 `toml:"corner_radius"`
	BevelThickness float32 `toml:"bevel_thickness"`
	BevelSize      float32 `toml:"bevel_size"`
	BevelSegments  uint32  `toml:"bevel_segments"`
	CurveSegments  uint32  `toml:"curve_segments"`
}

// DefaultCardSpec is an ISO/IEC 7810 ID-1 card.
func DefaultCardSpec() CardSpec {
	return CardSpec{
		Width:          85.6,
		Height:         53.98,
		Thickness:      0.76,
		CornerRadius:   3.48,
		BevelThickness: 0.2,
		BevelSize:      0.2,
		BevelSegments:  3,
		CurveSegments:  12,
	}
}
