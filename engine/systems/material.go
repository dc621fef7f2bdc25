package systems

import (
	"github.com/spaghettifunk/cardforge/engine/core"
	"github.com/spaghettifunk/cardforge/engine/renderer"
	"github.com/spaghettifunk/cardforge/engine/renderer/metadata"
)

const (
	glossyClearcoat          float32 = 1.0
	glossyClearcoatRoughness float32 = 0.1
	matteClearcoat           float32 = 0.0
	matteClearcoatRoughness  float32 = 0.5
)

/**
 * @brief Derives the card material from a configuration snapshot. The
 * result depends on nothing but its arguments.
 */
func Synthesize(cfg Configuration, policy metadata.TransparencyPolicy) metadata.MaterialDescription {
	desc := metadata.MaterialDescription{
		Color:       cfg.BaseColor,
		Metalness:   cfg.Metalness,
		Roughness:   cfg.Roughness,
		Opacity:     cfg.Opacity,
		Transparent: true,
		DoubleSided: true,

		ColorMap:     cfg.Textures[metadata.TextureChannelColor],
		NormalMap:    cfg.Textures[metadata.TextureChannelNormal],
		RoughnessMap: cfg.Textures[metadata.TextureChannelRoughness],
		MetalnessMap: cfg.Textures[metadata.TextureChannelMetalness],
	}
	if policy == metadata.TransparencyAuto {
		desc.Transparent = cfg.Opacity < 1
	}
	switch cfg.Finish {
	case metadata.FinishMatte:
		desc.Clearcoat = matteClearcoat
		desc.ClearcoatRoughness = matteClearcoatRoughness
	default:
		desc.Clearcoat = glossyClearcoat
		desc.ClearcoatRoughness = glossyClearcoatRoughness
	}
	return desc
}

/**
 * @brief Owns the single live card material. Every Apply swaps in a
 * freshly built material and program; nothing is patched in place.
 */
type MaterialSystem struct {
	renderer *renderer.Renderer
	material *metadata.Material
	nextID   uint32
}

func NewMaterialSystem(r *renderer.Renderer) *MaterialSystem {
	return &MaterialSystem{renderer: r}
}

/**
 * @brief Replaces the live material with one built from desc. The new
 * program is created before the old one is released, so a failed build
 * leaves the previous material in place.
 */
func (ms *MaterialSystem) Apply(desc metadata.MaterialDescription) (*metadata.Material, error) {
	previous := ms.material
	if previous != nil && previous.InternalData != nil && previous.Description == desc {
		return previous, nil
	}

	material := &metadata.Material{
		ID:          ms.nextID,
		Name:        metadata.CardMaterialName,
		Description: desc,
	}
	if previous != nil {
		material.Generation = previous.Generation + 1
	}
	if err := ms.renderer.MaterialCreate(material); err != nil {
		core.LogError("failed to build material", "name", material.Name, "err", err)
		return nil, err
	}
	ms.nextID++
	ms.material = material
	if previous != nil {
		ms.renderer.MaterialDestroy(previous)
	}
	core.LogDebug("material applied", "generation", material.Generation, "transparent", desc.Transparent, "clearcoat", desc.Clearcoat)
	return material, nil
}

func (ms *MaterialSystem) Material() *metadata.Material {
	return ms.material
}

// Release destroys the live material's program. The next Apply builds a new one.
func (ms *MaterialSystem) Release() {
	if ms.material != nil {
		ms.renderer.MaterialDestroy(ms.material)
		ms.material = nil
	}
}

func (ms *MaterialSystem) Shutdown() error {
	ms.Release()
	return nil
}
