package systems

import (
	"fmt"
	"sync"

	"github.com/spaghettifunk/cardforge/engine/core"
	"github.com/spaghettifunk/cardforge/engine/math"
	"github.com/spaghettifunk/cardforge/engine/renderer/metadata"
)

/**
 * @brief Every user-adjustable parameter of the card. Scalars are
 * normalized to [0, 1]. A channel missing from Textures has no map bound.
 */
type Configuration struct {
	BaseColor    metadata.Color
	EdgeColor    metadata.Color
	HotFoilColor metadata.Color

	Metalness    float32
	Roughness    float32
	Opacity      float32
	ReliefHeight float32
	GrainSize    float32

	Finish        metadata.Finish
	LightingScene metadata.LightingScene

	Textures map[metadata.TextureChannel]*metadata.Texture
}

func DefaultConfiguration() Configuration {
	return Configuration{
		BaseColor:     metadata.MustColorFromHex("#2196f3"),
		EdgeColor:     metadata.MustColorFromHex("#000000"),
		HotFoilColor:  metadata.MustColorFromHex("#FFD700"),
		Metalness:     0.5,
		Roughness:     0.2,
		Opacity:       1.0,
		ReliefHeight:  0,
		GrainSize:     0.5,
		Finish:        metadata.FinishGlossy,
		LightingScene: metadata.SceneStudio,
		Textures:      map[metadata.TextureChannel]*metadata.Texture{},
	}
}

func (c Configuration) clone() Configuration {
	textures := make(map[metadata.TextureChannel]*metadata.Texture, len(c.Textures))
	for k, v := range c.Textures {
		if v != nil {
			textures[k] = v
		}
	}
	c.Textures = textures
	return c
}

/** @brief Payload of EVENT_CODE_CONFIGURATION_CHANGED. */
type ConfigurationChanged struct {
	Field   string
	Version uint64
}

/**
 * @brief The single source of truth for the card's appearance. Setters are
 * safe to call from any goroutine; readers take whole snapshots.
 */
type ConfigurationStore struct {
	mu      sync.RWMutex
	current Configuration
	version uint64
	events  *core.EventSystem
}

// NewConfigurationStore validates initial the same way the setters do.
// events may be nil.
func NewConfigurationStore(initial Configuration, events *core.EventSystem) (*ConfigurationStore, error) {
	cs := &ConfigurationStore{events: events}
	cfg := initial.clone()
	for _, c := range []metadata.Color{cfg.BaseColor, cfg.EdgeColor, cfg.HotFoilColor} {
		if !c.Valid() {
			return nil, fmt.Errorf("color %v: %w", c, core.ErrInvalidParameter)
		}
	}
	for name, v := range map[string]*float32{
		"metalness":     &cfg.Metalness,
		"roughness":     &cfg.Roughness,
		"opacity":       &cfg.Opacity,
		"relief_height": &cfg.ReliefHeight,
		"grain_size":    &cfg.GrainSize,
	} {
		n, err := normalizeScalar(name, *v)
		if err != nil {
			return nil, err
		}
		*v = n
	}
	if !cfg.Finish.Valid() {
		return nil, fmt.Errorf("finish %d: %w", cfg.Finish, core.ErrUnknownEnum)
	}
	if !cfg.LightingScene.Valid() {
		return nil, fmt.Errorf("lighting scene %d: %w", cfg.LightingScene, core.ErrUnknownEnum)
	}
	for ch := range cfg.Textures {
		if !ch.Valid() {
			return nil, fmt.Errorf("texture channel %d: %w", ch, core.ErrUnknownEnum)
		}
	}
	cs.current = cfg
	return cs, nil
}

// Snapshot returns a copy of the whole configuration and the version it
// was taken at.
func (cs *ConfigurationStore) Snapshot() (Configuration, uint64) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.current.clone(), cs.version
}

func (cs *ConfigurationStore) Version() uint64 {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.version
}

func (cs *ConfigurationStore) Texture(channel metadata.TextureChannel) *metadata.Texture {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.current.Textures[channel]
}

// update applies fn under the write lock and fires the change event after
// releasing it. fn reports whether anything changed.
func (cs *ConfigurationStore) update(field string, fn func(cfg *Configuration) bool) {
	cs.mu.Lock()
	if !fn(&cs.current) {
		cs.mu.Unlock()
		return
	}
	cs.version++
	version := cs.version
	cs.mu.Unlock()

	core.LogDebug("configuration changed", "field", field, "version", version)
	if cs.events != nil {
		cs.events.Fire(core.EventContext{
			Type: core.EVENT_CODE_CONFIGURATION_CHANGED,
			Data: &ConfigurationChanged{Field: field, Version: version},
		})
	}
}

// normalizeScalar rejects NaN and clamps everything else into [0, 1].
func normalizeScalar(name string, v float32) (float32, error) {
	if math.IsNaN(v) {
		return 0, fmt.Errorf("%s is NaN: %w", name, core.ErrInvalidParameter)
	}
	clamped, changed := math.Clamp01(v)
	if changed {
		core.LogWarn("value out of range, clamped", "field", name, "value", v, "clamped", clamped)
	}
	return clamped, nil
}

func (cs *ConfigurationStore) setScalar(name string, v float32, field func(cfg *Configuration) *float32) error {
	n, err := normalizeScalar(name, v)
	if err != nil {
		return err
	}
	cs.update(name, func(cfg *Configuration) bool {
		p := field(cfg)
		if *p == n {
			return false
		}
		*p = n
		return true
	})
	return nil
}

func (cs *ConfigurationStore) setColor(name string, c metadata.Color, field func(cfg *Configuration) *metadata.Color) error {
	if !c.Valid() {
		return fmt.Errorf("%s %v: %w", name, c, core.ErrInvalidParameter)
	}
	cs.update(name, func(cfg *Configuration) bool {
		p := field(cfg)
		if *p == c {
			return false
		}
		*p = c
		return true
	})
	return nil
}

func (cs *ConfigurationStore) SetBaseColor(c metadata.Color) error {
	return cs.setColor("base_color", c, func(cfg *Configuration) *metadata.Color { return &cfg.BaseColor })
}

func (cs *ConfigurationStore) SetEdgeColor(c metadata.Color) error {
	return cs.setColor("edge_color", c, func(cfg *Configuration) *metadata.Color { return &cfg.EdgeColor })
}

func (cs *ConfigurationStore) SetHotFoilColor(c metadata.Color) error {
	return cs.setColor("hot_foil_color", c, func(cfg *Configuration) *metadata.Color { return &cfg.HotFoilColor })
}

func (cs *ConfigurationStore) SetMetalness(v float32) error {
	return cs.setScalar("metalness", v, func(cfg *Configuration) *float32 { return &cfg.Metalness })
}

func (cs *ConfigurationStore) SetRoughness(v float32) error {
	return cs.setScalar("roughness", v, func(cfg *Configuration) *float32 { return &cfg.Roughness })
}

func (cs *ConfigurationStore) SetOpacity(v float32) error {
	return cs.setScalar("opacity", v, func(cfg *Configuration) *float32 { return &cfg.Opacity })
}

func (cs *ConfigurationStore) SetReliefHeight(v float32) error {
	return cs.setScalar("relief_height", v, func(cfg *Configuration) *float32 { return &cfg.ReliefHeight })
}

func (cs *ConfigurationStore) SetGrainSize(v float32) error {
	return cs.setScalar("grain_size", v, func(cfg *Configuration) *float32 { return &cfg.GrainSize })
}

func (cs *ConfigurationStore) SetFinish(f metadata.Finish) error {
	if !f.Valid() {
		return fmt.Errorf("finish %d: %w", f, core.ErrUnknownEnum)
	}
	cs.update("finish", func(cfg *Configuration) bool {
		if cfg.Finish == f {
			return false
		}
		cfg.Finish = f
		return true
	})
	return nil
}

func (cs *ConfigurationStore) SetLightingScene(s metadata.LightingScene) error {
	if !s.Valid() {
		return fmt.Errorf("lighting scene %d: %w", s, core.ErrUnknownEnum)
	}
	cs.update("lighting_scene", func(cfg *Configuration) bool {
		if cfg.LightingScene == s {
			return false
		}
		cfg.LightingScene = s
		return true
	})
	return nil
}

/**
 * @brief Binds texture to channel, or unbinds it when texture is nil.
 * @return The texture previously bound to the channel. The caller owns it
 * and is responsible for releasing its GPU resources.
 */
func (cs *ConfigurationStore) SetTexture(channel metadata.TextureChannel, texture *metadata.Texture) (*metadata.Texture, error) {
	if !channel.Valid() {
		return nil, fmt.Errorf("texture channel %d: %w", channel, core.ErrUnknownEnum)
	}
	var previous *metadata.Texture
	cs.update("texture_"+channel.String(), func(cfg *Configuration) bool {
		previous = cfg.Textures[channel]
		if previous == texture {
			return false
		}
		if texture == nil {
			delete(cfg.Textures, channel)
		} else {
			cfg.Textures[channel] = texture
		}
		return true
	})
	if previous == texture {
		return nil, nil
	}
	return previous, nil
}
