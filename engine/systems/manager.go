package systems

import (
	"errors"

	"github.com/spaghettifunk/cardforge/engine/assets"
	"github.com/spaghettifunk/cardforge/engine/core"
	"github.com/spaghettifunk/cardforge/engine/renderer"
	"github.com/spaghettifunk/cardforge/engine/renderer/components"
	"github.com/spaghettifunk/cardforge/engine/renderer/metadata"
)

type SystemManagerConfig struct {
	JobWorkers   int
	JobQueueSize int
	Textures     TextureSystemConfig
	Orbit        OrbitConfig
	Card         metadata.CardSpec
	Transparency metadata.TransparencyPolicy
}

/**
 * @brief Owns every system behind the viewport and derives the material and
 * light rig from the configuration store.
 */
type SystemManager struct {
	JobSystem          *JobSystem
	AssetManager       *assets.AssetManager
	ConfigurationStore *ConfigurationStore
	TextureSystem      *TextureSystem
	GeometrySystem     *GeometrySystem
	MaterialSystem     *MaterialSystem
	LightingSystem     *LightingSystem
	OrbitControls      *OrbitControls

	config   SystemManagerConfig
	card     *metadata.Geometry
	derived  bool
	version  uint64
	shutdown bool
}

func NewSystemManager(config SystemManagerConfig, initial Configuration, r *renderer.Renderer, camera *components.Camera, events *core.EventSystem) (*SystemManager, error) {
	store, err := NewConfigurationStore(initial, events)
	if err != nil {
		return nil, err
	}
	oc, err := NewOrbitControls(camera, config.Orbit)
	if err != nil {
		return nil, err
	}
	js, err := NewJobSystem(config.JobWorkers, config.JobQueueSize)
	if err != nil {
		return nil, err
	}
	am, err := assets.NewAssetManager()
	if err != nil {
		_ = js.Shutdown()
		return nil, err
	}
	ts, err := NewTextureSystem(config.Textures, js, am, r, store, events)
	if err != nil {
		_ = js.Shutdown()
		_ = am.Shutdown()
		return nil, err
	}
	return &SystemManager{
		JobSystem:          js,
		AssetManager:       am,
		ConfigurationStore: store,
		TextureSystem:      ts,
		GeometrySystem:     NewGeometrySystem(r),
		MaterialSystem:     NewMaterialSystem(r),
		LightingSystem:     NewLightingSystem(),
		OrbitControls:      oc,
		config:             config,
	}, nil
}

// Card returns the card geometry, or nil when it is not resident.
func (sm *SystemManager) Card() *metadata.Geometry {
	return sm.card
}

// BuildCard generates and uploads the card mesh, replacing any previous one.
func (sm *SystemManager) BuildCard() error {
	config, err := GenerateCardConfig(sm.config.Card, metadata.CardGeometryName, metadata.CardMaterialName)
	if err != nil {
		return err
	}
	geometry, err := sm.GeometrySystem.AcquireFromConfig(config)
	if err != nil {
		return err
	}
	sm.GeometrySystem.Release(sm.card)
	sm.card = geometry
	return nil
}

/**
 * @brief Re-derives the material and light rig when the configuration has
 * changed since the last call. Both come from the same snapshot.
 * @return Whether anything was re-derived.
 */
func (sm *SystemManager) Refresh() (bool, error) {
	cfg, version := sm.ConfigurationStore.Snapshot()
	if sm.derived && version == sm.version {
		return false, nil
	}
	if _, err := sm.MaterialSystem.Apply(Synthesize(cfg, sm.config.Transparency)); err != nil {
		return false, err
	}
	if err := sm.LightingSystem.Switch(cfg.LightingScene); err != nil {
		return false, err
	}
	sm.version = version
	sm.derived = true
	return true, nil
}

// ReleaseGPU drops every GPU resource while keeping the state needed to
// rebuild it with RestoreGPU.
func (sm *SystemManager) ReleaseGPU() {
	sm.TextureSystem.ReleaseGPU()
	sm.MaterialSystem.Release()
	sm.GeometrySystem.Release(sm.card)
	sm.card = nil
	sm.derived = false
}

// RestoreGPU rebuilds everything ReleaseGPU dropped and re-derives the material.
func (sm *SystemManager) RestoreGPU() error {
	if err := sm.TextureSystem.Reupload(); err != nil {
		return err
	}
	if err := sm.BuildCard(); err != nil {
		return err
	}
	_, err := sm.Refresh()
	return err
}

/**
 * @brief Stops the workers and releases every resource. Textures go before
 * the job system so no completion is published after the store is cleared.
 */
func (sm *SystemManager) Shutdown() error {
	if sm.shutdown {
		return nil
	}
	sm.shutdown = true

	errs := []error{
		sm.TextureSystem.Shutdown(),
		sm.JobSystem.Shutdown(),
		sm.AssetManager.Shutdown(),
		sm.MaterialSystem.Shutdown(),
		sm.GeometrySystem.Shutdown(),
		sm.LightingSystem.Shutdown(),
	}
	sm.card = nil
	sm.derived = false
	return errors.Join(errs...)
}
