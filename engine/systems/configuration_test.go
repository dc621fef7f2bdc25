package systems

import (
	gomath "math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/cardforge/engine/core"
	"github.com/spaghettifunk/cardforge/engine/renderer/metadata"
)

func newTestStore(t *testing.T, events *core.EventSystem) *ConfigurationStore {
	t.Helper()
	cs, err := NewConfigurationStore(DefaultConfiguration(), events)
	require.NoError(t, err)
	return cs
}

func TestDefaultConfiguration(t *testing.T) {
	cfg := DefaultConfiguration()
	assert.Equal(t, "#2196f3", cfg.BaseColor.Hex())
	assert.Equal(t, "#000000", cfg.EdgeColor.Hex())
	assert.Equal(t, "#ffd700", cfg.HotFoilColor.Hex())
	assert.Equal(t, float32(0.5), cfg.Metalness)
	assert.Equal(t, float32(0.2), cfg.Roughness)
	assert.Equal(t, float32(1), cfg.Opacity)
	assert.Equal(t, float32(0), cfg.ReliefHeight)
	assert.Equal(t, float32(0.5), cfg.GrainSize)
	assert.Equal(t, metadata.FinishGlossy, cfg.Finish)
	assert.Equal(t, metadata.SceneStudio, cfg.LightingScene)
	assert.Empty(t, cfg.Textures)
}

func TestConfigurationStore_ScalarsClampAndRejectNaN(t *testing.T) {
	cs := newTestStore(t, nil)

	require.NoError(t, cs.SetMetalness(1.7))
	require.NoError(t, cs.SetRoughness(-3))
	require.NoError(t, cs.SetOpacity(0.25))
	require.NoError(t, cs.SetReliefHeight(0.4))
	require.NoError(t, cs.SetGrainSize(2))

	cfg, _ := cs.Snapshot()
	assert.Equal(t, float32(1), cfg.Metalness)
	assert.Equal(t, float32(0), cfg.Roughness)
	assert.Equal(t, float32(0.25), cfg.Opacity)
	assert.Equal(t, float32(0.4), cfg.ReliefHeight)
	assert.Equal(t, float32(1), cfg.GrainSize)

	before := cs.Version()
	assert.ErrorIs(t, cs.SetOpacity(float32(gomath.NaN())), core.ErrInvalidParameter)
	assert.Equal(t, before, cs.Version())
	cfg, _ = cs.Snapshot()
	assert.Equal(t, float32(0.25), cfg.Opacity)
}

func TestConfigurationStore_RejectsUnknownEnums(t *testing.T) {
	cs := newTestStore(t, nil)
	before, version := cs.Snapshot()

	assert.ErrorIs(t, cs.SetFinish(metadata.Finish(7)), core.ErrUnknownEnum)
	assert.ErrorIs(t, cs.SetLightingScene(metadata.LightingScene(-1)), core.ErrUnknownEnum)
	_, err := cs.SetTexture(metadata.TextureChannel(9), &metadata.Texture{})
	assert.ErrorIs(t, err, core.ErrUnknownEnum)
	assert.ErrorIs(t, cs.SetBaseColor(metadata.Color{R: 2, A: 1}), core.ErrInvalidParameter)

	after, afterVersion := cs.Snapshot()
	assert.Equal(t, before, after)
	assert.Equal(t, version, afterVersion)
}

func TestConfigurationStore_VersionAndEvents(t *testing.T) {
	events := core.NewEventSystem()
	var got []*ConfigurationChanged
	events.Register(core.EVENT_CODE_CONFIGURATION_CHANGED, "test", func(ctx core.EventContext) bool {
		got = append(got, ctx.Data.(*ConfigurationChanged))
		return false
	})
	cs := newTestStore(t, events)

	require.NoError(t, cs.SetFinish(metadata.FinishMatte))
	require.NoError(t, cs.SetFinish(metadata.FinishMatte))
	require.NoError(t, cs.SetLightingScene(metadata.SceneDramatic))
	require.NoError(t, cs.SetHotFoilColor(metadata.ColorWhite))
	require.NoError(t, cs.SetEdgeColor(metadata.ColorWhite))

	assert.Equal(t, uint64(4), cs.Version())
	require.Len(t, got, 4)
	assert.Equal(t, "finish", got[0].Field)
	assert.Equal(t, "lighting_scene", got[1].Field)
	assert.Equal(t, uint64(4), got[3].Version)
}

func TestConfigurationStore_SetTextureReturnsPrevious(t *testing.T) {
	cs := newTestStore(t, nil)
	a := &metadata.Texture{Name: "a"}
	b := &metadata.Texture{Name: "b"}

	prev, err := cs.SetTexture(metadata.TextureChannelNormal, a)
	require.NoError(t, err)
	assert.Nil(t, prev)

	prev, err = cs.SetTexture(metadata.TextureChannelNormal, b)
	require.NoError(t, err)
	assert.Same(t, a, prev)
	assert.Same(t, b, cs.Texture(metadata.TextureChannelNormal))

	prev, err = cs.SetTexture(metadata.TextureChannelNormal, b)
	require.NoError(t, err)
	assert.Nil(t, prev)

	prev, err = cs.SetTexture(metadata.TextureChannelNormal, nil)
	require.NoError(t, err)
	assert.Same(t, b, prev)
	cfg, _ := cs.Snapshot()
	assert.NotContains(t, cfg.Textures, metadata.TextureChannelNormal)
}

func TestConfigurationStore_SnapshotIsIsolated(t *testing.T) {
	cs := newTestStore(t, nil)
	cfg, _ := cs.Snapshot()
	cfg.Textures[metadata.TextureChannelColor] = &metadata.Texture{}
	cfg.Metalness = 0

	fresh, _ := cs.Snapshot()
	assert.Empty(t, fresh.Textures)
	assert.Equal(t, float32(0.5), fresh.Metalness)
}

func TestConfigurationStore_ConcurrentSetters(t *testing.T) {
	cs := newTestStore(t, nil)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for k := 0; k < 100; k++ {
				_ = cs.SetRoughness(float32(k%10) / 10)
				_, _ = cs.Snapshot()
			}
		}(i)
	}
	wg.Wait()
	cfg, _ := cs.Snapshot()
	assert.True(t, cfg.Roughness >= 0 && cfg.Roughness <= 1)
}

func TestNewConfigurationStore_Validates(t *testing.T) {
	cfg := DefaultConfiguration()
	cfg.Metalness = 4
	cs, err := NewConfigurationStore(cfg, nil)
	require.NoError(t, err)
	snap, _ := cs.Snapshot()
	assert.Equal(t, float32(1), snap.Metalness)

	cfg = DefaultConfiguration()
	cfg.Finish = metadata.Finish(3)
	_, err = NewConfigurationStore(cfg, nil)
	assert.ErrorIs(t, err, core.ErrUnknownEnum)

	cfg = DefaultConfiguration()
	cfg.Opacity = float32(gomath.NaN())
	_, err = NewConfigurationStore(cfg, nil)
	assert.ErrorIs(t, err, core.ErrInvalidParameter)
}
