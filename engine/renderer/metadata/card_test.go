package metadata

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/cardforge/engine/core"
)

func TestParseEnums(t *testing.T) {
	f, err := ParseFinish("Matte")
	require.NoError(t, err)
	assert.Equal(t, FinishMatte, f)
	_, err = ParseFinish("satin")
	assert.ErrorIs(t, err, core.ErrUnknownEnum)
	assert.False(t, Finish(7).Valid())

	for _, scene := range LightingScenes {
		parsed, err := ParseLightingScene(scene.String())
		require.NoError(t, err)
		assert.Equal(t, scene, parsed)
	}
	_, err = ParseLightingScene("neon")
	assert.ErrorIs(t, err, core.ErrUnknownEnum)

	for _, c := range TextureChannels {
		parsed, err := ParseTextureChannel(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, parsed)
	}
	_, err = ParseTextureChannel("emissive")
	assert.ErrorIs(t, err, core.ErrUnknownEnum)

	p, err := ParseTransparencyPolicy("")
	require.NoError(t, err)
	assert.Equal(t, TransparencyAlways, p)
}

func TestColorFromHex(t *testing.T) {
	c, err := ColorFromHex("#2196f3")
	require.NoError(t, err)
	assert.InDelta(t, 0x21/255.0, c.R, 1e-6)
	assert.InDelta(t, 0x96/255.0, c.G, 1e-6)
	assert.InDelta(t, 0xf3/255.0, c.B, 1e-6)
	assert.Equal(t, float32(1), c.A)
	assert.Equal(t, "#2196f3", c.Hex())

	gold, foil := ColorFromRGB24(0xFFD700), MustColorFromHex("FFD700")
	assert.InDelta(t, gold.R, foil.R, 1e-6)
	assert.InDelta(t, gold.G, foil.G, 1e-6)
	assert.InDelta(t, gold.B, foil.B, 1e-6)

	_, err = ColorFromHex("#zzzzzz")
	assert.ErrorIs(t, err, core.ErrInvalidParameter)

	assert.True(t, ColorWhite.Valid())
	assert.False(t, Color{R: 2}.Valid())
}

func TestLightDirection(t *testing.T) {
	l := Light{Position: mgl32.Vec3{0, 0, 5}}
	assert.True(t, l.Direction().ApproxEqual(mgl32.Vec3{0, 0, -1}))
	assert.Equal(t, mgl32.Vec3{0, 0, -1}, Light{}.Direction())
}
