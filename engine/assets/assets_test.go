package assets

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

	"github.com/spaghettifunk/cardforge/engine/core"
	"github.com/spaghettifunk/cardforge/engine/renderer/metadata"
)

func writePNG(t *testing.T, path string, size int) {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, size, size))))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func TestAssetManager_LoadAndDecode(t *testing.T) {
	am, err := NewAssetManager()
	require.NoError(t, err)
	defer am.Shutdown()

	path := filepath.Join(t.TempDir(), "card.png")
	writePNG(t, path, 8)

	res, err := am.LoadAsset(path, metadata.ResourceTypeImage, &metadata.ImageResourceParams{})
	require.NoError(t, err)
	assert.Equal(t, uint32(8), res.Data.(*metadata.ImageResourceData).Width)
	info, ok := am.Loaded(path)
	assert.True(t, ok)
	assert.Equal(t, metadata.ResourceTypeImage, info.Type)

	_, err = am.DecodeAsset("blob", []byte{1, 2, 3}, metadata.ResourceTypeImage, nil)
	assert.ErrorIs(t, err, core.ErrTextureDecode)

	_, err = am.LoadAsset(path, metadata.ResourceTypeNone, nil)
	assert.ErrorIs(t, err, core.ErrInvalidParameter)
}

func TestAssetManager_Watch(t *testing.T) {
	am, err := NewAssetManager()
	require.NoError(t, err)
	defer am.Shutdown()

	dir := t.TempDir()
	path := filepath.Join(dir, "normal.png")
	writePNG(t, path, 2)

	changed := make(chan string, 16)
	require.NoError(t, am.Watch(path, func(p string) {
		select {
		case changed <- p:
		default:
		}
	}))

	writePNG(t, path, 4)
	select {
	case p := <-changed:
		abs, _ := filepath.Abs(path)
		assert.Equal(t, abs, p)
	case <-time.After(5 * time.Second):
		t.Fatal("no change notification")
	}

	// Other files in the same directory are ignored.
	writePNG(t, filepath.Join(dir, "other.png"), 2)
	require.NoError(t, am.Unwatch(path))
	require.NoError(t, am.Unwatch(path))
}

func TestAssetManager_ShutdownIsIdempotent(t *testing.T) {
	am, err := NewAssetManager()
	require.NoError(t, err)
	require.NoError(t, am.Shutdown())
	require.NoError(t, am.Shutdown())
	assert.ErrorIs(t, am.Watch(filepath.Join(t.TempDir(), "x.png"), func(string) {}), core.ErrAlreadyShutdown)
}

func TestDetermineAssetType(t *testing.T) {
	assert.Equal(t, metadata.ResourceTypeImage, determineAssetType("a/b/c.PNG"))
	assert.Equal(t, metadata.ResourceTypeImage, determineAssetType("c.webp"))
	assert.Equal(t, metadata.ResourceTypeNone, determineAssetType("c.txt"))
}
