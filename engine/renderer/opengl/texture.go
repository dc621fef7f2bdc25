package opengl

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/spaghettifunk/cardforge/engine/core"
	"github.com/spaghettifunk/cardforge/engine/renderer/metadata"
)

type glTexture struct {
	handle uint32
}

func filterMode(f metadata.TextureFilter, mipmaps bool) int32 {
	switch {
	case f == metadata.TextureFilterModeNearest && mipmaps:
		return gl.NEAREST_MIPMAP_NEAREST
	case f == metadata.TextureFilterModeNearest:
		return gl.NEAREST
	case mipmaps:
		return gl.LINEAR_MIPMAP_LINEAR
	}
	return gl.LINEAR
}

func repeatMode(r metadata.TextureRepeat) int32 {
	switch r {
	case metadata.TextureRepeatMirroredRepeat:
		return gl.MIRRORED_REPEAT
	case metadata.TextureRepeatClampToEdge:
		return gl.CLAMP_TO_EDGE
	}
	return gl.REPEAT
}

func (b *Backend) TextureCreate(pixels []uint8, texture *metadata.Texture) error {
	if texture.Width == 0 || texture.Height == 0 {
		return fmt.Errorf("texture `%s` is %dx%d: %w", texture.Name, texture.Width, texture.Height, core.ErrInvalidDimensions)
	}
	if want := int(texture.Width) * int(texture.Height) * 4; len(pixels) < want {
		return fmt.Errorf("texture `%s` has %d bytes, want %d: %w", texture.Name, len(pixels), want, core.ErrInvalidParameter)
	}

	internalFormat := int32(gl.RGBA8)
	if texture.IsSRGB() {
		internalFormat = gl.SRGB8_ALPHA8
	}

	t := &glTexture{}
	gl.GenTextures(1, &t.handle)
	gl.BindTexture(gl.TEXTURE_2D, t.handle)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.TexImage2D(gl.TEXTURE_2D, 0, internalFormat, int32(texture.Width), int32(texture.Height), 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, filterMode(texture.FilterMinify, true))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, filterMode(texture.FilterMagnify, false))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, repeatMode(texture.RepeatU))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, repeatMode(texture.RepeatV))
	gl.BindTexture(gl.TEXTURE_2D, 0)

	if err := b.checkError(); err != nil {
		gl.DeleteTextures(1, &t.handle)
		return err
	}
	texture.InternalData = t
	return nil
}

func (b *Backend) TextureDestroy(texture *metadata.Texture) {
	t, ok := texture.InternalData.(*glTexture)
	if !ok || t.handle == 0 {
		return
	}
	gl.DeleteTextures(1, &t.handle)
	t.handle = 0
}

func textureHandle(texture *metadata.Texture) uint32 {
	if texture == nil {
		return 0
	}
	if t, ok := texture.InternalData.(*glTexture); ok {
		return t.handle
	}
	return 0
}
