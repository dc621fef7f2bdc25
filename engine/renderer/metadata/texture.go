package metadata

import (
	"fmt"
	"strings"

	"github.com/spaghettifunk/cardforge/engine/core"
)

/** @brief The material slot a texture is bound to. */
type TextureChannel int

const (
	TextureChannelColor TextureChannel = iota
	TextureChannelNormal
	TextureChannelRoughness
	TextureChannelMetalness
)

// TextureChannels lists every channel in binding order.
var TextureChannels = []TextureChannel{
	TextureChannelColor,
	TextureChannelNormal,
	TextureChannelRoughness,
	TextureChannelMetalness,
}

func (c TextureChannel) String() string {
	switch c {
	case TextureChannelColor:
		return "color"
	case TextureChannelNormal:
		return "normal"
	case TextureChannelRoughness:
		return "roughness"
	case TextureChannelMetalness:
		return "metalness"
	}
	return fmt.Sprintf("TextureChannel(%d)", int(c))
}

func (c TextureChannel) Valid() bool {
	return c >= TextureChannelColor && c <= TextureChannelMetalness
}

func ParseTextureChannel(s string) (TextureChannel, error) {
	for _, c := range TextureChannels {
		if strings.EqualFold(strings.TrimSpace(s), c.String()) {
			return c, nil
		}
	}
	return 0, fmt.Errorf("texture channel %q: %w", s, core.ErrUnknownEnum)
}

// Also used as result_data from job.
type TextureLoadParams struct {
	RequestID    string
	Channel      TextureChannel
	ResourceName string
	// Raw encoded bytes. When empty the resource is read from ResourceName.
	Data  []byte
	Token uint64
	// Filled in by the job.
	Image *ImageResourceData
	Err   error
}

type TextureFlag int

const (
	/** @brief Indicates if the texture has transparency. */
	TextureFlagHasTransparency TextureFlag = 0x1
	/** @brief Pixels are sRGB encoded colour and must be linearised when sampled. */
	TextureFlagSRGB TextureFlag = 0x2
)

/** @brief Holds bit flags for textures.. */
type TextureFlagBits uint8

/** @brief Represents supported texture filtering modes. */
type TextureFilter int

const (
	/** @brief Nearest-neighbor filtering. */
	TextureFilterModeNearest TextureFilter = 0x0
	/** @brief Linear (i.e. bilinear) filtering.*/
	TextureFilterModeLinear TextureFilter = 0x1
)

type TextureRepeat int

const (
	TextureRepeatRepeat         TextureRepeat = 0x1
	TextureRepeatMirroredRepeat TextureRepeat = 0x2
	TextureRepeatClampToEdge    TextureRepeat = 0x3
)

/**
 * @brief Represents a texture.
 */
type Texture struct {
	/** @brief The unique texture identifier. */
	ID uint32
	/** @brief The texture Width. */
	Width uint32
	/** @brief The texture Height. */
	Height uint32
	/** @brief The number of channels in the texture. */
	ChannelCount uint8
	/** @brief Holds various Flags for this texture. */
	Flags TextureFlagBits
	/** @brief The texture Generation. Incremented every time the data is uploaded. */
	Generation uint32
	/** @brief The texture Name. */
	Name string
	/** @brief Filtering and wrapping applied when sampling. */
	FilterMinify  TextureFilter
	FilterMagnify TextureFilter
	RepeatU       TextureRepeat
	RepeatV       TextureRepeat
	/** @brief RGBA8 pixels kept so the texture can be re-created after a context loss. */
	Pixels []uint8
	/** @brief Backend specific handle. nil when not resident on the GPU. */
	InternalData interface{}
}

func (t *Texture) HasTransparency() bool {
	return t.Flags&TextureFlagBits(TextureFlagHasTransparency) != 0
}

func (t *Texture) IsSRGB() bool {
	return t.Flags&TextureFlagBits(TextureFlagSRGB) != 0
}
