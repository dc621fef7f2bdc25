package metadata

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/spaghettifunk/cardforge/engine/core"
)

// Color is an sRGB colour with straight alpha, each channel in [0,1].
type Color struct {
	R, G, B, A float32
}

var (
	ColorWhite = Color{1, 1, 1, 1}
	ColorBlack = Color{0, 0, 0, 1}
)

// ColorFromHex parses "#rrggbb", "rrggbb" or the short "#rgb" form.
func ColorFromHex(s string) (Color, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return Color{}, fmt.Errorf("colour %q: %w", s, core.ErrInvalidParameter)
	}
	return Color{R: float32(c.R), G: float32(c.G), B: float32(c.B), A: 1}, nil
}

// MustColorFromHex panics on malformed input. Only for literals.
func MustColorFromHex(s string) Color {
	c, err := ColorFromHex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// ColorFromRGB24 unpacks a 0xRRGGBB integer.
func ColorFromRGB24(rgb uint32) Color {
	return Color{
		R: float32((rgb>>16)&0xff) / 255,
		G: float32((rgb>>8)&0xff) / 255,
		B: float32(rgb&0xff) / 255,
		A: 1,
	}
}

func (c Color) Hex() string {
	return colorful.Color{R: float64(c.R), G: float64(c.G), B: float64(c.B)}.Clamped().Hex()
}

// Linear converts the RGB channels to linear light for shading.
func (c Color) Linear() mgl32.Vec3 {
	r, g, b := colorful.Color{R: float64(c.R), G: float64(c.G), B: float64(c.B)}.LinearRgb()
	return mgl32.Vec3{float32(r), float32(g), float32(b)}
}

func (c Color) Vec4() mgl32.Vec4 {
	return mgl32.Vec4{c.R, c.G, c.B, c.A}
}

// Valid reports whether every channel lies in [0,1].
func (c Color) Valid() bool {
	for _, v := range [4]float32{c.R, c.G, c.B, c.A} {
		if !(v >= 0 && v <= 1) {
			return false
		}
	}
	return true
}
