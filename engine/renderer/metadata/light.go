package metadata

import "github.com/go-gl/mathgl/mgl32"

type LightType int

const (
	LightTypeAmbient LightType = iota
	LightTypeDirectional
	LightTypeHemisphere
	LightTypeSpot
)

func (t LightType) String() string {
	switch t {
	case LightTypeAmbient:
		return "ambient"
	case LightTypeDirectional:
		return "directional"
	case LightTypeHemisphere:
		return "hemisphere"
	case LightTypeSpot:
		return "spot"
	}
	return "unknown"
}

/**
 * @brief A light attached to the scene. Directional and spot lights
 * shine from Position towards Target. Hemisphere lights blend Color
 * (sky, from above) and GroundColor (from below).
 */
type Light struct {
	Name        string
	Type        LightType
	Color       Color
	GroundColor Color
	Intensity   float32
	Position    mgl32.Vec3
	Target      mgl32.Vec3
	/** @brief Cone half-angle in radians. Spot lights only. */
	Angle float32
}

// Direction is the unit vector the light travels along.
func (l Light) Direction() mgl32.Vec3 {
	d := l.Target.Sub(l.Position)
	if d.Len() == 0 {
		return mgl32.Vec3{0, 0, -1}
	}
	return d.Normalize()
}
