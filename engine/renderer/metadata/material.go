package metadata

/** @brief The name of the card material. */
const CardMaterialName string = "card"

/**
 * @brief The full set of parameters for the card's physically based
 * material. Values of this type are derived from the configuration and
 * compare equal when they would render identically.
 */
type MaterialDescription struct {
	/** @brief Base (albedo) colour. Tints the colour map when one is bound. */
	Color Color
	/** @brief Used only when MetalnessMap is nil. */
	Metalness float32
	/** @brief Used only when RoughnessMap is nil. */
	Roughness float32
	/** @brief Alpha applied to the whole surface. */
	Opacity float32
	/** @brief Enables alpha blending. */
	Transparent bool
	/** @brief Strength of the clear lacquer layer on top of the base. */
	Clearcoat float32
	/** @brief Roughness of the clear lacquer layer. */
	ClearcoatRoughness float32
	/** @brief Both faces are rendered. */
	DoubleSided bool

	ColorMap     *Texture
	NormalMap    *Texture
	RoughnessMap *Texture
	MetalnessMap *Texture
}

// Map returns the texture bound for channel, or nil.
func (d MaterialDescription) Map(channel TextureChannel) *Texture {
	switch channel {
	case TextureChannelColor:
		return d.ColorMap
	case TextureChannelNormal:
		return d.NormalMap
	case TextureChannelRoughness:
		return d.RoughnessMap
	case TextureChannelMetalness:
		return d.MetalnessMap
	}
	return nil
}

/**
 * @brief A material, which represents various properties
 * of a surface in the world such as texture, colour,
 * bumpiness, shininess and more.
 */
type Material struct {
	/** @brief The material id. */
	ID uint32
	/** @brief The material generation. Incremented every time the material is changed. */
	Generation uint32
	/** @brief The material name. */
	Name string
	/** @brief The parameters this material was built from. */
	Description MaterialDescription
	/** @brief Synced to the renderer's current frame number when the material has been applied that frame. */
	RenderFrameNumber uint64
	/** @brief Backend specific data, typically the compiled program. */
	InternalData interface{}
}
