package systems

import (
	"fmt"
	gomath "math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/spaghettifunk/cardforge/engine/core"
	"github.com/spaghettifunk/cardforge/engine/math"
	"github.com/spaghettifunk/cardforge/engine/renderer"
	"github.com/spaghettifunk/cardforge/engine/renderer/metadata"
)

// Outline points closer than this are merged.
const outlineWeldDistance float32 = 1e-5

type GeometrySystem struct {
	renderer   *renderer.Renderer
	nextID     uint32
	geometries map[*metadata.Geometry]struct{}
}

func NewGeometrySystem(r *renderer.Renderer) *GeometrySystem {
	return &GeometrySystem{
		renderer:   r,
		geometries: make(map[*metadata.Geometry]struct{}),
	}
}

/**
 * @brief Uploads the configuration to the GPU.
 * @param config The geometry configuration.
 * @return The uploaded geometry, owned by the system until released.
 */
func (gs *GeometrySystem) AcquireFromConfig(config *metadata.GeometryConfig) (*metadata.Geometry, error) {
	geometry := &metadata.Geometry{
		ID:           gs.nextID,
		Name:         config.Name,
		MaterialName: config.MaterialName,
		Center:       config.Center,
		Extents:      config.Extents,
	}
	if err := gs.renderer.CreateGeometry(geometry, config.Vertices, config.Indices); err != nil {
		core.LogError("failed to create geometry", "name", config.Name, "err", err)
		return nil, err
	}
	gs.nextID++
	gs.geometries[geometry] = struct{}{}
	return geometry, nil
}

func (gs *GeometrySystem) Release(geometry *metadata.Geometry) {
	if geometry == nil {
		return
	}
	gs.renderer.DestroyGeometry(geometry)
	delete(gs.geometries, geometry)
	geometry.ID = metadata.InvalidID
}

func (gs *GeometrySystem) Shutdown() error {
	for g := range gs.geometries {
		gs.Release(g)
	}
	return nil
}

func validateCardSpec(spec metadata.CardSpec) error {
	switch {
	case !(spec.Width > 0) || !(spec.Height > 0) || !(spec.Thickness > 0):
		return fmt.Errorf("size %vx%vx%v must be positive: %w", spec.Width, spec.Height, spec.Thickness, core.ErrInvalidDimensions)
	case !(spec.CornerRadius > 0):
		return fmt.Errorf("corner radius %v must be positive: %w", spec.CornerRadius, core.ErrInvalidDimensions)
	case spec.CornerRadius > 0.5*float32(gomath.Min(float64(spec.Width), float64(spec.Height))):
		return fmt.Errorf("corner radius %v exceeds half the shorter side: %w", spec.CornerRadius, core.ErrInvalidDimensions)
	case spec.BevelSize < 0 || spec.BevelThickness < 0 || math.IsNaN(spec.BevelSize) || math.IsNaN(spec.BevelThickness):
		return fmt.Errorf("bevel %v/%v must not be negative: %w", spec.BevelSize, spec.BevelThickness, core.ErrInvalidDimensions)
	case spec.BevelSegments < 1 || spec.CurveSegments < 1:
		return fmt.Errorf("segment counts must be at least one: %w", core.ErrInvalidDimensions)
	}
	return nil
}

// cardOutline returns the rounded rectangle centred on the origin as a
// counter-clockwise loop without a closing duplicate. Each corner is a
// quadratic Bézier whose control point is the sharp rectangle corner.
func cardOutline(width, height, radius float32, curveSegments uint32) []mgl32.Vec2 {
	hw, hh, r := width*0.5, height*0.5, radius
	corners := [4][3]mgl32.Vec2{
		{{hw - r, -hh}, {hw, -hh}, {hw, -hh + r}},
		{{hw, hh - r}, {hw, hh}, {hw - r, hh}},
		{{-hw + r, hh}, {-hw, hh}, {-hw, hh - r}},
		{{-hw, -hh + r}, {-hw, -hh}, {-hw + r, -hh}},
	}

	points := make([]mgl32.Vec2, 0, 4*(curveSegments+1))
	push := func(p mgl32.Vec2) {
		if n := len(points); n > 0 && points[n-1].Sub(p).Len() < outlineWeldDistance {
			return
		}
		points = append(points, p)
	}
	for _, c := range corners {
		for i := uint32(0); i <= curveSegments; i++ {
			push(mgl32.QuadraticBezierCurve2D(float32(i)/float32(curveSegments), c[0], c[1], c[2]))
		}
	}
	for len(points) > 1 && points[len(points)-1].Sub(points[0]).Len() < outlineWeldDistance {
		points = points[:len(points)-1]
	}
	return points
}

// outlineNormals returns, per outline point, the smoothed outward normal and
// the miter vector that moves the point so both adjacent edges shift by one
// unit.
func outlineNormals(points []mgl32.Vec2) (normals, miters []mgl32.Vec2) {
	n := len(points)
	edge := make([]mgl32.Vec2, n)
	for i := range points {
		d := points[(i+1)%n].Sub(points[i]).Normalize()
		edge[i] = mgl32.Vec2{d.Y(), -d.X()}
	}
	normals = make([]mgl32.Vec2, n)
	miters = make([]mgl32.Vec2, n)
	for i := range points {
		prev := edge[(i+n-1)%n]
		avg := prev.Add(edge[i]).Normalize()
		normals[i] = avg
		miters[i] = avg.Mul(1 / avg.Dot(prev))
	}
	return normals, miters
}

type bevelRing struct {
	offset float32
	z      float32
	// Normal in the (outward, z) plane.
	radial, axial float32
}

// cardRings lists the extrusion rings from back to front: the back bevel,
// the straight wall and the front bevel, mirroring each other.
func cardRings(spec metadata.CardSpec) []bevelRing {
	bs, bt := spec.BevelSize, spec.BevelThickness
	if bs == 0 && bt == 0 {
		return []bevelRing{{0, 0, 1, 0}, {0, spec.Thickness, 1, 0}}
	}

	segments := spec.BevelSegments
	bevel := func(b uint32, front bool) bevelRing {
		theta := float64(b) / float64(segments) * gomath.Pi / 2
		sin, cos := float32(gomath.Sin(theta)), float32(gomath.Cos(theta))
		ring := bevelRing{offset: bs * sin, radial: bt * sin, axial: -bs * cos, z: -bt * cos}
		if front {
			ring.z = spec.Thickness + bt*cos
			ring.axial = -ring.axial
		}
		l := float32(gomath.Hypot(float64(ring.radial), float64(ring.axial)))
		if l < 1e-6 {
			ring.radial, ring.axial = 1, 0
		} else {
			ring.radial, ring.axial = ring.radial/l, ring.axial/l
		}
		return ring
	}

	rings := make([]bevelRing, 0, 2*segments+2)
	for b := uint32(0); b <= segments; b++ {
		rings = append(rings, bevel(b, false))
	}
	rings = append(rings, bevelRing{offset: bs, z: spec.Thickness, radial: 1})
	for b := int(segments) - 1; b >= 0; b-- {
		rings = append(rings, bevel(uint32(b), true))
	}
	return rings
}

/**
 * @brief Builds the card solid: a rounded rectangle extruded along Z with
 * rounded bevels on both faces. The solid is closed and centred on the
 * origin; the front face looks down +Z.
 *
 * @param spec The physical dimensions of the card.
 * @param name The name of the generated geometry.
 * @param materialName The name of the material to be used.
 * @return A geometry configuration which can then be fed into AcquireFromConfig.
 */
func GenerateCardConfig(spec metadata.CardSpec, name, materialName string) (*metadata.GeometryConfig, error) {
	if err := validateCardSpec(spec); err != nil {
		return nil, err
	}

	outline := cardOutline(spec.Width, spec.Height, spec.CornerRadius, spec.CurveSegments)
	normals, miters := outlineNormals(outline)
	rings := cardRings(spec)
	n := len(outline)
	zShift := -spec.Thickness * 0.5
	white := mgl32.Vec4{1, 1, 1, 1}

	// U runs along the perimeter; the first column is repeated at u = 1.
	perimeter := make([]float32, n+1)
	for i := 1; i <= n; i++ {
		perimeter[i] = perimeter[i-1] + outline[i%n].Sub(outline[i-1]).Len()
	}

	ringPosition := func(r bevelRing, j int) mgl32.Vec3 {
		p := outline[j].Add(miters[j].Mul(r.offset))
		return mgl32.Vec3{p.X(), p.Y(), r.z + zShift}
	}

	columns := n + 1
	vertices := make([]math.Vertex3D, 0, len(rings)*columns+2*(n+1))
	indices := make([]uint32, 0, (len(rings)-1)*n*6+2*n*3)

	for ri, r := range rings {
		for c := 0; c < columns; c++ {
			j := c % n
			vertices = append(vertices, math.Vertex3D{
				Position: ringPosition(r, j),
				Normal:   mgl32.Vec3{normals[j].X() * r.radial, normals[j].Y() * r.radial, r.axial},
				Texcoord: mgl32.Vec2{perimeter[c] / perimeter[n], float32(ri) / float32(len(rings)-1)},
				Colour:   white,
			})
		}
	}
	for ri := 0; ri < len(rings)-1; ri++ {
		a := uint32(ri * columns)
		b := a + uint32(columns)
		for c := uint32(0); c < uint32(n); c++ {
			indices = append(indices,
				a+c, a+c+1, b+c+1,
				a+c, b+c+1, b+c,
			)
		}
	}

	addCap := func(r bevelRing, front bool) {
		z := r.z + zShift
		normal := mgl32.Vec3{0, 0, -1}
		if front {
			normal = mgl32.Vec3{0, 0, 1}
		}
		uv := func(p mgl32.Vec3) mgl32.Vec2 {
			return mgl32.Vec2{(p.X() + spec.Width*0.5) / spec.Width, (p.Y() + spec.Height*0.5) / spec.Height}
		}
		// The outline is convex so a fan from its centre covers it.
		var centre mgl32.Vec3
		for j := 0; j < n; j++ {
			centre = centre.Add(ringPosition(r, j))
		}
		centre = centre.Mul(1 / float32(n))
		centre[2] = z

		base := uint32(len(vertices))
		vertices = append(vertices, math.Vertex3D{Position: centre, Normal: normal, Texcoord: uv(centre), Colour: white})
		for j := 0; j < n; j++ {
			p := ringPosition(r, j)
			vertices = append(vertices, math.Vertex3D{Position: p, Normal: normal, Texcoord: uv(p), Colour: white})
		}
		for j := uint32(0); j < uint32(n); j++ {
			cur := base + 1 + j
			next := base + 1 + (j+1)%uint32(n)
			if front {
				indices = append(indices, base, cur, next)
			} else {
				indices = append(indices, base, next, cur)
			}
		}
	}
	addCap(rings[0], false)
	addCap(rings[len(rings)-1], true)

	math.GeometryGenerateTangents(vertices, indices)
	extents := math.GeometryComputeExtents(vertices)

	if len(name) == 0 {
		name = metadata.CardGeometryName
	}
	if len(materialName) == 0 {
		materialName = metadata.CardMaterialName
	}
	return &metadata.GeometryConfig{
		Vertices:     vertices,
		Indices:      indices,
		Center:       extents.Center(),
		Extents:      extents,
		Name:         name,
		MaterialName: materialName,
	}, nil
}
