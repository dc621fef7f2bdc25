package systems

import (
	gomath "math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/cardforge/engine/core"
	"github.com/spaghettifunk/cardforge/engine/math"
	"github.com/spaghettifunk/cardforge/engine/renderer"
	"github.com/spaghettifunk/cardforge/engine/renderer/metadata"
	"github.com/spaghettifunk/cardforge/engine/renderer/rendertest"
)

type edgeKey [2][3]int64

func quantize(p mgl32.Vec3) [3]int64 {
	return [3]int64{
		int64(gomath.Round(float64(p.X()) * 1e4)),
		int64(gomath.Round(float64(p.Y()) * 1e4)),
		int64(gomath.Round(float64(p.Z()) * 1e4)),
	}
}

func makeEdge(a, b mgl32.Vec3) edgeKey {
	qa, qb := quantize(a), quantize(b)
	for i := 0; i < 3; i++ {
		if qa[i] != qb[i] {
			if qa[i] > qb[i] {
				qa, qb = qb, qa
			}
			break
		}
	}
	return edgeKey{qa, qb}
}

// assertClosedSolid checks that every edge is shared by exactly two
// triangles that traverse it in opposite directions.
func assertClosedSolid(t *testing.T, cfg *metadata.GeometryConfig) {
	t.Helper()
	require.Zero(t, len(cfg.Indices)%3)

	counts := map[edgeKey]int{}
	directed := map[[2][3]int64]int{}
	for i := 0; i < len(cfg.Indices); i += 3 {
		tri := [3]mgl32.Vec3{
			cfg.Vertices[cfg.Indices[i]].Position,
			cfg.Vertices[cfg.Indices[i+1]].Position,
			cfg.Vertices[cfg.Indices[i+2]].Position,
		}
		require.Greater(t, math.TriangleArea(tri[0], tri[1], tri[2]), float32(1e-9), "degenerate triangle %d", i/3)
		for k := 0; k < 3; k++ {
			a, b := tri[k], tri[(k+1)%3]
			counts[makeEdge(a, b)]++
			directed[[2][3]int64{quantize(a), quantize(b)}]++
		}
	}
	for e, c := range counts {
		if !assert.Equal(t, 2, c, "edge %v", e) {
			return
		}
	}
	for e, c := range directed {
		if !assert.Equal(t, 1, c, "directed edge %v appears twice: inconsistent winding", e) {
			return
		}
	}
}

func TestGenerateCardConfig_ClosedForSeveralRadii(t *testing.T) {
	for _, radius := range []float32{0.5, 3.48, 12, 53.98 / 2} {
		spec := metadata.DefaultCardSpec()
		spec.CornerRadius = radius
		cfg, err := GenerateCardConfig(spec, "", "")
		require.NoError(t, err, "radius %v", radius)
		assertClosedSolid(t, cfg)
	}
}

func TestGenerateCardConfig_NoBevel(t *testing.T) {
	spec := metadata.DefaultCardSpec()
	spec.BevelSize = 0
	spec.BevelThickness = 0
	cfg, err := GenerateCardConfig(spec, "flat", "card")
	require.NoError(t, err)
	assertClosedSolid(t, cfg)
	assert.InDelta(t, spec.Thickness, cfg.Extents.Size().Z(), 1e-5)
}

func TestGenerateCardConfig_Shape(t *testing.T) {
	spec := metadata.DefaultCardSpec()
	cfg, err := GenerateCardConfig(spec, "", "")
	require.NoError(t, err)

	assert.Equal(t, metadata.CardGeometryName, cfg.Name)
	assert.Equal(t, metadata.CardMaterialName, cfg.MaterialName)

	size := cfg.Extents.Size()
	assert.InDelta(t, spec.Width+2*spec.BevelSize, size.X(), 1e-3)
	assert.InDelta(t, spec.Height+2*spec.BevelSize, size.Y(), 1e-3)
	assert.InDelta(t, spec.Thickness+2*spec.BevelThickness, size.Z(), 1e-4)
	assert.True(t, cfg.Center.ApproxEqualThreshold(mgl32.Vec3{}, 1e-4))

	var front, back int
	for _, v := range cfg.Vertices {
		assert.InDelta(t, 1, v.Normal.Len(), 1e-4)
		assert.True(t, v.Texcoord.X() >= -1e-5 && v.Texcoord.X() <= 1+1e-5)
		assert.True(t, v.Texcoord.Y() >= -1e-5 && v.Texcoord.Y() <= 1+1e-5)
		if v.Normal.Z() > 0.999 {
			front++
		}
		if v.Normal.Z() < -0.999 {
			back++
		}
	}
	assert.Positive(t, front)
	assert.Equal(t, front, back)
}

func TestCardOutline_Convex(t *testing.T) {
	outline := cardOutline(85.6, 53.98, 3.48, 12)
	n := len(outline)
	for i := range outline {
		a, b, c := outline[i], outline[(i+1)%n], outline[(i+2)%n]
		ab, bc := b.Sub(a), c.Sub(b)
		cross := ab.X()*bc.Y() - ab.Y()*bc.X()
		assert.GreaterOrEqual(t, cross, float32(-1e-6), "reflex vertex at %d", i)
	}

	// A radius of half the height leaves no straight side edges.
	pill := cardOutline(10, 4, 2, 4)
	assert.Len(t, pill, 4*4+2)
}

func TestGenerateCardConfig_Invalid(t *testing.T) {
	cases := map[string]func(s *metadata.CardSpec){
		"zero width":        func(s *metadata.CardSpec) { s.Width = 0 },
		"negative height":   func(s *metadata.CardSpec) { s.Height = -1 },
		"zero thickness":    func(s *metadata.CardSpec) { s.Thickness = 0 },
		"zero radius":       func(s *metadata.CardSpec) { s.CornerRadius = 0 },
		"radius too large":  func(s *metadata.CardSpec) { s.CornerRadius = 27 },
		"negative bevel":    func(s *metadata.CardSpec) { s.BevelSize = -0.1 },
		"no bevel segments": func(s *metadata.CardSpec) { s.BevelSegments = 0 },
		"no curve segments": func(s *metadata.CardSpec) { s.CurveSegments = 0 },
		"nan width":         func(s *metadata.CardSpec) { s.Width = float32(gomath.NaN()) },
	}
	for name, mutate := range cases {
		spec := metadata.DefaultCardSpec()
		mutate(&spec)
		_, err := GenerateCardConfig(spec, "", "")
		assert.ErrorIs(t, err, core.ErrInvalidDimensions, name)
	}
}

func TestGeometrySystem_AcquireRelease(t *testing.T) {
	be := rendertest.NewBackend()
	r := renderer.New(be)
	require.NoError(t, r.Initialize("test", 100, 100))

	gs := NewGeometrySystem(r)
	cfg, err := GenerateCardConfig(metadata.DefaultCardSpec(), "", "")
	require.NoError(t, err)

	g, err := gs.AcquireFromConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, uint32(len(cfg.Indices)), g.IndexCount)
	_, live, _ := be.Live()
	assert.Equal(t, 1, live)

	require.NoError(t, gs.Shutdown())
	_, live, _ = be.Live()
	assert.Zero(t, live)
	assert.Nil(t, g.InternalData)
}
