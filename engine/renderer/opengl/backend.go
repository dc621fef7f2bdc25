// Package opengl implements the renderer backend on an OpenGL 4.1 core
// context. Every call must happen on the thread that owns the context.
package opengl

import (
	"fmt"
	gomath "math"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/spaghettifunk/cardforge/engine/core"
	"github.com/spaghettifunk/cardforge/engine/renderer/metadata"
)

// GL_CONTEXT_LOST is core in 4.5 only; drivers report it through
// GetError on older contexts that support robustness.
const glContextLost = 0x0507

type Backend struct {
	framebufferWidth  uint32
	framebufferHeight uint32

	packet *metadata.RenderPacket
	lights lightUniforms

	initialized bool
}

func New() *Backend {
	return &Backend{}
}

func (b *Backend) Initialize(appName string, width, height uint32) error {
	if err := gl.Init(); err != nil {
		return fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	core.LogInfo("OpenGL renderer initialized", "app", appName, "version", gl.GoStr(gl.GetString(gl.VERSION)), "renderer", gl.GoStr(gl.GetString(gl.RENDERER)))

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LEQUAL)
	// The fragment shader applies gamma itself.
	gl.Disable(gl.FRAMEBUFFER_SRGB)

	b.framebufferWidth = width
	b.framebufferHeight = height
	gl.Viewport(0, 0, int32(width), int32(height))
	b.initialized = true
	return b.checkError()
}

func (b *Backend) Shutdown() error {
	// Objects still alive are released along with the context.
	b.packet = nil
	b.initialized = false
	return nil
}

func (b *Backend) Resized(width, height uint32) error {
	b.framebufferWidth = width
	b.framebufferHeight = height
	gl.Viewport(0, 0, int32(width), int32(height))
	return nil
}

func (b *Backend) BeginFrame(packet *metadata.RenderPacket) error {
	if err := b.checkError(); err != nil {
		return err
	}
	b.packet = packet
	b.lights = packLights(packet.Lights)

	c := packet.ClearColour.Vec4()
	gl.ClearColor(c[0], c[1], c[2], c[3])
	gl.DepthMask(true)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
	return nil
}

func (b *Backend) EndFrame(deltaTime float64) error {
	b.packet = nil
	return b.checkError()
}

func (b *Backend) DrawGeometry(data *metadata.GeometryRenderData) error {
	if b.packet == nil {
		return fmt.Errorf("draw outside of a frame: %w", core.ErrNotInitialized)
	}
	g, ok := data.Geometry.InternalData.(*glGeometry)
	if !ok || g.vao == 0 {
		return fmt.Errorf("geometry `%s` is not uploaded: %w", data.Geometry.Name, core.ErrInvalidParameter)
	}
	p, ok := data.Material.InternalData.(*cardProgram)
	if !ok || p.handle == 0 {
		return fmt.Errorf("material `%s` is not compiled: %w", data.Material.Name, core.ErrInvalidParameter)
	}
	desc := data.Material.Description

	gl.UseProgram(p.handle)
	gl.UniformMatrix4fv(p.projection, 1, false, &b.packet.Projection[0])
	gl.UniformMatrix4fv(p.view, 1, false, &b.packet.View[0])
	gl.UniformMatrix4fv(p.model, 1, false, &data.Model[0])
	gl.Uniform3fv(p.viewPosition, 1, &b.packet.ViewPosition[0])
	b.lights.apply(p)

	base := desc.Color.Linear()
	gl.Uniform3fv(p.baseColour, 1, &base[0])
	gl.Uniform1f(p.metalness, desc.Metalness)
	gl.Uniform1f(p.roughness, desc.Roughness)
	gl.Uniform1f(p.opacity, desc.Opacity)
	gl.Uniform1f(p.clearcoat, desc.Clearcoat)
	gl.Uniform1f(p.clearcoatRoughness, desc.ClearcoatRoughness)

	for _, c := range metadata.TextureChannels {
		if p.samplers[c] < 0 {
			continue
		}
		gl.ActiveTexture(gl.TEXTURE0 + uint32(c))
		gl.BindTexture(gl.TEXTURE_2D, textureHandle(desc.Map(c)))
		gl.Uniform1i(p.samplers[c], int32(c))
	}

	gl.BindVertexArray(g.vao)
	if desc.Transparent {
		// Back faces first so the front blends over them.
		gl.Enable(gl.BLEND)
		gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
		gl.DepthMask(false)
		setCullMode(metadata.FaceCullModeFront)
		gl.DrawElements(gl.TRIANGLES, g.indexCount, gl.UNSIGNED_INT, nil)
		if desc.DoubleSided {
			setCullMode(metadata.FaceCullModeBack)
			gl.DrawElements(gl.TRIANGLES, g.indexCount, gl.UNSIGNED_INT, nil)
		}
		gl.DepthMask(true)
		gl.Disable(gl.BLEND)
	} else {
		gl.Disable(gl.BLEND)
		if desc.DoubleSided {
			setCullMode(metadata.FaceCullModeNone)
		} else {
			setCullMode(metadata.FaceCullModeBack)
		}
		gl.DrawElements(gl.TRIANGLES, g.indexCount, gl.UNSIGNED_INT, nil)
	}
	gl.BindVertexArray(0)
	return nil
}

func setCullMode(mode metadata.FaceCullMode) {
	switch mode {
	case metadata.FaceCullModeNone:
		gl.Disable(gl.CULL_FACE)
	case metadata.FaceCullModeFront:
		gl.Enable(gl.CULL_FACE)
		gl.CullFace(gl.FRONT)
	case metadata.FaceCullModeBack:
		gl.Enable(gl.CULL_FACE)
		gl.CullFace(gl.BACK)
	}
}

func (b *Backend) MaterialCreate(material *metadata.Material) error {
	p, err := newCardProgram(material.Description)
	if err != nil {
		return err
	}
	core.LogDebug("material program compiled", "material", material.Name, "defines", p.defines)
	material.InternalData = p
	return nil
}

func (b *Backend) MaterialDestroy(material *metadata.Material) {
	if p, ok := material.InternalData.(*cardProgram); ok {
		p.destroy()
	}
}

// checkError drains the GL error queue. A lost context wins over any other
// error reported in the same batch.
func (b *Backend) checkError() error {
	var first uint32
	for i := 0; i < 16; i++ {
		code := gl.GetError()
		if code == gl.NO_ERROR {
			break
		}
		if code == glContextLost {
			return core.ErrContextLost
		}
		if first == 0 {
			first = code
		}
	}
	if first != 0 {
		return fmt.Errorf("OpenGL error 0x%04x", first)
	}
	return nil
}

type lightUniforms struct {
	ambient     mgl32.Vec3
	hemiEnabled int32
	hemiSky     mgl32.Vec3
	hemiGround  mgl32.Vec3

	dirCount  int32
	dirDir    [maxDirectionalLights]mgl32.Vec3
	dirColour [maxDirectionalLights]mgl32.Vec3

	spotCount  int32
	spotPos    [maxSpotLights]mgl32.Vec3
	spotDir    [maxSpotLights]mgl32.Vec3
	spotColour [maxSpotLights]mgl32.Vec3
	spotCos    [maxSpotLights]float32
}

// packLights folds the rig into the fixed uniform layout. Lights past the
// per-type limit are dropped.
func packLights(lights []metadata.Light) lightUniforms {
	var u lightUniforms
	for _, l := range lights {
		radiance := l.Color.Linear().Mul(l.Intensity)
		switch l.Type {
		case metadata.LightTypeAmbient:
			u.ambient = u.ambient.Add(radiance)
		case metadata.LightTypeHemisphere:
			u.hemiEnabled = 1
			u.hemiSky = u.hemiSky.Add(radiance)
			u.hemiGround = u.hemiGround.Add(l.GroundColor.Linear().Mul(l.Intensity))
		case metadata.LightTypeDirectional:
			if u.dirCount == maxDirectionalLights {
				continue
			}
			u.dirDir[u.dirCount] = l.Direction().Mul(-1)
			u.dirColour[u.dirCount] = radiance
			u.dirCount++
		case metadata.LightTypeSpot:
			if u.spotCount == maxSpotLights {
				continue
			}
			u.spotPos[u.spotCount] = l.Position
			u.spotDir[u.spotCount] = l.Direction()
			u.spotColour[u.spotCount] = radiance
			u.spotCos[u.spotCount] = float32(gomath.Cos(float64(l.Angle)))
			u.spotCount++
		}
	}
	return u
}

func (u *lightUniforms) apply(p *cardProgram) {
	gl.Uniform3fv(p.ambient, 1, &u.ambient[0])
	gl.Uniform1i(p.hemiEnabled, u.hemiEnabled)
	gl.Uniform3fv(p.hemiSky, 1, &u.hemiSky[0])
	gl.Uniform3fv(p.hemiGrnd, 1, &u.hemiGround[0])

	gl.Uniform1i(p.dirCount, u.dirCount)
	gl.Uniform3fv(p.dirDir, maxDirectionalLights, &u.dirDir[0][0])
	gl.Uniform3fv(p.dirColour, maxDirectionalLights, &u.dirColour[0][0])

	gl.Uniform1i(p.spotCount, u.spotCount)
	gl.Uniform3fv(p.spotPos, maxSpotLights, &u.spotPos[0][0])
	gl.Uniform3fv(p.spotDir, maxSpotLights, &u.spotDir[0][0])
	gl.Uniform3fv(p.spotCol, maxSpotLights, &u.spotColour[0][0])
	gl.Uniform1fv(p.spotCos, maxSpotLights, &u.spotCos[0])
}
