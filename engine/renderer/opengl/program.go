package opengl

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/spaghettifunk/cardforge/engine/renderer/metadata"
)

// cardProgram is the compiled shader for one material variant together with
// the uniform locations the draw path writes every frame.
type cardProgram struct {
	handle  uint32
	defines []string

	projection, view, model int32
	viewPosition            int32

	ambient                        int32
	hemiEnabled, hemiSky, hemiGrnd int32

	dirCount, dirDir, dirColour                  int32
	spotCount, spotPos, spotDir, spotCol, spotCos int32

	baseColour, metalness, roughness, opacity int32
	clearcoat, clearcoatRoughness             int32

	samplers [4]int32
}

var channelDefines = map[metadata.TextureChannel]string{
	metadata.TextureChannelColor:     "USE_COLOR_MAP",
	metadata.TextureChannelNormal:    "USE_NORMAL_MAP",
	metadata.TextureChannelRoughness: "USE_ROUGHNESS_MAP",
	metadata.TextureChannelMetalness: "USE_METALNESS_MAP",
}

var channelSamplers = map[metadata.TextureChannel]string{
	metadata.TextureChannelColor:     "uColorMap",
	metadata.TextureChannelNormal:    "uNormalMap",
	metadata.TextureChannelRoughness: "uRoughnessMap",
	metadata.TextureChannelMetalness: "uMetalnessMap",
}

// materialDefines returns the preprocessor switches for the maps bound in d,
// in channel order.
func materialDefines(d metadata.MaterialDescription) []string {
	var defines []string
	for _, c := range metadata.TextureChannels {
		if d.Map(c) != nil {
			defines = append(defines, channelDefines[c])
		}
	}
	return defines
}

func fragmentSource(defines []string) string {
	var sb strings.Builder
	sb.WriteString(glslVersion)
	for _, d := range defines {
		sb.WriteString("#define ")
		sb.WriteString(d)
		sb.WriteByte('\n')
	}
	sb.WriteString(cardFragmentShader)
	return sb.String()
}

func newCardProgram(d metadata.MaterialDescription) (*cardProgram, error) {
	defines := materialDefines(d)
	handle, err := newProgram(cardVertexShader, fragmentSource(defines))
	if err != nil {
		return nil, err
	}
	p := &cardProgram{handle: handle, defines: defines}
	loc := func(name string) int32 {
		return gl.GetUniformLocation(handle, gl.Str(name+"\x00"))
	}

	p.projection = loc("uProjection")
	p.view = loc("uView")
	p.model = loc("uModel")
	p.viewPosition = loc("uViewPosition")

	p.ambient = loc("uAmbient")
	p.hemiEnabled = loc("uHemiEnabled")
	p.hemiSky = loc("uHemiSky")
	p.hemiGrnd = loc("uHemiGround")

	p.dirCount = loc("uDirLightCount")
	p.dirDir = loc("uDirLightDir")
	p.dirColour = loc("uDirLightColour")
	p.spotCount = loc("uSpotLightCount")
	p.spotPos = loc("uSpotLightPos")
	p.spotDir = loc("uSpotLightDir")
	p.spotCol = loc("uSpotLightColour")
	p.spotCos = loc("uSpotLightCos")

	p.baseColour = loc("uBaseColour")
	p.metalness = loc("uMetalness")
	p.roughness = loc("uRoughness")
	p.opacity = loc("uOpacity")
	p.clearcoat = loc("uClearcoat")
	p.clearcoatRoughness = loc("uClearcoatRoughness")

	// Unbound samplers are compiled out and report -1.
	for _, c := range metadata.TextureChannels {
		p.samplers[c] = loc(channelSamplers[c])
	}
	return p, nil
}

func (p *cardProgram) destroy() {
	if p.handle != 0 {
		gl.DeleteProgram(p.handle)
		p.handle = 0
	}
}

func newProgram(vertSrc, fragSrc string) (uint32, error) {
	vert, err := compileShader(vertSrc, gl.VERTEX_SHADER)
	if err != nil {
		return 0, fmt.Errorf("vertex: %w", err)
	}
	frag, err := compileShader(fragSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vert)
		return 0, fmt.Errorf("fragment: %w", err)
	}

	prog := gl.CreateProgram()
	gl.AttachShader(prog, vert)
	gl.AttachShader(prog, frag)
	gl.LinkProgram(prog)
	gl.DeleteShader(vert)
	gl.DeleteShader(frag)

	var status int32
	gl.GetProgramiv(prog, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(prog, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetProgramInfoLog(prog, logLen, nil, gl.Str(log))
		gl.DeleteProgram(prog)
		return 0, fmt.Errorf("link failed: %v", log)
	}
	return prog, nil
}

func compileShader(src string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csrc, free := gl.Strs(src + "\x00")
	gl.ShaderSource(shader, 1, csrc, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		log := strings.Repeat("\x00", int(logLen+1))
		gl.GetShaderInfoLog(shader, logLen, nil, gl.Str(log))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("compile failed: %v", log)
	}
	return shader, nil
}
