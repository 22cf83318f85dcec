package openglhelper

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.6-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

// Program is a linked shader program with cached uniform locations
type Program struct {
	id       uint32
	uniforms map[string]int32
}

// infoLog reads a shader or program log through the matching getters
func infoLog(object uint32, getiv func(uint32, uint32, *int32), getLog func(uint32, int32, *int32, *uint8)) string {
	var length int32
	getiv(object, gl.INFO_LOG_LENGTH, &length)
	buf := strings.Repeat("\x00", int(length+1))
	getLog(object, length, nil, gl.Str(buf))
	return strings.TrimRight(buf, "\x00")
}

func compileStage(kind uint32, source string) (uint32, error) {
	stage := gl.CreateShader(kind)
	src, free := gl.Strs(source + "\x00")
	gl.ShaderSource(stage, 1, src, nil)
	free()
	gl.CompileShader(stage)

	var ok int32
	gl.GetShaderiv(stage, gl.COMPILE_STATUS, &ok)
	if ok == gl.FALSE {
		msg := infoLog(stage, gl.GetShaderiv, gl.GetShaderInfoLog)
		gl.DeleteShader(stage)
		return 0, fmt.Errorf("compile: %s", msg)
	}
	return stage, nil
}

// NewProgram compiles and links a vertex/fragment pair
func NewProgram(vertexSource, fragmentSource string) (*Program, error) {
	id := gl.CreateProgram()

	for _, s := range []struct {
		kind   uint32
		name   string
		source string
	}{
		{gl.VERTEX_SHADER, "vertex", vertexSource},
		{gl.FRAGMENT_SHADER, "fragment", fragmentSource},
	} {
		stage, err := compileStage(s.kind, s.source)
		if err != nil {
			gl.DeleteProgram(id)
			return nil, fmt.Errorf("%s shader: %w", s.name, err)
		}
		gl.AttachShader(id, stage)
		// Flagged for deletion; freed with the program
		gl.DeleteShader(stage)
	}

	gl.LinkProgram(id)
	var ok int32
	gl.GetProgramiv(id, gl.LINK_STATUS, &ok)
	if ok == gl.FALSE {
		msg := infoLog(id, gl.GetProgramiv, gl.GetProgramInfoLog)
		gl.DeleteProgram(id)
		return nil, fmt.Errorf("link: %s", msg)
	}

	return &Program{id: id, uniforms: make(map[string]int32)}, nil
}

// Use makes the program current
func (p *Program) Use() { gl.UseProgram(p.id) }

// Delete releases the program
func (p *Program) Delete() { gl.DeleteProgram(p.id) }

func (p *Program) location(name string) int32 {
	loc, ok := p.uniforms[name]
	if !ok {
		loc = gl.GetUniformLocation(p.id, gl.Str(name+"\x00"))
		p.uniforms[name] = loc
	}
	return loc
}

// SetFloat sets a float uniform of the current program
func (p *Program) SetFloat(name string, v float32) {
	gl.Uniform1f(p.location(name), v)
}

// SetMat4 sets a mat4 uniform of the current program
func (p *Program) SetMat4(name string, m mgl32.Mat4) {
	gl.UniformMatrix4fv(p.location(name), 1, false, &m[0])
}
