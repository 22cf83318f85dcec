// Package openglhelper wraps the handful of OpenGL objects the viewer draws
// with. Everything here must run on the goroutine that owns the GL context.
package openglhelper

import (
	"fmt"

	"github.com/go-gl/gl/v4.6-core/gl"
)

// Usage hints how often a vertex store is rewritten
type Usage uint32

const (
	// Static stores are written once
	Static Usage = gl.STATIC_DRAW
	// Dynamic stores are rewritten most frames
	Dynamic Usage = gl.DYNAMIC_DRAW
)

// LineVertexFloats is the number of floats per line vertex: x y z r g b
const LineVertexFloats = 6

const lineStride = LineVertexFloats * 4

// LineMesh is a set of colored segments drawn as GL_LINES. Vertices are
// interleaved position and color.
type LineMesh struct {
	vao      uint32
	vbo      uint32
	usage    Usage
	capacity int // bytes allocated in vbo
	count    int32
}

// NewLineMesh uploads vertices into a new mesh. nil creates an empty mesh
// that allocates on the first Update.
func NewLineMesh(vertices []float32, usage Usage) (*LineMesh, error) {
	if len(vertices)%LineVertexFloats != 0 {
		return nil, fmt.Errorf("line mesh: %d floats is not a multiple of %d", len(vertices), LineVertexFloats)
	}

	m := &LineMesh{usage: usage}
	gl.GenVertexArrays(1, &m.vao)
	gl.GenBuffers(1, &m.vbo)

	gl.BindVertexArray(m.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, lineStride, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(1, 3, gl.FLOAT, false, lineStride, gl.PtrOffset(3*4))
	gl.EnableVertexAttribArray(1)
	m.upload(vertices)
	gl.BindVertexArray(0)

	return m, nil
}

// caller binds vbo
func (m *LineMesh) upload(vertices []float32) {
	m.count = int32(len(vertices) / LineVertexFloats)
	size := len(vertices) * 4
	if size == 0 {
		return
	}
	if size > m.capacity {
		gl.BufferData(gl.ARRAY_BUFFER, size, gl.Ptr(vertices), uint32(m.usage))
		m.capacity = size
		return
	}
	gl.BufferSubData(gl.ARRAY_BUFFER, 0, size, gl.Ptr(vertices))
}

// Update replaces the segments of the mesh, growing the store when needed
func (m *LineMesh) Update(vertices []float32) {
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	m.upload(vertices)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
}

// Draw renders the mesh with whatever program is bound
func (m *LineMesh) Draw() {
	if m.count == 0 {
		return
	}
	gl.BindVertexArray(m.vao)
	gl.DrawArrays(gl.LINES, 0, m.count)
	gl.BindVertexArray(0)
}

// Delete releases the GPU objects
func (m *LineMesh) Delete() {
	gl.DeleteBuffers(1, &m.vbo)
	gl.DeleteVertexArrays(1, &m.vao)
}
