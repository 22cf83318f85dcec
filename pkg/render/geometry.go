package render

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/leterax/go-fpsview/pkg/geom"
	"github.com/leterax/go-fpsview/pkg/tf"
)

// FrameAxes is one coordinate frame to draw as an RGB triad
type FrameAxes struct {
	Name   string
	Pose   tf.Pose
	Length float64
}

func appendVertex(dst []float32, p mgl32.Vec3, color mgl32.Vec3) []float32 {
	return append(dst, p[0], p[1], p[2], color[0], color[1], color[2])
}

// GridVertices builds a square grid of cells*cells cells in the XY plane,
// centered on the origin, as GL_LINES vertices
func GridVertices(cells int, spacing float32) []float32 {
	if cells <= 0 || spacing <= 0 {
		return nil
	}
	half := float32(cells) * spacing / 2
	vertices := make([]float32, 0, (cells+1)*4*6)
	for i := 0; i <= cells; i++ {
		offset := -half + float32(i)*spacing
		vertices = appendVertex(vertices, mgl32.Vec3{offset, -half, 0}, GridColor)
		vertices = appendVertex(vertices, mgl32.Vec3{offset, half, 0}, GridColor)
		vertices = appendVertex(vertices, mgl32.Vec3{-half, offset, 0}, GridColor)
		vertices = appendVertex(vertices, mgl32.Vec3{half, offset, 0}, GridColor)
	}
	return vertices
}

// AppendAxes appends the three axis segments of a frame to dst
func AppendAxes(dst []float32, axes FrameAxes) []float32 {
	origin := geom.Vec3To32(axes.Pose.Position)
	for i, color := range [3]mgl32.Vec3{AxisXColor, AxisYColor, AxisZColor} {
		var unit mgl64.Vec3
		unit[i] = axes.Length
		tip := geom.Vec3To32(axes.Pose.Apply(unit))
		dst = appendVertex(dst, origin, color)
		dst = appendVertex(dst, tip, color)
	}
	return dst
}
