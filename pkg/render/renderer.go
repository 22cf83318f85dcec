// Package render draws the viewer scene: a ground grid and the axes of
// every tracked frame, seen through the current controller's camera.
package render

import (
	_ "embed"
	"fmt"

	"github.com/go-gl/gl/v4.6-core/gl"

	"github.com/leterax/go-fpsview/internal/logger"
	"github.com/leterax/go-fpsview/internal/openglhelper"
	"github.com/leterax/go-fpsview/pkg/scene"
)

//go:embed shaders/line.vert
var lineVertexShader string

//go:embed shaders/line.frag
var lineFragmentShader string

// Renderer owns the GPU objects of the scene. It must be created and used on
// the goroutine holding the GL context.
type Renderer struct {
	lines *openglhelper.Program
	grid  *openglhelper.LineMesh
	axes  *openglhelper.LineMesh

	// Reused between frames
	axesVertices []float32

	log logger.Logger
}

// NewRenderer compiles the shaders and uploads the grid
func NewRenderer(gridCells int, gridSpacing float32, log logger.Logger) (*Renderer, error) {
	shader, err := openglhelper.NewProgram(lineVertexShader, lineFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("failed to load line shader: %w", err)
	}

	grid, err := openglhelper.NewLineMesh(GridVertices(gridCells, gridSpacing), openglhelper.Static)
	if err != nil {
		shader.Delete()
		return nil, fmt.Errorf("failed to create grid: %w", err)
	}

	axes, err := openglhelper.NewLineMesh(nil, openglhelper.Dynamic)
	if err != nil {
		grid.Delete()
		shader.Delete()
		return nil, fmt.Errorf("failed to create axes: %w", err)
	}

	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.LineWidth(1)

	log = logger.Component(log, "renderer")
	log.Debug("renderer ready", logger.F("grid_cells", gridCells), logger.F("grid_spacing", gridSpacing))

	return &Renderer{
		lines: shader,
		grid:  grid,
		axes:  axes,
		log:   log,
	}, nil
}

// Render draws one frame from cam. The caller clears and swaps.
func (r *Renderer) Render(cam *scene.Camera, frames []FrameAxes) {
	gl.Enable(gl.DEPTH_TEST)

	r.lines.Use()
	r.lines.SetMat4("view", cam.ViewMatrix())
	r.lines.SetMat4("projection", cam.ProjectionMatrix())

	r.lines.SetFloat("alpha", 0.5)
	r.grid.Draw()

	r.axesVertices = r.axesVertices[:0]
	for _, f := range frames {
		r.axesVertices = AppendAxes(r.axesVertices, f)
	}
	r.axes.Update(r.axesVertices)
	r.lines.SetFloat("alpha", 1)
	r.axes.Draw()
}

// Cleanup frees all GPU resources
func (r *Renderer) Cleanup() {
	if r.axes != nil {
		r.axes.Delete()
	}
	if r.grid != nil {
		r.grid.Delete()
	}
	if r.lines != nil {
		r.lines.Delete()
	}
}
