package openglhelper

import (
	"fmt"

	"github.com/go-gl/gl/v4.6-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/leterax/go-fpsview/internal/logger"
)

// WindowConfig describes the window to open
type WindowConfig struct {
	Width, Height int
	Title         string
	VSync         bool
}

// Window is a GLFW window owning a current OpenGL 4.6 core context. Sizes
// are framebuffer pixels.
type Window struct {
	handle  *glfw.Window
	width   int
	height  int
	title   string
	cursors map[glfw.StandardCursor]*glfw.Cursor
	log     logger.Logger
}

// OpenWindow initializes GLFW and OpenGL and opens a resizable window
func OpenWindow(cfg WindowConfig, log logger.Logger) (*Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize GLFW: %w", err)
	}

	for hint, value := range map[glfw.Hint]int{
		glfw.ContextVersionMajor:     4,
		glfw.ContextVersionMinor:     6,
		glfw.OpenGLProfile:           glfw.OpenGLCoreProfile,
		glfw.OpenGLForwardCompatible: glfw.True,
		glfw.Resizable:               glfw.True,
	} {
		glfw.WindowHint(hint, value)
	}

	handle, err := glfw.CreateWindow(cfg.Width, cfg.Height, cfg.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("failed to create GLFW window: %w", err)
	}
	handle.MakeContextCurrent()

	interval := 0
	if cfg.VSync {
		interval = 1
	}
	glfw.SwapInterval(interval)

	if err := gl.Init(); err != nil {
		handle.Destroy()
		glfw.Terminate()
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	w := &Window{
		handle:  handle,
		title:   cfg.Title,
		cursors: make(map[glfw.StandardCursor]*glfw.Cursor),
		log:     logger.Component(log, "window"),
	}
	w.log.Info("OpenGL context ready",
		logger.F("version", gl.GoStr(gl.GetString(gl.VERSION))),
		logger.F("renderer", gl.GoStr(gl.GetString(gl.RENDERER))))

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)

	// HiDPI screens have more framebuffer pixels than window units
	w.OnResize(handle.GetFramebufferSize())

	return w, nil
}

// BeginFrame clears color and depth
func (w *Window) BeginFrame(background mgl32.Vec4) {
	gl.ClearColor(background[0], background[1], background[2], background[3])
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// EndFrame presents the frame
func (w *Window) EndFrame() {
	w.handle.SwapBuffers()
}

// WaitEvents dispatches pending events, sleeping up to timeout seconds
// when there are none
func (w *Window) WaitEvents(timeout float64) {
	glfw.WaitEventsTimeout(timeout)
}

func (w *Window) ShouldClose() bool { return w.handle.ShouldClose() }

// RequestClose makes ShouldClose report true
func (w *Window) RequestClose() { w.handle.SetShouldClose(true) }

// Size returns the framebuffer size in pixels
func (w *Window) Size() (width, height int) {
	return w.width, w.height
}

// SetTitle retitles the window; unchanged titles are skipped
func (w *Window) SetTitle(title string) {
	if title != w.title {
		w.title = title
		w.handle.SetTitle(title)
	}
}

// OnResize adopts a new framebuffer size
func (w *Window) OnResize(width, height int) {
	w.width, w.height = width, height
	gl.Viewport(0, 0, int32(width), int32(height))
	w.log.Debug("framebuffer resized", logger.F("width", width), logger.F("height", height))
}

// SetCursor shows one of the standard pointer shapes
func (w *Window) SetCursor(shape glfw.StandardCursor) {
	cursor, ok := w.cursors[shape]
	if !ok {
		cursor = glfw.CreateStandardCursor(shape)
		w.cursors[shape] = cursor
	}
	w.handle.SetCursor(cursor)
}

// Handle exposes the GLFW window for installing callbacks
func (w *Window) Handle() *glfw.Window { return w.handle }

// Close destroys the window and terminates GLFW
func (w *Window) Close() {
	for _, cursor := range w.cursors {
		cursor.Destroy()
	}
	w.handle.Destroy()
	glfw.Terminate()
}
