// Package viewer hosts the view controllers: it owns the window, turns input
// into controller events and redraws the scene when something changed.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/leterax/go-fpsview/internal/logger"
	"github.com/leterax/go-fpsview/internal/openglhelper"
	"github.com/leterax/go-fpsview/pkg/property"
	"github.com/leterax/go-fpsview/pkg/render"
	"github.com/leterax/go-fpsview/pkg/tf"
	"github.com/leterax/go-fpsview/pkg/view"
)

// Controller kinds accepted by Options.Controller
const (
	ControllerFPS   = "fps"
	ControllerOrbit = "orbit"
)

// frameInterval caps how long the loop sleeps waiting for input
const frameInterval = time.Second / 60

// Options configures a Viewer
type Options struct {
	Width, Height int
	Title         string
	FOV           float64 // degrees
	VSync         bool

	Controller  string
	Policy      view.OrientationPolicy
	NearClip    float64
	TargetFrame string

	CommandQueue int
	GridCells    int
	GridSpacing  float64
}

// Viewer implements view.DisplayContext. Run must be called from the
// goroutine locked to the main OS thread.
type Viewer struct {
	opts    Options
	frames  *tf.FrameManager
	feed    *tf.Feed
	manager *view.Manager
	log     logger.Logger

	window   *openglhelper.Window
	renderer *render.Renderer
	mouse    mouseTracker

	renderQueued atomic.Bool
	kind         string
	lastCursor   view.Cursor
	lastStatus   string
}

// New creates a viewer reading poses from frames. feed may be nil; when set,
// every applied pose update schedules a redraw.
func New(frames *tf.FrameManager, feed *tf.Feed, opts Options, log logger.Logger) *Viewer {
	if opts.Controller == "" {
		opts.Controller = ControllerFPS
	}
	if opts.Policy == "" {
		opts.Policy = view.PolicyYawPitch
	}
	if opts.GridCells == 0 {
		opts.GridCells = render.DefaultGridCells
	}
	if opts.GridSpacing == 0 {
		opts.GridSpacing = render.DefaultGridSpacing
	}

	v := &Viewer{
		opts:   opts,
		frames: frames,
		feed:   feed,
		log:    logger.Component(log, "viewer"),
	}
	v.manager = view.NewManager(v, opts.CommandQueue)
	return v
}

// Manager returns the controller manager; its Submit and Snapshot methods
// are safe to call from any goroutine
func (v *Viewer) Manager() *view.Manager { return v.manager }

// QueueRender schedules a redraw; safe from any goroutine
func (v *Viewer) QueueRender() { v.renderQueued.Store(true) }

func (v *Viewer) Transforms() view.TransformSource { return v.frames }
func (v *Viewer) FixedFrame() string               { return v.frames.FixedFrame() }
func (v *Viewer) Logger() logger.Logger            { return v.log }

func (v *Viewer) newController(kind string) (view.Controller, error) {
	switch kind {
	case ControllerFPS:
		return view.NewFPSController(v.opts.Policy), nil
	case ControllerOrbit:
		return view.NewOrbitController(), nil
	default:
		return nil, fmt.Errorf("unknown controller %q", kind)
	}
}

// setController makes a new controller of kind current. The first one takes
// the configured target frame; later ones inherit it through Mimic.
func (v *Viewer) setController(kind string) error {
	c, err := v.newController(kind)
	if err != nil {
		return err
	}

	if tuned, ok := c.(interface {
		NearClip() *property.Float
		TargetFrameProperty() *property.String
	}); ok {
		if v.opts.NearClip > 0 {
			tuned.NearClip().Set(v.opts.NearClip)
		}
		if v.manager.Current() == nil && v.opts.TargetFrame != "" {
			tuned.TargetFrameProperty().Set(v.opts.TargetFrame)
		}
	}

	v.manager.SetCurrent(c)
	v.kind = kind

	cam := c.Camera()
	if v.opts.FOV > 0 {
		cam.SetFOV(mgl64.DegToRad(v.opts.FOV))
	}
	width, height := v.opts.Width, v.opts.Height
	if v.window != nil {
		width, height = v.window.Size()
	}
	cam.UpdateProjectionMatrix(width, height)
	return nil
}

func (v *Viewer) toggleController() {
	next := ControllerOrbit
	if v.kind == ControllerOrbit {
		next = ControllerFPS
	}
	if err := v.setController(next); err != nil {
		v.log.Error("failed to switch controller", logger.F("error", err))
	}
}

// frameAxes lists every frame the cache can place in the fixed frame. The
// fixed frame and the target frame are drawn larger.
func (v *Viewer) frameAxes() []render.FrameAxes {
	target := ""
	if t, ok := v.manager.Current().(interface{ TargetFrame() string }); ok {
		target = t.TargetFrame()
	}

	axes := []render.FrameAxes{{Name: v.frames.FixedFrame(), Pose: tf.Identity(), Length: render.DefaultTargetAxisLength}}
	for _, info := range v.frames.Frames() {
		pos, ori, ok := v.frames.Transform(info.Name, time.Time{})
		if !ok {
			continue
		}
		length := render.DefaultAxisLength
		if info.Name == target {
			length = render.DefaultTargetAxisLength
		}
		axes = append(axes, render.FrameAxes{
			Name:   info.Name,
			Pose:   tf.Pose{Position: pos, Orientation: ori},
			Length: length,
		})
	}
	return axes
}

var statusMarkup = strings.NewReplacer("<b>", "", "</b>", "")

// syncChrome mirrors the controller's status and cursor into the window
func (v *Viewer) syncChrome() {
	c := v.manager.Current()
	if status := c.Status(); status != v.lastStatus {
		v.lastStatus = status
		title := v.opts.Title
		if status != "" {
			title += " | " + statusMarkup.Replace(status)
		}
		v.window.SetTitle(title)
	}
	if cursor := c.Cursor(); cursor != v.lastCursor {
		v.lastCursor = cursor
		v.window.SetCursor(standardCursor(cursor))
	}
}

func (v *Viewer) installCallbacks() {
	w := v.window.Handle()

	w.SetCursorPosCallback(func(_ *glfw.Window, xpos, ypos float64) {
		v.manager.HandleMouseEvent(v.mouse.move(xpos, ypos))
	})
	w.SetMouseButtonCallback(func(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		if e, ok := v.mouse.button(button, action, mods); ok {
			v.manager.HandleMouseEvent(e)
		}
	})
	w.SetScrollCallback(func(_ *glfw.Window, _, yoffset float64) {
		v.manager.HandleMouseEvent(v.mouse.scroll(yoffset))
	})
	w.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, mods glfw.ModifierKey) {
		v.mouse.key(key, action, mods)
		if action != glfw.Press {
			return
		}
		switch key {
		case glfw.KeyEscape:
			v.window.RequestClose()
		case glfw.KeyO:
			v.toggleController()
		case glfw.KeyR:
			if err := v.manager.Submit(view.ResetView()); err != nil {
				v.log.Warn("reset dropped", logger.F("error", err))
			}
		}
	})
	w.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		if width == 0 || height == 0 {
			return
		}
		v.window.OnResize(width, height)
		v.manager.Current().Camera().UpdateProjectionMatrix(width, height)
		v.QueueRender()
	})
}

// Run opens the window and drives the controllers until the window closes
// or ctx is cancelled
func (v *Viewer) Run(ctx context.Context) error {
	window, err := openglhelper.OpenWindow(openglhelper.WindowConfig{
		Width:  v.opts.Width,
		Height: v.opts.Height,
		Title:  v.opts.Title,
		VSync:  v.opts.VSync,
	}, v.log)
	if err != nil {
		return fmt.Errorf("failed to create window: %w", err)
	}
	v.window = window
	defer window.Close()

	renderer, err := render.NewRenderer(v.opts.GridCells, float32(v.opts.GridSpacing), v.log)
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}
	v.renderer = renderer
	defer renderer.Cleanup()

	if err := v.setController(v.opts.Controller); err != nil {
		return err
	}
	v.installCallbacks()

	v.log.Info("viewer running",
		logger.F("controller", v.kind),
		logger.F("fixed_frame", v.frames.FixedFrame()))

	last := glfw.GetTime()
	for !window.ShouldClose() {
		if err := ctx.Err(); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}

		window.WaitEvents(frameInterval.Seconds())

		now := glfw.GetTime()
		dt := now - last
		last = now

		if v.feed != nil && v.feed.HaveFramesChanged() {
			v.QueueRender()
		}
		v.manager.Update(dt, dt)
		v.syncChrome()

		if v.renderQueued.Swap(false) {
			window.BeginFrame(render.BackgroundColor)
			renderer.Render(v.manager.Current().Camera(), v.frameAxes())
			window.EndFrame()
		}
	}

	v.log.Info("window closed")
	return nil
}
