package view

import (
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/leterax/go-fpsview/internal/logger"
	"github.com/leterax/go-fpsview/pkg/geom"
	"github.com/leterax/go-fpsview/pkg/tf"
)

// cacheContext resolves transforms through a real pose cache, where the
// fixed frame is always found
type cacheContext struct {
	frames  *tf.FrameManager
	renders int
}

func newCacheContext() *cacheContext {
	return &cacheContext{frames: tf.NewFrameManager("map", 0, logger.NewNop())}
}

func (c *cacheContext) QueueRender()                { c.renders++ }
func (c *cacheContext) Transforms() TransformSource { return c.frames }
func (c *cacheContext) FixedFrame() string          { return c.frames.FixedFrame() }
func (c *cacheContext) Logger() logger.Logger       { return logger.NewNop() }

func TestManagerSetCurrent(t *testing.T) {
	ctx := newFakeContext()
	m := NewManager(ctx, 4)

	fps := NewFPSController(PolicyYawPitch)
	m.SetCurrent(fps)

	if m.Current() != fps {
		t.Fatal("Expected FPS controller to be current")
	}
	if fps.Camera().Position() != DefaultFPSPosition {
		t.Errorf("Expected first controller to be reset, camera at %v", fps.Camera().Position())
	}

	orbit := NewOrbitController()
	m.SetCurrent(orbit)

	if !vecNear(orbit.Camera().Position(), DefaultFPSPosition, 1e-9) {
		t.Errorf("Expected orbit to mimic the FPS camera, got %v", orbit.Camera().Position())
	}
	if fps.active {
		t.Error("Expected previous controller to be deactivated")
	}
	if !orbit.active {
		t.Error("Expected new controller to be active")
	}

	snap := m.Snapshot()
	if snap.ClassID != OrbitClassID {
		t.Errorf("Expected snapshot of %s, got %s", OrbitClassID, snap.ClassID)
	}
	if snap.TargetFrame != "map" {
		t.Errorf("Expected target frame map, got %q", snap.TargetFrame)
	}
}

func TestManagerCommands(t *testing.T) {
	ctx := newFakeContext()
	m := NewManager(ctx, 2)
	fps := NewFPSController(PolicyYawPitch)
	m.SetCurrent(fps)

	yaw, pitch := 1.0, 0.25
	position := mgl64.Vec3{1, 2, 3}
	if err := m.Submit(SetPose(&yaw, &pitch, &position)); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if err := m.Submit(LookAtPoint(mgl64.Vec3{1, 2, 0})); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if err := m.Submit(ResetView()); !errors.Is(err, ErrQueueFull) {
		t.Fatalf("Expected ErrQueueFull, got %v", err)
	}

	m.Update(0.016, 0.016)

	if fps.PositionProperty().Vector() != position {
		t.Errorf("Expected position %v, got %v", position, fps.PositionProperty().Vector())
	}
	if !near(fps.PitchProperty().Float(), PitchLimitHigh, 1e-9) {
		t.Errorf("Expected camera to look straight down after look-at, pitch %v", fps.PitchProperty().Float())
	}

	snap := m.Snapshot()
	if snap.Position != [3]float64{1, 2, 3} {
		t.Errorf("Expected snapshot position (1,2,3), got %v", snap.Position)
	}
	found := false
	for _, p := range snap.Properties {
		if p.Name == "Position" {
			found = true
			if p.Value != position {
				t.Errorf("Expected Position value %v, got %v", position, p.Value)
			}
		}
	}
	if !found {
		t.Error("Expected Position in the snapshot")
	}

	if err := m.Submit(ResetView()); err != nil {
		t.Fatalf("Submit after drain: %v", err)
	}
	m.Update(0.016, 0.016)
	if fps.PositionProperty().Vector() != DefaultFPSPosition {
		t.Errorf("Expected reset position, got %v", fps.PositionProperty().Vector())
	}
}

func TestManagerSetPosePartial(t *testing.T) {
	ctx := newFakeContext()
	m := NewManager(ctx, 1)
	fps := NewFPSController(PolicyYawPitch)
	m.SetCurrent(fps)
	before := fps.PositionProperty().Vector()

	yaw := 2.0
	if err := m.Submit(SetPose(&yaw, nil, nil)); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	m.Update(0, 0)

	if fps.YawProperty().Float() != 2 {
		t.Errorf("Expected yaw 2, got %v", fps.YawProperty().Float())
	}
	if fps.PositionProperty().Vector() != before {
		t.Errorf("Expected position to be kept, got %v", fps.PositionProperty().Vector())
	}
}

func TestManagerConcurrentAccess(t *testing.T) {
	ctx := newFakeContext()
	m := NewManager(ctx, 8)
	m.SetCurrent(NewFPSController(PolicyYawPitch))

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = m.Submit(ResetView())
				_ = m.Snapshot()
			}
		}()
	}
	for i := 0; i < 100; i++ {
		m.Update(0.016, 0.016)
	}
	wg.Wait()
	m.Update(0.016, 0.016)

	if m.Snapshot().ClassID != FPSClassID {
		t.Errorf("Expected FPS snapshot, got %q", m.Snapshot().ClassID)
	}
}

func TestManagerCommandsSurviveStaticTarget(t *testing.T) {
	ctx := newCacheContext()
	m := NewManager(ctx, 4)
	fps := NewFPSController(PolicyYawPitch)
	m.SetCurrent(fps)

	resetPitch := fps.PitchProperty().Float()
	m.Update(0.016, 0.016)
	if !near(fps.PitchProperty().Float(), math.Atan(0.1), 1e-9) || fps.PitchProperty().Float() != resetPitch {
		t.Fatalf("Expected reset pitch atan(0.1) to survive an update, got %v", fps.PitchProperty().Float())
	}

	yaw, pitch := 1.0, 0.4
	if err := m.Submit(SetPose(&yaw, &pitch, nil)); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	m.Update(0.016, 0.016)
	m.Update(0.016, 0.016)
	if fps.YawProperty().Float() != yaw || fps.PitchProperty().Float() != pitch {
		t.Errorf("Expected yaw %v pitch %v after updates, got yaw %v pitch %v",
			yaw, pitch, fps.YawProperty().Float(), fps.PitchProperty().Float())
	}

	target := mgl64.Vec3{0, 5, 0}
	if err := m.Submit(LookAtPoint(target)); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	m.Update(0.016, 0.016)
	want := target.Sub(fps.Camera().DerivedPosition()).Normalize()
	if !vecNear(fps.Camera().Direction(), want, 1e-6) {
		t.Errorf("Expected camera to look at %v along %v, got %v", target, want, fps.Camera().Direction())
	}

	before := fps.YawProperty().Float()
	m.HandleMouseEvent(MouseEvent{Type: MouseMove, X: 10, LastX: 0, Buttons: ButtonLeft})
	dragged := fps.YawProperty().Float()
	if dragged == before {
		t.Fatal("Expected left drag to change yaw")
	}
	m.Update(0.016, 0.016)
	if fps.YawProperty().Float() != dragged {
		t.Errorf("Expected dragged yaw %v to survive an update, got %v", dragged, fps.YawProperty().Float())
	}
}

func TestFPSIngestsOnlyNewTargetOrientation(t *testing.T) {
	ctx := newCacheContext()
	start := time.Unix(100, 0)
	ctx.frames.Store("base_link", start, tf.Pose{Orientation: geom.AngleAxis(0.3, geom.UnitZ)})

	m := NewManager(ctx, 4)
	fps := NewFPSController(PolicyYawPitch)
	m.SetCurrent(fps)
	fps.TargetFrameProperty().Set("base_link")

	yaw := 2.0
	if err := m.Submit(SetPose(&yaw, nil, nil)); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	m.Update(0.016, 0.016)
	if fps.YawProperty().Float() != yaw || fps.RollProperty().Float() != 0 {
		t.Fatalf("Expected switching to a static frame to keep yaw %v, got yaw %v roll %v",
			yaw, fps.YawProperty().Float(), fps.RollProperty().Float())
	}

	ctx.frames.Store("base_link", start.Add(time.Second), tf.Pose{Orientation: geom.AngleAxis(0.6, geom.UnitZ)})
	m.Update(0.016, 0.016)
	if !near(fps.RollProperty().Float(), 0.6, 1e-9) {
		t.Errorf("Expected the new sample to be ingested as roll 0.6, got %v", fps.RollProperty().Float())
	}
	if !angleNear(fps.YawProperty().Float(), 0, 1e-9) || !near(fps.PitchProperty().Float(), 0, 1e-9) {
		t.Errorf("Expected yaw and pitch from the new sample, got yaw %v pitch %v",
			fps.YawProperty().Float(), fps.PitchProperty().Float())
	}
}
