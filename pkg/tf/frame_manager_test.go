package tf

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/leterax/go-fpsview/internal/logger"
	"github.com/leterax/go-fpsview/pkg/geom"
)

var t0 = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func newManager() *FrameManager {
	return NewFrameManager("map", time.Second, logger.NewNop())
}

func TestLookupLatest(t *testing.T) {
	fm := newManager()
	fm.Store("base_link", t0, Pose{Position: mgl64.Vec3{1, 0, 0}, Orientation: mgl64.QuatIdent()})
	fm.Store("base_link", t0.Add(100*time.Millisecond), Pose{Position: mgl64.Vec3{2, 0, 0}, Orientation: mgl64.QuatIdent()})

	pos, _, ok := fm.Transform("base_link", time.Time{})
	if !ok {
		t.Fatal("Expected transform to be found")
	}
	if pos != (mgl64.Vec3{2, 0, 0}) {
		t.Errorf("Expected latest position, got %v", pos)
	}
}

func TestLookupInterpolates(t *testing.T) {
	fm := newManager()
	fm.Store("base_link", t0, Pose{Position: mgl64.Vec3{0, 0, 0}, Orientation: mgl64.QuatIdent()})
	fm.Store("base_link", t0.Add(time.Second/2), Pose{
		Position:    mgl64.Vec3{4, 0, 0},
		Orientation: geom.AngleAxis(1, geom.UnitZ),
	})

	pose, err := fm.Lookup("base_link", t0.Add(time.Second/8))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if pose.Position.Sub(mgl64.Vec3{1, 0, 0}).Len() > 1e-9 {
		t.Errorf("Expected (1,0,0), got %v", pose.Position)
	}
	if math.Abs(geom.Roll(pose.Orientation)-0.25) > 1e-9 {
		t.Errorf("Expected yaw 0.25, got %f", geom.Roll(pose.Orientation))
	}
}

func TestLookupErrors(t *testing.T) {
	fm := newManager()
	fm.Store("base_link", t0, Identity())
	fm.Store("base_link", t0.Add(time.Millisecond), Identity())

	testCases := map[string]struct {
		frame string
		stamp time.Time
		want  error
	}{
		"Unknown": {frame: "odom", want: ErrUnknownFrame},
		"Future":  {frame: "base_link", stamp: t0.Add(time.Second), want: ErrExtrapolation},
		"Past":    {frame: "base_link", stamp: t0.Add(-time.Second), want: ErrExtrapolation},
	}

	for name, tt := range testCases {
		tt := tt
		t.Run(name, func(t *testing.T) {
			_, err := fm.Lookup(tt.frame, tt.stamp)
			if !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}

	if _, _, ok := fm.Transform("odom", time.Time{}); ok {
		t.Error("Expected unknown frame to report not found")
	}
}

func TestLookupRelativeToFixedFrame(t *testing.T) {
	fm := newManager()
	fm.Store("odom", t0, Pose{Position: mgl64.Vec3{10, 0, 0}, Orientation: geom.AngleAxis(math.Pi/2, geom.UnitZ)})
	fm.Store("base_link", t0, Pose{Position: mgl64.Vec3{10, 1, 0}, Orientation: geom.AngleAxis(math.Pi/2, geom.UnitZ)})
	fm.SetFixedFrame("odom")

	pose, err := fm.Lookup("base_link", time.Time{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	// One metre along world +Y is one metre along odom +X.
	if pose.Position.Sub(mgl64.Vec3{1, 0, 0}).Len() > 1e-9 {
		t.Errorf("Expected (1,0,0), got %v", pose.Position)
	}
	if !geom.SameOrientation(pose.Orientation, mgl64.QuatIdent(), 1e-12) {
		t.Errorf("Expected identity orientation, got %v", pose.Orientation)
	}

	root, err := fm.Lookup("map", time.Time{})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if root.Position.Sub(mgl64.Vec3{0, 10, 0}).Len() > 1e-9 {
		t.Errorf("Expected root at (0,10,0) in odom, got %v", root.Position)
	}
}

func TestStorePrunesAndOrders(t *testing.T) {
	fm := newManager()
	fm.Store("base_link", t0.Add(2*time.Second), Identity())
	fm.Store("base_link", t0.Add(500*time.Millisecond), Identity()) // older than cache window
	fm.Store("base_link", t0.Add(1500*time.Millisecond), Identity())
	fm.Store("base_link", t0.Add(1500*time.Millisecond), Pose{Position: mgl64.Vec3{1, 1, 1}, Orientation: mgl64.QuatIdent()})
	fm.Store("map", t0, Identity()) // root is implicit

	infos := fm.Frames()
	if len(infos) != 1 {
		t.Fatalf("Expected 1 frame, got %d", len(infos))
	}
	if infos[0].Samples != 2 {
		t.Errorf("Expected 2 samples after pruning, got %d", infos[0].Samples)
	}
	if !infos[0].Latest.Equal(t0.Add(2 * time.Second)) {
		t.Errorf("unexpected latest stamp %s", infos[0].Latest)
	}

	pose, err := fm.Lookup("base_link", t0.Add(1500*time.Millisecond))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if pose.Position != (mgl64.Vec3{1, 1, 1}) {
		t.Errorf("duplicate stamp should overwrite, got %v", pose.Position)
	}

	fm.Remove("base_link")
	if len(fm.Frames()) != 0 {
		t.Error("Expected frame to be removed")
	}
}

func TestPoseInverse(t *testing.T) {
	p := Pose{Position: mgl64.Vec3{1, 2, 3}, Orientation: geom.AngleAxis(0.7, mgl64.Vec3{0, 1, 1})}
	round := p.Compose(p.Inverse())
	if round.Position.Len() > 1e-9 {
		t.Errorf("Expected zero translation, got %v", round.Position)
	}
	if !geom.SameOrientation(round.Orientation, mgl64.QuatIdent(), 1e-12) {
		t.Errorf("Expected identity rotation, got %v", round.Orientation)
	}
}
