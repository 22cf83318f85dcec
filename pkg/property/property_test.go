package property

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestFloatClamp(t *testing.T) {
	limit := math.Pi/2 - 0.001
	testCases := map[string]struct {
		start, delta, expected float64
	}{
		"InRange":    {start: 0.2, delta: 0.3, expected: 0.5},
		"ClampHigh":  {start: 1.5, delta: 10, expected: limit},
		"ClampLow":   {start: -1.5, delta: -10, expected: -limit},
		"BackInside": {start: limit, delta: -0.5, expected: limit - 0.5},
	}

	for name, tt := range testCases {
		tt := tt
		t.Run(name, func(t *testing.T) {
			f := NewFloat(Meta{Name: "Pitch"}, 0)
			f.SetMax(limit)
			f.SetMin(-f.Max())
			f.Set(tt.start)
			f.Add(tt.delta)
			if math.Abs(f.Float()-tt.expected) > 1e-12 {
				t.Errorf("Expected: %f, got: %f", tt.expected, f.Float())
			}
		})
	}
}

func TestFloatSetBoundResaturates(t *testing.T) {
	f := NewFloat(Meta{}, 5)
	f.SetMax(2)
	if f.Float() != 2 {
		t.Errorf("Expected 2 after lowering max, got %f", f.Float())
	}
}

func TestFloatUnboundedByDefault(t *testing.T) {
	f := NewFloat(Meta{}, 0)
	f.Set(1e300)
	if f.Float() != 1e300 {
		t.Errorf("Expected value to pass through, got %g", f.Float())
	}
}

func TestAngleWraps(t *testing.T) {
	a := NewAngle(Meta{Name: "Yaw"}, 6.0)
	a.Add(1.0)
	expected := 7.0 - 2*math.Pi
	if math.Abs(a.Float()-expected) > 1e-12 {
		t.Errorf("Expected: %f, got: %f", expected, a.Float())
	}

	a.Set(-0.5)
	if math.Abs(a.Float()-(2*math.Pi-0.5)) > 1e-12 {
		t.Errorf("negative angle not wrapped: %f", a.Float())
	}

	for i := 0; i < 1000; i++ {
		a.Add(0.37)
		if a.Float() < 0 || a.Float() >= 2*math.Pi {
			t.Fatalf("angle left [0, 2π): %f", a.Float())
		}
	}
}

func TestChangeListeners(t *testing.T) {
	v := NewVector(Meta{Name: "Position"}, mgl64.Vec3{1, 2, 3})
	calls := 0
	v.OnChanged(func() { calls++ })

	v.Add(mgl64.Vec3{1, 0, 0})
	v.Set(mgl64.Vec3{2, 2, 3}) // unchanged
	if calls != 1 {
		t.Errorf("Expected 1 notification, got %d", calls)
	}
	if v.Vector() != (mgl64.Vec3{2, 2, 3}) {
		t.Errorf("unexpected vector %v", v.Vector())
	}

	s := NewString(Meta{}, "map")
	var seen string
	s.OnChanged(func() { seen = s.String() })
	if s.Set("map") {
		t.Error("setting the same value should report no change")
	}
	s.Set("base_link")
	if seen != "base_link" {
		t.Errorf("listener saw %q", seen)
	}
}

func TestHide(t *testing.T) {
	b := NewBool(Meta{Name: "Invert Z Axis"}, false)
	var p Property = b
	p.Hide()
	if !p.Meta().Hidden {
		t.Error("Expected property to be hidden")
	}
	p.Show()
	if p.Meta().Hidden {
		t.Error("Expected property to be visible")
	}
	if p.Value() != false {
		t.Errorf("unexpected value %v", p.Value())
	}
}
