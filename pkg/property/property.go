// Package property implements the editable values owned by view controllers.
//
// A property is a plain value with optional bounds. Display metadata (name,
// help text, visibility) lives in Meta and has no effect on the value.
package property

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/leterax/go-fpsview/pkg/geom"
)

// Meta is the display configuration of a property.
type Meta struct {
	Name   string
	Help   string
	Hidden bool
}

// Property is the common surface used to list properties in UIs.
type Property interface {
	Meta() Meta
	Hide()
	Show()
	Value() interface{}
}

type base struct {
	meta      Meta
	listeners []func()
}

func (b *base) Meta() Meta { return b.meta }
func (b *base) Hide()      { b.meta.Hidden = true }
func (b *base) Show()      { b.meta.Hidden = false }

// OnChanged registers fn to run after every change of the value.
func (b *base) OnChanged(fn func()) {
	b.listeners = append(b.listeners, fn)
}

func (b *base) changed() {
	for _, fn := range b.listeners {
		fn()
	}
}

// Float is a scalar saturated to [min, max].
type Float struct {
	base
	value    float64
	min, max float64
}

// NewFloat returns an unbounded float property.
func NewFloat(meta Meta, value float64) *Float {
	return &Float{
		base:  base{meta: meta},
		value: value,
		min:   math.Inf(-1),
		max:   math.Inf(1),
	}
}

func (f *Float) Float() float64     { return f.value }
func (f *Float) Value() interface{} { return f.value }
func (f *Float) Min() float64       { return f.min }
func (f *Float) Max() float64       { return f.max }

// SetMin lowers the bound and re-saturates the current value.
func (f *Float) SetMin(min float64) {
	f.min = min
	f.Set(f.value)
}

// SetMax sets the upper bound and re-saturates the current value.
func (f *Float) SetMax(max float64) {
	f.max = max
	f.Set(f.value)
}

// Set stores v clamped to the bounds and reports whether the value changed.
func (f *Float) Set(v float64) bool {
	if v < f.min {
		v = f.min
	}
	if v > f.max {
		v = f.max
	}
	if v == f.value {
		return false
	}
	f.value = v
	f.changed()
	return true
}

// Add is Set(Float()+delta).
func (f *Float) Add(delta float64) bool {
	return f.Set(f.value + delta)
}

// Angle is a scalar kept in [0, 2π).
type Angle struct {
	base
	value float64
}

func NewAngle(meta Meta, value float64) *Angle {
	return &Angle{base: base{meta: meta}, value: geom.MapAngleTo0To2Pi(value)}
}

func (a *Angle) Float() float64     { return a.value }
func (a *Angle) Value() interface{} { return a.value }

// Set stores v wrapped into [0, 2π).
func (a *Angle) Set(v float64) bool {
	v = geom.MapAngleTo0To2Pi(v)
	if v == a.value {
		return false
	}
	a.value = v
	a.changed()
	return true
}

func (a *Angle) Add(delta float64) bool {
	return a.Set(a.value + delta)
}

// Vector is an unconstrained 3-vector.
type Vector struct {
	base
	value mgl64.Vec3
}

func NewVector(meta Meta, value mgl64.Vec3) *Vector {
	return &Vector{base: base{meta: meta}, value: value}
}

func (v *Vector) Vector() mgl64.Vec3 { return v.value }
func (v *Vector) Value() interface{} { return v.value }

func (v *Vector) Set(value mgl64.Vec3) bool {
	if value == v.value {
		return false
	}
	v.value = value
	v.changed()
	return true
}

func (v *Vector) Add(delta mgl64.Vec3) bool {
	return v.Set(v.value.Add(delta))
}

// String holds a free-form string such as a frame id.
type String struct {
	base
	value string
}

func NewString(meta Meta, value string) *String {
	return &String{base: base{meta: meta}, value: value}
}

func (s *String) String() string     { return s.value }
func (s *String) Value() interface{} { return s.value }

func (s *String) Set(value string) bool {
	if value == s.value {
		return false
	}
	s.value = value
	s.changed()
	return true
}

// Bool is a toggle.
type Bool struct {
	base
	value bool
}

func NewBool(meta Meta, value bool) *Bool {
	return &Bool{base: base{meta: meta}, value: value}
}

func (b *Bool) Bool() bool         { return b.value }
func (b *Bool) Value() interface{} { return b.value }

func (b *Bool) Set(value bool) bool {
	if value == b.value {
		return false
	}
	b.value = value
	b.changed()
	return true
}
