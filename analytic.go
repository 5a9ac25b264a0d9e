package multiview

import (
	"math"

	"github.com/golang/geo/r3"
)

// Curve is an analytic space curve that can be sampled with exact
// differential geometry.
//
// For closed and periodic curves start, step and span are angles in degrees;
// for lines they are lengths. Samples are taken at start, start+step, ...
// strictly before start+span, so a full 360° span does not repeat its first
// sample.
type Curve interface {
	Sample(start, step, span float64) []DifferentialPoint3D
}

var (
	_ Curve = Helix{}
	_ Curve = Circle3D{}
	_ Curve = Ellipse3D{}
	_ Curve = Line3D{}
)

// Helix is a circular helix winding counterclockwise about Axis (the world z
// axis if zero) through Center. Pitch is the rise per full turn.
type Helix struct {
	Radius float64
	Pitch  float64
	Center r3.Vector
	Axis   r3.Vector
}

// At returns the sample at angle th, in radians.
func (h Helix) At(th float64) DifferentialPoint3D {
	a := h.Radius
	b := h.Pitch / (2 * math.Pi)
	s, c := math.Sincos(th)
	speed := math.Hypot(a, b)
	c2 := speed * speed
	local := DifferentialPoint3D{
		Position:  r3.Vector{X: a * c, Y: a * s, Z: b * th},
		Tangent:   r3.Vector{X: -a * s / speed, Y: a * c / speed, Z: b / speed},
		Normal:    r3.Vector{X: -c, Y: -s},
		Binormal:  r3.Vector{X: b * s / speed, Y: -b * c / speed, Z: a / speed},
		Curvature: a / c2,
		Torsion:   b / c2,
	}
	return place(local, h.Center, h.Axis)
}

func (h Helix) Sample(startDeg, stepDeg, spanDeg float64) []DifferentialPoint3D {
	return sampleAngles(startDeg, stepDeg, spanDeg, h.At)
}

// Circle3D is a circle of the given radius about Center, in the plane
// orthogonal to Axis (the world z axis if zero).
type Circle3D struct {
	Radius float64
	Center r3.Vector
	Axis   r3.Vector
}

func (c Circle3D) At(th float64) DifferentialPoint3D {
	return Helix{Radius: c.Radius, Center: c.Center, Axis: c.Axis}.At(th)
}

func (c Circle3D) Sample(startDeg, stepDeg, spanDeg float64) []DifferentialPoint3D {
	return sampleAngles(startDeg, stepDeg, spanDeg, c.At)
}

// Ellipse3D is an ellipse with semi-axes A and B about Center, in the plane
// orthogonal to Axis (the world z axis if zero).
type Ellipse3D struct {
	A, B   float64
	Center r3.Vector
	Axis   r3.Vector
}

func (e Ellipse3D) At(th float64) DifferentialPoint3D {
	a, b := e.A, e.B
	s, c := math.Sincos(th)
	v2 := a*a*s*s + b*b*c*c
	v := math.Sqrt(v2)
	t := r3.Vector{X: -a * s / v, Y: b * c / v}
	local := DifferentialPoint3D{
		Position:      r3.Vector{X: a * c, Y: b * s},
		Tangent:       t,
		Normal:        r3.Vector{X: -t.Y, Y: t.X},
		Binormal:      r3.Vector{Z: 1},
		Curvature:     a * b / (v2 * v),
		CurvatureRate: -3 * a * b * (a*a - b*b) * s * c / (v2 * v2 * v2),
	}
	return place(local, e.Center, e.Axis)
}

func (e Ellipse3D) Sample(startDeg, stepDeg, spanDeg float64) []DifferentialPoint3D {
	return sampleAngles(startDeg, stepDeg, spanDeg, e.At)
}

// Line3D is the straight line through Origin along Direction.
type Line3D struct {
	Origin    r3.Vector
	Direction r3.Vector
}

// At returns the sample at arclength s from Origin. The normal of a line is
// arbitrary; At picks one orthogonal to the direction.
func (l Line3D) At(s float64) DifferentialPoint3D {
	t := l.Direction.Normalize()
	n := t.Ortho()
	return DifferentialPoint3D{
		Position: l.Origin.Add(t.Mul(s)),
		Tangent:  t,
		Normal:   n,
		Binormal: t.Cross(n),
	}
}

func (l Line3D) Sample(start, step, length float64) []DifferentialPoint3D {
	if !(step > 0) {
		return nil
	}
	var out []DifferentialPoint3D
	for i := 0; ; i++ {
		s := start + float64(i)*step
		if s >= start+length {
			break
		}
		out = append(out, l.At(s))
	}
	return out
}

func sampleAngles(startDeg, stepDeg, spanDeg float64, at func(float64) DifferentialPoint3D) []DifferentialPoint3D {
	if !(stepDeg > 0) {
		return nil
	}
	var out []DifferentialPoint3D
	for i := 0; ; i++ {
		d := startDeg + float64(i)*stepDeg
		if d >= startDeg+spanDeg {
			break
		}
		out = append(out, at(d*math.Pi/180))
	}
	return out
}

// place maps a sample from a curve's local frame, whose z axis is the curve's
// axis, into the world.
func place(p DifferentialPoint3D, center, axis r3.Vector) DifferentialPoint3D {
	if axis == (r3.Vector{}) {
		p.Position = p.Position.Add(center)
		return p
	}
	f := FrameAlong(axis)
	p.Position = f.ApplyInverse(p.Position).Add(center)
	p.Tangent = f.ApplyInverse(p.Tangent)
	p.Normal = f.ApplyInverse(p.Normal)
	p.Binormal = f.ApplyInverse(p.Binormal)
	return p
}
