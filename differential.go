package multiview

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
)

// DifferentialPoint2D is a sample of an image curve together with its local
// geometry up to third order.
//
// Tangent must have unit length. Curvature is signed with respect to the
// normal Tangent.Perp(), and CurvatureRate is the derivative of the curvature
// with respect to image arclength.
type DifferentialPoint2D struct {
	Position      Point
	Tangent       Vec2
	Curvature     float64
	CurvatureRate float64
}

// Normal returns the unit normal the curvature is measured against.
func (p DifferentialPoint2D) Normal() Vec2 {
	return p.Tangent.Perp()
}

func (p DifferentialPoint2D) String() string {
	return fmt.Sprintf("{%s t=%s k=%g kdot=%g}", p.Position, p.Tangent, p.Curvature, p.CurvatureRate)
}

// Transform maps the differential point through aff. The tangent, curvature
// and curvature rate are those of the transformed curve, measured in the
// arclength of the transformed image.
//
// The second return value is false if aff collapses the tangent.
func (p DifferentialPoint2D) Transform(aff Affine) (DifferentialPoint2D, bool) {
	t := p.Tangent
	n := t.Perp()
	k := p.Curvature
	// derivatives of the curve with respect to its own arclength
	d1 := t
	d2 := n.Mul(k)
	d3 := n.Mul(p.CurvatureRate).Sub(t.Mul(k * k))

	out, ok := frenet2D(d1.Transform(aff), d2.Transform(aff), d3.Transform(aff))
	out.Position = p.Position.Transform(aff)
	return out, ok
}

// frenet2D computes the unit tangent, signed curvature and arclength
// derivative of curvature of a planar curve from its first three derivatives
// with respect to an arbitrary regular parameter.
func frenet2D(d1, d2, d3 Vec2) (DifferentialPoint2D, bool) {
	g2 := d1.Hypot2()
	if !(g2 > 0) || math.IsInf(g2, 0) {
		return DifferentialPoint2D{}, false
	}
	g := math.Sqrt(g2)
	g3 := g2 * g
	c := d1.Cross(d2)
	k := c / g3
	// dk/dp, then divide by the speed to get dk/ds
	dk := d1.Cross(d3)/g3 - 3*c*d1.Dot(d2)/(g3*g2)
	return DifferentialPoint2D{
		Tangent:       d1.Div(g),
		Curvature:     k,
		CurvatureRate: dk / g,
	}, true
}

// DifferentialPoint3D is a sample of a space curve with its Frenet frame,
// curvature, arclength derivative of curvature and torsion. Binormal is
// Tangent × Normal.
type DifferentialPoint3D struct {
	Position      r3.Vector
	Tangent       r3.Vector
	Normal        r3.Vector
	Binormal      r3.Vector
	Curvature     float64
	CurvatureRate float64
	Torsion       float64
}

func (p DifferentialPoint3D) String() string {
	return fmt.Sprintf("{%v T=%v N=%v K=%g Kdot=%g tau=%g}",
		p.Position, p.Tangent, p.Normal, p.Curvature, p.CurvatureRate, p.Torsion)
}

// derivatives returns the first three derivatives of the curve with respect
// to arclength:
//
//	Γ'   = T
//	Γ''  = K N
//	Γ''' = −K² T + K' N + K τ B
func (p DifferentialPoint3D) derivatives() (r3.Vector, r3.Vector, r3.Vector) {
	k := p.Curvature
	d1 := p.Tangent
	d2 := p.Normal.Mul(k)
	d3 := p.Tangent.Mul(-k * k).
		Add(p.Normal.Mul(p.CurvatureRate)).
		Add(p.Binormal.Mul(k * p.Torsion))
	return d1, d2, d3
}
