package multiview

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"
)

// Rig is a pair of cameras with their epipolar geometry. It borrows the
// cameras; they must outlive it.
type Rig struct {
	Cameras [2]*Camera

	// F is the fundamental matrix, x₁ᵀ F x₀ = 0 for corresponding pixels
	// x₀ in the first and x₁ in the second view.
	F *mat.Dense

	epipole r3.Vector
}

// NewRig returns the rig formed by c0 and c1.
func NewRig(c0, c1 *Camera) *Rig {
	f := FundamentalMatrix(c0, c1)
	return &Rig{
		Cameras: [2]*Camera{c0, c1},
		F:       f,
		epipole: Epipole(f),
	}
}

// FundamentalMatrix returns F = K₁⁻ᵀ [t]ₓ R K₀⁻¹ where (R, t) is the motion
// taking c0's camera coordinates to c1's.
func FundamentalMatrix(c0, c1 *Camera) *mat.Dense {
	r := c1.Rotation.Mul(c0.Rotation.Transpose())
	t := c1.Rotation.Apply(c0.Center.Sub(c1.Center))

	var e mat.Dense
	e.Mul(crossMatrix(t), r.Dense())

	k0inv := calibrationFromAffine(c0.Calibration.Affine().Invert()).Matrix()
	k1inv := calibrationFromAffine(c1.Calibration.Affine().Invert()).Matrix()

	var f mat.Dense
	f.Mul(k1inv.T(), &e)
	f.Mul(&f, k0inv)
	return &f
}

// crossMatrix returns [v]ₓ, the matrix with [v]ₓ u = v × u.
func crossMatrix(v r3.Vector) *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		0, -v.Z, v.Y,
		v.Z, 0, -v.X,
		-v.Y, v.X, 0,
	})
}

// Epipole returns the right null vector of f in homogeneous coordinates,
// i.e. the epipole of the first view. It is the singular vector of the
// smallest singular value, with unit norm.
func Epipole(f mat.Matrix) r3.Vector {
	var svd mat.SVD
	if !svd.Factorize(f, mat.SVDFull) {
		return r3.Vector{X: math.NaN(), Y: math.NaN(), Z: math.NaN()}
	}
	var v mat.Dense
	svd.VTo(&v)
	return r3.Vector{X: v.At(0, 2), Y: v.At(1, 2), Z: v.At(2, 2)}
}

// Epipole returns the first view's epipole in homogeneous pixel coordinates.
func (r *Rig) Epipole() r3.Vector {
	return r.epipole
}

// AngleWithEpipolarLine returns the acute angle, in [0, π/2], between the
// image tangent t at pixel p of the first view and the epipolar line through
// p. The epipolar line is found through the epipole of f.
//
// The angle is 0 if p coincides with the epipole or t is zero.
func AngleWithEpipolarLine(t Vec2, p Point, f mat.Matrix) float64 {
	return epipolarAngle(t, p, Epipole(f))
}

func epipolarAngle(t Vec2, p Point, e r3.Vector) float64 {
	var dir Vec2
	if math.Abs(e.Z) <= 1e-12*math.Hypot(e.X, e.Y) {
		// epipole at infinity; epipolar lines are parallel
		dir = Vec(e.X, e.Y)
	} else {
		dir = p.Sub(Pt(e.X/e.Z, e.Y/e.Z))
	}
	nd, nt := dir.Hypot(), t.Hypot()
	if nd == 0 || nt == 0 {
		return 0
	}
	c := math.Abs(t.Dot(dir)) / (nd * nt)
	return math.Acos(math.Min(c, 1))
}

// EpipolarAngle returns [AngleWithEpipolarLine] for a differential point of
// the first view, using the epipole computed when the rig was built.
func (r *Rig) EpipolarAngle(p DifferentialPoint2D) float64 {
	return epipolarAngle(p.Tangent, p.Position, r.epipole)
}

// ImageToWorld lifts p, observed in the given view (0 or 1), into world
// space.
func (r *Rig) ImageToWorld(view int, p DifferentialPoint2D) Observation {
	return r.Cameras[view].ImageToWorld(p)
}

// Triangulate returns the midpoint of the shortest segment joining the
// viewing rays of o0 and o1. For intersecting rays this is the intersection.
func Triangulate(o0, o1 Observation) r3.Vector {
	d0, d1 := o0.Direction, o1.Direction
	w := o0.Center.Sub(o1.Center)
	a := d0.Dot(d0)
	b := d0.Dot(d1)
	c := d1.Dot(d1)
	d := d0.Dot(w)
	e := d1.Dot(w)
	den := a*c - b*b
	l0 := (b*e - c*d) / den
	l1 := (a*e - b*d) / den
	p0 := o0.Center.Add(d0.Mul(l0))
	p1 := o1.Center.Add(d1.Mul(l1))
	return p0.Add(p1).Mul(0.5)
}

// Reconstruct recovers a differential point of a space curve from its
// observations in the rig's two views.
//
// Position is triangulated. The tangent is the intersection of the two
// planes spanned by each viewing ray and image tangent. Curvature, its
// arclength derivative and torsion follow from one linear constraint per
// view relating the image curvature (and its derivative) to the curvature
// vector of the space curve (and its derivative).
//
// Reconstruct does not report conditioning. When the image tangents are close
// to their epipolar lines the two planes nearly coincide and the result
// degrades; callers filter with [Rig.EpipolarAngle] first.
func (r *Rig) Reconstruct(o0, o1 Observation) DifferentialPoint3D {
	obs := [2]Observation{o0, o1}
	x := Triangulate(o0, o1)

	var m [2]r3.Vector
	for i, o := range obs {
		m[i] = o.planeNormal()
	}
	t := m[0].Cross(m[1]).Normalize()
	// Orient T so that it projects onto the first view's image tangent.
	if t.Sub(o0.Direction.Mul(o0.Axis.Dot(t))).Dot(o0.Tangent) < 0 {
		t = t.Mul(-1)
	}

	var (
		rho  [2]float64   // depth
		rho1 [2]float64   // d(depth)/ds
		g    [2]float64   // image speed |γ'|
		gp   [2]r3.Vector // γ'
	)
	for i, o := range obs {
		rho[i] = o.Axis.Dot(x.Sub(o.Center))
		rho1[i] = o.Axis.Dot(t)
		gp[i] = t.Sub(o.Direction.Mul(rho1[i])).Mul(1 / rho[i])
		g[i] = gp[i].Norm()
	}

	// m_i · KN = κ_i ρ_i g_i², T · KN = 0
	kn := solve3(m[0], m[1], t,
		o0.Curvature*rho[0]*g[0]*g[0],
		o1.Curvature*rho[1]*g[1]*g[1],
		0)
	k := kn.Norm()
	var n r3.Vector
	if k > 0 {
		n = kn.Mul(1 / k)
	} else {
		n = t.Ortho()
	}
	b := t.Cross(n)

	// (m_i · N) K' + (m_i · B) Kτ = ρ_i (3 g_i g_i' κ_i + g_i³ κ̇_i) + 3 ρ_i' (m_i · KN) / ρ_i
	var a [2][2]float64
	var rhs [2]float64
	for i, o := range obs {
		rho2 := o.Axis.Dot(kn)
		gpp := kn.Sub(o.Direction.Mul(rho2)).Sub(gp[i].Mul(2 * rho1[i])).Mul(1 / rho[i])
		gdot := gp[i].Dot(gpp) / g[i]
		gi := g[i]
		rhs[i] = rho[i]*(3*gi*gdot*o.Curvature+gi*gi*gi*o.CurvatureRate) +
			3*rho1[i]*m[i].Dot(kn)/rho[i]
		a[i] = [2]float64{m[i].Dot(n), m[i].Dot(b)}
	}
	det := a[0][0]*a[1][1] - a[0][1]*a[1][0]
	kdot := (rhs[0]*a[1][1] - a[0][1]*rhs[1]) / det
	ktau := (a[0][0]*rhs[1] - a[1][0]*rhs[0]) / det
	var tau float64
	if k > 0 {
		tau = ktau / k
	}

	return DifferentialPoint3D{
		Position:      x,
		Tangent:       t,
		Normal:        n,
		Binormal:      b,
		Curvature:     k,
		CurvatureRate: kdot,
		Torsion:       tau,
	}
}

// ReconstructImage lifts p0 and p1, observed in the first and second view,
// and reconstructs them.
func (r *Rig) ReconstructImage(p0, p1 DifferentialPoint2D) DifferentialPoint3D {
	return r.Reconstruct(r.ImageToWorld(0, p0), r.ImageToWorld(1, p1))
}

// solve3 solves the 3×3 system with rows r0, r1, r2 and right-hand side
// (b0, b1, b2) by Cramer's rule.
func solve3(r0, r1, r2 r3.Vector, b0, b1, b2 float64) r3.Vector {
	c0 := r1.Cross(r2)
	c1 := r2.Cross(r0)
	c2 := r0.Cross(r1)
	det := r0.Dot(c0)
	return c0.Mul(b0).Add(c1.Mul(b1)).Add(c2.Mul(b2)).Mul(1 / det)
}
