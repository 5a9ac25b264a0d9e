package multiview

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"
)

// Rotation is a 3×3 rotation matrix stored by rows. For a camera, the rows
// are the camera's x, y and z (viewing direction) axes expressed in world
// coordinates, so that Apply takes world directions to camera directions.
type Rotation struct {
	X, Y, Z r3.Vector
}

// IdentityRotation is the rotation that leaves every vector unchanged.
var IdentityRotation = Rotation{
	X: r3.Vector{X: 1},
	Y: r3.Vector{Y: 1},
	Z: r3.Vector{Z: 1},
}

// RotationAbout returns the rotation by th radians about axis, following the
// right-hand rule. axis need not be normalized.
func RotationAbout(axis r3.Vector, th float64) Rotation {
	a := axis.Normalize()
	s, c := math.Sincos(th)
	t := 1 - c
	return Rotation{
		X: r3.Vector{X: c + a.X*a.X*t, Y: a.X*a.Y*t - a.Z*s, Z: a.X*a.Z*t + a.Y*s},
		Y: r3.Vector{X: a.Y*a.X*t + a.Z*s, Y: c + a.Y*a.Y*t, Z: a.Y*a.Z*t - a.X*s},
		Z: r3.Vector{X: a.Z*a.X*t - a.Y*s, Y: a.Z*a.Y*t + a.X*s, Z: c + a.Z*a.Z*t},
	}
}

// FrameAlong returns a rotation whose third row is the normalized axis. The
// first two rows complete a right-handed orthonormal frame.
func FrameAlong(axis r3.Vector) Rotation {
	z := axis.Normalize()
	x := z.Ortho()
	return Rotation{X: x, Y: z.Cross(x), Z: z}
}

// Apply returns R v.
func (r Rotation) Apply(v r3.Vector) r3.Vector {
	return r3.Vector{X: r.X.Dot(v), Y: r.Y.Dot(v), Z: r.Z.Dot(v)}
}

// ApplyInverse returns Rᵀ v.
func (r Rotation) ApplyInverse(v r3.Vector) r3.Vector {
	return r.X.Mul(v.X).Add(r.Y.Mul(v.Y)).Add(r.Z.Mul(v.Z))
}

// Transpose returns Rᵀ.
func (r Rotation) Transpose() Rotation {
	return Rotation{
		X: r3.Vector{X: r.X.X, Y: r.Y.X, Z: r.Z.X},
		Y: r3.Vector{X: r.X.Y, Y: r.Y.Y, Z: r.Z.Y},
		Z: r3.Vector{X: r.X.Z, Y: r.Y.Z, Z: r.Z.Z},
	}
}

// Mul returns the product r o.
func (r Rotation) Mul(o Rotation) Rotation {
	ot := o.Transpose()
	return Rotation{
		X: ot.Apply(r.X),
		Y: ot.Apply(r.Y),
		Z: ot.Apply(r.Z),
	}
}

// Dense returns the rotation as a 3×3 matrix.
func (r Rotation) Dense() *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		r.X.X, r.X.Y, r.X.Z,
		r.Y.X, r.Y.Y, r.Y.Z,
		r.Z.X, r.Z.Y, r.Z.Z,
	})
}

// EuclideanTolerance is the tolerance used by [Rotation.IsEuclidean] when
// checking constructed camera orientations.
const EuclideanTolerance = 1e-9

// IsEuclidean reports whether r is a proper rotation: RᵀR = I and det R = 1,
// both within tol.
func (r Rotation) IsEuclidean(tol float64) bool {
	m := r.Dense()
	var rtr mat.Dense
	rtr.Mul(m.T(), m)
	eye := mat.NewDiagDense(3, []float64{1, 1, 1})
	if !mat.EqualApprox(&rtr, eye, tol) {
		return false
	}
	return math.Abs(mat.Det(m)-1) <= tol
}
