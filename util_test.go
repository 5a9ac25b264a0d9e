package multiview

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/google/go-cmp/cmp"
)

func diff(t *testing.T, want, got any, opts ...cmp.Option) {
	t.Helper()
	if d := cmp.Diff(want, got, opts...); d != "" {
		t.Error(d)
	}
}

func approxEqual(x, y, eps float64) bool {
	return math.Abs(x-y) <= eps
}

func assertNearVec(t *testing.T, got, want r3.Vector, eps float64) {
	t.Helper()
	if d := got.Sub(want).Norm(); d > eps {
		t.Errorf("got %v, expected %v (distance %g)", got, want, d)
	}
}

var testCalibration = Calibration{Fx: 1000, Fy: 1050, Cx: 320, Cy: 240, Skew: 0.5}

// lookAt returns a camera at center looking at target, with its image y axis
// pointing roughly against up.
func lookAt(t *testing.T, k Calibration, center, target, up r3.Vector) Camera {
	t.Helper()
	z := target.Sub(center).Normalize()
	x := z.Cross(up).Normalize()
	y := z.Cross(x)
	cam, err := NewCamera(k, Rotation{X: x, Y: y, Z: z}, center)
	if err != nil {
		t.Fatal(err)
	}
	return cam
}

// testCameras returns three cameras looking at the origin from about 1000
// units away, with a baseline between the first two that is mostly along
// the world x axis.
func testCameras(t *testing.T) CameraSet {
	t.Helper()
	up := r3.Vector{Y: 1}
	return CameraSet{
		lookAt(t, testCalibration, r3.Vector{Z: -1000}, r3.Vector{}, up),
		lookAt(t, testCalibration, r3.Vector{X: 600, Y: 100, Z: -800}, r3.Vector{}, up),
		lookAt(t, testCalibration, r3.Vector{X: -500, Y: 400, Z: -850}, r3.Vector{}, up),
	}
}

// framePoint returns a differential point with a generic Frenet frame and
// non-zero curvature, curvature rate and torsion.
func framePoint(pos, tangent, normalHint r3.Vector, k, kdot, tau float64) DifferentialPoint3D {
	tt := tangent.Normalize()
	n := normalHint.Sub(tt.Mul(normalHint.Dot(tt))).Normalize()
	return DifferentialPoint3D{
		Position:      pos,
		Tangent:       tt,
		Normal:        n,
		Binormal:      tt.Cross(n),
		Curvature:     k,
		CurvatureRate: kdot,
		Torsion:       tau,
	}
}

func testPoint() DifferentialPoint3D {
	return framePoint(
		r3.Vector{X: 10, Y: -20, Z: 30},
		r3.Vector{X: 1, Y: 2, Z: 0.5},
		r3.Vector{X: 0.3, Y: -0.2, Z: 1},
		0.01, 0.0003, 0.02,
	)
}
