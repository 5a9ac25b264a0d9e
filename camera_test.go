package multiview

import (
	"errors"
	"math"
	"testing"

	"github.com/golang/geo/r3"
)

func TestNewCameraRejectsBadInput(t *testing.T) {
	if _, err := NewCamera(Calibration{}, IdentityRotation, r3.Vector{}); err == nil {
		t.Error("expected error for zero calibration")
	}
	bad := Rotation{X: r3.Vector{X: 2}, Y: r3.Vector{Y: 1}, Z: r3.Vector{Z: 1}}
	if _, err := NewCamera(testCalibration, bad, r3.Vector{}); err == nil {
		t.Error("expected error for non-Euclidean rotation")
	}
}

func TestProjectPoint(t *testing.T) {
	cams := testCameras(t)
	for i := range cams {
		c := &cams[i]
		p, ok := c.ProjectPoint(r3.Vector{})
		if !ok {
			t.Fatalf("camera %d: origin not in front of camera", i)
		}
		// every test camera looks at the origin
		assertNear(t, p, Pt(testCalibration.Cx, testCalibration.Cy), 1e-9)
		if d := c.Depth(r3.Vector{}); !approxEqual(d, c.Center.Norm(), 1e-9) {
			t.Errorf("camera %d: got depth %v, expected %v", i, d, c.Center.Norm())
		}
		assertNearVec(t, c.Rotation.Apply(c.Center).Add(c.Translation()), r3.Vector{}, 1e-9)
	}

	if _, ok := cams[0].ProjectPoint(r3.Vector{Z: -2000}); ok {
		t.Error("expected point behind the camera to be rejected")
	}
}

func TestProjectCircleHeadOn(t *testing.T) {
	k := NewCalibration(1000, 1000, 0, 0)
	cam := lookAt(t, k, r3.Vector{Z: -1000}, r3.Vector{}, r3.Vector{Y: 1})
	circle := Circle3D{Radius: 100}
	for _, p := range circle.Sample(0, 30, 360) {
		q, ok := cam.Project(p)
		if !ok {
			t.Fatalf("unexpected degenerate projection of %v", p)
		}
		if r := q.Position.Sub(Point{}).Hypot(); !approxEqual(r, 100, 1e-9) {
			t.Errorf("got image radius %v, expected 100", r)
		}
		if !approxEqual(math.Abs(q.Curvature), 0.01, 1e-12) {
			t.Errorf("got curvature %v, expected magnitude 0.01", q.Curvature)
		}
		if !approxEqual(q.CurvatureRate, 0, 1e-12) {
			t.Errorf("got curvature rate %v, expected 0", q.CurvatureRate)
		}
		// the tangent of a centered circle is orthogonal to the radius
		if d := q.Tangent.Dot(q.Position.Sub(Point{})); !approxEqual(d, 0, 1e-9) {
			t.Errorf("tangent %v not orthogonal to radius at %v", q.Tangent, q.Position)
		}
	}
}

func TestProjectDegenerate(t *testing.T) {
	cams := testCameras(t)
	c := &cams[0]

	behind := testPoint()
	behind.Position = r3.Vector{Z: -1500}
	if _, ok := c.Project(behind); ok {
		t.Error("expected point behind the camera to be degenerate")
	}

	// a tangent along the viewing ray projects to a cusp
	along := framePoint(r3.Vector{}, c.Axis(), r3.Vector{X: 1}, 0.01, 0, 0)
	if q, ok := c.Project(along); ok {
		t.Errorf("expected tangent along the viewing ray to be degenerate, got %v", q)
	}
}

func TestProjectMatchesFiniteDifferences(t *testing.T) {
	cams := testCameras(t)
	h := Helix{
		Radius: 100,
		Pitch:  300,
		Center: r3.Vector{X: 20, Y: -10, Z: 40},
		Axis:   r3.Vector{X: 0.2, Y: 1, Z: 0.3},
	}
	const dth = 1e-3
	for ci := range cams {
		c := &cams[ci]
		for _, th := range []float64{0.1, 1.3, 2.9, 4.4} {
			prev, ok0 := c.Project(h.At(th - dth))
			cur, ok1 := c.Project(h.At(th))
			next, ok2 := c.Project(h.At(th + dth))
			if !ok0 || !ok1 || !ok2 {
				t.Fatalf("camera %d, θ=%g: unexpected degenerate projection", ci, th)
			}

			// image derivatives with respect to θ
			d1 := next.Position.Sub(prev.Position).Mul(1 / (2 * dth))
			d2 := next.Position.Sub(cur.Position).Sub(cur.Position.Sub(prev.Position)).Mul(1 / (dth * dth))
			fd, _ := frenet2D(d1, d2, Vec2{})

			if e := TangentError(fd.Tangent, cur.Tangent); e > 1e-6 {
				t.Errorf("camera %d, θ=%g: tangent %v differs from finite difference %v by %g rad",
					ci, th, cur.Tangent, fd.Tangent, e)
			}
			if !approxEqual(fd.Curvature, cur.Curvature, 1e-5*math.Abs(cur.Curvature)+1e-8) {
				t.Errorf("camera %d, θ=%g: got curvature %v, finite difference %v",
					ci, th, cur.Curvature, fd.Curvature)
			}

			ds := next.Position.Distance(prev.Position)
			kdot := (next.Curvature - prev.Curvature) / ds
			if !approxEqual(kdot, cur.CurvatureRate, 1e-4*math.Abs(cur.CurvatureRate)+1e-10) {
				t.Errorf("camera %d, θ=%g: got curvature rate %v, finite difference %v",
					ci, th, cur.CurvatureRate, kdot)
			}
		}
	}
}

func TestImageToWorld(t *testing.T) {
	cams := testCameras(t)
	p := testPoint()
	for ci := range cams {
		c := &cams[ci]
		q, ok := c.Project(p)
		if !ok {
			t.Fatalf("camera %d: unexpected degenerate projection", ci)
		}
		o := c.ImageToWorld(q)

		// the viewing ray passes through the point at its depth
		rho := c.Depth(p.Position)
		assertNearVec(t, o.Center.Add(o.Direction.Mul(rho)), p.Position, 1e-8)
		if !approxEqual(o.Axis.Dot(o.Direction), 1, 1e-12) {
			t.Errorf("camera %d: direction %v not at unit depth", ci, o.Direction)
		}

		// the space tangent lies in the plane of the ray and the image tangent
		m := o.planeNormal()
		if d := m.Dot(p.Tangent); !approxEqual(d, 0, 1e-9) {
			t.Errorf("camera %d: tangent %v leaves the viewing plane (m·T = %g)", ci, p.Tangent, d)
		}
		if d := m.Dot(o.Direction); !approxEqual(d, 0, 1e-12) {
			t.Errorf("camera %d: viewing ray leaves the viewing plane (m·d = %g)", ci, d)
		}
	}
}

func TestNewCameraError(t *testing.T) {
	_, err := NewCamera(Calibration{Fx: 1}, IdentityRotation, r3.Vector{})
	if err == nil || errors.Is(err, ErrInvariantViolation) {
		t.Errorf("got %v, expected a plain validation error", err)
	}
}
