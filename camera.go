package multiview

import (
	"errors"
	"fmt"

	"github.com/golang/geo/r3"
)

// degenerateSpeed bounds the image speed, in units of normalized image
// coordinates per unit of depth-scaled arclength, below which a tangent is
// considered to lie along the viewing ray.
const degenerateSpeed = 1e-12

// Camera is a calibrated perspective camera. A world point X has camera
// coordinates R (X − C), whose third component is the depth.
//
// Cameras are immutable after construction.
type Camera struct {
	Calibration Calibration
	Rotation    Rotation
	Center      r3.Vector
}

// NewCamera returns a camera with the given intrinsics, orientation and
// center. The rotation must be Euclidean.
func NewCamera(k Calibration, rot Rotation, center r3.Vector) (Camera, error) {
	if err := k.Validate(); err != nil {
		return Camera{}, err
	}
	if !rot.IsEuclidean(EuclideanTolerance) {
		return Camera{}, errors.New("multiview: camera rotation is not a proper orthonormal rotation")
	}
	return Camera{Calibration: k, Rotation: rot, Center: center}, nil
}

// Axis returns the viewing direction in world coordinates.
func (c *Camera) Axis() r3.Vector {
	return c.Rotation.Z
}

// Translation returns t = −R C, so that camera coordinates are R X + t.
func (c *Camera) Translation() r3.Vector {
	return c.Rotation.Apply(c.Center).Mul(-1)
}

// Depth returns the signed distance of X in front of the principal plane.
func (c *Camera) Depth(x r3.Vector) float64 {
	return c.Rotation.Z.Dot(x.Sub(c.Center))
}

// ProjectPoint projects a world point to pixel coordinates. It reports false
// when the point is on or behind the principal plane.
func (c *Camera) ProjectPoint(x r3.Vector) (Point, bool) {
	xc := c.Rotation.Apply(x.Sub(c.Center))
	if !(xc.Z > 0) {
		return Point{}, false
	}
	return Pt(xc.X/xc.Z, xc.Y/xc.Z).Transform(c.Calibration.Affine()), true
}

// Project projects a differential point of a space curve into the image.
//
// The result is only meaningful when the second return value is true. It is
// false, and the result zero, when the point is on or behind the principal
// plane or when its tangent lies along the viewing ray, so that the image
// curve has no defined tangent.
func (c *Camera) Project(p DifferentialPoint3D) (DifferentialPoint2D, bool) {
	xc := c.Rotation.Apply(p.Position.Sub(c.Center))
	rho := xc.Z
	if !(rho > 0) {
		return DifferentialPoint2D{}, false
	}
	d1, d2, d3 := p.derivatives()
	d1 = c.Rotation.Apply(d1)
	d2 = c.Rotation.Apply(d2)
	d3 = c.Rotation.Apply(d3)
	rho1, rho2, rho3 := d1.Z, d2.Z, d3.Z

	// Differentiate γ = Γ/ρ three times; all derivatives have zero third
	// component.
	inv := 1 / rho
	gam := xc.Mul(inv)
	g1 := d1.Sub(gam.Mul(rho1)).Mul(inv)
	if g1.Norm()*rho < degenerateSpeed {
		return DifferentialPoint2D{}, false
	}
	g2 := d2.Sub(gam.Mul(rho2)).Sub(g1.Mul(2 * rho1)).Mul(inv)
	g3 := d3.Sub(gam.Mul(rho3)).Sub(g1.Mul(3 * rho2)).Sub(g2.Mul(3 * rho1)).Mul(inv)

	aff := c.Calibration.Affine()
	out, ok := frenet2D(
		planar(g1).Transform(aff),
		planar(g2).Transform(aff),
		planar(g3).Transform(aff),
	)
	if !ok {
		return DifferentialPoint2D{}, false
	}
	out.Position = Pt(gam.X, gam.Y).Transform(aff)
	return out, true
}

func planar(v r3.Vector) Vec2 {
	return Vec2{X: v.X, Y: v.Y}
}

// Observation is an image differential point lifted into world space. It is
// the input to two-view reconstruction.
//
// Direction is the normalized image point (x, y, 1) rotated into the world,
// so that Center + λ Direction is the viewing ray and λ is the depth. Tangent
// and Normal are the image curve's unit tangent and normal rotated into the
// world. Curvature and CurvatureRate are measured in normalized image
// coordinates.
type Observation struct {
	Center        r3.Vector
	Axis          r3.Vector
	Direction     r3.Vector
	Tangent       r3.Vector
	Normal        r3.Vector
	Curvature     float64
	CurvatureRate float64
}

// Point returns the observation's position on the image plane at unit depth.
func (o Observation) Point() r3.Vector {
	return o.Center.Add(o.Direction)
}

// planeNormal returns the normal of the plane spanned by the viewing ray and
// the image tangent, scaled so that its dot product with the curvature vector
// of the space curve recovers the image curvature.
func (o Observation) planeNormal() r3.Vector {
	return o.Normal.Sub(o.Axis.Mul(o.Normal.Dot(o.Direction)))
}

// ImageToWorld lifts a pixel-space differential point into world space.
func (c *Camera) ImageToWorld(p DifferentialPoint2D) Observation {
	n, _ := p.Transform(c.Calibration.Affine().Invert())
	gam := r3.Vector{X: n.Position.X, Y: n.Position.Y, Z: 1}
	t := r3.Vector{X: n.Tangent.X, Y: n.Tangent.Y}
	nn := r3.Vector{X: -n.Tangent.Y, Y: n.Tangent.X}
	return Observation{
		Center:        c.Center,
		Axis:          c.Rotation.Z,
		Direction:     c.Rotation.ApplyInverse(gam),
		Tangent:       c.Rotation.ApplyInverse(t),
		Normal:        c.Rotation.ApplyInverse(nn),
		Curvature:     n.Curvature,
		CurvatureRate: n.CurvatureRate,
	}
}

func (c *Camera) String() string {
	return fmt.Sprintf("Camera{C=%v z=%v f=(%g, %g)}", c.Center, c.Rotation.Z, c.Calibration.Fx, c.Calibration.Fy)
}
