package multiview

import (
	"math"

	"github.com/golang/geo/r3"
)

// TurntableCamera returns the camera of frame frm of a turntable sequence:
// the object rotates about the world y axis by stepDeg degrees per frame,
// which is equivalent to a camera orbiting at distance radius in the xz plane
// and looking at the origin.
func TurntableCamera(k Calibration, frm int, stepDeg, radius float64) Camera {
	th := float64(frm) * stepDeg * math.Pi / 180
	s, c := math.Sincos(th)
	rot := Rotation{
		X: r3.Vector{X: c, Z: -s},
		Y: r3.Vector{Y: 1},
		Z: r3.Vector{X: s, Z: c},
	}
	return Camera{
		Calibration: k,
		Rotation:    rot,
		Center:      r3.Vector{X: -radius * s, Z: -radius * c},
	}
}

// TurntableCameras returns the turntable cameras of the given frame angles,
// in degrees.
func TurntableCameras(k Calibration, anglesDeg []float64, radius float64) CameraSet {
	out := make(CameraSet, len(anglesDeg))
	for i, a := range anglesDeg {
		out[i] = TurntableCamera(k, 1, a, radius)
	}
	return out
}
