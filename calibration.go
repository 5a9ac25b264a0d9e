package multiview

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Calibration holds the intrinsic parameters of a pinhole camera:
//
//	    | Fx Skew Cx |
//	K = |  0   Fy Cy |
//	    |  0    0  1 |
//
// K maps normalized image coordinates to pixels.
type Calibration struct {
	Fx, Fy float64
	Cx, Cy float64
	Skew   float64
}

// NewCalibration returns a zero-skew calibration.
func NewCalibration(fx, fy, cx, cy float64) Calibration {
	return Calibration{Fx: fx, Fy: fy, Cx: cx, Cy: cy}
}

// CalibrationFromMatrix reads a calibration from a 3×3 upper triangular
// matrix. The matrix is normalized so that its bottom-right entry is 1.
func CalibrationFromMatrix(m mat.Matrix) (Calibration, error) {
	if r, c := m.Dims(); r != 3 || c != 3 {
		return Calibration{}, fmt.Errorf("multiview: calibration matrix is %dx%d, want 3x3", r, c)
	}
	w := m.At(2, 2)
	if w == 0 || m.At(1, 0) != 0 || m.At(2, 0) != 0 || m.At(2, 1) != 0 {
		return Calibration{}, fmt.Errorf("multiview: calibration matrix is not upper triangular with non-zero K[2][2]")
	}
	k := Calibration{
		Fx:   m.At(0, 0) / w,
		Skew: m.At(0, 1) / w,
		Cx:   m.At(0, 2) / w,
		Fy:   m.At(1, 1) / w,
		Cy:   m.At(1, 2) / w,
	}
	if err := k.Validate(); err != nil {
		return Calibration{}, err
	}
	return k, nil
}

// Validate reports whether the calibration describes an invertible map.
func (k Calibration) Validate() error {
	for _, v := range [...]float64{k.Fx, k.Fy, k.Cx, k.Cy, k.Skew} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("multiview: calibration has non-finite entries: %+v", k)
		}
	}
	if k.Fx == 0 || k.Fy == 0 {
		return fmt.Errorf("multiview: calibration has zero focal length: %+v", k)
	}
	return nil
}

// Affine returns K as a transform of the image plane.
func (k Calibration) Affine() Affine {
	return Affine{k.Fx, 0, k.Skew, k.Fy, k.Cx, k.Cy}
}

func calibrationFromAffine(aff Affine) Calibration {
	return Calibration{
		Fx:   aff.N0,
		Skew: aff.N2,
		Fy:   aff.N3,
		Cx:   aff.N4,
		Cy:   aff.N5,
	}
}

// Matrix returns K as a dense 3×3 matrix.
func (k Calibration) Matrix() *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		k.Fx, k.Skew, k.Cx,
		0, k.Fy, k.Cy,
		0, 0, 1,
	})
}

// Scale returns the calibration of the same camera when the image is
// resampled by factor s.
func (k Calibration) Scale(s float64) Calibration {
	return calibrationFromAffine(k.Affine().ThenScale(s, s))
}

// Crop returns the calibration of the same camera when the image is cropped
// with its new origin at pixel (x, y) of the old image.
func (k Calibration) Crop(x, y float64) Calibration {
	return calibrationFromAffine(k.Affine().ThenTranslate(Vec(-x, -y)))
}
