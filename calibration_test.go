package multiview

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp/cmpopts"
	"gonum.org/v1/gonum/mat"
)

func TestCalibrationMatrixRoundTrip(t *testing.T) {
	m := testCalibration.Matrix()
	k, err := CalibrationFromMatrix(m)
	if err != nil {
		t.Fatal(err)
	}
	diff(t, testCalibration, k)

	// homogeneous scale is removed
	var scaled mat.Dense
	scaled.Scale(2, m)
	k, err = CalibrationFromMatrix(&scaled)
	if err != nil {
		t.Fatal(err)
	}
	diff(t, testCalibration, k, cmpopts.EquateApprox(0, 1e-12))
}

func TestCalibrationFromMatrixInvalid(t *testing.T) {
	tests := []struct {
		name string
		m    mat.Matrix
	}{
		{"wrong shape", mat.NewDense(2, 3, []float64{1, 0, 0, 0, 1, 0})},
		{"lower entries", mat.NewDense(3, 3, []float64{1, 0, 0, 0, 1, 0, 1, 0, 1})},
		{"zero scale", mat.NewDense(3, 3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 0})},
		{"zero focal length", mat.NewDense(3, 3, []float64{0, 0, 0, 0, 1, 0, 0, 0, 1})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := CalibrationFromMatrix(tt.m); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestCalibrationValidate(t *testing.T) {
	if err := testCalibration.Validate(); err != nil {
		t.Errorf("unexpected error: %s", err)
	}
	if err := (Calibration{Fx: math.NaN(), Fy: 1}).Validate(); err == nil {
		t.Error("expected error for NaN focal length")
	}
	if err := NewCalibration(1, 0, 0, 0).Validate(); err == nil {
		t.Error("expected error for zero focal length")
	}
}

func TestCalibrationScaleCrop(t *testing.T) {
	p := Pt(0.05, -0.1)
	px := p.Transform(testCalibration.Affine())

	half := testCalibration.Scale(0.5)
	assertNear(t, p.Transform(half.Affine()), Pt(px.X/2, px.Y/2), 1e-9)
	diff(t, Calibration{Fx: 500, Fy: 525, Cx: 160, Cy: 120, Skew: 0.25}, half)

	crop := testCalibration.Crop(20, 30)
	assertNear(t, p.Transform(crop.Affine()), Pt(px.X-20, px.Y-30), 1e-9)
	diff(t, Calibration{Fx: 1000, Fy: 1050, Cx: 300, Cy: 210, Skew: 0.5}, crop)
}
