package multiview

import (
	"errors"
	"math"
	"slices"
	"testing"

	"github.com/golang/geo/r3"
)

// reprojectionFixture returns correspondences of the test point followed by
// samples of a helix, projected into the test cameras.
func reprojectionFixture(t *testing.T) (CameraSet, *Rig, Correspondences) {
	t.Helper()
	cams := testCameras(t)
	h := Helix{Radius: 150, Pitch: 250, Center: r3.Vector{Y: 20}, Axis: r3.Vector{X: 0.3, Y: 1, Z: -0.4}}
	curves := [][]DifferentialPoint3D{
		{testPoint()},
		h.Sample(0, 15, 360),
	}
	return cams, cams.Rig(0, 1), ProjectIntoCameras(curves, cams)
}

func TestComputeErrorsMalformed(t *testing.T) {
	cams, rig, views := reprojectionFixture(t)

	tests := []struct {
		name  string
		views Correspondences
		cams  []Camera
		rig   *Rig
		want  error
	}{
		{"no views", nil, cams, rig, ErrTooFewViews},
		{"two views", views[:2], cams[:2], rig, ErrTooFewViews},
		{"length mismatch", Correspondences{views[0], views[1], views[2][1:]}, cams, rig, ErrViewLengthMismatch},
		{"camera count", views, cams[:2], rig, ErrCameraCount},
		{"nil rig", views, cams, nil, ErrNilRig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeErrors(tt.views, tt.cams, tt.rig)
			if !errors.Is(err, tt.want) {
				t.Errorf("got error %v, want %v", err, tt.want)
			}
			if got != nil {
				t.Errorf("got result %v alongside error", got)
			}
		})
	}
}

func TestComputeErrorsExactData(t *testing.T) {
	cams, rig, views := reprojectionFixture(t)
	errs, err := ComputeErrors(views, cams, rig)
	if err != nil {
		t.Fatal(err)
	}
	if errs.Len() == 0 {
		t.Fatal("no correspondence was scored")
	}
	if errs.ValidIndices[0] != 0 {
		t.Errorf("the test point was not scored; valid indices %v", errs.ValidIndices)
	}
	if !slices.IsSorted(errs.ValidIndices) {
		t.Errorf("valid indices %v are not in input order", errs.ValidIndices)
	}
	for _, ch := range [][]float64{errs.PositionSq, errs.Tangent, errs.Curvature, errs.CurvatureRate} {
		if len(ch) != errs.Len() {
			t.Fatalf("channel has %d entries, want %d", len(ch), errs.Len())
		}
	}

	for i, idx := range errs.ValidIndices {
		if e := errs.PositionSq[i]; e >= 1e-9 {
			t.Errorf("correspondence %d: squared position error %g", idx, e)
		}
		if e := errs.Tangent[i]; e >= 1e-6 {
			t.Errorf("correspondence %d: tangent error %g", idx, e)
		}
		if e := errs.Curvature[i]; e >= 1e-6 {
			t.Errorf("correspondence %d: curvature error %g", idx, e)
		}
		if e := errs.CurvatureRate[i]; e >= 1e-6 {
			t.Errorf("correspondence %d: curvature rate error %g", idx, e)
		}
		if a := rig.EpipolarAngle(views[0][idx]); !(a > DefaultEpipolarThreshold) {
			t.Errorf("correspondence %d scored with epipolar angle %v", idx, a)
		}
	}

	// every correspondence left out is either epitangent or degenerate in
	// the third view
	for idx := range views.Len() {
		if slices.Contains(errs.ValidIndices, idx) {
			continue
		}
		_, ok := cams[2].Project(rig.ReconstructImage(views[0][idx], views[1][idx]))
		if ok && rig.EpipolarAngle(views[0][idx]) > DefaultEpipolarThreshold {
			t.Errorf("correspondence %d was skipped without reason", idx)
		}
	}
}

func TestComputeErrorsSkipsEpitangent(t *testing.T) {
	cams, rig, views := reprojectionFixture(t)
	e := rig.Epipole()
	ep := Pt(e.X/e.Z, e.Y/e.Z)

	// turn the first view's tangent of the test point onto its epipolar line
	views[0][0].Tangent = views[0][0].Position.Sub(ep).Normalize()

	errs, err := ComputeErrors(views, cams, rig)
	if err != nil {
		t.Fatal(err)
	}
	if slices.Contains(errs.ValidIndices, 0) {
		t.Errorf("epitangent correspondence was scored")
	}
}

func TestErrorEngineThreshold(t *testing.T) {
	cams, rig, views := reprojectionFixture(t)
	a := rig.EpipolarAngle(views[0][0])

	below, err := ErrorEngine{EpipolarThreshold: a - 0.01}.Compute(views, cams, rig)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Contains(below.ValidIndices, 0) {
		t.Errorf("test point rejected at threshold %v below its angle %v", a-0.01, a)
	}

	above, err := ErrorEngine{EpipolarThreshold: a + 0.01}.Compute(views, cams, rig)
	if err != nil {
		t.Fatal(err)
	}
	if slices.Contains(above.ValidIndices, 0) {
		t.Errorf("test point accepted at threshold %v above its angle %v", a+0.01, a)
	}
	if above.Len() > below.Len() {
		t.Errorf("raising the threshold scored more correspondences: %d > %d", above.Len(), below.Len())
	}
}

func TestComputeErrorsBehindThirdCamera(t *testing.T) {
	cams, rig, views := reprojectionFixture(t)
	// a third camera looking away from the scene
	cams[2] = lookAt(t, testCalibration, r3.Vector{Z: 1000}, r3.Vector{Z: 2000}, r3.Vector{Y: 1})

	errs, err := ComputeErrors(views, cams, rig)
	if err != nil {
		t.Fatal(err)
	}
	if errs.Len() != 0 {
		t.Errorf("got %d scored correspondences, want 0", errs.Len())
	}
	if m := MaxErrors(errs); m.Position.Index != -1 {
		t.Errorf("got max position index %d, want -1", m.Position.Index)
	}
}

func TestComputeErrorsUsesOnlyFirstThreeViews(t *testing.T) {
	cams, rig, views := reprojectionFixture(t)
	want, err := ComputeErrors(views, cams, rig)
	if err != nil {
		t.Fatal(err)
	}

	extra := lookAt(t, testCalibration, r3.Vector{X: 900, Z: 400}, r3.Vector{}, r3.Vector{Y: 1})
	cams = append(cams, extra)
	views = append(views, make([]DifferentialPoint2D, views.Len()))
	got, err := ComputeErrors(views, cams, rig)
	if err != nil {
		t.Fatal(err)
	}
	diff(t, want, got)
}

func TestTangentError(t *testing.T) {
	tests := []struct {
		name string
		a, b Vec2
		want float64
	}{
		{"equal", Vec(1, 0), Vec(1, 0), 0},
		{"orthogonal", Vec(1, 0), Vec(0, 1), math.Pi / 2},
		{"opposite", Vec(0, 1), Vec(0, -1), math.Pi},
		{"overshoot", Vec(1, 0), Vec(1+1e-12, 0), 0},
		{"undershoot", Vec(-1, 0), Vec(1+1e-12, 0), math.Pi},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TangentError(tt.a, tt.b)
			if math.IsNaN(got) {
				t.Fatal("got NaN")
			}
			if !approxEqual(got, tt.want, 1e-12) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
			if got < 0 || got > math.Pi {
				t.Errorf("got %v outside [0, π]", got)
			}
		})
	}
}
