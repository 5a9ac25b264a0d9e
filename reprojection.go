package multiview

import (
	"fmt"
	"math"
)

// DefaultEpipolarThreshold is the epipolar angle, in radians, that a
// correspondence's first-view tangent must exceed to be scored. It is tuned
// for the reference configurations and is a parameter, not a derived
// constant.
const DefaultEpipolarThreshold = math.Pi / 6

// Correspondences holds one sequence of image samples per view. The k-th
// element of every view is an observation of the same 3D sample.
type Correspondences [][]DifferentialPoint2D

// Validate reports whether c is usable by the error engine: at least three
// views of equal length.
func (c Correspondences) Validate() error {
	if len(c) < 3 {
		return fmt.Errorf("got %d views: %w", len(c), ErrTooFewViews)
	}
	for v := 1; v < len(c); v++ {
		if len(c[v]) != len(c[0]) {
			return fmt.Errorf("view %d has %d correspondences, view 0 has %d: %w",
				v, len(c[v]), len(c[0]), ErrViewLengthMismatch)
		}
	}
	return nil
}

// Len returns the number of correspondences per view.
func (c Correspondences) Len() int {
	if len(c) == 0 {
		return 0
	}
	return len(c[0])
}

// ReprojectionErrors holds the per-correspondence errors of reconstructing
// from the first two views and reprojecting into the third.
//
// Only correspondences that passed the validity filter are scored. The i-th
// entry of every channel belongs to correspondence ValidIndices[i].
type ReprojectionErrors struct {
	// PositionSq holds squared pixel distances.
	PositionSq []float64
	// Tangent holds unsigned angles between tangents, in [0, π].
	Tangent []float64
	// Curvature holds absolute curvature differences.
	Curvature []float64
	// CurvatureRate holds absolute curvature rate differences.
	CurvatureRate []float64
	// ValidIndices maps channel positions to correspondence indices.
	ValidIndices []int
}

// Len returns the number of scored correspondences.
func (e *ReprojectionErrors) Len() int {
	return len(e.ValidIndices)
}

// ErrorEngine reconstructs correspondences from views 0 and 1 and scores
// their reprojections into view 2. The zero value uses
// [DefaultEpipolarThreshold].
type ErrorEngine struct {
	// EpipolarThreshold is the angle, in radians, that the first view's
	// tangent must strictly exceed relative to its epipolar line.
	EpipolarThreshold float64
}

func (eng ErrorEngine) threshold() float64 {
	if eng.EpipolarThreshold == 0 {
		return DefaultEpipolarThreshold
	}
	return eng.EpipolarThreshold
}

// ComputeErrors is Compute with the default engine.
func ComputeErrors(views Correspondences, cams []Camera, rig *Rig) (*ReprojectionErrors, error) {
	return ErrorEngine{}.Compute(views, cams, rig)
}

// Compute scores every correspondence. cams holds one camera per view; rig is
// built from the cameras of views 0 and 1.
//
// A correspondence is skipped, contributing to no channel, when its
// reconstruction reprojects degenerately into view 2 or when its view-0
// tangent is within the epipolar threshold of the epipolar line.
func (eng ErrorEngine) Compute(views Correspondences, cams []Camera, rig *Rig) (*ReprojectionErrors, error) {
	if err := views.Validate(); err != nil {
		return nil, err
	}
	if len(cams) != len(views) {
		return nil, fmt.Errorf("got %d cameras for %d views: %w", len(cams), len(views), ErrCameraCount)
	}
	if rig == nil {
		return nil, ErrNilRig
	}

	thresh := eng.threshold()
	n := views.Len()
	out := &ReprojectionErrors{
		PositionSq:    make([]float64, 0, n),
		Tangent:       make([]float64, 0, n),
		Curvature:     make([]float64, 0, n),
		CurvatureRate: make([]float64, 0, n),
		ValidIndices:  make([]int, 0, n),
	}
	third := &cams[2]
	for i := range n {
		p0 := views[0][i]
		rec := rig.ReconstructImage(p0, views[1][i])
		reproj, ok := third.Project(rec)
		if !ok || !(rig.EpipolarAngle(p0) > thresh) {
			continue
		}

		gt := views[2][i]
		out.ValidIndices = append(out.ValidIndices, i)
		out.PositionSq = append(out.PositionSq, reproj.Position.DistanceSquared(gt.Position))
		out.Tangent = append(out.Tangent, TangentError(reproj.Tangent, gt.Tangent))
		out.Curvature = append(out.Curvature, math.Abs(reproj.Curvature-gt.Curvature))
		out.CurvatureRate = append(out.CurvatureRate, math.Abs(reproj.CurvatureRate-gt.CurvatureRate))
	}
	return out, nil
}

// TangentError returns the unsigned angle between unit tangents a and b, in
// [0, π]. The dot product is clamped so that rounding past ±1 cannot produce
// NaN.
func TangentError(a, b Vec2) float64 {
	return math.Acos(clampUnit(a.Dot(b)))
}

func clampUnit(x float64) float64 {
	return math.Max(-1, math.Min(1, x))
}
