package multiview

import (
	"github.com/golang/geo/r3"
)

// ProjectIntoCameras projects every sample of every curve into every camera.
// The curves are concatenated in order, so that index k of every view refers
// to the k-th sample overall.
//
// Degenerate projections are kept, zero-filled, to preserve the indexing;
// the error engine filters them on reprojection.
func ProjectIntoCameras(curves [][]DifferentialPoint3D, cams []Camera) Correspondences {
	npts := 0
	for _, c := range curves {
		npts += len(c)
	}
	out := make(Correspondences, len(cams))
	for v := range cams {
		view := make([]DifferentialPoint2D, 0, npts)
		for _, c := range curves {
			for _, p := range c {
				q, _ := cams[v].Project(p)
				view = append(view, q)
			}
		}
		out[v] = view
	}
	return out
}

// ProjectWithoutEpitangency is like [ProjectIntoCameras] but drops, from
// every view, the samples whose first-view tangent is within threshold
// radians of the epipolar line of the rig formed by the first two cameras.
func ProjectWithoutEpitangency(curves [][]DifferentialPoint3D, cams []Camera, threshold float64) Correspondences {
	all := ProjectIntoCameras(curves, cams)
	out := make(Correspondences, len(cams))
	if len(cams) < 2 {
		return all
	}
	rig := NewRig(&cams[0], &cams[1])
	for i, p := range all[0] {
		if rig.EpipolarAngle(p) > threshold {
			for v := range cams {
				out[v] = append(out[v], all[v][i])
			}
		}
	}
	return out
}

// ProjectPositions projects points into every camera, ignoring differential
// geometry. The result is indexed by view, then by point. Points behind a
// camera project to the zero point.
func ProjectPositions(points []r3.Vector, cams []Camera) [][]Point {
	out := make([][]Point, len(cams))
	for v := range cams {
		out[v] = make([]Point, len(points))
		for i, x := range points {
			out[v][i], _ = cams[v].ProjectPoint(x)
		}
	}
	return out
}

// Positions returns the positions of all samples of curves, concatenated in
// order.
func Positions(curves [][]DifferentialPoint3D) []r3.Vector {
	var out []r3.Vector
	for _, c := range curves {
		for _, p := range c {
			out = append(out, p.Position)
		}
	}
	return out
}

// PointAt returns the position of the i-th sample of the concatenated
// curves. It reports false if i is out of range.
func PointAt(curves [][]DifferentialPoint3D, i int) (r3.Vector, bool) {
	if i < 0 {
		return r3.Vector{}, false
	}
	for _, c := range curves {
		if i < len(c) {
			return c[i].Position, true
		}
		i -= len(c)
	}
	return r3.Vector{}, false
}
