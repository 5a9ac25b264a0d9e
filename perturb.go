package multiview

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// PerturbPoints returns a copy of points with zero-mean Gaussian noise added:
// posSigma pixels to each position coordinate and tanSigma radians to each
// tangent angle. Tangents stay unit length; curvature and curvature rate are
// left unchanged.
func PerturbPoints(points []DifferentialPoint2D, posSigma, tanSigma float64, src rand.Source) []DifferentialPoint2D {
	pos := distuv.Normal{Mu: 0, Sigma: posSigma, Src: src}
	ang := distuv.Normal{Mu: 0, Sigma: tanSigma, Src: src}
	out := make([]DifferentialPoint2D, len(points))
	for i, p := range points {
		if posSigma > 0 {
			p.Position = p.Position.Translate(Vec(pos.Rand(), pos.Rand()))
		}
		if tanSigma > 0 {
			p.Tangent = VecFromAngle(p.Tangent.Angle() + ang.Rand())
		}
		out[i] = p
	}
	return out
}

// PerturbViews applies [PerturbPoints] to every view of c.
func PerturbViews(c Correspondences, posSigma, tanSigma float64, src rand.Source) Correspondences {
	out := make(Correspondences, len(c))
	for v := range c {
		out[v] = PerturbPoints(c[v], posSigma, tanSigma, src)
	}
	return out
}
