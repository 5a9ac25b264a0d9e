package multiview

import (
	"math"

	"github.com/golang/geo/r3"
)

// CameraSet is an ordered collection of cameras; a camera's index is its
// view index. The set owns its cameras, and rigs built from it borrow them.
type CameraSet []Camera

// Rig returns the rig formed by views i and j.
func (s CameraSet) Rig(i, j int) *Rig {
	return NewRig(&s[i], &s[j])
}

// Centers returns the camera centers in view order.
func (s CameraSet) Centers() []r3.Vector {
	out := make([]r3.Vector, len(s))
	for i := range s {
		out[i] = s[i].Center
	}
	return out
}

// MinSeparation returns the smallest angle between the negated viewing
// directions of two cameras, or between one and the antipode of another. It
// returns π/2 for fewer than two cameras.
func (s CameraSet) MinSeparation() float64 {
	minSep := math.Pi / 2
	for i := range s {
		for j := i + 1; j < len(s); j++ {
			a := s[i].Axis().Mul(-1).Angle(s[j].Axis().Mul(-1)).Radians()
			minSep = math.Min(minSep, math.Min(a, math.Pi-a))
		}
	}
	return minSep
}
