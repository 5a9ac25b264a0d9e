package multiview

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ChannelMax is the largest error of one channel together with the index of
// the correspondence it belongs to. Index is -1 when nothing was scored.
type ChannelMax struct {
	Value float64
	Index int
}

// MaxSummary holds the worst error of every channel.
type MaxSummary struct {
	// Position is a pixel distance, not a squared one.
	Position      ChannelMax
	Tangent       ChannelMax
	Curvature     ChannelMax
	CurvatureRate ChannelMax
	// Valid is the number of scored correspondences.
	Valid int
}

// MaxErrors returns the worst error of every channel. Ties go to the
// correspondence scored first.
func MaxErrors(e *ReprojectionErrors) MaxSummary {
	pos := channelMax(e.PositionSq, e.ValidIndices)
	if pos.Index >= 0 {
		pos.Value = math.Sqrt(pos.Value)
	}
	return MaxSummary{
		Position:      pos,
		Tangent:       channelMax(e.Tangent, e.ValidIndices),
		Curvature:     channelMax(e.Curvature, e.ValidIndices),
		CurvatureRate: channelMax(e.CurvatureRate, e.ValidIndices),
		Valid:         len(e.ValidIndices),
	}
}

func channelMax(vals []float64, valid []int) ChannelMax {
	if len(vals) == 0 {
		return ChannelMax{Index: -1}
	}
	// floats.MaxIdx returns the first of equal maxima.
	i := floats.MaxIdx(vals)
	return ChannelMax{Value: vals[i], Index: valid[i]}
}

// ChannelStats summarizes one error channel.
type ChannelStats struct {
	Mean   float64
	StdDev float64
	Median float64
	RMS    float64
}

// Stats summarizes every channel. The position channel is summarized as
// pixel distances.
type Stats struct {
	Position      ChannelStats
	Tangent       ChannelStats
	Curvature     ChannelStats
	CurvatureRate ChannelStats
	Valid         int
}

// Describe returns summary statistics of every channel. Channels of an empty
// result are all zero.
func Describe(e *ReprojectionErrors) Stats {
	pos := make([]float64, len(e.PositionSq))
	for i, d2 := range e.PositionSq {
		pos[i] = math.Sqrt(d2)
	}
	return Stats{
		Position:      describe(pos),
		Tangent:       describe(e.Tangent),
		Curvature:     describe(e.Curvature),
		CurvatureRate: describe(e.CurvatureRate),
		Valid:         len(e.ValidIndices),
	}
}

func describe(vals []float64) ChannelStats {
	if len(vals) == 0 {
		return ChannelStats{}
	}
	var s ChannelStats
	if len(vals) == 1 {
		s.Mean = vals[0]
	} else {
		s.Mean, s.StdDev = stat.MeanStdDev(vals, nil)
	}
	sorted := slices.Clone(vals)
	slices.Sort(sorted)
	s.Median = stat.Quantile(0.5, stat.Empirical, sorted, nil)
	s.RMS = math.Sqrt(floats.Dot(vals, vals) / float64(len(vals)))
	return s
}
