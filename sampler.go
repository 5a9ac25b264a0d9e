package multiview

import (
	"errors"
	"math"
	"math/rand/v2"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/stat/distuv"
)

// Reference parameters of the spherical camera sampler.
const (
	DefaultCameraDistance = 1.128036301860739e+03
	DefaultDirectionSigma = 0.01
	DefaultDistanceSigma  = 10
	DefaultMinSeparation  = 15 * math.Pi / 180
	DefaultMaxTrials      = 100000
)

// SphericalSampler places cameras on a sphere around the origin, each looking
// approximately at the origin, by rejection sampling.
//
// A sampler owns its random number generator. Two samplers created with the
// same seed and options produce the same cameras.
type SphericalSampler struct {
	calibration    Calibration
	distance       float64
	directionSigma float64
	distanceSigma  float64
	minSeparation  float64
	enforce        bool
	perturb        bool
	maxTrials      int

	normal distuv.Normal
}

// A SamplerOption configures a [SphericalSampler].
type SamplerOption func(*SphericalSampler)

// WithSeparation enforces a minimum angular separation, in radians, between
// the directions of any two cameras, and between any direction and the
// antipode of another.
func WithSeparation(minSep float64) SamplerOption {
	return func(s *SphericalSampler) {
		s.enforce = true
		s.minSeparation = minSep
	}
}

// WithPerturbation adds zero-mean Gaussian noise with standard deviation
// directionSigma to each component of the viewing direction and with
// standard deviation distanceSigma to the camera distance.
func WithPerturbation(directionSigma, distanceSigma float64) SamplerOption {
	return func(s *SphericalSampler) {
		s.perturb = true
		s.directionSigma = directionSigma
		s.distanceSigma = distanceSigma
	}
}

// WithDistance sets the unperturbed distance of the cameras from the origin.
func WithDistance(d float64) SamplerOption {
	return func(s *SphericalSampler) {
		s.distance = d
	}
}

// WithMaxTrials sets how many consecutive rejected draws are tolerated before
// sampling gives up with [ErrSeparationExhausted].
func WithMaxTrials(n int) SamplerOption {
	return func(s *SphericalSampler) {
		s.maxTrials = n
	}
}

// NewSphericalSampler returns a sampler whose cameras share the calibration
// k. Without options, cameras are neither separated nor perturbed.
func NewSphericalSampler(k Calibration, seed uint64, opts ...SamplerOption) *SphericalSampler {
	s := &SphericalSampler{
		calibration:    k,
		distance:       DefaultCameraDistance,
		directionSigma: DefaultDirectionSigma,
		distanceSigma:  DefaultDistanceSigma,
		minSeparation:  DefaultMinSeparation,
		maxTrials:      DefaultMaxTrials,
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	s.normal = distuv.Normal{Mu: 0, Sigma: 1, Src: rng}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SampleCameras samples count cameras with calibration k. minSep is only
// used when enforce is set; perturbation uses the reference noise levels.
func SampleCameras(k Calibration, count int, minSep float64, enforce, perturb bool, seed uint64) (CameraSet, error) {
	var opts []SamplerOption
	if enforce {
		opts = append(opts, WithSeparation(minSep))
	}
	if perturb {
		opts = append(opts, WithPerturbation(DefaultDirectionSigma, DefaultDistanceSigma))
	}
	return NewSphericalSampler(k, seed, opts...).Sample(count)
}

// Sample draws n cameras.
//
// If the separation constraint cannot be met within the trial budget, Sample
// returns the cameras placed so far, which still satisfy the constraint,
// together with a [*SeparationExhaustedError]. An [ErrInvariantViolation]
// error means a bug; the returned cameras must not be used.
func (s *SphericalSampler) Sample(n int) (CameraSet, error) {
	cams := make(CameraSet, 0, n)
	for len(cams) < n {
		cam, err := s.next(cams)
		if err != nil {
			var ex *SeparationExhaustedError
			if errors.As(err, &ex) {
				ex.Requested = n
				ex.Accepted = len(cams)
			}
			return cams, err
		}
		cams = append(cams, cam)
	}
	return cams, nil
}

// direction is one draw of the sampler: the point r on the unit sphere that
// places the camera and the possibly perturbed viewing direction z.
type direction struct {
	r, z r3.Vector
}

func (s *SphericalSampler) draw() direction {
	r := s.unitVector()
	z := r.Mul(-1)
	if s.perturb {
		z = z.Add(r3.Vector{
			X: s.gauss(s.directionSigma),
			Y: s.gauss(s.directionSigma),
			Z: s.gauss(s.directionSigma),
		}).Normalize()
	}
	return direction{r: r, z: z}
}

func (s *SphericalSampler) next(existing CameraSet) (Camera, error) {
	var d direction
	if s.enforce {
		var err error
		d, err = boundedDraw(s.maxTrials, func() (direction, bool, error) {
			d := s.draw()
			ok, err := s.separated(d.z.Mul(-1), existing)
			return d, ok, err
		})
		if err != nil {
			return Camera{}, err
		}
	} else {
		d = s.draw()
	}

	dist := s.distance
	if s.perturb {
		dist += s.gauss(s.distanceSigma)
	}
	// The center is placed along the unperturbed direction r.
	center := d.r.Mul(dist)

	z := d.z
	x := s.unitVector()
	x = x.Sub(z.Mul(x.Dot(z))).Normalize()
	y := z.Cross(x)
	rot := Rotation{X: x, Y: y, Z: z}
	if !rot.IsEuclidean(EuclideanTolerance) {
		return Camera{}, invariantf("sampled camera rotation %v is not Euclidean", rot)
	}
	return Camera{Calibration: s.calibration, Rotation: rot, Center: center}, nil
}

// separated reports whether dir keeps the minimum separation from the center
// direction of every camera in cams, and from its antipode.
func (s *SphericalSampler) separated(dir r3.Vector, cams CameraSet) (bool, error) {
	for i := range cams {
		a := dir.Angle(cams[i].Center.Normalize()).Radians()
		if !(a >= 0 && a <= math.Pi) {
			return false, invariantf("angular distance %g outside [0, π]", a)
		}
		if a < s.minSeparation || math.Pi-a < s.minSeparation {
			return false, nil
		}
	}
	return true, nil
}

func (s *SphericalSampler) unitVector() r3.Vector {
	for {
		v := r3.Vector{X: s.normal.Rand(), Y: s.normal.Rand(), Z: s.normal.Rand()}
		if n := v.Norm(); n > 0 {
			return v.Mul(1 / n)
		}
	}
}

func (s *SphericalSampler) gauss(sigma float64) float64 {
	return sigma * s.normal.Rand()
}

// boundedDraw calls draw until it accepts a candidate. It gives up with a
// *SeparationExhaustedError once more than maxTrials draws have been made
// without acceptance. Errors from draw are returned immediately.
func boundedDraw[T any](maxTrials int, draw func() (T, bool, error)) (T, error) {
	for trials := 1; ; trials++ {
		v, ok, err := draw()
		if err != nil {
			var zero T
			return zero, err
		}
		if ok {
			return v, nil
		}
		if trials > maxTrials {
			var zero T
			return zero, &SeparationExhaustedError{Trials: trials}
		}
	}
}
