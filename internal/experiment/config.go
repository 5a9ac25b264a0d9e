package experiment

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/golang/geo/r3"
	"gopkg.in/yaml.v3"

	"honnef.co/go/multiview"
)

// ErrInvalidConfig is wrapped by every validation error.
var ErrInvalidConfig = errors.New("invalid configuration")

// maxConfigSize bounds the size of configuration files read by Load.
const maxConfigSize = 1 << 20

// Camera layouts.
const (
	LayoutSpherical = "spherical"
	LayoutTurntable = "turntable"
)

// Config describes an experiment: how cameras are placed, which curves are
// observed and how the observations are scored. Angles are in degrees.
type Config struct {
	Seed   uint64 `yaml:"seed" json:"seed"`
	Trials int    `yaml:"trials" json:"trials"`
	// Parallelism limits the number of trials run at once. Zero means no
	// limit.
	Parallelism int `yaml:"parallelism" json:"parallelism"`

	Layout string `yaml:"layout" json:"layout"`
	Views  int    `yaml:"views" json:"views"`
	// Distance is the distance of the cameras from the origin.
	Distance float64 `yaml:"distance" json:"distance"`

	MinSeparationDeg  float64 `yaml:"min_separation_deg" json:"min_separation_deg"`
	EnforceSeparation bool    `yaml:"enforce_separation" json:"enforce_separation"`
	Perturb           bool    `yaml:"perturb" json:"perturb"`
	DirectionSigma    float64 `yaml:"direction_sigma" json:"direction_sigma"`
	DistanceSigma     float64 `yaml:"distance_sigma" json:"distance_sigma"`
	MaxTrials         int     `yaml:"max_trials" json:"max_trials"`

	// TurntableStepDeg is the rotation between consecutive turntable
	// frames.
	TurntableStepDeg float64 `yaml:"turntable_step_deg" json:"turntable_step_deg"`

	EpipolarThresholdDeg float64 `yaml:"epipolar_threshold_deg" json:"epipolar_threshold_deg"`

	Calibration CalibrationConfig `yaml:"calibration" json:"calibration"`
	Curves      []CurveConfig     `yaml:"curves" json:"curves"`
	Noise       NoiseConfig       `yaml:"noise" json:"noise"`
}

// CalibrationConfig holds camera intrinsics in pixels.
type CalibrationConfig struct {
	Fx   float64 `yaml:"fx" json:"fx"`
	Fy   float64 `yaml:"fy" json:"fy"`
	Cx   float64 `yaml:"cx" json:"cx"`
	Cy   float64 `yaml:"cy" json:"cy"`
	Skew float64 `yaml:"skew" json:"skew"`
}

func (c CalibrationConfig) Calibration() multiview.Calibration {
	return multiview.Calibration{Fx: c.Fx, Fy: c.Fy, Cx: c.Cx, Cy: c.Cy, Skew: c.Skew}
}

// NoiseConfig describes Gaussian noise added to the image observations
// before scoring.
type NoiseConfig struct {
	PositionSigma   float64 `yaml:"position_sigma" json:"position_sigma"`
	TangentSigmaDeg float64 `yaml:"tangent_sigma_deg" json:"tangent_sigma_deg"`
}

func (n NoiseConfig) enabled() bool {
	return n.PositionSigma > 0 || n.TangentSigmaDeg > 0
}

// Curve kinds.
const (
	KindCircle  = "circle"
	KindHelix   = "helix"
	KindEllipse = "ellipse"
	KindLine    = "line"
)

// CurveConfig describes one analytic space curve and how it is sampled.
//
// Circles, helices and ellipses are sampled by angle: Start, Step and Span
// are in degrees. Lines are sampled by length from Center along Direction.
// Vectors are given as three numbers; an empty Axis is the z axis.
type CurveConfig struct {
	Kind      string    `yaml:"kind" json:"kind"`
	Radius    float64   `yaml:"radius,omitempty" json:"radius,omitempty"`
	Pitch     float64   `yaml:"pitch,omitempty" json:"pitch,omitempty"`
	A         float64   `yaml:"a,omitempty" json:"a,omitempty"`
	B         float64   `yaml:"b,omitempty" json:"b,omitempty"`
	Center    []float64 `yaml:"center,omitempty" json:"center,omitempty"`
	Axis      []float64 `yaml:"axis,omitempty" json:"axis,omitempty"`
	Direction []float64 `yaml:"direction,omitempty" json:"direction,omitempty"`
	Start     float64   `yaml:"start" json:"start"`
	Step      float64   `yaml:"step" json:"step"`
	Span      float64   `yaml:"span" json:"span"`
}

// Defaults returns the reference configuration: one trial of three
// spherically sampled cameras, separated by at least 15°, observing a helix,
// a tilted ellipse and a circle.
func Defaults() Config {
	return Config{
		Seed:                 1,
		Trials:               1,
		Layout:               LayoutSpherical,
		Views:                3,
		Distance:             multiview.DefaultCameraDistance,
		MinSeparationDeg:     15,
		EnforceSeparation:    true,
		DirectionSigma:       multiview.DefaultDirectionSigma,
		DistanceSigma:        multiview.DefaultDistanceSigma,
		MaxTrials:            multiview.DefaultMaxTrials,
		TurntableStepDeg:     5,
		EpipolarThresholdDeg: 30,
		Calibration: CalibrationConfig{
			Fx: 2000,
			Fy: 2000,
			Cx: 640,
			Cy: 480,
		},
		Curves: []CurveConfig{
			{Kind: KindHelix, Radius: 100, Pitch: 150, Center: []float64{0, 0, -150}, Step: 5, Span: 720},
			{Kind: KindEllipse, A: 200, B: 120, Axis: []float64{1, 0.5, 1}, Step: 5, Span: 360},
			{Kind: KindCircle, Radius: 60, Center: []float64{50, 80, 0}, Axis: []float64{0, 1, 0}, Step: 10, Span: 360},
		},
	}
}

// Load reads a YAML configuration file. Keys missing from the file keep
// their default values.
func Load(path string) (Config, error) {
	clean := filepath.Clean(path)
	info, err := os.Stat(clean)
	if err != nil {
		return Config{}, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.Size() > maxConfigSize {
		return Config{}, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigSize)
	}
	data, err := os.ReadFile(clean)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML configuration. Unknown keys are
// rejected. An empty document yields the defaults.
func Parse(data []byte) (Config, error) {
	cfg := Defaults()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to parse config YAML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Marshal encodes the configuration as YAML.
func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}

// Validate checks that the configuration describes a runnable experiment.
func (c Config) Validate() error {
	if c.Trials < 1 {
		return invalid("trials must be positive, got %d", c.Trials)
	}
	if c.Parallelism < 0 {
		return invalid("parallelism must not be negative, got %d", c.Parallelism)
	}
	switch c.Layout {
	case LayoutSpherical, LayoutTurntable:
	default:
		return invalid("unknown layout %q", c.Layout)
	}
	if c.Views < 3 {
		return invalid("at least 3 views are required, got %d", c.Views)
	}
	if !(c.Distance > 0) || math.IsInf(c.Distance, 0) {
		return invalid("distance must be positive and finite, got %g", c.Distance)
	}
	if c.MinSeparationDeg < 0 || c.MinSeparationDeg > 90 {
		return invalid("min_separation_deg must be in [0, 90], got %g", c.MinSeparationDeg)
	}
	if c.DirectionSigma < 0 || c.DistanceSigma < 0 {
		return invalid("perturbation sigmas must not be negative")
	}
	if c.EnforceSeparation && c.MaxTrials < 1 {
		return invalid("max_trials must be positive, got %d", c.MaxTrials)
	}
	if c.Layout == LayoutTurntable && c.TurntableStepDeg == 0 {
		return invalid("turntable_step_deg must not be zero")
	}
	if !(c.EpipolarThresholdDeg > 0 && c.EpipolarThresholdDeg < 90) {
		return invalid("epipolar_threshold_deg must be in (0, 90), got %g", c.EpipolarThresholdDeg)
	}
	if err := c.Calibration.Calibration().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if c.Noise.PositionSigma < 0 || c.Noise.TangentSigmaDeg < 0 {
		return invalid("noise sigmas must not be negative")
	}
	if len(c.Curves) == 0 {
		return invalid("no curves")
	}
	for i, cc := range c.Curves {
		if err := cc.Validate(); err != nil {
			return fmt.Errorf("curve %d: %w", i, err)
		}
	}
	return nil
}

func vector(v []float64) r3.Vector {
	if len(v) != 3 {
		return r3.Vector{}
	}
	return r3.Vector{X: v[0], Y: v[1], Z: v[2]}
}

// Validate checks the curve's parameters for its kind.
func (c CurveConfig) Validate() error {
	for name, v := range map[string][]float64{"center": c.Center, "axis": c.Axis, "direction": c.Direction} {
		if len(v) != 0 && len(v) != 3 {
			return invalid("%s must have 3 components, got %d", name, len(v))
		}
	}
	if !(c.Step > 0) {
		return invalid("step must be positive, got %g", c.Step)
	}
	if !(c.Span > 0) {
		return invalid("span must be positive, got %g", c.Span)
	}
	switch c.Kind {
	case KindCircle, KindHelix:
		if !(c.Radius > 0) {
			return invalid("%s radius must be positive, got %g", c.Kind, c.Radius)
		}
	case KindEllipse:
		if !(c.A > 0 && c.B > 0) {
			return invalid("ellipse semi-axes must be positive, got %g and %g", c.A, c.B)
		}
	case KindLine:
		if vector(c.Direction).Norm() == 0 {
			return invalid("line direction must be non-zero")
		}
	default:
		return invalid("unknown curve kind %q", c.Kind)
	}
	return nil
}

// Curve returns the analytic curve described by c.
func (c CurveConfig) Curve() (multiview.Curve, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	center, axis := vector(c.Center), vector(c.Axis)
	switch c.Kind {
	case KindCircle:
		return multiview.Circle3D{Radius: c.Radius, Center: center, Axis: axis}, nil
	case KindHelix:
		return multiview.Helix{Radius: c.Radius, Pitch: c.Pitch, Center: center, Axis: axis}, nil
	case KindEllipse:
		return multiview.Ellipse3D{A: c.A, B: c.B, Center: center, Axis: axis}, nil
	case KindLine:
		return multiview.Line3D{Origin: center, Direction: vector(c.Direction)}, nil
	}
	panic("unreachable")
}

// Sample returns the samples of the curve described by c.
func (c CurveConfig) Sample() ([]multiview.DifferentialPoint3D, error) {
	crv, err := c.Curve()
	if err != nil {
		return nil, err
	}
	return crv.Sample(c.Start, c.Step, c.Span), nil
}

// SampleCurves samples every configured curve, in order.
func (c Config) SampleCurves() ([][]multiview.DifferentialPoint3D, error) {
	out := make([][]multiview.DifferentialPoint3D, len(c.Curves))
	for i, cc := range c.Curves {
		pts, err := cc.Sample()
		if err != nil {
			return nil, fmt.Errorf("curve %d: %w", i, err)
		}
		out[i] = pts
	}
	return out, nil
}

func (c Config) samplerOptions() []multiview.SamplerOption {
	opts := []multiview.SamplerOption{
		multiview.WithDistance(c.Distance),
		multiview.WithMaxTrials(c.MaxTrials),
	}
	if c.EnforceSeparation {
		opts = append(opts, multiview.WithSeparation(c.MinSeparationDeg*math.Pi/180))
	}
	if c.Perturb {
		opts = append(opts, multiview.WithPerturbation(c.DirectionSigma, c.DistanceSigma))
	}
	return opts
}
