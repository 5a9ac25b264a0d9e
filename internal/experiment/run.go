// Package experiment runs reprojection-error experiments described by a
// Config: for every trial it places cameras, observes the configured curves
// and scores reconstruction from the first two views against the third.
package experiment

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"honnef.co/go/multiview"
)

// noiseStream separates the observation noise generator from the camera
// sampler's generator for the same seed.
const noiseStream = 0x6a09e667f3bcc909

// Report is the outcome of a run.
type Report struct {
	RunID  uuid.UUID     `json:"run_id"`
	Trials []TrialReport `json:"trials"`
}

// TrialReport is the outcome of one trial.
type TrialReport struct {
	Trial int    `json:"trial"`
	Seed  uint64 `json:"seed"`
	// Cameras is the number of cameras placed. It is less than the
	// configured number of views if Exhausted is set.
	Cameras          int     `json:"cameras"`
	Exhausted        bool    `json:"exhausted"`
	Skipped          bool    `json:"skipped"`
	MinSeparationDeg float64 `json:"min_separation_deg"`
	Correspondences  int     `json:"correspondences"`

	Max   multiview.MaxSummary `json:"max"`
	Stats multiview.Stats      `json:"stats"`
}

// Run executes every trial of cfg. Trials run concurrently and share
// nothing but the sampled curves, which are read-only.
//
// A trial whose camera sampler runs out of draws is recorded as exhausted; it
// is skipped if fewer than three cameras were placed. Any other error aborts
// the run.
func Run(ctx context.Context, cfg Config, logger *Logger) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = NoopLogger()
	}
	curves, err := cfg.SampleCurves()
	if err != nil {
		return nil, err
	}
	samples := len(multiview.Positions(curves))

	report := &Report{
		RunID:  uuid.New(),
		Trials: make([]TrialReport, cfg.Trials),
	}
	logger = logger.WithRunID(report.RunID)
	logger.LogRunStart(ctx, cfg, samples)

	g, ctx := errgroup.WithContext(ctx)
	if cfg.Parallelism > 0 {
		g.SetLimit(cfg.Parallelism)
	}
	for i := range cfg.Trials {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			seed := cfg.Seed + uint64(i)
			tr, err := runTrial(ctx, cfg, curves, i, seed, logger.WithTrial(i, seed))
			if err != nil {
				return fmt.Errorf("trial %d: %w", i, err)
			}
			report.Trials[i] = tr
			return nil
		})
	}
	err = g.Wait()
	logger.LogRunDone(ctx, report, err)
	if err != nil {
		return nil, err
	}
	return report, nil
}

func placeCameras(cfg Config, seed uint64) (multiview.CameraSet, error) {
	k := cfg.Calibration.Calibration()
	if cfg.Layout == LayoutTurntable {
		angles := make([]float64, cfg.Views)
		for i := range angles {
			angles[i] = float64(i) * cfg.TurntableStepDeg
		}
		return multiview.TurntableCameras(k, angles, cfg.Distance), nil
	}
	return multiview.NewSphericalSampler(k, seed, cfg.samplerOptions()...).Sample(cfg.Views)
}

func runTrial(ctx context.Context, cfg Config, curves [][]multiview.DifferentialPoint3D, trial int, seed uint64, logger *Logger) (TrialReport, error) {
	tr := TrialReport{Trial: trial, Seed: seed}

	cams, err := placeCameras(cfg, seed)
	if err != nil {
		if !errors.Is(err, multiview.ErrSeparationExhausted) {
			return tr, err
		}
		tr.Exhausted = true
		logger.LogExhausted(ctx, len(cams), cfg.Views, err)
	}
	tr.Cameras = len(cams)
	tr.MinSeparationDeg = cams.MinSeparation() * 180 / math.Pi
	if len(cams) < 3 {
		tr.Skipped = true
		logger.LogTrial(ctx, tr)
		return tr, nil
	}

	views := multiview.ProjectIntoCameras(curves, cams)
	if cfg.Noise.enabled() {
		src := rand.NewPCG(seed, seed^noiseStream)
		views = multiview.PerturbViews(views, cfg.Noise.PositionSigma, cfg.Noise.TangentSigmaDeg*math.Pi/180, src)
	}
	tr.Correspondences = views.Len()

	eng := multiview.ErrorEngine{EpipolarThreshold: cfg.EpipolarThresholdDeg * math.Pi / 180}
	errs, err := eng.Compute(views, cams, cams.Rig(0, 1))
	if err != nil {
		return tr, err
	}
	tr.Max = multiview.MaxErrors(errs)
	tr.Stats = multiview.Describe(errs)
	logger.LogTrial(ctx, tr)
	return tr, nil
}
