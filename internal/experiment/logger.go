package experiment

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
)

// Logger wraps slog.Logger with experiment-specific fields.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses a text handler to stderr at info level.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that writes human-readable text to w.
func NewTextLogger(w io.Writer, level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// NewJSONLogger creates a Logger that writes JSON records to w.
func NewJSONLogger(w io.Writer, level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// NoopLogger creates a Logger that discards all output.
func NoopLogger() *Logger {
	return NewLogger(slog.DiscardHandler)
}

// ParseLevel parses a level name such as "debug" or "warn".
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	err := l.UnmarshalText([]byte(s))
	return l, err
}

// WithRunID adds the run ID to every record.
func (l *Logger) WithRunID(id uuid.UUID) *Logger {
	return &Logger{
		Logger: l.Logger.With("run_id", id.String()),
	}
}

// WithTrial adds the trial number and its seed to every record.
func (l *Logger) WithTrial(trial int, seed uint64) *Logger {
	return &Logger{
		Logger: l.Logger.With("trial", trial, "seed", seed),
	}
}

// LogRunStart logs the start of a run.
func (l *Logger) LogRunStart(ctx context.Context, cfg Config, samples int) {
	l.InfoContext(ctx, "run started",
		"trials", cfg.Trials,
		"layout", cfg.Layout,
		"views", cfg.Views,
		"curves", len(cfg.Curves),
		"samples", samples,
	)
}

// LogRunDone logs the end of a run.
func (l *Logger) LogRunDone(ctx context.Context, r *Report, err error) {
	if err != nil {
		l.ErrorContext(ctx, "run failed", "error", err)
		return
	}
	var skipped int
	for _, tr := range r.Trials {
		if tr.Skipped {
			skipped++
		}
	}
	l.InfoContext(ctx, "run completed",
		"trials", len(r.Trials),
		"skipped", skipped,
	)
}

// LogExhausted logs a camera sampler that ran out of trials.
func (l *Logger) LogExhausted(ctx context.Context, accepted, requested int, err error) {
	l.WarnContext(ctx, "camera separation exhausted",
		"accepted", accepted,
		"requested", requested,
		"error", err,
	)
}

// LogTrial logs the outcome of one trial.
func (l *Logger) LogTrial(ctx context.Context, tr TrialReport) {
	if tr.Skipped {
		l.WarnContext(ctx, "trial skipped",
			"cameras", tr.Cameras,
		)
		return
	}
	l.DebugContext(ctx, "trial completed",
		"cameras", tr.Cameras,
		"correspondences", tr.Correspondences,
		"valid", tr.Max.Valid,
		"max_position", tr.Max.Position.Value,
		"max_tangent", tr.Max.Tangent.Value,
		"max_curvature", tr.Max.Curvature.Value,
		"max_curvature_rate", tr.Max.CurvatureRate.Value,
	)
}
