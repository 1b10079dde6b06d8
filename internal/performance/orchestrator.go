// Package performance ties the calculation core together: it routes a
// score through ban lookups, beatmap suspicion analysis, the configured
// calculator backend, and the analytic fallback model, and exposes the
// fetch-then-calculate pipeline used by score submission.
package performance

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/googuteam/scorepp/internal/banstore"
	"github.com/googuteam/scorepp/internal/calculator"
	"github.com/googuteam/scorepp/internal/config"
	"github.com/googuteam/scorepp/internal/observability"
	"github.com/googuteam/scorepp/internal/scoring"
	"github.com/googuteam/scorepp/internal/suspicion"
)

// MaxSanePP is the highest PP value a backend result may carry. Anything
// above it is treated as a miscalculation and discarded.
const MaxSanePP = 3000

// Orchestrator decides how a single score is rated: rejected because its
// beatmap is banned or suspicious, calculated by the backend, or estimated
// by the fallback model when the backend does not support the game mode.
type Orchestrator struct {
	calc     calculator.Calculator
	analyzer *suspicion.Analyzer
	bans     banstore.Store
	metrics  *observability.Metrics
	tracer   *observability.Tracer
	logger   observability.Logger

	mu     sync.RWMutex
	checks config.ChecksConfig
}

// OrchestratorOption is a functional option for the orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithMetrics attaches a metrics recorder.
func WithMetrics(m *observability.Metrics) OrchestratorOption {
	return func(o *Orchestrator) {
		o.metrics = m
	}
}

// WithTracer attaches a tracer.
func WithTracer(t *observability.Tracer) OrchestratorOption {
	return func(o *Orchestrator) {
		o.tracer = t
	}
}

// WithLogger overrides the logger.
func WithLogger(logger observability.Logger) OrchestratorOption {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// NewOrchestrator creates an orchestrator over the given backend, suspicion
// analyzer, and ban store.
func NewOrchestrator(
	calc calculator.Calculator,
	analyzer *suspicion.Analyzer,
	bans banstore.Store,
	checks config.ChecksConfig,
	opts ...OrchestratorOption,
) *Orchestrator {
	o := &Orchestrator{
		calc:     calc,
		analyzer: analyzer,
		bans:     bans,
		checks:   checks,
		logger:   observability.NopLogger(),
	}

	for _, opt := range opts {
		opt(o)
	}

	return o
}

// SetChecks replaces the check flags. It is called on configuration
// reloads and is safe for concurrent use with CalculatePP.
func (o *Orchestrator) SetChecks(checks config.ChecksConfig) {
	o.mu.Lock()
	o.checks = checks
	o.mu.Unlock()
}

func (o *Orchestrator) checksConfig() config.ChecksConfig {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.checks
}

// CalculatePP rates a score against the given raw beatmap content and
// returns its performance points. Banned and suspicious beatmaps yield
// zero, as do backend results above MaxSanePP. Ban-store and suspicion
// failures are logged and treated as clean so that a degraded store never
// blocks score submission.
func (o *Orchestrator) CalculatePP(ctx context.Context, score *scoring.Score, beatmapRaw string) (float64, error) {
	start := time.Now()

	pp, outcome, err := o.calculate(ctx, score, beatmapRaw)

	if o.metrics != nil {
		o.metrics.RecordCalculation(score.Mode.String(), outcome, time.Since(start).Seconds())
	}

	return pp, err
}

func (o *Orchestrator) calculate(ctx context.Context, score *scoring.Score, beatmapRaw string) (float64, string, error) {
	logger := o.logger.WithContext(ctx)
	checks := o.checksConfig()

	if checks.SuspiciousScoreCheck {
		banned, err := o.bans.Exists(ctx, score.BeatmapID)
		if err != nil {
			logger.Warn("ban lookup failed, treating beatmap as clean",
				observability.Int64("beatmapID", score.BeatmapID),
				observability.Error(err))
		} else if banned {
			logger.Info("skipping pp for banned beatmap",
				observability.Int64("beatmapID", score.BeatmapID),
				observability.Int64("scoreID", score.ID))
			return 0, observability.OutcomeBanned, nil
		}

		suspicious, err := o.checkSuspicious(ctx, beatmapRaw)
		if err != nil {
			return 0, observability.OutcomeError, err
		}
		if suspicious {
			o.banBeatmap(ctx, score.BeatmapID)
			logger.Info("beatmap flagged as suspicious",
				observability.Int64("beatmapID", score.BeatmapID),
				observability.Int64("scoreID", score.ID))
			return 0, observability.OutcomeSuspicious, nil
		}
	}

	canPerformance, err := o.calc.CanCalculatePerformance(ctx, score.Mode)
	if err != nil {
		return 0, observability.OutcomeError, err
	}

	var pp float64
	outcome := observability.OutcomeOK

	if canPerformance {
		pp, err = o.backendPP(ctx, score, beatmapRaw)
		if err != nil {
			return 0, observability.OutcomeError, err
		}

		if math.IsNaN(pp) || math.IsInf(pp, 0) || pp < 0 {
			logger.Warn("backend returned an unusable pp value",
				observability.Int64("scoreID", score.ID),
				observability.Float64("pp", pp))
			return 0, observability.OutcomeError, nil
		}
	} else {
		if !checks.FallbackPP {
			return 0, observability.OutcomeOK, nil
		}
		stars, err := o.starRating(ctx, score, beatmapRaw)
		if err != nil {
			return 0, observability.OutcomeError, err
		}
		pp = scoring.FallbackPP(score.TotalScore, stars)
		outcome = observability.OutcomeFallback
	}

	// A value this large means the backend (or the estimate) went off the
	// rails, not that the play was that good.
	if checks.SuspiciousScoreCheck && pp > MaxSanePP {
		logger.Warn("discarding implausible pp value",
			observability.Int64("scoreID", score.ID),
			observability.Int64("beatmapID", score.BeatmapID),
			observability.Float64("pp", pp),
			observability.Float64("accuracy", score.Accuracy))
		return 0, observability.OutcomeCapped, nil
	}

	return pp, outcome, nil
}

// checkSuspicious runs the suspicion analyzer over the raw beatmap.
// Analysis failures other than context cancellation are counted and
// treated as not suspicious.
func (o *Orchestrator) checkSuspicious(ctx context.Context, beatmapRaw string) (bool, error) {
	ctx, span := o.startSpan(ctx, "performance.suspicion")
	defer span.end()

	suspicious, err := o.analyzer.CheckRaw(ctx, beatmapRaw)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			span.recordError(err)
			return false, err
		}

		if o.metrics != nil {
			o.metrics.RecordSuspicionError()
		}
		o.logger.WithContext(ctx).Warn("suspicion analysis failed, treating beatmap as clean",
			observability.Error(err))
		return false, nil
	}

	return suspicious, nil
}

func (o *Orchestrator) banBeatmap(ctx context.Context, beatmapID int64) {
	if err := o.bans.Insert(ctx, beatmapID); err != nil {
		o.logger.WithContext(ctx).Error("failed to record beatmap ban",
			observability.Int64("beatmapID", beatmapID),
			observability.Error(err))
		return
	}

	if o.metrics != nil {
		o.metrics.RecordBanCreated()
	}
}

func (o *Orchestrator) backendPP(ctx context.Context, score *scoring.Score, beatmapRaw string) (float64, error) {
	ctx, span := o.startSpan(ctx, "performance.backend",
		attribute.Int64("score.id", score.ID),
		attribute.String("score.mode", score.Mode.String()))
	defer span.end()

	attrs, err := o.calc.CalculatePerformance(ctx, beatmapRaw, score)
	if err != nil {
		span.recordError(err)
		return 0, err
	}

	return attrs.PP, nil
}

// starRating resolves the difficulty rating for the fallback model. The
// backend is asked first; when it cannot rate the mode, or rates it as
// negative, the stored beatmap rating from the score is used. Backend
// failures propagate.
func (o *Orchestrator) starRating(ctx context.Context, score *scoring.Score, beatmapRaw string) (float64, error) {
	canDifficulty, err := o.calc.CanCalculateDifficulty(ctx, score.Mode)
	if err != nil {
		return 0, err
	}

	if canDifficulty {
		attrs, err := o.calc.CalculateDifficulty(ctx, beatmapRaw, score.Mods, score.Mode)
		if err != nil {
			return 0, err
		}
		if attrs.StarRating >= 0 {
			return attrs.StarRating, nil
		}
	}

	return score.BeatmapStarRating, nil
}

// span is a small wrapper so orchestrator code does not branch on a nil
// tracer at every call site.
type span struct {
	end         func()
	recordError func(err error)
}

func (o *Orchestrator) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, span) {
	if o.tracer == nil {
		return ctx, span{end: func() {}, recordError: func(error) {}}
	}

	ctx, s := o.tracer.StartSpan(ctx, name, attrs...)
	return ctx, span{
		end: func() { s.End() },
		recordError: func(err error) {
			s.RecordError(err)
			s.SetStatus(codes.Error, err.Error())
		},
	}
}
