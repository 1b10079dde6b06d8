package performance

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/googuteam/scorepp/internal/banstore"
	"github.com/googuteam/scorepp/internal/config"
	"github.com/googuteam/scorepp/internal/fetcher"
	"github.com/googuteam/scorepp/internal/observability"
	"github.com/googuteam/scorepp/internal/scoring"
)

// Pipeline fetches a score's beatmap and rates it in one step. It fronts
// the Orchestrator with a ban short-circuit so that scores on banned
// beatmaps never trigger a beatmap download.
type Pipeline struct {
	fetcher      fetcher.Fetcher
	orchestrator *Orchestrator
	bans         banstore.Store
	metrics      *observability.Metrics
	tracer       *observability.Tracer
	logger       observability.Logger

	mu     sync.RWMutex
	checks config.ChecksConfig
}

// PipelineOption is a functional option for the pipeline.
type PipelineOption func(*Pipeline)

// WithPipelineMetrics attaches a metrics recorder.
func WithPipelineMetrics(m *observability.Metrics) PipelineOption {
	return func(p *Pipeline) {
		p.metrics = m
	}
}

// WithPipelineTracer attaches a tracer.
func WithPipelineTracer(t *observability.Tracer) PipelineOption {
	return func(p *Pipeline) {
		p.tracer = t
	}
}

// WithPipelineLogger overrides the logger.
func WithPipelineLogger(logger observability.Logger) PipelineOption {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// NewPipeline creates a pipeline over the given fetcher and orchestrator.
// The ban store is shared with the orchestrator.
func NewPipeline(
	f fetcher.Fetcher,
	orchestrator *Orchestrator,
	bans banstore.Store,
	checks config.ChecksConfig,
	opts ...PipelineOption,
) *Pipeline {
	p := &Pipeline{
		fetcher:      f,
		orchestrator: orchestrator,
		bans:         bans,
		checks:       checks,
		logger:       observability.NopLogger(),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// SetChecks replaces the check flags on the pipeline and its orchestrator.
// It is called on configuration reloads.
func (p *Pipeline) SetChecks(checks config.ChecksConfig) {
	p.mu.Lock()
	p.checks = checks
	p.mu.Unlock()

	p.orchestrator.SetChecks(checks)
}

// PreFetchAndCalculatePP downloads the beatmap for the score and rates it.
// The boolean reports whether a result was produced: it is false only when
// the beatmap could not be fetched, in which case the caller should leave
// the score unrated and retry later. Scores on banned beatmaps yield
// (0, true); their rating is final.
func (p *Pipeline) PreFetchAndCalculatePP(ctx context.Context, score *scoring.Score) (float64, bool, error) {
	ctx = observability.ContextWithRequestID(ctx, uuid.NewString())
	logger := p.logger.WithContext(ctx)

	p.mu.RLock()
	banCheck := p.checks.SuspiciousScoreCheck
	p.mu.RUnlock()

	if banCheck {
		banned, err := p.bans.Exists(ctx, score.BeatmapID)
		if err != nil {
			logger.Warn("ban lookup failed, treating beatmap as clean",
				observability.Int64("beatmapID", score.BeatmapID),
				observability.Error(err))
		} else if banned {
			if p.metrics != nil {
				p.metrics.RecordCalculation(score.Mode.String(), observability.OutcomeBanned, 0)
			}
			return 0, true, nil
		}
	}

	raw, err := p.fetchBeatmap(ctx, score.BeatmapID)
	if err != nil {
		if p.metrics != nil {
			p.metrics.RecordFetchFailure()
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return 0, false, err
		}

		logger.Warn("beatmap fetch failed, score left unrated",
			observability.Int64("beatmapID", score.BeatmapID),
			observability.Int64("scoreID", score.ID),
			observability.Error(err))
		return 0, false, nil
	}

	pp, err := p.orchestrator.CalculatePP(ctx, score, raw)
	if err != nil {
		return 0, false, err
	}

	return pp, true, nil
}

func (p *Pipeline) fetchBeatmap(ctx context.Context, beatmapID int64) (string, error) {
	if p.tracer != nil {
		spanCtx, sp := p.tracer.StartSpan(ctx, "performance.fetch",
			attribute.Int64("beatmap.id", beatmapID))
		defer sp.End()
		ctx = spanCtx
	}

	return p.fetcher.BeatmapRaw(ctx, beatmapID)
}
