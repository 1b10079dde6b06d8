package performance

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/googuteam/scorepp/internal/banstore"
	"github.com/googuteam/scorepp/internal/config"
	"github.com/googuteam/scorepp/internal/fetcher"
	"github.com/googuteam/scorepp/internal/suspicion"
)

// stubFetcher serves scripted beatmap content.
type stubFetcher struct {
	content map[int64]string
	err     error
	calls   int
}

func (f *stubFetcher) BeatmapRaw(_ context.Context, beatmapID int64) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	raw, ok := f.content[beatmapID]
	if !ok {
		return "", fetcher.ErrNoBeatmap
	}
	return raw, nil
}

func newTestPipeline(f fetcher.Fetcher, calc *stubCalculator, bans banstore.Store) *Pipeline {
	checks := defaultChecks()
	orchestrator := NewOrchestrator(calc, suspicion.NewAnalyzer(1), bans, checks)
	return NewPipeline(f, orchestrator, bans, checks)
}

func TestPreFetchAndCalculatePP(t *testing.T) {
	t.Parallel()

	calc := &stubCalculator{performanceModes: allModes(), pp: 250}
	f := &stubFetcher{content: map[int64]string{100: cleanBeatmap}}
	p := newTestPipeline(f, calc, banstore.NewMemory())

	pp, ok, err := p.PreFetchAndCalculatePP(context.Background(), osuScore())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 250.0, pp)
}

func TestPreFetchAndCalculatePP_FetchFailure(t *testing.T) {
	t.Parallel()

	calc := &stubCalculator{performanceModes: allModes(), pp: 250}
	f := &stubFetcher{err: errors.New("all mirrors down")}
	p := newTestPipeline(f, calc, banstore.NewMemory())

	pp, ok, err := p.PreFetchAndCalculatePP(context.Background(), osuScore())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0.0, pp)
	assert.Equal(t, 0, calc.performanceCalls)
}

func TestPreFetchAndCalculatePP_MissingBeatmap(t *testing.T) {
	t.Parallel()

	calc := &stubCalculator{performanceModes: allModes()}
	f := &stubFetcher{content: map[int64]string{}}
	p := newTestPipeline(f, calc, banstore.NewMemory())

	pp, ok, err := p.PreFetchAndCalculatePP(context.Background(), osuScore())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0.0, pp)
}

func TestPreFetchAndCalculatePP_BannedSkipsFetch(t *testing.T) {
	t.Parallel()

	calc := &stubCalculator{performanceModes: allModes(), pp: 250}
	f := &stubFetcher{content: map[int64]string{100: cleanBeatmap}}
	bans := banstore.NewMemory()
	require.NoError(t, bans.Insert(context.Background(), 100))

	p := newTestPipeline(f, calc, bans)

	// The rating is final: ok is true with zero pp, and no download
	// happens.
	pp, ok, err := p.PreFetchAndCalculatePP(context.Background(), osuScore())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 0.0, pp)
	assert.Equal(t, 0, f.calls)
}

func TestPreFetchAndCalculatePP_SuspiciousBeatmap(t *testing.T) {
	t.Parallel()

	calc := &stubCalculator{performanceModes: allModes(), pp: 250}
	f := &stubFetcher{content: map[int64]string{100: overlapBeatmap}}
	bans := banstore.NewMemory()
	p := newTestPipeline(f, calc, bans)

	ctx := context.Background()
	score := osuScore()

	pp, ok, err := p.PreFetchAndCalculatePP(ctx, score)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 0.0, pp)

	banned, err := bans.Exists(ctx, score.BeatmapID)
	require.NoError(t, err)
	assert.True(t, banned)

	// The next score on the same beatmap is rejected before fetching.
	fetchesBefore := f.calls
	_, ok, err = p.PreFetchAndCalculatePP(ctx, score)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, fetchesBefore, f.calls)
}

func TestPreFetchAndCalculatePP_SetChecksReload(t *testing.T) {
	t.Parallel()

	calc := &stubCalculator{performanceModes: allModes(), pp: 250}
	f := &stubFetcher{content: map[int64]string{100: cleanBeatmap}}
	bans := banstore.NewMemory()
	require.NoError(t, bans.Insert(context.Background(), 100))

	p := newTestPipeline(f, calc, bans)

	// With the check on, the ban short-circuits before any download.
	pp, ok, err := p.PreFetchAndCalculatePP(context.Background(), osuScore())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 0.0, pp)
	assert.Equal(t, 0, f.calls)

	// Turning the check off mid-flight reaches the pipeline and its
	// orchestrator: the same score is now fetched and rated.
	p.SetChecks(config.ChecksConfig{SuspiciousScoreCheck: false, FallbackPP: true})

	pp, ok, err = p.PreFetchAndCalculatePP(context.Background(), osuScore())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 250.0, pp)
	assert.Equal(t, 1, f.calls)
}

func TestPreFetchAndCalculatePP_BackendErrorPropagates(t *testing.T) {
	t.Parallel()

	calc := &stubCalculator{performanceModes: allModes(), performanceErr: errors.New("server exploded")}
	f := &stubFetcher{content: map[int64]string{100: cleanBeatmap}}
	p := newTestPipeline(f, calc, banstore.NewMemory())

	_, ok, err := p.PreFetchAndCalculatePP(context.Background(), osuScore())
	assert.Error(t, err)
	assert.False(t, ok)
}
