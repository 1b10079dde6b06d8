// Package fetcher retrieves raw beatmap files (.osu) from the official
// server and mirror servers, with read-through caching and deduplication
// of concurrent requests for the same beatmap.
package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/googuteam/scorepp/internal/cache"
	"github.com/googuteam/scorepp/internal/config"
	"github.com/googuteam/scorepp/internal/observability"
)

// ErrNoBeatmap is returned when no source has the beatmap.
var ErrNoBeatmap = errors.New("beatmap does not exist")

// maxBeatmapSize bounds a fetched .osu file (32 MiB).
const maxBeatmapSize = 32 << 20

// cacheKeyPrefix namespaces raw beatmap content in the shared cache.
const cacheKeyPrefix = "beatmap:raw:"

// Fetcher retrieves raw beatmap content.
type Fetcher interface {
	// BeatmapRaw returns the .osu file content for the beatmap id.
	BeatmapRaw(ctx context.Context, beatmapID int64) (string, error)
}

// HTTPFetcher fetches beatmaps over HTTP with mirror failover. Concurrent
// requests for the same beatmap are collapsed into one upstream fetch,
// and results are stored in the cache.
type HTTPFetcher struct {
	mirrors  []string
	client   *http.Client
	cache    cache.Cache
	cacheTTL time.Duration
	limiter  *rate.Limiter
	group    singleflight.Group
	metrics  *observability.Metrics
	logger   observability.Logger
}

// Option is a functional option for the fetcher.
type Option func(*HTTPFetcher)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(f *HTTPFetcher) {
		f.client = client
	}
}

// WithCache sets the read-through cache.
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(f *HTTPFetcher) {
		f.cache = c
		f.cacheTTL = ttl
	}
}

// WithMetrics attaches a metrics recorder for cache lookups and fetch
// failures.
func WithMetrics(m *observability.Metrics) Option {
	return func(f *HTTPFetcher) {
		f.metrics = m
	}
}

// New creates an HTTPFetcher from configuration. Each mirror is a URL
// template with a %d placeholder for the beatmap id, tried in order.
func New(cfg *config.FetcherConfig, logger observability.Logger, opts ...Option) *HTTPFetcher {
	timeout := cfg.RequestTimeout.Duration()
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 1
	}

	f := &HTTPFetcher{
		mirrors: cfg.Mirrors,
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(limit, burst),
		logger:  logger,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// BeatmapRaw implements Fetcher.
func (f *HTTPFetcher) BeatmapRaw(ctx context.Context, beatmapID int64) (string, error) {
	key := cacheKeyPrefix + strconv.FormatInt(beatmapID, 10)

	if f.cache != nil {
		if data, err := f.cache.Get(ctx, key); err == nil {
			f.recordCacheLookup("hit")
			return string(data), nil
		}
		f.recordCacheLookup("miss")
	}

	v, err, _ := f.group.Do(key, func() (any, error) {
		content, err := f.fetch(ctx, beatmapID)
		if err != nil {
			return nil, err
		}

		if f.cache != nil {
			if err := f.cache.Set(ctx, key, []byte(content), f.cacheTTL); err != nil {
				f.logger.Warn("failed to cache beatmap",
					observability.Int64("beatmapID", beatmapID),
					observability.Error(err))
			}
		}
		return content, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (f *HTTPFetcher) recordCacheLookup(result string) {
	if f.metrics != nil {
		f.metrics.RecordCacheLookup(result)
	}
}

// fetch tries each mirror in order. A 404 from every mirror means the
// beatmap does not exist; transport errors fall through to the next
// mirror.
func (f *HTTPFetcher) fetch(ctx context.Context, beatmapID int64) (string, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return "", err
	}

	var lastErr error = ErrNoBeatmap
	for _, mirror := range f.mirrors {
		url := fmt.Sprintf(mirror, beatmapID)

		content, err := f.fetchOne(ctx, url)
		if err == nil {
			return content, nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return "", err
		}

		f.logger.Debug("beatmap fetch failed, trying next mirror",
			observability.Int64("beatmapID", beatmapID),
			observability.String("url", url),
			observability.Error(err))
		if !errors.Is(err, ErrNoBeatmap) {
			lastErr = err
		}
	}

	return "", fmt.Errorf("fetching beatmap %d: %w", beatmapID, lastErr)
}

func (f *HTTPFetcher) fetchOne(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return "", ErrNoBeatmap
	case resp.StatusCode != http.StatusOK:
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBeatmapSize))
	if err != nil {
		return "", err
	}

	// Some mirrors return an empty 200 for deleted beatmaps.
	if len(data) == 0 {
		return "", ErrNoBeatmap
	}

	return string(data), nil
}
