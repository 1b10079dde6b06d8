package calculator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/googuteam/scorepp/internal/beatmap"
	"github.com/googuteam/scorepp/internal/config"
	"github.com/googuteam/scorepp/internal/observability"
	"github.com/googuteam/scorepp/internal/scoring"
)

func init() {
	Register("server", newServerCalculator)
}

// defaultServerTimeout bounds each performance-server request.
const defaultServerTimeout = 15 * time.Second

// capabilityRefreshInterval is how long a discovered capability set stays
// valid before it is re-fetched.
const capabilityRefreshInterval = 24 * time.Hour

// availableRulesetsResponse is the capability discovery payload.
type availableRulesetsResponse struct {
	HasPerformanceCalculator []string `json:"has_performance_calculator"`
	HasDifficultyCalculator  []string `json:"has_difficulty_calculator"`
	LoadedRulesets           []string `json:"loaded_rulesets"`
}

// performanceRequest is the POST /performance payload.
type performanceRequest struct {
	BeatmapID   int64          `json:"beatmap_id"`
	BeatmapFile string         `json:"beatmap_file"`
	Checksum    string         `json:"checksum,omitempty"`
	Accuracy    float64        `json:"accuracy"`
	Combo       int            `json:"combo"`
	Mods        []scoring.Mod  `json:"mods"`
	Statistics  map[string]int `json:"statistics"`
	Ruleset     string         `json:"ruleset"`
}

// difficultyRequest is the POST /difficulty payload.
type difficultyRequest struct {
	BeatmapFile string        `json:"beatmap_file"`
	Mods        []scoring.Mod `json:"mods"`
	Ruleset     string        `json:"ruleset"`
}

// serverCalculator talks to an osu-performance-server instance over HTTP.
// Requests run through a circuit breaker so a dead server fails fast
// instead of holding every scoring request for the full timeout.
type serverCalculator struct {
	baseURL string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
	logger  observability.Logger

	capMu        chan struct{}
	capabilities *AvailableModes
	capFetchedAt time.Time
}

// newServerCalculator builds the HTTP backend from configuration.
func newServerCalculator(cfg *config.CalculatorConfig, logger observability.Logger) (Calculator, error) {
	if cfg.Server == nil || cfg.Server.URL == "" {
		return nil, fmt.Errorf("server backend requires a url")
	}

	timeout := cfg.Server.RequestTimeout.Duration()
	if timeout <= 0 {
		timeout = defaultServerTimeout
	}

	c := &serverCalculator{
		baseURL: cfg.Server.URL,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
		capMu:   make(chan struct{}, 1),
	}

	if cfg.Server.BreakerEnabled {
		c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:     "performance-server",
			Interval: 30 * time.Second,
			Timeout:  30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
				return counts.Requests >= 5 && failureRatio >= 0.5
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Warn("performance server circuit breaker state change",
					observability.String("name", name),
					observability.String("from", from.String()),
					observability.String("to", to.String()),
				)
			},
		})
	}

	return c, nil
}

// Init discovers the server's capability set. Failure here aborts startup.
func (c *serverCalculator) Init(ctx context.Context) error {
	_, err := c.availableModes(ctx)
	return err
}

// CanCalculatePerformance implements Calculator.
func (c *serverCalculator) CanCalculatePerformance(ctx context.Context, mode beatmap.GameMode) (bool, error) {
	modes, err := c.availableModes(ctx)
	if err != nil {
		return false, err
	}
	return modes.Performance.Has(mode), nil
}

// CanCalculateDifficulty implements Calculator.
func (c *serverCalculator) CanCalculateDifficulty(ctx context.Context, mode beatmap.GameMode) (bool, error) {
	modes, err := c.availableModes(ctx)
	if err != nil {
		return false, err
	}
	return modes.Difficulty.Has(mode), nil
}

// CalculatePerformance implements Calculator.
func (c *serverCalculator) CalculatePerformance(
	ctx context.Context, beatmapRaw string, score *scoring.Score,
) (*PerformanceAttributes, error) {
	req := performanceRequest{
		BeatmapID:   score.BeatmapID,
		BeatmapFile: beatmapRaw,
		Checksum:    score.BeatmapMD5,
		Accuracy:    score.Accuracy,
		Combo:       score.MaxCombo,
		Mods:        modsOrEmpty(score.Mods),
		Statistics:  score.Statistics,
		Ruleset:     score.Mode.String(),
	}

	var attrs PerformanceAttributes
	if err := c.postJSON(ctx, "/performance", req, &attrs); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPerformance, err)
	}
	return &attrs, nil
}

// CalculateDifficulty implements Calculator.
func (c *serverCalculator) CalculateDifficulty(
	ctx context.Context, beatmapRaw string, mods []scoring.Mod, mode beatmap.GameMode,
) (*DifficultyAttributes, error) {
	req := difficultyRequest{
		BeatmapFile: beatmapRaw,
		Mods:        modsOrEmpty(mods),
		Ruleset:     mode.String(),
	}

	var attrs DifficultyAttributes
	if err := c.postJSON(ctx, "/difficulty", req, &attrs); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDifficulty, err)
	}
	return &attrs, nil
}

// availableModes returns the cached capability set, re-fetching it when
// stale. The channel acts as a mutex so concurrent refreshes collapse
// into one request.
func (c *serverCalculator) availableModes(ctx context.Context) (*AvailableModes, error) {
	select {
	case c.capMu <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-c.capMu }()

	if c.capabilities != nil && time.Since(c.capFetchedAt) < capabilityRefreshInterval {
		return c.capabilities, nil
	}

	var resp availableRulesetsResponse
	if err := c.getJSON(ctx, "/available_rulesets", &resp); err != nil {
		return nil, fmt.Errorf("%w: fetching available rulesets: %w", ErrCalculate, err)
	}

	modes := &AvailableModes{
		Performance: parseModeNames(resp.HasPerformanceCalculator),
		Difficulty:  parseModeNames(resp.HasDifficultyCalculator),
	}

	c.capabilities = modes
	c.capFetchedAt = time.Now()
	return modes, nil
}

// parseModeNames builds a ModeSet from ruleset names, ignoring rulesets
// this module does not model.
func parseModeNames(names []string) ModeSet {
	set := make(ModeSet, len(names))
	for _, name := range names {
		if mode, err := beatmap.ParseModeName(name); err == nil {
			set[mode] = struct{}{}
		}
	}
	return set
}

// modsOrEmpty never sends null for the mods array.
func modsOrEmpty(mods []scoring.Mod) []scoring.Mod {
	if mods == nil {
		return []scoring.Mod{}
	}
	return mods
}

// getJSON performs a GET request and decodes the JSON response.
func (c *serverCalculator) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	return c.do(req, out)
}

// postJSON performs a POST request with a JSON body and decodes the
// JSON response.
func (c *serverCalculator) postJSON(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

// do executes the request, optionally through the circuit breaker.
func (c *serverCalculator) do(req *http.Request, out any) error {
	if c.breaker == nil {
		return c.roundTrip(req, out)
	}
	_, err := c.breaker.Execute(func() (any, error) {
		return nil, c.roundTrip(req, out)
	})
	return err
}

func (c *serverCalculator) roundTrip(req *http.Request, out any) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("performance server returned %d: %s", resp.StatusCode, string(body))
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
