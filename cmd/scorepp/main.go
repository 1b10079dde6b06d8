// Package main is the entry point for the scorepp command line tool. It
// rates a single score against a beatmap, either from a local .osu file or
// fetched by beatmap id, and prints the suspicion verdict and PP value.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/googuteam/scorepp/internal/banstore"
	"github.com/googuteam/scorepp/internal/beatmap"
	"github.com/googuteam/scorepp/internal/cache"
	"github.com/googuteam/scorepp/internal/calculator"
	"github.com/googuteam/scorepp/internal/config"
	"github.com/googuteam/scorepp/internal/fetcher"
	"github.com/googuteam/scorepp/internal/observability"
	"github.com/googuteam/scorepp/internal/performance"
	"github.com/googuteam/scorepp/internal/scoring"
	"github.com/googuteam/scorepp/internal/suspicion"
)

// Version information (set at build time).
var (
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

// cliFlags holds command line flags.
type cliFlags struct {
	configPath  string
	beatmapPath string
	beatmapID   int64
	mode        string
	totalScore  int64
	accuracy    float64
	maxCombo    int
	starRating  float64
	showVersion bool
}

func main() {
	flags := parseFlags()

	if flags.showVersion {
		printVersion()
		return
	}

	logger := initLogger(flags.configPath)
	defer func() { _ = logger.Sync() }()

	cfg := loadAndValidateConfig(flags.configPath, logger)
	app := initApplication(cfg, logger)
	defer app.close(logger)

	run(app, flags, logger)
}

// parseFlags parses command line flags.
func parseFlags() cliFlags {
	configPath := flag.String("config", getEnvOrDefault("SCOREPP_CONFIG_PATH", "configs/scorepp.yaml"),
		"Path to configuration file")
	beatmapPath := flag.String("beatmap", "", "Path to a local .osu file")
	beatmapID := flag.Int64("beatmap-id", 0, "Beatmap id to fetch when no local file is given")
	mode := flag.String("mode", "osu", "Game mode (osu, taiko, fruits, mania)")
	totalScore := flag.Int64("score", scoring.MaxScore, "Standardised total score")
	accuracy := flag.Float64("acc", 1.0, "Accuracy in [0, 1]")
	maxCombo := flag.Int("combo", 0, "Maximum combo")
	starRating := flag.Float64("stars", 0, "Stored star rating, used when no backend can rate the map")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	return cliFlags{
		configPath:  *configPath,
		beatmapPath: *beatmapPath,
		beatmapID:   *beatmapID,
		mode:        *mode,
		totalScore:  *totalScore,
		accuracy:    *accuracy,
		maxCombo:    *maxCombo,
		starRating:  *starRating,
		showVersion: *showVersion,
	}
}

// printVersion prints version information.
func printVersion() {
	fmt.Printf("scorepp version %s\n", version)
	fmt.Printf("  Build time: %s\n", buildTime)
	fmt.Printf("  Git commit: %s\n", gitCommit)
}

// initLogger initializes the logger from config, falling back to defaults
// when the config file cannot be read yet.
func initLogger(configPath string) observability.Logger {
	logCfg := observability.DefaultLogConfig()
	if cfg, err := config.Load(configPath); err == nil {
		logCfg = observability.LogConfig{
			Level:  cfg.Logging.Level,
			Format: cfg.Logging.Format,
			Output: cfg.Logging.Output,
		}
	}

	logger, err := observability.NewLogger(logCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	observability.SetGlobalLogger(logger)
	return logger
}

// loadAndValidateConfig loads and validates the configuration.
func loadAndValidateConfig(configPath string, logger observability.Logger) *config.Config {
	logger.Info("starting scorepp",
		observability.String("version", version),
		observability.String("config", configPath),
	)

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Warn("failed to load configuration, using defaults", observability.Error(err))
		return config.DefaultConfig()
	}

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", observability.Error(err))
	}

	return cfg
}

// application holds all application components.
type application struct {
	pipeline      *performance.Pipeline
	orchestrator  *performance.Orchestrator
	analyzer      *suspicion.Analyzer
	cache         cache.Cache
	bans          banstore.Store
	metrics       *observability.Metrics
	metricsServer *observability.MetricsServer
	tracer        *observability.Tracer
	config        *config.Config
}

// initApplication initializes all application components.
func initApplication(cfg *config.Config, logger observability.Logger) *application {
	metrics := observability.NewMetrics(cfg.Metrics.Namespace)
	tracer := initTracer(cfg, logger)

	rawCache, err := cache.New(&cfg.Cache, logger)
	if err != nil {
		logger.Fatal("failed to initialize cache", observability.Error(err))
	}

	bans, err := banstore.New(&cfg.BanStore, logger)
	if err != nil {
		logger.Fatal("failed to initialize ban store", observability.Error(err))
	}

	calc, err := calculator.New(context.Background(), &cfg.Calculator, logger)
	if err != nil {
		logger.Fatal("failed to initialize calculator backend",
			observability.String("backend", cfg.Calculator.Backend),
			observability.Error(err))
	}

	analyzer := suspicion.NewAnalyzer(0)

	orchestrator := performance.NewOrchestrator(calc, analyzer, bans, cfg.Checks,
		performance.WithLogger(logger),
		performance.WithMetrics(metrics),
		performance.WithTracer(tracer),
	)

	f := fetcher.New(&cfg.Fetcher, logger,
		fetcher.WithCache(rawCache, cfg.Cache.TTL.Duration()),
		fetcher.WithMetrics(metrics),
	)

	pipeline := performance.NewPipeline(f, orchestrator, bans, cfg.Checks,
		performance.WithPipelineLogger(logger),
		performance.WithPipelineMetrics(metrics),
		performance.WithPipelineTracer(tracer),
	)

	var metricsServer *observability.MetricsServer
	if cfg.Metrics.Enabled {
		metricsServer, err = observability.NewMetricsServer(cfg.Metrics.Address, metrics, logger)
		if err != nil {
			logger.Fatal("failed to start metrics server",
				observability.String("address", cfg.Metrics.Address),
				observability.Error(err))
		}
		metricsServer.Start()
	}

	return &application{
		pipeline:      pipeline,
		orchestrator:  orchestrator,
		analyzer:      analyzer,
		cache:         rawCache,
		bans:          bans,
		metrics:       metrics,
		metricsServer: metricsServer,
		tracer:        tracer,
		config:        cfg,
	}
}

// startConfigWatcher hot-reloads the check flags when the configuration
// file changes. Watching is best-effort; a missing or unreadable file only
// disables it.
func startConfigWatcher(ctx context.Context, configPath string, app *application, logger observability.Logger) *config.Watcher {
	watcher, err := config.NewWatcher(configPath, func(cfg *config.Config) {
		app.pipeline.SetChecks(cfg.Checks)
		logger.Info("check flags reloaded",
			observability.Bool("suspiciousScoreCheck", cfg.Checks.SuspiciousScoreCheck),
			observability.Bool("fallbackPP", cfg.Checks.FallbackPP))
	}, config.WithLogger(logger))
	if err != nil {
		logger.Warn("config watching disabled", observability.Error(err))
		return nil
	}

	if err := watcher.Start(ctx); err != nil {
		logger.Warn("config watching disabled", observability.Error(err))
		return nil
	}

	return watcher
}

// initTracer initializes the tracer.
func initTracer(cfg *config.Config, logger observability.Logger) *observability.Tracer {
	serviceName := cfg.Tracing.ServiceName
	if serviceName == "" {
		serviceName = "scorepp"
	}

	tracer, err := observability.NewTracer(observability.TracerConfig{
		ServiceName:  serviceName,
		Enabled:      cfg.Tracing.Enabled,
		OTLPEndpoint: cfg.Tracing.OTLPEndpoint,
		SamplingRate: cfg.Tracing.SamplingRate,
	})
	if err != nil {
		logger.Fatal("failed to initialize tracer", observability.Error(err))
	}

	return tracer
}

// run rates the requested score and prints the result.
func run(app *application, flags cliFlags, logger observability.Logger) {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if watcher := startConfigWatcher(ctx, flags.configPath, app, logger); watcher != nil {
		defer func() { _ = watcher.Stop() }()
	}

	mode, err := beatmap.ParseModeName(flags.mode)
	if err != nil {
		logger.Fatal("unknown game mode", observability.String("mode", flags.mode))
	}

	score := &scoring.Score{
		BeatmapID:         flags.beatmapID,
		Mode:              mode,
		TotalScore:        flags.totalScore,
		Accuracy:          flags.accuracy,
		MaxCombo:          flags.maxCombo,
		BeatmapStarRating: flags.starRating,
	}

	switch {
	case flags.beatmapPath != "":
		rateLocalFile(ctx, app, flags.beatmapPath, score, logger)
	case flags.beatmapID > 0:
		rateFetched(ctx, app, score, logger)
	default:
		logger.Fatal("either -beatmap or -beatmap-id is required")
	}
}

// rateLocalFile rates a score against a .osu file on disk.
func rateLocalFile(ctx context.Context, app *application, path string, score *scoring.Score, logger observability.Logger) {
	raw, err := os.ReadFile(path)
	if err != nil {
		logger.Fatal("failed to read beatmap file", observability.Error(err))
	}

	suspicious, err := app.analyzer.CheckRaw(ctx, string(raw))
	if err != nil {
		logger.Warn("suspicion analysis failed", observability.Error(err))
	} else {
		fmt.Printf("suspicious: %t\n", suspicious)
	}

	pp, err := app.orchestrator.CalculatePP(ctx, score, string(raw))
	if err != nil {
		logger.Fatal("pp calculation failed", observability.Error(err))
	}

	fmt.Printf("pp: %.3f\n", pp)
}

// rateFetched rates a score against a beatmap fetched by id.
func rateFetched(ctx context.Context, app *application, score *scoring.Score, logger observability.Logger) {
	pp, ok, err := app.pipeline.PreFetchAndCalculatePP(ctx, score)
	if err != nil {
		logger.Fatal("pp calculation failed", observability.Error(err))
	}
	if !ok {
		logger.Fatal("beatmap could not be fetched",
			observability.Int64("beatmapID", score.BeatmapID))
	}

	fmt.Printf("pp: %.3f\n", pp)
}

// close releases application resources.
func (app *application) close(logger observability.Logger) {
	if app.metricsServer != nil {
		if err := app.metricsServer.Shutdown(context.Background()); err != nil {
			logger.Warn("failed to shut down metrics server", observability.Error(err))
		}
	}
	if err := app.cache.Close(); err != nil {
		logger.Warn("failed to close cache", observability.Error(err))
	}
	if err := app.bans.Close(); err != nil {
		logger.Warn("failed to close ban store", observability.Error(err))
	}
	if err := app.tracer.Shutdown(context.Background()); err != nil {
		logger.Warn("failed to shut down tracer", observability.Error(err))
	}
}

// getEnvOrDefault returns the environment variable value or a default.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
