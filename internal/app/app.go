package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"DailyDigest/internal/collector"
	"DailyDigest/internal/config"
	"DailyDigest/internal/domain"
	"DailyDigest/internal/enrichment"
	"DailyDigest/internal/infrastructure/llm"
	"DailyDigest/internal/infrastructure/scheduler"
	"DailyDigest/internal/infrastructure/sources"
	"DailyDigest/internal/infrastructure/telegram"
	"DailyDigest/internal/logging"
	"DailyDigest/internal/ports"
	"DailyDigest/internal/usecase"
)

const shutdownTimeout = 30 * time.Second

// Options adjusts how a run delivers its digest.
type Options struct {
	// DryRun writes the digest to Output even when Telegram is configured.
	DryRun bool
	Output io.Writer
}

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	registry  *collector.Registry
	pipeline  *usecase.Pipeline
	scheduler *usecase.Scheduler
	logger    *slog.Logger
}

// New builds a runnable application instance. Missing model credentials are
// not fatal: the pipeline then runs without enrichment and highlights.
func New(cfg config.Config, baseLogger *slog.Logger, opts Options) *Application {
	if baseLogger == nil {
		baseLogger = logging.NewWithOptions(logging.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format})
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	registry := sources.NewRegistry(cfg.Sources, baseLogger.With("component", "sources"))
	source := collector.NewOrchestrator(registry.Enabled(), baseLogger.With("component", "collector"))

	deps := usecase.PipelineDeps{
		Source: source,
		Options: usecase.PipelineOptions{
			Days:           cfg.Processing.Days,
			MaxPerCategory: cfg.Processing.MaxPerCategory,
			CategoryOrder:  cfg.Processing.CategoryOrder,
			CategoryNames:  cfg.Processing.CategoryNames,
		},
		Publisher: newPublisher(cfg, baseLogger, opts),
		Logger:    baseLogger.With("component", "pipeline"),
	}

	client, err := llm.New(cfg.LLM, baseLogger.With("component", "llm"))
	switch {
	case errors.Is(err, llm.ErrMissingCredentials):
		baseLogger.Warn("model credentials missing, enrichment disabled", "provider", cfg.LLM.Provider)
	case err != nil:
		baseLogger.Error("model client unavailable, enrichment disabled", "err", err)
	default:
		deps.Enricher = enrichment.New(client, enrichment.Options{
			Concurrency:     cfg.Enrichment.Concurrency,
			MaxInputChars:   cfg.Enrichment.MaxInputChars,
			MaxSummaryChars: cfg.Enrichment.MaxSummaryChars,
			TargetLanguage:  cfg.Enrichment.TargetLanguage,
			MinScriptRatio:  cfg.Enrichment.MinScriptRatio,
			MaxAttempts:     cfg.Enrichment.MaxAttempts,
			RetryDelay:      cfg.Enrichment.RetryDelay,
		}, baseLogger.With("component", "enrichment"))
		deps.Highlighter = enrichment.NewHighlighter(client, enrichment.HighlightOptions{
			Count:          cfg.Enrichment.HighlightCount,
			TargetLanguage: cfg.Enrichment.TargetLanguage,
			CategoryOrder:  cfg.Processing.CategoryOrder,
		}, baseLogger.With("component", "highlights"))
	}

	pipeline := usecase.NewPipeline(deps)
	driver := scheduler.NewCronScheduler(cfg.Scheduler.CronExpression, cfg.Scheduler.Location(), baseLogger.With("component", "scheduler"))

	return &Application{
		cfg:       cfg,
		registry:  registry,
		pipeline:  pipeline,
		scheduler: usecase.NewScheduler(driver, pipeline, baseLogger.With("component", "scheduler")),
		logger:    baseLogger,
	}
}

func newPublisher(cfg config.Config, log *slog.Logger, opts Options) ports.Publisher {
	tg := telegram.NewPublisher(cfg.Notifications.Telegram, log.With("component", "telegram"))
	if tg.Configured() && !opts.DryRun {
		return tg
	}
	return textPublisher{out: opts.Output}
}

// textPublisher prints the rendered digest.
type textPublisher struct {
	out io.Writer
}

func (p textPublisher) Publish(ctx context.Context, digest domain.Digest) error {
	_, err := fmt.Fprintln(p.out, digest.Text())
	return err
}

// Run performs a single pipeline execution.
func (a *Application) Run(ctx context.Context) error {
	now := time.Now().In(a.cfg.Scheduler.Location())
	_, err := a.pipeline.Run(ctx, now)
	return err
}

// Serve runs the pipeline on the configured cron schedule until ctx is done.
// With runNow a first pass starts immediately.
func (a *Application) Serve(ctx context.Context, runNow bool) error {
	if runNow {
		if err := a.Run(ctx); err != nil {
			a.logger.Error("initial run failed", "err", err)
		}
	}

	if err := a.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return a.scheduler.Stop(stopCtx)
}

// SourceInfo describes one registered adapter.
type SourceInfo struct {
	Name    string
	Enabled bool
}

// Sources lists every registered adapter in registration order.
func (a *Application) Sources() []SourceInfo {
	all := a.registry.All()
	out := make([]SourceInfo, 0, len(all))
	for _, c := range all {
		out = append(out, SourceInfo{Name: c.Name(), Enabled: c.Enabled()})
	}
	return out
}
