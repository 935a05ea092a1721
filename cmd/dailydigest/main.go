package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"DailyDigest/internal/app"
	"DailyDigest/internal/config"
	"DailyDigest/internal/logging"
)

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:      "dailydigest",
		Usage:     "Collect, summarize and publish a daily AI news digest",
		Writer:    out,
		ErrWriter: out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Override logging level (debug, info, warn, error)",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML configuration",
				EnvVars: []string{"DAILY_DIGEST_CONFIG"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "Run the pipeline once and publish the digest",
				Action: runCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "dry-run",
						Usage: "Print the digest instead of sending it to Telegram",
					},
				},
			},
			{
				Name:   "serve",
				Usage:  "Run the pipeline on the configured cron schedule",
				Action: serveCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "run-on-start",
						Usage: "Run once immediately before waiting for the schedule",
					},
				},
			},
			{
				Name:   "sources",
				Usage:  "List registered sources and whether they are enabled",
				Action: sourcesCommand,
			},
		},
	}
}

// loadConfig reads configuration and applies global flag overrides.
func loadConfig(c *cli.Context) (config.Config, *slog.Logger) {
	if path := c.String("config"); path != "" {
		os.Setenv("DAILY_DIGEST_CONFIG", path)
	}
	cfg := config.Load()
	if level := c.String("log-level"); level != "" {
		cfg.Logging.Level = level
	}

	logger := logging.NewWithOptions(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: os.Stderr,
	})
	slog.SetDefault(logger)
	return cfg, logger
}

func signalContext(c *cli.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
}

func runCommand(c *cli.Context) error {
	cfg, logger := loadConfig(c)
	ctx, stop := signalContext(c)
	defer stop()

	application := app.New(cfg, logger, app.Options{DryRun: c.Bool("dry-run"), Output: c.App.Writer})
	if err := application.Run(ctx); err != nil {
		logger.Error("run failed", "err", err)
		return cli.Exit(err.Error(), 1)
	}
	return nil
}

func serveCommand(c *cli.Context) error {
	cfg, logger := loadConfig(c)
	ctx, stop := signalContext(c)
	defer stop()

	application := app.New(cfg, logger, app.Options{Output: c.App.Writer})
	if err := application.Serve(ctx, c.Bool("run-on-start")); err != nil {
		logger.Error("application stopped", "err", err)
		return cli.Exit(err.Error(), 1)
	}
	return nil
}

func sourcesCommand(c *cli.Context) error {
	cfg, logger := loadConfig(c)

	application := app.New(cfg, logger, app.Options{Output: c.App.Writer})
	for _, s := range application.Sources() {
		state := "disabled"
		if s.Enabled {
			state = "enabled"
		}
		fmt.Fprintf(c.App.Writer, "%-24s %s\n", s.Name, state)
	}
	return nil
}
