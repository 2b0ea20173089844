package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/deusflow/teledigest/internal/app"
	"github.com/deusflow/teledigest/internal/config"
	"github.com/deusflow/teledigest/internal/gemini"
	"github.com/deusflow/teledigest/internal/logger"
	"github.com/deusflow/teledigest/internal/mailer"
	"github.com/deusflow/teledigest/internal/rss"
	"github.com/deusflow/teledigest/internal/scraper"
	"github.com/deusflow/teledigest/internal/storage"
)

var (
	cfgFile  string
	testMode bool
	debug    bool
	cfg      *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "teledigest",
	Short: "Daily telecom industry news digest",
	Long: `teledigest fetches telecom RSS feeds, ranks the day's stories and mails
an HTML digest.

Example usage:
  teledigest                # run the daily digest
  teledigest --test         # render to OUTPUT_DIR instead of mailing
  teledigest fetch          # print prioritized feed records
  teledigest rank           # try the Gemini ranker on a few records`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
	RunE: runDigest,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "YAML file with sources and keywords (default configs/digest.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.Flags().BoolVar(&testMode, "test", false, "write the digest to OUTPUT_DIR instead of sending it")
}

func initConfig() error {
	logger.Init(debug)

	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	if cfg.Debug && !debug {
		logger.Init(true)
	}
	if testMode {
		cfg.TestMode = true
	}

	logger.Debug("Configuration loaded",
		"config_path", cfg.ConfigPath,
		"sources", len(cfg.Sources),
		"max_news", cfg.MaxNewsDaily,
		"lookback", cfg.Lookback,
		"gemini", cfg.GeminiAPIKey != "",
	)
	return nil
}

func runDigest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if cfg.EnableMonitoring {
		go startMonitoringServer(cfg.MonitoringPort)
	}

	if !cfg.TestMode {
		if err := cfg.ValidateDelivery(); err != nil {
			return fmt.Errorf("configuration error: %w", err)
		}
	}

	deps, cleanup, err := buildDeps(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	report := app.New(cfg, deps).Run(ctx)
	if !report.Success {
		return report.Err
	}
	if report.OutputPath != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Digest saved to %s\n", report.OutputPath)
	}
	return nil
}

func buildDeps(ctx context.Context, c *config.Config) (app.Deps, func(), error) {
	cleanup := func() {}

	fetcher, limiter, err := app.NewFetcher(c, c.Lookback)
	if err != nil {
		return app.Deps{}, cleanup, err
	}

	deps := app.Deps{
		Fetcher:  fetcher,
		Limiter:  limiter,
		Enricher: scraper.NewEnricher(&http.Client{Timeout: scraper.DefaultTimeout}, limiter, rss.DefaultHeaders, c.EnrichMaxArticles),
		Writer:   storage.NewOutputWriter(c.OutputDir),
	}

	if c.GeminiAPIKey != "" {
		ranker, err := gemini.NewRanker(ctx, c.GeminiAPIKey, c.GeminiModel, c.MaxNewsDaily)
		if err != nil {
			logger.Warn("Gemini unavailable, using fallback selection", "error", err)
		} else {
			deps.Ranker = ranker
			cleanup = ranker.Close
		}
	} else {
		logger.Info("GEMINI_API_KEY not set, using fallback selection")
	}

	if c.GmailUser != "" && c.GmailAppPassword != "" {
		sender, err := mailer.NewSMTPSender(mailer.Config{
			Host:     c.SMTPHost,
			Port:     c.SMTPPort,
			Username: c.GmailUser,
			Password: c.GmailAppPassword,
		})
		if err != nil {
			return app.Deps{}, cleanup, err
		}
		deps.Sender = sender
	}
	return deps, cleanup, nil
}
