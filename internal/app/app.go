// Package app wires the digest pipeline: fetch, select, render, deliver.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/deusflow/teledigest/internal/config"
	"github.com/deusflow/teledigest/internal/digest"
	"github.com/deusflow/teledigest/internal/logger"
	"github.com/deusflow/teledigest/internal/mailer"
	"github.com/deusflow/teledigest/internal/metrics"
	"github.com/deusflow/teledigest/internal/news"
	"github.com/deusflow/teledigest/internal/ranking"
	"github.com/deusflow/teledigest/internal/ratelimit"
	"github.com/deusflow/teledigest/internal/rss"
	"github.com/deusflow/teledigest/internal/storage"
)

// ErrNoNewsFetched fails a run in which no source produced a record.
var ErrNoNewsFetched = errors.New("no news items fetched from any source")

// Error notice types shown in the failure mail subject.
const (
	NoticeFetchFailed = "RSS 抓取失敗"
	NoticeSystemError = "系統錯誤"
)

// Mail kinds for metrics.
const (
	mailDigest = "digest"
	mailNotice = "error_notice"
)

// Fetcher is the part of rss.Fetcher the pipeline needs.
type Fetcher interface {
	FetchAndPrioritize(ctx context.Context, sources []rss.Source, maxItems int) ([]news.Record, []string)
}

// Enricher fills missing descriptions in place.
type Enricher interface {
	Enrich(ctx context.Context, records []news.Record) int
}

// Report is the outcome of one run.
type Report struct {
	Success    bool
	Errors     []string
	Fetched    int
	Selected   []news.Record
	Ranked     bool
	Subject    string
	OutputPath string
	Duration   time.Duration
	Err        error
}

// Deps are the collaborators of a run. Ranker, Enricher and Limiter are
// optional; Sender is required unless the config is in test mode.
type Deps struct {
	Fetcher  Fetcher
	Ranker   ranking.Ranker
	Enricher Enricher
	Sender   mailer.Sender
	Writer   *storage.OutputWriter
	Limiter  *ratelimit.HostLimiter
	Now      func() time.Time
}

type App struct {
	cfg  *config.Config
	deps Deps
}

func New(cfg *config.Config, deps Deps) *App {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Writer == nil {
		deps.Writer = storage.NewOutputWriter(cfg.OutputDir)
	}
	return &App{cfg: cfg, deps: deps}
}

// Run executes one daily digest. Per-source failures are reported but only
// an empty fetch or an unexpected error fails the run; both send an error
// notice unless in test mode.
func (a *App) Run(ctx context.Context) Report {
	start := a.deps.Now()
	logger.Info("Starting daily digest", "sources", len(a.cfg.Sources), "test_mode", a.cfg.TestMode)

	report, noticeType := a.run(ctx)
	report.Duration = a.deps.Now().Sub(start)

	if report.Err != nil {
		logger.Error("Daily digest failed", "error", report.Err, "source_errors", len(report.Errors))
		if noticeType != "" && !a.cfg.TestMode {
			a.notify(ctx, noticeType, report)
		}
	} else {
		report.Success = true
		logger.Info("Daily digest complete", "selected", len(report.Selected), "ranked", report.Ranked,
			"duration", report.Duration)
	}

	if a.deps.Limiter != nil {
		logger.Info("Requests per host", "hosts", a.deps.Limiter.GetStats())
	}
	metrics.Global.RecordRun(len(report.Selected), report.Duration, report.Errors, report.Err)
	return report
}

func (a *App) run(ctx context.Context) (Report, string) {
	var report Report

	logger.Info("Step 1: fetching feeds")
	records, fetchErrs := a.deps.Fetcher.FetchAndPrioritize(ctx, a.cfg.Sources, a.cfg.MaxNewsDaily)
	report.Errors = append(report.Errors, fetchErrs...)
	if len(fetchErrs) > 0 {
		logger.Warn("Some feeds failed", "count", len(fetchErrs))
	}

	report.Fetched = len(records)

	if len(records) == 0 {
		report.Err = ErrNoNewsFetched
		return report, NoticeFetchFailed
	}
	logger.Info("Fetched news items", "count", len(records))

	logger.Info("Step 2: selecting stories")
	sel := ranking.Select(ctx, a.deps.Ranker, records, ranking.Options{
		FallbackCount:  a.cfg.RankFallbackCount,
		MaxAttempts:    a.cfg.GeminiMaxRetries,
		RetryDelay:     a.cfg.GeminiRetryDelay,
		AttemptTimeout: a.cfg.RankTimeout,
	})
	report.Selected = sel.Records
	report.Ranked = sel.Ranked

	if a.cfg.EnrichDescriptions && a.deps.Enricher != nil {
		filled := a.deps.Enricher.Enrich(ctx, report.Selected)
		logger.Info("Descriptions enriched", "filled", filled)
	}

	logger.Info("Step 3: rendering digest")
	now := a.deps.Now()
	d := digest.Digest{
		Date:    now,
		Records: report.Selected,
		Stats:   news.ComputeStats(report.Selected),
		Ranked:  report.Ranked,
		Sources: sourceNames(a.cfg.Sources),
	}
	html, err := digest.Render(d)
	if err != nil {
		report.Err = fmt.Errorf("unexpected error in daily digest: %w", err)
		return report, NoticeSystemError
	}
	report.Subject = digest.Subject(now)

	if a.cfg.TestMode {
		path, err := a.deps.Writer.Write(html, storage.Snapshot{
			GeneratedAt: now,
			Subject:     report.Subject,
			Ranked:      report.Ranked,
			Records:     report.Selected,
			Stats:       d.Stats,
			Errors:      report.Errors,
		})
		if err != nil {
			report.Err = fmt.Errorf("unexpected error in daily digest: %w", err)
			return report, NoticeSystemError
		}
		report.OutputPath = path
		logger.Info("Test mode: digest saved", "path", path)
		return report, ""
	}

	logger.Info("Step 4: sending email")
	if a.deps.Sender == nil {
		report.Err = errors.New("no mail sender configured")
		return report, ""
	}
	err = a.deps.Sender.Send(ctx, mailer.Message{
		To:        a.cfg.Recipients,
		Subject:   report.Subject,
		HTML:      html,
		PlainText: digest.PlainText(d),
	})
	metrics.RecordMail(mailDigest, err)
	if err != nil {
		report.Err = fmt.Errorf("failed to send digest: %w", err)
		return report, ""
	}
	return report, ""
}

// notify sends the failure notice. Its own errors are only logged.
func (a *App) notify(ctx context.Context, noticeType string, report Report) {
	if a.deps.Sender == nil {
		logger.Warn("No mail sender, skipping error notice", "type", noticeType)
		return
	}

	summary := report.Err.Error()
	if errors.Is(report.Err, ErrNoNewsFetched) {
		summary = "No news items fetched from any source"
	}
	details := append([]string{summary}, report.Errors...)
	html, err := digest.RenderError(digest.ErrorNotice{
		Type:      noticeType,
		Details:   details,
		Timestamp: a.deps.Now(),
		RunURL:    digest.RunURL(a.cfg.GitHubServerURL, a.cfg.GitHubRepository, a.cfg.GitHubRunID),
	})
	if err != nil {
		logger.Error("Failed to render error notice", "error", err)
		return
	}

	err = a.deps.Sender.Send(ctx, mailer.Message{
		To:      a.cfg.Recipients,
		Subject: digest.ErrorSubject(noticeType),
		HTML:    html,
	})
	metrics.RecordMail(mailNotice, err)
	if err != nil {
		logger.Error("Failed to send error notification", "error", err)
		return
	}
	logger.Info("Error notification sent", "type", noticeType)
}

func sourceNames(sources []rss.Source) []string {
	names := make([]string, 0, len(sources))
	for _, s := range sources {
		names = append(names, s.Name)
	}
	return names
}
