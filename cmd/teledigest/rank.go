package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/deusflow/teledigest/internal/app"
	"github.com/deusflow/teledigest/internal/gemini"
	"github.com/deusflow/teledigest/internal/ranking"
)

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Fetch a few records and run the Gemini ranker on them",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.GeminiAPIKey == "" {
			return errors.New("GEMINI_API_KEY not set")
		}
		ctx := cmd.Context()

		f, _, err := app.NewFetcher(cfg, 48*time.Hour)
		if err != nil {
			return err
		}
		records, _ := f.FetchAndPrioritize(ctx, cfg.Sources, 5)
		w := cmd.OutOrStdout()
		if len(records) == 0 {
			fmt.Fprintln(w, "No news items to rank")
			return nil
		}

		ranker, err := gemini.NewRanker(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, len(records))
		if err != nil {
			return err
		}
		defer ranker.Close()

		sel := ranking.Select(ctx, ranker, records, ranking.Options{
			FallbackCount:  cfg.RankFallbackCount,
			MaxAttempts:    cfg.GeminiMaxRetries,
			RetryDelay:     cfg.GeminiRetryDelay,
			AttemptTimeout: cfg.RankTimeout,
		})

		fmt.Fprintf(w, "Ranking success: %t (attempts: %d)\n\n", sel.Ranked, sel.Attempts)
		if sel.Err != nil {
			fmt.Fprintf(w, "Error: %v\n\n", sel.Err)
		}
		for i, r := range sel.Records {
			fmt.Fprintf(w, "%d. %s\n   Category: %s  Priority: %d\n", i+1, r.Title, r.Category, r.Priority)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rankCmd)
}
