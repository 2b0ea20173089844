package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/deusflow/teledigest/internal/app"
	"github.com/deusflow/teledigest/internal/news"
)

var (
	fetchLookback time.Duration
	fetchMax      int
	fetchShow     int
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch feeds and print the prioritized records",
	RunE: func(cmd *cobra.Command, args []string) error {
		f, _, err := app.NewFetcher(cfg, fetchLookback)
		if err != nil {
			return err
		}
		records, errs := f.FetchAndPrioritize(cmd.Context(), cfg.Sources, fetchMax)

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Fetched %d news items\n\n", len(records))
		for i, r := range records {
			if i >= fetchShow {
				break
			}
			fmt.Fprintf(w, "[%d] %s\n", i+1, news.Truncate(r.Title, 70))
			fmt.Fprintf(w, "    Source: %s\n", r.Source)
			fmt.Fprintf(w, "    Priority: %d\n", r.Priority)
			fmt.Fprintf(w, "    Category: %s\n\n", r.Category)
		}

		if len(errs) > 0 {
			fmt.Fprintln(w, "Errors:")
			for _, e := range errs {
				fmt.Fprintf(w, "  - %s\n", e)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().DurationVar(&fetchLookback, "lookback", 48*time.Hour, "how far back to accept entries")
	fetchCmd.Flags().IntVar(&fetchMax, "max", 10, "maximum records to keep")
	fetchCmd.Flags().IntVar(&fetchShow, "show", 5, "records to print")
}
