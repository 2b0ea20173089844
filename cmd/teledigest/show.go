package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deusflow/teledigest/internal/digest"
	"github.com/deusflow/teledigest/internal/storage"
)

var showCmd = &cobra.Command{
	Use:   "show <snapshot.json>",
	Short: "Print a digest snapshot written in test mode",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := storage.LoadSnapshot(args[0])
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Subject: %s\nRanked: %t\n\n", snap.Subject, snap.Ranked)
		fmt.Fprint(w, digest.PlainText(digest.Digest{
			Date:    snap.GeneratedAt,
			Records: snap.Records,
			Stats:   snap.Stats,
			Ranked:  snap.Ranked,
		}))

		if len(snap.Errors) > 0 {
			fmt.Fprintln(w, "Errors:")
			for _, e := range snap.Errors {
				fmt.Fprintf(w, "  - %s\n", e)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}
