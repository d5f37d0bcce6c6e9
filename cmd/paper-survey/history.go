// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-survey/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List archived searches",
	Long: `History lists completed searches recorded in the archive database,
newest first. Archiving is enabled with history.enabled in the config.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		store, err := history.Open(cfg.History.Path)
		if err != nil {
			return fmt.Errorf("opening history: %w", err)
		}
		defer store.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		entries, err := store.List(limit)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("No archived searches.")
			return nil
		}

		fmt.Fprintf(os.Stdout, "%-20s  %-50s  %-15s  %-7s  %s\n",
			"When", "Query", "Sort", "Results", "Unique")
		fmt.Fprintln(os.Stdout, strings.Repeat("-", 105))
		for _, e := range entries {
			q := e.Query
			if len(q) > 50 {
				q = q[:47] + "..."
			}
			fmt.Fprintf(os.Stdout, "%-20s  %-50s  %-15s  %-7d  %d\n",
				e.CreatedAt.Local().Format("2006-01-02 15:04:05"), q, e.SortBy, e.ResultCount, e.FinalUnique)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().Int("limit", 20, "maximum number of entries to list")
	rootCmd.AddCommand(historyCmd)
}
