// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-survey/internal/intent"
	"github.com/pdiddy/paper-survey/internal/search"
	"github.com/pdiddy/paper-survey/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Run a one-shot multi-source paper search",
	Long: `Search runs the whole pipeline once and prints the results. The query
comes either from --intent, a JSON intent document selecting keyword groups,
sources, and filters, or from --query, free text treated as a single keyword
group.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		verbose, _ := cmd.Flags().GetBool("verbose")
		log := setupLogging(verbose)

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		intentFile, _ := cmd.Flags().GetString("intent")
		query, _ := cmd.Flags().GetString("query")
		if (intentFile == "") == (query == "") {
			return fmt.Errorf("exactly one of --intent or --query is required")
		}

		exec, _, cleanup, err := newExecutor(cfg, log)
		if err != nil {
			return err
		}
		defer cleanup()

		var resp types.SearchResponse
		if intentFile != "" {
			doc, err := os.ReadFile(intentFile)
			if err != nil {
				return fmt.Errorf("reading intent file: %w", err)
			}
			exec.Parser = intent.JSONParser{}
			resp = exec.Search(cmd.Context(), string(doc))
		} else {
			exec.Parser = intent.FreeTextParser{}
			resp = exec.Search(cmd.Context(), query)
		}

		if out, _ := cmd.Flags().GetString("out"); out != "" {
			if err := search.WriteResultFile(out, resp); err != nil {
				return err
			}
			fmt.Fprintln(os.Stderr, "Saved results to", out)
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return search.FormatJSON(resp, os.Stdout)
		}
		search.FormatTable(resp, os.Stdout)
		if resp.Error != "" {
			return fmt.Errorf("search failed: %s", resp.Error)
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().String("intent", "", "path to a JSON intent document")
	searchCmd.Flags().String("query", "", "free-text research question")
	searchCmd.Flags().Bool("json", false, "output the full response as JSON")
	searchCmd.Flags().String("out", "", "save results to a YAML file")

	rootCmd.AddCommand(searchCmd)
}
