// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/paper-survey/pkg/types"
)

// FormatTable writes a search response as a human-readable table to w.
func FormatTable(resp types.SearchResponse, w io.Writer) {
	if resp.Error != "" {
		fmt.Fprintf(w, "Search failed: %s\n", resp.Error)
		return
	}
	if len(resp.Results) == 0 {
		fmt.Fprintln(w, "No results found.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-60s  %-20s  %-4s  %-6s  %s\n",
		"Rank", "Title", "Authors", "Year", "Cites", "Venue")
	fmt.Fprintln(w, strings.Repeat("-", 110))

	for i, p := range resp.Results {
		title := p.Title
		if len(title) > 60 {
			title = title[:57] + "..."
		}
		year := ""
		if p.Year != nil {
			year = fmt.Sprintf("%d", *p.Year)
		}
		cites := ""
		if p.Citations != nil {
			cites = fmt.Sprintf("%d", *p.Citations)
		}
		fmt.Fprintf(w, "%-4d  %-60s  %-20s  %-4s  %-6s  %s\n",
			i+1, title, formatAuthors(p.Authors), year, cites, p.Venue)
	}

	fmt.Fprintf(w, "\n%d results from %s", len(resp.Results),
		strings.Join(resp.Stats.SelectedSources, ", "))
	if dups := resp.Counts.TotalRawUnique - resp.Counts.FinalUniqueCount; dups > 0 {
		fmt.Fprintf(w, " (%d cross-source duplicates removed)", dups)
	}
	fmt.Fprintln(w)
}

// FormatJSON writes the full response as indented JSON to w.
func FormatJSON(resp types.SearchResponse, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

func formatAuthors(authors []string) string {
	switch len(authors) {
	case 0:
		return ""
	case 1:
		return truncate(authors[0], 20)
	default:
		return truncate(authors[0], 14) + " et al."
	}
}
