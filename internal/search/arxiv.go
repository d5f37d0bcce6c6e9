// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"strings"

	"github.com/pdiddy/paper-survey/internal/httputil"
	"github.com/pdiddy/paper-survey/pkg/types"
)

// arxivAPIBase is the arXiv query endpoint. Declared as a var so tests can
// substitute an httptest server.
var arxivAPIBase = "https://export.arxiv.org/api/query"

const (
	arxivAbstractMax = 4000
	arxivAuthorsMax  = 25
)

// ArxivBackend queries the arXiv Atom API. Best-effort single page; arXiv
// has no server-side date filter, so the date window is left to the unified
// client-side filter.
type ArxivBackend struct {
	Client *httputil.Client
}

// Name returns the backend identifier.
func (b *ArxivBackend) Name() string { return "arxiv" }

// Search fetches one page of entries for the query.
func (b *ArxivBackend) Search(ctx context.Context, query string, intent types.SearchIntent, seen map[DedupKey]struct{}, perPage int) ([]types.PaperMetadata, types.SourceStats, error) {
	if perPage > 100 {
		perPage = 100
	}
	sortBy := "relevance"
	if intent.SortBy == types.SortPublicationDate {
		sortBy = "submittedDate"
	}
	params := url.Values{
		"search_query": {arxivQueryString(query)},
		"start":        {"0"},
		"max_results":  {fmt.Sprintf("%d", perPage)},
		"sortBy":       {sortBy},
		"sortOrder":    {"descending"},
	}

	body, err := b.Client.Get(ctx, arxivAPIBase, params, map[string]string{"Accept": "application/atom+xml"})
	if err != nil {
		return nil, types.SourceStats{}, fmt.Errorf("arxiv: %w", err)
	}

	var feed arxivFeed
	if err := xml.Unmarshal(body, &feed); err != nil {
		return nil, types.SourceStats{Pages: 1}, fmt.Errorf("arxiv: parsing feed: %w", err)
	}

	stats := types.SourceStats{RawFetched: len(feed.Entries), Pages: 1}
	var collected []types.PaperMetadata
	for _, entry := range feed.Entries {
		p := arxivToPaper(entry)
		k := KeyOf(p)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		stats.RawUnique++
		collected = append(collected, p)
	}
	return collected, stats, nil
}

// arxivQueryString maps a combined query (possibly containing quoted
// phrases) to arXiv's all: field syntax, AND-joining terms.
func arxivQueryString(q string) string {
	tokens := splitTerms(q)
	if len(tokens) == 0 {
		return `all:"machine learning"`
	}
	mapped := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if strings.HasPrefix(t, `"`) && strings.HasSuffix(t, `"`) && len(t) >= 2 {
			mapped = append(mapped, `all:"`+t[1:len(t)-1]+`"`)
		} else {
			mapped = append(mapped, "all:"+t)
		}
	}
	return strings.Join(mapped, " AND ")
}

// arxivToPaper maps one Atom entry to the canonical record. Every arXiv
// entry is an open-access preprint; citation counts are not available.
func arxivToPaper(entry arxivEntry) types.PaperMetadata {
	p := types.PaperMetadata{
		Title:            strings.TrimSpace(entry.Title),
		Abstract:         truncate(strings.TrimSpace(entry.Summary), arxivAbstractMax),
		Venue:            "arXiv",
		URL:              strings.TrimSpace(entry.ID),
		OpenAccess:       true,
		PublicationTypes: []string{"preprint"},
	}
	for i, a := range entry.Authors {
		if i >= arxivAuthorsMax {
			break
		}
		if name := strings.TrimSpace(a.Name); name != "" {
			p.Authors = append(p.Authors, name)
		}
	}
	if published := strings.TrimSpace(entry.Published); len(published) >= 10 {
		p.PublicationDate = published[:10]
		var y int
		if _, err := fmt.Sscanf(published[:4], "%d", &y); err == nil && y > 0 {
			p.Year = &y
		}
	}
	if doi := cleanDOI(entry.DOI); doi != "" {
		p.DOI = doi
	}
	return p
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

// arXiv Atom feed XML structures.
type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID        string        `xml:"id"`
	Title     string        `xml:"title"`
	Summary   string        `xml:"summary"`
	Published string        `xml:"published"`
	Authors   []arxivAuthor `xml:"author"`
	DOI       string        `xml:"doi"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}
