// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/pdiddy/paper-survey/internal/httputil"
	"github.com/pdiddy/paper-survey/pkg/types"
)

// crossrefAPIBase is the Crossref works endpoint. Declared as a var so tests
// can substitute an httptest server.
var crossrefAPIBase = "https://api.crossref.org/works"

const crossrefSelect = "title,author,issued,DOI,URL,container-title,type,is-referenced-by-count"

// CrossrefBackend queries the Crossref REST API. Best-effort single page.
type CrossrefBackend struct {
	Client *httputil.Client
}

// Name returns the backend identifier.
func (b *CrossrefBackend) Name() string { return "crossref" }

// Search fetches one page of works for the query.
func (b *CrossrefBackend) Search(ctx context.Context, query string, intent types.SearchIntent, seen map[DedupKey]struct{}, perPage int) ([]types.PaperMetadata, types.SourceStats, error) {
	if perPage > 100 {
		perPage = 100
	}
	params := url.Values{
		"query":  {query},
		"rows":   {fmt.Sprintf("%d", perPage)},
		"select": {crossrefSelect},
	}

	var filters []string
	if intent.DateStart != "" {
		filters = append(filters, "from-pub-date:"+intent.DateStart)
	}
	if intent.DateEnd != "" {
		filters = append(filters, "until-pub-date:"+intent.DateEnd)
	}
	if len(filters) > 0 {
		params.Set("filter", strings.Join(filters, ","))
	}
	if intent.SortBy == types.SortPublicationDate {
		params.Set("sort", "issued")
		params.Set("order", "desc")
	}

	var resp crossrefResponse
	if err := b.Client.GetJSON(ctx, crossrefAPIBase, params, nil, &resp); err != nil {
		return nil, types.SourceStats{}, fmt.Errorf("crossref: %w", err)
	}

	stats := types.SourceStats{RawFetched: len(resp.Message.Items), Pages: 1}
	var collected []types.PaperMetadata
	for _, item := range resp.Message.Items {
		p := crossrefToPaper(item)
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

// crossrefToPaper maps one work to the canonical record. Crossref gives no
// abstract, no open-access flag, and no influential citations.
func crossrefToPaper(item crossrefItem) types.PaperMetadata {
	p := types.PaperMetadata{
		URL: item.URL,
	}
	if len(item.Title) > 0 {
		p.Title = item.Title[0]
	}
	if item.DOI != "" {
		p.DOI = cleanDOI(item.DOI)
	}
	if len(item.ContainerTitle) > 0 {
		p.Venue = item.ContainerTitle[0]
	}
	for _, a := range item.Author {
		name := strings.TrimSpace(strings.TrimSpace(a.Given) + " " + strings.TrimSpace(a.Family))
		if name != "" {
			p.Authors = append(p.Authors, name)
		}
	}
	if item.Type != "" {
		p.PublicationTypes = []string{item.Type}
	}
	if item.IsReferencedByCount != nil {
		p.Citations = item.IsReferencedByCount
	}

	// issued date-parts: [year], [year, month], or [year, month, day].
	if len(item.Issued.DateParts) > 0 && len(item.Issued.DateParts[0]) > 0 {
		parts := item.Issued.DateParts[0]
		y := parts[0]
		p.Year = &y
		switch {
		case len(parts) >= 3:
			p.PublicationDate = fmt.Sprintf("%04d-%02d-%02d", parts[0], parts[1], parts[2])
		case len(parts) == 2:
			p.PublicationDate = fmt.Sprintf("%04d-%02d-01", parts[0], parts[1])
		}
	}
	return p
}

// Crossref API JSON structures.
type crossrefResponse struct {
	Message crossrefMessage `json:"message"`
}

type crossrefMessage struct {
	Items []crossrefItem `json:"items"`
}

type crossrefItem struct {
	Title               []string        `json:"title"`
	Author              []crossrefName  `json:"author"`
	Issued              crossrefIssued  `json:"issued"`
	DOI                 string          `json:"DOI"`
	URL                 string          `json:"URL"`
	ContainerTitle      []string        `json:"container-title"`
	Type                string          `json:"type"`
	IsReferencedByCount *int            `json:"is-referenced-by-count"`
}

type crossrefName struct {
	Given  string `json:"given"`
	Family string `json:"family"`
}

type crossrefIssued struct {
	DateParts [][]int `json:"date-parts"`
}
