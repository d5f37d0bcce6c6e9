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

// semanticAPIBase is the Semantic Scholar bulk search endpoint. Declared as
// a var so tests can substitute an httptest server.
var semanticAPIBase = "https://api.semanticscholar.org/graph/v1/paper/search/bulk"

const semanticFields = "paperId,title,url,abstract,authors,year,venue,externalIds," +
	"citationCount,influentialCitationCount,openAccessPdf,publicationTypes," +
	"publicationDate,fieldsOfStudy"

// SemanticScholarBackend queries the Semantic Scholar bulk API. It is the
// primary backend and the only one that paginates within a single call.
type SemanticScholarBackend struct {
	Client   *httputil.Client
	APIKey   string
	MaxPages int
}

// Name returns the backend identifier.
func (b *SemanticScholarBackend) Name() string { return "s2" }

// Search pages through the bulk endpoint for one query. Pages are strictly
// sequential: each offset depends on the previous page's size. Paging stops
// at MaxPages, at the server-reported total, or once a page's worth of new
// unique records has been collected.
func (b *SemanticScholarBackend) Search(ctx context.Context, query string, intent types.SearchIntent, seen map[DedupKey]struct{}, perPage int) ([]types.PaperMetadata, types.SourceStats, error) {
	params := url.Values{
		"query":  {query},
		"fields": {semanticFields},
		"limit":  {fmt.Sprintf("%d", perPage)},
	}
	if intent.DateStart != "" || intent.DateEnd != "" {
		params.Set("publicationDateOrYear", intent.DateStart+":"+intent.DateEnd)
	}
	if len(intent.Venues) > 0 {
		params.Set("venue", strings.Join(intent.Venues, ","))
	}
	if intent.OpenAccess {
		params.Set("openAccessPdf", "true")
	}
	if pts := dedupStrings(intent.PublicationTypes); len(pts) > 0 {
		params.Set("publicationTypes", strings.Join(pts, ","))
	}
	switch intent.SortBy {
	case types.SortCitationCount:
		params.Set("sort", "citationCount:desc")
	case types.SortPublicationDate:
		params.Set("sort", "publicationDate:desc")
	}

	headers := map[string]string{}
	if b.APIKey != "" {
		headers["x-api-key"] = b.APIKey
	}

	var (
		collected   []types.PaperMetadata
		stats       types.SourceStats
		serverTotal = -1
		offset      int
	)

	for stats.Pages < b.MaxPages {
		params.Set("offset", fmt.Sprintf("%d", offset))

		var resp semanticResponse
		if err := b.Client.GetJSON(ctx, semanticAPIBase, params, headers, &resp); err != nil {
			return collected, stats, fmt.Errorf("semantic scholar: %w", err)
		}
		if serverTotal < 0 {
			serverTotal = resp.Total
		}
		if len(resp.Data) == 0 {
			break
		}

		stats.Pages++
		stats.RawFetched += len(resp.Data)

		for _, item := range resp.Data {
			p := semanticToPaper(item)
			k := KeyOf(p)
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			stats.RawUnique++
			collected = append(collected, p)
		}

		if serverTotal >= 0 && offset+len(resp.Data) >= serverTotal {
			break
		}
		// Enough material for this query; stop early to save quota.
		if len(collected) >= perPage {
			break
		}
		offset += len(resp.Data)
	}
	return collected, stats, nil
}

// semanticToPaper maps one bulk-API item to the canonical record.
func semanticToPaper(item semanticPaper) types.PaperMetadata {
	p := types.PaperMetadata{
		Title:            item.Title,
		Abstract:         item.Abstract,
		Venue:            item.Venue,
		URL:              item.URL,
		OpenAccess:       item.OpenAccessPdf != nil,
		PublicationTypes: item.PublicationTypes,
		PublicationDate:  item.PublicationDate,
		FieldsOfStudy:    item.FieldsOfStudy,
	}
	for _, a := range item.Authors {
		if a.Name != "" {
			p.Authors = append(p.Authors, a.Name)
		}
	}
	if item.Year > 0 {
		y := item.Year
		p.Year = &y
	}
	if item.ExternalIDs.DOI != "" {
		p.DOI = cleanDOI(item.ExternalIDs.DOI)
	}
	if item.CitationCount != nil {
		p.Citations = item.CitationCount
	}
	if item.InfluentialCitationCount != nil {
		p.InfluentialCitations = item.InfluentialCitationCount
	}
	return p
}

// dedupStrings removes duplicates preserving order, dropping blanks.
func dedupStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	var out []string
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// Semantic Scholar bulk API JSON structures.
type semanticResponse struct {
	Total int             `json:"total"`
	Token string          `json:"token"`
	Data  []semanticPaper `json:"data"`
}

type semanticPaper struct {
	PaperID                  string              `json:"paperId"`
	Title                    string              `json:"title"`
	URL                      string              `json:"url"`
	Abstract                 string              `json:"abstract"`
	Year                     int                 `json:"year"`
	Venue                    string              `json:"venue"`
	CitationCount            *int                `json:"citationCount"`
	InfluentialCitationCount *int                `json:"influentialCitationCount"`
	OpenAccessPdf            *semanticOpenAccess `json:"openAccessPdf"`
	PublicationTypes         []string            `json:"publicationTypes"`
	PublicationDate          string              `json:"publicationDate"`
	FieldsOfStudy            []string            `json:"fieldsOfStudy"`
	Authors                  []semanticAuthor    `json:"authors"`
	ExternalIDs              semanticExternalIDs `json:"externalIds"`
}

type semanticOpenAccess struct {
	URL string `json:"url"`
}

type semanticAuthor struct {
	AuthorID string `json:"authorId"`
	Name     string `json:"name"`
}

type semanticExternalIDs struct {
	DOI   string `json:"DOI"`
	ArXiv string `json:"ArXiv"`
}
