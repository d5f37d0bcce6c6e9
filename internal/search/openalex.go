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

// openAlexAPIBase is the OpenAlex Works search endpoint. Declared as a var
// so tests can substitute an httptest server.
var openAlexAPIBase = "https://api.openalex.org/works"

// OpenAlexBackend queries the OpenAlex Works API. Best-effort single page.
type OpenAlexBackend struct {
	Client *httputil.Client
	// Email is sent as the mailto parameter for polite pool access.
	Email string
}

// Name returns the backend identifier.
func (b *OpenAlexBackend) Name() string { return "openalex" }

// Search fetches one page of works for the query.
func (b *OpenAlexBackend) Search(ctx context.Context, query string, intent types.SearchIntent, seen map[DedupKey]struct{}, perPage int) ([]types.PaperMetadata, types.SourceStats, error) {
	if perPage > 200 {
		perPage = 200
	}
	params := url.Values{
		"search":   {query},
		"per-page": {fmt.Sprintf("%d", perPage)},
		"page":     {"1"},
	}

	var filters []string
	if intent.DateStart != "" {
		filters = append(filters, "from_publication_date:"+intent.DateStart)
	}
	if intent.DateEnd != "" {
		filters = append(filters, "to_publication_date:"+intent.DateEnd)
	}
	if intent.OpenAccess {
		filters = append(filters, "open_access.is_oa:true")
	}
	if len(filters) > 0 {
		params.Set("filter", strings.Join(filters, ","))
	}
	if intent.SortBy == types.SortPublicationDate {
		params.Set("sort", "publication_date:desc")
	}
	if b.Email != "" {
		params.Set("mailto", b.Email)
	}

	var resp openAlexResponse
	if err := b.Client.GetJSON(ctx, openAlexAPIBase, params, nil, &resp); err != nil {
		return nil, types.SourceStats{}, fmt.Errorf("openalex: %w", err)
	}

	stats := types.SourceStats{RawFetched: len(resp.Results), Pages: 1}
	var collected []types.PaperMetadata
	for _, work := range resp.Results {
		p := openAlexToPaper(work)
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

// openAlexToPaper maps one work to the canonical record. OpenAlex does not
// report influential citations; the field stays unset.
func openAlexToPaper(work openAlexWork) types.PaperMetadata {
	p := types.PaperMetadata{
		Title:           work.Title,
		Venue:           work.HostVenue.DisplayName,
		OpenAccess:      work.OpenAccess.IsOA,
		PublicationDate: work.PublicationDate,
	}
	for _, authorship := range work.Authorships {
		if authorship.Author.DisplayName != "" {
			p.Authors = append(p.Authors, authorship.Author.DisplayName)
		}
	}
	if work.PublicationYear > 0 {
		y := work.PublicationYear
		p.Year = &y
	}
	if work.DOI != "" {
		p.DOI = cleanDOI(work.DOI)
	}
	if work.PrimaryLocation.LandingPageURL != "" {
		p.URL = work.PrimaryLocation.LandingPageURL
	} else if work.ID != "" {
		p.URL = work.ID
	} else {
		p.URL = work.PrimaryLocation.PDFURL
	}
	if work.CitedByCount != nil {
		p.Citations = work.CitedByCount
	}
	if work.Type != "" {
		p.PublicationTypes = []string{work.Type}
	}
	for i, c := range work.Concepts {
		if i >= 5 {
			break
		}
		if c.DisplayName != "" {
			p.FieldsOfStudy = append(p.FieldsOfStudy, c.DisplayName)
		}
	}
	return p
}

// OpenAlex API JSON structures.
type openAlexResponse struct {
	Meta    openAlexMeta   `json:"meta"`
	Results []openAlexWork `json:"results"`
}

type openAlexMeta struct {
	Count int `json:"count"`
}

type openAlexWork struct {
	ID              string               `json:"id"`
	Title           string               `json:"title"`
	DOI             string               `json:"doi"`
	Type            string               `json:"type"`
	PublicationDate string               `json:"publication_date"`
	PublicationYear int                  `json:"publication_year"`
	CitedByCount    *int                 `json:"cited_by_count"`
	Authorships     []openAlexAuthorship `json:"authorships"`
	HostVenue       openAlexHostVenue    `json:"host_venue"`
	PrimaryLocation openAlexLocation     `json:"primary_location"`
	OpenAccess      openAlexOpenAccess   `json:"open_access"`
	Concepts        []openAlexConcept    `json:"concepts"`
}

type openAlexAuthorship struct {
	Author openAlexAuthor `json:"author"`
}

type openAlexAuthor struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type openAlexHostVenue struct {
	DisplayName string `json:"display_name"`
}

type openAlexLocation struct {
	LandingPageURL string `json:"landing_page_url"`
	PDFURL         string `json:"pdf_url"`
}

type openAlexOpenAccess struct {
	IsOA bool `json:"is_oa"`
}

type openAlexConcept struct {
	DisplayName string `json:"display_name"`
}
