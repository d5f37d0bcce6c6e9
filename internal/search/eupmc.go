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

// eupmcAPIBase is the Europe PMC REST search endpoint. Declared as a var so
// tests can substitute an httptest server.
var eupmcAPIBase = "https://www.ebi.ac.uk/europepmc/webservices/rest/search"

// EuropePMCBackend queries the Europe PMC REST API. Best-effort single page;
// the date window is encoded into the query string, everything else is left
// to the unified client-side filter.
type EuropePMCBackend struct {
	Client *httputil.Client
}

// Name returns the backend identifier.
func (b *EuropePMCBackend) Name() string { return "eupmc" }

// Search fetches one page of results for the query.
func (b *EuropePMCBackend) Search(ctx context.Context, query string, intent types.SearchIntent, seen map[DedupKey]struct{}, perPage int) ([]types.PaperMetadata, types.SourceStats, error) {
	if perPage > 1000 {
		perPage = 1000
	}
	params := url.Values{
		"query":      {query + eupmcDateClause(intent.DateStart, intent.DateEnd)},
		"format":     {"json"},
		"pageSize":   {fmt.Sprintf("%d", perPage)},
		"resultType": {"core"},
	}

	var resp eupmcResponse
	if err := b.Client.GetJSON(ctx, eupmcAPIBase, params, nil, &resp); err != nil {
		return nil, types.SourceStats{}, fmt.Errorf("europe pmc: %w", err)
	}

	stats := types.SourceStats{RawFetched: len(resp.ResultList.Result), Pages: 1}
	var collected []types.PaperMetadata
	for _, rec := range resp.ResultList.Result {
		p := eupmcToPaper(rec)
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

// eupmcDateClause appends a FIRST_PDATE range, open-ended on whichever side
// has no bound.
func eupmcDateClause(start, end string) string {
	switch {
	case start != "" && end != "":
		return fmt.Sprintf(" AND FIRST_PDATE:[%s TO %s]", start, end)
	case start != "":
		return fmt.Sprintf(" AND FIRST_PDATE:[%s TO 3000-12-31]", start)
	case end != "":
		return fmt.Sprintf(" AND FIRST_PDATE:[1800-01-01 TO %s]", end)
	default:
		return ""
	}
}

// eupmcToPaper maps one core result to the canonical record.
func eupmcToPaper(rec eupmcResult) types.PaperMetadata {
	p := types.PaperMetadata{
		Title:      strings.TrimSpace(rec.Title),
		OpenAccess: strings.EqualFold(rec.IsOpenAccess, "Y"),
	}
	p.Venue = strings.TrimSpace(rec.JournalInfo.Journal.Title)
	if p.Venue == "" {
		p.Venue = strings.TrimSpace(rec.Source)
	}

	for _, a := range rec.AuthorList.Author {
		name := strings.TrimSpace(strings.TrimSpace(a.FirstName) + " " + strings.TrimSpace(a.LastName))
		if name == "" {
			name = strings.TrimSpace(a.FullName)
		}
		if name != "" {
			p.Authors = append(p.Authors, name)
		}
		if len(p.Authors) >= arxivAuthorsMax {
			break
		}
	}

	if rec.PubYear != "" {
		var y int
		if _, err := fmt.Sscanf(rec.PubYear, "%d", &y); err == nil && y > 0 {
			p.Year = &y
		}
	}
	if len(rec.FirstPublicationDate) >= 4 {
		p.PublicationDate = rec.FirstPublicationDate
		if p.Year == nil {
			var y int
			if _, err := fmt.Sscanf(rec.FirstPublicationDate[:4], "%d", &y); err == nil && y > 0 {
				p.Year = &y
			}
		}
	}

	if doi := cleanDOI(rec.DOI); doi != "" {
		p.DOI = doi
	}
	for _, u := range rec.FullTextURLList.FullTextURL {
		if u.URL != "" {
			p.URL = u.URL
			break
		}
	}
	if p.URL == "" {
		if rec.PMID != "" {
			p.URL = "https://europepmc.org/abstract/MED/" + rec.PMID
		} else {
			p.URL = rec.ID
		}
	}

	if rec.CitedByCount != nil {
		p.Citations = rec.CitedByCount
	}
	if rec.PubType != "" {
		p.PublicationTypes = []string{rec.PubType}
	}
	p.FieldsOfStudy = []string{"Biomedicine"}
	return p
}

// Europe PMC API JSON structures.
type eupmcResponse struct {
	ResultList eupmcResultList `json:"resultList"`
}

type eupmcResultList struct {
	Result []eupmcResult `json:"result"`
}

type eupmcResult struct {
	ID                   string             `json:"id"`
	PMID                 string             `json:"pmid"`
	Title                string             `json:"title"`
	Source               string             `json:"source"`
	DOI                  string             `json:"doi"`
	PubYear              string             `json:"pubYear"`
	FirstPublicationDate string             `json:"firstPublicationDate"`
	IsOpenAccess         string             `json:"isOpenAccess"`
	CitedByCount         *int               `json:"citedByCount"`
	PubType              string             `json:"pubType"`
	AuthorList           eupmcAuthorList    `json:"authorList"`
	JournalInfo          eupmcJournalInfo   `json:"journalInfo"`
	FullTextURLList      eupmcFullTextURLs  `json:"fullTextUrlList"`
}

type eupmcAuthorList struct {
	Author []eupmcAuthor `json:"author"`
}

type eupmcAuthor struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	FullName  string `json:"fullName"`
}

type eupmcJournalInfo struct {
	Journal eupmcJournal `json:"journal"`
}

type eupmcJournal struct {
	Title string `json:"title"`
}

type eupmcFullTextURLs struct {
	FullTextURL []eupmcFullTextURL `json:"fullTextUrl"`
}

type eupmcFullTextURL struct {
	URL string `json:"url"`
}
