// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/pdiddy/paper-survey/internal/httputil"
	"github.com/pdiddy/paper-survey/pkg/types"
)

// pubmedAPIBase is the NCBI E-utilities base URL. Declared as a var so tests
// can substitute an httptest server.
var pubmedAPIBase = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"

// PubMedBackend queries PubMed in two steps: ESearch for IDs, then ESummary
// for metadata. Best-effort single page; the two calls are sequential
// because the second depends on the first's ID list.
type PubMedBackend struct {
	Client *httputil.Client
}

// Name returns the backend identifier.
func (b *PubMedBackend) Name() string { return "pubmed" }

// Search resolves matching PubMed IDs, then fetches their summaries.
func (b *PubMedBackend) Search(ctx context.Context, query string, intent types.SearchIntent, seen map[DedupKey]struct{}, perPage int) ([]types.PaperMetadata, types.SourceStats, error) {
	if perPage > 200 {
		perPage = 200
	}

	term := query + pubmedDateClause(intent.DateStart, intent.DateEnd)
	params := url.Values{
		"db":      {"pubmed"},
		"term":    {term},
		"retmax":  {fmt.Sprintf("%d", perPage)},
		"retmode": {"json"},
	}
	if intent.SortBy == types.SortPublicationDate {
		params.Set("sort", "pub_date")
	}

	var search pubmedSearchResponse
	if err := b.Client.GetJSON(ctx, pubmedAPIBase+"/esearch.fcgi", params, nil, &search); err != nil {
		return nil, types.SourceStats{}, fmt.Errorf("pubmed esearch: %w", err)
	}
	ids := search.ESearchResult.IDList
	if len(ids) == 0 {
		return nil, types.SourceStats{Pages: 1}, nil
	}

	sumParams := url.Values{
		"db":      {"pubmed"},
		"id":      {strings.Join(ids, ",")},
		"retmode": {"json"},
	}
	var summary pubmedSummaryResponse
	if err := b.Client.GetJSON(ctx, pubmedAPIBase+"/esummary.fcgi", sumParams, nil, &summary); err != nil {
		return nil, types.SourceStats{Pages: 1}, fmt.Errorf("pubmed esummary: %w", err)
	}

	stats := types.SourceStats{Pages: 1}
	var collected []types.PaperMetadata
	for _, id := range ids {
		raw, ok := summary.Result[id]
		if !ok {
			continue
		}
		// The result object mixes per-ID documents with a "uids" array,
		// so each entry is decoded individually.
		var doc pubmedDoc
		if err := json.Unmarshal(raw, &doc); err != nil {
			continue
		}
		stats.RawFetched++
		p := pubmedToPaper(id, doc)
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

// pubmedDateClause builds a [Date - Publication] range term, open-ended on
// whichever side has no bound.
func pubmedDateClause(start, end string) string {
	switch {
	case start != "" && end != "":
		return fmt.Sprintf(` AND (%q[Date - Publication] : %q[Date - Publication])`, start, end)
	case start != "":
		return fmt.Sprintf(` AND (%q[Date - Publication] : "3000"[Date - Publication])`, start)
	case end != "":
		return fmt.Sprintf(` AND ("1800"[Date - Publication] : %q[Date - Publication])`, end)
	default:
		return ""
	}
}

var pubmedYearRe = regexp.MustCompile(`\d{4}`)

// pubmedToPaper maps one ESummary document to the canonical record. PubMed
// reports no citation counts and is not itself an open-access repository.
func pubmedToPaper(id string, doc pubmedDoc) types.PaperMetadata {
	p := types.PaperMetadata{
		Title: strings.TrimSpace(doc.Title),
		URL:   "https://pubmed.ncbi.nlm.nih.gov/" + id + "/",
		Venue: strings.TrimSpace(doc.FullJournalName),
	}
	if p.Venue == "" {
		p.Venue = strings.TrimSpace(doc.Source)
	}
	for i, a := range doc.Authors {
		if i >= arxivAuthorsMax {
			break
		}
		if name := strings.TrimSpace(a.Name); name != "" {
			p.Authors = append(p.Authors, name)
		}
	}

	pubdate := strings.TrimSpace(doc.PubDate)
	if m := pubmedYearRe.FindString(pubdate); m != "" {
		var y int
		fmt.Sscanf(m, "%d", &y)
		if y > 0 {
			p.Year = &y
			// ESummary dates like "2024 Jan 05" rarely parse as ISO;
			// fall back to January 1 when only the year is known.
			p.PublicationDate = fmt.Sprintf("%04d-01-01", y)
		}
	}

	for _, eid := range doc.ArticleIDs {
		if strings.EqualFold(eid.IDType, "doi") {
			p.DOI = cleanDOI(eid.Value)
			break
		}
	}

	if len(doc.PubType) > 0 {
		n := len(doc.PubType)
		if n > 5 {
			n = 5
		}
		p.PublicationTypes = doc.PubType[:n]
	} else {
		p.PublicationTypes = []string{"journal-article"}
	}
	p.FieldsOfStudy = []string{"Biomedicine"}
	return p
}

// PubMed E-utilities JSON structures.
type pubmedSearchResponse struct {
	ESearchResult pubmedESearchResult `json:"esearchresult"`
}

type pubmedESearchResult struct {
	Count  string   `json:"count"`
	IDList []string `json:"idlist"`
}

type pubmedSummaryResponse struct {
	Result map[string]json.RawMessage `json:"result"`
}

type pubmedDoc struct {
	Title           string            `json:"title"`
	Authors         []pubmedAuthor    `json:"authors"`
	PubDate         string            `json:"pubdate"`
	FullJournalName string            `json:"fulljournalname"`
	Source          string            `json:"source"`
	PubType         []string          `json:"pubtype"`
	ArticleIDs      []pubmedArticleID `json:"articleids"`
}

type pubmedAuthor struct {
	Name string `json:"name"`
}

type pubmedArticleID struct {
	IDType string `json:"idtype"`
	Value  string `json:"value"`
}
