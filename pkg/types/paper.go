// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the paper-survey service:
// the normalized search intent, the canonical paper record every backend
// response is mapped into, aggregation statistics, and asynchronous task state.
package types

import "time"

// PaperMetadata is the canonical record shape shared by every backend.
// Fields a backend does not report are left at their zero value, never
// fabricated. Pointer fields distinguish "absent" from "zero".
type PaperMetadata struct {
	// Title is the paper title as returned by the source.
	Title string `json:"title" yaml:"title"`

	// Authors lists the paper authors in source order.
	Authors []string `json:"authors" yaml:"authors"`

	// Abstract is the paper abstract or summary, if the source provides one.
	Abstract string `json:"abstract,omitempty" yaml:"abstract,omitempty"`

	// Year is the publication year.
	Year *int `json:"year,omitempty" yaml:"year,omitempty"`

	// DOI is the bare DOI without any https://doi.org/ prefix.
	DOI string `json:"doi,omitempty" yaml:"doi,omitempty"`

	// Venue is the journal or conference name as reported by the source.
	Venue string `json:"venue,omitempty" yaml:"venue,omitempty"`

	// URL is the landing page or full-text URL.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`

	// Citations is the total citation count.
	Citations *int `json:"citations,omitempty" yaml:"citations,omitempty"`

	// InfluentialCitations is the influential citation count (Semantic
	// Scholar's highly-influential metric; other sources leave it unset).
	InfluentialCitations *int `json:"influential_citations,omitempty" yaml:"influential_citations,omitempty"`

	// OpenAccess reports whether a freely downloadable PDF is available.
	OpenAccess bool `json:"open_access" yaml:"open_access"`

	// PublicationTypes lists the source's type labels (e.g. "JournalArticle",
	// "Conference", "Review", "preprint").
	PublicationTypes []string `json:"publication_types,omitempty" yaml:"publication_types,omitempty"`

	// PublicationDate is the publication date in ISO form (YYYY-MM-DD).
	PublicationDate string `json:"publication_date,omitempty" yaml:"publication_date,omitempty"`

	// FieldsOfStudy lists subject areas reported by the source.
	FieldsOfStudy []string `json:"fields_of_study,omitempty" yaml:"fields_of_study,omitempty"`

	// FirstAuthorHIndex is filled by the optional enrichment step before
	// ranking; it is never set by a backend adapter.
	FirstAuthorHIndex *int `json:"first_author_hindex,omitempty" yaml:"first_author_hindex,omitempty"`
}

// EffectiveDate resolves the date used by the date filter and the ranker:
// the explicit publication date when present (first 10 bytes, YYYY-MM-DD),
// otherwise July 1 of the publication year, otherwise unresolved.
func (p PaperMetadata) EffectiveDate() (time.Time, bool) {
	if len(p.PublicationDate) >= 10 {
		if t, err := time.Parse("2006-01-02", p.PublicationDate[:10]); err == nil {
			return t, true
		}
	}
	if p.Year != nil && *p.Year > 0 {
		return time.Date(*p.Year, time.July, 1, 0, 0, 0, 0, time.UTC), true
	}
	return time.Time{}, false
}

// SourceStats counts one backend's contribution across all queries of a run.
type SourceStats struct {
	// RawFetched is the number of records received from the backend.
	RawFetched int `json:"raw_fetched" yaml:"raw_fetched"`

	// RawUnique is the count remaining after the backend's own page and
	// cross-query dedup.
	RawUnique int `json:"raw_unique" yaml:"raw_unique"`

	// AfterFilter is the count remaining after the unified client-side filter.
	AfterFilter int `json:"after_filter" yaml:"after_filter"`

	// Pages is the number of result pages fetched.
	Pages int `json:"pages" yaml:"pages"`
}

// CombinedStats summarizes a whole aggregation run across all backends.
type CombinedStats struct {
	SelectedSources   []string               `json:"selected_sources" yaml:"selected_sources"`
	QueryCombinations int                    `json:"query_combinations" yaml:"query_combinations"`
	Queries           []string               `json:"queries" yaml:"queries"`
	PerPage           int                    `json:"per_page" yaml:"per_page"`
	TotalPages        int                    `json:"total_pages" yaml:"total_pages"`
	TotalRawFetched   int                    `json:"total_raw_fetched" yaml:"total_raw_fetched"`
	TotalRawUnique    int                    `json:"total_raw_unique" yaml:"total_raw_unique"`
	TotalAfterFilter  int                    `json:"total_after_filter" yaml:"total_after_filter"`
	FinalUniqueCount  int                    `json:"final_unique_count" yaml:"final_unique_count"`
	PerSource         map[string]SourceStats `json:"per_source" yaml:"per_source"`
}

// ResponseCounts is the condensed counter block returned to API clients.
type ResponseCounts struct {
	QueryCombinations int `json:"query_combinations"`
	TotalRawFetched   int `json:"total_raw_fetched"`
	TotalRawUnique    int `json:"total_raw_unique"`
	FinalUniqueCount  int `json:"final_unique_count"`
	AfterRankCut      int `json:"after_rank_cut"`
}

// SearchResponse is the full payload of a completed search, returned by the
// synchronous endpoint and stored as an asynchronous task's result.
type SearchResponse struct {
	Query            string          `json:"query"`
	NormalizedIntent SearchIntent    `json:"normalized_intent"`
	Counts           ResponseCounts  `json:"counts"`
	Stats            CombinedStats   `json:"stats"`
	Results          []PaperMetadata `json:"results"`
	Error            string          `json:"error,omitempty"`
}

// TopVenues is the curated set of top-tier venue abbreviations used for
// ranking boosts. Lookups should uppercase the candidate first.
var TopVenues = map[string]struct{}{
	// ML/AI
	"NEURIPS": {}, "NIPS": {}, "ICLR": {}, "ICML": {}, "AAAI": {}, "IJCAI": {}, "JMLR": {},
	// CV
	"CVPR": {}, "ICCV": {}, "ECCV": {}, "TPAMI": {}, "IJCV": {},
	// NLP
	"ACL": {}, "EMNLP": {}, "NAACL": {}, "COLING": {}, "TACL": {},
	// IR/Web/DB
	"SIGIR": {}, "WWW": {}, "KDD": {}, "VLDB": {}, "SIGMOD": {}, "ICDE": {},
}
