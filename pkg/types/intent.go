// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Sort mode values accepted in SearchIntent.SortBy. The ranker also accepts
// a handful of aliases; unrecognized modes leave the input order untouched.
const (
	SortRelevance       = "relevance"
	SortCitationCount   = "citationCount"
	SortPublicationDate = "publicationDate"
)

// SearchIntent is the normalized structured query produced by the upstream
// intent parser. It is created once per request and never mutated afterwards.
type SearchIntent struct {
	// AnyGroups is an AND-of-OR keyword structure: OR within a group,
	// AND across groups. Multi-word phrases are quoted during expansion.
	AnyGroups [][]string `json:"any_groups" yaml:"any_groups"`

	// EnabledSources selects the backends to query. The aggregator
	// normalizes this list: unknown names are dropped, the primary source
	// is forced in, and the list is capped (both configurable).
	EnabledSources []string `json:"enabled_sources" yaml:"enabled_sources"`

	// Venues restricts results to a venue allow-list (abbreviations such
	// as "ICLR"; synonyms are expanded during filtering).
	Venues []string `json:"venues,omitempty" yaml:"venues,omitempty"`

	// Author is an exact or substring author phrase to require.
	Author string `json:"author,omitempty" yaml:"author,omitempty"`

	// DateStart and DateEnd bound the effective publication date. Accepted
	// granularities: "YYYY", "YYYY-MM", "YYYY-MM-DD".
	DateStart string `json:"date_start,omitempty" yaml:"date_start,omitempty"`
	DateEnd   string `json:"date_end,omitempty" yaml:"date_end,omitempty"`

	// OpenAccess requires a freely downloadable PDF when true.
	OpenAccess bool `json:"open_access" yaml:"open_access"`

	// PublicationTypes restricts record types ("JournalArticle",
	// "Conference", "Review").
	PublicationTypes []string `json:"publication_types,omitempty" yaml:"publication_types,omitempty"`

	// MinInfluentialCitations is a lower bound on influential citations.
	MinInfluentialCitations *int `json:"min_influential_citations,omitempty" yaml:"min_influential_citations,omitempty"`

	// MaxResults caps the final result list. Bounded by the configured
	// ceiling; requests above it are rejected before any network call.
	MaxResults int `json:"max_results" yaml:"max_results"`

	// SortBy selects the ranking mode.
	SortBy string `json:"sort_by" yaml:"sort_by"`

	// Language is a hint for downstream consumers; no backend filters on it.
	Language string `json:"language,omitempty" yaml:"language,omitempty"`
}
