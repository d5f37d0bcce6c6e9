// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"testing"

	"github.com/pdiddy/paper-survey/pkg/types"
)

func intp(n int) *int { return &n }

func TestKeyOfPrecedence(t *testing.T) {
	withAll := types.PaperMetadata{Title: "T", DOI: "10.1/X", URL: "https://example.org/t", Year: intp(2020)}
	if k := KeyOf(withAll); k.kind != "doi" || k.value != "10.1/x" {
		t.Errorf("DOI should win: got %+v", k)
	}

	withURL := types.PaperMetadata{Title: "T", URL: "HTTPS://Example.org/T", Year: intp(2020)}
	if k := KeyOf(withURL); k.kind != "url" || k.value != "https://example.org/t" {
		t.Errorf("URL should be lowercased: got %+v", k)
	}

	titleOnly := types.PaperMetadata{Title: "  A   Survey  of Things ", Year: intp(2021)}
	if k := KeyOf(titleOnly); k.kind != "ty" || k.value != "a survey of things" || k.year != 2021 {
		t.Errorf("title+year fallback: got %+v", k)
	}
}

func TestKeyOfSameTitleDifferentYear(t *testing.T) {
	a := types.PaperMetadata{Title: "Attention", Year: intp(2017)}
	b := types.PaperMetadata{Title: "Attention", Year: intp(2018)}
	if KeyOf(a) == KeyOf(b) {
		t.Error("same title with different years must not collide")
	}
}

func TestCleanDOI(t *testing.T) {
	tests := []struct{ in, want string }{
		{"https://doi.org/10.1000/xyz", "10.1000/xyz"},
		{"http://doi.org/10.1000/xyz", "10.1000/xyz"},
		{"10.1000/xyz", "10.1000/xyz"},
		{"  https://doi.org/10.1/a  ", "10.1/a"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := cleanDOI(tt.in); got != tt.want {
			t.Errorf("cleanDOI(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDedupeFinalFirstSeenWins(t *testing.T) {
	papers := []types.PaperMetadata{
		{Title: "First copy", DOI: "10.1/DUP", Venue: "ICML"},
		{Title: "Distinct", DOI: "10.1/other"},
		{Title: "Second copy", DOI: "10.1/dup", Venue: "arXiv"},
		{Title: "Same landing page", URL: "https://a.org/p"},
		{Title: "Same landing page again", URL: "https://A.org/p"},
	}
	got := dedupeFinal(papers)
	if len(got) != 3 {
		t.Fatalf("expected 3 unique records, got %d", len(got))
	}
	if got[0].Venue != "ICML" {
		t.Errorf("first occurrence must be kept, got venue %q", got[0].Venue)
	}
	if got[2].Title != "Same landing page" {
		t.Errorf("URL dedup kept wrong record: %q", got[2].Title)
	}
}
