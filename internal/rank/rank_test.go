// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package rank

import (
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/pdiddy/paper-survey/pkg/types"
)

func intp(n int) *int { return &n }

func titles(papers []types.PaperMetadata) []string {
	out := make([]string, len(papers))
	for i, p := range papers {
		out[i] = p.Title
	}
	return out
}

func TestRankCitationMode(t *testing.T) {
	papers := []types.PaperMetadata{
		{Title: "few", InfluentialCitations: intp(2)},
		{Title: "none"},
		{Title: "many", InfluentialCitations: intp(40)},
	}
	got := titles(Rank(papers, "citationCount"))
	if want := []string{"many", "few", "none"}; !reflect.DeepEqual(got, want) {
		t.Errorf("citation order = %v, want %v", got, want)
	}
}

func TestRankFreshnessMode(t *testing.T) {
	now := time.Now().UTC()
	recent := now.AddDate(0, 0, -7).Format("2006-01-02")
	old := now.AddDate(-3, 0, 0).Format("2006-01-02")

	papers := []types.PaperMetadata{
		{Title: "undated"},
		{Title: "old", PublicationDate: old},
		{Title: "recent", PublicationDate: recent},
	}
	got := titles(Rank(papers, "freshness"))
	if want := []string{"recent", "old", "undated"}; !reflect.DeepEqual(got, want) {
		t.Errorf("freshness order = %v, want %v", got, want)
	}
}

func TestRankFreshnessTieBreak(t *testing.T) {
	date := "2023-06-01"
	papers := []types.PaperMetadata{
		{Title: "quiet", PublicationDate: date},
		{Title: "influential", PublicationDate: date, InfluentialCitations: intp(10)},
	}
	got := titles(Rank(papers, "publicationDate"))
	assert.Equal(t, []string{"influential", "quiet"}, got)
}

func TestRankImportanceMode(t *testing.T) {
	now := time.Now().UTC()
	thisMonth := now.AddDate(0, 0, -10).Format("2006-01-02")
	decadeAgo := now.AddDate(-10, 0, 0).Format("2006-01-02")

	papers := []types.PaperMetadata{
		{Title: "old and obscure", PublicationDate: decadeAgo},
		{Title: "fresh top venue", PublicationDate: thisMonth, Venue: "NeurIPS", InfluentialCitations: intp(5)},
		{Title: "old but seminal", PublicationDate: decadeAgo, Venue: "ICML", InfluentialCitations: intp(500)},
	}
	got := titles(Rank(papers, "relevance"))
	assert.Equal(t, []string{"old but seminal", "fresh top venue", "old and obscure"}, got)
}

func TestRankImportanceInfluentialMonotonic(t *testing.T) {
	// Same date and venue: more influential citations never ranks lower.
	date := time.Now().UTC().AddDate(-1, 0, 0).Format("2006-01-02")
	papers := []types.PaperMetadata{}
	for _, n := range []int{0, 3, 1, 9} {
		papers = append(papers, types.PaperMetadata{
			Title:                fmt.Sprintf("n=%d", n),
			PublicationDate:      date,
			Venue:                "ICML",
			InfluentialCitations: intp(n),
		})
	}
	got := titles(Rank(papers, "importance"))
	assert.Equal(t, []string{"n=9", "n=3", "n=1", "n=0"}, got)
}

func TestRankUnknownModePreservesOrder(t *testing.T) {
	papers := []types.PaperMetadata{
		{Title: "b", InfluentialCitations: intp(1)},
		{Title: "a", InfluentialCitations: intp(99)},
	}
	got := titles(Rank(papers, "alphabetical"))
	assert.Equal(t, []string{"b", "a"}, got)
}

func TestRankStableOnReRank(t *testing.T) {
	papers := []types.PaperMetadata{
		{Title: "x", InfluentialCitations: intp(5)},
		{Title: "y", InfluentialCitations: intp(5)},
		{Title: "z", InfluentialCitations: intp(7)},
	}
	once := titles(Rank(papers, "citationCount"))
	twice := titles(Rank(papers, "citationCount"))
	assert.Equal(t, once, twice)
	assert.Equal(t, []string{"z", "x", "y"}, twice, "equal keys keep their relative order")
}

func TestTop(t *testing.T) {
	papers := []types.PaperMetadata{{Title: "1"}, {Title: "2"}, {Title: "3"}}
	assert.Len(t, Top(papers, 2), 2)
	assert.Len(t, Top(papers, 0), 3)
	assert.Len(t, Top(papers, 10), 3)
}

func TestVenueScore(t *testing.T) {
	assert.Equal(t, venueCurated, venueScore("NeurIPS"))
	assert.Equal(t, venueCurated, venueScore("icml"))
	assert.Equal(t, venuePresent, venueScore("Workshop on Nothing"))
	assert.Equal(t, venueAbsent, venueScore("  "))
}
