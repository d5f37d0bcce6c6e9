// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/pdiddy/paper-survey/pkg/types"
)

// venueSynonyms maps a normalized venue abbreviation to its official name
// forms. Both sides are compared after normVenueToken.
var venueSynonyms = map[string][]string{
	"NEURIPS": {"NEURIPS", "NIPS", "ADVANCES IN NEURAL INFORMATION PROCESSING SYSTEMS"},
	"ICLR":    {"ICLR", "INTERNATIONAL CONFERENCE ON LEARNING REPRESENTATIONS"},
	"ICCV":    {"ICCV", "INTERNATIONAL CONFERENCE ON COMPUTER VISION"},
	"CVPR":    {"CVPR", "IEEE CONFERENCE ON COMPUTER VISION AND PATTERN RECOGNITION"},
	"EMNLP":   {"EMNLP", "EMPIRICAL METHODS IN NATURAL LANGUAGE PROCESSING"},
	"ACL":     {"ACL", "ASSOCIATION FOR COMPUTATIONAL LINGUISTICS"},
	"ICML":    {"ICML", "INTERNATIONAL CONFERENCE ON MACHINE LEARNING"},
}

// rejectReason applies the unified client-side filter and returns the first
// failing predicate's reason, or "" when the record passes. One predicate
// set serves every backend; adapters never filter.
func rejectReason(p types.PaperMetadata, intent types.SearchIntent) string {
	if !authorMatch(p, intent.Author) {
		return "author_mismatch"
	}
	if !venueMatch(p, intent.Venues) {
		return fmt.Sprintf("venue_mismatch(venue=%q)", p.Venue)
	}
	if !pubTypesMatch(p, intent.PublicationTypes) {
		return fmt.Sprintf("pubtypes_mismatch(have=%v, want=%v)", p.PublicationTypes, intent.PublicationTypes)
	}
	if intent.OpenAccess && !p.OpenAccess {
		return "need_open_access_pdf"
	}
	if !dateMatch(p, intent.DateStart, intent.DateEnd) {
		return fmt.Sprintf("date_out_of_range(pub_date=%q)", p.PublicationDate)
	}
	if !minInfluentialMatch(p, intent.MinInfluentialCitations) {
		return "low_influential_citations"
	}
	return ""
}

// authorMatch passes when no author is requested, or any record author
// equals or contains the requested phrase, case-insensitively.
func authorMatch(p types.PaperMetadata, target string) bool {
	t := strings.ToLower(strings.TrimSpace(target))
	if t == "" {
		return true
	}
	for _, a := range p.Authors {
		al := strings.ToLower(a)
		if al == t || strings.Contains(al, t) {
			return true
		}
	}
	return false
}

var nonAlnumRe = regexp.MustCompile(`[^A-Z0-9]+`)

// normVenueToken uppercases and strips non-alphanumerics.
func normVenueToken(s string) string {
	return nonAlnumRe.ReplaceAllString(strings.ToUpper(s), "")
}

// venueMatch passes when no venue constraint is set. With a constraint, a
// record without a venue fails; otherwise the record venue must equal, or
// contain, or be contained by any synonym-expanded allowed venue.
func venueMatch(p types.PaperMetadata, venues []string) bool {
	if len(venues) == 0 {
		return true
	}
	if p.Venue == "" {
		return false
	}
	pv := normVenueToken(p.Venue)

	allowed := make(map[string]struct{})
	for _, v := range venues {
		vn := normVenueToken(v)
		allowed[vn] = struct{}{}
		for _, syn := range venueSynonyms[vn] {
			allowed[normVenueToken(syn)] = struct{}{}
		}
	}
	if _, ok := allowed[pv]; ok {
		return true
	}
	for v := range allowed {
		if v != "" && (strings.Contains(pv, v) || strings.Contains(v, pv)) {
			return true
		}
	}
	return false
}

// researchTypes are the type labels a record without type metadata may
// still satisfy.
var researchTypes = map[string]struct{}{"journalarticle": {}, "conference": {}}

// pubTypesMatch intersects requested and record type sets. A record with no
// type metadata passes only when everything requested is a research type;
// a bare "Review" requirement fails it.
func pubTypesMatch(p types.PaperMetadata, want []string) bool {
	if len(want) == 0 {
		return true
	}
	wantSet := make(map[string]struct{}, len(want))
	for _, w := range want {
		if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
			wantSet[w] = struct{}{}
		}
	}
	if len(wantSet) == 0 {
		return true
	}
	if len(p.PublicationTypes) == 0 {
		for w := range wantSet {
			if _, ok := researchTypes[w]; !ok {
				return false
			}
		}
		return true
	}
	for _, have := range p.PublicationTypes {
		if _, ok := wantSet[strings.ToLower(have)]; ok {
			return true
		}
	}
	return false
}

var (
	yearRe      = regexp.MustCompile(`^\d{4}$`)
	yearMonthRe = regexp.MustCompile(`^\d{4}-\d{2}$`)
)

// parseDateBound parses a "YYYY", "YYYY-MM", or "YYYY-MM-DD" bound. Year and
// month granularities resolve to the start of the period, or its end when
// end is true. Malformed bounds yield ok=false and are ignored.
func parseDateBound(s string, end bool) (time.Time, bool) {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return time.Time{}, false
	case yearRe.MatchString(s):
		t, err := time.Parse("2006", s)
		if err != nil {
			return time.Time{}, false
		}
		if end {
			return time.Date(t.Year(), time.December, 31, 0, 0, 0, 0, time.UTC), true
		}
		return t, true
	case yearMonthRe.MatchString(s):
		t, err := time.Parse("2006-01", s)
		if err != nil {
			return time.Time{}, false
		}
		if end {
			// First of next month, minus a day.
			return t.AddDate(0, 1, -1), true
		}
		return t, true
	default:
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	}
}

// dateMatch passes when no bound is set. With a bound, a record whose
// effective date cannot be resolved fails.
func dateMatch(p types.PaperMetadata, start, end string) bool {
	if start == "" && end == "" {
		return true
	}
	d, ok := p.EffectiveDate()
	if !ok {
		return false
	}
	if s, ok := parseDateBound(start, false); ok && d.Before(s) {
		return false
	}
	if e, ok := parseDateBound(end, true); ok && d.After(e) {
		return false
	}
	return true
}

// minInfluentialMatch treats an unset count as zero.
func minInfluentialMatch(p types.PaperMetadata, min *int) bool {
	if min == nil {
		return true
	}
	n := 0
	if p.InfluentialCitations != nil {
		n = *p.InfluentialCitations
	}
	return n >= *min
}
