// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rank orders merged search results. Ranking is pure and
// deterministic: stable sorts over the canonical records, no network calls
// except the optional author enrichment step.
package rank

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/pdiddy/paper-survey/pkg/types"
)

// Importance score weights. Recency decays by half per year.
const (
	recencyWeight = 0.4
	venueWeight   = 0.3
	citedWeight   = 0.3

	venueCurated = 1.0
	venuePresent = 0.5
	venueAbsent  = 0.3
)

// Rank orders papers by the requested mode and returns the same slice.
// Unknown modes leave the input order untouched. All sorts are stable, so
// ranking an already ranked list changes nothing.
func Rank(papers []types.PaperMetadata, mode string) []types.PaperMetadata {
	switch strings.TrimSpace(mode) {
	case "citationCount", "influentialCitationCount", "influentialCitations":
		sort.SliceStable(papers, func(i, j int) bool {
			return influential(papers[i]) > influential(papers[j])
		})
	case "publicationDate", "freshness", "date", "newest":
		now := time.Now()
		sort.SliceStable(papers, func(i, j int) bool {
			di, iok := daysOld(papers[i], now)
			dj, jok := daysOld(papers[j], now)
			if iok != jok {
				return iok
			}
			if iok && di != dj {
				return di < dj
			}
			if ci, cj := influential(papers[i]), influential(papers[j]); ci != cj {
				return ci > cj
			}
			return venueScore(papers[i].Venue) > venueScore(papers[j].Venue)
		})
	case "", "importance", types.SortRelevance:
		now := time.Now()
		sort.SliceStable(papers, func(i, j int) bool {
			return importance(papers[i], now) > importance(papers[j], now)
		})
	}
	return papers
}

// Top returns at most n papers from the front of the ranked list.
func Top(papers []types.PaperMetadata, n int) []types.PaperMetadata {
	if n <= 0 || n >= len(papers) {
		return papers
	}
	return papers[:n]
}

// importance blends recency, venue standing, and influential citations.
func importance(p types.PaperMetadata, now time.Time) float64 {
	recency := 0.0
	if days, ok := daysOld(p, now); ok {
		recency = math.Exp2(-days / 365)
	}
	cited := math.Log1p(float64(influential(p)))
	return recencyWeight*recency + venueWeight*venueScore(p.Venue) + citedWeight*cited
}

// daysOld resolves the paper's age in days, clamped at zero for records
// dated in the future.
func daysOld(p types.PaperMetadata, now time.Time) (float64, bool) {
	d, ok := p.EffectiveDate()
	if !ok {
		return 0, false
	}
	days := now.Sub(d).Hours() / 24
	if days < 0 {
		days = 0
	}
	return days, true
}

func influential(p types.PaperMetadata) int {
	if p.InfluentialCitations == nil {
		return 0
	}
	return *p.InfluentialCitations
}

// venueScore gives full credit to a curated top-tier venue, partial credit
// to any named venue, the floor to none.
func venueScore(venue string) float64 {
	v := strings.TrimSpace(venue)
	if v == "" {
		return venueAbsent
	}
	if _, ok := types.TopVenues[strings.ToUpper(v)]; ok {
		return venueCurated
	}
	return venuePresent
}
