// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-survey/pkg/types"
)

func TestOpenAlexSearch(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		gotQuery = map[string]string{
			"search":   q.Get("search"),
			"per-page": q.Get("per-page"),
			"filter":   q.Get("filter"),
			"mailto":   q.Get("mailto"),
		}
		fmt.Fprint(w, `{"meta": {"count": 1}, "results": [{
			"id": "https://openalex.org/W1",
			"title": "Graph Survey",
			"doi": "https://doi.org/10.1/graph",
			"type": "article",
			"publication_date": "2023-01-15",
			"publication_year": 2023,
			"cited_by_count": 7,
			"authorships": [{"author": {"display_name": "Ada Lovelace"}}],
			"host_venue": {"display_name": "Nature"},
			"primary_location": {"landing_page_url": "https://nature.com/g"},
			"open_access": {"is_oa": true},
			"concepts": [{"display_name": "Computer science"}]
		}]}`)
	}))
	defer srv.Close()

	orig := openAlexAPIBase
	openAlexAPIBase = srv.URL
	defer func() { openAlexAPIBase = orig }()

	b := &OpenAlexBackend{Client: testHTTPClient(srv), Email: "lab@example.org"}
	intent := types.SearchIntent{DateStart: "2022-01-01", OpenAccess: true}
	records, stats, err := b.Search(context.Background(), "graphs", intent, map[DedupKey]struct{}{}, 300)
	require.NoError(t, err)
	require.Len(t, records, 1)

	assert.Equal(t, "graphs", gotQuery["search"])
	assert.Equal(t, "200", gotQuery["per-page"], "per-page clamps at 200")
	assert.Equal(t, "from_publication_date:2022-01-01,open_access.is_oa:true", gotQuery["filter"])
	assert.Equal(t, "lab@example.org", gotQuery["mailto"])

	p := records[0]
	assert.Equal(t, "Graph Survey", p.Title)
	assert.Equal(t, "10.1/graph", p.DOI)
	assert.Equal(t, "Nature", p.Venue)
	assert.Equal(t, "https://nature.com/g", p.URL)
	assert.Equal(t, []string{"Ada Lovelace"}, p.Authors)
	assert.Equal(t, 7, *p.Citations)
	assert.Nil(t, p.InfluentialCitations, "openalex has no influential counts")
	assert.True(t, p.OpenAccess)
	assert.Equal(t, 1, stats.RawUnique)
}

func TestOpenAlexURLFallback(t *testing.T) {
	work := openAlexWork{ID: "https://openalex.org/W2", Title: "No landing page"}
	p := openAlexToPaper(work)
	assert.Equal(t, "https://openalex.org/W2", p.URL)
}

func TestCrossrefSearch(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		gotQuery = map[string]string{
			"query":  q.Get("query"),
			"rows":   q.Get("rows"),
			"filter": q.Get("filter"),
			"sort":   q.Get("sort"),
			"order":  q.Get("order"),
		}
		fmt.Fprint(w, `{"message": {"items": [{
			"title": ["A Crossref Paper"],
			"author": [{"given": "Grace", "family": "Hopper"}],
			"issued": {"date-parts": [[2021, 3]]},
			"DOI": "10.1/cr",
			"URL": "https://dx.doi.org/10.1/cr",
			"container-title": ["CACM"],
			"type": "journal-article",
			"is-referenced-by-count": 42
		}]}}`)
	}))
	defer srv.Close()

	orig := crossrefAPIBase
	crossrefAPIBase = srv.URL
	defer func() { crossrefAPIBase = orig }()

	b := &CrossrefBackend{Client: testHTTPClient(srv)}
	intent := types.SearchIntent{DateStart: "2020", DateEnd: "2022", SortBy: types.SortPublicationDate}
	records, _, err := b.Search(context.Background(), "systems", intent, map[DedupKey]struct{}{}, 250)
	require.NoError(t, err)
	require.Len(t, records, 1)

	assert.Equal(t, "100", gotQuery["rows"], "rows clamps at 100")
	assert.Equal(t, "from-pub-date:2020,until-pub-date:2022", gotQuery["filter"])
	assert.Equal(t, "issued", gotQuery["sort"])
	assert.Equal(t, "desc", gotQuery["order"])

	p := records[0]
	assert.Equal(t, "A Crossref Paper", p.Title)
	assert.Equal(t, []string{"Grace Hopper"}, p.Authors)
	assert.Equal(t, 2021, *p.Year)
	assert.Equal(t, "2021-03-01", p.PublicationDate, "year-month issued date resolves to first of month")
	assert.Equal(t, "CACM", p.Venue)
	assert.Equal(t, 42, *p.Citations)
	assert.Equal(t, []string{"journal-article"}, p.PublicationTypes)
}

func TestArxivQueryString(t *testing.T) {
	tests := []struct{ in, want string }{
		{`"deep learning" survey`, `all:"deep learning" AND all:survey`},
		{"plain terms", "all:plain AND all:terms"},
		{"", `all:"machine learning"`},
	}
	for _, tt := range tests {
		if got := arxivQueryString(tt.in); got != tt.want {
			t.Errorf("arxivQueryString(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestArxivSearch(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		gotQuery = map[string]string{
			"search_query": q.Get("search_query"),
			"max_results":  q.Get("max_results"),
			"sortBy":       q.Get("sortBy"),
		}
		fmt.Fprint(w, `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <id>http://arxiv.org/abs/2301.00001v1</id>
    <title>Attention Everywhere</title>
    <summary>  A preprint about attention.  </summary>
    <published>2023-01-02T10:00:00Z</published>
    <author><name>Alan Turing</name></author>
    <author><name>Ada Lovelace</name></author>
  </entry>
</feed>`)
	}))
	defer srv.Close()

	orig := arxivAPIBase
	arxivAPIBase = srv.URL
	defer func() { arxivAPIBase = orig }()

	b := &ArxivBackend{Client: testHTTPClient(srv)}
	intent := types.SearchIntent{SortBy: types.SortPublicationDate}
	records, stats, err := b.Search(context.Background(), "attention", intent, map[DedupKey]struct{}{}, 500)
	require.NoError(t, err)
	require.Len(t, records, 1)

	assert.Equal(t, "all:attention", gotQuery["search_query"])
	assert.Equal(t, "100", gotQuery["max_results"], "max_results clamps at 100")
	assert.Equal(t, "submittedDate", gotQuery["sortBy"])

	p := records[0]
	assert.Equal(t, "Attention Everywhere", p.Title)
	assert.Equal(t, "A preprint about attention.", p.Abstract)
	assert.Equal(t, "http://arxiv.org/abs/2301.00001v1", p.URL)
	assert.Equal(t, "arXiv", p.Venue)
	assert.True(t, p.OpenAccess)
	assert.Equal(t, []string{"preprint"}, p.PublicationTypes)
	assert.Equal(t, "2023-01-02", p.PublicationDate)
	assert.Equal(t, 2023, *p.Year)
	assert.Equal(t, []string{"Alan Turing", "Ada Lovelace"}, p.Authors)
	assert.Equal(t, 1, stats.RawFetched)
}

func TestPubMedSearch(t *testing.T) {
	var esearchTerm string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/esearch.fcgi":
			esearchTerm = r.URL.Query().Get("term")
			fmt.Fprint(w, `{"esearchresult": {"count": "2", "idlist": ["111", "222"]}}`)
		case "/esummary.fcgi":
			assert.Equal(t, "111,222", r.URL.Query().Get("id"))
			fmt.Fprint(w, `{"result": {
				"uids": ["111", "222"],
				"111": {
					"title": "A Biomedical Paper",
					"authors": [{"name": "Salk J"}],
					"pubdate": "2023 Feb 10",
					"fulljournalname": "The Lancet",
					"pubtype": ["Journal Article"],
					"articleids": [{"idtype": "doi", "value": "10.1/bio"}]
				},
				"222": {
					"title": "Another One",
					"pubdate": "2022",
					"source": "BMJ"
				}
			}}`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	orig := pubmedAPIBase
	pubmedAPIBase = srv.URL
	defer func() { pubmedAPIBase = orig }()

	b := &PubMedBackend{Client: testHTTPClient(srv)}
	intent := types.SearchIntent{DateStart: "2022-01-01"}
	records, stats, err := b.Search(context.Background(), "vaccines", intent, map[DedupKey]struct{}{}, 50)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Contains(t, esearchTerm, "vaccines")
	assert.Contains(t, esearchTerm, `"2022-01-01"[Date - Publication]`)
	assert.Contains(t, esearchTerm, `"3000"[Date - Publication]`)

	first := records[0]
	assert.Equal(t, "A Biomedical Paper", first.Title)
	assert.Equal(t, "https://pubmed.ncbi.nlm.nih.gov/111/", first.URL)
	assert.Equal(t, "The Lancet", first.Venue)
	assert.Equal(t, "10.1/bio", first.DOI)
	assert.Equal(t, 2023, *first.Year)
	assert.Equal(t, []string{"Biomedicine"}, first.FieldsOfStudy)

	second := records[1]
	assert.Equal(t, "BMJ", second.Venue, "source fills in when fulljournalname is missing")
	assert.Equal(t, []string{"journal-article"}, second.PublicationTypes, "untyped records default to journal-article")
	assert.Equal(t, 1, stats.Pages)
	assert.Equal(t, 2, stats.RawUnique)
}

func TestPubMedNoResults(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, `{"esearchresult": {"count": "0", "idlist": []}}`)
	}))
	defer srv.Close()

	orig := pubmedAPIBase
	pubmedAPIBase = srv.URL
	defer func() { pubmedAPIBase = orig }()

	b := &PubMedBackend{Client: testHTTPClient(srv)}
	records, _, err := b.Search(context.Background(), "nothing", types.SearchIntent{}, map[DedupKey]struct{}{}, 50)
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Equal(t, 1, calls, "esummary is skipped when esearch finds nothing")
}

func TestEuropePMCSearch(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		gotQuery = map[string]string{
			"query":      q.Get("query"),
			"resultType": q.Get("resultType"),
			"format":     q.Get("format"),
		}
		fmt.Fprint(w, `{"resultList": {"result": [{
			"id": "MED1",
			"pmid": "12345",
			"title": "Europe PMC Paper",
			"doi": "10.1/epmc",
			"pubYear": "2022",
			"firstPublicationDate": "2022-09-01",
			"isOpenAccess": "Y",
			"citedByCount": 9,
			"pubType": "review",
			"authorList": {"author": [{"firstName": "Marie", "lastName": "Curie"}, {"fullName": "Pasteur L"}]},
			"journalInfo": {"journal": {"title": "PLOS ONE"}},
			"fullTextUrlList": {"fullTextUrl": [{"url": "https://epmc.org/full/1"}]}
		}]}}`)
	}))
	defer srv.Close()

	orig := eupmcAPIBase
	eupmcAPIBase = srv.URL
	defer func() { eupmcAPIBase = orig }()

	b := &EuropePMCBackend{Client: testHTTPClient(srv)}
	intent := types.SearchIntent{DateStart: "2022-01-01", DateEnd: "2022-12-31"}
	records, _, err := b.Search(context.Background(), "genomics", intent, map[DedupKey]struct{}{}, 50)
	require.NoError(t, err)
	require.Len(t, records, 1)

	assert.Equal(t, "genomics AND FIRST_PDATE:[2022-01-01 TO 2022-12-31]", gotQuery["query"])
	assert.Equal(t, "core", gotQuery["resultType"])
	assert.Equal(t, "json", gotQuery["format"])

	p := records[0]
	assert.Equal(t, "Europe PMC Paper", p.Title)
	assert.Equal(t, "10.1/epmc", p.DOI)
	assert.Equal(t, "PLOS ONE", p.Venue)
	assert.Equal(t, "https://epmc.org/full/1", p.URL)
	assert.Equal(t, []string{"Marie Curie", "Pasteur L"}, p.Authors)
	assert.True(t, p.OpenAccess)
	assert.Equal(t, 9, *p.Citations)
	assert.Equal(t, []string{"review"}, p.PublicationTypes)
	assert.Equal(t, "2022-09-01", p.PublicationDate)
}

func TestEuropePMCURLFallback(t *testing.T) {
	p := eupmcToPaper(eupmcResult{Title: "No full text", PMID: "999"})
	assert.Equal(t, "https://europepmc.org/abstract/MED/999", p.URL)

	p = eupmcToPaper(eupmcResult{Title: "No pmid either", ID: "PPR1"})
	assert.Equal(t, "PPR1", p.URL)
}
