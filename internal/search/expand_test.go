// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"reflect"
	"testing"
)

func TestExpandQueries(t *testing.T) {
	tests := []struct {
		name   string
		groups [][]string
		want   []string
	}{
		{
			name:   "single group single term",
			groups: [][]string{{"transformers"}},
			want:   []string{"transformers"},
		},
		{
			name:   "one phrase per group cartesian product",
			groups: [][]string{{"a", "b"}, {"c"}},
			want:   []string{"a c", "b c"},
		},
		{
			name:   "two by two product",
			groups: [][]string{{"a", "b"}, {"c", "d"}},
			want:   []string{"a c", "a d", "b c", "b d"},
		},
		{
			name:   "multi word phrases get quoted",
			groups: [][]string{{"graph neural network"}, {"survey"}},
			want:   []string{`"graph neural network" survey`},
		},
		{
			name:   "already quoted phrase kept as is",
			groups: [][]string{{`"deep learning"`}},
			want:   []string{`"deep learning"`},
		},
		{
			name:   "empty groups and blanks dropped",
			groups: [][]string{{}, {"  ", "llm"}, {""}},
			want:   []string{"llm"},
		},
		{
			name:   "no usable groups yields wildcard",
			groups: [][]string{{" ", ""}, {}},
			want:   []string{Wildcard},
		},
		{
			name:   "nil input yields wildcard",
			groups: nil,
			want:   []string{Wildcard},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExpandQueries(tt.groups)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExpandQueries(%v) = %v, want %v", tt.groups, got, tt.want)
			}
		})
	}
}

func TestExpandQueriesDeterministic(t *testing.T) {
	groups := [][]string{{"x", "y", "z"}, {"survey", "review"}}
	first := ExpandQueries(groups)
	for i := 0; i < 5; i++ {
		if got := ExpandQueries(groups); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d produced a different order: %v vs %v", i, got, first)
		}
	}
	if len(first) != 6 {
		t.Errorf("expected 6 combinations, got %d", len(first))
	}
}

func TestSplitTerms(t *testing.T) {
	tests := []struct {
		query string
		want  []string
	}{
		{`"deep learning" survey`, []string{`"deep learning"`, "survey"}},
		{"plain terms only", []string{"plain", "terms", "only"}},
		{`  "a b"  c `, []string{`"a b"`, "c"}},
		{"", nil},
	}
	for _, tt := range tests {
		if got := splitTerms(tt.query); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("splitTerms(%q) = %v, want %v", tt.query, got, tt.want)
		}
	}
}
