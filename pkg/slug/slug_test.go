// Copyright (c) 2026 Bibliora. All rights reserved.
// Author: ngocanh.tran.books@gmail.com

package slug_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ngocanhtran/bibliora/pkg/slug"
)

/*
TestFrom tests the slug transformation pipeline against representative titles.
*/
func TestFrom(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple_title", "The Go Programming Language", "the-go-programming-language"},
		{"accented_latin", "Café Sûnrise", "cafe-sunrise"},
		{"vietnamese_accents", "Nhà Giả Kim", "nha-gia-kim"},
		{"punctuation_runs", "Hello, World!! (2nd Edition)", "hello-world-2nd-edition"},
		{"leading_trailing_symbols", "--Already Slugged--", "already-slugged"},
		{"explicit_slug_passthrough", "already-slugged", "already-slugged"},
		{"uppercase_collapse", "GO   IN   ACTION", "go-in-action"},
		{"symbols_only", "!!! ***", ""},
		{"empty_input", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, slug.From(tt.input))
		})
	}
}

/*
TestFrom_Deterministic verifies repeated calls yield identical output.
*/
func TestFrom_Deterministic(t *testing.T) {
	first := slug.From("Đắc Nhân Tâm")
	second := slug.From("Đắc Nhân Tâm")

	assert.Equal(t, first, second)
	assert.NotEmpty(t, first)
}
