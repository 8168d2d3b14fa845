// Copyright (c) 2026 Bibliora. All rights reserved.
// Author: ngocanh.tran.books@gmail.com

package book

import (
	"regexp"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var placeholderPattern = regexp.MustCompile(`\$(\d+)`)

// placeholderArity returns the highest ordinal in a statement and whether
// the ordinals form a contiguous $1..$n sequence. A gap or an off-by-one
// in the SET list would shift every following argument onto the wrong
// column, so the shape is asserted, not just the count.
func placeholderArity(t *testing.T, query string) int {
	t.Helper()

	seen := map[int]bool{}
	highest := 0
	for _, match := range placeholderPattern.FindAllStringSubmatch(query, -1) {
		ordinal, err := strconv.Atoi(match[1])
		require.NoError(t, err)
		seen[ordinal] = true
		if ordinal > highest {
			highest = ordinal
		}
	}

	for ordinal := 1; ordinal <= highest; ordinal++ {
		assert.True(t, seen[ordinal], "placeholder $%d is missing", ordinal)
	}

	return highest
}

func TestBookInsertQuery_PlaceholderArity(t *testing.T) {
	// Create passes book.ID plus 18 scalar fields.
	assert.Equal(t, 19, placeholderArity(t, bookInsertQuery))
}

func TestBookUpdateQuery_PlaceholderArity(t *testing.T) {
	// Update passes book.ID plus the 18 mutable scalar fields.
	assert.Equal(t, 19, placeholderArity(t, bookUpdateQuery))
}

func TestBookUpdateQuery_Shape(t *testing.T) {
	assert.Contains(t, bookUpdateQuery, "tags = $19")
	assert.Contains(t, bookUpdateQuery, "updatedat = NOW()")
	assert.Contains(t, bookUpdateQuery, "WHERE id = $1 AND deletedat IS NULL")
}
