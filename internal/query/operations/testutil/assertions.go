package testutil

import (
	"errors"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/leengari/csvdb/internal/domain/data"
	dberrors "github.com/leengari/csvdb/internal/domain/errors"
)

// AssertKind checks that err carries the expected error kind
func AssertKind(t *testing.T, err error, kind dberrors.Kind) {
	t.Helper()
	assert.Assert(t, err != nil, "expected %s error, got nil", kind)
	assert.Equal(t, dberrors.KindOf(err), kind, "error: %v", err)
	assert.Assert(t, errors.Is(err, &dberrors.Error{Kind: kind}))
}

// AssertRowCount checks if the result has the expected number of rows
func AssertRowCount(t *testing.T, rows []*data.Row, expected int, context string) {
	t.Helper()
	assert.Equal(t, len(rows), expected, "%s: unexpected row count", context)
}

// Rownums lists the rownums of rows in order
func Rownums(rows []*data.Row) []int {
	out := make([]int, len(rows))
	for i, r := range rows {
		out[i] = r.Rownum
	}
	return out
}

// Maps converts rows to comparable value maps
func Maps(rows []*data.Row) []data.Values {
	out := make([]data.Values, len(rows))
	for i, r := range rows {
		out[i] = r.Map()
	}
	return out
}

// Column extracts one column from every row
func Column(rows []*data.Row, column string) []data.Value {
	out := make([]data.Value, len(rows))
	for i, r := range rows {
		out[i] = r.Value(column)
	}
	return out
}
