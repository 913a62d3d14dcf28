package projection

import (
	"fmt"

	dberrors "github.com/leengari/csvdb/internal/domain/errors"
	"github.com/leengari/csvdb/internal/domain/schema"
)

// Normalize lowercases requested fields. nil means every column.
func Normalize(fields []string) []string {
	if fields == nil {
		return nil
	}
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = schema.NormalizeName(f)
	}
	return out
}

// Validate checks that every requested field satisfies has.
// Returns an InvalidMethodCall error naming the first missing field.
func Validate(table string, fields []string, has func(string) bool) error {
	for _, f := range fields {
		if f == "" || !has(f) {
			return &dberrors.Error{
				Kind:    dberrors.KindInvalidMethodCall,
				Table:   table,
				Column:  f,
				Message: fmt.Sprintf("invalid field '%s' in project", f),
			}
		}
	}
	return nil
}
