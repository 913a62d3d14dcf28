package operations

import (
	"slices"
	"strings"

	"github.com/leengari/csvdb/internal/domain/data"
	dberrors "github.com/leengari/csvdb/internal/domain/errors"
	"github.com/leengari/csvdb/internal/domain/schema"
	"github.com/leengari/csvdb/internal/domain/table"
)

const orderByUsage = "usage: order_by('<column> [asc|desc]', ...)"

// SortKey is one parsed order_by key
type SortKey struct {
	Column     string
	Descending bool
}

// ParseSortKey parses "<column>" or "<column> asc|desc"
func ParseSortKey(table, key string) (SortKey, error) {
	parts := strings.Fields(key)
	switch {
	case len(parts) == 1:
		return SortKey{Column: schema.NormalizeName(parts[0])}, nil
	case len(parts) == 2 && strings.EqualFold(parts[1], "asc"):
		return SortKey{Column: schema.NormalizeName(parts[0])}, nil
	case len(parts) == 2 && strings.EqualFold(parts[1], "desc"):
		return SortKey{Column: schema.NormalizeName(parts[0]), Descending: true}, nil
	}
	return SortKey{}, dberrors.New(dberrors.KindInvalidMethodCall, table, "invalid sort key %q; %s", key, orderByUsage)
}

// OrderBy returns a derived table with the rows of t stably sorted by keys.
// Passes run in argument order, so the last key is the most significant
// and earlier keys break its ties. With no keys t itself is returned.
func OrderBy(t *table.Table, keys ...string) (*table.Table, error) {
	if len(keys) == 0 {
		return t, nil
	}

	t.RLock()
	defer t.RUnlock()

	sorts := make([]SortKey, len(keys))
	names := make([]string, len(keys))
	for i, k := range keys {
		sk, err := ParseSortKey(t.Name, k)
		if err != nil {
			return nil, err
		}
		if !t.HasColumn(sk.Column) {
			return nil, dberrors.NewUnknownColumn(t.Name, sk.Column, "order_by")
		}
		sorts[i] = sk
		names[i] = sk.Column
	}

	rows := t.Rows()
	for _, sk := range sorts {
		slices.SortStableFunc(rows, func(a, b *data.Row) int {
			c := a.Value(sk.Column).Compare(b.Value(sk.Column))
			if sk.Descending {
				return -c
			}
			return c
		})
	}

	name := t.Name + "_orderby_" + strings.Join(names, "_")
	return Derive(name, t.Def.Columns, rows, carriedIndexes(t, t.Def.Columns))
}
