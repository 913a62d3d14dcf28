package operations

import (
	"github.com/leengari/csvdb/internal/domain/data"
	"github.com/leengari/csvdb/internal/domain/schema"
	"github.com/leengari/csvdb/internal/domain/table"
	"github.com/leengari/csvdb/internal/query/indexing"
)

// Derive builds a memory-only table holding rows in the given order.
// Rows receive fresh rownums 0..n-1 and the carried index definitions are
// rebuilt against them. A carried primary or unique index that no longer
// holds is dropped rather than failing the operation.
func Derive(name string, columns []schema.ColumnDefinition, rows []*data.Row, carried []schema.IndexDefinition) (*table.Table, error) {
	t := table.NewDerived(name, columns)
	for _, r := range rows {
		t.Store.Append(r)
	}

	declared := make([]schema.IndexDefinition, 0, len(carried))
	for _, d := range carried {
		declared = append(declared, schema.IndexDefinition{
			Name:    d.Name,
			Kind:    d.Kind,
			Columns: append([]string(nil), d.Columns...),
		})
	}

	set, err := indexing.BuildSet(name, declared, t.Store, indexing.BuildOptions{LenientPrimary: true})
	if err != nil {
		return nil, err
	}
	t.Indexes = set
	t.Def.Indexes = set.Declared()
	return t, nil
}

// carriedIndexes is every index of src whose columns all survive in columns
func carriedIndexes(src *table.Table, columns []schema.ColumnDefinition) []schema.IndexDefinition {
	has := func(c string) bool {
		for _, col := range columns {
			if col.Name == c {
				return true
			}
		}
		return false
	}
	var out []schema.IndexDefinition
	for _, d := range src.Indexes.Declared() {
		if d.Covers(has) {
			out = append(out, d)
		}
	}
	return out
}
