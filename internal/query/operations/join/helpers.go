package join

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/leengari/csvdb/internal/domain/data"
	dberrors "github.com/leengari/csvdb/internal/domain/errors"
	"github.com/leengari/csvdb/internal/domain/schema"
	"github.com/leengari/csvdb/internal/domain/table"
	"github.com/leengari/csvdb/internal/query/operations/projection"
)

// validateJoin checks the join columns, where template and projection
// against both tables
func validateJoin(left, right *table.Table, opts Options) error {
	if len(opts.On) == 0 {
		return dberrors.New(dberrors.KindInvalidMethodCall, left.Name,
			"join requires at least one column to join on")
	}
	for _, c := range opts.On {
		if !left.HasColumn(c) {
			return dberrors.NewUnknownColumn(left.Name, c, "join condition")
		}
		if !right.HasColumn(c) {
			return dberrors.NewUnknownColumn(right.Name, c, "join condition")
		}
	}

	either := func(c string) bool { return left.HasColumn(c) || right.HasColumn(c) }
	for _, c := range opts.Where.Columns() {
		if !either(c) {
			return dberrors.NewUnknownColumn(fmt.Sprintf("%s, %s", left.Name, right.Name), c, "where clause")
		}
	}
	return projection.Validate(fmt.Sprintf("%s, %s", left.Name, right.Name), opts.Fields, either)
}

// probeTemplate binds the join columns to row's values. ok is false when
// any of them is Null or absent since such a row joins nothing.
func probeTemplate(row *data.Row, on []string) (data.Values, bool) {
	tmpl := make(data.Values, len(on))
	for _, c := range on {
		v := row.Value(c)
		if v.IsNull() {
			return nil, false
		}
		tmpl[c] = v
	}
	return tmpl, true
}

// mergeRows copies the scan row and overlays every probe field that is not
// a join column
func mergeRows(scanRow, probeRow *data.Row, on []string) *data.Row {
	merged := scanRow.Copy()
	for _, f := range probeRow.Fields() {
		if slices.Contains(on, f.Column) {
			continue
		}
		merged.Set(f.Column, f.Value)
	}
	return merged
}

// outputColumns is the schema of the join result: the projected fields, or
// the scan columns followed by probe columns the scan side lacks
func outputColumns(r roles, fields []string) []schema.ColumnDefinition {
	lookup := func(c string) schema.ColumnDefinition {
		if col, ok := r.scan.Column(c); ok {
			return col
		}
		col, _ := r.probe.Column(c)
		return col
	}

	if fields != nil {
		out := make([]schema.ColumnDefinition, len(fields))
		for i, f := range fields {
			out[i] = lookup(f)
		}
		return out
	}

	out := slices.Clone(r.scan.Def.Columns)
	for _, col := range r.probe.Def.Columns {
		if !r.scan.HasColumn(col.Name) {
			out = append(out, col)
		}
	}
	return out
}

// carryIndexes selects the index definitions the join output inherits.
// At most one primary key survives: the wider of the two sides' primaries
// whose columns are all in the output, ties going to the probe side. Other
// indexes follow, scan side first, unless their name is taken or a column
// was projected away.
func carryIndexes(r roles, columns []schema.ColumnDefinition) []schema.IndexDefinition {
	has := func(c string) bool {
		return slices.ContainsFunc(columns, func(col schema.ColumnDefinition) bool { return col.Name == c })
	}

	var carried []schema.IndexDefinition
	taken := map[string]bool{}

	scanPK, scanOK := r.scan.Def.Primary()
	probePK, probeOK := r.probe.Def.Primary()
	scanOK = scanOK && scanPK.Covers(has)
	probeOK = probeOK && probePK.Covers(has)

	var pk *schema.IndexDefinition
	switch {
	case scanOK && probeOK:
		pk = &probePK
		if len(scanPK.Columns) > len(probePK.Columns) {
			pk = &scanPK
		}
	case scanOK:
		pk = &scanPK
	case probeOK:
		pk = &probePK
	}
	if pk != nil {
		carried = append(carried, *pk)
		taken[pk.Name] = true
	}

	for _, t := range []*table.Table{r.scan, r.probe} {
		for _, d := range t.Indexes.Declared() {
			if d.Kind == schema.IndexPrimary || taken[d.Name] || !d.Covers(has) {
				continue
			}
			carried = append(carried, d)
			taken[d.Name] = true
		}
	}

	slog.Debug("join indexes carried over", slog.Int("count", len(carried)))
	return carried
}

func compareOn(on []string) func(a, b *data.Row) int {
	return func(a, b *data.Row) int {
		for _, c := range on {
			if d := a.Value(c).Compare(b.Value(c)); d != 0 {
				return d
			}
		}
		return 0
	}
}
