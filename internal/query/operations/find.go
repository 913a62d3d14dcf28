package operations

import (
	"github.com/RoaringBitmap/roaring"

	"github.com/leengari/csvdb/internal/domain/data"
	dberrors "github.com/leengari/csvdb/internal/domain/errors"
	"github.com/leengari/csvdb/internal/domain/table"
	"github.com/leengari/csvdb/internal/planner"
	"github.com/leengari/csvdb/internal/query/operations/projection"
)

// FindOptions shapes the result of Find
type FindOptions struct {
	Fields []string // projection; nil returns every column
	Limit  int      // 0 means no limit
	Offset int

	// Candidates restricts matching to these rownums when non-nil.
	// Join uses it to apply the probe side's prefilter.
	Candidates *roaring.Bitmap

	// ForceScan bypasses index selection. Results are identical either way.
	ForceScan bool
}

// Find returns the rows of t equal to every column of the where template,
// projected onto opts.Fields, ascending by rownum.
func Find(t *table.Table, where data.Values, opts FindOptions) ([]*data.Row, error) {
	t.RLock()
	defer t.RUnlock()

	fields := projection.Normalize(opts.Fields)
	if err := projection.Validate(t.Name, fields, t.HasColumn); err != nil {
		return nil, err
	}
	if opts.Limit < 0 || opts.Offset < 0 {
		return nil, dberrors.New(dberrors.KindInvalidMethodCall, t.Name,
			"limit and offset must not be negative (limit=%d, offset=%d)", opts.Limit, opts.Offset)
	}

	rows, err := Match(t, where, opts.Candidates, opts.ForceScan)
	if err != nil {
		return nil, err
	}

	rows = window(rows, opts.Offset, opts.Limit)
	return projection.Apply(rows, fields), nil
}

// Match returns the stored rows of t matching where, ascending by rownum.
// The rows are shared with the store; callers must hold the table lock and
// must not modify them.
func Match(t *table.Table, where data.Values, candidates *roaring.Bitmap, forceScan bool) ([]*data.Row, error) {
	where = where.Normalize()
	columns := where.Columns()
	if err := t.RequireColumns(columns, "where clause"); err != nil {
		return nil, err
	}

	if !forceScan {
		if idx := planner.AccessPath(t.Indexes, columns); idx != nil {
			return probe(t, idx.LookupRow(where), where, candidates), nil
		}
	}
	return scan(t, where, candidates), nil
}

// MatchRownums is Match reduced to a rownum set
func MatchRownums(t *table.Table, where data.Values) (*roaring.Bitmap, error) {
	rows, err := Match(t, where, nil, false)
	if err != nil {
		return nil, err
	}
	set := roaring.New()
	for _, r := range rows {
		set.Add(uint32(r.Rownum))
	}
	return set, nil
}

func probe(t *table.Table, rownums []int, where data.Values, candidates *roaring.Bitmap) []*data.Row {
	var out []*data.Row
	for _, n := range rownums {
		if candidates != nil && !candidates.Contains(uint32(n)) {
			continue
		}
		row, ok := t.Store.Get(n)
		if !ok {
			continue
		}
		// the index narrowed by key; columns outside it still need checking
		if row.Matches(where) {
			out = append(out, row)
		}
	}
	return out
}

func scan(t *table.Table, where data.Values, candidates *roaring.Bitmap) []*data.Row {
	var out []*data.Row
	if candidates != nil {
		it := candidates.Iterator()
		for it.HasNext() {
			row, ok := t.Store.Get(int(it.Next()))
			if ok && row.Matches(where) {
				out = append(out, row)
			}
		}
		return out
	}
	t.Store.Live(func(row *data.Row) bool {
		if row.Matches(where) {
			out = append(out, row)
		}
		return true
	})
	return out
}

func window(rows []*data.Row, offset, limit int) []*data.Row {
	if offset >= len(rows) {
		return nil
	}
	rows = rows[offset:]
	if limit > 0 && limit < len(rows) {
		rows = rows[:limit]
	}
	return rows
}
