package crud

import (
	"log/slog"
	"slices"

	"github.com/RoaringBitmap/roaring"

	"github.com/leengari/csvdb/internal/domain/data"
	dberrors "github.com/leengari/csvdb/internal/domain/errors"
	"github.com/leengari/csvdb/internal/domain/table"
	"github.com/leengari/csvdb/internal/query/operations"
)

// Update sets the columns in changes on every row matching where.
// Returns the number of rows updated. Applying the same update twice leaves
// the table as after the first.
func Update(t *table.Table, where data.Values, changes data.Values) (int, error) {
	// Acquire write lock for the entire operation
	t.Lock()
	defer t.Unlock()

	if err := t.RequireMutable("update"); err != nil {
		return 0, err
	}
	where = where.Normalize()
	changes = changes.Normalize()

	// 1. Validate the change set
	if len(changes) == 0 {
		return 0, dberrors.New(dberrors.KindInvalidMethodCall, t.Name, "update requires at least one column to set")
	}
	if err := t.RequireColumns(changes.Columns(), "update"); err != nil {
		return 0, err
	}
	if err := operations.CheckTypes(t, changes); err != nil {
		return 0, err
	}
	for _, c := range changes.Columns() {
		if col, _ := t.Column(c); col.NotNull && changes[c].IsNull() {
			return 0, dberrors.NewCannotBeNull(t.Name, c, "cannot update row")
		}
	}

	// 2. Find the target rows
	matched, err := operations.MatchRownums(t, where)
	if err != nil {
		return 0, err
	}
	if matched.IsEmpty() {
		return 0, nil
	}

	// 3. Changed keys must stay unique, checked before any IO
	if err := checkKeys(t, matched, changes); err != nil {
		return 0, err
	}

	// 4. Rewrite the matched lines
	pos := make(map[string]int, len(changes))
	for c := range changes {
		pos[c] = slices.Index(t.Header, c)
	}
	if err := rewrite(t, matched, func(_ int, record []string) ([]string, bool) {
		out := slices.Clone(record)
		for c, v := range changes {
			out[pos[c]] = v.String()
		}
		return out, true
	}); err != nil {
		return 0, dberrors.NewIOError(t.Name, "update", err)
	}

	// 5. Move the rows between buckets of every index the update touches
	affected := append(where.Columns(), changes.Columns()...)
	touched := t.Indexes.Touching(affected)
	it := matched.Iterator()
	for it.HasNext() {
		n := int(it.Next())
		row, _ := t.Store.Get(n)
		for _, idx := range touched {
			idx.Remove(n, row)
		}
		for _, c := range t.ColumnNames() {
			if v, ok := changes[c]; ok {
				row.Set(c, v)
			}
		}
		for _, idx := range touched {
			idx.Insert(n, row)
		}
	}
	t.Indexes.RecomputeSelectivity(t.Len())

	updated := int(matched.GetCardinality())
	slog.Debug("rows updated",
		slog.String("table", t.Name),
		slog.Int("count", updated),
		slog.Any("columns", changes.Columns()),
	)
	return updated, nil
}

// checkKeys rejects an update that would leave two rows sharing a key of
// the primary or any unique index whose columns it changes
func checkKeys(t *table.Table, matched *roaring.Bitmap, changes data.Values) error {
	for _, idx := range t.Indexes.Touching(changes.Columns()) {
		if !idx.Def.Unique() {
			continue
		}
		seen := make(map[string]struct{})
		it := matched.Iterator()
		for it.HasNext() {
			n := int(it.Next())
			row, _ := t.Store.Get(n)
			next := row.Copy()
			for c, v := range changes {
				next.Set(c, v)
			}
			key, ok := idx.Key(next)
			if !ok {
				continue
			}
			if _, dup := seen[key]; dup {
				return dberrors.NewDuplicateKey(t.Name, idx.Name())
			}
			seen[key] = struct{}{}
			for _, other := range idx.Lookup(key) {
				if !matched.Contains(uint32(other)) {
					return dberrors.NewDuplicateKey(t.Name, idx.Name())
				}
			}
		}
	}
	return nil
}
