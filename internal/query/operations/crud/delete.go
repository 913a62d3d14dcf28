package crud

import (
	"log/slog"

	"github.com/RoaringBitmap/roaring"

	"github.com/leengari/csvdb/internal/domain/data"
	dberrors "github.com/leengari/csvdb/internal/domain/errors"
	"github.com/leengari/csvdb/internal/domain/table"
	"github.com/leengari/csvdb/internal/query/operations"
	"github.com/leengari/csvdb/internal/storage/csvfile"
)

// Delete removes every row matching where from the backing file, the
// indexes and the row store. Returns the number of rows deleted.
// Rownums of deleted rows are tombstoned and never reused.
func Delete(t *table.Table, where data.Values) (int, error) {
	// Acquire write lock for the entire operation
	t.Lock()
	defer t.Unlock()

	if err := t.RequireMutable("delete"); err != nil {
		return 0, err
	}

	matched, err := operations.MatchRownums(t, where)
	if err != nil {
		return 0, err
	}
	if matched.IsEmpty() {
		return 0, nil // Nothing to delete
	}

	if err := rewrite(t, matched, func(_ int, record []string) ([]string, bool) {
		return nil, false
	}); err != nil {
		return 0, dberrors.NewIOError(t.Name, "delete", err)
	}

	// File is committed; memory updates below cannot fail
	indexes := t.Indexes.All()
	deleted := 0
	it := matched.Iterator()
	for it.HasNext() {
		n := int(it.Next())
		row, ok := t.Store.Get(n)
		if !ok {
			continue
		}
		for _, idx := range indexes {
			idx.Remove(n, row)
		}
		if t.Store.Tombstone(n) {
			deleted++
		}
	}
	t.Indexes.RecomputeSelectivity(t.Len())

	slog.Debug("rows deleted", slog.String("table", t.Name), slog.Int("count", deleted))
	return deleted, nil
}

// rewrite passes the file lines holding matched rows through fn and keeps
// every other line as is. Line i of the file holds the i-th live rownum.
func rewrite(t *table.Table, matched *roaring.Bitmap, fn func(rownum int, record []string) ([]string, bool)) error {
	order := t.Store.FileOrder()
	return csvfile.Rewrite(t.Path, func(i int, _, record []string) ([]string, bool) {
		if i < len(order) && matched.Contains(uint32(order[i])) {
			return fn(order[i], record)
		}
		return record, true
	})
}
