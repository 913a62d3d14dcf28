package operations

import (
	"fmt"
	"log/slog"

	"github.com/leengari/csvdb/internal/domain/data"
	dberrors "github.com/leengari/csvdb/internal/domain/errors"
	"github.com/leengari/csvdb/internal/domain/table"
	"github.com/leengari/csvdb/internal/storage/csvfile"
)

// Insert validates values, appends them to the backing file and adds the
// row to memory and every index. It returns the new row's rownum.
func Insert(t *table.Table, values data.Values) (int, error) {
	t.Lock()
	defer t.Unlock()

	if err := t.RequireMutable("insert"); err != nil {
		return -1, err
	}
	values = values.Normalize()

	// 1. Every column must be declared and conform to its type
	if err := t.RequireColumns(values.Columns(), "insert"); err != nil {
		return -1, err
	}
	if err := CheckTypes(t, values); err != nil {
		return -1, err
	}

	// 2. NOT NULL columns must be present and non-null
	for _, col := range t.Def.Columns {
		if !col.NotNull {
			continue
		}
		if v, ok := values[col.Name]; !ok || v.IsNull() {
			return -1, dberrors.NewCannotBeNull(t.Name, col.Name, "cannot insert row")
		}
	}

	// 3. Every declared column is materialized; omitted ones are Null, the
	// same as an empty field read back from the file
	row := data.NewRow()
	for _, c := range t.ColumnNames() {
		v, ok := values[c]
		if !ok {
			v = data.Null()
		}
		row.Set(c, v)
	}

	// 4. Primary and unique keys must not already exist
	if pk := t.Indexes.Primary(); pk != nil {
		for _, c := range pk.Columns() {
			if values[c].IsNull() {
				return -1, dberrors.NewCannotBeNull(t.Name, c, "primary key value required")
			}
		}
		if len(pk.LookupRow(row)) > 0 {
			return -1, dberrors.NewDuplicateKey(t.Name, pk.Name())
		}
	}
	for _, idx := range t.Indexes.All() {
		if !idx.Def.Unique() || idx == t.Indexes.Primary() {
			continue
		}
		if len(idx.LookupRow(row)) > 0 {
			return -1, dberrors.NewDuplicateKey(t.Name, idx.Name())
		}
	}

	// 5. Persist before touching memory so a failed write leaves no trace
	if err := csvfile.Append(t.Path, t.FileRecord(row)); err != nil {
		return -1, dberrors.NewIOError(t.Name, "insert", err)
	}

	// 6. Store the row and index it
	rownum := t.Store.Append(row)
	t.Indexes.InsertRow(rownum, row)
	t.Indexes.RecomputeSelectivity(t.Len())

	slog.Debug("row inserted", slog.String("table", t.Name), slog.Int("rownum", rownum))
	return rownum, nil
}

// CheckTypes fails with InvalidMethodCall for the first value whose kind the
// column type does not accept
func CheckTypes(t *table.Table, values data.Values) error {
	for _, c := range values.Columns() {
		col, _ := t.Column(c)
		if v := values[c]; !data.Conforms(v, col.Type) {
			return &dberrors.Error{
				Kind:    dberrors.KindInvalidMethodCall,
				Table:   t.Name,
				Column:  c,
				Message: fmt.Sprintf("value %s does not conform to column type %s", v, col.Type),
			}
		}
	}
	return nil
}
