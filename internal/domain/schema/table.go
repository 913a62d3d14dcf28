package schema

import (
	"fmt"
	"slices"
	"strings"

	dberrors "github.com/leengari/csvdb/internal/domain/errors"
)

// TableDefinition is the read-only snapshot a catalog hands to the engine
type TableDefinition struct {
	Name    string
	Path    string
	Columns []ColumnDefinition
	Indexes []IndexDefinition
}

// Column looks a column up by (case-insensitive) name
func (d *TableDefinition) Column(name string) (ColumnDefinition, bool) {
	name = NormalizeName(name)
	for _, c := range d.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return ColumnDefinition{}, false
}

// ColumnNames returns declared column names in declaration order
func (d *TableDefinition) ColumnNames() []string {
	names := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		names[i] = c.Name
	}
	return names
}

// Primary returns the primary index definition, if any
func (d *TableDefinition) Primary() (IndexDefinition, bool) {
	for _, idx := range d.Indexes {
		if idx.Kind == IndexPrimary {
			return idx, true
		}
	}
	return IndexDefinition{}, false
}

// Validate normalizes names and checks the definition invariants:
// unique column and index names, index columns declared, at most one primary.
func (d *TableDefinition) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return &dberrors.Error{Kind: dberrors.KindInvalidFile, Message: "table name cannot be empty"}
	}
	if !strings.HasSuffix(strings.ToLower(d.Path), ".csv") {
		return &dberrors.Error{
			Kind:    dberrors.KindInvalidFile,
			Table:   d.Name,
			Message: fmt.Sprintf("invalid file path '%s'", d.Path),
		}
	}

	seen := make(map[string]bool, len(d.Columns))
	for i := range d.Columns {
		col, err := NewColumn(d.Columns[i].Name, d.Columns[i].Type, d.Columns[i].NotNull)
		if err != nil {
			err.(*dberrors.Error).Table = d.Name
			return err
		}
		if seen[col.Name] {
			return &dberrors.Error{
				Kind:    dberrors.KindInvalidColumnDefinition,
				Table:   d.Name,
				Column:  col.Name,
				Message: "duplicate column name",
			}
		}
		seen[col.Name] = true
		d.Columns[i] = col
	}

	names := make(map[string]bool, len(d.Indexes))
	primaries := 0
	for i := range d.Indexes {
		idx := &d.Indexes[i]
		if _, err := ParseIndexKind(string(idx.Kind)); err != nil {
			err.(*dberrors.Error).Table = d.Name
			return err
		}
		idx.Kind = IndexKind(strings.ToUpper(string(idx.Kind)))
		if idx.Kind == IndexPrimary {
			primaries++
			idx.Name = PrimaryIndexName
		}
		if names[idx.Name] {
			return &dberrors.Error{
				Kind:    dberrors.KindInvalidColumnDefinition,
				Table:   d.Name,
				Message: fmt.Sprintf("duplicate index name '%s'", idx.Name),
			}
		}
		names[idx.Name] = true

		if len(idx.Columns) == 0 {
			return &dberrors.Error{
				Kind:    dberrors.KindInvalidColumnDefinition,
				Table:   d.Name,
				Message: fmt.Sprintf("index '%s' has no columns", idx.Name),
			}
		}
		for j, c := range idx.Columns {
			c = NormalizeName(c)
			if !seen[c] {
				return &dberrors.Error{
					Kind:    dberrors.KindInvalidColumnDefinition,
					Table:   d.Name,
					Column:  c,
					Message: fmt.Sprintf("index '%s' references unknown column", idx.Name),
				}
			}
			idx.Columns[j] = c
		}
	}
	if primaries > 1 {
		return &dberrors.Error{
			Kind:    dberrors.KindInvalidColumnDefinition,
			Table:   d.Name,
			Message: "multiple primary keys defined",
		}
	}

	return nil
}

// Clone returns a deep copy so callers can mutate it freely
func (d *TableDefinition) Clone() *TableDefinition {
	out := &TableDefinition{
		Name:    d.Name,
		Path:    d.Path,
		Columns: slices.Clone(d.Columns),
		Indexes: make([]IndexDefinition, len(d.Indexes)),
	}
	for i, idx := range d.Indexes {
		idx.Columns = slices.Clone(idx.Columns)
		out.Indexes[i] = idx
	}
	return out
}
