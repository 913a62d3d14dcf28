package schema

import (
	"fmt"
	"strings"

	dberrors "github.com/leengari/csvdb/internal/domain/errors"
)

type ColumnType string

const (
	ColumnTypeText   ColumnType = "text"
	ColumnTypeNumber ColumnType = "number"
)

// ParseColumnType accepts the catalog spelling of a column type (case-insensitive)
func ParseColumnType(s string) (ColumnType, error) {
	switch ColumnType(strings.ToLower(strings.TrimSpace(s))) {
	case ColumnTypeText:
		return ColumnTypeText, nil
	case ColumnTypeNumber:
		return ColumnTypeNumber, nil
	}
	return "", &dberrors.Error{
		Kind:    dberrors.KindInvalidColumnDefinition,
		Message: fmt.Sprintf("invalid column type '%s'", s),
	}
}

// ColumnDefinition describes one declared column. Names are kept lowercase.
type ColumnDefinition struct {
	Name    string     `json:"column_name"`
	Type    ColumnType `json:"column_type"`
	NotNull bool       `json:"not_null"`
}

// NewColumn normalizes the name and validates the type
func NewColumn(name string, typ ColumnType, notNull bool) (ColumnDefinition, error) {
	name = NormalizeName(name)
	if name == "" {
		return ColumnDefinition{}, &dberrors.Error{
			Kind:    dberrors.KindInvalidColumnDefinition,
			Message: "column name cannot be empty",
		}
	}
	typ, err := ParseColumnType(string(typ))
	if err != nil {
		e := err.(*dberrors.Error)
		e.Column = name
		return ColumnDefinition{}, e
	}
	return ColumnDefinition{Name: name, Type: typ, NotNull: notNull}, nil
}

// NormalizeName folds a column name to its canonical (lowercase) form
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
