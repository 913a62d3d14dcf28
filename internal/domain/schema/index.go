package schema

import (
	"fmt"
	"slices"
	"strings"

	dberrors "github.com/leengari/csvdb/internal/domain/errors"
)

type IndexKind string

const (
	IndexPrimary IndexKind = "PRIMARY"
	IndexUnique  IndexKind = "UNIQUE"
	IndexPlain   IndexKind = "INDEX"
)

// PrimaryIndexName is the name every primary index is registered under
const PrimaryIndexName = "PRIMARY"

func ParseIndexKind(s string) (IndexKind, error) {
	switch IndexKind(strings.ToUpper(strings.TrimSpace(s))) {
	case IndexPrimary:
		return IndexPrimary, nil
	case IndexUnique:
		return IndexUnique, nil
	case IndexPlain:
		return IndexPlain, nil
	}
	return "", &dberrors.Error{
		Kind:    dberrors.KindInvalidColumnDefinition,
		Message: fmt.Sprintf("invalid index type '%s'", s),
	}
}

// IndexDefinition describes a declared (or generated) index
type IndexDefinition struct {
	Name    string    `json:"index_name"`
	Kind    IndexKind `json:"index_type"`
	Columns []string  `json:"columns"`
}

// Unique reports whether the index must hold at most one row per key
func (d IndexDefinition) Unique() bool {
	return d.Kind == IndexPrimary || d.Kind == IndexUnique
}

// Covers reports whether every index column satisfies has
func (d IndexDefinition) Covers(has func(string) bool) bool {
	for _, c := range d.Columns {
		if !has(c) {
			return false
		}
	}
	return true
}

// Touches reports whether any index column satisfies has
func (d IndexDefinition) Touches(has func(string) bool) bool {
	return slices.ContainsFunc(d.Columns, has)
}

// PrefixIndexes generates non-unique indexes over every strict, non-empty prefix
// of a composite primary key. Prefixes whose column list or name already exists
// in declared are skipped.
func PrefixIndexes(pk IndexDefinition, declared []IndexDefinition) []IndexDefinition {
	var out []IndexDefinition
	for n := 1; n < len(pk.Columns); n++ {
		cols := slices.Clone(pk.Columns[:n])
		name := strings.Join(cols, "_") + "_idx"

		dup := slices.ContainsFunc(declared, func(d IndexDefinition) bool {
			return d.Name == name || slices.Equal(d.Columns, cols)
		})
		if dup {
			continue
		}
		out = append(out, IndexDefinition{Name: name, Kind: IndexPlain, Columns: cols})
	}
	return out
}
