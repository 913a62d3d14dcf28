package data

import (
	"bytes"
	"encoding/json"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/leengari/csvdb/internal/domain/schema"
)

// Field is one (column, value) pair of a row
type Field struct {
	Column string
	Value  Value
}

// Row is an ordered set of fields plus the stable rownum it was stored under.
// A column the row never received is absent, which is distinct from Null.
type Row struct {
	Rownum int
	fields []Field
}

// NewRow builds a row from fields in the given order
func NewRow(fields ...Field) *Row {
	r := &Row{fields: make([]Field, 0, len(fields))}
	for _, f := range fields {
		r.Set(f.Column, f.Value)
	}
	return r
}

// Get returns the value of column and whether the row holds it
func (r *Row) Get(column string) (Value, bool) {
	for _, f := range r.fields {
		if f.Column == column {
			return f.Value, true
		}
	}
	return Value{}, false
}

// Value returns the column value, reading absent columns as Null
func (r *Row) Value(column string) Value {
	v, _ := r.Get(column)
	return v
}

// Set overwrites column in place, appending it when absent
func (r *Row) Set(column string, v Value) {
	for i := range r.fields {
		if r.fields[i].Column == column {
			r.fields[i].Value = v
			return
		}
	}
	r.fields = append(r.fields, Field{Column: column, Value: v})
}

func (r *Row) Has(column string) bool {
	_, ok := r.Get(column)
	return ok
}

func (r *Row) Len() int { return len(r.fields) }

// Fields returns a copy of the row fields in order
func (r *Row) Fields() []Field {
	return slices.Clone(r.fields)
}

// Columns returns the column names in row order
func (r *Row) Columns() []string {
	cols := make([]string, len(r.fields))
	for i, f := range r.fields {
		cols[i] = f.Column
	}
	return cols
}

// Copy creates a deep copy of the row to prevent mutation
func (r *Row) Copy() *Row {
	return &Row{Rownum: r.Rownum, fields: slices.Clone(r.fields)}
}

// Project returns a new row holding only columns, in that order.
// Columns the row does not hold are projected as Null.
func (r *Row) Project(columns []string) *Row {
	if columns == nil {
		return r.Copy()
	}
	out := &Row{Rownum: r.Rownum, fields: make([]Field, 0, len(columns))}
	for _, c := range columns {
		out.fields = append(out.fields, Field{Column: c, Value: r.Value(c)})
	}
	return out
}

// Map returns the row as a column -> value map
func (r *Row) Map() Values {
	m := make(Values, len(r.fields))
	for _, f := range r.fields {
		m[f.Column] = f.Value
	}
	return m
}

// Matches reports whether every binding in where equals the row value.
// A nil or empty template matches every row.
func (r *Row) Matches(where Values) bool {
	for col, want := range where {
		if !r.Value(col).Equal(want) {
			return false
		}
	}
	return true
}

// MarshalJSON writes the row as a JSON object preserving field order
func (r *Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(f.Column)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := f.Value.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Values is a set of column -> value bindings. It is used as a query
// template, an insert payload and an update change set.
type Values map[string]Value

// Get lets Values be used wherever a row is expected
func (vs Values) Get(column string) (Value, bool) {
	v, ok := vs[column]
	return v, ok
}

// Normalize returns a copy with lowercase column names
func (vs Values) Normalize() Values {
	out := make(Values, len(vs))
	for k, v := range vs {
		out[schema.NormalizeName(k)] = v
	}
	return out
}

// Columns returns the bound column names, sorted
func (vs Values) Columns() []string {
	return slices.Sorted(maps.Keys(vs))
}

// Getter is implemented by both *Row and Values
type Getter interface {
	Get(column string) (Value, bool)
}

// EncodeKey builds the composite index key for columns. Every component is
// written as <tag><len>:<text>, so no text value can forge a separator.
// ok is false when any component is absent from src.
func EncodeKey(src Getter, columns []string) (key string, ok bool) {
	var b strings.Builder
	for _, c := range columns {
		v, present := src.Get(c)
		if !present {
			return "", false
		}
		text := v.keyText()
		switch v.Kind() {
		case KindText:
			b.WriteByte('s')
		case KindNumber:
			b.WriteByte('n')
		default:
			b.WriteByte('z')
		}
		b.WriteString(strconv.Itoa(len(text)))
		b.WriteByte(':')
		b.WriteString(text)
	}
	return b.String(), len(columns) > 0
}

// ParseValue converts a raw backing-file field according to the column type.
// The empty string is Null.
func ParseValue(raw string, col schema.ColumnDefinition) (Value, error) {
	if raw == "" {
		return Null(), nil
	}
	if col.Type == schema.ColumnTypeNumber {
		return ParseNumber(raw)
	}
	return Text(raw), nil
}

// Conforms reports whether v may be stored in a column of type typ
func Conforms(v Value, typ schema.ColumnType) bool {
	switch v.Kind() {
	case KindNull:
		return true
	case KindNumber:
		return typ == schema.ColumnTypeNumber
	default:
		return typ == schema.ColumnTypeText
	}
}
