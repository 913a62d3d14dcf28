package data

import (
	"cmp"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind tags the variant held by a Value
type Kind uint8

const (
	KindNull Kind = iota
	KindNumber
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	default:
		return "null"
	}
}

// Value is a cell: Null, Text or Number. Numbers remember whether they were
// written as integers so they round-trip through the backing file unchanged.
type Value struct {
	kind  Kind
	text  string
	num   float64
	i     int64
	isInt bool
}

func Null() Value { return Value{} }

func Text(s string) Value { return Value{kind: KindText, text: s} }

func Int(i int64) Value { return Value{kind: KindNumber, i: i, num: float64(i), isInt: true} }

func Float(f float64) Value { return Value{kind: KindNumber, num: f} }

func (v Value) Kind() Kind   { return v.kind }
func (v Value) IsNull() bool { return v.kind == KindNull }
func (v Value) IsInt() bool  { return v.kind == KindNumber && v.isInt }

// String renders the value the way it is written to the backing file.
// Null is the empty string; floats always carry a decimal point.
func (v Value) String() string {
	switch v.kind {
	case KindText:
		return v.text
	case KindNumber:
		if v.isInt {
			return strconv.FormatInt(v.i, 10)
		}
		s := strconv.FormatFloat(v.num, 'f', -1, 64)
		if !strings.ContainsAny(s, ".NI") {
			s += ".0"
		}
		return s
	default:
		return ""
	}
}

// Equal compares two values; numbers compare numerically (1 == 1.0)
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindText:
		return v.text == o.text
	case KindNumber:
		if v.isInt && o.isInt {
			return v.i == o.i
		}
		return v.num == o.num
	default:
		return true
	}
}

// Compare orders values: Null < Number < Text, then by content
func (v Value) Compare(o Value) int {
	if v.kind != o.kind {
		return cmp.Compare(v.kind, o.kind)
	}
	switch v.kind {
	case KindText:
		return strings.Compare(v.text, o.text)
	case KindNumber:
		if v.isInt && o.isInt {
			return cmp.Compare(v.i, o.i)
		}
		return cmp.Compare(v.num, o.num)
	default:
		return 0
	}
}

// keyText is the canonical text used inside index keys. Integral floats
// collapse to their integer form so Int(1) and Float(1) share a key.
func (v Value) keyText() string {
	if v.kind == KindNumber && !v.isInt && v.num == math.Trunc(v.num) && math.Abs(v.num) < 1<<53 {
		return strconv.FormatInt(int64(v.num), 10)
	}
	return v.String()
}

// MarshalJSON renders Null as null, numbers as JSON numbers and text as strings
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindText:
		return json.Marshal(v.text)
	case KindNumber:
		if v.isInt {
			return json.Marshal(v.i)
		}
		return json.Marshal(v.num)
	default:
		return []byte("null"), nil
	}
}

// GoString is used by %#v in test failure output
func (v Value) GoString() string {
	switch v.kind {
	case KindText:
		return fmt.Sprintf("Text(%q)", v.text)
	case KindNumber:
		if v.isInt {
			return fmt.Sprintf("Int(%d)", v.i)
		}
		return fmt.Sprintf("Float(%v)", v.num)
	default:
		return "Null()"
	}
}

// ParseNumber parses a backing-file number: a decimal point or exponent
// makes it a float, otherwise it must be an integer.
func ParseNumber(raw string) (Value, error) {
	raw = strings.TrimSpace(raw)
	if strings.ContainsAny(raw, ".eE") {
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Value{}, fmt.Errorf("invalid number '%s'", raw)
		}
		return Float(f), nil
	}
	i, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return Value{}, fmt.Errorf("invalid number '%s'", raw)
	}
	return Int(i), nil
}
