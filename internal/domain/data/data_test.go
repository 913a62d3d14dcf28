package data

import (
	"encoding/json"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/leengari/csvdb/internal/domain/schema"
)

func TestParseValue(t *testing.T) {
	num := schema.ColumnDefinition{Name: "n", Type: schema.ColumnTypeNumber}
	txt := schema.ColumnDefinition{Name: "s", Type: schema.ColumnTypeText}

	v, err := ParseValue("42", num)
	assert.NilError(t, err)
	assert.Assert(t, v.IsInt())

	v, err = ParseValue("2.50", num)
	assert.NilError(t, err)
	assert.Equal(t, v.String(), "2.5")

	v, err = ParseValue("", num)
	assert.NilError(t, err)
	assert.Assert(t, v.IsNull())

	_, err = ParseValue("4x", num)
	assert.ErrorContains(t, err, "invalid number")

	v, err = ParseValue("42", txt)
	assert.NilError(t, err)
	assert.Equal(t, v.Kind(), KindText)
}

func TestValueEqualityAndOrder(t *testing.T) {
	assert.Assert(t, Int(1).Equal(Float(1)))
	assert.Assert(t, !Int(1).Equal(Text("1")))
	assert.Assert(t, Null().Equal(Null()))

	assert.Assert(t, Null().Compare(Int(-5)) < 0)
	assert.Assert(t, Float(1e9).Compare(Text("0")) < 0)
	assert.Assert(t, Int(2).Compare(Float(1.5)) > 0)
	assert.Equal(t, Float(3).String(), "3.0")
}

func TestRowKeepsFieldOrder(t *testing.T) {
	r := NewRow(Field{Column: "b", Value: Int(1)}, Field{Column: "a", Value: Null()})
	r.Set("b", Text("x"))
	r.Set("c", Float(0.5))

	assert.DeepEqual(t, r.Columns(), []string{"b", "a", "c"})
	out, err := json.Marshal(r)
	assert.NilError(t, err)
	assert.Equal(t, string(out), `{"b":"x","a":null,"c":0.5}`)

	p := r.Project([]string{"c", "missing"})
	assert.DeepEqual(t, p.Columns(), []string{"c", "missing"})
	assert.Assert(t, p.Value("missing").IsNull())
}

func TestMatches(t *testing.T) {
	r := NewRow(Field{Column: "id", Value: Int(1)}, Field{Column: "email", Value: Null()})

	assert.Assert(t, r.Matches(nil))
	assert.Assert(t, r.Matches(Values{"id": Float(1)}))
	assert.Assert(t, r.Matches(Values{"email": Null()}))
	assert.Assert(t, !r.Matches(Values{"id": Int(2)}))
}

func TestEncodeKey(t *testing.T) {
	_, ok := EncodeKey(Values{"a": Int(1)}, []string{"a", "b"})
	assert.Assert(t, !ok)

	k1, _ := EncodeKey(Values{"a": Text("1")}, []string{"a"})
	k2, _ := EncodeKey(Values{"a": Int(1)}, []string{"a"})
	assert.Assert(t, k1 != k2)
}
