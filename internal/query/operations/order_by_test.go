package operations

import (
	"testing"

	"gotest.tools/v3/assert"

	"github.com/leengari/csvdb/internal/domain/data"
	dberrors "github.com/leengari/csvdb/internal/domain/errors"
	"github.com/leengari/csvdb/internal/domain/schema"
	"github.com/leengari/csvdb/internal/query/operations/testutil"
)

func TestOrderByLastKeyDominates(t *testing.T) {
	path := testutil.WriteCSV(t, t.TempDir(), "ab.csv", "a,b\n2,x\n1,y\n3,x\n1,x\n2,y\n")
	def := &schema.TableDefinition{
		Name: "ab",
		Path: path,
		Columns: []schema.ColumnDefinition{
			{Name: "a", Type: schema.ColumnTypeNumber},
			{Name: "b", Type: schema.ColumnTypeText},
		},
	}
	ab := testutil.Load(t, def)

	out, err := OrderBy(ab, "a", "B DESC")
	assert.NilError(t, err)

	assert.DeepEqual(t, testutil.Maps(out.Rows()), []data.Values{
		{"a": data.Int(1), "b": data.Text("y")},
		{"a": data.Int(2), "b": data.Text("y")},
		{"a": data.Int(1), "b": data.Text("x")},
		{"a": data.Int(2), "b": data.Text("x")},
		{"a": data.Int(3), "b": data.Text("x")},
	})
	assert.DeepEqual(t, testutil.Rownums(out.Rows()), []int{0, 1, 2, 3, 4})
	assert.Equal(t, out.Name, "ab_orderby_a_b")
}

func TestOrderByNullsFirst(t *testing.T) {
	people := testutil.LoadPeople(t)

	out, err := OrderBy(people, "email asc")
	assert.NilError(t, err)
	assert.DeepEqual(t, testutil.Column(out.Rows(), "name"), []data.Value{
		data.Text("charlie"), data.Text("alice"), data.Text("bob"),
	})
}

func TestOrderByIsStable(t *testing.T) {
	people := testutil.LoadPeople(t)

	out, err := OrderBy(people, "age desc")
	assert.NilError(t, err)
	assert.DeepEqual(t, testutil.Column(out.Rows(), "id"), []data.Value{
		data.Int(1), data.Int(3), data.Int(2),
	})

	rows, err := Find(out, data.Values{"age": data.Int(30)}, FindOptions{})
	assert.NilError(t, err)
	assert.DeepEqual(t, testutil.Rownums(rows), []int{0, 1})
}

func TestOrderByErrors(t *testing.T) {
	people := testutil.LoadPeople(t)

	_, err := OrderBy(people, "age sideways")
	testutil.AssertKind(t, err, dberrors.KindInvalidMethodCall)

	_, err = OrderBy(people, "salary")
	testutil.AssertKind(t, err, dberrors.KindUnknownColumn)

	out, err := OrderBy(people)
	assert.NilError(t, err)
	assert.Assert(t, out == people)
}
