package operations

import (
	"testing"

	"gotest.tools/v3/assert"

	"github.com/leengari/csvdb/internal/domain/data"
	dberrors "github.com/leengari/csvdb/internal/domain/errors"
	"github.com/leengari/csvdb/internal/query/operations/testutil"
)

func TestHavingComparisons(t *testing.T) {
	people := testutil.LoadPeople(t)

	tests := []struct {
		cond string
		want []data.Value
	}{
		{"age >= 30", []data.Value{data.Int(1), data.Int(3)}},
		{"age<30", []data.Value{data.Int(2)}},
		{"age != 25", []data.Value{data.Int(1), data.Int(3)}},
		{"age = 30.0", []data.Value{data.Int(1), data.Int(3)}},
		{"name = 'bob'", []data.Value{data.Int(2)}},
		{"name > bob", []data.Value{data.Int(3)}},
		{"email != x", []data.Value{data.Int(1), data.Int(2)}},
	}
	for _, tc := range tests {
		t.Run(tc.cond, func(t *testing.T) {
			out, err := Having(people, tc.cond)
			assert.NilError(t, err)
			assert.DeepEqual(t, testutil.Column(out.Rows(), "id"), tc.want)
		})
	}
}

func TestHavingConjunctionProducesDerivedTable(t *testing.T) {
	people := testutil.LoadPeople(t)

	out, err := Having(people, "age = 30", "name != alice")
	assert.NilError(t, err)

	assert.Equal(t, out.Name, "people_having_age_name")
	assert.Assert(t, out.Derived())
	assert.DeepEqual(t, testutil.Rownums(out.Rows()), []int{0})
	assert.DeepEqual(t, out.ColumnNames(), people.ColumnNames())

	// indexes are rebuilt against the new rownums
	rows, err := Find(out, data.Values{"id": data.Int(3)}, FindOptions{})
	assert.NilError(t, err)
	assert.DeepEqual(t, testutil.Rownums(rows), []int{0})
	assert.Assert(t, out.Indexes.Primary() != nil)
}

func TestHavingNoConditionsReturnsSource(t *testing.T) {
	people := testutil.LoadPeople(t)

	out, err := Having(people)
	assert.NilError(t, err)
	assert.Assert(t, out == people)
}

func TestHavingErrors(t *testing.T) {
	people := testutil.LoadPeople(t)

	for _, cond := range []string{"age", "age == 3", "age => 3", "age = ", "age = thirty", "age <> 3", "age < 3 < 4"} {
		_, err := Having(people, cond)
		testutil.AssertKind(t, err, dberrors.KindInvalidOperation)
	}

	_, err := Having(people, "salary > 3")
	testutil.AssertKind(t, err, dberrors.KindUnknownColumn)
}
