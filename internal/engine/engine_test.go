package engine

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/leengari/csvdb/internal/catalog"
	"github.com/leengari/csvdb/internal/domain/data"
	dberrors "github.com/leengari/csvdb/internal/domain/errors"
	"github.com/leengari/csvdb/internal/query/operations"
	"github.com/leengari/csvdb/internal/query/operations/join"
	"github.com/leengari/csvdb/internal/query/operations/testutil"
)

// setup registers people and orders in a file catalog and returns an
// engine over it
func setup(t *testing.T, opts ...Option) (*Engine, string) {
	t.Helper()
	dir := t.TempDir()
	ctx := context.Background()
	cat := catalog.NewFileCatalog(dir)

	people := testutil.PeopleDef(testutil.WriteCSV(t, dir, "people.csv", testutil.PeopleCSV))
	orders := testutil.OrdersDef(testutil.WriteCSV(t, dir, "orders.csv", testutil.OrdersCSV))
	assert.NilError(t, cat.Register(ctx, catalog.NewDocument(people)))
	assert.NilError(t, cat.Register(ctx, catalog.NewDocument(orders)))

	return New(cat, opts...), dir
}

func TestOpenEmitsLifecycleEvents(t *testing.T) {
	observer := &MockObserver{}
	eng, _ := setup(t, WithObserver(observer))

	people, err := eng.Open(context.Background(), "people")
	assert.NilError(t, err)
	assert.Equal(t, people.Len(), 3)

	types := observer.Types()
	assert.Equal(t, types[0], EventOpStart)
	assert.Equal(t, types[len(types)-1], EventOpEnd)

	progress := 0
	for _, e := range observer.Events {
		assert.Equal(t, e.OpID, observer.Events[0].OpID)
		if e.Type == EventIndexProgress {
			progress++
		}
	}
	assert.Assert(t, progress >= 3, "one progress event per index at least")
	assert.DeepEqual(t, observer.Events[len(observer.Events)-1].Data.(OpResult).Rows, 3)
}

func TestOpenUndeclaredTableReportsError(t *testing.T) {
	observer := &MockObserver{}
	eng, _ := setup(t, WithObserver(observer))

	_, err := eng.Open(context.Background(), "nope")
	testutil.AssertKind(t, err, dberrors.KindInvalidFile)
	assert.DeepEqual(t, observer.Types(), []EventType{EventOpStart, EventOpError})
}

func TestOperationsGetDistinctIDs(t *testing.T) {
	observer := &MockObserver{}
	eng, _ := setup(t)
	people, err := eng.Open(context.Background(), "people")
	assert.NilError(t, err)
	eng.AddObserver(observer)

	_, err = people.Find(data.Values{"id": data.Int(1)}, operations.FindOptions{})
	assert.NilError(t, err)
	_, err = people.Find(nil, operations.FindOptions{})
	assert.NilError(t, err)

	assert.Equal(t, len(observer.Events), 4)
	assert.Assert(t, observer.Events[0].OpID != observer.Events[2].OpID)
	assert.Equal(t, observer.Events[1].Data.(OpResult).Rows, 1)
	assert.Equal(t, observer.Events[3].Data.(OpResult).Rows, 3)
}

func TestInsertEventCarriesRownums(t *testing.T) {
	observer := &MockObserver{}
	eng, _ := setup(t)
	people, err := eng.Open(context.Background(), "people")
	assert.NilError(t, err)
	eng.AddObserver(observer)

	_, err = people.Find(nil, operations.FindOptions{})
	assert.NilError(t, err)
	_, err = people.Insert(data.Values{"id": data.Int(4), "name": data.Text("dora"), "email": data.Text("dora@example.com")})
	assert.NilError(t, err)

	assert.Equal(t, len(observer.Events), 4)
	assert.Assert(t, observer.Events[2].Seq > observer.Events[0].Seq)
	assert.Equal(t, observer.Events[2].Seq, observer.Events[3].Seq)
	assert.Assert(t, observer.Events[1].Data.(OpResult).Rownums == nil)
	assert.DeepEqual(t, observer.Events[3].Data.(OpResult).Rownums, []int{3})
}

func TestTableLifecycle(t *testing.T) {
	eng, dir := setup(t)
	ctx := context.Background()
	people, err := eng.Open(ctx, "people")
	assert.NilError(t, err)

	// insert round-trips through find
	rownum, err := people.Insert(data.Values{"id": data.Int(4), "name": data.Text("dora"), "email": data.Text("dora@example.com"), "age": data.Int(22)})
	assert.NilError(t, err)
	assert.Equal(t, rownum, 3)

	// duplicate primary key leaves file and indexes alone
	before := testutil.ReadLines(t, filepath.Join(dir, "people.csv"))
	_, err = people.Insert(data.Values{"id": data.Int(4), "name": data.Text("again")})
	assert.Assert(t, errors.Is(err, dberrors.ErrDuplicateRowPrimaryKey))
	assert.DeepEqual(t, testutil.ReadLines(t, filepath.Join(dir, "people.csv")), before)

	n, err := people.Update(data.Values{"name": data.Text("dora")}, data.Values{"age": data.Int(23)})
	assert.NilError(t, err)
	assert.Equal(t, n, 1)

	n, err = people.Delete(data.Values{"id": data.Int(2)})
	assert.NilError(t, err)
	assert.Equal(t, n, 1)

	// reopening from disk sees the same logical content
	reopened, err := eng.Open(ctx, "people")
	assert.NilError(t, err)
	want, err := people.Find(nil, operations.FindOptions{})
	assert.NilError(t, err)
	got, err := reopened.Find(nil, operations.FindOptions{})
	assert.NilError(t, err)
	assert.DeepEqual(t, testutil.Maps(got), testutil.Maps(want))
	assert.DeepEqual(t, testutil.Rownums(people.Rows()), []int{0, 2, 3})
	assert.DeepEqual(t, testutil.Rownums(reopened.Rows()), []int{0, 1, 2})
}

func TestDerivedTables(t *testing.T) {
	eng, _ := setup(t)
	ctx := context.Background()
	people, err := eng.Open(ctx, "people")
	assert.NilError(t, err)
	orders, err := eng.Open(ctx, "orders")
	assert.NilError(t, err)

	joined, err := people.Join(orders, join.Options{On: []string{"id"}})
	assert.NilError(t, err)
	assert.Assert(t, joined.Derived())
	assert.Equal(t, joined.Len(), 3)

	sorted, err := joined.OrderBy("amount desc")
	assert.NilError(t, err)
	assert.DeepEqual(t, testutil.Column(sorted.Rows(), "product"), []data.Value{
		data.Text("laptop"), data.Text("keyboard"), data.Text("mouse"),
	})

	same, err := sorted.Having()
	assert.NilError(t, err)
	assert.Assert(t, same == sorted)

	_, err = sorted.Insert(data.Values{"order_id": data.Int(1)})
	testutil.AssertKind(t, err, dberrors.KindInvalidOperation)

	names := []string{}
	for _, idx := range joined.Indexes() {
		names = append(names, idx.Name)
	}
	assert.DeepEqual(t, names, []string{"person_idx", "age_idx"})
}

func TestExplain(t *testing.T) {
	eng, _ := setup(t)
	people, err := eng.Open(context.Background(), "people")
	assert.NilError(t, err)

	est, err := people.Explain(data.Values{"age": data.Int(30)})
	assert.NilError(t, err)
	assert.Equal(t, est.Index, "age_idx")
	assert.Equal(t, est.Rows, 2)

	est, err = people.Explain(data.Values{"name": data.Text("bob")})
	assert.NilError(t, err)
	assert.Equal(t, est.Access, "scan")

	_, err = people.Explain(data.Values{"nope": data.Int(1)})
	assert.Assert(t, errors.Is(err, dberrors.ErrUnknownColumn))
}

func TestIndexLookup(t *testing.T) {
	eng, _ := setup(t)
	people, err := eng.Open(context.Background(), "people")
	assert.NilError(t, err)

	info, ok := people.Index("email_u")
	assert.Assert(t, ok)
	assert.DeepEqual(t, info.Columns, []string{"email"})
	assert.Equal(t, info.Distinct, 3)

	_, ok = people.Index("nope")
	assert.Assert(t, !ok)
}
