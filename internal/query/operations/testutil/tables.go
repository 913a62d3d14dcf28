package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gotest.tools/v3/assert"

	"github.com/leengari/csvdb/internal/domain/schema"
	"github.com/leengari/csvdb/internal/domain/table"
	"github.com/leengari/csvdb/internal/query/indexing"
	"github.com/leengari/csvdb/internal/storage/loader"
)

// PeopleCSV is the backing file of PeopleDef
const PeopleCSV = `ID,Name,Email,Age
1,alice,alice@example.com,30
2,bob,bob@example.com,25
3,charlie,,30
`

// OrdersCSV is the backing file of OrdersDef. Person 3 has no orders.
const OrdersCSV = `order_id,id,product,amount
10,1,laptop,999.99
11,1,mouse,25.5
12,2,keyboard,75.0
`

// WriteCSV writes content to dir/name and returns the path
func WriteCSV(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	assert.NilError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// ReadLines returns the lines of the file at path, header included
func ReadLines(t *testing.T, path string) []string {
	t.Helper()
	b, err := os.ReadFile(path)
	assert.NilError(t, err)
	return strings.Split(strings.TrimRight(string(b), "\n"), "\n")
}

// PeopleDef describes people(id PK, name NOT NULL, email UNIQUE, age INDEX)
func PeopleDef(path string) *schema.TableDefinition {
	return &schema.TableDefinition{
		Name: "people",
		Path: path,
		Columns: []schema.ColumnDefinition{
			{Name: "id", Type: schema.ColumnTypeNumber, NotNull: true},
			{Name: "name", Type: schema.ColumnTypeText, NotNull: true},
			{Name: "email", Type: schema.ColumnTypeText},
			{Name: "age", Type: schema.ColumnTypeNumber},
		},
		Indexes: []schema.IndexDefinition{
			{Name: schema.PrimaryIndexName, Kind: schema.IndexPrimary, Columns: []string{"id"}},
			{Name: "email_u", Kind: schema.IndexUnique, Columns: []string{"email"}},
			{Name: "age_idx", Kind: schema.IndexPlain, Columns: []string{"age"}},
		},
	}
}

// OrdersDef describes orders(order_id PK, id INDEX, product, amount)
func OrdersDef(path string) *schema.TableDefinition {
	return &schema.TableDefinition{
		Name: "orders",
		Path: path,
		Columns: []schema.ColumnDefinition{
			{Name: "order_id", Type: schema.ColumnTypeNumber, NotNull: true},
			{Name: "id", Type: schema.ColumnTypeNumber, NotNull: true},
			{Name: "product", Type: schema.ColumnTypeText},
			{Name: "amount", Type: schema.ColumnTypeNumber},
		},
		Indexes: []schema.IndexDefinition{
			{Name: schema.PrimaryIndexName, Kind: schema.IndexPrimary, Columns: []string{"order_id"}},
			{Name: "person_idx", Kind: schema.IndexPlain, Columns: []string{"id"}},
		},
	}
}

// Load loads def or fails the test
func Load(t *testing.T, def *schema.TableDefinition) *table.Table {
	t.Helper()
	tbl, err := loader.LoadTable(def, indexing.BuildOptions{})
	assert.NilError(t, err)
	return tbl
}

// LoadPeople writes PeopleCSV to a temp dir and loads it
func LoadPeople(t *testing.T) *table.Table {
	t.Helper()
	return Load(t, PeopleDef(WriteCSV(t, t.TempDir(), "people.csv", PeopleCSV)))
}

// LoadOrders writes OrdersCSV to a temp dir and loads it
func LoadOrders(t *testing.T) *table.Table {
	t.Helper()
	return Load(t, OrdersDef(WriteCSV(t, t.TempDir(), "orders.csv", OrdersCSV)))
}
