package table

import (
	"slices"
	"sync"

	"github.com/leengari/csvdb/internal/domain/data"
	dberrors "github.com/leengari/csvdb/internal/domain/errors"
	"github.com/leengari/csvdb/internal/domain/schema"
	"github.com/leengari/csvdb/internal/query/indexing"
	"github.com/leengari/csvdb/internal/storage/rowstore"
)

// State is the lifecycle state of a table instance
type State int

const (
	StateLoaded  State = iota // backed by a CSV file, mutable
	StateDerived              // produced by join/having/order_by, memory only
)

func (s State) String() string {
	if s == StateDerived {
		return "derived"
	}
	return "loaded"
}

// Table is an in-memory table: its definition, rows and indexes.
// Loaded tables also know their backing file and its header order.
type Table struct {
	mu      sync.RWMutex
	Name    string
	Path    string   // backing CSV file; empty for derived tables
	Header  []string // lowercased file header, the write-back column order
	Def     *schema.TableDefinition
	Store   *rowstore.Store
	Indexes *indexing.Set
	State   State
}

// NewDerived creates an empty memory-only table with the given columns
func NewDerived(name string, columns []schema.ColumnDefinition) *Table {
	return &Table{
		Name: name,
		Def: &schema.TableDefinition{
			Name:    name,
			Columns: slices.Clone(columns),
		},
		Store:   rowstore.New(),
		Indexes: indexing.NewSet(),
		State:   StateDerived,
	}
}

// Lock acquires an exclusive lock on the table for write operations
func (t *Table) Lock() { t.mu.Lock() }

// Unlock releases the exclusive lock
func (t *Table) Unlock() { t.mu.Unlock() }

// RLock acquires a read lock on the table for read operations
func (t *Table) RLock() { t.mu.RLock() }

// RUnlock releases the read lock
func (t *Table) RUnlock() { t.mu.RUnlock() }

func (t *Table) Derived() bool { return t.State == StateDerived }

// Column looks up a declared column
func (t *Table) Column(name string) (schema.ColumnDefinition, bool) {
	return t.Def.Column(name)
}

func (t *Table) HasColumn(name string) bool {
	_, ok := t.Def.Column(name)
	return ok
}

// ColumnNames returns declared column names in declaration order
func (t *Table) ColumnNames() []string {
	return t.Def.ColumnNames()
}

// Len is the logical row count
func (t *Table) Len() int {
	return t.Store.LogicalCount()
}

// RequireColumns fails with UnknownColumn for the first undeclared column
func (t *Table) RequireColumns(columns []string, clause string) error {
	for _, c := range columns {
		if !t.HasColumn(c) {
			return dberrors.NewUnknownColumn(t.Name, c, clause)
		}
	}
	return nil
}

// RequireMutable rejects mutations of derived tables
func (t *Table) RequireMutable(op string) error {
	if t.Derived() {
		return dberrors.NewDerivedTable(t.Name, op)
	}
	return nil
}

// Rows returns copies of every live row in rownum order
func (t *Table) Rows() []*data.Row {
	rows := make([]*data.Row, 0, t.Store.LogicalCount())
	t.Store.Live(func(r *data.Row) bool {
		rows = append(rows, r.Copy())
		return true
	})
	return rows
}

// FileRecord renders row in header order for the backing file. Header
// columns the row does not hold are written empty.
func (t *Table) FileRecord(row data.Getter) []string {
	record := make([]string, len(t.Header))
	for i, c := range t.Header {
		if v, ok := row.Get(c); ok {
			record[i] = v.String()
		}
	}
	return record
}
