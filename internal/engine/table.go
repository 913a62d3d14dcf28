package engine

import (
	"github.com/leengari/csvdb/internal/domain/data"
	"github.com/leengari/csvdb/internal/domain/schema"
	"github.com/leengari/csvdb/internal/domain/table"
	"github.com/leengari/csvdb/internal/domain/transaction"
	"github.com/leengari/csvdb/internal/planner"
	"github.com/leengari/csvdb/internal/query/indexing"
	"github.com/leengari/csvdb/internal/query/operations"
	"github.com/leengari/csvdb/internal/query/operations/crud"
	"github.com/leengari/csvdb/internal/query/operations/join"
)

// Table is a loaded or derived table bound to the engine that reports
// its operations
type Table struct {
	engine *Engine
	t      *table.Table
}

// IndexInfo describes one live index of a table
type IndexInfo struct {
	Name        string           `json:"name"`
	Kind        schema.IndexKind `json:"kind"`
	Columns     []string         `json:"columns"`
	Generated   bool             `json:"generated,omitempty"`
	Distinct    int              `json:"distinct_keys"`
	Selectivity float64          `json:"selectivity"`
}

func (tb *Table) Name() string  { return tb.t.Name }
func (tb *Table) Derived() bool { return tb.t.Derived() }

// Len is the logical row count
func (tb *Table) Len() int {
	tb.t.RLock()
	defer tb.t.RUnlock()
	return tb.t.Len()
}

// Columns returns the declared columns in declaration order
func (tb *Table) Columns() []schema.ColumnDefinition {
	tb.t.RLock()
	defer tb.t.RUnlock()
	return append([]schema.ColumnDefinition(nil), tb.t.Def.Columns...)
}

// Indexes describes the live indexes in registration order
func (tb *Table) Indexes() []IndexInfo {
	tb.t.RLock()
	defer tb.t.RUnlock()

	var out []IndexInfo
	for _, idx := range tb.t.Indexes.All() {
		out = append(out, indexInfo(idx))
	}
	return out
}

// Index describes one live index by name
func (tb *Table) Index(name string) (IndexInfo, bool) {
	tb.t.RLock()
	defer tb.t.RUnlock()

	idx, ok := tb.t.Indexes.Get(name)
	if !ok {
		return IndexInfo{}, false
	}
	return indexInfo(idx), true
}

func indexInfo(idx *indexing.Index) IndexInfo {
	return IndexInfo{
		Name:        idx.Name(),
		Kind:        idx.Def.Kind,
		Columns:     append([]string(nil), idx.Columns()...),
		Generated:   idx.Generated,
		Distinct:    idx.Distinct(),
		Selectivity: idx.Selectivity(),
	}
}

// Rows returns copies of every live row in rownum order
func (tb *Table) Rows() []*data.Row {
	tb.t.RLock()
	defer tb.t.RUnlock()
	return tb.t.Rows()
}

// Explain reports the access path Find would take for where without
// running it. Unknown columns fail the same way Find does.
func (tb *Table) Explain(where data.Values) (planner.Estimate, error) {
	tb.t.RLock()
	defer tb.t.RUnlock()

	columns := where.Normalize().Columns()
	if err := tb.t.RequireColumns(columns, "where clause"); err != nil {
		return planner.Estimate{}, err
	}
	return planner.EstimateAccess(tb.t.Indexes, columns, tb.t.Len()), nil
}

func (tb *Table) Find(where data.Values, opts operations.FindOptions) ([]*data.Row, error) {
	return run(tb.engine, transaction.OpFind, tb.t.Name, func(*transaction.Operation) ([]*data.Row, int, error) {
		rows, err := operations.Find(tb.t, where, opts)
		return rows, len(rows), err
	})
}

func (tb *Table) Insert(values data.Values) (int, error) {
	return run(tb.engine, transaction.OpInsert, tb.t.Name, func(op *transaction.Operation) (int, int, error) {
		rownum, err := operations.Insert(tb.t, values)
		if err != nil {
			return -1, 0, err
		}
		op.Rownums = []int{rownum}
		return rownum, 1, nil
	})
}

func (tb *Table) Delete(where data.Values) (int, error) {
	return run(tb.engine, transaction.OpDelete, tb.t.Name, func(*transaction.Operation) (int, int, error) {
		n, err := crud.Delete(tb.t, where)
		return n, n, err
	})
}

func (tb *Table) Update(where, changes data.Values) (int, error) {
	return run(tb.engine, transaction.OpUpdate, tb.t.Name, func(*transaction.Operation) (int, int, error) {
		n, err := crud.Update(tb.t, where, changes)
		return n, n, err
	})
}

// Join equi-joins tb with other; see join.Execute
func (tb *Table) Join(other *Table, opts join.Options) (*Table, error) {
	return run(tb.engine, transaction.OpJoin, tb.t.Name, func(*transaction.Operation) (*Table, int, error) {
		out, err := join.Execute(tb.t, other.t, opts)
		if err != nil {
			return nil, 0, err
		}
		return tb.engine.wrap(out), out.Len(), nil
	})
}

func (tb *Table) Having(conds ...string) (*Table, error) {
	return tb.derive(transaction.OpHaving, func() (*table.Table, error) {
		return operations.Having(tb.t, conds...)
	})
}

func (tb *Table) OrderBy(keys ...string) (*Table, error) {
	return tb.derive(transaction.OpOrderBy, func() (*table.Table, error) {
		return operations.OrderBy(tb.t, keys...)
	})
}

func (tb *Table) derive(opType transaction.OpType, fn func() (*table.Table, error)) (*Table, error) {
	return run(tb.engine, opType, tb.t.Name, func(*transaction.Operation) (*Table, int, error) {
		out, err := fn()
		if err != nil {
			return nil, 0, err
		}
		if out == tb.t {
			return tb, out.Len(), nil
		}
		return tb.engine.wrap(out), out.Len(), nil
	})
}
