package engine

import (
	"context"
	"sync"
	"time"

	"github.com/leengari/csvdb/internal/catalog"
	"github.com/leengari/csvdb/internal/domain/table"
	"github.com/leengari/csvdb/internal/domain/transaction"
	"github.com/leengari/csvdb/internal/query/indexing"
	"github.com/leengari/csvdb/internal/storage/loader"
)

// Engine is the main entry point: it resolves tables through a catalog,
// loads them and reports every operation to its observers.
type Engine struct {
	catalog   catalog.Catalog
	mu        sync.RWMutex
	observers []Observer // Observers for lifecycle events
}

// Option configures an Engine
type Option func(*Engine)

// WithObserver registers an observer at construction
func WithObserver(o Observer) Option {
	return func(e *Engine) { e.observers = append(e.observers, o) }
}

// New creates a new Engine reading table definitions from cat
func New(cat catalog.Catalog, opts ...Option) *Engine {
	e := &Engine{
		catalog:   cat,
		observers: make([]Observer, 0),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Open describes name through the catalog, loads its backing file and
// builds its indexes
func (e *Engine) Open(ctx context.Context, name string) (*Table, error) {
	return run(e, transaction.OpLoad, name, func(op *transaction.Operation) (*Table, int, error) {
		def, err := e.catalog.Describe(ctx, name)
		if err != nil {
			return nil, 0, err
		}
		t, err := loader.LoadTable(def, indexing.BuildOptions{
			Progress: func(index string, done, total int) {
				e.notify(Event{
					Type:  EventIndexProgress,
					OpID:  op.ID,
					Seq:   op.Seq,
					Op:    op.Type,
					Table: name,
					Data:  IndexProgress{Index: index, Done: done, Total: total},
				})
			},
		})
		if err != nil {
			return nil, 0, err
		}
		return e.wrap(t), t.Len(), nil
	})
}

func (e *Engine) wrap(t *table.Table) *Table {
	return &Table{engine: e, t: t}
}

// AddObserver registers an observer to receive lifecycle events
func (e *Engine) AddObserver(observer Observer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.observers = append(e.observers, observer)
}

// RemoveObserver unregisters an observer
func (e *Engine) RemoveObserver(observer Observer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, obs := range e.observers {
		if obs == observer {
			e.observers = append(e.observers[:i], e.observers[i+1:]...)
			return
		}
	}
}

// notify sends an event to all registered observers
func (e *Engine) notify(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, observer := range e.observers {
		observer.OnEvent(event)
	}
}

// run wraps fn in an operation, emitting start and end (or error) events.
// fn reports the number of rows returned or affected.
func run[T any](e *Engine, opType transaction.OpType, tableName string, fn func(op *transaction.Operation) (T, int, error)) (T, error) {
	op := transaction.New(opType, tableName)
	e.notify(Event{Type: EventOpStart, OpID: op.ID, Seq: op.Seq, Op: op.Type, Table: tableName})

	res, rows, err := fn(op)
	elapsed := op.Elapsed()
	if err != nil {
		e.notify(Event{Type: EventOpError, OpID: op.ID, Seq: op.Seq, Op: op.Type, Table: tableName, Data: err})
		return res, err
	}

	e.notify(Event{
		Type:  EventOpEnd,
		OpID:  op.ID,
		Seq:   op.Seq,
		Op:    op.Type,
		Table: tableName,
		Data:  OpResult{Rows: rows, Rownums: op.Rownums, Elapsed: elapsed},
	})
	return res, nil
}
