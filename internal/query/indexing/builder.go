package indexing

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/leengari/csvdb/internal/domain/data"
	dberrors "github.com/leengari/csvdb/internal/domain/errors"
	"github.com/leengari/csvdb/internal/domain/schema"
	"github.com/leengari/csvdb/internal/storage/rowstore"
)

// Progress receives incremental build progress for one index
type Progress func(index string, done, total int)

// BuildOptions tunes BuildSet
type BuildOptions struct {
	Progress Progress
	// LenientPrimary drops a non-unique primary index with a warning instead
	// of failing. Used for derived tables, whose rows come from a join.
	LenientPrimary bool
}

// Set holds a table's indexes in registration order
type Set struct {
	order []*Index
}

func NewSet() *Set { return &Set{} }

func (s *Set) Add(idx *Index) { s.order = append(s.order, idx) }

func (s *Set) Get(name string) (*Index, bool) {
	for _, idx := range s.order {
		if idx.Def.Name == name {
			return idx, true
		}
	}
	return nil, false
}

// Primary returns the primary index or nil
func (s *Set) Primary() *Index {
	for _, idx := range s.order {
		if idx.Def.Kind == schema.IndexPrimary {
			return idx
		}
	}
	return nil
}

// All returns the indexes in registration order
func (s *Set) All() []*Index { return slices.Clone(s.order) }

func (s *Set) Len() int { return len(s.order) }

// Declared returns the definitions of indexes that were not generated
func (s *Set) Declared() []schema.IndexDefinition {
	var defs []schema.IndexDefinition
	for _, idx := range s.order {
		if !idx.Generated {
			defs = append(defs, idx.Def)
		}
	}
	return defs
}

// InsertRow adds rownum to every index whose columns are all present in row
func (s *Set) InsertRow(rownum int, row data.Getter) {
	for _, idx := range s.order {
		if idx.Def.Covers(has(row)) {
			idx.Insert(rownum, row)
		}
	}
}

// Touching returns the indexes with at least one column in columns
func (s *Set) Touching(columns []string) []*Index {
	var out []*Index
	for _, idx := range s.order {
		if idx.Def.Touches(func(c string) bool { return slices.Contains(columns, c) }) {
			out = append(out, idx)
		}
	}
	return out
}

// RecomputeSelectivity refreshes every index against the logical row count
func (s *Set) RecomputeSelectivity(logical int) {
	for _, idx := range s.order {
		idx.RecomputeSelectivity(logical)
	}
}

// Build scans every live row of store into a new index
func Build(def schema.IndexDefinition, store *rowstore.Store, progress Progress) *Index {
	idx := newIndex(def)
	total := store.LogicalCount()
	step := max(1, total/20)
	done := 0

	store.Live(func(row *data.Row) bool {
		idx.Insert(row.Rownum, row)
		done++
		if progress != nil && (done%step == 0 || done == total) {
			progress(def.Name, done, total)
		}
		return true
	})
	if progress != nil && total == 0 {
		progress(def.Name, 0, 0)
	}

	idx.RecomputeSelectivity(total)
	return idx
}

// BuildSet builds every declared index, plus prefix indexes of a composite
// primary key, concurrently over store. A duplicate primary key fails the
// build; a duplicate unique key drops that index with a warning.
func BuildSet(table string, defs []schema.IndexDefinition, store *rowstore.Store, opts BuildOptions) (*Set, error) {
	all := slices.Clone(defs)
	for _, d := range defs {
		if d.Kind == schema.IndexPrimary {
			all = append(all, schema.PrefixIndexes(d, defs)...)
		}
	}

	progress := opts.Progress
	if progress != nil {
		var mu sync.Mutex
		inner := progress
		progress = func(index string, done, total int) {
			mu.Lock()
			defer mu.Unlock()
			inner(index, done, total)
		}
	}

	built := make([]*Index, len(all))
	var g errgroup.Group
	for i, def := range all {
		g.Go(func() error {
			if len(def.Columns) == 0 {
				return fmt.Errorf("index %s has no columns", def.Name)
			}
			built[i] = Build(def, store, progress)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("building indexes for %s: %w", table, err)
	}

	set := NewSet()
	for i, idx := range built {
		idx.Generated = i >= len(defs)

		if idx.Def.Unique() {
			if _, rownums, dup := idx.Duplicate(); dup {
				if idx.Def.Kind == schema.IndexPrimary && !opts.LenientPrimary {
					e := dberrors.NewDuplicateKey(table, idx.Def.Name)
					e.Message = fmt.Sprintf("aborting; duplicate entry for key '%s' at rows %v", idx.Def.Name, rownums)
					return nil, e
				}
				slog.Warn("skipping unique index as it fails unique constraint",
					slog.String("table", table),
					slog.String("index", idx.Def.Name),
					slog.Any("rows", rownums),
				)
				continue
			}
		}

		set.Add(idx)

		slog.Debug("index built",
			slog.String("table", table),
			slog.String("index", idx.Def.Name),
			slog.Any("columns", idx.Def.Columns),
			slog.Int("distinct_keys", idx.Distinct()),
			slog.Float64("selectivity", idx.Selectivity()),
			slog.Bool("generated", idx.Generated),
		)
	}

	return set, nil
}

func has(row data.Getter) func(string) bool {
	return func(c string) bool {
		_, ok := row.Get(c)
		return ok
	}
}
