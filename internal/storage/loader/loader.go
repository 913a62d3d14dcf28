package loader

import (
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/leengari/csvdb/internal/domain/data"
	dberrors "github.com/leengari/csvdb/internal/domain/errors"
	"github.com/leengari/csvdb/internal/domain/schema"
	"github.com/leengari/csvdb/internal/domain/table"
	"github.com/leengari/csvdb/internal/query/indexing"
	"github.com/leengari/csvdb/internal/storage/csvfile"
	"github.com/leengari/csvdb/internal/storage/rowstore"
)

// LoadTable reads the backing file of def into memory and builds its indexes
func LoadTable(def *schema.TableDefinition, opts indexing.BuildOptions) (*table.Table, error) {
	def = def.Clone()
	if err := def.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	header, err := csvfile.Header(def.Path)
	if err != nil {
		return nil, dberrors.NewInvalidFile(def.Name, err)
	}
	for _, c := range def.Columns {
		if !slices.Contains(header, c.Name) {
			return nil, &dberrors.Error{
				Kind:    dberrors.KindInvalidFile,
				Table:   def.Name,
				Column:  c.Name,
				Message: fmt.Sprintf("declared column missing from header of %s", def.Path),
			}
		}
	}

	store, err := readRows(def, header)
	if err != nil {
		return nil, err
	}

	indexes, err := indexing.BuildSet(def.Name, def.Indexes, store, opts)
	if err != nil {
		return nil, err
	}

	t := &table.Table{
		Name:    def.Name,
		Path:    def.Path,
		Header:  header,
		Def:     def,
		Store:   store,
		Indexes: indexes,
		State:   table.StateLoaded,
	}

	slog.Info("table loaded",
		slog.String("table", t.Name),
		slog.String("path", t.Path),
		slog.Int("rows", store.LogicalCount()),
		slog.Int("indexes", indexes.Len()),
		slog.Duration("elapsed", time.Since(start)),
	)

	return t, nil
}

func readRows(def *schema.TableDefinition, header []string) (*rowstore.Store, error) {
	// position of every declared column in the file
	pos := make([]int, len(def.Columns))
	for i, c := range def.Columns {
		pos[i] = slices.Index(header, c.Name)
	}

	store := rowstore.New()
	line := 1
	err := csvfile.Read(def.Path, func(_, record []string) error {
		line++
		row := data.NewRow()
		for i, col := range def.Columns {
			raw := record[pos[i]]
			if raw == "" && col.NotNull {
				return dberrors.NewCannotBeNull(def.Name, col.Name,
					fmt.Sprintf("cannot load table; NULL value found at line %d", line))
			}
			v, err := data.ParseValue(raw, col)
			if err != nil {
				return &dberrors.Error{
					Kind:    dberrors.KindInvalidFile,
					Table:   def.Name,
					Column:  col.Name,
					Message: fmt.Sprintf("line %d", line),
					Err:     err,
				}
			}
			row.Set(col.Name, v)
		}
		store.Append(row)
		return nil
	})
	if err != nil {
		if dberrors.KindOf(err) != dberrors.KindUnknown {
			return nil, err
		}
		return nil, dberrors.NewInvalidFile(def.Name, err)
	}
	return store, nil
}
