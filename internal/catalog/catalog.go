package catalog

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"

	dberrors "github.com/leengari/csvdb/internal/domain/errors"
	"github.com/leengari/csvdb/internal/domain/schema"
	"github.com/leengari/csvdb/internal/storage/csvfile"
)

// Catalog resolves table names to their definitions
type Catalog interface {
	Describe(ctx context.Context, table string) (*schema.TableDefinition, error)
}

// Registry is a Catalog that also accepts new table declarations
type Registry interface {
	Catalog
	Register(ctx context.Context, doc *Document) error
	Tables(ctx context.Context) ([]string, error)
}

// Document is the JSON form of a table declaration
type Document struct {
	Definition TableRef                          `json:"definition"`
	Columns    []schema.ColumnDefinition         `json:"columns"`
	Indexes    map[string]schema.IndexDefinition `json:"indexes,omitempty"`
}

type TableRef struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// NewDocument is the inverse of Document.TableDefinition
func NewDocument(def *schema.TableDefinition) *Document {
	doc := &Document{
		Definition: TableRef{Name: def.Name, Path: def.Path},
		Columns:    slices.Clone(def.Columns),
		Indexes:    make(map[string]schema.IndexDefinition, len(def.Indexes)),
	}
	for _, idx := range def.Indexes {
		idx.Columns = slices.Clone(idx.Columns)
		doc.Indexes[idx.Name] = idx
	}
	return doc
}

// TableDefinition converts the document into a validated table definition.
// Indexes are ordered primary first, then by name, since JSON objects carry
// no order of their own.
func (doc *Document) TableDefinition() (*schema.TableDefinition, error) {
	def := &schema.TableDefinition{
		Name:    strings.TrimSpace(doc.Definition.Name),
		Path:    doc.Definition.Path,
		Columns: slices.Clone(doc.Columns),
	}

	names := make([]string, 0, len(doc.Indexes))
	for name := range doc.Indexes {
		names = append(names, name)
	}
	slices.SortFunc(names, func(a, b string) int {
		pa := doc.Indexes[a].Kind == schema.IndexPrimary
		pb := doc.Indexes[b].Kind == schema.IndexPrimary
		switch {
		case pa && !pb:
			return -1
		case pb && !pa:
			return 1
		}
		return strings.Compare(a, b)
	})
	for _, name := range names {
		idx := doc.Indexes[name]
		if idx.Name == "" {
			idx.Name = name
		}
		idx.Columns = slices.Clone(idx.Columns)
		def.Indexes = append(def.Indexes, idx)
	}

	if err := def.Validate(); err != nil {
		return nil, err
	}
	return def, nil
}

// resolvePath anchors a relative backing file path at base
func resolvePath(base, path string) string {
	if path == "" || filepath.IsAbs(path) || base == "" {
		return path
	}
	return filepath.Join(base, path)
}

// ensureFile creates the backing file with a header of the declared
// columns when it does not exist yet
func ensureFile(def *schema.TableDefinition) error {
	if _, err := os.Stat(def.Path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return dberrors.NewInvalidFile(def.Name, err)
	}
	if err := csvfile.Create(def.Path, def.ColumnNames()); err != nil {
		return dberrors.NewIOError(def.Name, "register", err)
	}
	return nil
}

func notDeclared(table string) error {
	return dberrors.New(dberrors.KindInvalidFile, table, "table is not declared in the catalog")
}
