package catalog

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	pkgErrors "github.com/pkg/errors"

	dberrors "github.com/leengari/csvdb/internal/domain/errors"
	"github.com/leengari/csvdb/internal/domain/schema"
)

const documentExt = ".json"

// FileCatalog keeps one <table>.json document per table in a directory.
// Relative backing file paths are resolved against that directory.
type FileCatalog struct {
	dir string
}

func NewFileCatalog(dir string) *FileCatalog {
	return &FileCatalog{dir: dir}
}

func (c *FileCatalog) documentPath(table string) string {
	return filepath.Join(c.dir, strings.ToLower(table)+documentExt)
}

// Describe reads and validates the document of table
func (c *FileCatalog) Describe(ctx context.Context, table string) (*schema.TableDefinition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(c.documentPath(table))
	if os.IsNotExist(err) {
		return nil, notDeclared(table)
	}
	if err != nil {
		return nil, dberrors.NewIOError(table, "describe", pkgErrors.Wrapf(err, "failed to read catalog document for %s", table))
	}

	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, dberrors.NewInvalidFile(table, pkgErrors.Wrapf(err, "failed to parse catalog document for %s", table))
	}
	def, err := doc.TableDefinition()
	if err != nil {
		return nil, err
	}
	def.Path = resolvePath(c.dir, def.Path)
	return def, nil
}

// Register validates doc and stores it. The backing file is created with a
// header row when missing.
func (c *FileCatalog) Register(ctx context.Context, doc *Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	def, err := doc.TableDefinition()
	if err != nil {
		return err
	}

	target := c.documentPath(def.Name)
	if _, err := os.Stat(target); err == nil {
		return dberrors.New(dberrors.KindDuplicateTableName, def.Name, "table already exists")
	}

	resolved := def.Clone()
	resolved.Path = resolvePath(c.dir, def.Path)
	if err := ensureFile(resolved); err != nil {
		return err
	}

	raw, err := json.MarshalIndent(NewDocument(def), "", "  ")
	if err != nil {
		return dberrors.NewIOError(def.Name, "register", err)
	}
	if err := writeAtomic(target, raw); err != nil {
		return dberrors.NewIOError(def.Name, "register", err)
	}

	slog.Info("table registered",
		slog.String("table", def.Name),
		slog.String("catalog", c.dir),
		slog.Int("columns", len(def.Columns)),
		slog.Int("indexes", len(def.Indexes)),
	)
	return nil
}

// Tables lists the declared table names, sorted
func (c *FileCatalog) Tables(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return nil, dberrors.NewIOError("", "list tables", pkgErrors.Wrapf(err, "failed to read catalog directory %s", c.dir))
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), documentExt) {
			names = append(names, strings.TrimSuffix(e.Name(), documentExt))
		}
	}
	slices.Sort(names)
	return names, nil
}

// writeAtomic writes to a temp file in the same directory and renames it
// over path
func writeAtomic(path string, content []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return pkgErrors.Wrapf(err, "failed to create temp file for %s", path)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return pkgErrors.Wrapf(err, "failed to write temp file for %s", path)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return pkgErrors.Wrapf(err, "failed to sync temp file for %s", path)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return pkgErrors.Wrapf(err, "failed to close temp file for %s", path)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return pkgErrors.Wrapf(err, "failed to rename temp file over %s", path)
	}
	return nil
}
