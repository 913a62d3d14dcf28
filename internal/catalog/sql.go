package catalog

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"

	_ "github.com/glebarez/go-sqlite"
	pkgErrors "github.com/pkg/errors"

	dberrors "github.com/leengari/csvdb/internal/domain/errors"
	"github.com/leengari/csvdb/internal/domain/schema"
)

// DriverName is the database/sql driver registered by glebarez/go-sqlite
const DriverName = "sqlite"

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS csv_tables (
		table_name TEXT PRIMARY KEY,
		file_path  TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS csv_columns (
		table_name  TEXT NOT NULL REFERENCES csv_tables(table_name),
		column_name TEXT NOT NULL,
		column_type TEXT NOT NULL,
		not_null    INTEGER NOT NULL DEFAULT 0,
		position    INTEGER NOT NULL,
		PRIMARY KEY (table_name, column_name)
	)`,
	`CREATE TABLE IF NOT EXISTS csv_indexes (
		table_name TEXT NOT NULL REFERENCES csv_tables(table_name),
		index_name TEXT NOT NULL,
		index_type TEXT NOT NULL,
		columns    TEXT NOT NULL,
		position   INTEGER NOT NULL,
		PRIMARY KEY (table_name, index_name)
	)`,
}

// SQLCatalog stores table declarations in a SQLite database
type SQLCatalog struct {
	db *sql.DB
}

// OpenSQL opens the SQLite catalog at dsn and creates its tables if needed.
// ":memory:" gives a private in-memory catalog.
func OpenSQL(ctx context.Context, dsn string) (*SQLCatalog, error) {
	db, err := sql.Open(DriverName, dsn)
	if err != nil {
		return nil, dberrors.NewIOError("", "open catalog", pkgErrors.Wrapf(err, "failed to open sqlite catalog %s", dsn))
	}
	// one connection keeps ":memory:" a single database
	db.SetMaxOpenConns(1)

	for _, stmt := range migrations {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, dberrors.NewIOError("", "open catalog", pkgErrors.Wrap(err, "failed to migrate sqlite catalog"))
		}
	}
	slog.Debug("sqlite catalog opened", slog.String("dsn", dsn))
	return &SQLCatalog{db: db}, nil
}

func (c *SQLCatalog) Close() error {
	return c.db.Close()
}

// Describe assembles the definition of table from the catalog tables
func (c *SQLCatalog) Describe(ctx context.Context, table string) (*schema.TableDefinition, error) {
	table = strings.ToLower(strings.TrimSpace(table))
	def := &schema.TableDefinition{Name: table}

	err := c.db.QueryRowContext(ctx,
		`SELECT file_path FROM csv_tables WHERE table_name = ?`, table).Scan(&def.Path)
	if err == sql.ErrNoRows {
		return nil, notDeclared(table)
	}
	if err != nil {
		return nil, queryError(table, err)
	}

	rows, err := c.db.QueryContext(ctx,
		`SELECT column_name, column_type, not_null FROM csv_columns WHERE table_name = ? ORDER BY position`, table)
	if err != nil {
		return nil, queryError(table, err)
	}
	for rows.Next() {
		var col schema.ColumnDefinition
		var typ string
		if err := rows.Scan(&col.Name, &typ, &col.NotNull); err != nil {
			rows.Close()
			return nil, queryError(table, err)
		}
		col.Type = schema.ColumnType(typ)
		def.Columns = append(def.Columns, col)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, queryError(table, err)
	}

	rows, err = c.db.QueryContext(ctx,
		`SELECT index_name, index_type, columns FROM csv_indexes WHERE table_name = ? ORDER BY position`, table)
	if err != nil {
		return nil, queryError(table, err)
	}
	defer rows.Close()
	for rows.Next() {
		var idx schema.IndexDefinition
		var kind, columns string
		if err := rows.Scan(&idx.Name, &kind, &columns); err != nil {
			return nil, queryError(table, err)
		}
		idx.Kind = schema.IndexKind(kind)
		idx.Columns = strings.Split(columns, ",")
		def.Indexes = append(def.Indexes, idx)
	}
	if err := rows.Err(); err != nil {
		return nil, queryError(table, err)
	}

	if err := def.Validate(); err != nil {
		return nil, err
	}
	return def, nil
}

// Register writes the declaration in one transaction and creates the
// backing file when missing
func (c *SQLCatalog) Register(ctx context.Context, doc *Document) error {
	def, err := doc.TableDefinition()
	if err != nil {
		return err
	}
	def.Name = strings.ToLower(def.Name)

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return queryError(def.Name, err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM csv_tables WHERE table_name = ?`, def.Name).Scan(&exists)
	if err != nil {
		return queryError(def.Name, err)
	}
	if exists > 0 {
		return dberrors.New(dberrors.KindDuplicateTableName, def.Name, "table already exists")
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO csv_tables (table_name, file_path) VALUES (?, ?)`, def.Name, def.Path); err != nil {
		return queryError(def.Name, err)
	}
	for i, col := range def.Columns {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO csv_columns (table_name, column_name, column_type, not_null, position) VALUES (?, ?, ?, ?, ?)`,
			def.Name, col.Name, string(col.Type), boolToInt(col.NotNull), i); err != nil {
			return queryError(def.Name, err)
		}
	}
	for i, idx := range def.Indexes {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO csv_indexes (table_name, index_name, index_type, columns, position) VALUES (?, ?, ?, ?, ?)`,
			def.Name, idx.Name, string(idx.Kind), strings.Join(idx.Columns, ","), i); err != nil {
			return queryError(def.Name, err)
		}
	}

	if err := ensureFile(def); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return queryError(def.Name, err)
	}

	slog.Info("table registered",
		slog.String("table", def.Name),
		slog.String("catalog", "sqlite"),
		slog.Int("columns", len(def.Columns)),
		slog.Int("indexes", len(def.Indexes)),
	)
	return nil
}

// Tables lists the declared table names, sorted
func (c *SQLCatalog) Tables(ctx context.Context) ([]string, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT table_name FROM csv_tables ORDER BY table_name`)
	if err != nil {
		return nil, queryError("", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, queryError("", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, queryError("", err)
	}
	return names, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func queryError(table string, err error) error {
	return dberrors.NewIOError(table, "catalog query", pkgErrors.Wrap(err, "sqlite catalog"))
}
