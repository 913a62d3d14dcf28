package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/leengari/csvdb/internal/domain/data"
	"github.com/leengari/csvdb/internal/domain/schema"
	"github.com/leengari/csvdb/internal/engine"
)

// Get an expected flag, or exit if an error arises.
func getString(flags *pflag.FlagSet, flag string) string {
	r, err := flags.GetString(flag)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	return r
}

func getStrings(flags *pflag.FlagSet, flag string) []string {
	r, err := flags.GetStringArray(flag)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	return r
}

func getBool(flags *pflag.FlagSet, flag string) bool {
	r, err := flags.GetBool(flag)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	return r
}

func getInt(flags *pflag.FlagSet, flag string) int {
	r, err := flags.GetInt(flag)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	return r
}

// parseBindings turns col=value arguments into typed values using the
// column types of columns. An empty value is Null. Columns that are not
// declared are kept as text so the engine reports them.
func parseBindings(args []string, columns []schema.ColumnDefinition) (data.Values, error) {
	byName := make(map[string]schema.ColumnDefinition, len(columns))
	for _, c := range columns {
		byName[c.Name] = c
	}

	out := make(data.Values, len(args))
	for _, arg := range args {
		name, raw, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, fmt.Errorf("expected column=value, got %q", arg)
		}
		name = schema.NormalizeName(name)
		col, declared := byName[name]
		if !declared {
			col = schema.ColumnDefinition{Name: name, Type: schema.ColumnTypeText}
		}
		v, err := data.ParseValue(raw, col)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", name, err)
		}
		out[name] = v
	}
	return out, nil
}

// splitList splits a comma separated flag value; empty means nil
func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// writeRows prints one JSON object per row followed by the count on stderr
func writeRows(cmd *cobra.Command, rows []*data.Row) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	for _, r := range rows {
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%d row(s)\n", len(rows))
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func columnsOf(tables ...*engine.Table) []schema.ColumnDefinition {
	var out []schema.ColumnDefinition
	for _, t := range tables {
		out = append(out, t.Columns()...)
	}
	return out
}
