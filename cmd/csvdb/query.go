package main

import (
	"github.com/spf13/cobra"

	"github.com/leengari/csvdb/internal/catalog"
	dberrors "github.com/leengari/csvdb/internal/domain/errors"
	"github.com/leengari/csvdb/internal/engine"
	"github.com/leengari/csvdb/internal/query/operations"
	"github.com/leengari/csvdb/internal/query/operations/join"
)

var describeCmd = &cobra.Command{
	Use:   "describe [table]",
	Short: "Show a table's definition and live indexes, or list tables.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if len(args) == 0 {
			names, err := current.registry.Tables(ctx)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), names)
		}

		t, err := current.table(ctx, args[0])
		if err != nil {
			return err
		}
		if name := getString(cmd.Flags(), "index"); name != "" {
			info, ok := t.Index(name)
			if !ok {
				return dberrors.New(dberrors.KindInvalidMethodCall, t.Name(), "no index named '%s'", name)
			}
			return writeJSON(cmd.OutOrStdout(), info)
		}

		def, err := current.registry.Describe(ctx, args[0])
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), struct {
			*catalog.Document
			Rows    int                `json:"rows"`
			Indexes []engine.IndexInfo `json:"live_indexes"`
		}{catalog.NewDocument(def), t.Len(), t.Indexes()})
	},
}

var findCmd = &cobra.Command{
	Use:   "find <table>",
	Short: "Print the rows matching an equality template.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		t, err := current.table(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		where, err := parseBindings(getStrings(flags, "where"), t.Columns())
		if err != nil {
			return err
		}

		// having and order-by run before projection and slicing
		if conds := getStrings(flags, "having"); len(conds) > 0 {
			if t, err = t.Having(conds...); err != nil {
				return err
			}
		}
		if keys := getStrings(flags, "order-by"); len(keys) > 0 {
			if t, err = t.OrderBy(keys...); err != nil {
				return err
			}
		}

		rows, err := t.Find(where, operations.FindOptions{
			Fields:    splitList(getString(flags, "fields")),
			Limit:     getInt(flags, "limit"),
			Offset:    getInt(flags, "offset"),
			ForceScan: getBool(flags, "scan"),
		})
		if err != nil {
			return err
		}
		return writeRows(cmd, rows)
	},
}

var explainCmd = &cobra.Command{
	Use:   "explain <table>",
	Short: "Show the access path a find would take.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := current.table(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		where, err := parseBindings(getStrings(cmd.Flags(), "where"), t.Columns())
		if err != nil {
			return err
		}
		est, err := t.Explain(where)
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), est)
	},
}

var joinCmd = &cobra.Command{
	Use:   "join <left> <right>",
	Short: "Print the equi-join of two tables.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		ctx := cmd.Context()
		left, err := current.table(ctx, args[0])
		if err != nil {
			return err
		}
		right, err := current.table(ctx, args[1])
		if err != nil {
			return err
		}
		where, err := parseBindings(getStrings(flags, "where"), columnsOf(left, right))
		if err != nil {
			return err
		}

		out, err := left.Join(right, join.Options{
			On:     splitList(getString(flags, "on")),
			Where:  where,
			Fields: splitList(getString(flags, "fields")),
		})
		if err != nil {
			return err
		}
		if keys := getStrings(flags, "order-by"); len(keys) > 0 {
			if out, err = out.OrderBy(keys...); err != nil {
				return err
			}
		}
		return writeRows(cmd, out.Rows())
	},
}

func init() {
	describeCmd.Flags().String("index", "", "describe only this live index")

	findCmd.Flags().StringArrayP("where", "w", nil, "equality binding column=value (repeatable)")
	findCmd.Flags().StringP("fields", "f", "", "comma separated columns to print")
	findCmd.Flags().Int("limit", 0, "maximum rows to print (0 for all)")
	findCmd.Flags().Int("offset", 0, "rows to skip")
	findCmd.Flags().StringArray("having", nil, "condition such as 'age >= 30' (repeatable)")
	findCmd.Flags().StringArray("order-by", nil, "sort key such as 'age desc' (repeatable, last key dominates)")
	findCmd.Flags().Bool("scan", false, "ignore indexes and scan")

	explainCmd.Flags().StringArrayP("where", "w", nil, "equality binding column=value (repeatable)")

	joinCmd.Flags().String("on", "", "comma separated join columns")
	joinCmd.Flags().StringArrayP("where", "w", nil, "equality binding column=value (repeatable)")
	joinCmd.Flags().StringP("fields", "f", "", "comma separated columns to print")
	joinCmd.Flags().StringArray("order-by", nil, "sort key for the joined rows (repeatable)")

	rootCmd.AddCommand(describeCmd, findCmd, explainCmd, joinCmd)
}
