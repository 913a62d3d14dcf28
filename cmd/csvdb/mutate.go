package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/leengari/csvdb/internal/catalog"
)

var insertCmd = &cobra.Command{
	Use:   "insert <table> column=value...",
	Short: "Append one row.",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := current.table(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		values, err := parseBindings(args[1:], t.Columns())
		if err != nil {
			return err
		}
		rownum, err := t.Insert(values)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "inserted rownum %d\n", rownum)
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <table>",
	Short: "Delete the rows matching an equality template.",
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
		n, err := t.Delete(where)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %d row(s)\n", n)
		return nil
	},
}

var updateCmd = &cobra.Command{
	Use:   "update <table>",
	Short: "Set columns on the rows matching an equality template.",
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
		changes, err := parseBindings(getStrings(flags, "set"), t.Columns())
		if err != nil {
			return err
		}
		n, err := t.Update(where, changes)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "updated %d row(s)\n", n)
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:   "register <document.json>",
	Short: "Declare a table from a JSON catalog document.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := readDocument(args[0])
		if err != nil {
			return err
		}
		if err := current.registry.Register(cmd.Context(), doc); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "registered %s\n", doc.Definition.Name)
		return nil
	},
}

func readDocument(path string) (*catalog.Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc catalog.Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &doc, nil
}

func init() {
	deleteCmd.Flags().StringArrayP("where", "w", nil, "equality binding column=value (repeatable)")
	updateCmd.Flags().StringArrayP("where", "w", nil, "equality binding column=value (repeatable)")
	updateCmd.Flags().StringArray("set", nil, "change column=value (repeatable)")

	rootCmd.AddCommand(insertCmd, deleteCmd, updateCmd, registerCmd)
}
