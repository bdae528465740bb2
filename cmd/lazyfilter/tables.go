package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/rebeliceyang/lazyfilter/internal/db/metadata"
	"github.com/spf13/cobra"
)

var tablesSchema string

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "List the tables that can be filtered",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		pool, err := openPool(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer pool.Close()

		schema := tablesSchema
		if schema == "" {
			schema = cfg.Database.DefaultSchema
		}
		tables, err := metadata.ListTables(cmd.Context(), pool, schema)
		if err != nil {
			return err
		}
		if len(tables) == 0 {
			color.Yellow("No tables in schema %s", schema)
			return nil
		}
		for _, t := range tables {
			color.New(color.FgCyan).Printf("%-40s", t.QualifiedName())
			fmt.Printf(" %s\n", t.Size)
		}
		return nil
	},
}

func init() {
	tablesCmd.Flags().StringVar(&tablesSchema, "schema", "", "schema to list (default database.default_schema)")
}
