package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/rebeliceyang/lazyfilter/internal/config"
	"github.com/rebeliceyang/lazyfilter/internal/db/metadata"
	"github.com/rebeliceyang/lazyfilter/internal/filter"
	"github.com/rebeliceyang/lazyfilter/internal/models"
	"github.com/rebeliceyang/lazyfilter/internal/presets"
	"github.com/spf13/cobra"
)

var (
	presetName string
	selectMode bool
	withArgs   bool
)

var sqlCmd = &cobra.Command{
	Use:   "sql",
	Short: "Print the SQL of a saved filter",
	Long: `Print the WHERE clause of a saved preset.

With --select a full SELECT statement for the table is printed, limited
to database.row_limit rows. With --args the statement keeps its $n
placeholders and the values are listed below it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if presetName == "" {
			return fmt.Errorf("--preset is required")
		}
		cfg := loadConfig()
		m, err := openPresets(cfg)
		if err != nil {
			return err
		}
		p, err := m.FindByName(presetName)
		if err != nil {
			return err
		}
		f, err := presets.Forest(*p)
		if err != nil {
			return err
		}

		target := table
		if target == "" {
			target = p.Table
		}
		schema, name := metadata.SplitTable(target, cfg.Database.DefaultSchema)

		catalog, err := catalogFor(cmd.Context(), cfg, schema, name)
		if err != nil {
			return err
		}
		b := filter.NewBuilder(catalog)

		switch {
		case selectMode:
			query, qargs, err := b.Select(schema, name, f, uint64(cfg.Database.RowLimit))
			if err != nil {
				return err
			}
			fmt.Println(query)
			printArgs(qargs)
		case withArgs:
			where, qargs, err := b.BuildWhere(f)
			if err != nil {
				return err
			}
			fmt.Println(where)
			printArgs(qargs)
		default:
			where := b.Preview(f)
			if where == "" {
				color.Yellow("Preset %q has no complete conditions", p.Name)
				return nil
			}
			fmt.Println(where)
		}
		return m.RecordUsage(p.ID)
	},
}

// catalogFor returns the columns of a table: the built-in catalog for the
// demo table, otherwise the live catalog from the database
func catalogFor(ctx context.Context, cfg *config.Config, schema, name string) (*models.Catalog, error) {
	if schema+"."+name == metadata.DemoTable {
		return metadata.DemoCatalog(), nil
	}
	pool, err := openPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer pool.Close()
	return metadata.LoadCatalog(ctx, pool, schema, name)
}

func printArgs(args []interface{}) {
	for i, a := range args {
		color.New(color.FgHiBlack).Printf("-- $%d = %v\n", i+1, a)
	}
}

func init() {
	sqlCmd.Flags().StringVarP(&presetName, "preset", "p", "", "name of the saved filter")
	sqlCmd.Flags().BoolVar(&selectMode, "select", false, "print a SELECT statement")
	sqlCmd.Flags().BoolVar(&withArgs, "args", false, "keep placeholders and list the values")
}
