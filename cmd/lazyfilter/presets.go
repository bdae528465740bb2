package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/rebeliceyang/lazyfilter/internal/filter"
	"github.com/rebeliceyang/lazyfilter/internal/presets"
	"github.com/spf13/cobra"
)

var (
	exportFormat string
	exportOut    string
)

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "Manage saved filters",
}

var presetsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved filters",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := openPresets(loadConfig())
		if err != nil {
			return err
		}
		list := m.GetAll()
		if table != "" {
			list = m.ForTable(table)
		}
		if len(list) == 0 {
			color.Yellow("No saved filters")
			return nil
		}

		name := color.New(color.FgCyan, color.Bold)
		faint := color.New(color.FgHiBlack)
		for _, p := range list {
			conditions, groups := 0, 0
			if f, err := presets.Forest(p); err == nil {
				conditions, groups = filter.Count(f)
			}
			name.Printf("%-24s", p.Name)
			fmt.Printf(" %-28s %d conditions, %d groups", p.Table, conditions, groups)
			if p.UsageCount > 0 {
				faint.Printf("  used %d×, last %s", p.UsageCount, p.LastUsed.Format("2006-01-02"))
			}
			fmt.Println()
		}
		return nil
	},
}

var presetsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export saved filters to JSON or CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := openPresets(loadConfig())
		if err != nil {
			return err
		}
		var path string
		switch strings.ToLower(exportFormat) {
		case "json":
			path, err = m.ExportToJSON(exportOut)
		case "csv":
			path, err = m.ExportToCSV(exportOut)
		default:
			return fmt.Errorf("unknown format %q (use json or csv)", exportFormat)
		}
		if err != nil {
			return err
		}
		color.Green("✓ Exported %d presets to %s", len(m.GetAll()), path)
		return nil
	},
}

var presetsDeleteCmd = &cobra.Command{
	Use:   "delete NAME",
	Short: "Delete a saved filter",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := openPresets(loadConfig())
		if err != nil {
			return err
		}
		p, err := m.FindByName(args[0])
		if err != nil {
			return err
		}
		if err := m.Delete(p.ID); err != nil {
			return err
		}
		color.Green("✓ Deleted preset %q", p.Name)
		return nil
	},
}

func init() {
	presetsExportCmd.Flags().StringVar(&exportFormat, "format", "json", "output format: json or csv")
	presetsExportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default next to the presets file)")

	presetsCmd.AddCommand(presetsListCmd, presetsExportCmd, presetsDeleteCmd)
}
