package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	"github.com/joho/godotenv"
	zone "github.com/lrstanley/bubblezone"
	"github.com/rebeliceyang/lazyfilter/internal/app"
	"github.com/rebeliceyang/lazyfilter/internal/config"
	"github.com/rebeliceyang/lazyfilter/internal/db/connection"
	"github.com/rebeliceyang/lazyfilter/internal/db/metadata"
	"github.com/rebeliceyang/lazyfilter/internal/debug"
	"github.com/rebeliceyang/lazyfilter/internal/history"
	"github.com/rebeliceyang/lazyfilter/internal/models"
	"github.com/rebeliceyang/lazyfilter/internal/presets"
	"github.com/spf13/cobra"
)

var (
	cfgFile  string
	dsn      string
	table    string
	demoMode bool
)

var rootCmd = &cobra.Command{
	Use:   "lazyfilter",
	Short: "Build SQL filters for a PostgreSQL table in the terminal",
	Long: `lazyfilter is an interactive filter builder for PostgreSQL tables.

Conditions are combined with AND/OR, grouped one level deep and moved
around with the keyboard or the mouse. When the filter is applied the
WHERE clause is printed to stdout.

Run with --demo to try it without a database.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadEnv,
	RunE:              runTUI,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/lazyfilter/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dsn, "dsn", "", "PostgreSQL connection URL (default from $DATABASE_URL)")
	rootCmd.PersistentFlags().StringVarP(&table, "table", "t", "", "table to filter, as schema.table")
	rootCmd.Flags().BoolVar(&demoMode, "demo", false, "run against a built-in demo catalog")

	rootCmd.AddCommand(sqlCmd, presetsCmd, tablesCmd)
}

// loadEnv reads .env files before the config is resolved
func loadEnv(cmd *cobra.Command, args []string) error {
	if err := godotenv.Load(); err != nil {
		_ = godotenv.Load(".env.local")
	}
	return nil
}

func loadConfig() *config.Config {
	cfg, err := config.LoadFile(cfgFile)
	if err != nil {
		log.Printf("Warning: Could not load config: %v (using defaults)\n", err)
		cfg = config.GetDefaults()
	}
	return cfg
}

// databaseURL returns the --dsn flag or the configured environment variable
func databaseURL(cfg *config.Config) string {
	if dsn != "" {
		return dsn
	}
	return os.Getenv(cfg.Database.URLEnv)
}

func openPool(ctx context.Context, cfg *config.Config) (*connection.Pool, error) {
	url := databaseURL(cfg)
	if url == "" {
		return nil, fmt.Errorf("no database configured: pass --dsn or set $%s (or use --demo)", cfg.Database.URLEnv)
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return connection.NewPool(ctx, models.ConnectionConfig{URL: url}, connection.NewPasswordStore(cfg.Database.KeyringService))
}

func openPresets(cfg *config.Config) (*presets.Manager, error) {
	m, err := presets.NewManager(cfg.Presets.Path)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if debug.Enabled() {
		f, err := tea.LogToFile("lazyfilter-debug.log", "debug")
		if err != nil {
			return fmt.Errorf("failed to open debug log: %w", err)
		}
		defer f.Close()
		debug.SetOutput(f)
	}

	opts := app.Options{}
	if demoMode || (databaseURL(cfg) == "" && table == "") {
		opts.Schema, opts.Table = metadata.SplitTable(metadata.DemoTable, cfg.Database.DefaultSchema)
		opts.Catalog = metadata.DemoCatalog()
	} else {
		if table == "" {
			return fmt.Errorf("--table is required when connecting to a database")
		}
		pool, err := openPool(ctx, cfg)
		if err != nil {
			return err
		}
		defer pool.Close()
		opts.Pool = pool
		opts.Schema, opts.Table = metadata.SplitTable(table, cfg.Database.DefaultSchema)
	}

	if cfg.History.Enabled {
		store, err := history.NewStore(cfg.History.Path, cfg.History.MaxEntries)
		if err != nil {
			log.Printf("Warning: history disabled: %v\n", err)
		} else {
			defer store.Close()
			opts.History = store
		}
	}

	if m, err := openPresets(cfg); err != nil {
		log.Printf("Warning: presets disabled: %v\n", err)
	} else {
		opts.Presets = m
		if cfg.Presets.Watch {
			w, err := presets.NewWatcher(m.Path(), presets.WithOnError(func(err error) {
				debug.Log("presets watcher: %v", err)
			}))
			if err != nil {
				debug.Log("presets watcher disabled: %v", err)
			} else {
				defer w.Close()
				opts.Watcher = w
			}
		}
	}

	zone.NewGlobal()

	a := app.New(cfg, opts)
	programOpts := []tea.ProgramOption{tea.WithAltScreen()}
	if cfg.UI.MouseEnabled {
		programOpts = append(programOpts, tea.WithMouseCellMotion())
	}

	p := tea.NewProgram(a, programOpts...)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running program: %w", err)
	}

	res := a.Result()
	if res == nil {
		return nil
	}
	if res.Where == "" {
		color.Yellow("No complete conditions, nothing to apply")
		return nil
	}
	fmt.Println(a.Builder().SQL().Preview(res.Forest))
	return nil
}
