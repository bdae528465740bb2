package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rebeliceyang/lazyfilter/internal/layout"
	"github.com/spf13/viper"
)

// AppName names the config directory and the env prefix
const AppName = "lazyfilter"

// Config holds all application configuration
type Config struct {
	UI       UIConfig       `mapstructure:"ui"`
	Layout   layout.Metrics `mapstructure:"layout"`
	History  HistoryConfig  `mapstructure:"history"`
	Presets  PresetsConfig  `mapstructure:"presets"`
	Database DatabaseConfig `mapstructure:"database"`
}

type UIConfig struct {
	Theme            string `mapstructure:"theme"`
	MouseEnabled     bool   `mapstructure:"mouse_enabled"`
	AnimationFrameMS int    `mapstructure:"animation_frame_ms"`
	AnimationFrames  int    `mapstructure:"animation_frames"`
	ShowSQLPreview   bool   `mapstructure:"show_sql_preview"`
	Tutorial         bool   `mapstructure:"tutorial"`
}

// AnimationFrame returns the frame interval of the reconciler scheduler
func (c UIConfig) AnimationFrame() time.Duration {
	if c.AnimationFrameMS <= 0 {
		return 16 * time.Millisecond
	}
	return time.Duration(c.AnimationFrameMS) * time.Millisecond
}

type HistoryConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Path       string `mapstructure:"path"`
	MaxEntries int    `mapstructure:"max_entries"`
}

type PresetsConfig struct {
	Path  string `mapstructure:"path"`
	Watch bool   `mapstructure:"watch"`
}

type DatabaseConfig struct {
	URLEnv         string `mapstructure:"url_env"`
	KeyringService string `mapstructure:"keyring_service"`
	DefaultSchema  string `mapstructure:"default_schema"`
	RowLimit       int    `mapstructure:"row_limit"`
}

// GetDefaults returns a Config with all default values
func GetDefaults() *Config {
	return &Config{
		UI: UIConfig{
			Theme:            "default",
			MouseEnabled:     true,
			AnimationFrameMS: 16,
			AnimationFrames:  4,
			ShowSQLPreview:   true,
			Tutorial:         true,
		},
		Layout: layout.DefaultMetrics(),
		History: HistoryConfig{
			Enabled:    true,
			Path:       "",
			MaxEntries: 1000,
		},
		Presets: PresetsConfig{
			Path:  "",
			Watch: true,
		},
		Database: DatabaseConfig{
			URLEnv:         "DATABASE_URL",
			KeyringService: AppName,
			DefaultSchema:  "public",
			RowLimit:       100,
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := GetDefaults()
	v.SetDefault("ui.theme", d.UI.Theme)
	v.SetDefault("ui.mouse_enabled", d.UI.MouseEnabled)
	v.SetDefault("ui.animation_frame_ms", d.UI.AnimationFrameMS)
	v.SetDefault("ui.animation_frames", d.UI.AnimationFrames)
	v.SetDefault("ui.show_sql_preview", d.UI.ShowSQLPreview)
	v.SetDefault("ui.tutorial", d.UI.Tutorial)
	v.SetDefault("layout.row_height", d.Layout.RowHeight)
	v.SetDefault("layout.indent", d.Layout.Indent)
	v.SetDefault("layout.row_width", d.Layout.RowWidth)
	v.SetDefault("layout.connector_width", d.Layout.ConnectorWidth)
	v.SetDefault("layout.field_width", d.Layout.FieldWidth)
	v.SetDefault("layout.operator_width", d.Layout.OperatorWidth)
	v.SetDefault("layout.group_header", d.Layout.GroupHeader)
	v.SetDefault("layout.group_footer", d.Layout.GroupFooter)
	v.SetDefault("layout.border", d.Layout.Border)
	v.SetDefault("layout.empty_group_width", d.Layout.EmptyGroupWidth)
	v.SetDefault("layout.empty_group_height", d.Layout.EmptyGroupHeight)
	v.SetDefault("history.enabled", d.History.Enabled)
	v.SetDefault("history.path", d.History.Path)
	v.SetDefault("history.max_entries", d.History.MaxEntries)
	v.SetDefault("presets.path", d.Presets.Path)
	v.SetDefault("presets.watch", d.Presets.Watch)
	v.SetDefault("database.url_env", d.Database.URLEnv)
	v.SetDefault("database.keyring_service", d.Database.KeyringService)
	v.SetDefault("database.default_schema", d.Database.DefaultSchema)
	v.SetDefault("database.row_limit", d.Database.RowLimit)
}

// Load loads configuration from the standard search paths
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile loads configuration from path, or from the standard search
// paths when path is empty. Environment variables prefixed LAZYFILTER_
// override file values (LAZYFILTER_UI_THEME for ui.theme).
func LoadFile(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		// 1. User config directory
		if configDir, err := GetConfigPath(); err == nil {
			v.AddConfigPath(configDir)
		}
		// 2. Current directory
		v.AddConfigPath(".")
		// 3. Default config directory
		v.AddConfigPath("./config")
	}

	setDefaults(v)

	v.SetEnvPrefix(AppName)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config (it's okay if file doesn't exist, we have defaults)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	cfg.Layout = cfg.Layout.Normalize()

	if err := cfg.resolvePaths(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// resolvePaths fills empty storage paths with files in the config directory
func (c *Config) resolvePaths() error {
	if c.History.Path != "" && c.Presets.Path != "" {
		return nil
	}
	dir, err := GetConfigPath()
	if err != nil {
		return fmt.Errorf("failed to resolve config directory: %w", err)
	}
	if c.History.Path == "" {
		c.History.Path = filepath.Join(dir, "history.db")
	}
	if c.Presets.Path == "" {
		c.Presets.Path = filepath.Join(dir, "presets.yaml")
	}
	return nil
}

// GetConfigPath returns the user config directory path
func GetConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, AppName), nil
}
