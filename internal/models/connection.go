package models

import (
	"fmt"
	"time"
)

// ConnectionConfig represents a PostgreSQL connection configuration
type ConnectionConfig struct {
	Name     string `yaml:"name"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`

	// URL takes precedence over the discrete fields when set
	URL string `yaml:"url"`
}

// String returns a display form without the password
func (c ConnectionConfig) String() string {
	if c.Name != "" {
		return c.Name
	}
	return fmt.Sprintf("%s@%s:%d/%s", c.User, c.Host, c.Port, c.Database)
}

// Preset is a named, saved filter for a table
type Preset struct {
	ID         string    `yaml:"id" json:"id"`
	Name       string    `yaml:"name" json:"name"`
	Table      string    `yaml:"table" json:"table"` // "schema.table"
	Filter     ForestDoc `yaml:"filter" json:"filter"`
	CreatedAt  time.Time `yaml:"created_at" json:"created_at"`
	UpdatedAt  time.Time `yaml:"updated_at" json:"updated_at"`
	LastUsed   time.Time `yaml:"last_used" json:"last_used"`
	UsageCount int       `yaml:"usage_count" json:"usage_count"`
}
