package export

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"github.com/rebeliceyang/lazyfilter/internal/models"
)

// ExportToCSV exports presets to a CSV file, one row per preset with the
// filter as embedded JSON
func ExportToCSV(presets []models.Preset, path string) error {
	// Create the file
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := csv.NewWriter(file)

	// Write header
	header := []string{"Name", "Table", "Conditions", "Filter", "Created", "Updated", "Last Used", "Usage Count"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, p := range presets {
		filterJSON, err := json.Marshal(p.Filter)
		if err != nil {
			return fmt.Errorf("failed to encode filter of '%s': %w", p.Name, err)
		}

		// Format timestamps
		created := p.CreatedAt.Format("2006-01-02 15:04:05")
		updated := p.UpdatedAt.Format("2006-01-02 15:04:05")
		lastUsed := ""
		if !p.LastUsed.IsZero() {
			lastUsed = p.LastUsed.Format("2006-01-02 15:04:05")
		}

		row := []string{
			p.Name,
			p.Table,
			fmt.Sprintf("%d", countConditions(p.Filter.Items)),
			string(filterJSON),
			created,
			updated,
			lastUsed,
			fmt.Sprintf("%d", p.UsageCount),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// ExportToJSON exports presets to a pretty-printed JSON file
func ExportToJSON(presets []models.Preset, path string) error {
	if presets == nil {
		presets = []models.Preset{}
	}
	data, err := json.MarshalIndent(presets, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal presets to JSON: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write JSON file: %w", err)
	}
	return nil
}

func countConditions(items []models.ItemDoc) int {
	n := 0
	for _, it := range items {
		if it.Type == models.DocCondition {
			n++
		}
		n += countConditions(it.Children)
	}
	return n
}
