package presets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rebeliceyang/lazyfilter/internal/export"
	"github.com/rebeliceyang/lazyfilter/internal/filter"
	"github.com/rebeliceyang/lazyfilter/internal/models"
	"gopkg.in/yaml.v3"
)

var (
	ErrNotFound      = errors.New("preset not found")
	ErrDuplicateName = errors.New("a preset with this name already exists")
	ErrEmptyName     = errors.New("preset name cannot be empty")
)

// Manager manages named filter presets stored in a YAML file
type Manager struct {
	mu      sync.RWMutex
	path    string
	presets []models.Preset
}

// NewManager creates a manager for the presets file at path
func NewManager(path string) (*Manager, error) {
	m := &Manager{
		path:    path,
		presets: []models.Preset{},
	}

	// Load existing presets if file exists
	if _, err := os.Stat(path); err == nil {
		if err := m.Load(); err != nil {
			return nil, fmt.Errorf("failed to load presets: %w", err)
		}
	}

	return m, nil
}

// Path returns the presets file path
func (m *Manager) Path() string {
	return m.path
}

// Load loads presets from the YAML file
func (m *Manager) Load() error {
	data, err := os.ReadFile(m.path)
	if err != nil {
		return fmt.Errorf("failed to read presets file: %w", err)
	}

	var presets []models.Preset
	if err := yaml.Unmarshal(data, &presets); err != nil {
		return fmt.Errorf("failed to parse presets: %w", err)
	}
	if presets == nil {
		presets = []models.Preset{}
	}

	m.mu.Lock()
	m.presets = presets
	m.mu.Unlock()
	return nil
}

// save writes presets to the YAML file; the caller holds the lock
func (m *Manager) save() error {
	data, err := yaml.Marshal(m.presets)
	if err != nil {
		return fmt.Errorf("failed to marshal presets: %w", err)
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(m.path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(m.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write presets file: %w", err)
	}
	return nil
}

func (m *Manager) nameTaken(name, exceptID string) bool {
	for _, p := range m.presets {
		if p.ID != exceptID && strings.EqualFold(p.Name, name) {
			return true
		}
	}
	return false
}

// Add saves f as a new preset for table
func (m *Manager) Add(name, table string, f models.Forest) (*models.Preset, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Names are case-insensitive
	if m.nameTaken(name, "") {
		return nil, fmt.Errorf("%w: '%s'", ErrDuplicateName, name)
	}

	now := time.Now()
	preset := models.Preset{
		ID:        uuid.New().String(),
		Name:      name,
		Table:     table,
		Filter:    filter.ToDoc(f),
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.presets = append(m.presets, preset)

	if err := m.save(); err != nil {
		m.presets = m.presets[:len(m.presets)-1]
		return nil, fmt.Errorf("failed to save preset: %w", err)
	}
	return &preset, nil
}

// Update renames a preset and replaces its filter
func (m *Manager) Update(id, name string, f models.Forest) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.nameTaken(name, id) {
		return fmt.Errorf("%w: '%s'", ErrDuplicateName, name)
	}
	for i := range m.presets {
		if m.presets[i].ID == id {
			m.presets[i].Name = name
			m.presets[i].Filter = filter.ToDoc(f)
			m.presets[i].UpdatedAt = time.Now()
			if err := m.save(); err != nil {
				return fmt.Errorf("failed to save preset: %w", err)
			}
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Delete deletes a preset by ID
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, p := range m.presets {
		if p.ID == id {
			m.presets = append(m.presets[:i], m.presets[i+1:]...)
			if err := m.save(); err != nil {
				return fmt.Errorf("failed to save presets after deletion: %w", err)
			}
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Get returns a preset by ID
func (m *Manager) Get(id string) (*models.Preset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, p := range m.presets {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// FindByName returns a preset by case-insensitive name
func (m *Manager) FindByName(name string) (*models.Preset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, p := range m.presets {
		if strings.EqualFold(p.Name, strings.TrimSpace(name)) {
			return &p, nil
		}
	}
	return nil, fmt.Errorf("%w: '%s'", ErrNotFound, name)
}

// GetAll returns all presets
func (m *Manager) GetAll() []models.Preset {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Preset, len(m.presets))
	copy(out, m.presets)
	return out
}

// ForTable returns the presets of a table, most recently used first
func (m *Manager) ForTable(table string) []models.Preset {
	m.mu.RLock()
	var out []models.Preset
	for _, p := range m.presets {
		if table == "" || p.Table == table {
			out = append(out, p)
		}
	}
	m.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].LastUsed.After(out[j].LastUsed)
	})
	return out
}

// Search filters presets by name or table
func (m *Manager) Search(query string) []models.Preset {
	if query == "" {
		return m.GetAll()
	}
	query = strings.ToLower(query)

	m.mu.RLock()
	defer m.mu.RUnlock()

	var results []models.Preset
	for _, p := range m.presets {
		if strings.Contains(strings.ToLower(p.Name), query) || strings.Contains(strings.ToLower(p.Table), query) {
			results = append(results, p)
		}
	}
	return results
}

// RecordUsage updates usage statistics for a preset
func (m *Manager) RecordUsage(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.presets {
		if m.presets[i].ID == id {
			m.presets[i].UsageCount++
			m.presets[i].LastUsed = time.Now()
			if err := m.save(); err != nil {
				return fmt.Errorf("failed to save usage statistics: %w", err)
			}
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Forest decodes the filter stored in a preset
func Forest(p models.Preset) (models.Forest, error) {
	f, err := filter.FromDoc(p.Filter)
	if err != nil {
		return models.Forest{}, fmt.Errorf("preset '%s': %w", p.Name, err)
	}
	return f, nil
}

// ExportToCSV exports all presets to a CSV file
func (m *Manager) ExportToCSV(path string) (string, error) {
	presets := m.GetAll()
	if len(presets) == 0 {
		return "", fmt.Errorf("no presets to export")
	}
	if path == "" {
		path = filepath.Join(filepath.Dir(m.path), "presets.csv")
	}
	if err := export.ExportToCSV(presets, path); err != nil {
		return "", fmt.Errorf("failed to export presets to CSV: %w", err)
	}
	return path, nil
}

// ExportToJSON exports all presets to a JSON file
func (m *Manager) ExportToJSON(path string) (string, error) {
	presets := m.GetAll()
	if len(presets) == 0 {
		return "", fmt.Errorf("no presets to export")
	}
	if path == "" {
		path = filepath.Join(filepath.Dir(m.path), "presets.json")
	}
	if err := export.ExportToJSON(presets, path); err != nil {
		return "", fmt.Errorf("failed to export presets to JSON: %w", err)
	}
	return path, nil
}
