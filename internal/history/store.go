package history

import (
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rebeliceyang/lazyfilter/internal/filter"
	"github.com/rebeliceyang/lazyfilter/internal/models"
)

//go:embed schema.sql
var schemaSQL string

// Entry is one committed filter
type Entry struct {
	ID             int
	Table          string
	Filter         models.Forest
	WhereSQL       string
	ConditionCount int
	CommittedAt    time.Time
}

// Store persists every committed filter per table in SQLite
type Store struct {
	db         *sql.DB
	maxEntries int
}

// NewStore creates a new history store. maxEntries bounds the rows kept
// per table, 0 keeps everything.
func NewStore(path string, maxEntries int) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	// Create schema
	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create history schema: %w", err)
	}

	return &Store{db: db, maxEntries: maxEntries}, nil
}

// Commit records the filter for table. It is the persistence sink of the
// builder: called once per committed mutation, without batching.
func (s *Store) Commit(table string, f models.Forest, whereSQL string) error {
	data, err := filter.Encode(f)
	if err != nil {
		return err
	}
	conditions, _ := filter.Count(f)

	_, err = s.db.Exec(`
		INSERT INTO filter_history (table_name, filter_json, where_sql, condition_count)
		VALUES (?, ?, ?, ?)`,
		table, string(data), whereSQL, conditions,
	)
	if err != nil {
		return fmt.Errorf("failed to record filter: %w", err)
	}
	return s.prune(table)
}

func (s *Store) prune(table string) error {
	if s.maxEntries <= 0 {
		return nil
	}
	_, err := s.db.Exec(`
		DELETE FROM filter_history
		WHERE table_name = ? AND id NOT IN (
			SELECT id FROM filter_history WHERE table_name = ? ORDER BY id DESC LIMIT ?
		)`, table, table, s.maxEntries)
	if err != nil {
		return fmt.Errorf("failed to prune history: %w", err)
	}
	return nil
}

// Latest returns the last committed filter for table
func (s *Store) Latest(table string) (models.Forest, bool, error) {
	entries, err := s.GetRecent(table, 1)
	if err != nil {
		return models.Forest{}, false, err
	}
	if len(entries) == 0 {
		return models.NewForest(), false, nil
	}
	return entries[0].Filter, true, nil
}

// GetRecent retrieves the most recent entries for table
func (s *Store) GetRecent(table string, limit int) ([]Entry, error) {
	rows, err := s.db.Query(`
		SELECT id, table_name, filter_json, where_sql, condition_count, committed_at
		FROM filter_history
		WHERE table_name = ?
		ORDER BY id DESC
		LIMIT ?`, table, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var data string
		var committedAt string

		if err := rows.Scan(&e.ID, &e.Table, &data, &e.WhereSQL, &e.ConditionCount, &committedAt); err != nil {
			return nil, err
		}
		f, err := filter.Decode([]byte(data))
		if err != nil {
			return nil, fmt.Errorf("history entry %d: %w", e.ID, err)
		}
		e.Filter = f
		e.CommittedAt, _ = time.Parse("2006-01-02 15:04:05", committedAt)

		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
