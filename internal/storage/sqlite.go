// Package storage persists records in an embedded SQLite database.
// It is the bootstrap source of truth: the engine replays it into the
// in-memory indexes at startup and writes through on every mutation.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS records (
	index_name TEXT NOT NULL,
	object_id  TEXT NOT NULL,
	body       TEXT NOT NULL,
	updated_at INTEGER NOT NULL,
	PRIMARY KEY (index_name, object_id)
);
CREATE INDEX IF NOT EXISTS idx_records_index_name ON records (index_name);
CREATE TABLE IF NOT EXISTS settings (
	index_name TEXT NOT NULL PRIMARY KEY,
	body       TEXT NOT NULL,
	updated_at INTEGER NOT NULL
);
`

// Store wraps the SQLite database holding all indexes' records.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and ensures the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}
	// modernc sqlite serializes writes itself; a single connection avoids
	// SQLITE_BUSY under concurrent request handlers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ensure schema in %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRecord upserts one record body for an index.
func (s *Store) SaveRecord(indexName, objectID string, body []byte) error {
	_, err := s.db.Exec(
		`INSERT INTO records (index_name, object_id, body, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (index_name, object_id) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`,
		indexName, objectID, string(body), time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to save record '%s' in index '%s': %w", objectID, indexName, err)
	}
	return nil
}

// DeleteRecord removes one record. Deleting a missing record is not an error.
func (s *Store) DeleteRecord(indexName, objectID string) error {
	if _, err := s.db.Exec(`DELETE FROM records WHERE index_name = ? AND object_id = ?`, indexName, objectID); err != nil {
		return fmt.Errorf("failed to delete record '%s' from index '%s': %w", objectID, indexName, err)
	}
	return nil
}

// ClearIndex removes all records of an index.
func (s *Store) ClearIndex(indexName string) error {
	if _, err := s.db.Exec(`DELETE FROM records WHERE index_name = ?`, indexName); err != nil {
		return fmt.Errorf("failed to clear index '%s': %w", indexName, err)
	}
	return nil
}

// SaveSettings upserts the settings body of an index.
func (s *Store) SaveSettings(indexName string, body []byte) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (index_name, body, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT (index_name) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`,
		indexName, string(body), time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to save settings for index '%s': %w", indexName, err)
	}
	return nil
}

// LoadSettings returns the stored settings body of an index, if any.
func (s *Store) LoadSettings(indexName string) ([]byte, bool, error) {
	var body string
	err := s.db.QueryRow(`SELECT body FROM settings WHERE index_name = ?`, indexName).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to load settings for index '%s': %w", indexName, err)
	}
	return []byte(body), true, nil
}

// DeleteSettings removes the stored settings of an index. Missing settings
// are not an error.
func (s *Store) DeleteSettings(indexName string) error {
	if _, err := s.db.Exec(`DELETE FROM settings WHERE index_name = ?`, indexName); err != nil {
		return fmt.Errorf("failed to delete settings for index '%s': %w", indexName, err)
	}
	return nil
}

// ListIndexes returns the names of all indexes with at least one record or
// stored settings.
func (s *Store) ListIndexes() ([]string, error) {
	rows, err := s.db.Query(`SELECT index_name FROM records UNION SELECT index_name FROM settings ORDER BY index_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list indexes: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan index name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// LoadIndex streams all records of an index to fn in objectID order.
func (s *Store) LoadIndex(indexName string, fn func(objectID string, body []byte) error) error {
	rows, err := s.db.Query(`SELECT object_id, body FROM records WHERE index_name = ? ORDER BY object_id`, indexName)
	if err != nil {
		return fmt.Errorf("failed to load index '%s': %w", indexName, err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var objectID, body string
		if err := rows.Scan(&objectID, &body); err != nil {
			return fmt.Errorf("failed to scan record in index '%s': %w", indexName, err)
		}
		if err := fn(objectID, []byte(body)); err != nil {
			return err
		}
	}
	return rows.Err()
}
