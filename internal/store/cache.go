// Package store provides a SQLite-backed cache of parsed journal records.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/noralyzer/noralyzer/internal/source"

	_ "modernc.org/sqlite" // register sqlite driver
)

// Cache stores the validated records of each journal file together with
// the file's mtime and size, so unchanged journals are not reparsed.
type Cache struct {
	db *sql.DB
}

// Open opens or creates the cache database at the given path.
func Open(dbPath string) (*Cache, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	if err := migrateUp(dbPath); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("opening cache db: %w", err)
	}

	return &Cache{db: db}, nil
}

// Close closes the cache database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// FileInfo holds the tracked mtime and size for a file.
type FileInfo struct {
	MtimeNs     int64
	SizeBytes   int64
	ParseErrors int
}

// GetTrackedFiles returns a map of file_path -> FileInfo for all tracked files.
func (c *Cache) GetTrackedFiles() (map[string]FileInfo, error) {
	rows, err := c.db.Query("SELECT file_path, mtime_ns, size_bytes, parse_errors FROM file_tracker")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	result := make(map[string]FileInfo)
	for rows.Next() {
		var path string
		var fi FileInfo
		if err := rows.Scan(&path, &fi.MtimeNs, &fi.SizeBytes, &fi.ParseErrors); err != nil {
			return nil, err
		}
		result[path] = fi
	}
	return result, rows.Err()
}

// SaveFile replaces the cached records of one journal file.
func (c *Cache) SaveFile(path string, records []source.Record, fi FileInfo) error {
	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(time.RFC3339)

	_, err = tx.Exec(`INSERT INTO file_tracker (file_path, mtime_ns, size_bytes, parse_errors, parsed_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(file_path) DO UPDATE SET
			mtime_ns = excluded.mtime_ns,
			size_bytes = excluded.size_bytes,
			parse_errors = excluded.parse_errors,
			parsed_at = excluded.parsed_at`,
		path, fi.MtimeNs, fi.SizeBytes, fi.ParseErrors, now)
	if err != nil {
		return err
	}

	if _, err = tx.Exec("DELETE FROM records WHERE file_path = ?", path); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`INSERT INTO records (file_path, seq, rec_type, rec_id, line, payload)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	for seq, r := range records {
		if _, err := stmt.Exec(path, seq, string(r.Type), string(r.ID), r.Line, []byte(r.Payload)); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// LoadRecords returns the cached records of the given files, in stored
// order. Payloads are decoded again so callers get typed values.
func (c *Cache) LoadRecords(paths []string) (map[string][]source.Record, error) {
	want := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		want[p] = struct{}{}
	}

	rows, err := c.db.Query(`SELECT file_path, rec_type, line, payload
		FROM records ORDER BY file_path, seq`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	out := make(map[string][]source.Record, len(paths))
	for rows.Next() {
		var (
			path, recType string
			line          int
			payload       []byte
		)
		if err := rows.Scan(&path, &recType, &line, &payload); err != nil {
			return nil, err
		}
		if _, ok := want[path]; !ok {
			continue
		}
		rec, err := source.DecodeRecord(source.RecordType(recType), payload)
		if err != nil {
			return nil, fmt.Errorf("decoding cached record in %s:%d: %w", path, line, err)
		}
		rec.Line = line
		out[path] = append(out[path], rec)
	}
	return out, rows.Err()
}

// DeleteFile removes a tracked file and its records.
func (c *Cache) DeleteFile(path string) error {
	if _, err := c.db.Exec("DELETE FROM records WHERE file_path = ?", path); err != nil {
		return err
	}
	_, err := c.db.Exec("DELETE FROM file_tracker WHERE file_path = ?", path)
	return err
}

// RecordCount returns the number of cached records.
func (c *Cache) RecordCount() (int, error) {
	var count int
	err := c.db.QueryRow("SELECT COUNT(*) FROM records").Scan(&count)
	return count, err
}

// Clear drops every cached file and record.
func (c *Cache) Clear() error {
	if _, err := c.db.Exec("DELETE FROM records"); err != nil {
		return err
	}
	_, err := c.db.Exec("DELETE FROM file_tracker")
	return err
}
