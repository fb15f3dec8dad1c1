package index

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ProjectRow represents a row in the projects table.
type ProjectRow struct {
	Name      string
	Path      string
	Title     string
	Status    string
	Group     string
	Category  string
	Emoji     string
	Tags      []string
	Tracked   bool
	Checksum  string
	UpdatedAt time.Time
}

// UpsertProject inserts or replaces a project row.
func (db *DB) UpsertProject(p ProjectRow) error {
	tagsJSON, _ := json.Marshal(p.Tags)
	_, err := db.conn.Exec(`
		INSERT INTO projects (name, path, title, status, group_name, category, emoji, tags, tracked, checksum, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			path       = excluded.path,
			title      = excluded.title,
			status     = excluded.status,
			group_name = excluded.group_name,
			category   = excluded.category,
			emoji      = excluded.emoji,
			tags       = excluded.tags,
			tracked    = excluded.tracked,
			checksum   = excluded.checksum,
			updated_at = excluded.updated_at
	`, p.Name, p.Path, p.Title, p.Status, p.Group, p.Category, p.Emoji, string(tagsJSON), p.Tracked, p.Checksum, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert project: %w", err)
	}
	return nil
}

// DeleteByPath removes the project indexed at the given vault path.
func (db *DB) DeleteByPath(path string) error {
	if _, err := db.conn.Exec(`DELETE FROM projects WHERE path = ?`, path); err != nil {
		return fmt.Errorf("index: delete by path: %w", err)
	}
	return nil
}

// GetProject returns the row for a project name, or nil when not indexed.
func (db *DB) GetProject(name string) (*ProjectRow, error) {
	return db.scanOne(`WHERE name = ?`, name)
}

// ProjectByPath returns the row indexed at a vault path, or nil.
func (db *DB) ProjectByPath(path string) (*ProjectRow, error) {
	return db.scanOne(`WHERE path = ?`, path)
}

func (db *DB) scanOne(where string, arg any) (*ProjectRow, error) {
	row := db.conn.QueryRow(`
		SELECT name, path, title, status, group_name, category, emoji, tags, tracked, checksum, updated_at
		FROM projects `+where, arg)
	p, err := scanProject(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("index: get project: %w", err)
	}
	return p, nil
}

// ListProjects returns indexed projects, optionally filtered by status,
// ordered by name.
func (db *DB) ListProjects(status string) ([]ProjectRow, error) {
	q := `SELECT name, path, title, status, group_name, category, emoji, tags, tracked, checksum, updated_at
		FROM projects`
	args := []any{}
	if status != "" {
		q += ` WHERE status = ?`
		args = append(args, status)
	}
	q += ` ORDER BY name`

	rows, err := db.conn.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("index: list projects: %w", err)
	}
	defer rows.Close()

	var out []ProjectRow
	for rows.Next() {
		p, err := scanProject(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// TrackedProjects returns the names of every project carrying the
// trackable tag, ordered by name.
func (db *DB) TrackedProjects() ([]string, error) {
	rows, err := db.conn.Query(`SELECT name FROM projects WHERE tracked = 1 ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("index: tracked projects: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

// AllChecksums returns path → checksum for every indexed project.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM projects`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

func scanProject(scan func(dest ...any) error) (*ProjectRow, error) {
	var p ProjectRow
	var tagsJSON string
	if err := scan(&p.Name, &p.Path, &p.Title, &p.Status, &p.Group, &p.Category, &p.Emoji, &tagsJSON, &p.Tracked, &p.Checksum, &p.UpdatedAt); err != nil {
		return nil, err
	}
	_ = json.Unmarshal([]byte(tagsJSON), &p.Tags)
	return &p, nil
}
