// Package bookmarks stores named views in a SQLite database.
package bookmarks

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	mandel "github.com/marben/mandel_explorer"
)

// ErrNotFound is returned when no bookmark has the requested name.
var ErrNotFound = errors.New("bookmark not found")

// Bookmark is a saved view.
type Bookmark struct {
	Name    string
	View    mandel.Viewport
	MaxIter int
	Created time.Time
}

const schema = `
CREATE TABLE IF NOT EXISTS bookmarks (
    name     TEXT PRIMARY KEY,
    left_re  REAL NOT NULL,
    top_im   REAL NOT NULL,
    width    REAL NOT NULL,
    height   REAL NOT NULL,
    rotation REAL NOT NULL DEFAULT 0,
    max_iter INTEGER NOT NULL,
    created  INTEGER NOT NULL          -- UnixNano
);
`

// Store is a bookmark database.
//
// Thread safety: Store is safe for concurrent use; database/sql serializes
// access to the connection pool.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("bookmarks: create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("bookmarks: open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("bookmarks: connect: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("bookmarks: create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Seed inserts the landmarks that are not stored yet, with bound maxIter.
// Existing bookmarks of the same name are left alone. It returns the
// number of inserted bookmarks.
func (s *Store) Seed(landmarks []mandel.Landmark, maxIter int) (int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("bookmarks: seed: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT OR IGNORE INTO bookmarks
		(name, left_re, top_im, width, height, rotation, max_iter, created)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("bookmarks: seed: %w", err)
	}
	defer stmt.Close()

	n := 0
	now := time.Now()
	for i, l := range landmarks {
		v := l.Viewport
		// Keep the landmark order when listing.
		created := now.Add(time.Duration(i) * time.Microsecond).UnixNano()
		res, err := stmt.Exec(l.Name, v.Left, v.Top, v.Width, v.Height, v.Rotation, maxIter, created)
		if err != nil {
			return 0, fmt.Errorf("bookmarks: seed %q: %w", l.Name, err)
		}
		if k, _ := res.RowsAffected(); k > 0 {
			n++
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("bookmarks: seed: %w", err)
	}
	return n, nil
}

// Save stores b, replacing a bookmark of the same name. A zero Created is
// set to the current time.
func (s *Store) Save(b Bookmark) error {
	if b.Name == "" {
		return errors.New("bookmarks: empty name")
	}
	if !b.View.Valid() {
		return fmt.Errorf("bookmarks: invalid view %s", b.View)
	}
	if b.Created.IsZero() {
		b.Created = time.Now()
	}
	v := b.View
	_, err := s.db.Exec(`INSERT INTO bookmarks
		(name, left_re, top_im, width, height, rotation, max_iter, created)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			left_re = excluded.left_re, top_im = excluded.top_im,
			width = excluded.width, height = excluded.height,
			rotation = excluded.rotation, max_iter = excluded.max_iter`,
		b.Name, v.Left, v.Top, v.Width, v.Height, v.Rotation, b.MaxIter, b.Created.UnixNano())
	if err != nil {
		return fmt.Errorf("bookmarks: save %q: %w", b.Name, err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(row scanner) (Bookmark, error) {
	var b Bookmark
	var created int64
	err := row.Scan(&b.Name, &b.View.Left, &b.View.Top, &b.View.Width, &b.View.Height,
		&b.View.Rotation, &b.MaxIter, &created)
	b.Created = time.Unix(0, created)
	return b, err
}

const columns = `name, left_re, top_im, width, height, rotation, max_iter, created`

// Get returns the bookmark called name.
func (s *Store) Get(name string) (Bookmark, error) {
	b, err := scan(s.db.QueryRow(`SELECT `+columns+` FROM bookmarks WHERE name = ?`, name))
	if errors.Is(err, sql.ErrNoRows) {
		return Bookmark{}, fmt.Errorf("bookmarks: %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return Bookmark{}, fmt.Errorf("bookmarks: get %q: %w", name, err)
	}
	return b, nil
}

// List returns every bookmark, oldest first.
func (s *Store) List() ([]Bookmark, error) {
	rows, err := s.db.Query(`SELECT ` + columns + ` FROM bookmarks ORDER BY created, name`)
	if err != nil {
		return nil, fmt.Errorf("bookmarks: list: %w", err)
	}
	defer rows.Close()

	var out []Bookmark
	for rows.Next() {
		b, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("bookmarks: list: %w", err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("bookmarks: list: %w", err)
	}
	return out, nil
}

// Next returns the bookmark listed after the one called name, wrapping
// around. An unknown or empty name yields the first bookmark.
func (s *Store) Next(name string) (Bookmark, error) {
	all, err := s.List()
	if err != nil {
		return Bookmark{}, err
	}
	if len(all) == 0 {
		return Bookmark{}, fmt.Errorf("bookmarks: next: %w", ErrNotFound)
	}
	for i, b := range all {
		if b.Name == name {
			return all[(i+1)%len(all)], nil
		}
	}
	return all[0], nil
}

// Delete removes the bookmark called name.
func (s *Store) Delete(name string) error {
	res, err := s.db.Exec(`DELETE FROM bookmarks WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("bookmarks: delete %q: %w", name, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("bookmarks: %q: %w", name, ErrNotFound)
	}
	return nil
}
