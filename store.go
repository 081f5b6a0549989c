package sitebridge

import (
	"database/sql"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// Store wraps a SQLite database and provides CRUD operations for posts,
// metadata, terms, authors, attachments and site options.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and runs schema migrations.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// Enable WAL mode for concurrent read/write access, set a busy timeout
	// so writers wait instead of returning SQLITE_BUSY immediately, and tune
	// performance: synchronous=NORMAL is safe with WAL and avoids an fsync
	// per transaction; larger cache and mmap reduce disk I/O.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
		PRAGMA cache_size=-8000;
		PRAGMA mmap_size=268435456;
	`); err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS options (
    name TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS users (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    login TEXT NOT NULL UNIQUE,
    display_name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS posts (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    title TEXT NOT NULL,
    slug TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'draft',
    author_id INTEGER NOT NULL DEFAULT 0,
    date TEXT NOT NULL,
    excerpt TEXT NOT NULL DEFAULT '',
    post_type TEXT NOT NULL DEFAULT 'post',
    content TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS post_meta (
    post_id INTEGER NOT NULL,
    meta_key TEXT NOT NULL,
    meta_value TEXT NOT NULL,
    PRIMARY KEY (post_id, meta_key)
);
CREATE INDEX IF NOT EXISTS idx_post_meta_kv ON post_meta (meta_key, meta_value);

CREATE TABLE IF NOT EXISTS post_revisions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    post_id INTEGER NOT NULL,
    title TEXT NOT NULL,
    slug TEXT NOT NULL,
    status TEXT NOT NULL,
    author_id INTEGER NOT NULL,
    date TEXT NOT NULL,
    excerpt TEXT NOT NULL,
    post_type TEXT NOT NULL,
    content TEXT NOT NULL,
    saved_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_revisions_post ON post_revisions (post_id);

CREATE TABLE IF NOT EXISTS attachments (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    post_id INTEGER NOT NULL,
    filename TEXT NOT NULL,
    title TEXT NOT NULL DEFAULT '',
    caption TEXT NOT NULL DEFAULT '',
    width INTEGER NOT NULL DEFAULT 0,
    height INTEGER NOT NULL DEFAULT 0,
    size INTEGER NOT NULL DEFAULT 0,
    uploaded_at TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_attachments_post ON attachments (post_id);

CREATE TABLE IF NOT EXISTS taxonomies (
    name TEXT PRIMARY KEY,
    label TEXT NOT NULL,
    hierarchical INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS terms (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    taxonomy TEXT NOT NULL,
    name TEXT NOT NULL,
    slug TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    UNIQUE (taxonomy, slug)
);

CREATE TABLE IF NOT EXISTS term_relationships (
    post_id INTEGER NOT NULL,
    term_id INTEGER NOT NULL,
    PRIMARY KEY (post_id, term_id)
);

CREATE TABLE IF NOT EXISTS sync_activity (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    command TEXT NOT NULL,
    detail TEXT NOT NULL DEFAULT '',
    remote_ip TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL
);
`)
	if err != nil {
		return err
	}
	// Built-in taxonomies exist on every install.
	_, err = s.db.Exec(`
INSERT OR IGNORE INTO taxonomies (name, label, hierarchical) VALUES ('category', 'Categories', 1);
INSERT OR IGNORE INTO taxonomies (name, label, hierarchical) VALUES ('post_tag', 'Tags', 0);
`)
	return err
}

// Option returns the value stored under name, or "" when unset.
func (s *Store) Option(name string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM options WHERE name = ?`, name).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// SetOption upserts an option and reports whether the stored value changed.
// Writing the value an option already holds returns false, which is how the
// connect command detects an "Already connected" handshake.
func (s *Store) SetOption(name, value string) (bool, error) {
	var existing string
	err := s.db.QueryRow(`SELECT value FROM options WHERE name = ?`, name).Scan(&existing)
	switch {
	case err == sql.ErrNoRows:
		// fall through to insert
	case err != nil:
		return false, err
	case existing == value:
		return false, nil
	}
	if _, err := s.db.Exec(`INSERT OR REPLACE INTO options (name, value) VALUES (?, ?)`, name, value); err != nil {
		return false, err
	}
	return true, nil
}
